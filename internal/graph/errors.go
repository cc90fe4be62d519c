package graph

import (
	"fmt"

	"crm-core/internal/domain"

	"go.uber.org/zap"
)

// resolverError is what a failed field reports. The kind is exposed as the
// "code" extension.
type resolverError struct {
	message string
	kind    domain.Kind
}

func (e *resolverError) Error() string {
	return e.message
}

func (e *resolverError) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": e.kind.String()}
}

// fail converts err for the client. Internal causes are logged, not sent.
func (r *Resolver) fail(field string, err error) error {
	kind := domain.KindOf(err)
	if kind == domain.KindInternal {
		r.logger.Error("GraphQL field failed", zap.String("field", field), zap.Error(err))
		return &resolverError{message: "internal server error", kind: kind}
	}
	return &resolverError{message: domain.Message(err), kind: kind}
}

func invalidID(arg string) error {
	return fmt.Errorf("%w: %s is not a valid ID", domain.ErrInvalidArgument, arg)
}
