package jobs

import (
	"context"
	"fmt"

	"crm-core/internal/service"

	"go.uber.org/zap"
)

// heartbeatLayout is dd/mm/yyyy-HH:MM:SS
const heartbeatLayout = "02/01/2006-15:04:05"

// Heartbeat logs that the CRM is alive along with the outcome of a hello
// round trip through the resolvers
type Heartbeat struct {
	queries service.QueryResolver
	logger  *zap.Logger
	now     clock
}

func NewHeartbeat(queries service.QueryResolver, logger *zap.Logger) *Heartbeat {
	return &Heartbeat{queries: queries, logger: logger, now: systemClock}
}

func (h *Heartbeat) Name() string { return HeartbeatJob }

// Run never fails: an unhealthy store is reported in the heartbeat line
func (h *Heartbeat) Run(ctx context.Context) error {
	var status string
	greeting, err := h.queries.Hello(ctx)
	switch {
	case err != nil:
		status = fmt.Sprintf("CRM is alive - GraphQL check failed (%v)", err)
	case greeting == "":
		status = "CRM is alive - GraphQL response missing 'hello'"
	default:
		status = fmt.Sprintf("CRM is alive - GraphQL OK (%s)", greeting)
	}

	h.logger.Info(fmt.Sprintf("%s %s", h.now().Format(heartbeatLayout), status))
	return nil
}
