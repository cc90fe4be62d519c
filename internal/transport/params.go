package transport

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"crm-core/internal/domain"
	"crm-core/internal/query"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// params reads optional typed values from a query string. The first malformed
// value is kept in err and later reads become no-ops.
type params struct {
	values url.Values
	err    error
}

func newParams(values url.Values) *params {
	return &params{values: values}
}

func (p *params) raw(name string) (string, bool) {
	if p.err != nil {
		return "", false
	}
	v := strings.TrimSpace(p.values.Get(name))
	return v, v != ""
}

func (p *params) fail(name, want string) {
	p.err = fmt.Errorf("%w: query parameter %q must be %s", domain.ErrInvalidArgument, name, want)
}

func (p *params) str(name string) *string {
	v, ok := p.raw(name)
	if !ok {
		return nil
	}
	return &v
}

func (p *params) integer(name string) *int {
	v, ok := p.raw(name)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.fail(name, "an integer")
		return nil
	}
	return &n
}

func (p *params) boolean(name string) *bool {
	v, ok := p.raw(name)
	if !ok {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.fail(name, "true or false")
		return nil
	}
	return &b
}

func (p *params) amount(name string) *decimal.Decimal {
	v, ok := p.raw(name)
	if !ok {
		return nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		p.fail(name, "a decimal number")
		return nil
	}
	return &d
}

// timestamp accepts RFC 3339 timestamps
func (p *params) timestamp(name string) *time.Time {
	v, ok := p.raw(name)
	if !ok {
		return nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		p.fail(name, "an RFC 3339 timestamp")
		return nil
	}
	return &t
}

func (p *params) id(name string) *uuid.UUID {
	v, ok := p.raw(name)
	if !ok {
		return nil
	}
	id, err := uuid.Parse(v)
	if err != nil {
		p.fail(name, "a UUID")
		return nil
	}
	return &id
}

// orderBy collects every order_by value. Each one may also hold a comma
// separated list of "field[:direction]" keys.
func (p *params) orderBy() []query.OrderKey {
	if p.err != nil {
		return nil
	}
	var keys []query.OrderKey
	for _, v := range p.values["order_by"] {
		for _, token := range strings.Split(v, ",") {
			if strings.TrimSpace(token) == "" {
				continue
			}
			keys = append(keys, query.ParseOrderKey(token))
		}
	}
	return keys
}
