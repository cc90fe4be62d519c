package jobs

import (
	"context"
	"fmt"
	"time"

	"crm-core/internal/query"
	"crm-core/internal/service"

	"go.uber.org/zap"
)

// DefaultReminderWindow is how far back an order counts as pending
const DefaultReminderWindow = 7 * 24 * time.Hour

// Reminders logs one line per order placed within the reminder window
type Reminders struct {
	queries service.QueryResolver
	window  time.Duration
	logger  *zap.Logger
	now     clock
}

func NewReminders(queries service.QueryResolver, window time.Duration, logger *zap.Logger) *Reminders {
	if window <= 0 {
		window = DefaultReminderWindow
	}
	return &Reminders{queries: queries, window: window, logger: logger, now: systemClock}
}

func (r *Reminders) Name() string { return ReminderJob }

func (r *Reminders) Run(ctx context.Context) error {
	since := r.now().UTC().Add(-r.window)

	orders, err := r.queries.ListOrders(ctx, query.OrderFilter{OrderDateFrom: &since}, []query.OrderKey{{Field: "order_date"}})
	if err != nil {
		r.logger.Error("Error fetching pending orders", zap.Error(err))
		return err
	}

	r.logger.Info(fmt.Sprintf("Found %d pending orders.", len(orders)))
	for _, o := range orders {
		name, email := "", ""
		if o.Customer != nil {
			name, email = o.Customer.Name, o.Customer.Email
		}
		r.logger.Info(fmt.Sprintf("Order ID: %s, Customer: %s <%s>, Order Date: %s",
			o.ID, name, email, o.OrderDate.UTC().Format(time.RFC3339)))
	}
	return nil
}
