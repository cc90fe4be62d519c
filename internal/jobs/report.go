package jobs

import (
	"context"
	"fmt"

	"crm-core/internal/domain"
	"crm-core/internal/query"
	"crm-core/internal/service"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const reportLayout = "2006-01-02 15:04:05"

// Report logs the customer count, order count and total revenue
type Report struct {
	queries service.QueryResolver
	logger  *zap.Logger
	now     clock
}

func NewReport(queries service.QueryResolver, logger *zap.Logger) *Report {
	return &Report{queries: queries, logger: logger, now: systemClock}
}

func (r *Report) Name() string { return ReportJob }

func (r *Report) Run(ctx context.Context) error {
	customers, err := r.queries.ListCustomers(ctx, query.CustomerFilter{}, nil)
	if err != nil {
		r.logger.Error("Error generating CRM report", zap.Error(err))
		return err
	}
	orders, err := r.queries.ListOrders(ctx, query.OrderFilter{}, nil)
	if err != nil {
		r.logger.Error("Error generating CRM report", zap.Error(err))
		return err
	}

	r.logger.Info(fmt.Sprintf("%s - Report: %d customers, %d orders, %s total revenue",
		r.now().Format(reportLayout), len(customers), len(orders), revenue(orders).StringFixed(2)))
	return nil
}

func revenue(orders []*domain.Order) decimal.Decimal {
	total := decimal.Zero
	for _, o := range orders {
		total = total.Add(o.TotalAmount)
	}
	return total
}
