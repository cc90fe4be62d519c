package jobs

import (
	"context"
	"fmt"

	"crm-core/internal/service"

	"go.uber.org/zap"
)

// Restock tops up every low-stock product by a fixed amount
type Restock struct {
	mutations service.MutationResolver
	amount    int
	logger    *zap.Logger
}

func NewRestock(mutations service.MutationResolver, amount int, logger *zap.Logger) *Restock {
	return &Restock{mutations: mutations, amount: amount, logger: logger}
}

func (r *Restock) Name() string { return RestockJob }

func (r *Restock) Run(ctx context.Context) error {
	amount := r.amount
	result, err := r.mutations.UpdateLowStockProducts(ctx, &amount)
	if err != nil {
		r.logger.Error("Error updating low-stock products", zap.Error(err))
		return err
	}

	r.logger.Info(result.Message)
	for _, p := range result.Products {
		r.logger.Info(fmt.Sprintf("Product: %s, New stock: %d", p.Name, p.Stock))
	}
	return nil
}
