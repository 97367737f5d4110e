package services

import (
	"context"
	"fmt"

	apperrors "github.com/yashrajoria/storefront-backend/common/errors"
	"github.com/yashrajoria/storefront-backend/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// StockLine is one variant decrement.
type StockLine struct {
	ProductID primitive.ObjectID
	SKU       string
	Quantity  int
}

// StockReserver decrements variant stock for a whole order or not at all.
type StockReserver struct {
	products repository.ProductRepo
	log      *zap.Logger
}

func NewStockReserver(products repository.ProductRepo, log *zap.Logger) *StockReserver {
	return &StockReserver{products: products, log: log}
}

// Reserve decrements every line. If any line cannot be satisfied, lines
// already decremented are put back and ErrInsufficientStock is returned.
func (r *StockReserver) Reserve(ctx context.Context, lines []StockLine) error {
	done := make([]StockLine, 0, len(lines))
	for _, l := range lines {
		ok, err := r.products.DecrementStock(ctx, l.ProductID, l.SKU, l.Quantity)
		if err != nil || !ok {
			r.Release(ctx, done)
			if err != nil {
				return fmt.Errorf("decrement stock %s/%s: %w", l.ProductID.Hex(), l.SKU, err)
			}
			return apperrors.ErrInsufficientStock.Wrap(fmt.Errorf("sku %s", l.SKU))
		}
		done = append(done, l)
	}
	return nil
}

// Release puts lines back. Failures are logged since there is nothing left to roll back to.
func (r *StockReserver) Release(ctx context.Context, lines []StockLine) {
	for _, l := range lines {
		if err := r.products.IncrementStock(ctx, l.ProductID, l.SKU, l.Quantity); err != nil {
			r.log.Error("failed to release stock",
				zap.String("product_id", l.ProductID.Hex()),
				zap.String("sku", l.SKU),
				zap.Int("quantity", l.Quantity),
				zap.Error(err),
			)
		}
	}
}
