package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	apperrors "github.com/yashrajoria/storefront-backend/common/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func TestStockReserver_RollsBackOnError(t *testing.T) {
	products := new(MockProductRepo)
	r := NewStockReserver(products, zap.NewNop())
	a, b := primitive.NewObjectID(), primitive.NewObjectID()

	products.On("DecrementStock", mock.Anything, a, "A-1", 2).Return(true, nil).Once()
	products.On("DecrementStock", mock.Anything, b, "B-1", 1).Return(false, errors.New("socket closed")).Once()
	products.On("IncrementStock", mock.Anything, a, "A-1", 2).Return(nil).Once()

	err := r.Reserve(context.Background(), []StockLine{{ProductID: a, SKU: "A-1", Quantity: 2}, {ProductID: b, SKU: "B-1", Quantity: 1}})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, apperrors.ErrInsufficientStock)
	products.AssertExpectations(t)
}

func TestStockReserver_ReleaseContinuesPastFailures(t *testing.T) {
	products := new(MockProductRepo)
	r := NewStockReserver(products, zap.NewNop())
	a, b := primitive.NewObjectID(), primitive.NewObjectID()

	products.On("IncrementStock", mock.Anything, a, "A-1", 1).Return(errors.New("timeout")).Once()
	products.On("IncrementStock", mock.Anything, b, "B-1", 3).Return(nil).Once()

	r.Release(context.Background(), []StockLine{{ProductID: a, SKU: "A-1", Quantity: 1}, {ProductID: b, SKU: "B-1", Quantity: 3}})
	products.AssertExpectations(t)
}
