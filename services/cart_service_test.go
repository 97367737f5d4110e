package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	apperrors "github.com/yashrajoria/storefront-backend/common/errors"
	"github.com/yashrajoria/storefront-backend/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newCartFixture(products ...*models.Product) (*CartService, *memCartRepo, *MockUserRepo) {
	repo := newMemCartRepo()
	productRepo := new(MockProductRepo)
	for _, p := range products {
		productRepo.On("FindByID", mock.Anything, p.ID).Return(p, nil)
	}
	users := new(MockUserRepo)
	users.On("SetCartData", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	return NewCartService(repo, productRepo, users, zap.NewNop()), repo, users
}

func TestCartAdd(t *testing.T) {
	p := tee(3)
	svc, _, _ := newCartFixture(p)
	ctx := context.Background()

	v, err := svc.Add(ctx, "u1", AddToCartRequest{ProductID: p.ID.Hex(), Size: "M", Quantity: 2})
	require.NoError(t, err)
	require.Len(t, v.Lines, 1)
	assert.Equal(t, "TEE-M", v.Lines[0].SKU)
	assert.Equal(t, 3, v.Lines[0].MaxStock)
	assert.Equal(t, 1200.0, v.Subtotal)
	assert.Equal(t, 2, v.ItemCount)
	assert.Empty(t, v.Notice)

	v, err = svc.Add(ctx, "u1", AddToCartRequest{ProductID: p.ID.Hex(), Size: "M", Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, v.Lines[0].Quantity)
}

func TestCartAdd_OverStockLeavesCartUnchanged(t *testing.T) {
	p := tee(3)
	svc, _, _ := newCartFixture(p)
	ctx := context.Background()

	_, err := svc.Add(ctx, "u1", AddToCartRequest{ProductID: p.ID.Hex(), Size: "M", Quantity: 2})
	require.NoError(t, err)

	v, err := svc.Add(ctx, "u1", AddToCartRequest{ProductID: p.ID.Hex(), Size: "M", Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, "Only 3 left in stock", v.Notice)
	assert.Equal(t, 2, v.Lines[0].Quantity)

	stored, err := svc.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Lines[0].Quantity)
}

func TestCartAdd_OutOfStock(t *testing.T) {
	p := tee(0)
	svc, _, _ := newCartFixture(p)

	v, err := svc.Add(context.Background(), "u1", AddToCartRequest{ProductID: p.ID.Hex(), Size: "L", Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, "Out of stock", v.Notice)
	assert.Empty(t, v.Lines)
}

func TestCartAdd_UnknownSize(t *testing.T) {
	p := tee(3)
	svc, _, _ := newCartFixture(p)

	_, err := svc.Add(context.Background(), "u1", AddToCartRequest{ProductID: p.ID.Hex(), Size: "XS", Quantity: 1})
	assert.Error(t, err)
}

func TestCartUpdateQuantity_Clamps(t *testing.T) {
	p := tee(4)
	svc, _, _ := newCartFixture(p)
	ctx := context.Background()
	key := models.CartKey(p.ID.Hex(), "M", "")

	_, err := svc.Add(ctx, "u1", AddToCartRequest{ProductID: p.ID.Hex(), Size: "M", Quantity: 1})
	require.NoError(t, err)

	v, err := svc.UpdateQuantity(ctx, "u1", UpdateCartRequest{Key: key, Quantity: 10})
	require.NoError(t, err)
	assert.Equal(t, 4, v.Lines[0].Quantity)

	v, err = svc.UpdateQuantity(ctx, "u1", UpdateCartRequest{Key: key, Quantity: 0})
	require.NoError(t, err)
	assert.Equal(t, 1, v.Lines[0].Quantity)

	_, err = svc.UpdateQuantity(ctx, "u1", UpdateCartRequest{Key: "missing", Quantity: 1})
	assert.Error(t, err)
}

func TestCartMoveToWishlist_NoDuplicates(t *testing.T) {
	p := tee(5)
	svc, _, _ := newCartFixture(p)
	ctx := context.Background()

	_, err := svc.Add(ctx, "u1", AddToCartRequest{ProductID: p.ID.Hex(), Size: "M", Quantity: 1})
	require.NoError(t, err)
	_, err = svc.Add(ctx, "u1", AddToCartRequest{ProductID: p.ID.Hex(), Size: "L", Quantity: 1})
	require.NoError(t, err)

	_, err = svc.MoveToWishlist(ctx, "u1", models.CartKey(p.ID.Hex(), "M", ""))
	require.NoError(t, err)
	v, err := svc.MoveToWishlist(ctx, "u1", models.CartKey(p.ID.Hex(), "L", ""))
	require.NoError(t, err)

	assert.Empty(t, v.Lines)
	require.Len(t, v.Wishlist, 1)
	assert.Equal(t, p.ID.Hex(), v.Wishlist[0].ProductID)
}

func TestCartRemoveAndClear(t *testing.T) {
	p := tee(5)
	svc, _, _ := newCartFixture(p)
	ctx := context.Background()

	_, err := svc.Add(ctx, "u1", AddToCartRequest{ProductID: p.ID.Hex(), Size: "M", Quantity: 1})
	require.NoError(t, err)
	_, err = svc.Add(ctx, "u1", AddToCartRequest{ProductID: p.ID.Hex(), Size: "L", Quantity: 2})
	require.NoError(t, err)

	v, err := svc.Remove(ctx, "u1", models.CartKey(p.ID.Hex(), "M", ""))
	require.NoError(t, err)
	require.Len(t, v.Lines, 1)
	assert.Equal(t, 1400.0, v.Total)

	require.NoError(t, svc.Clear(ctx, "u1"))
	v, err = svc.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, v.Lines)
	assert.Zero(t, v.Total)
}

func TestCartMirrorsCartData(t *testing.T) {
	p := tee(5)
	svc, _, users := newCartFixture(p)
	uid := primitive.NewObjectID()

	_, err := svc.Add(context.Background(), uid.Hex(), AddToCartRequest{ProductID: p.ID.Hex(), Size: "M", Quantity: 2})
	require.NoError(t, err)

	users.AssertCalled(t, "SetCartData", mock.Anything, uid, map[string]int{models.CartKey(p.ID.Hex(), "M", ""): 2})
}

func TestCartClear_StoreDownStillClearsCartData(t *testing.T) {
	tests := []struct {
		name    string
		getErr  error
		saveErr error
	}{
		{name: "load fails", getErr: errors.New("redis: connection refused")},
		{name: "save fails", saveErr: errors.New("redis: connection refused")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, users := newCartFixture()
			uid := primitive.NewObjectID()
			repo.getErr, repo.saveErr = tt.getErr, tt.saveErr

			err := svc.Clear(context.Background(), uid.Hex())
			assert.Equal(t, 503, apperrors.As(err).Code)
			users.AssertCalled(t, "SetCartData", mock.Anything, uid, map[string]int{})
		})
	}
}

func TestCartValidateForCheckout(t *testing.T) {
	p := tee(5)
	svc, _, _ := newCartFixture(p)
	ctx := context.Background()

	_, err := svc.Add(ctx, "u1", AddToCartRequest{ProductID: p.ID.Hex(), Size: "M", Quantity: 4})
	require.NoError(t, err)

	issues, err := svc.ValidateForCheckout(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, issues)

	p.Variants[0].Stock = 1
	issues, err = svc.ValidateForCheckout(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, 4, issues[0].Requested)
	assert.Equal(t, 1, issues[0].Available)
}

func TestCartSaveFailure(t *testing.T) {
	p := tee(5)
	svc, repo, _ := newCartFixture(p)
	repo.saveErr = errors.New("redis down")

	_, err := svc.Add(context.Background(), "u1", AddToCartRequest{ProductID: p.ID.Hex(), Size: "M", Quantity: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Cart unavailable")
}

func TestTotals(t *testing.T) {
	got := Totals([]models.CartLine{{Price: 250, Quantity: 2}, {Price: 99.5, Quantity: 1}})
	assert.Equal(t, models.CartTotals{Subtotal: 599.5, Total: 599.5, ItemCount: 3}, got)
}
