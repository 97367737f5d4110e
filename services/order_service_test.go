package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	apperrors "github.com/yashrajoria/storefront-backend/common/errors"
	"github.com/yashrajoria/storefront-backend/models"
	"github.com/yashrajoria/storefront-backend/providers"
	"github.com/yashrajoria/storefront-backend/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const testSecret = "rzp_secret"

type orderFixture struct {
	svc      *OrderService
	products *MockProductRepo
	orders   *MockOrderRepo
	users    *MockUserRepo
	carts    *fakeCartClearer
	sns      *fakeSNS
	dispatch *fakeDispatcher
}

func newOrderFixture() *orderFixture {
	f := &orderFixture{
		products: new(MockProductRepo),
		orders:   new(MockOrderRepo),
		users:    new(MockUserRepo),
		carts:    &fakeCartClearer{},
		sns:      &fakeSNS{},
		dispatch: &fakeDispatcher{},
	}
	f.svc = NewOrderService(OrderDeps{
		Products:       f.products,
		Orders:         f.orders,
		Users:          f.users,
		Carts:          f.carts,
		Razorpay:       &fakeOrderGateway{},
		Fulfillment:    f.dispatch,
		Events:         f.sns,
		EventsTopicARN: "arn:aws:sns:ap-south-1:000000000000:order-events",
		RazorpaySecret: testSecret,
	}, zap.NewNop())
	return f
}

func tee(stock int) *models.Product {
	return &models.Product{
		ID:   primitive.NewObjectID(),
		Name: "Classic Tee",
		Variants: []models.Variant{
			{SKU: "TEE-M", RetailPrice: 700, Discount: 100, FilterValue: "M", Stock: stock},
			{SKU: "TEE-L", RetailPrice: 700, Discount: 0, FilterValue: "L", Stock: stock},
		},
	}
}

func shipTo() *models.Address {
	return &models.Address{FirstName: "Asha", Street: "12 MG Road", City: "Pune", Zipcode: "411001", Country: "IN", Phone: "999"}
}

func razorpayRequest(items ...OrderItemRequest) VerifyRazorpayRequest {
	return VerifyRazorpayRequest{
		PlaceOrderRequest: PlaceOrderRequest{Items: items, Address: shipTo()},
		RazorpayOrderID:   "order_gw",
		RazorpayPaymentID: "pay_1",
		RazorpaySignature: providers.Signature("order_gw", "pay_1", testSecret),
	}
}

func TestPlaceOrder_Success(t *testing.T) {
	f := newOrderFixture()
	p := tee(5)
	orderID := primitive.NewObjectID()

	f.orders.On("FindByPaymentID", mock.Anything, "pay_1").Return(nil, repository.ErrNotFound).Once()
	f.products.On("FindByID", mock.Anything, p.ID).Return(p, nil)
	f.products.On("DecrementStock", mock.Anything, p.ID, "TEE-M", 2).Return(true, nil).Once()
	f.products.On("DecrementStock", mock.Anything, p.ID, "TEE-L", 1).Return(true, nil).Once()
	f.orders.On("Create", mock.Anything, mock.AnythingOfType("*models.Order")).
		Run(func(args mock.Arguments) { args.Get(1).(*models.Order).ID = orderID }).
		Return(nil).Once()

	order, err := f.svc.PlaceRazorpayOrder(context.Background(), "user-1", razorpayRequest(
		OrderItemRequest{ProductID: p.ID.Hex(), SKU: "TEE-M", Quantity: 2},
		OrderItemRequest{ProductID: p.ID.Hex(), SKU: "TEE-L", Quantity: 1},
	))
	require.NoError(t, err)

	assert.Equal(t, orderID, order.ID)
	assert.Equal(t, models.StatusOrderPlaced, order.Status)
	assert.Equal(t, 1900.0, order.Price.Subtotal)
	assert.Equal(t, 0.0, order.Price.Shipping)
	assert.Equal(t, 1900.0, order.Price.Total)
	require.Len(t, order.LineItems, 2)
	assert.Equal(t, 600.0, order.LineItems[0].Price)
	assert.Equal(t, "M", order.LineItems[0].Size)
	assert.Equal(t, models.PaymentInfo{Method: models.PaymentRazorpay, GatewayOrderID: "order_gw", PaymentID: "pay_1"}, order.Payment)

	assert.Equal(t, []string{"user-1"}, f.carts.cleared)
	assert.Len(t, f.dispatch.dispatched, 1)
	assert.Equal(t, EventOrderPlaced, f.sns.eventType)

	var event map[string]interface{}
	require.NoError(t, json.Unmarshal(f.sns.message, &event))
	assert.Equal(t, orderID.Hex(), event["orderId"])

	f.products.AssertExpectations(t)
	f.orders.AssertExpectations(t)
}

func TestPlaceOrder_BadSignatureMutatesNothing(t *testing.T) {
	f := newOrderFixture()
	p := tee(5)

	req := razorpayRequest(OrderItemRequest{ProductID: p.ID.Hex(), SKU: "TEE-M", Quantity: 1})
	req.RazorpaySignature = providers.Signature("order_gw", "pay_other", testSecret)

	_, err := f.svc.PlaceRazorpayOrder(context.Background(), "user-1", req)
	assert.ErrorIs(t, err, apperrors.ErrPaymentFailed)

	f.products.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	f.products.AssertNotCalled(t, "DecrementStock", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	assert.Empty(t, f.carts.cleared)
}

func TestPlaceOrder_QuantityAboveStockRejectsWholeOrder(t *testing.T) {
	f := newOrderFixture()
	p := tee(1)

	f.orders.On("FindByPaymentID", mock.Anything, "pay_1").Return(nil, repository.ErrNotFound).Once()
	f.products.On("FindByID", mock.Anything, p.ID).Return(p, nil)

	_, err := f.svc.PlaceRazorpayOrder(context.Background(), "user-1", razorpayRequest(
		OrderItemRequest{ProductID: p.ID.Hex(), SKU: "TEE-L", Quantity: 1},
		OrderItemRequest{ProductID: p.ID.Hex(), SKU: "TEE-M", Quantity: 2},
	))
	assert.ErrorIs(t, err, apperrors.ErrInsufficientStock)
	f.products.AssertNotCalled(t, "DecrementStock", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPlaceOrder_MissingVariant(t *testing.T) {
	f := newOrderFixture()
	p := tee(5)

	f.orders.On("FindByPaymentID", mock.Anything, "pay_1").Return(nil, repository.ErrNotFound).Once()
	f.products.On("FindByID", mock.Anything, p.ID).Return(p, nil)

	_, err := f.svc.PlaceRazorpayOrder(context.Background(), "user-1", razorpayRequest(
		OrderItemRequest{ProductID: p.ID.Hex(), SKU: "TEE-XXL", Quantity: 1},
	))
	require.Error(t, err)
	assert.Equal(t, 400, apperrors.As(err).Code)
}

func TestPlaceOrder_ConcurrentDecrementRollsBack(t *testing.T) {
	f := newOrderFixture()
	p := tee(5)

	f.orders.On("FindByPaymentID", mock.Anything, "pay_1").Return(nil, repository.ErrNotFound).Once()
	f.products.On("FindByID", mock.Anything, p.ID).Return(p, nil)
	f.products.On("DecrementStock", mock.Anything, p.ID, "TEE-M", 2).Return(true, nil).Once()
	f.products.On("DecrementStock", mock.Anything, p.ID, "TEE-L", 3).Return(false, nil).Once()
	f.products.On("IncrementStock", mock.Anything, p.ID, "TEE-M", 2).Return(nil).Once()

	_, err := f.svc.PlaceRazorpayOrder(context.Background(), "user-1", razorpayRequest(
		OrderItemRequest{ProductID: p.ID.Hex(), SKU: "TEE-M", Quantity: 2},
		OrderItemRequest{ProductID: p.ID.Hex(), SKU: "TEE-L", Quantity: 3},
	))
	assert.ErrorIs(t, err, apperrors.ErrInsufficientStock)
	f.products.AssertExpectations(t)
	f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPlaceOrder_MergesDuplicateLines(t *testing.T) {
	f := newOrderFixture()
	p := tee(5)

	f.orders.On("FindByPaymentID", mock.Anything, "pay_1").Return(nil, repository.ErrNotFound).Once()
	f.products.On("FindByID", mock.Anything, p.ID).Return(p, nil).Once()
	f.products.On("DecrementStock", mock.Anything, p.ID, "TEE-M", 3).Return(true, nil).Once()
	f.orders.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

	order, err := f.svc.PlaceRazorpayOrder(context.Background(), "user-1", razorpayRequest(
		OrderItemRequest{ProductID: p.ID.Hex(), SKU: "TEE-M", Quantity: 1},
		OrderItemRequest{ProductID: p.ID.Hex(), SKU: "TEE-M", Quantity: 2},
	))
	require.NoError(t, err)
	require.Len(t, order.LineItems, 1)
	assert.Equal(t, 3, order.LineItems[0].Quantity)
	f.products.AssertExpectations(t)
}

func TestPlaceOrder_PersistFailureReleasesStock(t *testing.T) {
	f := newOrderFixture()
	p := tee(5)

	f.orders.On("FindByPaymentID", mock.Anything, "pay_1").Return(nil, repository.ErrNotFound).Once()
	f.products.On("FindByID", mock.Anything, p.ID).Return(p, nil)
	f.products.On("DecrementStock", mock.Anything, p.ID, "TEE-M", 1).Return(true, nil).Once()
	f.products.On("IncrementStock", mock.Anything, p.ID, "TEE-M", 1).Return(nil).Once()
	f.orders.On("Create", mock.Anything, mock.Anything).Return(errors.New("write concern timeout")).Once()

	_, err := f.svc.PlaceRazorpayOrder(context.Background(), "user-1", razorpayRequest(
		OrderItemRequest{ProductID: p.ID.Hex(), SKU: "TEE-M", Quantity: 1},
	))
	require.Error(t, err)
	assert.Equal(t, 500, apperrors.As(err).Code)
	assert.Equal(t, "Internal server error", apperrors.As(err).Message)
	f.products.AssertExpectations(t)
	assert.Empty(t, f.dispatch.dispatched)
}

func TestPlaceOrder_ReplayReturnsExistingOrder(t *testing.T) {
	f := newOrderFixture()
	existing := &models.Order{ID: primitive.NewObjectID(), UserID: "user-1"}
	f.orders.On("FindByPaymentID", mock.Anything, "pay_1").Return(existing, nil).Once()

	order, err := f.svc.PlaceRazorpayOrder(context.Background(), "user-1", razorpayRequest(
		OrderItemRequest{ProductID: primitive.NewObjectID().Hex(), SKU: "TEE-M", Quantity: 1},
	))
	require.NoError(t, err)
	assert.Equal(t, existing, order)
	f.products.AssertNotCalled(t, "DecrementStock", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPlaceOrder_UsesPrimaryAddress(t *testing.T) {
	f := newOrderFixture()
	p := tee(5)
	uid := primitive.NewObjectID()
	user := &models.User{
		ID:               uid,
		SavedAddresses:   []models.Address{{ID: "a1", City: "Delhi"}, {ID: "a2", City: "Pune"}},
		PrimaryAddressID: "a2",
	}

	f.orders.On("FindByPaymentID", mock.Anything, "pay_1").Return(nil, repository.ErrNotFound).Once()
	f.users.On("FindByID", mock.Anything, uid).Return(user, nil).Once()
	f.products.On("FindByID", mock.Anything, p.ID).Return(p, nil)
	f.products.On("DecrementStock", mock.Anything, p.ID, "TEE-M", 1).Return(true, nil).Once()
	f.orders.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

	req := razorpayRequest(OrderItemRequest{ProductID: p.ID.Hex(), SKU: "TEE-M", Quantity: 1})
	req.Address = nil

	order, err := f.svc.PlaceRazorpayOrder(context.Background(), uid.Hex(), req)
	require.NoError(t, err)
	assert.Equal(t, "Pune", order.Address.City)
}

func TestStripeVerifier(t *testing.T) {
	ctx := context.Background()

	paid := StripeVerifier{SessionID: "cs_1", Gateway: &fakeCheckout{session: &providers.CheckoutSession{ID: "cs_1", PaymentStatus: "paid", UserID: "u1", PaymentIntentID: "pi_1"}}}
	info, err := paid.Verify(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "pi_1", info.PaymentID)
	assert.Equal(t, models.PaymentStripe, info.Method)

	_, err = paid.Verify(ctx, "someone-else")
	assert.ErrorIs(t, err, apperrors.ErrPaymentFailed)

	unpaid := StripeVerifier{SessionID: "cs_1", Gateway: &fakeCheckout{session: &providers.CheckoutSession{ID: "cs_1", PaymentStatus: "unpaid", UserID: "u1"}}}
	_, err = unpaid.Verify(ctx, "u1")
	assert.ErrorIs(t, err, apperrors.ErrPaymentFailed)
}

func TestPlaceRazorpayOrder_ChecksLedger(t *testing.T) {
	tests := []struct {
		name    string
		row     *models.Payment
		findErr error
		wantErr bool
	}{
		{name: "amount matches", row: &models.Payment{GatewayOrderID: "order_gw", UserID: "user-1", Amount: 60000}},
		{name: "underpaid", row: &models.Payment{GatewayOrderID: "order_gw", UserID: "user-1", Amount: 100}, wantErr: true},
		{name: "opened by another user", row: &models.Payment{GatewayOrderID: "order_gw", UserID: "user-2", Amount: 60000}, wantErr: true},
		{name: "unknown gateway order", findErr: repository.ErrNotFound, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newOrderFixture()
			ledger := new(MockPaymentRepo)
			f.svc.Payments = ledger
			p := tee(5)

			ledger.On("FindByGatewayOrderID", mock.Anything, "order_gw").Return(tt.row, tt.findErr).Once()
			f.orders.On("FindByPaymentID", mock.Anything, "pay_1").Return(nil, repository.ErrNotFound).Maybe()
			f.products.On("FindByID", mock.Anything, p.ID).Return(p, nil).Maybe()
			if tt.wantErr {
				ledger.On("MarkFailed", mock.Anything, "order_gw").Return(nil).Once()
			} else {
				f.products.On("DecrementStock", mock.Anything, p.ID, "TEE-M", 1).Return(true, nil).Once()
				f.orders.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
				ledger.On("MarkVerified", mock.Anything, "order_gw", "pay_1", mock.Anything).Return(nil).Once()
			}

			order, err := f.svc.PlaceRazorpayOrder(context.Background(), "user-1",
				razorpayRequest(OrderItemRequest{ProductID: p.ID.Hex(), SKU: "TEE-M", Quantity: 1}))
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrPaymentFailed)
				assert.Nil(t, order)
				f.products.AssertNotCalled(t, "DecrementStock", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
				f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			} else {
				require.NoError(t, err)
				assert.Equal(t, 600.0, order.Price.Total)
			}
			ledger.AssertExpectations(t)
		})
	}
}

func TestPlaceStripeOrder_AmountMustMatch(t *testing.T) {
	for _, charged := range []int64{100, 60000} {
		f := newOrderFixture()
		p := tee(5)
		f.svc.Stripe = &fakeCheckout{session: &providers.CheckoutSession{
			ID: "cs_1", PaymentStatus: "paid", UserID: "user-1", PaymentIntentID: "pi_1", AmountTotal: charged,
		}}
		f.orders.On("FindByPaymentID", mock.Anything, "pi_1").Return(nil, repository.ErrNotFound).Once()
		f.products.On("FindByID", mock.Anything, p.ID).Return(p, nil)
		f.products.On("DecrementStock", mock.Anything, p.ID, "TEE-M", 1).Return(true, nil).Maybe()
		f.orders.On("Create", mock.Anything, mock.Anything).Return(nil).Maybe()

		_, err := f.svc.PlaceStripeOrder(context.Background(), "user-1", VerifyStripeRequest{
			PlaceOrderRequest: PlaceOrderRequest{Items: []OrderItemRequest{{ProductID: p.ID.Hex(), SKU: "TEE-M", Quantity: 1}}, Address: shipTo()},
			SessionID:         "cs_1",
		})
		if charged == 60000 {
			assert.NoError(t, err)
			continue
		}
		assert.ErrorIs(t, err, apperrors.ErrPaymentFailed)
		f.products.AssertNotCalled(t, "DecrementStock", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	}
}

func TestCreateRazorpayOrder_PricesServerSide(t *testing.T) {
	f := newOrderFixture()
	gw := &fakeOrderGateway{}
	f.svc.Razorpay = gw
	p := tee(5)
	f.products.On("FindByID", mock.Anything, p.ID).Return(p, nil)

	order, err := f.svc.CreateRazorpayOrder(context.Background(), "user-1", []OrderItemRequest{
		{ProductID: p.ID.Hex(), SKU: "TEE-M", Quantity: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(120000), gw.amount)
	assert.Equal(t, "INR", order.Currency)
	assert.LessOrEqual(t, len(order.Receipt), 40)
}

func TestUpdateStatus(t *testing.T) {
	f := newOrderFixture()
	id := primitive.NewObjectID()

	err := f.svc.UpdateStatus(context.Background(), id.Hex(), "Lost")
	assert.Equal(t, 400, apperrors.As(err).Code)

	f.orders.On("UpdateStatus", mock.Anything, id, models.StatusShipped).Return(nil).Once()
	assert.NoError(t, f.svc.UpdateStatus(context.Background(), id.Hex(), models.StatusShipped))

	f.orders.On("UpdateStatus", mock.Anything, id, models.StatusDelivered).Return(repository.ErrNotFound).Once()
	err = f.svc.UpdateStatus(context.Background(), id.Hex(), models.StatusDelivered)
	assert.Equal(t, 404, apperrors.As(err).Code)
}
