package services

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/yashrajoria/storefront-backend/models"
	"github.com/yashrajoria/storefront-backend/providers"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- repositories ---

type MockProductRepo struct{ mock.Mock }

func (m *MockProductRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}
func (m *MockProductRepo) Find(ctx context.Context, f models.ProductFilter) ([]models.Product, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}
func (m *MockProductRepo) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockProductRepo) Create(ctx context.Context, p *models.Product) error {
	return m.Called(ctx, p).Error(0)
}
func (m *MockProductRepo) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	return m.Called(ctx, id, updates).Error(0)
}
func (m *MockProductRepo) ReplaceVariants(ctx context.Context, id primitive.ObjectID, variants []models.Variant) error {
	return m.Called(ctx, id, variants).Error(0)
}
func (m *MockProductRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	return m.Called(ctx, id).Error(0)
}
func (m *MockProductRepo) DecrementStock(ctx context.Context, id primitive.ObjectID, sku string, qty int) (bool, error) {
	args := m.Called(ctx, id, sku, qty)
	return args.Bool(0), args.Error(1)
}
func (m *MockProductRepo) IncrementStock(ctx context.Context, id primitive.ObjectID, sku string, qty int) error {
	return m.Called(ctx, id, sku, qty).Error(0)
}

type MockOrderRepo struct{ mock.Mock }

func (m *MockOrderRepo) Create(ctx context.Context, o *models.Order) error {
	return m.Called(ctx, o).Error(0)
}
func (m *MockOrderRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}
func (m *MockOrderRepo) FindByPaymentID(ctx context.Context, paymentID string) (*models.Order, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}
func (m *MockOrderRepo) FindAll(ctx context.Context) ([]models.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Order), args.Error(1)
}
func (m *MockOrderRepo) FindByUser(ctx context.Context, userID string) ([]models.Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Order), args.Error(1)
}
func (m *MockOrderRepo) FindRecent(ctx context.Context, limit int64) ([]models.Order, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Order), args.Error(1)
}
func (m *MockOrderRepo) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	return m.Called(ctx, id, status).Error(0)
}
func (m *MockOrderRepo) SetFulfillment(ctx context.Context, id primitive.ObjectID, res models.FulfillmentResult) error {
	return m.Called(ctx, id, res).Error(0)
}
func (m *MockOrderRepo) HasPurchased(ctx context.Context, userID string, productID primitive.ObjectID, statuses []string) (bool, error) {
	args := m.Called(ctx, userID, productID, statuses)
	return args.Bool(0), args.Error(1)
}

type MockUserRepo struct{ mock.Mock }

func (m *MockUserRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *MockUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *MockUserRepo) Create(ctx context.Context, u *models.User) error {
	return m.Called(ctx, u).Error(0)
}
func (m *MockUserRepo) Update(ctx context.Context, id primitive.ObjectID, set map[string]interface{}) error {
	return m.Called(ctx, id, set).Error(0)
}
func (m *MockUserRepo) SetAddresses(ctx context.Context, id primitive.ObjectID, addrs []models.Address, primaryID string) error {
	return m.Called(ctx, id, addrs, primaryID).Error(0)
}
func (m *MockUserRepo) SetCartData(ctx context.Context, id primitive.ObjectID, cartData map[string]int) error {
	return m.Called(ctx, id, cartData).Error(0)
}

type MockReviewRepo struct{ mock.Mock }

func (m *MockReviewRepo) Create(ctx context.Context, r *models.Review) error {
	return m.Called(ctx, r).Error(0)
}
func (m *MockReviewRepo) FindByUserAndProduct(ctx context.Context, userID, productID string) (*models.Review, error) {
	args := m.Called(ctx, userID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}
func (m *MockReviewRepo) FindByProduct(ctx context.Context, productID string) ([]models.Review, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Review), args.Error(1)
}

type MockBlogRepo struct{ mock.Mock }

func (m *MockBlogRepo) FindAll(ctx context.Context) ([]models.BlogPost, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.BlogPost), args.Error(1)
}
func (m *MockBlogRepo) FindBySlug(ctx context.Context, slug string) (*models.BlogPost, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BlogPost), args.Error(1)
}
func (m *MockBlogRepo) Create(ctx context.Context, p *models.BlogPost) error {
	return m.Called(ctx, p).Error(0)
}
func (m *MockBlogRepo) Update(ctx context.Context, id primitive.ObjectID, set map[string]interface{}) error {
	return m.Called(ctx, id, set).Error(0)
}
func (m *MockBlogRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	return m.Called(ctx, id).Error(0)
}

type MockJobRepo struct{ mock.Mock }

func (m *MockJobRepo) Enqueue(ctx context.Context, job *models.FulfillmentJob) error {
	return m.Called(ctx, job).Error(0)
}
func (m *MockJobRepo) ClaimDue(ctx context.Context, now time.Time, lease time.Duration) (*models.FulfillmentJob, error) {
	args := m.Called(ctx, now, lease)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FulfillmentJob), args.Error(1)
}
func (m *MockJobRepo) MarkSucceeded(ctx context.Context, id primitive.ObjectID, attempts int) error {
	return m.Called(ctx, id, attempts).Error(0)
}
func (m *MockJobRepo) MarkRetry(ctx context.Context, id primitive.ObjectID, attempts int, lastErr string, next time.Time) error {
	return m.Called(ctx, id, attempts, lastErr, next).Error(0)
}
func (m *MockJobRepo) MarkFailed(ctx context.Context, id primitive.ObjectID, attempts int, lastErr string) error {
	return m.Called(ctx, id, attempts, lastErr).Error(0)
}
func (m *MockJobRepo) Reset(ctx context.Context, id primitive.ObjectID, now time.Time) error {
	return m.Called(ctx, id, now).Error(0)
}
func (m *MockJobRepo) List(ctx context.Context, status string) ([]models.FulfillmentJob, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.FulfillmentJob), args.Error(1)
}
func (m *MockJobRepo) CountByStatus(ctx context.Context, status string) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

type MockPaymentRepo struct{ mock.Mock }

func (m *MockPaymentRepo) Create(ctx context.Context, p *models.Payment) error {
	return m.Called(ctx, p).Error(0)
}
func (m *MockPaymentRepo) FindByGatewayOrderID(ctx context.Context, id string) (*models.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}
func (m *MockPaymentRepo) MarkVerified(ctx context.Context, gatewayOrderID, paymentID, orderID string) error {
	return m.Called(ctx, gatewayOrderID, paymentID, orderID).Error(0)
}
func (m *MockPaymentRepo) MarkFailed(ctx context.Context, gatewayOrderID string) error {
	return m.Called(ctx, gatewayOrderID).Error(0)
}

// memCartRepo keeps carts in a map.
type memCartRepo struct {
	carts   map[string]*models.Cart
	getErr  error
	saveErr error
}

func newMemCartRepo() *memCartRepo {
	return &memCartRepo{carts: map[string]*models.Cart{}}
}

func (r *memCartRepo) GetCart(_ context.Context, userID string) (*models.Cart, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	c, ok := r.carts[userID]
	if !ok {
		return &models.Cart{UserID: userID}, nil
	}
	cp := *c
	cp.Lines = append([]models.CartLine(nil), c.Lines...)
	cp.Wishlist = append([]models.WishlistItem(nil), c.Wishlist...)
	return &cp, nil
}
func (r *memCartRepo) SaveCart(_ context.Context, c *models.Cart) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	cp := *c
	r.carts[c.UserID] = &cp
	return nil
}
func (r *memCartRepo) DeleteCart(_ context.Context, userID string) error {
	delete(r.carts, userID)
	return nil
}

// --- collaborators ---

type fakeFulfillmentClient struct {
	result models.FulfillmentResult
	err    error
	calls  int
}

func (f *fakeFulfillmentClient) CreateOrder(_ context.Context, _ providers.FulfillmentOrder) (models.FulfillmentResult, error) {
	f.calls++
	return f.result, f.err
}

type fakeDispatcher struct{ dispatched []*models.Order }

func (f *fakeDispatcher) Dispatch(_ context.Context, o *models.Order) error {
	f.dispatched = append(f.dispatched, o)
	return nil
}

type fakeCartClearer struct {
	cleared []string
	err     error
}

func (f *fakeCartClearer) Clear(_ context.Context, userID string) error {
	f.cleared = append(f.cleared, userID)
	return f.err
}

type fakeSNS struct {
	topic     string
	eventType string
	message   []byte
}

func (f *fakeSNS) Publish(_ context.Context, topicArn, eventType string, message []byte) error {
	f.topic, f.eventType, f.message = topicArn, eventType, message
	return nil
}

type fakeCheckout struct {
	session *providers.CheckoutSession
	err     error
}

func (f *fakeCheckout) CreateCheckoutSession(_ context.Context, req providers.CheckoutRequest) (*models.GatewayOrder, error) {
	return &models.GatewayOrder{ID: "cs_1", Currency: req.Currency}, f.err
}
func (f *fakeCheckout) GetSession(_ context.Context, _ string) (*providers.CheckoutSession, error) {
	return f.session, f.err
}

type fakeOrderGateway struct {
	amount int64
	err    error
}

func (f *fakeOrderGateway) CreateOrder(_ context.Context, amount int64, currency, receipt string) (*models.GatewayOrder, error) {
	f.amount = amount
	if f.err != nil {
		return nil, f.err
	}
	return &models.GatewayOrder{ID: "order_gw", Amount: amount, Currency: currency, Receipt: receipt}, nil
}
func (f *fakeOrderGateway) KeyID() string { return "rzp_test" }

type fakeMailer struct {
	verifyTo, verifyOTP string
	resetTo, resetOTP   string
	err                 error
}

func (f *fakeMailer) SendVerificationOTP(_ context.Context, to, _, otp string) error {
	f.verifyTo, f.verifyOTP = to, otp
	return f.err
}
func (f *fakeMailer) SendPasswordResetOTP(_ context.Context, to, _, otp string) error {
	f.resetTo, f.resetOTP = to, otp
	return f.err
}

type fakeTokens struct{}

func (fakeTokens) IssueUser(userID, email string) (string, error) { return "user:" + userID, nil }
func (fakeTokens) IssueAdmin(email string) (string, error)        { return "admin:" + email, nil }

type fakeIdentity struct {
	identity *providers.Identity
	err      error
}

func (f *fakeIdentity) Verify(_ context.Context, _ string) (*providers.Identity, error) {
	return f.identity, f.err
}
