package repository

import (
	"context"
	"errors"
	"time"

	"github.com/yashrajoria/storefront-backend/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// ProductRepo is the catalog store. Updates take plain maps so callers stay driver agnostic.
type ProductRepo interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	Find(ctx context.Context, filter models.ProductFilter) ([]models.Product, error)
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error
	ReplaceVariants(ctx context.Context, id primitive.ObjectID, variants []models.Variant) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	// DecrementStock removes qty units from one variant only if at least qty
	// are available. It reports false when the condition did not hold.
	DecrementStock(ctx context.Context, productID primitive.ObjectID, sku string, qty int) (bool, error)
	IncrementStock(ctx context.Context, productID primitive.ObjectID, sku string, qty int) error
}

type OrderRepo interface {
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	FindByPaymentID(ctx context.Context, paymentID string) (*models.Order, error)
	FindAll(ctx context.Context) ([]models.Order, error)
	FindByUser(ctx context.Context, userID string) ([]models.Order, error)
	FindRecent(ctx context.Context, limit int64) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) error
	SetFulfillment(ctx context.Context, id primitive.ObjectID, result models.FulfillmentResult) error
	HasPurchased(ctx context.Context, userID string, productID primitive.ObjectID, statuses []string) (bool, error)
}

type UserRepo interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, id primitive.ObjectID, set map[string]interface{}) error
	SetAddresses(ctx context.Context, id primitive.ObjectID, addresses []models.Address, primaryID string) error
	SetCartData(ctx context.Context, id primitive.ObjectID, cartData map[string]int) error
}

type ReviewRepo interface {
	Create(ctx context.Context, review *models.Review) error
	FindByUserAndProduct(ctx context.Context, userID, productID string) (*models.Review, error)
	FindByProduct(ctx context.Context, productID string) ([]models.Review, error)
}

type BlogRepo interface {
	FindAll(ctx context.Context) ([]models.BlogPost, error)
	FindBySlug(ctx context.Context, slug string) (*models.BlogPost, error)
	Create(ctx context.Context, post *models.BlogPost) error
	Update(ctx context.Context, id primitive.ObjectID, set map[string]interface{}) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// FulfillmentJobRepo is the outbox of orders waiting on the fulfillment API.
type FulfillmentJobRepo interface {
	Enqueue(ctx context.Context, job *models.FulfillmentJob) error
	// ClaimDue leases one due pending job by pushing its nextAttemptAt
	// forward by lease, so concurrent workers never pick the same job.
	ClaimDue(ctx context.Context, now time.Time, lease time.Duration) (*models.FulfillmentJob, error)
	MarkSucceeded(ctx context.Context, id primitive.ObjectID, attempts int) error
	MarkRetry(ctx context.Context, id primitive.ObjectID, attempts int, lastErr string, next time.Time) error
	MarkFailed(ctx context.Context, id primitive.ObjectID, attempts int, lastErr string) error
	Reset(ctx context.Context, id primitive.ObjectID, now time.Time) error
	List(ctx context.Context, status string) ([]models.FulfillmentJob, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
}

type CartRepo interface {
	GetCart(ctx context.Context, userID string) (*models.Cart, error)
	SaveCart(ctx context.Context, cart *models.Cart) error
	DeleteCart(ctx context.Context, userID string) error
}

type PaymentRepo interface {
	Create(ctx context.Context, p *models.Payment) error
	FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*models.Payment, error)
	MarkVerified(ctx context.Context, gatewayOrderID, paymentID, orderID string) error
	MarkFailed(ctx context.Context, gatewayOrderID string) error
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}

func duplicate(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}
