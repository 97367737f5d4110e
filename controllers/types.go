package controllers

import (
	"context"

	"github.com/yashrajoria/storefront-backend/models"
	awspkg "github.com/yashrajoria/storefront-backend/pkg/aws"
	"github.com/yashrajoria/storefront-backend/services"
)

// AuthServiceAPI is the account surface used by UserController.
type AuthServiceAPI interface {
	Register(ctx context.Context, req services.RegisterRequest) (*services.AuthResult, error)
	Login(ctx context.Context, req services.LoginRequest) (*services.AuthResult, error)
	VerifyEmailOTP(ctx context.Context, req services.VerifyOTPRequest) (*services.AuthResult, error)
	ResendOTP(ctx context.Context, req services.EmailRequest) error
	ForgotPassword(ctx context.Context, req services.EmailRequest) error
	ResetPassword(ctx context.Context, req services.ResetPasswordRequest) error
	GoogleLogin(ctx context.Context, req services.GoogleLoginRequest) (*services.AuthResult, error)
	AdminLogin(ctx context.Context, req services.LoginRequest) (*services.AuthResult, error)
}

// OrderServiceAPI covers checkout and order administration.
type OrderServiceAPI interface {
	CreateRazorpayOrder(ctx context.Context, userID string, items []services.OrderItemRequest) (*models.GatewayOrder, error)
	CreateStripeSession(ctx context.Context, userID string, items []services.OrderItemRequest) (*models.GatewayOrder, error)
	PlaceRazorpayOrder(ctx context.Context, userID string, req services.VerifyRazorpayRequest) (*models.Order, error)
	PlaceStripeOrder(ctx context.Context, userID string, req services.VerifyStripeRequest) (*models.Order, error)
	ListOrders(ctx context.Context) ([]models.Order, error)
	UserOrders(ctx context.Context, userID string) ([]models.Order, error)
	UpdateStatus(ctx context.Context, orderID, status string) error
}

// FulfillmentAPI is the admin view of the fulfillment outbox.
type FulfillmentAPI interface {
	ListJobs(ctx context.Context, status string) ([]models.FulfillmentJob, error)
	Retry(ctx context.Context, jobID string) error
}

type CartServiceAPI interface {
	Get(ctx context.Context, userID string) (*models.CartView, error)
	Add(ctx context.Context, userID string, req services.AddToCartRequest) (*models.CartView, error)
	UpdateQuantity(ctx context.Context, userID string, req services.UpdateCartRequest) (*models.CartView, error)
	Remove(ctx context.Context, userID, key string) (*models.CartView, error)
	MoveToWishlist(ctx context.Context, userID, key string) (*models.CartView, error)
	Wishlist(ctx context.Context, userID string) ([]models.WishlistItem, error)
	ValidateForCheckout(ctx context.Context, userID string) ([]models.StockIssue, error)
}

type AddressServiceAPI interface {
	List(ctx context.Context, userID string) (*services.AddressBook, error)
	Add(ctx context.Context, userID string, addr models.Address) (*services.AddressBook, error)
	Update(ctx context.Context, userID string, req services.UpdateAddressRequest) (*services.AddressBook, error)
	Remove(ctx context.Context, userID, addressID string) (*services.AddressBook, error)
	SetPrimary(ctx context.Context, userID, addressID string) (*services.AddressBook, error)
}

// BlogServiceAPI returns the list already serialized so cached bytes go out untouched.
type BlogServiceAPI interface {
	List(ctx context.Context) ([]byte, error)
	GetBySlug(ctx context.Context, slug string) (*models.BlogPost, error)
	Add(ctx context.Context, req services.CreateBlogRequest) (*models.BlogPost, error)
	Edit(ctx context.Context, req services.EditBlogRequest) error
	Remove(ctx context.Context, blogID string) error
}

type ReviewServiceAPI interface {
	CanReview(ctx context.Context, userID, productID string) (*models.ReviewEligibility, error)
	Create(ctx context.Context, userID string, req services.CreateReviewRequest) (*models.Review, error)
	UserReview(ctx context.Context, userID, productID string) (*models.Review, error)
	ListByProduct(ctx context.Context, productID string) (*models.ProductReviews, error)
}

type ProductServiceAPI interface {
	Add(ctx context.Context, req services.AddProductRequest) (*models.Product, error)
	Update(ctx context.Context, req services.UpdateProductRequest) error
	Restock(ctx context.Context, req services.RestockRequest) error
	Remove(ctx context.Context, productID string) error
	Single(ctx context.Context, productID string) (*models.Product, error)
	List(ctx context.Context, filter models.ProductFilter) ([]models.Product, error)
	ImageUploadURL(ctx context.Context, req services.ImageUploadRequest) (*awspkg.UploadURL, error)
}

type DashboardServiceAPI interface {
	Stats(ctx context.Context) (*models.DashboardStats, error)
}
