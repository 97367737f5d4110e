package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	apperrors "github.com/yashrajoria/storefront-backend/common/errors"
	"github.com/yashrajoria/storefront-backend/common/logger"
	"github.com/yashrajoria/storefront-backend/common/middleware"
	"github.com/yashrajoria/storefront-backend/controllers"
	awspkg "github.com/yashrajoria/storefront-backend/pkg/aws"
	"go.uber.org/zap"
)

// Controllers groups every handler set mounted under /api.
type Controllers struct {
	User      *controllers.UserController
	Order     *controllers.OrderController
	Cart      *controllers.CartController
	Address   *controllers.AddressController
	Blog      *controllers.BlogController
	Review    *controllers.ReviewController
	Product   *controllers.ProductController
	Dashboard *controllers.DashboardController
}

// Options carries the cross-cutting pieces of the HTTP stack.
type Options struct {
	Tokens         middleware.TokenParser
	Limiter        *middleware.RateLimiter
	Metrics        awspkg.Recorder
	Logger         *zap.Logger
	AllowedOrigins string
	RequestTimeout time.Duration
}

// SetupRouter builds the engine with the full middleware chain and all routes.
func SetupRouter(ctrl Controllers, opts Options) *gin.Engine {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Metrics == nil {
		opts.Metrics = awspkg.NopRecorder{}
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.RequestID())
	r.Use(apperrors.ErrorMiddleware(opts.Logger))
	r.Use(middleware.RequestLogger(opts.Logger))
	r.Use(middleware.Timeout(opts.RequestTimeout))
	r.Use(middleware.CORS(opts.AllowedOrigins))
	r.Use(middleware.SecurityHeaders())
	if opts.Limiter != nil {
		r.Use(middleware.RateLimit(opts.Limiter))
	}
	r.Use(middleware.Metrics(opts.Metrics, "storefront"))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	RegisterRoutes(r, ctrl, opts.Tokens)
	return r
}

// RegisterRoutes mounts the /api groups.
func RegisterRoutes(r *gin.Engine, ctrl Controllers, tokens middleware.TokenParser) {
	user := middleware.RequireUser(tokens)
	admin := middleware.RequireAdmin(tokens)

	api := r.Group("/api")

	userRoutes := api.Group("/user")
	{
		userRoutes.POST("/register", ctrl.User.Register)
		userRoutes.POST("/login", ctrl.User.Login)
		userRoutes.POST("/verify-email-otp", ctrl.User.VerifyEmailOTP)
		userRoutes.POST("/resend-otp", ctrl.User.ResendOTP)
		userRoutes.POST("/forgot-password", ctrl.User.ForgotPassword)
		userRoutes.POST("/reset-password", ctrl.User.ResetPassword)
		userRoutes.POST("/google-login", ctrl.User.GoogleLogin)
		userRoutes.POST("/admin", ctrl.User.AdminLogin)
	}

	orderRoutes := api.Group("/order")
	{
		orderRoutes.POST("/razorpay", user, ctrl.Order.CreateRazorpayOrder)
		orderRoutes.POST("/verifyRazorpay", user, ctrl.Order.VerifyRazorpay)
		orderRoutes.POST("/stripe", user, ctrl.Order.CreateStripeSession)
		orderRoutes.POST("/verifyStripe", user, ctrl.Order.VerifyStripe)
		orderRoutes.POST("/userorders", user, ctrl.Order.UserOrders)

		orderRoutes.POST("/list", admin, ctrl.Order.ListOrders)
		orderRoutes.POST("/status", admin, ctrl.Order.UpdateStatus)
		orderRoutes.GET("/fulfillment/jobs", admin, ctrl.Order.ListFulfillmentJobs)
		orderRoutes.POST("/fulfillment/retry", admin, ctrl.Order.RetryFulfillmentJob)
	}

	cartRoutes := api.Group("/cart", user)
	{
		cartRoutes.GET("", ctrl.Cart.GetCart)
		cartRoutes.GET("/wishlist", ctrl.Cart.GetWishlist)
		cartRoutes.POST("/add", ctrl.Cart.AddToCart)
		cartRoutes.POST("/update", ctrl.Cart.UpdateCart)
		cartRoutes.POST("/remove", ctrl.Cart.RemoveFromCart)
		cartRoutes.POST("/move-to-wishlist", ctrl.Cart.MoveToWishlist)
		cartRoutes.POST("/validate", ctrl.Cart.ValidateCart)
	}

	addressRoutes := api.Group("/address", user)
	{
		addressRoutes.GET("/list", ctrl.Address.List)
		addressRoutes.POST("/add", ctrl.Address.Add)
		addressRoutes.POST("/update", ctrl.Address.Update)
		addressRoutes.POST("/remove", ctrl.Address.Remove)
		addressRoutes.POST("/primary", ctrl.Address.SetPrimary)
	}

	blogRoutes := api.Group("/blog")
	{
		blogRoutes.GET("/list", ctrl.Blog.List)
		blogRoutes.GET("/:slug", ctrl.Blog.GetBySlug)
		blogRoutes.POST("/add", admin, ctrl.Blog.Add)
		blogRoutes.POST("/edit", admin, ctrl.Blog.Edit)
		blogRoutes.POST("/remove", admin, ctrl.Blog.Remove)
	}

	reviewRoutes := api.Group("/review")
	{
		reviewRoutes.POST("/create", user, ctrl.Review.Create)
		reviewRoutes.POST("/can-review", user, ctrl.Review.CanReview)
		reviewRoutes.POST("/user-review", user, ctrl.Review.UserReview)
		reviewRoutes.GET("/product/:id", ctrl.Review.ListByProduct)
	}

	productRoutes := api.Group("/product")
	{
		productRoutes.GET("/list", ctrl.Product.List)
		productRoutes.POST("/single", ctrl.Product.Single)
		productRoutes.POST("/add", admin, ctrl.Product.Add)
		productRoutes.POST("/update", admin, ctrl.Product.Update)
		productRoutes.POST("/restock", admin, ctrl.Product.Restock)
		productRoutes.POST("/remove", admin, ctrl.Product.Remove)
		productRoutes.POST("/image-upload-url", admin, ctrl.Product.ImageUploadURL)
	}

	api.GET("/dashboard/stats", admin, ctrl.Dashboard.Stats)
}
