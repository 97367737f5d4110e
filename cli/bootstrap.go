package cli

import (
	"context"
	"errors"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/redis/go-redis/v9"
	"github.com/yashrajoria/storefront-backend/cache"
	"github.com/yashrajoria/storefront-backend/common/auth"
	"github.com/yashrajoria/storefront-backend/common/logger"
	"github.com/yashrajoria/storefront-backend/config"
	"github.com/yashrajoria/storefront-backend/database"
	"github.com/yashrajoria/storefront-backend/mailer"
	awspkg "github.com/yashrajoria/storefront-backend/pkg/aws"
	"github.com/yashrajoria/storefront-backend/providers"
	"github.com/yashrajoria/storefront-backend/repository"
	"github.com/yashrajoria/storefront-backend/services"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const cartTTL = 7 * 24 * time.Hour

// App holds every wired dependency of the storefront process.
type App struct {
	Config *config.Config
	Log    *zap.Logger
	Tokens *auth.TokenManager

	Metrics awspkg.Recorder

	Auth        *services.AuthService
	Orders      *services.OrderService
	Fulfillment *services.FulfillmentService
	Carts       *services.CartService
	Addresses   *services.AddressService
	Blogs       *services.BlogService
	Reviews     *services.ReviewService
	Products    *services.ProductService
	Dashboard   *services.DashboardService

	mongo    *database.Mongo
	redis    *redis.Client
	postgres *gorm.DB
	awsCfg   *sdkaws.Config
}

// loadConfig reads configuration and sets up the global logger, teeing to
// CloudWatch Logs when enabled.
func loadConfig(ctx context.Context) (*config.Config, *sdkaws.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, err
	}

	var awsCfg *sdkaws.Config
	if loaded, err := awspkg.LoadAWSConfig(ctx, cfg.AWS()); err == nil {
		awsCfg = &loaded
	}

	if cfg.CloudWatchEnabled && awsCfg != nil {
		sink, err := awspkg.NewCloudWatchLogsWriter(ctx, *awsCfg, cfg.CloudWatchLogGroup, "storefront")
		if err == nil {
			logger.InitializeWithWriter(cfg.Env, sink)
			return cfg, awsCfg, nil
		}
		logger.Initialize(cfg.Env)
		logger.Log.Warn("CloudWatch log shipping disabled", zap.Error(err))
		return cfg, awsCfg, nil
	}
	logger.Initialize(cfg.Env)
	if awsCfg == nil {
		logger.Log.Warn("AWS config unavailable; SNS, SQS, S3 and CloudWatch are disabled")
	}
	return cfg, awsCfg, nil
}

// Bootstrap connects the stores and builds every service. Only MongoDB is
// mandatory; the other backends degrade with a warning.
func Bootstrap(ctx context.Context) (*App, error) {
	cfg, awsCfg, err := loadConfig(ctx)
	if err != nil {
		return nil, err
	}
	log := logger.Log
	app := &App{Config: cfg, Log: log, awsCfg: awsCfg}

	app.mongo, err = database.ConnectMongo(cfg.MongoURL, cfg.MongoDB, log)
	if err != nil {
		return nil, err
	}
	db := app.mongo.DB
	if err := database.EnsureIndexes(ctx, db); err != nil {
		log.Warn("failed to ensure indexes", zap.Error(err))
	}

	app.Metrics = awspkg.NopRecorder{}
	if awsCfg != nil {
		app.Metrics = awspkg.NewMetricsClient(*awsCfg, cfg.CloudWatchNamespace, cfg.CloudWatchEnabled)
	}

	products := repository.NewProductRepository(db)
	orders := repository.NewOrderRepository(db)
	users := repository.NewUserRepository(db)
	reviews := repository.NewReviewRepository(db)
	blogs := repository.NewBlogRepository(db)
	jobs := repository.NewFulfillmentJobRepository(db)

	var carts repository.CartRepo
	var blogCache cache.ListCache
	if client, err := database.ConnectRedis(cfg.RedisURL); err == nil {
		app.redis = client
		carts = repository.NewCartRepository(client, cartTTL)
		blogCache = cache.NewRedisListCache(client, "blogs", cfg.BlogCacheTTL, log)
	} else {
		log.Warn("Redis unavailable, using in-process cart store and blog cache", zap.Error(err))
		carts = repository.NewMemoryCartRepository()
		blogCache = cache.NewMemoryListCache(cfg.BlogCacheTTL)
	}

	var payments repository.PaymentRepo
	if cfg.PostgresEnabled() {
		if pg, err := database.ConnectPostgres(cfg.PostgresDSN()); err == nil {
			app.postgres = pg
			payments = repository.NewPaymentRepository(pg)
		} else {
			log.Warn("payment ledger disabled", zap.Error(err))
		}
	}

	mail := mailer.New(app.emailSender(), cfg.StoreName)
	app.Tokens = auth.NewTokenManager(cfg.JWTSecret, cfg.UserTokenTTL, cfg.AdminTokenTTL)

	var google providers.IdentityVerifier
	if cfg.GoogleClientID != "" {
		google = providers.NewGoogleVerifier(cfg.GoogleClientID)
	}
	app.Auth = services.NewAuthService(users, app.Tokens, mail, google, cfg.AdminEmail, cfg.AdminPassword, log)

	if cfg.FulfillmentURL == "" {
		log.Warn("FULFILLMENT_API_URL not set; orders will queue in the fulfillment outbox")
	}
	app.Fulfillment = services.NewFulfillmentService(
		providers.NewDepoterClient(cfg.FulfillmentURL, cfg.FulfillmentAPIKey),
		orders, jobs, app.Metrics, cfg.FulfillmentMaxAttempts, log,
	)

	app.Carts = services.NewCartService(carts, products, users, log)
	app.Addresses = services.NewAddressService(users)
	app.Blogs = services.NewBlogService(blogs, blogCache, app.Metrics, log)
	app.Reviews = services.NewReviewService(reviews, orders, users, cfg.ReviewRequirePurchase, log)
	app.Dashboard = services.NewDashboardService(orders, products, jobs, cfg.LowStockThreshold)

	var presigner services.ImagePresigner
	if awsCfg != nil && cfg.S3Bucket != "" {
		presigner = awspkg.NewS3Presigner(*awsCfg, cfg.S3Bucket, cfg.S3PublicBaseURL)
	}
	app.Products = services.NewProductService(products, presigner, log)

	deps := services.OrderDeps{
		Products:       products,
		Orders:         orders,
		Users:          users,
		Payments:       payments,
		Carts:          app.Carts,
		Fulfillment:    app.Fulfillment,
		Metrics:        app.Metrics,
		Mail:           mail,
		RazorpaySecret: cfg.RazorpayKeySecret,
		Currency:       cfg.Currency,
		EventsTopicARN: cfg.OrderEventsTopicARN,
		FrontendURL:    cfg.FrontendURL,
	}
	if cfg.RazorpayKeyID != "" && cfg.RazorpayKeySecret != "" {
		deps.Razorpay = providers.NewRazorpayGateway(cfg.RazorpayKeyID, cfg.RazorpayKeySecret, cfg.RazorpayBaseURL)
	}
	if cfg.StripeSecretKey != "" {
		deps.Stripe = providers.NewStripeGateway(cfg.StripeSecretKey)
	}
	if awsCfg != nil && cfg.OrderEventsTopicARN != "" {
		deps.Events = awspkg.NewSNSClient(*awsCfg)
	}
	app.Orders = services.NewOrderService(deps, log)

	return app, nil
}

// emailSender prefers the notification queue, then SMTP, then logging only.
func (a *App) emailSender() mailer.EmailSender {
	cfg := a.Config
	if cfg.NotificationQueueURL != "" && a.awsCfg != nil {
		return mailer.NewQueueSender(awspkg.NewSQSSender(*a.awsCfg, cfg.NotificationQueueURL))
	}
	if cfg.SMTPUser != "" {
		smtpSender, err := mailer.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPFrom)
		if err == nil {
			return smtpSender
		}
		a.Log.Warn("SMTP disabled", zap.Error(err))
	}
	a.Log.Warn("no email transport configured; emails are only logged")
	return mailer.NewLogSender(a.Log)
}

// Close releases every connection opened by Bootstrap.
func (a *App) Close() error {
	var errs []error
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.postgres != nil {
		if sqlDB, err := a.postgres.DB(); err == nil {
			errs = append(errs, sqlDB.Close())
		}
	}
	if a.mongo != nil {
		errs = append(errs, a.mongo.Close())
	}
	logger.Sync()
	return errors.Join(errs...)
}
