package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	awspkg "github.com/yashrajoria/storefront-backend/pkg/aws"
)

// Config holds every setting the storefront reads from the environment.
type Config struct {
	Env       string
	Port      string
	StoreName string

	MongoURL string
	MongoDB  string
	RedisURL string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	JWTSecret     string
	UserTokenTTL  time.Duration
	AdminTokenTTL time.Duration
	AdminEmail    string
	AdminPassword string

	GoogleClientID string

	RazorpayKeyID     string
	RazorpayKeySecret string
	RazorpayBaseURL   string
	Currency          string

	StripeSecretKey string
	FrontendURL     string

	FulfillmentURL          string
	FulfillmentAPIKey       string
	FulfillmentPollInterval time.Duration
	FulfillmentMaxAttempts  int

	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string

	AWSRegion            string
	AWSEndpoint          string
	OrderEventsTopicARN  string
	NotificationQueueURL string
	S3Bucket             string
	S3PublicBaseURL      string
	CloudWatchEnabled    bool
	CloudWatchNamespace  string
	CloudWatchLogGroup   string

	AllowedOrigins        string
	RateLimitPerMinute    int
	BlogCacheTTL          time.Duration
	LowStockThreshold     int
	ReviewRequirePurchase bool
}

// LoadConfig reads .env (if present) and the process environment. With
// AWS_USE_SECRETS=true the sensitive values are overridden from Secrets
// Manager; env values remain the fallback when a lookup fails.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env:       getEnv("APP_ENV", "development"),
		Port:      getEnv("PORT", "4000"),
		StoreName: getEnv("STORE_NAME", "Storefront"),

		MongoURL: os.Getenv("MONGO_URL"),
		MongoDB:  getEnv("MONGO_DB", "storefront"),
		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),

		PostgresHost:     os.Getenv("POSTGRES_HOST"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       getEnv("POSTGRES_DB", "storefront"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		JWTSecret:     os.Getenv("JWT_SECRET"),
		UserTokenTTL:  getDuration("USER_TOKEN_TTL", 7*24*time.Hour),
		AdminTokenTTL: getDuration("ADMIN_TOKEN_TTL", 12*time.Hour),
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),

		GoogleClientID: os.Getenv("GOOGLE_CLIENT_ID"),

		RazorpayKeyID:     os.Getenv("RAZORPAY_KEY_ID"),
		RazorpayKeySecret: os.Getenv("RAZORPAY_KEY_SECRET"),
		RazorpayBaseURL:   getEnv("RAZORPAY_BASE_URL", "https://api.razorpay.com"),
		Currency:          getEnv("CURRENCY", "INR"),

		StripeSecretKey: os.Getenv("STRIPE_SECRET_KEY"),
		FrontendURL:     getEnv("FRONTEND_URL", "http://localhost:5173"),

		FulfillmentURL:          os.Getenv("FULFILLMENT_API_URL"),
		FulfillmentAPIKey:       os.Getenv("FULFILLMENT_API_KEY"),
		FulfillmentPollInterval: getDuration("FULFILLMENT_POLL_INTERVAL", 30*time.Second),
		FulfillmentMaxAttempts:  getInt("FULFILLMENT_MAX_ATTEMPTS", 8),

		SMTPHost:     getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:     getEnv("SMTP_PORT", "587"),
		SMTPUser:     os.Getenv("SMTP_USER"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:     os.Getenv("SMTP_FROM"),

		AWSRegion:            getEnv("AWS_REGION", "ap-south-1"),
		AWSEndpoint:          os.Getenv("AWS_ENDPOINT"),
		OrderEventsTopicARN:  os.Getenv("ORDER_EVENTS_TOPIC_ARN"),
		NotificationQueueURL: os.Getenv("NOTIFICATION_QUEUE_URL"),
		S3Bucket:             os.Getenv("AWS_S3_BUCKET"),
		S3PublicBaseURL:      os.Getenv("AWS_S3_PUBLIC_URL"),
		CloudWatchEnabled:    os.Getenv("CLOUDWATCH_ENABLED") == "true",
		CloudWatchNamespace:  getEnv("CLOUDWATCH_NAMESPACE", "Storefront"),
		CloudWatchLogGroup:   getEnv("CLOUDWATCH_LOG_GROUP", "/storefront/api"),

		AllowedOrigins:        os.Getenv("ALLOWED_ORIGINS"),
		RateLimitPerMinute:    getInt("RATE_LIMIT_PER_MINUTE", 120),
		BlogCacheTTL:          getDuration("BLOG_CACHE_TTL", 60*time.Second),
		LowStockThreshold:     getInt("LOW_STOCK_THRESHOLD", 5),
		ReviewRequirePurchase: getEnv("REVIEW_REQUIRE_PURCHASE", "true") == "true",
	}

	if cfg.SMTPFrom == "" {
		cfg.SMTPFrom = cfg.SMTPUser
	}

	if os.Getenv("AWS_USE_SECRETS") == "true" {
		cfg.applySecrets(context.Background())
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings the process cannot start without.
func (c *Config) Validate() error {
	if c.MongoURL == "" {
		return fmt.Errorf("MONGO_URL is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	return nil
}

// PostgresEnabled reports whether the payment ledger database is configured.
func (c *Config) PostgresEnabled() bool {
	return c.PostgresHost != "" && c.PostgresUser != ""
}

// PostgresDSN builds the GORM postgres DSN.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.PostgresHost, c.PostgresUser, c.PostgresPassword, c.PostgresDB, c.PostgresPort, c.PostgresSSLMode)
}

// AWS returns the settings used to build SDK clients.
func (c *Config) AWS() awspkg.Settings {
	return awspkg.Settings{Region: c.AWSRegion, Endpoint: c.AWSEndpoint}
}

func (c *Config) applySecrets(ctx context.Context) {
	awsCfg, err := awspkg.LoadAWSConfig(ctx, c.AWS())
	if err != nil {
		return
	}
	sm := awspkg.NewSecretsClient(awsCfg)

	overrides := map[string]*string{
		"storefront/JWT_SECRET":          &c.JWTSecret,
		"storefront/RAZORPAY_KEY_SECRET": &c.RazorpayKeySecret,
		"storefront/STRIPE_SECRET_KEY":   &c.StripeSecretKey,
		"storefront/FULFILLMENT_API_KEY": &c.FulfillmentAPIKey,
		"storefront/SMTP_PASSWORD":       &c.SMTPPassword,
		"storefront/ADMIN_PASSWORD":      &c.AdminPassword,
	}
	for name, dst := range overrides {
		if v, err := sm.GetSecret(ctx, name); err == nil && v != "" {
			*dst = v
		}
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil && v > 0 {
		return v
	}
	return fallback
}
