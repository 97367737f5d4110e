package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/yashrajoria/storefront-backend/common/middleware"
	"github.com/yashrajoria/storefront-backend/controllers"
	"github.com/yashrajoria/storefront-backend/routes"
	"github.com/yashrajoria/storefront-backend/services"
	"go.uber.org/zap"
)

var withoutWorker bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API and the fulfillment worker",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&withoutWorker, "no-worker", false, "do not run the fulfillment worker in this process")
	rootCmd.AddCommand(serveCmd)
}

// Router builds the HTTP engine over the app's services.
func (a *App) Router(limiter *middleware.RateLimiter) *gin.Engine {
	if a.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	ctrl := routes.Controllers{
		User:      controllers.NewUserController(a.Auth),
		Order:     controllers.NewOrderController(a.Orders, a.Fulfillment),
		Cart:      controllers.NewCartController(a.Carts),
		Address:   controllers.NewAddressController(a.Addresses),
		Blog:      controllers.NewBlogController(a.Blogs),
		Review:    controllers.NewReviewController(a.Reviews),
		Product:   controllers.NewProductController(a.Products, controllers.NewRequestValidator()),
		Dashboard: controllers.NewDashboardController(a.Dashboard),
	}
	return routes.SetupRouter(ctrl, routes.Options{
		Tokens:         a.Tokens,
		Limiter:        limiter,
		Metrics:        a.Metrics,
		Logger:         a.Log,
		AllowedOrigins: a.Config.AllowedOrigins,
		RequestTimeout: 30 * time.Second,
	})
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	app, err := Bootstrap(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			app.Log.Error("failed to close connections", zap.Error(err))
		}
	}()

	limiter := middleware.NewRateLimiter(middleware.PerMinute(app.Config.RateLimitPerMinute), app.Config.RateLimitPerMinute, 10*time.Minute)
	go limiter.RunSweeper(ctx)

	if !withoutWorker {
		worker := services.NewFulfillmentWorker(app.Fulfillment, app.Config.FulfillmentPollInterval, 20, app.Log)
		go worker.Run(ctx)
	}

	srv := &http.Server{
		Addr:              ":" + app.Config.Port,
		Handler:           app.Router(limiter),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		app.Log.Info("storefront API starting", zap.String("port", app.Config.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serveErr:
		return err
	}
	app.Log.Info("shutting down storefront API...")
	cancel()

	shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
	defer done()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	app.Log.Info("storefront API stopped gracefully")
	return nil
}
