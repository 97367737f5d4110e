package cli

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/yashrajoria/storefront-backend/services"
	"go.uber.org/zap"
)

var (
	workerBatch int
	workerOnce  bool
)

var workerCmd = &cobra.Command{
	Use:   "fulfillment-worker",
	Short: "Deliver queued orders to the fulfillment API",
	Long: `fulfillment-worker polls the fulfillment outbox and retries orders whose
dispatch failed at checkout, with exponential backoff. Use --once to run a
single sweep, e.g. from a cron job.`,
	RunE: runWorker,
}

func init() {
	workerCmd.Flags().IntVar(&workerBatch, "batch", 20, "maximum jobs per sweep")
	workerCmd.Flags().BoolVar(&workerOnce, "once", false, "run one sweep and exit")
	rootCmd.AddCommand(workerCmd)
}

func runWorker(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := Bootstrap(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			app.Log.Error("failed to close connections", zap.Error(err))
		}
	}()

	if workerOnce {
		n, err := app.Fulfillment.ProcessPending(ctx, workerBatch)
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		app.Log.Info("fulfillment sweep done", zap.Int("jobs", n))
		return nil
	}

	services.NewFulfillmentWorker(app.Fulfillment, app.Config.FulfillmentPollInterval, workerBatch, app.Log).Run(ctx)
	return nil
}
