package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "Storefront API server",
	Long: `storefront serves the shop's JSON API: catalog, cart, checkout with
Razorpay or Stripe, accounts, reviews and the blog.

Run "storefront serve" for the HTTP server with the in-process fulfillment
worker, or "storefront fulfillment-worker" to drain the outbox on its own.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
