package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/yashrajoria/storefront-backend/common/logger"
	"github.com/yashrajoria/storefront-backend/database"
)

var indexesCmd = &cobra.Command{
	Use:   "ensure-indexes",
	Short: "Create the MongoDB indexes the API relies on",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, _, err := loadConfig(cmd.Context())
		if err != nil {
			return err
		}
		defer logger.Sync()

		m, err := database.ConnectMongo(cfg.MongoURL, cfg.MongoDB, logger.Log)
		if err != nil {
			return err
		}
		defer m.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
		defer cancel()
		if err := database.EnsureIndexes(ctx, m.DB); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "indexes ensured")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(indexesCmd)
}
