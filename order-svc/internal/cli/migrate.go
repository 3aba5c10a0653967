package cli

import (
	"log"

	"barapp/config"
	"barapp/order-svc/internal/storage"

	"github.com/spf13/cobra"
)

func NewMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:          "migrate",
		Short:        "Create or update the database schema",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			db := config.MustInitPostgres(cfg)
			defer db.Close()

			if err := storage.EnsureSchema(cmd.Context(), db); err != nil {
				return err
			}
			log.Println("Schema is up to date")
			return nil
		},
	}
}
