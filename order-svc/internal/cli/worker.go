package cli

import (
	"fmt"
	"strings"

	"barapp/config"
	"barapp/order-svc/internal/domain"
	"barapp/order-svc/internal/storage"

	"github.com/spf13/cobra"
)

// NewWorkerCommand registers staff members whose display names are copied
// onto orders when they handle a payment.
func NewWorkerCommand() *cobra.Command {
	var worker domain.Worker
	var role string

	cmd := &cobra.Command{
		Use:          "worker",
		Short:        "Add or update a restaurant worker",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			worker.Role = domain.Role(strings.ToUpper(role))
			if !worker.Role.Valid() {
				return fmt.Errorf("invalid role %q", role)
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			db := config.MustInitPostgres(cfg)
			defer db.Close()

			if err := storage.NewPostgresRepository(db).UpsertWorker(cmd.Context(), worker); err != nil {
				return fmt.Errorf("save worker: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "worker %s saved for restaurant %s\n", worker.ID, worker.RestaurantID)
			return nil
		},
	}

	cmd.Flags().StringVar(&worker.RestaurantID, "restaurant", "", "restaurant id (required)")
	cmd.Flags().StringVar(&worker.ID, "id", "", "worker id (required)")
	cmd.Flags().StringVar(&worker.DisplayName, "name", "", "display name (required)")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleWaiter), "worker role")
	_ = cmd.MarkFlagRequired("restaurant")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}
