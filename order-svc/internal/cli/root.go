package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCommand creates the root command for the barapp order service.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "barapp",
		Short: "Restaurant order lifecycle service",
		Long:  "Tracks table and delivery orders, notifies kitchen and floor terminals, and derives sales analytics.",
	}

	cmd.AddCommand(NewServeCommand())
	cmd.AddCommand(NewMigrateCommand())
	cmd.AddCommand(NewWorkerCommand())

	return cmd
}
