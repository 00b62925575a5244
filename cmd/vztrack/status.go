package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show how many local rows are waiting to sync",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		local, username, err := openLocalStore()
		if err != nil {
			return err
		}
		defer local.Close()

		counts, err := local.PendingCounts()
		if err != nil {
			return err
		}
		return output(counts, func() {
			fmt.Printf("Pending changes for %s:\n", username)
			fmt.Printf("  projects:      %d\n", counts.Projects)
			fmt.Printf("  kpi snapshots: %d\n", counts.KPISnapshots)
			fmt.Printf("  dependencies:  %d\n", counts.Dependencies)
			fmt.Printf("  contacts:      %d\n", counts.Contacts)
			fmt.Printf("  total:         %d\n", counts.Total())
		})
	},
}
