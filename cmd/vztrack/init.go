package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fieldscope/vztrack/internal/paths"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the shared master store and sync directories",
	Long: `Creates the master store under the shared root, seeds the default
programs and project types, and creates the sync inbox and archive
directories. Safe to run repeatedly.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		master, err := openMasterStore()
		if err != nil {
			return err
		}
		defer master.Close()

		if err := master.Seed(); err != nil {
			return err
		}
		if err := os.MkdirAll(paths.InboxDir(sharedRoot), 0o755); err != nil {
			return fmt.Errorf("creating inbox: %w", err)
		}
		if err := os.MkdirAll(paths.ArchiveDir(sharedRoot), 0o755); err != nil {
			return fmt.Errorf("creating archive: %w", err)
		}
		if err := os.MkdirAll(localRoot, 0o755); err != nil {
			return fmt.Errorf("creating local root: %w", err)
		}

		fmt.Println("Initialized shared root at", sharedRoot)
		fmt.Println("Master store:", master.Path())
		return nil
	},
}
