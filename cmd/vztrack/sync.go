package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fieldscope/vztrack/internal/activity"
	"github.com/fieldscope/vztrack/internal/syncer"
	"github.com/fieldscope/vztrack/pkg/types"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Package pending changes and drop them in the shared inbox",
	Long: `Builds a sync bundle from every local row still marked new or
updated, writes it to the shared inbox, and marks those rows synced. With no
pending changes, no bundle file is written.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		local, username, err := openLocalStore()
		if err != nil {
			return err
		}
		defer local.Close()

		counts, filename, err := syncer.Sync(local, sharedInbox(), username, logger)
		if errors.Is(err, types.ErrNothingToSync) {
			fmt.Println("Nothing to sync.")
			return nil
		}
		if err != nil {
			return err
		}

		// Best effort: the activity log lives in the master store, which may
		// be unreachable even though the inbox share is not.
		if master, merr := openMasterStore(); merr == nil {
			if user, uerr := master.GetUserByUsername(username); uerr == nil {
				activity.NewLogger(master, user.UserID, logger).Synced(filename, counts.Total())
			}
			master.Close()
		}

		fmt.Printf("Synced %d items to %s\n", counts.Total(), filename)
		fmt.Printf("  projects %d, kpi snapshots %d, dependencies %d, contacts %d\n",
			counts.Projects, counts.KPISnapshots, counts.Dependencies, counts.Contacts)
		return nil
	},
}
