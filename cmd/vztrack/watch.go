package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fieldscope/vztrack/internal/syncer"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the shared inbox and merge bundles as they arrive",
	Long: `Runs the merge processor as a daemon: pending bundles are merged at
startup, then the inbox is watched for new deposits until interrupted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		master, err := openMasterStore()
		if err != nil {
			return err
		}
		defer master.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		inbox := sharedInbox()
		watcher := syncer.NewWatcher(syncer.NewProcessor(master, inbox, logger), inbox, logger)
		if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}
