package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fieldscope/vztrack/internal/activity"
	"github.com/fieldscope/vztrack/internal/store"
	"github.com/fieldscope/vztrack/internal/syncer"
)

var flagMergeAll bool

var mergeCmd = &cobra.Command{
	Use:   "merge [bundle-file]",
	Short: "Merge pending sync bundles into the master store",
	Long: `Applies one named bundle, or with --all every pending bundle oldest
first, to the master store. Merged bundles move to the archive; bundles that
cannot be read stay in the inbox.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !flagMergeAll && len(args) == 0 {
			return fmt.Errorf("name a bundle file or pass --all")
		}

		master, err := openMasterStore()
		if err != nil {
			return err
		}
		defer master.Close()

		proc := syncer.NewProcessor(master, sharedInbox(), logger)

		var reports []*syncer.MergeReport
		if flagMergeAll {
			reports, err = proc.ProcessAll()
		} else {
			var report *syncer.MergeReport
			report, err = proc.ProcessOne(args[0])
			if report != nil {
				reports = append(reports, report)
			}
		}

		logMergeActivity(master, reports)
		if flagJSON {
			if perr := printJSON(reports); perr != nil {
				return perr
			}
		} else {
			printMergeReports(reports)
		}
		return err
	},
}

func printMergeReports(reports []*syncer.MergeReport) {
	for _, r := range reports {
		fmt.Printf("%s (%s): %d applied, %d created, %d updated\n",
			r.File, r.Username, r.Applied.Total(), r.Created, r.Updated)
		for _, c := range r.Conflicts {
			fmt.Printf("  conflict: %s previously merged by %s, overwritten by %s\n",
				c.CCRNFID, c.PreviousUser, c.IncomingUser)
		}
		for _, skip := range r.Skipped {
			fmt.Printf("  skipped %s %s: %s\n", skip.Collection, skip.NaturalKey, skip.Reason)
		}
	}
}

// logMergeActivity records each merged bundle against the admin running the
// merge. Skipped silently when the acting user has no master store account.
func logMergeActivity(master *store.MasterStore, reports []*syncer.MergeReport) {
	username, err := currentUsername()
	if err != nil {
		return
	}
	user, err := master.GetUserByUsername(username)
	if err != nil {
		return
	}
	log := activity.NewLogger(master, user.UserID, logger)
	for _, r := range reports {
		log.Merged(r.File, r.Applied.Total(), len(r.Skipped))
	}
}

func init() {
	mergeCmd.Flags().BoolVar(&flagMergeAll, "all", false, "merge every pending bundle")
}
