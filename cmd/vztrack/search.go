package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fieldscope/vztrack/internal/store"
	"github.com/fieldscope/vztrack/pkg/types"
)

var flagSearchLimit int

// searchResults groups the master-store matches for JSON output.
type searchResults struct {
	Projects []store.MasterProject `json:"projects"`
	Users    []types.User          `json:"users"`
}

var searchCmd = &cobra.Command{
	Use:   "search <term>",
	Short: "Search the shared master store for projects and users",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		master, err := openMasterStore()
		if err != nil {
			return err
		}
		defer master.Close()

		projects, err := master.SearchProjects(args[0], flagSearchLimit)
		if err != nil {
			return err
		}
		users, err := master.SearchUsers(args[0], flagSearchLimit)
		if err != nil {
			return err
		}

		results := searchResults{Projects: projects, Users: users}
		return output(results, func() {
			if len(projects) == 0 && len(users) == 0 {
				fmt.Println("No matches.")
				return
			}
			for _, p := range projects {
				fmt.Printf("project %-4d %-12s %-32s %-10s %s\n",
					p.LocalID, p.CCRNFID, p.Name, p.Status, p.LastSyncedBy)
			}
			for _, u := range users {
				fmt.Printf("user    %-4d %-12s %-24s %s\n",
					u.UserID, u.Username, u.FullName, u.Role)
			}
		})
	},
}

func init() {
	searchCmd.Flags().IntVar(&flagSearchLimit, "limit", 10, "maximum results per kind")
}
