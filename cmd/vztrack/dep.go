package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/fieldscope/vztrack/pkg/types"
)

var (
	flagDepType  string
	flagDepNotes string
)

var depCmd = &cobra.Command{
	Use:   "dep",
	Short: "Manage project dependencies in your local store",
}

var depAddCmd = &cobra.Command{
	Use:   "add <local-project-id> <depends-on-local-id>",
	Short: "Record that one project depends on another",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		projectID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid local project id %q", args[0])
		}
		dependsOnID, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid depends-on id %q", args[1])
		}

		local, _, err := openLocalStore()
		if err != nil {
			return err
		}
		defer local.Close()

		id, err := local.AddDependency(&types.Dependency{
			LocalProjectID:   projectID,
			DependsOnLocalID: dependsOnID,
			DependencyType:   flagDepType,
			Notes:            flagDepNotes,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Added dependency %d: project %d depends on %d\n", id, projectID, dependsOnID)
		return nil
	},
}

func init() {
	depAddCmd.Flags().StringVar(&flagDepType, "type", types.DefaultDependencyType, "dependency type")
	depAddCmd.Flags().StringVar(&flagDepNotes, "notes", "", "free-text notes")

	depCmd.AddCommand(depAddCmd)
}
