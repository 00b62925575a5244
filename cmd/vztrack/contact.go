package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/fieldscope/vztrack/pkg/types"
)

var (
	flagContactName  string
	flagContactRole  string
	flagContactEmail string
)

var contactCmd = &cobra.Command{
	Use:   "contact",
	Short: "Manage project contacts in your local store",
}

var contactAddCmd = &cobra.Command{
	Use:   "add <local-project-id>",
	Short: "Attach a contact to a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		projectID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid local project id %q", args[0])
		}

		local, _, err := openLocalStore()
		if err != nil {
			return err
		}
		defer local.Close()

		id, err := local.AddContact(&types.Contact{
			LocalProjectID: projectID,
			Name:           flagContactName,
			Role:           flagContactRole,
			Email:          flagContactEmail,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Added contact %d (%s) to project %d\n", id, flagContactName, projectID)
		return nil
	},
}

func init() {
	contactAddCmd.Flags().StringVar(&flagContactName, "name", "", "contact name (required)")
	contactAddCmd.Flags().StringVar(&flagContactRole, "role", "", "contact role, e.g. Site Lead")
	contactAddCmd.Flags().StringVar(&flagContactEmail, "email", "", "contact email")
	_ = contactAddCmd.MarkFlagRequired("name")

	contactCmd.AddCommand(contactAddCmd)
}
