package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fieldscope/vztrack/internal/auth"
	"github.com/fieldscope/vztrack/pkg/types"
)

var (
	flagUserFullName string
	flagUserRole     string
	flagUserPassword string
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage master store user accounts",
}

var userAddCmd = &cobra.Command{
	Use:   "add <username>",
	Short: "Create a user account in the master store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hash, err := auth.HashPassword(flagUserPassword)
		if err != nil {
			return err
		}

		master, err := openMasterStore()
		if err != nil {
			return err
		}
		defer master.Close()

		user := &types.User{
			Username:     args[0],
			FullName:     flagUserFullName,
			Role:         flagUserRole,
			PasswordHash: hash,
		}
		id, err := master.CreateUser(user)
		if err != nil {
			return err
		}
		fmt.Printf("Created user %s (id %d, %s)\n", user.Username, id, user.Role)
		return nil
	},
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List user accounts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		master, err := openMasterStore()
		if err != nil {
			return err
		}
		defer master.Close()

		users, err := master.ListUsers()
		if err != nil {
			return err
		}
		return output(users, func() {
			for _, u := range users {
				state := "active"
				if !u.Active {
					state = "inactive"
				}
				fmt.Printf("%-4d %-16s %-24s %-20s %s\n", u.UserID, u.Username, u.FullName, u.Role, state)
			}
		})
	},
}

var userDeactivateCmd = &cobra.Command{
	Use:   "deactivate <username>",
	Short: "Deactivate a user account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		master, err := openMasterStore()
		if err != nil {
			return err
		}
		defer master.Close()

		user, err := master.GetUserByUsername(args[0])
		if err != nil {
			return err
		}
		if err := master.DeactivateUser(user.UserID); err != nil {
			return err
		}
		fmt.Printf("Deactivated user %s\n", user.Username)
		return nil
	},
}

func init() {
	userAddCmd.Flags().StringVar(&flagUserFullName, "full-name", "", "user's full name")
	userAddCmd.Flags().StringVar(&flagUserRole, "role", types.RoleProjectManager, "role: Project Manager or Associate Director")
	userAddCmd.Flags().StringVar(&flagUserPassword, "password", "", "initial password")
	_ = userAddCmd.MarkFlagRequired("password")

	userCmd.AddCommand(userAddCmd)
	userCmd.AddCommand(userListCmd)
	userCmd.AddCommand(userDeactivateCmd)
}
