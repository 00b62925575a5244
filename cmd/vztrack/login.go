package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fieldscope/vztrack/internal/activity"
	"github.com/fieldscope/vztrack/internal/auth"
	"github.com/fieldscope/vztrack/internal/store"
)

var flagLoginPassword string

var loginCmd = &cobra.Command{
	Use:   "login <username>",
	Short: "Verify credentials and open the user's local store",
	Long: `Checks the username and password against the master store, creates
the user's local store if it does not exist yet, and records the login in
the activity log.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		master, err := openMasterStore()
		if err != nil {
			return err
		}
		defer master.Close()

		session, err := auth.Authenticate(master, localRoot, args[0], flagLoginPassword)
		if err != nil {
			return err
		}

		local, err := store.OpenLocal(session.LocalPath)
		if err != nil {
			return err
		}
		defer local.Close()

		activity.NewLogger(master, session.User.UserID, logger).Login(session.User.Username)

		fmt.Printf("Logged in as %s (%s)\n", session.User.Username, session.User.Role)
		fmt.Println("Local store:", session.LocalPath)
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&flagLoginPassword, "password", "", "password")
	_ = loginCmd.MarkFlagRequired("password")
}
