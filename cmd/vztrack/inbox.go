package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var inboxCmd = &cobra.Command{
	Use:   "inbox",
	Short: "List sync bundles waiting to be merged",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		inbox := sharedInbox()
		names, err := inbox.ListPending()
		if err != nil {
			return err
		}
		if len(names) == 0 {
			fmt.Println("Inbox is empty.")
			return nil
		}

		type entry struct {
			File     string `json:"file"`
			Username string `json:"username"`
			Items    int    `json:"items"`
		}
		var entries []entry
		for _, name := range names {
			e := entry{File: name}
			if bundle, err := inbox.Read(name); err == nil {
				e.Username = bundle.Username
				e.Items = bundle.Total()
			}
			entries = append(entries, e)
		}
		return output(entries, func() {
			for _, e := range entries {
				if e.Username == "" {
					fmt.Printf("%-48s (unreadable)\n", e.File)
					continue
				}
				fmt.Printf("%-48s %-16s %d items\n", e.File, e.Username, e.Items)
			}
		})
	},
}
