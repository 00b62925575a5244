package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is the CLI version, overridable at build time with -ldflags.
var version = "0.1.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the vztrack version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("vztrack", version)
	},
}
