// Package main provides the vztrack CLI: per-user offline project tracking,
// sync bundle exchange over a shared directory, admin-driven merging into
// the master store, and a thin REST backend over the external reporting API.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fieldscope/vztrack/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCodeFor(err))
	}
}

// exitCodeFor distinguishes user mistakes from system failures: bad input
// and validation problems exit 1, connectivity and storage failures exit 2.
func exitCodeFor(err error) int {
	if errors.Is(err, types.ErrStoreUnavailable) {
		return exitSysError
	}
	return exitUserError
}
