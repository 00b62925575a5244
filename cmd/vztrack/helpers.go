// Shared helpers for vztrack CLI commands.
package main

import (
	"encoding/json"
	"os"

	"github.com/fieldscope/vztrack/internal/paths"
	"github.com/fieldscope/vztrack/internal/store"
	"github.com/fieldscope/vztrack/internal/syncer"
)

// openLocalStore opens the acting user's personal store, creating it on
// first use. The caller must Close it.
func openLocalStore() (*store.LocalStore, string, error) {
	username, err := currentUsername()
	if err != nil {
		return nil, "", err
	}
	s, err := store.OpenLocal(paths.LocalDBPath(localRoot, username))
	if err != nil {
		return nil, "", err
	}
	return s, username, nil
}

// openMasterStore opens the shared master store. The caller must Close it.
func openMasterStore() (*store.MasterStore, error) {
	return store.OpenMaster(paths.MasterDBPath(sharedRoot))
}

// sharedInbox returns the sync inbox on the shared root.
func sharedInbox() *syncer.Inbox {
	return syncer.NewInbox(sharedRoot)
}

// printJSON writes v as indented JSON to stdout.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// output prints v as JSON when --json is set, otherwise calls text.
func output(v any, text func()) error {
	if flagJSON {
		return printJSON(v)
	}
	text()
	return nil
}

// strPtr returns a pointer to s when the flag was set, nil otherwise.
func strPtr(changed bool, s string) *string {
	if !changed {
		return nil
	}
	return &s
}
