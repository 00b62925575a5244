// Package integration exercises the full sync pipeline end to end: local
// store edits, bundle construction, inbox deposit, and merge into the
// shared master store. Each scenario runs against throwaway stores under
// a temp directory, the same layout the CLI creates on first run.
package integration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fieldscope/vztrack/internal/paths"
	"github.com/fieldscope/vztrack/internal/store"
	"github.com/fieldscope/vztrack/internal/syncer"
	"github.com/fieldscope/vztrack/pkg/types"
)

// env is one user's view of the system: a private local store plus the
// shared root holding the inbox, archive, and master store.
type env struct {
	local      *store.LocalStore
	master     *store.MasterStore
	inbox      *syncer.Inbox
	sharedRoot string
	username   string
}

// newEnv provisions a local store for username and a fresh shared root.
func newEnv(t *testing.T, username string) *env {
	t.Helper()
	return newEnvSharing(t, username, t.TempDir())
}

// newEnvSharing provisions a local store for username against an existing
// shared root, so multiple users can target the same inbox and master.
func newEnvSharing(t *testing.T, username, sharedRoot string) *env {
	t.Helper()

	local, err := store.OpenLocal(paths.LocalDBPath(t.TempDir(), username))
	require.NoError(t, err)
	t.Cleanup(func() { local.Close() })

	master, err := store.OpenMaster(paths.MasterDBPath(sharedRoot))
	require.NoError(t, err)
	t.Cleanup(func() { master.Close() })

	return &env{
		local:      local,
		master:     master,
		inbox:      syncer.NewInbox(sharedRoot),
		sharedRoot: sharedRoot,
		username:   username,
	}
}

// createProject adds an Active project to the user's local store.
func (e *env) createProject(t *testing.T, ccrNFID, name string) int64 {
	t.Helper()
	id, err := e.local.CreateProject(&types.Project{
		Name:    name,
		CCRNFID: ccrNFID,
		PMID:    1,
		Status:  types.StatusActive,
	})
	require.NoError(t, err)
	return id
}

// sync builds the user's pending changes into a bundle and deposits it.
func (e *env) sync(t *testing.T) (types.BundleCounts, string) {
	t.Helper()
	counts, filename, err := syncer.Sync(e.local, e.inbox, e.username, zap.NewNop())
	require.NoError(t, err)
	return counts, filename
}

// syncOnceRaw runs a sync without asserting success, for scenarios that
// expect an error such as ErrNothingToSync.
func syncOnceRaw(e *env) (types.BundleCounts, string, error) {
	return syncer.Sync(e.local, e.inbox, e.username, zap.NewNop())
}

// mergeAll processes every pending bundle into the master store.
func (e *env) mergeAll(t *testing.T) []*syncer.MergeReport {
	t.Helper()
	reports, err := syncer.NewProcessor(e.master, e.inbox, zap.NewNop()).ProcessAll()
	require.NoError(t, err)
	return reports
}

// pendingBundles lists the inbox files not yet consumed by a merge.
func (e *env) pendingBundles(t *testing.T) []string {
	t.Helper()
	names, err := e.inbox.ListPending()
	require.NoError(t, err)
	return names
}

// archivedBundles lists consumed bundle files in the archive directory.
func (e *env) archivedBundles(t *testing.T) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(e.inbox.ArchiveDir(), "*.json"))
	require.NoError(t, err)
	return matches
}

// depositGarbage drops an unparseable file into the inbox under name.
func depositGarbage(t *testing.T, e *env, name string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(e.inbox.Dir(), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(e.inbox.Dir(), name), []byte("{not json"), 0o644))
}

func strp(s string) *string { return &s }
