// Multi-user merge scenarios: idempotent reprocessing and cross-user
// collision handling on the shared master store.
package integration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fieldscope/vztrack/internal/syncer"
	"github.com/fieldscope/vztrack/pkg/types"
)

func TestMerge_DoubleMergeIsIdempotent(t *testing.T) {
	e := newEnv(t, "jsmith")
	e.createProject(t, "CCR-001", "Fiber Install")
	_, filename := e.sync(t)

	// Merge the same bundle twice without archiving in between, as an
	// administrator retrying after a partial failure would.
	bundle, err := e.inbox.Read(filename)
	require.NoError(t, err)

	first := syncer.Merge(e.master, bundle)
	assert.Equal(t, 1, first.Created)

	second := syncer.Merge(e.master, bundle)
	assert.Equal(t, 0, second.Created)
	assert.Equal(t, 1, second.Updated)
	assert.Empty(t, second.Conflicts, "same user re-merging is not a conflict")

	projects, err := e.master.ListProjects()
	require.NoError(t, err)
	assert.Len(t, projects, 1)
}

func TestMerge_CrossUserCollisionIsFlagged(t *testing.T) {
	shared := t.TempDir()
	alice := newEnvSharing(t, "alice", shared)
	bob := newEnvSharing(t, "bob", shared)

	alice.createProject(t, "CCR-999", "Tower Lease")
	alice.sync(t)
	alice.mergeAll(t)

	bobID := bob.createProject(t, "CCR-999", "Tower Lease")
	err := bob.local.UpdateProject(bobID, types.ProjectUpdate{
		Status: strp(types.StatusOnHold),
	})
	require.NoError(t, err)
	bob.sync(t)

	reports := bob.mergeAll(t)
	require.Len(t, reports, 1)
	require.Len(t, reports[0].Conflicts, 1)
	assert.Equal(t, "CCR-999", reports[0].Conflicts[0].CCRNFID)
	assert.Equal(t, "alice", reports[0].Conflicts[0].PreviousUser)
	assert.Equal(t, "bob", reports[0].Conflicts[0].IncomingUser)

	// Last merge wins; the collision is surfaced, not silently dropped.
	got, err := bob.master.GetProjectByNaturalKey("CCR-999")
	require.NoError(t, err)
	assert.Equal(t, types.StatusOnHold, got.Status)
	assert.Equal(t, "bob", got.LastSyncedBy)
}

func TestMerge_MalformedBundleStaysPending(t *testing.T) {
	e := newEnv(t, "jsmith")
	e.createProject(t, "CCR-001", "Fiber Install")
	e.sync(t)
	depositGarbage(t, e, "sync_mallory_20260828_090000.json")

	proc := syncer.NewProcessor(e.master, e.inbox, zap.NewNop())
	reports, err := proc.ProcessAll()
	require.Error(t, err)
	require.Len(t, reports, 1, "the good bundle still merges")

	// The unreadable file is left in place for the administrator.
	pending := e.pendingBundles(t)
	require.Len(t, pending, 1)
	assert.Equal(t, "sync_mallory_20260828_090000.json", pending[0])
}
