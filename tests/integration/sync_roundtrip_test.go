// End-to-end sync pipeline scenarios: create, sync, merge, re-edit,
// re-sync, and verify the master store converges without duplicates.
package integration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldscope/vztrack/pkg/types"
)

func TestRoundTrip_CreateSyncMerge(t *testing.T) {
	e := newEnv(t, "jsmith")
	e.createProject(t, "CCR-001", "Fiber Install")

	counts, filename := e.sync(t)
	assert.Equal(t, 1, counts.Projects)
	assert.NotEmpty(t, filename)
	require.Len(t, e.pendingBundles(t), 1)

	reports := e.mergeAll(t)
	require.Len(t, reports, 1)
	assert.Equal(t, 1, reports[0].Created)
	assert.Equal(t, 0, reports[0].Updated)
	assert.True(t, reports[0].Clean())

	got, err := e.master.GetProjectByNaturalKey("CCR-001")
	require.NoError(t, err)
	assert.Equal(t, "Fiber Install", got.Name)
	assert.Equal(t, types.StatusActive, got.Status)
	assert.Equal(t, "jsmith", got.LastSyncedBy)

	// The bundle moves to the archive once consumed.
	assert.Empty(t, e.pendingBundles(t))
	assert.Len(t, e.archivedBundles(t), 1)
}

func TestRoundTrip_UpdateDoesNotDuplicate(t *testing.T) {
	e := newEnv(t, "jsmith")
	localID := e.createProject(t, "CCR-001", "Fiber Install")

	e.sync(t)
	e.mergeAll(t)

	err := e.local.UpdateProject(localID, types.ProjectUpdate{
		Status: strp(types.StatusCompleted),
	})
	require.NoError(t, err)

	counts, _ := e.sync(t)
	assert.Equal(t, 1, counts.Projects)

	reports := e.mergeAll(t)
	require.Len(t, reports, 1)
	assert.Equal(t, 0, reports[0].Created)
	assert.Equal(t, 1, reports[0].Updated)

	projects, err := e.master.ListProjects()
	require.NoError(t, err)
	require.Len(t, projects, 1, "re-merge must upsert, not insert")
	assert.Equal(t, types.StatusCompleted, projects[0].Status)
}

func TestRoundTrip_SyncMarksRowsSynced(t *testing.T) {
	e := newEnv(t, "jsmith")
	localID := e.createProject(t, "CCR-001", "Fiber Install")

	e.sync(t)

	got, err := e.local.GetProject(localID)
	require.NoError(t, err)
	assert.Equal(t, types.SyncSynced, got.SyncStatus)

	// A second sync with nothing dirty deposits nothing.
	_, _, err = syncOnceRaw(e)
	assert.ErrorIs(t, err, types.ErrNothingToSync)
	assert.Len(t, e.pendingBundles(t), 1)
}

func TestRoundTrip_NothingToSyncLeavesInboxEmpty(t *testing.T) {
	e := newEnv(t, "jsmith")

	_, _, err := syncOnceRaw(e)
	assert.ErrorIs(t, err, types.ErrNothingToSync)
	assert.Empty(t, e.pendingBundles(t))
}

func TestRoundTrip_ChildRecordsFollowParent(t *testing.T) {
	e := newEnv(t, "jsmith")
	p1 := e.createProject(t, "CCR-001", "Fiber Install")
	p2 := e.createProject(t, "CCR-002", "Node Upgrade")

	_, err := e.local.AddKPISnapshot(&types.KPISnapshot{
		LocalProjectID: p1,
		SnapshotDate:   "2026-08-28",
		BudgetStatus:   "Green",
		ScheduleStatus: "Green",
		OnTimePercent:  95,
	})
	require.NoError(t, err)

	_, err = e.local.AddDependency(&types.Dependency{
		LocalProjectID:   p2,
		DependsOnLocalID: p1,
		DependencyType:   types.DefaultDependencyType,
	})
	require.NoError(t, err)

	_, err = e.local.AddContact(&types.Contact{
		LocalProjectID: p1,
		Name:           "Dana Ortiz",
		Role:           "Field Engineer",
	})
	require.NoError(t, err)

	counts, _ := e.sync(t)
	assert.Equal(t, 2, counts.Projects)
	assert.Equal(t, 1, counts.KPISnapshots)
	assert.Equal(t, 1, counts.Dependencies)
	assert.Equal(t, 1, counts.Contacts)

	reports := e.mergeAll(t)
	require.Len(t, reports, 1)
	assert.True(t, reports[0].Clean())
	assert.Equal(t, 6, reports[0].Applied.Total())

	parent, err := e.master.GetProjectByNaturalKey("CCR-001")
	require.NoError(t, err)
	snap, err := e.master.LatestKPISnapshot(parent.LocalID)
	require.NoError(t, err)
	assert.Equal(t, "2026-08-28", snap.SnapshotDate)
	assert.InDelta(t, 95, snap.OnTimePercent, 0.001)
}
