package syncer

import (
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/fieldscope/vztrack/internal/store"
	"github.com/fieldscope/vztrack/pkg/types"
)

func newLocalStore(t *testing.T) *store.LocalStore {
	t.Helper()
	s, err := store.OpenLocal(filepath.Join(t.TempDir(), "my_projects_test.db"))
	if err != nil {
		t.Fatalf("opening local store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func newMasterStore(t *testing.T) *store.MasterStore {
	t.Helper()
	s, err := store.OpenMaster(filepath.Join(t.TempDir(), "master_projects.db"))
	if err != nil {
		t.Fatalf("opening master store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestInbox(t *testing.T) *Inbox {
	t.Helper()
	return NewInbox(t.TempDir())
}

func seedProject(t *testing.T, s *store.LocalStore, ccrNFID, name string) int64 {
	t.Helper()
	id, err := s.CreateProject(&types.Project{
		Name:    name,
		CCRNFID: ccrNFID,
		PMID:    1,
		Status:  types.StatusActive,
	})
	if err != nil {
		t.Fatalf("creating project %s: %v", ccrNFID, err)
	}
	return id
}

func testBundle(username string, projects ...types.Project) *types.SyncBundle {
	return &types.SyncBundle{
		Username:      username,
		SyncTimestamp: "2026-08-28T10:00:00Z",
		Projects:      projects,
	}
}

func nop() *zap.Logger { return zap.NewNop() }
