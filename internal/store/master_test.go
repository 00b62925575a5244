package store

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/fieldscope/vztrack/pkg/types"
)

func newMasterStore(t *testing.T) *MasterStore {
	t.Helper()
	s, err := OpenMaster(filepath.Join(t.TempDir(), "master_projects.db"))
	if err != nil {
		t.Fatalf("OpenMaster failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestMasterSeedIdempotent(t *testing.T) {
	s := newMasterStore(t)

	if err := s.Seed(); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}
	if err := s.Seed(); err != nil {
		t.Fatalf("second Seed failed: %v", err)
	}

	programs, err := s.ListPrograms()
	if err != nil {
		t.Fatalf("ListPrograms failed: %v", err)
	}
	if len(programs) != 3 {
		t.Errorf("programs = %d, want 3", len(programs))
	}
	projectTypes, err := s.ListProjectTypes()
	if err != nil {
		t.Fatalf("ListProjectTypes failed: %v", err)
	}
	if len(projectTypes) != 5 {
		t.Errorf("project types = %d, want 5", len(projectTypes))
	}
}

func TestMasterUsers(t *testing.T) {
	s := newMasterStore(t)

	u := &types.User{
		Username:     "mreyes",
		FullName:     "Marta Reyes",
		Role:         types.RoleProjectManager,
		PasswordHash: "$2a$10$fakehash",
	}
	id, err := s.CreateUser(u)
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if id == 0 {
		t.Error("expected non-zero user id")
	}

	if _, err := s.CreateUser(u); !errors.Is(err, types.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey for duplicate username, got %v", err)
	}

	bad := &types.User{Username: "x", FullName: "X", Role: "Admin", PasswordHash: "h"}
	if _, err := s.CreateUser(bad); !errors.Is(err, types.ErrInvalidRole) {
		t.Errorf("expected ErrInvalidRole, got %v", err)
	}

	got, err := s.GetUserByUsername("mreyes")
	if err != nil {
		t.Fatalf("GetUserByUsername failed: %v", err)
	}
	if got.Role != types.RoleProjectManager || !got.Active {
		t.Errorf("unexpected user: %+v", got)
	}

	if _, err := s.GetUserByUsername("ghost"); !errors.Is(err, types.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMasterUpsertProjectInsertThenUpdate(t *testing.T) {
	s := newMasterStore(t)

	p := newProject("CCR-001")
	id, created, err := s.UpsertProject(p, "mreyes")
	if err != nil {
		t.Fatalf("UpsertProject (insert) failed: %v", err)
	}
	if !created {
		t.Error("expected created = true on first upsert")
	}

	p.Status = types.StatusCompleted
	p.Notes = "turned up and tested"
	id2, created, err := s.UpsertProject(p, "mreyes")
	if err != nil {
		t.Fatalf("UpsertProject (update) failed: %v", err)
	}
	if created {
		t.Error("expected created = false on second upsert")
	}
	if id2 != id {
		t.Errorf("upsert changed master id: %d -> %d", id, id2)
	}

	got, err := s.GetProjectByNaturalKey("CCR-001")
	if err != nil {
		t.Fatalf("GetProjectByNaturalKey failed: %v", err)
	}
	if got.Status != types.StatusCompleted || got.Notes != "turned up and tested" {
		t.Errorf("mutable fields not updated: %+v", got)
	}
	if got.LastSyncedBy != "mreyes" {
		t.Errorf("last_synced_by = %q, want mreyes", got.LastSyncedBy)
	}

	// Still exactly one row for the natural key.
	all, err := s.ListProjects()
	if err != nil {
		t.Fatalf("ListProjects failed: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("projects = %d, want 1", len(all))
	}
}

func TestMasterUpsertChildrenIdempotent(t *testing.T) {
	s := newMasterStore(t)

	id, _, err := s.UpsertProject(newProject("CCR-001"), "mreyes")
	if err != nil {
		t.Fatalf("UpsertProject failed: %v", err)
	}

	k := &types.KPISnapshot{ProjectCCRNFID: "CCR-001", SnapshotDate: "2026-01-10", OnTimePercent: 92.5}
	for i := 0; i < 2; i++ {
		if err := s.UpsertKPISnapshot(id, k); err != nil {
			t.Fatalf("UpsertKPISnapshot run %d failed: %v", i, err)
		}
	}
	latest, err := s.LatestKPISnapshot(id)
	if err != nil {
		t.Fatalf("LatestKPISnapshot failed: %v", err)
	}
	if latest.OnTimePercent != 92.5 || latest.SnapshotDate != "2026-01-10" {
		t.Errorf("unexpected snapshot: %+v", latest)
	}

	c := &types.Contact{ProjectCCRNFID: "CCR-001", Name: "Dana Wu", Role: "Site Engineer", Email: "dana@example.com"}
	for i := 0; i < 2; i++ {
		if err := s.UpsertContact(id, c); err != nil {
			t.Fatalf("UpsertContact run %d failed: %v", i, err)
		}
	}

	id2, _, err := s.UpsertProject(newProject("CCR-002"), "mreyes")
	if err != nil {
		t.Fatalf("UpsertProject failed: %v", err)
	}
	d := &types.Dependency{ProjectCCRNFID: "CCR-002", DependsOnCCRNFID: "CCR-001", DependencyType: types.DefaultDependencyType}
	for i := 0; i < 2; i++ {
		if err := s.UpsertDependency(id2, id, d); err != nil {
			t.Fatalf("UpsertDependency run %d failed: %v", i, err)
		}
	}
}

func TestMasterActivityLog(t *testing.T) {
	s := newMasterStore(t)

	uid, err := s.CreateUser(&types.User{
		Username: "mreyes", FullName: "Marta Reyes",
		Role: types.RoleProjectManager, PasswordHash: "h",
	})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	if err := s.InsertActivity(&types.Activity{
		UserID: uid, Type: types.ActivitySync, Description: "Synced 3 items to inbox",
	}); err != nil {
		t.Fatalf("InsertActivity failed: %v", err)
	}

	acts, err := s.RecentActivity(uid, 10)
	if err != nil {
		t.Fatalf("RecentActivity failed: %v", err)
	}
	if len(acts) != 1 || acts[0].Type != types.ActivitySync || acts[0].Username != "mreyes" {
		t.Errorf("unexpected activity: %+v", acts)
	}
}

func TestMasterSearchProjectsAndUsers(t *testing.T) {
	s := newMasterStore(t)

	fiber := newProject("CCR-001")
	fiber.Customer = "Acme 5G"
	if _, _, err := s.UpsertProject(fiber, "mreyes"); err != nil {
		t.Fatalf("UpsertProject failed: %v", err)
	}
	node := newProject("NFID-200")
	node.Name = "Node Upgrade"
	if _, _, err := s.UpsertProject(node, "jsmith"); err != nil {
		t.Fatalf("UpsertProject failed: %v", err)
	}

	projects, err := s.SearchProjects("Acme", 10)
	if err != nil {
		t.Fatalf("SearchProjects failed: %v", err)
	}
	if len(projects) != 1 || projects[0].CCRNFID != "CCR-001" {
		t.Errorf("SearchProjects(Acme) = %+v, want CCR-001", projects)
	}
	if projects[0].LastSyncedBy != "mreyes" {
		t.Errorf("last_synced_by = %q, want mreyes", projects[0].LastSyncedBy)
	}

	if _, err := s.CreateUser(&types.User{
		Username: "mreyes", FullName: "Marta Reyes",
		Role: types.RoleProjectManager, PasswordHash: "h",
	}); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	inactive := &types.User{
		Username: "mold", FullName: "Old Marta",
		Role: types.RoleProjectManager, PasswordHash: "h",
	}
	uid, err := s.CreateUser(inactive)
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if err := s.DeactivateUser(uid); err != nil {
		t.Fatalf("DeactivateUser failed: %v", err)
	}

	users, err := s.SearchUsers("Marta", 10)
	if err != nil {
		t.Fatalf("SearchUsers failed: %v", err)
	}
	if len(users) != 1 || users[0].Username != "mreyes" {
		t.Errorf("SearchUsers(Marta) = %+v, want only active mreyes", users)
	}

	byUsername, err := s.SearchUsers("mrey", 10)
	if err != nil {
		t.Fatalf("SearchUsers failed: %v", err)
	}
	if len(byUsername) != 1 {
		t.Errorf("SearchUsers(mrey) = %+v, want one match", byUsername)
	}
}
