package auth

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fieldscope/vztrack/internal/store"
	"github.com/fieldscope/vztrack/pkg/types"
)

func newMasterStore(t *testing.T) *store.MasterStore {
	t.Helper()
	s, err := store.OpenMaster(filepath.Join(t.TempDir(), "master_projects.db"))
	if err != nil {
		t.Fatalf("opening master store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seedUser(t *testing.T, master *store.MasterStore, username, password, role string) {
	t.Helper()
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}
	if _, err := master.CreateUser(&types.User{
		Username:     username,
		FullName:     "Test User",
		Role:         role,
		PasswordHash: hash,
	}); err != nil {
		t.Fatalf("creating user: %v", err)
	}
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("hashing: %v", err)
	}
	if hash == "s3cret" {
		t.Error("hash equals plaintext")
	}
	if !VerifyPassword(hash, "s3cret") {
		t.Error("correct password rejected")
	}
	if VerifyPassword(hash, "wrong") {
		t.Error("wrong password accepted")
	}
}

func TestHashPasswordEmpty(t *testing.T) {
	if _, err := HashPassword(""); !errors.Is(err, types.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	master := newMasterStore(t)
	seedUser(t, master, "jsmith", "s3cret", types.RoleProjectManager)
	localRoot := t.TempDir()

	session, err := Authenticate(master, localRoot, "jsmith", "s3cret")
	if err != nil {
		t.Fatalf("authenticating: %v", err)
	}
	if session.User.Username != "jsmith" {
		t.Errorf("username = %q", session.User.Username)
	}
	if !strings.Contains(session.LocalPath, "my_projects_jsmith.db") {
		t.Errorf("local path = %q, want per-user db name", session.LocalPath)
	}
}

func TestAuthenticateWrongPassword(t *testing.T) {
	master := newMasterStore(t)
	seedUser(t, master, "jsmith", "s3cret", types.RoleProjectManager)

	_, err := Authenticate(master, t.TempDir(), "jsmith", "wrong")
	if !errors.Is(err, types.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthenticateUnknownUser(t *testing.T) {
	master := newMasterStore(t)

	_, err := Authenticate(master, t.TempDir(), "ghost", "whatever")
	if !errors.Is(err, types.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestRequireRole(t *testing.T) {
	session := &Session{User: &types.User{Role: types.RoleProjectManager}}

	if err := RequireRole(session, types.RoleProjectManager); err != nil {
		t.Errorf("matching role rejected: %v", err)
	}
	if err := RequireRole(session, types.RoleAssociateDirector); !errors.Is(err, types.ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
	if err := RequireRole(session, types.RoleAssociateDirector, types.RoleProjectManager); err != nil {
		t.Errorf("role in set rejected: %v", err)
	}
}
