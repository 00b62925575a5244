package syncer

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/fieldscope/vztrack/pkg/types"
)

func TestDepositNamesBundleByUserAndTimestamp(t *testing.T) {
	inbox := newTestInbox(t)

	name, err := inbox.Deposit(testBundle("jsmith", types.Project{
		Name: "Fiber Install", CCRNFID: "CCR-001", PMID: 1, Status: types.StatusActive,
	}))
	if err != nil {
		t.Fatalf("depositing: %v", err)
	}

	want := regexp.MustCompile(`^sync_jsmith_\d{8}_\d{6}\.json$`)
	if !want.MatchString(name) {
		t.Errorf("filename %q does not match sync_<user>_<timestamp>.json", name)
	}
	if _, err := os.Stat(filepath.Join(inbox.Dir(), name)); err != nil {
		t.Errorf("deposited file missing: %v", err)
	}
}

func TestDepositCollisionGetsSuffix(t *testing.T) {
	inbox := newTestInbox(t)

	first, err := inbox.Deposit(testBundle("jsmith", types.Project{
		Name: "Fiber Install", CCRNFID: "CCR-001", PMID: 1, Status: types.StatusActive,
	}))
	if err != nil {
		t.Fatalf("first deposit: %v", err)
	}
	second, err := inbox.Deposit(testBundle("jsmith", types.Project{
		Name: "Node Upgrade", CCRNFID: "CCR-002", PMID: 1, Status: types.StatusActive,
	}))
	if err != nil {
		t.Fatalf("second deposit: %v", err)
	}
	if first == second {
		t.Fatalf("second deposit reused name %q", first)
	}

	pending, err := inbox.ListPending()
	if err != nil {
		t.Fatalf("listing pending: %v", err)
	}
	if len(pending) != 2 {
		t.Errorf("pending = %v, want both deposits", pending)
	}

	// The earlier deposit survives the collision untouched.
	kept, err := inbox.Read(first)
	if err != nil {
		t.Fatalf("reading first bundle: %v", err)
	}
	if len(kept.Projects) != 1 || kept.Projects[0].CCRNFID != "CCR-001" {
		t.Errorf("first bundle = %+v, want original CCR-001 contents", kept)
	}
}

func TestDepositNeverOverwritesExistingName(t *testing.T) {
	inbox := newTestInbox(t)
	if err := os.MkdirAll(inbox.Dir(), 0o755); err != nil {
		t.Fatal(err)
	}
	taken := filepath.Join(inbox.Dir(), "sync_jsmith_20260828_100000.json")
	if err := os.WriteFile(taken, []byte(`{"earlier":true}`), 0o644); err != nil {
		t.Fatal(err)
	}

	name, err := inbox.Deposit(testBundle("jsmith"))
	if err != nil {
		t.Fatalf("depositing: %v", err)
	}
	if name == "sync_jsmith_20260828_100000.json" {
		t.Fatalf("deposit reused taken name %q", name)
	}

	data, err := os.ReadFile(taken)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"earlier":true}` {
		t.Errorf("existing file overwritten: %s", data)
	}
}

func TestDepositRejectsInvalidBundle(t *testing.T) {
	inbox := newTestInbox(t)

	_, err := inbox.Deposit(&types.SyncBundle{})
	if !errors.Is(err, types.ErrMalformedBundle) {
		t.Fatalf("expected ErrMalformedBundle, got %v", err)
	}
}

func TestListPendingChronological(t *testing.T) {
	inbox := newTestInbox(t)
	if err := os.MkdirAll(inbox.Dir(), 0o755); err != nil {
		t.Fatal(err)
	}
	// zack's bundle is the oldest despite sorting last by name; alice's
	// newest bundle sorts first by name despite being the youngest.
	for _, name := range []string{
		"sync_zack_20260801_090000.json",
		"sync_bob_20260828_120000.json",
		"sync_alice_20260828_130000.json",
		"sync_alice_20260827_090000.json",
		"notes.txt",
	} {
		if err := os.WriteFile(filepath.Join(inbox.Dir(), name), []byte("{}"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	pending, err := inbox.ListPending()
	if err != nil {
		t.Fatalf("listing pending: %v", err)
	}
	want := []string{
		"sync_zack_20260801_090000.json",
		"sync_alice_20260827_090000.json",
		"sync_bob_20260828_120000.json",
		"sync_alice_20260828_130000.json",
	}
	if len(pending) != len(want) {
		t.Fatalf("pending = %v, want %v", pending, want)
	}
	for i := range want {
		if pending[i] != want[i] {
			t.Errorf("pending[%d] = %q, want %q", i, pending[i], want[i])
		}
	}
}

func TestListPendingMissingDir(t *testing.T) {
	inbox := NewInbox(filepath.Join(t.TempDir(), "nonexistent"))

	pending, err := inbox.ListPending()
	if err != nil {
		t.Fatalf("listing pending: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("pending = %v, want empty", pending)
	}
}

func TestReadRoundTrip(t *testing.T) {
	inbox := newTestInbox(t)
	name, err := inbox.Deposit(testBundle("jsmith", types.Project{
		Name: "Fiber Install", CCRNFID: "CCR-001", PMID: 1, Status: types.StatusActive,
	}))
	if err != nil {
		t.Fatalf("depositing: %v", err)
	}

	bundle, err := inbox.Read(name)
	if err != nil {
		t.Fatalf("reading bundle: %v", err)
	}
	if bundle.Username != "jsmith" || len(bundle.Projects) != 1 {
		t.Errorf("bundle = %+v, want jsmith with one project", bundle)
	}
	if bundle.Projects[0].CCRNFID != "CCR-001" {
		t.Errorf("project key = %q, want CCR-001", bundle.Projects[0].CCRNFID)
	}
}

func TestReadMalformedBundle(t *testing.T) {
	inbox := newTestInbox(t)
	if err := os.MkdirAll(inbox.Dir(), 0o755); err != nil {
		t.Fatal(err)
	}
	name := "sync_jsmith_20260828_100000.json"
	if err := os.WriteFile(filepath.Join(inbox.Dir(), name), []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := inbox.Read(name)
	if !errors.Is(err, types.ErrMalformedBundle) {
		t.Fatalf("expected ErrMalformedBundle, got %v", err)
	}
}

func TestArchiveMovesBundle(t *testing.T) {
	inbox := newTestInbox(t)
	name, err := inbox.Deposit(testBundle("jsmith"))
	if err != nil {
		t.Fatalf("depositing: %v", err)
	}

	if err := inbox.Archive(name); err != nil {
		t.Fatalf("archiving: %v", err)
	}

	if _, err := os.Stat(filepath.Join(inbox.Dir(), name)); !os.IsNotExist(err) {
		t.Error("bundle still present in inbox after archive")
	}
	if _, err := os.Stat(filepath.Join(inbox.ArchiveDir(), name)); err != nil {
		t.Errorf("bundle missing from archive: %v", err)
	}

	pending, err := inbox.ListPending()
	if err != nil {
		t.Fatalf("listing pending: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("pending = %v, want empty after archive", pending)
	}
}
