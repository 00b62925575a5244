package types

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestBundleCounts(t *testing.T) {
	b := &SyncBundle{
		Username:      "mreyes",
		SyncTimestamp: "2026-01-12T09:30:00Z",
		Projects:      []Project{{CCRNFID: "CCR-001"}, {CCRNFID: "CCR-002"}},
		KPISnapshots:  []KPISnapshot{{ProjectCCRNFID: "CCR-001"}},
		Contacts:      []Contact{{ProjectCCRNFID: "CCR-002"}},
	}

	counts := b.Counts()
	if counts.Projects != 2 || counts.KPISnapshots != 1 || counts.Dependencies != 0 || counts.Contacts != 1 {
		t.Fatalf("unexpected counts: %+v", counts)
	}
	if b.Total() != 4 {
		t.Fatalf("Total() = %d, want 4", b.Total())
	}
}

func TestBundleValidate(t *testing.T) {
	b := &SyncBundle{Username: "mreyes", SyncTimestamp: "2026-01-12T09:30:00Z"}
	if err := b.Validate(); err != nil {
		t.Fatalf("expected valid bundle, got %v", err)
	}

	for _, b := range []*SyncBundle{
		{SyncTimestamp: "2026-01-12T09:30:00Z"},
		{Username: "mreyes"},
		{},
	} {
		if err := b.Validate(); !errors.Is(err, ErrMalformedBundle) {
			t.Errorf("expected ErrMalformedBundle, got %v", err)
		}
	}
}

// The bundle document uses the wire field names the merge processor expects;
// a renamed struct field would silently break every deployed inbox.
func TestBundleWireFormat(t *testing.T) {
	b := &SyncBundle{
		Username:      "mreyes",
		SyncTimestamp: "2026-01-12T09:30:00Z",
		Projects:      []Project{{CCRNFID: "CCR-001", Name: "Fiber Install", Status: StatusActive}},
		KPISnapshots:  []KPISnapshot{{ProjectCCRNFID: "CCR-001", SnapshotDate: "2026-01-10"}},
	}

	data, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	for _, key := range []string{"username", "sync_timestamp", "projects", "kpi_snapshots", "project_dependencies", "project_contacts"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("missing top-level key %q", key)
		}
	}

	var projects []map[string]any
	if err := json.Unmarshal(doc["projects"], &projects); err != nil {
		t.Fatalf("unmarshal projects: %v", err)
	}
	if projects[0]["ccr_nfid"] != "CCR-001" {
		t.Errorf("projects[0].ccr_nfid = %v, want CCR-001", projects[0]["ccr_nfid"])
	}
}
