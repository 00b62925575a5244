package types

// SyncBundle is one user's complete dirty set at a point in time. It is
// created once by the bundle builder, written to the inbox as a single JSON
// document, consumed exactly once by the merge processor, and then retired
// to the archive. Collections keep local-store insertion order; the merge
// processor applies them in declaration order (projects first) so child
// records can resolve their parent by natural key within the same pass.
type SyncBundle struct {
	Username      string        `json:"username"`
	SyncTimestamp string        `json:"sync_timestamp"`
	Projects      []Project     `json:"projects"`
	KPISnapshots  []KPISnapshot `json:"kpi_snapshots"`
	Dependencies  []Dependency  `json:"project_dependencies"`
	Contacts      []Contact     `json:"project_contacts"`
}

// BundleCounts is the per-collection item count, reported to the user after
// a sync and shown by the inbox listing.
type BundleCounts struct {
	Projects     int `json:"projects"`
	KPISnapshots int `json:"kpi_snapshots"`
	Dependencies int `json:"project_dependencies"`
	Contacts     int `json:"project_contacts"`
}

// Total returns the total number of records across all collections.
func (c BundleCounts) Total() int {
	return c.Projects + c.KPISnapshots + c.Dependencies + c.Contacts
}

// Counts returns the per-collection item counts of the bundle.
func (b *SyncBundle) Counts() BundleCounts {
	return BundleCounts{
		Projects:     len(b.Projects),
		KPISnapshots: len(b.KPISnapshots),
		Dependencies: len(b.Dependencies),
		Contacts:     len(b.Contacts),
	}
}

// Total returns the total number of records in the bundle.
func (b *SyncBundle) Total() int { return b.Counts().Total() }

// Validate checks the bundle envelope. An empty username or timestamp means
// the document was not produced by the bundle builder.
func (b *SyncBundle) Validate() error {
	if b.Username == "" || b.SyncTimestamp == "" {
		return ErrMalformedBundle
	}
	return nil
}
