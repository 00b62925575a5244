package types

import "time"

// Child records are owned by a project and follow the same sync lifecycle as
// the parent. Each carries ProjectCCRNFID, the parent's natural key: the
// merge processor resolves parent linkage through it, never through the
// local numeric id, so a child of a parent that does not yet exist in the
// master store still merges correctly once the parent row in the same bundle
// has been applied.

// KPISnapshot is a point-in-time KPI reading for a project.
type KPISnapshot struct {
	LocalSnapshotID int64  `json:"local_snapshot_id"`
	LocalProjectID  int64  `json:"local_project_id"`
	ProjectCCRNFID  string `json:"project_ccr_nfid"`

	SnapshotDate   string  `json:"snapshot_date"`
	BudgetStatus   string  `json:"budget_status,omitempty"`
	ScheduleStatus string  `json:"schedule_status,omitempty"`
	OnTimePercent  float64 `json:"on_time_percent"`
	Notes          string  `json:"notes,omitempty"`

	SyncStatus string    `json:"sync_status,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Dependency records that one project depends on another. Both ends are
// identified by natural key in the bundle; DependsOnLocalID is only
// meaningful inside the originating local store.
type Dependency struct {
	LocalDependencyID int64  `json:"local_dependency_id"`
	LocalProjectID    int64  `json:"local_project_id"`
	ProjectCCRNFID    string `json:"project_ccr_nfid"`

	DependsOnLocalID int64  `json:"depends_on_local_project_id"`
	DependsOnCCRNFID string `json:"depends_on_ccr_nfid"`
	DependencyType   string `json:"dependency_type"`
	Notes            string `json:"notes,omitempty"`

	SyncStatus string    `json:"sync_status,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// DefaultDependencyType is applied when a dependency is created without one.
const DefaultDependencyType = "Finish-to-Start"

// Contact is a team member attached to a project.
type Contact struct {
	LocalContactID int64  `json:"local_contact_id"`
	LocalProjectID int64  `json:"local_project_id"`
	ProjectCCRNFID string `json:"project_ccr_nfid"`

	Name  string `json:"contact_name"`
	Role  string `json:"contact_role"`
	Email string `json:"contact_email,omitempty"`

	SyncStatus string    `json:"sync_status,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
