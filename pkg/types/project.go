package types

import "time"

// Project statuses.
const (
	StatusActive    = "Active"
	StatusOnHold    = "On Hold"
	StatusCompleted = "Completed"
	StatusCancelled = "Cancelled"
)

// validStatuses is the set of recognized project status values.
var validStatuses = map[string]bool{
	StatusActive:    true,
	StatusOnHold:    true,
	StatusCompleted: true,
	StatusCancelled: true,
}

// ValidStatus reports whether s is a recognized project status.
func ValidStatus(s string) bool { return validStatuses[s] }

// Sync lifecycle states. A local row is created as "new", moves to "updated"
// on any edit after its first sync, and becomes "synced" only after its
// bundle is durably deposited in the inbox. A row that is still "new" stays
// "new" across edits; it has never left the local store.
const (
	SyncNew     = "new"
	SyncUpdated = "updated"
	SyncSynced  = "synced"
)

// ValidSyncStatus reports whether s is a recognized sync status.
func ValidSyncStatus(s string) bool {
	return s == SyncNew || s == SyncUpdated || s == SyncSynced
}

// Project is one tracked telecom project. The local store variant carries
// LocalID, SyncStatus, and MasterProjectID; rows read from the master store
// populate LocalID with the master surrogate id and leave SyncStatus empty.
//
// CCRNFID is the natural key: unique within each store and the only
// identifier correlated across stores. Date-only fields are kept as
// YYYY-MM-DD strings, matching both the column type and the bundle format.
type Project struct {
	LocalID         int64  `json:"local_id"`
	MasterProjectID *int64 `json:"master_project_id,omitempty"`

	Name          string `json:"name"`
	CCRNFID       string `json:"ccr_nfid"`
	ProgramID     *int64 `json:"program_id,omitempty"`
	ProjectTypeID *int64 `json:"project_type_id,omitempty"`
	PMID          int64  `json:"pm_id"`
	Status        string `json:"status"`
	Phase         string `json:"phase,omitempty"`
	Notes         string `json:"notes,omitempty"`

	// Fields mirrored from the external reporting system.
	NFID         string `json:"nfid,omitempty"`
	Customer     string `json:"customer,omitempty"`
	CLLI         string `json:"clli,omitempty"`
	RFTDate      string `json:"rft_date,omitempty"`
	SystemType   string `json:"system_type,omitempty"`
	CurrentQueue string `json:"current_queue,omitempty"`
	SiteAddress  string `json:"site_address,omitempty"`

	// Scorecard reporting fields.
	ProjectStartDate    string `json:"project_start_date,omitempty"`
	ProjectCompleteDate string `json:"project_complete_date,omitempty"`

	SyncStatus string    `json:"sync_status,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Validate checks the fields required for creating a project in a store.
func (p *Project) Validate() error {
	if p.CCRNFID == "" {
		return ErrInvalidCCRNFID
	}
	if p.Name == "" {
		return ErrInvalidName
	}
	if p.Status != "" && !ValidStatus(p.Status) {
		return ErrInvalidStatus
	}
	return nil
}

// ProjectUpdate carries the mutable fields of a project edit. Nil fields are
// left unchanged. Identity fields (ccr_nfid, pm_id) are not editable.
type ProjectUpdate struct {
	Name         *string
	Status       *string
	Phase        *string
	Notes        *string
	Customer     *string
	CLLI         *string
	SiteAddress  *string
	CurrentQueue *string
	SystemType   *string

	ProjectStartDate    *string
	ProjectCompleteDate *string
}

// Validate checks the update for recognized values.
func (u *ProjectUpdate) Validate() error {
	if u.Status != nil && !ValidStatus(*u.Status) {
		return ErrInvalidStatus
	}
	if u.Name != nil && *u.Name == "" {
		return ErrInvalidName
	}
	return nil
}

// Program is a read-mostly dimension row referenced by projects.
type Program struct {
	ProgramID   int64  `json:"program_id"`
	Name        string `json:"program_name"`
	Description string `json:"description,omitempty"`
}

// ProjectType is a read-mostly dimension row referenced by projects.
type ProjectType struct {
	TypeID      int64  `json:"type_id"`
	Name        string `json:"type_name"`
	Description string `json:"description,omitempty"`
}
