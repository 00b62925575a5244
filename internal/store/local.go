package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fieldscope/vztrack/pkg/types"
)

// LocalStore is one user's durable staging area. Every write tags the row
// with a sync status; the bundle builder drains rows tagged new or updated.
// Open the store per logical unit of work and Close it on every exit path.
type LocalStore struct {
	db   *sql.DB
	path string
}

// OpenLocal opens (creating if needed) the local store at path.
func OpenLocal(path string) (*LocalStore, error) {
	db, err := openDB(path, localSchema)
	if err != nil {
		return nil, err
	}
	return &LocalStore{db: db, path: path}, nil
}

// Close releases the underlying connection. Idempotent.
func (s *LocalStore) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Path returns the store's file path.
func (s *LocalStore) Path() string { return s.path }

const localProjectColumns = `local_id, master_project_id, name, ccr_nfid, program_id,
    project_type_id, pm_id, status, phase, notes, nfid, customer, clli, rft_date,
    system_type, current_queue, site_address, project_start_date,
    project_complete_date, sync_status, created_at, updated_at`

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanLocalProject(r rowScanner) (*types.Project, error) {
	var p types.Project
	var masterID, programID, typeID sql.NullInt64
	var phase, notes, nfid, customer, clli, rftDate, systemType sql.NullString
	var queue, siteAddr, startDate, completeDate sql.NullString
	var createdAt, updatedAt string

	err := r.Scan(
		&p.LocalID, &masterID, &p.Name, &p.CCRNFID, &programID,
		&typeID, &p.PMID, &p.Status, &phase, &notes, &nfid, &customer, &clli, &rftDate,
		&systemType, &queue, &siteAddr, &startDate,
		&completeDate, &p.SyncStatus, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.MasterProjectID = intPtrOf(masterID)
	p.ProgramID = intPtrOf(programID)
	p.ProjectTypeID = intPtrOf(typeID)
	p.Phase = strOf(phase)
	p.Notes = strOf(notes)
	p.NFID = strOf(nfid)
	p.Customer = strOf(customer)
	p.CLLI = strOf(clli)
	p.RFTDate = strOf(rftDate)
	p.SystemType = strOf(systemType)
	p.CurrentQueue = strOf(queue)
	p.SiteAddress = strOf(siteAddr)
	p.ProjectStartDate = strOf(startDate)
	p.ProjectCompleteDate = strOf(completeDate)

	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &p, nil
}

// CreateProject inserts a project with sync_status = new and returns its
// local id. Returns ErrDuplicateKey if the ccr_nfid already exists in this
// store.
func (s *LocalStore) CreateProject(p *types.Project) (int64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	if p.Status == "" {
		p.Status = types.StatusActive
	}

	var exists int
	err := s.db.QueryRow("SELECT 1 FROM projects WHERE ccr_nfid = ?", p.CCRNFID).Scan(&exists)
	if err == nil {
		return 0, fmt.Errorf("%w: ccr_nfid %q", types.ErrDuplicateKey, p.CCRNFID)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("checking ccr_nfid uniqueness: %w", err)
	}

	ts := formatTime(now())
	res, err := s.db.Exec(`INSERT INTO projects (
        name, ccr_nfid, program_id, project_type_id, pm_id, status, phase, notes,
        nfid, customer, clli, rft_date, system_type, current_queue, site_address,
        project_start_date, project_complete_date, sync_status, created_at, updated_at
    ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Name, p.CCRNFID, nullInt(p.ProgramID), nullInt(p.ProjectTypeID), p.PMID,
		p.Status, nullStr(p.Phase), nullStr(p.Notes), nullStr(p.NFID),
		nullStr(p.Customer), nullStr(p.CLLI), nullStr(p.RFTDate),
		nullStr(p.SystemType), nullStr(p.CurrentQueue), nullStr(p.SiteAddress),
		nullStr(p.ProjectStartDate), nullStr(p.ProjectCompleteDate),
		types.SyncNew, ts, ts,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting project: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading insert id: %w", err)
	}
	return id, nil
}

// UpdateProject applies the non-nil fields of u to the row with the given
// local id. A row that has already synced moves to sync_status = updated; a
// row still tagged new stays new (it has never left this store). Returns
// ErrNotFound if the id matches nothing.
func (s *LocalStore) UpdateProject(localID int64, u types.ProjectUpdate) error {
	if err := u.Validate(); err != nil {
		return err
	}

	set := []string{}
	args := []any{}
	add := func(col string, v *string) {
		if v != nil {
			set = append(set, col+" = ?")
			args = append(args, nullStr(*v))
		}
	}
	if u.Name != nil {
		set = append(set, "name = ?")
		args = append(args, *u.Name)
	}
	if u.Status != nil {
		set = append(set, "status = ?")
		args = append(args, *u.Status)
	}
	add("phase", u.Phase)
	add("notes", u.Notes)
	add("customer", u.Customer)
	add("clli", u.CLLI)
	add("site_address", u.SiteAddress)
	add("current_queue", u.CurrentQueue)
	add("system_type", u.SystemType)
	add("project_start_date", u.ProjectStartDate)
	add("project_complete_date", u.ProjectCompleteDate)

	if len(set) == 0 {
		return nil
	}

	// A row created and edited before its first sync remains new.
	set = append(set,
		"sync_status = CASE WHEN sync_status = 'new' THEN 'new' ELSE 'updated' END",
		"updated_at = ?",
	)
	args = append(args, formatTime(now()), localID)

	res, err := s.db.Exec("UPDATE projects SET "+strings.Join(set, ", ")+" WHERE local_id = ?", args...)
	if err != nil {
		return fmt.Errorf("updating project %d: %w", localID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: project %d", types.ErrNotFound, localID)
	}
	return nil
}

// GetProject retrieves a project by local id.
func (s *LocalStore) GetProject(localID int64) (*types.Project, error) {
	row := s.db.QueryRow("SELECT "+localProjectColumns+" FROM projects WHERE local_id = ?", localID)
	p, err := scanLocalProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: project %d", types.ErrNotFound, localID)
	}
	if err != nil {
		return nil, fmt.Errorf("getting project %d: %w", localID, err)
	}
	return p, nil
}

// GetProjectByNaturalKey retrieves a project by ccr_nfid.
func (s *LocalStore) GetProjectByNaturalKey(ccrNFID string) (*types.Project, error) {
	row := s.db.QueryRow("SELECT "+localProjectColumns+" FROM projects WHERE ccr_nfid = ?", ccrNFID)
	p, err := scanLocalProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: ccr_nfid %q", types.ErrNotFound, ccrNFID)
	}
	if err != nil {
		return nil, fmt.Errorf("getting project %q: %w", ccrNFID, err)
	}
	return p, nil
}

// ListProjects returns all projects in insertion order.
func (s *LocalStore) ListProjects() ([]types.Project, error) {
	rows, err := s.db.Query("SELECT " + localProjectColumns + " FROM projects ORDER BY local_id ASC")
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()

	var out []types.Project
	for rows.Next() {
		p, err := scanLocalProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning project: %w", err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating projects: %w", err)
	}
	return out, nil
}

// SearchProjects matches projects whose name, ccr_nfid, customer, or site
// address contains term, ordered by name. Terms shorter than two characters
// match nothing.
func (s *LocalStore) SearchProjects(term string, limit int) ([]types.Project, error) {
	if len(term) < 2 {
		return nil, nil
	}
	pattern := "%" + term + "%"
	rows, err := s.db.Query(
		"SELECT "+localProjectColumns+" FROM projects WHERE name LIKE ? OR ccr_nfid LIKE ? OR customer LIKE ? OR site_address LIKE ? ORDER BY name ASC LIMIT ?",
		pattern, pattern, pattern, pattern, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("searching projects: %w", err)
	}
	defer rows.Close()

	var out []types.Project
	for rows.Next() {
		p, err := scanLocalProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning project: %w", err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating projects: %w", err)
	}
	return out, nil
}

// requireProject checks that a parent project exists before inserting a
// child record for it.
func (s *LocalStore) requireProject(localID int64) error {
	var one int
	err := s.db.QueryRow("SELECT 1 FROM projects WHERE local_id = ?", localID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: project %d", types.ErrNotFound, localID)
	}
	if err != nil {
		return fmt.Errorf("checking project %d: %w", localID, err)
	}
	return nil
}

// AddKPISnapshot inserts a KPI snapshot with sync_status = new.
func (s *LocalStore) AddKPISnapshot(k *types.KPISnapshot) (int64, error) {
	if err := s.requireProject(k.LocalProjectID); err != nil {
		return 0, err
	}
	res, err := s.db.Exec(`INSERT INTO kpi_snapshots (
        local_project_id, snapshot_date, budget_status, schedule_status,
        on_time_percent, notes, sync_status, created_at
    ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		k.LocalProjectID, k.SnapshotDate, nullStr(k.BudgetStatus),
		nullStr(k.ScheduleStatus), k.OnTimePercent, nullStr(k.Notes),
		types.SyncNew, formatTime(now()),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting kpi snapshot: %w", err)
	}
	return res.LastInsertId()
}

// AddDependency inserts a dependency with sync_status = new. Both ends must
// exist in this store.
func (s *LocalStore) AddDependency(d *types.Dependency) (int64, error) {
	if err := s.requireProject(d.LocalProjectID); err != nil {
		return 0, err
	}
	if err := s.requireProject(d.DependsOnLocalID); err != nil {
		return 0, err
	}
	if d.DependencyType == "" {
		d.DependencyType = types.DefaultDependencyType
	}
	res, err := s.db.Exec(`INSERT INTO project_dependencies (
        local_project_id, depends_on_local_project_id, dependency_type, notes,
        sync_status, created_at
    ) VALUES (?, ?, ?, ?, ?, ?)`,
		d.LocalProjectID, d.DependsOnLocalID, d.DependencyType, nullStr(d.Notes),
		types.SyncNew, formatTime(now()),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting dependency: %w", err)
	}
	return res.LastInsertId()
}

// AddContact inserts a contact with sync_status = new.
func (s *LocalStore) AddContact(c *types.Contact) (int64, error) {
	if err := s.requireProject(c.LocalProjectID); err != nil {
		return 0, err
	}
	res, err := s.db.Exec(`INSERT INTO project_contacts (
        local_project_id, contact_name, contact_role, contact_email,
        sync_status, created_at
    ) VALUES (?, ?, ?, ?, ?, ?)`,
		c.LocalProjectID, c.Name, c.Role, nullStr(c.Email),
		types.SyncNew, formatTime(now()),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting contact: %w", err)
	}
	return res.LastInsertId()
}

// DirtySet is the full set of rows pending sync, in insertion order, with
// each child record joined to its parent's natural key.
type DirtySet struct {
	Projects     []types.Project
	KPISnapshots []types.KPISnapshot
	Dependencies []types.Dependency
	Contacts     []types.Contact
}

// Empty reports whether nothing is pending.
func (d *DirtySet) Empty() bool {
	return len(d.Projects) == 0 && len(d.KPISnapshots) == 0 &&
		len(d.Dependencies) == 0 && len(d.Contacts) == 0
}

// IDs returns the local row identifiers of every record in the set, for
// MarkSynced after the bundle is durably deposited.
func (d *DirtySet) IDs() SyncedIDs {
	var ids SyncedIDs
	for _, p := range d.Projects {
		ids.ProjectIDs = append(ids.ProjectIDs, p.LocalID)
	}
	for _, k := range d.KPISnapshots {
		ids.SnapshotIDs = append(ids.SnapshotIDs, k.LocalSnapshotID)
	}
	for _, dep := range d.Dependencies {
		ids.DependencyIDs = append(ids.DependencyIDs, dep.LocalDependencyID)
	}
	for _, c := range d.Contacts {
		ids.ContactIDs = append(ids.ContactIDs, c.LocalContactID)
	}
	return ids
}

// SyncedIDs names the exact rows a bundle captured. MarkSynced flips only
// these rows, so edits made between bundle build and deposit stay dirty.
type SyncedIDs struct {
	ProjectIDs    []int64
	SnapshotIDs   []int64
	DependencyIDs []int64
	ContactIDs    []int64
}

// ListDirty returns all rows with sync_status new or updated, in insertion
// order, for each of the four collections. Child rows are joined with their
// parent's ccr_nfid (and, for dependencies, the target's ccr_nfid) so the
// merge processor can resolve linkage by natural key.
func (s *LocalStore) ListDirty() (*DirtySet, error) {
	set := &DirtySet{}

	rows, err := s.db.Query("SELECT " + localProjectColumns +
		" FROM projects WHERE sync_status IN ('new', 'updated') ORDER BY local_id ASC")
	if err != nil {
		return nil, fmt.Errorf("listing dirty projects: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		p, err := scanLocalProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning dirty project: %w", err)
		}
		set.Projects = append(set.Projects, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating dirty projects: %w", err)
	}

	krows, err := s.db.Query(`SELECT k.local_snapshot_id, k.local_project_id, p.ccr_nfid,
        k.snapshot_date, k.budget_status, k.schedule_status, k.on_time_percent,
        k.notes, k.sync_status, k.created_at
        FROM kpi_snapshots k JOIN projects p ON p.local_id = k.local_project_id
        WHERE k.sync_status IN ('new', 'updated') ORDER BY k.local_snapshot_id ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing dirty kpi snapshots: %w", err)
	}
	defer krows.Close()
	for krows.Next() {
		var k types.KPISnapshot
		var budget, schedule, notes sql.NullString
		var createdAt string
		if err := krows.Scan(&k.LocalSnapshotID, &k.LocalProjectID, &k.ProjectCCRNFID,
			&k.SnapshotDate, &budget, &schedule, &k.OnTimePercent,
			&notes, &k.SyncStatus, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning dirty kpi snapshot: %w", err)
		}
		k.BudgetStatus = strOf(budget)
		k.ScheduleStatus = strOf(schedule)
		k.Notes = strOf(notes)
		if k.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("parsing kpi created_at: %w", err)
		}
		set.KPISnapshots = append(set.KPISnapshots, k)
	}
	if err := krows.Err(); err != nil {
		return nil, fmt.Errorf("iterating dirty kpi snapshots: %w", err)
	}

	drows, err := s.db.Query(`SELECT d.local_dependency_id, d.local_project_id, p.ccr_nfid,
        d.depends_on_local_project_id, dp.ccr_nfid, d.dependency_type, d.notes,
        d.sync_status, d.created_at
        FROM project_dependencies d
        JOIN projects p ON p.local_id = d.local_project_id
        JOIN projects dp ON dp.local_id = d.depends_on_local_project_id
        WHERE d.sync_status IN ('new', 'updated') ORDER BY d.local_dependency_id ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing dirty dependencies: %w", err)
	}
	defer drows.Close()
	for drows.Next() {
		var d types.Dependency
		var notes sql.NullString
		var createdAt string
		if err := drows.Scan(&d.LocalDependencyID, &d.LocalProjectID, &d.ProjectCCRNFID,
			&d.DependsOnLocalID, &d.DependsOnCCRNFID, &d.DependencyType, &notes,
			&d.SyncStatus, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning dirty dependency: %w", err)
		}
		d.Notes = strOf(notes)
		if d.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("parsing dependency created_at: %w", err)
		}
		set.Dependencies = append(set.Dependencies, d)
	}
	if err := drows.Err(); err != nil {
		return nil, fmt.Errorf("iterating dirty dependencies: %w", err)
	}

	crows, err := s.db.Query(`SELECT c.local_contact_id, c.local_project_id, p.ccr_nfid,
        c.contact_name, c.contact_role, c.contact_email, c.sync_status, c.created_at
        FROM project_contacts c JOIN projects p ON p.local_id = c.local_project_id
        WHERE c.sync_status IN ('new', 'updated') ORDER BY c.local_contact_id ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing dirty contacts: %w", err)
	}
	defer crows.Close()
	for crows.Next() {
		var c types.Contact
		var email sql.NullString
		var createdAt string
		if err := crows.Scan(&c.LocalContactID, &c.LocalProjectID, &c.ProjectCCRNFID,
			&c.Name, &c.Role, &email, &c.SyncStatus, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning dirty contact: %w", err)
		}
		c.Email = strOf(email)
		if c.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("parsing contact created_at: %w", err)
		}
		set.Contacts = append(set.Contacts, c)
	}
	if err := crows.Err(); err != nil {
		return nil, fmt.Errorf("iterating dirty contacts: %w", err)
	}

	return set, nil
}

// MarkSynced sets sync_status = synced for exactly the given row ids, in one
// transaction. Call it only after the corresponding bundle is durably
// written to the inbox, never before.
func (s *LocalStore) MarkSynced(ids SyncedIDs) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	mark := func(table, idCol string, rowIDs []int64) error {
		if len(rowIDs) == 0 {
			return nil
		}
		placeholders := make([]string, len(rowIDs))
		args := make([]any, len(rowIDs))
		for i, id := range rowIDs {
			placeholders[i] = "?"
			args[i] = id
		}
		_, err := tx.Exec(fmt.Sprintf(
			"UPDATE %s SET sync_status = 'synced' WHERE %s IN (%s)",
			table, idCol, strings.Join(placeholders, ", ")), args...)
		if err != nil {
			return fmt.Errorf("marking %s synced: %w", table, err)
		}
		return nil
	}

	if err := mark("projects", "local_id", ids.ProjectIDs); err != nil {
		return err
	}
	if err := mark("kpi_snapshots", "local_snapshot_id", ids.SnapshotIDs); err != nil {
		return err
	}
	if err := mark("project_dependencies", "local_dependency_id", ids.DependencyIDs); err != nil {
		return err
	}
	if err := mark("project_contacts", "local_contact_id", ids.ContactIDs); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing mark synced: %w", err)
	}
	return nil
}

// PendingCounts returns the number of dirty rows per collection.
func (s *LocalStore) PendingCounts() (types.BundleCounts, error) {
	var counts types.BundleCounts
	count := func(table string, dst *int) error {
		row := s.db.QueryRow("SELECT COUNT(*) FROM " + table + " WHERE sync_status IN ('new', 'updated')")
		return row.Scan(dst)
	}
	if err := count("projects", &counts.Projects); err != nil {
		return counts, fmt.Errorf("counting dirty projects: %w", err)
	}
	if err := count("kpi_snapshots", &counts.KPISnapshots); err != nil {
		return counts, fmt.Errorf("counting dirty kpi snapshots: %w", err)
	}
	if err := count("project_dependencies", &counts.Dependencies); err != nil {
		return counts, fmt.Errorf("counting dirty dependencies: %w", err)
	}
	if err := count("project_contacts", &counts.Contacts); err != nil {
		return counts, fmt.Errorf("counting dirty contacts: %w", err)
	}
	return counts, nil
}
