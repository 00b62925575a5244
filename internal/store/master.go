package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/fieldscope/vztrack/pkg/types"
)

// MasterStore is the single shared canonical store. It owns the master id
// space; rows arrive through the merge processor's upsert-by-natural-key and
// through admin-driven user and dimension management.
type MasterStore struct {
	db   *sql.DB
	path string
}

// OpenMaster opens (creating if needed) the master store at path.
func OpenMaster(path string) (*MasterStore, error) {
	db, err := openDB(path, masterSchema)
	if err != nil {
		return nil, err
	}
	return &MasterStore{db: db, path: path}, nil
}

// Close releases the underlying connection. Idempotent.
func (s *MasterStore) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Path returns the store's file path.
func (s *MasterStore) Path() string { return s.path }

// Seed inserts the default programs and project types. Existing rows are
// left untouched, so Seed is safe to run on every startup.
func (s *MasterStore) Seed() error {
	programs := []types.Program{
		{Name: "5G Rollout", Description: "National 5G network expansion"},
		{Name: "Network Modernization", Description: "Legacy system upgrades"},
		{Name: "BAU Operations", Description: "Business as usual maintenance"},
	}
	projectTypes := []types.ProjectType{
		{Name: "BAR", Description: "Build and Run projects"},
		{Name: "Circuit", Description: "Circuit installation and testing"},
		{Name: "BAU Rev", Description: "Business as usual revenue generating"},
		{Name: "BAU Non-Rev", Description: "Business as usual non-revenue"},
		{Name: "Decom", Description: "Decommissioning projects"},
	}

	ts := formatTime(now())
	for _, p := range programs {
		if _, err := s.db.Exec(
			"INSERT OR IGNORE INTO programs (program_name, description, created_at) VALUES (?, ?, ?)",
			p.Name, p.Description, ts,
		); err != nil {
			return fmt.Errorf("seeding program %q: %w", p.Name, err)
		}
	}
	for _, t := range projectTypes {
		if _, err := s.db.Exec(
			"INSERT OR IGNORE INTO project_types (type_name, description, created_at) VALUES (?, ?, ?)",
			t.Name, t.Description, ts,
		); err != nil {
			return fmt.Errorf("seeding project type %q: %w", t.Name, err)
		}
	}
	return nil
}

// ListPrograms returns all programs.
func (s *MasterStore) ListPrograms() ([]types.Program, error) {
	rows, err := s.db.Query("SELECT program_id, program_name, COALESCE(description, '') FROM programs ORDER BY program_id ASC")
	if err != nil {
		return nil, fmt.Errorf("listing programs: %w", err)
	}
	defer rows.Close()

	var out []types.Program
	for rows.Next() {
		var p types.Program
		if err := rows.Scan(&p.ProgramID, &p.Name, &p.Description); err != nil {
			return nil, fmt.Errorf("scanning program: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ListProjectTypes returns all project types.
func (s *MasterStore) ListProjectTypes() ([]types.ProjectType, error) {
	rows, err := s.db.Query("SELECT type_id, type_name, COALESCE(description, '') FROM project_types ORDER BY type_id ASC")
	if err != nil {
		return nil, fmt.Errorf("listing project types: %w", err)
	}
	defer rows.Close()

	var out []types.ProjectType
	for rows.Next() {
		var t types.ProjectType
		if err := rows.Scan(&t.TypeID, &t.Name, &t.Description); err != nil {
			return nil, fmt.Errorf("scanning project type: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// CreateUser inserts a user row. Returns ErrDuplicateKey on a username
// collision and ErrInvalidRole for an unrecognized role.
func (s *MasterStore) CreateUser(u *types.User) (int64, error) {
	if !types.ValidRole(u.Role) {
		return 0, types.ErrInvalidRole
	}

	var exists int
	err := s.db.QueryRow("SELECT 1 FROM users WHERE username = ?", u.Username).Scan(&exists)
	if err == nil {
		return 0, fmt.Errorf("%w: username %q", types.ErrDuplicateKey, u.Username)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("checking username uniqueness: %w", err)
	}

	res, err := s.db.Exec(
		"INSERT INTO users (username, full_name, role, password_hash, active, created_at) VALUES (?, ?, ?, ?, 1, ?)",
		u.Username, u.FullName, u.Role, u.PasswordHash, formatTime(now()),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting user: %w", err)
	}
	return res.LastInsertId()
}

// GetUserByUsername retrieves an active user by username.
func (s *MasterStore) GetUserByUsername(username string) (*types.User, error) {
	var u types.User
	var active int
	var createdAt string
	err := s.db.QueryRow(
		"SELECT user_id, username, full_name, role, password_hash, active, created_at FROM users WHERE username = ? AND active = 1",
		username,
	).Scan(&u.UserID, &u.Username, &u.FullName, &u.Role, &u.PasswordHash, &active, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: user %q", types.ErrNotFound, username)
	}
	if err != nil {
		return nil, fmt.Errorf("getting user %q: %w", username, err)
	}
	u.Active = active == 1
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing user created_at: %w", err)
	}
	return &u, nil
}

// DeactivateUser marks a user inactive. Inactive users cannot log in and do
// not appear in search results.
func (s *MasterStore) DeactivateUser(userID int64) error {
	res, err := s.db.Exec("UPDATE users SET active = 0 WHERE user_id = ?", userID)
	if err != nil {
		return fmt.Errorf("deactivating user %d: %w", userID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deactivating user %d: %w", userID, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: user %d", types.ErrNotFound, userID)
	}
	return nil
}

// ListUsers returns all users, active and inactive.
func (s *MasterStore) ListUsers() ([]types.User, error) {
	rows, err := s.db.Query("SELECT user_id, username, full_name, role, active, created_at FROM users ORDER BY user_id ASC")
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var out []types.User
	for rows.Next() {
		var u types.User
		var active int
		var createdAt string
		if err := rows.Scan(&u.UserID, &u.Username, &u.FullName, &u.Role, &active, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		u.Active = active == 1
		if u.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("parsing user created_at: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// MasterProject is a master store project row: the embedded Project's
// LocalID field holds the master surrogate id, and LastSyncedBy records the
// username whose merge last touched the row (used to flag cross-user
// conflicts).
type MasterProject struct {
	types.Project
	LastSyncedBy string
}

const masterProjectColumns = `project_id, NULL, name, ccr_nfid, program_id,
    project_type_id, pm_id, status, phase, notes, nfid, customer, clli, rft_date,
    system_type, current_queue, site_address, project_start_date,
    project_complete_date, '', created_at, updated_at, COALESCE(last_synced_by, '')`

func scanMasterProject(r rowScanner) (*MasterProject, error) {
	var mp MasterProject
	var masterID, programID, typeID sql.NullInt64
	var phase, notes, nfid, customer, clli, rftDate, systemType sql.NullString
	var queue, siteAddr, startDate, completeDate sql.NullString
	var createdAt, updatedAt string

	err := r.Scan(
		&mp.Project.LocalID, &masterID, &mp.Name, &mp.CCRNFID, &programID,
		&typeID, &mp.PMID, &mp.Status, &phase, &notes, &nfid, &customer, &clli, &rftDate,
		&systemType, &queue, &siteAddr, &startDate,
		&completeDate, &mp.SyncStatus, &createdAt, &updatedAt, &mp.LastSyncedBy,
	)
	if err != nil {
		return nil, err
	}

	mp.ProgramID = intPtrOf(programID)
	mp.ProjectTypeID = intPtrOf(typeID)
	mp.Phase = strOf(phase)
	mp.Notes = strOf(notes)
	mp.NFID = strOf(nfid)
	mp.Customer = strOf(customer)
	mp.CLLI = strOf(clli)
	mp.RFTDate = strOf(rftDate)
	mp.SystemType = strOf(systemType)
	mp.CurrentQueue = strOf(queue)
	mp.SiteAddress = strOf(siteAddr)
	mp.ProjectStartDate = strOf(startDate)
	mp.ProjectCompleteDate = strOf(completeDate)

	if mp.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if mp.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &mp, nil
}

// GetProjectByNaturalKey retrieves a master project by ccr_nfid.
func (s *MasterStore) GetProjectByNaturalKey(ccrNFID string) (*MasterProject, error) {
	row := s.db.QueryRow("SELECT "+masterProjectColumns+" FROM projects WHERE ccr_nfid = ?", ccrNFID)
	mp, err := scanMasterProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: ccr_nfid %q", types.ErrNotFound, ccrNFID)
	}
	if err != nil {
		return nil, fmt.Errorf("getting master project %q: %w", ccrNFID, err)
	}
	return mp, nil
}

// ListProjects returns all master projects in insertion order.
func (s *MasterStore) ListProjects() ([]MasterProject, error) {
	rows, err := s.db.Query("SELECT " + masterProjectColumns + " FROM projects ORDER BY project_id ASC")
	if err != nil {
		return nil, fmt.Errorf("listing master projects: %w", err)
	}
	defer rows.Close()

	var out []MasterProject
	for rows.Next() {
		mp, err := scanMasterProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning master project: %w", err)
		}
		out = append(out, *mp)
	}
	return out, rows.Err()
}

// SearchProjects matches master projects whose name, ccr_nfid, customer, or
// site address contains term, ordered by name. Terms shorter than two
// characters match nothing.
func (s *MasterStore) SearchProjects(term string, limit int) ([]MasterProject, error) {
	if len(term) < 2 {
		return nil, nil
	}
	pattern := "%" + term + "%"
	rows, err := s.db.Query(
		"SELECT "+masterProjectColumns+" FROM projects WHERE name LIKE ? OR ccr_nfid LIKE ? OR customer LIKE ? OR site_address LIKE ? ORDER BY name ASC LIMIT ?",
		pattern, pattern, pattern, pattern, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("searching master projects: %w", err)
	}
	defer rows.Close()

	var out []MasterProject
	for rows.Next() {
		mp, err := scanMasterProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning master project: %w", err)
		}
		out = append(out, *mp)
	}
	return out, rows.Err()
}

// SearchUsers matches active users whose full name or username contains
// term, ordered by full name. Terms shorter than two characters match
// nothing.
func (s *MasterStore) SearchUsers(term string, limit int) ([]types.User, error) {
	if len(term) < 2 {
		return nil, nil
	}
	pattern := "%" + term + "%"
	rows, err := s.db.Query(
		"SELECT user_id, username, full_name, role, active, created_at FROM users WHERE (full_name LIKE ? OR username LIKE ?) AND active = 1 ORDER BY full_name ASC LIMIT ?",
		pattern, pattern, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("searching users: %w", err)
	}
	defer rows.Close()

	var out []types.User
	for rows.Next() {
		var u types.User
		var active int
		var createdAt string
		if err := rows.Scan(&u.UserID, &u.Username, &u.FullName, &u.Role, &active, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		u.Active = active == 1
		if u.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("parsing user created_at: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// UpsertProject applies one bundled project by natural key: if a row with
// the same ccr_nfid exists its mutable fields are updated and updated_at
// refreshed, otherwise a new row is inserted carrying over the owning
// manager and dimension references. syncedBy records which user's bundle the
// values came from. The operation is idempotent for fixed field values.
func (s *MasterStore) UpsertProject(p *types.Project, syncedBy string) (id int64, created bool, err error) {
	existing, err := s.GetProjectByNaturalKey(p.CCRNFID)
	if err != nil && !errors.Is(err, types.ErrNotFound) {
		return 0, false, err
	}

	if existing != nil {
		_, err = s.db.Exec(`UPDATE projects SET
            name = ?, status = ?, phase = ?, notes = ?, customer = ?, clli = ?,
            site_address = ?, current_queue = ?, system_type = ?,
            project_start_date = ?, project_complete_date = ?,
            last_synced_by = ?, updated_at = ?
            WHERE ccr_nfid = ?`,
			p.Name, p.Status, nullStr(p.Phase), nullStr(p.Notes),
			nullStr(p.Customer), nullStr(p.CLLI), nullStr(p.SiteAddress),
			nullStr(p.CurrentQueue), nullStr(p.SystemType),
			nullStr(p.ProjectStartDate), nullStr(p.ProjectCompleteDate),
			syncedBy, formatTime(now()), p.CCRNFID,
		)
		if err != nil {
			return 0, false, fmt.Errorf("updating master project %q: %w", p.CCRNFID, err)
		}
		return existing.Project.LocalID, false, nil
	}

	ts := formatTime(now())
	res, err := s.db.Exec(`INSERT INTO projects (
        name, ccr_nfid, program_id, project_type_id, pm_id, status, phase, notes,
        nfid, customer, clli, rft_date, system_type, current_queue, site_address,
        project_start_date, project_complete_date, last_synced_by, created_at, updated_at
    ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Name, p.CCRNFID, nullInt(p.ProgramID), nullInt(p.ProjectTypeID), p.PMID,
		p.Status, nullStr(p.Phase), nullStr(p.Notes), nullStr(p.NFID),
		nullStr(p.Customer), nullStr(p.CLLI), nullStr(p.RFTDate),
		nullStr(p.SystemType), nullStr(p.CurrentQueue), nullStr(p.SiteAddress),
		nullStr(p.ProjectStartDate), nullStr(p.ProjectCompleteDate),
		syncedBy, ts, ts,
	)
	if err != nil {
		return 0, false, fmt.Errorf("inserting master project %q: %w", p.CCRNFID, err)
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, false, fmt.Errorf("reading insert id: %w", err)
	}
	return id, true, nil
}

// UpsertKPISnapshot applies one bundled KPI snapshot against its parent's
// master id, keyed by (project_id, snapshot_date).
func (s *MasterStore) UpsertKPISnapshot(projectID int64, k *types.KPISnapshot) error {
	_, err := s.db.Exec(`INSERT INTO kpi_snapshots (
        project_id, snapshot_date, budget_status, schedule_status,
        on_time_percent, notes, created_at
    ) VALUES (?, ?, ?, ?, ?, ?, ?)
    ON CONFLICT(project_id, snapshot_date) DO UPDATE SET
        budget_status = excluded.budget_status,
        schedule_status = excluded.schedule_status,
        on_time_percent = excluded.on_time_percent,
        notes = excluded.notes`,
		projectID, k.SnapshotDate, nullStr(k.BudgetStatus),
		nullStr(k.ScheduleStatus), k.OnTimePercent, nullStr(k.Notes),
		formatTime(now()),
	)
	if err != nil {
		return fmt.Errorf("upserting kpi snapshot %q/%s: %w", k.ProjectCCRNFID, k.SnapshotDate, err)
	}
	return nil
}

// UpsertDependency applies one bundled dependency, keyed by
// (project_id, depends_on_project_id, dependency_type).
func (s *MasterStore) UpsertDependency(projectID, dependsOnID int64, d *types.Dependency) error {
	_, err := s.db.Exec(`INSERT INTO project_dependencies (
        project_id, depends_on_project_id, dependency_type, notes, created_at
    ) VALUES (?, ?, ?, ?, ?)
    ON CONFLICT(project_id, depends_on_project_id, dependency_type) DO UPDATE SET
        notes = excluded.notes`,
		projectID, dependsOnID, d.DependencyType, nullStr(d.Notes), formatTime(now()),
	)
	if err != nil {
		return fmt.Errorf("upserting dependency %q -> %q: %w", d.ProjectCCRNFID, d.DependsOnCCRNFID, err)
	}
	return nil
}

// UpsertContact applies one bundled contact, keyed by
// (project_id, contact_name, contact_role).
func (s *MasterStore) UpsertContact(projectID int64, c *types.Contact) error {
	_, err := s.db.Exec(`INSERT INTO project_contacts (
        project_id, contact_name, contact_role, contact_email, created_at
    ) VALUES (?, ?, ?, ?, ?)
    ON CONFLICT(project_id, contact_name, contact_role) DO UPDATE SET
        contact_email = excluded.contact_email`,
		projectID, c.Name, c.Role, nullStr(c.Email), formatTime(now()),
	)
	if err != nil {
		return fmt.Errorf("upserting contact %q/%s: %w", c.ProjectCCRNFID, c.Name, err)
	}
	return nil
}

// LatestKPISnapshot returns the most recent KPI snapshot for a master
// project, or ErrNotFound if none exists.
func (s *MasterStore) LatestKPISnapshot(projectID int64) (*types.KPISnapshot, error) {
	var k types.KPISnapshot
	var budget, schedule, notes sql.NullString
	var createdAt string
	err := s.db.QueryRow(`SELECT snapshot_id, project_id, snapshot_date, budget_status,
        schedule_status, on_time_percent, notes, created_at
        FROM kpi_snapshots WHERE project_id = ?
        ORDER BY snapshot_date DESC LIMIT 1`, projectID,
	).Scan(&k.LocalSnapshotID, &k.LocalProjectID, &k.SnapshotDate, &budget,
		&schedule, &k.OnTimePercent, &notes, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no kpi snapshots for project %d", types.ErrNotFound, projectID)
	}
	if err != nil {
		return nil, fmt.Errorf("getting latest kpi snapshot: %w", err)
	}
	k.BudgetStatus = strOf(budget)
	k.ScheduleStatus = strOf(schedule)
	k.Notes = strOf(notes)
	if k.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing kpi created_at: %w", err)
	}
	return &k, nil
}

// InsertActivity appends one row to the activity log.
func (s *MasterStore) InsertActivity(a *types.Activity) error {
	_, err := s.db.Exec(
		"INSERT INTO user_activity (user_id, activity_type, activity_description, related_project_id, created_at) VALUES (?, ?, ?, ?, ?)",
		a.UserID, a.Type, a.Description, nullInt(a.RelatedProjectID), formatTime(now()),
	)
	if err != nil {
		return fmt.Errorf("inserting activity: %w", err)
	}
	return nil
}

// RecentActivity returns the newest activity rows, optionally restricted to
// one user (userID > 0), joined with the username.
func (s *MasterStore) RecentActivity(userID int64, limit int) ([]types.Activity, error) {
	if limit <= 0 {
		limit = 10
	}
	query := `SELECT a.activity_id, a.user_id, u.username, a.activity_type,
        a.activity_description, a.related_project_id, a.created_at
        FROM user_activity a JOIN users u ON u.user_id = a.user_id`
	args := []any{}
	if userID > 0 {
		query += " WHERE a.user_id = ?"
		args = append(args, userID)
	}
	query += " ORDER BY a.activity_id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing activity: %w", err)
	}
	defer rows.Close()

	var out []types.Activity
	for rows.Next() {
		var a types.Activity
		var related sql.NullInt64
		var createdAt string
		if err := rows.Scan(&a.ActivityID, &a.UserID, &a.Username, &a.Type,
			&a.Description, &related, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning activity: %w", err)
		}
		a.RelatedProjectID = intPtrOf(related)
		if a.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("parsing activity created_at: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
