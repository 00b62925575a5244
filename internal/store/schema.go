// Package store implements SQLite access for the three vztrack stores: the
// per-user local store (staging area with sync tracking), the shared master
// store (canonical data), and the tracker store backing the REST API's
// write-through notes and tasks.
package store

// Local store DDL. Every row carries a sync_status; the local_id surrogate
// key never leaves the store, correlation across stores is by ccr_nfid.
const (
	createLocalProjects = `CREATE TABLE IF NOT EXISTS projects (
    local_id INTEGER PRIMARY KEY AUTOINCREMENT,
    master_project_id INTEGER,
    name TEXT NOT NULL,
    ccr_nfid TEXT UNIQUE NOT NULL,
    program_id INTEGER,
    project_type_id INTEGER,
    pm_id INTEGER NOT NULL,
    status TEXT NOT NULL DEFAULT 'Active' CHECK(status IN ('Active', 'On Hold', 'Completed', 'Cancelled')),
    phase TEXT,
    notes TEXT,
    nfid TEXT,
    customer TEXT,
    clli TEXT,
    rft_date TEXT,
    system_type TEXT,
    current_queue TEXT,
    site_address TEXT,
    project_start_date TEXT,
    project_complete_date TEXT,
    sync_status TEXT NOT NULL DEFAULT 'new' CHECK(sync_status IN ('new', 'updated', 'synced')),
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createLocalKPISnapshots = `CREATE TABLE IF NOT EXISTS kpi_snapshots (
    local_snapshot_id INTEGER PRIMARY KEY AUTOINCREMENT,
    master_snapshot_id INTEGER,
    local_project_id INTEGER NOT NULL REFERENCES projects(local_id),
    snapshot_date TEXT NOT NULL,
    budget_status TEXT,
    schedule_status TEXT,
    on_time_percent REAL NOT NULL DEFAULT 0,
    notes TEXT,
    sync_status TEXT NOT NULL DEFAULT 'new' CHECK(sync_status IN ('new', 'updated', 'synced')),
    created_at TEXT NOT NULL
);`

	createLocalDependencies = `CREATE TABLE IF NOT EXISTS project_dependencies (
    local_dependency_id INTEGER PRIMARY KEY AUTOINCREMENT,
    master_dependency_id INTEGER,
    local_project_id INTEGER NOT NULL REFERENCES projects(local_id),
    depends_on_local_project_id INTEGER NOT NULL REFERENCES projects(local_id),
    dependency_type TEXT NOT NULL DEFAULT 'Finish-to-Start',
    notes TEXT,
    sync_status TEXT NOT NULL DEFAULT 'new' CHECK(sync_status IN ('new', 'updated', 'synced')),
    created_at TEXT NOT NULL
);`

	createLocalContacts = `CREATE TABLE IF NOT EXISTS project_contacts (
    local_contact_id INTEGER PRIMARY KEY AUTOINCREMENT,
    master_contact_id INTEGER,
    local_project_id INTEGER NOT NULL REFERENCES projects(local_id),
    contact_name TEXT NOT NULL,
    contact_role TEXT NOT NULL,
    contact_email TEXT,
    sync_status TEXT NOT NULL DEFAULT 'new' CHECK(sync_status IN ('new', 'updated', 'synced')),
    created_at TEXT NOT NULL
);`
)

// localSchema lists the local store DDL in dependency order.
var localSchema = []string{
	createLocalProjects,
	createLocalKPISnapshots,
	createLocalDependencies,
	createLocalContacts,
}

// Master store DDL. The child tables carry a UNIQUE natural key so that
// merge upserts are idempotent: double-applying a bundle changes nothing.
const (
	createMasterUsers = `CREATE TABLE IF NOT EXISTS users (
    user_id INTEGER PRIMARY KEY AUTOINCREMENT,
    username TEXT UNIQUE NOT NULL,
    full_name TEXT NOT NULL,
    role TEXT NOT NULL CHECK(role IN ('Project Manager', 'Associate Director')),
    password_hash TEXT NOT NULL,
    active INTEGER NOT NULL DEFAULT 1,
    created_at TEXT NOT NULL
);`

	createMasterPrograms = `CREATE TABLE IF NOT EXISTS programs (
    program_id INTEGER PRIMARY KEY AUTOINCREMENT,
    program_name TEXT UNIQUE NOT NULL,
    description TEXT,
    created_at TEXT NOT NULL
);`

	createMasterProjectTypes = `CREATE TABLE IF NOT EXISTS project_types (
    type_id INTEGER PRIMARY KEY AUTOINCREMENT,
    type_name TEXT UNIQUE NOT NULL,
    description TEXT,
    created_at TEXT NOT NULL
);`

	createMasterProjects = `CREATE TABLE IF NOT EXISTS projects (
    project_id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    ccr_nfid TEXT UNIQUE NOT NULL,
    program_id INTEGER REFERENCES programs(program_id),
    project_type_id INTEGER REFERENCES project_types(type_id),
    pm_id INTEGER NOT NULL,
    status TEXT NOT NULL DEFAULT 'Active' CHECK(status IN ('Active', 'On Hold', 'Completed', 'Cancelled')),
    phase TEXT,
    notes TEXT,
    nfid TEXT,
    customer TEXT,
    clli TEXT,
    rft_date TEXT,
    system_type TEXT,
    current_queue TEXT,
    site_address TEXT,
    project_start_date TEXT,
    project_complete_date TEXT,
    last_synced_by TEXT,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createMasterKPISnapshots = `CREATE TABLE IF NOT EXISTS kpi_snapshots (
    snapshot_id INTEGER PRIMARY KEY AUTOINCREMENT,
    project_id INTEGER NOT NULL REFERENCES projects(project_id),
    snapshot_date TEXT NOT NULL,
    budget_status TEXT,
    schedule_status TEXT,
    on_time_percent REAL NOT NULL DEFAULT 0,
    notes TEXT,
    created_at TEXT NOT NULL,
    UNIQUE(project_id, snapshot_date)
);`

	createMasterDependencies = `CREATE TABLE IF NOT EXISTS project_dependencies (
    dependency_id INTEGER PRIMARY KEY AUTOINCREMENT,
    project_id INTEGER NOT NULL REFERENCES projects(project_id),
    depends_on_project_id INTEGER NOT NULL REFERENCES projects(project_id),
    dependency_type TEXT NOT NULL DEFAULT 'Finish-to-Start',
    notes TEXT,
    created_at TEXT NOT NULL,
    UNIQUE(project_id, depends_on_project_id, dependency_type)
);`

	createMasterContacts = `CREATE TABLE IF NOT EXISTS project_contacts (
    contact_id INTEGER PRIMARY KEY AUTOINCREMENT,
    project_id INTEGER NOT NULL REFERENCES projects(project_id),
    contact_name TEXT NOT NULL,
    contact_role TEXT NOT NULL,
    contact_email TEXT,
    created_at TEXT NOT NULL,
    UNIQUE(project_id, contact_name, contact_role)
);`

	createMasterActivity = `CREATE TABLE IF NOT EXISTS user_activity (
    activity_id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id INTEGER NOT NULL REFERENCES users(user_id),
    activity_type TEXT NOT NULL,
    activity_description TEXT NOT NULL,
    related_project_id INTEGER REFERENCES projects(project_id),
    created_at TEXT NOT NULL
);`
)

// masterSchema lists the master store DDL in dependency order.
var masterSchema = []string{
	createMasterUsers,
	createMasterPrograms,
	createMasterProjectTypes,
	createMasterProjects,
	createMasterKPISnapshots,
	createMasterDependencies,
	createMasterContacts,
	createMasterActivity,
}

// Tracker store DDL: user-generated content keyed by the external project
// number, written through by the REST backend.
const (
	createTrackerNotes = `CREATE TABLE IF NOT EXISTS project_notes (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    project_number TEXT NOT NULL,
    title TEXT NOT NULL,
    content TEXT,
    tags TEXT,
    created_by TEXT,
    created_date TEXT NOT NULL,
    modified_date TEXT NOT NULL
);`

	createTrackerTasks = `CREATE TABLE IF NOT EXISTS user_tasks (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    project_number TEXT NOT NULL,
    task_name TEXT NOT NULL,
    description TEXT,
    status TEXT NOT NULL DEFAULT 'Pending',
    priority TEXT NOT NULL DEFAULT 'Medium',
    assigned_to TEXT,
    due_date TEXT,
    completed_date TEXT,
    created_date TEXT NOT NULL,
    modified_date TEXT NOT NULL
);`
)

// trackerSchema lists the tracker store DDL.
var trackerSchema = []string{
	createTrackerNotes,
	createTrackerTasks,
}
