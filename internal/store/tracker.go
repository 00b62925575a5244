package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/fieldscope/vztrack/pkg/types"
)

// Note is a free-text note attached to an external project number.
type Note struct {
	ID            int64     `json:"id"`
	ProjectNumber string    `json:"project_number"`
	Title         string    `json:"title"`
	Content       string    `json:"content,omitempty"`
	Tags          string    `json:"tags,omitempty"`
	CreatedBy     string    `json:"created_by,omitempty"`
	CreatedDate   time.Time `json:"created_date"`
	ModifiedDate  time.Time `json:"modified_date"`
}

// Task statuses for tracker tasks.
const (
	TaskPending    = "Pending"
	TaskInProgress = "In Progress"
	TaskCompleted  = "Completed"
)

// Task is a user task attached to an external project number.
type Task struct {
	ID            int64     `json:"id"`
	ProjectNumber string    `json:"project_number"`
	Name          string    `json:"task_name"`
	Description   string    `json:"description,omitempty"`
	Status        string    `json:"status"`
	Priority      string    `json:"priority"`
	AssignedTo    string    `json:"assigned_to,omitempty"`
	DueDate       string    `json:"due_date,omitempty"`
	CompletedDate string    `json:"completed_date,omitempty"`
	CreatedDate   time.Time `json:"created_date"`
	ModifiedDate  time.Time `json:"modified_date"`
}

// TrackerStore backs the REST API's write-through notes and tasks, keyed by
// the external reporting system's project number.
type TrackerStore struct {
	db   *sql.DB
	path string
}

// OpenTracker opens (creating if needed) the tracker store at path.
func OpenTracker(path string) (*TrackerStore, error) {
	db, err := openDB(path, trackerSchema)
	if err != nil {
		return nil, err
	}
	return &TrackerStore{db: db, path: path}, nil
}

// Close releases the underlying connection. Idempotent.
func (s *TrackerStore) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// CreateNote inserts a note and returns its id.
func (s *TrackerStore) CreateNote(n *Note) (int64, error) {
	if n.ProjectNumber == "" || n.Title == "" {
		return 0, types.ErrInvalidName
	}
	ts := formatTime(now())
	res, err := s.db.Exec(
		"INSERT INTO project_notes (project_number, title, content, tags, created_by, created_date, modified_date) VALUES (?, ?, ?, ?, ?, ?, ?)",
		n.ProjectNumber, n.Title, nullStr(n.Content), nullStr(n.Tags), nullStr(n.CreatedBy), ts, ts,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting note: %w", err)
	}
	return res.LastInsertId()
}

// NotesForProject returns all notes for a project number, newest first.
func (s *TrackerStore) NotesForProject(projectNumber string) ([]Note, error) {
	rows, err := s.db.Query(`SELECT id, project_number, title, content, tags, created_by,
        created_date, modified_date FROM project_notes
        WHERE project_number = ? ORDER BY id DESC`, projectNumber)
	if err != nil {
		return nil, fmt.Errorf("listing notes: %w", err)
	}
	defer rows.Close()

	var out []Note
	for rows.Next() {
		var n Note
		var content, tags, createdBy sql.NullString
		var created, modified string
		if err := rows.Scan(&n.ID, &n.ProjectNumber, &n.Title, &content, &tags,
			&createdBy, &created, &modified); err != nil {
			return nil, fmt.Errorf("scanning note: %w", err)
		}
		n.Content = strOf(content)
		n.Tags = strOf(tags)
		n.CreatedBy = strOf(createdBy)
		if n.CreatedDate, err = parseTime(created); err != nil {
			return nil, fmt.Errorf("parsing note created_date: %w", err)
		}
		if n.ModifiedDate, err = parseTime(modified); err != nil {
			return nil, fmt.Errorf("parsing note modified_date: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// DeleteNote removes a note by id. Returns ErrNotFound if absent.
func (s *TrackerStore) DeleteNote(id int64) error {
	res, err := s.db.Exec("DELETE FROM project_notes WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting note %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: note %d", types.ErrNotFound, id)
	}
	return nil
}

// CreateTask inserts a task and returns its id.
func (s *TrackerStore) CreateTask(t *Task) (int64, error) {
	if t.ProjectNumber == "" || t.Name == "" {
		return 0, types.ErrInvalidName
	}
	if t.Status == "" {
		t.Status = TaskPending
	}
	if t.Priority == "" {
		t.Priority = "Medium"
	}
	ts := formatTime(now())
	res, err := s.db.Exec(`INSERT INTO user_tasks (
        project_number, task_name, description, status, priority, assigned_to,
        due_date, created_date, modified_date
    ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ProjectNumber, t.Name, nullStr(t.Description), t.Status, t.Priority,
		nullStr(t.AssignedTo), nullStr(t.DueDate), ts, ts,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting task: %w", err)
	}
	return res.LastInsertId()
}

// CompleteTask marks a task completed. Returns ErrNotFound if absent.
func (s *TrackerStore) CompleteTask(id int64) error {
	ts := formatTime(now())
	res, err := s.db.Exec(
		"UPDATE user_tasks SET status = ?, completed_date = ?, modified_date = ? WHERE id = ?",
		TaskCompleted, ts, ts, id,
	)
	if err != nil {
		return fmt.Errorf("completing task %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: task %d", types.ErrNotFound, id)
	}
	return nil
}

// TasksForProject returns all tasks for a project number in insertion order.
func (s *TrackerStore) TasksForProject(projectNumber string) ([]Task, error) {
	rows, err := s.db.Query(`SELECT id, project_number, task_name, description, status,
        priority, assigned_to, due_date, completed_date, created_date, modified_date
        FROM user_tasks WHERE project_number = ? ORDER BY id ASC`, projectNumber)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer rows.Close()

	var out []Task
	for rows.Next() {
		var t Task
		var desc, assigned, due, completed sql.NullString
		var created, modified string
		if err := rows.Scan(&t.ID, &t.ProjectNumber, &t.Name, &desc, &t.Status,
			&t.Priority, &assigned, &due, &completed, &created, &modified); err != nil {
			return nil, fmt.Errorf("scanning task: %w", err)
		}
		t.Description = strOf(desc)
		t.AssignedTo = strOf(assigned)
		t.DueDate = strOf(due)
		t.CompletedDate = strOf(completed)
		if t.CreatedDate, err = parseTime(created); err != nil {
			return nil, fmt.Errorf("parsing task created_date: %w", err)
		}
		if t.ModifiedDate, err = parseTime(modified); err != nil {
			return nil, fmt.Errorf("parsing task modified_date: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
