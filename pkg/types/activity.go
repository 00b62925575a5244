package types

import "time"

// Activity event types recorded in the master store.
const (
	ActivityLogin          = "login"
	ActivityLogout         = "logout"
	ActivityProjectCreated = "project_created"
	ActivityProjectUpdated = "project_updated"
	ActivityKPISnapshot    = "kpi_snapshot"
	ActivitySync           = "sync"
	ActivityMerge          = "merge"
)

// Activity is one user action recorded in the master store's activity log.
type Activity struct {
	ActivityID       int64     `json:"activity_id"`
	UserID           int64     `json:"user_id"`
	Username         string    `json:"username,omitempty"`
	Type             string    `json:"activity_type"`
	Description      string    `json:"activity_description"`
	RelatedProjectID *int64    `json:"related_project_id,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}
