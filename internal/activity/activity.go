// Package activity records user actions in the master store's activity log.
// Logging is best effort: the master store lives on a shared directory that
// may be unreachable while working offline, so a failed write is reported to
// the structured log and otherwise swallowed.
package activity

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/fieldscope/vztrack/internal/store"
	"github.com/fieldscope/vztrack/pkg/types"
)

// Logger writes typed activity rows for one user.
type Logger struct {
	master *store.MasterStore
	userID int64
	log    *zap.Logger
}

// NewLogger returns an activity logger for the given user. A nil master
// store turns every record call into a no-op, which is the offline case.
func NewLogger(master *store.MasterStore, userID int64, log *zap.Logger) *Logger {
	return &Logger{master: master, userID: userID, log: log}
}

func (l *Logger) record(activityType, description string, projectID *int64) {
	if l.master == nil {
		return
	}
	err := l.master.InsertActivity(&types.Activity{
		UserID:           l.userID,
		Type:             activityType,
		Description:      description,
		RelatedProjectID: projectID,
	})
	if err != nil {
		l.log.Warn("activity not recorded",
			zap.String("type", activityType), zap.Error(err))
	}
}

// Login records a successful login.
func (l *Logger) Login(username string) {
	l.record(types.ActivityLogin, fmt.Sprintf("%s logged in", username), nil)
}

// Logout records a logout.
func (l *Logger) Logout(username string) {
	l.record(types.ActivityLogout, fmt.Sprintf("%s logged out", username), nil)
}

// ProjectCreated records a new local project.
func (l *Logger) ProjectCreated(ccrNFID string) {
	l.record(types.ActivityProjectCreated, fmt.Sprintf("created project %s", ccrNFID), nil)
}

// ProjectUpdated records a local project edit.
func (l *Logger) ProjectUpdated(ccrNFID string) {
	l.record(types.ActivityProjectUpdated, fmt.Sprintf("updated project %s", ccrNFID), nil)
}

// KPISnapshot records a captured KPI snapshot.
func (l *Logger) KPISnapshot(ccrNFID, date string) {
	l.record(types.ActivityKPISnapshot, fmt.Sprintf("kpi snapshot for %s on %s", ccrNFID, date), nil)
}

// Synced records a completed sync with the bundled item count.
func (l *Logger) Synced(filename string, items int) {
	l.record(types.ActivitySync, fmt.Sprintf("synced %d items to %s", items, filename), nil)
}

// Merged records a completed bundle merge with the applied item count.
func (l *Logger) Merged(filename string, applied, skipped int) {
	l.record(types.ActivityMerge, fmt.Sprintf("merged %s: %d applied, %d skipped", filename, applied, skipped), nil)
}
