// Package health computes a heuristic project health score from schedule
// adherence, KPI freshness, and status. The score is a weighted average over
// five factors; budget and dependency data are not tracked per project yet,
// so those factors default to full marks and act as a damper rather than a
// signal.
package health

import (
	"time"

	"github.com/fieldscope/vztrack/pkg/types"
)

// Factor weights. They sum to 1.
const (
	weightSchedule     = 0.30
	weightKPIFreshness = 0.20
	weightStatus       = 0.20
	weightBudget       = 0.15
	weightDependencies = 0.15
)

const neutralScore = 70.0

// Breakdown is the per-factor score, each on a 0-100 scale.
type Breakdown struct {
	Schedule     float64 `json:"schedule"`
	KPIFreshness float64 `json:"kpi_freshness"`
	Status       float64 `json:"status"`
	Budget       float64 `json:"budget"`
	Dependencies float64 `json:"dependencies"`
}

// Score is a project's computed health.
type Score struct {
	Total     float64   `json:"total_score"`
	Grade     string    `json:"grade"`
	Label     string    `json:"status_text"`
	Breakdown Breakdown `json:"breakdown"`
}

// Calculate scores a project as of now. latestSnapshot is the project's most
// recent KPI snapshot, or nil if none exists.
func Calculate(p *types.Project, latestSnapshot *types.KPISnapshot) Score {
	return calculateAt(p, latestSnapshot, time.Now())
}

func calculateAt(p *types.Project, latestSnapshot *types.KPISnapshot, today time.Time) Score {
	b := Breakdown{
		Schedule:     scheduleScore(p, today),
		KPIFreshness: freshnessScore(latestSnapshot, today),
		Status:       statusScore(p.Status),
		Budget:       100,
		Dependencies: 100,
	}

	total := b.Schedule*weightSchedule +
		b.KPIFreshness*weightKPIFreshness +
		b.Status*weightStatus +
		b.Budget*weightBudget +
		b.Dependencies*weightDependencies

	grade, label := gradeOf(total)
	return Score{Total: total, Grade: grade, Label: label, Breakdown: b}
}

// scheduleScore rewards projects on or ahead of their completion date and
// docks five points per day overdue. A project with no completion date
// scores neutral.
func scheduleScore(p *types.Project, today time.Time) float64 {
	if p.Status == types.StatusCompleted {
		return 100
	}
	if p.ProjectCompleteDate == "" {
		return neutralScore
	}
	complete, err := time.Parse("2006-01-02", p.ProjectCompleteDate)
	if err != nil {
		return neutralScore
	}
	if !complete.Before(today.Truncate(24 * time.Hour)) {
		return 100
	}
	if p.Status == types.StatusActive {
		daysOverdue := int(today.Sub(complete).Hours() / 24)
		score := 100 - float64(daysOverdue)*5
		if score < 0 {
			return 0
		}
		return score
	}
	return neutralScore
}

// freshnessScore rates how recently KPIs were captured: within a week is
// current, within a month is stale, anything older is a red flag, and a
// project with no snapshots at all scores lowest.
func freshnessScore(latest *types.KPISnapshot, today time.Time) float64 {
	if latest == nil {
		return 50
	}
	captured, err := time.Parse("2006-01-02", latest.SnapshotDate)
	if err != nil {
		return 50
	}
	age := today.Sub(captured)
	switch {
	case age <= 7*24*time.Hour:
		return 100
	case age <= 30*24*time.Hour:
		return 70
	default:
		return 40
	}
}

func statusScore(status string) float64 {
	switch status {
	case types.StatusActive, types.StatusCompleted:
		return 100
	case types.StatusOnHold:
		return 60
	case types.StatusCancelled:
		return 0
	default:
		return neutralScore
	}
}

func gradeOf(total float64) (grade, label string) {
	switch {
	case total >= 90:
		return "A", "Excellent"
	case total >= 80:
		return "B", "Good"
	case total >= 70:
		return "C", "Fair"
	case total >= 60:
		return "D", "Needs Attention"
	default:
		return "F", "Critical"
	}
}
