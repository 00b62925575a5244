package health

import (
	"testing"
	"time"

	"github.com/fieldscope/vztrack/pkg/types"
)

var testToday = time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

func TestCompletedProjectScoresA(t *testing.T) {
	p := &types.Project{
		Status:              types.StatusCompleted,
		ProjectCompleteDate: "2026-08-01",
	}
	snap := &types.KPISnapshot{SnapshotDate: "2026-08-27"}

	got := calculateAt(p, snap, testToday)
	if got.Grade != "A" {
		t.Errorf("grade = %s (%.1f), want A", got.Grade, got.Total)
	}
	if got.Breakdown.Schedule != 100 {
		t.Errorf("schedule = %.0f, want 100 for completed", got.Breakdown.Schedule)
	}
}

func TestOverdueProjectLosesFivePointsPerDay(t *testing.T) {
	p := &types.Project{
		Status:              types.StatusActive,
		ProjectCompleteDate: "2026-08-18", // ten days overdue
	}

	got := calculateAt(p, nil, testToday)
	if got.Breakdown.Schedule != 50 {
		t.Errorf("schedule = %.0f, want 50 after ten days overdue", got.Breakdown.Schedule)
	}
}

func TestScheduleScoreFloorsAtZero(t *testing.T) {
	p := &types.Project{
		Status:              types.StatusActive,
		ProjectCompleteDate: "2026-01-01",
	}

	got := calculateAt(p, nil, testToday)
	if got.Breakdown.Schedule != 0 {
		t.Errorf("schedule = %.0f, want 0 floor", got.Breakdown.Schedule)
	}
}

func TestNoCompletionDateIsNeutral(t *testing.T) {
	p := &types.Project{Status: types.StatusActive}

	got := calculateAt(p, nil, testToday)
	if got.Breakdown.Schedule != neutralScore {
		t.Errorf("schedule = %.0f, want neutral %v", got.Breakdown.Schedule, neutralScore)
	}
}

func TestKPIFreshnessTiers(t *testing.T) {
	cases := []struct {
		name string
		snap *types.KPISnapshot
		want float64
	}{
		{"no snapshot", nil, 50},
		{"this week", &types.KPISnapshot{SnapshotDate: "2026-08-25"}, 100},
		{"this month", &types.KPISnapshot{SnapshotDate: "2026-08-05"}, 70},
		{"stale", &types.KPISnapshot{SnapshotDate: "2026-05-01"}, 40},
		{"unparseable", &types.KPISnapshot{SnapshotDate: "soon"}, 50},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := freshnessScore(tc.snap, testToday); got != tc.want {
				t.Errorf("freshness = %.0f, want %.0f", got, tc.want)
			}
		})
	}
}

func TestStatusScores(t *testing.T) {
	cases := map[string]float64{
		types.StatusActive:    100,
		types.StatusCompleted: 100,
		types.StatusOnHold:    60,
		types.StatusCancelled: 0,
		"Unknown":             neutralScore,
	}
	for status, want := range cases {
		if got := statusScore(status); got != want {
			t.Errorf("statusScore(%q) = %.0f, want %.0f", status, got, want)
		}
	}
}

func TestGradeBoundaries(t *testing.T) {
	cases := []struct {
		total float64
		want  string
	}{
		{95, "A"}, {90, "A"}, {89.9, "B"}, {80, "B"},
		{79, "C"}, {70, "C"}, {65, "D"}, {60, "D"}, {59.9, "F"},
	}
	for _, tc := range cases {
		if grade, _ := gradeOf(tc.total); grade != tc.want {
			t.Errorf("gradeOf(%.1f) = %s, want %s", tc.total, grade, tc.want)
		}
	}
}

func TestCancelledProjectIsCritical(t *testing.T) {
	p := &types.Project{Status: types.StatusCancelled}

	got := calculateAt(p, nil, testToday)
	if got.Grade != "F" && got.Grade != "D" {
		t.Errorf("grade = %s (%.1f), want a failing grade", got.Grade, got.Total)
	}
	if got.Breakdown.Status != 0 {
		t.Errorf("status = %.0f, want 0 for cancelled", got.Breakdown.Status)
	}
}
