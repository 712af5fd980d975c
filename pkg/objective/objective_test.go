package objective

import (
	"testing"
	"time"

	"github.com/danfeder/schedule-engine/pkg/grid"
	"github.com/danfeder/schedule-engine/pkg/schedule"
)

func fixture(t *testing.T) (schedule.Request, *Context) {
	t.Helper()
	start := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)
	req := schedule.Request{
		StartDate: start,
		EndDate:   start.AddDate(0, 0, 4),
		Classes: []schedule.Class{
			{ID: "math", Grade: "3", WeeklySchedule: schedule.WeeklySchedule{
				RequiredPeriods:  []schedule.TimeSlot{{DayOfWeek: 1, Period: 1}},
				PreferredPeriods: []schedule.TimeSlot{{DayOfWeek: 1, Period: 1}},
				PreferenceWeight: 1,
			}},
			{ID: "art", Grade: "3"},
		},
	}
	g, err := grid.Build(req)
	if err != nil {
		t.Fatalf("grid.Build: %v", err)
	}
	return req, NewContext(req, g)
}

func TestNewDefaultSetHasTenObjectives(t *testing.T) {
	s := NewDefaultSet()
	if len(s.Objectives()) != 10 {
		t.Fatalf("expected 10 objectives, got %d", len(s.Objectives()))
	}
}

func TestApplyWeightsOverridesNamed(t *testing.T) {
	s := NewDefaultSet()
	s.ApplyWeights(map[string]float64{"RequiredPeriods": 1})
	if s.Get("RequiredPeriods").Weight() != 1 {
		t.Errorf("RequiredPeriods weight = %v, want 1", s.Get("RequiredPeriods").Weight())
	}
	if s.Get("PreferredPeriods").Weight() != DefaultPreferredPeriods {
		t.Error("unrelated objective weight should be untouched")
	}
}

func TestApplyWeightsIgnoresUnknownKeys(t *testing.T) {
	s := NewDefaultSet()
	s.ApplyWeights(map[string]float64{"NotReal": 5})
	if s.Get("NotReal") != nil {
		t.Error("expected Get to return nil for an unknown objective")
	}
}

func TestRequiredPeriodsRewardsRequiredSlot(t *testing.T) {
	req, ctx := fixture(t)
	assignments := []schedule.Assignment{
		{ClassID: "math", Date: req.StartDate, DayOfWeek: 1, Period: 1},
		{ClassID: "art", Date: req.StartDate, DayOfWeek: 1, Period: 2},
	}
	o := &requiredPeriods{base{"RequiredPeriods", DefaultRequiredPeriods}}
	got := o.Score(assignments, ctx)
	want := DefaultRequiredPeriods // only math's assignment counts
	if got != want {
		t.Errorf("Score = %v, want %v", got, want)
	}
}

func TestPreferredPeriodsScalesByPreferenceWeight(t *testing.T) {
	req, ctx := fixture(t)
	assignments := []schedule.Assignment{
		{ClassID: "math", Date: req.StartDate, DayOfWeek: 1, Period: 1},
	}
	o := &preferredPeriods{base{"PreferredPeriods", DefaultPreferredPeriods}}
	got := o.Score(assignments, ctx)
	want := DefaultPreferredPeriods * 1 // PreferenceWeight is 1
	if got != want {
		t.Errorf("Score = %v, want %v", got, want)
	}
}

func TestBreakdownCoversAllObjectives(t *testing.T) {
	req, ctx := fixture(t)
	s := NewDefaultSet()
	assignments := []schedule.Assignment{
		{ClassID: "math", Date: req.StartDate, DayOfWeek: 1, Period: 1},
		{ClassID: "art", Date: req.StartDate, DayOfWeek: 1, Period: 2},
	}
	breakdown := s.Breakdown(assignments, ctx)
	if len(breakdown) != 10 {
		t.Fatalf("expected 10 breakdown entries, got %d", len(breakdown))
	}
	var sum float64
	for _, v := range breakdown {
		sum += v
	}
	if sum != s.Score(assignments, ctx) {
		t.Error("breakdown sum should equal Score's total")
	}
}

func TestConsecutiveSoftOnlyAppliesWhenRuleIsSoft(t *testing.T) {
	req, ctx := fixture(t)
	assignments := []schedule.Assignment{
		{ClassID: "math", Date: req.StartDate, DayOfWeek: 1, Period: 1},
		{ClassID: "art", Date: req.StartDate, DayOfWeek: 1, Period: 2},
	}
	o := &consecutiveSoft{base{"ConsecutiveSoft", DefaultConsecutiveSoft}}
	if got := o.Score(assignments, ctx); got != 0 {
		t.Errorf("expected 0 when the rule is hard (default), got %v", got)
	}

	req.Constraints.ConsecutiveClassesRule = schedule.ConsecutiveSoft
	ctx2 := NewContext(req, ctx.Grid)
	if got := o.Score(assignments, ctx2); got >= 0 {
		t.Errorf("expected a negative penalty once the rule is soft, got %v", got)
	}
}
