package constraint

import (
	"testing"
	"time"

	"github.com/danfeder/schedule-engine/pkg/grid"
	"github.com/danfeder/schedule-engine/pkg/relax"
	"github.com/danfeder/schedule-engine/pkg/schedule"
)

func buildFixture(t *testing.T, req schedule.Request) (*grid.Grid, *BuildContext) {
	t.Helper()
	g, err := grid.Build(req)
	if err != nil {
		t.Fatalf("grid.Build: %v", err)
	}
	rc := relax.NewController()
	return g, NewBuildContext(g, req, rc)
}

func baseRequest() schedule.Request {
	start := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)
	return schedule.Request{
		StartDate: start,
		EndDate:   start.AddDate(0, 0, 4),
		Classes: []schedule.Class{
			{ID: "math"},
			{ID: "art"},
		},
		Constraints: schedule.GlobalConstraints{
			MaxClassesPerDay:  8,
			MaxClassesPerWeek: 40,
		},
	}
}

func TestRegistryBuildAppliesAllConstraints(t *testing.T) {
	req := baseRequest()
	_, ctx := buildFixture(t, req)
	cs, m, err := Build(ctx)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(cs) != 10 {
		t.Fatalf("expected 10 registered constraints, got %d", len(cs))
	}
	for _, classID := range []string{"math", "art"} {
		if len(m.ClassDomains[classID]) == 0 {
			t.Errorf("expected a non-empty domain for %q", classID)
		}
	}
}

func TestSingleAssignmentValidate(t *testing.T) {
	req := baseRequest()
	_, ctx := buildFixture(t, req)
	c := NewSingleAssignment()

	ok := []schedule.Assignment{
		{ClassID: "math", Date: req.StartDate, DayOfWeek: 1, Period: 1},
		{ClassID: "art", Date: req.StartDate, DayOfWeek: 1, Period: 2},
	}
	if v := c.Validate(ok, ctx); len(v) != 0 {
		t.Errorf("expected no violations, got %v", v)
	}

	missing := []schedule.Assignment{
		{ClassID: "math", Date: req.StartDate, DayOfWeek: 1, Period: 1},
	}
	if v := c.Validate(missing, ctx); len(v) != 1 {
		t.Errorf("expected 1 violation for the missing 'art' assignment, got %d", len(v))
	}
}

func TestNoOverlapValidate(t *testing.T) {
	req := baseRequest()
	_, ctx := buildFixture(t, req)
	c := NewNoOverlap()

	overlap := []schedule.Assignment{
		{ClassID: "math", Date: req.StartDate, DayOfWeek: 1, Period: 1},
		{ClassID: "art", Date: req.StartDate, DayOfWeek: 1, Period: 1},
	}
	if v := c.Validate(overlap, ctx); len(v) != 1 {
		t.Errorf("expected 1 overlap violation, got %d", len(v))
	}
}

func TestInstructorAvailabilityPrunesDomain(t *testing.T) {
	req := baseRequest()
	req.InstructorAvailability = []schedule.InstructorUnavailability{
		{Date: req.StartDate, Periods: []int{1}},
	}
	g, ctx := buildFixture(t, req)
	m := NewModel(g, req)
	c := NewInstructorAvailability()
	if err := c.Apply(ctx, m); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	for _, id := range m.ClassDomains["math"] {
		v := g.Var(id)
		if v.RawDate == req.StartDate.Unix() && v.Period == 1 {
			t.Fatal("expected period 1 on the unavailable date to be pruned from math's domain")
		}
	}
}

func TestRequiredPeriodsRestrictsDomain(t *testing.T) {
	req := baseRequest()
	req.Classes[0].WeeklySchedule.RequiredPeriods = []schedule.TimeSlot{{DayOfWeek: 1, Period: 3}}
	g, ctx := buildFixture(t, req)
	m := NewModel(g, req)
	c := NewRequiredPeriods()
	if err := c.Apply(ctx, m); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	for _, id := range m.ClassDomains["math"] {
		v := g.Var(id)
		if v.Slot != (schedule.TimeSlot{DayOfWeek: 1, Period: 3}) {
			t.Fatalf("expected math's domain to be restricted to its required slot, found %v", v.Slot)
		}
	}
}

func TestDailyLimitRelaxationWidensCap(t *testing.T) {
	req := baseRequest()
	req.Constraints.MaxClassesPerDay = 2
	g, ctx := buildFixture(t, req)
	m := NewModel(g, req)
	c := NewDailyLimit()
	ctx.Relax.Register(c.Name(), false)

	if err := c.Apply(ctx, m); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	baseCap := m.DailyCap[req.StartDate.Unix()]
	if baseCap != 2 {
		t.Fatalf("expected base cap 2, got %d", baseCap)
	}

	ctx.Relax.Raise(c.Name(), relax.LevelModerate)
	if err := c.Apply(ctx, m); err != nil {
		t.Fatalf("Apply after relax: %v", err)
	}
	relaxedCap := m.DailyCap[req.StartDate.Unix()]
	if relaxedCap <= baseCap {
		t.Errorf("expected relaxed cap to exceed base cap, got base=%d relaxed=%d", baseCap, relaxedCap)
	}
}

func TestConsecutiveClassesValidateDetectsTripleRun(t *testing.T) {
	req := baseRequest()
	_, ctx := buildFixture(t, req)
	c := NewConsecutiveClasses()
	assignments := []schedule.Assignment{
		{ClassID: "math", Date: req.StartDate, DayOfWeek: 1, Period: 1},
		{ClassID: "art", Date: req.StartDate, DayOfWeek: 1, Period: 2},
	}
	assignments = append(assignments, schedule.Assignment{ClassID: "math", Date: req.StartDate, DayOfWeek: 1, Period: 3})
	if v := c.Validate(assignments, ctx); len(v) == 0 {
		t.Error("expected a violation for a 3-period consecutive run")
	}
}

func TestTeacherBreakPrunesDomain(t *testing.T) {
	req := baseRequest()
	req.Constraints.RequiredBreakPeriods = []int{4}
	g, ctx := buildFixture(t, req)
	m := NewModel(g, req)
	c := NewTeacherBreak()
	if err := c.Apply(ctx, m); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	for _, id := range m.ClassDomains["math"] {
		if g.Var(id).Period == 4 {
			t.Fatal("expected period 4 to be pruned as a required break period")
		}
	}
}

func TestValidateAllConcatenatesViolations(t *testing.T) {
	req := baseRequest()
	_, ctx := buildFixture(t, req)
	cs, _, err := Build(ctx)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	// Only one class assigned: SingleAssignment should flag the other.
	assignments := []schedule.Assignment{
		{ClassID: "math", Date: req.StartDate, DayOfWeek: 1, Period: 1},
	}
	violations := ValidateAll(cs, assignments, ctx)
	if len(violations) == 0 {
		t.Error("expected at least one violation for the missing 'art' assignment")
	}
}
