package solver

import (
	"testing"

	"github.com/danfeder/schedule-engine/pkg/schedule"
)

func TestNewRegistryHasTheFixedThreeStrategies(t *testing.T) {
	r := NewRegistry()
	names := r.Names()
	if len(names) != 3 {
		t.Fatalf("expected 3 registered strategies, got %d: %v", len(names), names)
	}
	want := map[string]bool{"or_tools": true, "genetic": true, "hybrid": true}
	for _, n := range names {
		if !want[n] {
			t.Errorf("unexpected strategy name %q", n)
		}
	}
}

func TestRegistryGetReturnsNilForUnknownName(t *testing.T) {
	r := NewRegistry()
	if r.Get("nonexistent") != nil {
		t.Error("expected Get to return nil for an unregistered strategy name")
	}
}

func TestSelectRefusesExactSolutionToGenetic(t *testing.T) {
	r := NewRegistry()
	req := schedule.Request{Classes: []schedule.Class{{ID: "a"}}}
	opts := Options{OptimizationLevel: "standard", RequireExactSolution: true}
	name, err := r.Select(req, opts)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if name == "genetic" {
		t.Error("expected genetic to be excluded when RequireExactSolution is set")
	}
}

func TestSelectErrorsWhenNoStrategyAccepts(t *testing.T) {
	// hybrid always accepts, so the registry here holds only the two
	// strategies that can refuse.
	r := &Registry{strategies: make(map[string]Strategy)}
	r.register(&orToolsStrategy{})
	r.register(&geneticStrategy{})
	classes := make([]schedule.Class, 200)
	for i := range classes {
		classes[i] = schedule.Class{ID: "c"}
	}
	instr := make([]schedule.InstructorUnavailability, 40)
	req := schedule.Request{Classes: classes, InstructorAvailability: instr}
	opts := Options{OptimizationLevel: "standard", RequireExactSolution: true}
	if _, err := r.Select(req, opts); err == nil {
		t.Error("expected an error when or_tools refuses the size and genetic refuses requireExactSolution")
	}
}

func TestCapabilityScorePrefersIntensiveForOrTools(t *testing.T) {
	or := &orToolsStrategy{}
	req := schedule.Request{Classes: []schedule.Class{{ID: "a"}}}
	standard := capabilityScore(or, req, Options{OptimizationLevel: "standard"})
	intensive := capabilityScore(or, req, Options{OptimizationLevel: "intensive"})
	if intensive <= standard {
		t.Errorf("expected intensive optimization level to score or_tools higher: intensive=%d standard=%d", intensive, standard)
	}
}

func TestCapabilityScoreClampsToHundred(t *testing.T) {
	hybrid := &hybridStrategy{}
	req := schedule.Request{Classes: []schedule.Class{{ID: "a"}}}
	opts := Options{
		OptimizationLevel:              "intensive",
		EnableRelaxation:               true,
		EnableDistributionOptimization: true,
		EnableWorkloadBalancing:        true,
	}
	score := capabilityScore(hybrid, req, opts)
	if score > 100 {
		t.Errorf("expected score to be clamped to 100, got %d", score)
	}
}

func TestOrToolsStrategyRefusesLargeCombinedProblem(t *testing.T) {
	or := orToolsStrategy{}
	classes := make([]schedule.Class, 151)
	instr := make([]schedule.InstructorUnavailability, 31)
	req := schedule.Request{Classes: classes, InstructorAvailability: instr}
	ok, reason := or.CanSolve(req, Options{})
	if ok {
		t.Error("expected or_tools to refuse a problem with >150 classes and >30 instructors")
	}
	if reason == "" {
		t.Error("expected a non-empty refusal reason")
	}
}

func TestGeneticStrategyRefusesExactSolutionRequirement(t *testing.T) {
	g := geneticStrategy{}
	ok, reason := g.CanSolve(schedule.Request{}, Options{RequireExactSolution: true})
	if ok {
		t.Error("expected genetic to refuse when requireExactSolution is set")
	}
	if reason == "" {
		t.Error("expected a non-empty refusal reason")
	}
}

func TestHybridStrategyAlwaysAccepts(t *testing.T) {
	h := hybridStrategy{}
	ok, _ := h.CanSolve(schedule.Request{}, Options{RequireExactSolution: true})
	if !ok {
		t.Error("expected hybrid to always accept")
	}
}
