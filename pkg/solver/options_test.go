package solver

import (
	"encoding/json"
	"testing"

	"github.com/danfeder/schedule-engine/pkg/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	return cfg
}

func TestParseOptionsDefaultsFromConfig(t *testing.T) {
	cfg := testConfig(t)
	opts, err := ParseOptions(nil, cfg)
	if err != nil {
		t.Fatalf("ParseOptions: %v", err)
	}
	if opts.SolverType != "hybrid" {
		t.Errorf("expected default solver_type hybrid, got %q", opts.SolverType)
	}
	if opts.OptimizationLevel != "standard" {
		t.Errorf("expected default optimization_level standard, got %q", opts.OptimizationLevel)
	}
	if opts.PopulationSize != cfg.GA.PopulationSize {
		t.Errorf("expected population size to come from config GA defaults, got %d want %d", opts.PopulationSize, cfg.GA.PopulationSize)
	}
}

func TestParseOptionsOverridesFromRaw(t *testing.T) {
	cfg := testConfig(t)
	raw := json.RawMessage(`{"solver_type":"genetic","population_size":99}`)
	opts, err := ParseOptions(raw, cfg)
	if err != nil {
		t.Fatalf("ParseOptions: %v", err)
	}
	if opts.SolverType != "genetic" {
		t.Errorf("expected overridden solver_type genetic, got %q", opts.SolverType)
	}
	if opts.PopulationSize != 99 {
		t.Errorf("expected overridden population_size 99, got %d", opts.PopulationSize)
	}
}

func TestParseOptionsRejectsUnknownSolverType(t *testing.T) {
	cfg := testConfig(t)
	raw := json.RawMessage(`{"solver_type":"quantum"}`)
	if _, err := ParseOptions(raw, cfg); err == nil {
		t.Fatal("expected an error for an unknown solver_type")
	}
}

func TestParseOptionsRejectsUnknownWeightKey(t *testing.T) {
	cfg := testConfig(t)
	raw := json.RawMessage(`{"weights":{"NotARealObjective":1}}`)
	if _, err := ParseOptions(raw, cfg); err == nil {
		t.Fatal("expected an error for an unknown weight key")
	}
}

func TestParseOptionsAcceptsKnownWeightKey(t *testing.T) {
	cfg := testConfig(t)
	raw := json.RawMessage(`{"weights":{"RequiredPeriods":5}}`)
	opts, err := ParseOptions(raw, cfg)
	if err != nil {
		t.Fatalf("ParseOptions: %v", err)
	}
	if opts.Weights["RequiredPeriods"] != 5 {
		t.Errorf("expected weight override to carry through, got %v", opts.Weights["RequiredPeriods"])
	}
}

func TestParseOptionsZeroTimeoutFallsBackToThirtySeconds(t *testing.T) {
	cfg := testConfig(t)
	raw := json.RawMessage(`{"timeout_seconds":0}`)
	opts, err := ParseOptions(raw, cfg)
	if err != nil {
		t.Fatalf("ParseOptions: %v", err)
	}
	if opts.TimeoutSeconds != 30 {
		t.Errorf("expected fallback timeout of 30s, got %d", opts.TimeoutSeconds)
	}
}
