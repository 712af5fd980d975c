package obslog

import "testing"

func TestNewBuildsADevelopmentLogger(t *testing.T) {
	l, err := New("development", "debug")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if l == nil {
		t.Fatal("expected a non-nil logger")
	}
}

func TestNewFallsBackOnInvalidLevel(t *testing.T) {
	l, err := New("production", "not-a-level")
	if err != nil {
		t.Fatalf("New should not error on an invalid level, got %v", err)
	}
	if l == nil {
		t.Fatal("expected a non-nil logger")
	}
}

func TestConfigureReplacesGlobal(t *testing.T) {
	before := L()
	if err := Configure("development", "warn"); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	after := L()
	if before == after {
		t.Error("expected Configure to install a new global logger instance")
	}
	// restore production default so other tests observe the usual logger
	_ = Configure("production", "info")
}
