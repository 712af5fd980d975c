package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestRecordSolveAppearsInScrape(t *testing.T) {
	s := NewSolver()
	s.RecordSolve("genetic", "solved", 250*time.Millisecond)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	s.Handler().ServeHTTP(rec, req)

	body := rec.Body.String()
	if !strings.Contains(body, "schedule_solve_total") {
		t.Error("expected schedule_solve_total in the scrape output")
	}
	if !strings.Contains(body, `strategy="genetic"`) {
		t.Error("expected the genetic strategy label in the scrape output")
	}
}

func TestRecordBestScoreAndGenerations(t *testing.T) {
	s := NewSolver()
	s.RecordBestScore("hybrid", 1234.5)
	s.RecordGenerations("genetic", 42)
	s.RecordRelaxation("DailyLimit", 2)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	s.Handler().ServeHTTP(rec, req)

	body := rec.Body.String()
	for _, want := range []string{"schedule_best_score", "schedule_ga_generations_run", "schedule_relaxation_level"} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %q in the scrape output", want)
		}
	}
}

func TestNewSolverCollectorsAreIndependent(t *testing.T) {
	a := NewSolver()
	b := NewSolver()
	a.RecordBestScore("or_tools", 1)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	b.Handler().ServeHTTP(rec, req)

	if strings.Contains(rec.Body.String(), "schedule_best_score") {
		t.Error("a second Solver's registry should not see the first's recorded metrics")
	}
}
