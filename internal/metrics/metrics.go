// Package metrics registers the solver's Prometheus collectors,
// grounded on the NewMetricsService constructor shape of
// internal/service/metrics_service.go from the adp-api reference
// repo: a private registry, *Vec collectors keyed by the dimensions
// that matter (solver strategy), and a promhttp handler for scraping.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Solver collects per-solve instrumentation: one registry shared by
// the CP-SAT driver, the GA, and the meta-optimizer.
type Solver struct {
	registry *prometheus.Registry
	handler  http.Handler

	solveDuration   *prometheus.HistogramVec
	solveTotal      *prometheus.CounterVec
	relaxationLevel *prometheus.GaugeVec
	bestScore       *prometheus.GaugeVec
	generationsRun  *prometheus.HistogramVec
}

// NewSolver registers the solver's collectors on a private registry.
func NewSolver() *Solver {
	registry := prometheus.NewRegistry()

	solveDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "schedule_solve_duration_seconds",
		Help:    "Duration of a solve call by strategy and outcome",
		Buckets: prometheus.DefBuckets,
	}, []string{"strategy", "outcome"})

	solveTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_solve_total",
		Help: "Total solve calls by strategy and outcome",
	}, []string{"strategy", "outcome"})

	relaxationLevel := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "schedule_relaxation_level",
		Help: "Final relaxation level reached by the last solve, by constraint",
	}, []string{"constraint"})

	bestScore := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "schedule_best_score",
		Help: "Best objective score found by the last solve, by strategy",
	}, []string{"strategy"})

	generationsRun := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "schedule_ga_generations_run",
		Help:    "Generations run by the genetic algorithm per solve",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 200, 500},
	}, []string{"strategy"})

	registry.MustRegister(solveDuration, solveTotal, relaxationLevel, bestScore, generationsRun)

	return &Solver{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		solveDuration:   solveDuration,
		solveTotal:      solveTotal,
		relaxationLevel: relaxationLevel,
		bestScore:       bestScore,
		generationsRun:  generationsRun,
	}
}

// Handler exposes the /metrics scrape endpoint.
func (s *Solver) Handler() http.Handler { return s.handler }

// RecordSolve records a completed solve's duration and outcome.
func (s *Solver) RecordSolve(strategy, outcome string, d time.Duration) {
	s.solveDuration.WithLabelValues(strategy, outcome).Observe(d.Seconds())
	s.solveTotal.WithLabelValues(strategy, outcome).Inc()
}

// RecordRelaxation records the final relaxation level for a constraint.
func (s *Solver) RecordRelaxation(constraint string, level int) {
	s.relaxationLevel.WithLabelValues(constraint).Set(float64(level))
}

// RecordBestScore records the winning strategy's objective score.
func (s *Solver) RecordBestScore(strategy string, score float64) {
	s.bestScore.WithLabelValues(strategy).Set(score)
}

// RecordGenerations records how many GA generations a solve ran.
func (s *Solver) RecordGenerations(strategy string, n int) {
	s.generationsRun.WithLabelValues(strategy).Observe(float64(n))
}
