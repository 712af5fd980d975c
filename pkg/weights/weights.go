// Package weights owns the process-wide objective weight map: the
// single mutable piece of global state that Update writes and every
// solve reads when building its objective.Set. The meta-optimizer
// (pkg/solver/meta) does not write it; its tuned weights apply only
// to the solve that requested tuning. Mirrors
// the teacher's guarded-singleton pattern (pkg/minikanren/fd_monitor.go's
// package-level monitor) rather than threading a weight map through
// every call site.
package weights

import (
	"fmt"
	"sync"

	"github.com/danfeder/schedule-engine/pkg/objective"
)

var (
	mu      sync.RWMutex
	current = defaultWeights()
)

func defaultWeights() map[string]float64 {
	return map[string]float64{
		"RequiredPeriods":      objective.DefaultRequiredPeriods,
		"PreferredPeriods":     objective.DefaultPreferredPeriods,
		"AvoidPeriods":         objective.DefaultAvoidPeriods,
		"EarlierDates":         objective.DefaultEarlierDates,
		"DayUsage":             objective.DefaultDayUsage,
		"FinalWeekCompression": objective.DefaultFinalWeekCompression,
		"DailyBalance":         objective.DefaultDailyBalance,
		"Distribution":         objective.DefaultDistribution,
		"GradeGrouping":        objective.DefaultGradeGrouping,
		"ConsecutiveSoft":      objective.DefaultConsecutiveSoft,
	}
}

// Update overwrites named weights, rejecting the whole batch if any
// key is not one of the fixed objective names — partial updates never
// take effect.
func Update(w map[string]float64) error {
	mu.Lock()
	defer mu.Unlock()
	for name := range w {
		if _, ok := current[name]; !ok {
			return fmt.Errorf("weights: unknown objective %q", name)
		}
	}
	for name, val := range w {
		current[name] = val
	}
	return nil
}

// Reset restores every weight to its spec.md §4.3 default.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	current = defaultWeights()
}

// Snapshot returns a copy of the current weight map, safe for a
// caller to mutate.
func Snapshot() map[string]float64 {
	mu.RLock()
	defer mu.RUnlock()
	out := make(map[string]float64, len(current))
	for k, v := range current {
		out[k] = v
	}
	return out
}

// NewSet builds an objective.Set with the current global weights
// applied, for a solve to use.
func NewSet() *objective.Set {
	s := objective.NewDefaultSet()
	s.ApplyWeights(Snapshot())
	return s
}
