// Package relax implements the runtime constraint-relaxation
// controller (spec.md §4.2): a monotone per-constraint level that
// widens DailyLimit/WeeklyLimit caps when the base problem is
// infeasible. Grounded on the level/extras table in
// original_source/scheduler-backend/app/scheduling/constraints/relaxable_limits.py.
package relax

import "fmt"

// Level is a relaxation level, 0 (None) through 4 (Maximum).
type Level int

const (
	LevelNone Level = iota
	LevelMinimal
	LevelModerate
	LevelSignificant
	LevelMaximum
)

func (l Level) String() string {
	switch l {
	case LevelNone:
		return "none"
	case LevelMinimal:
		return "minimal"
	case LevelModerate:
		return "moderate"
	case LevelSignificant:
		return "significant"
	case LevelMaximum:
		return "maximum"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// MaxLevel is the highest level the fallback ladder climbs to.
const MaxLevel = LevelMaximum

// dailyExtras and weeklyExtras hold the DailyLimit/WeeklyLimit
// extra-classes-allowed values per level, verbatim from spec.md §4.2.
var dailyExtras = map[Level]int{
	LevelNone: 0, LevelMinimal: 1, LevelModerate: 2, LevelSignificant: 3, LevelMaximum: 4,
}

var weeklyExtras = map[Level]int{
	LevelNone: 0, LevelMinimal: 2, LevelModerate: 4, LevelSignificant: 6, LevelMaximum: 8,
}

// DailyExtra returns the extra daily-class allowance at a level.
func DailyExtra(l Level) int { return dailyExtras[l] }

// WeeklyExtra returns the extra weekly-class allowance at a level.
func WeeklyExtra(l Level) int { return weeklyExtras[l] }

// Controller tracks the current relaxation level of every relaxable
// constraint by name. Raising a level is monotone: a request to lower
// it is refused. Constraints registered as "never relax" ignore raise
// requests entirely.
type Controller struct {
	levels     map[string]Level
	neverRelax map[string]bool
}

// NewController returns a controller with every constraint at level
// None.
func NewController() *Controller {
	return &Controller{
		levels:     make(map[string]Level),
		neverRelax: make(map[string]bool),
	}
}

// Register declares a constraint as relaxable (or never-relax) before
// any Raise call references it.
func (c *Controller) Register(name string, neverRelax bool) {
	if _, ok := c.levels[name]; !ok {
		c.levels[name] = LevelNone
	}
	c.neverRelax[name] = neverRelax
}

// Level returns the current relaxation level for a constraint
// (LevelNone if never registered).
func (c *Controller) Level(name string) Level {
	return c.levels[name]
}

// Raise sets the level for name to at least target. Returns false
// (no-op) if name is never-relax or target does not exceed the
// current level — raising is monotone and refuses to lower.
func (c *Controller) Raise(name string, target Level) bool {
	if c.neverRelax[name] {
		return false
	}
	cur := c.levels[name]
	if target <= cur {
		return false
	}
	c.levels[name] = target
	return true
}

// RaiseAll raises every registered relaxable constraint to target,
// skipping never-relax entries. Used by the unified solver's
// relaxation fallback ladder (spec.md §4.6).
func (c *Controller) RaiseAll(target Level) {
	for name := range c.levels {
		if c.neverRelax[name] {
			continue
		}
		c.Raise(name, target)
	}
}

// Reset returns every constraint to level None. Used between
// independent solves so relaxation state never leaks across runs.
func (c *Controller) Reset() {
	for name := range c.levels {
		c.levels[name] = LevelNone
	}
}
