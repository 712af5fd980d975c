package constraint

import (
	"fmt"

	"github.com/danfeder/schedule-engine/pkg/relax"
	"github.com/danfeder/schedule-engine/pkg/schedule"
)

// --- SingleAssignment -------------------------------------------------

// SingleAssignmentConstraint requires every class to take exactly one
// value from its domain. Apply only guards against an empty domain
// (which grid.Build already catches for required-period classes, but
// a class with every slot conflicted and no required periods would
// slip through grid construction); Validate checks the output.
type SingleAssignmentConstraint struct{ base }

func NewSingleAssignment() *SingleAssignmentConstraint {
	return &SingleAssignmentConstraint{base{name: "SingleAssignment", category: "assignment", enabled: true}}
}

func (c *SingleAssignmentConstraint) Apply(ctx *BuildContext, m *Model) error {
	for classID, ids := range m.ClassDomains {
		if len(ids) == 0 {
			return fmt.Errorf("constraint: class %q has no admissible slot", classID)
		}
	}
	return nil
}

func (c *SingleAssignmentConstraint) Validate(assignments []schedule.Assignment, ctx *BuildContext) []Violation {
	counts := make(map[string]int)
	for _, a := range assignments {
		counts[a.ClassID]++
	}
	var out []Violation
	for classID := range ctx.Classes {
		if counts[classID] != 1 {
			out = append(out, Violation{
				Constraint: c.Name(), Severity: SeverityCritical, ClassID: classID,
				Message: fmt.Sprintf("class %q has %d assignments, expected exactly 1", classID, counts[classID]),
			})
		}
	}
	return out
}

// --- NoOverlap ---------------------------------------------------------

// NoOverlapConstraint forbids two classes from sharing a (date, period).
type NoOverlapConstraint struct{ base }

func NewNoOverlap() *NoOverlapConstraint {
	return &NoOverlapConstraint{base{name: "NoOverlap", category: "assignment", enabled: true}}
}

func (c *NoOverlapConstraint) Apply(ctx *BuildContext, m *Model) error { return nil }

func (c *NoOverlapConstraint) Validate(assignments []schedule.Assignment, ctx *BuildContext) []Violation {
	type key struct {
		day    int64
		period int
	}
	seen := make(map[key]string)
	var out []Violation
	for _, a := range assignments {
		k := key{day: a.Date.Unix(), period: a.Period}
		if prior, ok := seen[k]; ok {
			out = append(out, Violation{
				Constraint: c.Name(), Severity: SeverityCritical,
				Message: fmt.Sprintf("classes %q and %q both assigned %s period %d", prior, a.ClassID, a.Date.Format("2006-01-02"), a.Period),
			})
		} else {
			seen[k] = a.ClassID
		}
	}
	return out
}

// --- InstructorAvailability --------------------------------------------

// InstructorAvailabilityConstraint removes grid variables landing on
// an instructor-unavailable (date, period) from every class domain.
type InstructorAvailabilityConstraint struct{ base }

func NewInstructorAvailability() *InstructorAvailabilityConstraint {
	return &InstructorAvailabilityConstraint{base{name: "InstructorAvailability", category: "availability", enabled: true}}
}

func (c *InstructorAvailabilityConstraint) Apply(ctx *BuildContext, m *Model) error {
	for _, classID := range m.ClassOrder {
		m.restrictDomain(classID, ctx.Grid, func(v gridVariable) bool {
			date := unixToTime(v.RawDate)
			for _, u := range ctx.Request.InstructorAvailability {
				if u.Blocks(date, v.DayOfWeek, v.Period) {
					return false
				}
			}
			return true
		})
	}
	return nil
}

func (c *InstructorAvailabilityConstraint) Validate(assignments []schedule.Assignment, ctx *BuildContext) []Violation {
	var out []Violation
	for _, a := range assignments {
		for _, u := range ctx.Request.InstructorAvailability {
			if u.Blocks(a.Date, a.DayOfWeek, a.Period) {
				out = append(out, Violation{
					Constraint: c.Name(), Severity: SeverityCritical, ClassID: a.ClassID,
					Message: fmt.Sprintf("class %q assigned during instructor unavailability on %s period %d", a.ClassID, a.Date.Format("2006-01-02"), a.Period),
				})
			}
		}
	}
	return out
}

// --- ConflictPeriods -----------------------------------------------------

// ConflictPeriodsConstraint re-asserts grid-level conflict pruning as
// a safety net (spec.md §4.2): redundant with grid construction, but
// re-checked in case a domain is rebuilt without going through Build.
type ConflictPeriodsConstraint struct{ base }

func NewConflictPeriods() *ConflictPeriodsConstraint {
	return &ConflictPeriodsConstraint{base{name: "ConflictPeriods", category: "availability", enabled: true}}
}

func (c *ConflictPeriodsConstraint) Apply(ctx *BuildContext, m *Model) error {
	for _, classID := range m.ClassOrder {
		cls := ctx.Classes[classID]
		m.restrictDomain(classID, ctx.Grid, func(v gridVariable) bool {
			return !cls.Conflicts(schedule.TimeSlot{DayOfWeek: v.DayOfWeek, Period: v.Period})
		})
	}
	return nil
}

func (c *ConflictPeriodsConstraint) Validate(assignments []schedule.Assignment, ctx *BuildContext) []Violation {
	var out []Violation
	for _, a := range assignments {
		cls := ctx.Classes[a.ClassID]
		if cls.Conflicts(a.TimeSlot()) {
			out = append(out, Violation{
				Constraint: c.Name(), Severity: SeverityCritical, ClassID: a.ClassID,
				Message: fmt.Sprintf("class %q assigned a conflicting slot %s", a.ClassID, a.TimeSlot()),
			})
		}
	}
	return out
}

// --- RequiredPeriods -----------------------------------------------------

// RequiredPeriodsConstraint restricts a class's domain to its required
// slots when it declares any.
type RequiredPeriodsConstraint struct{ base }

func NewRequiredPeriods() *RequiredPeriodsConstraint {
	return &RequiredPeriodsConstraint{base{name: "RequiredPeriods", category: "placement", enabled: true}}
}

func (c *RequiredPeriodsConstraint) Apply(ctx *BuildContext, m *Model) error {
	for _, classID := range m.ClassOrder {
		cls := ctx.Classes[classID]
		if !cls.WeeklySchedule.HasRequired() {
			continue
		}
		m.restrictDomain(classID, ctx.Grid, func(v gridVariable) bool {
			return cls.IsRequiredSlot(schedule.TimeSlot{DayOfWeek: v.DayOfWeek, Period: v.Period})
		})
	}
	return nil
}

func (c *RequiredPeriodsConstraint) Validate(assignments []schedule.Assignment, ctx *BuildContext) []Violation {
	var out []Violation
	for _, a := range assignments {
		cls := ctx.Classes[a.ClassID]
		if cls.WeeklySchedule.HasRequired() && !cls.IsRequiredSlot(a.TimeSlot()) {
			out = append(out, Violation{
				Constraint: c.Name(), Severity: SeverityCritical, ClassID: a.ClassID,
				Message: fmt.Sprintf("class %q assigned %s, not one of its required periods", a.ClassID, a.TimeSlot()),
			})
		}
	}
	return out
}

// --- DailyLimit ----------------------------------------------------------

// DailyLimitConstraint caps the classes scheduled on any single date.
// Relaxable: widens by relax.DailyExtra(level).
type DailyLimitConstraint struct{ base }

func NewDailyLimit() *DailyLimitConstraint {
	return &DailyLimitConstraint{base{name: "DailyLimit", category: "load", enabled: true}}
}

func (c *DailyLimitConstraint) NeverRelax() bool { return false }

func (c *DailyLimitConstraint) Apply(ctx *BuildContext, m *Model) error {
	level := ctx.Relax.Level(c.Name())
	cap := ctx.Request.Constraints.MaxClassesPerDay + relax.DailyExtra(level)
	for _, d := range allDates(ctx.Grid) {
		m.DailyCap[d] = cap
	}
	return nil
}

func (c *DailyLimitConstraint) Validate(assignments []schedule.Assignment, ctx *BuildContext) []Violation {
	level := ctx.Relax.Level(c.Name())
	cap := ctx.Request.Constraints.MaxClassesPerDay + relax.DailyExtra(level)
	counts := make(map[int64]int)
	for _, a := range assignments {
		counts[a.Date.Unix()]++
	}
	var out []Violation
	for day, n := range counts {
		if n > cap {
			out = append(out, Violation{
				Constraint: c.Name(), Severity: SeverityError,
				Message: fmt.Sprintf("%s has %d classes, exceeding cap %d", unixToTime(day).Format("2006-01-02"), n, cap),
			})
		}
	}
	return out
}

// --- WeeklyLimit ----------------------------------------------------------

// WeeklyLimitConstraint caps the classes scheduled in any single week.
// Relaxable: widens by relax.WeeklyExtra(level).
type WeeklyLimitConstraint struct{ base }

func NewWeeklyLimit() *WeeklyLimitConstraint {
	return &WeeklyLimitConstraint{base{name: "WeeklyLimit", category: "load", enabled: true}}
}

func (c *WeeklyLimitConstraint) NeverRelax() bool { return false }

func (c *WeeklyLimitConstraint) Apply(ctx *BuildContext, m *Model) error {
	level := ctx.Relax.Level(c.Name())
	cap := ctx.Request.Constraints.MaxClassesPerWeek + relax.WeeklyExtra(level)
	for _, w := range ctx.Grid.Weeks() {
		m.WeeklyCap[w] = cap
	}
	return nil
}

func (c *WeeklyLimitConstraint) Validate(assignments []schedule.Assignment, ctx *BuildContext) []Violation {
	level := ctx.Relax.Level(c.Name())
	cap := ctx.Request.Constraints.MaxClassesPerWeek + relax.WeeklyExtra(level)
	counts := make(map[int]int)
	for _, a := range assignments {
		counts[schedule.WeekIndex(ctx.Request.StartDate, a.Date)]++
	}
	var out []Violation
	for w, n := range counts {
		if n > cap {
			out = append(out, Violation{
				Constraint: c.Name(), Severity: SeverityError,
				Message: fmt.Sprintf("week %d has %d classes, exceeding cap %d", w, n, cap),
			})
		}
	}
	return out
}

// --- MinimumPeriods --------------------------------------------------------

// MinimumPeriodsConstraint enforces a lower bound on classes per week
// for every full interior week. The first week pro-rates the minimum
// by the fraction of the 5-day week actually present; the last week
// carries no lower bound (an objective-side penalty nudges early
// placement instead, see pkg/objective FinalWeekCompression).
type MinimumPeriodsConstraint struct{ base }

func NewMinimumPeriods() *MinimumPeriodsConstraint {
	return &MinimumPeriodsConstraint{base{name: "MinimumPeriods", category: "load", enabled: true}}
}

func (c *MinimumPeriodsConstraint) Apply(ctx *BuildContext, m *Model) error {
	weeks := ctx.Grid.Weeks()
	if len(weeks) == 0 {
		return nil
	}
	minPerWeek := ctx.Request.Constraints.MinPeriodsPerWeek
	last := weeks[len(weeks)-1]
	for _, w := range weeks {
		if w == last {
			continue // last week: no lower bound, see objective FinalWeekCompression
		}
		if w == weeks[0] {
			present := len(ctx.Grid.DatesInWeek(w))
			m.WeeklyMin[w] = (minPerWeek * present) / 5
			continue
		}
		m.WeeklyMin[w] = minPerWeek
	}
	return nil
}

func (c *MinimumPeriodsConstraint) Validate(assignments []schedule.Assignment, ctx *BuildContext) []Violation {
	counts := make(map[int]int)
	for _, a := range assignments {
		counts[schedule.WeekIndex(ctx.Request.StartDate, a.Date)]++
	}
	var out []Violation
	weeks := ctx.Grid.Weeks()
	if len(weeks) == 0 {
		return nil
	}
	last := weeks[len(weeks)-1]
	minPerWeek := ctx.Request.Constraints.MinPeriodsPerWeek
	for _, w := range weeks {
		if w == last {
			continue
		}
		min := minPerWeek
		if w == weeks[0] {
			present := len(ctx.Grid.DatesInWeek(w))
			min = (minPerWeek * present) / 5
		}
		if counts[w] < min {
			out = append(out, Violation{
				Constraint: c.Name(), Severity: SeverityWarning,
				Message: fmt.Sprintf("week %d has %d classes, below minimum %d", w, counts[w], min),
			})
		}
	}
	return out
}

// --- ConsecutiveClasses -----------------------------------------------------

// ConsecutiveClassesConstraint forbids three back-to-back periods on
// the same date unconditionally, forbids adjacent pairs unless
// AllowConsecutiveClasses, and enforces MaxConsecutiveClasses as a
// hard bound when the rule is "hard" (soft handled by the
// ConsecutiveSoft objective instead).
type ConsecutiveClassesConstraint struct{ base }

func NewConsecutiveClasses() *ConsecutiveClassesConstraint {
	return &ConsecutiveClassesConstraint{base{name: "ConsecutiveClasses", category: "pacing", enabled: true}}
}

func (c *ConsecutiveClassesConstraint) Apply(ctx *BuildContext, m *Model) error {
	gc := ctx.Request.Constraints
	m.AllowConsecutivePairs = gc.AllowConsecutiveClasses
	m.ConsecutiveSoftRule = gc.ConsecutiveClassesRule == schedule.ConsecutiveSoft
	if gc.ConsecutiveClassesRule == schedule.ConsecutiveHard {
		m.ConsecutiveHardCap = gc.MaxConsecutiveClasses
	} else {
		m.ConsecutiveHardCap = -1
	}
	return nil
}

func (c *ConsecutiveClassesConstraint) Validate(assignments []schedule.Assignment, ctx *BuildContext) []Violation {
	byDate := make(map[int64]map[int]bool)
	for _, a := range assignments {
		day := a.Date.Unix()
		if byDate[day] == nil {
			byDate[day] = make(map[int]bool)
		}
		byDate[day][a.Period] = true
	}
	gc := ctx.Request.Constraints
	var out []Violation
	for day, periods := range byDate {
		run := 0
		for p := 1; p <= 8; p++ {
			if periods[p] {
				run++
			} else {
				run = 0
			}
			if run >= 3 {
				out = append(out, Violation{
					Constraint: c.Name(), Severity: SeverityCritical,
					Message: fmt.Sprintf("%s has 3+ consecutive periods ending at period %d", unixToTime(day).Format("2006-01-02"), p),
				})
			}
		}
		if !gc.AllowConsecutiveClasses {
			for p := 1; p <= 7; p++ {
				if periods[p] && periods[p+1] {
					out = append(out, Violation{
						Constraint: c.Name(), Severity: SeverityCritical,
						Message: fmt.Sprintf("%s has adjacent periods %d,%d but consecutive classes are disallowed", unixToTime(day).Format("2006-01-02"), p, p+1),
					})
				}
			}
		}
		if gc.ConsecutiveClassesRule == schedule.ConsecutiveHard && gc.MaxConsecutiveClasses > 0 {
			run = 0
			best := 0
			for p := 1; p <= 8; p++ {
				if periods[p] {
					run++
					if run > best {
						best = run
					}
				} else {
					run = 0
				}
			}
			if best > gc.MaxConsecutiveClasses {
				out = append(out, Violation{
					Constraint: c.Name(), Severity: SeverityError,
					Message: fmt.Sprintf("%s has a run of %d consecutive periods, exceeding hard cap %d", unixToTime(day).Format("2006-01-02"), best, gc.MaxConsecutiveClasses),
				})
			}
		}
	}
	return out
}

// --- TeacherBreak -----------------------------------------------------

// TeacherBreakConstraint removes required-break periods from every
// class's domain.
type TeacherBreakConstraint struct{ base }

func NewTeacherBreak() *TeacherBreakConstraint {
	return &TeacherBreakConstraint{base{name: "TeacherBreak", category: "availability", enabled: true}}
}

func (c *TeacherBreakConstraint) Apply(ctx *BuildContext, m *Model) error {
	for _, p := range ctx.Request.Constraints.RequiredBreakPeriods {
		m.BreakPeriods[p] = true
	}
	for _, classID := range m.ClassOrder {
		m.restrictDomain(classID, ctx.Grid, func(v gridVariable) bool {
			return !m.BreakPeriods[v.Period]
		})
	}
	return nil
}

func (c *TeacherBreakConstraint) Validate(assignments []schedule.Assignment, ctx *BuildContext) []Violation {
	var out []Violation
	for _, a := range assignments {
		if ctx.Request.Constraints.HasBreakPeriod(a.Period) {
			out = append(out, Violation{
				Constraint: c.Name(), Severity: SeverityCritical, ClassID: a.ClassID,
				Message: fmt.Sprintf("class %q assigned during required break period %d", a.ClassID, a.Period),
			})
		}
	}
	return out
}
