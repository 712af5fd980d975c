// Package schedule holds the domain model shared by every solver:
// classes, time slots, instructor availability, global constraints,
// and the request/response records at the boundary of the system.
package schedule

import (
	"encoding/json"
	"fmt"
	"time"
)

// TimeSlot is an immutable (dayOfWeek, period) pair. dayOfWeek runs
// 1..5 (Monday..Friday); period runs 1..8.
type TimeSlot struct {
	DayOfWeek int `json:"dayOfWeek"`
	Period    int `json:"period"`
}

// Valid reports whether the slot falls within the legal ranges.
func (t TimeSlot) Valid() bool {
	return t.DayOfWeek >= 1 && t.DayOfWeek <= 5 && t.Period >= 1 && t.Period <= 8
}

func (t TimeSlot) String() string {
	return fmt.Sprintf("(day=%d,period=%d)", t.DayOfWeek, t.Period)
}

// gradeGroupTable derives the numeric grade group from a display
// grade label when the class omits an explicit GradeGroup.
var gradeGroupTable = map[string]int{
	"Pre-K": 0, "PreK": 0, "pre-k": 0,
	"K": 1, "k": 1, "Kindergarten": 1,
	"1": 2, "2": 3, "3": 4, "4": 5, "5": 6,
}

// WeeklySchedule carries the per-class slot metadata that feeds both
// the variable grid (conflicts, requiredPeriods) and the objective set
// (preferredPeriods, avoidPeriods, and their weights).
type WeeklySchedule struct {
	Conflicts         []TimeSlot `json:"conflicts"`
	RequiredPeriods   []TimeSlot `json:"requiredPeriods"`
	PreferredPeriods  []TimeSlot `json:"preferredPeriods"`
	AvoidPeriods      []TimeSlot `json:"avoidPeriods"`
	PreferenceWeight  float64    `json:"preferenceWeight"`
	AvoidanceWeight   float64    `json:"avoidanceWeight"`
}

// HasRequired reports whether the class must land on one of a fixed
// set of slots.
func (w WeeklySchedule) HasRequired() bool { return len(w.RequiredPeriods) > 0 }

func (w WeeklySchedule) isConflict(slot TimeSlot) bool {
	for _, c := range w.Conflicts {
		if c == slot {
			return true
		}
	}
	return false
}

func (w WeeklySchedule) isRequired(slot TimeSlot) bool {
	for _, r := range w.RequiredPeriods {
		if r == slot {
			return true
		}
	}
	return false
}

func (w WeeklySchedule) preferenceBonus(slot TimeSlot) bool {
	for _, p := range w.PreferredPeriods {
		if p == slot {
			return true
		}
	}
	return false
}

func (w WeeklySchedule) avoidancePenalty(slot TimeSlot) bool {
	for _, p := range w.AvoidPeriods {
		if p == slot {
			return true
		}
	}
	return false
}

// Class is a scheduling unit: a recurring lesson identified by id,
// with a grade group used by the GradeGrouping objective and a
// WeeklySchedule describing its slot constraints/preferences.
type Class struct {
	ID               string         `json:"id"`
	Name             string         `json:"name"`
	Grade            string         `json:"grade"`
	GradeGroup       *int           `json:"gradeGroup,omitempty"`
	Equipment        []string       `json:"equipment,omitempty"`
	WeeklySchedule   WeeklySchedule `json:"weeklySchedule"`
}

// ResolvedGradeGroup returns GradeGroup if present, else derives it
// from Grade via the fixed table. Unknown grades resolve to 0.
func (c Class) ResolvedGradeGroup() int {
	if c.GradeGroup != nil {
		return *c.GradeGroup
	}
	if g, ok := gradeGroupTable[c.Grade]; ok {
		return g
	}
	return 0
}

// Conflicts reports whether slot is forbidden for this class.
func (c Class) Conflicts(slot TimeSlot) bool { return c.WeeklySchedule.isConflict(slot) }

// IsRequiredSlot reports whether slot is one of this class's required slots.
func (c Class) IsRequiredSlot(slot TimeSlot) bool { return c.WeeklySchedule.isRequired(slot) }

// PrefersSlot reports whether slot earns the preference bonus.
func (c Class) PrefersSlot(slot TimeSlot) bool { return c.WeeklySchedule.preferenceBonus(slot) }

// AvoidsSlot reports whether slot earns the avoidance penalty.
func (c Class) AvoidsSlot(slot TimeSlot) bool { return c.WeeklySchedule.avoidancePenalty(slot) }

// InstructorUnavailability records a concrete date plus forbidden
// periods on that date, plus (dayOfWeek, period) slots interpreted
// against that same date.
type InstructorUnavailability struct {
	Date             time.Time  `json:"date"`
	Periods          []int      `json:"periods"`
	UnavailableSlots []TimeSlot `json:"unavailableSlots"`
}

// Blocks reports whether the given date/period is unavailable under
// this record. dow is the 1..5 day-of-week of date, passed in by the
// caller to avoid recomputation.
func (u InstructorUnavailability) Blocks(date time.Time, dow, period int) bool {
	if !sameDate(u.Date, date) {
		return false
	}
	for _, p := range u.Periods {
		if p == period {
			return true
		}
	}
	for _, s := range u.UnavailableSlots {
		if s.DayOfWeek == dow && s.Period == period {
			return true
		}
	}
	return false
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// ConsecutiveRule selects whether the consecutive-classes cap is
// enforced as a hard bound or a soft penalty.
type ConsecutiveRule string

const (
	ConsecutiveHard ConsecutiveRule = "hard"
	ConsecutiveSoft ConsecutiveRule = "soft"
)

// GlobalConstraints carries the request-wide caps and the date window
// the grid is built over.
type GlobalConstraints struct {
	MaxClassesPerDay       int             `json:"maxClassesPerDay"`
	MaxClassesPerWeek      int             `json:"maxClassesPerWeek"`
	MinPeriodsPerWeek      int             `json:"minPeriodsPerWeek"`
	MaxConsecutiveClasses  int             `json:"maxConsecutiveClasses"`
	ConsecutiveClassesRule ConsecutiveRule `json:"consecutiveClassesRule"`
	AllowConsecutiveClasses bool           `json:"allowConsecutiveClasses"`
	RequiredBreakPeriods   []int           `json:"requiredBreakPeriods"`
	StartDate              time.Time       `json:"startDate"`
	EndDate                time.Time       `json:"endDate"`
}

// HasBreakPeriod reports whether period is a required teacher break.
func (g GlobalConstraints) HasBreakPeriod(period int) bool {
	for _, p := range g.RequiredBreakPeriods {
		if p == period {
			return true
		}
	}
	return false
}

// Assignment is a concrete output record: a class placed on a date
// and period.
type Assignment struct {
	ClassID   string    `json:"classId"`
	Date      time.Time `json:"date"`
	DayOfWeek int       `json:"dayOfWeek"`
	Period    int       `json:"period"`
}

// TimeSlot projects the (dayOfWeek, period) pair of this assignment.
func (a Assignment) TimeSlot() TimeSlot { return TimeSlot{DayOfWeek: a.DayOfWeek, Period: a.Period} }

// dualAvailability is the wire shape accepting either
// instructorAvailability or the legacy teacherAvailability key as a
// synonym (spec.md §9 Open Questions).
type dualAvailability struct {
	Classes                  []Class                    `json:"classes"`
	InstructorAvailability   []InstructorUnavailability `json:"instructorAvailability"`
	TeacherAvailability      []InstructorUnavailability `json:"teacherAvailability"`
	StartDate                string                     `json:"startDate"`
	EndDate                  string                     `json:"endDate"`
	Constraints              GlobalConstraints          `json:"constraints"`
	Options                  json.RawMessage            `json:"options"`
}

// Request is the Solve API input: classes, instructor-unavailability
// records, a date window, global constraints, and solver options.
type Request struct {
	Classes                []Class
	InstructorAvailability []InstructorUnavailability
	StartDate              time.Time
	EndDate                time.Time
	Constraints            GlobalConstraints
	Options                json.RawMessage
}

// UnmarshalJSON accepts instructorAvailability and the legacy
// teacherAvailability key as synonyms; both populate the same field.
func (r *Request) UnmarshalJSON(data []byte) error {
	var raw dualAvailability
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("schedule: decode request: %w", err)
	}
	avail := raw.InstructorAvailability
	if len(avail) == 0 && len(raw.TeacherAvailability) > 0 {
		avail = raw.TeacherAvailability
	}
	start, err := time.Parse("2006-01-02", raw.StartDate)
	if err != nil {
		return NewValidationError("startDate", "must be an ISO-8601 date (YYYY-MM-DD)")
	}
	end, err := time.Parse("2006-01-02", raw.EndDate)
	if err != nil {
		return NewValidationError("endDate", "must be an ISO-8601 date (YYYY-MM-DD)")
	}
	r.Classes = raw.Classes
	r.InstructorAvailability = avail
	r.StartDate = start
	r.EndDate = end
	r.Constraints = raw.Constraints
	r.Constraints.StartDate = start
	r.Constraints.EndDate = end
	r.Options = raw.Options
	return nil
}

// TimeSlotMetadata is the wire shape of an assignment's embedded slot.
type TimeSlotMetadata struct {
	DayOfWeek int `json:"dayOfWeek"`
	Period    int `json:"period"`
}

// AssignmentOut is the wire shape of a single response assignment:
// UTC ISO-8601 dates with a trailing Z, per spec.md §6.
type AssignmentOut struct {
	Name      string           `json:"name"`
	ClassID   string           `json:"classId"`
	Date      string           `json:"date"`
	TimeSlot  TimeSlotMetadata `json:"timeSlot"`
}

// ToOut renders an Assignment into its wire shape, looking up the
// class display name from the supplied index.
func ToOut(a Assignment, name string) AssignmentOut {
	return AssignmentOut{
		Name:    name,
		ClassID: a.ClassID,
		Date:    a.Date.UTC().Format("2006-01-02T15:04:05Z"),
		TimeSlot: TimeSlotMetadata{
			DayOfWeek: a.DayOfWeek,
			Period:    a.Period,
		},
	}
}

// Metadata is the solver-produced metadata attached to every
// response, success or failure. Only DurationMS is authoritative for
// elapsed time — no seconds-based duration field exists on the wire.
type Metadata struct {
	DurationMS        int64    `json:"duration_ms"`
	SolutionsFound    int      `json:"solutions_found"`
	Score             int      `json:"score"`
	Gap               float64  `json:"gap"`
	Distribution      any      `json:"distribution,omitempty"`
	Solver            string   `json:"solver"`
	Error             string   `json:"error,omitempty"`
	RelaxationLevel   string   `json:"relaxation_level,omitempty"`
	RelaxationStatus  string   `json:"relaxation_status,omitempty"`
	RunID             string   `json:"run_id,omitempty"`
	Violations        []string `json:"violations,omitempty"`
}

// Response is the Solve API output.
type Response struct {
	Assignments []AssignmentOut `json:"assignments"`
	Metadata    Metadata        `json:"metadata"`
}

// WeekdaysInRange enumerates the Monday-Friday dates in [start, end]
// inclusive.
func WeekdaysInRange(start, end time.Time) []time.Time {
	var out []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd >= time.Monday && wd <= time.Friday {
			out = append(out, d)
		}
	}
	return out
}

// DayOfWeek converts a time.Weekday to the spec's 1..5 Monday-based
// numbering. Panics on weekend input — callers must pre-filter with
// WeekdaysInRange.
func DayOfWeek(d time.Time) int {
	switch d.Weekday() {
	case time.Monday:
		return 1
	case time.Tuesday:
		return 2
	case time.Wednesday:
		return 3
	case time.Thursday:
		return 4
	case time.Friday:
		return 5
	}
	panic(fmt.Sprintf("schedule: %s is not a weekday", d.Format("2006-01-02")))
}

// WeekIndex computes the zero-based week number of date relative to
// start, per spec.md §4.1: (date - start).days / 7.
func WeekIndex(start, date time.Time) int {
	days := int(date.Sub(start).Hours() / 24)
	return days / 7
}
