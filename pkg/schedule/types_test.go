package schedule

import (
	"encoding/json"
	"testing"
	"time"
)

func TestTimeSlotValid(t *testing.T) {
	cases := []struct {
		slot TimeSlot
		want bool
	}{
		{TimeSlot{DayOfWeek: 1, Period: 1}, true},
		{TimeSlot{DayOfWeek: 5, Period: 8}, true},
		{TimeSlot{DayOfWeek: 0, Period: 1}, false},
		{TimeSlot{DayOfWeek: 6, Period: 1}, false},
		{TimeSlot{DayOfWeek: 1, Period: 9}, false},
	}
	for _, c := range cases {
		if got := c.slot.Valid(); got != c.want {
			t.Errorf("%v.Valid() = %v, want %v", c.slot, got, c.want)
		}
	}
}

func TestClassResolvedGradeGroup(t *testing.T) {
	explicit := 9
	c := Class{Grade: "3", GradeGroup: &explicit}
	if got := c.ResolvedGradeGroup(); got != 9 {
		t.Errorf("explicit GradeGroup not honored: got %d", got)
	}

	c2 := Class{Grade: "3"}
	if got := c2.ResolvedGradeGroup(); got != 4 {
		t.Errorf("derived GradeGroup for grade 3: got %d, want 4", got)
	}

	c3 := Class{Grade: "unknown-grade"}
	if got := c3.ResolvedGradeGroup(); got != 0 {
		t.Errorf("unknown grade should resolve to 0, got %d", got)
	}
}

func TestClassSlotPredicates(t *testing.T) {
	c := Class{
		WeeklySchedule: WeeklySchedule{
			Conflicts:        []TimeSlot{{DayOfWeek: 1, Period: 1}},
			RequiredPeriods:  []TimeSlot{{DayOfWeek: 2, Period: 3}},
			PreferredPeriods: []TimeSlot{{DayOfWeek: 3, Period: 4}},
			AvoidPeriods:     []TimeSlot{{DayOfWeek: 4, Period: 5}},
		},
	}
	if !c.Conflicts(TimeSlot{DayOfWeek: 1, Period: 1}) {
		t.Error("expected conflict slot to be reported as conflicting")
	}
	if !c.IsRequiredSlot(TimeSlot{DayOfWeek: 2, Period: 3}) {
		t.Error("expected required slot to be reported as required")
	}
	if !c.PrefersSlot(TimeSlot{DayOfWeek: 3, Period: 4}) {
		t.Error("expected preferred slot to be reported as preferred")
	}
	if !c.AvoidsSlot(TimeSlot{DayOfWeek: 4, Period: 5}) {
		t.Error("expected avoid slot to be reported as avoided")
	}
	if c.Conflicts(TimeSlot{DayOfWeek: 2, Period: 2}) {
		t.Error("unrelated slot should not conflict")
	}
}

func TestInstructorUnavailabilityBlocks(t *testing.T) {
	date := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC) // a Monday
	u := InstructorUnavailability{
		Date:             date,
		Periods:          []int{3},
		UnavailableSlots: []TimeSlot{{DayOfWeek: 1, Period: 5}},
	}
	if !u.Blocks(date, 1, 3) {
		t.Error("expected period 3 to be blocked on the matching date")
	}
	if !u.Blocks(date, 1, 5) {
		t.Error("expected slot-based block to apply on the matching date")
	}
	if u.Blocks(date, 1, 4) {
		t.Error("period 4 should not be blocked")
	}
	otherDate := date.AddDate(0, 0, 1)
	if u.Blocks(otherDate, 2, 3) {
		t.Error("block should not apply to a different date")
	}
}

func TestGlobalConstraintsHasBreakPeriod(t *testing.T) {
	g := GlobalConstraints{RequiredBreakPeriods: []int{4}}
	if !g.HasBreakPeriod(4) {
		t.Error("expected period 4 to be a break period")
	}
	if g.HasBreakPeriod(5) {
		t.Error("period 5 should not be a break period")
	}
}

func TestRequestUnmarshalJSONTeacherAvailabilitySynonym(t *testing.T) {
	raw := []byte(`{
		"classes": [{"id": "c1", "name": "Math", "grade": "3"}],
		"teacherAvailability": [{"date": "2026-02-02T00:00:00Z", "periods": [1]}],
		"startDate": "2026-02-02",
		"endDate": "2026-02-06",
		"constraints": {"maxClassesPerDay": 5}
	}`)
	var req Request
	if err := json.Unmarshal(raw, &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(req.InstructorAvailability) != 1 {
		t.Fatalf("expected teacherAvailability to populate InstructorAvailability, got %d entries", len(req.InstructorAvailability))
	}
	if req.StartDate.Format("2006-01-02") != "2026-02-02" {
		t.Errorf("unexpected start date: %v", req.StartDate)
	}
	if req.Constraints.MaxClassesPerDay != 5 {
		t.Errorf("constraints not decoded: %+v", req.Constraints)
	}
	if req.Constraints.StartDate != req.StartDate {
		t.Error("expected Constraints.StartDate to mirror the top-level StartDate")
	}
}

func TestRequestUnmarshalJSONInvalidDate(t *testing.T) {
	raw := []byte(`{"classes": [], "startDate": "not-a-date", "endDate": "2026-02-06"}`)
	var req Request
	err := json.Unmarshal(raw, &req)
	if err == nil {
		t.Fatal("expected an error for an invalid startDate")
	}
	var ve *ValidationError
	if !asValidationError(t, err, &ve) {
		t.Fatalf("expected a *ValidationError, got %T: %v", err, err)
	}
	if ve.Field != "startDate" {
		t.Errorf("expected Field=startDate, got %q", ve.Field)
	}
}

func asValidationError(t *testing.T, err error, out **ValidationError) bool {
	t.Helper()
	ve, ok := err.(*ValidationError)
	if ok {
		*out = ve
	}
	return ok
}

func TestToOutFormatsUTCWithTrailingZ(t *testing.T) {
	loc := time.FixedZone("EST", -5*3600)
	a := Assignment{ClassID: "c1", Date: time.Date(2026, 2, 2, 10, 0, 0, 0, loc), DayOfWeek: 1, Period: 3}
	out := ToOut(a, "Math")
	want := "2026-02-02T15:00:00Z"
	if out.Date != want {
		t.Errorf("Date = %q, want %q", out.Date, want)
	}
	if out.Name != "Math" {
		t.Errorf("Name = %q, want Math", out.Name)
	}
}

func TestWeekdaysInRangeSkipsWeekends(t *testing.T) {
	start := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)  // Monday
	end := time.Date(2026, 2, 8, 0, 0, 0, 0, time.UTC)    // Sunday
	days := WeekdaysInRange(start, end)
	if len(days) != 5 {
		t.Fatalf("expected 5 weekdays, got %d", len(days))
	}
	if days[0].Weekday() != time.Monday || days[4].Weekday() != time.Friday {
		t.Errorf("unexpected boundary days: %v .. %v", days[0], days[4])
	}
}

func TestDayOfWeek(t *testing.T) {
	mon := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)
	if got := DayOfWeek(mon); got != 1 {
		t.Errorf("Monday should map to 1, got %d", got)
	}
	fri := time.Date(2026, 2, 6, 0, 0, 0, 0, time.UTC)
	if got := DayOfWeek(fri); got != 5 {
		t.Errorf("Friday should map to 5, got %d", got)
	}
}

func TestDayOfWeekPanicsOnWeekend(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected DayOfWeek to panic on a weekend date")
		}
	}()
	sat := time.Date(2026, 2, 7, 0, 0, 0, 0, time.UTC)
	DayOfWeek(sat)
}

func TestWeekIndex(t *testing.T) {
	start := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)
	if got := WeekIndex(start, start); got != 0 {
		t.Errorf("start date should be week 0, got %d", got)
	}
	weekTwo := start.AddDate(0, 0, 8)
	if got := WeekIndex(start, weekTwo); got != 1 {
		t.Errorf("8 days out should be week 1, got %d", got)
	}
}
