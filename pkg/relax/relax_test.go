package relax

import "testing"

func TestRaiseIsMonotone(t *testing.T) {
	c := NewController()
	c.Register("DailyLimit", false)

	if !c.Raise("DailyLimit", LevelModerate) {
		t.Fatal("expected the first raise to succeed")
	}
	if c.Level("DailyLimit") != LevelModerate {
		t.Fatalf("Level() = %v, want %v", c.Level("DailyLimit"), LevelModerate)
	}
	if c.Raise("DailyLimit", LevelMinimal) {
		t.Error("expected lowering the level to be refused")
	}
	if c.Level("DailyLimit") != LevelModerate {
		t.Error("level should be unchanged after a refused lower raise")
	}
	if !c.Raise("DailyLimit", LevelMaximum) {
		t.Error("expected raising further to succeed")
	}
}

func TestRaiseNeverRelax(t *testing.T) {
	c := NewController()
	c.Register("NoOverlap", true)
	if c.Raise("NoOverlap", LevelMaximum) {
		t.Error("expected a never-relax constraint to refuse every raise")
	}
	if c.Level("NoOverlap") != LevelNone {
		t.Errorf("expected level to remain None, got %v", c.Level("NoOverlap"))
	}
}

func TestRaiseAllSkipsNeverRelax(t *testing.T) {
	c := NewController()
	c.Register("DailyLimit", false)
	c.Register("NoOverlap", true)
	c.RaiseAll(LevelSignificant)
	if c.Level("DailyLimit") != LevelSignificant {
		t.Errorf("DailyLimit level = %v, want %v", c.Level("DailyLimit"), LevelSignificant)
	}
	if c.Level("NoOverlap") != LevelNone {
		t.Error("NoOverlap should remain unrelaxed")
	}
}

func TestReset(t *testing.T) {
	c := NewController()
	c.Register("DailyLimit", false)
	c.Raise("DailyLimit", LevelMaximum)
	c.Reset()
	if c.Level("DailyLimit") != LevelNone {
		t.Errorf("expected level None after Reset, got %v", c.Level("DailyLimit"))
	}
}

func TestDailyAndWeeklyExtrasIncreaseMonotonically(t *testing.T) {
	levels := []Level{LevelNone, LevelMinimal, LevelModerate, LevelSignificant, LevelMaximum}
	for i := 1; i < len(levels); i++ {
		if DailyExtra(levels[i]) <= DailyExtra(levels[i-1]) {
			t.Errorf("DailyExtra should increase with level: %v -> %v", levels[i-1], levels[i])
		}
		if WeeklyExtra(levels[i]) <= WeeklyExtra(levels[i-1]) {
			t.Errorf("WeeklyExtra should increase with level: %v -> %v", levels[i-1], levels[i])
		}
	}
}
