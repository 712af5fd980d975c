package parallel

import "sync/atomic"

// Test-mode flags exist solely to exercise the sequential-fallback
// and error-swallowing paths from unit tests (spec.md §5 "Test
// mode"): they are process-wide and must be reset between tests.
var (
	testMode           int32
	raisePoolException int32
	raiseTaskException int32
)

// SetTestMode forces sequential (single-goroutine) evaluation in
// Scatter, bypassing pool creation entirely.
func SetTestMode(on bool) { atomic.StoreInt32(&testMode, boolToInt32(on)) }

// TestMode reports whether sequential evaluation is currently forced.
func TestMode() bool { return atomic.LoadInt32(&testMode) != 0 }

// SetRaisePoolException makes every pool-creation attempt in Scatter
// fail while it is set, exercising the sequential-fallback path.
func SetRaisePoolException(on bool) { atomic.StoreInt32(&raisePoolException, boolToInt32(on)) }

// RaisePoolException reports whether pool creation should be
// simulated as failing.
func RaisePoolException() bool { return atomic.LoadInt32(&raisePoolException) != 0 }

// SetRaiseTaskException forces every scattered task to return an
// error, exercising the per-task error-swallowing path.
func SetRaiseTaskException(on bool) { atomic.StoreInt32(&raiseTaskException, boolToInt32(on)) }

// RaiseTaskException reports whether tasks should be simulated as
// failing.
func RaiseTaskException() bool { return atomic.LoadInt32(&raiseTaskException) != 0 }

// ResetTestFlags restores all three flags to their off state. Tests
// must call this in cleanup so flags never leak across test cases.
func ResetTestFlags() {
	atomic.StoreInt32(&testMode, 0)
	atomic.StoreInt32(&raisePoolException, 0)
	atomic.StoreInt32(&raiseTaskException, 0)
}

func boolToInt32(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
