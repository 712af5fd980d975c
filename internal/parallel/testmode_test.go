package parallel

import "testing"

func TestTestModeFlagsRoundTrip(t *testing.T) {
	defer ResetTestFlags()

	if TestMode() || RaisePoolException() || RaiseTaskException() {
		t.Fatal("expected all flags to start clear")
	}

	SetTestMode(true)
	if !TestMode() {
		t.Error("expected TestMode to be on")
	}

	SetRaisePoolException(true)
	if !RaisePoolException() {
		t.Error("expected RaisePoolException to be on")
	}

	SetRaiseTaskException(true)
	if !RaiseTaskException() {
		t.Error("expected RaiseTaskException to be on")
	}

	ResetTestFlags()
	if TestMode() || RaisePoolException() || RaiseTaskException() {
		t.Error("expected ResetTestFlags to clear every flag")
	}
}
