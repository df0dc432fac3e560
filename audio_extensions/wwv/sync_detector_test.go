package wwv

import "testing"

func TestSyncDetectorAcquiresThenLocks(t *testing.T) {
	sd := NewSyncDetector(Default())

	if sd.State() != SyncSearching {
		t.Fatalf("expected initial state SEARCHING, got %v", sd.State())
	}

	sd.OnMarker(0.0)
	if sd.State() != SyncAcquiring {
		t.Fatalf("expected ACQUIRING after first marker, got %v", sd.State())
	}

	sd.OnMarker(60000.0)
	if sd.State() != SyncLocked {
		t.Fatalf("expected LOCKED after second marker 60s later, got %v", sd.State())
	}
	if _, ok := sd.Anchor(); !ok {
		t.Fatalf("expected an anchor once LOCKED")
	}
}

func TestSyncDetectorRejectsBadSpacingDuringAcquire(t *testing.T) {
	sd := NewSyncDetector(Default())
	sd.OnMarker(0.0)
	sd.OnMarker(10000.0) // far too soon to be the next minute marker: treated as a false marker

	if sd.State() != SyncSearching {
		t.Fatalf("expected to fall back to SEARCHING on bad spacing, got %v", sd.State())
	}
	if sd.Confidence() != 0 {
		t.Fatalf("expected confidence reset to 0, got %v", sd.Confidence())
	}
	if _, ok := sd.Anchor(); ok {
		t.Fatalf("expected no anchor while SEARCHING")
	}

	// A fresh marker restarts acquisition from scratch.
	sd.OnMarker(10500.0)
	if sd.State() != SyncAcquiring {
		t.Fatalf("expected a new marker to restart ACQUIRING, got %v", sd.State())
	}
}

func TestSyncDetectorConfidenceRampsWhileLocked(t *testing.T) {
	cfg := Default()
	sd := NewSyncDetector(cfg)
	sd.OnMarker(0.0)
	sd.OnMarker(60000.0)

	initial := sd.Confidence()
	sd.OnMarker(120000.0)
	if sd.Confidence() <= initial {
		t.Fatalf("expected confidence to ramp up on consecutive good markers, got %v -> %v", initial, sd.Confidence())
	}
}

func TestSyncDetectorDropsToAcquiringOnBadSpacingWhileLocked(t *testing.T) {
	sd := NewSyncDetector(Default())
	sd.OnMarker(0.0)
	sd.OnMarker(60000.0)
	sd.OnMarker(61000.0) // way too soon

	if sd.State() != SyncAcquiring {
		t.Fatalf("expected ACQUIRING after a bad-spacing marker while LOCKED, got %v", sd.State())
	}
	if sd.Confidence() != 0 {
		t.Fatalf("expected confidence reset to 0, got %v", sd.Confidence())
	}
}

func TestSyncDetectorRecoversThenDecaysToSearching(t *testing.T) {
	cfg := Default()
	cfg.SyncLostAfterMs = 1000.0
	cfg.SyncRecoveryDecayMs = 1000.0
	sd := NewSyncDetector(cfg)
	sd.OnMarker(0.0)
	sd.OnMarker(60000.0)

	sd.Tick(60000.0 + cfg.SyncLostAfterMs)
	if sd.State() != SyncRecovering {
		t.Fatalf("expected RECOVERING after SyncLostAfterMs with no marker, got %v", sd.State())
	}

	sd.Tick(60000.0 + cfg.SyncLostAfterMs + cfg.SyncRecoveryDecayMs)
	if sd.State() != SyncSearching {
		t.Fatalf("expected SEARCHING after confidence fully decays, got %v", sd.State())
	}
	if _, ok := sd.Anchor(); ok {
		t.Fatalf("expected no anchor once SEARCHING")
	}
}

func TestSyncStateString(t *testing.T) {
	cases := map[SyncState]string{
		SyncSearching:  "SEARCHING",
		SyncAcquiring:  "ACQUIRING",
		SyncLocked:     "LOCKED",
		SyncRecovering: "RECOVERING",
	}
	for state, want := range cases {
		if got := state.String(); got != want {
			t.Fatalf("%v.String() = %q, want %q", int(state), got, want)
		}
	}
}
