package wwv

import "testing"

func TestNoiseFloorGetSet(t *testing.T) {
	nf := NewNoiseFloor(0.5)
	if got := nf.Get(); got != 0.5 {
		t.Fatalf("Get() = %v, want 0.5", got)
	}
	nf.Set(1.25)
	if got := nf.Get(); got != 1.25 {
		t.Fatalf("Get() after Set = %v, want 1.25", got)
	}
}

func TestNoiseFloorAdaptAsymmetricFastDown(t *testing.T) {
	nf := NewNoiseFloor(1.0)
	// energy well below current floor: should move quickly.
	nf.AdaptAsymmetric(0.0, 0.5, 0.01, 0.0, 10.0)
	if got := nf.Get(); got >= 0.6 {
		t.Fatalf("fast-down adapt moved too little: got %v", got)
	}
}

func TestNoiseFloorAdaptAsymmetricSlowUp(t *testing.T) {
	nf := NewNoiseFloor(1.0)
	// energy above current floor: should move slowly.
	nf.AdaptAsymmetric(2.0, 0.5, 0.01, 0.0, 10.0)
	if got := nf.Get(); got <= 1.0 || got > 1.02 {
		t.Fatalf("slow-up adapt moved unexpectedly: got %v", got)
	}
}

func TestNoiseFloorAdaptAsymmetricClamps(t *testing.T) {
	nf := NewNoiseFloor(1.0)
	nf.AdaptAsymmetric(100.0, 0.5, 1.0, 0.0, 5.0)
	if got := nf.Get(); got != 5.0 {
		t.Fatalf("expected clamp to max 5.0, got %v", got)
	}

	nf2 := NewNoiseFloor(1.0)
	nf2.AdaptAsymmetric(-100.0, 1.0, 0.01, 0.2, 5.0)
	if got := nf2.Get(); got != 0.2 {
		t.Fatalf("expected clamp to min 0.2, got %v", got)
	}
}

func TestNoiseFloorAdaptWarmupClampsToMin(t *testing.T) {
	nf := NewNoiseFloor(1.0)
	nf.AdaptWarmup(-50.0, 1.0, 0.1)
	if got := nf.Get(); got != 0.1 {
		t.Fatalf("expected warmup clamp to min 0.1, got %v", got)
	}
}
