package wwv

import "testing"

func TestFindPeakBinLocatesMaximum(t *testing.T) {
	mags := []float64{0, 1, 5, 2, 0, 0}
	bin, mag := findPeakBin(mags, 0, 5)
	if bin != 2 || mag != 5 {
		t.Fatalf("findPeakBin = (%d, %v), want (2, 5)", bin, mag)
	}
}

func TestFindPeakBinWrapsNegativeRange(t *testing.T) {
	mags := []float64{9, 1, 1, 1, 1, 1}
	bin, mag := findPeakBin(mags, -1, 1)
	if bin != 0 || mag != 9 {
		t.Fatalf("findPeakBin wrap = (%d, %v), want (0, 9)", bin, mag)
	}
}

func TestParabolicInterpSymmetricPeakIsZero(t *testing.T) {
	mags := []float64{1, 5, 1}
	if got := parabolicInterp(mags, 1); got != 0 {
		t.Fatalf("parabolicInterp of symmetric peak = %v, want 0", got)
	}
}

func TestParabolicInterpSkewedPeakIsNonzero(t *testing.T) {
	mags := []float64{1, 5, 3}
	got := parabolicInterp(mags, 1)
	if got <= 0 {
		t.Fatalf("expected positive offset toward the larger neighbor, got %v", got)
	}
}

func TestSnrDBHandlesZeroNoiseFloor(t *testing.T) {
	got := snrDB(1.0, 0.0)
	if got <= 0 {
		t.Fatalf("expected a large positive SNR when noise floor is zero, got %v", got)
	}
}

func TestAbs(t *testing.T) {
	if abs(-5) != 5 {
		t.Fatalf("abs(-5) != 5")
	}
	if abs(5) != 5 {
		t.Fatalf("abs(5) != 5")
	}
	if abs(0) != 0 {
		t.Fatalf("abs(0) != 0")
	}
}

func TestNewToneTrackerRejectsInvalidConfig(t *testing.T) {
	cfg := Default()
	cfg.ToneFFTSize = 0
	if _, err := NewToneTracker(cfg, nil); err == nil {
		t.Fatalf("expected error for zero ToneFFTSize")
	}
}

func TestToneTrackerPublishesNoiseFloorIntoSharedObject(t *testing.T) {
	cfg := Default()
	cfg.ToneFFTSize = 64
	cfg.DisplaySampleRate = 8000.0
	cfg.ToneNoiseLoBin = 5
	cfg.ToneNoiseHiBin = 20

	shared := NewNoiseFloor(0.0)
	tt, err := NewToneTracker(cfg, shared)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for n := 0; n < cfg.ToneFFTSize; n++ {
		tt.ProcessSample(0, 0, float64(n))
	}

	if shared.Get() < 1e-6 {
		t.Fatalf("expected shared noise floor to be set to at least the floor clamp, got %v", shared.Get())
	}
}
