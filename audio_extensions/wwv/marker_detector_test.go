package wwv

import "testing"

func TestNewMarkerDetectorRejectsInvalidConfig(t *testing.T) {
	cfg := Default()
	cfg.TickFFTSize = 0
	if _, err := NewMarkerDetector(cfg, nil); err == nil {
		t.Fatalf("expected error for zero TickFFTSize")
	}
}

func TestNewMarkerDetectorAcceptsNilNoiseFloor(t *testing.T) {
	if _, err := NewMarkerDetector(Default(), nil); err != nil {
		t.Fatalf("unexpected error with nil noise floor: %v", err)
	}
}

func TestMarkerDetectorSilenceProducesNoMarkers(t *testing.T) {
	cfg := Default()
	cfg.TickFFTSize = 32
	cfg.DetectionSampleRate = 8000.0
	cfg.MarkerMinStartupMs = 50.0
	cfg.MarkerWindowMs = 80.0

	md, err := NewMarkerDetector(cfg, NewNoiseFloor(1e-4))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var markers int
	md.SetCallback(func(MarkerEvent) { markers++ })

	for n := 0; n < cfg.TickFFTSize*500; n++ {
		md.ProcessSample(0, 0)
	}

	if markers != 0 {
		t.Fatalf("expected no markers on silence, got %d", markers)
	}
}

func TestMarkerDetectorEffectiveBaselineFloorsAgainstSharedNoiseFloor(t *testing.T) {
	cfg := Default()
	md, err := NewMarkerDetector(cfg, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	md.baseline = 1e-4
	if got := md.effectiveBaseline(); got != 1e-4 {
		t.Fatalf("effectiveBaseline() with nil noise floor = %v, want md.baseline 1e-4", got)
	}

	shared := NewNoiseFloor(0.5)
	md2, err := NewMarkerDetector(cfg, shared)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	md2.baseline = 1e-4
	if got := md2.effectiveBaseline(); got != 0.5 {
		t.Fatalf("effectiveBaseline() = %v, want the shared noise floor 0.5 to win over a lower local baseline", got)
	}
}
