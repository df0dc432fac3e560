package wwv

import "testing"

func TestNewTickDetectorRejectsInvalidConfig(t *testing.T) {
	cfg := Default()
	cfg.TickFFTSize = 0
	if _, err := NewTickDetector(cfg); err == nil {
		t.Fatalf("expected error for zero TickFFTSize")
	}

	cfg = Default()
	cfg.DetectionSampleRate = 0
	if _, err := NewTickDetector(cfg); err == nil {
		t.Fatalf("expected error for zero DetectionSampleRate")
	}
}

func TestTickDetectorStatsInitiallyZero(t *testing.T) {
	td, err := NewTickDetector(Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stats := td.Stats()
	if stats.TicksDetected != 0 || stats.TicksRejected != 0 || stats.MarkersDetected != 0 {
		t.Fatalf("expected zeroed stats at construction, got %+v", stats)
	}
}

func TestTickDetectorSilenceProducesNoTicks(t *testing.T) {
	cfg := Default()
	cfg.TickFFTSize = 32
	cfg.DetectionSampleRate = 8000.0
	cfg.CorrTemplateLen = 32
	cfg.TickWarmupFrames = 4

	td, err := NewTickDetector(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var ticks, markers int
	td.SetCallbacks(
		func(TickEvent) { ticks++ },
		func(TickMarkerEvent) { markers++ },
	)

	// Several seconds' worth of pure silence should never cross threshold.
	for n := 0; n < cfg.TickFFTSize*200; n++ {
		td.ProcessSample(0, 0)
	}

	if ticks != 0 || markers != 0 {
		t.Fatalf("expected no ticks/markers on silence, got ticks=%d markers=%d", ticks, markers)
	}
	if td.Stats().TicksDetected != 0 {
		t.Fatalf("expected zero ticks recorded in stats")
	}
}

func TestAsymmetricAdaptMovesFastDownSlowUp(t *testing.T) {
	fast := asymmetricAdapt(1.0, 0.0, 0.5, 0.01, 0.0, 10.0)
	slow := asymmetricAdapt(1.0, 2.0, 0.5, 0.01, 0.0, 10.0)

	if fast >= 0.6 {
		t.Fatalf("expected fast-down adapt to move noticeably, got %v", fast)
	}
	if slow <= 1.0 || slow > 1.02 {
		t.Fatalf("expected slow-up adapt to move only slightly, got %v", slow)
	}
}

func TestAsymmetricAdaptClamps(t *testing.T) {
	if got := asymmetricAdapt(1.0, 100.0, 0.5, 1.0, 0.0, 5.0); got != 5.0 {
		t.Fatalf("expected clamp to max 5.0, got %v", got)
	}
	if got := asymmetricAdapt(1.0, -100.0, 1.0, 0.01, 0.2, 5.0); got != 0.2 {
		t.Fatalf("expected clamp to min 0.2, got %v", got)
	}
}

func TestMsToFrames(t *testing.T) {
	if got := msToFrames(200.0, 8.0); got != 25 {
		t.Fatalf("msToFrames(200, 8) = %d, want 25", got)
	}
	if got := msToFrames(0.0, 8.0); got != 0 {
		t.Fatalf("msToFrames(0, 8) = %d, want 0", got)
	}
}

func TestTickMaxDurationMsTickCapIsIndependentOfConfigTimeout(t *testing.T) {
	cfg := Default()
	cfg.TickMaxDurationMs = 1000.0
	td, err := NewTickDetector(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := td.TickMaxDurationMsTickCap(); got != 50.0 {
		t.Fatalf("TickMaxDurationMsTickCap() = %v, want 50.0 regardless of cfg.TickMaxDurationMs", got)
	}
}
