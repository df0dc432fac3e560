package wwv

import "testing"

func TestNewBcdFreqDetectorRejectsInvalidConfig(t *testing.T) {
	cfg := Default()
	cfg.BCDFreqFFTSize = 0
	if _, err := NewBcdFreqDetector(cfg); err == nil {
		t.Fatalf("expected error for zero BCDFreqFFTSize")
	}
}

func TestBcdFreqDetectorSilenceProducesNoEvents(t *testing.T) {
	cfg := Default()
	cfg.BCDFreqFFTSize = 64
	cfg.DetectionSampleRate = 8000.0
	cfg.BCDFreqWarmupFrames = 4
	cfg.BCDFreqMinStartupMs = 0
	cfg.BCDFreqWindowMs = 64.0

	fd, err := NewBcdFreqDetector(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var events int
	fd.SetCallback(func(BcdFreqEvent) { events++ })

	for n := 0; n < cfg.BCDFreqFFTSize*300; n++ {
		fd.ProcessSample(0, 0)
	}

	if events != 0 {
		t.Fatalf("expected no events on silence, got %d", events)
	}
	if got := fd.Stats().PulsesDetected; got != 0 {
		t.Fatalf("expected zero detected pulses, got %d", got)
	}
}
