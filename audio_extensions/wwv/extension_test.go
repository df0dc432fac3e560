package wwv

import "testing"

func TestNewExtensionRejectsInvalidStationFreq(t *testing.T) {
	_, err := NewExtension(50000, map[string]interface{}{"station_freq_hz": 1500.0})
	if err == nil {
		t.Fatalf("expected error for an invalid station_freq_hz")
	}
}

func TestNewExtensionRejectsInvalidTickBandwidth(t *testing.T) {
	_, err := NewExtension(50000, map[string]interface{}{"tick_bandwidth_hz": -1.0})
	if err == nil {
		t.Fatalf("expected error for an invalid tick_bandwidth_hz")
	}
}

func TestNewExtensionAcceptsWWVHStationFreq(t *testing.T) {
	ext, err := NewExtension(50000, map[string]interface{}{"station_freq_hz": 1200.0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ext.cfg.StationFreqHz != 1200.0 {
		t.Fatalf("cfg.StationFreqHz = %v, want 1200", ext.cfg.StationFreqHz)
	}
}

func TestNewExtensionDefaultsWhenParamsOmitted(t *testing.T) {
	ext, err := NewExtension(50000, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ext.cfg.StationFreqHz != 1000.0 {
		t.Fatalf("cfg.StationFreqHz = %v, want default 1000", ext.cfg.StationFreqHz)
	}
	if ext.cfg.DetectionSampleRate != 50000.0 {
		t.Fatalf("cfg.DetectionSampleRate = %v, want 50000", ext.cfg.DetectionSampleRate)
	}
	if ext.Core() == nil {
		t.Fatalf("expected a constructed Core")
	}
	if ext.GetName() != "wwv" {
		t.Fatalf("GetName() = %q, want wwv", ext.GetName())
	}
}

func TestExtensionStartStopDrainsCleanly(t *testing.T) {
	ext, err := NewExtension(8000, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	audioChan := make(chan AudioSample, 1)
	resultChan := make(chan []byte, 1)
	if err := ext.Start(audioChan, resultChan); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	audioChan <- AudioSample{PCMData: []int16{0, 100, -100, 0}}
	close(audioChan)

	if err := ext.Stop(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
