package wwv

import "testing"

func TestClassifySymbolDurationBoundaries(t *testing.T) {
	cfg := Default()

	if got := classifySymbol(cfg.SymbolZeroMaxMs, 5, cfg); got != SymbolZero {
		t.Fatalf("duration at SymbolZeroMaxMs = %v, want '0'", got)
	}
	if got := classifySymbol(cfg.SymbolZeroMaxMs+0.01, 5, cfg); got != SymbolOne {
		t.Fatalf("duration just over SymbolZeroMaxMs = %v, want '1'", got)
	}
	if got := classifySymbol(cfg.SymbolOneMaxMs, 5, cfg); got != SymbolOne {
		t.Fatalf("duration at SymbolOneMaxMs = %v, want '1'", got)
	}
	if got := classifySymbol(cfg.SymbolOneMaxMs+0.01, 5, cfg); got != SymbolOne {
		t.Fatalf("duration just over SymbolOneMaxMs at a non-P second = %v, want '1' (downgraded)", got)
	}
	if got := classifySymbol(cfg.SymbolOneMaxMs+0.01, 9, cfg); got != SymbolP {
		t.Fatalf("duration just over SymbolOneMaxMs at second 9 = %v, want 'P'", got)
	}
	if got := classifySymbol(cfg.SymbolMinDurationMs-0.01, 9, cfg); got != SymbolNone {
		t.Fatalf("duration under SymbolMinDurationMs = %v, want None", got)
	}
}

func TestValidPPositions(t *testing.T) {
	want := []int{0, 9, 19, 29, 39, 49, 59}
	for _, s := range want {
		if !ValidPPositions[s] {
			t.Fatalf("expected second %d to be a valid P position", s)
		}
	}
	if ValidPPositions[7] {
		t.Fatalf("expected second 7 to not be a valid P position")
	}
}

func TestBcdCorrelatorEmitsZeroSymbolFromTimeEvent(t *testing.T) {
	cfg := Default()
	bc := NewBcdCorrelator(cfg)
	bc.SetAnchor(0.0, true)

	var got []BcdSymbolEvent
	bc.SetCallback(func(ev BcdSymbolEvent) { got = append(got, ev) })

	// Second 5, a short pulse classifying as '0'.
	bc.OnTimeEvent(BcdTimeEvent{TimestampMs: 5000.0, DurationMs: 170.0, PeakEnergy: 1.0})
	// Force window close by moving to the next second.
	bc.OnTimeEvent(BcdTimeEvent{TimestampMs: 6000.0, DurationMs: 170.0, PeakEnergy: 1.0})

	if len(got) != 1 {
		t.Fatalf("expected exactly one symbol emitted, got %d", len(got))
	}
	if got[0].Symbol != SymbolZero {
		t.Fatalf("expected '0' symbol, got %v", got[0].Symbol)
	}
	if got[0].Second != 5 {
		t.Fatalf("expected second 5, got %d", got[0].Second)
	}
	if got[0].Source != SourceTime {
		t.Fatalf("expected SourceTime, got %v", got[0].Source)
	}
}

func TestBcdCorrelatorPositionGatesPMarker(t *testing.T) {
	cfg := Default()
	bc := NewBcdCorrelator(cfg)
	bc.SetAnchor(0.0, true)

	var got []BcdSymbolEvent
	bc.SetCallback(func(ev BcdSymbolEvent) { got = append(got, ev) })

	// Second 7 is not a valid P position: a long pulse there downgrades to '1'.
	bc.OnTimeEvent(BcdTimeEvent{TimestampMs: 7000.0, DurationMs: 800.0, PeakEnergy: 1.0})
	bc.OnTimeEvent(BcdTimeEvent{TimestampMs: 8000.0, DurationMs: 800.0, PeakEnergy: 1.0})

	if len(got) != 1 {
		t.Fatalf("expected exactly one symbol emitted, got %d", len(got))
	}
	if got[0].Symbol != SymbolOne {
		t.Fatalf("expected long pulse at second 7 to downgrade to '1', got %v", got[0].Symbol)
	}
}

func TestBcdCorrelatorCombinesTimeAndFreqIntoOneSymbol(t *testing.T) {
	cfg := Default()
	bc := NewBcdCorrelator(cfg)
	bc.SetAnchor(0.0, true)

	var got []BcdSymbolEvent
	bc.SetCallback(func(ev BcdSymbolEvent) { got = append(got, ev) })

	bc.OnTimeEvent(BcdTimeEvent{TimestampMs: 5000.0, DurationMs: 170.0, PeakEnergy: 1.0})
	bc.OnFreqEvent(BcdFreqEvent{TimestampMs: 5000.0, DurationMs: 170.0, AccumulatedEnergy: 1.0})
	bc.OnTimeEvent(BcdTimeEvent{TimestampMs: 6000.0, DurationMs: 170.0, PeakEnergy: 1.0})

	if len(got) != 1 {
		t.Fatalf("expected exactly one symbol emitted, got %d", len(got))
	}
	if got[0].Source != SourceBoth {
		t.Fatalf("expected SourceBoth when both sides report, got %v", got[0].Source)
	}
	if got[0].Confidence != 1.0 {
		t.Fatalf("expected full confidence for dual-source symbol, got %v", got[0].Confidence)
	}
}

func TestBcdCorrelatorSetAnchorClosesOpenWindow(t *testing.T) {
	cfg := Default()
	bc := NewBcdCorrelator(cfg)
	bc.SetAnchor(0.0, true)

	var got []BcdSymbolEvent
	bc.SetCallback(func(ev BcdSymbolEvent) { got = append(got, ev) })

	bc.OnTimeEvent(BcdTimeEvent{TimestampMs: 5000.0, DurationMs: 170.0, PeakEnergy: 1.0})
	bc.SetAnchor(60000.0, true) // anchor changed: should close the open window

	if len(got) != 1 {
		t.Fatalf("expected the open window to close and emit a symbol on anchor change, got %d", len(got))
	}
}

func TestBcdWindowSideAccumEstimatedDuration(t *testing.T) {
	var s bcdSideAccum
	if got := s.estimatedDuration(); got != 0 {
		t.Fatalf("expected 0 duration with no events, got %v", got)
	}

	s.add(1000.0, 170.0, 1.0)
	if got := s.estimatedDuration(); got != 170.0 {
		t.Fatalf("single-event estimatedDuration = %v, want 170.0 (reported duration)", got)
	}

	s.add(1170.0, 170.0, 1.0)
	if got := s.estimatedDuration(); got != 170.0 {
		t.Fatalf("two-event estimatedDuration = %v, want span 170.0", got)
	}
}
