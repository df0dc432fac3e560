package wwv

// bcdSideAccum tracks one side's (time or frequency) contribution to
// an open BCD window.
type bcdSideAccum struct {
	firstMs    float64
	lastMs     float64
	eventCount int
	energySum  float64
	durationSum float64
}

func (s *bcdSideAccum) add(timestampMs, durationMs, energy float64) {
	if s.eventCount == 0 {
		s.firstMs = timestampMs
	}
	s.lastMs = timestampMs
	s.eventCount++
	s.energySum += energy
	s.durationSum += durationMs
}

// estimatedDuration returns the side's best duration estimate: the
// span between first and last event when at least two events landed,
// otherwise the single reported duration.
func (s *bcdSideAccum) estimatedDuration() float64 {
	if s.eventCount == 0 {
		return 0
	}
	if s.eventCount >= 2 {
		return s.lastMs - s.firstMs
	}
	return s.durationSum
}

// BcdWindow is the minute-anchored 1-second accumulation window the
// BCD symbol correlator manages (spec.md §3). A window is open iff
// sync is LOCKED/RECOVERING and an event has been observed since the
// anchor became available.
type BcdWindow struct {
	Open          bool
	CurrentSecond int
	StartMs       float64
	AnchorMs      float64

	Time bcdSideAccum
	Freq bcdSideAccum
}

func newBcdWindow(second int, anchorMs float64) *BcdWindow {
	return &BcdWindow{
		Open:          true,
		CurrentSecond: second,
		AnchorMs:      anchorMs,
		StartMs:       anchorMs + float64(second)*1000.0,
	}
}
