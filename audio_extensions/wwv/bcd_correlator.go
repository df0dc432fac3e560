package wwv

// ValidPPositions are the seconds at which a 'P' position marker may
// legally appear; a pulse classified as 'P' at any other second is
// downgraded to '1' (spec.md §4.H, §6).
var ValidPPositions = map[int]bool{0: true, 9: true, 19: true, 29: true, 39: true, 49: true, 59: true}

type bcdCorrState int

const (
	bcdCorrAcquiring bcdCorrState = iota
	bcdCorrTentative
	bcdCorrTracking
)

// BcdCorrelator consumes BcdTimeEvent and BcdFreqEvent, gated on a
// sync anchor, and emits at most one BcdSymbolEvent per second
// (spec.md component H). Window close is commutative in arrival order
// of the time- and freq-side events within the same second.
type BcdCorrelator struct {
	cfg Config

	window *BcdWindow
	haveAnchor bool
	anchorMs   float64

	state              bcdCorrState
	symbolCount        int
	lastSymbolTsMs     float64
	haveLastSymbolTs   bool
	consecutiveInRange int

	onSymbol func(BcdSymbolEvent)
}

func NewBcdCorrelator(cfg Config) *BcdCorrelator {
	return &BcdCorrelator{cfg: cfg, state: bcdCorrAcquiring}
}

func (bc *BcdCorrelator) SetCallback(onSymbol func(BcdSymbolEvent)) { bc.onSymbol = onSymbol }

// SetAnchor is called whenever the sync detector's anchor changes (new
// marker, or sync lost). anchorMs is ignored when ok is false.
func (bc *BcdCorrelator) SetAnchor(anchorMs float64, ok bool) {
	if !ok {
		bc.haveAnchor = false
		bc.window = nil
		return
	}
	if !bc.haveAnchor || anchorMs != bc.anchorMs {
		bc.anchorMs = anchorMs
		bc.haveAnchor = true
		// An anchor change closes whatever window was open; the next
		// event opens a fresh one against the new anchor.
		bc.closeIfOpen()
	}
}

func (bc *BcdCorrelator) OnTimeEvent(ev BcdTimeEvent) {
	bc.accumulate(ev.TimestampMs, ev.DurationMs, ev.PeakEnergy, true)
}

func (bc *BcdCorrelator) OnFreqEvent(ev BcdFreqEvent) {
	bc.accumulate(ev.TimestampMs, ev.DurationMs, ev.AccumulatedEnergy, false)
}

func (bc *BcdCorrelator) accumulate(timestampMs, durationMs, energy float64, isTime bool) {
	if !bc.haveAnchor {
		return
	}

	second := int(mod(timestampMs-bc.anchorMs, 60000.0) / 1000.0)
	if second < 0 {
		second = 0
	}
	if second > 59 {
		second = 59
	}

	if bc.window == nil {
		bc.window = newBcdWindow(second, bc.anchorMs)
	} else if bc.window.AnchorMs != bc.anchorMs || bc.window.CurrentSecond != second {
		bc.closeIfOpen()
		bc.window = newBcdWindow(second, bc.anchorMs)
	}

	if isTime {
		bc.window.Time.add(timestampMs, durationMs, energy)
	} else {
		bc.window.Freq.add(timestampMs, durationMs, energy)
	}
}

func (bc *BcdCorrelator) closeIfOpen() {
	if bc.window == nil || !bc.window.Open {
		return
	}
	w := bc.window
	w.Open = false

	timeEvents := w.Time.eventCount
	freqEvents := w.Freq.eventCount

	var durationMs float64
	switch {
	case timeEvents > 0 && freqEvents > 0:
		durationMs = (w.Time.estimatedDuration() + w.Freq.estimatedDuration()) / 2.0
	case timeEvents > 0:
		durationMs = w.Time.estimatedDuration()
	case freqEvents > 0:
		durationMs = w.Freq.estimatedDuration()
	default:
		return // nothing accumulated; nothing to classify
	}

	symbol := classifySymbol(durationMs, w.CurrentSecond, bc.cfg)

	var source EventSource
	var confidence float64
	switch {
	case timeEvents > 0 && freqEvents > 0:
		source = SourceBoth
		confidence = 1.0
	case timeEvents > 0:
		source = SourceTime
		confidence = 0.6
	default:
		source = SourceFreq
		confidence = 0.6
	}

	totalEvents := timeEvents + freqEvents
	totalEnergy := w.Time.energySum + w.Freq.energySum
	if totalEvents < bc.cfg.MinEventsForSymbol || totalEnergy <= bc.cfg.EnergyThresholdLow {
		confidence *= 0.5
	}

	bc.advanceTrackingState(symbol, w.StartMs)

	if symbol == SymbolNone {
		return
	}

	bc.symbolCount++
	if bc.onSymbol != nil {
		bc.onSymbol(BcdSymbolEvent{
			Symbol:      symbol,
			TimestampMs: w.StartMs + 500.0,
			DurationMs:  durationMs,
			Confidence:  confidence,
			Source:      source,
			Second:      w.CurrentSecond,
		})
	}
}

func classifySymbol(durationMs float64, second int, cfg Config) Symbol {
	switch {
	case durationMs < cfg.SymbolMinDurationMs:
		return SymbolNone
	case durationMs <= cfg.SymbolZeroMaxMs:
		return SymbolZero
	case durationMs <= cfg.SymbolOneMaxMs:
		return SymbolOne
	default:
		if ValidPPositions[second] {
			return SymbolP
		}
		return SymbolOne
	}
}

func (bc *BcdCorrelator) advanceTrackingState(symbol Symbol, windowStartMs float64) {
	if symbol == SymbolNone {
		return
	}
	symbolTsMs := windowStartMs + 500.0

	switch bc.state {
	case bcdCorrAcquiring:
		bc.state = bcdCorrTentative
		bc.consecutiveInRange = 0

	case bcdCorrTentative, bcdCorrTracking:
		if bc.haveLastSymbolTs {
			interval := symbolTsMs - bc.lastSymbolTsMs
			if interval >= 900 && interval <= 1100 {
				bc.consecutiveInRange++
			} else {
				bc.consecutiveInRange = 0
			}
		}
		if bc.consecutiveInRange >= bc.cfg.TrackingMinStreak {
			bc.state = bcdCorrTracking
		}
	}

	bc.lastSymbolTsMs = symbolTsMs
	bc.haveLastSymbolTs = true
}

func (bc *BcdCorrelator) State() string {
	switch bc.state {
	case bcdCorrTracking:
		return "TRACKING"
	case bcdCorrTentative:
		return "TENTATIVE"
	default:
		return "ACQUIRING"
	}
}
