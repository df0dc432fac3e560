package wwv

import (
	"fmt"

	"github.com/google/uuid"
)

// Core wires components A-J into the pipeline spec.md §2 describes:
// the detection-rate stream fans out to the tick, marker, and both BCD
// detectors; the tick correlator's epoch feeds back into the tick
// detector's timing gate; the sync detector consumes marker arrivals
// and anchors the BCD symbol correlator; the tone tracker publishes a
// shared noise floor into the marker detector.
type Core struct {
	InstanceID uuid.UUID

	cfg Config

	Tick       *TickDetector
	Marker     *MarkerDetector
	BcdTime    *BcdTimeDetector
	BcdFreq    *BcdFreqDetector
	Correlator *TickCorrelator
	BcdCorr    *BcdCorrelator
	Tone       *ToneTracker
	Sync       *SyncDetector

	sharedNoiseFloor *NoiseFloor

	tickSinks       []func(TickEvent)
	markerSinks     []func(MarkerEvent)
	tickMarkerSinks []func(TickMarkerEvent)
	bcdTimeSinks    []func(BcdTimeEvent)
	bcdFreqSinks    []func(BcdFreqEvent)
	bcdSymbolSinks  []func(BcdSymbolEvent)
	toneSinks       []func(ToneEvent)
}

// NewCore constructs every component and wires the feedback paths
// described above. Any component construction failure aborts the
// whole build and returns the wrapped error.
func NewCore(cfg Config) (*Core, error) {
	sharedNoiseFloor := NewNoiseFloor(1e-4)

	tick, err := NewTickDetector(cfg)
	if err != nil {
		return nil, fmt.Errorf("wwv: core: %w", err)
	}
	marker, err := NewMarkerDetector(cfg, sharedNoiseFloor)
	if err != nil {
		return nil, fmt.Errorf("wwv: core: %w", err)
	}
	bcdTime, err := NewBcdTimeDetector(cfg)
	if err != nil {
		return nil, fmt.Errorf("wwv: core: %w", err)
	}
	bcdFreq, err := NewBcdFreqDetector(cfg)
	if err != nil {
		return nil, fmt.Errorf("wwv: core: %w", err)
	}
	tone, err := NewToneTracker(cfg, sharedNoiseFloor)
	if err != nil {
		return nil, fmt.Errorf("wwv: core: %w", err)
	}

	correlator := NewTickCorrelator(cfg)
	sync := NewSyncDetector(cfg)
	bcdCorr := NewBcdCorrelator(cfg)

	c := &Core{
		InstanceID:       uuid.New(),
		cfg:              cfg,
		Tick:             tick,
		Marker:           marker,
		BcdTime:          bcdTime,
		BcdFreq:          bcdFreq,
		Correlator:       correlator,
		BcdCorr:          bcdCorr,
		Tone:             tone,
		Sync:             sync,
		sharedNoiseFloor: sharedNoiseFloor,
	}

	c.wireFeedback()
	return c, nil
}

func (c *Core) wireFeedback() {
	// Tick detector -> tick correlator -> epoch -> tick detector's gate,
	// and -> sync detector on a marker classification.
	c.Tick.SetCallbacks(func(ev TickEvent) {
		c.Correlator.OnTick(ev.TimestampMs)
		for _, sink := range c.tickSinks {
			sink(ev)
		}
	}, func(ev TickMarkerEvent) {
		c.Sync.OnMarker(ev.TimestampMs)
		for _, sink := range c.tickMarkerSinks {
			sink(ev)
		}
	})
	c.Correlator.SetEpochCallback(func(epochMs float64, source EpochSource, confidence float64) {
		c.Tick.Gate().SetEpoch(epochMs, source, confidence)
	})

	// Marker detector also feeds the sync detector, independent of
	// whichever source a given deployment trusts more; both call the
	// same OnMarker entrypoint.
	c.Marker.SetCallback(func(ev MarkerEvent) {
		c.Sync.OnMarker(ev.TimestampMs)
		for _, sink := range c.markerSinks {
			sink(ev)
		}
	})

	// BCD detectors feed the BCD correlator, gated on the sync anchor.
	c.BcdTime.SetCallback(func(ev BcdTimeEvent) {
		c.BcdCorr.OnTimeEvent(ev)
		for _, sink := range c.bcdTimeSinks {
			sink(ev)
		}
	})
	c.BcdFreq.SetCallback(func(ev BcdFreqEvent) {
		c.BcdCorr.OnFreqEvent(ev)
		for _, sink := range c.bcdFreqSinks {
			sink(ev)
		}
	})
	c.BcdCorr.SetCallback(func(ev BcdSymbolEvent) {
		for _, sink := range c.bcdSymbolSinks {
			sink(ev)
		}
	})
	c.Tone.SetCallback(func(ev ToneEvent) {
		for _, sink := range c.toneSinks {
			sink(ev)
		}
	})
}

// OnTick, OnMarker, OnTickMarker, OnBcdTime, OnBcdFreq, OnBcdSymbol,
// and OnTone register additional external sinks (CSV/UDP telemetry,
// metrics) without disturbing the internal feedback wiring set up by
// wireFeedback; each may be called any number of times.
func (c *Core) OnTick(f func(TickEvent))             { c.tickSinks = append(c.tickSinks, f) }
func (c *Core) OnMarker(f func(MarkerEvent))         { c.markerSinks = append(c.markerSinks, f) }
func (c *Core) OnTickMarker(f func(TickMarkerEvent)) { c.tickMarkerSinks = append(c.tickMarkerSinks, f) }
func (c *Core) OnBcdTime(f func(BcdTimeEvent))       { c.bcdTimeSinks = append(c.bcdTimeSinks, f) }
func (c *Core) OnBcdFreq(f func(BcdFreqEvent))       { c.bcdFreqSinks = append(c.bcdFreqSinks, f) }
func (c *Core) OnBcdSymbol(f func(BcdSymbolEvent))   { c.bcdSymbolSinks = append(c.bcdSymbolSinks, f) }
func (c *Core) OnTone(f func(ToneEvent))             { c.toneSinks = append(c.toneSinks, f) }

// ProcessDetectionSample feeds one (i, q) sample at the detection rate
// to the tick, marker, and both BCD detectors, and refreshes the BCD
// correlator's anchor from the sync detector's current state.
func (c *Core) ProcessDetectionSample(i, q, timestampMs float64) {
	c.Tick.ProcessSample(i, q)
	c.Marker.ProcessSample(i, q)
	c.BcdTime.ProcessSample(i, q)
	c.BcdFreq.ProcessSample(i, q)

	c.Sync.Tick(timestampMs)
	anchorMs, ok := c.Sync.Anchor()
	c.BcdCorr.SetAnchor(anchorMs, ok)
}

// ProcessDisplaySample feeds one (i, q) sample at the display rate to
// the tone tracker.
func (c *Core) ProcessDisplaySample(i, q, timestampMs float64) {
	c.Tone.ProcessSample(i, q, timestampMs)
}

