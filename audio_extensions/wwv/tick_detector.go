package wwv

import (
	"fmt"
	"log"
)

type tickState int

const (
	tickIdle tickState = iota
	tickInTick
	tickCooldown
)

// TickDetector emits TickEvents and TickMarkerEvents from the
// detection-rate I/Q stream (spec.md component C). It is the hardest
// component in the pipeline: it combines a matched-filter correlator,
// an asymmetric adaptive noise floor, a timing gate, and
// marker-vs-tick classification on pulse exit.
type TickDetector struct {
	cfg Config

	fft  *FFTProcessor
	corr *MatchedFilter
	gate *TimingGate

	iBuf, qBuf []float64
	bufIdx     int
	frameCount uint64
	frameMs    float64

	noiseFloor    float64
	thresholdHigh float64
	thresholdLow  float64
	warmupComplete bool
	warmupStartFrame uint64

	corrNoiseFloor      float64
	corrNoiseEstablished bool

	state              tickState
	pulseStartFrame    uint64
	pulsePeakEnergy    float64
	pulseDurationFrames int
	cooldownFrames     int

	corrPeak float64
	corrSum  float64
	corrCount int

	tickHistory      *RingBuffer // interval_ms history, size TickHistorySize
	tickCount        int
	ticksRejected    int
	lastTickTimestampMs float64
	haveLastTick     bool

	markerCount           int
	lastMarkerTimestampMs float64
	haveLastMarker        bool

	onTick   func(TickEvent)
	onMarker func(TickMarkerEvent)
}

// NewTickDetector constructs the tick detector. cfg.TickFFTSize,
// cfg.DetectionSampleRate, and cfg.StationFreqHz (the tick frequency)
// must be valid or construction fails.
func NewTickDetector(cfg Config) (*TickDetector, error) {
	fft, err := NewFFTProcessor(cfg.TickFFTSize, cfg.DetectionSampleRate, WindowHann)
	if err != nil {
		return nil, fmt.Errorf("wwv: tick detector: %w", err)
	}
	corr, err := NewMatchedFilter(cfg.CorrTemplateLen, cfg.DetectionSampleRate, cfg.StationFreqHz, cfg.CorrDecimation)
	if err != nil {
		return nil, fmt.Errorf("wwv: tick detector: %w", err)
	}

	td := &TickDetector{
		cfg:     cfg,
		fft:     fft,
		corr:    corr,
		gate:    NewTimingGate(cfg),
		iBuf:    make([]float64, cfg.TickFFTSize),
		qBuf:    make([]float64, cfg.TickFFTSize),
		frameMs: float64(cfg.TickFFTSize) * 1000.0 / cfg.DetectionSampleRate,

		noiseFloor:   1e-4,
		corrNoiseFloor: 1e-4,

		tickHistory: NewRingBuffer(cfg.TickHistorySize),
	}
	td.thresholdHigh = td.noiseFloor * cfg.TickThresholdMult
	td.thresholdLow = td.thresholdHigh * cfg.TickHysteresisRatio

	return td, nil
}

// SetCallbacks registers the event sinks. Either may be nil.
func (td *TickDetector) SetCallbacks(onTick func(TickEvent), onMarker func(TickMarkerEvent)) {
	td.onTick = onTick
	td.onMarker = onMarker
}

// Gate exposes the detector's timing gate so a tick correlator's
// published epoch can be wired into it.
func (td *TickDetector) Gate() *TimingGate { return td.gate }

// ProcessSample feeds one (i, q) detection-rate sample. It updates the
// matched filter every sample and runs the frame-level state machine
// once per TickFFTSize samples.
func (td *TickDetector) ProcessSample(i, q float64) {
	mag, ready := td.corr.PushSample(i)
	if ready {
		td.updateCorrMagnitude(mag)
	}

	td.iBuf[td.bufIdx] = i
	td.qBuf[td.bufIdx] = q
	td.bufIdx++
	if td.bufIdx < len(td.iBuf) {
		return
	}
	td.bufIdx = 0

	if err := td.fft.Process(td.iBuf, td.qBuf); err != nil {
		return
	}
	energy := td.fft.BucketEnergy(td.cfg.StationFreqHz, td.cfg.TickBandwidthHz)
	td.runStateMachine(energy)
	td.frameCount++
}

func (td *TickDetector) updateCorrMagnitude(mag float64) {
	if mag < td.corrNoiseFloor || !td.corrNoiseEstablished {
		rate := td.cfg.CorrNoiseAdapt
		td.corrNoiseFloor += rate * (mag - td.corrNoiseFloor)
		td.corrNoiseEstablished = true
	} else if td.state == tickIdle {
		rate := td.cfg.CorrIdleAdapt
		td.corrNoiseFloor += rate * (mag - td.corrNoiseFloor)
	}
	if td.corrNoiseFloor < 1e-6 {
		td.corrNoiseFloor = 1e-6
	}

	if td.state == tickInTick {
		td.corrSum += mag
		td.corrCount++
		if mag > td.corrPeak {
			td.corrPeak = mag
		}
	}
}

func (td *TickDetector) runStateMachine(energy float64) {
	if !td.warmupComplete {
		td.noiseFloor += td.cfg.TickWarmupAdaptRate * (energy - td.noiseFloor)
		if td.noiseFloor < td.cfg.NoiseFloorMin {
			td.noiseFloor = td.cfg.NoiseFloorMin
		}
		td.thresholdHigh = td.noiseFloor * td.cfg.TickThresholdMult
		td.thresholdLow = td.thresholdHigh * td.cfg.TickHysteresisRatio

		if td.frameCount >= td.warmupStartFrame+uint64(td.cfg.TickWarmupFrames) {
			td.warmupComplete = true
			log.Printf("[WWV:tick] warmup complete noise_floor=%.6f threshold=%.6f", td.noiseFloor, td.thresholdHigh)
		}
		return
	}

	if td.state == tickIdle && energy < td.thresholdHigh {
		td.noiseFloor = asymmetricAdapt(td.noiseFloor, energy, td.cfg.TickNoiseAdaptDown, td.cfg.TickNoiseAdaptUp, td.cfg.NoiseFloorMin, td.cfg.NoiseFloorMax)
		td.thresholdHigh = td.noiseFloor * td.cfg.TickThresholdMult
		td.thresholdLow = td.thresholdHigh * td.cfg.TickHysteresisRatio
	}

	switch td.state {
	case tickIdle:
		td.gate.MaybeEnterRecovery(td.frameCount, td.frameMs)
		now := float64(td.frameCount) * td.frameMs
		if energy > td.thresholdHigh && td.gate.IsOpen(now) {
			td.state = tickInTick
			td.pulseStartFrame = td.frameCount
			td.pulsePeakEnergy = energy
			td.pulseDurationFrames = 1
			td.corrPeak = 0
			td.corrSum = 0
			td.corrCount = 0
		}

	case tickInTick:
		td.pulseDurationFrames++
		if energy > td.pulsePeakEnergy {
			td.pulsePeakEnergy = energy
		}

		durationMs := float64(td.pulseDurationFrames) * td.frameMs

		if energy < td.thresholdLow {
			td.classifyAndEmit(durationMs)
			return
		}
		if durationMs > td.cfg.TickMaxDurationMs {
			td.ticksRejected++
			td.enterCooldown()
		}

	case tickCooldown:
		td.cooldownFrames--
		if td.cooldownFrames <= 0 {
			td.state = tickIdle
		}
	}
}

func (td *TickDetector) classifyAndEmit(durationMs float64) {
	startFrame := td.pulseStartFrame
	trailingTimestampMs := float64(td.frameCount) * td.frameMs
	startTimestampMs := float64(startFrame) * td.frameMs

	sinceLastMarkerOK := !td.haveLastMarker || (trailingTimestampMs-td.lastMarkerTimestampMs)/1000.0 >= td.cfg.MarkerMinIntervalSec

	switch {
	case durationMs >= td.cfg.MarkerViaTickMinMs && durationMs <= td.cfg.MarkerViaTickMaxMs && sinceLastMarkerOK:
		leadingEdge := trailingTimestampMs - durationMs - td.cfg.FilterDelayMs
		prevMarkerTimestampMs := td.lastMarkerTimestampMs
		havePrevMarker := td.haveLastMarker
		td.markerCount++
		td.lastMarkerTimestampMs = trailingTimestampMs
		td.haveLastMarker = true
		ev := TickMarkerEvent{
			Number:           td.markerCount,
			TimestampMs:      trailingTimestampMs,
			StartTimestampMs: leadingEdge,
			DurationMs:       durationMs,
			CorrRatio:        td.corrRatio(),
		}
		if havePrevMarker {
			ev.IntervalMs = trailingTimestampMs - prevMarkerTimestampMs
		}
		if td.onMarker != nil {
			td.onMarker(ev)
		}
		// last_tick_frame deliberately left unchanged: a marker does
		// not perturb tick cadence tracking.

	case durationMs >= td.cfg.TickMinDurationMs && durationMs <= td.cfg.TickMaxDurationMsTickCap() && td.corrValid():
		intervalMs := 0.0
		if td.haveLastTick {
			intervalMs = startTimestampMs - td.lastTickTimestampMs
		}
		td.lastTickTimestampMs = startTimestampMs
		td.haveLastTick = true
		td.tickCount++

		td.tickHistory.Push(intervalMs)

		ev := TickEvent{
			Number:        td.tickCount,
			TimestampMs:   startTimestampMs,
			IntervalMs:    intervalMs,
			DurationMs:    durationMs,
			PeakEnergy:    td.pulsePeakEnergy,
			AvgIntervalMs: td.tickHistory.Mean(),
			NoiseFloor:    td.noiseFloor,
			CorrPeak:      td.corrPeak,
			CorrRatio:     td.corrRatio(),
		}
		if td.onTick != nil {
			td.onTick(ev)
		}
		if td.gate != nil {
			td.gate.OnGatedTick(td.frameCount)
		}

	default:
		td.ticksRejected++
	}

	td.enterCooldown()
}

// TickMaxDurationMsTickCap returns the upper bound a regular tick's
// duration must fall under (spec.md's TICK_MAX_DURATION_MS=50),
// distinct from the detector's own pulse bail-out timeout
// (cfg.TickMaxDurationMs, default 1000ms) per the §9 open-question
// note that these stay independently named.
func (td *TickDetector) TickMaxDurationMsTickCap() float64 { return 50.0 }

func (td *TickDetector) corrValid() bool {
	return td.corrPeak >= td.cfg.CorrValidMult*td.corrNoiseFloor
}

func (td *TickDetector) corrRatio() float64 {
	if td.corrNoiseFloor <= 0 {
		return 0
	}
	return td.corrPeak / td.corrNoiseFloor
}

func (td *TickDetector) enterCooldown() {
	td.state = tickCooldown
	td.cooldownFrames = msToFrames(td.cfg.TickCooldownMs, td.frameMs)
}

func asymmetricAdapt(floor, energy, down, up, min, max float64) float64 {
	if energy < floor {
		floor += down * (energy - floor)
	} else {
		floor += up * (energy - floor)
	}
	if floor < min {
		floor = min
	}
	if floor > max {
		floor = max
	}
	return floor
}

func msToFrames(ms, frameMs float64) int {
	return int(ms/frameMs + 0.5)
}

// Stats is a point-in-time snapshot of detector counters, mirroring
// the original's print_stats blocks.
type TickDetectorStats struct {
	TicksDetected  int
	TicksRejected  int
	MarkersDetected int
	NoiseFloor     float64
	ThresholdHigh  float64
	FrameCount     uint64
}

func (td *TickDetector) Stats() TickDetectorStats {
	return TickDetectorStats{
		TicksDetected:   td.tickCount,
		TicksRejected:   td.ticksRejected,
		MarkersDetected: td.markerCount,
		NoiseFloor:      td.noiseFloor,
		ThresholdHigh:   td.thresholdHigh,
		FrameCount:      td.frameCount,
	}
}

func (s TickDetectorStats) String() string {
	return fmt.Sprintf("ticks=%d rejected=%d markers=%d noise_floor=%.6f threshold=%.6f frames=%d",
		s.TicksDetected, s.TicksRejected, s.MarkersDetected, s.NoiseFloor, s.ThresholdHigh, s.FrameCount)
}
