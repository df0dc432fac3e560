package wwv

import (
	"fmt"
	"log"
)

type markerState int

const (
	markerIdle markerState = iota
	markerInPulse
	markerCooldown
)

// MarkerDetector detects the 800ms minute-marker pulse directly (as
// opposed to the tick detector's classify-on-exit path) via a
// sliding-window energy accumulator tested against an adaptively
// tracked baseline (spec.md component D).
type MarkerDetector struct {
	cfg Config

	fft *FFTProcessor

	iBuf, qBuf []float64
	bufIdx     int
	frameCount uint64
	frameMs    float64

	accum *AccumulatorRing

	baseline  float64
	threshold float64

	noiseFloor *NoiseFloor // shared; published into by the tone tracker, floors md.baseline

	warmupComplete bool

	state               markerState
	pulseStartFrame     uint64
	pulsePeakAccum      float64
	pulseDurationFrames int
	cooldownFrames      int

	markerCount           int
	lastMarkerTimestampMs float64
	haveLastMarker        bool

	onMarker func(MarkerEvent)
}

// NewMarkerDetector constructs the marker detector. noiseFloor may be
// nil; if non-nil it is the value object the tone tracker publishes
// into after every FFT frame, and effectiveBaseline floors this detector's
// own adaptive baseline against it so a burst of subcarrier noise the
// tone tracker has already noticed raises the marker threshold too.
func NewMarkerDetector(cfg Config, noiseFloor *NoiseFloor) (*MarkerDetector, error) {
	fft, err := NewFFTProcessor(cfg.TickFFTSize, cfg.DetectionSampleRate, WindowHann)
	if err != nil {
		return nil, fmt.Errorf("wwv: marker detector: %w", err)
	}

	frameMs := float64(cfg.TickFFTSize) * 1000.0 / cfg.DetectionSampleRate
	windowFrames := int(cfg.MarkerWindowMs/frameMs + 0.5)
	if windowFrames < 1 {
		windowFrames = 1
	}

	md := &MarkerDetector{
		cfg:        cfg,
		fft:        fft,
		iBuf:       make([]float64, cfg.TickFFTSize),
		qBuf:       make([]float64, cfg.TickFFTSize),
		frameMs:    frameMs,
		accum:      NewAccumulatorRing(windowFrames),
		baseline:   1e-4,
		noiseFloor: noiseFloor,
	}
	md.threshold = md.baseline * cfg.MarkerThresholdMult
	return md, nil
}

func (md *MarkerDetector) SetCallback(onMarker func(MarkerEvent)) { md.onMarker = onMarker }

func (md *MarkerDetector) ProcessSample(i, q float64) {
	md.iBuf[md.bufIdx] = i
	md.qBuf[md.bufIdx] = q
	md.bufIdx++
	if md.bufIdx < len(md.iBuf) {
		return
	}
	md.bufIdx = 0

	if err := md.fft.Process(md.iBuf, md.qBuf); err != nil {
		return
	}
	energy := md.fft.BucketEnergy(md.cfg.StationFreqHz, md.cfg.MarkerBandwidthHz)
	accumulated := md.accum.Push(energy)
	md.runStateMachine(accumulated)
	md.frameCount++
}

// effectiveBaseline floors the detector's own adaptively-tracked
// baseline against the shared noise floor the tone tracker publishes,
// so the marker threshold actually reacts to subcarrier noise the
// tone tracker sees before this detector's own accumulator catches up.
func (md *MarkerDetector) effectiveBaseline() float64 {
	if md.noiseFloor == nil {
		return md.baseline
	}
	if floor := md.noiseFloor.Get(); floor > md.baseline {
		return floor
	}
	return md.baseline
}

func (md *MarkerDetector) runStateMachine(accumulated float64) {
	nowMs := float64(md.frameCount) * md.frameMs

	if !md.warmupComplete {
		md.baseline += md.cfg.MarkerBaselineAdapt * (accumulated - md.baseline)
		md.threshold = md.effectiveBaseline() * md.cfg.MarkerThresholdMult
		if nowMs >= md.cfg.MarkerMinStartupMs {
			md.warmupComplete = true
			log.Printf("[WWV:marker] startup period complete baseline=%.6f threshold=%.6f", md.baseline, md.threshold)
		}
		return
	}

	if md.state == markerIdle {
		md.baseline += md.cfg.MarkerBaselineAdapt * (accumulated - md.baseline)
		if md.baseline < 1e-4 {
			md.baseline = 1e-4
		}
		md.threshold = md.effectiveBaseline() * md.cfg.MarkerThresholdMult
	}

	switch md.state {
	case markerIdle:
		if accumulated > md.threshold {
			md.state = markerInPulse
			md.pulseStartFrame = md.frameCount
			md.pulsePeakAccum = accumulated
			md.pulseDurationFrames = 1
		}

	case markerInPulse:
		md.pulseDurationFrames++
		if accumulated > md.pulsePeakAccum {
			md.pulsePeakAccum = accumulated
		}
		durationMs := float64(md.pulseDurationFrames) * md.frameMs
		timedOut := durationMs > md.cfg.MarkerMaxDurationMs

		if accumulated < md.threshold || timedOut {
			md.closePulse(durationMs)
		}

	case markerCooldown:
		md.cooldownFrames--
		if md.cooldownFrames <= 0 {
			md.state = markerIdle
		}
	}
}

func (md *MarkerDetector) closePulse(durationMs float64) {
	startTimestampMs := float64(md.pulseStartFrame) * md.frameMs

	if durationMs >= md.cfg.MarkerMinDurationMs && durationMs <= md.cfg.MarkerMaxDurationMs {
		sinceLast := 0.0
		if md.haveLastMarker {
			sinceLast = (startTimestampMs - md.lastMarkerTimestampMs) / 1000.0
		}
		md.markerCount++
		md.lastMarkerTimestampMs = startTimestampMs
		md.haveLastMarker = true

		if md.onMarker != nil {
			md.onMarker(MarkerEvent{
				Number:             md.markerCount,
				TimestampMs:        startTimestampMs,
				SinceLastMarkerSec: sinceLast,
				AccumulatedEnergy:  md.pulsePeakAccum,
				PeakEnergy:         md.pulsePeakAccum,
				DurationMs:         durationMs,
			})
		}
	}

	md.state = markerCooldown
	md.cooldownFrames = msToFrames(md.cfg.MarkerCooldownMs, md.frameMs)
}
