package wwv

import (
	"fmt"
	"log"
	"math"
)

type bcdFreqState int

const (
	bcdFreqIdle bcdFreqState = iota
	bcdFreqInPulse
	bcdFreqCooldown
)

// BcdFreqDetector gives confident 100 Hz subcarrier presence via a
// long (2048-point) FFT and a sliding-window accumulator, trading
// timing precision for integration gain against noise (spec.md
// component F). It self-tracks its baseline rather than using the
// asymmetric EMA the other detectors use, and force-closes and resets
// its baseline if a pulse runs past BCDFreqMaxDurationMs.
type BcdFreqDetector struct {
	cfg Config

	fft *FFTProcessor

	iBuf, qBuf []float64
	bufIdx     int
	frameCount uint64
	frameMs    float64

	accum *AccumulatorRing

	baseline       float64
	threshold      float64
	warmupComplete bool

	state                bcdFreqState
	pulseStartFrame      uint64
	pulsePeakAccum       float64
	pulseDurationFrames  int
	consecutiveLowFrames int
	cooldownFrames       int

	pulsesDetected int
	pulsesRejected int

	onEvent func(BcdFreqEvent)
}

func NewBcdFreqDetector(cfg Config) (*BcdFreqDetector, error) {
	fft, err := NewFFTProcessor(cfg.BCDFreqFFTSize, cfg.DetectionSampleRate, WindowHann)
	if err != nil {
		return nil, fmt.Errorf("wwv: bcd freq detector: %w", err)
	}

	frameMs := float64(cfg.BCDFreqFFTSize) * 1000.0 / cfg.DetectionSampleRate
	windowFrames := int(cfg.BCDFreqWindowMs/frameMs + 0.5)
	if windowFrames < 1 {
		windowFrames = 1
	}

	fd := &BcdFreqDetector{
		cfg:      cfg,
		fft:      fft,
		iBuf:     make([]float64, cfg.BCDFreqFFTSize),
		qBuf:     make([]float64, cfg.BCDFreqFFTSize),
		frameMs:  frameMs,
		accum:    NewAccumulatorRing(windowFrames),
		baseline: 1e-4,
	}
	fd.threshold = fd.baseline * cfg.BCDFreqThresholdMult
	return fd, nil
}

func (fd *BcdFreqDetector) SetCallback(onEvent func(BcdFreqEvent)) { fd.onEvent = onEvent }

func (fd *BcdFreqDetector) ProcessSample(i, q float64) {
	fd.iBuf[fd.bufIdx] = i
	fd.qBuf[fd.bufIdx] = q
	fd.bufIdx++
	if fd.bufIdx < len(fd.iBuf) {
		return
	}
	fd.bufIdx = 0

	if err := fd.fft.Process(fd.iBuf, fd.qBuf); err != nil {
		return
	}
	energy := fd.fft.BucketEnergy(fd.cfg.BCDSubcarrierFreqHz, fd.cfg.BCDFreqBandwidthHz)
	accumulated := fd.accum.Push(energy)
	fd.runStateMachine(accumulated)
	fd.frameCount++
}

func (fd *BcdFreqDetector) runStateMachine(accumulated float64) {
	if !fd.warmupComplete {
		fd.baseline += fd.cfg.BCDFreqWarmupAdapt * (accumulated - fd.baseline)
		fd.threshold = fd.baseline * fd.cfg.BCDFreqThresholdMult
		if fd.frameCount >= uint64(fd.cfg.BCDFreqWarmupFrames) {
			fd.warmupComplete = true
			log.Printf("[WWV:bcd_freq] warmup complete baseline=%.6f threshold=%.6f accum=%.6f", fd.baseline, fd.threshold, accumulated)
		}
		return
	}

	timestampMs := float64(fd.frameCount) * fd.frameMs
	if timestampMs < fd.cfg.BCDFreqMinStartupMs {
		fd.baseline += fd.cfg.BCDFreqNoiseAdaptRate * (accumulated - fd.baseline)
		fd.threshold = fd.baseline * fd.cfg.BCDFreqThresholdMult
		return
	}

	if fd.state == bcdFreqIdle {
		fd.baseline += fd.cfg.BCDFreqNoiseAdaptRate * (accumulated - fd.baseline)
		if fd.baseline < 1e-4 {
			fd.baseline = 1e-4
		}
		fd.threshold = fd.baseline * fd.cfg.BCDFreqThresholdMult
	}

	switch fd.state {
	case bcdFreqIdle:
		if accumulated > fd.threshold {
			fd.state = bcdFreqInPulse
			fd.pulseStartFrame = fd.frameCount
			fd.pulsePeakAccum = accumulated
			fd.pulseDurationFrames = 1
			fd.consecutiveLowFrames = 0
		}

	case bcdFreqInPulse:
		fd.pulseDurationFrames++
		if accumulated > fd.pulsePeakAccum {
			fd.pulsePeakAccum = accumulated
		}

		durationMs := float64(fd.pulseDurationFrames) * fd.frameMs
		timedOut := durationMs > fd.cfg.BCDFreqMaxDurationMs

		if accumulated < fd.threshold {
			fd.consecutiveLowFrames++
		} else {
			fd.consecutiveLowFrames = 0
		}

		if fd.consecutiveLowFrames >= fd.cfg.MinLowFrames || timedOut {
			fd.closePulse(durationMs, timedOut, accumulated)
		}

	case bcdFreqCooldown:
		fd.cooldownFrames--
		if fd.cooldownFrames <= 0 {
			fd.state = bcdFreqIdle
		}
	}
}

func (fd *BcdFreqDetector) closePulse(durationMs float64, timedOut bool, accumulated float64) {
	startTimestampMs := float64(fd.pulseStartFrame) * fd.frameMs

	if durationMs >= fd.cfg.BCDFreqPulseMinMs && durationMs <= fd.cfg.BCDFreqPulseMaxMs {
		fd.pulsesDetected++
		snrDB := 10.0 * math.Log10(fd.pulsePeakAccum/fd.baseline)
		if fd.onEvent != nil {
			fd.onEvent(BcdFreqEvent{
				TimestampMs:       startTimestampMs,
				DurationMs:        durationMs,
				AccumulatedEnergy: fd.pulsePeakAccum,
				BaselineEnergy:    fd.baseline,
				SnrDB:             snrDB,
			})
		}
	} else if timedOut {
		log.Printf("[WWV:bcd_freq] timeout after %.0fms, resetting baseline", durationMs)
		fd.baseline = accumulated
		fd.threshold = fd.baseline * fd.cfg.BCDFreqThresholdMult
		fd.pulsesRejected++
	} else {
		fd.pulsesRejected++
	}

	fd.state = bcdFreqCooldown
	fd.cooldownFrames = msToFrames(fd.cfg.BCDFreqCooldownMs, fd.frameMs)
}

type BcdFreqDetectorStats struct {
	PulsesDetected int
	PulsesRejected int
	Baseline       float64
}

func (fd *BcdFreqDetector) Stats() BcdFreqDetectorStats {
	return BcdFreqDetectorStats{fd.pulsesDetected, fd.pulsesRejected, fd.baseline}
}
