package wwv

import (
	"fmt"
	"log"
	"math"
)

type bcdTimeState int

const (
	bcdTimeIdle bcdTimeState = iota
	bcdTimeInPulse
	bcdTimeCooldown
)

// BcdTimeDetector gives precise pulse edge timestamps for the 100 Hz
// BCD subcarrier via a short (256-point) FFT, so the pulse-duration
// estimate is accurate even though individual frames are noisy
// (spec.md component E). It uses the same asymmetric-EMA noise floor
// as the tick detector, and additionally requires MinLowFrames
// consecutive low frames before ending a pulse.
type BcdTimeDetector struct {
	cfg Config

	fft *FFTProcessor

	iBuf, qBuf []float64
	bufIdx     int
	frameCount uint64
	frameMs    float64

	noiseFloor     float64
	thresholdHigh  float64
	thresholdLow   float64
	warmupComplete bool

	state                bcdTimeState
	pulseStartFrame      uint64
	pulsePeakEnergy      float64
	pulseDurationFrames  int
	consecutiveLowFrames int
	cooldownFrames       int

	pulsesDetected int
	pulsesRejected int

	onEvent func(BcdTimeEvent)
}

func NewBcdTimeDetector(cfg Config) (*BcdTimeDetector, error) {
	fft, err := NewFFTProcessor(cfg.BCDTimeFFTSize, cfg.DetectionSampleRate, WindowHann)
	if err != nil {
		return nil, fmt.Errorf("wwv: bcd time detector: %w", err)
	}

	td := &BcdTimeDetector{
		cfg:        cfg,
		fft:        fft,
		iBuf:       make([]float64, cfg.BCDTimeFFTSize),
		qBuf:       make([]float64, cfg.BCDTimeFFTSize),
		frameMs:    float64(cfg.BCDTimeFFTSize) * 1000.0 / cfg.DetectionSampleRate,
		noiseFloor: 1e-4,
	}
	td.thresholdHigh = td.noiseFloor * cfg.BCDTimeThresholdMult
	td.thresholdLow = td.thresholdHigh * cfg.BCDTimeHysteresisRatio
	return td, nil
}

func (td *BcdTimeDetector) SetCallback(onEvent func(BcdTimeEvent)) { td.onEvent = onEvent }

func (td *BcdTimeDetector) ProcessSample(i, q float64) {
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
	energy := td.fft.BucketEnergy(td.cfg.BCDSubcarrierFreqHz, td.cfg.BCDTimeBandwidthHz)
	td.runStateMachine(energy)
	td.frameCount++
}

func (td *BcdTimeDetector) runStateMachine(energy float64) {
	if !td.warmupComplete {
		td.noiseFloor += td.cfg.BCDTimeWarmupAdapt * (energy - td.noiseFloor)
		if td.noiseFloor < td.cfg.NoiseFloorMin {
			td.noiseFloor = td.cfg.NoiseFloorMin
		}
		td.thresholdHigh = td.noiseFloor * td.cfg.BCDTimeThresholdMult
		td.thresholdLow = td.thresholdHigh * td.cfg.BCDTimeHysteresisRatio

		if td.frameCount >= uint64(td.cfg.BCDTimeWarmupFrames) {
			td.warmupComplete = true
			log.Printf("[WWV:bcd_time] warmup complete noise_floor=%.6f threshold=%.6f", td.noiseFloor, td.thresholdHigh)
		}
		return
	}

	if td.state == bcdTimeIdle && energy < td.thresholdHigh {
		td.noiseFloor = asymmetricAdapt(td.noiseFloor, energy, td.cfg.BCDTimeNoiseAdaptDown, td.cfg.BCDTimeNoiseAdaptUp, td.cfg.NoiseFloorMin, td.cfg.NoiseFloorMax)
		td.thresholdHigh = td.noiseFloor * td.cfg.BCDTimeThresholdMult
		td.thresholdLow = td.thresholdHigh * td.cfg.BCDTimeHysteresisRatio
	}

	switch td.state {
	case bcdTimeIdle:
		if energy > td.thresholdHigh {
			td.state = bcdTimeInPulse
			td.pulseStartFrame = td.frameCount
			td.pulsePeakEnergy = energy
			td.pulseDurationFrames = 1
			td.consecutiveLowFrames = 0
		}

	case bcdTimeInPulse:
		td.pulseDurationFrames++
		if energy > td.pulsePeakEnergy {
			td.pulsePeakEnergy = energy
		}

		if energy < td.thresholdLow {
			td.consecutiveLowFrames++
		} else {
			td.consecutiveLowFrames = 0
		}

		if td.consecutiveLowFrames >= td.cfg.MinLowFrames {
			td.closePulse()
		}

	case bcdTimeCooldown:
		td.cooldownFrames--
		if td.cooldownFrames <= 0 {
			td.state = bcdTimeIdle
		}
	}
}

func (td *BcdTimeDetector) closePulse() {
	durationMs := float64(td.pulseDurationFrames) * td.frameMs
	timestampMs := float64(td.pulseStartFrame) * td.frameMs
	snrDB := 10.0 * math.Log10(td.pulsePeakEnergy/td.noiseFloor)

	if durationMs >= td.cfg.BCDTimePulseMinMs && durationMs <= td.cfg.BCDTimePulseMaxMs {
		td.pulsesDetected++
		if td.onEvent != nil {
			td.onEvent(BcdTimeEvent{
				TimestampMs: timestampMs,
				DurationMs:  durationMs,
				PeakEnergy:  td.pulsePeakEnergy,
				NoiseFloor:  td.noiseFloor,
				SnrDB:       snrDB,
			})
		}
	} else {
		td.pulsesRejected++
	}

	td.state = bcdTimeCooldown
	td.cooldownFrames = msToFrames(td.cfg.BCDTimeCooldownMs, td.frameMs)
}

type BcdTimeDetectorStats struct {
	PulsesDetected int
	PulsesRejected int
	NoiseFloor     float64
}

func (td *BcdTimeDetector) Stats() BcdTimeDetectorStats {
	return BcdTimeDetectorStats{td.pulsesDetected, td.pulsesRejected, td.noiseFloor}
}
