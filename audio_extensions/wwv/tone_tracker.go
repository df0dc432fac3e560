package wwv

import (
	"fmt"
	"math"
)

// ToneTracker estimates sub-bin frequency of the WWV/WWVH reference
// tones (nominal 500/600 Hz) and the baseband carrier (nominal 0 Hz)
// using a dual-sideband FFT with parabolic interpolation (spec.md
// component I). It runs on the display-rate stream and publishes a
// frequency offset useful for disciplining and a shared noise-floor
// estimate the marker detector can consume.
type ToneTracker struct {
	cfg Config
	fft *FFTProcessor

	iBuf, qBuf []float64
	bufIdx     int

	noiseFloorOut *NoiseFloor

	onTone func(ToneEvent)
}

// NewToneTracker constructs the tracker. noiseFloorOut, if non-nil, is
// updated with this tracker's noise-floor estimate after every FFT
// frame, matching the injected-value-object pattern in SPEC_FULL.md
// §9 (no ambient global).
func NewToneTracker(cfg Config, noiseFloorOut *NoiseFloor) (*ToneTracker, error) {
	fft, err := NewFFTProcessor(cfg.ToneFFTSize, cfg.DisplaySampleRate, WindowBlackmanHarris)
	if err != nil {
		return nil, fmt.Errorf("wwv: tone tracker: %w", err)
	}
	return &ToneTracker{
		cfg:           cfg,
		fft:           fft,
		iBuf:          make([]float64, cfg.ToneFFTSize),
		qBuf:          make([]float64, cfg.ToneFFTSize),
		noiseFloorOut: noiseFloorOut,
	}, nil
}

func (tt *ToneTracker) SetCallback(onTone func(ToneEvent)) { tt.onTone = onTone }

// ProcessSample feeds one (i, q) display-rate sample. Once the buffer
// fills, it runs the FFT and measures the carrier and both reference
// tones, invoking the callback once per measured signal.
func (tt *ToneTracker) ProcessSample(i, q float64, timestampMs float64) {
	tt.iBuf[tt.bufIdx] = i
	tt.qBuf[tt.bufIdx] = q
	tt.bufIdx++
	if tt.bufIdx < len(tt.iBuf) {
		return
	}
	tt.bufIdx = 0

	if err := tt.fft.Process(tt.iBuf, tt.qBuf); err != nil {
		return
	}

	mags := make([]float64, tt.fft.Size())
	tt.fft.Magnitudes(mags)

	noiseFloor := tt.estimateNoiseFloor(mags, 0)
	if tt.noiseFloorOut != nil {
		tt.noiseFloorOut.Set(noiseFloor)
	}

	tt.measureCarrier(mags, noiseFloor, timestampMs)
	tt.measureTone(mags, noiseFloor, 500.0, timestampMs)
	tt.measureTone(mags, noiseFloor, 600.0, timestampMs)
}

// measureCarrier searches bins [0, SearchBins] and their mirror for
// the baseband carrier peak.
func (tt *ToneTracker) measureCarrier(mags []float64, noiseFloor, timestampMs float64) {
	n := tt.fft.Size()
	hzPerBin := tt.fft.HzPerBin()

	peakBin, peakMag := findPeakBin(mags, -tt.cfg.ToneSearchBins, tt.cfg.ToneSearchBins)
	snrDB := snrDB(peakMag, noiseFloor)

	frac := parabolicInterp(mags, peakBin)
	var hz float64
	if peakBin+int(math.Round(frac)) <= n/2 {
		hz = (float64(peakBin) + frac) * hzPerBin
	} else {
		hz = (float64(peakBin) + frac - float64(n)) * hzPerBin
	}

	valid := snrDB >= tt.cfg.ToneMinSNRDB && math.Abs(hz) <= float64(tt.cfg.ToneSearchBins)*hzPerBin
	if tt.onTone != nil {
		tt.onTone(ToneEvent{
			TimestampMs: timestampMs,
			MeasuredHz:  hz,
			OffsetHz:    hz,
			OffsetPPM:   0,
			SnrDB:       snrDB,
			Valid:       valid,
		})
	}
}

// measureTone searches for the upper-sideband peak near +nominalHz and
// the lower-sideband peak near -nominalHz (the mirrored bin range),
// averaging their parabolic-interpolated frequencies.
func (tt *ToneTracker) measureTone(mags []float64, noiseFloor, nominalHz, timestampMs float64) {
	n := tt.fft.Size()
	hzPerBin := tt.fft.HzPerBin()
	searchBins := tt.cfg.ToneSearchBins

	nominalBin := int(nominalHz/hzPerBin + 0.5)

	usbLo, usbHi := nominalBin-searchBins, nominalBin+searchBins
	usbBin, usbMag := findPeakBin(mags, usbLo, usbHi)
	usbFrac := parabolicInterp(mags, usbBin)
	usbHz := (float64(usbBin) + usbFrac) * hzPerBin

	lsbCenter := n - nominalBin
	lsbLo, lsbHi := lsbCenter-searchBins, lsbCenter+searchBins
	lsbBin, lsbMag := findPeakBin(mags, lsbLo, lsbHi)
	lsbFrac := parabolicInterp(mags, lsbBin)
	lsbHz := (float64(n-lsbBin) - lsbFrac) * hzPerBin

	measuredHz := (usbHz + lsbHz) / 2.0
	offsetHz := measuredHz - nominalHz
	offsetPPM := offsetHz / nominalHz * 1e6

	peakMag := usbMag
	if lsbMag > peakMag {
		peakMag = lsbMag
	}
	snrDB := snrDB(peakMag, noiseFloor)
	valid := snrDB >= tt.cfg.ToneMinSNRDB && math.Abs(offsetHz) <= float64(searchBins)*hzPerBin

	if tt.onTone != nil {
		tt.onTone(ToneEvent{
			TimestampMs: timestampMs,
			MeasuredHz:  measuredHz,
			OffsetHz:    offsetHz,
			OffsetPPM:   offsetPPM,
			SnrDB:       snrDB,
			Valid:       valid,
		})
	}
}

// estimateNoiseFloor averages magnitudes in bins [ToneNoiseLoBin,
// ToneNoiseHiBin] and their mirror, excluding a guard band around the
// signal center (the carrier, bin 0, by default).
func (tt *ToneTracker) estimateNoiseFloor(mags []float64, signalCenterBin int) float64 {
	n := tt.fft.Size()
	guard := tt.cfg.ToneSearchBins + 5

	var sum float64
	var count int
	for b := tt.cfg.ToneNoiseLoBin; b <= tt.cfg.ToneNoiseHiBin; b++ {
		if b >= 0 && b < n && abs(b-signalCenterBin) > guard {
			sum += mags[b]
			count++
		}
		mirror := n - b
		if mirror >= 0 && mirror < n && abs(mirror-signalCenterBin) > guard {
			sum += mags[mirror]
			count++
		}
	}
	if count == 0 {
		return 1e-6
	}
	floor := sum / float64(count)
	if floor < 1e-6 {
		floor = 1e-6
	}
	return floor
}

func findPeakBin(mags []float64, lo, hi int) (bin int, mag float64) {
	n := len(mags)
	bin = -1
	for b := lo; b <= hi; b++ {
		wrapped := ((b % n) + n) % n
		if bin == -1 || mags[wrapped] > mag {
			bin = wrapped
			mag = mags[wrapped]
		}
	}
	return bin, mag
}

// parabolicInterp returns the sub-bin offset of the true peak around
// bin, using the classic 3-point parabolic fit over the magnitude
// spectrum.
func parabolicInterp(mags []float64, bin int) float64 {
	n := len(mags)
	if n < 3 {
		return 0
	}
	prev := mags[((bin-1)%n+n)%n]
	cur := mags[bin]
	next := mags[((bin+1)%n+n)%n]

	denom := prev - 2*cur + next
	if denom == 0 {
		return 0
	}
	return 0.5 * (prev - next) / denom
}

func snrDB(signal, noiseFloor float64) float64 {
	if noiseFloor <= 0 {
		noiseFloor = 1e-9
	}
	return 10.0 * math.Log10(signal/noiseFloor)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
