package wwv

import (
	"fmt"
	"math"
)

// MatchedFilter is the sample-rate complex correlator used by the tick
// detector to validate candidate ticks against a Hann-windowed
// cosine/sine template at the tick frequency. Every sample is written
// into the ring; the correlation itself is only recomputed every
// decimation-th sample.
type MatchedFilter struct {
	templateCos []float64
	templateSin []float64

	ring    []float64
	ringIdx int

	decimation   int
	sampleCount  int
	lastMagnitude float64
}

// NewMatchedFilter builds the cos/sin templates for targetHz at
// sampleRate over templateLen samples, recomputing the correlation
// every decimation samples.
func NewMatchedFilter(templateLen int, sampleRate, targetHz float64, decimation int) (*MatchedFilter, error) {
	if templateLen <= 0 {
		return nil, fmt.Errorf("wwv: invalid matched filter template length %d", templateLen)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("wwv: invalid matched filter sample rate %g", sampleRate)
	}
	if decimation <= 0 {
		decimation = 1
	}

	mf := &MatchedFilter{
		templateCos: make([]float64, templateLen),
		templateSin: make([]float64, templateLen),
		ring:        make([]float64, templateLen),
		decimation:  decimation,
	}

	n := templateLen
	for i := 0; i < n; i++ {
		hann := 0.5 * (1.0 - math.Cos(2.0*math.Pi*float64(i)/float64(n-1)))
		phase := 2.0 * math.Pi * targetHz * float64(i) / sampleRate
		mf.templateCos[i] = hann * math.Cos(phase)
		mf.templateSin[i] = hann * math.Sin(phase)
	}

	return mf, nil
}

// PushSample writes one real-valued sample (the I channel, by
// convention) into the ring. It returns true, and a refreshed
// magnitude, once every decimation-th call.
func (mf *MatchedFilter) PushSample(sample float64) (magnitude float64, ready bool) {
	mf.ring[mf.ringIdx] = sample
	mf.ringIdx = (mf.ringIdx + 1) % len(mf.ring)
	mf.sampleCount++

	if mf.sampleCount%mf.decimation != 0 {
		return mf.lastMagnitude, false
	}

	var re, im float64
	n := len(mf.ring)
	for k := 0; k < n; k++ {
		// oldest-first traversal starting at ringIdx (the next write position)
		v := mf.ring[(mf.ringIdx+k)%n]
		re += v * mf.templateCos[k]
		im += v * mf.templateSin[k]
	}
	mf.lastMagnitude = math.Sqrt(re*re + im*im)
	return mf.lastMagnitude, true
}

// Magnitude returns the most recently computed correlation magnitude.
func (mf *MatchedFilter) Magnitude() float64 { return mf.lastMagnitude }
