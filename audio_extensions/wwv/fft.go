package wwv

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

// WindowFunc is one of the two window shapes the detectors use.
type WindowFunc int

const (
	WindowHann WindowFunc = iota
	WindowBlackmanHarris
)

// FFTProcessor buffers fftSize I/Q samples, applies a window, and runs
// a complex FFT. bucket energy sums magnitudes across a small span of
// bins mirrored around DC, matching the single unified FFT helper that
// every frame-driven detector in this package shares.
type FFTProcessor struct {
	size       int
	sampleRate float64
	hzPerBin   float64

	window []float64
	fft    *fourier.CmplxFFT

	in  []complex128
	out []complex128
}

// NewFFTProcessor constructs a processor for fftSize samples at
// sampleRate Hz using the given window. fftSize must be positive and
// sampleRate must be positive; any other value is a construction-time
// failure.
func NewFFTProcessor(fftSize int, sampleRate float64, w WindowFunc) (*FFTProcessor, error) {
	if fftSize <= 0 {
		return nil, fmt.Errorf("wwv: invalid fft size %d", fftSize)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("wwv: invalid sample rate %g", sampleRate)
	}

	p := &FFTProcessor{
		size:       fftSize,
		sampleRate: sampleRate,
		hzPerBin:   sampleRate / float64(fftSize),
		window:     make([]float64, fftSize),
		in:         make([]complex128, fftSize),
		out:        make([]complex128, fftSize),
	}

	switch w {
	case WindowBlackmanHarris:
		generateBlackmanHarrisWindow(p.window)
	default:
		generateHannWindow(p.window)
	}

	p.fft = fourier.NewCmplxFFT(fftSize)
	return p, nil
}

func generateHannWindow(window []float64) {
	n := len(window)
	for i := range window {
		window[i] = 0.5 * (1.0 - math.Cos(2.0*math.Pi*float64(i)/float64(n-1)))
	}
}

// Blackman-Harris 4-term window, used by the tone tracker for its
// tighter sidelobe rejection.
func generateBlackmanHarrisWindow(window []float64) {
	const (
		a0 = 0.35875
		a1 = 0.48829
		a2 = 0.14128
		a3 = 0.01168
	)
	n := len(window)
	for i := range window {
		x := 2.0 * math.Pi * float64(i) / float64(n-1)
		window[i] = a0 - a1*math.Cos(x) + a2*math.Cos(2*x) - a3*math.Cos(3*x)
	}
}

// Process applies the window to i/q and runs the FFT. Result stays
// valid until the next call to Process.
func (p *FFTProcessor) Process(i, q []float64) error {
	if len(i) != p.size || len(q) != p.size {
		return fmt.Errorf("wwv: fft input length mismatch: got i=%d q=%d want %d", len(i), len(q), p.size)
	}
	for n := 0; n < p.size; n++ {
		p.in[n] = complex(i[n]*p.window[n], q[n]*p.window[n])
	}
	p.fft.Coefficients(p.out, p.in)
	return nil
}

// BucketEnergy returns the summed magnitude, normalized by fft size,
// across positive and mirrored-negative bins spanning the target
// frequency ± bandwidth/2.
func (p *FFTProcessor) BucketEnergy(targetHz, bandwidthHz float64) float64 {
	centerBin := int(targetHz/p.hzPerBin + 0.5)
	binSpan := int(math.Ceil(bandwidthHz / 2.0 / p.hzPerBin))
	if binSpan < 1 {
		binSpan = 1
	}

	var posEnergy, negEnergy float64
	for b := -binSpan; b <= binSpan; b++ {
		posBin := centerBin + b
		negBin := p.size - centerBin + b

		if posBin >= 0 && posBin < p.size {
			posEnergy += cmplxAbs(p.out[posBin]) / float64(p.size)
		}
		if negBin >= 0 && negBin < p.size {
			negEnergy += cmplxAbs(p.out[negBin]) / float64(p.size)
		}
	}
	return posEnergy + negEnergy
}

// Magnitudes writes |FFT output| into dst, which must have length Size().
func (p *FFTProcessor) Magnitudes(dst []float64) {
	for i, c := range p.out {
		dst[i] = cmplxAbs(c)
	}
}

func (p *FFTProcessor) HzPerBin() float64 { return p.hzPerBin }
func (p *FFTProcessor) Size() int         { return p.size }

func cmplxAbs(c complex128) float64 {
	re, im := real(c), imag(c)
	return math.Sqrt(re*re + im*im)
}
