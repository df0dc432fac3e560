package wwv

// RingBuffer is a fixed-size float64 ring, used in three distinct
// roles across this package: the tick-history ring (rolling average),
// the tick correlator's recent-interval ring, and the energy-history
// ring (sliding-window accumulator). The matched filter keeps its own
// sample ring. Size is fixed at construction.
type RingBuffer struct {
	data  []float64
	idx   int
	count int
}

// NewRingBuffer allocates a ring of the given fixed size.
func NewRingBuffer(size int) *RingBuffer {
	return &RingBuffer{data: make([]float64, size)}
}

// Push writes v at the current index and advances, returning the
// value evicted if the buffer was already full (ok=false if nothing
// was evicted yet).
func (r *RingBuffer) Push(v float64) (evicted float64, ok bool) {
	if r.count >= len(r.data) {
		evicted = r.data[r.idx]
		ok = true
	}
	r.data[r.idx] = v
	r.idx = (r.idx + 1) % len(r.data)
	if r.count < len(r.data) {
		r.count++
	}
	return evicted, ok
}

// Len returns the number of valid entries currently stored.
func (r *RingBuffer) Len() int { return r.count }

// Cap returns the fixed capacity.
func (r *RingBuffer) Cap() int { return len(r.data) }

// Full reports whether the ring has wrapped at least once.
func (r *RingBuffer) Full() bool { return r.count >= len(r.data) }

// Values returns the stored values in oldest-to-newest order. The
// returned slice is a fresh copy.
func (r *RingBuffer) Values() []float64 {
	out := make([]float64, r.count)
	if r.count < len(r.data) {
		copy(out, r.data[:r.count])
		return out
	}
	n := len(r.data)
	for k := 0; k < n; k++ {
		out[k] = r.data[(r.idx+k)%n]
	}
	return out
}

// Sum returns the sum of all currently stored values.
func (r *RingBuffer) Sum() float64 {
	var total float64
	if r.count < len(r.data) {
		for i := 0; i < r.count; i++ {
			total += r.data[i]
		}
		return total
	}
	for _, v := range r.data {
		total += v
	}
	return total
}

// Mean returns the average of all currently stored values, or 0 if empty.
func (r *RingBuffer) Mean() float64 {
	if r.count == 0 {
		return 0
	}
	return r.Sum() / float64(r.count)
}

// AccumulatorRing is the sliding-window energy accumulator pattern
// used by the marker and BCD-frequency detectors: it keeps a running
// sum and subtracts the evicted sample on each push, avoiding an O(n)
// re-sum per frame.
type AccumulatorRing struct {
	ring *RingBuffer
	sum  float64
}

// NewAccumulatorRing allocates an accumulator with the given window size.
func NewAccumulatorRing(windowFrames int) *AccumulatorRing {
	return &AccumulatorRing{ring: NewRingBuffer(windowFrames)}
}

// Push adds energy to the window, evicting the oldest sample if full,
// and returns the new accumulated sum.
func (a *AccumulatorRing) Push(energy float64) float64 {
	evicted, ok := a.ring.Push(energy)
	if ok {
		a.sum -= evicted
	}
	a.sum += energy
	return a.sum
}

// Sum returns the current accumulated sum.
func (a *AccumulatorRing) Sum() float64 { return a.sum }
