package wwv

import "math"

// CorrelationKind classifies how a new tick's interval relates to the
// active chain's prediction.
type CorrelationKind int

const (
	CorrelationNone   CorrelationKind = 0
	CorrelationNormal CorrelationKind = 1
	CorrelationSkip   CorrelationKind = 2
)

// TickCorrelator groups incoming ticks into chains, tracks a rolling
// interval standard deviation, and once a chain is long and clean
// enough, publishes a high-confidence timing epoch (spec.md component
// G). Predicted-next-tick tracking detects missed ticks without a
// chain restart, up to ChainMaxMisses consecutive misses.
type TickCorrelator struct {
	cfg Config

	chain       *Chain
	nextChainID int

	recentIntervals *RingBuffer // size 5

	lastTickMs      float64
	haveLastTick    bool
	predictedNextMs float64
	consecutiveMisses int

	onEpoch func(epochMs float64, source EpochSource, confidence float64)
}

func NewTickCorrelator(cfg Config) *TickCorrelator {
	return &TickCorrelator{
		cfg:             cfg,
		recentIntervals: NewRingBuffer(5),
	}
}

func (tc *TickCorrelator) SetEpochCallback(f func(epochMs float64, source EpochSource, confidence float64)) {
	tc.onEpoch = f
}

// Correlate classifies intervalMs against the chain's prediction and
// returns the resulting kind. It is exposed so callers/tests can
// inspect the classification decision directly.
func (tc *TickCorrelator) Correlate(intervalMs float64) CorrelationKind {
	switch {
	case intervalMs >= tc.cfg.ChainNormalMinMs && intervalMs <= tc.cfg.ChainNormalMaxMs:
		return CorrelationNormal
	case intervalMs >= tc.cfg.ChainSkipMinMs && intervalMs <= tc.cfg.ChainSkipMaxMs && tc.predictionConsistent(intervalMs):
		return CorrelationSkip
	default:
		return CorrelationNone
	}
}

func (tc *TickCorrelator) predictionConsistent(intervalMs float64) bool {
	if !tc.haveLastTick {
		return true
	}
	// With one tick skipped, the arrival lands one nominal second after
	// the predicted next tick.
	predicted := tc.lastTickMs + intervalMs
	drift := math.Abs(predicted - (tc.predictedNextMs + 1000.0))
	return drift <= tc.cfg.ChainStdDevTolerance*2
}

// OnTick feeds a new tick's timestamp (ms) into the correlator.
func (tc *TickCorrelator) OnTick(timestampMs float64) {
	if !tc.haveLastTick {
		tc.lastTickMs = timestampMs
		tc.haveLastTick = true
		tc.predictedNextMs = timestampMs + 1000.0
		tc.chain = newChain(tc.nextChainID, timestampMs, 0)
		tc.nextChainID++
		return
	}

	intervalMs := timestampMs - tc.lastTickMs
	kind := tc.Correlate(intervalMs)

	switch kind {
	case CorrelationNormal, CorrelationSkip:
		if tc.chain == nil {
			tc.chain = newChain(tc.nextChainID, tc.lastTickMs, intervalMs)
			tc.nextChainID++
		} else {
			tc.chain.update(timestampMs, intervalMs)
		}
		tc.consecutiveMisses = 0
	default:
		tc.chain = newChain(tc.nextChainID, timestampMs, intervalMs)
		tc.nextChainID++
		tc.consecutiveMisses = 0
	}

	tc.recentIntervals.Push(intervalMs)
	tc.lastTickMs = timestampMs
	tc.predictedNextMs = timestampMs + 1000.0

	tc.maybePublishEpoch()
}

// OnMissedTick is invoked by the caller when an expected tick interval
// elapses with no tick observed; once the consecutive misses exceed
// ChainMaxMisses the chain is discarded.
func (tc *TickCorrelator) OnMissedTick() {
	tc.consecutiveMisses++
	if tc.consecutiveMisses > tc.cfg.ChainMaxMisses {
		tc.chain = nil
		tc.consecutiveMisses = 0
	}
}

func (tc *TickCorrelator) maybePublishEpoch() {
	if tc.chain == nil || tc.chain.TickCount < tc.cfg.ChainMinLength {
		return
	}
	stddev := stdDev(tc.recentIntervals.Values())
	if stddev > tc.cfg.ChainStdDevTolerance {
		return
	}

	epochMs := mod(tc.lastTickMs, 1000.0)
	confidence := tc.cfg.EpochConfidenceBase + (1.0-tc.cfg.EpochConfidenceBase)*clamp01(1.0-stddev/tc.cfg.ChainStdDevTolerance)

	if tc.onEpoch != nil {
		tc.onEpoch(epochMs, EpochTickChain, confidence)
	}
}

// ActiveChain returns the correlator's current chain, or nil if none.
func (tc *TickCorrelator) ActiveChain() *Chain { return tc.chain }

func stdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var mean float64
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	var sumSq float64
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
