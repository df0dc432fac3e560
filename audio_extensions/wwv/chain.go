package wwv

// Chain is a run of ticks whose intervals cluster around 1 second,
// used by the tick correlator to estimate timing quality (spec.md
// §3). Invariants: 1 <= MinIntervalMs <= AvgIntervalMs <=
// MaxIntervalMs; TickCount is monotonically non-decreasing for the
// lifetime of the chain.
type Chain struct {
	ChainID       int
	TickCount     int
	StartMs       float64
	EndMs         float64
	AvgIntervalMs float64
	MinIntervalMs float64
	MaxIntervalMs float64
	TotalDriftMs  float64

	sumIntervalMs float64
}

func newChain(id int, startMs, firstIntervalMs float64) *Chain {
	return &Chain{
		ChainID:       id,
		TickCount:     1,
		StartMs:       startMs,
		EndMs:         startMs,
		AvgIntervalMs: firstIntervalMs,
		MinIntervalMs: firstIntervalMs,
		MaxIntervalMs: firstIntervalMs,
		sumIntervalMs: firstIntervalMs,
	}
}

func (c *Chain) update(nowMs, intervalMs float64) {
	c.TickCount++
	c.EndMs = nowMs
	c.sumIntervalMs += intervalMs
	c.AvgIntervalMs = c.sumIntervalMs / float64(c.TickCount)
	if intervalMs < c.MinIntervalMs {
		c.MinIntervalMs = intervalMs
	}
	if intervalMs > c.MaxIntervalMs {
		c.MaxIntervalMs = intervalMs
	}
	c.TotalDriftMs = c.EndMs - c.StartMs - float64(c.TickCount-1)*1000.0
}
