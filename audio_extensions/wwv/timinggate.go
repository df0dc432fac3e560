package wwv

// TimingGate exploits the WWV/WWVH "protected zone" around each tick:
// once an epoch is known, ticks are only accepted in a small window
// near the expected mod-1000ms offset. A recovery mode bypasses the
// gate when no gated tick has landed for GateRecoveryMs, so a long
// fade doesn't permanently starve the tick detector.
type TimingGate struct {
	cfg Config

	enabled         bool
	epochMs         float64
	epochSource     EpochSource
	epochConfidence float64
	haveEpoch       bool

	lastTickFrameGated uint64
	recoveryMode       bool
}

// NewTimingGate constructs a gate using the given config. It starts
// disabled (no epoch known yet) and only begins gating once SetEpoch
// is called.
func NewTimingGate(cfg Config) *TimingGate {
	return &TimingGate{cfg: cfg}
}

// SetEpoch publishes a new epoch, taken mod 1000ms. Epoch precedence
// is resolved here: a lower-confidence publish than the one currently
// held is rejected outright, so a higher-confidence source always
// wins regardless of publish order; equal confidence ties are broken
// by most recent write (the new value replaces the old one).
func (g *TimingGate) SetEpoch(epochMs float64, source EpochSource, confidence float64) {
	if g.haveEpoch && confidence < g.epochConfidence {
		return
	}
	m := mod(epochMs, 1000.0)
	g.epochMs = m
	g.epochSource = source
	g.epochConfidence = confidence
	g.haveEpoch = true
	g.enabled = true
}

// EpochSource reports the source of the currently held epoch.
func (g *TimingGate) EpochSource() EpochSource { return g.epochSource }

// EpochConfidence reports the confidence of the currently held epoch.
func (g *TimingGate) EpochConfidence() float64 { return g.epochConfidence }

// Disable turns off gating entirely; IsOpen always reports true.
func (g *TimingGate) Disable() { g.enabled = false }

// IsOpen reports whether a tick landing at timestamp nowMs should be
// accepted. The gate is transparent when disabled, when no epoch has
// ever been published, or while in recovery mode.
func (g *TimingGate) IsOpen(nowMs float64) bool {
	if !g.enabled || !g.haveEpoch || g.recoveryMode {
		return true
	}
	offset := mod(nowMs-g.epochMs, 1000.0)
	return offset >= g.cfg.GateStartMs && offset <= g.cfg.GateEndMs
}

// MaybeEnterRecovery checks the elapsed time since the last gated tick
// and, if it exceeds GateRecoveryMs, enters recovery mode. Should be
// called from the IDLE state only.
func (g *TimingGate) MaybeEnterRecovery(frame uint64, frameMs float64) {
	if !g.enabled || g.recoveryMode {
		return
	}
	elapsed := float64(frame-g.lastTickFrameGated) * frameMs
	if elapsed >= g.cfg.GateRecoveryMs {
		g.recoveryMode = true
	}
}

// OnGatedTick records a successful, gate-accepted tick and clears
// recovery mode if it was set.
func (g *TimingGate) OnGatedTick(frame uint64) {
	g.lastTickFrameGated = frame
	g.recoveryMode = false
}

// InRecovery reports whether the gate is currently bypassing itself.
func (g *TimingGate) InRecovery() bool { return g.recoveryMode }

func mod(a, m float64) float64 {
	r := a - m*float64(int(a/m))
	if r < 0 {
		r += m
	}
	return r
}
