package wwv

type SyncState int

const (
	SyncSearching SyncState = iota
	SyncAcquiring
	SyncLocked
	SyncRecovering
)

func (s SyncState) String() string {
	switch s {
	case SyncAcquiring:
		return "ACQUIRING"
	case SyncLocked:
		return "LOCKED"
	case SyncRecovering:
		return "RECOVERING"
	default:
		return "SEARCHING"
	}
}

// SyncDetector tracks minute-marker cadence and publishes a marker
// anchor timestamp plus a confidence, consumed by the BCD symbol
// correlator (spec.md component J). It accepts marker arrivals from
// either the tick detector's TickMarkerEvent or the marker detector's
// MarkerEvent through the same entrypoint — the caller decides which
// source to wire in.
type SyncDetector struct {
	cfg Config

	state         SyncState
	lastMarkerMs  float64
	haveMarker    bool
	confidence    float64
	recoverSinceMs float64
}

func NewSyncDetector(cfg Config) *SyncDetector {
	return &SyncDetector{cfg: cfg, state: SyncSearching}
}

// OnMarker feeds a marker arrival timestamp (ms, monotonic).
func (sd *SyncDetector) OnMarker(timestampMs float64) {
	switch sd.state {
	case SyncSearching:
		sd.state = SyncAcquiring
		sd.lastMarkerMs = timestampMs
		sd.haveMarker = true
		sd.confidence = 0

	case SyncAcquiring:
		spacing := timestampMs - sd.lastMarkerMs
		if spacing >= 55000 && spacing <= 65000 {
			sd.state = SyncLocked
			sd.confidence = sd.cfg.SyncConfidenceLocked
			sd.lastMarkerMs = timestampMs
		} else {
			// Bad spacing: treat as a false marker and start over.
			sd.state = SyncSearching
			sd.haveMarker = false
			sd.confidence = 0
		}

	case SyncLocked:
		spacing := timestampMs - sd.lastMarkerMs
		if spacing >= 55000 && spacing <= 65000 {
			sd.lastMarkerMs = timestampMs
			sd.confidence += sd.cfg.SyncConfidenceRamp
			if sd.confidence > 1.0 {
				sd.confidence = 1.0
			}
		} else {
			sd.state = SyncAcquiring
			sd.lastMarkerMs = timestampMs
			sd.confidence = 0
		}

	case SyncRecovering:
		predicted := sd.lastMarkerMs + 60000.0
		if diff := timestampMs - predicted; diff >= -sd.cfg.SyncMarkerToleranceMs && diff <= sd.cfg.SyncMarkerToleranceMs {
			sd.state = SyncLocked
			sd.lastMarkerMs = timestampMs
			sd.confidence = sd.cfg.SyncConfidenceLocked
		} else {
			sd.state = SyncAcquiring
			sd.lastMarkerMs = timestampMs
			sd.confidence = 0
		}
	}
}

// Tick advances wall-clock-driven state: a LOCKED state with no marker
// for too long drops to RECOVERING and begins decaying confidence;
// RECOVERING that decays to zero falls back to SEARCHING. nowMs must
// be monotonically non-decreasing across calls.
func (sd *SyncDetector) Tick(nowMs float64) {
	switch sd.state {
	case SyncLocked:
		if sd.haveMarker && nowMs-sd.lastMarkerMs >= sd.cfg.SyncLostAfterMs {
			sd.state = SyncRecovering
			sd.recoverSinceMs = nowMs
		}

	case SyncRecovering:
		elapsed := nowMs - sd.recoverSinceMs
		sd.confidence = sd.cfg.SyncConfidenceLocked * clamp01(1.0-elapsed/sd.cfg.SyncRecoveryDecayMs)
		if sd.confidence <= 0 {
			sd.state = SyncSearching
			sd.haveMarker = false
			sd.confidence = 0
		}
	}
}

// Anchor returns the last marker timestamp and whether the BCD
// correlator may run against it: true while LOCKED or RECOVERING.
func (sd *SyncDetector) Anchor() (ms float64, ok bool) {
	if sd.state == SyncLocked || sd.state == SyncRecovering {
		return sd.lastMarkerMs, true
	}
	return 0, false
}

func (sd *SyncDetector) State() SyncState    { return sd.state }
func (sd *SyncDetector) Confidence() float64 { return sd.confidence }
