// Package metrics registers the Prometheus collectors a host exposes on
// its own /metrics endpoint, following the same promauto-at-construction
// pattern this module's teacher uses for its own metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors for the WWV decoder.
type Metrics struct {
	ticksTotal      prometheus.Counter
	markersTotal    prometheus.Counter
	bcdSymbolsTotal *prometheus.CounterVec // by symbol: 0, 1, P

	noiseFloor     *prometheus.GaugeVec // by detector: tick, marker, bcd_time, bcd_freq
	syncConfidence prometheus.Gauge
	syncState      *prometheus.GaugeVec // by state: searching, acquiring, locked, recovering (1 = current)

	toneOffsetPPM prometheus.Gauge
	toneSNRdB     prometheus.Gauge

	epochsPublished *prometheus.CounterVec // by source: tick_chain, marker
}

// New creates and registers all WWV decoder metrics.
func New() *Metrics {
	return &Metrics{
		ticksTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "wwv_ticks_total",
			Help: "Total number of validated 1 Hz ticks detected",
		}),
		markersTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "wwv_markers_total",
			Help: "Total number of minute markers detected",
		}),
		bcdSymbolsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "wwv_bcd_symbols_total",
			Help: "Total number of classified BCD symbols by value",
		}, []string{"symbol"}),
		noiseFloor: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "wwv_noise_floor",
			Help: "Current adaptive noise floor estimate by detector",
		}, []string{"detector"}),
		syncConfidence: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "wwv_sync_confidence",
			Help: "Current sync detector confidence, 0 to 1",
		}),
		syncState: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "wwv_sync_state",
			Help: "1 for the sync detector's current state, 0 otherwise",
		}, []string{"state"}),
		toneOffsetPPM: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "wwv_tone_offset_ppm",
			Help: "Most recent carrier frequency offset estimate in parts per million",
		}),
		toneSNRdB: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "wwv_tone_snr_db",
			Help: "Most recent carrier tone signal-to-noise ratio in dB",
		}),
		epochsPublished: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "wwv_epochs_published_total",
			Help: "Total number of timing epochs published by source",
		}, []string{"source"}),
	}
}

func (m *Metrics) RecordTick() { m.ticksTotal.Inc() }

func (m *Metrics) RecordMarker() { m.markersTotal.Inc() }

func (m *Metrics) RecordBcdSymbol(symbol string) {
	if symbol == "None" {
		return
	}
	m.bcdSymbolsTotal.WithLabelValues(symbol).Inc()
}

func (m *Metrics) SetNoiseFloor(detector string, value float64) {
	m.noiseFloor.WithLabelValues(detector).Set(value)
}

func (m *Metrics) SetSyncConfidence(confidence float64) {
	m.syncConfidence.Set(confidence)
}

// SetSyncState marks current as 1 and every other known state as 0.
func (m *Metrics) SetSyncState(current string, allStates []string) {
	for _, s := range allStates {
		if s == current {
			m.syncState.WithLabelValues(s).Set(1)
		} else {
			m.syncState.WithLabelValues(s).Set(0)
		}
	}
}

func (m *Metrics) SetToneOffsetPPM(ppm float64) { m.toneOffsetPPM.Set(ppm) }

func (m *Metrics) SetToneSNRdB(db float64) { m.toneSNRdB.Set(db) }

func (m *Metrics) RecordEpoch(source string) {
	m.epochsPublished.WithLabelValues(source).Inc()
}
