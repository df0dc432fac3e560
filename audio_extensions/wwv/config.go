package wwv

// Config holds every tunable named or implied by the detection and
// correlation pipeline. None of these are hardcoded constants in the
// detector types themselves; a Config value is supplied at
// construction. Detectors expose no setters for changing a tunable
// afterwards.
type Config struct {
	// Station selection. 1000 Hz selects WWV, 1200 Hz selects WWVH.
	StationFreqHz float64

	// Detection-path sample rate (Hz), used by components C, D, E, F.
	DetectionSampleRate float64
	// Display-path sample rate (Hz), used by component I.
	DisplaySampleRate float64

	// Component A / tick detector FFT.
	TickFFTSize int

	// Component B matched filter.
	CorrTemplateLen int
	CorrDecimation  int
	CorrNoiseAdapt  float64 // fast adapt rate
	CorrIdleAdapt   float64 // slow adapt rate (tenth of CorrNoiseAdapt by default)
	CorrValidMult   float64 // peak must be >= this * corr noise floor

	// Tick detector (component C).
	TickBandwidthHz       float64
	TickThresholdMult     float64
	TickHysteresisRatio   float64
	TickWarmupFrames      int
	TickWarmupAdaptRate   float64
	TickNoiseAdaptDown    float64
	TickNoiseAdaptUp      float64
	TickMinDurationMs     float64
	TickMaxDurationMs     float64 // tick detector's own bail-out (1000ms), independent of MarkerMaxDurationMs
	MarkerViaTickMinMs    float64 // 600
	MarkerViaTickMaxMs    float64 // 1500
	MarkerMinIntervalSec  float64 // 55s since last marker (or first-ever)
	TickCooldownMs        float64
	TickHistorySize       int
	TickAvgWindowSec      float64
	FilterDelayMs         float64
	GateStartMs           float64
	GateEndMs             float64
	GateRecoveryMs        float64

	// Marker detector (component D).
	MarkerBandwidthHz      float64
	MarkerWindowMs         float64
	MarkerThresholdMult    float64
	MarkerBaselineAdapt    float64
	MarkerMinStartupMs     float64
	MarkerCooldownMs       float64
	MarkerMinDurationMs    float64
	MarkerMaxDurationMs    float64 // marker detector's own pulse timeout (5000ms)

	// BCD subcarrier.
	BCDSubcarrierFreqHz float64

	// BCD time detector (component E).
	BCDTimeFFTSize        int
	BCDTimeBandwidthHz    float64
	BCDTimeThresholdMult  float64
	BCDTimeHysteresisRatio float64
	BCDTimeWarmupFrames   int
	BCDTimeWarmupAdapt    float64
	BCDTimeNoiseAdaptDown float64
	BCDTimeNoiseAdaptUp   float64
	BCDTimePulseMinMs     float64
	BCDTimePulseMaxMs     float64
	BCDTimeCooldownMs     float64

	// BCD frequency detector (component F).
	BCDFreqFFTSize        int
	BCDFreqBandwidthHz    float64
	BCDFreqWindowMs       float64
	BCDFreqThresholdMult  float64
	BCDFreqWarmupFrames   int
	BCDFreqWarmupAdapt    float64
	BCDFreqNoiseAdaptRate float64
	BCDFreqMinStartupMs   float64
	BCDFreqPulseMinMs     float64
	BCDFreqPulseMaxMs     float64
	BCDFreqMaxDurationMs  float64
	BCDFreqCooldownMs     float64

	// Shared BCD debounce and noise floor bounds.
	MinLowFrames  int
	NoiseFloorMin float64
	NoiseFloorMax float64

	// Tick correlator (component G).
	ChainNormalMinMs      float64
	ChainNormalMaxMs      float64
	ChainSkipMinMs        float64
	ChainSkipMaxMs        float64
	ChainMinLength        int
	ChainStdDevTolerance  float64
	ChainMaxMisses        int
	EpochConfidenceBase   float64

	// BCD symbol correlator (component H).
	SymbolZeroMaxMs      float64
	SymbolOneMaxMs       float64
	SymbolMarkerMaxMs    float64
	SymbolMinDurationMs  float64
	MinEventsForSymbol   int
	EnergyThresholdLow   float64
	TrackingMinStreak    int

	// Tone tracker (component I).
	ToneFFTSize     int
	ToneSearchBins  int
	ToneMinSNRDB    float64
	ToneNoiseLoBin  int
	ToneNoiseHiBin  int

	// Sync detector (component J).
	SyncLostAfterMs      float64
	SyncConfidenceLocked float64
	SyncConfidenceRamp   float64
	SyncRecoveryDecayMs  float64
	SyncMarkerToleranceMs float64
}

// Default returns the tunables at the values named in the original
// detectors and in the specification's constant table.
func Default() Config {
	return Config{
		StationFreqHz:       1000.0,
		DetectionSampleRate: 50000.0,
		DisplaySampleRate:   12000.0,

		TickFFTSize: 256,

		CorrTemplateLen: 256,
		CorrDecimation:  8,
		CorrNoiseAdapt:  0.01,
		CorrIdleAdapt:   0.001,
		CorrValidMult:   5.0,

		TickBandwidthHz:      20.0,
		TickThresholdMult:    2.0,
		TickHysteresisRatio:  0.7,
		TickWarmupFrames:     50,
		TickWarmupAdaptRate:  0.05,
		TickNoiseAdaptDown:   0.002,
		TickNoiseAdaptUp:     0.0002,
		TickMinDurationMs:    2.0,
		TickMaxDurationMs:    1000.0,
		MarkerViaTickMinMs:   600.0,
		MarkerViaTickMaxMs:   1500.0,
		MarkerMinIntervalSec: 55.0,
		TickCooldownMs:       500.0,
		TickHistorySize:      30,
		TickAvgWindowSec:     15.0,
		FilterDelayMs:        0.0,
		GateStartMs:          0.0,
		GateEndMs:            100.0,
		GateRecoveryMs:       5000.0,

		MarkerBandwidthHz:   20.0,
		MarkerWindowMs:      800.0,
		MarkerThresholdMult: 3.0,
		MarkerBaselineAdapt: 0.001,
		MarkerMinStartupMs:  10000.0,
		MarkerCooldownMs:    30000.0,
		MarkerMinDurationMs: 500.0,
		MarkerMaxDurationMs: 5000.0,

		BCDSubcarrierFreqHz: 100.0,

		BCDTimeFFTSize:         256,
		BCDTimeBandwidthHz:     10.0,
		BCDTimeThresholdMult:   2.0,
		BCDTimeHysteresisRatio: 0.7,
		BCDTimeWarmupFrames:    50,
		BCDTimeWarmupAdapt:     0.05,
		BCDTimeNoiseAdaptDown:  0.002,
		BCDTimeNoiseAdaptUp:    0.0002,
		BCDTimePulseMinMs:      100.0,
		BCDTimePulseMaxMs:      900.0,
		BCDTimeCooldownMs:      200.0,

		BCDFreqFFTSize:        2048,
		BCDFreqBandwidthHz:    5.0,
		BCDFreqWindowMs:       800.0,
		BCDFreqThresholdMult:  3.0,
		BCDFreqWarmupFrames:   50,
		BCDFreqWarmupAdapt:    0.02,
		BCDFreqNoiseAdaptRate: 0.001,
		BCDFreqMinStartupMs:   5000.0,
		BCDFreqPulseMinMs:     100.0,
		BCDFreqPulseMaxMs:     900.0,
		BCDFreqMaxDurationMs:  2000.0,
		BCDFreqCooldownMs:     500.0,

		MinLowFrames:  3,
		NoiseFloorMin: 1e-4,
		NoiseFloorMax: 5.0,

		ChainNormalMinMs:     950.0,
		ChainNormalMaxMs:     1050.0,
		ChainSkipMinMs:       1900.0,
		ChainSkipMaxMs:       2100.0,
		ChainMinLength:       5,
		ChainStdDevTolerance: 15.0,
		ChainMaxMisses:       3,
		EpochConfidenceBase:  0.5,

		SymbolZeroMaxMs:     350.0,
		SymbolOneMaxMs:      650.0,
		SymbolMarkerMaxMs:   900.0,
		SymbolMinDurationMs: 100.0,
		MinEventsForSymbol:  2,
		EnergyThresholdLow:  0.001,
		TrackingMinStreak:   3,

		ToneFFTSize:    4096,
		ToneSearchBins: 5,
		ToneMinSNRDB:   10.0,
		ToneNoiseLoBin: 50,
		ToneNoiseHiBin: 150,

		SyncLostAfterMs:       90000.0,
		SyncConfidenceLocked:  0.9,
		SyncConfidenceRamp:    0.02,
		SyncRecoveryDecayMs:   30000.0,
		SyncMarkerToleranceMs: 5000.0,
	}
}
