package telemetry

import (
	"fmt"

	"github.com/cwsl/wwvcore/audio_extensions/wwv"
)

// Record formatting functions mirror spec.md §6's bit-exact CSV column
// layouts, one function per event type. Each is registered via a
// Core.On* callback by the caller; the core package itself never
// constructs these strings.

func TickLine(clock WallClock, expected int, ev wwv.TickEvent) string {
	return fmt.Sprintf("%s,%.1f,%d,%d,%.6f,%.0f,%.1f,%.1f,%.6f,%.6f,%.2f",
		clock.At(ev.TimestampMs), ev.TimestampMs, ev.Number, expected,
		ev.PeakEnergy, ev.DurationMs, ev.IntervalMs, ev.AvgIntervalMs,
		ev.NoiseFloor, ev.CorrPeak, ev.CorrRatio)
}

func MarkerLine(clock WallClock, wwvSec, expected int, ev wwv.MarkerEvent) string {
	return fmt.Sprintf("%s,%.1f,%d,%d,%d,%.6f,%.0f,%.1f,%.6f,%.6f",
		clock.At(ev.TimestampMs), ev.TimestampMs, ev.Number, wwvSec, expected,
		ev.AccumulatedEnergy, ev.DurationMs, ev.SinceLastMarkerSec, 0.0, 0.0)
}

func BcdTimeLine(clock WallClock, pulseNum int, ev wwv.BcdTimeEvent) string {
	return fmt.Sprintf("%s,%.1f,%d,%.6f,%.0f,%.6f,%.1f",
		clock.At(ev.TimestampMs), ev.TimestampMs, pulseNum,
		ev.PeakEnergy, ev.DurationMs, ev.NoiseFloor, ev.SnrDB)
}

func BcdFreqLine(clock WallClock, pulseNum int, ev wwv.BcdFreqEvent) string {
	return fmt.Sprintf("%s,%.1f,%d,%.6f,%.0f,%.6f,%.1f",
		clock.At(ev.TimestampMs), ev.TimestampMs, pulseNum,
		ev.AccumulatedEnergy, ev.DurationMs, ev.BaselineEnergy, ev.SnrDB)
}

func BcdSymbolLine(clock WallClock, symbolNum int, intervalSec float64, timeEvents, freqEvents int, timeEnergy, freqEnergy float64, state string, ev wwv.BcdSymbolEvent) string {
	return fmt.Sprintf("%s,%.1f,%d,%d,%s,%s,%.0f,%.2f,%.1f,%d,%d,%.6f,%.6f,%s",
		clock.At(ev.TimestampMs), ev.TimestampMs, symbolNum, ev.Second,
		ev.Symbol.String(), ev.Source.String(), ev.DurationMs, ev.Confidence,
		intervalSec, timeEvents, freqEvents, timeEnergy, freqEnergy, state)
}

func ToneLine(clock WallClock, ev wwv.ToneEvent) string {
	return fmt.Sprintf("%s,%.1f,%.3f,%.3f,%.2f,%.1f,%t",
		clock.At(ev.TimestampMs), ev.TimestampMs, ev.MeasuredHz, ev.OffsetHz,
		ev.OffsetPPM, ev.SnrDB, ev.Valid)
}

// Headers, one per spec.md §6 CSV, used by NewCSVSink.
const (
	TickHeader      = "time,timestamp_ms,tick_num,expected,energy_peak,duration_ms,interval_ms,avg_interval_ms,noise_floor,corr_peak,corr_ratio"
	MarkerHeader    = "time,timestamp_ms,marker_num,wwv_sec,expected,accum_energy,duration_ms,since_last_sec,baseline,threshold"
	BcdTimeHeader   = "time,timestamp_ms,pulse_num,peak_energy,duration_ms,noise_floor,snr_db"
	BcdFreqHeader   = "time,timestamp_ms,pulse_num,accum_energy,duration_ms,baseline,snr_db"
	BcdSymbolHeader = "time,timestamp_ms,symbol_num,second,symbol,source,duration_ms,confidence,interval_sec,time_events,freq_events,time_energy,freq_energy,state"
	ToneHeader      = "time,timestamp_ms,measured_hz,offset_hz,offset_ppm,snr_db,valid"
)
