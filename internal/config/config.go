// Package config loads the WWV decoder's tunables from a YAML file,
// mirroring the root config.go pattern this module's teacher uses:
// nested yaml-tagged structs loaded once at startup and handed down as
// plain values to packages that never themselves import yaml.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cwsl/wwvcore/audio_extensions/wwv"
)

// FileConfig is the on-disk shape of the decoder config file.
type FileConfig struct {
	Station struct {
		FreqHz float64 `yaml:"freq_hz"`
	} `yaml:"station"`

	SampleRates struct {
		DetectionHz float64 `yaml:"detection_hz"`
		DisplayHz   float64 `yaml:"display_hz"`
	} `yaml:"sample_rates"`

	Tick struct {
		BandwidthHz     float64 `yaml:"bandwidth_hz"`
		ThresholdMult   float64 `yaml:"threshold_mult"`
		CooldownMs      float64 `yaml:"cooldown_ms"`
	} `yaml:"tick"`

	Marker struct {
		BandwidthHz   float64 `yaml:"bandwidth_hz"`
		WindowMs      float64 `yaml:"window_ms"`
		ThresholdMult float64 `yaml:"threshold_mult"`
		CooldownMs    float64 `yaml:"cooldown_ms"`
	} `yaml:"marker"`

	Telemetry struct {
		CSVDir    string `yaml:"csv_dir"`
		UDPTarget string `yaml:"udp_target"`
	} `yaml:"telemetry"`

	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Addr    string `yaml:"addr"`
	} `yaml:"metrics"`
}

// Load reads and parses path, then overlays it onto wwv.Default() so
// unset fields keep their documented defaults.
func Load(path string) (wwv.Config, FileConfig, error) {
	cfg := wwv.Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, FileConfig{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return cfg, FileConfig{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if fc.Station.FreqHz != 0 {
		cfg.StationFreqHz = fc.Station.FreqHz
	}
	if fc.SampleRates.DetectionHz != 0 {
		cfg.DetectionSampleRate = fc.SampleRates.DetectionHz
	}
	if fc.SampleRates.DisplayHz != 0 {
		cfg.DisplaySampleRate = fc.SampleRates.DisplayHz
	}
	if fc.Tick.BandwidthHz != 0 {
		cfg.TickBandwidthHz = fc.Tick.BandwidthHz
	}
	if fc.Tick.ThresholdMult != 0 {
		cfg.TickThresholdMult = fc.Tick.ThresholdMult
	}
	if fc.Tick.CooldownMs != 0 {
		cfg.TickCooldownMs = fc.Tick.CooldownMs
	}
	if fc.Marker.BandwidthHz != 0 {
		cfg.MarkerBandwidthHz = fc.Marker.BandwidthHz
	}
	if fc.Marker.WindowMs != 0 {
		cfg.MarkerWindowMs = fc.Marker.WindowMs
	}
	if fc.Marker.ThresholdMult != 0 {
		cfg.MarkerThresholdMult = fc.Marker.ThresholdMult
	}
	if fc.Marker.CooldownMs != 0 {
		cfg.MarkerCooldownMs = fc.Marker.CooldownMs
	}

	return cfg, fc, nil
}
