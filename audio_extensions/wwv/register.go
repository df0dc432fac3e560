package wwv

import "fmt"

// Factory creates a new WWV extension instance, following the same
// shape as the other audio extensions in this tree.
func Factory(audioParams AudioExtensionParams, extensionParams map[string]interface{}) (AudioExtension, error) {
	if audioParams.Channels != 1 {
		return nil, fmt.Errorf("wwv requires mono audio (got %d channels)", audioParams.Channels)
	}
	if audioParams.BitsPerSample != 16 {
		return nil, fmt.Errorf("wwv requires 16-bit audio (got %d bits)", audioParams.BitsPerSample)
	}

	return NewExtension(audioParams.SampleRate, extensionParams)
}

// GetInfo returns extension metadata for a host's registration UI.
func GetInfo() map[string]interface{} {
	return map[string]interface{}{
		"name":        "wwv",
		"description": "WWV/WWVH time-signal decoder: ticks, minute markers, and BCD time-code symbols",
		"version":     "1.0.0",
		"parameters": map[string]interface{}{
			"station_freq_hz": map[string]interface{}{
				"type":        "number",
				"description": "Tick/marker target frequency: 1000 for WWV, 1200 for WWVH",
				"default":     1000.0,
				"min":         1000.0,
				"max":         1200.0,
			},
			"tick_bandwidth_hz": map[string]interface{}{
				"type":        "number",
				"description": "Bucket-energy bandwidth around the tick frequency",
				"default":     20.0,
				"min":         1.0,
				"max":         200.0,
			},
		},
		"output_format": map[string]interface{}{
			"type":        "events",
			"description": "Tick, marker, and BCD symbol events; see Core's On* callbacks",
		},
	}
}
