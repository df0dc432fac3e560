package wwv

import (
	"fmt"
	"log"
)

// AudioSample mirrors the host's PCM sample envelope; the wwv package
// itself never depends on a host type, so a thin copy is declared here
// the same way the teacher's morse package declares its own.
type AudioSample struct {
	PCMData      []int16
	RTPTimestamp uint32
	GPSTimeNs    int64
}

// AudioExtension is the interface a host registers plugins against.
type AudioExtension interface {
	Start(audioChan <-chan AudioSample, resultChan chan<- []byte) error
	Stop() error
	GetName() string
}

// AudioExtensionParams carries stream parameters the host derives from
// the session, not user-configurable.
type AudioExtensionParams struct {
	SampleRate    int
	Channels      int
	BitsPerSample int
}

// AudioExtensionFactory builds a new extension instance.
type AudioExtensionFactory func(audioParams AudioExtensionParams, extensionParams map[string]interface{}) (AudioExtension, error)

// Extension adapts Core to the host's AudioExtension interface. It
// owns the one goroutine permitted by the core's single-threaded
// design: it feeds raw PCM into the core's detection stream (see
// Start) and calls into Core synchronously from that goroutine. The
// display stream is not fed by this wrapper.
type Extension struct {
	core      *Core
	cfg       Config
	done      chan struct{}
}

// NewExtension validates extensionParams against cfg's bounds and
// constructs the wrapped Core.
func NewExtension(sampleRate int, extensionParams map[string]interface{}) (*Extension, error) {
	cfg := Default()
	cfg.DetectionSampleRate = float64(sampleRate)

	if freq, ok := extensionParams["station_freq_hz"].(float64); ok {
		cfg.StationFreqHz = freq
	}
	if bw, ok := extensionParams["tick_bandwidth_hz"].(float64); ok {
		cfg.TickBandwidthHz = bw
	}

	if cfg.StationFreqHz != 1000.0 && cfg.StationFreqHz != 1200.0 {
		return nil, fmt.Errorf("wwv: invalid station_freq_hz %.1f (must be 1000 for WWV or 1200 for WWVH)", cfg.StationFreqHz)
	}
	if cfg.TickBandwidthHz < 1 || cfg.TickBandwidthHz > 200 {
		return nil, fmt.Errorf("wwv: invalid tick_bandwidth_hz %.1f (must be 1-200)", cfg.TickBandwidthHz)
	}

	core, err := NewCore(cfg)
	if err != nil {
		return nil, fmt.Errorf("wwv: %w", err)
	}

	log.Printf("[WWV Extension] instance=%s created: station=%.0fHz sample_rate=%d", core.InstanceID, cfg.StationFreqHz, sampleRate)

	return &Extension{core: core, cfg: cfg}, nil
}

// Core exposes the underlying decoder so a host can register
// telemetry/metrics sinks via Core's On* methods.
func (e *Extension) Core() *Core { return e.core }

// Start begins processing audio. PCM samples are treated as the I
// channel of a real-valued detection stream with Q held at zero; a
// host feeding true I/Q capture should drive Core directly instead of
// going through this PCM-oriented wrapper.
func (e *Extension) Start(audioChan <-chan AudioSample, resultChan chan<- []byte) error {
	e.done = make(chan struct{})
	go func() {
		defer close(e.done)
		var sampleIndex float64
		frameMs := 1000.0 / e.cfg.DetectionSampleRate
		for sample := range audioChan {
			for _, pcm := range sample.PCMData {
				i := float64(pcm) / 32768.0
				timestampMs := sampleIndex * frameMs
				e.core.ProcessDetectionSample(i, 0, timestampMs)
				sampleIndex++
			}
		}
	}()
	return nil
}

// Stop waits for the processing goroutine to drain.
func (e *Extension) Stop() error {
	if e.done != nil {
		<-e.done
	}
	return nil
}

func (e *Extension) GetName() string { return "wwv" }
