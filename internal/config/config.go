// ABOUTME: Runtime configuration loaded from NOTECAST_* environment variables
// ABOUTME: Supplies defaults for the CLI flags and builds the pipeline settings
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/harperreed/notecast/internal/leddisplay"
	"github.com/harperreed/notecast/pkg/note"
	"github.com/harperreed/notecast/pkg/notecast"
	"github.com/harperreed/notecast/pkg/onset"
	"github.com/harperreed/notecast/pkg/pitch"
)

// Config holds all runtime configuration, loaded from environment variables.
type Config struct {
	// Analysis
	WindowSize     int
	HopSize        int
	SampleRate     int
	RMSThreshold   float64
	TrimThreshold  float64
	MinNote        int
	MaxNote        int
	Cooldown       time.Duration
	ReferenceHz    float64
	CaptureDevice  string // substring of the capture device name, empty for default
	CaptureChannel int    // capture channels, downmixed before analysis

	// Server
	Port int
	Name string

	// Outputs
	RecordPath string // MIDI file, empty to disable
	SerialPort string // LED display port, empty to disable
	SerialBaud int
	LogFile    string
}

// Load reads configuration from environment variables with defaults.
func Load() Config {
	return Config{
		WindowSize:     envInt("NOTECAST_WINDOW_SIZE", notecast.DefaultWindowSize),
		HopSize:        envInt("NOTECAST_HOP_SIZE", notecast.DefaultWindowSize),
		SampleRate:     envInt("NOTECAST_SAMPLE_RATE", notecast.DefaultSampleRate),
		RMSThreshold:   envFloat("NOTECAST_RMS_THRESHOLD", pitch.DefaultSilenceThreshold),
		TrimThreshold:  envFloat("NOTECAST_TRIM_THRESHOLD", pitch.DefaultTrimThreshold),
		MinNote:        envInt("NOTECAST_MIN_NOTE", onset.DefaultMinNote),
		MaxNote:        envInt("NOTECAST_MAX_NOTE", onset.DefaultMaxNote),
		Cooldown:       envDuration("NOTECAST_COOLDOWN", onset.DefaultCooldown),
		ReferenceHz:    envFloat("NOTECAST_REFERENCE_HZ", note.ReferenceHz),
		CaptureDevice:  envStr("NOTECAST_DEVICE", ""),
		CaptureChannel: envInt("NOTECAST_CHANNELS", 1),

		Port: envInt("NOTECAST_PORT", notecast.DefaultPort),
		Name: envStr("NOTECAST_NAME", ""),

		RecordPath: envStr("NOTECAST_RECORD", ""),
		SerialPort: envStr("NOTECAST_SERIAL_PORT", ""),
		SerialBaud: envInt("NOTECAST_SERIAL_BAUD", leddisplay.DefaultBaud),
		LogFile:    envStr("NOTECAST_LOG_FILE", "notecast.log"),
	}
}

// Validate checks the settings that the analysis stages depend on
func (c Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port must be 0..65535, got %d", c.Port)
	}
	if c.CaptureChannel < 1 || c.CaptureChannel > 2 {
		return fmt.Errorf("capture channels must be 1 or 2, got %d", c.CaptureChannel)
	}
	if c.SerialBaud <= 0 {
		return fmt.Errorf("serial baud must be positive, got %d", c.SerialBaud)
	}
	return c.Pipeline().Validate()
}

// Mapper returns the note mapper for the configured reference pitch
func (c Config) Mapper() note.Mapper {
	return note.Mapper{ReferenceHz: c.ReferenceHz, ReferenceNote: note.ReferenceNote}
}

// Pipeline returns the analysis settings
func (c Config) Pipeline() notecast.PipelineConfig {
	pc := notecast.DefaultPipelineConfig()
	pc.WindowSize = c.WindowSize
	pc.HopSize = c.HopSize
	pc.SampleRate = c.SampleRate
	pc.Pitch.SilenceThreshold = c.RMSThreshold
	pc.Pitch.TrimThreshold = c.TrimThreshold
	pc.Onset.MinNote = c.MinNote
	pc.Onset.MaxNote = c.MaxNote
	pc.Onset.Cooldown = c.Cooldown
	pc.Onset.Mapper = c.Mapper()
	return pc
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

// envDuration accepts Go durations ("250ms") or bare milliseconds ("250")
func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Millisecond
	}
	return fallback
}
