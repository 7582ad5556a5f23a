// ABOUTME: Tests for environment configuration loading
// ABOUTME: Covers defaults, overrides, fallbacks and validation
package config

import (
	"os"
	"testing"
	"time"
)

var envVars = []string{
	"NOTECAST_WINDOW_SIZE", "NOTECAST_HOP_SIZE", "NOTECAST_SAMPLE_RATE",
	"NOTECAST_RMS_THRESHOLD", "NOTECAST_TRIM_THRESHOLD", "NOTECAST_MIN_NOTE",
	"NOTECAST_MAX_NOTE", "NOTECAST_COOLDOWN", "NOTECAST_REFERENCE_HZ",
	"NOTECAST_DEVICE", "NOTECAST_CHANNELS", "NOTECAST_PORT", "NOTECAST_NAME",
	"NOTECAST_RECORD", "NOTECAST_SERIAL_PORT", "NOTECAST_SERIAL_BAUD",
	"NOTECAST_LOG_FILE",
}

func clearEnv() {
	for _, k := range envVars {
		os.Unsetenv(k)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv()
	cfg := Load()

	if cfg.WindowSize != 2048 {
		t.Errorf("WindowSize = %d, want 2048", cfg.WindowSize)
	}
	if cfg.HopSize != 2048 {
		t.Errorf("HopSize = %d, want 2048", cfg.HopSize)
	}
	if cfg.SampleRate != 44100 {
		t.Errorf("SampleRate = %d, want 44100", cfg.SampleRate)
	}
	if cfg.RMSThreshold != 0.01 {
		t.Errorf("RMSThreshold = %f, want 0.01", cfg.RMSThreshold)
	}
	if cfg.TrimThreshold != 0.2 {
		t.Errorf("TrimThreshold = %f, want 0.2", cfg.TrimThreshold)
	}
	if cfg.MinNote != 55 || cfg.MaxNote != 96 {
		t.Errorf("note range = %d..%d, want 55..96", cfg.MinNote, cfg.MaxNote)
	}
	if cfg.Cooldown != 200*time.Millisecond {
		t.Errorf("Cooldown = %v, want 200ms", cfg.Cooldown)
	}
	if cfg.ReferenceHz != 440 {
		t.Errorf("ReferenceHz = %f, want 440", cfg.ReferenceHz)
	}
	if cfg.Port != 8928 {
		t.Errorf("Port = %d, want 8928", cfg.Port)
	}
	if cfg.Name != "" {
		t.Errorf("Name = %q, want empty", cfg.Name)
	}
	if cfg.LogFile != "notecast.log" {
		t.Errorf("LogFile = %q, want notecast.log", cfg.LogFile)
	}
	if cfg.SerialBaud != 115200 {
		t.Errorf("SerialBaud = %d, want 115200", cfg.SerialBaud)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv()
	t.Setenv("NOTECAST_WINDOW_SIZE", "4096")
	t.Setenv("NOTECAST_HOP_SIZE", "1024")
	t.Setenv("NOTECAST_SAMPLE_RATE", "48000")
	t.Setenv("NOTECAST_RMS_THRESHOLD", "0.05")
	t.Setenv("NOTECAST_MIN_NOTE", "40")
	t.Setenv("NOTECAST_COOLDOWN", "350ms")
	t.Setenv("NOTECAST_REFERENCE_HZ", "432")
	t.Setenv("NOTECAST_PORT", "9000")
	t.Setenv("NOTECAST_NAME", "Studio")
	t.Setenv("NOTECAST_RECORD", "take.mid")

	cfg := Load()

	if cfg.WindowSize != 4096 || cfg.HopSize != 1024 || cfg.SampleRate != 48000 {
		t.Errorf("window/hop/rate = %d/%d/%d, want 4096/1024/48000", cfg.WindowSize, cfg.HopSize, cfg.SampleRate)
	}
	if cfg.RMSThreshold != 0.05 {
		t.Errorf("RMSThreshold = %f, want 0.05", cfg.RMSThreshold)
	}
	if cfg.MinNote != 40 {
		t.Errorf("MinNote = %d, want 40", cfg.MinNote)
	}
	if cfg.Cooldown != 350*time.Millisecond {
		t.Errorf("Cooldown = %v, want 350ms", cfg.Cooldown)
	}
	if cfg.Port != 9000 || cfg.Name != "Studio" || cfg.RecordPath != "take.mid" {
		t.Errorf("unexpected server/output settings: %+v", cfg)
	}

	pc := cfg.Pipeline()
	if pc.Pitch.SilenceThreshold != 0.05 {
		t.Errorf("pipeline silence threshold = %f, want 0.05", pc.Pitch.SilenceThreshold)
	}
	if pc.Onset.Mapper.ReferenceHz != 432 {
		t.Errorf("pipeline reference = %f, want 432", pc.Onset.Mapper.ReferenceHz)
	}
	if pc.Onset.Cooldown != 350*time.Millisecond {
		t.Errorf("pipeline cooldown = %v, want 350ms", pc.Onset.Cooldown)
	}
}

func TestCooldownMilliseconds(t *testing.T) {
	clearEnv()
	t.Setenv("NOTECAST_COOLDOWN", "120")
	if cfg := Load(); cfg.Cooldown != 120*time.Millisecond {
		t.Errorf("Cooldown = %v, want 120ms", cfg.Cooldown)
	}
}

func TestInvalidValuesFallBack(t *testing.T) {
	clearEnv()
	t.Setenv("NOTECAST_PORT", "not-a-number")
	t.Setenv("NOTECAST_REFERENCE_HZ", "A4")
	t.Setenv("NOTECAST_COOLDOWN", "soon")

	cfg := Load()
	if cfg.Port != 8928 {
		t.Errorf("Port = %d, want fallback 8928", cfg.Port)
	}
	if cfg.ReferenceHz != 440 {
		t.Errorf("ReferenceHz = %f, want fallback 440", cfg.ReferenceHz)
	}
	if cfg.Cooldown != 200*time.Millisecond {
		t.Errorf("Cooldown = %v, want fallback 200ms", cfg.Cooldown)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"inverted note range", func(c *Config) { c.MinNote, c.MaxNote = 90, 60 }},
		{"hop larger than window", func(c *Config) { c.HopSize = c.WindowSize + 1 }},
		{"negative cooldown", func(c *Config) { c.Cooldown = -time.Millisecond }},
		{"zero reference", func(c *Config) { c.ReferenceHz = 0 }},
		{"bad port", func(c *Config) { c.Port = 70000 }},
		{"bad channels", func(c *Config) { c.CaptureChannel = 3 }},
		{"tiny window", func(c *Config) { c.WindowSize, c.HopSize = 2, 2 }},
	}

	clearEnv()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Load()
			tt.modify(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("expected validation error")
			}
		})
	}
}
