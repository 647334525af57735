package autolyre

import (
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if cfg.InitOpenDelay() != 500*time.Millisecond {
		t.Errorf("expected=%v, got=%v", 500*time.Millisecond, cfg.InitOpenDelay())
	}
	if cfg.IdleTimeout() != 2*time.Second {
		t.Errorf("expected=%v, got=%v", 2*time.Second, cfg.IdleTimeout())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"NoActuators", func(c *Config) { c.ActuatorCount = 0 }},
		{"TooManyActuators", func(c *Config) { c.ActuatorCount = MaxActuators + 1 }},
		{"FullMIDIRange", func(c *Config) {
			c.ActuatorCount = 128
			c.RestAngles = make([]int, 128)
			c.PlayableNotes = make([]int, 128)
			for i := range c.PlayableNotes {
				c.RestAngles[i] = 90
				c.PlayableNotes[i] = i
			}
		}},
		{"NonASCIIName", func(c *Config) { c.Name = "Lyre é" }},
		{"HighByteName", func(c *Config) { c.Name = "Lyre\xff" }},
		{"GMProgramTooHigh", func(c *Config) { c.GMProgram = 128 }},
		{"PolyphonyTooHigh", func(c *Config) { c.Polyphony = 200 }},
		{"RestAnglesMismatch", func(c *Config) { c.RestAngles = c.RestAngles[:3] }},
		{"NotesMismatch", func(c *Config) { c.PlayableNotes = c.PlayableNotes[:3] }},
		{"NotesNotAscending", func(c *Config) { c.PlayableNotes[1], c.PlayableNotes[2] = c.PlayableNotes[2], c.PlayableNotes[1] }},
		{"DuplicateNote", func(c *Config) { c.PlayableNotes[1] = c.PlayableNotes[0] }},
		{"NoteTooHigh", func(c *Config) { c.PlayableNotes[15] = 128 }},
		{"NameTooLong", func(c *Config) { c.Name = "Lyre 16 cordes + extra" }},
		{"ChannelZero", func(c *Config) { c.MIDIChannel = 0 }},
		{"ChannelTooHigh", func(c *Config) { c.MIDIChannel = 17 }},
		{"VelocityInverted", func(c *Config) { c.VelocityMin, c.VelocityMax = 100, 10 }},
		{"AngleRange", func(c *Config) { c.MinAngle = 180 }},
		{"PulseRange", func(c *Config) { c.MinPulseUs = 3000 }},
		{"NoFrequency", func(c *Config) { c.PWMFrequencyHz = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("expected error for %s", tt.name)
			}
		})
	}
}

func TestValidateLargestInstrument(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ActuatorCount = MaxActuators
	cfg.RestAngles = make([]int, MaxActuators)
	cfg.PlayableNotes = make([]int, MaxActuators)
	for i := range cfg.PlayableNotes {
		cfg.RestAngles[i] = 90
		cfg.PlayableNotes[i] = i
	}
	cfg.GMProgram = 127
	cfg.Polyphony = 127

	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestErrorCodeString(t *testing.T) {
	if ErrorRateLimit.String() != "RATE_LIMIT" {
		t.Errorf("expected=%q, got=%q", "RATE_LIMIT", ErrorRateLimit.String())
	}
	if ErrorCode(42).String() != "UNKNOWN" {
		t.Errorf("expected=%q, got=%q", "UNKNOWN", ErrorCode(42).String())
	}
}
