package autolyre

import (
	"errors"
	"strconv"
	"time"
)

// MaxActuators is the largest instrument supported. The note count is reported in a 7-bit SysEx field.
const MaxActuators = 127

// Config is the single configuration structure for an instrument. The firmware fixes it at build time,
// the simulator reads it from a JSON file.
type Config struct {
	// Identity reported over the MidiMind SysEx protocol
	Name      string `json:"name"`
	GMProgram uint8  `json:"gmProgram"`
	Polyphony uint8  `json:"polyphony"`

	ActuatorCount int   `json:"actuatorCount"`
	RestAngles    []int `json:"restAngles"`
	// PlayableNotes lists one MIDI note per actuator, in ascending order
	PlayableNotes []int `json:"playableNotes"`
	PluckAngle    int   `json:"pluckAngle"`

	MinAngle       int    `json:"minAngle"`
	MaxAngle       int    `json:"maxAngle"`
	MinPulseUs     uint32 `json:"minPulseUs"`
	MaxPulseUs     uint32 `json:"maxPulseUs"`
	PWMFrequencyHz uint32 `json:"pwmFrequencyHz"`
	OscillatorHz   uint32 `json:"oscillatorHz"`

	InitOpenDelayMs  uint32 `json:"initOpenDelayMs"`
	InitCloseDelayMs uint32 `json:"initCloseDelayMs"`
	IdleTimeoutMs    uint32 `json:"idleTimeoutMs"`

	// MIDIChannel is 1-16
	MIDIChannel       uint8  `json:"midiChannel"`
	OmniMode          bool   `json:"omniMode"`
	VelocityMin       uint8  `json:"velocityMin"`
	VelocityMax       uint8  `json:"velocityMax"`
	MaxNotesPerSecond uint32 `json:"maxNotesPerSecond"`
	SendFeedback      bool   `json:"sendFeedback"`
	ReportErrors      bool   `json:"reportErrors"`
}

// DefaultConfig returns the configuration of the 16 string lyre
func DefaultConfig() Config {
	return Config{
		Name:          "Lyre 16 cordes",
		GMProgram:     46, // Harp
		Polyphony:     16,
		ActuatorCount: 16,
		RestAngles:    []int{85, 86, 96, 86, 88, 82, 95, 85, 94, 90, 108, 73, 110, 70, 105, 75},
		// G3 to A5, diatonic
		PlayableNotes:     []int{55, 57, 59, 60, 62, 64, 65, 67, 69, 71, 72, 74, 76, 77, 79, 81},
		PluckAngle:        15,
		MinAngle:          0,
		MaxAngle:          180,
		MinPulseUs:        500,
		MaxPulseUs:        2500,
		PWMFrequencyHz:    50,
		OscillatorHz:      27_000_000,
		InitOpenDelayMs:   500,
		InitCloseDelayMs:  100,
		IdleTimeoutMs:     2000,
		MIDIChannel:       1,
		OmniMode:          false,
		VelocityMin:       1,
		VelocityMax:       127,
		MaxNotesPerSecond: 50,
		SendFeedback:      true,
		ReportErrors:      true,
	}
}

// InitOpenDelay is how long each actuator is given to reach its open position during initialization
func (c Config) InitOpenDelay() time.Duration {
	return time.Duration(c.InitOpenDelayMs) * time.Millisecond
}

// InitCloseDelay is how long each actuator is given to return to rest during initialization
func (c Config) InitCloseDelay() time.Duration {
	return time.Duration(c.InitCloseDelayMs) * time.Millisecond
}

// IdleTimeout is the inactivity period after which actuator power is cut
func (c Config) IdleTimeout() time.Duration {
	return time.Duration(c.IdleTimeoutMs) * time.Millisecond
}

// Validate checks the invariants the rest of the system relies on
func (c Config) Validate() error {
	if c.ActuatorCount < 1 || c.ActuatorCount > MaxActuators {
		return errors.New("actuatorCount must be between 1 and " + strconv.Itoa(MaxActuators))
	}
	if len(c.RestAngles) != c.ActuatorCount {
		return errors.New("restAngles must have actuatorCount entries, got " + strconv.Itoa(len(c.RestAngles)))
	}
	if len(c.PlayableNotes) != c.ActuatorCount {
		return errors.New("playableNotes must have actuatorCount entries, got " + strconv.Itoa(len(c.PlayableNotes)))
	}
	for i, n := range c.PlayableNotes {
		if n < 0 || n > 127 {
			return errors.New("playableNotes: invalid note " + strconv.Itoa(n))
		}
		if i > 0 && n <= c.PlayableNotes[i-1] {
			return errors.New("playableNotes must be strictly ascending at index " + strconv.Itoa(i))
		}
	}
	if len(c.Name) > 16 {
		return errors.New("name must be at most 16 bytes")
	}
	for i := 0; i < len(c.Name); i++ {
		if c.Name[i] >= 0x80 {
			return errors.New("name must be ASCII, invalid byte at index " + strconv.Itoa(i))
		}
	}
	if c.GMProgram > 127 {
		return errors.New("gmProgram must be at most 127")
	}
	if c.Polyphony > 127 {
		return errors.New("polyphony must be at most 127")
	}
	if c.MIDIChannel < 1 || c.MIDIChannel > 16 {
		return errors.New("midiChannel must be between 1 and 16")
	}
	if c.VelocityMin > c.VelocityMax || c.VelocityMax > 127 {
		return errors.New("invalid velocity range")
	}
	if c.MinAngle >= c.MaxAngle {
		return errors.New("minAngle must be less than maxAngle")
	}
	if c.MinPulseUs >= c.MaxPulseUs {
		return errors.New("minPulseUs must be less than maxPulseUs")
	}
	if c.PWMFrequencyHz == 0 {
		return errors.New("pwmFrequencyHz must be set")
	}
	return nil
}
