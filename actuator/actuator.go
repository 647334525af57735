// Package actuator converts logical servo angles into PWM duty register values. Every motion command
// in the instrument passes through Driver.SetAngle.
package actuator

import (
	"errors"
	"fmt"

	"github.com/calvinmclean/autolyre"
)

// Resolution is the number of duty steps per PWM period (12-bit controller)
const Resolution = 1 << 12

var ErrOutOfRange = errors.New("actuator index out of range")

// PWM is a multi-channel PWM controller. value is a duty register value in [0, Resolution)
type PWM interface {
	Set(channel uint8, value uint32)
}

// Config describes the servos and the PWM signal that drives them
type Config struct {
	Channels    int
	MinAngle    int
	MaxAngle    int
	MinPulseUs  uint32
	MaxPulseUs  uint32
	FrequencyHz uint32
}

// ConfigFrom extracts the driver settings from the instrument configuration
func ConfigFrom(cfg autolyre.Config) Config {
	return Config{
		Channels:    cfg.ActuatorCount,
		MinAngle:    cfg.MinAngle,
		MaxAngle:    cfg.MaxAngle,
		MinPulseUs:  cfg.MinPulseUs,
		MaxPulseUs:  cfg.MaxPulseUs,
		FrequencyHz: cfg.PWMFrequencyHz,
	}
}

// Driver owns no state beyond its configuration
type Driver struct {
	pwm PWM
	cfg Config
}

func New(pwm PWM, cfg Config) *Driver {
	return &Driver{pwm: pwm, cfg: cfg}
}

// Channels is the number of actuators this driver accepts
func (d *Driver) Channels() int {
	return d.cfg.Channels
}

// PulseWidth maps an angle linearly onto [MinPulseUs, MaxPulseUs] using integer arithmetic.
// Angles outside [MinAngle, MaxAngle] extrapolate.
func (d *Driver) PulseWidth(angle int) int64 {
	angleSpan := int64(d.cfg.MaxAngle - d.cfg.MinAngle)
	pulseSpan := int64(d.cfg.MaxPulseUs) - int64(d.cfg.MinPulseUs)
	return int64(angle-d.cfg.MinAngle)*pulseSpan/angleSpan + int64(d.cfg.MinPulseUs)
}

// Duty is the register value for an angle: pulseUs * frequency * 4096 / 1e6, truncated
func (d *Driver) Duty(angle int) uint32 {
	pulse := d.PulseWidth(angle)
	if pulse <= 0 {
		return 0
	}

	value := pulse * int64(d.cfg.FrequencyHz) * Resolution / 1_000_000
	if value >= Resolution {
		return Resolution - 1
	}
	return uint32(value)
}

// SetAngle commands one actuator. An invalid index does not reach the hardware.
func (d *Driver) SetAngle(index int, angle int) error {
	if index < 0 || index >= d.cfg.Channels {
		return fmt.Errorf("%w: %d", ErrOutOfRange, index)
	}

	d.pwm.Set(uint8(index), d.Duty(angle))
	return nil
}
