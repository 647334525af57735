//go:build tinygo

package device

import (
	"errors"
	"strconv"

	"tinygo.org/x/drivers/servo"

	"github.com/calvinmclean/autolyre/actuator"
)

// ServoArray drives servos straight from the microcontroller's PWM peripherals. It accepts the same duty
// values as the PCA9685 so the actuator driver stays the single place angles are converted.
type ServoArray struct {
	servos      []servo.Servo
	frequencyHz uint32
}

func NewServoArray(cfgs []ServoConfig, frequencyHz uint32) (*ServoArray, error) {
	if frequencyHz == 0 {
		return nil, errors.New("frequency must be set")
	}

	a := &ServoArray{frequencyHz: frequencyHz}
	for i, cfg := range cfgs {
		s, err := servo.New(cfg.PWM, cfg.Pin)
		if err != nil {
			return nil, errors.New("error creating servo " + strconv.Itoa(i) + ": " + err.Error())
		}
		a.servos = append(a.servos, s)
	}
	return a, nil
}

// Set converts a duty value back to a pulse width
func (a *ServoArray) Set(channel uint8, value uint32) {
	if int(channel) >= len(a.servos) {
		return
	}
	us := uint64(value) * 1_000_000 / (actuator.Resolution * uint64(a.frequencyHz))
	a.servos[channel].SetMicroseconds(int16(us))
}
