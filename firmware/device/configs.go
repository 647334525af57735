//go:build tinygo

package device

import (
	"machine"

	"tinygo.org/x/drivers/servo"
)

// BoardConfig has the pins and buses of the controller board
type BoardConfig struct {
	I2C        *machine.I2C
	SDA        machine.Pin
	SCL        machine.Pin
	I2CFreqHz  uint32
	PWMAddress uint8

	// OutputEnable gates every servo output. It is active low
	OutputEnable machine.Pin

	// Servos drives actuators directly from GPIO instead of a PCA9685 when set. Channel i drives actuator i
	Servos []ServoConfig
}

// ServoConfig has device-level values for setting up one directly driven servo
type ServoConfig struct {
	Pin machine.Pin
	PWM servo.PWM
}
