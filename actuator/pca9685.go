package actuator

import (
	"errors"
	"fmt"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/pca9685"
)

// DefaultAddress is the I2C address of a PCA9685 with no address jumpers set
const DefaultAddress = 0x40

// driverOscillatorHz is the oscillator frequency the pca9685 driver assumes when computing the prescaler
const driverOscillatorHz = 25_000_000

// the driver scales the requested frequency by 96/100 to correct for overshoot
const (
	driverCorrectionNum = 96
	driverCorrectionDen = 100
)

var ErrPWMNotFound = errors.New("PCA9685 not found on I2C bus")

// PCA9685 adapts the 16 channel I2C PWM controller to the PWM interface
type PCA9685 struct {
	dev pca9685.Dev
}

// NewPCA9685 configures the controller for the requested output frequency. oscHz is the measured
// oscillator frequency of the board, used to correct the prescaler.
func NewPCA9685(bus drivers.I2C, addr uint8, freqHz, oscHz uint32) (*PCA9685, error) {
	if freqHz == 0 {
		return nil, errors.New("frequency must be set")
	}

	dev := pca9685.New(bus, addr)
	err := dev.IsConnected()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPWMNotFound, err)
	}

	err = dev.Configure(pca9685.PWMConfig{Period: Period(freqHz, oscHz)})
	if err != nil {
		return nil, fmt.Errorf("error configuring PCA9685: %w", err)
	}

	return &PCA9685{dev: dev}, nil
}

// Period returns the period in nanoseconds to request from the driver so that a board with the given
// oscillator ends up with the prescaler oscHz/(4096*freqHz) - 1
func Period(freqHz, oscHz uint32) uint64 {
	if oscHz == 0 {
		oscHz = driverOscillatorHz
	}
	return 1_000_000_000 * uint64(oscHz) * driverCorrectionNum / (uint64(freqHz) * driverOscillatorHz * driverCorrectionDen)
}

// Set drives a channel high from count 0 to value
func (p *PCA9685) Set(channel uint8, value uint32) {
	if value >= Resolution {
		value = Resolution - 1
	}
	p.dev.SetPhased(channel, 0, value)
}
