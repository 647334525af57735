//go:build tinygo

package device

import "machine"

// OutputEnable is the active-low output enable line of the PWM controller
type OutputEnable struct {
	pin machine.Pin
}

// NewOutputEnable configures the pin and leaves the outputs disabled
func NewOutputEnable(pin machine.Pin) *OutputEnable {
	pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	pin.High()
	return &OutputEnable{pin: pin}
}

func (o *OutputEnable) SetEnabled(enabled bool) {
	o.pin.Set(!enabled)
}
