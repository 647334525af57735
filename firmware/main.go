//go:build tinygo

package main

import (
	"machine"
	"machine/usb/adc/midi"
	"time"

	"github.com/calvinmclean/autolyre"
	"github.com/calvinmclean/autolyre/actuator"
	"github.com/calvinmclean/autolyre/firmware/commands"
	"github.com/calvinmclean/autolyre/firmware/device"
	"github.com/calvinmclean/autolyre/transport"
)

const (
	cable    = 0
	loopTick = time.Millisecond
)

func main() {
	cfg := autolyre.DefaultConfig()

	board := device.BoardConfig{
		I2C:          machine.I2C0,
		SDA:          machine.GP4,
		SCL:          machine.GP5,
		I2CFreqHz:    400 * machine.KHz,
		PWMAddress:   actuator.DefaultAddress,
		OutputEnable: machine.GP6,
	}

	port := midi.Port()

	d, err := device.New(board, cfg, transport.NewUSBSender(port, cable))
	if err != nil {
		// without actuators there is nothing to do
		for {
			println("fatal:", err.Error())
			time.Sleep(5 * time.Second)
		}
	}

	port.SetRxHandler(d.ReceiveUSB)

	console := commands.NewInterpreter(d, machine.Serial)

	d.Start()
	for {
		d.Update(time.Now())

		for machine.Serial.Buffered() > 0 {
			b, err := machine.Serial.ReadByte()
			if err != nil {
				break
			}
			_ = console.Feed(b)
		}

		time.Sleep(loopTick)
	}
}
