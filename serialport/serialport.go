// Package serialport finds and opens the USB serial ports a lyre or a MIDI interface shows up on
package serialport

import (
	"errors"
	"fmt"
	"time"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// SerialPortNone is offered next to the detected ports to run without a serial connection
const SerialPortNone = "none"

const DefaultReadTimeout = 50 * time.Millisecond

var ErrNoUSBSerial = errors.New("no USB serial ports found")

// GetSerialPorts returns the names of USB serial ports
func GetSerialPorts() ([]string, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("error listing serial ports: %w", err)
	}

	var names []string
	for _, p := range ports {
		if p.IsUSB {
			names = append(names, p.Name)
		}
	}

	if len(names) == 0 {
		return nil, ErrNoUSBSerial
	}
	return names, nil
}

// Open opens a port in 8N1 mode. Reads return after DefaultReadTimeout so callers can poll
func Open(name string, baud int) (serial.Port, error) {
	if name == "" || name == SerialPortNone {
		return nil, errors.New("no serial port selected")
	}

	port, err := serial.Open(name, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("error opening serial port %q: %w", name, err)
	}

	err = port.SetReadTimeout(DefaultReadTimeout)
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("error setting read timeout: %w", err)
	}
	return port, nil
}

// Selected reports whether a configured port name refers to a real port
func Selected(name string) bool {
	return name != "" && name != SerialPortNone
}
