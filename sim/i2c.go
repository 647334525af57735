package sim

import (
	"errors"
	"sync"
)

// PCA9685 registers
const (
	regMode1    = 0x00
	regLED0     = 0x06
	regPrescale = 0xFE
)

var ErrNoDevice = errors.New("no device at address")

// I2CBus emulates a PCA9685 register file behind an I2C bus. Writes auto-increment the register pointer
// the way the chip does with AI set, which lets the real pca9685 driver run on the host.
type I2CBus struct {
	mu        sync.Mutex
	addr      uint16
	registers [256]byte
	pointer   byte
	txCount   int
}

// NewI2CBus creates a bus with one PCA9685 at addr in its power-on state
func NewI2CBus(addr uint16) *I2CBus {
	b := &I2CBus{addr: addr}
	b.registers[regMode1] = 0x11
	b.registers[regPrescale] = 0x1E
	return b
}

// Tx performs a write then read transaction
func (b *I2CBus) Tx(addr uint16, w, r []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if addr != b.addr {
		return ErrNoDevice
	}
	b.txCount++

	if len(w) > 0 {
		b.pointer = w[0]
		for _, v := range w[1:] {
			b.registers[b.pointer] = v
			b.pointer++
		}
	}
	for i := range r {
		r[i] = b.registers[b.pointer]
		b.pointer++
	}
	return nil
}

// ReadRegister reads len(buf) bytes starting at register reg
func (b *I2CBus) ReadRegister(addr uint8, reg uint8, buf []byte) error {
	return b.Tx(uint16(addr), []byte{reg}, buf)
}

// WriteRegister writes buf starting at register reg
func (b *I2CBus) WriteRegister(addr uint8, reg uint8, buf []byte) error {
	return b.Tx(uint16(addr), append([]byte{reg}, buf...), nil)
}

// Channel returns the ON and OFF counts of a PWM channel
func (b *I2CBus) Channel(channel uint8) (on, off uint16) {
	b.mu.Lock()
	defer b.mu.Unlock()

	base := regLED0 + 4*int(channel)
	on = uint16(b.registers[base]) | uint16(b.registers[base+1])<<8
	off = uint16(b.registers[base+2]) | uint16(b.registers[base+3])<<8
	return on, off
}

// Transactions is the number of transactions addressed to the device
func (b *I2CBus) Transactions() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.txCount
}
