package sim

import (
	"errors"
	"testing"
	"time"
)

func TestI2CBusRegisters(t *testing.T) {
	bus := NewI2CBus(0x40)

	// LED3 ON=0, OFF=0x0127
	err := bus.Tx(0x40, []byte{regLED0 + 12, 0x00, 0x00, 0x27, 0x01}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	on, off := bus.Channel(3)
	if on != 0 || off != 0x0127 {
		t.Errorf("expected on=0 off=0x127, got on=%#x off=%#x", on, off)
	}

	buf := make([]byte, 1)
	err = bus.ReadRegister(0x40, regMode1, buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buf[0] != 0x11 {
		t.Errorf("expected MODE1=0x11, got %#x", buf[0])
	}

	if bus.Transactions() != 2 {
		t.Errorf("expected=2, got=%d", bus.Transactions())
	}
}

func TestI2CBusWrongAddress(t *testing.T) {
	bus := NewI2CBus(0x40)
	err := bus.Tx(0x41, []byte{regMode1}, make([]byte, 1))
	if !errors.Is(err, ErrNoDevice) {
		t.Errorf("expected ErrNoDevice, got %v", err)
	}
}

func TestActuatorRecords(t *testing.T) {
	a := NewActuator(2)
	_ = a.SetAngle(1, 90)
	_ = a.SetAngle(0, 80)

	moves := a.Moves()
	if len(moves) != 2 || moves[0] != (Move{1, 90}) || moves[1] != (Move{0, 80}) {
		t.Errorf("unexpected moves: %v", moves)
	}
	angles := a.Angles()
	if angles[0] != 80 || angles[1] != 90 {
		t.Errorf("unexpected angles: %v", angles)
	}

	a.Reset()
	if len(a.Moves()) != 0 {
		t.Errorf("expected no moves after reset")
	}
}

func TestClock(t *testing.T) {
	start := time.Date(2025, 11, 20, 0, 0, 0, 0, time.UTC)
	c := NewClock(start)
	c.Advance(time.Second)
	if !c.Now().Equal(start.Add(time.Second)) {
		t.Errorf("expected=%v, got=%v", start.Add(time.Second), c.Now())
	}
}
