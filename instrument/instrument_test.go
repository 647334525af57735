package instrument

import (
	"testing"
	"time"

	"github.com/calvinmclean/autolyre"
	"github.com/calvinmclean/autolyre/actuator"
	"github.com/calvinmclean/autolyre/sim"
)

func newTestInstrument(t *testing.T) (*Instrument, *sim.PWM, *sim.PowerLine, *sim.Clock) {
	t.Helper()

	pwm := sim.NewPWM()
	power := &sim.PowerLine{}
	clock := sim.NewClock(time.Date(2025, 11, 20, 12, 0, 0, 0, time.UTC))

	inst, err := NewFromConfig(autolyre.DefaultConfig(), pwm, power, WithClock(clock.Now))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return inst, pwm, power, clock
}

func duty(angle int) uint32 {
	return actuator.New(nil, actuator.ConfigFrom(autolyre.DefaultConfig())).Duty(angle)
}

func TestNoteOn(t *testing.T) {
	rest := autolyre.DefaultConfig().RestAngles

	tests := []struct {
		name       string
		note       uint8
		played     bool
		channel    uint8
		firstAngle int
	}{
		{"LowestNote", 55, true, 0, rest[0] - 15},
		{"MiddleC", 60, true, 3, rest[3] + 15},
		{"HighestNote", 81, true, 15, rest[15] + 15},
		{"Sharp", 56, false, 0, 0},
		{"BelowRange", 40, false, 0, 0},
		{"AboveRange", 100, false, 0, 0},
		{"MaxByte", 255, false, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inst, pwm, _, _ := newTestInstrument(t)

			played := inst.NoteOn(tt.note, 100)
			if played != tt.played {
				t.Fatalf("expected played=%v, got=%v", tt.played, played)
			}
			if !tt.played {
				if pwm.Writes() != 0 {
					t.Errorf("expected no actuator commands, got %d", pwm.Writes())
				}
				return
			}

			value, ok := pwm.Value(tt.channel)
			if !ok || value != duty(tt.firstAngle) {
				t.Errorf("expected duty=%d on channel %d, got=%d", duty(tt.firstAngle), tt.channel, value)
			}
		})
	}
}

func TestMiddleCAlternates(t *testing.T) {
	inst, pwm, _, _ := newTestInstrument(t)
	rest := autolyre.DefaultConfig().RestAngles[3]

	for _, expected := range []int{rest + 15, rest - 15} {
		inst.NoteOn(60, 100)
		value, _ := pwm.Value(3)
		if value != duty(expected) {
			t.Errorf("expected duty=%d, got=%d", duty(expected), value)
		}
	}
}

func TestNoteOffMutes(t *testing.T) {
	inst, pwm, _, _ := newTestInstrument(t)
	rest := autolyre.DefaultConfig().RestAngles[5]

	inst.NoteOn(64, 100)
	if !inst.NoteOff(64) {
		t.Fatalf("expected note off to mute")
	}
	value, _ := pwm.Value(5)
	if value != duty(rest) {
		t.Errorf("expected duty=%d, got=%d", duty(rest), value)
	}

	if inst.NoteOff(63) {
		t.Errorf("expected unmapped note off to be ignored")
	}
}

func TestAllNotesOff(t *testing.T) {
	inst, pwm, _, _ := newTestInstrument(t)
	rest := autolyre.DefaultConfig().RestAngles

	inst.AllNotesOff()

	for i, angle := range rest {
		value, ok := pwm.Value(uint8(i))
		if !ok || value != duty(angle) {
			t.Errorf("channel %d: expected duty=%d, got=%d", i, duty(angle), value)
		}
	}
}

func TestStartAndUpdate(t *testing.T) {
	inst, _, power, clock := newTestInstrument(t)

	inst.Start(clock.Now())
	for range 2000 {
		if inst.IsReady() {
			break
		}
		inst.Update(clock.Advance(10 * time.Millisecond))
	}

	if !inst.IsReady() {
		t.Fatalf("expected initialization to complete")
	}
	if power.Enabled() {
		t.Errorf("expected power to be disabled")
	}
}

func TestInRange(t *testing.T) {
	inst, _, _, _ := newTestInstrument(t)

	tests := []struct {
		note     uint8
		inRange  bool
		playable bool
	}{
		{54, false, false},
		{55, true, true},
		{56, true, false},
		{81, true, true},
		{82, false, false},
	}

	for _, tt := range tests {
		if inst.InRange(tt.note) != tt.inRange {
			t.Errorf("note %d: expected inRange=%v", tt.note, tt.inRange)
		}
		if inst.Playable(tt.note) != tt.playable {
			t.Errorf("note %d: expected playable=%v", tt.note, tt.playable)
		}
	}
}

func TestNewFromConfigInvalid(t *testing.T) {
	cfg := autolyre.DefaultConfig()
	cfg.RestAngles = cfg.RestAngles[:3]

	_, err := NewFromConfig(cfg, sim.NewPWM(), &sim.PowerLine{})
	if err == nil {
		t.Errorf("expected error for invalid config")
	}
}
