// Package sim provides host stand-ins for the instrument hardware. The simulator runs the full control
// stack against them and tests use them to observe every motion command.
package sim

import (
	"log/slog"
	"sync"
	"time"
)

// Move is one SetAngle command
type Move struct {
	Index int
	Angle int
}

// Actuator records every angle command. If Next is set, commands are forwarded to it.
type Actuator struct {
	Next interface {
		SetAngle(index int, angle int) error
	}
	Logger *slog.Logger

	channels int
	moves    []Move
	angles   []int
}

// NewActuator creates an Actuator with the given number of channels, all at angle 0
func NewActuator(channels int) *Actuator {
	return &Actuator{
		channels: channels,
		angles:   make([]int, channels),
	}
}

func (a *Actuator) Channels() int {
	return a.channels
}

func (a *Actuator) SetAngle(index int, angle int) error {
	if a.Next != nil {
		err := a.Next.SetAngle(index, angle)
		if err != nil {
			return err
		}
	}
	if index >= 0 && index < a.channels {
		a.angles[index] = angle
	}
	a.moves = append(a.moves, Move{index, angle})
	if a.Logger != nil {
		a.Logger.Debug("sim: actuator moved", "actuator", index, "angle", angle)
	}
	return nil
}

// Moves returns every command received so far
func (a *Actuator) Moves() []Move {
	out := make([]Move, len(a.moves))
	copy(out, a.moves)
	return out
}

// Angles returns the last commanded angle of each actuator
func (a *Actuator) Angles() []int {
	out := make([]int, len(a.angles))
	copy(out, a.angles)
	return out
}

// Reset forgets the recorded commands
func (a *Actuator) Reset() {
	a.moves = nil
}

// PowerLine records the state of the output-enable line
type PowerLine struct {
	Logger *slog.Logger

	enabled bool
	history []bool
}

func (p *PowerLine) SetEnabled(enabled bool) {
	p.enabled = enabled
	p.history = append(p.history, enabled)
	if p.Logger != nil {
		p.Logger.Debug("sim: power line", "enabled", enabled)
	}
}

func (p *PowerLine) Enabled() bool {
	return p.enabled
}

// History returns every value written to the line
func (p *PowerLine) History() []bool {
	out := make([]bool, len(p.history))
	copy(out, p.history)
	return out
}

// PWM records duty values per channel
type PWM struct {
	mu     sync.Mutex
	values map[uint8]uint32
	writes int
}

func NewPWM() *PWM {
	return &PWM{values: map[uint8]uint32{}}
}

func (p *PWM) Set(channel uint8, value uint32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.values[channel] = value
	p.writes++
}

// Value returns the last duty written to a channel
func (p *PWM) Value(channel uint8) (uint32, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.values[channel]
	return v, ok
}

// Writes is the number of Set calls
func (p *PWM) Writes() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.writes
}

// Clock is a manually advanced time source
type Clock struct {
	now time.Time
}

func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

func (c *Clock) Now() time.Time {
	return c.now
}

func (c *Clock) Advance(d time.Duration) time.Time {
	c.now = c.now.Add(d)
	return c.now
}
