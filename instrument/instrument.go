// Package instrument connects the note mapping to the pluck engine. It is the object every transport and
// the dispatcher play through.
package instrument

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/calvinmclean/autolyre"
	"github.com/calvinmclean/autolyre/actuator"
	"github.com/calvinmclean/autolyre/controller"
	"github.com/calvinmclean/autolyre/notemap"
)

type options struct {
	logger *slog.Logger
	now    func() time.Time
}

// Option configures an Instrument
type Option func(*options)

func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// Instrument plays MIDI notes on a set of actuators
type Instrument struct {
	notes      *notemap.Range
	controller *controller.Controller
	logger     *slog.Logger
}

// New creates an Instrument from an existing note range and controller
func New(notes *notemap.Range, ctrl *controller.Controller, opts ...Option) *Instrument {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	return &Instrument{
		notes:      notes,
		controller: ctrl,
		logger:     o.logger,
	}
}

// NewFromConfig builds the full actuator stack for a configuration on top of a PWM output and power line
func NewFromConfig(cfg autolyre.Config, pwm actuator.PWM, power controller.PowerLine, opts ...Option) (*Instrument, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	o := options{logger: slog.Default(), now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	notes, err := notemap.New(cfg.PlayableNotes)
	if err != nil {
		return nil, fmt.Errorf("error creating note map: %w", err)
	}

	driver := actuator.New(pwm, actuator.ConfigFrom(cfg))
	ctrl, err := controller.New(driver, power, controller.ConfigFrom(cfg),
		controller.WithLogger(o.logger),
		controller.WithClock(o.now),
	)
	if err != nil {
		return nil, fmt.Errorf("error creating controller: %w", err)
	}

	return New(notes, ctrl, WithLogger(o.logger)), nil
}

// NoteOn plucks the string for a note. It returns false when the note has no string
func (i *Instrument) NoteOn(note, velocity uint8) bool {
	idx := i.notes.Resolve(note)
	if idx == notemap.NotPlayable {
		i.logger.Debug("note not playable", "note", note)
		return false
	}

	err := i.controller.Pluck(idx)
	if err != nil {
		return false
	}

	i.logger.Debug("note on", "note", note, "velocity", velocity, "actuator", idx)
	return true
}

// NoteOff mutes the string for a note. It returns false when the note has no string
func (i *Instrument) NoteOff(note uint8) bool {
	idx := i.notes.Resolve(note)
	if idx == notemap.NotPlayable {
		return false
	}

	return i.controller.Mute(idx) == nil
}

// AllNotesOff mutes every string
func (i *Instrument) AllNotesOff() {
	i.controller.MuteAll()
	i.logger.Debug("all notes off")
}

// InRange reports whether a note is between the lowest and highest playable notes
func (i *Instrument) InRange(note uint8) bool {
	return i.notes.Contains(note)
}

// Playable reports whether a note has a string
func (i *Instrument) Playable(note uint8) bool {
	return i.notes.Resolve(note) != notemap.NotPlayable
}

// Start begins actuator initialization
func (i *Instrument) Start(now time.Time) {
	i.controller.Start(now)
}

// Update must be called on every iteration of the control loop
func (i *Instrument) Update(now time.Time) {
	i.controller.Update(now)
}

func (i *Instrument) IsReady() bool {
	return i.controller.IsReady()
}

func (i *Instrument) Notes() *notemap.Range {
	return i.notes
}

func (i *Instrument) Controller() *controller.Controller {
	return i.controller
}
