// Package controller plucks and mutes strings and runs the non-blocking startup sweep that brings every
// actuator to a known position. Nothing in this package blocks: timed steps are driven by Update.
package controller

import (
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/calvinmclean/autolyre/actuator"
)

// Actuator moves one servo to an angle
type Actuator interface {
	SetAngle(index int, angle int) error
	Channels() int
}

// PowerLine is the single output-enable line feeding every actuator
type PowerLine interface {
	SetEnabled(enabled bool)
}

// Option configures optional Controller dependencies
type Option func(*Controller)

// WithLogger sets the logger. The default is slog.Default()
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = l
	}
}

// WithClock sets the time source used to record activity
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

// Controller owns every actuator's state. It is not safe for concurrent use: it is driven from the single
// control loop.
type Controller struct {
	actuator Actuator
	power    PowerLine
	cfg      Config
	logger   *slog.Logger
	now      func() time.Time

	// directions alternates the sweep side of each actuator so consecutive plucks strike from opposite sides
	directions Directions
	enabled    bool
	// lastActivity is refreshed by every pluck or mute and drives the idle timeout
	lastActivity time.Time

	state      InitState
	initIndex  int
	phaseStart time.Time
}

// Status is a snapshot of the controller for display
type Status struct {
	State        InitState
	InitIndex    int
	Enabled      bool
	Directions   Directions
	LastActivity time.Time
}

// New creates a Controller in the Idle state. Call Start to begin initialization
func New(act Actuator, power PowerLine, cfg Config, opts ...Option) (*Controller, error) {
	if len(cfg.RestAngles) == 0 {
		return nil, errors.New("no actuators configured")
	}
	if len(cfg.RestAngles) > act.Channels() {
		return nil, errors.New("actuator driver has " + strconv.Itoa(act.Channels()) + " channels, need " + strconv.Itoa(len(cfg.RestAngles)))
	}
	if len(cfg.RestAngles) > len(Directions{})*64 {
		return nil, errors.New("too many actuators: " + strconv.Itoa(len(cfg.RestAngles)))
	}

	c := &Controller{
		actuator: act,
		power:    power,
		cfg:      cfg,
		logger:   slog.Default(),
		now:      time.Now,
		state:    InitIdle,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Count is the number of actuators
func (c *Controller) Count() int {
	return len(c.cfg.RestAngles)
}

// Start powers the actuators and begins the startup sweep. Calling it again restarts the sweep.
func (c *Controller) Start(now time.Time) {
	c.power.SetEnabled(true)
	c.enabled = true
	c.lastActivity = now

	c.state = InitOpening
	c.initIndex = 0
	c.phaseStart = now

	c.logger.Info("starting actuator initialization", "actuators", c.Count())
}

// Reinitialize runs the startup sweep again. Pluck directions are kept
func (c *Controller) Reinitialize(now time.Time) {
	c.logger.Info("reinitializing actuators")
	c.Start(now)
}

// Update advances initialization by at most one step and handles the idle timeout. It returns immediately
// and must be called on every iteration of the control loop.
func (c *Controller) Update(now time.Time) {
	switch c.state {
	case InitOpening:
		c.setAngle(c.initIndex, c.openAngle(c.initIndex))
		c.logger.Debug("initialization: opening", "actuator", c.initIndex)
		c.phaseStart = now
		c.state = InitWaitOpening

	case InitWaitOpening:
		if now.Sub(c.phaseStart) < c.cfg.OpenDelay {
			return
		}
		c.initIndex++
		if c.initIndex >= c.Count() {
			c.initIndex = 0
			c.state = InitClosing
		} else {
			c.state = InitOpening
		}

	case InitClosing:
		c.setAngle(c.initIndex, c.cfg.RestAngles[c.initIndex])
		c.logger.Debug("initialization: closing", "actuator", c.initIndex)
		c.phaseStart = now
		c.state = InitWaitClosing

	case InitWaitClosing:
		if now.Sub(c.phaseStart) < c.cfg.CloseDelay {
			return
		}
		c.initIndex++
		if c.initIndex >= c.Count() {
			c.initIndex = 0
			c.Disable()
			c.state = InitComplete
			c.logger.Info("actuator initialization complete, power disabled")
		} else {
			c.state = InitClosing
		}

	case InitIdle, InitComplete:
		if c.enabled && c.cfg.IdleTimeout > 0 && now.Sub(c.lastActivity) >= c.cfg.IdleTimeout {
			c.Disable()
			c.logger.Debug("idle timeout, power disabled")
		}
	}
}

// IsReady reports whether initialization has completed
func (c *Controller) IsReady() bool {
	return c.state == InitComplete
}

// State returns the current initialization phase
func (c *Controller) State() InitState {
	return c.state
}

// Pluck sweeps an actuator across its string. The sweep side alternates on every call and odd actuators
// are mounted mirrored, so their direction is inverted.
func (c *Controller) Pluck(i int) error {
	if err := c.checkIndex(i); err != nil {
		return err
	}

	c.Enable()

	direction := -1
	if c.directions.Get(i) {
		direction = 1
	}
	if i%2 != 0 {
		direction = -direction
	}

	angle := c.cfg.RestAngles[i] + direction*c.cfg.PluckAngle
	c.setAngle(i, angle)
	c.directions.Toggle(i)

	c.logger.Debug("pluck", "actuator", i, "angle", angle, "direction", c.directions.Get(i))
	return nil
}

// Mute returns an actuator to its rest angle against the string. The direction bit is unchanged.
func (c *Controller) Mute(i int) error {
	if err := c.checkIndex(i); err != nil {
		return err
	}

	c.Enable()
	c.setAngle(i, c.cfg.RestAngles[i])

	c.logger.Debug("mute", "actuator", i)
	return nil
}

// MuteAll returns every actuator to rest
func (c *Controller) MuteAll() {
	for i := range c.cfg.RestAngles {
		_ = c.Mute(i)
	}
}

// Enable powers the actuators if needed and refreshes the idle timer
func (c *Controller) Enable() {
	if !c.enabled {
		c.power.SetEnabled(true)
		c.enabled = true
		c.logger.Debug("actuator power enabled")
	}
	c.lastActivity = c.now()
}

// Disable cuts actuator power unconditionally
func (c *Controller) Disable() {
	c.power.SetEnabled(false)
	c.enabled = false
}

// Enabled reports whether the actuators are powered
func (c *Controller) Enabled() bool {
	return c.enabled
}

// Direction returns the direction bit of an actuator
func (c *Controller) Direction(i int) bool {
	if c.checkIndex(i) != nil {
		return false
	}
	return c.directions.Get(i)
}

// Status returns a snapshot of the controller
func (c *Controller) Status() Status {
	return Status{
		State:        c.state,
		InitIndex:    c.initIndex,
		Enabled:      c.enabled,
		Directions:   c.directions,
		LastActivity: c.lastActivity,
	}
}

// openAngle is the initialization extreme. It mirrors the pluck direction convention.
func (c *Controller) openAngle(i int) int {
	if i%2 == 0 {
		return c.cfg.RestAngles[i] + c.cfg.PluckAngle
	}
	return c.cfg.RestAngles[i] - c.cfg.PluckAngle
}

func (c *Controller) checkIndex(i int) error {
	if i < 0 || i >= c.Count() {
		c.logger.Error("invalid actuator index", "actuator", i)
		return actuator.ErrOutOfRange
	}
	return nil
}

func (c *Controller) setAngle(i, angle int) {
	err := c.actuator.SetAngle(i, angle)
	if err != nil {
		c.logger.Error("error setting actuator angle", "actuator", i, "angle", angle, "err", err)
	}
}
