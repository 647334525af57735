package main

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/calvinmclean/autolyre"
	"github.com/calvinmclean/autolyre/actuator"
	"github.com/calvinmclean/autolyre/controller"
	"github.com/calvinmclean/autolyre/dispatcher"
	"github.com/calvinmclean/autolyre/firmware/commands"
	"github.com/calvinmclean/autolyre/instrument"
	"github.com/calvinmclean/autolyre/midimind"
	"github.com/calvinmclean/autolyre/notemap"
	"github.com/calvinmclean/autolyre/sim"
	"github.com/calvinmclean/autolyre/transport"
	"github.com/calvinmclean/autolyre/ui"
)

// simulator runs the firmware's control stack on the host. The PCA9685 is emulated on a simulated I2C bus
// so the real driver runs unchanged.
type simulator struct {
	cfg autolyre.Config
	now func() time.Time

	bus        *sim.I2CBus
	actuators  *sim.Actuator
	power      *sim.PowerLine
	controller *controller.Controller
	instrument *instrument.Instrument
	dispatcher *dispatcher.Dispatcher

	inputs  []*input
	console *commands.Interpreter
	out     io.Writer

	level  *slog.LevelVar
	logger *slog.Logger

	startTime time.Time
}

// input collects MIDI from one transport's goroutine for the control loop. Replies and feedback for its
// messages are sent back through the same transport.
type input struct {
	name   string
	queue  *transport.Queue
	sender dispatcher.Sender
}

func newSimulator(cfg autolyre.Config, out io.Writer, level *slog.LevelVar, logger *slog.Logger, now func() time.Time) (*simulator, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	bus := sim.NewI2CBus(actuator.DefaultAddress)
	pca, err := actuator.NewPCA9685(bus, actuator.DefaultAddress, cfg.PWMFrequencyHz, cfg.OscillatorHz)
	if err != nil {
		return nil, err
	}

	actuators := sim.NewActuator(cfg.ActuatorCount)
	actuators.Next = actuator.New(pca, actuator.ConfigFrom(cfg))
	actuators.Logger = logger
	power := &sim.PowerLine{Logger: logger}

	notes, err := notemap.New(cfg.PlayableNotes)
	if err != nil {
		return nil, fmt.Errorf("error creating note map: %w", err)
	}

	ctrl, err := controller.New(actuators, power, controller.ConfigFrom(cfg),
		controller.WithLogger(logger),
		controller.WithClock(now),
	)
	if err != nil {
		return nil, fmt.Errorf("error creating controller: %w", err)
	}

	inst := instrument.New(notes, ctrl, instrument.WithLogger(logger))

	opts := dispatcher.OptionsFromConfig(cfg)
	opts.Logger = logger
	opts.Now = now

	s := &simulator{
		cfg:        cfg,
		now:        now,
		bus:        bus,
		actuators:  actuators,
		power:      power,
		controller: ctrl,
		instrument: inst,
		dispatcher: dispatcher.New(inst, midimind.NewResponder(midimind.FromConfig(cfg)), nil, opts),
		out:        out,
		level:      level,
		logger:     logger,
	}
	s.console = commands.NewInterpreter(s, out)
	return s, nil
}

// addInput registers a transport. Messages written to the returned queue are answered through sender,
// which may be nil for input-only transports.
func (s *simulator) addInput(name string, sender dispatcher.Sender) *transport.Queue {
	in := &input{
		name:   name,
		queue:  transport.NewQueue(transport.DefaultQueueSize),
		sender: sender,
	}
	s.inputs = append(s.inputs, in)
	return in.queue
}

func (s *simulator) Start() {
	s.startTime = s.now()
	s.instrument.Start(s.startTime)
}

// step runs one pass of the control loop
func (s *simulator) step(console []byte) {
	for _, in := range s.inputs {
		s.dispatcher.SetSender(in.sender)
		in.queue.Drain(s.dispatcher)
	}
	for _, b := range console {
		_ = s.console.Feed(b)
	}
	s.instrument.Update(s.now())
}

func (s *simulator) snapshot() ui.Snapshot {
	return ui.Snapshot{
		Notes:      s.instrument.Notes().Notes(),
		Angles:     s.actuators.Angles(),
		RestAngles: s.cfg.RestAngles,
		Enabled:    s.power.Enabled(),
		State:      s.controller.State().String(),
		Stats:      s.dispatcher.Stats(),
	}
}

func (s *simulator) Debug() {
	st := s.controller.Status()
	dropped := 0
	for _, in := range s.inputs {
		dropped += in.queue.Dropped()
	}
	fmt.Fprintf(s.out, "[%s] init=%s enabled=%t directions=%b/%b queueDropped=%d i2cTx=%d\r\n",
		s.uptime(), st.State, st.Enabled, st.Directions[1], st.Directions[0], dropped, s.bus.Transactions())
}

func (s *simulator) Verbose() {
	s.level.Set(slog.LevelDebug)
	fmt.Fprintf(s.out, "[%s] Set Verbose Mode\r\n", s.uptime())
}

func (s *simulator) Statistics() {
	st := s.dispatcher.Stats()
	fmt.Fprintf(s.out, "valid=%d invalid=%d outOfRange=%d dropped=%d errorsSent=%d noteOn=%d noteOff=%d cc=%d sysex=%d notesPerSecond=%d\r\n",
		st.Valid, st.Invalid, st.OutOfRange, st.Dropped, st.ErrorsSent,
		st.NoteOn, st.NoteOff, st.ControlChange, st.SysEx, st.MessagesPerSecond)
}

func (s *simulator) ResetStatistics() {
	s.dispatcher.ResetStats()
}

func (s *simulator) Pluck(i int) error {
	return s.controller.Pluck(i)
}

func (s *simulator) Mute(i int) error {
	return s.controller.Mute(i)
}

func (s *simulator) MuteAll() {
	s.instrument.AllNotesOff()
}

func (s *simulator) Reinitialize() {
	s.controller.Reinitialize(s.now())
}

func (s *simulator) EnablePower() {
	s.controller.Enable()
}

func (s *simulator) DisablePower() {
	s.controller.Disable()
}

func (s *simulator) uptime() time.Duration {
	if s.startTime.IsZero() {
		return 0
	}
	return s.now().Sub(s.startTime).Truncate(time.Millisecond)
}
