//go:build tinygo

package device

import (
	"errors"
	"log/slog"
	"machine"
	"strconv"
	"time"

	"github.com/calvinmclean/autolyre"
	"github.com/calvinmclean/autolyre/actuator"
	"github.com/calvinmclean/autolyre/dispatcher"
	"github.com/calvinmclean/autolyre/instrument"
	"github.com/calvinmclean/autolyre/midimind"
	"github.com/calvinmclean/autolyre/transport"
)

// Device is the lyre: a PWM controller driving one servo per string, fed by USB-MIDI
type Device struct {
	instrument *instrument.Instrument
	dispatcher *dispatcher.Dispatcher
	usb        *transport.USBMIDI
	rx         transport.PacketRing

	level  *slog.LevelVar
	logger *slog.Logger

	startTime time.Time
}

// New brings up the board. An error means the actuators cannot be driven and the device must not run
func New(board BoardConfig, cfg autolyre.Config, sender dispatcher.Sender) (*Device, error) {
	level := &slog.LevelVar{}
	level.Set(slog.LevelInfo)
	logger := slog.New(slog.NewTextHandler(machine.Serial, &slog.HandlerOptions{Level: level}))

	pwm, err := newPWM(board, cfg)
	if err != nil {
		return nil, err
	}

	power := NewOutputEnable(board.OutputEnable)

	inst, err := instrument.NewFromConfig(cfg, pwm, power, instrument.WithLogger(logger))
	if err != nil {
		return nil, errors.New("error creating instrument: " + err.Error())
	}

	opts := dispatcher.OptionsFromConfig(cfg)
	opts.Logger = logger
	disp := dispatcher.New(inst, midimind.NewResponder(midimind.FromConfig(cfg)), sender, opts)

	return &Device{
		instrument: inst,
		dispatcher: disp,
		usb:        transport.NewUSBMIDI(disp, midimind.DefaultBufferSize),
		level:      level,
		logger:     logger,
	}, nil
}

func newPWM(board BoardConfig, cfg autolyre.Config) (actuator.PWM, error) {
	if len(board.Servos) > 0 {
		servos, err := NewServoArray(board.Servos, cfg.PWMFrequencyHz)
		if err != nil {
			return nil, errors.New("error creating servos: " + err.Error())
		}
		return servos, nil
	}

	err := board.I2C.Configure(machine.I2CConfig{
		SDA:       board.SDA,
		SCL:       board.SCL,
		Frequency: board.I2CFreqHz,
	})
	if err != nil {
		return nil, errors.New("error configuring I2C: " + err.Error())
	}

	pca, err := actuator.NewPCA9685(board.I2C, board.PWMAddress, cfg.PWMFrequencyHz, cfg.OscillatorHz)
	if err != nil {
		return nil, errors.New("error creating PWM controller: " + err.Error())
	}
	return pca, nil
}

// ReceiveUSB queues raw USB-MIDI packets. It is called from the USB interrupt
func (d *Device) ReceiveUSB(b []byte) {
	d.rx.Receive(b)
}

// Start begins actuator initialization
func (d *Device) Start() {
	d.startTime = time.Now()
	d.instrument.Start(d.startTime)
	println(d.ts(), "Started...")
}

// Update processes pending MIDI and advances initialization. It never blocks
func (d *Device) Update(now time.Time) {
	d.rx.Drain(d.usb)
	d.instrument.Update(now)
}

// Debug prints out details of the Device's state
func (d *Device) Debug() {
	st := d.instrument.Controller().Status()
	out := d.ts() + " init=" + st.State.String()
	out += " enabled=" + strconv.FormatBool(st.Enabled)
	out += " directions=" + strconv.FormatUint(st.Directions[1], 2) + "/" + strconv.FormatUint(st.Directions[0], 2)
	out += " rxDropped=" + strconv.FormatUint(uint64(d.rx.Dropped()), 10)
	println(out)
}

// Verbose sets the Device to Verbose mode and increases logging
func (d *Device) Verbose() {
	d.level.Set(slog.LevelDebug)
	println(d.ts(), "Set Verbose Mode")
}

// Statistics prints the MIDI counters
func (d *Device) Statistics() {
	s := d.dispatcher.Stats()
	println("========== MIDI STATISTICS ==========")
	println("Valid:         ", s.Valid)
	println("Invalid:       ", s.Invalid)
	println("Out of range:  ", s.OutOfRange)
	println("Dropped:       ", s.Dropped)
	println("Errors sent:   ", s.ErrorsSent)
	println("Note On:       ", s.NoteOn)
	println("Note Off:      ", s.NoteOff)
	println("Control Change:", s.ControlChange)
	println("SysEx:         ", s.SysEx)
	println("Notes/second:  ", s.MessagesPerSecond)
	if !s.LastMessage.IsZero() {
		println("Last message:  ", time.Since(s.LastMessage).String(), "ago")
	}
}

func (d *Device) ResetStatistics() {
	d.dispatcher.ResetStats()
}

func (d *Device) Pluck(i int) error {
	return d.instrument.Controller().Pluck(i)
}

func (d *Device) Mute(i int) error {
	return d.instrument.Controller().Mute(i)
}

func (d *Device) MuteAll() {
	d.instrument.AllNotesOff()
}

func (d *Device) Reinitialize() {
	d.instrument.Controller().Reinitialize(time.Now())
}

func (d *Device) EnablePower() {
	d.instrument.Controller().Enable()
}

func (d *Device) DisablePower() {
	d.instrument.Controller().Disable()
}

// ts returns the duration timestamp for logging
func (d *Device) ts() string {
	if d.startTime.IsZero() {
		return "[-]"
	}
	return "[" + time.Since(d.startTime).String() + "]"
}
