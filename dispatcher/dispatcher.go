// Package dispatcher validates inbound MIDI messages and routes them to the instrument. It filters by
// channel, velocity and note range, limits the note rate, answers MidiMind SysEx requests and echoes
// accepted notes back to the sender.
package dispatcher

import (
	"log/slog"
	"time"

	"github.com/calvinmclean/autolyre"
	"github.com/calvinmclean/autolyre/midimind"
)

// Instrument is what the dispatcher plays
type Instrument interface {
	NoteOn(note, velocity uint8) bool
	NoteOff(note uint8) bool
	AllNotesOff()
	InRange(note uint8) bool
}

// Sender is the outbound side of a transport. Channels are 0-15
type Sender interface {
	NoteOn(channel, note, velocity uint8) error
	NoteOff(channel, note, velocity uint8) error
	ControlChange(channel, controller, value uint8) error
	SysEx(msg []byte) error
}

// Options control message validation and feedback
type Options struct {
	// Channel is 1-16. It is ignored in omni mode
	Channel     uint8
	Omni        bool
	VelocityMin uint8
	VelocityMax uint8
	// MaxNotesPerSecond caps accepted Note On messages. 0 disables the limit
	MaxNotesPerSecond uint32
	// Feedback echoes played notes to the Sender
	Feedback bool
	// ReportErrors sends rejected messages to the Sender as CC 127 (code) and CC 126 (data)
	ReportErrors bool

	Logger *slog.Logger
	Now    func() time.Time
}

// OptionsFromConfig extracts the dispatcher settings from the instrument configuration
func OptionsFromConfig(cfg autolyre.Config) Options {
	return Options{
		Channel:           cfg.MIDIChannel,
		Omni:              cfg.OmniMode,
		VelocityMin:       cfg.VelocityMin,
		VelocityMax:       cfg.VelocityMax,
		MaxNotesPerSecond: cfg.MaxNotesPerSecond,
		Feedback:          cfg.SendFeedback,
		ReportErrors:      cfg.ReportErrors,
	}
}

// Statistics counts every message seen by the dispatcher
type Statistics struct {
	Valid         uint32
	Invalid       uint32
	OutOfRange    uint32
	Dropped       uint32
	NoteOn        uint32
	NoteOff       uint32
	ControlChange uint32
	SysEx         uint32
	ErrorsSent    uint32
	// MessagesPerSecond is the number of notes accepted during the last complete rate window
	MessagesPerSecond uint32
	LastMessage       time.Time
}

// Dispatcher implements the transport handler callbacks. It is not safe for concurrent use
type Dispatcher struct {
	instrument Instrument
	responder  *midimind.Responder
	sender     Sender
	opts       Options
	logger     *slog.Logger
	now        func() time.Time

	limiter *RateLimiter
	stats   Statistics
}

// New creates a Dispatcher. sender may be nil when the transport cannot send
func New(inst Instrument, responder *midimind.Responder, sender Sender, opts Options) *Dispatcher {
	d := &Dispatcher{
		instrument: inst,
		responder:  responder,
		sender:     sender,
		opts:       opts,
		logger:     opts.Logger,
		now:        opts.Now,
		limiter:    NewRateLimiter(opts.MaxNotesPerSecond),
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	if d.now == nil {
		d.now = time.Now
	}

	d.logger.Info(
		"dispatcher ready",
		"channel", opts.Channel,
		"omni", opts.Omni,
		"feedback", opts.Feedback,
		"maxNotesPerSecond", opts.MaxNotesPerSecond,
	)
	return d
}

// SetSender replaces the outbound path
func (d *Dispatcher) SetSender(s Sender) {
	d.sender = s
}

func (d *Dispatcher) OnNoteOn(channel, note, velocity uint8) {
	now := d.now()
	d.stats.LastMessage = now

	if !d.validChannel(channel) {
		d.logger.Debug("ignoring channel", "channel", channel+1)
		d.stats.Invalid++
		return
	}

	if velocity == 0 {
		d.OnNoteOff(channel, note, 0)
		return
	}

	if velocity < d.opts.VelocityMin || velocity > d.opts.VelocityMax {
		d.logger.Debug("invalid velocity", "velocity", velocity)
		d.reportError(autolyre.ErrorInvalidVelocity, velocity)
		d.stats.Invalid++
		return
	}

	if !d.instrument.InRange(note) {
		d.logger.Debug("note out of range", "note", note)
		d.stats.OutOfRange++
		d.reportError(autolyre.ErrorNoteNotPlayable, note)
		d.stats.Invalid++
		return
	}

	if !d.limiter.Allow(now) {
		d.logger.Warn("rate limit exceeded", "note", note, "count", d.limiter.Count())
		d.stats.Dropped++
		d.reportError(autolyre.ErrorRateLimit, clamp7(d.limiter.Count()))
		d.stats.Invalid++
		return
	}
	d.stats.MessagesPerSecond = d.limiter.Rate()

	d.stats.Valid++
	d.stats.NoteOn++

	if d.instrument.NoteOn(note, velocity) && d.opts.Feedback {
		d.send("note on", func(s Sender) error {
			return s.NoteOn(d.feedbackChannel(), note, velocity)
		})
	}
}

func (d *Dispatcher) OnNoteOff(channel, note, _ uint8) {
	d.stats.LastMessage = d.now()

	if !d.validChannel(channel) {
		d.stats.Invalid++
		return
	}

	if !d.instrument.InRange(note) {
		d.stats.OutOfRange++
		d.stats.Invalid++
		return
	}

	d.stats.Valid++
	d.stats.NoteOff++

	if d.instrument.NoteOff(note) && d.opts.Feedback {
		d.send("note off", func(s Sender) error {
			return s.NoteOff(d.feedbackChannel(), note, 0)
		})
	}
}

func (d *Dispatcher) OnControlChange(channel, controller, value uint8) {
	d.stats.LastMessage = d.now()

	if !d.validChannel(channel) {
		d.stats.Invalid++
		return
	}

	d.stats.Valid++
	d.stats.ControlChange++

	switch controller {
	case autolyre.CCAllSoundOff, autolyre.CCAllNotesOff:
		d.logger.Info("all notes off", "cc", controller)
		d.instrument.AllNotesOff()
	case autolyre.CCResetControllers:
		d.logger.Info("reset all controllers")
	default:
		d.logger.Debug("unhandled control change", "cc", controller, "value", value)
	}
}

// OnSysEx answers MidiMind requests. Anything else is ignored
func (d *Dispatcher) OnSysEx(msg []byte) {
	d.stats.LastMessage = d.now()
	d.stats.SysEx++

	if d.responder == nil {
		return
	}

	reply, err := d.responder.Reply(msg)
	if err != nil {
		d.logger.Debug("ignoring sysex", "err", err, "len", len(msg))
		return
	}
	if reply == nil {
		return
	}

	d.logger.Debug("sending sysex reply", "len", len(reply))
	d.send("sysex", func(s Sender) error {
		return s.SysEx(reply)
	})
}

// Stats returns a copy of the counters
func (d *Dispatcher) Stats() Statistics {
	return d.stats
}

// ResetStats clears the counters
func (d *Dispatcher) ResetStats() {
	d.stats = Statistics{}
	d.logger.Info("statistics reset")
}

func (d *Dispatcher) validChannel(channel uint8) bool {
	return d.opts.Omni || channel == d.opts.Channel-1
}

func (d *Dispatcher) feedbackChannel() uint8 {
	if d.opts.Channel == 0 {
		return 0
	}
	return d.opts.Channel - 1
}

func (d *Dispatcher) reportError(code autolyre.ErrorCode, data uint8) {
	if !d.opts.ReportErrors {
		return
	}

	d.logger.Debug("reporting error", "code", code.String(), "data", data)
	d.send("error report", func(s Sender) error {
		err := s.ControlChange(d.feedbackChannel(), autolyre.CCErrorType, byte(code))
		if err != nil {
			return err
		}
		return s.ControlChange(d.feedbackChannel(), autolyre.CCErrorData, data&0x7F)
	})
	d.stats.ErrorsSent++
}

func (d *Dispatcher) send(what string, fn func(Sender) error) {
	if d.sender == nil {
		return
	}
	err := fn(d.sender)
	if err != nil {
		d.logger.Warn("error sending feedback", "msg", what, "err", err)
	}
}

func clamp7(v uint32) uint8 {
	if v > 0x7F {
		return 0x7F
	}
	return uint8(v)
}
