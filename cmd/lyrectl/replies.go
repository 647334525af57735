package main

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"

	"github.com/calvinmclean/autolyre"
	"github.com/calvinmclean/autolyre/midimind"
)

// replies receives everything the instrument sends back. It is called from a single MIDI input goroutine
type replies struct {
	sysex  chan []byte
	logger *slog.Logger

	errorCode autolyre.ErrorCode
	haveCode  bool
}

func newReplies(logger *slog.Logger) *replies {
	return &replies{
		sysex:  make(chan []byte, 8),
		logger: logger,
	}
}

func (r *replies) OnNoteOn(channel, note, velocity uint8) {
	r.logger.Info("echo", "type", "note on", "channel", channel+1, "note", note, "velocity", velocity)
}

func (r *replies) OnNoteOff(channel, note, velocity uint8) {
	r.logger.Info("echo", "type", "note off", "channel", channel+1, "note", note)
}

// OnControlChange pairs the error code with the data byte that follows it
func (r *replies) OnControlChange(channel, controller, value uint8) {
	switch controller {
	case autolyre.CCErrorType:
		r.errorCode = autolyre.ErrorCode(value)
		r.haveCode = true
	case autolyre.CCErrorData:
		if !r.haveCode {
			r.logger.Warn("error data without code", "data", value)
			return
		}
		r.haveCode = false
		r.logger.Warn("instrument reported error", "code", r.errorCode.String(), "data", value)
	default:
		r.logger.Debug("control change", "channel", channel+1, "controller", controller, "value", value)
	}
}

func (r *replies) OnSysEx(msg []byte) {
	select {
	case r.sysex <- bytes.Clone(msg):
	default:
		r.logger.Warn("dropping sysex reply", "len", len(msg))
	}
}

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

func noteName(note uint8) string {
	return fmt.Sprintf("%s%d", noteNames[note%12], int(note)/12-1)
}

var capabilityNames = []struct {
	cap  midimind.Capability
	name string
}{
	{midimind.CapControlChange, "control change"},
	{midimind.CapAftertouch, "aftertouch"},
	{midimind.CapPitchBend, "pitch bend"},
	{midimind.CapProgramChange, "program change"},
	{midimind.CapVelocity, "velocity"},
}

func formatCapabilities(c midimind.Capability) string {
	var names []string
	for _, cn := range capabilityNames {
		if c&cn.cap != 0 {
			names = append(names, cn.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ", ")
}

func formatIdentification(id midimind.Identification) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Name:       %s\n", id.Name)
	fmt.Fprintf(&sb, "GM program: %d\n", id.GMProgram)
	fmt.Fprintf(&sb, "Range:      %s, %d notes\n", noteName(id.FirstNote), id.NoteCount)
	fmt.Fprintf(&sb, "Polyphony:  %d\n", id.Polyphony)

	var notes []string
	for _, n := range midimind.BitmapNotes(id.Notes) {
		notes = append(notes, noteName(n))
	}
	fmt.Fprintf(&sb, "Notes:      %s\n", strings.Join(notes, " "))
	return sb.String()
}
