package transport

import (
	"fmt"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"github.com/calvinmclean/autolyre"
)

// Listen opens a host MIDI input and delivers its messages to h on the driver's goroutine. Wrap h in a
// Queue to process them from the control loop.
func Listen(in drivers.In, h Handler, onError func(error)) (stop func(), err error) {
	if !in.IsOpen() {
		err = in.Open()
		if err != nil {
			return nil, fmt.Errorf("error opening %q: %w", in.String(), err)
		}
	}

	opts := []midi.Option{midi.UseSysEx()}
	if onError != nil {
		opts = append(opts, midi.HandleError(onError))
	}

	stop, err = midi.ListenTo(in, func(msg midi.Message, _ int32) {
		Decode(msg, h)
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("error listening to %q: %w", in.String(), err)
	}
	return stop, nil
}

// Decode delivers one gomidi message to h. Unsupported messages are ignored
func Decode(msg midi.Message, h Handler) {
	var channel, data1, data2 uint8
	var sysex []byte

	switch {
	case msg.GetNoteOn(&channel, &data1, &data2):
		h.OnNoteOn(channel, data1, data2)
	case msg.GetNoteOff(&channel, &data1, &data2):
		h.OnNoteOff(channel, data1, data2)
	case msg.GetControlChange(&channel, &data1, &data2):
		h.OnControlChange(channel, data1, data2)
	case msg.GetSysEx(&sysex):
		// gomidi strips the delimiters
		framed := make([]byte, 0, len(sysex)+2)
		framed = append(framed, autolyre.SysExStart)
		framed = append(framed, sysex...)
		framed = append(framed, autolyre.SysExEnd)
		h.OnSysEx(framed)
	}
}

// PortSender sends to a host MIDI output
type PortSender struct {
	send func(midi.Message) error
}

func NewPortSender(out drivers.Out) (*PortSender, error) {
	send, err := midi.SendTo(out)
	if err != nil {
		return nil, fmt.Errorf("error opening %q: %w", out.String(), err)
	}
	return &PortSender{send: send}, nil
}

func (p *PortSender) NoteOn(channel, note, velocity uint8) error {
	return p.send(midi.NoteOn(channel, note, velocity))
}

func (p *PortSender) NoteOff(channel, note, velocity uint8) error {
	return p.send(midi.NoteOffVelocity(channel, note, velocity))
}

func (p *PortSender) ControlChange(channel, controller, value uint8) error {
	return p.send(midi.ControlChange(channel, controller, value))
}

// SysEx sends a framed message as is
func (p *PortSender) SysEx(msg []byte) error {
	return p.send(midi.Message(msg))
}
