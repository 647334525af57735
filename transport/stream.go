package transport

import (
	"io"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"github.com/calvinmclean/autolyre/midimind"
)

// Stream parses a raw MIDI byte stream, as sent over a serial line, using the gomidi reader. Running status
// and real-time bytes are handled by the reader and complete messages are passed to Decode.
type Stream struct {
	reader *drivers.Reader
	// Oversized counts SysEx messages dropped for exceeding the buffer
	Oversized int
}

// NewStream creates a parser. sysexSize bounds SysEx messages, 0 uses the default
func NewStream(h Handler, sysexSize int) *Stream {
	if sysexSize <= 0 {
		sysexSize = midimind.DefaultBufferSize
	}
	return &Stream{
		reader: drivers.NewReader(drivers.ListenConfig{
			SysEx:           true,
			SysExBufferSize: uint32(sysexSize),
		}, func(msg []byte, _ int32) {
			Decode(midi.Message(msg), h)
		}),
	}
}

// Write parses p. It never fails so a Stream can sit at the end of an io.Copy
func (s *Stream) Write(p []byte) (int, error) {
	for i := range p {
		s.feed(p[i : i+1])
	}
	return len(p), nil
}

// feed passes one byte to the reader. The reader indexes past its buffer when a SysEx message does not
// fit, so that message is dropped and the reader starts over.
func (s *Stream) feed(b []byte) {
	defer func() {
		if recover() != nil {
			s.reader.Reset()
			s.Oversized++
		}
	}()
	s.reader.EachMessage(b, 0)
}

// StreamSender writes raw MIDI bytes
type StreamSender struct {
	w io.Writer
}

func NewStreamSender(w io.Writer) *StreamSender {
	return &StreamSender{w: w}
}

func (s *StreamSender) NoteOn(channel, note, velocity uint8) error {
	return s.write(midi.NoteOn(channel&0x0F, note&0x7F, velocity&0x7F))
}

func (s *StreamSender) NoteOff(channel, note, velocity uint8) error {
	return s.write(midi.NoteOffVelocity(channel&0x0F, note&0x7F, velocity&0x7F))
}

func (s *StreamSender) ControlChange(channel, controller, value uint8) error {
	return s.write(midi.ControlChange(channel&0x0F, controller&0x7F, value&0x7F))
}

func (s *StreamSender) SysEx(msg []byte) error {
	return s.write(msg)
}

func (s *StreamSender) write(msg []byte) error {
	_, err := s.w.Write(msg)
	return err
}
