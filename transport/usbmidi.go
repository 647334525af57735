package transport

import (
	"io"

	"github.com/calvinmclean/autolyre"
	"github.com/calvinmclean/autolyre/midimind"
)

// USB-MIDI code index numbers
const (
	CINSysExStart = 0x4
	CINSysExEnd1  = 0x5
	CINSysExEnd2  = 0x6
	CINSysExEnd3  = 0x7
	CINNoteOff    = 0x8
	CINNoteOn     = 0x9
	CINControl    = 0xB
)

// PacketSize is the size of a USB-MIDI event packet
const PacketSize = 4

// USBMIDI decodes USB-MIDI event packets. SysEx arrives in three byte fragments and is reassembled
// before it reaches the Handler.
type USBMIDI struct {
	handler   Handler
	assembler *midimind.Assembler
}

// NewUSBMIDI creates a decoder. sysexSize bounds reassembled messages, 0 uses the default
func NewUSBMIDI(h Handler, sysexSize int) *USBMIDI {
	return &USBMIDI{
		handler:   h,
		assembler: midimind.NewAssembler(sysexSize),
	}
}

// Receive decodes a buffer holding any number of whole packets. Trailing partial packets are ignored
func (u *USBMIDI) Receive(b []byte) {
	for len(b) >= PacketSize {
		u.HandlePacket([PacketSize]byte(b[:PacketSize]))
		b = b[PacketSize:]
	}
}

// HandlePacket decodes one event packet. The cable number is ignored
func (u *USBMIDI) HandlePacket(p [PacketSize]byte) {
	switch p[0] & 0x0F {
	case CINSysExStart:
		u.sysex(p[1:4], false)
	case CINSysExEnd1:
		u.sysex(p[1:2], true)
	case CINSysExEnd2:
		u.sysex(p[1:3], true)
	case CINSysExEnd3:
		u.sysex(p[1:4], true)
	case CINNoteOff, CINNoteOn, CINControl:
		dispatch(u.handler, p[1], p[2], p[3])
	}
}

func (u *USBMIDI) sysex(fragment []byte, end bool) {
	msg, ok := u.assembler.Write(fragment, end)
	if ok {
		u.handler.OnSysEx(msg)
	}
}

// USBSender encodes outbound messages as USB-MIDI event packets
type USBSender struct {
	w     io.Writer
	cable uint8
	buf   []byte
}

func NewUSBSender(w io.Writer, cable uint8) *USBSender {
	return &USBSender{w: w, cable: cable & 0x0F}
}

func (s *USBSender) NoteOn(channel, note, velocity uint8) error {
	return s.write(CINNoteOn, autolyre.StatusNoteOn|channel&0x0F, note&0x7F, velocity&0x7F)
}

func (s *USBSender) NoteOff(channel, note, velocity uint8) error {
	return s.write(CINNoteOff, autolyre.StatusNoteOff|channel&0x0F, note&0x7F, velocity&0x7F)
}

func (s *USBSender) ControlChange(channel, controller, value uint8) error {
	return s.write(CINControl, autolyre.StatusControlChange|channel&0x0F, controller&0x7F, value&0x7F)
}

// SysEx sends a complete message, F0 to F7, as a single write of packets
func (s *USBSender) SysEx(msg []byte) error {
	s.buf = s.buf[:0]
	for len(msg) > 3 {
		s.buf = append(s.buf, s.cable<<4|CINSysExStart, msg[0], msg[1], msg[2])
		msg = msg[3:]
	}

	switch len(msg) {
	case 1:
		s.buf = append(s.buf, s.cable<<4|CINSysExEnd1, msg[0], 0, 0)
	case 2:
		s.buf = append(s.buf, s.cable<<4|CINSysExEnd2, msg[0], msg[1], 0)
	case 3:
		s.buf = append(s.buf, s.cable<<4|CINSysExEnd3, msg[0], msg[1], msg[2])
	}

	_, err := s.w.Write(s.buf)
	return err
}

func (s *USBSender) write(cin, status, data1, data2 byte) error {
	s.buf = append(s.buf[:0], s.cable<<4|cin, status, data1, data2)
	_, err := s.w.Write(s.buf)
	return err
}
