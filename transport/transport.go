// Package transport moves MIDI between the instrument and the outside world. Every backend decodes
// inbound traffic into Handler callbacks and every sender implements the dispatcher's outbound contract,
// so the same dispatcher serves USB-MIDI, raw serial streams and host MIDI ports.
package transport

import "github.com/calvinmclean/autolyre"

// Handler receives decoded messages. Channels are 0-15. SysEx messages include the F0 and F7
// delimiters and are only valid for the duration of the call.
type Handler interface {
	OnNoteOn(channel, note, velocity uint8)
	OnNoteOff(channel, note, velocity uint8)
	OnControlChange(channel, controller, value uint8)
	OnSysEx(msg []byte)
}

// dispatch routes a complete channel message to a Handler
func dispatch(h Handler, status, data1, data2 byte) {
	channel := status & 0x0F
	switch status & 0xF0 {
	case autolyre.StatusNoteOn:
		h.OnNoteOn(channel, data1, data2)
	case autolyre.StatusNoteOff:
		h.OnNoteOff(channel, data1, data2)
	case autolyre.StatusControlChange:
		h.OnControlChange(channel, data1, data2)
	}
}
