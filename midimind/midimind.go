// Package midimind implements the MidiMind SysEx identification protocol. A host sends a short request for
// one information block and the instrument answers with its identity and playable notes (Block 1) or its
// capabilities (Block 2).
package midimind

import (
	"errors"
	"fmt"

	"github.com/calvinmclean/autolyre"
)

const (
	ManufacturerID = 0x7D
	SubID          = 0x00

	TypeRequest = 0x00
	TypeReply   = 0x01

	Version = 0x01

	NameLength = 16

	// Block1Length and Block2Length are the sizes of the framed replies
	Block1Length = 47
	Block2Length = 9
)

// Block selects the information returned by the instrument
type Block byte

const (
	BlockIdentification Block = 0x01
	BlockCapabilities   Block = 0x02
)

func (b Block) String() string {
	switch b {
	case BlockIdentification:
		return "Identification"
	case BlockCapabilities:
		return "Capabilities"
	default:
		return fmt.Sprintf("Block(%d)", byte(b))
	}
}

// Capability is the Block 2 flag field. It is sent as two 7-bit bytes
type Capability uint16

const (
	CapControlChange Capability = 1 << iota
	CapAftertouch
	CapPitchBend
	CapProgramChange
	CapVelocity
)

var (
	ErrTooShort      = errors.New("sysex message too short")
	ErrManufacturer  = errors.New("not a MidiMind message")
	ErrMessageType   = errors.New("unexpected message type")
	ErrUnknownBlock  = errors.New("unknown block")
	ErrInvalidLength = errors.New("invalid reply length")
	ErrUnterminated  = errors.New("sysex message missing F7")
)

// Identification is everything the instrument reports about itself
type Identification struct {
	Name         string
	GMProgram    uint8
	FirstNote    uint8
	NoteCount    uint8
	Polyphony    uint8
	Flags        uint8
	Notes        [16]byte
	Capabilities Capability
}

// FromConfig builds the identification of the configured instrument
func FromConfig(cfg autolyre.Config) Identification {
	id := Identification{
		Name:      cfg.Name,
		GMProgram: cfg.GMProgram,
		NoteCount: uint8(len(cfg.PlayableNotes)),
		Polyphony: cfg.Polyphony,
	}
	if len(cfg.PlayableNotes) > 0 {
		id.FirstNote = uint8(cfg.PlayableNotes[0])
	}

	notes := make([]uint8, 0, len(cfg.PlayableNotes))
	for _, n := range cfg.PlayableNotes {
		if n >= 0 && n <= 127 {
			notes = append(notes, uint8(n))
		}
	}
	id.Notes = NoteBitmap(notes)

	return id
}

// Request builds a framed request for a block
func Request(block Block) []byte {
	return []byte{autolyre.SysExStart, ManufacturerID, SubID, byte(block), TypeRequest, autolyre.SysExEnd}
}

// ParseRequest validates a request and returns the requested block. The F0 and F7 delimiters are optional
// since some transports strip them.
func ParseRequest(msg []byte) (Block, error) {
	body, err := unframe(msg)
	if err != nil {
		return 0, err
	}
	if len(body) < 4 {
		return 0, ErrTooShort
	}
	if body[0] != ManufacturerID || body[1] != SubID {
		return 0, ErrManufacturer
	}
	if body[3] != TypeRequest {
		return 0, ErrMessageType
	}

	block := Block(body[2])
	switch block {
	case BlockIdentification, BlockCapabilities:
		return block, nil
	default:
		return block, fmt.Errorf("%w: %d", ErrUnknownBlock, body[2])
	}
}

// Block1Reply builds the identification reply
func Block1Reply(id Identification) []byte {
	out := make([]byte, 0, Block1Length)
	out = append(out, autolyre.SysExStart, ManufacturerID, SubID, byte(BlockIdentification), TypeReply, Version)

	var name [NameLength]byte
	for i := 0; i < len(id.Name) && i < NameLength; i++ {
		name[i] = id.Name[i] & 0x7F
	}
	out = append(out, name[:]...)

	out = append(out, id.GMProgram&0x7F, id.FirstNote&0x7F, id.NoteCount&0x7F, id.Polyphony&0x7F, id.Flags&0x7F)

	encoded := Encode7BitBitmap(id.Notes)
	out = append(out, encoded[:]...)

	return append(out, autolyre.SysExEnd)
}

// Block2Reply builds the capabilities reply
func Block2Reply(id Identification) []byte {
	return []byte{
		autolyre.SysExStart, ManufacturerID, SubID, byte(BlockCapabilities), TypeReply, Version,
		byte(id.Capabilities & 0x7F),
		byte((id.Capabilities >> 7) & 0x7F),
		autolyre.SysExEnd,
	}
}

// ParseBlock1Reply decodes an identification reply
func ParseBlock1Reply(msg []byte) (Identification, error) {
	body, err := parseReply(msg, BlockIdentification, Block1Length)
	if err != nil {
		return Identification{}, err
	}

	// skip manufacturer, sub ID, block, type, version
	body = body[5:]

	name := body[:NameLength]
	end := 0
	for end < len(name) && name[end] != 0 {
		end++
	}

	id := Identification{
		Name:      string(name[:end]),
		GMProgram: body[16],
		FirstNote: body[17],
		NoteCount: body[18],
		Polyphony: body[19],
		Flags:     body[20],
	}

	var encoded [19]byte
	copy(encoded[:], body[21:40])
	id.Notes = Decode7BitBitmap(encoded)

	return id, nil
}

// ParseBlock2Reply decodes a capabilities reply
func ParseBlock2Reply(msg []byte) (Capability, error) {
	body, err := parseReply(msg, BlockCapabilities, Block2Length)
	if err != nil {
		return 0, err
	}
	return Capability(body[5]) | Capability(body[6])<<7, nil
}

func parseReply(msg []byte, block Block, length int) ([]byte, error) {
	body, err := unframe(msg)
	if err != nil {
		return nil, err
	}
	if len(body) < 4 {
		return nil, ErrTooShort
	}
	if body[0] != ManufacturerID || body[1] != SubID {
		return nil, ErrManufacturer
	}
	if body[3] != TypeReply {
		return nil, ErrMessageType
	}
	if Block(body[2]) != block {
		return nil, fmt.Errorf("%w: %d", ErrUnknownBlock, body[2])
	}
	if len(body) != length-2 {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidLength, len(body)+2)
	}
	return body, nil
}

// unframe strips the F0 and F7 delimiters. Both are optional, but a message that starts with F0 must end
// with F7.
func unframe(msg []byte) ([]byte, error) {
	framed := len(msg) > 0 && msg[0] == autolyre.SysExStart
	if framed {
		msg = msg[1:]
	}
	if len(msg) > 0 && msg[len(msg)-1] == autolyre.SysExEnd {
		return msg[:len(msg)-1], nil
	}
	if framed {
		return nil, ErrUnterminated
	}
	return msg, nil
}
