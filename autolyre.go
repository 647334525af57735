package autolyre

// MIDI status bytes. The low nibble carries the channel for channel messages.
const (
	StatusNoteOff       = 0x80
	StatusNoteOn        = 0x90
	StatusPolyPressure  = 0xA0
	StatusControlChange = 0xB0
	StatusProgramChange = 0xC0
	StatusChannelPress  = 0xD0
	StatusPitchBend     = 0xE0
	SysExStart          = 0xF0
	SysExEnd            = 0xF7
)

// Control Change numbers handled by the instrument
const (
	CCErrorData        = 126
	CCErrorType        = 127
	CCAllSoundOff      = 120
	CCResetControllers = 121
	CCAllNotesOff      = 123
)

// ErrorCode is reported upstream through the feedback channel when a message is rejected
type ErrorCode byte

const (
	ErrorUnknown ErrorCode = iota
	ErrorNoteNotPlayable
	ErrorServoTimeout
	ErrorRateLimit
	ErrorInvalidChannel
	ErrorInvalidVelocity
)

func (ec ErrorCode) String() string {
	switch ec {
	case ErrorNoteNotPlayable:
		return "NOTE_NOT_PLAYABLE"
	case ErrorServoTimeout:
		return "SERVO_TIMEOUT"
	case ErrorRateLimit:
		return "RATE_LIMIT"
	case ErrorInvalidChannel:
		return "INVALID_CHANNEL"
	case ErrorInvalidVelocity:
		return "INVALID_VELOCITY"
	default:
		fallthrough
	case ErrorUnknown:
		return "UNKNOWN"
	}
}
