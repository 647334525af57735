package midimind

import "github.com/calvinmclean/autolyre"

// DefaultBufferSize is the largest SysEx message the instrument accepts
const DefaultBufferSize = 64

// Assembler rebuilds a SysEx message from transport fragments. A fragment starting with F0 begins a new
// message. A message that does not fit is dropped.
type Assembler struct {
	buf      []byte
	size     int
	active   bool
	overflow bool
}

// NewAssembler creates an Assembler. A size of 0 uses DefaultBufferSize
func NewAssembler(size int) *Assembler {
	if size <= 0 {
		size = DefaultBufferSize
	}
	return &Assembler{
		buf:  make([]byte, 0, size),
		size: size,
	}
}

// Write appends a fragment. When end is set and the message is complete, it is returned and the Assembler
// is ready for the next one. The returned slice is only valid until the next call.
func (a *Assembler) Write(fragment []byte, end bool) ([]byte, bool) {
	if len(fragment) > 0 && fragment[0] == autolyre.SysExStart {
		a.Reset()
		a.active = true
	}
	if !a.active {
		return nil, false
	}

	if !a.overflow {
		if len(a.buf)+len(fragment) > a.size {
			a.overflow = true
			a.buf = a.buf[:0]
		} else {
			a.buf = append(a.buf, fragment...)
		}
	}

	if !end {
		return nil, false
	}

	complete := !a.overflow
	a.active = false
	a.overflow = false
	if !complete {
		return nil, false
	}

	msg := a.buf
	a.buf = a.buf[:0]
	return msg, true
}

// Active reports whether a message is being assembled
func (a *Assembler) Active() bool {
	return a.active
}

// Reset discards any partial message
func (a *Assembler) Reset() {
	a.buf = a.buf[:0]
	a.active = false
	a.overflow = false
}
