package midimind

import "errors"

// Responder answers requests for one instrument. Replies are built once
type Responder struct {
	id     Identification
	block1 []byte
	block2 []byte
}

func NewResponder(id Identification) *Responder {
	return &Responder{
		id:     id,
		block1: Block1Reply(id),
		block2: Block2Reply(id),
	}
}

// Identification returns the reported identity
func (r *Responder) Identification() Identification {
	return r.id
}

// Reply returns the answer to a request. Requests for an unknown block get no answer and no error.
// The returned slice must not be modified.
func (r *Responder) Reply(msg []byte) ([]byte, error) {
	block, err := ParseRequest(msg)
	if errors.Is(err, ErrUnknownBlock) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	switch block {
	case BlockIdentification:
		return r.block1, nil
	case BlockCapabilities:
		return r.block2, nil
	}
	return nil, nil
}
