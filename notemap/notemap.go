// Package notemap translates between MIDI note numbers and actuator indices.
package notemap

import (
	"errors"
	"strconv"
)

// NotPlayable is returned by Resolve for notes that have no actuator
const NotPlayable = -1

// Range is an immutable mapping over [Min, Max]. Every note in range has an entry in a dense table,
// so resolving a note never searches.
type Range struct {
	min, max uint8
	table    []int8
	notes    []uint8
}

// New builds the lookup table from the ordered list of playable notes. Actuator i plays notes[i].
func New(notes []int) (*Range, error) {
	if len(notes) == 0 {
		return nil, errors.New("no playable notes")
	}
	if len(notes) > 128 {
		return nil, errors.New("too many playable notes: " + strconv.Itoa(len(notes)))
	}

	r := &Range{notes: make([]uint8, len(notes))}
	for i, n := range notes {
		if n < 0 || n > 127 {
			return nil, errors.New("invalid note: " + strconv.Itoa(n))
		}
		if i > 0 && n <= notes[i-1] {
			return nil, errors.New("notes must be strictly ascending: " + strconv.Itoa(n))
		}
		r.notes[i] = uint8(n)
	}

	r.min = r.notes[0]
	r.max = r.notes[len(r.notes)-1]

	r.table = make([]int8, int(r.max)-int(r.min)+1)
	for i := range r.table {
		r.table[i] = NotPlayable
	}
	for i, n := range r.notes {
		r.table[n-r.min] = int8(i)
	}

	return r, nil
}

// Resolve returns the actuator for a note, or NotPlayable
func (r *Range) Resolve(note uint8) int {
	if note < r.min || note > r.max {
		return NotPlayable
	}
	return int(r.table[note-r.min])
}

// Note returns the note played by an actuator
func (r *Range) Note(index int) (uint8, bool) {
	if index < 0 || index >= len(r.notes) {
		return 0, false
	}
	return r.notes[index], true
}

// Contains reports whether a note is inside [Min, Max], mapped or not
func (r *Range) Contains(note uint8) bool {
	return note >= r.min && note <= r.max
}

func (r *Range) Min() uint8 { return r.min }

func (r *Range) Max() uint8 { return r.max }

// Len is the number of playable notes, which is also the number of actuators
func (r *Range) Len() int { return len(r.notes) }

// Notes returns a copy of the playable notes in ascending order
func (r *Range) Notes() []uint8 {
	out := make([]uint8, len(r.notes))
	copy(out, r.notes)
	return out
}
