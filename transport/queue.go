package transport

import (
	"bytes"
	"sync"

	"github.com/calvinmclean/autolyre"
)

// DefaultQueueSize is the number of events a Queue holds before dropping
const DefaultQueueSize = 256

type event struct {
	status byte
	data1  byte
	data2  byte
	sysex  []byte
}

// Queue buffers events delivered on other goroutines so the control loop can process them in order.
// It implements Handler on the producer side and is drained into another Handler on the consumer side.
type Queue struct {
	mu      sync.Mutex
	events  []event
	spare   []event
	size    int
	dropped int
}

// NewQueue creates a Queue holding up to size events. A size of 0 uses DefaultQueueSize
func NewQueue(size int) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Queue{
		events: make([]event, 0, size),
		spare:  make([]event, 0, size),
		size:   size,
	}
}

func (q *Queue) OnNoteOn(channel, note, velocity uint8) {
	q.push(event{status: autolyre.StatusNoteOn | channel&0x0F, data1: note, data2: velocity})
}

func (q *Queue) OnNoteOff(channel, note, velocity uint8) {
	q.push(event{status: autolyre.StatusNoteOff | channel&0x0F, data1: note, data2: velocity})
}

func (q *Queue) OnControlChange(channel, controller, value uint8) {
	q.push(event{status: autolyre.StatusControlChange | channel&0x0F, data1: controller, data2: value})
}

func (q *Queue) OnSysEx(msg []byte) {
	q.push(event{status: autolyre.SysExStart, sysex: bytes.Clone(msg)})
}

func (q *Queue) push(e event) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events) >= q.size {
		q.dropped++
		return
	}
	q.events = append(q.events, e)
}

// Drain delivers every pending event to h in arrival order and returns the number delivered.
// h is called without the lock held so it may take its time.
func (q *Queue) Drain(h Handler) int {
	q.mu.Lock()
	pending := q.events
	q.events = q.spare[:0]
	q.mu.Unlock()

	for _, e := range pending {
		if e.status == autolyre.SysExStart {
			h.OnSysEx(e.sysex)
			continue
		}
		dispatch(h, e.status, e.data1, e.data2)
	}

	q.mu.Lock()
	q.spare = pending[:0]
	q.mu.Unlock()

	return len(pending)
}

// Len is the number of pending events
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Dropped is the number of events refused because the Queue was full
func (q *Queue) Dropped() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}
