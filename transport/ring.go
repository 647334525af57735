package transport

import "sync/atomic"

// RingSize is the number of packets a PacketRing holds. It must be a power of two
const RingSize = 64

// PacketRing hands USB-MIDI packets from an interrupt handler to the control loop without locking or
// allocating. There must be exactly one producer and one consumer.
type PacketRing struct {
	packets [RingSize][PacketSize]byte
	head    atomic.Uint32
	tail    atomic.Uint32
	dropped atomic.Uint32
}

// Receive copies every whole packet in b. Packets that do not fit are dropped
func (r *PacketRing) Receive(b []byte) {
	for len(b) >= PacketSize {
		head := r.head.Load()
		if head-r.tail.Load() >= RingSize {
			r.dropped.Add(1)
		} else {
			copy(r.packets[head%RingSize][:], b[:PacketSize])
			r.head.Store(head + 1)
		}
		b = b[PacketSize:]
	}
}

// Drain decodes every pending packet and returns the number decoded
func (r *PacketRing) Drain(u *USBMIDI) int {
	n := 0
	for {
		tail := r.tail.Load()
		if tail == r.head.Load() {
			return n
		}
		u.HandlePacket(r.packets[tail%RingSize])
		r.tail.Store(tail + 1)
		n++
	}
}

// Dropped is the number of packets lost because the ring was full
func (r *PacketRing) Dropped() uint32 {
	return r.dropped.Load()
}
