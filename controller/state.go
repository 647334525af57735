package controller

// InitState is the phase of the startup sweep
type InitState int

const (
	InitIdle InitState = iota
	InitOpening
	InitWaitOpening
	InitClosing
	InitWaitClosing
	InitComplete
)

func (s InitState) String() string {
	switch s {
	case InitOpening:
		return "Opening"
	case InitWaitOpening:
		return "WaitOpening"
	case InitClosing:
		return "Closing"
	case InitWaitClosing:
		return "WaitClosing"
	case InitComplete:
		return "Complete"
	default:
		fallthrough
	case InitIdle:
		return "Idle"
	}
}

// Directions holds one pluck direction bit per actuator. Bit i belongs to actuator i.
type Directions [2]uint64

// Get returns the direction bit of actuator i
func (d Directions) Get(i int) bool {
	return d[i/64]&(1<<(uint(i)%64)) != 0
}

// Toggle flips the direction bit of actuator i
func (d *Directions) Toggle(i int) {
	d[i/64] ^= 1 << (uint(i) % 64)
}
