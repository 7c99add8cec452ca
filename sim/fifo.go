// Package sim provides a host-simulated serial channel for the xfer engine:
// two bounded FIFOs wired TX→RX, occupancy-based event triggers, and a small
// interrupt-controller model with deterministic dispatch. It stands in for
// the hardware so sessions run (and tests pass) without a board.
package sim

// FIFO is a bounded byte queue modelling one hardware FIFO.
type FIFO struct {
	buf  []byte
	head int // next write
	tail int // next read
	used int
}

// NewFIFO returns a FIFO with the given depth.
func NewFIFO(depth int) *FIFO {
	if depth < 1 {
		panic("sim: fifo depth must be positive")
	}
	return &FIFO{buf: make([]byte, depth)}
}

// Cap returns the FIFO depth.
func (f *FIFO) Cap() int { return len(f.buf) }

// Len returns the current occupancy.
func (f *FIFO) Len() int { return f.used }

// Empty reports occupancy zero.
func (f *FIFO) Empty() bool { return f.used == 0 }

// Full reports occupancy at depth.
func (f *FIFO) Full() bool { return f.used == len(f.buf) }

// Push appends a byte. It returns false when the FIFO is full.
func (f *FIFO) Push(b byte) bool {
	if f.Full() {
		return false
	}
	f.buf[f.head] = b
	f.head = (f.head + 1) % len(f.buf)
	f.used++
	return true
}

// Pop removes the oldest byte. It returns false when the FIFO is empty.
func (f *FIFO) Pop() (byte, bool) {
	if f.Empty() {
		return 0, false
	}
	b := f.buf[f.tail]
	f.tail = (f.tail + 1) % len(f.buf)
	f.used--
	return b, true
}

// Clear resets the FIFO to empty.
func (f *FIFO) Clear() {
	f.head, f.tail, f.used = 0, 0, 0
}
