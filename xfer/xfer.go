// Package xfer implements an interrupt-driven duplex transfer engine over a
// serial channel with hardware TX/RX FIFOs. A fixed-length byte sequence is
// pushed out of the outbound FIFO under "space available" events and, with the
// channel wired in loopback, drained from the inbound FIFO under "level
// reached" events. The receiver lowers the inbound trigger level as the tail
// of the transfer approaches so the final bytes still raise an event. A
// non-interrupt observer polls a single completion flag and verifies the
// received bytes against the source.
//
// The two event handlers are plain methods so a harness (or a test) can invoke
// them directly against a mock channel; on hardware they would be bound to the
// TX and RX interrupt lines.
package xfer

// Channel is the hardware serial channel as the engine sees it: two FIFOs with
// occupancy-based event triggers. Enqueue and Dequeue are infallible; callers
// check OutboundFull/InboundEmpty first, as the event contract guarantees.
type Channel interface {
	// Enqueue pushes one byte into the outbound FIFO.
	Enqueue(b byte)
	// Dequeue pops one byte from the inbound FIFO.
	Dequeue() byte

	OutboundFull() bool
	InboundEmpty() bool

	// SetInboundTrigger sets the inbound FIFO level above which the "level
	// reached" event fires. Valid range is 0..depth-1.
	SetInboundTrigger(level int)

	EnableOutboundEvent()
	DisableOutboundEvent()

	// Start enables the channel. Events may fire from this point on.
	Start()
}

// Line identifies one of the engine's two interrupt lines at the controller.
type Line uint8

const (
	// LineOutbound fires when outbound FIFO occupancy drops to the low-water
	// mark ("space available").
	LineOutbound Line = iota
	// LineInbound fires when inbound FIFO occupancy exceeds the trigger level.
	LineInbound
)

func (l Line) String() string {
	switch l {
	case LineOutbound:
		return "outbound"
	case LineInbound:
		return "inbound"
	}
	return "unknown"
}

// Priority is an interrupt priority level. Lower values are served first.
type Priority uint8

// IntController is the interrupt controller the engine registers with.
type IntController interface {
	Enable(Line)
	Disable(Line)
	SetPriority(Line, Priority)
}

// Indicator receives the per-byte verification outcome. On hardware this is
// an LED; the observer drives it once per compared byte, so a bare
// boolean indicator ends up reflecting the last comparison only. The aggregate
// verdict comes from Verdict.Pass, not from here.
type Indicator interface {
	Set(ok bool)
}

// IndicatorFunc adapts a func to the Indicator interface.
type IndicatorFunc func(ok bool)

// Set implements Indicator.
func (f IndicatorFunc) Set(ok bool) { f(ok) }
