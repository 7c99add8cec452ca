package sim

import (
	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/jangala-dev/fifoxfer/xfer"
)

// Bus is a loopback serial channel: whatever is pushed into the TX FIFO is
// carried across the wire, one byte per Step, into the RX FIFO. It implements
// both xfer.Channel and xfer.IntController, and dispatches bound handlers
// whenever a line's level condition holds, lower priority value first.
//
// A Bus is single-goroutine: Step/Dispatch and the handlers they invoke must
// run from the same goroutine, mirroring the single-core model the engine is
// written for.
type Bus struct {
	tx *FIFO
	rx *FIFO

	outMark   int // outbound low-water mark: event condition is tx.Len() <= outMark
	rxTrigger int // inbound level: event condition is rx.Len() > rxTrigger

	outEvent bool
	started  bool

	enabled  [2]bool
	priority [2]xfer.Priority
	handler  [2]func()

	corruptAt   int // wire index to corrupt, -1 off
	corruptMask byte

	moved    int // bytes carried across the wire
	overruns int // bytes dropped because RX was full
}

var (
	_ xfer.Channel       = (*Bus)(nil)
	_ xfer.IntController = (*Bus)(nil)
)

// NewBus builds a bus from cfg. The engine side of cfg (length, trigger) is
// consumed by the caller when it builds the session and engine.
func NewBus(cfg Config) (*Bus, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "bus config")
	}
	return &Bus{
		tx:          NewFIFO(cfg.Depth),
		rx:          NewFIFO(cfg.Depth),
		outMark:     cfg.OutboundMark,
		rxTrigger:   cfg.InboundTrigger,
		corruptAt:   cfg.CorruptIndex,
		corruptMask: cfg.CorruptMask,
	}, nil
}

// ---------------- xfer.Channel ----------------

func (b *Bus) Enqueue(v byte) {
	if !b.tx.Push(v) {
		panic("sim: enqueue on full outbound FIFO")
	}
}

func (b *Bus) Dequeue() byte {
	v, ok := b.rx.Pop()
	if !ok {
		panic("sim: dequeue on empty inbound FIFO")
	}
	return v
}

func (b *Bus) OutboundFull() bool { return b.tx.Full() }
func (b *Bus) InboundEmpty() bool { return b.rx.Empty() }

func (b *Bus) SetInboundTrigger(level int) {
	if level < 0 || level > b.rx.Cap()-1 {
		panic("sim: inbound trigger out of range")
	}
	glog.V(2).Infof("inbound trigger %d -> %d", b.rxTrigger, level)
	b.rxTrigger = level
}

func (b *Bus) EnableOutboundEvent()  { b.outEvent = true }
func (b *Bus) DisableOutboundEvent() { b.outEvent = false }

func (b *Bus) Start() { b.started = true }

// ---------------- xfer.IntController ----------------

func (b *Bus) Enable(l xfer.Line)  { b.enabled[l] = true }
func (b *Bus) Disable(l xfer.Line) { b.enabled[l] = false }

func (b *Bus) SetPriority(l xfer.Line, p xfer.Priority) { b.priority[l] = p }

// Bind attaches a handler to an interrupt line.
func (b *Bus) Bind(l xfer.Line, fn func()) { b.handler[l] = fn }

// ---------------- wire and dispatch ----------------

// Step carries one byte across the wire. It reports whether anything moved.
func (b *Bus) Step() bool {
	if !b.started {
		return false
	}
	v, ok := b.tx.Pop()
	if !ok {
		return false
	}
	if b.moved == b.corruptAt {
		glog.V(1).Infof("corrupting wire byte %d: %#02x ^ %#02x", b.moved, v, b.corruptMask)
		v ^= b.corruptMask
	}
	if !b.rx.Push(v) {
		b.overruns++
	}
	b.moved++
	glog.V(2).Infof("wire: byte %d, tx=%d rx=%d", b.moved, b.tx.Len(), b.rx.Len())
	return true
}

// Pending reports whether a line's level condition currently holds.
func (b *Bus) Pending(l xfer.Line) bool {
	if !b.started || !b.enabled[l] {
		return false
	}
	switch l {
	case xfer.LineOutbound:
		return b.outEvent && b.tx.Len() <= b.outMark
	case xfer.LineInbound:
		return b.rx.Len() > b.rxTrigger
	}
	return false
}

// DispatchPending serves every pending line once, lower priority value first.
// It reports whether any handler ran.
func (b *Bus) DispatchPending() bool {
	order := [2]xfer.Line{xfer.LineOutbound, xfer.LineInbound}
	if b.priority[xfer.LineInbound] < b.priority[xfer.LineOutbound] {
		order = [2]xfer.Line{xfer.LineInbound, xfer.LineOutbound}
	}
	ran := false
	for _, l := range order {
		if b.Pending(l) && b.handler[l] != nil {
			glog.V(2).Infof("dispatch %s", l)
			b.handler[l]()
			ran = true
		}
	}
	return ran
}

// RunToIdle alternates dispatch and wire steps until the bus is quiescent:
// nothing pending and nothing in flight. It errors when maxSteps iterations
// pass without reaching that state. Quiescence does not imply the transfer
// completed; the observer decides that.
func (b *Bus) RunToIdle(maxSteps int) error {
	for i := 0; i < maxSteps; i++ {
		ran := b.DispatchPending()
		moved := b.Step()
		if !ran && !moved {
			glog.V(1).Infof("bus idle after %d iterations, %d bytes moved", i, b.moved)
			return nil
		}
	}
	return errors.Errorf("bus not idle after %d steps", maxSteps)
}

// InboundTrigger returns the live inbound trigger level.
func (b *Bus) InboundTrigger() int { return b.rxTrigger }

// Moved returns how many bytes have crossed the wire.
func (b *Bus) Moved() int { return b.moved }

// Overruns returns how many bytes were dropped because RX was full.
func (b *Bus) Overruns() int { return b.overruns }

// Occupancy returns the current TX and RX FIFO levels.
func (b *Bus) Occupancy() (tx, rx int) { return b.tx.Len(), b.rx.Len() }
