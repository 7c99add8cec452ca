package xfer

import (
	"github.com/pkg/errors"
)

const (
	// Priorities carried over from the reference board setup; inbound is
	// served first when both lines are pending.
	DefaultOutboundPriority Priority = 63
	DefaultInboundPriority  Priority = 62

	// spinBudget bounds the full-check spin before a push. The event contract
	// already guarantees space, so exhausting it means the channel model is
	// broken, not that the bus is slow.
	spinBudget = 1 << 16
)

// Config carries the engine's FIFO geometry and interrupt priorities.
type Config struct {
	// InboundTrigger is the configured inbound level limit: the "level
	// reached" event fires once inbound occupancy exceeds it.
	InboundTrigger int
	// QueueDepth is the hardware FIFO depth on both sides.
	QueueDepth int

	// Zero values fall back to the reference priorities.
	OutboundPriority Priority
	InboundPriority  Priority
}

func (c *Config) validate() error {
	if c.QueueDepth < 2 {
		return errors.Errorf("queue depth must be at least 2, got %d", c.QueueDepth)
	}
	if c.InboundTrigger < 0 || c.InboundTrigger > c.QueueDepth-1 {
		return errors.Errorf("inbound trigger %d out of range 0..%d", c.InboundTrigger, c.QueueDepth-1)
	}
	if c.OutboundPriority == 0 {
		c.OutboundPriority = DefaultOutboundPriority
	}
	if c.InboundPriority == 0 {
		c.InboundPriority = DefaultInboundPriority
	}
	return nil
}

// Engine couples a session to a channel and interrupt controller and exposes
// the two interrupt entry points. One engine drives one session at a time.
type Engine struct {
	ch      Channel
	ic      IntController
	session *Session
	cfg     Config

	trigger int  // live inbound trigger level, receiver-owned after Arm
	txOn    bool // outbound event enablement, sender-owned after Arm

	stats stats
}

// NewEngine validates cfg and wires the engine. It does not touch hardware;
// call Arm to start a transfer.
func NewEngine(ch Channel, ic IntController, session *Session, cfg Config) (*Engine, error) {
	if err := cfg.validate(); err != nil {
		return nil, errors.Wrap(err, "engine config")
	}
	return &Engine{
		ch:      ch,
		ic:      ic,
		session: session,
		cfg:     cfg,
		trigger: cfg.InboundTrigger,
		// Outbound enablement starts up and falls exactly once, when the
		// sender exhausts the source.
		txOn: true,
	}, nil
}

// Trigger returns the live inbound trigger level.
func (e *Engine) Trigger() int { return e.trigger }

// Session returns the session the engine is driving.
func (e *Engine) Session() *Session { return e.session }

// Arm primes a transfer: interrupt lines configured and enabled, channel
// started, first byte pushed, and the inbound trigger pre-shrunk if the whole
// transfer is shorter than the configured level window.
func (e *Engine) Arm() error {
	if e.session.sent != 0 {
		return errors.New("arm: session already primed; Reset it first")
	}

	e.ic.SetPriority(LineOutbound, e.cfg.OutboundPriority)
	e.ic.SetPriority(LineInbound, e.cfg.InboundPriority)
	e.ic.Enable(LineOutbound)
	e.ic.Enable(LineInbound)

	e.trigger = e.cfg.InboundTrigger
	e.ch.SetInboundTrigger(e.trigger)
	e.ch.EnableOutboundEvent()
	e.txOn = true

	e.ch.Start()

	// First fill happens here; every later fill happens in the outbound
	// handler.
	for i := 0; e.ch.OutboundFull(); i++ {
		if i == spinBudget {
			return errors.New("arm: outbound queue stuck full")
		}
	}
	e.ch.Enqueue(e.session.source[0])
	e.session.sent = 1

	// Degenerate case: the whole transfer fits below the configured level
	// window, so without a pre-shrink the final bytes would never trigger.
	if remaining := e.session.Total() - e.session.recvd; remaining < e.trigger {
		e.applyTrigger(shrunkTrigger(remaining))
	}
	return nil
}

// OnOutboundSpace is the "space available" interrupt entry point. It queues
// the next unsent byte, or on exhaustion disables the outbound event source
// and its interrupt line. That transition is terminal for the session.
func (e *Engine) OnOutboundSpace() {
	e.stats.senderEntry()
	s := e.session
	if s.sent < len(s.source) {
		// The event already signalled space; this spin only covers the race
		// window between the event and the push.
		for i := 0; e.ch.OutboundFull(); i++ {
			if i == spinBudget {
				panic("xfer: outbound queue full despite space event")
			}
		}
		e.ch.Enqueue(s.source[s.sent])
		s.sent++
		return
	}
	if e.txOn {
		e.ch.DisableOutboundEvent()
		e.ic.Disable(LineOutbound)
		e.txOn = false
	}
}

// OnInboundLevel is the "level reached" interrupt entry point. It drains the
// inbound FIFO completely, latches completion when the last byte lands, and
// otherwise shrinks the trigger level once fewer bytes remain than the current
// level would ever announce.
func (e *Engine) OnInboundLevel() {
	e.stats.receiverEntry()
	s := e.session
	drained := 0
	for !e.ch.InboundEmpty() {
		s.received[s.recvd] = e.ch.Dequeue()
		s.recvd++
		drained++
	}
	e.stats.noteDrain(drained)

	remaining := len(s.source) - s.recvd
	if remaining == 0 {
		if !s.completed {
			s.completed = true
			s.done.Store(true)
		}
		return
	}
	if remaining < e.trigger {
		e.applyTrigger(shrunkTrigger(remaining))
	}
}

func (e *Engine) applyTrigger(level int) {
	e.trigger = level
	e.ch.SetInboundTrigger(level)
	e.stats.triggerRewrite()
}

// shrunkTrigger computes the lowered trigger level for a partial tail:
// remaining-1, so that the tail's arrival pushes occupancy past the level.
// remaining == 0 never reaches here; completion latches first.
func shrunkTrigger(remaining int) int {
	if remaining < 1 {
		panic("xfer: trigger shrink with no bytes remaining")
	}
	return remaining - 1
}
