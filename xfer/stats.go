package xfer

import "sync/atomic"

// Stats holds engine counters since the last reset.
type Stats struct {
	SenderEntries   uint32 // outbound handler entries
	ReceiverEntries uint32 // inbound handler entries
	BytesDrained    uint32 // total bytes drained by the inbound handler
	MaxDrain        uint32 // max bytes drained in a single entry
	TriggerRewrites uint32 // inbound trigger level updates
	Polls           uint32 // observer polls
	IdlePolls       uint32 // observer polls that found the flag down
}

// stats is the live counter block. Handlers run in interrupt context on
// hardware, so every update is a single atomic op.
type stats struct {
	senderEntries   uint32
	receiverEntries uint32
	bytesDrained    uint32
	maxDrain        uint32
	triggerRewrites uint32
	polls           uint32
	idlePolls       uint32
}

func (st *stats) senderEntry()   { atomic.AddUint32(&st.senderEntries, 1) }
func (st *stats) receiverEntry() { atomic.AddUint32(&st.receiverEntries, 1) }

func (st *stats) noteDrain(n int) {
	atomic.AddUint32(&st.bytesDrained, uint32(n))
	for {
		max := atomic.LoadUint32(&st.maxDrain)
		if uint32(n) <= max {
			return
		}
		if atomic.CompareAndSwapUint32(&st.maxDrain, max, uint32(n)) {
			return
		}
	}
}

func (st *stats) triggerRewrite() { atomic.AddUint32(&st.triggerRewrites, 1) }

func (st *stats) poll(idle bool) {
	atomic.AddUint32(&st.polls, 1)
	if idle {
		atomic.AddUint32(&st.idlePolls, 1)
	}
}

// Stats returns a copy of the engine counters.
func (e *Engine) Stats() Stats {
	st := &e.stats
	return Stats{
		SenderEntries:   atomic.LoadUint32(&st.senderEntries),
		ReceiverEntries: atomic.LoadUint32(&st.receiverEntries),
		BytesDrained:    atomic.LoadUint32(&st.bytesDrained),
		MaxDrain:        atomic.LoadUint32(&st.maxDrain),
		TriggerRewrites: atomic.LoadUint32(&st.triggerRewrites),
		Polls:           atomic.LoadUint32(&st.polls),
		IdlePolls:       atomic.LoadUint32(&st.idlePolls),
	}
}

// StatsReset zeroes the engine counters.
func (e *Engine) StatsReset() {
	e.stats = stats{}
}
