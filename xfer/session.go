package xfer

import (
	"sync/atomic"

	"github.com/pkg/errors"
)

// Session is one fixed-length transmit/receive cycle. The sender handler owns
// sent, the receiver handler owns recvd/received/completed, and the observer
// owns source and the reset of the done flag. done is the only value shared
// across the interrupt/observer boundary; storing it publishes the receiver's
// writes to received, so the observer may read the buffer only after seeing
// done set.
type Session struct {
	source   []byte
	received []byte

	sent  int // sender-owned
	recvd int // receiver-owned

	// completed is the receiver's private exactly-once latch; done is the
	// cross-context flag the observer polls and clears.
	completed bool
	done      atomic.Bool
}

// NewSession allocates a session of the given length with the deterministic
// test vector source[i] = i.
func NewSession(length int) (*Session, error) {
	if length <= 0 {
		return nil, errors.Errorf("session length must be positive, got %d", length)
	}
	if length > 256 {
		return nil, errors.Errorf("session length %d exceeds byte test vector range", length)
	}
	s := &Session{
		source:   make([]byte, length),
		received: make([]byte, length),
	}
	for i := range s.source {
		s.source[i] = byte(i)
	}
	return s, nil
}

// Total returns the fixed transfer length.
func (s *Session) Total() int { return len(s.source) }

// Sent returns how many bytes the sender has queued so far.
func (s *Session) Sent() int { return s.sent }

// Received returns how many bytes the receiver has drained so far.
func (s *Session) Received() int { return s.recvd }

// Complete reports whether the completion flag is currently set.
func (s *Session) Complete() bool { return s.done.Load() }

// Source returns the source sequence. Callers must not mutate it mid-session.
func (s *Session) Source() []byte { return s.source }

// ReceivedBytes returns the receive buffer. Valid to read in full only after
// Complete has been observed true.
func (s *Session) ReceivedBytes() []byte { return s.received }

// Reset prepares the session for re-arming: counts zeroed, buffers cleared,
// flag down. Must not be called while a transfer is in flight.
func (s *Session) Reset() {
	s.sent = 0
	s.recvd = 0
	s.completed = false
	s.done.Store(false)
	clear(s.received)
}
