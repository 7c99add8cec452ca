package xfer

import (
	"context"
	"runtime"
)

// Verdict is the outcome of one verified session.
type Verdict struct {
	// Mismatches lists the indices where received differed from source.
	Mismatches []int
	// Total is the number of bytes compared.
	Total int
}

// Pass reports whether every compared byte matched.
func (v Verdict) Pass() bool { return len(v.Mismatches) == 0 }

// Observer is the non-interrupt side of a session: it polls the completion
// flag, verifies received against source byte by byte, drives the indicator,
// and clears the flag so a re-armed session is not misread as complete.
type Observer struct {
	session   *Session
	indicator Indicator
	stats     *stats

	// yield runs between idle polls; tests replace it to step a simulated bus
	// instead of spinning.
	yield func()
}

// Observer returns an observer for the engine's session. The indicator may be
// nil.
func (e *Engine) Observer(ind Indicator) *Observer {
	return &Observer{
		session:   e.session,
		indicator: ind,
		stats:     &e.stats,
		yield:     runtime.Gosched,
	}
}

// SetYield replaces the between-polls yield hook used by Run.
func (o *Observer) SetYield(fn func()) {
	if fn != nil {
		o.yield = fn
	}
}

// Poll performs one non-blocking check of the completion flag. While the flag
// is down it mutates nothing and reports ok=false. Once the flag is observed
// up, it compares every byte, drives the indicator per byte, clears the flag,
// and returns the verdict with ok=true.
func (o *Observer) Poll() (Verdict, bool) {
	s := o.session
	if !s.done.Load() {
		o.stats.poll(true)
		return Verdict{}, false
	}
	o.stats.poll(false)

	v := Verdict{Total: len(s.source)}
	for i := range s.source {
		ok := s.source[i] == s.received[i]
		if o.indicator != nil {
			o.indicator.Set(ok)
		}
		if !ok {
			v.Mismatches = append(v.Mismatches, i)
		}
	}
	s.done.Store(false)
	return v, true
}

// Run polls until the session completes or ctx ends, yielding between idle
// polls.
func (o *Observer) Run(ctx context.Context) (Verdict, error) {
	for {
		if v, ok := o.Poll(); ok {
			return v, nil
		}
		select {
		case <-ctx.Done():
			return Verdict{}, ctx.Err()
		default:
		}
		o.yield()
	}
}
