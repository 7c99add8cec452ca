package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jangala-dev/fifoxfer/xfer"
)

func newTestBus(t *testing.T, mutate func(*Config)) *Bus {
	t.Helper()
	cfg := DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	b, err := NewBus(cfg)
	require.NoError(t, err)
	return b
}

func TestStepRequiresStart(t *testing.T) {
	b := newTestBus(t, nil)
	b.Enqueue(0xAA)
	assert.False(t, b.Step(), "wire must not move before Start")

	b.Start()
	assert.True(t, b.Step())
	assert.Equal(t, 1, b.Moved())
	_, rx := b.Occupancy()
	assert.Equal(t, 1, rx)
	assert.Equal(t, byte(0xAA), b.Dequeue())
}

func TestStepCorruptsConfiguredIndex(t *testing.T) {
	b := newTestBus(t, func(c *Config) {
		c.CorruptIndex = 1
		c.CorruptMask = 0x01
	})
	b.Start()
	for _, v := range []byte{0x10, 0x20, 0x30} {
		b.Enqueue(v)
		require.True(t, b.Step())
	}
	assert.Equal(t, byte(0x10), b.Dequeue())
	assert.Equal(t, byte(0x21), b.Dequeue(), "second wire byte carries the flipped bit")
	assert.Equal(t, byte(0x30), b.Dequeue())
}

func TestOverrunCountsDroppedBytes(t *testing.T) {
	b := newTestBus(t, func(c *Config) {
		c.Depth = 4
		c.InboundTrigger = 3
	})
	b.Start()
	for i := 0; i < 4; i++ {
		b.Enqueue(byte(i))
		require.True(t, b.Step())
	}
	// RX now full; the next wire byte is lost.
	b.Enqueue(0xFF)
	require.True(t, b.Step())
	assert.Equal(t, 1, b.Overruns())
	_, rx := b.Occupancy()
	assert.Equal(t, 4, rx)
}

func TestInboundPendingExceedsTrigger(t *testing.T) {
	b := newTestBus(t, nil) // trigger 7
	b.Start()
	b.Enable(xfer.LineInbound)

	for i := 0; i < 7; i++ {
		b.Enqueue(byte(i))
		require.True(t, b.Step())
	}
	assert.False(t, b.Pending(xfer.LineInbound), "level 7 does not exceed trigger 7")

	b.Enqueue(7)
	require.True(t, b.Step())
	assert.True(t, b.Pending(xfer.LineInbound))

	b.SetInboundTrigger(0)
	assert.True(t, b.Pending(xfer.LineInbound))
	b.Disable(xfer.LineInbound)
	assert.False(t, b.Pending(xfer.LineInbound))
}

func TestOutboundPendingNeedsEventAndLine(t *testing.T) {
	b := newTestBus(t, nil) // mark 1
	b.Start()
	assert.False(t, b.Pending(xfer.LineOutbound), "line disabled")

	b.Enable(xfer.LineOutbound)
	assert.False(t, b.Pending(xfer.LineOutbound), "event source disabled")

	b.EnableOutboundEvent()
	assert.True(t, b.Pending(xfer.LineOutbound), "empty TX is at the mark")

	b.Enqueue(1)
	b.Enqueue(2)
	assert.False(t, b.Pending(xfer.LineOutbound), "occupancy above the mark")

	b.DisableOutboundEvent()
	assert.False(t, b.Pending(xfer.LineOutbound))
}

func TestDispatchServesLowerPriorityValueFirst(t *testing.T) {
	b := newTestBus(t, nil)
	b.Start()
	b.Enable(xfer.LineOutbound)
	b.Enable(xfer.LineInbound)
	b.EnableOutboundEvent()
	b.SetPriority(xfer.LineOutbound, 63)
	b.SetPriority(xfer.LineInbound, 62)
	b.SetInboundTrigger(0)

	// Both lines pending: TX empty, one byte waiting in RX.
	b.Enqueue(0x55)
	require.True(t, b.Step())

	var order []xfer.Line
	b.Bind(xfer.LineOutbound, func() {
		order = append(order, xfer.LineOutbound)
		b.DisableOutboundEvent()
	})
	b.Bind(xfer.LineInbound, func() {
		order = append(order, xfer.LineInbound)
		b.Dequeue()
	})

	require.True(t, b.DispatchPending())
	assert.Equal(t, []xfer.Line{xfer.LineInbound, xfer.LineOutbound}, order)
}

func TestRunToIdleBudget(t *testing.T) {
	b := newTestBus(t, nil)
	b.Start()
	b.Enable(xfer.LineOutbound)
	b.EnableOutboundEvent()
	// A handler that refills one byte per entry keeps the bus busy forever:
	// each wire step drains what the handler pushed.
	b.Bind(xfer.LineOutbound, func() { b.Enqueue(0x00) })

	assert.Error(t, b.RunToIdle(10))
}

func TestRunToIdleQuiescesWithoutHandlers(t *testing.T) {
	b := newTestBus(t, nil)
	b.Start()
	b.Enqueue(1)
	b.Enqueue(2)
	require.NoError(t, b.RunToIdle(100))
	_, rx := b.Occupancy()
	assert.Equal(t, 2, rx)
	assert.Equal(t, 2, b.Moved())
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", nil, true},
		{"depth too small", func(c *Config) { c.Depth = 1 }, false},
		{"trigger at depth", func(c *Config) { c.InboundTrigger = c.Depth }, false},
		{"trigger at depth-1", func(c *Config) { c.InboundTrigger = c.Depth - 1 }, true},
		{"negative mark", func(c *Config) { c.OutboundMark = -1 }, false},
		{"zero length", func(c *Config) { c.Length = 0 }, false},
		{"corrupt index -2", func(c *Config) { c.CorruptIndex = -2 }, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			if tc.mutate != nil {
				tc.mutate(&cfg)
			}
			err := cfg.Validate()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
