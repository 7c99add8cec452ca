package sim

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config describes one simulated loopback setup. Defaults reproduce the
// reference board: 9 bytes through 16-deep FIFOs with the inbound level at 7
// and the outbound mark at 1.
type Config struct {
	// Depth is the hardware FIFO depth on both sides.
	Depth int `yaml:"depth"`
	// OutboundMark is the TX low-water mark; the space event holds while
	// occupancy is at or below it.
	OutboundMark int `yaml:"outbound_mark"`
	// InboundTrigger is the initial RX level; the level event holds while
	// occupancy exceeds it.
	InboundTrigger int `yaml:"inbound_trigger"`
	// Length is the transfer length in bytes.
	Length int `yaml:"length"`

	// CorruptIndex flips CorruptMask into the byte at this wire position;
	// -1 disables injection.
	CorruptIndex int  `yaml:"corrupt_index"`
	CorruptMask  byte `yaml:"corrupt_mask"`
}

// DefaultConfig returns the reference setup.
func DefaultConfig() Config {
	return Config{
		Depth:          16,
		OutboundMark:   1,
		InboundTrigger: 7,
		Length:         9,
		CorruptIndex:   -1,
		CorruptMask:    0x01,
	}
}

// LoadConfig reads a YAML config file over the defaults, so a file needs to
// name only the fields it changes.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "read config")
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, errors.Wrap(err, "parse config")
	}
	if err := cfg.Validate(); err != nil {
		return cfg, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Validate checks the geometry.
func (c Config) Validate() error {
	if c.Depth < 2 {
		return errors.Errorf("depth must be at least 2, got %d", c.Depth)
	}
	if c.OutboundMark < 0 || c.OutboundMark > c.Depth-1 {
		return errors.Errorf("outbound mark %d out of range 0..%d", c.OutboundMark, c.Depth-1)
	}
	if c.InboundTrigger < 0 || c.InboundTrigger > c.Depth-1 {
		return errors.Errorf("inbound trigger %d out of range 0..%d", c.InboundTrigger, c.Depth-1)
	}
	if c.Length <= 0 {
		return errors.Errorf("length must be positive, got %d", c.Length)
	}
	if c.CorruptIndex < -1 {
		return errors.Errorf("corrupt index %d invalid; use -1 to disable", c.CorruptIndex)
	}
	return nil
}
