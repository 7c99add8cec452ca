package sim

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bus.yaml")
	require.NoError(t, os.WriteFile(path, []byte("length: 12\ninbound_trigger: 5\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.Length)
	assert.Equal(t, 5, cfg.InboundTrigger)
	// Untouched fields keep the reference defaults.
	assert.Equal(t, 16, cfg.Depth)
	assert.Equal(t, 1, cfg.OutboundMark)
	assert.Equal(t, -1, cfg.CorruptIndex)
}

func TestLoadConfigRejectsBadGeometry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bus.yaml")
	require.NoError(t, os.WriteFile(path, []byte("inbound_trigger: 16\n"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadConfigMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bus.yaml")
	require.NoError(t, os.WriteFile(path, []byte("depth: [oops\n"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}
