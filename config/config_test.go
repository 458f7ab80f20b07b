package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-irvm/irvm/config"
)

func TestDefault(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, uint64(1_000_000), cfg.Execution.MaxInstructions)
	assert.Equal(t, 1000, cfg.Execution.StackDepth)
	assert.False(t, cfg.Trace.Enabled)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoadOverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "irvm.toml")
	body := "[execution]\nmax_instructions = 42\n\n[trace]\nenabled = true\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), cfg.Execution.MaxInstructions)
	assert.True(t, cfg.Trace.Enabled)
	assert.Equal(t, 1000, cfg.Execution.StackDepth, "fields absent from the file keep their default")
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.toml")
	require.NoError(t, os.WriteFile(path, []byte("not valid toml === ["), 0644))

	_, err := config.Load(path)
	assert.Error(t, err)
}
