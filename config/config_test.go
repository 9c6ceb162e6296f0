package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "anthropic", cfg.Provider)
	assert.Equal(t, 4, cfg.Workers)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"provider: openai\nworkers: 8\ntarget_per_persona: 10\noutput_dir: /tmp/out\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "openai", cfg.Provider)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, 10, cfg.TargetPerPersona)
	// Unset fields keep their defaults.
	assert.Equal(t, 3, cfg.MaxPlacementRetries)
}

func TestLoad_InvalidProvider(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("provider: llama-at-home\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown provider")
}

func TestValidate(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.Validate())

	bad := cfg
	bad.Workers = 0
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.OutputDir = ""
	assert.Error(t, bad.Validate())
}
