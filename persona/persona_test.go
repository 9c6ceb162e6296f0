package persona

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/probelab/recallbench/core"
)

const personaYAML = `personas:
  - id: p1
    role_name: botanist
    description: a meticulous orchid grower
    background: runs a small greenhouse
  - id: p2
    role_name: marathoner
    description: an amateur long-distance runner
    background: training for a first marathon
`

func TestFileSource_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "personas.yaml")
	require.NoError(t, os.WriteFile(path, []byte(personaYAML), 0o644))

	personas, err := NewFileSource(path).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, personas, 2)
	assert.Equal(t, "p1", personas[0].ID)
	assert.Equal(t, "marathoner", personas[1].RoleName)
}

func TestFileSource_MissingFile(t *testing.T) {
	_, err := NewFileSource("/nonexistent/personas.yaml").Load(context.Background())
	assert.Error(t, err)
}

func TestFileSource_EmptyPersonas(t *testing.T) {
	path := filepath.Join(t.TempDir(), "personas.yaml")
	require.NoError(t, os.WriteFile(path, []byte("personas: []"), 0o644))

	_, err := NewFileSource(path).Load(context.Background())
	assert.Error(t, err)
}

func TestFileSource_MissingID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "personas.yaml")
	require.NoError(t, os.WriteFile(path, []byte("personas:\n  - role_name: ghost"), 0o644))

	_, err := NewFileSource(path).Load(context.Background())
	assert.Error(t, err)
}

func TestStaticSource_Load(t *testing.T) {
	src := NewStaticSource(core.Persona{ID: "p1"}, core.Persona{ID: "p2"})

	personas, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, personas, 2)

	// Mutating the result must not affect the source.
	personas[0].ID = "mutated"
	again, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "p1", again[0].ID)
}
