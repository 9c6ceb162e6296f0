// Package persona provides sources for the simulated users benchmark
// scenarios are generated for. The Persona type itself lives in core; this
// package only knows how to load personas from YAML files or serve a fixed
// set for tests and diagnostic runs.
package persona

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/probelab/recallbench/core"
)

// Source yields the personas a generation run covers.
type Source interface {
	Load(ctx context.Context) ([]core.Persona, error)
}

// FileSource loads personas from a YAML file of the form:
//
//	personas:
//	  - id: p1
//	    role_name: botanist
//	    description: ...
//	    background: ...
type FileSource struct {
	Path string
}

// NewFileSource creates a source reading the given YAML file.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

// Load implements Source.
func (s *FileSource) Load(ctx context.Context) ([]core.Persona, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read personas file: %w", err)
	}

	var doc struct {
		Personas []core.Persona `yaml:"personas"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse personas file: %w", err)
	}

	if len(doc.Personas) == 0 {
		return nil, fmt.Errorf("personas file %s contains no personas", s.Path)
	}
	for i, p := range doc.Personas {
		if p.ID == "" {
			return nil, fmt.Errorf("persona %d has no id", i)
		}
	}

	return doc.Personas, nil
}

// StaticSource serves a fixed persona slice.
type StaticSource struct {
	Personas []core.Persona
}

// NewStaticSource creates a source over the given personas.
func NewStaticSource(personas ...core.Persona) *StaticSource {
	return &StaticSource{Personas: personas}
}

// Load implements Source.
func (s *StaticSource) Load(ctx context.Context) ([]core.Persona, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]core.Persona, len(s.Personas))
	copy(out, s.Personas)
	return out, nil
}
