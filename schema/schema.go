// Package schema compiles JSON Schema documents into payload validators for
// data chunks and message metadata.
package schema

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fwojciec/uistream"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

const baseURL = "https://uistream.local/schemas/"

// Interface compliance check.
var _ uistream.Schema = (*Schema)(nil)

// Schema is a compiled JSON Schema document.
type Schema struct {
	name     string
	compiled *jsonschema.Schema
}

// Name returns the name the schema was compiled under.
func (s *Schema) Name() string { return s.name }

// Validate checks value, a decoded JSON value, against the schema.
func (s *Schema) Validate(_ context.Context, value any) error {
	if err := s.compiled.Validate(value); err != nil {
		return fmt.Errorf("schema %s: %w", s.name, err)
	}
	return nil
}

// Compile compiles a single JSON Schema document.
func Compile(name string, doc []byte) (*Schema, error) {
	c := jsonschema.NewCompiler()
	url := baseURL + name
	if err := c.AddResource(url, bytes.NewReader(doc)); err != nil {
		return nil, fmt.Errorf("add schema %s: %w", name, err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}
	return &Schema{name: name, compiled: compiled}, nil
}

// Load compiles every file in fsys matching the doublestar pattern. Each
// schema is keyed by its file name without the ".schema.json" or ".json"
// suffix, so "schemas/data-weather.schema.json" validates "data-weather"
// chunks.
func Load(fsys fs.FS, pattern string) (map[string]uistream.Schema, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid glob pattern: %s", pattern)
	}
	var matches []string
	err := doublestar.GlobWalk(fsys, pattern, func(p string, d fs.DirEntry) error {
		if d.IsDir() {
			return nil
		}
		matches = append(matches, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", pattern, err)
	}
	schemas := make(map[string]uistream.Schema, len(matches))
	for _, m := range matches {
		name := Name(m)
		if _, dup := schemas[name]; dup {
			return nil, fmt.Errorf("duplicate schema %q (%s)", name, m)
		}
		doc, err := fs.ReadFile(fsys, m)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", m, err)
		}
		s, err := Compile(name, doc)
		if err != nil {
			return nil, err
		}
		schemas[name] = s
	}
	return schemas, nil
}

// Name derives a schema name from a file path.
func Name(file string) string {
	base := path.Base(file)
	if trimmed, ok := strings.CutSuffix(base, ".schema.json"); ok {
		return trimmed
	}
	return strings.TrimSuffix(base, ".json")
}
