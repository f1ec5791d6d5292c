package content

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// TypeSpec describes what the destination tracks for one record type.
type TypeSpec struct {
	Name           string `yaml:"name"`
	TracksModified bool   `yaml:"tracks_modified"`
	TracksOwner    bool   `yaml:"tracks_owner"`
	// Files marks types whose records reference a blob to materialize.
	Files bool `yaml:"files"`
}

type registryFile struct {
	Types []TypeSpec `yaml:"types"`
}

// Registry answers per-type capability questions. Unknown types track nothing.
type Registry struct {
	types map[string]TypeSpec
}

// DefaultRegistry returns the built-in type set.
func DefaultRegistry() *Registry {
	r, _ := NewRegistry([]TypeSpec{
		{Name: "user", TracksModified: true},
		{Name: "taxonomy_term", TracksModified: true},
		{Name: "node", TracksModified: true, TracksOwner: true},
		{Name: "comment", TracksModified: true, TracksOwner: true},
		{Name: "file", TracksModified: true, TracksOwner: true, Files: true},
		{Name: "block"},
	})
	return r
}

// NewRegistry validates specs and builds a registry.
func NewRegistry(specs []TypeSpec) (*Registry, error) {
	r := &Registry{types: make(map[string]TypeSpec, len(specs))}
	for i, s := range specs {
		if s.Name == "" {
			return nil, fmt.Errorf("type #%d has no name", i+1)
		}
		if _, dup := r.types[s.Name]; dup {
			return nil, fmt.Errorf("type %q declared twice", s.Name)
		}
		r.types[s.Name] = s
	}
	return r, nil
}

// ParseRegistry reads a YAML registry document.
func ParseRegistry(data []byte) (*Registry, error) {
	var f registryFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("invalid type registry: %w", err)
	}
	return NewRegistry(f.Types)
}

// LoadRegistry reads the registry at path, or returns DefaultRegistry when path is empty.
func LoadRegistry(path string) (*Registry, error) {
	if path == "" {
		return DefaultRegistry(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read type registry: %w", err)
	}
	return ParseRegistry(data)
}

// Spec returns the spec for typeID and whether it is known.
func (r *Registry) Spec(typeID string) (TypeSpec, bool) {
	s, ok := r.types[typeID]
	return s, ok
}

func (r *Registry) TracksModified(typeID string) bool { return r.types[typeID].TracksModified }
func (r *Registry) TracksOwner(typeID string) bool    { return r.types[typeID].TracksOwner }
func (r *Registry) HasFiles(typeID string) bool       { return r.types[typeID].Files }

// Types returns the registered type names, sorted.
func (r *Registry) Types() []string {
	out := make([]string, 0, len(r.types))
	for name := range r.types {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
