package scene

import (
	"maps"
	"slices"

	"github.com/df07/go-texture-source/pkg/material"
)

// Material names a shading model and the sources feeding its inputs
type Material struct {
	Name   string
	Model  string // e.g. "diffuse", "conductor", "pbr"
	Inputs map[string]material.Source
}

// NewMaterial creates a material without inputs
func NewMaterial(name, model string) *Material {
	return &Material{
		Name:   name,
		Model:  model,
		Inputs: make(map[string]material.Source),
	}
}

// SetInput binds an input to a source, replacing any previous binding
func (m *Material) SetInput(name string, src material.Source) {
	m.Inputs[name] = src
}

// Input returns the source bound to an input
func (m *Material) Input(name string) (material.Source, bool) {
	src, ok := m.Inputs[name]
	return src, ok
}

// InputNames returns the bound input names, sorted
func (m *Material) InputNames() []string {
	return slices.Sorted(maps.Keys(m.Inputs))
}
