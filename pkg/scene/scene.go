package scene

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"sync"

	"github.com/df07/go-texture-source/pkg/core"
	"github.com/df07/go-texture-source/pkg/material"
	"github.com/df07/go-texture-source/pkg/spectrum"
	"github.com/df07/go-texture-source/pkg/texture"
)

var (
	// ErrUnknownTextureInstance is returned when an assembly has no texture instance of a name
	ErrUnknownTextureInstance = errors.New("scene: unknown texture instance")

	// ErrUnknownAssembly is returned when a scene has no assembly of a name or identity
	ErrUnknownAssembly = errors.New("scene: unknown assembly")

	// ErrDuplicateName is returned when an entity name is already taken in its namespace
	ErrDuplicateName = errors.New("scene: duplicate name")

	// ErrInvalidTextureInstance is returned when a texture instance fails validation
	ErrInvalidTextureInstance = errors.New("scene: invalid texture instance")
)

// TextureInstance binds a texture of an assembly to sampling parameters
type TextureInstance struct {
	Name         string
	TextureIndex int
	Addressing   texture.AddressingMode
	Filtering    texture.FilteringMode
	Multiplier   float32
}

// Assembly owns textures, the texture instances referring to them and the
// materials using those instances. Textures are addressed by their index in
// insertion order; the assembly's unique id is the owner identity under which
// the texel cache stores their tiles.
//
// An assembly is built single-threaded and read concurrently afterwards.
type Assembly struct {
	name string
	uid  core.UniqueID

	textures     []texture.Texture
	textureNames []string

	instances     map[string]TextureInstance
	instanceOrder []string

	materials     map[string]*Material
	materialOrder []string
}

// NewAssembly creates an empty assembly with a fresh unique id
func NewAssembly(name string) *Assembly {
	return &Assembly{
		name:      name,
		uid:       core.NewUniqueID(),
		instances: make(map[string]TextureInstance),
		materials: make(map[string]*Material),
	}
}

// Name returns the assembly name
func (a *Assembly) Name() string { return a.name }

// UID returns the owner identity of the assembly's textures
func (a *Assembly) UID() core.UniqueID { return a.uid }

// AddTexture appends a texture and returns its index
func (a *Assembly) AddTexture(name string, tex texture.Texture) (int, error) {
	if tex == nil {
		return 0, fmt.Errorf("assembly %q: texture %q is nil", a.name, name)
	}
	if slices.Contains(a.textureNames, name) {
		return 0, fmt.Errorf("%w: texture %q in assembly %q", ErrDuplicateName, name, a.name)
	}
	a.textures = append(a.textures, tex)
	a.textureNames = append(a.textureNames, name)
	return len(a.textures) - 1, nil
}

// TextureIndex returns the index of the texture called name
func (a *Assembly) TextureIndex(name string) (int, bool) {
	i := slices.Index(a.textureNames, name)
	return i, i >= 0
}

// TextureCount returns how many textures the assembly owns
func (a *Assembly) TextureCount() int { return len(a.textures) }

// AddTextureInstance validates and registers a texture instance
func (a *Assembly) AddTextureInstance(inst TextureInstance) error {
	if inst.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidTextureInstance)
	}
	if _, exists := a.instances[inst.Name]; exists {
		return fmt.Errorf("%w: texture instance %q in assembly %q", ErrDuplicateName, inst.Name, a.name)
	}
	if inst.TextureIndex < 0 || inst.TextureIndex >= len(a.textures) {
		return fmt.Errorf("%w: %q refers to texture %d, assembly %q has %d",
			ErrInvalidTextureInstance, inst.Name, inst.TextureIndex, a.name, len(a.textures))
	}
	m := float64(inst.Multiplier)
	if math.IsNaN(m) || math.IsInf(m, 0) || m < 0 {
		return fmt.Errorf("%w: %q has multiplier %v", ErrInvalidTextureInstance, inst.Name, inst.Multiplier)
	}
	a.instances[inst.Name] = inst
	a.instanceOrder = append(a.instanceOrder, inst.Name)
	return nil
}

// TextureInstance returns the texture instance called name
func (a *Assembly) TextureInstance(name string) (TextureInstance, bool) {
	inst, ok := a.instances[name]
	return inst, ok
}

// TextureInstanceNames returns instance names in insertion order
func (a *Assembly) TextureInstanceNames() []string {
	return slices.Clone(a.instanceOrder)
}

// AddMaterial registers a material
func (a *Assembly) AddMaterial(m *Material) error {
	if m == nil || m.Name == "" {
		return fmt.Errorf("assembly %q: material must have a name", a.name)
	}
	if _, exists := a.materials[m.Name]; exists {
		return fmt.Errorf("%w: material %q in assembly %q", ErrDuplicateName, m.Name, a.name)
	}
	a.materials[m.Name] = m
	a.materialOrder = append(a.materialOrder, m.Name)
	return nil
}

// Material returns the material called name
func (a *Assembly) Material(name string) (*Material, bool) {
	m, ok := a.materials[name]
	return m, ok
}

// MaterialNames returns material names in insertion order
func (a *Assembly) MaterialNames() []string {
	return slices.Clone(a.materialOrder)
}

// Scene is a registry of assemblies sharing one set of lighting conditions.
// It resolves (owner, texture index) pairs for the texel cache.
type Scene struct {
	mu         sync.RWMutex
	assemblies map[core.UniqueID]*Assembly
	order      []*Assembly
	lighting   *spectrum.LightingConditions
}

// NewScene creates an empty scene. Nil lighting selects the default conditions.
func NewScene(lighting *spectrum.LightingConditions) *Scene {
	if lighting == nil {
		lighting = spectrum.DefaultLightingConditions()
	}
	return &Scene{
		assemblies: make(map[core.UniqueID]*Assembly),
		lighting:   lighting,
	}
}

// Lighting returns the lighting conditions used for spectral conversion
func (s *Scene) Lighting() *spectrum.LightingConditions { return s.lighting }

// AddAssembly registers an assembly; names must be unique within the scene
func (s *Scene) AddAssembly(a *Assembly) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.order {
		if existing.name == a.name {
			return fmt.Errorf("%w: assembly %q", ErrDuplicateName, a.name)
		}
	}
	s.assemblies[a.uid] = a
	s.order = append(s.order, a)
	return nil
}

// Assembly returns the assembly called name
func (s *Scene) Assembly(name string) (*Assembly, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.order {
		if a.name == name {
			return a, true
		}
	}
	return nil, false
}

// Assemblies returns all assemblies in insertion order
func (s *Scene) Assemblies() []*Assembly {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.order)
}

// ResolveTexture returns texture index of the assembly identified by owner
func (s *Scene) ResolveTexture(owner core.UniqueID, index int) (texture.Texture, error) {
	s.mu.RLock()
	a, ok := s.assemblies[owner]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: owner %d is not an assembly of this scene", texture.ErrTextureNotFound, owner)
	}
	if index < 0 || index >= len(a.textures) {
		return nil, fmt.Errorf("%w: assembly %q has no texture %d", texture.ErrTextureNotFound, a.name, index)
	}
	return a.textures[index], nil
}

// BindTextureInstance creates a texture source for the named texture instance of a
func (s *Scene) BindTextureInstance(a *Assembly, name string) (*material.TextureSource, error) {
	inst, ok := a.TextureInstance(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q in assembly %q", ErrUnknownTextureInstance, name, a.name)
	}
	tex, err := s.ResolveTexture(a.uid, inst.TextureIndex)
	if err != nil {
		return nil, err
	}

	src, err := material.NewTextureSource(a.uid, s, material.TextureBinding{
		TextureIndex:   inst.TextureIndex,
		AddressingMode: inst.Addressing,
		FilteringMode:  inst.Filtering,
		Multiplier:     inst.Multiplier,
	}, tex.Properties(), s.lighting)
	if err != nil {
		return nil, fmt.Errorf("binding texture instance %q: %w", name, err)
	}

	core.Logger().Debug("bound texture instance", "assembly", a.name, "instance", name, "texture", inst.TextureIndex)
	return src, nil
}
