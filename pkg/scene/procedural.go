package scene

import (
	"fmt"
	"slices"

	"github.com/df07/go-texture-source/pkg/core"
	"github.com/df07/go-texture-source/pkg/spectrum"
	"github.com/df07/go-texture-source/pkg/texture"
)

type proceduralGenerator func(size int) (*texture.LinearTexture, error)

var proceduralGenerators = map[string]proceduralGenerator{
	"checkerboard": func(size int) (*texture.LinearTexture, error) {
		return texture.NewCheckerboardTexture(size, size, max(1, size/8),
			core.NewColor4(0.9, 0.9, 0.9, 1), // White
			core.NewColor4(0.2, 0.2, 0.8, 1), // Blue
		)
	},
	"gradient": func(size int) (*texture.LinearTexture, error) {
		return texture.NewGradientTexture(size, size,
			core.NewColor4(1.0, 0.2, 0.2, 1), // Red (top)
			core.NewColor4(0.2, 1.0, 0.2, 1), // Green (bottom)
		)
	},
	"uv": func(size int) (*texture.LinearTexture, error) {
		return texture.NewUVDebugTexture(size, size)
	},
	"bricks": func(size int) (*texture.LinearTexture, error) {
		return texture.NewCheckerboardTexture(size, size, max(1, size/32),
			core.NewColor4(0.7, 0.3, 0.1, 1),  // Orange
			core.NewColor4(0.5, 0.2, 0.05, 1), // Dark brown
		)
	},
}

// ProceduralNames lists the available procedural textures, sorted
func ProceduralNames() []string {
	names := make([]string, 0, len(proceduralGenerators))
	for name := range proceduralGenerators {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// NewProceduralScene builds a scene around one generated size×size texture.
// The texture, its instance and a diffuse material using it as reflectance
// all share the generator's name.
func NewProceduralScene(name string, size int, lighting *spectrum.LightingConditions) (*Import, error) {
	generate, ok := proceduralGenerators[name]
	if !ok {
		return nil, fmt.Errorf("unknown procedural texture %q (available: %v)", name, ProceduralNames())
	}
	tex, err := generate(size)
	if err != nil {
		return nil, fmt.Errorf("procedural texture %q: %w", name, err)
	}

	imp, err := newImport(name, NewScene(lighting))
	if err != nil {
		return nil, err
	}
	index, err := imp.Assembly.AddTexture(name, tex)
	if err != nil {
		return nil, err
	}
	if err := imp.Assembly.AddTextureInstance(TextureInstance{
		Name:         name,
		TextureIndex: index,
		Addressing:   texture.AddressWrap,
		Filtering:    texture.FilterBilinear,
		Multiplier:   1,
	}); err != nil {
		return nil, err
	}

	src, err := imp.Scene.BindTextureInstance(imp.Assembly, name)
	if err != nil {
		return nil, err
	}
	mat := NewMaterial(name, "diffuse")
	mat.SetInput("reflectance", src)
	if err := imp.Assembly.AddMaterial(mat); err != nil {
		return nil, err
	}

	imp.Width, imp.Height = size, size
	return imp, nil
}
