package scene

import (
	"path/filepath"
	"strings"

	"github.com/df07/go-texture-source/pkg/loaders"
	"github.com/df07/go-texture-source/pkg/spectrum"
	"github.com/df07/go-texture-source/pkg/texture"
)

// NewImageScene builds a scene around one image file decoded in colorSpace.
// The texture and its wrapping, bilinear instance are named after the file.
func NewImageScene(filename string, colorSpace texture.ColorSpace, lighting *spectrum.LightingConditions) (*Import, error) {
	tex, err := loaders.LoadImage(filename, colorSpace)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
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

	props := tex.Properties()
	imp.Width, imp.Height = props.Width, props.Height
	return imp, nil
}
