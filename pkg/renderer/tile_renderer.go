package renderer

import (
	"image"

	"github.com/df07/go-texture-source/pkg/core"
	"github.com/df07/go-texture-source/pkg/material"
	"github.com/df07/go-texture-source/pkg/spectrum"
	"github.com/df07/go-texture-source/pkg/texture"
)

// TileRenderer evaluates a source over the pixels of individual tiles
type TileRenderer struct {
	source   material.Source
	cache    texture.TexelCache
	lighting *spectrum.LightingConditions
	config   BakeConfig
}

// NewTileRenderer creates a tile renderer for the given source and configuration
func NewTileRenderer(source material.Source, cache texture.TexelCache, lighting *spectrum.LightingConditions, config BakeConfig) *TileRenderer {
	return &TileRenderer{
		source:   source,
		cache:    cache,
		lighting: lighting,
		config:   config,
	}
}

// RenderTileBounds evaluates every pixel within bounds into pixels, a
// row-major width×height buffer. Tiles never overlap, so concurrent calls
// with different bounds may share the buffer.
func (tr *TileRenderer) RenderTileBounds(bounds image.Rectangle, pixels []core.Color4) error {
	for j := bounds.Min.Y; j < bounds.Max.Y; j++ {
		for i := bounds.Min.X; i < bounds.Max.X; i++ {
			color, err := tr.evaluate(tr.samplePoint(i, j))
			if err != nil {
				return err
			}
			pixels[j*tr.config.Width+i] = color
		}
	}
	return nil
}

// samplePoint returns the UV coordinates at the center of pixel (i, j)
func (tr *TileRenderer) samplePoint(i, j int) material.InputParams {
	u := (float64(i) + 0.5) / float64(tr.config.Width) * tr.config.Repeat
	v := (float64(j) + 0.5) / float64(tr.config.Height) * tr.config.Repeat
	return material.NewInputParams(u, v)
}

// evaluate returns the linear RGBA preview of the source at params
func (tr *TileRenderer) evaluate(params material.InputParams) (core.Color4, error) {
	switch tr.config.Mode {
	case ModeScalar:
		v, err := tr.source.EvaluateScalar(tr.cache, params)
		if err != nil {
			return core.Color4{}, err
		}
		g := float32(v)
		return core.NewColor4(g, g, g, 1), nil
	case ModeSpectral:
		spec, alpha, err := tr.source.EvaluateSpectrum(tr.cache, params)
		if err != nil {
			return core.Color4{}, err
		}
		rgb := spectrum.SpectrumToLinearRGB(tr.lighting, spec)
		return core.NewColor4(rgb.R, rgb.G, rgb.B, alpha), nil
	default:
		rgb, alpha, err := tr.source.EvaluateRGB(tr.cache, params)
		if err != nil {
			return core.Color4{}, err
		}
		return core.NewColor4(rgb.R, rgb.G, rgb.B, alpha), nil
	}
}
