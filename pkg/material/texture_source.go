package material

import (
	"errors"
	"fmt"
	"math"

	"github.com/df07/go-texture-source/pkg/core"
	"github.com/df07/go-texture-source/pkg/spectrum"
	"github.com/df07/go-texture-source/pkg/texture"
)

var (
	// ErrPropertiesMismatch is returned when the supplied canvas properties do
	// not describe the texture the index resolves to
	ErrPropertiesMismatch = errors.New("texture source: canvas properties do not match texture")

	// ErrInvalidMultiplier is returned for negative or non-finite multipliers
	ErrInvalidMultiplier = errors.New("texture source: multiplier must be finite and non-negative")
)

// TextureBinding selects a texture of the owner and how to sample it
type TextureBinding struct {
	TextureIndex   int
	AddressingMode texture.AddressingMode
	FilteringMode  texture.FilteringMode
	Multiplier     float32
}

// TextureSource provides values sampled from a texture. It is immutable after
// construction and holds no locks; all mutable state lives in the texel cache
// passed to each evaluation.
type TextureSource struct {
	owner          core.UniqueID
	textureIndex   int
	addressingMode texture.AddressingMode
	filteringMode  texture.FilteringMode
	multiplier     float32
	lighting       *spectrum.LightingConditions
	props          texture.CanvasProperties

	width  float64
	height float64
	maxX   int
	maxY   int
}

// NewTextureSource creates a source sampling texture binding.TextureIndex of owner.
// The index must resolve through resolver to a loaded texture whose canvas
// properties equal props.
func NewTextureSource(
	owner core.UniqueID,
	resolver texture.TextureResolver,
	binding TextureBinding,
	props texture.CanvasProperties,
	lighting *spectrum.LightingConditions,
) (*TextureSource, error) {
	if err := props.Validate(); err != nil {
		return nil, fmt.Errorf("texture source: %w", err)
	}
	m := float64(binding.Multiplier)
	if math.IsNaN(m) || math.IsInf(m, 0) || m < 0 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidMultiplier, binding.Multiplier)
	}
	if lighting == nil {
		return nil, fmt.Errorf("texture source: lighting conditions are required")
	}

	tex, err := resolver.ResolveTexture(owner, binding.TextureIndex)
	if err != nil {
		return nil, fmt.Errorf("texture source: %w", err)
	}
	if tex.Properties() != props {
		return nil, fmt.Errorf("%w: texture %d is %+v, source given %+v",
			ErrPropertiesMismatch, binding.TextureIndex, tex.Properties(), props)
	}

	core.Logger().Debug("texture source created",
		"owner", uint64(owner), "texture", binding.TextureIndex,
		"addressing", binding.AddressingMode.String(), "filtering", binding.FilteringMode.String(),
		"multiplier", binding.Multiplier, "width", props.Width, "height", props.Height)

	return &TextureSource{
		owner:          owner,
		textureIndex:   binding.TextureIndex,
		addressingMode: binding.AddressingMode,
		filteringMode:  binding.FilteringMode,
		multiplier:     binding.Multiplier,
		lighting:       lighting,
		props:          props,
		width:          float64(props.Width),
		height:         float64(props.Height),
		maxX:           props.Width - 1,
		maxY:           props.Height - 1,
	}, nil
}

// Properties returns the canvas properties captured at construction
func (s *TextureSource) Properties() texture.CanvasProperties {
	return s.props
}

// Binding returns the texture binding the source was built from
func (s *TextureSource) Binding() TextureBinding {
	return TextureBinding{
		TextureIndex:   s.textureIndex,
		AddressingMode: s.addressingMode,
		FilteringMode:  s.filteringMode,
		Multiplier:     s.multiplier,
	}
}

// EvaluateScalar returns the red channel of the sampled texture times the multiplier
func (s *TextureSource) EvaluateScalar(cache texture.TexelCache, params InputParams) (float64, error) {
	color, err := s.sampleTexture(cache, params)
	if err != nil {
		return 0, err
	}
	return float64(color.R * s.multiplier), nil
}

// EvaluateRGB returns the sampled linear RGB times the multiplier, and the raw alpha
func (s *TextureSource) EvaluateRGB(cache texture.TexelCache, params InputParams) (core.Color3, float32, error) {
	color, err := s.sampleTexture(cache, params)
	if err != nil {
		return core.Color3{}, 0, err
	}
	return color.RGB().Multiply(s.multiplier), color.A, nil
}

// EvaluateSpectrum returns the spectral upsampling of the sampled color times
// the multiplier, and the raw alpha
func (s *TextureSource) EvaluateSpectrum(cache texture.TexelCache, params InputParams) (spectrum.Spectrum, float32, error) {
	color, err := s.sampleTexture(cache, params)
	if err != nil {
		return spectrum.Spectrum{}, 0, err
	}
	spec := spectrum.LinearRGBToSpectrum(s.lighting, color.RGB())
	return spec.Multiply(s.multiplier), color.A, nil
}

func (*TextureSource) isSource() {}

// sampleTexture returns the filtered, unscaled linear RGBA color at params.UV
func (s *TextureSource) sampleTexture(cache texture.TexelCache, params InputParams) (core.Color4, error) {
	x := s.foldCoordinate(params.UV.X*s.width, s.width)
	y := s.foldCoordinate(params.UV.Y*s.height, s.height)

	if s.filteringMode == texture.FilterNearest {
		return s.getTexel(cache, int(math.Floor(x)), int(math.Floor(y)))
	}

	// Texel centers sit at half-integer coordinates
	x -= 0.5
	y -= 0.5
	x0 := math.Floor(x)
	y0 := math.Floor(y)
	fx := float32(x - x0)
	fy := float32(y - y0)

	t00, t10, t01, t11, err := s.getTexels2x2(cache, int(x0), int(y0))
	if err != nil {
		return core.Color4{}, err
	}

	top := core.Lerp4(t00, t10, fx)
	bottom := core.Lerp4(t01, t11, fx)
	return core.Lerp4(top, bottom, fy), nil
}

// foldCoordinate brings a pixel-space coordinate into a small range around
// [0, extent) before it is converted to an integer. Wrap reduces by whole
// periods, which leaves the texel and the fractional weight unchanged; Clamp
// saturates one texel beyond each edge. Non-finite input maps to 0.
func (s *TextureSource) foldCoordinate(c, extent float64) float64 {
	if math.IsNaN(c) || math.IsInf(c, 0) {
		return 0
	}
	if s.addressingMode == texture.AddressClamp {
		return max(-1, min(extent+1, c))
	}
	c = math.Mod(c, extent)
	if c < 0 {
		c += extent
	}
	return c
}

// address maps integer texel coordinates into the canvas
func (s *TextureSource) address(ix, iy int) (int, int) {
	if s.addressingMode == texture.AddressClamp {
		return max(0, min(s.maxX, ix)), max(0, min(s.maxY, iy))
	}
	return wrap(ix, s.props.Width), wrap(iy, s.props.Height)
}

func wrap(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

// getTexel returns the linear RGBA texel at (ix, iy) after addressing
func (s *TextureSource) getTexel(cache texture.TexelCache, ix, iy int) (core.Color4, error) {
	ax, ay := s.address(ix, iy)
	texel, err := cache.FetchTexel(s.owner, s.textureIndex, ax, ay)
	if err != nil {
		return core.Color4{}, fmt.Errorf("texture source (owner %d, texture %d): %w", s.owner, s.textureIndex, err)
	}
	return texel, nil
}

// getTexels2x2 returns the texels at (ix, iy), (ix+1, iy), (ix, iy+1) and
// (ix+1, iy+1). Each corner is addressed on its own so neighbors across a
// border wrap or clamp correctly.
func (s *TextureSource) getTexels2x2(cache texture.TexelCache, ix, iy int) (t00, t10, t01, t11 core.Color4, err error) {
	if t00, err = s.getTexel(cache, ix, iy); err != nil {
		return
	}
	if t10, err = s.getTexel(cache, ix+1, iy); err != nil {
		return
	}
	if t01, err = s.getTexel(cache, ix, iy+1); err != nil {
		return
	}
	t11, err = s.getTexel(cache, ix+1, iy+1)
	return
}
