package material

import (
	"fmt"

	"github.com/df07/go-texture-source/pkg/core"
	"github.com/df07/go-texture-source/pkg/spectrum"
	"github.com/df07/go-texture-source/pkg/texture"
)

// ConstantSource provides a uniform value regardless of the shading point.
// All three representations are computed once at construction.
type ConstantSource struct {
	scalar   float64
	rgb      core.Color3
	spectrum spectrum.Spectrum
	alpha    float32
}

// NewScalarSource creates a constant source from a scalar. The RGB form is
// gray and the spectral form is flat; alpha is opaque.
func NewScalarSource(value float64) *ConstantSource {
	v := float32(value)
	return &ConstantSource{
		scalar:   value,
		rgb:      core.Gray(v),
		spectrum: spectrum.Flat(v),
		alpha:    1,
	}
}

// NewColorSource creates a constant source from a linear RGB color. The scalar
// form is the red channel, matching how texture sources read scalars.
func NewColorSource(rgb core.Color3, alpha float32, lighting *spectrum.LightingConditions) (*ConstantSource, error) {
	if lighting == nil {
		return nil, fmt.Errorf("color source: lighting conditions are required")
	}
	return &ConstantSource{
		scalar:   float64(rgb.R),
		rgb:      rgb,
		spectrum: spectrum.LinearRGBToSpectrum(lighting, rgb),
		alpha:    alpha,
	}, nil
}

// EvaluateScalar returns the constant scalar
func (s *ConstantSource) EvaluateScalar(texture.TexelCache, InputParams) (float64, error) {
	return s.scalar, nil
}

// EvaluateRGB returns the constant color and alpha
func (s *ConstantSource) EvaluateRGB(texture.TexelCache, InputParams) (core.Color3, float32, error) {
	return s.rgb, s.alpha, nil
}

// EvaluateSpectrum returns the constant spectrum and alpha
func (s *ConstantSource) EvaluateSpectrum(texture.TexelCache, InputParams) (spectrum.Spectrum, float32, error) {
	return s.spectrum, s.alpha, nil
}

func (*ConstantSource) isSource() {}
