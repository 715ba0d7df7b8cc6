package material

import (
	"github.com/df07/go-texture-source/pkg/core"
	"github.com/df07/go-texture-source/pkg/spectrum"
	"github.com/df07/go-texture-source/pkg/texture"
)

// InputParams carries the per-shading-point inputs used to evaluate a source
type InputParams struct {
	// UV holds the surface coordinates. Values are not restricted to [0,1);
	// texture sources fold them according to their addressing mode.
	UV core.Vec2
}

// NewInputParams creates input params for the given surface coordinates
func NewInputParams(u, v float64) InputParams {
	return InputParams{UV: core.NewVec2(u, v)}
}

// Source provides the value of a shading parameter at a shading point, as a
// scalar, as linear RGB with alpha, or as a spectrum with alpha.
//
// Every evaluation is safe to call concurrently, deterministic for identical
// params and cache contents, and mutates nothing except the cache's own fills.
// Implementations are ConstantSource and TextureSource.
type Source interface {
	EvaluateScalar(cache texture.TexelCache, params InputParams) (float64, error)
	EvaluateRGB(cache texture.TexelCache, params InputParams) (core.Color3, float32, error)
	EvaluateSpectrum(cache texture.TexelCache, params InputParams) (spectrum.Spectrum, float32, error)

	isSource()
}
