package spectrum

import (
	"errors"
	"fmt"
	"math"

	"github.com/df07/go-texture-source/pkg/core"
)

// ErrDegenerateBasis is returned when the three basis spectra are linearly dependent
var ErrDegenerateBasis = errors.New("spectrum: basis spectra are linearly dependent")

// LightingConditions is the precomputed basis used to upsample linear RGB into
// spectra consistently with the rest of the color pipeline. It is immutable
// once built and is shared by pointer between every texture source of a render.
type LightingConditions struct {
	name  string
	basis [3]Spectrum // spectra of unit red, green and blue
	dual  [3]Spectrum // left inverse of basis, used for projection back to RGB
}

// NewLightingConditions builds lighting conditions from the spectra of the
// three linear RGB primaries.
func NewLightingConditions(name string, basis [3]Spectrum) (*LightingConditions, error) {
	// Gram matrix of the basis; its inverse gives the dual basis
	var gram [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			gram[i][j] = basis[i].Dot(basis[j])
		}
	}

	inv, ok := invert3(gram)
	if !ok {
		return nil, fmt.Errorf("%w (%s)", ErrDegenerateBasis, name)
	}

	lc := &LightingConditions{name: name, basis: basis}
	for i := 0; i < 3; i++ {
		for k := 0; k < NumSamples; k++ {
			var v float64
			for j := 0; j < 3; j++ {
				v += inv[i][j] * float64(basis[j][k])
			}
			lc.dual[i][k] = float32(v)
		}
	}
	return lc, nil
}

// DefaultLightingConditions returns a smooth basis whose three spectra peak
// at 610nm, 540nm and 460nm and sum to one at every wavelength, so that
// linear white maps to the unit flat spectrum.
func DefaultLightingConditions() *LightingConditions {
	centers := [3]float64{610, 540, 460}
	const sigma = 40.0

	var basis [3]Spectrum
	for k := 0; k < NumSamples; k++ {
		w := Wavelength(k)
		var raw [3]float64
		var sum float64
		for i, c := range centers {
			d := (w - c) / sigma
			raw[i] = math.Exp(-0.5 * d * d)
			sum += raw[i]
		}
		for i := range raw {
			basis[i][k] = float32(raw[i] / sum)
		}
	}

	lc, err := NewLightingConditions("default", basis)
	if err != nil {
		panic(err) // fixed basis above is never degenerate
	}
	return lc
}

// Name returns the name the lighting conditions were built with
func (lc *LightingConditions) Name() string {
	return lc.name
}

// Basis returns the spectrum of primary i (0 = red, 1 = green, 2 = blue)
func (lc *LightingConditions) Basis(i int) Spectrum {
	return lc.basis[i]
}

// LinearRGBToSpectrum converts a linear RGB triple to a spectrum. The result
// is linear in rgb.
func LinearRGBToSpectrum(lc *LightingConditions, rgb core.Color3) Spectrum {
	var s Spectrum
	for k := range s {
		s[k] = rgb.R*lc.basis[0][k] + rgb.G*lc.basis[1][k] + rgb.B*lc.basis[2][k]
	}
	return s
}

// SpectrumToLinearRGB projects a spectrum back to linear RGB. It is the exact
// inverse of LinearRGBToSpectrum for spectra in the span of the basis.
func SpectrumToLinearRGB(lc *LightingConditions, s Spectrum) core.Color3 {
	return core.Color3{
		R: float32(s.Dot(lc.dual[0])),
		G: float32(s.Dot(lc.dual[1])),
		B: float32(s.Dot(lc.dual[2])),
	}
}

func invert3(m [3][3]float64) ([3][3]float64, bool) {
	det := m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
		m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])
	if math.Abs(det) < 1e-12 {
		return [3][3]float64{}, false
	}

	invDet := 1.0 / det
	var r [3][3]float64
	r[0][0] = (m[1][1]*m[2][2] - m[1][2]*m[2][1]) * invDet
	r[0][1] = (m[0][2]*m[2][1] - m[0][1]*m[2][2]) * invDet
	r[0][2] = (m[0][1]*m[1][2] - m[0][2]*m[1][1]) * invDet
	r[1][0] = (m[1][2]*m[2][0] - m[1][0]*m[2][2]) * invDet
	r[1][1] = (m[0][0]*m[2][2] - m[0][2]*m[2][0]) * invDet
	r[1][2] = (m[0][2]*m[1][0] - m[0][0]*m[1][2]) * invDet
	r[2][0] = (m[1][0]*m[2][1] - m[1][1]*m[2][0]) * invDet
	r[2][1] = (m[0][1]*m[2][0] - m[0][0]*m[2][1]) * invDet
	r[2][2] = (m[0][0]*m[1][1] - m[0][1]*m[1][0]) * invDet
	return r, true
}
