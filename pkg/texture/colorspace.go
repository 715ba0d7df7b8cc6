package texture

import (
	"fmt"
	"math"
	"strings"

	"github.com/df07/go-texture-source/pkg/core"
)

// ColorSpace is the encoding of the color channels stored in a texture.
// Alpha is always stored linearly.
type ColorSpace uint8

const (
	// ColorSpaceLinearRGB stores linear RGB; texels are used as-is.
	ColorSpaceLinearRGB ColorSpace = iota

	// ColorSpaceSRGB stores sRGB-encoded values; texels are linearized on tile load.
	ColorSpaceSRGB
)

// String returns a string representation of the color space
func (c ColorSpace) String() string {
	switch c {
	case ColorSpaceLinearRGB:
		return "linear_rgb"
	case ColorSpaceSRGB:
		return "srgb"
	default:
		return "unknown"
	}
}

// ParseColorSpace parses a color space name ("linear_rgb"/"linear" or "srgb")
func ParseColorSpace(s string) (ColorSpace, error) {
	switch strings.ReplaceAll(normalizeName(s), "-", "_") {
	case "linear_rgb", "linear":
		return ColorSpaceLinearRGB, nil
	case "srgb":
		return ColorSpaceSRGB, nil
	default:
		return 0, fmt.Errorf("unsupported color space %q", s)
	}
}

// sRGBToLinearLUT maps 8-bit sRGB codes to linear values
var sRGBToLinearLUT [256]float32

// linearToSRGBLUT maps 12-bit quantized linear values to 8-bit sRGB codes
var linearToSRGBLUT [4096]uint8

func init() {
	for i := range sRGBToLinearLUT {
		sRGBToLinearLUT[i] = SRGBToLinear(float32(i) / 255)
	}
	for i := range linearToSRGBLUT {
		s := LinearToSRGB(float32(i) / float32(len(linearToSRGBLUT)-1))
		linearToSRGBLUT[i] = uint8(s*255 + 0.5)
	}
}

// SRGBToLinear converts one sRGB-encoded component in [0,1] to linear
func SRGBToLinear(s float32) float32 {
	if s <= 0.04045 {
		return s / 12.92
	}
	return float32(math.Pow(float64((s+0.055)/1.055), 2.4))
}

// LinearToSRGB converts one linear component in [0,1] to sRGB encoding
func LinearToSRGB(l float32) float32 {
	if l <= 0.0031308 {
		return l * 12.92
	}
	return 1.055*float32(math.Pow(float64(l), 1.0/2.4)) - 0.055
}

// SRGB8ToLinear converts an 8-bit sRGB code using the lookup table
func SRGB8ToLinear(c uint8) float32 {
	return sRGBToLinearLUT[c]
}

// LinearToSRGB8 quantizes a linear component to an 8-bit sRGB code.
// Values outside [0,1] are clamped.
func LinearToSRGB8(l float32) uint8 {
	if !(l > 0) {
		return 0
	}
	if l >= 1 {
		return 255
	}
	return linearToSRGBLUT[int(l*float32(len(linearToSRGBLUT)-1)+0.5)]
}

// ToLinear converts a texel stored in color space c to linear RGB; alpha is untouched
func (c ColorSpace) ToLinear(texel core.Color4) core.Color4 {
	if c != ColorSpaceSRGB {
		return texel
	}
	return core.Color4{
		R: SRGBToLinear(texel.R),
		G: SRGBToLinear(texel.G),
		B: SRGBToLinear(texel.B),
		A: texel.A,
	}
}
