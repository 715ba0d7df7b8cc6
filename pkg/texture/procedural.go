package texture

import "github.com/df07/go-texture-source/pkg/core"

// NewCheckerboardTexture creates a procedural checkerboard pattern texture
func NewCheckerboardTexture(width, height, checkSize int, color1, color2 core.Color4) (*LinearTexture, error) {
	checkSize = max(1, checkSize)
	pixels := make([]core.Color4, max(0, width*height))

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			// Alternate colors based on check position
			if (x/checkSize+y/checkSize)%2 == 0 {
				pixels[y*width+x] = color1
			} else {
				pixels[y*width+x] = color2
			}
		}
	}

	return NewLinearTexture(width, height, pixels)
}

// NewUVDebugTexture creates a texture showing texel coordinates as colors.
// U maps to red, V maps to green and alpha falls off along V.
func NewUVDebugTexture(width, height int) (*LinearTexture, error) {
	pixels := make([]core.Color4, max(0, width*height))

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			u := float32(x) / float32(max(1, width-1))
			v := float32(y) / float32(max(1, height-1))
			pixels[y*width+x] = core.NewColor4(u, v, 0, 1-0.5*v)
		}
	}

	return NewLinearTexture(width, height, pixels)
}

// NewGradientTexture creates a vertical gradient from color1 (top) to color2 (bottom)
func NewGradientTexture(width, height int, color1, color2 core.Color4) (*LinearTexture, error) {
	pixels := make([]core.Color4, max(0, width*height))

	for y := 0; y < height; y++ {
		t := float32(y) / float32(max(1, height-1))
		c := core.Lerp4(color1, color2, t)
		for x := 0; x < width; x++ {
			pixels[y*width+x] = c
		}
	}

	return NewLinearTexture(width, height, pixels)
}
