package texture

import "github.com/df07/go-texture-source/pkg/core"

// Tile is a rectangular block of linear RGBA texels. Tiles handed out by the
// cache are shared and must not be modified.
type Tile struct {
	Width  int
	Height int
	Pixels []core.Color4 // Row-major: Pixels[y*Width + x]
}

// NewTile allocates a zeroed tile
func NewTile(width, height int) *Tile {
	return &Tile{
		Width:  width,
		Height: height,
		Pixels: make([]core.Color4, width*height),
	}
}

// At returns the texel at tile-local coordinates (x, y)
func (t *Tile) At(x, y int) core.Color4 {
	return t.Pixels[y*t.Width+x]
}

// Set stores a texel at tile-local coordinates (x, y)
func (t *Tile) Set(x, y int, c core.Color4) {
	t.Pixels[y*t.Width+x] = c
}

// SizeBytes returns the memory held by the tile's texels
func (t *Tile) SizeBytes() int {
	return len(t.Pixels) * 16
}
