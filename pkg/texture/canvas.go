// Package texture describes decoded textures (their canvas layout, color space
// and tiles) and the texel cache that serves individual texels to samplers.
package texture

import (
	"errors"
	"fmt"
)

// DefaultTileSize is the tile edge used when a canvas does not specify one
const DefaultTileSize = 64

// ErrDegenerateCanvas is returned for canvases with a zero or negative extent
var ErrDegenerateCanvas = errors.New("texture: degenerate canvas")

// CanvasProperties is the static layout of a texture: resolution, tiling and
// channel count. It is a value type; a texture with different dimensions is a
// different texture.
type CanvasProperties struct {
	Width        int // Canvas width in pixels
	Height       int // Canvas height in pixels
	TileWidth    int // Tile width in pixels
	TileHeight   int // Tile height in pixels
	ChannelCount int // Number of channels stored by the source image (1 to 4)
}

// NewCanvasProperties creates canvas properties with square tiles of DefaultTileSize
func NewCanvasProperties(width, height, channelCount int) CanvasProperties {
	return CanvasProperties{
		Width:        width,
		Height:       height,
		TileWidth:    min(DefaultTileSize, max(width, 1)),
		TileHeight:   min(DefaultTileSize, max(height, 1)),
		ChannelCount: channelCount,
	}
}

// Validate reports whether the canvas can be sampled
func (p CanvasProperties) Validate() error {
	if p.Width <= 0 || p.Height <= 0 {
		return fmt.Errorf("%w: %dx%d pixels", ErrDegenerateCanvas, p.Width, p.Height)
	}
	if p.TileWidth <= 0 || p.TileHeight <= 0 {
		return fmt.Errorf("%w: %dx%d tiles", ErrDegenerateCanvas, p.TileWidth, p.TileHeight)
	}
	if p.ChannelCount < 1 || p.ChannelCount > 4 {
		return fmt.Errorf("%w: %d channels", ErrDegenerateCanvas, p.ChannelCount)
	}
	return nil
}

// TilesX returns the number of tile columns
func (p CanvasProperties) TilesX() int {
	return (p.Width + p.TileWidth - 1) / p.TileWidth
}

// TilesY returns the number of tile rows
func (p CanvasProperties) TilesY() int {
	return (p.Height + p.TileHeight - 1) / p.TileHeight
}

// TileBounds returns the pixel size of tile (tx, ty); edge tiles may be smaller
func (p CanvasProperties) TileBounds(tx, ty int) (width, height int) {
	width = min(p.TileWidth, p.Width-tx*p.TileWidth)
	height = min(p.TileHeight, p.Height-ty*p.TileHeight)
	return width, height
}

// PixelCount returns the total number of pixels of the canvas
func (p CanvasProperties) PixelCount() int {
	return p.Width * p.Height
}
