package texture

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/df07/go-texture-source/pkg/core"
)

// ErrTileOutOfRange is returned when a tile index lies outside the canvas
var ErrTileOutOfRange = errors.New("texture: tile out of range")

// Texture is a decoded image that can be read one tile at a time
type Texture interface {
	// Properties returns the canvas layout; it never changes
	Properties() CanvasProperties

	// ColorSpace returns the encoding of the stored color channels
	ColorSpace() ColorSpace

	// LoadTile materializes tile (tx, ty) as linear RGBA texels.
	// It may be slow and is called at most once per tile residency by the cache.
	LoadTile(tx, ty int) (*Tile, error)
}

func checkTile(props CanvasProperties, tx, ty int) error {
	if tx < 0 || ty < 0 || tx >= props.TilesX() || ty >= props.TilesY() {
		return fmt.Errorf("%w: tile (%d, %d) of %dx%d", ErrTileOutOfRange, tx, ty, props.TilesX(), props.TilesY())
	}
	return nil
}

// ImageTexture serves tiles from a decoded image.Image
type ImageTexture struct {
	img        image.Image
	props      CanvasProperties
	colorSpace ColorSpace
}

// NewImageTexture wraps img. The color space describes how its RGB channels are encoded.
func NewImageTexture(img image.Image, colorSpace ColorSpace) (*ImageTexture, error) {
	bounds := img.Bounds()
	props := NewCanvasProperties(bounds.Dx(), bounds.Dy(), channelCount(img.ColorModel()))
	if err := props.Validate(); err != nil {
		return nil, err
	}
	return &ImageTexture{
		img:        img,
		props:      props,
		colorSpace: colorSpace,
	}, nil
}

// Properties returns the canvas layout of the image
func (t *ImageTexture) Properties() CanvasProperties {
	return t.props
}

// ColorSpace returns the encoding of the image's color channels
func (t *ImageTexture) ColorSpace() ColorSpace {
	return t.colorSpace
}

// LoadTile converts one tile of the image to linear RGBA
func (t *ImageTexture) LoadTile(tx, ty int) (*Tile, error) {
	if err := checkTile(t.props, tx, ty); err != nil {
		return nil, err
	}

	w, h := t.props.TileBounds(tx, ty)
	tile := NewTile(w, h)
	bounds := t.img.Bounds()
	x0 := bounds.Min.X + tx*t.props.TileWidth
	y0 := bounds.Min.Y + ty*t.props.TileHeight

	switch img := t.img.(type) {
	case *image.NRGBA:
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				c := img.NRGBAAt(x0+x, y0+y)
				tile.Set(x, y, t.decode8(c.R, c.G, c.B, c.A))
			}
		}
	case *image.NRGBA64:
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				c := img.NRGBA64At(x0+x, y0+y)
				tile.Set(x, y, t.decodeStraight16(c.R, c.G, c.B, c.A))
			}
		}
	case *image.Gray:
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				v := img.GrayAt(x0+x, y0+y).Y
				tile.Set(x, y, t.decode8(v, v, v, 255))
			}
		}
	case *image.Paletted:
		// Transparent palette entries are straight NRGBA; decode each entry once
		palette := make([]core.Color4, len(img.Palette))
		for i, entry := range img.Palette {
			c := color.NRGBAModel.Convert(entry).(color.NRGBA)
			palette[i] = t.decode8(c.R, c.G, c.B, c.A)
		}
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				if i := int(img.ColorIndexAt(x0+x, y0+y)); i < len(palette) {
					tile.Set(x, y, palette[i])
				}
			}
		}
	default:
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				tile.Set(x, y, t.decodePremultiplied(t.img.At(x0+x, y0+y)))
			}
		}
	}

	return tile, nil
}

// decode8 converts non-premultiplied 8-bit channels, using the sRGB table when needed
func (t *ImageTexture) decode8(r, g, b, a uint8) core.Color4 {
	alpha := float32(a) / 255
	if t.colorSpace == ColorSpaceSRGB {
		return core.Color4{R: SRGB8ToLinear(r), G: SRGB8ToLinear(g), B: SRGB8ToLinear(b), A: alpha}
	}
	return core.Color4{R: float32(r) / 255, G: float32(g) / 255, B: float32(b) / 255, A: alpha}
}

// decodeStraight16 converts non-premultiplied 16-bit channels
func (t *ImageTexture) decodeStraight16(r, g, b, a uint16) core.Color4 {
	return t.colorSpace.ToLinear(core.Color4{
		R: float32(r) / 0xffff,
		G: float32(g) / 0xffff,
		B: float32(b) / 0xffff,
		A: float32(a) / 0xffff,
	})
}

// decodePremultiplied converts a color of a premultiplied source (RGBA,
// RGBA64, YCbCr, ...) via its 16-bit RGBA form. Fully transparent texels of
// such sources carry no color.
func (t *ImageTexture) decodePremultiplied(c color.Color) core.Color4 {
	r, g, b, a := c.RGBA()
	if a == 0 {
		return core.Color4{}
	}
	// Undo premultiplication so color channels keep their stored value
	inv := 1 / float32(a)
	texel := core.Color4{
		R: float32(r) * inv,
		G: float32(g) * inv,
		B: float32(b) * inv,
		A: float32(a) / 0xffff,
	}
	return t.colorSpace.ToLinear(texel)
}

// channelCount returns how many channels a color model carries
func channelCount(m color.Model) int {
	switch m {
	case color.GrayModel, color.Gray16Model:
		return 1
	case color.YCbCrModel, color.CMYKModel:
		return 3
	default:
		return 4
	}
}

// LinearTexture is an in-memory texture of float RGBA texels
type LinearTexture struct {
	props      CanvasProperties
	colorSpace ColorSpace
	pixels     []core.Color4 // Row-major: pixels[y*Width + x]
}

// NewLinearTexture creates a texture from row-major texels stored in linear RGB
func NewLinearTexture(width, height int, pixels []core.Color4) (*LinearTexture, error) {
	return NewLinearTextureWithColorSpace(width, height, pixels, ColorSpaceLinearRGB)
}

// NewLinearTextureWithColorSpace creates a texture from row-major float texels encoded in colorSpace
func NewLinearTextureWithColorSpace(width, height int, pixels []core.Color4, colorSpace ColorSpace) (*LinearTexture, error) {
	props := NewCanvasProperties(width, height, 4)
	if err := props.Validate(); err != nil {
		return nil, err
	}
	if len(pixels) != props.PixelCount() {
		return nil, fmt.Errorf("texture: expected %d pixels for %dx%d, got %d", props.PixelCount(), width, height, len(pixels))
	}
	return &LinearTexture{
		props:      props,
		colorSpace: colorSpace,
		pixels:     pixels,
	}, nil
}

// WithTileSize returns a copy of the texture that is split into tiles of the given size
func (t *LinearTexture) WithTileSize(tileWidth, tileHeight int) *LinearTexture {
	c := *t
	c.props.TileWidth = max(1, tileWidth)
	c.props.TileHeight = max(1, tileHeight)
	return &c
}

// Properties returns the canvas layout
func (t *LinearTexture) Properties() CanvasProperties {
	return t.props
}

// ColorSpace returns the encoding of the stored texels
func (t *LinearTexture) ColorSpace() ColorSpace {
	return t.colorSpace
}

// LoadTile copies one tile of the texture, converting it to linear RGB
func (t *LinearTexture) LoadTile(tx, ty int) (*Tile, error) {
	if err := checkTile(t.props, tx, ty); err != nil {
		return nil, err
	}

	w, h := t.props.TileBounds(tx, ty)
	tile := NewTile(w, h)
	x0 := tx * t.props.TileWidth
	y0 := ty * t.props.TileHeight
	for y := 0; y < h; y++ {
		row := t.pixels[(y0+y)*t.props.Width+x0:]
		for x := 0; x < w; x++ {
			tile.Set(x, y, t.colorSpace.ToLinear(row[x]))
		}
	}
	return tile, nil
}
