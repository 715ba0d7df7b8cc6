package loaders

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // GIF decoder
	_ "image/jpeg" // JPEG decoder
	_ "image/png"  // PNG decoder
	"io"
	"os"

	_ "golang.org/x/image/bmp"  // BMP decoder
	_ "golang.org/x/image/tiff" // TIFF decoder
	_ "golang.org/x/image/webp" // WebP decoder

	"github.com/df07/go-texture-source/pkg/core"
	"github.com/df07/go-texture-source/pkg/texture"
)

// LoadImage loads an image file as a texture whose pixels are encoded in colorSpace
func LoadImage(filename string, colorSpace texture.ColorSpace) (*texture.ImageTexture, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}
	defer file.Close()

	tex, format, err := DecodeImage(file, colorSpace)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}

	props := tex.Properties()
	core.Logger().Info("loaded image texture", "file", filename, "format", format,
		"width", props.Width, "height", props.Height, "channels", props.ChannelCount,
		"colorspace", colorSpace.String())
	return tex, nil
}

// DecodeImage decodes PNG, JPEG, GIF, BMP, TIFF or WebP data into a texture.
// The format is detected from the data header and returned alongside.
func DecodeImage(r io.Reader, colorSpace texture.ColorSpace) (*texture.ImageTexture, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	tex, err := texture.NewImageTexture(img, colorSpace)
	if err != nil {
		return nil, format, err
	}
	return tex, format, nil
}

// DecodeImageBytes is DecodeImage over an in-memory buffer
func DecodeImageBytes(data []byte, colorSpace texture.ColorSpace) (*texture.ImageTexture, string, error) {
	return DecodeImage(bytes.NewReader(data), colorSpace)
}
