package loaders

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/df07/go-texture-source/pkg/core"
	"github.com/df07/go-texture-source/pkg/texture"
)

// GLTFDocument is an opened .gltf or .glb file together with the directory
// its relative URIs resolve against
type GLTFDocument struct {
	Doc *gltf.Document
	Dir string
}

// LoadGLTF opens a .gltf or .glb file
func LoadGLTF(filename string) (*GLTFDocument, error) {
	doc, err := gltf.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("gltf open %q: %w", filename, err)
	}
	core.Logger().Info("loaded gltf document", "file", filename,
		"images", len(doc.Images), "textures", len(doc.Textures), "materials", len(doc.Materials))
	return &GLTFDocument{Doc: doc, Dir: filepath.Dir(filename)}, nil
}

// DecodeImage decodes image index of the document. Image data may live in a
// buffer view (binary GLB), in a data URI, or in a file next to the document.
func (d *GLTFDocument) DecodeImage(index int, colorSpace texture.ColorSpace) (*texture.ImageTexture, error) {
	if index < 0 || index >= len(d.Doc.Images) {
		return nil, fmt.Errorf("gltf: image %d out of range (%d images)", index, len(d.Doc.Images))
	}
	img := d.Doc.Images[index]

	var (
		data []byte
		err  error
	)
	switch {
	case img.BufferView != nil:
		if *img.BufferView < 0 || *img.BufferView >= len(d.Doc.BufferViews) {
			return nil, fmt.Errorf("gltf: image %d: buffer view %d out of range", index, *img.BufferView)
		}
		data, err = modeler.ReadBufferView(d.Doc, d.Doc.BufferViews[*img.BufferView])
	case img.IsEmbeddedResource():
		data, err = img.MarshalData()
	case img.URI != "":
		var path string
		path, err = url.PathUnescape(img.URI)
		if err == nil {
			data, err = os.ReadFile(filepath.Join(d.Dir, filepath.FromSlash(path)))
		}
	default:
		return nil, fmt.Errorf("gltf: image %d has no data", index)
	}
	if err != nil {
		return nil, fmt.Errorf("gltf: image %d: %w", index, err)
	}

	tex, format, err := DecodeImageBytes(data, colorSpace)
	if err != nil {
		return nil, fmt.Errorf("gltf: image %d: %w", index, err)
	}
	core.Logger().Debug("decoded gltf image", "image", index, "name", img.Name, "format", format,
		"colorspace", colorSpace.String())
	return tex, nil
}

// TextureSampling maps the sampler of texture index to addressing and
// filtering modes. Textures without a sampler repeat and filter linearly.
// Mirrored repeat has no equivalent and falls back to wrapping; when the two
// axes disagree the S axis decides.
func (d *GLTFDocument) TextureSampling(index int) (texture.AddressingMode, texture.FilteringMode, error) {
	if index < 0 || index >= len(d.Doc.Textures) {
		return 0, 0, fmt.Errorf("gltf: texture %d out of range (%d textures)", index, len(d.Doc.Textures))
	}
	tex := d.Doc.Textures[index]
	if tex.Sampler == nil {
		return texture.AddressWrap, texture.FilterBilinear, nil
	}
	if *tex.Sampler < 0 || *tex.Sampler >= len(d.Doc.Samplers) {
		return 0, 0, fmt.Errorf("gltf: texture %d: sampler %d out of range", index, *tex.Sampler)
	}
	sampler := d.Doc.Samplers[*tex.Sampler]

	if sampler.WrapS != sampler.WrapT {
		core.Logger().Warn("gltf sampler wraps axes differently, using S for both",
			"texture", index, "wrapS", int(sampler.WrapS), "wrapT", int(sampler.WrapT))
	}

	addressing := texture.AddressWrap
	switch sampler.WrapS {
	case gltf.WrapClampToEdge:
		addressing = texture.AddressClamp
	case gltf.WrapMirroredRepeat:
		core.Logger().Warn("gltf mirrored repeat is not supported, wrapping instead", "texture", index)
	}

	filtering := texture.FilterBilinear
	if sampler.MagFilter == gltf.MagNearest {
		filtering = texture.FilterNearest
	}
	return addressing, filtering, nil
}
