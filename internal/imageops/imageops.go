package imageops

import (
	"fmt"
	"image"
	"io"
	"mime"
	"os"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	_ "golang.org/x/image/webp"
)

// Processor renders variants, text icons and colour palettes. It is safe
// for concurrent use.
type Processor struct {
	filter      imaging.ResampleFilter
	jpegQuality int
	font        *opentype.Font
}

// New builds a Processor. An empty fontPath selects the embedded Go Regular
// face.
func New(filter string, jpegQuality int, fontPath string) (*Processor, error) {
	ttf := goregular.TTF
	if fontPath != "" {
		b, err := os.ReadFile(fontPath)
		if err != nil {
			return nil, fmt.Errorf("read font: %w", err)
		}
		ttf = b
	}
	f, err := opentype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	if jpegQuality < 1 || jpegQuality > 100 {
		jpegQuality = 90
	}
	return &Processor{
		filter:      ParseFilter(filter),
		jpegQuality: jpegQuality,
		font:        f,
	}, nil
}

// ParseFilter maps a configured filter name to a resampling filter.
// Unknown names fall back to nearest neighbour.
func ParseFilter(name string) imaging.ResampleFilter {
	switch name {
	case "", "CatmullRom":
		return imaging.CatmullRom
	case "Gaussian":
		return imaging.Gaussian
	case "Triangle":
		return imaging.Linear
	case "Lanczos3":
		return imaging.Lanczos
	default:
		return imaging.NearestNeighbor
	}
}

// Format describes how a variant is encoded.
type Format struct {
	Encoding    imaging.Format
	ContentType string
	Extension   string
}

// VariantFormat returns the encoding used for variants of an original with
// the given content type. Formats without an encoder are written as PNG.
func VariantFormat(contentType string) Format {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mt = strings.ToLower(contentType)
	}
	switch mt {
	case "image/jpeg":
		return Format{imaging.JPEG, "image/jpeg", ".jpg"}
	case "image/gif":
		return Format{imaging.GIF, "image/gif", ".gif"}
	case "image/bmp":
		return Format{imaging.BMP, "image/bmp", ".bmp"}
	case "image/tiff":
		return Format{imaging.TIFF, "image/tiff", ".tiff"}
	default:
		return Format{imaging.PNG, "image/png", ".png"}
	}
}

func (p *Processor) decode(src io.Reader) (image.Image, error) {
	img, err := imaging.Decode(src, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return img, nil
}
