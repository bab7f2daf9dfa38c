package imageops

import (
	"fmt"
	"image"
	"io"
	"math"

	"github.com/disintegration/imaging"
)

// VariantOption describes a resized rendition. With Fill the output is
// cropped to exactly Width x Height, otherwise the image is scaled to fit
// inside the box keeping its aspect ratio.
type VariantOption struct {
	Width  int
	Height int
	Fill   bool
	Format imaging.Format
}

// Variant decodes src, applies EXIF orientation, resizes and encodes the
// result to dst. The same input and options always produce the same bytes.
func (p *Processor) Variant(dst io.Writer, src io.Reader, opt VariantOption) error {
	if opt.Width <= 0 || opt.Height <= 0 {
		return fmt.Errorf("invalid dimensions %dx%d", opt.Width, opt.Height)
	}
	img, err := p.decode(src)
	if err != nil {
		return err
	}

	var out image.Image
	if opt.Fill {
		out = imaging.Fill(img, opt.Width, opt.Height, imaging.Center, p.filter)
	} else {
		w, h := fitDimensions(img.Bounds().Dx(), img.Bounds().Dy(), opt.Width, opt.Height)
		out = imaging.Resize(img, w, h, p.filter)
	}

	if err := imaging.Encode(dst, out, opt.Format, imaging.JPEGQuality(p.jpegQuality)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// fitDimensions returns the largest size with the source aspect ratio that
// fits inside maxW x maxH. Upscaling is allowed.
func fitDimensions(srcW, srcH, maxW, maxH int) (int, int) {
	if srcW <= 0 || srcH <= 0 {
		return maxW, maxH
	}
	wRatio := float64(maxW) / float64(srcW)
	hRatio := float64(maxH) / float64(srcH)
	ratio := math.Min(wRatio, hRatio)

	w := max(int(math.Round(float64(srcW)*ratio)), 1)
	h := max(int(math.Round(float64(srcH)*ratio)), 1)
	return min(w, maxW), min(h, maxH)
}
