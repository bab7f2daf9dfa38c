package imageops

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

var (
	textIconBackground = color.RGBA{111, 111, 111, 255}
	textIconForeground = color.RGBA{225, 225, 225, 255}
)

// TextIcon draws text centred horizontally on a size x size gray square
// and writes it as PNG.
func (p *Processor) TextIcon(dst io.Writer, text string, size int) error {
	if size <= 0 {
		return fmt.Errorf("invalid size %d", size)
	}

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), image.NewUniform(textIconBackground), image.Point{}, draw.Src)

	face, err := opentype.NewFace(p.font, &opentype.FaceOptions{
		Size:    float64(size) / 1.7,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return fmt.Errorf("font face: %w", err)
	}
	defer face.Close()

	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(textIconForeground),
		Face: face,
	}
	x := (size - d.MeasureString(text).Ceil()) / 2
	top := int(float64(size) / 4.6)
	d.Dot = fixed.P(x, top+face.Metrics().Ascent.Ceil())
	d.DrawString(text)

	return png.Encode(dst, img)
}
