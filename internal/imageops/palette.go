package imageops

import (
	"encoding/json"
	"image/color"
	"io"

	"github.com/cenkalti/dominantcolor"
)

type Palette []color.RGBA

// MarshalJSON encodes the palette as an index to RGBA map.
func (p Palette) MarshalJSON() ([]byte, error) {
	colors := make(map[int][4]uint8, len(p))
	for i, c := range p {
		colors[i] = [4]uint8{c.R, c.G, c.B, c.A}
	}
	return json.Marshal(colors)
}

// Palette returns up to four dominant colours of the image in src.
func (p *Processor) Palette(src io.Reader) (Palette, error) {
	img, err := p.decode(src)
	if err != nil {
		return nil, err
	}
	return Palette(dominantcolor.FindN(img, 4)), nil
}
