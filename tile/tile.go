/*
Package tile decodes packed GBA tile sheets.

A sheet is a flat stream of 8 by 8 pixel tiles. Each pixel is a palette
index stored at 4 or 8 bits per pixel, row-major within the tile. At 4bpp a
byte holds two pixels with the low nibble being the leftmost, so one tile
occupies 32 bytes; at 8bpp one byte per pixel, 64 bytes.

Sheets also ship as indexed PNG images laid out as a grid of tiles; those
arrive here already unpacked as an *image.Paletted.
*/
package tile

import (
	"fmt"
	"image"

	"github.com/gbakit/overmap/asset"
)

const (
	// Width is the pixel dimension of one square tile.
	Width = 8

	pixels = Width * Width
)

func upperNibble(b byte) byte {
	return b >> 4
}

func lowerNibble(b byte) byte {
	return b & 0x0f
}

// Tile is one 8x8 grid of palette indices, row-major.
type Tile [pixels]uint8

// Sheet is an ordered sequence of tiles.
type Sheet struct {
	Tiles []Tile
}

// Decode unpacks a raw pixel-index stream at the given bit depth. Supported
// depths are 4 and 8. The buffer must hold a whole number of tiles.
func Decode(data []byte, depth int) (Sheet, error) {
	var tileBytes int
	switch depth {
	case 4:
		tileBytes = pixels / 2
	case 8:
		tileBytes = pixels
	default:
		return Sheet{}, &asset.FormatError{Offset: -1, Msg: fmt.Sprintf("unsupported bit depth %d", depth)}
	}

	if len(data)%tileBytes != 0 {
		return Sheet{}, &asset.FormatError{
			Offset: int64(len(data) - len(data)%tileBytes),
			Msg:    fmt.Sprintf("sheet length %d is not a multiple of %d byte tiles at %dbpp", len(data), tileBytes, depth),
		}
	}

	s := Sheet{Tiles: make([]Tile, len(data)/tileBytes)}
	for i := range s.Tiles {
		t := &s.Tiles[i]
		src := data[i*tileBytes:]
		if depth == 4 {
			for j := 0; j < tileBytes; j++ {
				t[j*2+0] = lowerNibble(src[j])
				t[j*2+1] = upperNibble(src[j])
			}
		} else {
			copy(t[:], src[:tileBytes])
		}
	}

	return s, nil
}

// FromPaletted slices an indexed image into tiles. Both dimensions must be
// multiples of the tile width; tile order is row-major across the image.
func FromPaletted(m *image.Paletted) (Sheet, error) {
	b := m.Bounds()
	if b.Dx()%Width != 0 || b.Dy()%Width != 0 {
		return Sheet{}, &asset.FormatError{
			Offset: -1,
			Msg:    fmt.Sprintf("sheet image %dx%d is not a multiple of %d pixel tiles", b.Dx(), b.Dy(), Width),
		}
	}

	tx, ty := b.Dx()/Width, b.Dy()/Width
	s := Sheet{Tiles: make([]Tile, tx*ty)}
	for i := range s.Tiles {
		x0 := b.Min.X + i%tx*Width
		y0 := b.Min.Y + i/tx*Width
		for y := 0; y < Width; y++ {
			for x := 0; x < Width; x++ {
				s.Tiles[i][y*Width+x] = m.ColorIndexAt(x0+x, y0+y)
			}
		}
	}

	return s, nil
}
