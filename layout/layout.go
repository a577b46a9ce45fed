/*
Package layout parses block-map data.

A block map is a row-major array of 16-bit little-endian entries, one per
metatile cell. Within an entry the low 10 bits select a metatile, bits 10-11
carry the collision attribute and the top 4 bits the elevation. The border
pattern is a separate fixed 2x2 array of the same entries, tiled cyclically
to fill the area outside the declared map bounds.
*/
package layout

import (
	"bytes"
	"fmt"

	bitstream "github.com/gravestench/bitstream/pkg"

	"github.com/gbakit/overmap/asset"
)

// Block-map entry field layout. These widths are specific to the Gen III
// asset convention; they are the single place to touch for other versions.
const (
	MetatileMask   = 0x03ff
	CollisionMask  = 0x0c00
	CollisionShift = 10
	ElevationMask  = 0xf000
	ElevationShift = 12

	entryBytes = 2

	// BorderWidth and BorderHeight fix the border pattern at 2x2 entries.
	BorderWidth  = 2
	BorderHeight = 2
)

// Entry is one unpacked block-map cell.
type Entry struct {
	Metatile  uint16
	Collision uint8
	Elevation uint8
}

// DecodeEntry unpacks one raw block-map record.
func DecodeEntry(v uint16) Entry {
	return Entry{
		Metatile:  v & MetatileMask,
		Collision: uint8((v & CollisionMask) >> CollisionShift),
		Elevation: uint8((v & ElevationMask) >> ElevationShift),
	}
}

// Layout is a parsed block map plus its border pattern.
type Layout struct {
	Width   int
	Height  int
	Entries []Entry
	Border  [BorderWidth * BorderHeight]Entry
}

func decodeEntries(data []byte, dst []Entry) error {
	stream := bitstream.NewReader(bytes.NewReader(data))
	for i := range dst {
		v, err := stream.Next(entryBytes).Bytes().AsUInt16()
		if err != nil {
			return err
		}
		dst[i] = DecodeEntry(v)
	}
	return nil
}

// Parse decodes a block map of the given dimensions along with its border
// pattern. The block data must be exactly width*height entries and the
// border exactly 2x2.
func Parse(data []byte, width, height int, border []byte) (*Layout, error) {
	if width < 1 || height < 1 {
		return nil, &asset.FormatError{Offset: -1, Msg: fmt.Sprintf("invalid map dimensions %dx%d", width, height)}
	}
	if want := width * height * entryBytes; len(data) != want {
		return nil, &asset.FormatError{
			Offset: -1,
			Msg:    fmt.Sprintf("block map is %d bytes, %dx%d map needs %d", len(data), width, height, want),
		}
	}
	if want := BorderWidth * BorderHeight * entryBytes; len(border) != want {
		return nil, &asset.FormatError{
			Offset: -1,
			Msg:    fmt.Sprintf("border pattern is %d bytes, expected %d", len(border), want),
		}
	}

	l := &Layout{
		Width:   width,
		Height:  height,
		Entries: make([]Entry, width*height),
	}
	if err := decodeEntries(data, l.Entries); err != nil {
		return nil, err
	}
	if err := decodeEntries(border, l.Border[:]); err != nil {
		return nil, err
	}

	return l, nil
}

// At returns the entry at map coordinates (x, y). The coordinates must be
// within [0,Width)x[0,Height).
func (l *Layout) At(x, y int) Entry {
	return l.Entries[y*l.Width+x]
}

// BorderAt returns the border entry covering (x, y), tiling the 2x2 pattern
// cyclically along both axes. Negative coordinates from the padded rim wrap
// the same way, so the pattern stays continuous across the map origin.
func (l *Layout) BorderAt(x, y int) Entry {
	bx := ((x % BorderWidth) + BorderWidth) % BorderWidth
	by := ((y % BorderHeight) + BorderHeight) % BorderHeight
	return l.Border[by*BorderWidth+bx]
}
