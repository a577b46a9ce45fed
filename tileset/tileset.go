/*
Package tileset assembles metatiles from decoded tiles and palettes.

A metatile is the 16 by 16 pixel drawable unit of a map: eight 8x8 tile
references arranged as two 2x2 layers, bottom then top. Each reference is a
16-bit little-endian record holding a tile index, horizontal and vertical
flip flags and a palette table selector, so one metatile definition occupies
16 bytes of metatiles.bin. A parallel metatile_attributes.bin carries one
32-bit record per metatile whose top bits encode the layer type.

Maps draw from a pair of tilesets. The primary tileset owns the low ranges
of the metatile, tile and palette tables; indices at or above the split
points resolve into the secondary tileset.
*/
package tileset

import (
	"bytes"
	"fmt"

	bitstream "github.com/gravestench/bitstream/pkg"

	"github.com/gbakit/overmap/asset"
	"github.com/gbakit/overmap/palette"
	"github.com/gbakit/overmap/tile"
)

const (
	// MetatileSize is the pixel dimension of one square metatile.
	MetatileSize = 2 * tile.Width

	// TilesPerMetatile covers both 2x2 layers.
	TilesPerMetatile = 8

	defBytes  = TilesPerMetatile * 2
	attrBytes = 4
)

// Table split points between the primary and secondary tileset of a pair.
// These are the Gen III FRLG values; other versions move them.
const (
	TilesInPrimary     = 640
	MetatilesInPrimary = 640
	PalettesInPrimary  = 7
	PalettesTotal      = 13
)

// Tile reference field layout within a 16-bit definition record.
const (
	TileMask     = 0x03ff
	HFlipMask    = 0x0400
	VFlipMask    = 0x0800
	PaletteMask  = 0xf000
	PaletteShift = 12
)

const (
	layerTypeShift = 29
	layerTypeMask  = 0x3
)

// LayerType records which background layers a metatile occupies in-game.
// It does not change how the flat render composites the two tile layers.
type LayerType uint8

const (
	LayerMiddleTop LayerType = iota
	LayerBottomMiddle
	LayerBottomTop
)

// TileRef is one unpacked tile reference.
type TileRef struct {
	Tile    uint16
	HFlip   bool
	VFlip   bool
	Palette uint8
}

// DecodeTileRef unpacks one raw definition record.
func DecodeTileRef(v uint16) TileRef {
	return TileRef{
		Tile:    v & TileMask,
		HFlip:   v&HFlipMask != 0,
		VFlip:   v&VFlipMask != 0,
		Palette: uint8((v & PaletteMask) >> PaletteShift),
	}
}

// Attributes is one unpacked metatile attribute record.
type Attributes struct {
	Raw   uint32
	Layer LayerType
}

func decodeAttributes(v uint32) (Attributes, error) {
	layer := v >> layerTypeShift & layerTypeMask
	if layer > uint32(LayerBottomTop) {
		return Attributes{}, &asset.FormatError{Offset: -1, Msg: fmt.Sprintf("invalid metatile layer type %d", layer)}
	}
	return Attributes{Raw: v, Layer: LayerType(layer)}, nil
}

// Definition is one metatile: two 2x2 layers of tile references. Slots 0-3
// are the bottom layer, 4-7 the top, each row-major within its layer.
type Definition struct {
	Tiles [TilesPerMetatile]TileRef
	Attr  Attributes
}

// ParseDefinitions decodes the metatile definition table from the raw
// contents of metatiles.bin and metatile_attributes.bin. Both buffers must
// hold whole records and describe the same number of metatiles.
func ParseDefinitions(defs, attrs []byte) ([]Definition, error) {
	if len(defs)%defBytes != 0 {
		return nil, &asset.FormatError{
			Offset: int64(len(defs) - len(defs)%defBytes),
			Msg:    fmt.Sprintf("metatile data is %d bytes, not a multiple of %d byte definitions", len(defs), defBytes),
		}
	}
	if len(attrs)%attrBytes != 0 {
		return nil, &asset.FormatError{
			Offset: int64(len(attrs) - len(attrs)%attrBytes),
			Msg:    fmt.Sprintf("attribute data is %d bytes, not a multiple of %d byte records", len(attrs), attrBytes),
		}
	}
	if len(defs)/defBytes != len(attrs)/attrBytes {
		return nil, &asset.FormatError{
			Offset: -1,
			Msg:    fmt.Sprintf("%d metatile definitions but %d attribute records", len(defs)/defBytes, len(attrs)/attrBytes),
		}
	}

	defStream := bitstream.NewReader(bytes.NewReader(defs))
	attrStream := bitstream.NewReader(bytes.NewReader(attrs))

	out := make([]Definition, len(defs)/defBytes)
	for i := range out {
		for j := range out[i].Tiles {
			v, err := defStream.Next(2).Bytes().AsUInt16()
			if err != nil {
				return nil, err
			}
			out[i].Tiles[j] = DecodeTileRef(v)
		}

		v, err := attrStream.Next(attrBytes).Bytes().AsInt32()
		if err != nil {
			return nil, err
		}
		if out[i].Attr, err = decodeAttributes(uint32(v)); err != nil {
			return nil, err
		}
	}

	return out, nil
}

// Tileset holds the decoded tables of one tileset directory.
type Tileset struct {
	Metatiles []Definition
	Sheet     tile.Sheet
	Palettes  palette.Bank
}

// Pair is the primary/secondary tileset combination a layout draws from.
// Secondary may be nil for layouts that only use the primary tables.
type Pair struct {
	Primary   *Tileset
	Secondary *Tileset
}

func (p *Pair) metatileLimit() int {
	if p.Secondary == nil {
		return len(p.Primary.Metatiles)
	}
	return MetatilesInPrimary + len(p.Secondary.Metatiles)
}

func (p *Pair) definition(id int) (*Definition, error) {
	if id < MetatilesInPrimary && id < len(p.Primary.Metatiles) {
		return &p.Primary.Metatiles[id], nil
	}
	if sid := id - MetatilesInPrimary; p.Secondary != nil && sid >= 0 && sid < len(p.Secondary.Metatiles) {
		return &p.Secondary.Metatiles[sid], nil
	}
	return nil, &asset.ReferenceError{Kind: "metatile", Index: id, Limit: p.metatileLimit()}
}

func (p *Pair) tile(id int) (*tile.Tile, error) {
	if id < TilesInPrimary && id < len(p.Primary.Sheet.Tiles) {
		return &p.Primary.Sheet.Tiles[id], nil
	}
	if sid := id - TilesInPrimary; p.Secondary != nil && sid >= 0 && sid < len(p.Secondary.Sheet.Tiles) {
		return &p.Secondary.Sheet.Tiles[sid], nil
	}
	limit := len(p.Primary.Sheet.Tiles)
	if p.Secondary != nil {
		limit = TilesInPrimary + len(p.Secondary.Sheet.Tiles)
	}
	return nil, &asset.ReferenceError{Kind: "tile", Index: id, Limit: limit}
}

func (p *Pair) table(n int) (palette.Table, error) {
	if n < PalettesInPrimary || p.Secondary == nil {
		if n >= 0 && n < len(p.Primary.Palettes) {
			return p.Primary.Palettes[n], nil
		}
	} else if n < len(p.Secondary.Palettes) {
		return p.Secondary.Palettes[n], nil
	}
	limit := len(p.Primary.Palettes)
	if p.Secondary != nil && len(p.Secondary.Palettes) > limit {
		limit = len(p.Secondary.Palettes)
	}
	return nil, &asset.ReferenceError{Kind: "palette", Index: n, Limit: limit}
}
