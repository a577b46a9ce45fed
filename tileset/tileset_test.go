package tileset

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gbakit/overmap/asset"
)

func packDefinition(refs ...uint16) []byte {
	if len(refs) != TilesPerMetatile {
		panic("definition needs 8 tile references")
	}
	buf := make([]byte, defBytes)
	for i, v := range refs {
		binary.LittleEndian.PutUint16(buf[i*2:], v)
	}
	return buf
}

func packAttributes(vs ...uint32) []byte {
	buf := make([]byte, len(vs)*attrBytes)
	for i, v := range vs {
		binary.LittleEndian.PutUint32(buf[i*attrBytes:], v)
	}
	return buf
}

func TestDecodeTileRef(t *testing.T) {
	ref := DecodeTileRef(0x4c03)
	assert.EqualValues(t, 3, ref.Tile)
	assert.True(t, ref.HFlip)
	assert.True(t, ref.VFlip)
	assert.EqualValues(t, 4, ref.Palette)

	ref = DecodeTileRef(0x03ff)
	assert.EqualValues(t, 0x3ff, ref.Tile)
	assert.False(t, ref.HFlip)
	assert.False(t, ref.VFlip)
	assert.EqualValues(t, 0, ref.Palette)
}

func TestParseDefinitions(t *testing.T) {
	defs := packDefinition(0x4c03, 1, 2, 3, 4, 5, 6, 7)
	defs = append(defs, packDefinition(8, 9, 10, 11, 12, 13, 14, 15)...)
	attrs := packAttributes(1<<layerTypeShift, 2<<layerTypeShift)

	out, err := ParseDefinitions(defs, attrs)
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.EqualValues(t, 3, out[0].Tiles[0].Tile)
	assert.True(t, out[0].Tiles[0].HFlip)
	assert.EqualValues(t, 8, out[1].Tiles[0].Tile)

	assert.Equal(t, LayerBottomMiddle, out[0].Attr.Layer)
	assert.Equal(t, LayerBottomTop, out[1].Attr.Layer)
}

func TestParseDefinitionsRagged(t *testing.T) {
	attrs := packAttributes(0)

	for _, n := range []int{1, 15, 17, 31} {
		_, err := ParseDefinitions(make([]byte, n), attrs)
		var fe *asset.FormatError
		assert.ErrorAs(t, err, &fe, "defs length %d", n)
	}

	defs := packDefinition(0, 0, 0, 0, 0, 0, 0, 0)
	for _, n := range []int{1, 3, 5} {
		_, err := ParseDefinitions(defs, make([]byte, n))
		var fe *asset.FormatError
		assert.ErrorAs(t, err, &fe, "attrs length %d", n)
	}
}

func TestParseDefinitionsCountMismatch(t *testing.T) {
	defs := packDefinition(0, 0, 0, 0, 0, 0, 0, 0)
	attrs := packAttributes(0, 0)

	_, err := ParseDefinitions(defs, attrs)
	var fe *asset.FormatError
	assert.ErrorAs(t, err, &fe)
}

func TestParseDefinitionsBadLayerType(t *testing.T) {
	defs := packDefinition(0, 0, 0, 0, 0, 0, 0, 0)
	attrs := packAttributes(3 << layerTypeShift)

	_, err := ParseDefinitions(defs, attrs)
	var fe *asset.FormatError
	assert.ErrorAs(t, err, &fe)
}
