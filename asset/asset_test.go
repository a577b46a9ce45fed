package asset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnakeCase(t *testing.T) {
	for in, want := range map[string]string{
		"General":      "general",
		"CeladonCity":  "celadon_city",
		"MtEmber":      "mt_ember",
		"SSAnne":       "ss_anne",
		"PokemonTower": "pokemon_tower",
		"general":      "general",
	} {
		assert.Equal(t, want, snakeCase(in), "input %q", in)
	}
}

func TestTilesetDir(t *testing.T) {
	r := Root("/roms/firered")

	assert.Equal(t,
		filepath.Join("/roms/firered", "data", "tilesets", "primary", "general"),
		r.TilesetDir("gTileset_General", false))
	assert.Equal(t,
		filepath.Join("/roms/firered", "data", "tilesets", "secondary", "celadon_city"),
		r.TilesetDir("gTileset_CeladonCity", true))
}

func writeLayouts(t *testing.T, root, body string) {
	t.Helper()
	dir := filepath.Join(root, "data", "layouts")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "layouts.json"), []byte(body), 0o644))
}

func TestLayouts(t *testing.T) {
	root := t.TempDir()
	writeLayouts(t, root, `{"layouts": [null, {"id": "LAYOUT_A", "width": 3, "height": 4}, {"id": "LAYOUT_B"}]}`)

	layouts, err := Root(root).Layouts()
	require.NoError(t, err)
	require.Len(t, layouts, 2)
	assert.Equal(t, "LAYOUT_A", layouts[0].ID)
	assert.Equal(t, 3, layouts[0].Width)
	assert.Equal(t, "LAYOUT_B", layouts[1].ID)
}

func TestLayoutsMissingTable(t *testing.T) {
	_, err := Root(t.TempDir()).Layouts()
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "layout table", nf.Kind)
}

func TestLayoutsMalformed(t *testing.T) {
	root := t.TempDir()
	writeLayouts(t, root, `{"layouts": [`)

	_, err := Root(root).Layouts()
	var fe *FormatError
	assert.ErrorAs(t, err, &fe)
}

func TestFindLayout(t *testing.T) {
	root := t.TempDir()
	writeLayouts(t, root, `{"layouts": [{"id": "LAYOUT_A"}]}`)

	l, err := Root(root).FindLayout("LAYOUT_A")
	require.NoError(t, err)
	assert.Equal(t, "LAYOUT_A", l.ID)

	_, err = Root(root).FindLayout("LAYOUT_B")
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "layout", nf.Kind)
	assert.Equal(t, "LAYOUT_B", nf.Name)
}

func TestErrorStrings(t *testing.T) {
	assert.Equal(t, "map.bin: offset 4: truncated",
		(&FormatError{File: "map.bin", Offset: 4, Msg: "truncated"}).Error())
	assert.Equal(t, "truncated",
		(&FormatError{Offset: -1, Msg: "truncated"}).Error())
	assert.Equal(t, "metatile index 700 out of range (limit 640)",
		(&ReferenceError{Kind: "metatile", Index: 700, Limit: 640}).Error())
	assert.Equal(t, `layout "LAYOUT_X" not found`,
		(&NotFoundError{Kind: "layout", Name: "LAYOUT_X"}).Error())
}

func TestAnnotate(t *testing.T) {
	fe := &FormatError{Offset: -1, Msg: "bad"}
	require.Same(t, fe, Annotate(fe, "tiles.png"))
	assert.Equal(t, "tiles.png", fe.File)

	// An existing file attribution is kept.
	Annotate(fe, "other.png")
	assert.Equal(t, "tiles.png", fe.File)

	re := &ReferenceError{Kind: "tile", Index: 1, Limit: 1}
	Annotate(re, "metatiles.bin")
	assert.Equal(t, "metatiles.bin", re.File)

	err := os.ErrNotExist
	assert.Same(t, err, Annotate(err, "x"))
}
