package overmap

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/gbakit/overmap/asset"
	"github.com/gbakit/overmap/palette"
	"github.com/gbakit/overmap/tile"
	"github.com/gbakit/overmap/tileset"
)

func readAssetFile(path, kind string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &asset.NotFoundError{Kind: kind, Name: filepath.Base(path), Path: path}
		}
		return nil, err
	}
	return b, nil
}

// loadTileset decodes one tileset directory: metatiles.bin,
// metatile_attributes.bin, tiles.png and the palettes/ directory.
func loadTileset(dir string) (*tileset.Tileset, error) {
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return nil, &asset.NotFoundError{Kind: "tileset", Name: filepath.Base(dir), Path: dir}
	}

	defsPath := filepath.Join(dir, "metatiles.bin")
	defs, err := readAssetFile(defsPath, "metatile data")
	if err != nil {
		return nil, err
	}
	attrsPath := filepath.Join(dir, "metatile_attributes.bin")
	attrs, err := readAssetFile(attrsPath, "metatile attributes")
	if err != nil {
		return nil, err
	}
	metatiles, err := tileset.ParseDefinitions(defs, attrs)
	if err != nil {
		return nil, asset.Annotate(err, defsPath)
	}

	sheet, err := loadSheet(dir)
	if err != nil {
		return nil, err
	}

	palettes, err := loadPalettes(filepath.Join(dir, "palettes"))
	if err != nil {
		return nil, err
	}

	return &tileset.Tileset{
		Metatiles: metatiles,
		Sheet:     sheet,
		Palettes:  palettes,
	}, nil
}

// loadSheet reads the tile sheet of a tileset directory: an indexed
// tiles.png, or a raw packed stream when no PNG is present. The PNG's
// stored color table is irrelevant here; only the per-pixel indices survive
// into the sheet.
func loadSheet(dir string) (tile.Sheet, error) {
	path := filepath.Join(dir, "tiles.png")
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return loadRawSheet(dir)
		}
		return tile.Sheet{}, err
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return tile.Sheet{}, &asset.FormatError{File: path, Offset: -1, Msg: err.Error()}
	}
	pm, ok := img.(*image.Paletted)
	if !ok {
		return tile.Sheet{}, &asset.FormatError{File: path, Offset: -1, Msg: "tile sheet is not an indexed png"}
	}

	sheet, err := tile.FromPaletted(pm)
	if err != nil {
		return tile.Sheet{}, asset.Annotate(err, path)
	}
	return sheet, nil
}

// loadRawSheet falls back to the packed pixel-index dumps some trees keep
// alongside or instead of tiles.png.
func loadRawSheet(dir string) (tile.Sheet, error) {
	for _, raw := range []struct {
		name  string
		depth int
	}{
		{"tiles.4bpp", 4},
		{"tiles.8bpp", 8},
	} {
		path := filepath.Join(dir, raw.name)
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return tile.Sheet{}, err
		}

		sheet, err := tile.Decode(data, raw.depth)
		if err != nil {
			return tile.Sheet{}, asset.Annotate(err, path)
		}
		return sheet, nil
	}

	return tile.Sheet{}, &asset.NotFoundError{
		Kind: "tile sheet",
		Name: "tiles.png",
		Path: filepath.Join(dir, "tiles.png"),
	}
}

// loadPalettes reads the numbered palette files of a tileset, sorted by
// their numeric stem. JASC-PAL text (.pal) is preferred; a binary .gbapal
// stands in when no text palette with the same number exists.
func loadPalettes(dir string) (palette.Bank, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &asset.NotFoundError{Kind: "palettes", Name: filepath.Base(dir), Path: dir}
		}
		return nil, err
	}

	paths := make(map[int]string)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if ext != ".pal" && ext != ".gbapal" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(e.Name(), ext))
		if err != nil {
			continue
		}
		if prev, ok := paths[n]; ok && filepath.Ext(prev) == ".pal" {
			continue
		}
		paths[n] = filepath.Join(dir, e.Name())
	}
	if len(paths) == 0 {
		return nil, &asset.NotFoundError{Kind: "palettes", Name: filepath.Base(dir), Path: dir}
	}

	numbers := make([]int, 0, len(paths))
	for n := range paths {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)

	bank := make(palette.Bank, 0, len(numbers))
	for _, n := range numbers {
		path := paths[n]
		table, err := loadPaletteFile(path)
		if err != nil {
			return nil, err
		}
		bank = append(bank, table)
	}

	return bank, nil
}

func loadPaletteFile(path string) (palette.Table, error) {
	if filepath.Ext(path) == ".pal" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		table, err := palette.ParseJASC(f)
		if err != nil {
			return nil, asset.Annotate(err, path)
		}
		return table, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	bank, err := palette.Decode(data)
	if err != nil {
		return nil, asset.Annotate(err, path)
	}
	if len(bank) != 1 {
		return nil, &asset.FormatError{
			File:   path,
			Offset: -1,
			Msg:    fmt.Sprintf("expected a single 16 color table, found %d", len(bank)),
		}
	}
	return bank[0], nil
}
