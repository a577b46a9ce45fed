/*
Package asset resolves the on-disk layout of a pret-style decompilation
asset tree and defines the error taxonomy shared by the format decoders.

Relative to the asset root, the files of interest are:

	data/layouts/layouts.json                 layout table
	data/layouts/<name>/map.bin               block map
	data/layouts/<name>/border.bin            border pattern
	data/tilesets/{primary,secondary}/<name>/ one directory per tileset:
	    metatiles.bin, metatile_attributes.bin, tiles.png, palettes/NN.pal
*/
package asset

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// Layout is one entry of the layouts.json table.
type Layout struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Width             int    `json:"width"`
	Height            int    `json:"height"`
	PrimaryTileset    string `json:"primary_tileset"`
	SecondaryTileset  string `json:"secondary_tileset"`
	BorderFilepath    string `json:"border_filepath"`
	BlockdataFilepath string `json:"blockdata_filepath"`
}

type layoutsTable struct {
	Layouts []*Layout `json:"layouts"`
}

// Root is the top of a decompilation asset tree.
type Root string

func (r Root) layoutsPath() string {
	return filepath.Join(string(r), "data", "layouts", "layouts.json")
}

// Path resolves a path from layouts.json, which is recorded relative to the
// asset root.
func (r Root) Path(rel string) string {
	return filepath.Join(string(r), filepath.FromSlash(rel))
}

// TilesetDir maps a tileset label such as "gTileset_CeladonCity" to its
// directory under the asset root.
func (r Root) TilesetDir(label string, secondary bool) string {
	kind := "primary"
	if secondary {
		kind = "secondary"
	}
	name := snakeCase(strings.TrimPrefix(label, "gTileset_"))
	return filepath.Join(string(r), "data", "tilesets", kind, name)
}

// Layouts parses the layout table. Some tables carry null placeholder
// entries; those are skipped.
func (r Root) Layouts() ([]*Layout, error) {
	path := r.layoutsPath()
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &NotFoundError{Kind: "layout table", Name: "layouts.json", Path: path}
		}
		return nil, err
	}
	defer f.Close()

	var table layoutsTable
	if err := json.NewDecoder(f).Decode(&table); err != nil {
		return nil, &FormatError{File: path, Offset: -1, Msg: err.Error()}
	}

	layouts := make([]*Layout, 0, len(table.Layouts))
	for _, l := range table.Layouts {
		if l != nil {
			layouts = append(layouts, l)
		}
	}
	return layouts, nil
}

// FindLayout returns the table entry whose id matches exactly.
func (r Root) FindLayout(id string) (*Layout, error) {
	layouts, err := r.Layouts()
	if err != nil {
		return nil, err
	}
	for _, l := range layouts {
		if l.ID == id {
			return l, nil
		}
	}
	return nil, &NotFoundError{Kind: "layout", Name: id, Path: r.layoutsPath()}
}

// snakeCase converts a CamelCase tileset name to the snake_case directory
// convention, keeping acronym runs together: "SSAnne" becomes "ss_anne".
func snakeCase(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) && i > 0 {
			prevLower := unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if prevLower || (unicode.IsUpper(runes[i-1]) && nextLower) {
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
