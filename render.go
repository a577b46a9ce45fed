package overmap

import (
	"image"

	"github.com/gbakit/overmap/asset"
	"github.com/gbakit/overmap/layout"
	"github.com/gbakit/overmap/tileset"
)

// Options control a single render invocation.
type Options struct {
	// BorderPad is the width of the border-pattern rim, in metatiles.
	BorderPad int

	// Workers bounds the parallel metatile prebuild; 0 means NumCPU.
	Workers int
}

// Render loads every asset a layout needs and composites it into one RGBA
// image. All decoded tables and the metatile cache are scoped to this call;
// nothing is reused across invocations.
func (r *Renderer) Render(layoutID string, opts Options) (*image.RGBA, error) {
	entry, err := r.root.FindLayout(layoutID)
	if err != nil {
		return nil, err
	}
	r.logger.Printf("rendering %s (%dx%d, %s + %s)", entry.ID, entry.Width, entry.Height,
		entry.PrimaryTileset, entry.SecondaryTileset)

	blockPath := r.root.Path(entry.BlockdataFilepath)
	blocks, err := readAssetFile(blockPath, "block map")
	if err != nil {
		return nil, err
	}
	border, err := readAssetFile(r.root.Path(entry.BorderFilepath), "border pattern")
	if err != nil {
		return nil, err
	}

	grid, err := layout.Parse(blocks, entry.Width, entry.Height, border)
	if err != nil {
		return nil, asset.Annotate(err, blockPath)
	}

	primary, err := loadTileset(r.root.TilesetDir(entry.PrimaryTileset, false))
	if err != nil {
		return nil, err
	}
	pair := &tileset.Pair{Primary: primary}
	if entry.SecondaryTileset != "" {
		if pair.Secondary, err = loadTileset(r.root.TilesetDir(entry.SecondaryTileset, true)); err != nil {
			return nil, err
		}
	}

	c := &Compositor{
		Assembler: tileset.NewAssembler(pair),
		Pad:       opts.BorderPad,
		Workers:   opts.Workers,
	}
	return c.Render(grid)
}

// Tileset loads a single tileset directory by its table label, for
// inspection commands.
func (r *Renderer) Tileset(label string, secondary bool) (*tileset.Tileset, error) {
	return loadTileset(r.root.TilesetDir(label, secondary))
}
