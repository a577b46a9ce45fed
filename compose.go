package overmap

import (
	"image"
	"runtime"

	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"

	"github.com/gbakit/overmap/layout"
	"github.com/gbakit/overmap/tileset"
)

// Compositor stamps assembled metatiles into a full map canvas. Pad widens
// the canvas by that many metatiles of border pattern on every side.
type Compositor struct {
	Assembler *tileset.Assembler
	Pad       int

	// Workers bounds the parallel metatile prebuild; 0 means NumCPU.
	Workers int
}

// entryAt resolves the padded grid cell (x, y): inside the map bounds it
// reads the block map, outside it tiles the border pattern.
func entryAt(l *layout.Layout, x, y int) layout.Entry {
	if x >= 0 && x < l.Width && y >= 0 && y < l.Height {
		return l.At(x, y)
	}
	return l.BorderAt(x, y)
}

// distinctMetatiles collects the set of metatile ids a render will touch.
func distinctMetatiles(l *layout.Layout) []uint16 {
	seen := make(map[uint16]struct{}, len(l.Entries))
	var ids []uint16
	for _, e := range l.Entries {
		if _, ok := seen[e.Metatile]; !ok {
			seen[e.Metatile] = struct{}{}
			ids = append(ids, e.Metatile)
		}
	}
	for _, e := range l.Border {
		if _, ok := seen[e.Metatile]; !ok {
			seen[e.Metatile] = struct{}{}
			ids = append(ids, e.Metatile)
		}
	}
	return ids
}

// prebuild populates the assembler cache for every distinct metatile before
// any pixel is drawn, spreading builds across workers. Metatile builds are
// independent of each other, so the only shared state is the cache.
func (c *Compositor) prebuild(ids []uint16) error {
	workers := c.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(ids) {
		workers = len(ids)
	}

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			for i := w; i < len(ids); i += workers {
				if _, err := c.Assembler.Metatile(ids[i]); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return g.Wait()
}

// Render composites the whole padded grid row-major into a fresh canvas of
// (Width+2*Pad)*16 by (Height+2*Pad)*16 pixels. Any invalid reference
// aborts before drawing; no partial canvas is ever returned.
func (c *Compositor) Render(l *layout.Layout) (*image.RGBA, error) {
	if err := c.prebuild(distinctMetatiles(l)); err != nil {
		return nil, err
	}

	size := tileset.MetatileSize
	canvas := image.NewRGBA(image.Rect(0, 0, (l.Width+2*c.Pad)*size, (l.Height+2*c.Pad)*size))

	for gy := -c.Pad; gy < l.Height+c.Pad; gy++ {
		for gx := -c.Pad; gx < l.Width+c.Pad; gx++ {
			e := entryAt(l, gx, gy)
			m, err := c.Assembler.Metatile(e.Metatile)
			if err != nil {
				return nil, err
			}

			px := (gx + c.Pad) * size
			py := (gy + c.Pad) * size
			draw.Draw(canvas, image.Rect(px, py, px+size, py+size), m, image.Point{}, draw.Src)
		}
	}

	return canvas, nil
}
