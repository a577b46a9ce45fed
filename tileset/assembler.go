package tileset

import (
	"image"
	"sync"

	"github.com/gbakit/overmap/asset"
	"github.com/gbakit/overmap/tile"
)

// Assembler builds metatile bitmaps from a tileset pair, caching each built
// metatile by id. Builds are pure, so two goroutines racing to populate the
// same id at worst waste one build; the lock only guards the map itself.
type Assembler struct {
	pair *Pair

	mu    sync.Mutex
	cache map[uint16]*image.RGBA
}

// NewAssembler returns an assembler with an empty cache. The cache is meant
// to live for a single render invocation.
func NewAssembler(p *Pair) *Assembler {
	return &Assembler{
		pair:  p,
		cache: make(map[uint16]*image.RGBA),
	}
}

// Metatile returns the composited 16x16 bitmap for id, building it on first
// use. Callers must not modify the returned image.
func (a *Assembler) Metatile(id uint16) (*image.RGBA, error) {
	a.mu.Lock()
	img, ok := a.cache[id]
	a.mu.Unlock()
	if ok {
		return img, nil
	}

	img, err := a.pair.Build(id)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	a.cache[id] = img
	a.mu.Unlock()

	return img, nil
}

// Build composites the metatile with the given id into a fresh 16x16 RGBA
// bitmap. The bottom layer is painted fully opaque; the top layer is then
// keyed on raw index 0, leaving the bottom pixel visible there. Build is
// deterministic: identical inputs produce byte-identical bitmaps.
func (p *Pair) Build(id uint16) (*image.RGBA, error) {
	def, err := p.definition(int(id))
	if err != nil {
		return nil, err
	}

	img := image.NewRGBA(image.Rect(0, 0, MetatileSize, MetatileSize))

	for slot, ref := range def.Tiles {
		top := slot >= TilesPerMetatile/2
		quad := slot % (TilesPerMetatile / 2)
		ox := quad % 2 * tile.Width
		oy := quad / 2 * tile.Width

		t, err := p.tile(int(ref.Tile))
		if err != nil {
			return nil, err
		}
		table, err := p.table(int(ref.Palette))
		if err != nil {
			return nil, err
		}

		for y := 0; y < tile.Width; y++ {
			sy := y
			if ref.VFlip {
				sy = tile.Width - 1 - y
			}
			for x := 0; x < tile.Width; x++ {
				sx := x
				if ref.HFlip {
					sx = tile.Width - 1 - x
				}

				idx := t[sy*tile.Width+sx]
				if top && idx == 0 {
					continue
				}
				if int(idx) >= len(table) {
					return nil, &asset.ReferenceError{Kind: "color", Index: int(idx), Limit: len(table)}
				}
				img.SetRGBA(ox+x, oy+y, table[idx])
			}
		}
	}

	return img, nil
}
