/*
Package overmap renders overworld map layouts from a pret-style
decompilation asset tree into flat RGBA images.
*/
package overmap

import (
	"io"
	"log"

	"github.com/gbakit/overmap/asset"
)

// Renderer renders layouts found under one asset root. It holds no decoded
// asset state between renders; every Render loads fresh tables and owns its
// own metatile cache.
type Renderer struct {
	root   asset.Root
	logger *log.Logger
}

// New returns a renderer for the given asset root. A nil logger discards
// all output.
func New(root string, logger *log.Logger) *Renderer {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Renderer{
		root:   asset.Root(root),
		logger: logger,
	}
}

// Layouts lists the entries of the asset root's layout table.
func (r *Renderer) Layouts() ([]*asset.Layout, error) {
	return r.root.Layouts()
}
