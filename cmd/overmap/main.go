package main

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/gift"
	"github.com/ericpauley/go-quantize/quantize"
	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/urfave/cli/v2"
	"golang.org/x/image/bmp"

	"github.com/gbakit/overmap"
)

const defaultOutput = "render.png"

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func newLogger(c *cli.Context) *log.Logger {
	logger := log.New(io.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
	}
	return logger
}

func newRenderer(c *cli.Context) (*overmap.Renderer, error) {
	root := c.String("root")
	if root == "" {
		return nil, cli.Exit("no asset root; set --root or PRET_ROOT", 1)
	}
	return overmap.New(root, newLogger(c)), nil
}

// scaleImage upscales with nearest-neighbour resampling so metatile pixels
// stay crisp.
func scaleImage(m image.Image, factor int) image.Image {
	b := m.Bounds()
	g := gift.New(gift.Resize(b.Dx()*factor, b.Dy()*factor, gift.NearestNeighborResampling))
	dst := image.NewRGBA(g.Bounds(b))
	g.Draw(dst, m)
	return dst
}

// quantizeImage reduces the render to a 256 color paletted image, which
// makes for considerably smaller PNG files on large maps.
func quantizeImage(m image.Image) image.Image {
	q := quantize.MedianCutQuantizer{}
	p := q.Quantize(make(color.Palette, 0, 256), m)
	dst := image.NewPaletted(m.Bounds(), p)
	for y := m.Bounds().Min.Y; y < m.Bounds().Max.Y; y++ {
		for x := m.Bounds().Min.X; x < m.Bounds().Max.X; x++ {
			dst.Set(x, y, m.At(x, y))
		}
	}
	return dst
}

func saveImage(path string, m image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".bmp":
		return bmp.Encode(f, m)
	default:
		return png.Encode(f, m)
	}
}

func renderCommand(c *cli.Context) error {
	if c.NArg() < 1 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	r, err := newRenderer(c)
	if err != nil {
		return err
	}

	m, err := r.Render(c.Args().First(), overmap.Options{
		BorderPad: c.Int("border"),
	})
	if err != nil {
		return cli.Exit(err, 1)
	}

	var out image.Image = m
	if factor := c.Int("scale"); factor > 1 {
		out = scaleImage(out, factor)
	}
	if c.Bool("quantize") {
		out = quantizeImage(out)
	}

	if err := saveImage(c.String("output"), out); err != nil {
		return cli.Exit(err, 1)
	}
	return nil
}

func layoutsCommand(c *cli.Context) error {
	r, err := newRenderer(c)
	if err != nil {
		return err
	}

	layouts, err := r.Layouts()
	if err != nil {
		return cli.Exit(err, 1)
	}
	for _, l := range layouts {
		fmt.Printf("%-40s %3dx%-3d %s + %s\n", l.ID, l.Width, l.Height, l.PrimaryTileset, l.SecondaryTileset)
	}
	return nil
}

func palettesCommand(c *cli.Context) error {
	if c.NArg() < 1 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	r, err := newRenderer(c)
	if err != nil {
		return err
	}

	ts, err := r.Tileset(c.Args().First(), c.Bool("secondary"))
	if err != nil {
		return cli.Exit(err, 1)
	}
	for i, table := range ts.Palettes {
		hexes := make([]string, len(table))
		for j, col := range table {
			hexes[j] = colorful.Color{
				R: float64(col.R) / 255,
				G: float64(col.G) / 255,
				B: float64(col.B) / 255,
			}.Hex()
		}
		fmt.Printf("%2d: %s\n", i, strings.Join(hexes, " "))
	}
	return nil
}

func main() {
	app := cli.NewApp()

	app.Name = "overmap"
	app.Usage = "render overworld map layouts from a decompilation asset tree"
	app.Version = "1.0.0"

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "root",
			EnvVars: []string{"PRET_ROOT"},
			Usage:   "path to the asset root",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:      "render",
			Usage:     "Render a layout to an image file",
			ArgsUsage: "LAYOUT",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "output",
					Aliases: []string{"o"},
					Value:   defaultOutput,
					Usage:   "output image path (.png or .bmp)",
				},
				&cli.IntFlag{
					Name:  "border",
					Usage: "border padding around the map, in metatiles",
				},
				&cli.IntFlag{
					Name:  "scale",
					Value: 1,
					Usage: "integer upscale factor",
				},
				&cli.BoolFlag{
					Name:  "quantize",
					Usage: "write a palette-quantized image",
				},
			},
			Action: renderCommand,
		},
		{
			Name:   "layouts",
			Usage:  "List the layouts available under the asset root",
			Action: layoutsCommand,
		},
		{
			Name:      "palettes",
			Usage:     "Dump the palette tables of a tileset",
			ArgsUsage: "TILESET",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "secondary",
					Usage: "look up a secondary tileset",
				},
			},
			Action: palettesCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
