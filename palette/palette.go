/*
Package palette decodes GBA color palettes.

A binary palette is a flat sequence of 16-bit little-endian color records
packed as 0BBBBBGGGGGRRRRR; sixteen records form one 32 byte table. Tiles
store 4-bit indices into a selected table rather than colors, and index 0 of
a table is treated as transparent when the table is applied to the top
render layer.

The text variant is a JASC-PAL file: a three line header ("JASC-PAL",
"0100", "16") followed by sixteen "R G B" lines with 8-bit decimal channels.
*/
package palette

import (
	"bufio"
	"bytes"
	"fmt"
	"image/color"
	"io"
	"strings"

	bitstream "github.com/gravestench/bitstream/pkg"

	"github.com/gbakit/overmap/asset"
)

const (
	// ColorsPerTable is fixed by the hardware palette RAM layout.
	ColorsPerTable = 16

	colorBytes = 2
	tableBytes = ColorsPerTable * colorBytes

	redShift   = 0
	greenShift = 5
	blueShift  = 10
	channelMax = 0x1f
)

// Table is one fixed-size color table. Always ColorsPerTable long.
type Table []color.RGBA

// Bank is an ordered set of tables decoded from one palette buffer.
type Bank []Table

// expand widens a 5-bit channel to 8 bits, replicating the high bits into
// the low ones so that full intensity maps to 0xff.
func expand(v uint16) uint8 {
	return uint8(v<<3 | v>>2)
}

func decodeColor(v uint16) color.RGBA {
	return color.RGBA{
		R: expand(v >> redShift & channelMax),
		G: expand(v >> greenShift & channelMax),
		B: expand(v >> blueShift & channelMax),
		A: 0xff,
	}
}

// Decode splits data into 16 color tables. The buffer must hold a whole
// number of tables.
func Decode(data []byte) (Bank, error) {
	if len(data)%tableBytes != 0 {
		return nil, &asset.FormatError{
			Offset: int64(len(data) - len(data)%tableBytes),
			Msg:    fmt.Sprintf("palette length %d is not a multiple of %d byte tables", len(data), tableBytes),
		}
	}

	stream := bitstream.NewReader(bytes.NewReader(data))

	bank := make(Bank, 0, len(data)/tableBytes)
	for t := 0; t < len(data)/tableBytes; t++ {
		table := make(Table, ColorsPerTable)
		for i := range table {
			v, err := stream.Next(colorBytes).Bytes().AsUInt16()
			if err != nil {
				return nil, err
			}
			table[i] = decodeColor(v)
		}
		bank = append(bank, table)
	}

	return bank, nil
}

// ParseJASC reads a single JASC-PAL table.
func ParseJASC(r io.Reader) (Table, error) {
	s := bufio.NewScanner(r)

	line := func() (string, bool) {
		if !s.Scan() {
			return "", false
		}
		return strings.TrimSpace(s.Text()), true
	}

	for i, want := range []string{"JASC-PAL", "0100", "16"} {
		got, ok := line()
		if !ok || got != want {
			return nil, &asset.FormatError{
				Offset: -1,
				Msg:    fmt.Sprintf("JASC-PAL header line %d: expected %q, got %q", i+1, want, got),
			}
		}
	}

	table := make(Table, ColorsPerTable)
	for i := range table {
		l, ok := line()
		if !ok {
			return nil, &asset.FormatError{Offset: -1, Msg: fmt.Sprintf("JASC-PAL truncated at color %d", i)}
		}
		var r8, g8, b8 int
		if n, err := fmt.Sscanf(l, "%d %d %d", &r8, &g8, &b8); n != 3 || err != nil {
			return nil, &asset.FormatError{Offset: -1, Msg: fmt.Sprintf("JASC-PAL color %d: malformed line %q", i, l)}
		}
		if r8 > 0xff || g8 > 0xff || b8 > 0xff || r8 < 0 || g8 < 0 || b8 < 0 {
			return nil, &asset.FormatError{Offset: -1, Msg: fmt.Sprintf("JASC-PAL color %d: channel out of range in %q", i, l)}
		}
		table[i] = color.RGBA{R: uint8(r8), G: uint8(g8), B: uint8(b8), A: 0xff}
	}

	return table, s.Err()
}
