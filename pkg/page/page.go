// Package page resolves named page sizes and DPI into canvas dimensions.
package page

import (
	"fmt"
	"sort"

	"github.com/hwaldner/pinout/pkg/errors"
)

// Default settings used when a document sets neither PAGE nor DPI.
const (
	DefaultID  = "A4-L"
	DefaultDPI = 300
)

// DPI bounds. Values outside this range produce unusably small or enormous
// canvases, so the resolver rejects them.
const (
	MinDPI = 50
	MaxDPI = 1200
)

const mmPerInch = 25.4

// size is a portrait page in millimeters.
type size struct {
	w, h float64
}

// ISO 216 and North American sizes, portrait orientation. The -P/-L suffix
// on the identifier selects the orientation.
var sizes = map[string]size{
	"A5":     {148, 210},
	"A4":     {210, 297},
	"A3":     {297, 420},
	"LETTER": {215.9, 279.4},
}

// CanvasDims is a resolved drawing canvas. Pixel dimensions are the device
// unit space all layout coordinates live in; the millimeter dimensions are
// kept for emitters that declare physical output size.
type CanvasDims struct {
	WidthPx  float64
	HeightPx float64
	WidthMM  float64
	HeightMM float64
	DPI      int
}

// IDs returns the supported page identifiers in sorted order, for error
// messages and CLI help.
func IDs() []string {
	ids := make([]string, 0, len(sizes)*2)
	for name := range sizes {
		ids = append(ids, name+"-P", name+"-L")
	}
	sort.Strings(ids)
	return ids
}

// Resolve maps a page identifier such as "A4-L" plus a DPI value to canvas
// dimensions. The identifier is a size name with a -P (portrait) or -L
// (landscape) suffix; a bare size name means portrait.
func Resolve(id string, dpi int) (CanvasDims, error) {
	if id == "" {
		id = DefaultID
	}
	if dpi == 0 {
		dpi = DefaultDPI
	}
	if dpi < MinDPI || dpi > MaxDPI {
		return CanvasDims{}, errors.New(errors.ErrCodeConfig,
			"DPI %d out of range [%d, %d]", dpi, MinDPI, MaxDPI)
	}

	name, landscape := id, false
	if len(id) > 2 {
		switch id[len(id)-2:] {
		case "-L":
			name, landscape = id[:len(id)-2], true
		case "-P":
			name = id[:len(id)-2]
		}
	}

	s, ok := sizes[name]
	if !ok {
		return CanvasDims{}, errors.New(errors.ErrCodeConfig,
			"unknown page size %q (supported: %v)", id, IDs())
	}
	if landscape {
		s.w, s.h = s.h, s.w
	}

	return CanvasDims{
		WidthPx:  s.w * float64(dpi) / mmPerInch,
		HeightPx: s.h * float64(dpi) / mmPerInch,
		WidthMM:  s.w,
		HeightMM: s.h,
		DPI:      dpi,
	}, nil
}

// String renders the canvas for log output.
func (c CanvasDims) String() string {
	return fmt.Sprintf("%.0fx%.0fpx (%gx%gmm @ %ddpi)", c.WidthPx, c.HeightPx, c.WidthMM, c.HeightMM, c.DPI)
}
