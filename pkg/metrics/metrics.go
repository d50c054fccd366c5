// Package metrics provides pluggable text measurement for layout.
//
// Exact glyph metrics would require loading font files, which the layout
// engine deliberately avoids. The default provider approximates advance
// widths from average glyph ratios, which is accurate enough for box sizing
// and anchor placement in diagram output.
package metrics

// Provider measures text for a resolved font.
type Provider interface {
	// Advance returns the rendered width of text at the given family and
	// size, in the same device units as the size.
	Advance(family string, size float64, text string) float64
	// LineHeight returns the baseline-to-baseline distance for the family
	// and size.
	LineHeight(family string, size float64) float64
}

const (
	charWidthRatio   = 0.55
	monoWidthRatio   = 0.60
	lineHeightRatio  = 1.2
	narrowGlyphRatio = 0.30
	narrowGlyphs     = "iljI.,:;'|!`"
)

// Approx estimates text metrics from per-glyph width ratios. It is the
// default Provider and needs no font files.
type Approx struct{}

// Advance sums approximate glyph widths. Narrow glyphs count at a reduced
// ratio; monospace families use a single fixed ratio.
func (Approx) Advance(family string, size float64, text string) float64 {
	if isMonospace(family) {
		return float64(len([]rune(text))) * size * monoWidthRatio
	}

	var w float64
	for _, r := range text {
		if isNarrow(r) {
			w += size * narrowGlyphRatio
		} else {
			w += size * charWidthRatio
		}
	}
	return w
}

// LineHeight returns a fixed multiple of the font size.
func (Approx) LineHeight(_ string, size float64) float64 {
	return size * lineHeightRatio
}

func isNarrow(r rune) bool {
	for _, n := range narrowGlyphs {
		if r == n {
			return true
		}
	}
	return false
}

func isMonospace(family string) bool {
	switch family {
	case "monospace", "Courier", "Courier New", "Consolas", "Menlo":
		return true
	}
	return false
}
