// Package layout turns pin-set declarations into positioned primitives.
//
// A pin-set stacks its pins along one main axis (vertical for the left and
// right sides, horizontal for top and bottom) while lead lines and label
// boxes extend along the cross axis away from the component body. Packed
// sets place pins at a fixed pitch; spread sets distribute them over a
// declared span. All coordinates are absolute device units on the canvas.
package layout

import (
	"strconv"

	"github.com/hwaldner/pinout/pkg/command"
	"github.com/hwaldner/pinout/pkg/errors"
	"github.com/hwaldner/pinout/pkg/metrics"
	"github.com/hwaldner/pinout/pkg/render/diagram/primitive"
	"github.com/hwaldner/pinout/pkg/theme"
)

const (
	numberScale   = 0.75 // pin-number size relative to the pin's font size
	textPadRatio  = 0.30 // horizontal padding inside label boxes
	baselineRatio = 0.35 // baseline drop for vertically centered text
)

// Cursor is the drawing origin for the next pin-set. It is set by ANCHOR
// commands and advanced along the main axis after each laid-out set.
type Cursor struct {
	X, Y float64
	Set  bool
}

// Entry is one row of a pin-set: either a regular pin or a pin-text row.
// Index is the row's command index, used in error locations.
type Entry struct {
	Index int
	Pin   *command.AddPin
	Text  *command.AddPinText
}

// Engine lays out pin-sets against a resolved theme. The zero metrics
// provider is replaced with the built-in approximation.
type Engine struct {
	Theme   *theme.Store
	Metrics metrics.Provider
}

// NewEngine creates a layout engine for one document's theme.
func NewEngine(store *theme.Store) *Engine {
	return &Engine{Theme: store, Metrics: metrics.Approx{}}
}

// PinSet lays out entries per spec starting at the cursor and advances the
// cursor by the set's main-axis footprint. Pin numbers count up from
// firstNumber. The returned primitives are in paint order: leads first,
// then boxes, labels and numbers per pin, in declaration order.
func (e *Engine) PinSet(spec command.PinSetSpec, entries []Entry, cur *Cursor, firstNumber int) (primitive.List, error) {
	if !cur.Set {
		return nil, errors.New(errors.ErrCodeLayout, "pin-set before any ANCHOR")
	}
	if len(entries) == 0 {
		return nil, errors.New(errors.ErrCodeLayout, "pin-set declares no pins")
	}
	if spec.Pitch <= 0 {
		return nil, errors.New(errors.ErrCodeLayout, "pin-set needs a positive pitch, got %g", spec.Pitch)
	}
	if !spec.Packed && spec.Span <= 0 {
		return nil, errors.New(errors.ErrCodeLayout, "spread pin-set needs a positive span, got %g", spec.Span)
	}
	if spec.BoxLength <= 0 {
		return nil, errors.New(errors.ErrCodeLayout, "pin-set needs a positive box length, got %g", spec.BoxLength)
	}

	g := geometry(spec, cur)
	positions := mainPositions(spec, g.main0, len(entries))

	var out primitive.List
	for i, entry := range entries {
		prims, err := e.layoutEntry(spec, g, entry, positions[i], firstNumber+i)
		if err != nil {
			return nil, err
		}
		out = append(out, prims...)
	}

	if spec.Side.Vertical() {
		cur.Y += g.footprint(spec, len(entries))
	} else {
		cur.X += g.footprint(spec, len(entries))
	}
	return out, nil
}

// geom captures the axis mapping of one pin-set.
type geom struct {
	main0 float64 // main-axis coordinate of the first pin slot
	cross float64 // cross-axis coordinate of the component edge
	dir   float64 // cross-axis direction labels extend toward
}

func geometry(spec command.PinSetSpec, cur *Cursor) geom {
	g := geom{dir: 1}
	if spec.Side == command.SideLeft || spec.Side == command.SideTop {
		g.dir = -1
	}
	if spec.Side.Vertical() {
		g.main0, g.cross = cur.Y, cur.X
	} else {
		g.main0, g.cross = cur.X, cur.Y
	}
	return g
}

func (g geom) footprint(spec command.PinSetSpec, n int) float64 {
	if spec.Packed {
		return float64(n) * spec.Pitch
	}
	return spec.Span
}

// mainPositions computes each pin's main-axis coordinate.
//
// Packed mode steps by the pitch. Spread mode distributes over the span:
// end pins sit exactly on the span's ends unless center alignment on the
// main axis asks for centered spacing (span/n with a half-step inset). A
// single spread pin sits at the span's alignment point.
func mainPositions(spec command.PinSetSpec, main0 float64, n int) []float64 {
	pos := make([]float64, n)

	if spec.Packed {
		for i := range pos {
			pos[i] = main0 + float64(i)*spec.Pitch
		}
		return pos
	}

	if n == 1 {
		switch mainAlign(spec) {
		case alignStart:
			pos[0] = main0
		case alignEnd:
			pos[0] = main0 + spec.Span
		default:
			pos[0] = main0 + spec.Span/2
		}
		return pos
	}

	if mainAlign(spec) == alignCenter {
		step := spec.Span / float64(n)
		for i := range pos {
			pos[i] = main0 + step/2 + float64(i)*step
		}
		return pos
	}

	step := spec.Span / float64(n-1)
	for i := range pos {
		pos[i] = main0 + float64(i)*step
	}
	return pos
}

type align int

const (
	alignStart align = iota
	alignCenter
	alignEnd
)

// mainAlign projects the alignment flag governing the main axis.
func mainAlign(spec command.PinSetSpec) align {
	if spec.Side.Vertical() {
		switch spec.AlignY {
		case command.AlignYTop:
			return alignStart
		case command.AlignYBottom:
			return alignEnd
		}
		return alignCenter
	}
	switch spec.AlignX {
	case command.AlignXLeft:
		return alignStart
	case command.AlignXRight:
		return alignEnd
	}
	return alignCenter
}

func (e *Engine) layoutEntry(spec command.PinSetSpec, g geom, entry Entry, main float64, number int) (primitive.List, error) {
	var wire, typ, group string
	switch {
	case entry.Pin != nil:
		wire, typ, group = entry.Pin.Wire, entry.Pin.Type, entry.Pin.Group
	case entry.Text != nil:
		wire, typ, group = entry.Text.Wire, entry.Text.Type, entry.Text.Group
	default:
		return nil, errors.New(errors.ErrCodeInternal, "empty pin-set entry").At(entry.Index)
	}

	base := e.Theme.Resolve(theme.Ref{Type: typ, Group: group, Column: -1}, theme.AttrSet{})

	out := primitive.List{e.lead(spec, g, main, wire, base)}
	out = append(out, e.pinNumber(spec, g, main, number, base))

	if entry.Pin != nil {
		out = append(out, e.labelColumns(spec, g, main, entry.Pin)...)
		return out, nil
	}
	return append(out, e.pinText(spec, g, main, entry.Text)...), nil
}

// lead draws the line from the component edge out to the label stack,
// styled by the pin's wire when one is named.
func (e *Engine) lead(spec command.PinSetSpec, g geom, main float64, wire string, base theme.Style) primitive.Primitive {
	stroke, width, opacity := base.BorderColor, base.BorderWidth, base.BorderOpacity
	if w, ok := e.Theme.Wire(wire); ok {
		stroke, width, opacity = w.Color, w.Thickness, w.Opacity
	}

	outer := g.cross + g.dir*spec.LeadLength
	l := primitive.Line{Stroke: stroke, Width: width, Opacity: opacity}
	if spec.Side.Vertical() {
		l.X1, l.Y1, l.X2, l.Y2 = g.cross, main, outer, main
	} else {
		l.X1, l.Y1, l.X2, l.Y2 = main, g.cross, main, outer
	}
	return l
}

// pinNumber places the sequential pin number beside the lead's midpoint,
// offset by the spec's lead step.
func (e *Engine) pinNumber(spec command.PinSetSpec, g geom, main float64, number int, base theme.Style) primitive.Primitive {
	mid := g.cross + g.dir*spec.LeadLength/2
	t := primitive.TextRun{
		Text:   strconv.Itoa(number),
		Family: base.FontFamily,
		Size:   base.FontSize * numberScale,
		Color:  base.FontColor,
		Anchor: primitive.AnchorMiddle,
	}
	if spec.Side.Vertical() {
		t.X, t.Y = mid, main-spec.LeadStep
	} else {
		t.X, t.Y = main-spec.LeadStep, mid
		t.Rotation = rotationFor(spec.Side)
	}
	return t
}

// labelColumns emits one box and text run per populated function label,
// stepped along the cross axis.
func (e *Engine) labelColumns(spec command.PinSetSpec, g geom, main float64, pin *command.AddPin) primitive.List {
	var out primitive.List
	for col, label := range pin.Labels {
		if label == "" {
			continue
		}
		st := e.Theme.Resolve(theme.Ref{Type: pin.Type, Group: pin.Group, Column: col}, theme.AttrSet{})
		r := e.columnBox(spec, g, main, col, st)
		out = append(out, r, e.boxText(spec, r, label, st))
	}
	return out
}

// columnBox computes the rectangle of label column col for a pin at main.
func (e *Engine) columnBox(spec command.PinSetSpec, g geom, main float64, col int, st theme.Style) primitive.Rect {
	inner := g.cross + g.dir*(spec.LeadLength+float64(col)*(spec.BoxLength+spec.ColumnGap))
	lo := inner
	if g.dir < 0 {
		lo = inner - spec.BoxLength
	}

	r := primitive.Rect{
		Stroke:        st.BorderColor,
		StrokeWidth:   st.BorderWidth,
		StrokeOpacity: st.BorderOpacity,
		Fill:          st.FillColor,
		FillOpacity:   st.FillOpacity,
	}
	if spec.Side.Vertical() {
		r.X, r.Y = lo, main-spec.Pitch/2
		r.W, r.H = spec.BoxLength, spec.Pitch
	} else {
		r.X, r.Y = main-spec.Pitch/2, lo
		r.W, r.H = spec.Pitch, spec.BoxLength
	}
	return r
}

// boxText anchors a label inside its box per the set's alignment flags.
// Top and bottom sides rotate the text to run along the lead axis.
func (e *Engine) boxText(spec command.PinSetSpec, box primitive.Rect, text string, st theme.Style) primitive.Primitive {
	t := primitive.TextRun{
		Text:   text,
		Family: st.FontFamily,
		Size:   st.FontSize,
		Color:  st.FontColor,
	}

	if !spec.Side.Vertical() {
		t.X = box.X + box.W/2
		t.Y = box.Y + box.H/2
		t.Anchor = primitive.AnchorMiddle
		t.Rotation = rotationFor(spec.Side)
		return t
	}

	pad := st.FontSize * textPadRatio
	switch spec.AlignX {
	case command.AlignXLeft:
		t.X, t.Anchor = box.X+pad, primitive.AnchorStart
	case command.AlignXRight:
		t.X, t.Anchor = box.X+box.W-pad, primitive.AnchorEnd
	default:
		t.X, t.Anchor = box.X+box.W/2, primitive.AnchorMiddle
	}
	switch spec.AlignY {
	case command.AlignYTop:
		t.Y = box.Y + st.FontSize
	case command.AlignYBottom:
		t.Y = box.Y + box.H - pad
	default:
		t.Y = box.Y + box.H/2 + st.FontSize*baselineRatio
	}
	return t
}

// pinText emits the optional column-0 label box plus the free-form text of
// a pin-text row, running outward past the label stack.
func (e *Engine) pinText(spec command.PinSetSpec, g geom, main float64, pt *command.AddPinText) primitive.List {
	var out primitive.List
	cols := 0
	if pt.Label != "" {
		st := e.Theme.Resolve(theme.Ref{Type: pt.Type, Group: pt.Group, Column: 0}, theme.AttrSet{})
		r := e.columnBox(spec, g, main, 0, st)
		out = append(out, r, e.boxText(spec, r, pt.Label, st))
		cols = 1
	}
	if pt.Text == "" {
		return out
	}

	font, ok := e.Theme.Font(pt.Theme)
	if !ok {
		font = theme.FontTheme{Family: theme.DefaultFontFamily, Size: theme.DefaultFontSize, Color: theme.DefaultFontColor}
	}

	start := g.cross + g.dir*(spec.LeadLength+float64(cols)*(spec.BoxLength+spec.ColumnGap)+spec.ColumnGap)
	t := primitive.TextRun{
		Text:    pt.Text,
		Family:  font.Family,
		Size:    font.Size,
		Color:   font.Color,
		Outline: font.OutlineColor,
	}
	if g.dir < 0 {
		t.Anchor = primitive.AnchorEnd
	}
	if spec.Side.Vertical() {
		t.X, t.Y = start, main+font.Size*baselineRatio
	} else {
		t.X, t.Y = main, start
		t.Rotation = rotationFor(spec.Side)
	}
	return append(out, t)
}

// rotationFor returns the text rotation for horizontal pin-sets: labels on
// the top side read upward, bottom-side labels read downward.
func rotationFor(side command.Side) float64 {
	if side == command.SideTop {
		return -90
	}
	return 90
}
