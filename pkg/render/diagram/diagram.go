// Package diagram assembles a validated document into drawable primitives.
//
// The assembler walks the document's draw steps in order, delegating
// pin-sets to the layout engine and translating standalone drawing commands
// directly. Output order equals command order, which the emitters treat as
// paint order.
package diagram

import (
	"path/filepath"
	"strings"

	"github.com/hwaldner/pinout/pkg/command"
	"github.com/hwaldner/pinout/pkg/document"
	"github.com/hwaldner/pinout/pkg/errors"
	"github.com/hwaldner/pinout/pkg/fonts"
	"github.com/hwaldner/pinout/pkg/metrics"
	"github.com/hwaldner/pinout/pkg/page"
	"github.com/hwaldner/pinout/pkg/render/diagram/layout"
	"github.com/hwaldner/pinout/pkg/render/diagram/primitive"
	"github.com/hwaldner/pinout/pkg/resource"
	"github.com/hwaldner/pinout/pkg/theme"
)

// Diagram is the assembled result: canvas dimensions, primitives in paint
// order and any external font stylesheets the emitter should embed.
type Diagram struct {
	Canvas     page.CanvasDims
	Primitives primitive.List
	Fonts      []string
}

// Assembler drives one document through layout. Loader may be nil when the
// document places no images or icons.
type Assembler struct {
	Engine  *layout.Engine
	Loader  resource.Loader
	Metrics metrics.Provider
}

// New creates an assembler for the document's theme with the default
// metrics approximation.
func New(doc *document.Document, loader resource.Loader) *Assembler {
	return &Assembler{
		Engine:  layout.NewEngine(doc.Theme),
		Loader:  loader,
		Metrics: metrics.Approx{},
	}
}

// Assemble lays out the whole document. Any failing step aborts with an
// error carrying that step's command index.
func Assemble(doc *document.Document, loader resource.Loader) (*Diagram, error) {
	return New(doc, loader).Assemble(doc)
}

// run is the mutable state of one assembly pass.
type run struct {
	doc     *document.Document
	out     *Diagram
	cursor  layout.Cursor
	pinNum  int
	message *messageState
}

type messageState struct {
	x, y     float64
	startX   float64
	lineStep float64
	family   string
	size     float64
	anchor   primitive.Anchor
}

// Assemble implements the walk described in the package comment.
func (a *Assembler) Assemble(doc *document.Document) (*Diagram, error) {
	r := &run{
		doc:    doc,
		out:    &Diagram{Canvas: doc.Canvas},
		pinNum: 1,
	}

	steps := doc.Steps
	for i := 0; i < len(steps); i++ {
		step := steps[i]
		var err error

		switch cmd := step.Cmd.(type) {
		case command.SetAnchor:
			r.cursor = layout.Cursor{
				X:   resolveCoord(cmd.X, doc.Canvas.WidthPx),
				Y:   resolveCoord(cmd.Y, doc.Canvas.HeightPx),
				Set: true,
			}
		case command.BeginPinSet:
			i, err = a.pinSet(r, cmd.Spec, steps, i)
		case command.AddPin, command.AddPinText:
			err = errors.New(errors.ErrCodeLayout, "%s outside a pin-set", step.Cmd.Word())
		case command.DrawBox:
			err = a.drawBox(r, cmd)
		case command.PlaceImage:
			err = a.placeImage(r, cmd)
		case command.PlaceIcon:
			err = a.placeIcon(r, cmd)
		case command.FetchFont:
			r.out.Fonts = append(r.out.Fonts, fonts.Resolve(cmd.URL))
		case command.BeginMessage:
			a.beginMessage(r, cmd)
		case command.AddText:
			err = a.addText(r, cmd)
		case command.EndMessage:
			r.message = nil
		}

		if err != nil {
			if e, ok := err.(*errors.Error); ok && e.Command < 0 {
				return nil, e.At(step.Index)
			}
			return nil, err
		}
	}

	return r.out, nil
}

// pinSet collects the contiguous pin rows following the declaration and
// hands them to the layout engine. Returns the index of the last consumed
// step.
func (a *Assembler) pinSet(r *run, spec command.PinSetSpec, steps []document.Step, at int) (int, error) {
	var entries []layout.Entry
	last := at
	for j := at + 1; j < len(steps); j++ {
		switch cmd := steps[j].Cmd.(type) {
		case command.AddPin:
			entries = append(entries, layout.Entry{Index: steps[j].Index, Pin: &cmd})
		case command.AddPinText:
			entries = append(entries, layout.Entry{Index: steps[j].Index, Text: &cmd})
		default:
			return a.finishPinSet(r, spec, entries, last)
		}
		last = j
	}
	return a.finishPinSet(r, spec, entries, last)
}

func (a *Assembler) finishPinSet(r *run, spec command.PinSetSpec, entries []layout.Entry, last int) (int, error) {
	prims, err := a.Engine.PinSet(spec, entries, &r.cursor, r.pinNum)
	if err != nil {
		return last, err
	}
	r.pinNum += len(entries)
	r.out.Primitives = append(r.out.Primitives, prims...)
	return last, nil
}

// drawBox places a standalone themed box with an optional centered caption.
func (a *Assembler) drawBox(r *run, cmd command.DrawBox) error {
	bt, ok := r.doc.Theme.Box(cmd.Theme)
	if !ok {
		return errors.New(errors.ErrCodeReference, "undeclared box theme %q", cmd.Theme)
	}

	w, h := bt.Width, bt.Height
	if cmd.Width != nil {
		w = resolveCoord(*cmd.Width, r.doc.Canvas.WidthPx)
	}
	if cmd.Height != nil {
		h = resolveCoord(*cmd.Height, r.doc.Canvas.HeightPx)
	}
	if w <= 0 || h <= 0 {
		return errors.New(errors.ErrCodeLayout, "box theme %q has no usable dimensions", cmd.Theme)
	}

	x := resolveCoord(cmd.X, r.doc.Canvas.WidthPx)
	y := resolveCoord(cmd.Y, r.doc.Canvas.HeightPx)
	switch cmd.AlignX {
	case command.AlignXCenter:
		x -= w / 2
	case command.AlignXRight:
		x -= w
	}
	switch cmd.AlignY {
	case command.AlignYCenter:
		y -= h / 2
	case command.AlignYBottom:
		y -= h
	}

	r.out.Primitives = append(r.out.Primitives, primitive.Rect{
		X: x, Y: y, W: w, H: h,
		RX: bt.CornerRX, RY: bt.CornerRY,
		Stroke:        bt.BorderColor,
		StrokeWidth:   bt.LineWidth,
		StrokeOpacity: bt.BorderOpacity,
		Fill:          bt.FillColor,
		FillOpacity:   bt.FillOpacity,
	})

	if cmd.Text != "" {
		st := r.doc.Theme.Resolve(theme.Ref{Column: -1}, theme.AttrSet{})
		r.out.Primitives = append(r.out.Primitives, primitive.TextRun{
			X:      x + w/2,
			Y:      y + h/2 + st.FontSize*0.35,
			Text:   cmd.Text,
			Family: st.FontFamily,
			Size:   st.FontSize,
			Color:  st.FontColor,
			Anchor: primitive.AnchorMiddle,
		})
	}
	return nil
}

func (a *Assembler) placeImage(r *run, cmd command.PlaceImage) error {
	ref := primitive.ImageRef{Path: cmd.Path}
	w, h, err := a.imageBounds(r, cmd.Path, cmd.X, cmd.Y, cmd.Width, cmd.Height, &ref.X, &ref.Y)
	if err != nil {
		return err
	}
	ref.W, ref.H = w, h
	if cmd.Rotation != nil {
		ref.Rotation = *cmd.Rotation
	}

	if cmd.CropX != nil || cmd.CropY != nil || cmd.CropW != nil || cmd.CropH != nil {
		iw, ih, err := a.intrinsic(cmd.Path)
		if err != nil {
			return err
		}
		ref.HasCrop = true
		ref.CropX = optCoord(cmd.CropX, iw, 0)
		ref.CropY = optCoord(cmd.CropY, ih, 0)
		ref.CropW = optCoord(cmd.CropW, iw, iw)
		ref.CropH = optCoord(cmd.CropH, ih, ih)
	}

	r.out.Primitives = append(r.out.Primitives, ref)
	return nil
}

// placeIcon places a vector icon. Icons are inlined into the output markup,
// so only SVG files are accepted.
func (a *Assembler) placeIcon(r *run, cmd command.PlaceIcon) error {
	if !strings.EqualFold(filepath.Ext(cmd.Path), ".svg") {
		return errors.New(errors.ErrCodeResource, "icon %s is not an SVG file", cmd.Path)
	}

	ref := primitive.IconRef{Path: cmd.Path}
	w, h, err := a.imageBounds(r, cmd.Path, cmd.X, cmd.Y, cmd.Width, cmd.Height, &ref.X, &ref.Y)
	if err != nil {
		return err
	}
	ref.W, ref.H = w, h
	if cmd.Rotation != nil {
		ref.Rotation = *cmd.Rotation
	}
	r.out.Primitives = append(r.out.Primitives, ref)
	return nil
}

// imageBounds resolves position and size for an image placement, falling
// back to intrinsic dimensions and preserving aspect ratio when only one
// size axis is given.
func (a *Assembler) imageBounds(r *run, path string, x, y, w, h *float64, outX, outY *float64) (float64, float64, error) {
	canvas := r.doc.Canvas
	*outX = optCoord(x, canvas.WidthPx, 0)
	*outY = optCoord(y, canvas.HeightPx, 0)

	if w != nil && h != nil {
		return resolveCoord(*w, canvas.WidthPx), resolveCoord(*h, canvas.HeightPx), nil
	}

	iw, ih, err := a.intrinsic(path)
	if err != nil {
		return 0, 0, err
	}
	switch {
	case w != nil:
		rw := resolveCoord(*w, canvas.WidthPx)
		return rw, rw * ih / iw, nil
	case h != nil:
		rh := resolveCoord(*h, canvas.HeightPx)
		return rh * iw / ih, rh, nil
	}
	return iw, ih, nil
}

func (a *Assembler) intrinsic(path string) (float64, float64, error) {
	if a.Loader == nil {
		return 0, 0, errors.New(errors.ErrCodeResource, "no resource loader configured for %s", path)
	}
	w, h, err := a.Loader.Dimensions(path)
	if err != nil {
		return 0, 0, err
	}
	if w <= 0 || h <= 0 {
		return 0, 0, errors.New(errors.ErrCodeResource, "%s has degenerate dimensions %gx%g", path, w, h)
	}
	return w, h, nil
}

func (a *Assembler) beginMessage(r *run, cmd command.BeginMessage) {
	canvas := r.doc.Canvas
	st := a.Engine.Theme.Resolve(theme.Ref{Column: -1}, theme.AttrSet{})

	ms := &messageState{
		x:      optCoord(cmd.X, canvas.WidthPx, r.cursor.X),
		y:      optCoord(cmd.Y, canvas.HeightPx, r.cursor.Y),
		family: st.FontFamily,
		size:   st.FontSize,
	}
	if cmd.Font != nil {
		if ft, ok := a.Engine.Theme.Font(*cmd.Font); ok {
			ms.family, ms.size = ft.Family, ft.Size
		}
	}
	if cmd.FontSize != nil {
		ms.size = *cmd.FontSize
	}
	ms.lineStep = a.Metrics.LineHeight(ms.family, ms.size)
	if cmd.LineStep != nil {
		ms.lineStep = *cmd.LineStep
	}

	// The justification decides what the block's coordinate names: the
	// anchor edge horizontally, and the top, middle or baseline of the
	// first line vertically.
	ms.anchor = anchorFor(cmd.AlignX)
	switch cmd.AlignY {
	case command.AlignYTop:
		ms.y += ms.size
	case command.AlignYCenter:
		ms.y += ms.size * 0.35
	}

	ms.startX = ms.x
	r.message = ms
}

// anchorFor maps a horizontal alignment to a text anchor.
func anchorFor(a command.AlignX) primitive.Anchor {
	switch a {
	case command.AlignXCenter:
		return primitive.AnchorMiddle
	case command.AlignXRight:
		return primitive.AnchorEnd
	}
	return primitive.AnchorStart
}

// addText appends one fragment to the open message, advancing the baseline
// first when the fragment starts a new line.
func (a *Assembler) addText(r *run, cmd command.AddText) error {
	ms := r.message
	if ms == nil {
		return errors.New(errors.ErrCodeLayout, "TEXT outside a MESSAGE block")
	}

	if cmd.NewLine {
		ms.y += ms.lineStep
		ms.x = ms.startX
	}

	st := a.Engine.Theme.Resolve(theme.Ref{Column: -1}, theme.AttrSet{})
	color := cmd.Color
	if color == "" {
		color = st.FontColor
	}

	r.out.Primitives = append(r.out.Primitives, primitive.TextRun{
		X:       ms.x,
		Y:       ms.y,
		Text:    cmd.Message,
		Family:  ms.family,
		Size:    ms.size,
		Color:   color,
		Outline: cmd.OutlineColor,
		Anchor:  ms.anchor,
	})
	ms.x += a.Metrics.Advance(ms.family, ms.size, cmd.Message)
	return nil
}

// resolveCoord maps a command scalar to device units: values in [0, 1) are
// canvas-relative fractions produced by percentage cells, anything else is
// already absolute.
func resolveCoord(v, extent float64) float64 {
	if v >= 0 && v < 1 {
		return v / 0.9999 * extent
	}
	return v
}

// optCoord resolves an optional scalar with a fallback.
func optCoord(v *float64, extent, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return resolveCoord(*v, extent)
}
