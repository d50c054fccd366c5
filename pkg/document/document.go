// Package document assembles parsed commands into a validated document.
//
// The document owns the phase gate and the theme store. Setup commands are
// absorbed into the theme and page configuration as they are appended; draw
// commands are reference-checked against the theme and collected in order
// for the layout stage. A command that fails validation aborts the whole
// document, there is no partial interpretation.
package document

import (
	"github.com/hwaldner/pinout/pkg/command"
	"github.com/hwaldner/pinout/pkg/errors"
	"github.com/hwaldner/pinout/pkg/page"
	"github.com/hwaldner/pinout/pkg/theme"
)

// Step is one draw-phase command together with its index in the original
// command list, kept so later stages can report precise locations.
type Step struct {
	Index int
	Cmd   command.Command
}

// Document is the validated result of interpreting a command list. One
// Document owns its theme store and canvas; independent documents share
// nothing and may be processed in parallel.
type Document struct {
	Theme  *theme.Store
	Canvas page.CanvasDims
	Steps  []Step

	pageID  string
	dpi     int
	headers [3]string // primary, type and group column headers from LABELS
	phase   command.Phase
	drawn   bool
	next    int // index assigned to the next appended command
}

// New creates an empty document in the setup phase.
func New() *Document {
	return &Document{Theme: theme.NewStore()}
}

// Interpret builds a document from a full command list.
func Interpret(cmds []command.Command) (*Document, error) {
	d := New()
	for _, c := range cmds {
		if err := d.Append(c); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Phase returns the current processing phase.
func (d *Document) Phase() command.Phase { return d.phase }

// SetCanvasDefaults seeds the page configuration used when the document sets
// no PAGE or DPI command of its own. Call it before appending commands; PAGE
// and DPI commands in the document overwrite these values.
func (d *Document) SetCanvasDefaults(pageID string, dpi int) {
	if pageID != "" {
		d.pageID = pageID
	}
	if dpi > 0 {
		d.dpi = dpi
	}
}

// SetFontDefault seeds the default font family. Call it before appending
// commands; FONT style rows and named scopes in the document overwrite it.
func (d *Document) SetFontDefault(family string) {
	if family != "" {
		d.Theme.RecordDefault(theme.AttrSet{FontFamily: theme.String(family)})
	}
}

// Headers returns the primary, type and group column headers from LABELS.
func (d *Document) Headers() (primary, typ, group string) {
	return d.headers[0], d.headers[1], d.headers[2]
}

// Append validates one command and absorbs or records it. Phase violations,
// schema violations and unresolved references abort with an error carrying
// the command's index.
func (d *Document) Append(c command.Command) error {
	index := d.next
	d.next++

	if err := d.gate(c); err != nil {
		return err.At(index)
	}

	var err error
	switch cmd := c.(type) {
	case command.BeginDraw:
		err = d.beginDraw()
	case command.SetLabels:
		d.headers = [3]string{cmd.Primary, cmd.Type, cmd.Group}
		err = d.Theme.SetSchema(cmd.Columns)
	case command.StyleColorRow:
		err = d.recordColorRow(cmd)
	case command.StyleValueRow:
		err = d.recordValueRow(cmd)
	case command.DefineType:
		d.Theme.DefineType(cmd.Name, scopeAttrs(cmd.Color, cmd.Opacity))
	case command.DefineGroup:
		d.Theme.DefineGroup(cmd.Name, scopeAttrs(cmd.Color, cmd.Opacity))
	case command.DefineWire:
		d.Theme.DefineWire(theme.Wire(cmd))
	case command.DefineBoxTheme:
		d.Theme.DefineBox(theme.BoxTheme(cmd))
	case command.DefineTextFont:
		d.Theme.DefineFont(theme.FontTheme(cmd))
	case command.SetPage:
		d.pageID = cmd.ID
	case command.SetDPI:
		d.dpi = cmd.Value
	default:
		err = d.recordStep(Step{Index: index, Cmd: c})
	}

	if err != nil {
		if e, ok := err.(*errors.Error); ok && e.Command < 0 {
			return e.At(index)
		}
		return err
	}
	return nil
}

// gate enforces the one-way phase transition.
func (d *Document) gate(c command.Command) *errors.Error {
	switch c.Tag() {
	case command.Marker:
		if d.drawn {
			return errors.New(errors.ErrCodePhase, "DRAW marker may occur only once")
		}
	case command.SetupOnly:
		if d.phase == command.PhaseDraw {
			return errors.New(errors.ErrCodePhase, "%s is a setup command, but the draw phase has begun", c.Word())
		}
	case command.DrawOnly:
		if d.phase == command.PhaseSetup {
			return errors.New(errors.ErrCodePhase, "%s is a draw command, but the DRAW marker has not been seen", c.Word())
		}
	}
	return nil
}

// beginDraw freezes the page configuration and flips the phase.
func (d *Document) beginDraw() error {
	canvas, err := page.Resolve(d.pageID, d.dpi)
	if err != nil {
		return err
	}
	d.Canvas = canvas
	d.phase = command.PhaseDraw
	d.drawn = true
	return nil
}

// recordStep reference-checks a draw command and stores it for layout.
func (d *Document) recordStep(s Step) error {
	switch cmd := s.Cmd.(type) {
	case command.AddPin:
		if err := d.checkPinRefs(cmd.Wire, cmd.Type, cmd.Group); err != nil {
			return err
		}
		if len(cmd.Labels) > d.Theme.Arity() {
			return errors.New(errors.ErrCodeSchema,
				"pin has %d function labels, schema allows %d", len(cmd.Labels), d.Theme.Arity())
		}
	case command.AddPinText:
		if err := d.checkPinRefs(cmd.Wire, cmd.Type, cmd.Group); err != nil {
			return err
		}
		if _, ok := d.Theme.Font(cmd.Theme); !ok {
			return errors.New(errors.ErrCodeReference, "undeclared font theme %q", cmd.Theme)
		}
	case command.DrawBox:
		if _, ok := d.Theme.Box(cmd.Theme); !ok {
			return errors.New(errors.ErrCodeReference, "undeclared box theme %q", cmd.Theme)
		}
	case command.BeginMessage:
		if cmd.Font != nil {
			if _, ok := d.Theme.Font(*cmd.Font); !ok {
				return errors.New(errors.ErrCodeReference, "undeclared font theme %q", *cmd.Font)
			}
		}
	}

	d.Steps = append(d.Steps, s)
	return nil
}

func (d *Document) checkPinRefs(wire, typ, group string) error {
	if wire != "" {
		if _, ok := d.Theme.Wire(wire); !ok {
			return errors.New(errors.ErrCodeReference, "undeclared wire %q", wire)
		}
	}
	if typ != "" && !d.Theme.HasType(typ) {
		return errors.New(errors.ErrCodeReference, "undeclared type %q", typ)
	}
	if group != "" && !d.Theme.HasGroup(group) {
		return errors.New(errors.ErrCodeReference, "undeclared group %q", group)
	}
	return nil
}

func scopeAttrs(color string, opacity float64) theme.AttrSet {
	return theme.AttrSet{
		FillColor:   theme.String(color),
		FillOpacity: theme.Float(opacity),
	}
}

// recordColorRow distributes one string attribute row across scopes.
func (d *Document) recordColorRow(row command.StyleColorRow) error {
	set := func(v string) theme.AttrSet {
		a := theme.AttrSet{}
		switch row.Attr {
		case command.AttrBorderColor:
			a.BorderColor = theme.String(v)
		case command.AttrFillColor:
			a.FillColor = theme.String(v)
		case command.AttrFontFamily:
			a.FontFamily = theme.String(v)
		case command.AttrFontColor:
			a.FontColor = theme.String(v)
		}
		return a
	}

	if row.Default != "" {
		d.Theme.RecordDefault(set(row.Default))
	}
	if row.Type != nil {
		d.Theme.RecordTypeBase(set(*row.Type))
	}
	if row.Group != nil {
		d.Theme.RecordGroupBase(set(*row.Group))
	}
	for i, v := range row.Columns {
		if v == "" {
			continue
		}
		if err := d.Theme.RecordColumn(i, set(v)); err != nil {
			return err
		}
	}
	return nil
}

// recordValueRow distributes one numeric attribute row across scopes.
func (d *Document) recordValueRow(row command.StyleValueRow) error {
	set := func(v float64) theme.AttrSet {
		a := theme.AttrSet{}
		switch row.Attr {
		case command.AttrBorderWidth:
			a.BorderWidth = theme.Float(v)
		case command.AttrBorderOpacity:
			a.BorderOpacity = theme.Float(v)
		case command.AttrFillOpacity:
			a.FillOpacity = theme.Float(v)
		case command.AttrFontSize:
			a.FontSize = theme.Float(v)
		}
		return a
	}

	d.Theme.RecordDefault(set(row.Default))
	if row.Type != nil {
		d.Theme.RecordTypeBase(set(*row.Type))
	}
	if row.Group != nil {
		d.Theme.RecordGroupBase(set(*row.Group))
	}
	for i, v := range row.Columns {
		if v == nil {
			continue
		}
		if err := d.Theme.RecordColumn(i, set(*v)); err != nil {
			return err
		}
	}
	return nil
}
