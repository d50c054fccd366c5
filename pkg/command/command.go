// Package command defines the closed set of typed instructions a pinout
// document is made of, plus the parser that builds them from tabular text.
//
// Commands are parsed eagerly at the input boundary. Downstream components
// (the document interpreter, the layout engine, the assembler) only ever see
// strongly typed payloads and never dispatch on raw strings again.
//
// Each command kind carries a phase tag: SetupOnly commands configure the
// theme and page before the DRAW marker, DrawOnly commands emit geometry
// after it. The phase gate itself lives in the document package; the tags
// here are static facts about the grammar.
package command

// Phase is the processing phase of a document. It advances Setup to Draw
// exactly once, on the DRAW marker.
type Phase int

const (
	PhaseSetup Phase = iota
	PhaseDraw
)

// String returns the phase name.
func (p Phase) String() string {
	if p == PhaseDraw {
		return "draw"
	}
	return "setup"
}

// Tag classifies when a command kind is legal.
type Tag int

const (
	// SetupOnly commands are legal only before the DRAW marker.
	SetupOnly Tag = iota
	// DrawOnly commands are legal only after the DRAW marker.
	DrawOnly
	// Marker is the DRAW phase transition itself, legal exactly once.
	Marker
)

// Command is one parsed instruction. The set of implementations in this
// package is closed; consumers switch on the concrete type.
type Command interface {
	// Word returns the canonical command word, as written in the source.
	Word() string
	// Tag reports which phase the command belongs to.
	Tag() Tag
}

// Side is the component edge a pin-set attaches to.
type Side int

const (
	SideLeft Side = iota
	SideRight
	SideTop
	SideBottom
)

// String returns the canonical source spelling of the side.
func (s Side) String() string {
	switch s {
	case SideRight:
		return "RIGHT"
	case SideTop:
		return "TOP"
	case SideBottom:
		return "BOTTOM"
	default:
		return "LEFT"
	}
}

// Vertical reports whether pins on this side stack along the vertical axis.
func (s Side) Vertical() bool { return s == SideLeft || s == SideRight }

// AlignX is the horizontal alignment of content within its allotted box.
type AlignX int

const (
	AlignXCenter AlignX = iota
	AlignXLeft
	AlignXRight
)

// AlignY is the vertical alignment of content within its allotted box.
type AlignY int

const (
	AlignYCenter AlignY = iota
	AlignYTop
	AlignYBottom
)

// Attr identifies one style attribute addressed by a theme row.
type Attr int

const (
	AttrBorderColor Attr = iota
	AttrBorderWidth
	AttrBorderOpacity
	AttrFillColor
	AttrFillOpacity
	AttrFontFamily
	AttrFontSize
	AttrFontColor
)

// String returns the command word that sets the attribute.
func (a Attr) String() string {
	switch a {
	case AttrBorderColor:
		return "BORDER COLOR"
	case AttrBorderWidth:
		return "BORDER WIDTH"
	case AttrBorderOpacity:
		return "BORDER OPACITY"
	case AttrFillColor:
		return "FILL COLOR"
	case AttrFillOpacity:
		return "OPACITY"
	case AttrFontFamily:
		return "FONT"
	case AttrFontSize:
		return "FONT SIZE"
	default:
		return "FONT COLOR"
	}
}

// Numeric reports whether the attribute's cells hold numbers.
func (a Attr) Numeric() bool {
	switch a {
	case AttrBorderWidth, AttrBorderOpacity, AttrFillOpacity, AttrFontSize:
		return true
	}
	return false
}

// SetLabels declares the label schema: the header of the primary name
// column, the optional type and group column headers, and the ordered
// function-label columns that fix the document's column arity.
type SetLabels struct {
	Primary string
	Type    string
	Group   string
	Columns []string
}

func (SetLabels) Word() string { return "LABELS" }
func (SetLabels) Tag() Tag     { return SetupOnly }

// StyleColorRow sets a string-valued attribute across scopes in one row:
// the default scope, optionally the type and group base scopes, and one
// cell per label column. Empty cells leave the scope untouched.
type StyleColorRow struct {
	Attr    Attr
	Default string
	Type    *string
	Group   *string
	Columns []string
}

func (r StyleColorRow) Word() string { return r.Attr.String() }
func (StyleColorRow) Tag() Tag       { return SetupOnly }

// StyleValueRow is the numeric counterpart of StyleColorRow. Nil column
// cells leave the scope untouched.
type StyleValueRow struct {
	Attr    Attr
	Default float64
	Type    *float64
	Group   *float64
	Columns []*float64
}

func (r StyleValueRow) Word() string { return r.Attr.String() }
func (StyleValueRow) Tag() Tag       { return SetupOnly }

// DefineType declares a named pin type with its fill color and opacity.
type DefineType struct {
	Name    string
	Color   string
	Opacity float64
}

func (DefineType) Word() string { return "TYPE" }
func (DefineType) Tag() Tag     { return SetupOnly }

// DefineGroup declares a named pin group with its fill color and opacity.
type DefineGroup struct {
	Name    string
	Color   string
	Opacity float64
}

func (DefineGroup) Word() string { return "GROUP" }
func (DefineGroup) Tag() Tag     { return SetupOnly }

// DefineWire declares a named lead-line style.
type DefineWire struct {
	Name      string
	Color     string
	Opacity   float64
	Thickness float64
}

func (DefineWire) Word() string { return "WIRE" }
func (DefineWire) Tag() Tag     { return SetupOnly }

// DefineBoxTheme declares a named box shape for later DrawBox commands.
type DefineBoxTheme struct {
	Name          string
	BorderColor   string
	BorderOpacity float64
	FillColor     string
	FillOpacity   float64
	LineWidth     float64
	Width         float64
	Height        float64
	CornerRX      float64
	CornerRY      float64
}

func (DefineBoxTheme) Word() string { return "BOX" }
func (DefineBoxTheme) Tag() Tag     { return SetupOnly }

// DefineTextFont declares a named text style for PINTEXT and messages.
type DefineTextFont struct {
	Name         string
	Family       string
	Size         float64
	OutlineColor string
	Color        string
}

func (DefineTextFont) Word() string { return "TEXT FONT" }
func (DefineTextFont) Tag() Tag     { return SetupOnly }

// SetPage selects a named page size and orientation, such as A4-L.
type SetPage struct {
	ID string
}

func (SetPage) Word() string { return "PAGE" }
func (SetPage) Tag() Tag     { return SetupOnly }

// SetDPI sets the output resolution in dots per inch.
type SetDPI struct {
	Value int
}

func (SetDPI) Word() string { return "DPI" }
func (SetDPI) Tag() Tag     { return SetupOnly }

// BeginDraw is the phase marker. Everything after it emits geometry.
type BeginDraw struct{}

func (BeginDraw) Word() string { return "DRAW" }
func (BeginDraw) Tag() Tag     { return Marker }

// SetAnchor moves the drawing cursor to an absolute canvas position.
type SetAnchor struct {
	X float64
	Y float64
}

func (SetAnchor) Word() string { return "ANCHOR" }
func (SetAnchor) Tag() Tag     { return DrawOnly }

// PinSetSpec carries the geometry parameters of one pin-set declaration.
//
// Pitch is the along-axis spacing between consecutive pins. BoxLength is the
// along-lead extent of each label box. Span is the total along-axis length a
// spread pin-set distributes its pins over. LeadLength is the lead line from
// the label stack toward the component body. ColumnGap separates consecutive
// label boxes along the lead axis, and LeadStep staggers the pin-number
// label away from the lead.
type PinSetSpec struct {
	Side       Side
	Packed     bool
	AlignX     AlignX
	AlignY     AlignY
	Pitch      float64
	BoxLength  float64
	Span       float64
	LeadLength float64
	ColumnGap  float64
	LeadStep   float64
}

// BeginPinSet opens a pin-set. Subsequent AddPin commands belong to it
// until the next BeginPinSet or SetAnchor.
type BeginPinSet struct {
	Spec PinSetSpec
}

func (BeginPinSet) Word() string { return "PINSET" }
func (BeginPinSet) Tag() Tag     { return DrawOnly }

// AddPin declares one pin of the open pin-set. Wire, Type and Group name
// setup-phase declarations and may each be empty. Labels holds one cell per
// schema column; empty cells render no box.
type AddPin struct {
	Wire   string
	Type   string
	Group  string
	Labels []string
}

func (AddPin) Word() string { return "PIN" }
func (AddPin) Tag() Tag     { return DrawOnly }

// AddPinText declares a pin row whose label stack is replaced by a single
// optional label box and a free-form text in a named font theme.
type AddPinText struct {
	Wire  string
	Type  string
	Group string
	Theme string
	Label string
	Text  string
}

func (AddPinText) Word() string { return "PINTEXT" }
func (AddPinText) Tag() Tag     { return DrawOnly }

// DrawBox places a standalone themed box with optional caption. Width and
// Height override the theme's dimensions when set.
type DrawBox struct {
	Theme  string
	X      float64
	Y      float64
	Width  *float64
	Height *float64
	AlignX AlignX
	AlignY AlignY
	Text   string
}

func (DrawBox) Word() string { return "BOX" }
func (DrawBox) Tag() Tag     { return DrawOnly }

// PlaceImage places a raster or vector image file. Coordinates and sizes of
// value < 1 are canvas-relative fractions, everything else is device units.
// Nil fields fall back to the image's intrinsic dimensions. The crop window
// is applied before scaling.
type PlaceImage struct {
	Path     string
	X        *float64
	Y        *float64
	Width    *float64
	Height   *float64
	CropX    *float64
	CropY    *float64
	CropW    *float64
	CropH    *float64
	Rotation *float64
}

func (PlaceImage) Word() string { return "IMAGE" }
func (PlaceImage) Tag() Tag     { return DrawOnly }

// PlaceIcon places a small image without crop support.
type PlaceIcon struct {
	Path     string
	X        *float64
	Y        *float64
	Width    *float64
	Height   *float64
	Rotation *float64
}

func (PlaceIcon) Word() string { return "ICON" }
func (PlaceIcon) Tag() Tag     { return DrawOnly }

// FetchFont references a remote font stylesheet to embed in the output.
type FetchFont struct {
	URL string
}

func (FetchFont) Word() string { return "GOOGLEFONT" }
func (FetchFont) Tag() Tag     { return DrawOnly }

// BeginMessage opens a multi-line text block. Nil fields inherit the
// document defaults; LineStep is the baseline distance between lines and
// the alignment places the block relative to its coordinate.
type BeginMessage struct {
	X        *float64
	Y        *float64
	LineStep *float64
	Font     *string
	FontSize *float64
	AlignX   AlignX
	AlignY   AlignY
}

func (BeginMessage) Word() string { return "MESSAGE" }
func (BeginMessage) Tag() Tag     { return DrawOnly }

// AddText appends one fragment to the open message. NewLine advances the
// baseline before emitting the fragment.
type AddText struct {
	OutlineColor string
	Color        string
	Message      string
	NewLine      bool
}

func (AddText) Word() string { return "TEXT" }
func (AddText) Tag() Tag     { return DrawOnly }

// EndMessage closes the open message block.
type EndMessage struct{}

func (EndMessage) Word() string { return "END MESSAGE" }
func (EndMessage) Tag() Tag     { return DrawOnly }
