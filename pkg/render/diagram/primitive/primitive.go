// Package primitive defines the flat drawable output of the layout stage.
//
// Every primitive carries absolute canvas coordinates and a fully resolved
// style; no theme cascading happens past this point. The emitters serialize
// a primitive list in order, which is the paint order.
package primitive

// Anchor positions text relative to its coordinate.
type Anchor int

const (
	AnchorStart Anchor = iota
	AnchorMiddle
	AnchorEnd
)

// String returns the markup keyword for the anchor.
func (a Anchor) String() string {
	switch a {
	case AnchorMiddle:
		return "middle"
	case AnchorEnd:
		return "end"
	default:
		return "start"
	}
}

// Primitive is one drawable unit. The implementations in this package form
// a closed set; emitters switch on the concrete type.
type Primitive interface {
	primitive()
}

// List is an ordered sequence of primitives in paint order.
type List []Primitive

// Rect is an axis-aligned rectangle with optional rounded corners.
type Rect struct {
	X, Y          float64
	W, H          float64
	RX, RY        float64
	Stroke        string
	StrokeWidth   float64
	StrokeOpacity float64
	Fill          string
	FillOpacity   float64
}

func (Rect) primitive() {}

// Line is a straight stroke between two points.
type Line struct {
	X1, Y1  float64
	X2, Y2  float64
	Stroke  string
	Width   float64
	Opacity float64
}

func (Line) primitive() {}

// TextRun is a single line of text. X and Y locate the baseline point the
// Anchor is relative to. Rotation is in degrees around that point.
type TextRun struct {
	X, Y     float64
	Text     string
	Family   string
	Size     float64
	Color    string
	Outline  string
	Anchor   Anchor
	Rotation float64
}

func (TextRun) primitive() {}

// ImageRef places an external image file. The crop window, when HasCrop is
// set, selects a source region before scaling to W by H.
type ImageRef struct {
	Path     string
	X, Y     float64
	W, H     float64
	HasCrop  bool
	CropX    float64
	CropY    float64
	CropW    float64
	CropH    float64
	Rotation float64
}

func (ImageRef) primitive() {}

// IconRef places a small decorative image without crop support.
type IconRef struct {
	Path     string
	X, Y     float64
	W, H     float64
	Rotation float64
}

func (IconRef) primitive() {}
