package layout

import (
	"math"
	"testing"

	"github.com/hwaldner/pinout/pkg/command"
	"github.com/hwaldner/pinout/pkg/errors"
	"github.com/hwaldner/pinout/pkg/render/diagram/primitive"
	"github.com/hwaldner/pinout/pkg/theme"
)

func testEngine(t *testing.T) *Engine {
	t.Helper()
	store := theme.NewStore()
	if err := store.SetSchema([]string{"Name", "Function"}); err != nil {
		t.Fatal(err)
	}
	store.DefineType("Output", theme.AttrSet{FillColor: theme.String("blue")})
	store.DefineWire(theme.Wire{Name: "POWER", Color: "red", Opacity: 1, Thickness: 3})
	return NewEngine(store)
}

func leftSpec() command.PinSetSpec {
	return command.PinSetSpec{
		Side:       command.SideLeft,
		Packed:     true,
		Pitch:      5,
		BoxLength:  60,
		LeadLength: 40,
		ColumnGap:  4,
		LeadStep:   2,
	}
}

func pins(n int) []Entry {
	out := make([]Entry, n)
	for i := range out {
		out[i] = Entry{Index: i, Pin: &command.AddPin{Type: "Output", Labels: []string{"VCC"}}}
	}
	return out
}

// leadLines extracts the lead line of each pin in emission order.
func leadLines(list primitive.List) []primitive.Line {
	var lines []primitive.Line
	for _, p := range list {
		if l, ok := p.(primitive.Line); ok {
			lines = append(lines, l)
		}
	}
	return lines
}

func TestPackedPitch(t *testing.T) {
	e := testEngine(t)

	for _, n := range []int{1, 2, 7} {
		cur := Cursor{X: 200, Y: 100, Set: true}
		out, err := e.PinSet(leftSpec(), pins(n), &cur, 1)
		if err != nil {
			t.Fatalf("PinSet(%d pins) failed: %v", n, err)
		}

		lines := leadLines(out)
		if len(lines) != n {
			t.Fatalf("got %d leads, want %d", len(lines), n)
		}
		for i, l := range lines {
			want := 100 + float64(i)*5
			if l.Y1 != want {
				t.Errorf("pin %d lead at y=%g, want %g", i, l.Y1, want)
			}
		}
	}
}

func TestSpreadEndpoints(t *testing.T) {
	e := testEngine(t)
	spec := leftSpec()
	spec.Packed = false
	spec.Span = 90
	spec.AlignY = command.AlignYTop // edge-aligned spacing

	cur := Cursor{X: 200, Y: 100, Set: true}
	out, err := e.PinSet(spec, pins(4), &cur, 1)
	if err != nil {
		t.Fatalf("PinSet failed: %v", err)
	}

	lines := leadLines(out)
	if lines[0].Y1 != 100 {
		t.Errorf("first pin at y=%g, want 100", lines[0].Y1)
	}
	if lines[3].Y1 != 190 {
		t.Errorf("last pin at y=%g, want 190 (span end)", lines[3].Y1)
	}
	step := lines[1].Y1 - lines[0].Y1
	for i := 1; i < len(lines); i++ {
		if math.Abs((lines[i].Y1-lines[i-1].Y1)-step) > 1e-9 {
			t.Errorf("uneven spacing at pin %d", i)
		}
	}
}

func TestSpreadCenteredSpacing(t *testing.T) {
	e := testEngine(t)
	spec := leftSpec()
	spec.Packed = false
	spec.Span = 100
	spec.AlignY = command.AlignYCenter

	cur := Cursor{X: 0, Y: 0, Set: true}
	out, err := e.PinSet(spec, pins(4), &cur, 1)
	if err != nil {
		t.Fatalf("PinSet failed: %v", err)
	}

	lines := leadLines(out)
	// span/n = 25, half-step inset 12.5
	if math.Abs(lines[0].Y1-12.5) > 1e-9 {
		t.Errorf("first pin at y=%g, want 12.5", lines[0].Y1)
	}
	if math.Abs(lines[3].Y1-87.5) > 1e-9 {
		t.Errorf("last pin at y=%g, want 87.5", lines[3].Y1)
	}
}

func TestSpreadSinglePin(t *testing.T) {
	e := testEngine(t)
	spec := leftSpec()
	spec.Packed = false
	spec.Span = 80

	tests := []struct {
		name  string
		align command.AlignY
		want  float64
	}{
		{"start", command.AlignYTop, 100},
		{"center", command.AlignYCenter, 140},
		{"end", command.AlignYBottom, 180},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec.AlignY = tt.align
			cur := Cursor{X: 0, Y: 100, Set: true}
			out, err := e.PinSet(spec, pins(1), &cur, 1)
			if err != nil {
				t.Fatalf("PinSet failed: %v", err)
			}
			if got := leadLines(out)[0].Y1; got != tt.want {
				t.Errorf("pin at y=%g, want %g", got, tt.want)
			}
		})
	}
}

func TestCursorAdvancement(t *testing.T) {
	e := testEngine(t)

	cur := Cursor{X: 200, Y: 100, Set: true}
	if _, err := e.PinSet(leftSpec(), pins(3), &cur, 1); err != nil {
		t.Fatal(err)
	}
	if cur.Y != 115 {
		t.Errorf("packed cursor y=%g, want 115 (3 pins x pitch 5)", cur.Y)
	}
	if cur.X != 200 {
		t.Errorf("cursor x moved to %g, should stay on cross axis", cur.X)
	}

	spec := command.PinSetSpec{Side: command.SideTop, Packed: false, Span: 50, Pitch: 5, BoxLength: 60, LeadLength: 30}
	cur = Cursor{X: 100, Y: 400, Set: true}
	if _, err := e.PinSet(spec, pins(2), &cur, 1); err != nil {
		t.Fatal(err)
	}
	if cur.X != 150 {
		t.Errorf("spread cursor x=%g, want 150 (span)", cur.X)
	}
}

func TestSidesAxisMapping(t *testing.T) {
	e := testEngine(t)

	tests := []struct {
		side     command.Side
		vertical bool
		dir      float64
	}{
		{command.SideLeft, true, -1},
		{command.SideRight, true, 1},
		{command.SideTop, false, -1},
		{command.SideBottom, false, 1},
	}

	for _, tt := range tests {
		t.Run(tt.side.String(), func(t *testing.T) {
			spec := leftSpec()
			spec.Side = tt.side
			cur := Cursor{X: 500, Y: 500, Set: true}
			out, err := e.PinSet(spec, pins(1), &cur, 1)
			if err != nil {
				t.Fatal(err)
			}

			l := leadLines(out)[0]
			if tt.vertical {
				if l.Y1 != l.Y2 {
					t.Errorf("vertical side should have horizontal lead, got %+v", l)
				}
				if got := l.X2 - l.X1; got != tt.dir*40 {
					t.Errorf("lead extent = %g, want %g", got, tt.dir*40)
				}
			} else {
				if l.X1 != l.X2 {
					t.Errorf("horizontal side should have vertical lead, got %+v", l)
				}
				if got := l.Y2 - l.Y1; got != tt.dir*40 {
					t.Errorf("lead extent = %g, want %g", got, tt.dir*40)
				}
			}
		})
	}
}

func TestHorizontalSidesRotateText(t *testing.T) {
	e := testEngine(t)
	spec := leftSpec()
	spec.Side = command.SideTop

	cur := Cursor{X: 100, Y: 400, Set: true}
	out, err := e.PinSet(spec, pins(1), &cur, 1)
	if err != nil {
		t.Fatal(err)
	}

	var rotations []float64
	for _, p := range out {
		if tr, ok := p.(primitive.TextRun); ok {
			rotations = append(rotations, tr.Rotation)
		}
	}
	if len(rotations) == 0 {
		t.Fatal("no text runs emitted")
	}
	for i, r := range rotations {
		if r != -90 {
			t.Errorf("text %d rotation = %g, want -90 on the top side", i, r)
		}
	}
}

func TestPinNumbering(t *testing.T) {
	e := testEngine(t)
	cur := Cursor{X: 200, Y: 100, Set: true}
	out, err := e.PinSet(leftSpec(), pins(3), &cur, 5)
	if err != nil {
		t.Fatal(err)
	}

	var numbers []string
	for _, p := range out {
		if tr, ok := p.(primitive.TextRun); ok && tr.Anchor == primitive.AnchorMiddle && tr.Size == theme.DefaultFontSize*numberScale {
			numbers = append(numbers, tr.Text)
		}
	}
	want := []string{"5", "6", "7"}
	if len(numbers) != len(want) {
		t.Fatalf("got %d pin numbers (%v), want %d", len(numbers), numbers, len(want))
	}
	for i := range want {
		if numbers[i] != want[i] {
			t.Errorf("number %d = %q, want %q", i, numbers[i], want[i])
		}
	}
}

func TestWireStylesLead(t *testing.T) {
	e := testEngine(t)
	entries := []Entry{{Pin: &command.AddPin{Wire: "POWER", Type: "Output", Labels: []string{"VCC"}}}}

	cur := Cursor{X: 0, Y: 0, Set: true}
	out, err := e.PinSet(leftSpec(), entries, &cur, 1)
	if err != nil {
		t.Fatal(err)
	}

	l := leadLines(out)[0]
	if l.Stroke != "red" || l.Width != 3 {
		t.Errorf("lead styled %+v, want wire style red/3", l)
	}
}

func TestEmptyLabelSkipsBox(t *testing.T) {
	e := testEngine(t)
	entries := []Entry{{Pin: &command.AddPin{Type: "Output", Labels: []string{"", "fn"}}}}

	cur := Cursor{X: 500, Y: 100, Set: true}
	out, err := e.PinSet(leftSpec(), entries, &cur, 1)
	if err != nil {
		t.Fatal(err)
	}

	var rects []primitive.Rect
	for _, p := range out {
		if r, ok := p.(primitive.Rect); ok {
			rects = append(rects, r)
		}
	}
	if len(rects) != 1 {
		t.Fatalf("got %d boxes, want 1 (empty column skipped)", len(rects))
	}
	// The populated column is column 1, so its box sits one box length plus
	// one gap further out than column 0 would.
	wantX := 500 - 40 - (60 + 4) - 60.0
	if rects[0].X != wantX {
		t.Errorf("box x=%g, want %g", rects[0].X, wantX)
	}
}

func TestLayoutErrors(t *testing.T) {
	e := testEngine(t)

	tests := []struct {
		name    string
		spec    command.PinSetSpec
		entries []Entry
		cursor  Cursor
	}{
		{"no anchor", leftSpec(), pins(1), Cursor{}},
		{"zero pins", leftSpec(), nil, Cursor{Set: true}},
		{"non-positive pitch", command.PinSetSpec{Side: command.SideLeft, Packed: true, BoxLength: 60}, pins(1), Cursor{Set: true}},
		{"non-positive pitch in spread mode", command.PinSetSpec{Side: command.SideLeft, Span: 50, BoxLength: 60}, pins(2), Cursor{Set: true}},
		{"non-positive span", command.PinSetSpec{Side: command.SideLeft, Pitch: 5, BoxLength: 60}, pins(2), Cursor{Set: true}},
		{"non-positive box length", command.PinSetSpec{Side: command.SideLeft, Packed: true, Pitch: 5}, pins(1), Cursor{Set: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cur := tt.cursor
			_, err := e.PinSet(tt.spec, tt.entries, &cur, 1)
			if !errors.Is(err, errors.ErrCodeLayout) {
				t.Errorf("code = %v, want LAYOUT_ERROR (%v)", errors.GetCode(err), err)
			}
		})
	}
}
