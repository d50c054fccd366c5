package command

import (
	"math"
	"strings"
	"testing"

	"github.com/hwaldner/pinout/pkg/errors"
)

func TestParseDocument(t *testing.T) {
	src := strings.Join([]string{
		"# pinout for a small MCU",
		"LABELS,Pin,Type,Group,Name,Function",
		"FILL COLOR,white,,,silver,lightyellow",
		"FONT SIZE,12,,,10,",
		"TYPE,Output,blue,1",
		"GROUP,SPI,orange,0.8",
		"WIRE,POWER,red,1,3",
		"BOX,chip,black,1,silver,1,2,400,300,8,8",
		"PAGE,a4-l",
		"DPI,300",
		"DRAW",
		"ANCHOR,50,100",
		"PINSET,LEFT,PACKED,CENTER,CENTER,5,60,0,40,4,10",
		"PIN,POWER,Output,SPI,VCC,supply",
		"PIN,,Output,,GND,ground",
		"BOX,chip,200,150,,,CENTER,CENTER,ESP32",
		"END MESSAGE",
	}, "\n")

	cmds, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	wantWords := []string{
		"LABELS", "FILL COLOR", "FONT SIZE", "TYPE", "GROUP", "WIRE", "BOX",
		"PAGE", "DPI", "DRAW", "ANCHOR", "PINSET", "PIN", "PIN", "BOX", "END MESSAGE",
	}
	if len(cmds) != len(wantWords) {
		t.Fatalf("parsed %d commands, want %d", len(cmds), len(wantWords))
	}
	for i, w := range wantWords {
		if cmds[i].Word() != w {
			t.Errorf("command %d = %q, want %q", i, cmds[i].Word(), w)
		}
	}

	if _, ok := cmds[6].(DefineBoxTheme); !ok {
		t.Errorf("setup BOX parsed as %T, want DefineBoxTheme", cmds[6])
	}
	if _, ok := cmds[14].(DrawBox); !ok {
		t.Errorf("draw BOX parsed as %T, want DrawBox", cmds[14])
	}

	labels := cmds[0].(SetLabels)
	if len(labels.Columns) != 2 || labels.Columns[0] != "Name" {
		t.Errorf("label columns = %v, want [Name Function]", labels.Columns)
	}

	row := cmds[1].(StyleColorRow)
	if row.Default != "white" || row.Type != nil || len(row.Columns) != 2 {
		t.Errorf("FILL COLOR row = %+v", row)
	}

	sizes := cmds[2].(StyleValueRow)
	if sizes.Default != 12 || sizes.Columns[0] == nil || *sizes.Columns[0] != 10 || sizes.Columns[1] != nil {
		t.Errorf("FONT SIZE row = %+v", sizes)
	}

	ps := cmds[11].(BeginPinSet).Spec
	if ps.Side != SideLeft || !ps.Packed || ps.Pitch != 5 || ps.BoxLength != 60 || ps.LeadLength != 40 {
		t.Errorf("pin-set spec = %+v", ps)
	}

	pin := cmds[12].(AddPin)
	if pin.Wire != "POWER" || pin.Type != "Output" || pin.Group != "SPI" {
		t.Errorf("pin = %+v", pin)
	}
	if len(pin.Labels) != 2 || pin.Labels[0] != "VCC" {
		t.Errorf("pin labels = %v", pin.Labels)
	}

	if page := cmds[7].(SetPage); page.ID != "A4-L" {
		t.Errorf("page = %q, want A4-L (uppercased)", page.ID)
	}
}

func TestParseScalarPercent(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"1750", 1750},
		{"-90", -90},
		{"50%", 0.9999 * 0.5},
		{"100%", 0.9999},
		{"150%", 0.9999},
		{"1,500", 1500},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseScalar(tt.input)
			if err != nil {
				t.Fatalf("parseScalar(%q) failed: %v", tt.input, err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("parseScalar(%q) = %g, want %g", tt.input, got, tt.want)
			}
		})
	}

	if _, err := parseScalar("abc%"); err == nil {
		t.Error("malformed percentage should fail")
	}
}

func TestParseImageOptionalCells(t *testing.T) {
	src := "DRAW\nIMAGE,boards/top.png, 1750, 1500, , , , , , , -90"
	cmds, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	img := cmds[1].(PlaceImage)
	if img.Path != "boards/top.png" {
		t.Errorf("path = %q", img.Path)
	}
	if img.X == nil || *img.X != 1750 || img.Y == nil || *img.Y != 1500 {
		t.Errorf("position = %v,%v", img.X, img.Y)
	}
	if img.Width != nil || img.Height != nil || img.CropX != nil {
		t.Error("empty cells should parse as nil")
	}
	if img.Rotation == nil || *img.Rotation != -90 {
		t.Errorf("rotation = %v, want -90", img.Rotation)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"unknown word", "FROBNICATE,1,2"},
		{"pinset missing geometry", "DRAW\nPINSET,LEFT,PACKED,CENTER,CENTER,5"},
		{"bad side", "DRAW\nPINSET,DIAGONAL,PACKED,CENTER,CENTER,5,60,0,40,4,10"},
		{"bad dpi", "DPI,fast"},
		{"anchor missing y", "DRAW\nANCHOR,50"},
		{"type without opacity", "TYPE,Output,blue"},
		{"bad hex color", "TYPE,Output,#12,1"},
		{"opacity out of range", "GROUP,SPI,orange,1.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.src))
			if err == nil {
				t.Fatal("Parse should fail")
			}
			if !errors.Is(err, errors.ErrCodeParse) {
				t.Errorf("error code = %v, want PARSE_ERROR (%v)", errors.GetCode(err), err)
			}
		})
	}
}

func TestParseErrorCarriesCommandIndex(t *testing.T) {
	src := "LABELS,Pin,,,Name\nDRAW\nANCHOR,oops,2"
	_, err := Parse(strings.NewReader(src))
	if err == nil {
		t.Fatal("Parse should fail")
	}
	if got := errors.CommandIndex(err); got != 2 {
		t.Errorf("CommandIndex = %d, want 2", got)
	}
}

func TestParseSkipsCommentsAndBlanks(t *testing.T) {
	src := "# heading\n\n  # indented comment,ignored\nDRAW\n"
	cmds, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(cmds) != 1 {
		t.Fatalf("parsed %d commands, want 1", len(cmds))
	}
	if _, ok := cmds[0].(BeginDraw); !ok {
		t.Errorf("command = %T, want BeginDraw", cmds[0])
	}
}
