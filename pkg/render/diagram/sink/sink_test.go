package sink

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/hwaldner/pinout/pkg/page"
	"github.com/hwaldner/pinout/pkg/render/diagram"
	"github.com/hwaldner/pinout/pkg/render/diagram/primitive"
)

func testDiagram() *diagram.Diagram {
	return &diagram.Diagram{
		Canvas: page.CanvasDims{WidthPx: 1000, HeightPx: 700, WidthMM: 297, HeightMM: 210, DPI: 300},
		Primitives: primitive.List{
			primitive.Rect{X: 10, Y: 20, W: 60, H: 10, Stroke: "blue", StrokeWidth: 1, StrokeOpacity: 1, Fill: "white", FillOpacity: 1},
			primitive.Line{X1: 70, Y1: 25, X2: 110, Y2: 25, Stroke: "red", Width: 3, Opacity: 1},
			primitive.TextRun{X: 40, Y: 27, Text: "VCC <3.3V>", Family: "sans-serif", Size: 12, Color: "black", Anchor: primitive.AnchorMiddle},
			primitive.ImageRef{Path: "board.png", X: 0, Y: 0, W: 100, H: 80, Rotation: -90},
		},
	}
}

func TestRenderSVG(t *testing.T) {
	out := string(RenderSVG(testDiagram()))

	for _, want := range []string{
		`viewBox="0 0 1000.00 700.00"`,
		`width="297mm"`,
		`<rect x="10.00"`,
		`stroke="blue"`,
		`<line x1="70.00"`,
		`text-anchor="middle"`,
		"VCC &lt;3.3V&gt;", // escaped text content
		`xlink:href="board.png"`,
		`rotate(-90.0 50.00 40.00)`,
		"</svg>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("SVG output missing %q", want)
		}
	}
}

func TestRenderSVGPaintOrder(t *testing.T) {
	out := string(RenderSVG(testDiagram()))
	rect := strings.Index(out, "<rect")
	line := strings.Index(out, "<line")
	text := strings.Index(out, "<text")
	if !(rect < line && line < text) {
		t.Errorf("elements out of paint order: rect@%d line@%d text@%d", rect, line, text)
	}
}

func TestRenderSVGOptions(t *testing.T) {
	d := testDiagram()
	d.Fonts = []string{"https://fonts.googleapis.com/css2?family=Inter"}
	out := string(RenderSVG(d, WithBackground("ivory"), WithComment("pinout v1.0")))

	if !strings.Contains(out, `fill="ivory"`) {
		t.Error("missing background rect")
	}
	if !strings.Contains(out, "pinout v1.0") {
		t.Error("missing comment")
	}
	if !strings.Contains(out, "@import url(") {
		t.Error("missing font import")
	}
	// Background must precede every primitive.
	if strings.Index(out, `fill="ivory"`) > strings.Index(out, "<line") {
		t.Error("background painted after primitives")
	}
}

func TestFamilyAttr(t *testing.T) {
	tests := []struct {
		family string
		want   string
	}{
		{"sans-serif", "sans-serif"},
		{"monospace", "monospace"},
		{"Inter", "Inter, Helvetica, Arial, sans-serif"},
	}
	for _, tt := range tests {
		if got := familyAttr(tt.family); got != tt.want {
			t.Errorf("familyAttr(%q) = %q, want %q", tt.family, got, tt.want)
		}
	}
}

func TestRenderJSON(t *testing.T) {
	data, err := RenderJSON(testDiagram())
	if err != nil {
		t.Fatalf("RenderJSON failed: %v", err)
	}

	var doc struct {
		Canvas struct {
			WidthPx float64 `json:"width_px"`
			DPI     int     `json:"dpi"`
		} `json:"canvas"`
		Primitives []struct {
			Kind string `json:"kind"`
		} `json:"primitives"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	if doc.Canvas.WidthPx != 1000 || doc.Canvas.DPI != 300 {
		t.Errorf("canvas = %+v", doc.Canvas)
	}
	kinds := make([]string, 0, len(doc.Primitives))
	for _, p := range doc.Primitives {
		kinds = append(kinds, p.Kind)
	}
	want := []string{"rect", "line", "text", "image"}
	if len(kinds) != len(want) {
		t.Fatalf("kinds = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("kind %d = %q, want %q", i, kinds[i], want[i])
		}
	}
}
