package sink

import (
	"encoding/json"

	"github.com/hwaldner/pinout/pkg/render/diagram"
	"github.com/hwaldner/pinout/pkg/render/diagram/primitive"
)

// jsonDoc is the JSON output schema: canvas dimensions plus one object per
// primitive tagged with a "kind" discriminator.
type jsonDoc struct {
	Canvas     jsonCanvas      `json:"canvas"`
	Fonts      []string        `json:"fonts,omitempty"`
	Primitives []jsonPrimitive `json:"primitives"`
}

type jsonCanvas struct {
	WidthPx  float64 `json:"width_px"`
	HeightPx float64 `json:"height_px"`
	WidthMM  float64 `json:"width_mm"`
	HeightMM float64 `json:"height_mm"`
	DPI      int     `json:"dpi"`
}

type jsonPrimitive struct {
	Kind string `json:"kind"`
	Data any    `json:"data"`
}

// RenderJSON serializes the diagram as indented JSON, preserving primitive
// order. The format is meant for external tooling and debugging rather
// than rendering.
func RenderJSON(d *diagram.Diagram) ([]byte, error) {
	doc := jsonDoc{
		Canvas: jsonCanvas{
			WidthPx:  d.Canvas.WidthPx,
			HeightPx: d.Canvas.HeightPx,
			WidthMM:  d.Canvas.WidthMM,
			HeightMM: d.Canvas.HeightMM,
			DPI:      d.Canvas.DPI,
		},
		Fonts:      d.Fonts,
		Primitives: make([]jsonPrimitive, 0, len(d.Primitives)),
	}

	for _, p := range d.Primitives {
		doc.Primitives = append(doc.Primitives, jsonPrimitive{Kind: kindOf(p), Data: p})
	}

	return json.MarshalIndent(doc, "", "  ")
}

func kindOf(p primitive.Primitive) string {
	switch p.(type) {
	case primitive.Rect:
		return "rect"
	case primitive.Line:
		return "line"
	case primitive.TextRun:
		return "text"
	case primitive.ImageRef:
		return "image"
	case primitive.IconRef:
		return "icon"
	}
	return "unknown"
}
