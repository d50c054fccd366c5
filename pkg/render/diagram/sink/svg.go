// Package sink serializes assembled diagrams into output formats.
package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/hwaldner/pinout/pkg/fonts"
	"github.com/hwaldner/pinout/pkg/render/diagram"
	"github.com/hwaldner/pinout/pkg/render/diagram/primitive"
)

// SVGOption configures the SVG emitter.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	background string
	comment    string
}

// WithBackground paints a full-canvas rectangle behind all primitives.
func WithBackground(color string) SVGOption {
	return func(r *svgRenderer) { r.background = color }
}

// WithComment embeds a comment at the top of the file, typically the
// generator name and version.
func WithComment(text string) SVGOption {
	return func(r *svgRenderer) { r.comment = text }
}

// RenderSVG serializes the diagram as an SVG document. Primitives are
// emitted in list order, which is the paint order the assembler guarantees.
func RenderSVG(d *diagram.Diagram, opts ...SVGOption) []byte {
	var r svgRenderer
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="0 0 %.2f %.2f" width="%gmm" height="%gmm">`+"\n",
		d.Canvas.WidthPx, d.Canvas.HeightPx, d.Canvas.WidthMM, d.Canvas.HeightMM)

	if r.comment != "" {
		fmt.Fprintf(&buf, "  <!-- %s -->\n", escape(r.comment))
	}
	for _, url := range d.Fonts {
		fmt.Fprintf(&buf, "  <style>%s</style>\n", fonts.Import(url))
	}
	if r.background != "" {
		fmt.Fprintf(&buf, `  <rect x="0" y="0" width="%.2f" height="%.2f" fill="%s"/>`+"\n",
			d.Canvas.WidthPx, d.Canvas.HeightPx, escape(r.background))
	}

	for _, p := range d.Primitives {
		renderPrimitive(&buf, p)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderPrimitive(buf *bytes.Buffer, p primitive.Primitive) {
	switch v := p.(type) {
	case primitive.Rect:
		fmt.Fprintf(buf, `  <rect x="%.2f" y="%.2f" width="%.2f" height="%.2f"`, v.X, v.Y, v.W, v.H)
		if v.RX > 0 || v.RY > 0 {
			fmt.Fprintf(buf, ` rx="%.2f" ry="%.2f"`, v.RX, v.RY)
		}
		fmt.Fprintf(buf, ` stroke="%s" stroke-width="%.2f" stroke-opacity="%.3f" fill="%s" fill-opacity="%.3f"/>`+"\n",
			escape(v.Stroke), v.StrokeWidth, v.StrokeOpacity, escape(v.Fill), v.FillOpacity)

	case primitive.Line:
		fmt.Fprintf(buf, `  <line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="%.2f" stroke-opacity="%.3f"/>`+"\n",
			v.X1, v.Y1, v.X2, v.Y2, escape(v.Stroke), v.Width, v.Opacity)

	case primitive.TextRun:
		fmt.Fprintf(buf, `  <text x="%.2f" y="%.2f" font-family="%s" font-size="%.2f" fill="%s" text-anchor="%s"`,
			v.X, v.Y, escape(familyAttr(v.Family)), v.Size, escape(v.Color), v.Anchor)
		if v.Outline != "" && v.Outline != "none" {
			fmt.Fprintf(buf, ` stroke="%s" stroke-width="%.2f"`, escape(v.Outline), v.Size/24)
		}
		if v.Rotation != 0 {
			fmt.Fprintf(buf, ` transform="rotate(%.1f %.2f %.2f)"`, v.Rotation, v.X, v.Y)
		}
		fmt.Fprintf(buf, ">%s</text>\n", escape(v.Text))

	case primitive.ImageRef:
		renderImage(buf, v)

	case primitive.IconRef:
		fmt.Fprintf(buf, `  <image x="%.2f" y="%.2f" width="%.2f" height="%.2f" xlink:href="%s"`,
			v.X, v.Y, v.W, v.H, escape(v.Path))
		writeRotation(buf, v.Rotation, v.X+v.W/2, v.Y+v.H/2)
		buf.WriteString("/>\n")
	}
}

func renderImage(buf *bytes.Buffer, v primitive.ImageRef) {
	if v.HasCrop {
		// Crop via a nested svg acting as a viewport onto the source image.
		fmt.Fprintf(buf, `  <svg x="%.2f" y="%.2f" width="%.2f" height="%.2f" viewBox="%.2f %.2f %.2f %.2f" preserveAspectRatio="none">`,
			v.X, v.Y, v.W, v.H, v.CropX, v.CropY, v.CropW, v.CropH)
		fmt.Fprintf(buf, `<image xlink:href="%s"/></svg>`+"\n", escape(v.Path))
		return
	}

	fmt.Fprintf(buf, `  <image x="%.2f" y="%.2f" width="%.2f" height="%.2f" xlink:href="%s"`,
		v.X, v.Y, v.W, v.H, escape(v.Path))
	writeRotation(buf, v.Rotation, v.X+v.W/2, v.Y+v.H/2)
	buf.WriteString("/>\n")
}

// familyAttr appends generic fallbacks after custom families so text stays
// readable while a web font loads. Generic CSS families pass through as is.
func familyAttr(family string) string {
	switch family {
	case "serif", "sans-serif", "monospace", "cursive", "fantasy":
		return family
	}
	return family + ", " + fonts.FallbackFamily
}

func writeRotation(buf *bytes.Buffer, deg, cx, cy float64) {
	if deg != 0 {
		fmt.Fprintf(buf, ` transform="rotate(%.1f %.2f %.2f)"`, deg, cx, cy)
	}
}

func escape(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
