// Package render provides output rendering for pinout diagrams.
//
// # Overview
//
// This package contains the back half of the rendering pipeline, turning an
// assembled diagram into deliverable bytes. It provides:
//
//   - Generic format conversion (SVG to PDF/PNG)
//   - Diagram assembly and layout (in the diagram subpackage)
//   - Format emitters (in the diagram/sink subpackage)
//
// # Format Conversion
//
// The ToPDF and ToPNG functions convert any SVG to other formats using the
// external rsvg-convert tool (from librsvg):
//
//	svg := sink.RenderSVG(d)
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 300)
//
// Raster output resolution follows the diagram's DPI, so the PNG pixel size
// matches the page geometry the document configured.
package render
