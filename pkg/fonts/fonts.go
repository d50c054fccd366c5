// Package fonts provides web font helpers for SVG rendering.
//
// Diagrams reference fonts by Google Fonts stylesheet URL or by bare family
// name. The helpers here normalize both forms into stylesheet URLs and CSS
// import statements embedded in the SVG output.
package fonts

import (
	"fmt"
	"net/url"
	"strings"
)

// DefaultFamily is the font family used when a document sets none.
const DefaultFamily = "sans-serif"

// FallbackFamily provides generic fallbacks appended after a custom family.
const FallbackFamily = "Helvetica, Arial, sans-serif"

// stylesheetBase is the Google Fonts CSS endpoint.
const stylesheetBase = "https://fonts.googleapis.com/css2"

// StylesheetURL builds a Google Fonts stylesheet URL for a family. Optional
// weights are requested in addition to the regular weight.
func StylesheetURL(family string, weights ...int) string {
	spec := strings.ReplaceAll(strings.TrimSpace(family), " ", "+")
	if len(weights) > 0 {
		parts := make([]string, len(weights))
		for i, w := range weights {
			parts[i] = fmt.Sprintf("%d", w)
		}
		spec += ":wght@" + strings.Join(parts, ";")
	}
	return stylesheetBase + "?family=" + spec + "&display=swap"
}

// Resolve turns a font reference into a stylesheet URL. Full URLs pass
// through unchanged; anything else is treated as a family name.
func Resolve(ref string) string {
	ref = strings.TrimSpace(ref)
	if IsStylesheetURL(ref) {
		return ref
	}
	return StylesheetURL(ref)
}

// IsStylesheetURL reports whether ref is already an absolute URL.
func IsStylesheetURL(ref string) bool {
	u, err := url.Parse(ref)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https")
}

// Import renders a CSS import statement for a stylesheet URL.
func Import(stylesheet string) string {
	return fmt.Sprintf("@import url('%s');", stylesheet)
}
