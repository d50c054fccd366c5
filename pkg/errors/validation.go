package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateName validates a user-supplied scope name (type, group, wire, box
// theme, or font theme). Names are case-sensitive identity keys in the theme
// store, so they must be printable and reasonably sized.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - Maximum length of 64 characters
func ValidateName(name string) error {
	if name == "" {
		return New(ErrCodeParse, "name cannot be empty")
	}

	if len(name) > 64 {
		return New(ErrCodeParse, "name too long (max 64 characters): %q", name)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeParse, "name contains control characters: %q", name)
		}
	}

	return nil
}

// hexColorRegex matches #RGB, #RRGGBB and #RRGGBBAA hex colors.
var hexColorRegex = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)

// cssNameRegex matches CSS color keywords and functional notations well
// enough to catch obvious garbage without maintaining the full keyword list.
var cssNameRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9]*$|^(?:rgb|rgba|hsl|hsla)\(`)

// ValidateColor validates a color value. Hex notation is checked strictly;
// anything that looks like a CSS keyword or functional notation passes
// through, since the emitter hands colors to the SVG renderer verbatim.
func ValidateColor(value string) error {
	if value == "" {
		return New(ErrCodeParse, "color cannot be empty")
	}
	if strings.HasPrefix(value, "#") {
		if !hexColorRegex.MatchString(value) {
			return New(ErrCodeParse, "invalid hex color: %q", value)
		}
		return nil
	}
	if !cssNameRegex.MatchString(value) {
		return New(ErrCodeParse, "invalid color: %q", value)
	}
	return nil
}

// ValidateOpacity checks that an opacity value is within [0, 1].
func ValidateOpacity(value float64) error {
	if value < 0 || value > 1 {
		return New(ErrCodeParse, "opacity must be between 0 and 1, got %g", value)
	}
	return nil
}
