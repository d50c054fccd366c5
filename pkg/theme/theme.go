// Package theme implements the cascading style model for pinout documents.
//
// Styles accumulate during the setup phase from theme commands and are looked
// up during layout through a field-wise cascade. Each scope may be partially
// specified; any field a scope leaves unset falls through to the next scope
// independently of the other fields.
//
// # Cascade
//
// For every rendered element the cascade consults, in order of decreasing
// precedence:
//
//  1. per-pin override (not stored here, supplied by the caller)
//  2. the pin's named group scope
//  3. the pin's named type scope
//  4. the label-column scope for the element's column
//  5. the document default scope
//  6. built-in fallbacks (black border, white fill, sans-serif 12, opacity 1)
//
// Resolution is pure: it never mutates the store, and resolving the same
// reference twice yields identical results.
package theme

import "github.com/hwaldner/pinout/pkg/errors"

// Built-in fallbacks used when no scope specifies a field.
const (
	DefaultBorderColor = "black"
	DefaultFillColor   = "white"
	DefaultFontFamily  = "sans-serif"
	DefaultFontColor   = "black"
	DefaultFontSize    = 12.0
	DefaultBorderWidth = 1.0
)

// AttrSet is a partially specified set of style attributes. Nil fields are
// unset and fall through to the next cascade level.
type AttrSet struct {
	BorderColor   *string
	BorderWidth   *float64
	BorderOpacity *float64
	FillColor     *string
	FillOpacity   *float64
	FontFamily    *string
	FontSize      *float64
	FontColor     *string
}

// Merge overwrites s's fields with o's set fields. Later commands win per
// field, not per scope.
func (s *AttrSet) Merge(o AttrSet) {
	if o.BorderColor != nil {
		s.BorderColor = o.BorderColor
	}
	if o.BorderWidth != nil {
		s.BorderWidth = o.BorderWidth
	}
	if o.BorderOpacity != nil {
		s.BorderOpacity = o.BorderOpacity
	}
	if o.FillColor != nil {
		s.FillColor = o.FillColor
	}
	if o.FillOpacity != nil {
		s.FillOpacity = o.FillOpacity
	}
	if o.FontFamily != nil {
		s.FontFamily = o.FontFamily
	}
	if o.FontSize != nil {
		s.FontSize = o.FontSize
	}
	if o.FontColor != nil {
		s.FontColor = o.FontColor
	}
}

// Style is a fully resolved attribute set. Every field is populated; no
// further cascading happens downstream.
type Style struct {
	BorderColor   string
	BorderWidth   float64
	BorderOpacity float64
	FillColor     string
	FillOpacity   float64
	FontFamily    string
	FontSize      float64
	FontColor     string
}

// Wire is a named lead-line style declared by the WIRE command.
type Wire struct {
	Name      string
	Color     string
	Opacity   float64
	Thickness float64
}

// BoxTheme is a named box shape declared by the setup-phase BOX command.
type BoxTheme struct {
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

// FontTheme is a named text style declared by the TEXT FONT command, used by
// PINTEXT and MESSAGE blocks.
type FontTheme struct {
	Name         string
	Family       string
	Size         float64
	OutlineColor string
	Color        string
}

// Ref identifies the cascade context for one rendered element: the pin's
// type and group names (either may be empty) and the label column the element
// belongs to (-1 for elements outside the label grid, such as lead lines).
type Ref struct {
	Type   string
	Group  string
	Column int
}

// Store accumulates style attributes keyed by scope and answers cascading
// lookups. A Store belongs to exactly one document and is not safe for
// concurrent mutation.
type Store struct {
	schema []string // label column names, fixed after SetSchema

	def       AttrSet
	columns   []AttrSet          // indexed by schema column
	typeBase  AttrSet            // row values addressed to the type column
	groupBase AttrSet            // row values addressed to the group column
	types     map[string]AttrSet // named type scopes
	groups    map[string]AttrSet // named group scopes

	wires map[string]Wire
	boxes map[string]BoxTheme
	fonts map[string]FontTheme
}

// NewStore creates an empty theme store.
func NewStore() *Store {
	return &Store{
		types:  make(map[string]AttrSet),
		groups: make(map[string]AttrSet),
		wires:  make(map[string]Wire),
		boxes:  make(map[string]BoxTheme),
		fonts:  make(map[string]FontTheme),
	}
}

// SetSchema fixes the label columns for the document. It may be called at
// most once; redeclaration is a SchemaError.
func (s *Store) SetSchema(columns []string) error {
	if s.schema != nil {
		return errors.New(errors.ErrCodeSchema, "LABELS may only be declared once")
	}
	if len(columns) == 0 {
		return errors.New(errors.ErrCodeSchema, "LABELS requires at least one column")
	}
	s.schema = append([]string(nil), columns...)
	s.columns = make([]AttrSet, len(columns))
	return nil
}

// Schema returns the declared label columns (nil before LABELS).
func (s *Store) Schema() []string { return s.schema }

// Arity returns the number of declared label columns.
func (s *Store) Arity() int { return len(s.schema) }

// RecordDefault merges attributes into the document default scope.
func (s *Store) RecordDefault(set AttrSet) { s.def.Merge(set) }

// RecordTypeBase merges attributes addressed to the type column of a style
// row. These apply to every pin that names a type.
func (s *Store) RecordTypeBase(set AttrSet) { s.typeBase.Merge(set) }

// RecordGroupBase merges attributes addressed to the group column of a style
// row. These apply to every pin that names a group.
func (s *Store) RecordGroupBase(set AttrSet) { s.groupBase.Merge(set) }

// RecordColumn merges attributes into one label-column scope. Referencing a
// column outside the declared schema is a SchemaError.
func (s *Store) RecordColumn(index int, set AttrSet) error {
	if s.schema == nil {
		return errors.New(errors.ErrCodeSchema, "style row before LABELS declaration")
	}
	if index < 0 || index >= len(s.schema) {
		return errors.New(errors.ErrCodeSchema,
			"style column %d out of range (schema has %d columns)", index, len(s.schema))
	}
	s.columns[index].Merge(set)
	return nil
}

// DefineType declares or updates a named type scope. Duplicate names merge
// field-wise, later commands winning.
func (s *Store) DefineType(name string, set AttrSet) {
	cur := s.types[name]
	cur.Merge(set)
	s.types[name] = cur
}

// DefineGroup declares or updates a named group scope.
func (s *Store) DefineGroup(name string, set AttrSet) {
	cur := s.groups[name]
	cur.Merge(set)
	s.groups[name] = cur
}

// DefineWire declares or replaces a named wire style.
func (s *Store) DefineWire(w Wire) { s.wires[w.Name] = w }

// DefineBox declares or replaces a named box theme.
func (s *Store) DefineBox(b BoxTheme) { s.boxes[b.Name] = b }

// DefineFont declares or replaces a named font theme.
func (s *Store) DefineFont(f FontTheme) { s.fonts[f.Name] = f }

// HasType reports whether a type scope with the given name was declared.
func (s *Store) HasType(name string) bool {
	_, ok := s.types[name]
	return ok
}

// HasGroup reports whether a group scope with the given name was declared.
func (s *Store) HasGroup(name string) bool {
	_, ok := s.groups[name]
	return ok
}

// Wire returns the named wire style.
func (s *Store) Wire(name string) (Wire, bool) {
	w, ok := s.wires[name]
	return w, ok
}

// Box returns the named box theme.
func (s *Store) Box(name string) (BoxTheme, bool) {
	b, ok := s.boxes[name]
	return b, ok
}

// Font returns the named font theme.
func (s *Store) Font(name string) (FontTheme, bool) {
	f, ok := s.fonts[name]
	return f, ok
}

// Resolve runs the field-wise cascade for ref with an optional per-pin
// override and returns a fully populated style.
func (s *Store) Resolve(ref Ref, override AttrSet) Style {
	levels := s.cascade(ref, override)

	return Style{
		BorderColor:   resolveString(levels, func(a *AttrSet) *string { return a.BorderColor }, DefaultBorderColor),
		BorderWidth:   resolveFloat(levels, func(a *AttrSet) *float64 { return a.BorderWidth }, DefaultBorderWidth),
		BorderOpacity: resolveFloat(levels, func(a *AttrSet) *float64 { return a.BorderOpacity }, 1),
		FillColor:     resolveString(levels, func(a *AttrSet) *string { return a.FillColor }, DefaultFillColor),
		FillOpacity:   resolveFloat(levels, func(a *AttrSet) *float64 { return a.FillOpacity }, 1),
		FontFamily:    resolveString(levels, func(a *AttrSet) *string { return a.FontFamily }, DefaultFontFamily),
		FontSize:      resolveFloat(levels, func(a *AttrSet) *float64 { return a.FontSize }, DefaultFontSize),
		FontColor:     resolveString(levels, func(a *AttrSet) *string { return a.FontColor }, DefaultFontColor),
	}
}

// cascade builds the ordered list of scope snapshots consulted per field,
// highest precedence first.
func (s *Store) cascade(ref Ref, override AttrSet) []*AttrSet {
	levels := make([]*AttrSet, 0, 7)
	levels = append(levels, &override)

	if ref.Group != "" {
		if set, ok := s.groups[ref.Group]; ok {
			levels = append(levels, &set)
		}
		levels = append(levels, &s.groupBase)
	}
	if ref.Type != "" {
		if set, ok := s.types[ref.Type]; ok {
			levels = append(levels, &set)
		}
		levels = append(levels, &s.typeBase)
	}
	if ref.Column >= 0 && ref.Column < len(s.columns) {
		levels = append(levels, &s.columns[ref.Column])
	}
	return append(levels, &s.def)
}

func resolveString(levels []*AttrSet, field func(*AttrSet) *string, fallback string) string {
	for _, l := range levels {
		if v := field(l); v != nil {
			return *v
		}
	}
	return fallback
}

func resolveFloat(levels []*AttrSet, field func(*AttrSet) *float64, fallback float64) float64 {
	for _, l := range levels {
		if v := field(l); v != nil {
			return *v
		}
	}
	return fallback
}

// String returns a pointer to v, for building AttrSet literals.
func String(v string) *string { return &v }

// Float returns a pointer to v, for building AttrSet literals.
func Float(v float64) *float64 { return &v }
