package command

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/hwaldner/pinout/pkg/errors"
)

// ParseFile reads a tabular command source from path.
func ParseFile(path string) ([]Command, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeResource, err, "open %s", path)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads an ordered command list from tabular text. Rows are
// comma-separated; blank rows and rows whose first cell starts with '#' are
// skipped. The first cell of each remaining row is the command word,
// case-insensitive.
//
// Parse tracks the DRAW marker only to disambiguate words that exist in both
// phases (BOX is a theme declaration in setup and a drawing command after
// DRAW). Phase legality itself is enforced by the document interpreter.
func Parse(r io.Reader) ([]Command, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true

	var commands []Command
	phase := PhaseSetup

	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeParse, err, "read command row")
		}

		word := strings.ToUpper(strings.TrimSpace(rec[0]))
		if word == "" || strings.HasPrefix(word, "#") {
			continue
		}

		if word == "DRAW" {
			phase = PhaseDraw
			commands = append(commands, BeginDraw{})
			continue
		}

		cmd, err := parseRow(word, rec, phase)
		if err != nil {
			if e, ok := err.(*errors.Error); ok {
				return nil, e.At(len(commands))
			}
			return nil, err
		}
		commands = append(commands, cmd)
	}

	return commands, nil
}

func parseRow(word string, rec []string, phase Phase) (Command, error) {
	switch word {
	case "LABELS":
		return parseLabels(rec)
	case "BORDER COLOR":
		return parseColorRow(AttrBorderColor, rec)
	case "FILL COLOR":
		return parseColorRow(AttrFillColor, rec)
	case "FONT":
		return parseColorRow(AttrFontFamily, rec)
	case "FONT COLOR":
		return parseColorRow(AttrFontColor, rec)
	case "BORDER WIDTH":
		return parseValueRow(AttrBorderWidth, rec)
	case "BORDER OPACITY":
		return parseValueRow(AttrBorderOpacity, rec)
	case "OPACITY":
		return parseValueRow(AttrFillOpacity, rec)
	case "FONT SIZE":
		return parseValueRow(AttrFontSize, rec)
	case "TYPE":
		return parseScopeDef(word, rec, func(name, color string, opacity float64) Command {
			return DefineType{Name: name, Color: color, Opacity: opacity}
		})
	case "GROUP":
		return parseScopeDef(word, rec, func(name, color string, opacity float64) Command {
			return DefineGroup{Name: name, Color: color, Opacity: opacity}
		})
	case "WIRE":
		return parseWire(rec)
	case "TEXT FONT":
		return parseTextFont(rec)
	case "PAGE":
		return parsePage(rec)
	case "DPI":
		return parseDPI(rec)
	case "BOX":
		if phase == PhaseSetup {
			return parseBoxTheme(rec)
		}
		return parseDrawBox(rec)
	case "ANCHOR":
		return parseAnchor(rec)
	case "PINSET":
		return parsePinSet(rec)
	case "PIN":
		return parsePin(rec)
	case "PINTEXT":
		return parsePinText(rec)
	case "IMAGE":
		return parseImage(rec)
	case "ICON":
		return parseIcon(rec)
	case "GOOGLEFONT":
		return parseFetchFont(rec)
	case "MESSAGE":
		return parseMessage(rec)
	case "TEXT":
		return parseText(rec)
	case "END MESSAGE":
		return EndMessage{}, nil
	}
	return nil, errors.New(errors.ErrCodeParse, "unknown command %q", word)
}

// cell returns the trimmed field at index i, or "" past the row's end.
func cell(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func parseFloat(value string) (float64, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(value), ",", "")
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, errors.New(errors.ErrCodeParse, "invalid number %q", value)
	}
	return v, nil
}

// parseScalar parses a coordinate or size cell. A trailing '%' marks a
// canvas-relative value, mapped into [0, 0.9999] so downstream code can
// distinguish fractions from absolute device units.
func parseScalar(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if p, ok := strings.CutSuffix(value, "%"); ok {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return 0, errors.New(errors.ErrCodeParse, "invalid percentage %q", value)
		}
		return 0.9999 * min(v, 100) / 100, nil
	}
	return parseFloat(value)
}

// optScalar parses an optional coordinate cell, nil when empty or absent.
func optScalar(rec []string, i int) (*float64, error) {
	s := cell(rec, i)
	if s == "" {
		return nil, nil
	}
	v, err := parseScalar(s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func parseSide(value string) (Side, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "LEFT":
		return SideLeft, nil
	case "RIGHT":
		return SideRight, nil
	case "TOP":
		return SideTop, nil
	case "BOTTOM":
		return SideBottom, nil
	}
	return 0, errors.New(errors.ErrCodeParse, "invalid side %q", value)
}

func parseAlignX(value string) (AlignX, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "LEFT":
		return AlignXLeft, nil
	case "RIGHT":
		return AlignXRight, nil
	case "CENTER":
		return AlignXCenter, nil
	}
	return 0, errors.New(errors.ErrCodeParse, "invalid horizontal alignment %q", value)
}

func parseAlignY(value string) (AlignY, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "TOP":
		return AlignYTop, nil
	case "BOTTOM":
		return AlignYBottom, nil
	case "CENTER":
		return AlignYCenter, nil
	}
	return 0, errors.New(errors.ErrCodeParse, "invalid vertical alignment %q", value)
}

func parsePacked(value string) (bool, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "TRUE", "YES", "1", "PACKED":
		return true, nil
	case "FALSE", "NO", "0", "UNPACKED", "SPREAD":
		return false, nil
	}
	return false, errors.New(errors.ErrCodeParse, "invalid packing mode %q", value)
}

func parseLabels(rec []string) (Command, error) {
	if len(rec) < 2 {
		return nil, errors.New(errors.ErrCodeParse, "LABELS requires at least a primary column")
	}
	cmd := SetLabels{
		Primary: cell(rec, 1),
		Type:    cell(rec, 2),
		Group:   cell(rec, 3),
	}
	for i := 4; i < len(rec); i++ {
		cmd.Columns = append(cmd.Columns, cell(rec, i))
	}
	return cmd, nil
}

func parseColorRow(attr Attr, rec []string) (Command, error) {
	if len(rec) < 2 {
		return nil, errors.New(errors.ErrCodeParse, "%s requires a default value", attr)
	}
	row := StyleColorRow{Attr: attr, Default: cell(rec, 1)}
	if s := cell(rec, 2); s != "" {
		row.Type = &s
	}
	if s := cell(rec, 3); s != "" {
		row.Group = &s
	}
	for i := 4; i < len(rec); i++ {
		row.Columns = append(row.Columns, cell(rec, i))
	}
	return row, nil
}

func parseValueRow(attr Attr, rec []string) (Command, error) {
	if len(rec) < 2 {
		return nil, errors.New(errors.ErrCodeParse, "%s requires a default value", attr)
	}
	def, err := parseFloat(cell(rec, 1))
	if err != nil {
		return nil, err
	}
	row := StyleValueRow{Attr: attr, Default: def}
	for scope, dst := range map[int]**float64{2: &row.Type, 3: &row.Group} {
		if s := cell(rec, scope); s != "" {
			v, err := parseFloat(s)
			if err != nil {
				return nil, err
			}
			*dst = &v
		}
	}
	for i := 4; i < len(rec); i++ {
		s := cell(rec, i)
		if s == "" {
			row.Columns = append(row.Columns, nil)
			continue
		}
		v, err := parseFloat(s)
		if err != nil {
			return nil, err
		}
		row.Columns = append(row.Columns, &v)
	}
	return row, nil
}

func parseScopeDef(word string, rec []string, build func(string, string, float64) Command) (Command, error) {
	if len(rec) < 4 {
		return nil, errors.New(errors.ErrCodeParse, "%s requires name, color and opacity", word)
	}
	name := cell(rec, 1)
	if err := errors.ValidateName(name); err != nil {
		return nil, err
	}
	color := cell(rec, 2)
	if color != "" {
		if err := errors.ValidateColor(color); err != nil {
			return nil, err
		}
	}
	opacity, err := parseFloat(cell(rec, 3))
	if err != nil {
		return nil, err
	}
	if err := errors.ValidateOpacity(opacity); err != nil {
		return nil, err
	}
	return build(name, color, opacity), nil
}

func parseWire(rec []string) (Command, error) {
	if len(rec) < 5 {
		return nil, errors.New(errors.ErrCodeParse, "WIRE requires name, color, opacity and thickness")
	}
	name := cell(rec, 1)
	if err := errors.ValidateName(name); err != nil {
		return nil, err
	}
	if err := errors.ValidateColor(cell(rec, 2)); err != nil {
		return nil, err
	}
	opacity, err := parseFloat(cell(rec, 3))
	if err != nil {
		return nil, err
	}
	if err := errors.ValidateOpacity(opacity); err != nil {
		return nil, err
	}
	thickness, err := parseFloat(cell(rec, 4))
	if err != nil {
		return nil, err
	}
	return DefineWire{Name: name, Color: cell(rec, 2), Opacity: opacity, Thickness: thickness}, nil
}

func parseBoxTheme(rec []string) (Command, error) {
	if len(rec) < 11 {
		return nil, errors.New(errors.ErrCodeParse, "BOX theme requires name, colors, opacities and geometry")
	}
	name := cell(rec, 1)
	if err := errors.ValidateName(name); err != nil {
		return nil, err
	}
	vals := make([]float64, 0, 8)
	for _, i := range []int{3, 5, 6, 7, 8, 9, 10} {
		v, err := parseFloat(cell(rec, i))
		if err != nil {
			return nil, err
		}
		vals = append(vals, v)
	}
	return DefineBoxTheme{
		Name:          name,
		BorderColor:   cell(rec, 2),
		BorderOpacity: vals[0],
		FillColor:     cell(rec, 4),
		FillOpacity:   vals[1],
		LineWidth:     vals[2],
		Width:         vals[3],
		Height:        vals[4],
		CornerRX:      vals[5],
		CornerRY:      vals[6],
	}, nil
}

func parseTextFont(rec []string) (Command, error) {
	if len(rec) < 6 {
		return nil, errors.New(errors.ErrCodeParse, "TEXT FONT requires name, family, size and colors")
	}
	name := cell(rec, 1)
	if err := errors.ValidateName(name); err != nil {
		return nil, err
	}
	size, err := parseFloat(cell(rec, 3))
	if err != nil {
		return nil, err
	}
	return DefineTextFont{
		Name:         name,
		Family:       cell(rec, 2),
		Size:         size,
		OutlineColor: cell(rec, 4),
		Color:        cell(rec, 5),
	}, nil
}

func parsePage(rec []string) (Command, error) {
	if len(rec) < 2 || cell(rec, 1) == "" {
		return nil, errors.New(errors.ErrCodeParse, "PAGE requires a page identifier")
	}
	return SetPage{ID: strings.ToUpper(cell(rec, 1))}, nil
}

func parseDPI(rec []string) (Command, error) {
	if len(rec) < 2 {
		return nil, errors.New(errors.ErrCodeParse, "DPI requires a value")
	}
	v, err := strconv.Atoi(cell(rec, 1))
	if err != nil {
		return nil, errors.New(errors.ErrCodeParse, "invalid DPI value %q", cell(rec, 1))
	}
	return SetDPI{Value: v}, nil
}

func parseAnchor(rec []string) (Command, error) {
	if len(rec) < 3 {
		return nil, errors.New(errors.ErrCodeParse, "ANCHOR requires x and y")
	}
	x, err := parseScalar(cell(rec, 1))
	if err != nil {
		return nil, err
	}
	y, err := parseScalar(cell(rec, 2))
	if err != nil {
		return nil, err
	}
	return SetAnchor{X: x, Y: y}, nil
}

func parsePinSet(rec []string) (Command, error) {
	if len(rec) < 11 {
		return nil, errors.New(errors.ErrCodeParse, "PINSET requires side, packing, alignment and six geometry values")
	}
	side, err := parseSide(cell(rec, 1))
	if err != nil {
		return nil, err
	}
	packed, err := parsePacked(cell(rec, 2))
	if err != nil {
		return nil, err
	}
	ax, err := parseAlignX(cell(rec, 3))
	if err != nil {
		return nil, err
	}
	ay, err := parseAlignY(cell(rec, 4))
	if err != nil {
		return nil, err
	}
	geom := make([]float64, 6)
	for i := range geom {
		if geom[i], err = parseFloat(cell(rec, 5+i)); err != nil {
			return nil, err
		}
	}
	return BeginPinSet{Spec: PinSetSpec{
		Side:       side,
		Packed:     packed,
		AlignX:     ax,
		AlignY:     ay,
		Pitch:      geom[0],
		BoxLength:  geom[1],
		Span:       geom[2],
		LeadLength: geom[3],
		ColumnGap:  geom[4],
		LeadStep:   geom[5],
	}}, nil
}

func parsePin(rec []string) (Command, error) {
	if len(rec) < 2 {
		return nil, errors.New(errors.ErrCodeParse, "PIN requires at least one cell")
	}
	cmd := AddPin{
		Wire:  cell(rec, 1),
		Type:  cell(rec, 2),
		Group: cell(rec, 3),
	}
	for i := 4; i < len(rec); i++ {
		cmd.Labels = append(cmd.Labels, cell(rec, i))
	}
	return cmd, nil
}

func parsePinText(rec []string) (Command, error) {
	if len(rec) < 5 {
		return nil, errors.New(errors.ErrCodeParse, "PINTEXT requires wire, type, group and theme cells")
	}
	return AddPinText{
		Wire:  cell(rec, 1),
		Type:  cell(rec, 2),
		Group: cell(rec, 3),
		Theme: cell(rec, 4),
		Label: cell(rec, 5),
		Text:  cell(rec, 6),
	}, nil
}

func parseDrawBox(rec []string) (Command, error) {
	if len(rec) < 4 {
		return nil, errors.New(errors.ErrCodeParse, "BOX requires theme, x and y")
	}
	x, err := parseScalar(cell(rec, 2))
	if err != nil {
		return nil, err
	}
	y, err := parseScalar(cell(rec, 3))
	if err != nil {
		return nil, err
	}
	cmd := DrawBox{Theme: cell(rec, 1), X: x, Y: y, Text: cell(rec, 8)}
	if cmd.Width, err = optScalar(rec, 4); err != nil {
		return nil, err
	}
	if cmd.Height, err = optScalar(rec, 5); err != nil {
		return nil, err
	}
	if s := cell(rec, 6); s != "" {
		if cmd.AlignX, err = parseAlignX(s); err != nil {
			return nil, err
		}
	}
	if s := cell(rec, 7); s != "" {
		if cmd.AlignY, err = parseAlignY(s); err != nil {
			return nil, err
		}
	}
	return cmd, nil
}

func parseImage(rec []string) (Command, error) {
	if len(rec) < 4 || cell(rec, 1) == "" {
		return nil, errors.New(errors.ErrCodeParse, "IMAGE requires a path and position")
	}
	cmd := PlaceImage{Path: cell(rec, 1)}
	var err error
	dests := []**float64{
		&cmd.X, &cmd.Y, &cmd.Width, &cmd.Height,
		&cmd.CropX, &cmd.CropY, &cmd.CropW, &cmd.CropH, &cmd.Rotation,
	}
	for i, dst := range dests {
		if *dst, err = optScalar(rec, 2+i); err != nil {
			return nil, err
		}
	}
	return cmd, nil
}

func parseIcon(rec []string) (Command, error) {
	if len(rec) < 4 || cell(rec, 1) == "" {
		return nil, errors.New(errors.ErrCodeParse, "ICON requires a path and position")
	}
	cmd := PlaceIcon{Path: cell(rec, 1)}
	var err error
	for i, dst := range []**float64{&cmd.X, &cmd.Y, &cmd.Width, &cmd.Height, &cmd.Rotation} {
		if *dst, err = optScalar(rec, 2+i); err != nil {
			return nil, err
		}
	}
	return cmd, nil
}

func parseFetchFont(rec []string) (Command, error) {
	if len(rec) < 2 || cell(rec, 1) == "" {
		return nil, errors.New(errors.ErrCodeParse, "GOOGLEFONT requires a family name or stylesheet URL")
	}
	return FetchFont{URL: cell(rec, 1)}, nil
}

func parseMessage(rec []string) (Command, error) {
	cmd := BeginMessage{AlignX: AlignXLeft, AlignY: AlignYTop}
	var err error
	for i, dst := range []**float64{&cmd.X, &cmd.Y, &cmd.LineStep} {
		if *dst, err = optScalar(rec, 1+i); err != nil {
			return nil, err
		}
	}
	if s := cell(rec, 4); s != "" {
		cmd.Font = &s
	}
	if cmd.FontSize, err = optScalar(rec, 5); err != nil {
		return nil, err
	}
	if s := cell(rec, 6); s != "" {
		if cmd.AlignX, err = parseAlignX(s); err != nil {
			return nil, err
		}
	}
	if s := cell(rec, 7); s != "" {
		if cmd.AlignY, err = parseAlignY(s); err != nil {
			return nil, err
		}
	}
	return cmd, nil
}

func parseText(rec []string) (Command, error) {
	if len(rec) < 4 {
		return nil, errors.New(errors.ErrCodeParse, "TEXT requires outline color, color and message")
	}
	return AddText{
		OutlineColor: cell(rec, 1),
		Color:        cell(rec, 2),
		Message:      rec[3],
		NewLine:      len(rec) > 4,
	}, nil
}
