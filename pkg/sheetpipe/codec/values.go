package codec

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// formula returns the formula text of a value starting with "=".
func formula(v any) (string, bool) {
	s, ok := v.(string)
	if !ok || len(s) < 2 || s[0] != '=' {
		return "", false
	}
	return s[1:], true
}

// wallClock returns t with the same calendar fields in UTC. Spreadsheet
// dates carry no zone, so the local wall clock is what gets stored.
func wallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// cellRange is a rectangle of 0-based cell coordinates.
type cellRange struct {
	top, left, bottom, right int
}

func (r cellRange) first() string { return cellName(r.top, r.left) }
func (r cellRange) last() string  { return cellName(r.bottom, r.right) }

func (r cellRange) String() string {
	if r.top == r.bottom && r.left == r.right {
		return r.first()
	}
	return r.first() + ":" + r.last()
}

// parseRange parses "A1:C3" or a single cell "B2".
func parseRange(ref string) (cellRange, error) {
	from, to, ok := strings.Cut(strings.ReplaceAll(ref, "$", ""), ":")
	if !ok {
		to = from
	}
	c1, r1, err := excelize.CellNameToCoordinates(from)
	if err != nil {
		return cellRange{}, fmt.Errorf("range %q: %w", ref, err)
	}
	c2, r2, err := excelize.CellNameToCoordinates(to)
	if err != nil {
		return cellRange{}, fmt.Errorf("range %q: %w", ref, err)
	}
	return cellRange{
		top: min(r1, r2) - 1, left: min(c1, c2) - 1,
		bottom: max(r1, r2) - 1, right: max(c1, c2) - 1,
	}, nil
}

// cellName returns the A1 name of a 0-based position.
func cellName(row, col int) string {
	name, _ := excelize.CoordinatesToCellName(col+1, row+1)
	return name
}

// columnName returns the letters of a 0-based column.
func columnName(col int) (string, error) {
	return excelize.ColumnNumberToName(col + 1)
}

var namedColors = map[string]string{
	"black":   "000000",
	"blue":    "0000FF",
	"brown":   "800000",
	"cyan":    "00FFFF",
	"gray":    "808080",
	"green":   "008000",
	"lime":    "00FF00",
	"magenta": "FF00FF",
	"navy":    "000080",
	"orange":  "FF6600",
	"pink":    "FF00FF",
	"purple":  "800080",
	"red":     "FF0000",
	"silver":  "C0C0C0",
	"white":   "FFFFFF",
	"yellow":  "FFFF00",
}

// normalizeColor returns a color as upper case RRGGBB. It accepts #RRGGBB,
// RRGGBB and the named colors.
func normalizeColor(s string) (string, error) {
	if rgb, ok := namedColors[strings.ToLower(s)]; ok {
		return rgb, nil
	}
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return "", fmt.Errorf("invalid color %q", s)
	}
	for _, c := range hex {
		if !strings.ContainsRune("0123456789abcdefABCDEF", c) {
			return "", fmt.Errorf("invalid color %q", s)
		}
	}
	return strings.ToUpper(hex), nil
}

// textRotation converts a rotation in degrees (-90..90, or 270 for stacked
// text) to the OOXML textRotation value.
func textRotation(deg int) (int, error) {
	switch {
	case deg == 270:
		return 255, nil
	case deg >= 0 && deg <= 90:
		return deg, nil
	case deg < 0 && deg >= -90:
		return 90 - deg, nil
	}
	return 0, fmt.Errorf("rotation %d out of range [-90, 90]", deg)
}

// alignment is a parsed alignment keyword list.
type alignment struct {
	horizontal, vertical string
}

// parseAlignment maps alignment keywords to OOXML horizontal and vertical
// values. Later keywords win.
func parseAlignment(words []string) (alignment, error) {
	var a alignment
	for _, w := range words {
		switch w {
		case "left", "center", "right", "fill", "justify", "distributed":
			a.horizontal = w
		case "center_across":
			a.horizontal = "centerContinuous"
		case "top", "bottom":
			a.vertical = w
		case "vcenter":
			a.vertical = "center"
		case "vjustify":
			a.vertical = "justify"
		case "vdistributed":
			a.vertical = "distributed"
		default:
			return alignment{}, fmt.Errorf("unknown alignment %q", w)
		}
	}
	return a, nil
}

// patternNames are the OOXML fill pattern names by index.
var patternNames = []string{
	"none", "solid", "mediumGray", "darkGray", "lightGray",
	"darkHorizontal", "darkVertical", "darkDown", "darkUp", "darkGrid", "darkTrellis",
	"lightHorizontal", "lightVertical", "lightDown", "lightUp", "lightGrid", "lightTrellis",
	"gray125", "gray0625",
}
