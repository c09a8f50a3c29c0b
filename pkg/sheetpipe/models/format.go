package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Format is the declarative style description registered with the format
// command or passed inline to write.
type Format struct {
	Font *Font `json:"font,omitempty"`
	// Color is a shorthand for Font.Color.
	Color           string       `json:"color,omitempty"`
	NumberFormat    NumberFormat `json:"numberFormat"`
	Locked          *bool        `json:"locked,omitempty"`
	Hidden          bool         `json:"hidden,omitempty"`
	Alignment       string       `json:"alignment,omitempty"`
	TextWrap        bool         `json:"textWrap,omitempty"`
	Rotation        *int         `json:"rotation,omitempty"`
	Indent          int          `json:"indent,omitempty"`
	ShrinkToFit     bool         `json:"shrinkToFit,omitempty"`
	JustifyLastText bool         `json:"justifyLastText,omitempty"`
	Fill            *Fill        `json:"fill,omitempty"`
	Borders         *Borders     `json:"borders,omitempty"`
}

// FontColor returns the font color, falling back to the top level shorthand.
func (f Format) FontColor() string {
	if f.Font != nil && f.Font.Color != "" {
		return f.Font.Color
	}
	return f.Color
}

// Alignments returns the alignment keywords in order, with "middle"
// normalised to "vcenter".
func (f Format) Alignments() []string {
	words := strings.Fields(f.Alignment)
	for i, w := range words {
		if w == "middle" {
			words[i] = "vcenter"
		}
	}
	return words
}

// Font describes the font part of a Format.
type Font struct {
	Name        string    `json:"name,omitempty"`
	Size        float64   `json:"size,omitempty"`
	Color       string    `json:"color,omitempty"`
	Bold        bool      `json:"bold,omitempty"`
	Italic      bool      `json:"italic,omitempty"`
	Underline   Underline `json:"underline,omitempty"`
	Strikeout   bool      `json:"strikeout,omitempty"`
	Superscript bool      `json:"superscript,omitempty"`
	Subscript   bool      `json:"subscript,omitempty"`
}

// Underline is an underline style.
type Underline string

const (
	UnderlineNone             Underline = ""
	UnderlineSingle           Underline = "single"
	UnderlineDouble           Underline = "double"
	UnderlineSingleAccounting Underline = "singleAccounting"
	UnderlineDoubleAccounting Underline = "doubleAccounting"
)

// UnmarshalJSON accepts true/false or one of "single", "double",
// "single accounting", "double accounting".
func (u *Underline) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*u = UnderlineNone
		if b {
			*u = UnderlineSingle
		}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("underline: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		*u = UnderlineNone
	case "single":
		*u = UnderlineSingle
	case "double":
		*u = UnderlineDouble
	case "single accounting", "singleaccounting":
		*u = UnderlineSingleAccounting
	case "double accounting", "doubleaccounting":
		*u = UnderlineDoubleAccounting
	default:
		return fmt.Errorf("underline: unknown style %q", s)
	}
	return nil
}

// NumberFormat is either a custom format code or a builtin format id.
type NumberFormat struct {
	Code    string
	ID      int
	Builtin bool
}

// IsZero reports whether no number format was given.
func (n NumberFormat) IsZero() bool { return n.Code == "" && !n.Builtin }

// UnmarshalJSON accepts a format code string or a builtin id number.
func (n *NumberFormat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = NumberFormat{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		*n = NumberFormat{}
		return json.Unmarshal(data, &n.Code)
	}
	var id int
	if err := json.Unmarshal(data, &id); err != nil {
		return fmt.Errorf("numberFormat: %w", err)
	}
	*n = NumberFormat{ID: id, Builtin: true}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (n NumberFormat) MarshalJSON() ([]byte, error) {
	switch {
	case n.Builtin:
		return json.Marshal(n.ID)
	case n.Code != "":
		return json.Marshal(n.Code)
	}
	return []byte("null"), nil
}

// Fill describes a cell background.
type Fill struct {
	// Pattern is the fill pattern index (0 none, 1 solid, ... 18 gray0625).
	Pattern         int
	BackgroundColor string
	ForegroundColor string
}

// UnmarshalJSON accepts a color string (solid fill) or an object with
// pattern, color/backgroundColor and foregroundColor.
func (f *Fill) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		*f = Fill{Pattern: 1}
		return json.Unmarshal(data, &f.BackgroundColor)
	}
	var obj struct {
		Pattern         *int   `json:"pattern"`
		Color           string `json:"color"`
		BackgroundColor string `json:"backgroundColor"`
		ForegroundColor string `json:"foregroundColor"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("fill: %w", err)
	}
	*f = Fill{Pattern: 1, BackgroundColor: obj.BackgroundColor, ForegroundColor: obj.ForegroundColor}
	if obj.Pattern != nil {
		f.Pattern = *obj.Pattern
	}
	if obj.Color != "" {
		f.BackgroundColor = obj.Color
	}
	if f.Pattern < 0 || f.Pattern > 18 {
		return fmt.Errorf("fill: pattern %d out of range [0, 18]", f.Pattern)
	}
	return nil
}

// BorderStyle is a border line style index, 0 (none) to 13 (slantDashDot).
type BorderStyle int

var borderStyleNames = []string{
	"none", "thin", "medium", "dashed", "dotted", "thick", "double", "hair",
	"mediumDashed", "dashDot", "mediumDashDot", "dashDotDot", "mediumDashDotDot", "slantDashDot",
}

// String returns the OOXML name of the style.
func (b BorderStyle) String() string {
	if b < 0 || int(b) >= len(borderStyleNames) {
		return fmt.Sprintf("BorderStyle(%d)", int(b))
	}
	return borderStyleNames[b]
}

// UnmarshalJSON accepts an index or an OOXML style name.
func (b *BorderStyle) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		for i, name := range borderStyleNames {
			if strings.EqualFold(name, s) {
				*b = BorderStyle(i)
				return nil
			}
		}
		return fmt.Errorf("border style: unknown name %q", s)
	}
	var i int
	if err := json.Unmarshal(data, &i); err != nil {
		return fmt.Errorf("border style: %w", err)
	}
	if i < 0 || i >= len(borderStyleNames) {
		return fmt.Errorf("border style: %d out of range [0, %d]", i, len(borderStyleNames)-1)
	}
	*b = BorderStyle(i)
	return nil
}

// Border is one border line.
type Border struct {
	Style *BorderStyle
	Color string
}

// UnmarshalJSON accepts a style (index or name) or an object with style and color.
func (b *Border) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] != '{' {
		var s BorderStyle
		if err := s.UnmarshalJSON(data); err != nil {
			return err
		}
		*b = Border{Style: &s}
		return nil
	}
	var obj struct {
		Style *BorderStyle `json:"style"`
		Color string       `json:"color"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("border: %w", err)
	}
	*b = Border{Style: obj.Style, Color: obj.Color}
	return nil
}

// Borders describes the four cell borders. The embedded Border applies to all
// sides; Top, Left, Right and Bottom override it per side.
type Borders struct {
	Border
	Top, Left, Right, Bottom *Border
}

// UnmarshalJSON accepts a style for all sides or an object.
func (b *Borders) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] != '{' {
		*b = Borders{}
		return b.Border.UnmarshalJSON(data)
	}
	var obj struct {
		Style  *BorderStyle `json:"style"`
		Color  string       `json:"color"`
		Top    *Border      `json:"top"`
		Left   *Border      `json:"left"`
		Right  *Border      `json:"right"`
		Bottom *Border      `json:"bottom"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("borders: %w", err)
	}
	*b = Borders{
		Border: Border{Style: obj.Style, Color: obj.Color},
		Top:    obj.Top, Left: obj.Left, Right: obj.Right, Bottom: obj.Bottom,
	}
	return nil
}

// Side is a border side name.
type Side string

const (
	SideTop    Side = "top"
	SideLeft   Side = "left"
	SideRight  Side = "right"
	SideBottom Side = "bottom"
)

// Sides lists the border sides in the order they are applied.
var Sides = []Side{SideTop, SideLeft, SideRight, SideBottom}

// Resolve returns the effective style and color of one side.
// ok is false when the side has no border.
func (b Borders) Resolve(side Side) (style BorderStyle, color string, ok bool) {
	if b.Style != nil {
		style, ok = *b.Style, true
	}
	color = b.Color
	var over *Border
	switch side {
	case SideTop:
		over = b.Top
	case SideLeft:
		over = b.Left
	case SideRight:
		over = b.Right
	case SideBottom:
		over = b.Bottom
	}
	if over != nil {
		if over.Style != nil {
			style, ok = *over.Style, true
		}
		if over.Color != "" {
			color = over.Color
		}
	}
	if style == 0 {
		ok = false
	}
	return style, color, ok
}

// FormatRef refers to a registered format by name or carries an inline
// anonymous format. The zero value means no format.
type FormatRef struct {
	Name   string
	Inline *Format
}

// IsZero reports whether no format was given.
func (r FormatRef) IsZero() bool { return r.Name == "" && r.Inline == nil }

// UnmarshalJSON accepts null, a format name or a format object.
func (r *FormatRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*r = FormatRef{}
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		return nil
	case data[0] == '"':
		return json.Unmarshal(data, &r.Name)
	case data[0] == '{':
		r.Inline = new(Format)
		return json.Unmarshal(data, r.Inline)
	}
	return fmt.Errorf("format: expected a name or an object, got %s", data)
}
