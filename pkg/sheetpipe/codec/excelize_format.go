package codec

import (
	"fmt"

	"github.com/ukaji3/sheetpipe/pkg/sheetpipe/models"
	"github.com/xuri/excelize/v2"
)

// excelizeStyle maps a format to an excelize style. dateFormat is applied as
// the number format when it is set and the format has none.
func excelizeStyle(f models.Format, dateFormat string) (*excelize.Style, error) {
	style := &excelize.Style{}

	font, err := excelizeFont(f)
	if err != nil {
		return nil, err
	}
	style.Font = font

	switch {
	case f.NumberFormat.Builtin:
		style.NumFmt = f.NumberFormat.ID
	case f.NumberFormat.Code != "":
		code := f.NumberFormat.Code
		style.CustomNumFmt = &code
	case dateFormat != "":
		code := dateFormat
		style.CustomNumFmt = &code
	}

	if f.Locked != nil || f.Hidden {
		locked := true
		if f.Locked != nil {
			locked = *f.Locked
		}
		style.Protection = &excelize.Protection{Locked: locked, Hidden: f.Hidden}
	}

	align, err := excelizeAlignment(f)
	if err != nil {
		return nil, err
	}
	style.Alignment = align

	if f.Fill != nil && f.Fill.Pattern > 0 {
		fill, err := excelizeFill(*f.Fill)
		if err != nil {
			return nil, err
		}
		style.Fill = fill
	}

	if f.Borders != nil {
		for _, side := range models.Sides {
			bs, color, ok := f.Borders.Resolve(side)
			if !ok {
				continue
			}
			b := excelize.Border{Type: string(side), Style: int(bs)}
			if color != "" {
				if b.Color, err = normalizeColor(color); err != nil {
					return nil, fmt.Errorf("border %s: %w", side, err)
				}
			}
			style.Border = append(style.Border, b)
		}
	}
	return style, nil
}

func excelizeFont(f models.Format) (*excelize.Font, error) {
	color := f.FontColor()
	if f.Font == nil && color == "" {
		return nil, nil
	}
	font := &excelize.Font{}
	if f.Font != nil {
		font.Family = f.Font.Name
		font.Size = f.Font.Size
		font.Bold = f.Font.Bold
		font.Italic = f.Font.Italic
		font.Underline = string(f.Font.Underline)
		font.Strike = f.Font.Strikeout
		switch {
		case f.Font.Superscript:
			font.VertAlign = "superscript"
		case f.Font.Subscript:
			font.VertAlign = "subscript"
		}
	}
	if color != "" {
		rgb, err := normalizeColor(color)
		if err != nil {
			return nil, fmt.Errorf("font: %w", err)
		}
		font.Color = rgb
	}
	return font, nil
}

func excelizeAlignment(f models.Format) (*excelize.Alignment, error) {
	words := f.Alignments()
	if len(words) == 0 && !f.TextWrap && f.Rotation == nil && f.Indent == 0 && !f.ShrinkToFit && !f.JustifyLastText {
		return nil, nil
	}
	a, err := parseAlignment(words)
	if err != nil {
		return nil, err
	}
	align := &excelize.Alignment{
		Horizontal:      a.horizontal,
		Vertical:        a.vertical,
		WrapText:        f.TextWrap,
		Indent:          f.Indent,
		ShrinkToFit:     f.ShrinkToFit,
		JustifyLastLine: f.JustifyLastText,
	}
	if f.Rotation != nil {
		if align.TextRotation, err = textRotation(*f.Rotation); err != nil {
			return nil, err
		}
	}
	return align, nil
}

func excelizeFill(fill models.Fill) (excelize.Fill, error) {
	// excelize only takes the pattern (foreground) color. Without one the
	// background color is painted instead.
	color := fill.ForegroundColor
	if color == "" {
		color = fill.BackgroundColor
	}
	out := excelize.Fill{Type: "pattern", Pattern: fill.Pattern}
	if color != "" {
		rgb, err := normalizeColor(color)
		if err != nil {
			return excelize.Fill{}, fmt.Errorf("fill: %w", err)
		}
		out.Color = []string{rgb}
	}
	return out, nil
}
