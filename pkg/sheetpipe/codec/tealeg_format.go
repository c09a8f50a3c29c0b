package codec

import (
	"fmt"

	"github.com/tealeg/xlsx/v3"
	"github.com/ukaji3/sheetpipe/pkg/sheetpipe/models"
)

// tealegFormat is a format mapped to tealeg/xlsx. Number formats live on the
// cell rather than the style.
type tealegFormat struct {
	style  *xlsx.Style
	numFmt string
}

// builtinNumFmts are the codes of the builtin number format ids.
var builtinNumFmts = map[int]string{
	0:  "general",
	1:  "0",
	2:  "0.00",
	3:  "#,##0",
	4:  "#,##0.00",
	9:  "0%",
	10: "0.00%",
	11: "0.00E+00",
	12: "# ?/?",
	13: "# ??/??",
	14: "mm-dd-yy",
	15: "d-mmm-yy",
	16: "d-mmm",
	17: "mmm-yy",
	18: "h:mm AM/PM",
	19: "h:mm:ss AM/PM",
	20: "h:mm",
	21: "h:mm:ss",
	22: "m/d/yy h:mm",
	37: "#,##0 ;(#,##0)",
	38: "#,##0 ;[Red](#,##0)",
	39: "#,##0.00;(#,##0.00)",
	40: "#,##0.00;[Red](#,##0.00)",
	45: "mm:ss",
	46: "[h]:mm:ss",
	47: "mmss.0",
	48: "##0.0E+0",
	49: "@",
}

func argb(color string) (string, error) {
	rgb, err := normalizeColor(color)
	if err != nil {
		return "", err
	}
	return "FF" + rgb, nil
}

// tealegStyle maps a format to tealeg/xlsx. ignored lists the properties the
// library cannot store.
func tealegStyle(f models.Format) (tf tealegFormat, ignored []string, err error) {
	st := xlsx.NewStyle()

	if color := f.FontColor(); f.Font != nil || color != "" {
		if f.Font != nil {
			if f.Font.Name != "" {
				st.Font.Name = f.Font.Name
			}
			if f.Font.Size > 0 {
				st.Font.Size = f.Font.Size
			}
			st.Font.Bold = f.Font.Bold
			st.Font.Italic = f.Font.Italic
			st.Font.Underline = f.Font.Underline != models.UnderlineNone
			st.Font.Strike = f.Font.Strikeout
			if f.Font.Underline != models.UnderlineNone && f.Font.Underline != models.UnderlineSingle {
				ignored = append(ignored, "underline style "+string(f.Font.Underline))
			}
			if f.Font.Superscript || f.Font.Subscript {
				ignored = append(ignored, "superscript/subscript")
			}
		}
		if color != "" {
			if st.Font.Color, err = argb(color); err != nil {
				return tf, nil, fmt.Errorf("font: %w", err)
			}
		}
		st.ApplyFont = true
	}

	switch {
	case f.NumberFormat.Builtin:
		code, ok := builtinNumFmts[f.NumberFormat.ID]
		if !ok {
			return tf, nil, fmt.Errorf("numberFormat: builtin id %d has no code", f.NumberFormat.ID)
		}
		tf.numFmt = code
	case f.NumberFormat.Code != "":
		tf.numFmt = f.NumberFormat.Code
	}

	if f.Locked != nil || f.Hidden {
		ignored = append(ignored, "protection")
	}

	words := f.Alignments()
	if len(words) > 0 || f.TextWrap || f.Rotation != nil || f.Indent > 0 || f.ShrinkToFit {
		a, err := parseAlignment(words)
		if err != nil {
			return tf, nil, err
		}
		st.Alignment.Horizontal = a.horizontal
		st.Alignment.Vertical = a.vertical
		st.Alignment.WrapText = f.TextWrap
		st.Alignment.Indent = f.Indent
		st.Alignment.ShrinkToFit = f.ShrinkToFit
		if f.Rotation != nil {
			if st.Alignment.TextRotation, err = textRotation(*f.Rotation); err != nil {
				return tf, nil, err
			}
		}
		st.ApplyAlignment = true
	}
	if f.JustifyLastText {
		ignored = append(ignored, "justifyLastText")
	}

	if fill := f.Fill; fill != nil && fill.Pattern > 0 {
		var fg, bg string
		if fill.BackgroundColor != "" {
			if bg, err = argb(fill.BackgroundColor); err != nil {
				return tf, nil, fmt.Errorf("fill: %w", err)
			}
		}
		if fill.ForegroundColor != "" {
			if fg, err = argb(fill.ForegroundColor); err != nil {
				return tf, nil, fmt.Errorf("fill: %w", err)
			}
		}
		// A solid fill paints the pattern color, which falls back to the
		// background color.
		if fill.Pattern == 1 && fg == "" {
			fg, bg = bg, ""
		}
		st.Fill = *xlsx.NewFill(patternNames[fill.Pattern], fg, bg)
		st.ApplyFill = true
	}

	if b := f.Borders; b != nil {
		for _, side := range models.Sides {
			bs, color, ok := b.Resolve(side)
			if !ok {
				continue
			}
			if color != "" {
				if color, err = argb(color); err != nil {
					return tf, nil, fmt.Errorf("border %s: %w", side, err)
				}
			}
			switch side {
			case models.SideTop:
				st.Border.Top, st.Border.TopColor = bs.String(), color
			case models.SideLeft:
				st.Border.Left, st.Border.LeftColor = bs.String(), color
			case models.SideRight:
				st.Border.Right, st.Border.RightColor = bs.String(), color
			case models.SideBottom:
				st.Border.Bottom, st.Border.BottomColor = bs.String(), color
			}
			st.ApplyBorder = true
		}
	}

	tf.style = st
	return tf, ignored, nil
}
