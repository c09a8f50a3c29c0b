package parser

import (
	"strings"
	"time"
)

// isDateNumFmt reports whether a builtin number format id is a date or time.
func isDateNumFmt(id int) bool {
	switch {
	case id >= 14 && id <= 22,
		id >= 27 && id <= 36,
		id >= 45 && id <= 47,
		id >= 50 && id <= 58:
		return true
	}
	return false
}

// isDateFormatCode reports whether a custom number format code renders a
// date or time. Quoted literals, escaped characters and bracketed sections
// such as colors or locales are ignored; elapsed time sections ([h], [mm])
// count as time.
func isDateFormatCode(code string) bool {
	// Only the first (positive) section decides.
	var section strings.Builder
	inQuote, inBracket := false, false
	for i := 0; i < len(code); i++ {
		ch := code[i]
		switch {
		case inQuote:
			if ch == '"' {
				inQuote = false
			}
		case inBracket:
			if ch == ']' {
				inBracket = false
			}
			if ch == 'h' || ch == 'H' || ch == 'm' || ch == 'M' || ch == 's' || ch == 'S' {
				section.WriteByte(ch)
			}
		case ch == '"':
			inQuote = true
		case ch == '[':
			inBracket = true
			if i+1 < len(code) && code[i+1] == '$' {
				// locale or currency: skip without contributing letters
				j := strings.IndexByte(code[i:], ']')
				if j < 0 {
					i = len(code)
				} else {
					i += j
				}
				inBracket = false
			}
		case ch == '\\' || ch == '_' || ch == '*':
			i++
		case ch == ';':
			i = len(code)
		default:
			section.WriteByte(ch)
		}
	}
	s := strings.ToLower(section.String())
	if strings.ContainsAny(s, "0#?") && !strings.ContainsAny(s, "ydhs") {
		return false
	}
	return strings.ContainsAny(s, "ydhs") || strings.Contains(s, "m")
}

// roundToSecond drops sub-second noise left by the serial date conversion.
func roundToSecond(t time.Time) time.Time {
	return t.Round(time.Second)
}
