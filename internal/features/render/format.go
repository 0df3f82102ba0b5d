package render

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	ContentTypeExcel = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypePDF   = "application/pdf"
)

// FormatValue renders a row value as text. Dates without a time part print as dates.
func FormatValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case time.Time:
		val = val.UTC()
		if val.Hour() == 0 && val.Minute() == 0 && val.Second() == 0 && val.Nanosecond() == 0 {
			return val.Format("2006-01-02")
		}
		return val.Format(time.RFC3339)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	default:
		return fmt.Sprint(val)
	}
}

// RowLine is the one-line text form of a row: "1. name: Ada | department: Engineering".
func RowLine(index int, row Row) string {
	parts := make([]string, len(row))
	for i, c := range row {
		parts[i] = c.Key + ": " + FormatValue(c.Value)
	}
	return fmt.Sprintf("%d. %s", index, strings.Join(parts, " | "))
}

// WrapText word-wraps text to at most width characters per line. Longer words are split.
func WrapText(text string, width int) []string {
	var lines []string
	var current []rune
	for _, word := range strings.Fields(text) {
		w := []rune(word)
		for len(w) > width {
			if len(current) > 0 {
				lines = append(lines, string(current))
				current = nil
			}
			lines = append(lines, string(w[:width]))
			w = w[width:]
		}
		if len(w) == 0 {
			continue
		}
		switch {
		case len(current) == 0:
			current = append(current, w...)
		case len(current)+1+len(w) <= width:
			current = append(current, ' ')
			current = append(current, w...)
		default:
			lines = append(lines, string(current))
			current = append([]rune{}, w...)
		}
	}
	if len(current) > 0 {
		lines = append(lines, string(current))
	}
	return lines
}
