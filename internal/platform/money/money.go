// Package money tiene el redondeo de importes que comparten billing y carts.
package money

import (
	"strconv"
	"strings"
)

// Round2 redondea a 2 decimales half-up sobre la representación decimal más corta
// del float (2.675 => 2.68, -2.675 => -2.68).
func Round2(v float64) float64 {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	dot := strings.IndexByte(s, '.')
	if dot < 0 || len(s)-dot-1 <= 2 {
		return v
	}

	truncated, _ := strconv.ParseFloat(s[:dot+3], 64)
	if s[dot+3] >= '5' {
		if v < 0 {
			truncated -= 0.01
		} else {
			truncated += 0.01
		}
	}
	out, _ := strconv.ParseFloat(strconv.FormatFloat(truncated, 'f', 2, 64), 64)
	return out
}
