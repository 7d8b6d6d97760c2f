package parser

import "strings"

var currencyWords = []string{"دينار عراقي", "دينار", "د.ع", "الف", "ألف", "iqd", "IQD"}

// NormalizePrice strips currency words and separators from a raw price
// capture and reformats the amount with comma thousands separators.
// Input that yields no digits is returned trimmed but otherwise untouched.
func NormalizePrice(raw string) string {
	s := strings.TrimSpace(raw)
	for _, w := range currencyWords {
		s = strings.ReplaceAll(s, w, "")
	}
	s = strings.TrimSpace(s)

	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := strings.TrimLeft(b.String(), "0")
	if digits == "" {
		if b.Len() > 0 {
			return "0"
		}
		return s
	}
	return groupThousands(digits)
}

func groupThousands(digits string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}
	var b strings.Builder
	rem := n % 3
	if rem > 0 {
		b.WriteString(digits[:rem])
	}
	for i := rem; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
