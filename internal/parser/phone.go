package parser

import "strings"

// NormalizePhone reduces a raw phone capture to the local Iraqi form:
// digits only, 964 country code rewritten to a leading 0, and a bare
// 10-digit mobile starting with 7 prefixed with 0.
func NormalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	if strings.HasPrefix(digits, "964") && len(digits) > 3 {
		digits = "0" + digits[3:]
	}
	if len(digits) == 10 && digits[0] == '7' {
		digits = "0" + digits
	}
	return digits
}
