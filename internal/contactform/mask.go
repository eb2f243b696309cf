package contactform

import (
	"strings"
	"unicode/utf8"
)

// FormatPhone keeps the first ten digits of value and formats them as (123) 456-7890,
// producing partial forms while the visitor is still typing.
func FormatPhone(value string) string {
	var b strings.Builder
	for _, r := range value {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	switch n := len(digits); {
	case n == 0:
		return ""
	case n <= 3:
		return "(" + digits
	case n <= 6:
		return "(" + digits[:3] + ") " + digits[3:]
	default:
		end := min(n, 10)
		return "(" + digits[:3] + ") " + digits[3:6] + "-" + digits[6:end]
	}
}

func charCount(s string) int {
	return utf8.RuneCountInString(s)
}
