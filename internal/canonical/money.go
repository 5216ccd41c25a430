package canonical

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseMoney parses locale-formatted money text into a signed decimal.
// Ambiguous thousands/decimal separators are resolved by position: whichever
// of ',' and '.' appears rightmost is the decimal separator, the other is a
// grouping character. Formats handled: "1.234,56", "1,234.56", "-588,74",
// "R$ 2.500,00", "(45,00)".
func ParseMoney(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}

	negative := false

	// Accounting-style parentheses mean negative.
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	var sb strings.Builder

	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == ',', r == '.':
			sb.WriteRune(r)
		case r == '-':
			negative = true
		}
	}

	clean := sb.String()
	if clean == "" {
		return decimal.Zero, ErrInvalidAmount
	}

	lastComma := strings.LastIndexByte(clean, ',')
	lastDot := strings.LastIndexByte(clean, '.')

	switch {
	case lastComma > lastDot:
		// European: '.' groups, ',' is the decimal mark.
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.Replace(clean, ",", ".", 1)
	default:
		// Anglo or unambiguous: ',' groups.
		clean = strings.ReplaceAll(clean, ",", "")
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}

	if negative {
		d = d.Neg()
	}

	return d, nil
}
