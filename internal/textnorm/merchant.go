package textnorm

import (
	"regexp"
	"strings"
	"unicode"
)

// MerchantKeyFallback is returned when nothing identifying survives
// tokenization.
const MerchantKeyFallback = "transacao"

const merchantKeyMaxTokens = 6

// installmentSuffix matches trailing installment markers like "12/24".
var installmentSuffix = regexp.MustCompile(`\s+\d{1,2}/\d{1,2}$`)

// MerchantKey reduces free text to a short lowercase token string suitable
// for merchant-level matching. Pure digits, single characters and jargon
// tokens are dropped; at most the first six surviving tokens are kept.
func (n *Normalizer) MerchantKey(s string) string {
	s = n.MatchKey(s)
	s = installmentSuffix.ReplaceAllString(s, "")

	var kept []string

	for _, tok := range strings.Fields(s) {
		if len(kept) == merchantKeyMaxTokens {
			break
		}

		if len([]rune(tok)) <= 1 || isDigits(tok) {
			continue
		}

		if _, stop := n.stopWords[tok]; stop {
			continue
		}

		kept = append(kept, strings.ToLower(tok))
	}

	if len(kept) == 0 {
		return MerchantKeyFallback
	}

	return strings.Join(kept, " ")
}

func isDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}

	return true
}
