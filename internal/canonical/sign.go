package canonical

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Sign is the resolved direction of a statement line.
type Sign int

const (
	SignUnknown Sign = iota
	SignDebit
	SignCredit
)

var (
	debitKeywords = []string{
		"DEBITO", "COMPRA", "SAIDA", "SAQUE", "PAGAMENTO", "TARIFA",
		"ENVIADA", "ENVIADO",
	}
	creditKeywords = []string{
		"CREDITO", "DEPOSITO", "ENTRADA", "RECEBIDA", "RECEBIDO",
		"RENDIMENTO", "ESTORNO",
	}
)

// balanceLine matches running-balance summary phrases that statement
// extraction produces between real movements.
var balanceLine = regexp.MustCompile(
	`(?i)\bSALDO\s+(ANTERIOR|ATUAL|FINAL|INICIAL|DISPON[IÍ]VEL|DO\s+DIA|EM\s+CONTA|BLOQUEADO)\b`,
)

// IsBalanceLine reports whether the line is a balance summary rather than a
// transaction.
func IsBalanceLine(line string) bool {
	return balanceLine.MatchString(line)
}

// ResolveSign decides the direction of a statement line that carries no
// explicit +/-/C/D marker, from keywords in the (already accent-stripped,
// uppercased) line text. SignUnknown means the line gave no hint and the
// caller should keep the amount's own sign.
func ResolveSign(normalizedLine string) Sign {
	for _, kw := range debitKeywords {
		if strings.Contains(normalizedLine, kw) {
			return SignDebit
		}
	}

	for _, kw := range creditKeywords {
		if strings.Contains(normalizedLine, kw) {
			return SignCredit
		}
	}

	return SignUnknown
}

// ApplySign forces the amount onto the resolved side. SignUnknown leaves the
// amount untouched.
func ApplySign(amount decimal.Decimal, sign Sign) decimal.Decimal {
	switch sign {
	case SignDebit:
		return amount.Abs().Neg()
	case SignCredit:
		return amount.Abs()
	}

	return amount
}
