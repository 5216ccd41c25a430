package category

import (
	"regexp"
	"strings"
	"unicode"
)

// BuiltinRule matches normalized kind/counterparty/description text against
// a fixed pattern and resolves to whichever of the user's categories carries
// one of its aliases. A builtin rule that finds no aliased category simply
// does not fire.
type BuiltinRule struct {
	Name    string
	Pattern *regexp.Regexp
	Aliases []string
	// PersonToPerson additionally requires the counterparty to look like a
	// person's name (PIX transfers between people).
	PersonToPerson bool
}

// defaultBuiltins is the fixed heuristic list, evaluated in order after user
// rules.
var defaultBuiltins = []BuiltinRule{
	{
		Name:    "supermarket",
		Pattern: regexp.MustCompile(`SUPERMERCADO|HIPERMERCADO|MERCADO|ATACAD|CARREFOUR|PAO DE ACUCAR`),
		Aliases: []string{"mercado", "supermercado", "groceries", "alimentacao"},
	},
	{
		Name:    "food-delivery",
		Pattern: regexp.MustCompile(`IFOOD|RAPPI|UBER EATS|RESTAURANTE|LANCHONETE|PIZZARIA|PADARIA`),
		Aliases: []string{"restaurante", "delivery", "refeicao", "alimentacao", "food"},
	},
	{
		Name:    "fuel-transport",
		Pattern: regexp.MustCompile(`POSTO|COMBUSTIVEL|IPIRANGA|SHELL|PETROBRAS|UBER|99APP|ESTACIONAMENTO|PEDAGIO`),
		Aliases: []string{"transporte", "combustivel", "transport", "mobilidade"},
	},
	{
		Name:           "p2p-transfer",
		Pattern:        regexp.MustCompile(`\bPIX\b|\bTED\b|\bDOC\b`),
		Aliases:        []string{"transferencia", "pessoal", "transfer"},
		PersonToPerson: true,
	},
}

// feePattern is the fallback stage: fee/interest/fine keywords resolve to a
// fees-aliased category when one exists.
var (
	feePattern = regexp.MustCompile(`TARIFA|JUROS|MULTA|IOF|ANUIDADE|ENCARGO|\bTAXA\b`)
	feeAliases = []string{"tarifas", "taxas", "encargos", "fees"}
)

// looksLikePersonName is the name-shape heuristic used by the PIX
// person-to-person rule: two or more purely alphabetic words of at least two
// letters each.
func looksLikePersonName(s string) bool {
	words := strings.Fields(s)
	if len(words) < 2 {
		return false
	}

	for _, w := range words {
		if len([]rune(w)) < 2 {
			return false
		}

		for _, r := range w {
			if !unicode.IsLetter(r) {
				return false
			}
		}
	}

	return true
}

// resolveAlias finds a category whose name matches one of the aliases by
// case-insensitive substring in either direction.
func resolveAlias(categories []Category, aliases []string) *Category {
	for _, alias := range aliases {
		alias = strings.ToLower(alias)

		for i := range categories {
			name := strings.ToLower(categories[i].Name)
			if strings.Contains(name, alias) || strings.Contains(alias, name) {
				return &categories[i]
			}
		}
	}

	return nil
}
