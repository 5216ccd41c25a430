package category

import (
	"regexp"
	"sort"
	"strings"
)

// Engine evaluates the rule chain. The builtin list and fee table are fixed
// at construction so tests can substitute alternates.
type Engine struct {
	builtins   []BuiltinRule
	feePattern *regexp.Regexp
	feeAliases []string
}

func NewEngine() *Engine {
	return &Engine{
		builtins:   defaultBuiltins,
		feePattern: feePattern,
		feeAliases: feeAliases,
	}
}

func NewEngineWith(builtins []BuiltinRule, fee *regexp.Regexp, aliases []string) *Engine {
	return &Engine{builtins: builtins, feePattern: fee, feeAliases: aliases}
}

// Categorize runs the chain: user rules by ascending priority, then builtin
// rules, then the fee fallback. First match wins. A Result with SourceNone
// means no stage fired, which is distinct from a rule matching a nil
// category.
func (e *Engine) Categorize(in Input, rules []Rule, categories []Category) Result {
	combined := combinedText(in)

	if res, ok := e.applyUserRules(in, combined, rules); ok {
		return res
	}

	if res, ok := e.applyBuiltins(in, combined, categories); ok {
		return res
	}

	if e.feePattern.MatchString(combined) {
		if cat := resolveAlias(categories, e.feeAliases); cat != nil {
			id := cat.ID
			return Result{CategoryID: &id, Source: SourceFallback, RuleName: "fees"}
		}
	}

	return Result{Source: SourceNone}
}

func (e *Engine) applyUserRules(in Input, combined string, rules []Rule) (Result, bool) {
	ordered := make([]Rule, 0, len(rules))

	for _, r := range rules {
		if r.Enabled {
			ordered = append(ordered, r)
		}
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority < ordered[j].Priority
	})

	for _, r := range ordered {
		if !ruleMatches(r, in, combined) {
			continue
		}

		id := r.CategoryID
		ruleID := r.ID

		return Result{
			CategoryID: &id,
			Source:     SourceUserRule,
			RuleID:     &ruleID,
			RuleName:   r.Name,
		}, true
	}

	return Result{}, false
}

func ruleMatches(r Rule, in Input, combined string) bool {
	if r.AccountID != nil && *r.AccountID != in.AccountID {
		return false
	}

	if r.MinAmount != nil && in.AmountCents < *r.MinAmount {
		return false
	}

	if r.MaxAmount != nil && in.AmountCents > *r.MaxAmount {
		return false
	}

	switch r.MatchType {
	case MatchContains:
		return strings.Contains(combined, strings.ToUpper(r.Pattern))
	case MatchRegex:
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return false
		}

		return re.MatchString(combined)
	}

	return false
}

func (e *Engine) applyBuiltins(in Input, combined string, categories []Category) (Result, bool) {
	// Builtins look at kind and counterparty first; the description is the
	// haystack of last resort.
	haystack := strings.TrimSpace(in.KindNormalized + " " + in.CounterpartyNormalized)
	if haystack == "" {
		haystack = combined
	}

	for _, b := range e.builtins {
		if !b.Pattern.MatchString(haystack) && !b.Pattern.MatchString(combined) {
			continue
		}

		if b.PersonToPerson && !looksLikePersonName(in.CounterpartyNormalized) {
			continue
		}

		cat := resolveAlias(categories, b.Aliases)
		if cat == nil {
			continue
		}

		id := cat.ID

		return Result{CategoryID: &id, Source: SourceBuiltinRule, RuleName: b.Name}, true
	}

	return Result{}, false
}

func combinedText(in Input) string {
	parts := make([]string, 0, 3)

	for _, s := range []string{in.DescriptionNormalized, in.KindNormalized, in.CounterpartyNormalized} {
		if s != "" {
			parts = append(parts, s)
		}
	}

	return strings.Join(parts, " ")
}
