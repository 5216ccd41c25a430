// Package category assigns categories to canonical rows at commit time by
// evaluating, in order, user-defined rules, built-in heuristic rules and a
// narrow fee fallback.
package category

import (
	"time"

	"github.com/google/uuid"
)

// MatchType selects how a user rule's pattern is evaluated.
type MatchType string

const (
	MatchContains MatchType = "contains"
	MatchRegex    MatchType = "regex"
)

// Rule is a user-defined classification rule. Rules are read-only to this
// core; creation and editing happen elsewhere.
type Rule struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	Name       string
	Priority   int // lower evaluates first
	Enabled    bool
	MatchType  MatchType
	Pattern    string
	AccountID  *uuid.UUID // optional scope
	MinAmount  *int64     // cents, optional
	MaxAmount  *int64     // cents, optional
	CategoryID uuid.UUID
	CreatedAt  time.Time
}

// Category is the minimal category shape this core reads: builtin rules
// resolve their alias sets against the user's category names.
type Category struct {
	ID     uuid.UUID
	UserID uuid.UUID
	Name   string
}

// Source reports which stage of the chain produced a result.
type Source string

const (
	SourceUserRule    Source = "user_rule"
	SourceBuiltinRule Source = "builtin_rule"
	SourceFallback    Source = "fallback"
	SourceNone        Source = "none"
)

// Result is the outcome of categorizing one row. CategoryID is nil when no
// stage fired; Source and RuleName always say what happened, for
// traceability.
type Result struct {
	CategoryID *uuid.UUID
	Source     Source
	RuleID     *uuid.UUID // set for user rules
	RuleName   string
}

// Input is the normalized view of a row the engine matches against.
type Input struct {
	DescriptionNormalized  string
	KindNormalized         string
	CounterpartyNormalized string
	AccountID              uuid.UUID
	AmountCents            int64
}
