package transfer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"
	"github.com/google/uuid"

	"github.com/contaflow/contaflow/internal/ledger"
	"github.com/contaflow/contaflow/internal/textnorm"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=transfer
type Repository interface {
	// UnmatchedEntries returns the user's entries in range that are not
	// transfers and not referenced by a non-rejected suggestion, sorted by
	// posted date ascending.
	UnmatchedEntries(ctx context.Context, userID uuid.UUID, from, to *time.Time) ([]*ledger.Entry, error)
	// PairStatuses returns the status of every existing suggestion pair for
	// the user, keyed by (outEntryID, inEntryID).
	PairStatuses(ctx context.Context, userID uuid.UUID) (map[PairKey]Status, error)
	// UpsertSuggestion creates the suggestion or refreshes the score of an
	// existing pending one. Terminal pairs are never touched.
	UpsertSuggestion(ctx context.Context, s *Suggestion) error
}

type PairKey struct {
	OutEntryID uuid.UUID
	InEntryID  uuid.UUID
}

// Policy holds the matcher tunables. Defaults come from config; tests pin
// their own.
type Policy struct {
	WindowDays int
	MinScore   float64
	DescBonus  float64
}

func DefaultPolicy() Policy {
	return Policy{WindowDays: 3, MinScore: 0.3, DescBonus: 0.2}
}

type Service struct {
	repo   Repository
	policy Policy
}

func NewService(repo Repository, policy Policy) *Service {
	return &Service{repo: repo, policy: policy}
}

// Run scans the user's unmatched entries for candidate transfer pairs and
// persists suggestions for the ones that score above the threshold. Pairs
// already confirmed or rejected are skipped: rejection is permanent
// suppression for that exact pair.
func (s *Service) Run(ctx context.Context, userID uuid.UUID, from, to *time.Time) ([]*Suggestion, error) {
	entries, err := s.repo.UnmatchedEntries(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("fetch unmatched entries: %w", err)
	}

	var outs, ins []*ledger.Entry

	for _, e := range entries {
		switch e.Direction {
		case ledger.DirectionOut:
			outs = append(outs, e)
		case ledger.DirectionIn:
			ins = append(ins, e)
		}
	}

	existing, err := s.repo.PairStatuses(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch pair statuses: %w", err)
	}

	var created []*Suggestion

	// Both streams are date-sorted; the window start pointer only moves
	// forward, so candidate generation is linear in entries plus pairs
	// inside the window rather than a full cross-join.
	start := 0

	for _, out := range outs {
		for start < len(ins) && dayDiff(ins[start].PostedDate, out.PostedDate) > s.policy.WindowDays && ins[start].PostedDate.Before(out.PostedDate) {
			start++
		}

		for j := start; j < len(ins); j++ {
			in := ins[j]
			if in.PostedDate.After(out.PostedDate.AddDate(0, 0, s.policy.WindowDays)) {
				break
			}

			score, ok := s.scorePair(out, in)
			if !ok {
				continue
			}

			key := PairKey{OutEntryID: out.ID, InEntryID: in.ID}
			if status, seen := existing[key]; seen && status != StatusPending {
				continue
			}

			suggestion := &Suggestion{
				UserID:     userID,
				OutEntryID: out.ID,
				InEntryID:  in.ID,
				Score:      score,
				Status:     StatusPending,
			}

			if err := s.repo.UpsertSuggestion(ctx, suggestion); err != nil {
				return nil, fmt.Errorf("persist suggestion: %w", err)
			}

			existing[key] = StatusPending

			created = append(created, suggestion)
		}
	}

	return created, nil
}

// scorePair rates an OUT/IN candidate. Transfers must match to the cent and
// cross two different accounts of the same user; the score decays linearly
// with the day gap and gains a fixed bonus when the descriptions agree.
func (s *Service) scorePair(out, in *ledger.Entry) (float64, bool) {
	if out.AmountCents != in.AmountCents {
		return 0, false
	}

	if out.AccountRef() == in.AccountRef() {
		return 0, false
	}

	diff := dayDiff(out.PostedDate, in.PostedDate)
	if diff > s.policy.WindowDays {
		return 0, false
	}

	score := 1 - float64(diff)/float64(s.policy.WindowDays)
	if score < 0 {
		score = 0
	}

	if descriptionAffinity(out, in) {
		score += s.policy.DescBonus
	}

	if score > 1 {
		score = 1
	}

	if score < s.policy.MinScore {
		return 0, false
	}

	return score, true
}

// descriptionAffinity reports whether the two legs look like the same
// movement textually: shared merchant tokens, or merchant keys within a
// small edit distance of each other.
func descriptionAffinity(out, in *ledger.Entry) bool {
	a, b := out.MerchantNormalized, in.MerchantNormalized
	if a == "" || b == "" {
		return false
	}

	// The fallback key carries no identifying text, so two fallback legs
	// agreeing on it is not evidence.
	if a == textnorm.MerchantKeyFallback || b == textnorm.MerchantKeyFallback {
		return false
	}

	if tokensOverlap(a, b) {
		return true
	}

	return levenshtein.ComputeDistance(a, b) <= 3
}

func tokensOverlap(a, b string) bool {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(a) {
		set[tok] = struct{}{}
	}

	for _, tok := range strings.Fields(b) {
		if _, ok := set[tok]; ok {
			return true
		}
	}

	return false
}

// dayDiff is the absolute difference in calendar days, UTC.
func dayDiff(a, b time.Time) int {
	au := a.UTC().Truncate(24 * time.Hour)
	bu := b.UTC().Truncate(24 * time.Hour)

	diff := int(au.Sub(bu).Hours() / 24)
	if diff < 0 {
		diff = -diff
	}

	return diff
}
