package transfer_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/contaflow/contaflow/internal/ledger"
	"github.com/contaflow/contaflow/internal/textnorm"
	"github.com/contaflow/contaflow/internal/transfer"
)

var (
	userID    = uuid.MustParse("11111111-0000-0000-0000-000000000001")
	checking  = uuid.MustParse("22222222-0000-0000-0000-000000000001")
	savings   = uuid.MustParse("22222222-0000-0000-0000-000000000002")
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func entry(account uuid.UUID, dir ledger.Direction, cents int64, day int, merchant string) *ledger.Entry {
	acc := account

	return &ledger.Entry{
		ID:                 uuid.New(),
		UserID:             userID,
		PostedDate:         date(2026, 3, day),
		AmountCents:        cents,
		Direction:          dir,
		Type:               ledger.TypeExpense,
		AccountID:          &acc,
		MerchantNormalized: merchant,
	}
}

// sorted by posted date, as the repository contract guarantees.
func repoReturning(ctrl *gomock.Controller, entries []*ledger.Entry, statuses map[transfer.PairKey]transfer.Status) (*transfer.MockRepository, *[]*transfer.Suggestion) {
	var upserts []*transfer.Suggestion

	repo := transfer.NewMockRepository(ctrl)
	repo.EXPECT().
		UnmatchedEntries(gomock.Any(), userID, gomock.Nil(), gomock.Nil()).
		Return(entries, nil)
	repo.EXPECT().
		PairStatuses(gomock.Any(), userID).
		Return(statuses, nil)
	repo.EXPECT().
		UpsertSuggestion(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, s *transfer.Suggestion) error {
			s.ID = uuid.New()
			upserts = append(upserts, s)
			return nil
		}).
		AnyTimes()

	return repo, &upserts
}

func TestService_Run_SuggestsMatchingPair(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	out := entry(checking, ledger.DirectionOut, 25000, 10, "transferencia poupanca")
	in := entry(savings, ledger.DirectionIn, 25000, 11, "transferencia poupanca")

	repo, upserts := repoReturning(ctrl, []*ledger.Entry{out, in}, map[transfer.PairKey]transfer.Status{})
	svc := transfer.NewService(repo, transfer.DefaultPolicy())

	created, err := svc.Run(context.Background(), userID, nil, nil)
	require.NoError(t, err)
	require.Len(t, created, 1)
	require.Len(t, *upserts, 1)

	s := created[0]
	assert.Equal(t, out.ID, s.OutEntryID)
	assert.Equal(t, in.ID, s.InEntryID)
	assert.Equal(t, transfer.StatusPending, s.Status)

	// One day apart in a three-day window, plus the description bonus,
	// capped... 1 - 1/3 + 0.2.
	assert.InDelta(t, 0.8667, s.Score, 0.001)
}

func TestService_Run_SameDayScoreCapped(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	out := entry(checking, ledger.DirectionOut, 25000, 10, "transferencia poupanca")
	in := entry(savings, ledger.DirectionIn, 25000, 10, "transferencia poupanca")

	repo, _ := repoReturning(ctrl, []*ledger.Entry{out, in}, map[transfer.PairKey]transfer.Status{})
	svc := transfer.NewService(repo, transfer.DefaultPolicy())

	created, err := svc.Run(context.Background(), userID, nil, nil)
	require.NoError(t, err)
	require.Len(t, created, 1)

	// 1.0 base + bonus stays capped at 1.0.
	assert.Equal(t, 1.0, created[0].Score)
}

func TestService_Run_AmountMustMatchExactly(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	out := entry(checking, ledger.DirectionOut, 25000, 10, "transferencia")
	in := entry(savings, ledger.DirectionIn, 25001, 10, "transferencia")

	repo, upserts := repoReturning(ctrl, []*ledger.Entry{out, in}, map[transfer.PairKey]transfer.Status{})
	svc := transfer.NewService(repo, transfer.DefaultPolicy())

	created, err := svc.Run(context.Background(), userID, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, created)
	assert.Empty(t, *upserts)
}

func TestService_Run_SameAccountNeverPairs(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	out := entry(checking, ledger.DirectionOut, 25000, 10, "x")
	in := entry(checking, ledger.DirectionIn, 25000, 10, "x")

	repo, upserts := repoReturning(ctrl, []*ledger.Entry{out, in}, map[transfer.PairKey]transfer.Status{})
	svc := transfer.NewService(repo, transfer.DefaultPolicy())

	created, err := svc.Run(context.Background(), userID, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, created)
	assert.Empty(t, *upserts)
}

func TestService_Run_OutsideWindowSkipped(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	out := entry(checking, ledger.DirectionOut, 25000, 10, "transferencia")
	in := entry(savings, ledger.DirectionIn, 25000, 14, "transferencia")

	repo, upserts := repoReturning(ctrl, []*ledger.Entry{out, in}, map[transfer.PairKey]transfer.Status{})
	svc := transfer.NewService(repo, transfer.DefaultPolicy())

	created, err := svc.Run(context.Background(), userID, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, created)
	assert.Empty(t, *upserts)
}

func TestService_Run_FallbackMerchantKeyEarnsNoBonus(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// Both legs collapsed to the fallback merchant key. The keys are equal
	// but carry no identifying text, so no description bonus applies.
	out := entry(checking, ledger.DirectionOut, 25000, 10, textnorm.MerchantKeyFallback)
	in := entry(savings, ledger.DirectionIn, 25000, 11, textnorm.MerchantKeyFallback)

	repo, upserts := repoReturning(ctrl, []*ledger.Entry{out, in}, map[transfer.PairKey]transfer.Status{})
	svc := transfer.NewService(repo, transfer.DefaultPolicy())

	created, err := svc.Run(context.Background(), userID, nil, nil)
	require.NoError(t, err)
	require.Len(t, created, 1)
	require.Len(t, *upserts, 1)

	assert.InDelta(t, 0.6667, created[0].Score, 0.001)
}

func TestService_Run_BelowThresholdSkipped(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// Three days apart with no description affinity: base score is zero.
	out := entry(checking, ledger.DirectionOut, 25000, 10, "loja abc")
	in := entry(savings, ledger.DirectionIn, 25000, 13, "outra coisa xyz")

	repo, upserts := repoReturning(ctrl, []*ledger.Entry{out, in}, map[transfer.PairKey]transfer.Status{})
	svc := transfer.NewService(repo, transfer.DefaultPolicy())

	created, err := svc.Run(context.Background(), userID, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, created)
	assert.Empty(t, *upserts)
}

func TestService_Run_RejectedPairStaysRejected(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	out := entry(checking, ledger.DirectionOut, 25000, 10, "transferencia")
	in := entry(savings, ledger.DirectionIn, 25000, 10, "transferencia")

	statuses := map[transfer.PairKey]transfer.Status{
		{OutEntryID: out.ID, InEntryID: in.ID}: transfer.StatusRejected,
	}

	repo, upserts := repoReturning(ctrl, []*ledger.Entry{out, in}, statuses)
	svc := transfer.NewService(repo, transfer.DefaultPolicy())

	// The matcher re-scores the pair but never resurrects it.
	created, err := svc.Run(context.Background(), userID, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, created)
	assert.Empty(t, *upserts)
}

func TestService_Run_PendingPairRefreshed(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	out := entry(checking, ledger.DirectionOut, 25000, 10, "transferencia")
	in := entry(savings, ledger.DirectionIn, 25000, 10, "transferencia")

	statuses := map[transfer.PairKey]transfer.Status{
		{OutEntryID: out.ID, InEntryID: in.ID}: transfer.StatusPending,
	}

	repo, upserts := repoReturning(ctrl, []*ledger.Entry{out, in}, statuses)
	svc := transfer.NewService(repo, transfer.DefaultPolicy())

	created, err := svc.Run(context.Background(), userID, nil, nil)
	require.NoError(t, err)
	assert.Len(t, created, 1)
	assert.Len(t, *upserts, 1)
}

func TestService_Run_SlidingWindowPairsEachOut(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// Two independent transfers a month apart; the window pointer must
	// advance past the first IN instead of rescanning from the start.
	out1 := entry(checking, ledger.DirectionOut, 10000, 1, "primeira")
	in1 := entry(savings, ledger.DirectionIn, 10000, 2, "primeira")
	out2 := entry(checking, ledger.DirectionOut, 20000, 28, "segunda")
	in2 := entry(savings, ledger.DirectionIn, 20000, 28, "segunda")

	entries := []*ledger.Entry{out1, in1, out2, in2}

	repo, upserts := repoReturning(ctrl, entries, map[transfer.PairKey]transfer.Status{})
	svc := transfer.NewService(repo, transfer.DefaultPolicy())

	created, err := svc.Run(context.Background(), userID, nil, nil)
	require.NoError(t, err)
	require.Len(t, created, 2)
	require.Len(t, *upserts, 2)

	assert.Equal(t, in1.ID, created[0].InEntryID)
	assert.Equal(t, in2.ID, created[1].InEntryID)
}

func TestService_Run_TransfersExcludedUpstream(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// The repository returns nothing when everything is matched already.
	repo := transfer.NewMockRepository(ctrl)
	repo.EXPECT().
		UnmatchedEntries(gomock.Any(), userID, gomock.Nil(), gomock.Nil()).
		Return(nil, nil)
	repo.EXPECT().
		PairStatuses(gomock.Any(), userID).
		Return(map[transfer.PairKey]transfer.Status{}, nil)

	svc := transfer.NewService(repo, transfer.DefaultPolicy())

	created, err := svc.Run(context.Background(), userID, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, created)
}
