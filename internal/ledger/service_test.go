package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/contaflow/contaflow/internal/canonical"
	"github.com/contaflow/contaflow/internal/category"
	"github.com/contaflow/contaflow/internal/ledger"
	"github.com/contaflow/contaflow/internal/textnorm"
)

var (
	userID    = uuid.MustParse("11111111-0000-0000-0000-000000000001")
	accountID = uuid.MustParse("22222222-0000-0000-0000-000000000001")
	ccID      = uuid.MustParse("33333333-0000-0000-0000-000000000001")
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func bankRow(amount string, day int, desc string) ledger.CommitRow {
	d, _ := decimal.NewFromString(amount)

	return ledger.CommitRow{
		Row: canonical.Row{
			PostedDate:  date(2026, 2, day),
			Amount:      d,
			Description: desc,
		},
		AccountID: &accountID,
	}
}

func ccRow(amount string, day int, desc string) ledger.CommitRow {
	r := bankRow(amount, day, desc)
	r.AccountID = nil
	r.CreditCardAccountID = &ccID

	return r
}

// passthroughCategorizer expects one batch call and returns empty results.
func passthroughCategorizer(ctrl *gomock.Controller) *ledger.MockCategorizer {
	cat := ledger.NewMockCategorizer(ctrl)
	cat.EXPECT().
		CategorizeBatch(gomock.Any(), userID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ uuid.UUID, ins []category.Input) ([]category.Result, error) {
			return make([]category.Result, len(ins)), nil
		}).
		AnyTimes()

	return cat
}

func newCommitTx(ctrl *gomock.Controller, existing map[string]struct{}) (*ledger.MockCommitTx, *[]*ledger.Entry) {
	var inserted []*ledger.Entry

	tx := ledger.NewMockCommitTx(ctrl)
	tx.EXPECT().
		ExistingFingerprints(gomock.Any(), userID, gomock.Any()).
		Return(existing, nil)
	tx.EXPECT().
		InsertEntry(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, e *ledger.Entry) error {
			e.ID = uuid.New()
			inserted = append(inserted, e)
			return nil
		}).
		AnyTimes()
	tx.EXPECT().
		InsertBatch(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, b *ledger.ImportBatch) error {
			b.ID = uuid.New()
			return nil
		})
	tx.EXPECT().Commit().Return(nil)
	tx.EXPECT().Rollback().Return(nil).AnyTimes()

	return tx, &inserted
}

func TestService_CommitImport(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := ledger.NewMockRepository(ctrl)
	norm := textnorm.Default()
	svc := ledger.NewService(repo, passthroughCategorizer(ctrl), norm, 500)

	// Three rows: one fresh, one already committed, one invalid.
	rows := []ledger.CommitRow{
		bankRow("-588.74", 10, "INSTITUTO GESTAO FINA"),
		bankRow("8608.52", 11, "TFI Wise"),
		bankRow("0", 12, "linha invalida"),
	}

	tx := ledger.NewMockCommitTx(ctrl)
	var inserted []*ledger.Entry

	tx.EXPECT().
		ExistingFingerprints(gomock.Any(), userID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ uuid.UUID, fps []string) (map[string]struct{}, error) {
			// The second row was committed before.
			require.Len(t, fps, 2)
			return map[string]struct{}{fps[1]: {}}, nil
		})
	tx.EXPECT().
		InsertEntry(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, e *ledger.Entry) error {
			e.ID = uuid.New()
			inserted = append(inserted, e)
			return nil
		})
	tx.EXPECT().
		InsertBatch(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, b *ledger.ImportBatch) error {
			assert.Equal(t, 1, b.TotalImported)
			assert.Equal(t, 1, b.TotalSkipped)
			b.ID = uuid.New()
			return nil
		})
	tx.EXPECT().Commit().Return(nil)
	tx.EXPECT().Rollback().Return(nil).AnyTimes()

	repo.EXPECT().BeginCommit(gomock.Any(), userID).Return(tx, nil)
	repo.EXPECT().FindBatchByFileHash(gomock.Any(), userID, gomock.Any()).Return(nil, nil)

	summary, err := svc.CommitImport(context.Background(), userID, ledger.CommitParams{
		SourceType: "csv",
		FileName:   "extrato.csv",
		Rows:       rows,
	})
	require.NoError(t, err)

	assert.Equal(t, 3, summary.TotalReceived)
	assert.Equal(t, 1, summary.TotalImported)
	assert.Equal(t, 1, summary.TotalSkipped)
	assert.Equal(t, 1, summary.Duplicates)
	assert.Equal(t, 1, summary.InvalidRows)
	assert.NotEqual(t, uuid.Nil, summary.BatchID)
	assert.Nil(t, summary.DuplicateOfBatch)

	require.Len(t, inserted, 1)
	e := inserted[0]
	assert.Equal(t, ledger.DirectionOut, e.Direction)
	assert.Equal(t, ledger.TypeExpense, e.Type)
	assert.Equal(t, int64(58874), e.AmountCents)
	assert.Equal(t, "INSTITUTO GESTAO FINA", e.DescriptionNormalized)
	assert.NotEmpty(t, e.Fingerprint)
}

func TestService_CommitImport_Idempotent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := ledger.NewMockRepository(ctrl)
	svc := ledger.NewService(repo, passthroughCategorizer(ctrl), textnorm.Default(), 500)

	rows := []ledger.CommitRow{
		bankRow("-100.00", 5, "COMPRA A"),
		bankRow("-200.00", 6, "COMPRA B"),
	}

	tx := ledger.NewMockCommitTx(ctrl)
	tx.EXPECT().
		ExistingFingerprints(gomock.Any(), userID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ uuid.UUID, fps []string) (map[string]struct{}, error) {
			all := make(map[string]struct{}, len(fps))
			for _, fp := range fps {
				all[fp] = struct{}{}
			}
			return all, nil
		})
	tx.EXPECT().InsertBatch(gomock.Any(), gomock.Any()).Return(nil)
	tx.EXPECT().Commit().Return(nil)
	tx.EXPECT().Rollback().Return(nil).AnyTimes()

	repo.EXPECT().BeginCommit(gomock.Any(), userID).Return(tx, nil)
	repo.EXPECT().FindBatchByFileHash(gomock.Any(), userID, gomock.Any()).Return(nil, nil)

	// Re-running the same commit imports nothing and fails nothing.
	summary, err := svc.CommitImport(context.Background(), userID, ledger.CommitParams{
		SourceType: "csv",
		FileName:   "extrato.csv",
		Rows:       rows,
	})
	require.NoError(t, err)

	assert.Equal(t, 0, summary.TotalImported)
	assert.Equal(t, 2, summary.TotalSkipped)
	assert.Equal(t, 2, summary.Duplicates)
}

func TestService_CommitImport_InBatchDuplicate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := ledger.NewMockRepository(ctrl)
	svc := ledger.NewService(repo, passthroughCategorizer(ctrl), textnorm.Default(), 500)

	// Identical rows hash identically; the second one must not be inserted.
	rows := []ledger.CommitRow{
		bankRow("-50.00", 7, "CAFE CENTRAL"),
		bankRow("-50.00", 7, "CAFE CENTRAL"),
	}

	tx, inserted := newCommitTx(ctrl, map[string]struct{}{})
	repo.EXPECT().BeginCommit(gomock.Any(), userID).Return(tx, nil)
	repo.EXPECT().FindBatchByFileHash(gomock.Any(), userID, gomock.Any()).Return(nil, nil)

	summary, err := svc.CommitImport(context.Background(), userID, ledger.CommitParams{
		SourceType: "csv",
		FileName:   "extrato.csv",
		Rows:       rows,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.TotalImported)
	assert.Equal(t, 1, summary.Duplicates)
	assert.Len(t, *inserted, 1)
}

func TestService_CommitImport_RowsLimit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := ledger.NewMockRepository(ctrl)
	svc := ledger.NewService(repo, ledger.NewMockCategorizer(ctrl), textnorm.Default(), 2)

	rows := []ledger.CommitRow{
		bankRow("-1.00", 1, "A"),
		bankRow("-2.00", 2, "B"),
		bankRow("-3.00", 3, "C"),
	}

	_, err := svc.CommitImport(context.Background(), userID, ledger.CommitParams{Rows: rows})
	assert.ErrorIs(t, err, ledger.ErrRowsLimitExceeded)
}

func TestService_CommitImport_InsertRaceCountsDuplicate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := ledger.NewMockRepository(ctrl)
	svc := ledger.NewService(repo, passthroughCategorizer(ctrl), textnorm.Default(), 500)

	rows := []ledger.CommitRow{
		bankRow("-10.00", 3, "CORRIDA"),
		bankRow("-22.00", 4, "MERCADO CENTRAL"),
	}

	tx := ledger.NewMockCommitTx(ctrl)
	tx.EXPECT().
		ExistingFingerprints(gomock.Any(), userID, gomock.Any()).
		Return(map[string]struct{}{}, nil)
	// A concurrent commit won the insert race on the first row. The store
	// reports it without poisoning the transaction, so the second row and
	// the batch row still insert.
	gomock.InOrder(
		tx.EXPECT().
			InsertEntry(gomock.Any(), gomock.Any()).
			Return(ledger.ErrDuplicateFingerprint),
		tx.EXPECT().
			InsertEntry(gomock.Any(), gomock.Any()).
			Return(nil),
	)
	tx.EXPECT().
		InsertBatch(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, b *ledger.ImportBatch) error {
			assert.Equal(t, 1, b.TotalImported)
			assert.Equal(t, 1, b.TotalSkipped)
			return nil
		})
	tx.EXPECT().Commit().Return(nil)
	tx.EXPECT().Rollback().Return(nil).AnyTimes()

	repo.EXPECT().BeginCommit(gomock.Any(), userID).Return(tx, nil)
	repo.EXPECT().FindBatchByFileHash(gomock.Any(), userID, gomock.Any()).Return(nil, nil)

	summary, err := svc.CommitImport(context.Background(), userID, ledger.CommitParams{
		SourceType: "csv",
		Rows:       rows,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.TotalImported)
	assert.Equal(t, 1, summary.Duplicates)
	assert.Equal(t, 1, summary.TotalSkipped)
}

func TestService_CommitImport_ResubmittedFileFlagged(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := ledger.NewMockRepository(ctrl)
	svc := ledger.NewService(repo, passthroughCategorizer(ctrl), textnorm.Default(), 500)

	prevBatchID := uuid.New()
	rows := []ledger.CommitRow{bankRow("-10.00", 3, "CORRIDA")}

	tx, _ := newCommitTx(ctrl, map[string]struct{}{})
	repo.EXPECT().BeginCommit(gomock.Any(), userID).Return(tx, nil)
	repo.EXPECT().
		FindBatchByFileHash(gomock.Any(), userID, gomock.Any()).
		Return(&ledger.ImportBatch{ID: prevBatchID}, nil)

	summary, err := svc.CommitImport(context.Background(), userID, ledger.CommitParams{
		SourceType: "csv",
		FileName:   "extrato.csv",
		Rows:       rows,
	})
	require.NoError(t, err)

	// A repeated file is flagged, never blocked: dedup stays per row.
	require.NotNil(t, summary.DuplicateOfBatch)
	assert.Equal(t, prevBatchID, *summary.DuplicateOfBatch)
	assert.Equal(t, 1, summary.TotalImported)
}

func TestService_CommitImport_EntryShapes(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := ledger.NewMockRepository(ctrl)
	svc := ledger.NewService(repo, passthroughCategorizer(ctrl), textnorm.Default(), 500)

	rows := []ledger.CommitRow{
		bankRow("-100.00", 1, "COMPRA LOJA"),
		bankRow("250.00", 2, "SALARIO EMPRESA"),
		ccRow("-64.00", 3, "PA GONDOMAR"),
		ccRow("25.00", 4, "ESTORNO ANUIDADE"),
	}

	tx, inserted := newCommitTx(ctrl, map[string]struct{}{})
	repo.EXPECT().BeginCommit(gomock.Any(), userID).Return(tx, nil)
	repo.EXPECT().FindBatchByFileHash(gomock.Any(), userID, gomock.Any()).Return(nil, nil)

	_, err := svc.CommitImport(context.Background(), userID, ledger.CommitParams{
		SourceType: "csv",
		Rows:       rows,
	})
	require.NoError(t, err)
	require.Len(t, *inserted, 4)

	got := *inserted

	// Bank account: OUT is expense, IN is income.
	assert.Equal(t, ledger.TypeExpense, got[0].Type)
	assert.Equal(t, ledger.DirectionOut, got[0].Direction)
	assert.Equal(t, ledger.TypeIncome, got[1].Type)
	assert.Equal(t, ledger.DirectionIn, got[1].Direction)

	// Credit card: OUT is a purchase, IN is a refund.
	assert.Equal(t, ledger.TypeCCPurchase, got[2].Type)
	assert.Equal(t, ledger.TypeRefund, got[3].Type)

	// Amounts are stored positive; direction carries the sign.
	for _, e := range got {
		assert.Positive(t, e.AmountCents)
		assert.NoError(t, e.Validate())
	}
}

func TestService_CreateManual_DuplicateSurfaces(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := ledger.NewMockRepository(ctrl)
	svc := ledger.NewService(repo, passthroughCategorizer(ctrl), textnorm.Default(), 500)

	repo.EXPECT().
		CreateEntry(gomock.Any(), gomock.Any()).
		Return(ledger.ErrDuplicateFingerprint)

	_, err := svc.CreateManual(context.Background(), userID, ledger.ManualEntryParams{
		Row: canonical.Row{
			PostedDate:  date(2026, 2, 1),
			Amount:      decimal.NewFromFloat(-45.90),
			Description: "PADARIA REAL",
		},
		AccountID: &accountID,
	})

	assert.ErrorIs(t, err, ledger.ErrDuplicateFingerprint)
}

func TestService_CreateManual(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := ledger.NewMockRepository(ctrl)
	svc := ledger.NewService(repo, passthroughCategorizer(ctrl), textnorm.Default(), 500)

	repo.EXPECT().
		CreateEntry(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, e *ledger.Entry) error {
			e.ID = uuid.New()
			return nil
		})

	got, err := svc.CreateManual(context.Background(), userID, ledger.ManualEntryParams{
		Row: canonical.Row{
			PostedDate:         date(2026, 2, 1),
			Amount:             decimal.NewFromFloat(-45.90),
			Description:        "Padaria Real",
			CounterpartyRaw:    "PADARIA REAL LTDA",
			TransactionKindRaw: "COMPRA",
		},
		AccountID: &accountID,
	})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, got.ID)
	assert.Equal(t, ledger.TypeExpense, got.Type)
	assert.Equal(t, int64(4590), got.AmountCents)
	assert.Equal(t, "PADARIA REAL", got.DescriptionNormalized)
	assert.Equal(t, "padaria real", got.MerchantNormalized)
	assert.NotEmpty(t, got.Fingerprint)
}
