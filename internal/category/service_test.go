package category_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/contaflow/contaflow/internal/category"
)

func TestService_CategorizeBatch(t *testing.T) {
	userID := uuid.New()

	type testCase struct {
		name      string
		ins       []category.Input
		setupMock func(m *category.MockRepository)
		check     func(t *testing.T, results []category.Result)
		wantErr   bool
	}

	tests := []testCase{
		{
			name: "RulesAndCategoriesLoadedOnce",
			ins: []category.Input{
				{DescriptionNormalized: "SUPERMERCADO BOM PRECO", AccountID: accountID},
				{DescriptionNormalized: "ALGO OBSCURO", AccountID: accountID},
			},
			setupMock: func(m *category.MockRepository) {
				m.EXPECT().
					ListRules(gomock.Any(), userID).
					Return(nil, nil).
					Times(1)
				m.EXPECT().
					ListCategories(gomock.Any(), userID).
					Return(allCategories(), nil).
					Times(1)
			},
			check: func(t *testing.T, results []category.Result) {
				require.Len(t, results, 2)
				assert.Equal(t, category.SourceBuiltinRule, results[0].Source)
				assert.Equal(t, category.SourceNone, results[1].Source)
			},
		},
		{
			name: "RulesError",
			ins:  []category.Input{{DescriptionNormalized: "X"}},
			setupMock: func(m *category.MockRepository) {
				m.EXPECT().
					ListRules(gomock.Any(), userID).
					Return(nil, errors.New("db error"))
			},
			wantErr: true,
		},
		{
			name: "CategoriesError",
			ins:  []category.Input{{DescriptionNormalized: "X"}},
			setupMock: func(m *category.MockRepository) {
				m.EXPECT().
					ListRules(gomock.Any(), userID).
					Return(nil, nil)
				m.EXPECT().
					ListCategories(gomock.Any(), userID).
					Return(nil, errors.New("db error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := category.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := category.NewService(repo, category.NewEngine())
			results, err := svc.CategorizeBatch(context.Background(), userID, tt.ins)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			tt.check(t, results)
		})
	}
}

func TestService_Categorize(t *testing.T) {
	userID := uuid.New()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := category.NewMockRepository(ctrl)
	repo.EXPECT().ListRules(gomock.Any(), userID).Return(nil, nil)
	repo.EXPECT().ListCategories(gomock.Any(), userID).Return(allCategories(), nil)

	svc := category.NewService(repo, category.NewEngine())
	res, err := svc.Categorize(context.Background(), userID, category.Input{
		DescriptionNormalized: "TARIFA PACOTE",
		AccountID:             accountID,
	})

	require.NoError(t, err)
	assert.Equal(t, category.SourceFallback, res.Source)
}
