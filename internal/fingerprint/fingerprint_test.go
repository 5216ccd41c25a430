package fingerprint_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contaflow/contaflow/internal/canonical"
	"github.com/contaflow/contaflow/internal/fingerprint"
)

func baseInput() fingerprint.Input {
	return fingerprint.Input{
		PostedDate:            time.Date(2026, 1, 30, 0, 0, 0, 0, time.UTC),
		AmountCents:           58874,
		Type:                  "expense",
		Direction:             "OUT",
		DescriptionNormalized: "INSTITUTO GESTAO FINA",
		MerchantNormalized:    "instituto gestao fina",
		AccountRef:            "9f3c7a10-0000-0000-0000-000000000001",
		InstitutionID:         "",
	}
}

func TestEntry_Deterministic(t *testing.T) {
	in := baseInput()

	first := fingerprint.Entry(in)
	require.Len(t, first, 64)

	for i := 0; i < 3; i++ {
		assert.Equal(t, first, fingerprint.Entry(in))
	}
}

func TestEntry_FieldSensitivity(t *testing.T) {
	base := fingerprint.Entry(baseInput())

	tests := []struct {
		name   string
		mutate func(*fingerprint.Input)
	}{
		{"Date", func(in *fingerprint.Input) { in.PostedDate = in.PostedDate.AddDate(0, 0, 1) }},
		{"Amount", func(in *fingerprint.Input) { in.AmountCents++ }},
		{"Type", func(in *fingerprint.Input) { in.Type = "fee" }},
		{"Direction", func(in *fingerprint.Input) { in.Direction = "IN" }},
		{"Description", func(in *fingerprint.Input) { in.DescriptionNormalized += " X" }},
		{"Merchant", func(in *fingerprint.Input) { in.MerchantNormalized = "outro" }},
		{"AccountRef", func(in *fingerprint.Input) { in.AccountRef = "other" }},
		{"Institution", func(in *fingerprint.Input) { in.InstitutionID = "bank-1" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := baseInput()
			tt.mutate(&in)
			assert.NotEqual(t, base, fingerprint.Entry(in))
		})
	}
}

func TestEntry_TimeComponentIgnored(t *testing.T) {
	morning := baseInput()
	morning.PostedDate = time.Date(2026, 1, 30, 8, 15, 0, 0, time.UTC)

	evening := baseInput()
	evening.PostedDate = time.Date(2026, 1, 30, 22, 45, 0, 0, time.UTC)

	assert.Equal(t, fingerprint.Entry(morning), fingerprint.Entry(evening))
}

func TestAmountToCents(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{name: "Positive", input: "588.74", want: 58874},
		{name: "NegativeTakesAbs", input: "-588.74", want: 58874},
		{name: "RoundsHalfAwayFromZero", input: "0.015", want: 2},
		{name: "Zero", input: "0", wantErr: true},
		{name: "RoundsToZero", input: "0.004", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, err := decimal.NewFromString(tt.input)
			require.NoError(t, err)

			got, err := fingerprint.AmountToCents(amount)
			if tt.wantErr {
				require.ErrorIs(t, err, fingerprint.ErrInvalidAmount)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFile(t *testing.T) {
	rows := []canonical.Row{
		{
			PostedDate:  time.Date(2026, 1, 30, 0, 0, 0, 0, time.UTC),
			Amount:      decimal.NewFromFloat(-588.74),
			Description: "INSTITUTO GESTAO FINA",
		},
		{
			PostedDate:  time.Date(2026, 1, 9, 0, 0, 0, 0, time.UTC),
			Amount:      decimal.NewFromFloat(8608.52),
			Description: "TFI Wise",
		},
	}

	base := fingerprint.File("extrato.csv", "csv", rows)
	require.Len(t, base, 64)

	// Filename is case- and whitespace-insensitive.
	assert.Equal(t, base, fingerprint.File("  EXTRATO.CSV ", "csv", rows))

	// Kind, row order and row content all matter.
	assert.NotEqual(t, base, fingerprint.File("extrato.csv", "ofx", rows))
	assert.NotEqual(t, base, fingerprint.File("extrato.csv", "csv", []canonical.Row{rows[1], rows[0]}))
	assert.NotEqual(t, base, fingerprint.File("extrato.csv", "csv", rows[:1]))
}
