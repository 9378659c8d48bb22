package accounting_test

import (
	"testing"

	"github.com/clinicore/treasury-backend/internal/core/domain"
	"github.com/clinicore/treasury-backend/internal/utils/accounting"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignedAmount(t *testing.T) {
	amount := decimal.NewFromInt(150)

	tests := []struct {
		name string
		kind domain.MovementKind
		in   decimal.Decimal
		want decimal.Decimal
	}{
		{"deposit is positive", domain.Deposit, amount, amount},
		{"transfer in is positive", domain.TransferIn, amount, amount},
		{"credit is positive", domain.Credit, amount, amount},
		{"withdrawal is negative", domain.Withdrawal, amount, amount.Neg()},
		{"transfer out is negative", domain.TransferOut, amount, amount.Neg()},
		{"debit is negative", domain.Debit, amount, amount.Neg()},
		{"adjustment keeps its own sign", domain.Adjustment, amount.Neg(), amount.Neg()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := accounting.SignedAmount(tt.kind, tt.in)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %s got %s", tt.want, got)
		})
	}
}

func TestSignedAmountUnknownKind(t *testing.T) {
	_, err := accounting.SignedAmount(domain.MovementKind("SPLIT"), decimal.NewFromInt(1))
	assert.Error(t, err)
}

func TestReverseKindIsAnExactInverse(t *testing.T) {
	kinds := []domain.MovementKind{
		domain.Deposit, domain.Withdrawal, domain.TransferIn,
		domain.TransferOut, domain.Credit, domain.Debit,
	}
	amount := decimal.NewFromInt(420)

	for _, kind := range kinds {
		reversed, err := accounting.ReverseKind(kind)
		require.NoError(t, err)

		fwd, err := accounting.SignedAmount(kind, amount)
		require.NoError(t, err)
		back, err := accounting.SignedAmount(reversed, amount)
		require.NoError(t, err)

		assert.True(t, fwd.Add(back).IsZero(), "kind %s: %s + %s != 0", kind, fwd, back)
	}
}

func TestValidateMovementAmount(t *testing.T) {
	assert.NoError(t, accounting.ValidateMovementAmount(domain.Deposit, decimal.NewFromInt(10)))
	assert.NoError(t, accounting.ValidateMovementAmount(domain.Deposit, decimal.Zero))
	assert.Error(t, accounting.ValidateMovementAmount(domain.Withdrawal, decimal.NewFromInt(-5)))

	assert.NoError(t, accounting.ValidateMovementAmount(domain.Adjustment, decimal.NewFromInt(-5)))
	assert.Error(t, accounting.ValidateMovementAmount(domain.Adjustment, decimal.Zero))
}
