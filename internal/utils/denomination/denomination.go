// Package denomination turns a physical cash count into a reconciled total.
// It is pure: no I/O, no failure modes beyond malformed input.
package denomination

import (
	"fmt"

	"github.com/clinicore/treasury-backend/internal/apperrors"
	"github.com/shopspring/decimal"
)

// Line is one (note/coin value, count) pair of a cash count.
type Line struct {
	FaceValue decimal.Decimal
	Quantity  int64
}

// Total is FaceValue * Quantity.
func (l Line) Total() decimal.Decimal {
	return l.FaceValue.Mul(decimal.NewFromInt(l.Quantity))
}

// Reconcile validates the counted lines and returns the kept lines plus their
// total. Lines with quantity zero are dropped, not stored. When faceValues is
// non-empty it acts as the whitelist of legal note/coin values (the static
// currency set from configuration).
func Reconcile(lines []Line, faceValues []decimal.Decimal) ([]Line, decimal.Decimal, error) {
	kept := make([]Line, 0, len(lines))
	total := decimal.Zero

	for _, line := range lines {
		if line.Quantity < 0 {
			return nil, decimal.Zero, fmt.Errorf("%w: negative quantity %d for face value %s",
				apperrors.ErrInvalidDenomination, line.Quantity, line.FaceValue)
		}
		if !line.FaceValue.IsPositive() {
			return nil, decimal.Zero, fmt.Errorf("%w: face value %s must be positive",
				apperrors.ErrInvalidDenomination, line.FaceValue)
		}
		if len(faceValues) > 0 && !contains(faceValues, line.FaceValue) {
			return nil, decimal.Zero, fmt.Errorf("%w: %s is not a recognized note or coin",
				apperrors.ErrInvalidDenomination, line.FaceValue)
		}
		if line.Quantity == 0 {
			continue
		}
		kept = append(kept, line)
		total = total.Add(line.Total())
	}

	return kept, total, nil
}

func contains(values []decimal.Decimal, v decimal.Decimal) bool {
	for _, candidate := range values {
		if candidate.Equal(v) {
			return true
		}
	}
	return false
}
