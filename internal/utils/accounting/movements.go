package accounting

import (
	"fmt"

	"github.com/clinicore/treasury-backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SignedAmount applies the correct sign to a movement amount based on its kind.
// This is the single place the kind/sign table lives; services and repositories
// both call it so balance arithmetic never drifts between call sites.
//
// DEPOSIT, TRANSFER_IN, CREDIT -> +amount
// WITHDRAWAL, TRANSFER_OUT, DEBIT -> -amount
// ADJUSTMENT -> +amount (amount itself may be negative)
func SignedAmount(kind domain.MovementKind, amount decimal.Decimal) (decimal.Decimal, error) {
	switch kind {
	case domain.Deposit, domain.TransferIn, domain.Credit:
		return amount, nil
	case domain.Withdrawal, domain.TransferOut, domain.Debit:
		return amount.Neg(), nil
	case domain.Adjustment:
		return amount, nil
	default:
		return decimal.Zero, fmt.Errorf("unknown movement kind '%s'", kind)
	}
}

// ReverseKind returns the movement kind that undoes the given one. Used by the
// amend/delete/cancel paths so a correction is always an exact inverse.
func ReverseKind(kind domain.MovementKind) (domain.MovementKind, error) {
	switch kind {
	case domain.Deposit:
		return domain.Withdrawal, nil
	case domain.Withdrawal:
		return domain.Deposit, nil
	case domain.TransferIn:
		return domain.TransferOut, nil
	case domain.TransferOut:
		return domain.TransferIn, nil
	case domain.Adjustment:
		return domain.Adjustment, nil // reversed by negating the amount
	case domain.Credit:
		return domain.Debit, nil
	case domain.Debit:
		return domain.Credit, nil
	default:
		return "", fmt.Errorf("unknown movement kind '%s'", kind)
	}
}

// ValidateMovementAmount checks the amount constraints for a movement kind.
// Every kind requires a non-negative amount except ADJUSTMENT, which may be
// signed but must not be zero.
func ValidateMovementAmount(kind domain.MovementKind, amount decimal.Decimal) error {
	if kind == domain.Adjustment {
		if amount.IsZero() {
			return fmt.Errorf("adjustment amount must be non-zero")
		}
		return nil
	}
	if amount.IsNegative() {
		return fmt.Errorf("amount must be non-negative for movement kind %s", kind)
	}
	return nil
}
