package domain

// MovementKind classifies a ledger movement. Coffre transactions use the first
// five kinds, bank account transactions only Credit and Debit. The sign each
// kind applies to the owning balance lives in utils/accounting, in one place,
// so no call site re-implements the +/- rules.
type MovementKind string

const (
	// Coffre kinds.
	Deposit     MovementKind = "DEPOSIT"
	Withdrawal  MovementKind = "WITHDRAWAL"
	TransferIn  MovementKind = "TRANSFER_IN"
	TransferOut MovementKind = "TRANSFER_OUT"
	Adjustment  MovementKind = "ADJUSTMENT" // amount itself may be negative

	// Bank kinds.
	Credit MovementKind = "CREDIT"
	Debit  MovementKind = "DEBIT"
)

// IsCoffreKind reports whether the kind is valid for a coffre transaction.
func (k MovementKind) IsCoffreKind() bool {
	switch k {
	case Deposit, Withdrawal, TransferIn, TransferOut, Adjustment:
		return true
	}
	return false
}

// IsBankKind reports whether the kind is valid for a bank account transaction.
func (k MovementKind) IsBankKind() bool {
	return k == Credit || k == Debit
}
