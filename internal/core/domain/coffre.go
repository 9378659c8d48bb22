package domain

import "github.com/shopspring/decimal"

// Coffre is the intermediate vault between registers and bank accounts.
// CurrentBalance always equals the signed sum of its transactions.
type Coffre struct {
	CoffreID       string          `json:"coffreID"` // Primary Key (UUID)
	Name           string          `json:"name"`
	Location       string          `json:"location"`
	CurrentBalance decimal.Decimal `json:"currentBalance"`
	IsActive       bool            `json:"isActive"`
	AuditFields
}

// CoffreTransaction is one immutable ledger movement of a coffre.
// Corrections are new offsetting transactions, never edits that would skip
// balance replay.
type CoffreTransaction struct {
	TransactionID string          `json:"transactionID"` // Primary Key (UUID)
	CoffreID      string          `json:"coffreID"`      // FK -> coffres
	ActorID       string          `json:"actorID"`
	Kind          MovementKind    `json:"kind"`
	Amount        decimal.Decimal `json:"amount"` // >= 0 except Adjustment
	Description   string          `json:"description"`

	// Weak references by id only; the session/bank transaction does not own
	// this row back.
	LinkedSessionID *string `json:"linkedSessionID,omitempty"`
	LinkedBankTxID  *string `json:"linkedBankTxID,omitempty"`

	// RunningBalance is the coffre balance immediately after this movement.
	RunningBalance decimal.Decimal `json:"runningBalance"`
	AuditFields
}
