package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BankAccount is an external account held at a bank. CurrentBalance equals the
// signed sum of its completed transactions only.
type BankAccount struct {
	BankAccountID    string          `json:"bankAccountID"` // Primary Key (UUID)
	BankID           string          `json:"bankID"`
	AccountNumber    string          `json:"accountNumber"`
	CurrencyCode     string          `json:"currencyCode"`
	CurrentBalance   decimal.Decimal `json:"currentBalance"`
	AvailableBalance decimal.Decimal `json:"availableBalance"`
	IsActive         bool            `json:"isActive"`
	AuditFields
}

// BankTransactionStatus is the settlement state of a bank account transaction.
type BankTransactionStatus string

const (
	BankTxPending   BankTransactionStatus = "PENDING"
	BankTxCompleted BankTransactionStatus = "COMPLETED"
	BankTxCancelled BankTransactionStatus = "CANCELLED"
)

// BankAccountTransaction mutates its account balance only on the transition
// into COMPLETED, and is reversible exactly once via CANCELLED.
type BankAccountTransaction struct {
	TransactionID string                `json:"transactionID"` // Primary Key (UUID)
	BankAccountID string                `json:"bankAccountID"` // FK -> bank_accounts
	Kind          MovementKind          `json:"kind"`          // CREDIT or DEBIT
	Amount        decimal.Decimal       `json:"amount"`
	Status        BankTransactionStatus `json:"status"`
	Reference     string                `json:"reference"`
	Description   string                `json:"description"`

	ReconciledBy *string    `json:"reconciledBy,omitempty"`
	ReconciledAt *time.Time `json:"reconciledAt,omitempty"`
	AuditFields
}
