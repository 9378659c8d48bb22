package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BankAccount maps the bank_accounts table.
type BankAccount struct {
	BankAccountID    string          `json:"bankAccountID"`
	BankID           string          `json:"bankID"`
	AccountNumber    string          `json:"accountNumber"`
	CurrencyCode     string          `json:"currencyCode"`
	CurrentBalance   decimal.Decimal `json:"currentBalance"`
	AvailableBalance decimal.Decimal `json:"availableBalance"`
	IsActive         bool            `json:"isActive"`
	AuditFields
}

// BankAccountTransaction maps the bank_account_transactions table.
type BankAccountTransaction struct {
	TransactionID string          `json:"transactionID"`
	BankAccountID string          `json:"bankAccountID"`
	Kind          string          `json:"kind"`
	Amount        decimal.Decimal `json:"amount"`
	Status        string          `json:"status"`
	Reference     string          `json:"reference"`
	Description   string          `json:"description"`
	ReconciledBy  *string         `json:"reconciledBy"`
	ReconciledAt  *time.Time      `json:"reconciledAt"`
	AuditFields
}
