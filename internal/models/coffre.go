package models

import "github.com/shopspring/decimal"

// Coffre maps the coffres table.
type Coffre struct {
	CoffreID       string          `json:"coffreID"`
	Name           string          `json:"name"`
	Location       string          `json:"location"`
	CurrentBalance decimal.Decimal `json:"currentBalance"`
	IsActive       bool            `json:"isActive"`
	AuditFields
}

// CoffreTransaction maps the coffre_transactions table.
type CoffreTransaction struct {
	TransactionID   string          `json:"transactionID"`
	CoffreID        string          `json:"coffreID"`
	ActorID         string          `json:"actorID"`
	Kind            string          `json:"kind"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description"`
	LinkedSessionID *string         `json:"linkedSessionID"`
	LinkedBankTxID  *string         `json:"linkedBankTxID"`
	RunningBalance  decimal.Decimal `json:"runningBalance"`
	AuditFields
}
