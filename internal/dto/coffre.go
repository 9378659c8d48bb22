package dto

import (
	"time"

	"github.com/clinicore/treasury-backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateCoffreRequest defines the payload for creating a vault.
type CreateCoffreRequest struct {
	Name           string          `json:"name" binding:"required"`
	Location       string          `json:"location" binding:"required"`
	OpeningBalance decimal.Decimal `json:"openingBalance"`
}

// CoffreResponse defines the data returned for a coffre.
type CoffreResponse struct {
	CoffreID       string          `json:"coffreID"`
	Name           string          `json:"name"`
	Location       string          `json:"location"`
	CurrentBalance decimal.Decimal `json:"currentBalance"`
	IsActive       bool            `json:"isActive"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// ToCoffreResponse converts a domain.Coffre to CoffreResponse DTO.
func ToCoffreResponse(c *domain.Coffre) CoffreResponse {
	return CoffreResponse{
		CoffreID:       c.CoffreID,
		Name:           c.Name,
		Location:       c.Location,
		CurrentBalance: c.CurrentBalance,
		IsActive:       c.IsActive,
		CreatedAt:      c.CreatedAt,
	}
}

// RecordMovementRequest defines the payload for a vault ledger movement.
type RecordMovementRequest struct {
	Kind            string          `json:"kind" binding:"required,oneof=DEPOSIT WITHDRAWAL TRANSFER_IN TRANSFER_OUT ADJUSTMENT"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description"`
	LinkedSessionID *string         `json:"linkedSessionID,omitempty"`
	LinkedBankTxID  *string         `json:"linkedBankTxID,omitempty"`
}

// AmendMovementRequest defines the payload for amending a vault movement.
type AmendMovementRequest struct {
	Kind   string          `json:"kind" binding:"required,oneof=DEPOSIT WITHDRAWAL TRANSFER_IN TRANSFER_OUT ADJUSTMENT"`
	Amount decimal.Decimal `json:"amount"`
}

// CoffreTransactionResponse defines the data returned for a vault movement.
type CoffreTransactionResponse struct {
	TransactionID   string          `json:"transactionID"`
	CoffreID        string          `json:"coffreID"`
	ActorID         string          `json:"actorID"`
	Kind            string          `json:"kind"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description,omitempty"`
	LinkedSessionID *string         `json:"linkedSessionID,omitempty"`
	LinkedBankTxID  *string         `json:"linkedBankTxID,omitempty"`
	RunningBalance  decimal.Decimal `json:"runningBalance"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// ToCoffreTransactionResponse converts a domain.CoffreTransaction to its DTO.
func ToCoffreTransactionResponse(t *domain.CoffreTransaction) CoffreTransactionResponse {
	return CoffreTransactionResponse{
		TransactionID:   t.TransactionID,
		CoffreID:        t.CoffreID,
		ActorID:         t.ActorID,
		Kind:            string(t.Kind),
		Amount:          t.Amount,
		Description:     t.Description,
		LinkedSessionID: t.LinkedSessionID,
		LinkedBankTxID:  t.LinkedBankTxID,
		RunningBalance:  t.RunningBalance,
		CreatedAt:       t.CreatedAt,
	}
}

// ToCoffreTransactionResponses converts a slice of movements.
func ToCoffreTransactionResponses(ts []domain.CoffreTransaction) []CoffreTransactionResponse {
	out := make([]CoffreTransactionResponse, len(ts))
	for i := range ts {
		out[i] = ToCoffreTransactionResponse(&ts[i])
	}
	return out
}

// ListTransactionsParams holds parameters for listing ledger movements.
type ListTransactionsParams struct {
	Limit     int     `form:"limit"`
	NextToken *string `form:"nextToken"`
}

// ListCoffreTransactionsResponse is a page of coffre movements.
type ListCoffreTransactionsResponse struct {
	Transactions []CoffreTransactionResponse `json:"transactions"`
	NextToken    *string                     `json:"nextToken,omitempty"`
}
