package dto

import (
	"time"

	"github.com/clinicore/treasury-backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateBankAccountRequest defines the payload for registering a bank account.
type CreateBankAccountRequest struct {
	BankID        string `json:"bankID" binding:"required"`
	AccountNumber string `json:"accountNumber" binding:"required"`
	CurrencyCode  string `json:"currencyCode" binding:"required,len=3"`
}

// BankAccountResponse defines the data returned for a bank account.
type BankAccountResponse struct {
	BankAccountID    string          `json:"bankAccountID"`
	BankID           string          `json:"bankID"`
	AccountNumber    string          `json:"accountNumber"`
	CurrencyCode     string          `json:"currencyCode"`
	CurrentBalance   decimal.Decimal `json:"currentBalance"`
	AvailableBalance decimal.Decimal `json:"availableBalance"`
	IsActive         bool            `json:"isActive"`
	CreatedAt        time.Time       `json:"createdAt"`
}

// ToBankAccountResponse converts a domain.BankAccount to its DTO.
func ToBankAccountResponse(a *domain.BankAccount) BankAccountResponse {
	return BankAccountResponse{
		BankAccountID:    a.BankAccountID,
		BankID:           a.BankID,
		AccountNumber:    a.AccountNumber,
		CurrencyCode:     a.CurrencyCode,
		CurrentBalance:   a.CurrentBalance,
		AvailableBalance: a.AvailableBalance,
		IsActive:         a.IsActive,
		CreatedAt:        a.CreatedAt,
	}
}

// CreateBankTransactionRequest defines the payload for a new bank transaction.
// It is always created PENDING; completion is a separate call.
type CreateBankTransactionRequest struct {
	Kind        string          `json:"kind" binding:"required,oneof=CREDIT DEBIT"`
	Amount      decimal.Decimal `json:"amount"`
	Reference   string          `json:"reference"`
	Description string          `json:"description"`
}

// BankTransactionResponse defines the data returned for a bank transaction.
type BankTransactionResponse struct {
	TransactionID string          `json:"transactionID"`
	BankAccountID string          `json:"bankAccountID"`
	Kind          string          `json:"kind"`
	Amount        decimal.Decimal `json:"amount"`
	Status        string          `json:"status"`
	Reference     string          `json:"reference,omitempty"`
	Description   string          `json:"description,omitempty"`
	ReconciledBy  *string         `json:"reconciledBy,omitempty"`
	ReconciledAt  *time.Time      `json:"reconciledAt,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// ToBankTransactionResponse converts a domain.BankAccountTransaction to its DTO.
func ToBankTransactionResponse(t *domain.BankAccountTransaction) BankTransactionResponse {
	return BankTransactionResponse{
		TransactionID: t.TransactionID,
		BankAccountID: t.BankAccountID,
		Kind:          string(t.Kind),
		Amount:        t.Amount,
		Status:        string(t.Status),
		Reference:     t.Reference,
		Description:   t.Description,
		ReconciledBy:  t.ReconciledBy,
		ReconciledAt:  t.ReconciledAt,
		CreatedAt:     t.CreatedAt,
	}
}

// ToBankTransactionResponses converts a slice of bank transactions.
func ToBankTransactionResponses(ts []domain.BankAccountTransaction) []BankTransactionResponse {
	out := make([]BankTransactionResponse, len(ts))
	for i := range ts {
		out[i] = ToBankTransactionResponse(&ts[i])
	}
	return out
}

// ListBankTransactionsResponse is a page of bank transactions.
type ListBankTransactionsResponse struct {
	Transactions []BankTransactionResponse `json:"transactions"`
	NextToken    *string                   `json:"nextToken,omitempty"`
}
