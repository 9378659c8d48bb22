package services

import (
	"context"

	"github.com/clinicore/treasury-backend/internal/core/domain"
	"github.com/clinicore/treasury-backend/internal/dto"
)

// BankAccountSvcFacade defines operations on bank accounts and their
// status-gated transaction ledger.
type BankAccountSvcFacade interface {
	CreateBankAccount(ctx context.Context, req dto.CreateBankAccountRequest, creatorUserID string) (*domain.BankAccount, error)
	GetBankAccountByID(ctx context.Context, bankAccountID string) (*domain.BankAccount, error)
	ListBankAccounts(ctx context.Context) ([]domain.BankAccount, error)

	// CreateTransaction records a PENDING transaction; no balance effect.
	CreateTransaction(ctx context.Context, bankAccountID string, req dto.CreateBankTransactionRequest, actorID string) (*domain.BankAccountTransaction, error)

	// CompleteTransaction applies the balance delta exactly once.
	CompleteTransaction(ctx context.Context, transactionID string, actorID string) (*domain.BankAccountTransaction, error)

	// CancelTransaction reverses a completed transaction once, or discards a
	// pending one.
	CancelTransaction(ctx context.Context, transactionID string, actorID string) (*domain.BankAccountTransaction, error)

	// ReconcileTransaction stamps reconciliation metadata only.
	ReconcileTransaction(ctx context.Context, transactionID string, reconciledBy string) error

	ListTransactions(ctx context.Context, bankAccountID string, params dto.ListTransactionsParams) (*dto.ListBankTransactionsResponse, error)
}
