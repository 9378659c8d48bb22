package repositories

import (
	"context"
	"time"

	"github.com/clinicore/treasury-backend/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// BankAccountReader defines read operations for bank account data.
type BankAccountReader interface {
	// FindBankAccountByID retrieves a bank account by its unique identifier.
	FindBankAccountByID(ctx context.Context, bankAccountID string) (*domain.BankAccount, error)

	// ListBankAccounts retrieves all bank accounts.
	ListBankAccounts(ctx context.Context) ([]domain.BankAccount, error)

	// FindTransactionByID retrieves a single bank account transaction.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.BankAccountTransaction, error)

	// ListTransactionsByAccount retrieves a cursor-paginated transaction
	// history, newest first.
	ListTransactionsByAccount(ctx context.Context, bankAccountID string, limit int, nextToken *string) ([]domain.BankAccountTransaction, *string, error)
}

// BankAccountWriter defines write operations for bank account data.
type BankAccountWriter interface {
	// SaveBankAccount persists a new bank account.
	SaveBankAccount(ctx context.Context, account domain.BankAccount) error

	// CreateTransaction inserts a transaction row. Pending rows have no
	// balance effect; a COMPLETED status is only ever reached through
	// CompleteTransaction.
	CreateTransaction(ctx context.Context, txn domain.BankAccountTransaction) error

	// CompleteTransaction applies the transaction's signed amount to the
	// account balance and flips the status to COMPLETED, all under row
	// locks. A non-pending transaction fails with ErrAlreadyCompleted and
	// no balance change; a transaction gated behind a pending approval
	// request fails with ErrTransferPendingApproval.
	CompleteTransaction(ctx context.Context, transactionID string, actorID string, now time.Time) (*domain.BankAccountTransaction, error)

	// CancelTransaction reverses the balance effect of a completed
	// transaction (exactly once) or simply discards a pending one, then sets
	// status CANCELLED. A transaction gated behind a pending approval
	// request fails with ErrTransferPendingApproval.
	CancelTransaction(ctx context.Context, transactionID string, actorID string, now time.Time) (*domain.BankAccountTransaction, error)

	// ReconcileTransaction stamps reconciliation metadata only; no balance
	// effect.
	ReconcileTransaction(ctx context.Context, transactionID string, reconciledBy string, now time.Time) error
}

// BankTransactionSupport defines creation/completion/cancellation running on a
// caller's transaction, used by the approval repository to create or resolve a
// gated transfer and settle its bank transaction atomically. These variants
// skip the pending-approval guard of the standalone methods.
type BankTransactionSupport interface {
	CreateTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.BankAccountTransaction) error
	CompleteTransactionInTx(ctx context.Context, tx pgx.Tx, transactionID string, actorID string, now time.Time) (*domain.BankAccountTransaction, error)
	CancelTransactionInTx(ctx context.Context, tx pgx.Tx, transactionID string, actorID string, now time.Time) (*domain.BankAccountTransaction, error)
}

// BankAccountRepositoryFacade combines all bank account repository interfaces.
type BankAccountRepositoryFacade interface {
	BankAccountReader
	BankAccountWriter
	BankTransactionSupport
}
