package pgsql

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/clinicore/treasury-backend/internal/apperrors"
	"github.com/clinicore/treasury-backend/internal/core/domain"
	portsrepo "github.com/clinicore/treasury-backend/internal/core/ports/repositories"
	"github.com/clinicore/treasury-backend/internal/models"
	"github.com/clinicore/treasury-backend/internal/utils/accounting"
	"github.com/clinicore/treasury-backend/internal/utils/mapping"
	"github.com/clinicore/treasury-backend/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const bankTransactionColumns = `transaction_id, bank_account_id, kind, amount, status, reference, description, reconciled_by, reconciled_at, created_at, created_by, last_updated_at, last_updated_by`

type PgxBankAccountRepository struct {
	BaseRepository
}

// newPgxBankAccountRepository creates a new repository for bank account data.
func newPgxBankAccountRepository(pool *pgxpool.Pool) portsrepo.BankAccountRepositoryFacade {
	return &PgxBankAccountRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.BankAccountRepositoryFacade = (*PgxBankAccountRepository)(nil)

// SaveBankAccount persists a new bank account.
func (r *PgxBankAccountRepository) SaveBankAccount(ctx context.Context, account domain.BankAccount) error {
	m := mapping.ToModelBankAccount(account)
	query := `
		INSERT INTO bank_accounts (bank_account_id, bank_id, account_number, currency_code, current_balance, available_balance, is_active, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.BankAccountID,
		m.BankID,
		m.AccountNumber,
		m.CurrencyCode,
		m.CurrentBalance,
		m.AvailableBalance,
		m.IsActive,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert bank account "+m.BankAccountID, err)
	}
	return nil
}

// FindBankAccountByID retrieves a bank account by its ID.
func (r *PgxBankAccountRepository) FindBankAccountByID(ctx context.Context, bankAccountID string) (*domain.BankAccount, error) {
	query := `
		SELECT bank_account_id, bank_id, account_number, currency_code, current_balance, available_balance, is_active, created_at, created_by, last_updated_at, last_updated_by
		FROM bank_accounts
		WHERE bank_account_id = $1;
	`
	var m models.BankAccount
	err := r.Pool.QueryRow(ctx, query, bankAccountID).Scan(
		&m.BankAccountID,
		&m.BankID,
		&m.AccountNumber,
		&m.CurrencyCode,
		&m.CurrentBalance,
		&m.AvailableBalance,
		&m.IsActive,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find bank account by ID "+bankAccountID, err)
	}

	domainAccount := mapping.ToDomainBankAccount(m)
	return &domainAccount, nil
}

// ListBankAccounts retrieves all bank accounts, active first.
func (r *PgxBankAccountRepository) ListBankAccounts(ctx context.Context) ([]domain.BankAccount, error) {
	query := `
		SELECT bank_account_id, bank_id, account_number, currency_code, current_balance, available_balance, is_active, created_at, created_by, last_updated_at, last_updated_by
		FROM bank_accounts
		ORDER BY is_active DESC, bank_id, account_number;
	`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query bank accounts", err)
	}
	defer rows.Close()

	accounts := []domain.BankAccount{}
	for rows.Next() {
		var m models.BankAccount
		err := rows.Scan(
			&m.BankAccountID,
			&m.BankID,
			&m.AccountNumber,
			&m.CurrencyCode,
			&m.CurrentBalance,
			&m.AvailableBalance,
			&m.IsActive,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
		)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan bank account row", err)
		}
		accounts = append(accounts, mapping.ToDomainBankAccount(m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating bank account rows", err)
	}

	return accounts, nil
}

// CreateTransaction inserts a transaction row. Pending rows have no balance
// effect.
func (r *PgxBankAccountRepository) CreateTransaction(ctx context.Context, txn domain.BankAccountTransaction) error {
	return insertBankTransaction(ctx, r.Pool, txn)
}

// CreateTransactionInTx is CreateTransaction running on the caller's
// transaction.
func (r *PgxBankAccountRepository) CreateTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.BankAccountTransaction) error {
	return insertBankTransaction(ctx, tx, txn)
}

func insertBankTransaction(ctx context.Context, db execer, txn domain.BankAccountTransaction) error {
	m := mapping.ToModelBankAccountTransaction(txn)
	query := `
		INSERT INTO bank_account_transactions (` + bankTransactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	_, err := db.Exec(ctx, query,
		m.TransactionID,
		m.BankAccountID,
		m.Kind,
		m.Amount,
		m.Status,
		m.Reference,
		m.Description,
		m.ReconciledBy,
		m.ReconciledAt,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert bank transaction "+m.TransactionID, err)
	}
	return nil
}

// CompleteTransaction applies the balance delta and flips the status, in one
// transaction. Transactions gated behind a pending approval request may only
// complete through the request's resolution.
func (r *PgxBankAccountRepository) CompleteTransaction(ctx context.Context, transactionID string, actorID string, now time.Time) (*domain.BankAccountTransaction, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	if err := ensureNotGated(ctx, tx, transactionID); err != nil {
		return nil, err
	}

	txn, err := r.CompleteTransactionInTx(ctx, tx, transactionID, actorID, now)
	if err != nil {
		return nil, err
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return txn, nil
}

// CompleteTransactionInTx applies the transaction's signed amount to the
// account balances exactly once. Any non-pending row fails with
// ErrAlreadyCompleted and no balance change.
func (r *PgxBankAccountRepository) CompleteTransactionInTx(ctx context.Context, tx pgx.Tx, transactionID string, actorID string, now time.Time) (*domain.BankAccountTransaction, error) {
	m, err := lockBankTransactionForUpdate(ctx, tx, transactionID)
	if err != nil {
		return nil, err
	}
	if m.Status != string(domain.BankTxPending) {
		return nil, apperrors.ErrAlreadyCompleted
	}

	signedAmount, err := accounting.SignedAmount(domain.MovementKind(m.Kind), m.Amount)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to sign bank transaction amount", err)
	}

	if err := shiftBankAccountBalances(ctx, tx, m.BankAccountID, signedAmount, actorID, now); err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE bank_account_transactions
		SET status = $2, last_updated_at = $3, last_updated_by = $4
		WHERE transaction_id = $1;`,
		transactionID, string(domain.BankTxCompleted), now, actorID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to complete bank transaction "+transactionID, err)
	}

	m.Status = string(domain.BankTxCompleted)
	m.LastUpdatedAt = now
	m.LastUpdatedBy = actorID
	domainTxn := mapping.ToDomainBankAccountTransaction(*m)
	return &domainTxn, nil
}

// CancelTransaction reverses a completed transaction or discards a pending
// one, in one transaction. Transactions gated behind a pending approval
// request may only be cancelled through the request's resolution.
func (r *PgxBankAccountRepository) CancelTransaction(ctx context.Context, transactionID string, actorID string, now time.Time) (*domain.BankAccountTransaction, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	if err := ensureNotGated(ctx, tx, transactionID); err != nil {
		return nil, err
	}

	txn, err := r.CancelTransactionInTx(ctx, tx, transactionID, actorID, now)
	if err != nil {
		return nil, err
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return txn, nil
}

// CancelTransactionInTx reverses the balance effect of a completed transaction
// exactly once, or simply discards a pending one. A second cancel fails with
// ErrAlreadyCancelled and no balance change.
func (r *PgxBankAccountRepository) CancelTransactionInTx(ctx context.Context, tx pgx.Tx, transactionID string, actorID string, now time.Time) (*domain.BankAccountTransaction, error) {
	m, err := lockBankTransactionForUpdate(ctx, tx, transactionID)
	if err != nil {
		return nil, err
	}
	if m.Status == string(domain.BankTxCancelled) {
		return nil, apperrors.ErrAlreadyCancelled
	}

	if m.Status == string(domain.BankTxCompleted) {
		signedAmount, err := accounting.SignedAmount(domain.MovementKind(m.Kind), m.Amount)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to sign bank transaction amount", err)
		}
		if err := shiftBankAccountBalances(ctx, tx, m.BankAccountID, signedAmount.Neg(), actorID, now); err != nil {
			return nil, err
		}
	}

	_, err = tx.Exec(ctx, `
		UPDATE bank_account_transactions
		SET status = $2, last_updated_at = $3, last_updated_by = $4
		WHERE transaction_id = $1;`,
		transactionID, string(domain.BankTxCancelled), now, actorID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to cancel bank transaction "+transactionID, err)
	}

	m.Status = string(domain.BankTxCancelled)
	m.LastUpdatedAt = now
	m.LastUpdatedBy = actorID
	domainTxn := mapping.ToDomainBankAccountTransaction(*m)
	return &domainTxn, nil
}

// ReconcileTransaction stamps reconciliation metadata on a transaction.
func (r *PgxBankAccountRepository) ReconcileTransaction(ctx context.Context, transactionID string, reconciledBy string, now time.Time) error {
	query := `
		UPDATE bank_account_transactions
		SET reconciled_by = $2, reconciled_at = $3, last_updated_at = $3, last_updated_by = $2
		WHERE transaction_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query, transactionID, reconciledBy, now)
	if err != nil {
		return apperrors.NewAppError(500, "failed to reconcile bank transaction "+transactionID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// FindTransactionByID retrieves a single bank transaction.
func (r *PgxBankAccountRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.BankAccountTransaction, error) {
	query := `
		SELECT ` + bankTransactionColumns + `
		FROM bank_account_transactions
		WHERE transaction_id = $1;
	`
	m, err := scanBankTransactionRow(r.Pool.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find bank transaction by ID "+transactionID, err)
	}

	domainTxn := mapping.ToDomainBankAccountTransaction(*m)
	return &domainTxn, nil
}

// ListTransactionsByAccount retrieves a paginated transaction history for a
// bank account using token-based pagination, newest first.
func (r *PgxBankAccountRepository) ListTransactionsByAccount(ctx context.Context, bankAccountID string, limit int, nextToken *string) ([]domain.BankAccountTransaction, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// Fetch one extra item to determine if there's a next page.
	fetchLimit := limit + 1

	baseQuery := `
		SELECT ` + bankTransactionColumns + `
		FROM bank_account_transactions
		WHERE bank_account_id = $1
	`
	orderByClause := `ORDER BY created_at DESC, transaction_id DESC`

	var rows pgx.Rows
	var err error
	args := []interface{}{bankAccountID}

	if nextToken != nil && *nextToken != "" {
		lastCreatedAt, lastID, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}

		cursorClause := `AND (created_at, transaction_id) < ($2, $3)`
		args = append(args, lastCreatedAt, lastID)

		query := baseQuery + " " + cursorClause + " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
		args = append(args, fetchLimit)
		rows, err = r.Pool.Query(ctx, query, args...)
	} else {
		query := baseQuery + " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
		args = append(args, fetchLimit)
		rows, err = r.Pool.Query(ctx, query, args...)
	}
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query transactions for bank account "+bankAccountID, err)
	}
	defer rows.Close()

	transactions := []models.BankAccountTransaction{}
	for rows.Next() {
		m, err := scanBankTransactionRow(rows)
		if err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan bank transaction row for account "+bankAccountID, err)
		}
		transactions = append(transactions, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating bank transaction rows for account "+bankAccountID, err)
	}

	var nextTokenVal *string
	if len(transactions) > limit {
		lastTxn := transactions[limit-1]
		token := pagination.EncodeToken(lastTxn.CreatedAt, lastTxn.TransactionID)
		nextTokenVal = &token
		transactions = transactions[:limit]
	}

	return mapping.ToDomainBankAccountTransactionSlice(transactions), nextTokenVal, nil
}

// ensureNotGated fails with ErrTransferPendingApproval when a pending
// approval request references the transaction. The InTx settlement variants
// skip this on purpose: the approval resolution flips the request status in
// the same transaction.
func ensureNotGated(ctx context.Context, tx pgx.Tx, transactionID string) error {
	var gated bool
	err := tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM approval_requests WHERE transaction_id = $1 AND status = 'PENDING');`,
		transactionID).Scan(&gated)
	if err != nil {
		return apperrors.NewAppError(500, "failed to check approval gate for bank transaction "+transactionID, err)
	}
	if gated {
		return apperrors.ErrTransferPendingApproval
	}
	return nil
}

// lockBankTransactionForUpdate fetches a bank transaction row under a row lock.
func lockBankTransactionForUpdate(ctx context.Context, tx pgx.Tx, transactionID string) (*models.BankAccountTransaction, error) {
	query := `
		SELECT ` + bankTransactionColumns + `
		FROM bank_account_transactions
		WHERE transaction_id = $1
		FOR UPDATE;
	`
	m, err := scanBankTransactionRow(tx.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to lock bank transaction "+transactionID, err)
	}
	return m, nil
}

// shiftBankAccountBalances moves current and available balances by the signed
// delta, locking the account row first.
func shiftBankAccountBalances(ctx context.Context, tx pgx.Tx, bankAccountID string, delta decimal.Decimal, actorID string, now time.Time) error {
	var current, available decimal.Decimal
	err := tx.QueryRow(ctx, `SELECT current_balance, available_balance FROM bank_accounts WHERE bank_account_id = $1 FOR UPDATE;`, bankAccountID).
		Scan(&current, &available)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		return apperrors.NewAppError(500, "failed to lock bank account "+bankAccountID, err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE bank_accounts
		SET current_balance = $2, available_balance = $3, last_updated_at = $4, last_updated_by = $5
		WHERE bank_account_id = $1;`,
		bankAccountID, current.Add(delta), available.Add(delta), now, actorID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update balances of bank account "+bankAccountID, err)
	}
	return nil
}

func scanBankTransactionRow(row pgx.Row) (*models.BankAccountTransaction, error) {
	var m models.BankAccountTransaction
	err := row.Scan(
		&m.TransactionID,
		&m.BankAccountID,
		&m.Kind,
		&m.Amount,
		&m.Status,
		&m.Reference,
		&m.Description,
		&m.ReconciledBy,
		&m.ReconciledAt,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
