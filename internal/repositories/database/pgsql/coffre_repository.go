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
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const coffreTransactionColumns = `transaction_id, coffre_id, actor_id, kind, amount, description, linked_session_id, linked_bank_tx_id, running_balance, created_at, created_by, last_updated_at, last_updated_by`

type PgxCoffreRepository struct {
	BaseRepository
}

// newPgxCoffreRepository creates a new repository for vault and vault ledger data.
func newPgxCoffreRepository(pool *pgxpool.Pool) portsrepo.CoffreRepositoryFacade {
	return &PgxCoffreRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.CoffreRepositoryFacade = (*PgxCoffreRepository)(nil)

// SaveCoffre persists a new coffre.
func (r *PgxCoffreRepository) SaveCoffre(ctx context.Context, coffre domain.Coffre) error {
	m := mapping.ToModelCoffre(coffre)
	query := `
		INSERT INTO coffres (coffre_id, name, location, current_balance, is_active, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.CoffreID,
		m.Name,
		m.Location,
		m.CurrentBalance,
		m.IsActive,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert coffre "+m.CoffreID, err)
	}
	return nil
}

// FindCoffreByID retrieves a coffre by its ID.
func (r *PgxCoffreRepository) FindCoffreByID(ctx context.Context, coffreID string) (*domain.Coffre, error) {
	query := `
		SELECT coffre_id, name, location, current_balance, is_active, created_at, created_by, last_updated_at, last_updated_by
		FROM coffres
		WHERE coffre_id = $1;
	`
	var m models.Coffre
	err := r.Pool.QueryRow(ctx, query, coffreID).Scan(
		&m.CoffreID,
		&m.Name,
		&m.Location,
		&m.CurrentBalance,
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
		return nil, apperrors.NewAppError(500, "failed to find coffre by ID "+coffreID, err)
	}

	domainCoffre := mapping.ToDomainCoffre(m)
	return &domainCoffre, nil
}

// ListCoffres retrieves all coffres, active first, then by name.
func (r *PgxCoffreRepository) ListCoffres(ctx context.Context) ([]domain.Coffre, error) {
	query := `
		SELECT coffre_id, name, location, current_balance, is_active, created_at, created_by, last_updated_at, last_updated_by
		FROM coffres
		ORDER BY is_active DESC, name;
	`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query coffres", err)
	}
	defer rows.Close()

	coffres := []domain.Coffre{}
	for rows.Next() {
		var m models.Coffre
		err := rows.Scan(
			&m.CoffreID,
			&m.Name,
			&m.Location,
			&m.CurrentBalance,
			&m.IsActive,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
		)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan coffre row", err)
		}
		coffres = append(coffres, mapping.ToDomainCoffre(m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating coffre rows", err)
	}

	return coffres, nil
}

// lockCoffreForUpdate fetches the coffre's balance and active flag under a row
// lock, serialising every balance mutation of that coffre.
func lockCoffreForUpdate(ctx context.Context, tx pgx.Tx, coffreID string) (decimal.Decimal, bool, error) {
	var balance decimal.Decimal
	var isActive bool
	err := tx.QueryRow(ctx, `SELECT current_balance, is_active FROM coffres WHERE coffre_id = $1 FOR UPDATE;`, coffreID).
		Scan(&balance, &isActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, false, apperrors.ErrNotFound
		}
		return decimal.Zero, false, apperrors.NewAppError(500, "failed to lock coffre "+coffreID, err)
	}
	return balance, isActive, nil
}

// applyMovementLocked performs the insert+balance-update pair on the caller's
// transaction. enforceGuards skips the inactive check for offset movements,
// which must land even when the vault has since been disabled.
func applyMovementLocked(ctx context.Context, tx pgx.Tx, movement domain.CoffreTransaction, enforceGuards bool) (*domain.CoffreTransaction, error) {
	balance, isActive, err := lockCoffreForUpdate(ctx, tx, movement.CoffreID)
	if err != nil {
		return nil, err
	}
	if enforceGuards && !isActive {
		return nil, apperrors.ErrVaultInactive
	}

	signedAmount, err := accounting.SignedAmount(movement.Kind, movement.Amount)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to sign movement amount", err)
	}

	newBalance := balance.Add(signedAmount)
	if newBalance.IsNegative() {
		return nil, apperrors.ErrInsufficientFunds
	}

	_, err = tx.Exec(ctx, `UPDATE coffres SET current_balance = $2, last_updated_at = $3, last_updated_by = $4 WHERE coffre_id = $1;`,
		movement.CoffreID, newBalance, movement.LastUpdatedAt, movement.LastUpdatedBy)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to update coffre balance for "+movement.CoffreID, err)
	}

	movement.RunningBalance = newBalance
	m := mapping.ToModelCoffreTransaction(movement)
	insertQuery := `
		INSERT INTO coffre_transactions (` + coffreTransactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	_, err = tx.Exec(ctx, insertQuery,
		m.TransactionID,
		m.CoffreID,
		m.ActorID,
		m.Kind,
		m.Amount,
		m.Description,
		m.LinkedSessionID,
		m.LinkedBankTxID,
		m.RunningBalance,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to insert coffre transaction "+m.TransactionID, err)
	}

	return &movement, nil
}

// ApplyMovement atomically records a movement and updates the coffre balance.
func (r *PgxCoffreRepository) ApplyMovement(ctx context.Context, movement domain.CoffreTransaction) (*domain.CoffreTransaction, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	stored, err := r.ApplyMovementInTx(ctx, tx, movement)
	if err != nil {
		return nil, err
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return stored, nil
}

// ApplyMovementInTx is ApplyMovement running on the caller's transaction.
func (r *PgxCoffreRepository) ApplyMovementInTx(ctx context.Context, tx pgx.Tx, movement domain.CoffreTransaction) (*domain.CoffreTransaction, error) {
	return applyMovementLocked(ctx, tx, movement, true)
}

// AmendTransaction replaces the kind/amount of a movement, shifting the coffre
// balance and the running balances of this and every later movement by the
// delta between the old and new signed amounts.
func (r *PgxCoffreRepository) AmendTransaction(ctx context.Context, transactionID string, newKind domain.MovementKind, newAmount decimal.Decimal, actorID string, now time.Time) (*domain.CoffreTransaction, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	existing, err := lockTransactionForUpdate(ctx, tx, transactionID)
	if err != nil {
		return nil, err
	}

	balance, _, err := lockCoffreForUpdate(ctx, tx, existing.CoffreID)
	if err != nil {
		return nil, err
	}

	oldSigned, err := accounting.SignedAmount(domain.MovementKind(existing.Kind), existing.Amount)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to sign existing movement amount", err)
	}
	newSigned, err := accounting.SignedAmount(newKind, newAmount)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to sign amended movement amount", err)
	}

	delta := newSigned.Sub(oldSigned)
	newBalance := balance.Add(delta)
	if newBalance.IsNegative() {
		return nil, apperrors.ErrInsufficientFunds
	}

	_, err = tx.Exec(ctx, `UPDATE coffres SET current_balance = $2, last_updated_at = $3, last_updated_by = $4 WHERE coffre_id = $1;`,
		existing.CoffreID, newBalance, now, actorID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to update coffre balance for "+existing.CoffreID, err)
	}

	// Every movement from the amended one onward carries the delta in its
	// running balance so the history still replays to the stored balance.
	_, err = tx.Exec(ctx, `
		UPDATE coffre_transactions
		SET running_balance = running_balance + $3
		WHERE coffre_id = $1 AND (created_at, transaction_id) >= ($2, $4);`,
		existing.CoffreID, existing.CreatedAt, delta, existing.TransactionID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to shift running balances for coffre "+existing.CoffreID, err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE coffre_transactions
		SET kind = $2, amount = $3, last_updated_at = $4, last_updated_by = $5
		WHERE transaction_id = $1;`,
		transactionID, string(newKind), newAmount, now, actorID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to amend coffre transaction "+transactionID, err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}

	amended := mapping.ToDomainCoffreTransaction(*existing)
	amended.Kind = newKind
	amended.Amount = newAmount
	amended.RunningBalance = existing.RunningBalance.Add(delta)
	amended.LastUpdatedAt = now
	amended.LastUpdatedBy = actorID
	return &amended, nil
}

// DeleteTransaction reverses the movement's balance effect and removes the row.
func (r *PgxCoffreRepository) DeleteTransaction(ctx context.Context, transactionID string, actorID string, now time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	existing, err := lockTransactionForUpdate(ctx, tx, transactionID)
	if err != nil {
		return err
	}

	balance, _, err := lockCoffreForUpdate(ctx, tx, existing.CoffreID)
	if err != nil {
		return err
	}

	signedAmount, err := accounting.SignedAmount(domain.MovementKind(existing.Kind), existing.Amount)
	if err != nil {
		return apperrors.NewAppError(500, "failed to sign movement amount", err)
	}

	newBalance := balance.Sub(signedAmount)
	if newBalance.IsNegative() {
		return apperrors.ErrInsufficientFunds
	}

	_, err = tx.Exec(ctx, `UPDATE coffres SET current_balance = $2, last_updated_at = $3, last_updated_by = $4 WHERE coffre_id = $1;`,
		existing.CoffreID, newBalance, now, actorID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update coffre balance for "+existing.CoffreID, err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE coffre_transactions
		SET running_balance = running_balance - $3
		WHERE coffre_id = $1 AND (created_at, transaction_id) > ($2, $4);`,
		existing.CoffreID, existing.CreatedAt, signedAmount, existing.TransactionID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to shift running balances for coffre "+existing.CoffreID, err)
	}

	_, err = tx.Exec(ctx, `DELETE FROM coffre_transactions WHERE transaction_id = $1;`, transactionID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to delete coffre transaction "+transactionID, err)
	}

	return r.Commit(ctx, tx)
}

// OffsetMovementsForBankTxInTx inserts a reversing movement for every coffre
// movement linked to the given bank transaction. Called exactly once per bank
// transaction, on the reject and expire paths.
func (r *PgxCoffreRepository) OffsetMovementsForBankTxInTx(ctx context.Context, tx pgx.Tx, bankTxID string, actorID string, now time.Time) error {
	query := `
		SELECT ` + coffreTransactionColumns + `
		FROM coffre_transactions
		WHERE linked_bank_tx_id = $1
		ORDER BY created_at, transaction_id;
	`
	rows, err := tx.Query(ctx, query, bankTxID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to query movements linked to bank transaction "+bankTxID, err)
	}

	originals, err := scanCoffreTransactions(rows)
	if err != nil {
		return err
	}

	for _, original := range originals {
		reversedKind, err := accounting.ReverseKind(domain.MovementKind(original.Kind))
		if err != nil {
			return apperrors.NewAppError(500, "failed to reverse movement kind "+original.Kind, err)
		}

		offset := domain.CoffreTransaction{
			TransactionID:  uuid.NewString(),
			CoffreID:       original.CoffreID,
			ActorID:        actorID,
			Kind:           reversedKind,
			Amount:         original.Amount,
			Description:    "Offset of cancelled transfer movement " + original.TransactionID,
			LinkedBankTxID: &bankTxID,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     actorID,
				LastUpdatedAt: now,
				LastUpdatedBy: actorID,
			},
		}
		// Guards are skipped: returning money must succeed even when the
		// vault has been deactivated in the meantime.
		if _, err := applyMovementLocked(ctx, tx, offset, false); err != nil {
			return err
		}
	}

	return nil
}

// FindTransactionByID retrieves a single coffre movement.
func (r *PgxCoffreRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.CoffreTransaction, error) {
	query := `
		SELECT ` + coffreTransactionColumns + `
		FROM coffre_transactions
		WHERE transaction_id = $1;
	`
	m, err := scanCoffreTransactionRow(r.Pool.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find coffre transaction by ID "+transactionID, err)
	}

	domainTxn := mapping.ToDomainCoffreTransaction(*m)
	return &domainTxn, nil
}

// ListTransactionsByCoffre retrieves a paginated movement history for a coffre
// using token-based pagination, newest first.
func (r *PgxCoffreRepository) ListTransactionsByCoffre(ctx context.Context, coffreID string, limit int, nextToken *string) ([]domain.CoffreTransaction, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// Fetch one extra item to determine if there's a next page.
	fetchLimit := limit + 1

	baseQuery := `
		SELECT ` + coffreTransactionColumns + `
		FROM coffre_transactions
		WHERE coffre_id = $1
	`
	orderByClause := `ORDER BY created_at DESC, transaction_id DESC`

	var rows pgx.Rows
	var err error
	args := []interface{}{coffreID}

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
		return nil, nil, apperrors.NewAppError(500, "failed to query transactions for coffre "+coffreID, err)
	}

	transactions, err := scanCoffreTransactions(rows)
	if err != nil {
		return nil, nil, err
	}

	var nextTokenVal *string
	var results []models.CoffreTransaction
	if len(transactions) > limit {
		lastTxn := transactions[limit-1]
		token := pagination.EncodeToken(lastTxn.CreatedAt, lastTxn.TransactionID)
		nextTokenVal = &token
		results = transactions[:limit]
	} else {
		results = transactions
	}

	return mapping.ToDomainCoffreTransactionSlice(results), nextTokenVal, nil
}

// lockTransactionForUpdate fetches a coffre movement row under a row lock.
func lockTransactionForUpdate(ctx context.Context, tx pgx.Tx, transactionID string) (*models.CoffreTransaction, error) {
	query := `
		SELECT ` + coffreTransactionColumns + `
		FROM coffre_transactions
		WHERE transaction_id = $1
		FOR UPDATE;
	`
	m, err := scanCoffreTransactionRow(tx.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to lock coffre transaction "+transactionID, err)
	}
	return m, nil
}

func scanCoffreTransactionRow(row pgx.Row) (*models.CoffreTransaction, error) {
	var m models.CoffreTransaction
	err := row.Scan(
		&m.TransactionID,
		&m.CoffreID,
		&m.ActorID,
		&m.Kind,
		&m.Amount,
		&m.Description,
		&m.LinkedSessionID,
		&m.LinkedBankTxID,
		&m.RunningBalance,
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

func scanCoffreTransactions(rows pgx.Rows) ([]models.CoffreTransaction, error) {
	defer rows.Close()

	transactions := []models.CoffreTransaction{}
	for rows.Next() {
		m, err := scanCoffreTransactionRow(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan coffre transaction row", err)
		}
		transactions = append(transactions, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating coffre transaction rows", err)
	}
	return transactions, nil
}
