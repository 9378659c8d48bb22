package pgsql

import (
	"context"
	"errors"
	"time"

	"github.com/clinicore/treasury-backend/internal/apperrors"
	"github.com/clinicore/treasury-backend/internal/core/domain"
	portsrepo "github.com/clinicore/treasury-backend/internal/core/ports/repositories"
	"github.com/clinicore/treasury-backend/internal/models"
	"github.com/clinicore/treasury-backend/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const approvalRequestColumns = `request_id, transaction_id, requested_by, amount, candidate_user_ids, status, resolved_by, resolved_at, created_at, created_by, last_updated_at, last_updated_by`

type PgxApprovalRepository struct {
	BaseRepository
	bankRepo   portsrepo.BankTransactionSupport
	coffreRepo portsrepo.CoffreTransactionSupport
}

// newPgxApprovalRepository creates a new repository for approval thresholds
// and requests. The bank and coffre dependencies let a request resolution
// settle the gated money movements inside the resolution's own transaction.
func newPgxApprovalRepository(pool *pgxpool.Pool, bankRepo portsrepo.BankTransactionSupport, coffreRepo portsrepo.CoffreTransactionSupport) portsrepo.ApprovalRepositoryFacade {
	return &PgxApprovalRepository{
		BaseRepository: BaseRepository{Pool: pool},
		bankRepo:       bankRepo,
		coffreRepo:     coffreRepo,
	}
}

var _ portsrepo.ApprovalRepositoryFacade = (*PgxApprovalRepository)(nil)

// SaveThreshold persists a threshold after deactivating any previous active
// row of the same user, so exactly one stays active.
func (r *PgxApprovalRepository) SaveThreshold(ctx context.Context, threshold domain.ApprovalThreshold) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	m := mapping.ToModelApprovalThreshold(threshold)

	_, err = tx.Exec(ctx, `
		UPDATE approval_thresholds
		SET is_active = FALSE, last_updated_at = $2, last_updated_by = $3
		WHERE user_id = $1 AND is_active;`,
		m.UserID, m.LastUpdatedAt, m.LastUpdatedBy)
	if err != nil {
		return apperrors.NewAppError(500, "failed to deactivate previous threshold for user "+m.UserID, err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO approval_thresholds (threshold_id, user_id, maximum_amount, is_active, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);`,
		m.ThresholdID,
		m.UserID,
		m.MaximumAmount,
		m.IsActive,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert threshold "+m.ThresholdID, err)
	}

	return r.Commit(ctx, tx)
}

// FindActiveThresholdByUser retrieves the active threshold of a user.
func (r *PgxApprovalRepository) FindActiveThresholdByUser(ctx context.Context, userID string) (*domain.ApprovalThreshold, error) {
	query := `
		SELECT threshold_id, user_id, maximum_amount, is_active, created_at, created_by, last_updated_at, last_updated_by
		FROM approval_thresholds
		WHERE user_id = $1 AND is_active;
	`
	var m models.ApprovalThreshold
	err := r.Pool.QueryRow(ctx, query, userID).Scan(
		&m.ThresholdID,
		&m.UserID,
		&m.MaximumAmount,
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
		return nil, apperrors.NewAppError(500, "failed to find active threshold for user "+userID, err)
	}

	domainThreshold := mapping.ToDomainApprovalThreshold(m)
	return &domainThreshold, nil
}

// ListCandidateUserIDs returns the users whose active threshold covers the
// given amount.
func (r *PgxApprovalRepository) ListCandidateUserIDs(ctx context.Context, amount decimal.Decimal) ([]string, error) {
	query := `
		SELECT user_id
		FROM approval_thresholds
		WHERE is_active AND maximum_amount >= $1
		ORDER BY user_id;
	`
	rows, err := r.Pool.Query(ctx, query, amount)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query approval candidates", err)
	}
	defer rows.Close()

	userIDs := []string{}
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan approval candidate row", err)
		}
		userIDs = append(userIDs, userID)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating approval candidate rows", err)
	}

	return userIDs, nil
}

// CreateOutboundTransfer persists an outbound transfer in one transaction:
// the pending bank transaction row, the optional linked coffre withdrawal,
// and either the immediate completion or the pending approval request. On any
// failure nothing is committed.
func (r *PgxApprovalRepository) CreateOutboundTransfer(ctx context.Context, txn domain.BankAccountTransaction, movement *domain.CoffreTransaction, request *domain.ApprovalRequest, actorID string, now time.Time) (*domain.BankAccountTransaction, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	if err := r.bankRepo.CreateTransactionInTx(ctx, tx, txn); err != nil {
		return nil, err
	}

	if movement != nil {
		if _, err := r.coffreRepo.ApplyMovementInTx(ctx, tx, *movement); err != nil {
			return nil, err
		}
	}

	stored := &txn
	if request != nil {
		if err := insertApprovalRequest(ctx, tx, *request); err != nil {
			return nil, err
		}
	} else {
		stored, err = r.bankRepo.CompleteTransactionInTx(ctx, tx, txn.TransactionID, actorID, now)
		if err != nil {
			return nil, err
		}
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return stored, nil
}

func insertApprovalRequest(ctx context.Context, db execer, request domain.ApprovalRequest) error {
	m := mapping.ToModelApprovalRequest(request)
	query := `
		INSERT INTO approval_requests (` + approvalRequestColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := db.Exec(ctx, query,
		m.RequestID,
		m.TransactionID,
		m.RequestedBy,
		m.Amount,
		m.CandidateUserIDs,
		m.Status,
		m.ResolvedBy,
		m.ResolvedAt,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert approval request "+m.RequestID, err)
	}
	return nil
}

// FindRequestByID retrieves an approval request by its ID.
func (r *PgxApprovalRepository) FindRequestByID(ctx context.Context, requestID string) (*domain.ApprovalRequest, error) {
	query := `
		SELECT ` + approvalRequestColumns + `
		FROM approval_requests
		WHERE request_id = $1;
	`
	m, err := scanApprovalRequestRow(r.Pool.QueryRow(ctx, query, requestID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find approval request by ID "+requestID, err)
	}

	domainRequest := mapping.ToDomainApprovalRequest(*m)
	return &domainRequest, nil
}

// ListPendingRequestsForCandidate retrieves pending requests the user may
// resolve, oldest first.
func (r *PgxApprovalRepository) ListPendingRequestsForCandidate(ctx context.Context, userID string) ([]domain.ApprovalRequest, error) {
	query := `
		SELECT ` + approvalRequestColumns + `
		FROM approval_requests
		WHERE status = 'PENDING' AND $1 = ANY(candidate_user_ids)
		ORDER BY created_at, request_id;
	`
	rows, err := r.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query pending requests for user "+userID, err)
	}
	defer rows.Close()

	requests := []domain.ApprovalRequest{}
	for rows.Next() {
		m, err := scanApprovalRequestRow(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan approval request row", err)
		}
		requests = append(requests, mapping.ToDomainApprovalRequest(*m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating approval request rows", err)
	}

	return requests, nil
}

// ApproveRequest locks the request, re-checks the guards and completes the
// gated bank transaction, all in one transaction.
func (r *PgxApprovalRepository) ApproveRequest(ctx context.Context, requestID string, approverID string, now time.Time) (*domain.ApprovalRequest, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	m, err := r.lockPendingRequest(ctx, tx, requestID, approverID)
	if err != nil {
		return nil, err
	}

	if _, err := r.bankRepo.CompleteTransactionInTx(ctx, tx, m.TransactionID, approverID, now); err != nil {
		return nil, err
	}

	resolved, err := r.markResolved(ctx, tx, m, domain.ApprovalApproved, approverID, now)
	if err != nil {
		return nil, err
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return resolved, nil
}

// RejectRequest locks the request, cancels the gated bank transaction and
// offsets any vault withdrawals linked to it, all in one transaction.
func (r *PgxApprovalRepository) RejectRequest(ctx context.Context, requestID string, approverID string, now time.Time) (*domain.ApprovalRequest, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	m, err := r.lockPendingRequest(ctx, tx, requestID, approverID)
	if err != nil {
		return nil, err
	}

	if _, err := r.bankRepo.CancelTransactionInTx(ctx, tx, m.TransactionID, approverID, now); err != nil {
		return nil, err
	}
	if err := r.coffreRepo.OffsetMovementsForBankTxInTx(ctx, tx, m.TransactionID, approverID, now); err != nil {
		return nil, err
	}

	resolved, err := r.markResolved(ctx, tx, m, domain.ApprovalRejected, approverID, now)
	if err != nil {
		return nil, err
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return resolved, nil
}

// ListStaleRequestIDs returns the IDs of pending requests created before the
// cutoff, oldest first.
func (r *PgxApprovalRepository) ListStaleRequestIDs(ctx context.Context, cutoff time.Time) ([]string, error) {
	query := `
		SELECT request_id
		FROM approval_requests
		WHERE status = 'PENDING' AND created_at < $1
		ORDER BY created_at, request_id;
	`
	rows, err := r.Pool.Query(ctx, query, cutoff)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query stale approval requests", err)
	}
	defer rows.Close()

	requestIDs := []string{}
	for rows.Next() {
		var requestID string
		if err := rows.Scan(&requestID); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan stale approval request row", err)
		}
		requestIDs = append(requestIDs, requestID)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating stale approval request rows", err)
	}

	return requestIDs, nil
}

// ExpireRequest resolves one pending request as EXPIRED in its own
// transaction. The row is taken with SKIP LOCKED so the sweep never blocks
// behind a human resolving the same request; a bank transaction that was
// already cancelled is tolerated so one settled-elsewhere row cannot stall
// the sweep.
func (r *PgxApprovalRepository) ExpireRequest(ctx context.Context, requestID string, actorID string, now time.Time) (*domain.ApprovalRequest, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	query := `
		SELECT ` + approvalRequestColumns + `
		FROM approval_requests
		WHERE request_id = $1 AND status = 'PENDING'
		FOR UPDATE SKIP LOCKED;
	`
	m, err := scanApprovalRequestRow(tx.QueryRow(ctx, query, requestID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrRequestAlreadyResolved
		}
		return nil, apperrors.NewAppError(500, "failed to lock stale approval request "+requestID, err)
	}

	if _, err := r.bankRepo.CancelTransactionInTx(ctx, tx, m.TransactionID, actorID, now); err != nil && !errors.Is(err, apperrors.ErrAlreadyCancelled) {
		return nil, err
	}
	if err := r.coffreRepo.OffsetMovementsForBankTxInTx(ctx, tx, m.TransactionID, actorID, now); err != nil {
		return nil, err
	}

	resolved, err := r.markResolved(ctx, tx, m, domain.ApprovalExpired, actorID, now)
	if err != nil {
		return nil, err
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return resolved, nil
}

// lockPendingRequest fetches the request under a row lock and re-checks the
// candidate and pending guards.
func (r *PgxApprovalRepository) lockPendingRequest(ctx context.Context, tx pgx.Tx, requestID string, approverID string) (*models.ApprovalRequest, error) {
	query := `
		SELECT ` + approvalRequestColumns + `
		FROM approval_requests
		WHERE request_id = $1
		FOR UPDATE;
	`
	m, err := scanApprovalRequestRow(tx.QueryRow(ctx, query, requestID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to lock approval request "+requestID, err)
	}

	isCandidate := false
	for _, candidate := range m.CandidateUserIDs {
		if candidate == approverID {
			isCandidate = true
			break
		}
	}
	if !isCandidate {
		return nil, apperrors.ErrNotAnAuthorizedApprover
	}
	if m.Status != string(domain.ApprovalPending) {
		return nil, apperrors.ErrRequestAlreadyResolved
	}

	return m, nil
}

// markResolved stamps the resolution fields on a locked request row.
func (r *PgxApprovalRepository) markResolved(ctx context.Context, tx pgx.Tx, m *models.ApprovalRequest, status domain.ApprovalStatus, resolvedBy string, now time.Time) (*domain.ApprovalRequest, error) {
	_, err := tx.Exec(ctx, `
		UPDATE approval_requests
		SET status = $2, resolved_by = $3, resolved_at = $4, last_updated_at = $4, last_updated_by = $3
		WHERE request_id = $1;`,
		m.RequestID, string(status), resolvedBy, now)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to resolve approval request "+m.RequestID, err)
	}

	m.Status = string(status)
	m.ResolvedBy = &resolvedBy
	m.ResolvedAt = &now
	m.LastUpdatedAt = now
	m.LastUpdatedBy = resolvedBy
	resolved := mapping.ToDomainApprovalRequest(*m)
	return &resolved, nil
}

func scanApprovalRequestRow(row pgx.Row) (*models.ApprovalRequest, error) {
	var m models.ApprovalRequest
	err := row.Scan(
		&m.RequestID,
		&m.TransactionID,
		&m.RequestedBy,
		&m.Amount,
		&m.CandidateUserIDs,
		&m.Status,
		&m.ResolvedBy,
		&m.ResolvedAt,
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
