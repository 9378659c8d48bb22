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
	"github.com/clinicore/treasury-backend/internal/utils/mapping"
	"github.com/clinicore/treasury-backend/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const sessionColumns = `session_id, caisse_id, user_id, opened_by, closed_by, status, opening_amount, closing_amount, expected_closing_amount, total_cash_counted, cash_difference, source_coffre_id, destination_coffre_id, opened_at, closed_at, created_at, created_by, last_updated_at, last_updated_by`

type PgxCaisseSessionRepository struct {
	BaseRepository
	coffreRepo portsrepo.CoffreTransactionSupport
}

// newPgxCaisseSessionRepository creates a new repository for register session
// data. The coffre repository dependency lets float movements land in the
// vault ledger inside the session's own database transaction.
func newPgxCaisseSessionRepository(pool *pgxpool.Pool, coffreRepo portsrepo.CoffreTransactionSupport) portsrepo.CaisseSessionRepositoryFacade {
	return &PgxCaisseSessionRepository{
		BaseRepository: BaseRepository{Pool: pool},
		coffreRepo:     coffreRepo,
	}
}

var _ portsrepo.CaisseSessionRepositoryFacade = (*PgxCaisseSessionRepository)(nil)

// OpenSession inserts the session after re-checking, under a caisse row lock,
// that the caisse is active and that neither the caisse nor the custodian has
// a non-closed session. Partial unique indexes on the sessions table back the
// in-transaction checks against anything slipping through.
func (r *PgxCaisseSessionRepository) OpenSession(ctx context.Context, session domain.CaisseSession, openingMovement *domain.CoffreTransaction) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	// Lock the caisse row so concurrent opens on the same register serialise.
	var isActive bool
	err = tx.QueryRow(ctx, `SELECT is_active FROM caisses WHERE caisse_id = $1 FOR UPDATE;`, session.CaisseID).Scan(&isActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		return apperrors.NewAppError(500, "failed to lock caisse "+session.CaisseID, err)
	}
	if !isActive {
		return apperrors.ErrRegisterInactive
	}

	var busy bool
	err = tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM caisse_sessions WHERE caisse_id = $1 AND status <> 'CLOSED');`, session.CaisseID).Scan(&busy)
	if err != nil {
		return apperrors.NewAppError(500, "failed to check open sessions for caisse "+session.CaisseID, err)
	}
	if busy {
		return apperrors.ErrRegisterBusy
	}

	var userBusy bool
	err = tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM caisse_sessions WHERE user_id = $1 AND status <> 'CLOSED');`, session.UserID).Scan(&userBusy)
	if err != nil {
		return apperrors.NewAppError(500, "failed to check open sessions for user "+session.UserID, err)
	}
	if userBusy {
		return apperrors.ErrUserAlreadyHasOpenSession
	}

	m := mapping.ToModelCaisseSession(session)
	insertQuery := `
		INSERT INTO caisse_sessions (` + sessionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19);
	`
	_, err = tx.Exec(ctx, insertQuery,
		m.SessionID,
		m.CaisseID,
		m.UserID,
		m.OpenedBy,
		m.ClosedBy,
		string(m.Status),
		m.OpeningAmount,
		m.ClosingAmount,
		m.ExpectedClosingAmount,
		m.TotalCashCounted,
		m.CashDifference,
		m.SourceCoffreID,
		m.DestinationCoffreID,
		m.OpenedAt,
		m.ClosedAt,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return mapSessionUniqueViolation(err, "failed to insert session "+m.SessionID)
	}

	if openingMovement != nil {
		if _, err := r.coffreRepo.ApplyMovementInTx(ctx, tx, *openingMovement); err != nil {
			return err
		}
	}

	return r.Commit(ctx, tx)
}

// UpdateSessionStatus transitions a session between open and suspended. The
// update is guarded by the expected current status; a lost race surfaces as
// ErrInvalidTransition.
func (r *PgxCaisseSessionRepository) UpdateSessionStatus(ctx context.Context, sessionID string, from, to domain.SessionStatus, userID string, now time.Time) error {
	query := `
		UPDATE caisse_sessions
		SET status = $3, last_updated_at = $4, last_updated_by = $5
		WHERE session_id = $1 AND status = $2;
	`
	tag, err := r.Pool.Exec(ctx, query, sessionID, string(from), string(to), now, userID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update status of session "+sessionID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrInvalidTransition
	}
	return nil
}

// CloseSession stamps the closing fields, persists the denomination rows and
// deposits the counted cash, all in one transaction. The update is guarded on
// status OPEN so a concurrent close or suspend loses cleanly.
func (r *PgxCaisseSessionRepository) CloseSession(ctx context.Context, session domain.CaisseSession, denominations []domain.SessionDenomination, depositMovement *domain.CoffreTransaction) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	m := mapping.ToModelCaisseSession(session)
	updateQuery := `
		UPDATE caisse_sessions
		SET status = $2, closed_by = $3, closing_amount = $4, expected_closing_amount = $5,
		    total_cash_counted = $6, cash_difference = $7, destination_coffre_id = $8,
		    closed_at = $9, last_updated_at = $10, last_updated_by = $11
		WHERE session_id = $1 AND status = 'OPEN';
	`
	tag, err := tx.Exec(ctx, updateQuery,
		m.SessionID,
		string(m.Status),
		m.ClosedBy,
		m.ClosingAmount,
		m.ExpectedClosingAmount,
		m.TotalCashCounted,
		m.CashDifference,
		m.DestinationCoffreID,
		m.ClosedAt,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to close session "+m.SessionID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrSessionNotClosable
	}

	if len(denominations) > 0 {
		batch := &pgx.Batch{}
		denomQuery := `
			INSERT INTO caisse_session_denominations (session_id, face_value, quantity, line_total)
			VALUES ($1, $2, $3, $4);
		`
		for _, d := range denominations {
			md := mapping.ToModelSessionDenomination(d)
			batch.Queue(denomQuery, md.SessionID, md.FaceValue, md.Quantity, md.LineTotal)
		}
		br := tx.SendBatch(ctx, batch)
		if err := br.Close(); err != nil {
			return apperrors.NewAppError(500, "failed to insert denomination rows for session "+m.SessionID, err)
		}
	}

	if depositMovement != nil {
		if _, err := r.coffreRepo.ApplyMovementInTx(ctx, tx, *depositMovement); err != nil {
			return err
		}
	}

	return r.Commit(ctx, tx)
}

// DeleteSession removes a closed session; the denomination rows cascade.
func (r *PgxCaisseSessionRepository) DeleteSession(ctx context.Context, sessionID string) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM caisse_sessions WHERE session_id = $1 AND status = 'CLOSED';`, sessionID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to delete session "+sessionID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// FindSessionByID retrieves a session by its ID.
func (r *PgxCaisseSessionRepository) FindSessionByID(ctx context.Context, sessionID string) (*domain.CaisseSession, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM caisse_sessions
		WHERE session_id = $1;
	`
	m, err := scanSessionRow(r.Pool.QueryRow(ctx, query, sessionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find session by ID "+sessionID, err)
	}

	domainSession := mapping.ToDomainCaisseSession(*m)
	return &domainSession, nil
}

// FindDenominationsBySessionID retrieves the counted denomination rows of a
// session, largest face value first.
func (r *PgxCaisseSessionRepository) FindDenominationsBySessionID(ctx context.Context, sessionID string) ([]domain.SessionDenomination, error) {
	query := `
		SELECT session_id, face_value, quantity, line_total
		FROM caisse_session_denominations
		WHERE session_id = $1
		ORDER BY face_value DESC;
	`
	rows, err := r.Pool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query denominations for session "+sessionID, err)
	}
	defer rows.Close()

	denominations := []models.CaisseSessionDenomination{}
	for rows.Next() {
		var d models.CaisseSessionDenomination
		if err := rows.Scan(&d.SessionID, &d.FaceValue, &d.Quantity, &d.LineTotal); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan denomination row for session "+sessionID, err)
		}
		denominations = append(denominations, d)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating denomination rows for session "+sessionID, err)
	}

	return mapping.ToDomainSessionDenominationSlice(denominations), nil
}

// ListSessionsByCaisse retrieves a paginated session history for a caisse
// using token-based pagination, newest first.
func (r *PgxCaisseSessionRepository) ListSessionsByCaisse(ctx context.Context, caisseID string, limit int, nextToken *string) ([]domain.CaisseSession, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// Fetch one extra item to determine if there's a next page.
	fetchLimit := limit + 1

	baseQuery := `
		SELECT ` + sessionColumns + `
		FROM caisse_sessions
		WHERE caisse_id = $1
	`
	orderByClause := `ORDER BY created_at DESC, session_id DESC`

	var rows pgx.Rows
	var err error
	args := []interface{}{caisseID}

	if nextToken != nil && *nextToken != "" {
		lastCreatedAt, lastID, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}

		cursorClause := `AND (created_at, session_id) < ($2, $3)`
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
		return nil, nil, apperrors.NewAppError(500, "failed to query sessions for caisse "+caisseID, err)
	}
	defer rows.Close()

	sessions := []models.CaisseSession{}
	for rows.Next() {
		m, err := scanSessionRow(rows)
		if err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan session row for caisse "+caisseID, err)
		}
		sessions = append(sessions, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating session rows for caisse "+caisseID, err)
	}

	var nextTokenVal *string
	if len(sessions) > limit {
		lastSession := sessions[limit-1]
		token := pagination.EncodeToken(lastSession.CreatedAt, lastSession.SessionID)
		nextTokenVal = &token
		sessions = sessions[:limit]
	}

	results := make([]domain.CaisseSession, len(sessions))
	for i, m := range sessions {
		results[i] = mapping.ToDomainCaisseSession(m)
	}
	return results, nextTokenVal, nil
}

func scanSessionRow(row pgx.Row) (*models.CaisseSession, error) {
	var m models.CaisseSession
	var status string
	err := row.Scan(
		&m.SessionID,
		&m.CaisseID,
		&m.UserID,
		&m.OpenedBy,
		&m.ClosedBy,
		&status,
		&m.OpeningAmount,
		&m.ClosingAmount,
		&m.ExpectedClosingAmount,
		&m.TotalCashCounted,
		&m.CashDifference,
		&m.SourceCoffreID,
		&m.DestinationCoffreID,
		&m.OpenedAt,
		&m.ClosedAt,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	m.Status = models.SessionStatus(status)
	return &m, nil
}

// mapSessionUniqueViolation maps the partial unique index backstops to the
// matching domain sentinel.
func mapSessionUniqueViolation(err error, msg string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch pgErr.ConstraintName {
		case "uq_caisse_sessions_open_caisse":
			return apperrors.ErrRegisterBusy
		case "uq_caisse_sessions_open_user":
			return apperrors.ErrUserAlreadyHasOpenSession
		default:
			return apperrors.ErrDuplicate
		}
	}
	return apperrors.NewAppError(500, msg, err)
}
