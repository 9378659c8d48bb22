package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/clinicore/treasury-backend/internal/apperrors"
	"github.com/clinicore/treasury-backend/internal/core/domain"
	portsrepo "github.com/clinicore/treasury-backend/internal/core/ports/repositories"
	portssvc "github.com/clinicore/treasury-backend/internal/core/ports/services"
	"github.com/clinicore/treasury-backend/internal/dto"
	"github.com/clinicore/treasury-backend/internal/middleware"
	"github.com/clinicore/treasury-backend/internal/utils/denomination"
)

// caisseSessionService drives the register session state machine:
//
//	open -> suspended -> open
//	open -> closed
//
// A suspended session must be resumed before it can close. The single-open
// guards (one non-closed session per caisse and per user) are enforced by the
// repository inside the opening transaction, under a caisse row lock, backed
// by partial unique indexes.
type caisseSessionService struct {
	sessionRepo portsrepo.CaisseSessionRepositoryFacade
	caisseRepo  portsrepo.CaisseRepositoryFacade
	coffreRepo  portsrepo.CoffreRepositoryFacade

	// faceValues is the static note/coin set of the operating currency,
	// supplied by configuration. Empty means any positive face value counts.
	faceValues []decimal.Decimal
}

// NewCaisseSessionService creates a new CaisseSessionService.
func NewCaisseSessionService(
	sessionRepo portsrepo.CaisseSessionRepositoryFacade,
	caisseRepo portsrepo.CaisseRepositoryFacade,
	coffreRepo portsrepo.CoffreRepositoryFacade,
	faceValues []decimal.Decimal,
) portssvc.CaisseSessionSvcFacade {
	return &caisseSessionService{
		sessionRepo: sessionRepo,
		caisseRepo:  caisseRepo,
		coffreRepo:  coffreRepo,
		faceValues:  faceValues,
	}
}

var _ portssvc.CaisseSessionSvcFacade = (*caisseSessionService)(nil)

// OpenSession opens a register session for a custodian, optionally pulling the
// opening float out of a source coffre in the same transaction.
func (s *caisseSessionService) OpenSession(ctx context.Context, req dto.OpenSessionRequest, actorID string) (*domain.CaisseSession, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.OpeningAmount.IsNegative() {
		return nil, fmt.Errorf("%w: opening amount must not be negative", apperrors.ErrValidation)
	}

	// Fast-path check outside the transaction for a clean error; the
	// repository re-checks under the caisse row lock.
	caisse, err := s.caisseRepo.FindCaisseByID(ctx, req.CaisseID)
	if err != nil {
		return nil, fmt.Errorf("failed to find caisse %s: %w", req.CaisseID, err)
	}
	if !caisse.IsActive {
		return nil, fmt.Errorf("%w: caisse %s", apperrors.ErrRegisterInactive, req.CaisseID)
	}

	now := time.Now().UTC()
	session := domain.CaisseSession{
		SessionID:      uuid.NewString(),
		CaisseID:       req.CaisseID,
		UserID:         req.UserID,
		OpenedBy:       actorID,
		Status:         domain.SessionOpen,
		OpeningAmount:  req.OpeningAmount,
		SourceCoffreID: req.SourceCoffreID,
		OpenedAt:       now,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		},
	}

	// The float leaves the vault into the register's custody.
	var openingMovement *domain.CoffreTransaction
	if req.OpeningAmount.IsPositive() && req.SourceCoffreID != nil {
		openingMovement = &domain.CoffreTransaction{
			TransactionID:   uuid.NewString(),
			CoffreID:        *req.SourceCoffreID,
			ActorID:         actorID,
			Kind:            domain.Withdrawal,
			Amount:          req.OpeningAmount,
			Description:     fmt.Sprintf("Opening float for session %s", session.SessionID),
			LinkedSessionID: &session.SessionID,
			AuditFields:     session.AuditFields,
		}
	}

	if err := s.sessionRepo.OpenSession(ctx, session, openingMovement); err != nil {
		if !errors.Is(err, apperrors.ErrRegisterBusy) &&
			!errors.Is(err, apperrors.ErrUserAlreadyHasOpenSession) &&
			!errors.Is(err, apperrors.ErrRegisterInactive) &&
			!errors.Is(err, apperrors.ErrInsufficientFunds) {
			logger.Error("Failed to open session", slog.String("error", err.Error()), slog.String("caisse_id", req.CaisseID))
		}
		return nil, fmt.Errorf("failed to open session on caisse %s: %w", req.CaisseID, err)
	}

	logger.Info("Session opened",
		slog.String("session_id", session.SessionID),
		slog.String("caisse_id", req.CaisseID),
		slog.String("user_id", req.UserID))
	return &session, nil
}

// SuspendSession pauses an open session without ending its custody period.
func (s *caisseSessionService) SuspendSession(ctx context.Context, sessionID string, actorID string) (*domain.CaisseSession, error) {
	return s.transition(ctx, sessionID, actorID, domain.SessionOpen, domain.SessionSuspended)
}

// ResumeSession reopens a suspended session.
func (s *caisseSessionService) ResumeSession(ctx context.Context, sessionID string, actorID string) (*domain.CaisseSession, error) {
	return s.transition(ctx, sessionID, actorID, domain.SessionSuspended, domain.SessionOpen)
}

func (s *caisseSessionService) transition(ctx context.Context, sessionID, actorID string, from, to domain.SessionStatus) (*domain.CaisseSession, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	session, err := s.sessionRepo.FindSessionByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find session %s: %w", sessionID, err)
	}
	if session.Status != from {
		return nil, fmt.Errorf("%w: session %s is %s, expected %s", apperrors.ErrInvalidTransition, sessionID, session.Status, from)
	}

	now := time.Now().UTC()
	if err := s.sessionRepo.UpdateSessionStatus(ctx, sessionID, from, to, actorID, now); err != nil {
		if !errors.Is(err, apperrors.ErrInvalidTransition) {
			logger.Error("Failed to update session status", slog.String("error", err.Error()), slog.String("session_id", sessionID))
		}
		return nil, fmt.Errorf("failed to transition session %s: %w", sessionID, err)
	}

	session.Status = to
	session.LastUpdatedAt = now
	session.LastUpdatedBy = actorID

	logger.Info("Session status changed", slog.String("session_id", sessionID), slog.String("status", string(to)))
	return session, nil
}

// CloseSession counts the drawer, reconciles it against the declared amount
// and ends the custody period. The counted cash is deposited back into the
// destination coffre in the same transaction as the close. Only an OPEN
// session can close; a suspended one must be resumed first.
func (s *caisseSessionService) CloseSession(ctx context.Context, sessionID string, req dto.CloseSessionRequest, actorID string) (*domain.CaisseSession, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	session, err := s.sessionRepo.FindSessionByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find session %s: %w", sessionID, err)
	}
	if session.Status != domain.SessionOpen {
		return nil, fmt.Errorf("%w: session %s is %s", apperrors.ErrSessionNotClosable, sessionID, session.Status)
	}
	if req.DeclaredClosingAmount.IsNegative() {
		return nil, fmt.Errorf("%w: declared closing amount must not be negative", apperrors.ErrValidation)
	}

	lines := make([]denomination.Line, len(req.Denominations))
	for i, d := range req.Denominations {
		lines[i] = denomination.Line{FaceValue: d.FaceValue, Quantity: d.Quantity}
	}
	kept, counted, err := denomination.Reconcile(lines, s.faceValues)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	session.Status = domain.SessionClosed
	session.ClosedBy = actorID
	session.ClosedAt = &now
	session.ClosingAmount = req.DeclaredClosingAmount
	session.TotalCashCounted = counted
	// The declared and counted amounts stay distinct; the difference is
	// computed from the operator's declared value, never overwritten by the
	// count.
	session.CashDifference = req.DeclaredClosingAmount.Sub(counted)
	session.ExpectedClosingAmount = session.OpeningAmount
	session.DestinationCoffreID = req.DestinationCoffreID
	session.LastUpdatedAt = now
	session.LastUpdatedBy = actorID

	denominations := make([]domain.SessionDenomination, len(kept))
	for i, line := range kept {
		denominations[i] = domain.SessionDenomination{
			SessionID: sessionID,
			FaceValue: line.FaceValue,
			Quantity:  line.Quantity,
			LineTotal: line.Total(),
		}
	}

	// The counted cash returns to vault custody.
	var depositMovement *domain.CoffreTransaction
	if req.DestinationCoffreID != nil && counted.IsPositive() {
		depositMovement = &domain.CoffreTransaction{
			TransactionID:   uuid.NewString(),
			CoffreID:        *req.DestinationCoffreID,
			ActorID:         actorID,
			Kind:            domain.Deposit,
			Amount:          counted,
			Description:     fmt.Sprintf("Closing deposit for session %s", sessionID),
			LinkedSessionID: &session.SessionID,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     actorID,
				LastUpdatedAt: now,
				LastUpdatedBy: actorID,
			},
		}
	}

	if err := s.sessionRepo.CloseSession(ctx, *session, denominations, depositMovement); err != nil {
		if !errors.Is(err, apperrors.ErrSessionNotClosable) {
			logger.Error("Failed to close session", slog.String("error", err.Error()), slog.String("session_id", sessionID))
		}
		return nil, fmt.Errorf("failed to close session %s: %w", sessionID, err)
	}

	session.Denominations = denominations

	logger.Info("Session closed",
		slog.String("session_id", sessionID),
		slog.String("total_cash_counted", counted.String()),
		slog.String("cash_difference", session.CashDifference.String()))
	return session, nil
}

// GetSessionByID retrieves a session including its denomination rows once closed.
func (s *caisseSessionService) GetSessionByID(ctx context.Context, sessionID string) (*domain.CaisseSession, error) {
	session, err := s.sessionRepo.FindSessionByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find session %s: %w", sessionID, err)
	}

	if session.Status == domain.SessionClosed {
		denominations, err := s.sessionRepo.FindDenominationsBySessionID(ctx, sessionID)
		if err != nil {
			return nil, fmt.Errorf("failed to load denominations for session %s: %w", sessionID, err)
		}
		session.Denominations = denominations
	}

	return session, nil
}

// DeleteSession removes a closed session and its denomination rows. The coffre
// movements it produced stay in the vault ledger; deleting them would break
// balance replay.
func (s *caisseSessionService) DeleteSession(ctx context.Context, sessionID string, actorID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	session, err := s.sessionRepo.FindSessionByID(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to find session %s: %w", sessionID, err)
	}
	if session.Status != domain.SessionClosed {
		return fmt.Errorf("%w: session %s is %s", apperrors.ErrCannotDeleteOpenSession, sessionID, session.Status)
	}

	if err := s.sessionRepo.DeleteSession(ctx, sessionID); err != nil {
		logger.Error("Failed to delete session", slog.String("error", err.Error()), slog.String("session_id", sessionID))
		return fmt.Errorf("failed to delete session %s: %w", sessionID, err)
	}

	logger.Info("Session deleted", slog.String("session_id", sessionID), slog.String("deleted_by", actorID))
	return nil
}

// ListSessionsByCaisse retrieves a page of a register's session history.
func (s *caisseSessionService) ListSessionsByCaisse(ctx context.Context, caisseID string, params dto.ListSessionsParams) (*dto.ListSessionsResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	sessions, nextToken, err := s.sessionRepo.ListSessionsByCaisse(ctx, caisseID, limit, params.NextToken)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions for caisse %s: %w", caisseID, err)
	}

	responses := make([]dto.SessionResponse, len(sessions))
	for i := range sessions {
		responses[i] = dto.ToSessionResponse(&sessions[i])
	}

	return &dto.ListSessionsResponse{Sessions: responses, NextToken: nextToken}, nil
}
