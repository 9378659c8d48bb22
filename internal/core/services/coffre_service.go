package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/clinicore/treasury-backend/internal/apperrors"
	"github.com/clinicore/treasury-backend/internal/core/domain"
	portsrepo "github.com/clinicore/treasury-backend/internal/core/ports/repositories"
	portssvc "github.com/clinicore/treasury-backend/internal/core/ports/services"
	"github.com/clinicore/treasury-backend/internal/dto"
	"github.com/clinicore/treasury-backend/internal/middleware"
	"github.com/clinicore/treasury-backend/internal/utils/accounting"
)

var (
	ErrMovementNotAmendable = errors.New("movement is linked to a resolved session or request and can no longer be changed")
	ErrNotACoffreMovement   = errors.New("movement kind is not valid for a coffre")
)

// coffreService provides vault ledger operations.
type coffreService struct {
	coffreRepo  portsrepo.CoffreRepositoryFacade
	sessionRepo portsrepo.CaisseSessionRepositoryFacade
}

// NewCoffreService creates a new CoffreService.
func NewCoffreService(coffreRepo portsrepo.CoffreRepositoryFacade, sessionRepo portsrepo.CaisseSessionRepositoryFacade) portssvc.CoffreSvcFacade {
	return &coffreService{
		coffreRepo:  coffreRepo,
		sessionRepo: sessionRepo,
	}
}

var _ portssvc.CoffreSvcFacade = (*coffreService)(nil)

// CreateCoffre creates a new vault, optionally seeded with an opening balance
// recorded as the first deposit so the balance invariant holds from day one.
func (s *coffreService) CreateCoffre(ctx context.Context, req dto.CreateCoffreRequest, creatorUserID string) (*domain.Coffre, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.OpeningBalance.IsNegative() {
		return nil, fmt.Errorf("%w: opening balance must not be negative", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	coffre := domain.Coffre{
		CoffreID: uuid.NewString(),
		Name:     req.Name,
		Location: req.Location,
		IsActive: true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.coffreRepo.SaveCoffre(ctx, coffre); err != nil {
		logger.Error("Failed to save coffre", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save coffre: %w", err)
	}

	if req.OpeningBalance.IsPositive() {
		movement := domain.CoffreTransaction{
			TransactionID: uuid.NewString(),
			CoffreID:      coffre.CoffreID,
			ActorID:       creatorUserID,
			Kind:          domain.Deposit,
			Amount:        req.OpeningBalance,
			Description:   "Opening balance",
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     creatorUserID,
				LastUpdatedAt: now,
				LastUpdatedBy: creatorUserID,
			},
		}
		if _, err := s.coffreRepo.ApplyMovement(ctx, movement); err != nil {
			logger.Error("Failed to record opening balance", slog.String("error", err.Error()), slog.String("coffre_id", coffre.CoffreID))
			return nil, fmt.Errorf("failed to record opening balance: %w", err)
		}
		coffre.CurrentBalance = req.OpeningBalance
	}

	logger.Info("Coffre created", slog.String("coffre_id", coffre.CoffreID))
	return &coffre, nil
}

// GetCoffreByID retrieves a vault by ID.
func (s *coffreService) GetCoffreByID(ctx context.Context, coffreID string) (*domain.Coffre, error) {
	coffre, err := s.coffreRepo.FindCoffreByID(ctx, coffreID)
	if err != nil {
		return nil, fmt.Errorf("failed to find coffre %s: %w", coffreID, err)
	}
	return coffre, nil
}

// ListCoffres retrieves all vaults.
func (s *coffreService) ListCoffres(ctx context.Context) ([]domain.Coffre, error) {
	coffres, err := s.coffreRepo.ListCoffres(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list coffres: %w", err)
	}
	return coffres, nil
}

// RecordMovement validates and applies a signed movement to the vault ledger.
// The repository performs the atomic insert+balance update under a row lock;
// the inactive-vault and overdraft checks are re-run there against the locked
// row so concurrent callers cannot slip past them.
func (s *coffreService) RecordMovement(ctx context.Context, coffreID string, req dto.RecordMovementRequest, actorID string) (*domain.CoffreTransaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	kind := domain.MovementKind(req.Kind)
	if !kind.IsCoffreKind() {
		return nil, fmt.Errorf("%w: %s", ErrNotACoffreMovement, req.Kind)
	}
	if err := accounting.ValidateMovementAmount(kind, req.Amount); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	now := time.Now().UTC()
	movement := domain.CoffreTransaction{
		TransactionID:   uuid.NewString(),
		CoffreID:        coffreID,
		ActorID:         actorID,
		Kind:            kind,
		Amount:          req.Amount,
		Description:     req.Description,
		LinkedSessionID: req.LinkedSessionID,
		LinkedBankTxID:  req.LinkedBankTxID,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		},
	}

	stored, err := s.coffreRepo.ApplyMovement(ctx, movement)
	if err != nil {
		if !errors.Is(err, apperrors.ErrVaultInactive) && !errors.Is(err, apperrors.ErrInsufficientFunds) {
			logger.Error("Failed to apply coffre movement", slog.String("error", err.Error()), slog.String("coffre_id", coffreID))
		}
		return nil, fmt.Errorf("failed to apply movement to coffre %s: %w", coffreID, err)
	}

	logger.Info("Coffre movement recorded",
		slog.String("coffre_id", coffreID),
		slog.String("transaction_id", stored.TransactionID),
		slog.String("kind", string(stored.Kind)))
	return stored, nil
}

// AmendTransaction replaces the kind/amount of a movement. Only permitted
// while the linked session (if any) is still open; a movement linked to a bank
// transaction is settled through the approval flow and never amended here.
func (s *coffreService) AmendTransaction(ctx context.Context, transactionID string, req dto.AmendMovementRequest, actorID string) (*domain.CoffreTransaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	newKind := domain.MovementKind(req.Kind)
	if !newKind.IsCoffreKind() {
		return nil, fmt.Errorf("%w: %s", ErrNotACoffreMovement, req.Kind)
	}
	if err := accounting.ValidateMovementAmount(newKind, req.Amount); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	if err := s.ensureMovementAmendable(ctx, transactionID); err != nil {
		return nil, err
	}

	amended, err := s.coffreRepo.AmendTransaction(ctx, transactionID, newKind, req.Amount, actorID, time.Now().UTC())
	if err != nil {
		logger.Error("Failed to amend coffre movement", slog.String("error", err.Error()), slog.String("transaction_id", transactionID))
		return nil, fmt.Errorf("failed to amend movement %s: %w", transactionID, err)
	}

	logger.Info("Coffre movement amended", slog.String("transaction_id", transactionID))
	return amended, nil
}

// DeleteTransaction reverses and removes a movement under the same openness
// rule as AmendTransaction.
func (s *coffreService) DeleteTransaction(ctx context.Context, transactionID string, actorID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.ensureMovementAmendable(ctx, transactionID); err != nil {
		return err
	}

	if err := s.coffreRepo.DeleteTransaction(ctx, transactionID, actorID, time.Now().UTC()); err != nil {
		logger.Error("Failed to delete coffre movement", slog.String("error", err.Error()), slog.String("transaction_id", transactionID))
		return fmt.Errorf("failed to delete movement %s: %w", transactionID, err)
	}

	logger.Info("Coffre movement deleted", slog.String("transaction_id", transactionID))
	return nil
}

// ListTransactions retrieves a page of the vault's movement history.
func (s *coffreService) ListTransactions(ctx context.Context, coffreID string, params dto.ListTransactionsParams) (*dto.ListCoffreTransactionsResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	transactions, nextToken, err := s.coffreRepo.ListTransactionsByCoffre(ctx, coffreID, limit, params.NextToken)
	if err != nil {
		return nil, fmt.Errorf("failed to list movements for coffre %s: %w", coffreID, err)
	}

	return &dto.ListCoffreTransactionsResponse{
		Transactions: dto.ToCoffreTransactionResponses(transactions),
		NextToken:    nextToken,
	}, nil
}

// ensureMovementAmendable verifies the movement's links still allow a change:
// a movement tied to a closed session, or to any bank transaction, is frozen.
func (s *coffreService) ensureMovementAmendable(ctx context.Context, transactionID string) error {
	movement, err := s.coffreRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		return fmt.Errorf("failed to find movement %s: %w", transactionID, err)
	}

	if movement.LinkedBankTxID != nil {
		return fmt.Errorf("%w: movement %s is linked to bank transaction %s", ErrMovementNotAmendable, transactionID, *movement.LinkedBankTxID)
	}

	if movement.LinkedSessionID != nil {
		session, err := s.sessionRepo.FindSessionByID(ctx, *movement.LinkedSessionID)
		if err != nil {
			return fmt.Errorf("failed to find linked session %s: %w", *movement.LinkedSessionID, err)
		}
		if session.Status == domain.SessionClosed {
			return fmt.Errorf("%w: session %s is closed", ErrMovementNotAmendable, session.SessionID)
		}
	}

	return nil
}
