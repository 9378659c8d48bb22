package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/clinicore/treasury-backend/internal/core/domain"
	portsrepo "github.com/clinicore/treasury-backend/internal/core/ports/repositories"
	portssvc "github.com/clinicore/treasury-backend/internal/core/ports/services"
	"github.com/clinicore/treasury-backend/internal/dto"
	"github.com/clinicore/treasury-backend/internal/middleware"
)

// caisseService manages the register registry. Caisses are referenced by
// sessions and never mutated beyond deactivation.
type caisseService struct {
	caisseRepo portsrepo.CaisseRepositoryFacade
}

// NewCaisseService creates a new CaisseService.
func NewCaisseService(caisseRepo portsrepo.CaisseRepositoryFacade) portssvc.CaisseSvcFacade {
	return &caisseService{caisseRepo: caisseRepo}
}

var _ portssvc.CaisseSvcFacade = (*caisseService)(nil)

// CreateCaisse registers a new register at a fixed location.
func (s *caisseService) CreateCaisse(ctx context.Context, req dto.CreateCaisseRequest, creatorUserID string) (*domain.Caisse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	now := time.Now().UTC()
	caisse := domain.Caisse{
		CaisseID: uuid.NewString(),
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

	if err := s.caisseRepo.SaveCaisse(ctx, caisse); err != nil {
		logger.Error("Failed to save caisse", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save caisse: %w", err)
	}

	logger.Info("Caisse created", slog.String("caisse_id", caisse.CaisseID))
	return &caisse, nil
}

// GetCaisseByID retrieves a register by ID.
func (s *caisseService) GetCaisseByID(ctx context.Context, caisseID string) (*domain.Caisse, error) {
	caisse, err := s.caisseRepo.FindCaisseByID(ctx, caisseID)
	if err != nil {
		return nil, fmt.Errorf("failed to find caisse %s: %w", caisseID, err)
	}
	return caisse, nil
}

// ListCaisses retrieves all registers.
func (s *caisseService) ListCaisses(ctx context.Context) ([]domain.Caisse, error) {
	caisses, err := s.caisseRepo.ListCaisses(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list caisses: %w", err)
	}
	return caisses, nil
}

// DeactivateCaisse marks a register inactive so no new session can open on it.
// Existing sessions are unaffected and close normally.
func (s *caisseService) DeactivateCaisse(ctx context.Context, caisseID string, actorID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.caisseRepo.DeactivateCaisse(ctx, caisseID, actorID, time.Now().UTC()); err != nil {
		logger.Error("Failed to deactivate caisse", slog.String("error", err.Error()), slog.String("caisse_id", caisseID))
		return fmt.Errorf("failed to deactivate caisse %s: %w", caisseID, err)
	}

	logger.Info("Caisse deactivated", slog.String("caisse_id", caisseID))
	return nil
}
