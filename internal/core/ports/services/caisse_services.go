package services

import (
	"context"

	"github.com/clinicore/treasury-backend/internal/core/domain"
	"github.com/clinicore/treasury-backend/internal/dto"
)

// CaisseSvcFacade defines operations on the register registry.
type CaisseSvcFacade interface {
	CreateCaisse(ctx context.Context, req dto.CreateCaisseRequest, creatorUserID string) (*domain.Caisse, error)
	GetCaisseByID(ctx context.Context, caisseID string) (*domain.Caisse, error)
	ListCaisses(ctx context.Context) ([]domain.Caisse, error)
	DeactivateCaisse(ctx context.Context, caisseID string, actorID string) error
}

// CaisseSessionSvcFacade drives the register session state machine.
// actorID is always the authenticated operator, passed in explicitly.
type CaisseSessionSvcFacade interface {
	OpenSession(ctx context.Context, req dto.OpenSessionRequest, actorID string) (*domain.CaisseSession, error)
	SuspendSession(ctx context.Context, sessionID string, actorID string) (*domain.CaisseSession, error)
	ResumeSession(ctx context.Context, sessionID string, actorID string) (*domain.CaisseSession, error)
	CloseSession(ctx context.Context, sessionID string, req dto.CloseSessionRequest, actorID string) (*domain.CaisseSession, error)
	GetSessionByID(ctx context.Context, sessionID string) (*domain.CaisseSession, error)
	DeleteSession(ctx context.Context, sessionID string, actorID string) error
	ListSessionsByCaisse(ctx context.Context, caisseID string, params dto.ListSessionsParams) (*dto.ListSessionsResponse, error)
}
