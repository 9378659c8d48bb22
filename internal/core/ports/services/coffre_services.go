package services

import (
	"context"

	"github.com/clinicore/treasury-backend/internal/core/domain"
	"github.com/clinicore/treasury-backend/internal/dto"
)

// CoffreSvcFacade defines operations on vaults and their ledgers.
type CoffreSvcFacade interface {
	CreateCoffre(ctx context.Context, req dto.CreateCoffreRequest, creatorUserID string) (*domain.Coffre, error)
	GetCoffreByID(ctx context.Context, coffreID string) (*domain.Coffre, error)
	ListCoffres(ctx context.Context) ([]domain.Coffre, error)

	// RecordMovement applies a signed movement to the vault balance and
	// appends the ledger row, atomically.
	RecordMovement(ctx context.Context, coffreID string, req dto.RecordMovementRequest, actorID string) (*domain.CoffreTransaction, error)

	// AmendTransaction replaces kind/amount of a movement whose linked
	// session or request is still unresolved; reverse-then-apply, one tx.
	AmendTransaction(ctx context.Context, transactionID string, req dto.AmendMovementRequest, actorID string) (*domain.CoffreTransaction, error)

	// DeleteTransaction reverses and removes a movement under the same
	// openness rule as AmendTransaction.
	DeleteTransaction(ctx context.Context, transactionID string, actorID string) error

	ListTransactions(ctx context.Context, coffreID string, params dto.ListTransactionsParams) (*dto.ListCoffreTransactionsResponse, error)
}
