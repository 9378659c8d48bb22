package repositories

import (
	"context"
	"time"

	"github.com/clinicore/treasury-backend/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// CoffreReader defines read operations for vault data.
type CoffreReader interface {
	// FindCoffreByID retrieves a specific coffre by its unique identifier.
	FindCoffreByID(ctx context.Context, coffreID string) (*domain.Coffre, error)

	// ListCoffres retrieves all coffres, active first.
	ListCoffres(ctx context.Context) ([]domain.Coffre, error)

	// FindTransactionByID retrieves a single coffre ledger movement.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.CoffreTransaction, error)

	// ListTransactionsByCoffre retrieves a cursor-paginated movement history,
	// newest first. Returns the page, the next token (nil on the last page)
	// and an error.
	ListTransactionsByCoffre(ctx context.Context, coffreID string, limit int, nextToken *string) ([]domain.CoffreTransaction, *string, error)
}

// CoffreWriter defines write operations for vault data.
type CoffreWriter interface {
	// SaveCoffre persists a new coffre.
	SaveCoffre(ctx context.Context, coffre domain.Coffre) error

	// ApplyMovement atomically inserts the movement row and updates the
	// coffre's current balance, locking the coffre row first. Returns the
	// stored movement including its running balance.
	ApplyMovement(ctx context.Context, movement domain.CoffreTransaction) (*domain.CoffreTransaction, error)

	// AmendTransaction reverses the old movement and applies the new
	// kind/amount inside one transaction, updating the stored row in place.
	AmendTransaction(ctx context.Context, transactionID string, newKind domain.MovementKind, newAmount decimal.Decimal, actorID string, now time.Time) (*domain.CoffreTransaction, error)

	// DeleteTransaction reverses the movement's balance effect and removes
	// the row, inside one transaction.
	DeleteTransaction(ctx context.Context, transactionID string, actorID string, now time.Time) error
}

// CoffreTransactionSupport defines operations other repositories call while
// holding their own database transaction, so a session open/close or an
// approval resolution moves vault money atomically with its own writes.
type CoffreTransactionSupport interface {
	// ApplyMovementInTx is ApplyMovement running on the caller's transaction.
	ApplyMovementInTx(ctx context.Context, tx pgx.Tx, movement domain.CoffreTransaction) (*domain.CoffreTransaction, error)

	// OffsetMovementsForBankTxInTx inserts offsetting movements for every
	// coffre movement linked to the given bank transaction. Used when a gated
	// transfer is rejected or expires; corrections are new rows, never edits.
	OffsetMovementsForBankTxInTx(ctx context.Context, tx pgx.Tx, bankTxID string, actorID string, now time.Time) error
}

// CoffreRepositoryFacade combines all coffre-related repository interfaces.
type CoffreRepositoryFacade interface {
	CoffreReader
	CoffreWriter
	CoffreTransactionSupport
}
