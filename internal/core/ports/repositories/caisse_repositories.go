package repositories

import (
	"context"
	"time"

	"github.com/clinicore/treasury-backend/internal/core/domain"
)

// CaisseReader defines read operations for register data.
type CaisseReader interface {
	// FindCaisseByID retrieves a specific caisse by its unique identifier.
	FindCaisseByID(ctx context.Context, caisseID string) (*domain.Caisse, error)

	// ListCaisses retrieves all caisses.
	ListCaisses(ctx context.Context) ([]domain.Caisse, error)
}

// CaisseWriter defines write operations for register data.
type CaisseWriter interface {
	// SaveCaisse persists a new caisse.
	SaveCaisse(ctx context.Context, caisse domain.Caisse) error

	// DeactivateCaisse marks a caisse as inactive. Location and identity are
	// immutable; deactivation is the only post-creation mutation.
	DeactivateCaisse(ctx context.Context, caisseID string, userID string, now time.Time) error
}

// CaisseRepositoryFacade combines all caisse-related repository interfaces.
type CaisseRepositoryFacade interface {
	CaisseReader
	CaisseWriter
}

// CaisseSessionReader defines read operations for register sessions.
type CaisseSessionReader interface {
	// FindSessionByID retrieves a session by its unique identifier.
	FindSessionByID(ctx context.Context, sessionID string) (*domain.CaisseSession, error)

	// FindDenominationsBySessionID retrieves the counted denomination rows of
	// a closed session.
	FindDenominationsBySessionID(ctx context.Context, sessionID string) ([]domain.SessionDenomination, error)

	// ListSessionsByCaisse retrieves sessions of a caisse, newest first.
	ListSessionsByCaisse(ctx context.Context, caisseID string, limit int, nextToken *string) ([]domain.CaisseSession, *string, error)
}

// CaisseSessionWriter defines write operations for register sessions. Every
// method runs inside a single database transaction: the single-open-session
// guards lock the caisse row before checking, and float movements land in the
// coffre ledger atomically with the session write.
type CaisseSessionWriter interface {
	// OpenSession inserts the session after verifying, under a caisse row
	// lock, that the caisse is active and that neither the caisse nor the
	// user has a non-closed session. When openingMovement is non-nil the
	// opening float leaves the source coffre in the same transaction.
	OpenSession(ctx context.Context, session domain.CaisseSession, openingMovement *domain.CoffreTransaction) error

	// UpdateSessionStatus transitions a session between open and suspended.
	// The update is guarded by the expected current status; zero rows
	// affected surfaces as ErrInvalidTransition.
	UpdateSessionStatus(ctx context.Context, sessionID string, from, to domain.SessionStatus, userID string, now time.Time) error

	// CloseSession stamps the closing fields, persists the denomination rows
	// and, when depositMovement is non-nil, deposits the counted cash into
	// the destination coffre, all in one transaction. The update is guarded
	// on status OPEN.
	CloseSession(ctx context.Context, session domain.CaisseSession, denominations []domain.SessionDenomination, depositMovement *domain.CoffreTransaction) error

	// DeleteSession removes a closed session and cascades its denomination
	// rows.
	DeleteSession(ctx context.Context, sessionID string) error
}

// CaisseSessionRepositoryFacade combines all session repository interfaces.
type CaisseSessionRepositoryFacade interface {
	CaisseSessionReader
	CaisseSessionWriter
}
