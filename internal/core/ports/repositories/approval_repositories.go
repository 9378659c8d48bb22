package repositories

import (
	"context"
	"time"

	"github.com/clinicore/treasury-backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ApprovalThresholdReader defines read operations for approval thresholds.
type ApprovalThresholdReader interface {
	// FindActiveThresholdByUser retrieves the single active threshold row of
	// a user. ErrNotFound when the user has none.
	FindActiveThresholdByUser(ctx context.Context, userID string) (*domain.ApprovalThreshold, error)

	// ListCandidateUserIDs returns the IDs of users whose active threshold
	// covers at least the given amount.
	ListCandidateUserIDs(ctx context.Context, amount decimal.Decimal) ([]string, error)
}

// ApprovalThresholdWriter defines write operations for approval thresholds.
type ApprovalThresholdWriter interface {
	// SaveThreshold persists a threshold, deactivating any previous active
	// row of the same user so exactly one stays active.
	SaveThreshold(ctx context.Context, threshold domain.ApprovalThreshold) error
}

// ApprovalRequestReader defines read operations for approval requests.
type ApprovalRequestReader interface {
	// FindRequestByID retrieves a request by its unique identifier.
	FindRequestByID(ctx context.Context, requestID string) (*domain.ApprovalRequest, error)

	// ListPendingRequestsForCandidate retrieves pending requests the given
	// user may resolve, oldest first.
	ListPendingRequestsForCandidate(ctx context.Context, userID string) ([]domain.ApprovalRequest, error)

	// ListStaleRequestIDs returns the IDs of pending requests created before
	// the cutoff, oldest first.
	ListStaleRequestIDs(ctx context.Context, cutoff time.Time) ([]string, error)
}

// ApprovalRequestWriter defines write operations for approval requests.
// Creation and resolution each run in one database transaction together with
// the bank transaction settlement (and coffre offsets on the reject/expire
// paths), so a request is never created or resolved with its money
// half-moved.
type ApprovalRequestWriter interface {
	// CreateOutboundTransfer persists an outbound transfer atomically: the
	// pending bank transaction row, the optional linked coffre withdrawal,
	// and either the immediate completion (request nil) or the pending
	// approval request. On any failure nothing is committed. Returns the
	// stored bank transaction.
	CreateOutboundTransfer(ctx context.Context, txn domain.BankAccountTransaction, movement *domain.CoffreTransaction, request *domain.ApprovalRequest, actorID string, now time.Time) (*domain.BankAccountTransaction, error)

	// ApproveRequest locks the request row, re-checks candidate membership
	// and pending status, marks it APPROVED and completes the linked bank
	// transaction.
	ApproveRequest(ctx context.Context, requestID string, approverID string, now time.Time) (*domain.ApprovalRequest, error)

	// RejectRequest is the same discipline, marking REJECTED, cancelling the
	// linked bank transaction and offsetting any linked coffre movements.
	RejectRequest(ctx context.Context, requestID string, approverID string, now time.Time) (*domain.ApprovalRequest, error)

	// ExpireRequest resolves one pending request as EXPIRED in its own
	// transaction, cancelling the gated bank transaction and offsetting
	// linked coffre movements. A bank transaction already cancelled outside
	// the approval flow is tolerated so the request still expires. A request
	// resolved or locked by someone else meanwhile fails with
	// ErrRequestAlreadyResolved.
	ExpireRequest(ctx context.Context, requestID string, actorID string, now time.Time) (*domain.ApprovalRequest, error)
}

// ApprovalRepositoryFacade combines all approval repository interfaces.
type ApprovalRepositoryFacade interface {
	ApprovalThresholdReader
	ApprovalThresholdWriter
	ApprovalRequestReader
	ApprovalRequestWriter
}
