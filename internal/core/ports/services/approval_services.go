package services

import (
	"context"

	"github.com/clinicore/treasury-backend/internal/core/domain"
	"github.com/clinicore/treasury-backend/internal/dto"
)

// ApprovalSvcFacade gates outbound bank transfers above per-user thresholds.
type ApprovalSvcFacade interface {
	SetThreshold(ctx context.Context, req dto.SetThresholdRequest, actorID string) (*domain.ApprovalThreshold, error)
	GetThresholdForUser(ctx context.Context, userID string) (*domain.ApprovalThreshold, error)

	// RequestOutboundTransfer moves coffre money toward a bank account. Within
	// the actor's threshold the bank transaction completes immediately and the
	// returned request is nil; above it the transaction stays PENDING behind
	// the returned pending ApprovalRequest.
	RequestOutboundTransfer(ctx context.Context, req dto.OutboundTransferRequest, actorID string) (*domain.BankAccountTransaction, *domain.ApprovalRequest, error)

	ApproveRequest(ctx context.Context, requestID string, approverID string) (*domain.ApprovalRequest, error)
	RejectRequest(ctx context.Context, requestID string, approverID string) (*domain.ApprovalRequest, error)

	GetRequestByID(ctx context.Context, requestID string) (*domain.ApprovalRequest, error)
	ListPendingRequests(ctx context.Context, candidateUserID string) ([]domain.ApprovalRequest, error)

	// ExpireStaleRequests resolves pending requests older than the configured
	// TTL. Invoked by the scheduled sweep; returns how many were expired.
	ExpireStaleRequests(ctx context.Context) (int, error)
}
