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
)

// expiryActorID stamps resolutions performed by the scheduled sweep rather
// than a person.
const expiryActorID = "system:approval-expiry"

// approvalService gates outbound bank transfers behind per-user amount
// thresholds. A user with no active threshold, or an inactive one, has an
// effective cap of zero and every transfer they initiate needs approval.
type approvalService struct {
	approvalRepo portsrepo.ApprovalRepositoryFacade
	bankRepo     portsrepo.BankAccountRepositoryFacade

	requestTTL time.Duration
}

// NewApprovalService creates a new ApprovalService. Money movements of a
// transfer are settled by the approval repository inside its own transactions;
// the bank repository is only consulted for account lookups here.
func NewApprovalService(
	approvalRepo portsrepo.ApprovalRepositoryFacade,
	bankRepo portsrepo.BankAccountRepositoryFacade,
	requestTTL time.Duration,
) portssvc.ApprovalSvcFacade {
	return &approvalService{
		approvalRepo: approvalRepo,
		bankRepo:     bankRepo,
		requestTTL:   requestTTL,
	}
}

var _ portssvc.ApprovalSvcFacade = (*approvalService)(nil)

// SetThreshold sets a user's approval cap, replacing any previous active one.
func (s *approvalService) SetThreshold(ctx context.Context, req dto.SetThresholdRequest, actorID string) (*domain.ApprovalThreshold, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.MaximumAmount.IsNegative() {
		return nil, fmt.Errorf("%w: maximum amount must not be negative", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	threshold := domain.ApprovalThreshold{
		ThresholdID:   uuid.NewString(),
		UserID:        req.UserID,
		MaximumAmount: req.MaximumAmount,
		IsActive:      true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		},
	}

	if err := s.approvalRepo.SaveThreshold(ctx, threshold); err != nil {
		logger.Error("Failed to save threshold", slog.String("error", err.Error()), slog.String("user_id", req.UserID))
		return nil, fmt.Errorf("failed to save threshold for user %s: %w", req.UserID, err)
	}

	logger.Info("Approval threshold set",
		slog.String("user_id", req.UserID),
		slog.String("maximum_amount", req.MaximumAmount.String()))
	return &threshold, nil
}

// GetThresholdForUser retrieves a user's active threshold.
func (s *approvalService) GetThresholdForUser(ctx context.Context, userID string) (*domain.ApprovalThreshold, error) {
	threshold, err := s.approvalRepo.FindActiveThresholdByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find threshold for user %s: %w", userID, err)
	}
	return threshold, nil
}

// effectiveCap resolves the actor's spending cap. No active threshold means a
// cap of zero, so every transfer is gated.
func (s *approvalService) effectiveCap(ctx context.Context, userID string) (decimal.Decimal, error) {
	threshold, err := s.approvalRepo.FindActiveThresholdByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	if !threshold.IsActive {
		return decimal.Zero, nil
	}
	return threshold.MaximumAmount, nil
}

// RequestOutboundTransfer initiates a transfer of vault money toward a bank
// account. The bank transaction starts PENDING; when the amount is within the
// actor's cap it completes immediately, otherwise it stays pending behind a
// new approval request addressed to every user whose cap covers the amount.
// When CoffreID is given the matching vault withdrawal is recorded up front
// and offset later if the request is rejected or expires. The bank row, the
// withdrawal and the completion or request are committed together: a failure
// anywhere leaves no trace.
func (s *approvalService) RequestOutboundTransfer(ctx context.Context, req dto.OutboundTransferRequest, actorID string) (*domain.BankAccountTransaction, *domain.ApprovalRequest, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !req.Amount.IsPositive() {
		return nil, nil, fmt.Errorf("%w: transfer amount must be positive", apperrors.ErrValidation)
	}

	account, err := s.bankRepo.FindBankAccountByID(ctx, req.BankAccountID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find bank account %s: %w", req.BankAccountID, err)
	}
	if !account.IsActive {
		return nil, nil, fmt.Errorf("%w: bank account %s", apperrors.ErrValidation, req.BankAccountID)
	}

	cap, err := s.effectiveCap(ctx, actorID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve threshold for user %s: %w", actorID, err)
	}

	now := time.Now().UTC()
	audit := domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     actorID,
		LastUpdatedAt: now,
		LastUpdatedBy: actorID,
	}

	description := req.Description
	if description == "" {
		description = "Outbound transfer"
	}

	txn := domain.BankAccountTransaction{
		TransactionID: uuid.NewString(),
		BankAccountID: req.BankAccountID,
		Kind:          domain.Credit,
		Amount:        req.Amount,
		Status:        domain.BankTxPending,
		Reference:     req.Reference,
		Description:   description,
		AuditFields:   audit,
	}

	// The cash leaves the vault when the transfer is initiated, not when it
	// is approved. The movement carries the bank transaction ID so the
	// reject and expire paths can find and offset it.
	var movement *domain.CoffreTransaction
	if req.CoffreID != nil {
		movement = &domain.CoffreTransaction{
			TransactionID:  uuid.NewString(),
			CoffreID:       *req.CoffreID,
			ActorID:        actorID,
			Kind:           domain.TransferOut,
			Amount:         req.Amount,
			Description:    fmt.Sprintf("Outbound transfer to bank account %s", req.BankAccountID),
			LinkedBankTxID: &txn.TransactionID,
			AuditFields:    audit,
		}
	}

	var request *domain.ApprovalRequest
	if req.Amount.GreaterThan(cap) {
		candidates, err := s.approvalRepo.ListCandidateUserIDs(ctx, req.Amount)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to list approval candidates: %w", err)
		}
		request = &domain.ApprovalRequest{
			RequestID:        uuid.NewString(),
			TransactionID:    txn.TransactionID,
			RequestedBy:      actorID,
			Amount:           req.Amount,
			CandidateUserIDs: candidates,
			Status:           domain.ApprovalPending,
			AuditFields:      audit,
		}
	}

	stored, err := s.approvalRepo.CreateOutboundTransfer(ctx, txn, movement, request, actorID, now)
	if err != nil {
		if !errors.Is(err, apperrors.ErrVaultInactive) && !errors.Is(err, apperrors.ErrInsufficientFunds) {
			logger.Error("Failed to create outbound transfer", slog.String("error", err.Error()), slog.String("bank_account_id", req.BankAccountID))
		}
		return nil, nil, fmt.Errorf("failed to create outbound transfer: %w", err)
	}

	if request == nil {
		logger.Info("Outbound transfer completed within threshold",
			slog.String("transaction_id", stored.TransactionID),
			slog.String("amount", req.Amount.String()))
		return stored, nil, nil
	}

	logger.Info("Outbound transfer pending approval",
		slog.String("request_id", request.RequestID),
		slog.String("transaction_id", stored.TransactionID),
		slog.String("amount", req.Amount.String()),
		slog.Int("candidate_count", len(request.CandidateUserIDs)))
	return stored, request, nil
}

// ApproveRequest resolves a pending request as APPROVED and completes its bank
// transaction. Only a candidate on the request may approve; the repository
// re-checks both guards under a row lock.
func (s *approvalService) ApproveRequest(ctx context.Context, requestID string, approverID string) (*domain.ApprovalRequest, error) {
	return s.resolve(ctx, requestID, approverID, s.approvalRepo.ApproveRequest, "approved")
}

// RejectRequest resolves a pending request as REJECTED, cancelling the bank
// transaction and returning any withdrawn vault cash through offset movements.
func (s *approvalService) RejectRequest(ctx context.Context, requestID string, approverID string) (*domain.ApprovalRequest, error) {
	return s.resolve(ctx, requestID, approverID, s.approvalRepo.RejectRequest, "rejected")
}

func (s *approvalService) resolve(
	ctx context.Context,
	requestID, approverID string,
	apply func(ctx context.Context, requestID, approverID string, now time.Time) (*domain.ApprovalRequest, error),
	verb string,
) (*domain.ApprovalRequest, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	request, err := s.approvalRepo.FindRequestByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to find approval request %s: %w", requestID, err)
	}
	// The candidate check comes first so an outsider probing a resolved
	// request learns nothing about its state.
	if !request.IsCandidate(approverID) {
		return nil, fmt.Errorf("%w: user %s may not resolve request %s", apperrors.ErrNotAnAuthorizedApprover, approverID, requestID)
	}
	if request.Status != domain.ApprovalPending {
		return nil, fmt.Errorf("%w: request %s is %s", apperrors.ErrRequestAlreadyResolved, requestID, request.Status)
	}

	resolved, err := apply(ctx, requestID, approverID, time.Now().UTC())
	if err != nil {
		if !errors.Is(err, apperrors.ErrRequestAlreadyResolved) && !errors.Is(err, apperrors.ErrNotAnAuthorizedApprover) {
			logger.Error("Failed to resolve approval request", slog.String("error", err.Error()), slog.String("request_id", requestID))
		}
		return nil, fmt.Errorf("failed to resolve approval request %s: %w", requestID, err)
	}

	logger.Info("Approval request "+verb,
		slog.String("request_id", requestID),
		slog.String("resolved_by", approverID))
	return resolved, nil
}

// GetRequestByID retrieves an approval request by ID.
func (s *approvalService) GetRequestByID(ctx context.Context, requestID string) (*domain.ApprovalRequest, error) {
	request, err := s.approvalRepo.FindRequestByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to find approval request %s: %w", requestID, err)
	}
	return request, nil
}

// ListPendingRequests retrieves the pending requests a candidate may resolve.
func (s *approvalService) ListPendingRequests(ctx context.Context, candidateUserID string) ([]domain.ApprovalRequest, error) {
	requests, err := s.approvalRepo.ListPendingRequestsForCandidate(ctx, candidateUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending requests for user %s: %w", candidateUserID, err)
	}
	return requests, nil
}

// ExpireStaleRequests resolves every pending request older than the configured
// TTL, cancelling the gated bank transactions and offsetting vault withdrawals.
// Each request expires in its own transaction, so one failing row never blocks
// the rest of the sweep or any later sweep.
func (s *approvalService) ExpireStaleRequests(ctx context.Context) (int, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	now := time.Now().UTC()
	cutoff := now.Add(-s.requestTTL)

	staleIDs, err := s.approvalRepo.ListStaleRequestIDs(ctx, cutoff)
	if err != nil {
		logger.Error("Failed to list stale approval requests", slog.String("error", err.Error()))
		return 0, fmt.Errorf("failed to list stale approval requests: %w", err)
	}

	expired := 0
	for _, requestID := range staleIDs {
		if _, err := s.approvalRepo.ExpireRequest(ctx, requestID, expiryActorID, now); err != nil {
			// Resolved between the listing and the lock: not ours to expire.
			if errors.Is(err, apperrors.ErrRequestAlreadyResolved) || errors.Is(err, apperrors.ErrNotFound) {
				continue
			}
			logger.Error("Failed to expire approval request",
				slog.String("error", err.Error()), slog.String("request_id", requestID))
			continue
		}
		expired++
	}

	if expired > 0 {
		logger.Info("Expired stale approval requests", slog.Int("count", expired))
	}
	return expired, nil
}
