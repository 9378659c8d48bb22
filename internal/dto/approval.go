package dto

import (
	"time"

	"github.com/clinicore/treasury-backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SetThresholdRequest defines the payload for setting a user's approval cap.
type SetThresholdRequest struct {
	UserID        string          `json:"userID" binding:"required"`
	MaximumAmount decimal.Decimal `json:"maximumAmount"`
}

// ThresholdResponse defines the data returned for an approval threshold.
type ThresholdResponse struct {
	ThresholdID   string          `json:"thresholdID"`
	UserID        string          `json:"userID"`
	MaximumAmount decimal.Decimal `json:"maximumAmount"`
	IsActive      bool            `json:"isActive"`
}

// ToThresholdResponse converts a domain.ApprovalThreshold to its DTO.
func ToThresholdResponse(t *domain.ApprovalThreshold) ThresholdResponse {
	return ThresholdResponse{
		ThresholdID:   t.ThresholdID,
		UserID:        t.UserID,
		MaximumAmount: t.MaximumAmount,
		IsActive:      t.IsActive,
	}
}

// OutboundTransferRequest defines the payload for moving vault money to a bank
// account. CoffreID, when given, records the matching vault withdrawal.
type OutboundTransferRequest struct {
	BankAccountID string          `json:"bankAccountID" binding:"required"`
	Amount        decimal.Decimal `json:"amount"`
	CoffreID      *string         `json:"coffreID,omitempty"`
	Reference     string          `json:"reference"`
	Description   string          `json:"description"`
}

// OutboundTransferResponse carries the bank transaction and, when the amount
// exceeded the actor's threshold, the pending approval request gating it.
type OutboundTransferResponse struct {
	Transaction BankTransactionResponse  `json:"transaction"`
	Approval    *ApprovalRequestResponse `json:"approval,omitempty"`
}

// ApprovalRequestResponse defines the data returned for an approval request.
type ApprovalRequestResponse struct {
	RequestID        string          `json:"requestID"`
	TransactionID    string          `json:"transactionID"`
	RequestedBy      string          `json:"requestedBy"`
	Amount           decimal.Decimal `json:"amount"`
	CandidateUserIDs []string        `json:"candidateUserIDs"`
	Status           string          `json:"status"`
	ResolvedBy       *string         `json:"resolvedBy,omitempty"`
	ResolvedAt       *time.Time      `json:"resolvedAt,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
}

// ToApprovalRequestResponse converts a domain.ApprovalRequest to its DTO.
func ToApprovalRequestResponse(r *domain.ApprovalRequest) ApprovalRequestResponse {
	return ApprovalRequestResponse{
		RequestID:        r.RequestID,
		TransactionID:    r.TransactionID,
		RequestedBy:      r.RequestedBy,
		Amount:           r.Amount,
		CandidateUserIDs: r.CandidateUserIDs,
		Status:           string(r.Status),
		ResolvedBy:       r.ResolvedBy,
		ResolvedAt:       r.ResolvedAt,
		CreatedAt:        r.CreatedAt,
	}
}

// ToApprovalRequestResponses converts a slice of approval requests.
func ToApprovalRequestResponses(rs []domain.ApprovalRequest) []ApprovalRequestResponse {
	out := make([]ApprovalRequestResponse, len(rs))
	for i := range rs {
		out[i] = ToApprovalRequestResponse(&rs[i])
	}
	return out
}
