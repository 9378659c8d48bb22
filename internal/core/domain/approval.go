package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ApprovalThreshold caps the bank transfer amount a user may complete without a
// second pair of eyes. One active row per user; a user without an active row is
// treated as having a threshold of zero.
type ApprovalThreshold struct {
	ThresholdID   string          `json:"thresholdID"` // Primary Key (UUID)
	UserID        string          `json:"userID"`
	MaximumAmount decimal.Decimal `json:"maximumAmount"`
	IsActive      bool            `json:"isActive"`
	AuditFields
}

// ApprovalStatus is the state of an approval request.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "PENDING"
	ApprovalApproved ApprovalStatus = "APPROVED"
	ApprovalRejected ApprovalStatus = "REJECTED"
	// ApprovalExpired is set by the scheduled sweep when a pending request
	// outlives its TTL. Terminal, like APPROVED/REJECTED.
	ApprovalExpired ApprovalStatus = "EXPIRED"
)

// ApprovalRequest holds a bank transaction above the requester's threshold
// until exactly one candidate resolves it. Terminal once resolved.
type ApprovalRequest struct {
	RequestID        string          `json:"requestID"`     // Primary Key (UUID)
	TransactionID    string          `json:"transactionID"` // FK -> bank_account_transactions
	RequestedBy      string          `json:"requestedBy"`
	Amount           decimal.Decimal `json:"amount"`
	CandidateUserIDs []string        `json:"candidateUserIDs"`
	Status           ApprovalStatus  `json:"status"`
	ResolvedBy       *string         `json:"resolvedBy,omitempty"`
	ResolvedAt       *time.Time      `json:"resolvedAt,omitempty"`
	AuditFields
}

// IsCandidate reports whether the given user may resolve this request.
func (r *ApprovalRequest) IsCandidate(userID string) bool {
	for _, id := range r.CandidateUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}
