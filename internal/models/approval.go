package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ApprovalThreshold maps the approval_thresholds table.
type ApprovalThreshold struct {
	ThresholdID   string          `json:"thresholdID"`
	UserID        string          `json:"userID"`
	MaximumAmount decimal.Decimal `json:"maximumAmount"`
	IsActive      bool            `json:"isActive"`
	AuditFields
}

// ApprovalRequest maps the approval_requests table. CandidateUserIDs is stored
// as a text[] column.
type ApprovalRequest struct {
	RequestID        string          `json:"requestID"`
	TransactionID    string          `json:"transactionID"`
	RequestedBy      string          `json:"requestedBy"`
	Amount           decimal.Decimal `json:"amount"`
	CandidateUserIDs []string        `json:"candidateUserIDs"`
	Status           string          `json:"status"`
	ResolvedBy       *string         `json:"resolvedBy"`
	ResolvedAt       *time.Time      `json:"resolvedAt"`
	AuditFields
}
