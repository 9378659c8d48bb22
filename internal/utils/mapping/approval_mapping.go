package mapping

import (
	"github.com/clinicore/treasury-backend/internal/core/domain"
	"github.com/clinicore/treasury-backend/internal/models"
)

// ToModelApprovalThreshold converts a domain ApprovalThreshold to its model
func ToModelApprovalThreshold(d domain.ApprovalThreshold) models.ApprovalThreshold {
	return models.ApprovalThreshold{
		ThresholdID:   d.ThresholdID,
		UserID:        d.UserID,
		MaximumAmount: d.MaximumAmount,
		IsActive:      d.IsActive,
		AuditFields:   ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainApprovalThreshold converts a model ApprovalThreshold to its domain form
func ToDomainApprovalThreshold(m models.ApprovalThreshold) domain.ApprovalThreshold {
	return domain.ApprovalThreshold{
		ThresholdID:   m.ThresholdID,
		UserID:        m.UserID,
		MaximumAmount: m.MaximumAmount,
		IsActive:      m.IsActive,
		AuditFields:   ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelApprovalRequest converts a domain ApprovalRequest to its model
func ToModelApprovalRequest(d domain.ApprovalRequest) models.ApprovalRequest {
	return models.ApprovalRequest{
		RequestID:        d.RequestID,
		TransactionID:    d.TransactionID,
		RequestedBy:      d.RequestedBy,
		Amount:           d.Amount,
		CandidateUserIDs: d.CandidateUserIDs,
		Status:           string(d.Status),
		ResolvedBy:       d.ResolvedBy,
		ResolvedAt:       d.ResolvedAt,
		AuditFields:      ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainApprovalRequest converts a model ApprovalRequest to its domain form
func ToDomainApprovalRequest(m models.ApprovalRequest) domain.ApprovalRequest {
	return domain.ApprovalRequest{
		RequestID:        m.RequestID,
		TransactionID:    m.TransactionID,
		RequestedBy:      m.RequestedBy,
		Amount:           m.Amount,
		CandidateUserIDs: m.CandidateUserIDs,
		Status:           domain.ApprovalStatus(m.Status),
		ResolvedBy:       m.ResolvedBy,
		ResolvedAt:       m.ResolvedAt,
		AuditFields:      ToDomainAuditFields(m.AuditFields),
	}
}
