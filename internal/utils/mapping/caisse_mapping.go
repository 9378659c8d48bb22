package mapping

import (
	"github.com/clinicore/treasury-backend/internal/core/domain"
	"github.com/clinicore/treasury-backend/internal/models"
)

// ToModelCaisse converts a domain Caisse to a model Caisse
func ToModelCaisse(d domain.Caisse) models.Caisse {
	return models.Caisse{
		CaisseID:    d.CaisseID,
		Name:        d.Name,
		Location:    d.Location,
		IsActive:    d.IsActive,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainCaisse converts a model Caisse to a domain Caisse
func ToDomainCaisse(m models.Caisse) domain.Caisse {
	return domain.Caisse{
		CaisseID:    m.CaisseID,
		Name:        m.Name,
		Location:    m.Location,
		IsActive:    m.IsActive,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelCaisseSession converts a domain CaisseSession to a model CaisseSession
func ToModelCaisseSession(d domain.CaisseSession) models.CaisseSession {
	return models.CaisseSession{
		SessionID:             d.SessionID,
		CaisseID:              d.CaisseID,
		UserID:                d.UserID,
		OpenedBy:              d.OpenedBy,
		ClosedBy:              d.ClosedBy,
		Status:                models.SessionStatus(d.Status),
		OpeningAmount:         d.OpeningAmount,
		ClosingAmount:         d.ClosingAmount,
		ExpectedClosingAmount: d.ExpectedClosingAmount,
		TotalCashCounted:      d.TotalCashCounted,
		CashDifference:        d.CashDifference,
		SourceCoffreID:        d.SourceCoffreID,
		DestinationCoffreID:   d.DestinationCoffreID,
		OpenedAt:              d.OpenedAt,
		ClosedAt:              d.ClosedAt,
		AuditFields:           ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainCaisseSession converts a model CaisseSession to a domain CaisseSession
func ToDomainCaisseSession(m models.CaisseSession) domain.CaisseSession {
	return domain.CaisseSession{
		SessionID:             m.SessionID,
		CaisseID:              m.CaisseID,
		UserID:                m.UserID,
		OpenedBy:              m.OpenedBy,
		ClosedBy:              m.ClosedBy,
		Status:                domain.SessionStatus(m.Status),
		OpeningAmount:         m.OpeningAmount,
		ClosingAmount:         m.ClosingAmount,
		ExpectedClosingAmount: m.ExpectedClosingAmount,
		TotalCashCounted:      m.TotalCashCounted,
		CashDifference:        m.CashDifference,
		SourceCoffreID:        m.SourceCoffreID,
		DestinationCoffreID:   m.DestinationCoffreID,
		OpenedAt:              m.OpenedAt,
		ClosedAt:              m.ClosedAt,
		AuditFields:           ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelSessionDenomination converts a domain SessionDenomination to its model
func ToModelSessionDenomination(d domain.SessionDenomination) models.CaisseSessionDenomination {
	return models.CaisseSessionDenomination{
		SessionID: d.SessionID,
		FaceValue: d.FaceValue,
		Quantity:  d.Quantity,
		LineTotal: d.LineTotal,
	}
}

// ToDomainSessionDenomination converts a model CaisseSessionDenomination to its domain form
func ToDomainSessionDenomination(m models.CaisseSessionDenomination) domain.SessionDenomination {
	return domain.SessionDenomination{
		SessionID: m.SessionID,
		FaceValue: m.FaceValue,
		Quantity:  m.Quantity,
		LineTotal: m.LineTotal,
	}
}

// ToDomainSessionDenominationSlice converts a slice of denomination models
func ToDomainSessionDenominationSlice(ms []models.CaisseSessionDenomination) []domain.SessionDenomination {
	out := make([]domain.SessionDenomination, len(ms))
	for i, m := range ms {
		out[i] = ToDomainSessionDenomination(m)
	}
	return out
}
