package mapping

import (
	"github.com/clinicore/treasury-backend/internal/core/domain"
	"github.com/clinicore/treasury-backend/internal/models"
)

// ToModelCoffre converts a domain Coffre to a model Coffre
func ToModelCoffre(d domain.Coffre) models.Coffre {
	return models.Coffre{
		CoffreID:       d.CoffreID,
		Name:           d.Name,
		Location:       d.Location,
		CurrentBalance: d.CurrentBalance,
		IsActive:       d.IsActive,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainCoffre converts a model Coffre to a domain Coffre
func ToDomainCoffre(m models.Coffre) domain.Coffre {
	return domain.Coffre{
		CoffreID:       m.CoffreID,
		Name:           m.Name,
		Location:       m.Location,
		CurrentBalance: m.CurrentBalance,
		IsActive:       m.IsActive,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelCoffreTransaction converts a domain CoffreTransaction to its model
func ToModelCoffreTransaction(d domain.CoffreTransaction) models.CoffreTransaction {
	return models.CoffreTransaction{
		TransactionID:   d.TransactionID,
		CoffreID:        d.CoffreID,
		ActorID:         d.ActorID,
		Kind:            string(d.Kind),
		Amount:          d.Amount,
		Description:     d.Description,
		LinkedSessionID: d.LinkedSessionID,
		LinkedBankTxID:  d.LinkedBankTxID,
		RunningBalance:  d.RunningBalance,
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainCoffreTransaction converts a model CoffreTransaction to its domain form
func ToDomainCoffreTransaction(m models.CoffreTransaction) domain.CoffreTransaction {
	return domain.CoffreTransaction{
		TransactionID:   m.TransactionID,
		CoffreID:        m.CoffreID,
		ActorID:         m.ActorID,
		Kind:            domain.MovementKind(m.Kind),
		Amount:          m.Amount,
		Description:     m.Description,
		LinkedSessionID: m.LinkedSessionID,
		LinkedBankTxID:  m.LinkedBankTxID,
		RunningBalance:  m.RunningBalance,
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainCoffreTransactionSlice converts a slice of coffre transaction models
func ToDomainCoffreTransactionSlice(ms []models.CoffreTransaction) []domain.CoffreTransaction {
	out := make([]domain.CoffreTransaction, len(ms))
	for i, m := range ms {
		out[i] = ToDomainCoffreTransaction(m)
	}
	return out
}
