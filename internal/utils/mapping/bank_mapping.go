package mapping

import (
	"github.com/clinicore/treasury-backend/internal/core/domain"
	"github.com/clinicore/treasury-backend/internal/models"
)

// ToModelBankAccount converts a domain BankAccount to a model BankAccount
func ToModelBankAccount(d domain.BankAccount) models.BankAccount {
	return models.BankAccount{
		BankAccountID:    d.BankAccountID,
		BankID:           d.BankID,
		AccountNumber:    d.AccountNumber,
		CurrencyCode:     d.CurrencyCode,
		CurrentBalance:   d.CurrentBalance,
		AvailableBalance: d.AvailableBalance,
		IsActive:         d.IsActive,
		AuditFields:      ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainBankAccount converts a model BankAccount to a domain BankAccount
func ToDomainBankAccount(m models.BankAccount) domain.BankAccount {
	return domain.BankAccount{
		BankAccountID:    m.BankAccountID,
		BankID:           m.BankID,
		AccountNumber:    m.AccountNumber,
		CurrencyCode:     m.CurrencyCode,
		CurrentBalance:   m.CurrentBalance,
		AvailableBalance: m.AvailableBalance,
		IsActive:         m.IsActive,
		AuditFields:      ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelBankAccountTransaction converts a domain BankAccountTransaction to its model
func ToModelBankAccountTransaction(d domain.BankAccountTransaction) models.BankAccountTransaction {
	return models.BankAccountTransaction{
		TransactionID: d.TransactionID,
		BankAccountID: d.BankAccountID,
		Kind:          string(d.Kind),
		Amount:        d.Amount,
		Status:        string(d.Status),
		Reference:     d.Reference,
		Description:   d.Description,
		ReconciledBy:  d.ReconciledBy,
		ReconciledAt:  d.ReconciledAt,
		AuditFields:   ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainBankAccountTransaction converts a model BankAccountTransaction to its domain form
func ToDomainBankAccountTransaction(m models.BankAccountTransaction) domain.BankAccountTransaction {
	return domain.BankAccountTransaction{
		TransactionID: m.TransactionID,
		BankAccountID: m.BankAccountID,
		Kind:          domain.MovementKind(m.Kind),
		Amount:        m.Amount,
		Status:        domain.BankTransactionStatus(m.Status),
		Reference:     m.Reference,
		Description:   m.Description,
		ReconciledBy:  m.ReconciledBy,
		ReconciledAt:  m.ReconciledAt,
		AuditFields:   ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainBankAccountTransactionSlice converts a slice of bank transaction models
func ToDomainBankAccountTransactionSlice(ms []models.BankAccountTransaction) []domain.BankAccountTransaction {
	out := make([]domain.BankAccountTransaction, len(ms))
	for i, m := range ms {
		out[i] = ToDomainBankAccountTransaction(m)
	}
	return out
}
