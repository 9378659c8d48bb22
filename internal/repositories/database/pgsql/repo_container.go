package pgsql

import (
	portsrepo "github.com/clinicore/treasury-backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	caisseRepo := newPgxCaisseRepository(dbPool)
	coffreRepo := newPgxCoffreRepository(dbPool)
	bankRepo := newPgxBankAccountRepository(dbPool)
	sessionRepo := newPgxCaisseSessionRepository(dbPool, coffreRepo)
	approvalRepo := newPgxApprovalRepository(dbPool, bankRepo, coffreRepo)

	return portsrepo.RepositoryProvider{
		CaisseRepo:   caisseRepo,
		SessionRepo:  sessionRepo,
		CoffreRepo:   coffreRepo,
		BankRepo:     bankRepo,
		ApprovalRepo: approvalRepo,
	}
}
