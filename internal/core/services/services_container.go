package services

import (
	portsrepo "github.com/clinicore/treasury-backend/internal/core/ports/repositories"
	portssvc "github.com/clinicore/treasury-backend/internal/core/ports/services"
	"github.com/clinicore/treasury-backend/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Caisse = NewCaisseService(repos.CaisseRepo)
	container.Coffre = NewCoffreService(repos.CoffreRepo, repos.SessionRepo)
	container.Bank = NewBankAccountService(repos.BankRepo)
	container.Session = NewCaisseSessionService(
		repos.SessionRepo,
		repos.CaisseRepo,
		repos.CoffreRepo,
		cfg.DenominationFaceValues,
	)
	container.Approval = NewApprovalService(
		repos.ApprovalRepo,
		repos.BankRepo,
		cfg.ApprovalRequestTTL,
	)

	return container
}
