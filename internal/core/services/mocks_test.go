package services_test

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/clinicore/treasury-backend/internal/core/domain"
	portsrepo "github.com/clinicore/treasury-backend/internal/core/ports/repositories"
)

// --- Mock CaisseRepository ---

type MockCaisseRepository struct {
	mock.Mock
}

var _ portsrepo.CaisseRepositoryFacade = (*MockCaisseRepository)(nil)

func (m *MockCaisseRepository) FindCaisseByID(ctx context.Context, caisseID string) (*domain.Caisse, error) {
	args := m.Called(ctx, caisseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Caisse), args.Error(1)
}

func (m *MockCaisseRepository) ListCaisses(ctx context.Context) ([]domain.Caisse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Caisse), args.Error(1)
}

func (m *MockCaisseRepository) SaveCaisse(ctx context.Context, caisse domain.Caisse) error {
	args := m.Called(ctx, caisse)
	return args.Error(0)
}

func (m *MockCaisseRepository) DeactivateCaisse(ctx context.Context, caisseID string, userID string, now time.Time) error {
	args := m.Called(ctx, caisseID, userID, now)
	return args.Error(0)
}

// --- Mock CoffreRepository ---

type MockCoffreRepository struct {
	mock.Mock
}

var _ portsrepo.CoffreRepositoryFacade = (*MockCoffreRepository)(nil)

func (m *MockCoffreRepository) FindCoffreByID(ctx context.Context, coffreID string) (*domain.Coffre, error) {
	args := m.Called(ctx, coffreID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Coffre), args.Error(1)
}

func (m *MockCoffreRepository) ListCoffres(ctx context.Context) ([]domain.Coffre, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Coffre), args.Error(1)
}

func (m *MockCoffreRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.CoffreTransaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CoffreTransaction), args.Error(1)
}

func (m *MockCoffreRepository) ListTransactionsByCoffre(ctx context.Context, coffreID string, limit int, nextToken *string) ([]domain.CoffreTransaction, *string, error) {
	args := m.Called(ctx, coffreID, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.CoffreTransaction), returnedNextToken, args.Error(2)
}

func (m *MockCoffreRepository) SaveCoffre(ctx context.Context, coffre domain.Coffre) error {
	args := m.Called(ctx, coffre)
	return args.Error(0)
}

func (m *MockCoffreRepository) ApplyMovement(ctx context.Context, movement domain.CoffreTransaction) (*domain.CoffreTransaction, error) {
	args := m.Called(ctx, movement)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CoffreTransaction), args.Error(1)
}

func (m *MockCoffreRepository) AmendTransaction(ctx context.Context, transactionID string, newKind domain.MovementKind, newAmount decimal.Decimal, actorID string, now time.Time) (*domain.CoffreTransaction, error) {
	args := m.Called(ctx, transactionID, newKind, newAmount, actorID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CoffreTransaction), args.Error(1)
}

func (m *MockCoffreRepository) DeleteTransaction(ctx context.Context, transactionID string, actorID string, now time.Time) error {
	args := m.Called(ctx, transactionID, actorID, now)
	return args.Error(0)
}

func (m *MockCoffreRepository) ApplyMovementInTx(ctx context.Context, tx pgx.Tx, movement domain.CoffreTransaction) (*domain.CoffreTransaction, error) {
	args := m.Called(ctx, tx, movement)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CoffreTransaction), args.Error(1)
}

func (m *MockCoffreRepository) OffsetMovementsForBankTxInTx(ctx context.Context, tx pgx.Tx, bankTxID string, actorID string, now time.Time) error {
	args := m.Called(ctx, tx, bankTxID, actorID, now)
	return args.Error(0)
}

// --- Mock CaisseSessionRepository ---

type MockSessionRepository struct {
	mock.Mock
}

var _ portsrepo.CaisseSessionRepositoryFacade = (*MockSessionRepository)(nil)

func (m *MockSessionRepository) FindSessionByID(ctx context.Context, sessionID string) (*domain.CaisseSession, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CaisseSession), args.Error(1)
}

func (m *MockSessionRepository) FindDenominationsBySessionID(ctx context.Context, sessionID string) ([]domain.SessionDenomination, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SessionDenomination), args.Error(1)
}

func (m *MockSessionRepository) ListSessionsByCaisse(ctx context.Context, caisseID string, limit int, nextToken *string) ([]domain.CaisseSession, *string, error) {
	args := m.Called(ctx, caisseID, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.CaisseSession), returnedNextToken, args.Error(2)
}

func (m *MockSessionRepository) OpenSession(ctx context.Context, session domain.CaisseSession, openingMovement *domain.CoffreTransaction) error {
	args := m.Called(ctx, session, openingMovement)
	return args.Error(0)
}

func (m *MockSessionRepository) UpdateSessionStatus(ctx context.Context, sessionID string, from, to domain.SessionStatus, userID string, now time.Time) error {
	args := m.Called(ctx, sessionID, from, to, userID, now)
	return args.Error(0)
}

func (m *MockSessionRepository) CloseSession(ctx context.Context, session domain.CaisseSession, denominations []domain.SessionDenomination, depositMovement *domain.CoffreTransaction) error {
	args := m.Called(ctx, session, denominations, depositMovement)
	return args.Error(0)
}

func (m *MockSessionRepository) DeleteSession(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

// --- Mock BankAccountRepository ---

type MockBankAccountRepository struct {
	mock.Mock
}

var _ portsrepo.BankAccountRepositoryFacade = (*MockBankAccountRepository)(nil)

func (m *MockBankAccountRepository) FindBankAccountByID(ctx context.Context, bankAccountID string) (*domain.BankAccount, error) {
	args := m.Called(ctx, bankAccountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BankAccount), args.Error(1)
}

func (m *MockBankAccountRepository) ListBankAccounts(ctx context.Context) ([]domain.BankAccount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BankAccount), args.Error(1)
}

func (m *MockBankAccountRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.BankAccountTransaction, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BankAccountTransaction), args.Error(1)
}

func (m *MockBankAccountRepository) ListTransactionsByAccount(ctx context.Context, bankAccountID string, limit int, nextToken *string) ([]domain.BankAccountTransaction, *string, error) {
	args := m.Called(ctx, bankAccountID, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.BankAccountTransaction), returnedNextToken, args.Error(2)
}

func (m *MockBankAccountRepository) SaveBankAccount(ctx context.Context, account domain.BankAccount) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockBankAccountRepository) CreateTransaction(ctx context.Context, txn domain.BankAccountTransaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockBankAccountRepository) CreateTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.BankAccountTransaction) error {
	args := m.Called(ctx, tx, txn)
	return args.Error(0)
}

func (m *MockBankAccountRepository) CompleteTransaction(ctx context.Context, transactionID string, actorID string, now time.Time) (*domain.BankAccountTransaction, error) {
	args := m.Called(ctx, transactionID, actorID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BankAccountTransaction), args.Error(1)
}

func (m *MockBankAccountRepository) CancelTransaction(ctx context.Context, transactionID string, actorID string, now time.Time) (*domain.BankAccountTransaction, error) {
	args := m.Called(ctx, transactionID, actorID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BankAccountTransaction), args.Error(1)
}

func (m *MockBankAccountRepository) ReconcileTransaction(ctx context.Context, transactionID string, reconciledBy string, now time.Time) error {
	args := m.Called(ctx, transactionID, reconciledBy, now)
	return args.Error(0)
}

func (m *MockBankAccountRepository) CompleteTransactionInTx(ctx context.Context, tx pgx.Tx, transactionID string, actorID string, now time.Time) (*domain.BankAccountTransaction, error) {
	args := m.Called(ctx, tx, transactionID, actorID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BankAccountTransaction), args.Error(1)
}

func (m *MockBankAccountRepository) CancelTransactionInTx(ctx context.Context, tx pgx.Tx, transactionID string, actorID string, now time.Time) (*domain.BankAccountTransaction, error) {
	args := m.Called(ctx, tx, transactionID, actorID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BankAccountTransaction), args.Error(1)
}

// --- Mock ApprovalRepository ---

type MockApprovalRepository struct {
	mock.Mock
}

var _ portsrepo.ApprovalRepositoryFacade = (*MockApprovalRepository)(nil)

func (m *MockApprovalRepository) FindActiveThresholdByUser(ctx context.Context, userID string) (*domain.ApprovalThreshold, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ApprovalThreshold), args.Error(1)
}

func (m *MockApprovalRepository) ListCandidateUserIDs(ctx context.Context, amount decimal.Decimal) ([]string, error) {
	args := m.Called(ctx, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockApprovalRepository) SaveThreshold(ctx context.Context, threshold domain.ApprovalThreshold) error {
	args := m.Called(ctx, threshold)
	return args.Error(0)
}

func (m *MockApprovalRepository) FindRequestByID(ctx context.Context, requestID string) (*domain.ApprovalRequest, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ApprovalRequest), args.Error(1)
}

func (m *MockApprovalRepository) ListPendingRequestsForCandidate(ctx context.Context, userID string) ([]domain.ApprovalRequest, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ApprovalRequest), args.Error(1)
}

func (m *MockApprovalRepository) CreateOutboundTransfer(ctx context.Context, txn domain.BankAccountTransaction, movement *domain.CoffreTransaction, request *domain.ApprovalRequest, actorID string, now time.Time) (*domain.BankAccountTransaction, error) {
	args := m.Called(ctx, txn, movement, request, actorID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BankAccountTransaction), args.Error(1)
}

func (m *MockApprovalRepository) ListStaleRequestIDs(ctx context.Context, cutoff time.Time) ([]string, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockApprovalRepository) ApproveRequest(ctx context.Context, requestID string, approverID string, now time.Time) (*domain.ApprovalRequest, error) {
	args := m.Called(ctx, requestID, approverID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ApprovalRequest), args.Error(1)
}

func (m *MockApprovalRepository) RejectRequest(ctx context.Context, requestID string, approverID string, now time.Time) (*domain.ApprovalRequest, error) {
	args := m.Called(ctx, requestID, approverID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ApprovalRequest), args.Error(1)
}

func (m *MockApprovalRepository) ExpireRequest(ctx context.Context, requestID string, actorID string, now time.Time) (*domain.ApprovalRequest, error) {
	args := m.Called(ctx, requestID, actorID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ApprovalRequest), args.Error(1)
}
