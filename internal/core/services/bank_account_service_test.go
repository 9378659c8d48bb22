package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/clinicore/treasury-backend/internal/apperrors"
	"github.com/clinicore/treasury-backend/internal/core/domain"
	portssvc "github.com/clinicore/treasury-backend/internal/core/ports/services"
	"github.com/clinicore/treasury-backend/internal/core/services"
	"github.com/clinicore/treasury-backend/internal/dto"
)

type BankAccountServiceTestSuite struct {
	suite.Suite
	mockBankRepo *MockBankAccountRepository
	service      portssvc.BankAccountSvcFacade
	actorID      string
	account      domain.BankAccount
}

func (suite *BankAccountServiceTestSuite) SetupTest() {
	suite.mockBankRepo = new(MockBankAccountRepository)
	suite.service = services.NewBankAccountService(suite.mockBankRepo)

	suite.actorID = uuid.NewString()
	suite.account = domain.BankAccount{
		BankAccountID: uuid.NewString(),
		BankID:        "SG",
		AccountNumber: "FR7630003",
		CurrencyCode:  "EUR",
		IsActive:      true,
	}
}

func (suite *BankAccountServiceTestSuite) TestCreateBankAccount_Success() {
	ctx := context.Background()
	req := dto.CreateBankAccountRequest{BankID: "SG", AccountNumber: "FR7630003", CurrencyCode: "EUR"}

	suite.mockBankRepo.On("SaveBankAccount", ctx, mock.MatchedBy(func(a domain.BankAccount) bool {
		return a.BankID == req.BankID && a.IsActive && a.CurrentBalance.IsZero() && a.AvailableBalance.IsZero()
	})).Return(nil).Once()

	account, err := suite.service.CreateBankAccount(ctx, req, suite.actorID)

	suite.Require().NoError(err)
	suite.NotEmpty(account.BankAccountID)
	suite.Equal(suite.actorID, account.CreatedBy)
	suite.mockBankRepo.AssertExpectations(suite.T())
}

func (suite *BankAccountServiceTestSuite) TestCreateTransaction_StartsPending() {
	ctx := context.Background()
	req := dto.CreateBankTransactionRequest{Kind: "DEBIT", Amount: decimal.NewFromInt(400), Reference: "INV-12"}

	suite.mockBankRepo.On("FindBankAccountByID", ctx, suite.account.BankAccountID).Return(&suite.account, nil).Once()
	suite.mockBankRepo.On("CreateTransaction", ctx, mock.MatchedBy(func(txn domain.BankAccountTransaction) bool {
		return txn.Status == domain.BankTxPending && txn.Kind == domain.Debit && txn.Amount.Equal(req.Amount)
	})).Return(nil).Once()

	txn, err := suite.service.CreateTransaction(ctx, suite.account.BankAccountID, req, suite.actorID)

	suite.Require().NoError(err)
	suite.Equal(domain.BankTxPending, txn.Status)
	suite.mockBankRepo.AssertExpectations(suite.T())
}

func (suite *BankAccountServiceTestSuite) TestCreateTransaction_CoffreKindRejected() {
	ctx := context.Background()
	req := dto.CreateBankTransactionRequest{Kind: "DEPOSIT", Amount: decimal.NewFromInt(5)}

	_, err := suite.service.CreateTransaction(ctx, suite.account.BankAccountID, req, suite.actorID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrNotABankMovement)
	suite.mockBankRepo.AssertNotCalled(suite.T(), "CreateTransaction")
}

func (suite *BankAccountServiceTestSuite) TestCreateTransaction_ZeroAmountRejected() {
	ctx := context.Background()
	req := dto.CreateBankTransactionRequest{Kind: "CREDIT", Amount: decimal.Zero}

	_, err := suite.service.CreateTransaction(ctx, suite.account.BankAccountID, req, suite.actorID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *BankAccountServiceTestSuite) TestCreateTransaction_InactiveAccount() {
	ctx := context.Background()
	inactive := suite.account
	inactive.IsActive = false
	req := dto.CreateBankTransactionRequest{Kind: "CREDIT", Amount: decimal.NewFromInt(5)}

	suite.mockBankRepo.On("FindBankAccountByID", ctx, inactive.BankAccountID).Return(&inactive, nil).Once()

	_, err := suite.service.CreateTransaction(ctx, inactive.BankAccountID, req, suite.actorID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockBankRepo.AssertNotCalled(suite.T(), "CreateTransaction")
}

func (suite *BankAccountServiceTestSuite) TestCompleteTransaction_Success() {
	ctx := context.Background()
	transactionID := uuid.NewString()
	completed := &domain.BankAccountTransaction{TransactionID: transactionID, Status: domain.BankTxCompleted}

	suite.mockBankRepo.On("CompleteTransaction", ctx, transactionID, suite.actorID, mock.AnythingOfType("time.Time")).
		Return(completed, nil).Once()

	txn, err := suite.service.CompleteTransaction(ctx, transactionID, suite.actorID)

	suite.Require().NoError(err)
	suite.Equal(domain.BankTxCompleted, txn.Status)
}

func (suite *BankAccountServiceTestSuite) TestCompleteTransaction_AlreadyCompleted() {
	ctx := context.Background()
	transactionID := uuid.NewString()

	suite.mockBankRepo.On("CompleteTransaction", ctx, transactionID, suite.actorID, mock.AnythingOfType("time.Time")).
		Return(nil, apperrors.ErrAlreadyCompleted).Once()

	_, err := suite.service.CompleteTransaction(ctx, transactionID, suite.actorID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrAlreadyCompleted)
}

func (suite *BankAccountServiceTestSuite) TestCancelTransaction_GatedBehindApproval() {
	ctx := context.Background()
	transactionID := uuid.NewString()

	// Transfers awaiting approval settle through the request resolution, not
	// through a direct cancel.
	suite.mockBankRepo.On("CancelTransaction", ctx, transactionID, suite.actorID, mock.AnythingOfType("time.Time")).
		Return(nil, apperrors.ErrTransferPendingApproval).Once()

	_, err := suite.service.CancelTransaction(ctx, transactionID, suite.actorID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrTransferPendingApproval)
}

func (suite *BankAccountServiceTestSuite) TestCancelTransaction_AlreadyCancelled() {
	ctx := context.Background()
	transactionID := uuid.NewString()

	suite.mockBankRepo.On("CancelTransaction", ctx, transactionID, suite.actorID, mock.AnythingOfType("time.Time")).
		Return(nil, apperrors.ErrAlreadyCancelled).Once()

	_, err := suite.service.CancelTransaction(ctx, transactionID, suite.actorID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrAlreadyCancelled)
}

func (suite *BankAccountServiceTestSuite) TestReconcileTransaction_Success() {
	ctx := context.Background()
	transactionID := uuid.NewString()

	suite.mockBankRepo.On("ReconcileTransaction", ctx, transactionID, suite.actorID, mock.AnythingOfType("time.Time")).
		Return(nil).Once()

	err := suite.service.ReconcileTransaction(ctx, transactionID, suite.actorID)

	suite.Require().NoError(err)
	suite.mockBankRepo.AssertExpectations(suite.T())
}

func (suite *BankAccountServiceTestSuite) TestListTransactions_PassesCursor() {
	ctx := context.Background()
	token := "cursor"
	params := dto.ListTransactionsParams{Limit: 5, NextToken: &token}
	transactions := []domain.BankAccountTransaction{{TransactionID: uuid.NewString()}}

	suite.mockBankRepo.On("ListTransactionsByAccount", ctx, suite.account.BankAccountID, 5, &token).
		Return(transactions, nil, nil).Once()

	page, err := suite.service.ListTransactions(ctx, suite.account.BankAccountID, params)

	suite.Require().NoError(err)
	suite.Len(page.Transactions, 1)
	suite.Nil(page.NextToken)
}

func TestBankAccountServiceTestSuite(t *testing.T) {
	suite.Run(t, new(BankAccountServiceTestSuite))
}
