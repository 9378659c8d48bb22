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

type CoffreServiceTestSuite struct {
	suite.Suite
	mockCoffreRepo  *MockCoffreRepository
	mockSessionRepo *MockSessionRepository
	service         portssvc.CoffreSvcFacade
	actorID         string
	coffreID        string
}

func (suite *CoffreServiceTestSuite) SetupTest() {
	suite.mockCoffreRepo = new(MockCoffreRepository)
	suite.mockSessionRepo = new(MockSessionRepository)
	suite.service = services.NewCoffreService(suite.mockCoffreRepo, suite.mockSessionRepo)

	suite.actorID = uuid.NewString()
	suite.coffreID = uuid.NewString()
}

func (suite *CoffreServiceTestSuite) TestCreateCoffre_WithOpeningBalance() {
	ctx := context.Background()
	req := dto.CreateCoffreRequest{
		Name:           "Main vault",
		Location:       "Basement",
		OpeningBalance: decimal.NewFromInt(10000),
	}

	suite.mockCoffreRepo.On("SaveCoffre", ctx, mock.MatchedBy(func(c domain.Coffre) bool {
		return c.Name == req.Name && c.IsActive
	})).Return(nil).Once()
	suite.mockCoffreRepo.On("ApplyMovement", ctx, mock.MatchedBy(func(mv domain.CoffreTransaction) bool {
		return mv.Kind == domain.Deposit && mv.Amount.Equal(req.OpeningBalance)
	})).Return(&domain.CoffreTransaction{}, nil).Once()

	coffre, err := suite.service.CreateCoffre(ctx, req, suite.actorID)

	suite.Require().NoError(err)
	suite.Require().NotNil(coffre)
	suite.True(coffre.CurrentBalance.Equal(req.OpeningBalance))
	suite.mockCoffreRepo.AssertExpectations(suite.T())
}

func (suite *CoffreServiceTestSuite) TestCreateCoffre_ZeroBalanceSkipsMovement() {
	ctx := context.Background()
	req := dto.CreateCoffreRequest{Name: "Side vault", Location: "Back office"}

	suite.mockCoffreRepo.On("SaveCoffre", ctx, mock.AnythingOfType("domain.Coffre")).Return(nil).Once()

	coffre, err := suite.service.CreateCoffre(ctx, req, suite.actorID)

	suite.Require().NoError(err)
	suite.True(coffre.CurrentBalance.IsZero())
	suite.mockCoffreRepo.AssertNotCalled(suite.T(), "ApplyMovement")
}

func (suite *CoffreServiceTestSuite) TestRecordMovement_Success() {
	ctx := context.Background()
	req := dto.RecordMovementRequest{
		Kind:        "DEPOSIT",
		Amount:      decimal.NewFromInt(300),
		Description: "Cash drop",
	}

	stored := &domain.CoffreTransaction{
		TransactionID:  uuid.NewString(),
		CoffreID:       suite.coffreID,
		Kind:           domain.Deposit,
		Amount:         req.Amount,
		RunningBalance: decimal.NewFromInt(1300),
	}
	suite.mockCoffreRepo.On("ApplyMovement", ctx, mock.MatchedBy(func(mv domain.CoffreTransaction) bool {
		return mv.CoffreID == suite.coffreID && mv.Kind == domain.Deposit && mv.ActorID == suite.actorID
	})).Return(stored, nil).Once()

	movement, err := suite.service.RecordMovement(ctx, suite.coffreID, req, suite.actorID)

	suite.Require().NoError(err)
	suite.True(movement.RunningBalance.Equal(decimal.NewFromInt(1300)))
	suite.mockCoffreRepo.AssertExpectations(suite.T())
}

func (suite *CoffreServiceTestSuite) TestRecordMovement_BankKindRejected() {
	ctx := context.Background()
	req := dto.RecordMovementRequest{Kind: "CREDIT", Amount: decimal.NewFromInt(10)}

	_, err := suite.service.RecordMovement(ctx, suite.coffreID, req, suite.actorID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrNotACoffreMovement)
	suite.mockCoffreRepo.AssertNotCalled(suite.T(), "ApplyMovement")
}

func (suite *CoffreServiceTestSuite) TestRecordMovement_NegativeAdjustmentAllowed() {
	ctx := context.Background()
	// Shrink adjustments carry their sign in the amount itself.
	req := dto.RecordMovementRequest{Kind: "ADJUSTMENT", Amount: decimal.NewFromInt(-40), Description: "Count correction"}

	stored := &domain.CoffreTransaction{
		TransactionID:  uuid.NewString(),
		CoffreID:       suite.coffreID,
		Kind:           domain.Adjustment,
		Amount:         req.Amount,
		RunningBalance: decimal.NewFromInt(960),
	}
	suite.mockCoffreRepo.On("ApplyMovement", ctx, mock.MatchedBy(func(mv domain.CoffreTransaction) bool {
		return mv.Kind == domain.Adjustment && mv.Amount.Equal(decimal.NewFromInt(-40))
	})).Return(stored, nil).Once()

	movement, err := suite.service.RecordMovement(ctx, suite.coffreID, req, suite.actorID)

	suite.Require().NoError(err)
	suite.True(movement.Amount.IsNegative())
	suite.mockCoffreRepo.AssertExpectations(suite.T())
}

func (suite *CoffreServiceTestSuite) TestRecordMovement_ZeroAdjustmentRejected() {
	ctx := context.Background()
	req := dto.RecordMovementRequest{Kind: "ADJUSTMENT", Amount: decimal.Zero}

	_, err := suite.service.RecordMovement(ctx, suite.coffreID, req, suite.actorID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *CoffreServiceTestSuite) TestRecordMovement_InsufficientFunds() {
	ctx := context.Background()
	req := dto.RecordMovementRequest{Kind: "WITHDRAWAL", Amount: decimal.NewFromInt(999999)}

	suite.mockCoffreRepo.On("ApplyMovement", ctx, mock.AnythingOfType("domain.CoffreTransaction")).
		Return(nil, apperrors.ErrInsufficientFunds).Once()

	_, err := suite.service.RecordMovement(ctx, suite.coffreID, req, suite.actorID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInsufficientFunds)
}

func (suite *CoffreServiceTestSuite) TestAmendTransaction_OpenSessionAllowed() {
	ctx := context.Background()
	transactionID := uuid.NewString()
	sessionID := uuid.NewString()
	movement := &domain.CoffreTransaction{
		TransactionID:   transactionID,
		CoffreID:        suite.coffreID,
		Kind:            domain.Withdrawal,
		Amount:          decimal.NewFromInt(50),
		LinkedSessionID: &sessionID,
	}
	req := dto.AmendMovementRequest{Kind: "WITHDRAWAL", Amount: decimal.NewFromInt(75)}

	suite.mockCoffreRepo.On("FindTransactionByID", ctx, transactionID).Return(movement, nil).Once()
	suite.mockSessionRepo.On("FindSessionByID", ctx, sessionID).Return(&domain.CaisseSession{
		SessionID: sessionID,
		Status:    domain.SessionOpen,
	}, nil).Once()
	amended := *movement
	amended.Amount = req.Amount
	suite.mockCoffreRepo.On("AmendTransaction", ctx, transactionID, domain.Withdrawal, req.Amount, suite.actorID, mock.AnythingOfType("time.Time")).
		Return(&amended, nil).Once()

	result, err := suite.service.AmendTransaction(ctx, transactionID, req, suite.actorID)

	suite.Require().NoError(err)
	suite.True(result.Amount.Equal(req.Amount))
	suite.mockCoffreRepo.AssertExpectations(suite.T())
}

func (suite *CoffreServiceTestSuite) TestAmendTransaction_ClosedSessionFrozen() {
	ctx := context.Background()
	transactionID := uuid.NewString()
	sessionID := uuid.NewString()
	movement := &domain.CoffreTransaction{
		TransactionID:   transactionID,
		LinkedSessionID: &sessionID,
	}
	req := dto.AmendMovementRequest{Kind: "DEPOSIT", Amount: decimal.NewFromInt(10)}

	suite.mockCoffreRepo.On("FindTransactionByID", ctx, transactionID).Return(movement, nil).Once()
	suite.mockSessionRepo.On("FindSessionByID", ctx, sessionID).Return(&domain.CaisseSession{
		SessionID: sessionID,
		Status:    domain.SessionClosed,
	}, nil).Once()

	_, err := suite.service.AmendTransaction(ctx, transactionID, req, suite.actorID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrMovementNotAmendable)
	suite.mockCoffreRepo.AssertNotCalled(suite.T(), "AmendTransaction")
}

func (suite *CoffreServiceTestSuite) TestDeleteTransaction_BankLinkedFrozen() {
	ctx := context.Background()
	transactionID := uuid.NewString()
	bankTxID := uuid.NewString()
	movement := &domain.CoffreTransaction{
		TransactionID:  transactionID,
		LinkedBankTxID: &bankTxID,
	}

	suite.mockCoffreRepo.On("FindTransactionByID", ctx, transactionID).Return(movement, nil).Once()

	err := suite.service.DeleteTransaction(ctx, transactionID, suite.actorID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrMovementNotAmendable)
	suite.mockCoffreRepo.AssertNotCalled(suite.T(), "DeleteTransaction")
}

func (suite *CoffreServiceTestSuite) TestDeleteTransaction_UnlinkedAllowed() {
	ctx := context.Background()
	transactionID := uuid.NewString()
	movement := &domain.CoffreTransaction{TransactionID: transactionID}

	suite.mockCoffreRepo.On("FindTransactionByID", ctx, transactionID).Return(movement, nil).Once()
	suite.mockCoffreRepo.On("DeleteTransaction", ctx, transactionID, suite.actorID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	err := suite.service.DeleteTransaction(ctx, transactionID, suite.actorID)

	suite.Require().NoError(err)
	suite.mockCoffreRepo.AssertExpectations(suite.T())
}

func (suite *CoffreServiceTestSuite) TestListTransactions_DefaultsLimit() {
	ctx := context.Background()
	transactions := []domain.CoffreTransaction{{TransactionID: uuid.NewString(), CoffreID: suite.coffreID}}
	token := "next-page"

	suite.mockCoffreRepo.On("ListTransactionsByCoffre", ctx, suite.coffreID, 20, (*string)(nil)).
		Return(transactions, token, nil).Once()

	page, err := suite.service.ListTransactions(ctx, suite.coffreID, dto.ListTransactionsParams{})

	suite.Require().NoError(err)
	suite.Len(page.Transactions, 1)
	suite.Require().NotNil(page.NextToken)
	suite.Equal(token, *page.NextToken)
}

func TestCoffreServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CoffreServiceTestSuite))
}
