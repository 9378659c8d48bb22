package services_test

import (
	"context"
	"testing"
	"time"

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

type ApprovalServiceTestSuite struct {
	suite.Suite
	mockApprovalRepo *MockApprovalRepository
	mockBankRepo     *MockBankAccountRepository
	service          portssvc.ApprovalSvcFacade
	actorID          string
	account          domain.BankAccount
}

func (suite *ApprovalServiceTestSuite) SetupTest() {
	suite.mockApprovalRepo = new(MockApprovalRepository)
	suite.mockBankRepo = new(MockBankAccountRepository)
	suite.service = services.NewApprovalService(suite.mockApprovalRepo, suite.mockBankRepo, 72*time.Hour)

	suite.actorID = uuid.NewString()
	suite.account = domain.BankAccount{
		BankAccountID: uuid.NewString(),
		BankID:        "BNP",
		AccountNumber: "FR7612345",
		CurrencyCode:  "EUR",
		IsActive:      true,
	}
}

func (suite *ApprovalServiceTestSuite) activeThreshold(amount int64) *domain.ApprovalThreshold {
	return &domain.ApprovalThreshold{
		ThresholdID:   uuid.NewString(),
		UserID:        suite.actorID,
		MaximumAmount: decimal.NewFromInt(amount),
		IsActive:      true,
	}
}

func (suite *ApprovalServiceTestSuite) TestSetThreshold_Success() {
	ctx := context.Background()
	req := dto.SetThresholdRequest{UserID: uuid.NewString(), MaximumAmount: decimal.NewFromInt(1000)}

	suite.mockApprovalRepo.On("SaveThreshold", ctx, mock.MatchedBy(func(t domain.ApprovalThreshold) bool {
		return t.UserID == req.UserID && t.MaximumAmount.Equal(req.MaximumAmount) && t.IsActive
	})).Return(nil).Once()

	threshold, err := suite.service.SetThreshold(ctx, req, suite.actorID)

	suite.Require().NoError(err)
	suite.Require().NotNil(threshold)
	suite.NotEmpty(threshold.ThresholdID)
	suite.Equal(suite.actorID, threshold.CreatedBy)
	suite.mockApprovalRepo.AssertExpectations(suite.T())
}

func (suite *ApprovalServiceTestSuite) TestSetThreshold_NegativeAmount() {
	ctx := context.Background()
	req := dto.SetThresholdRequest{UserID: uuid.NewString(), MaximumAmount: decimal.NewFromInt(-1)}

	threshold, err := suite.service.SetThreshold(ctx, req, suite.actorID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(threshold)
	suite.mockApprovalRepo.AssertNotCalled(suite.T(), "SaveThreshold")
}

func (suite *ApprovalServiceTestSuite) TestRequestOutboundTransfer_WithinThresholdCompletes() {
	ctx := context.Background()
	req := dto.OutboundTransferRequest{BankAccountID: suite.account.BankAccountID, Amount: decimal.NewFromInt(500)}

	suite.mockBankRepo.On("FindBankAccountByID", ctx, suite.account.BankAccountID).Return(&suite.account, nil).Once()
	suite.mockApprovalRepo.On("FindActiveThresholdByUser", ctx, suite.actorID).Return(suite.activeThreshold(1000), nil).Once()

	completed := &domain.BankAccountTransaction{Status: domain.BankTxCompleted, Amount: req.Amount}
	suite.mockApprovalRepo.On("CreateOutboundTransfer", ctx, mock.MatchedBy(func(txn domain.BankAccountTransaction) bool {
		return txn.Kind == domain.Credit && txn.Status == domain.BankTxPending && txn.Amount.Equal(req.Amount)
	}), (*domain.CoffreTransaction)(nil), (*domain.ApprovalRequest)(nil), suite.actorID, mock.AnythingOfType("time.Time")).
		Return(completed, nil).Once()

	txn, request, err := suite.service.RequestOutboundTransfer(ctx, req, suite.actorID)

	suite.Require().NoError(err)
	suite.Require().NotNil(txn)
	suite.Nil(request)
	suite.Equal(domain.BankTxCompleted, txn.Status)
	suite.mockApprovalRepo.AssertNotCalled(suite.T(), "ListCandidateUserIDs")
	suite.mockApprovalRepo.AssertExpectations(suite.T())
}

func (suite *ApprovalServiceTestSuite) TestRequestOutboundTransfer_AboveThresholdGated() {
	ctx := context.Background()
	req := dto.OutboundTransferRequest{BankAccountID: suite.account.BankAccountID, Amount: decimal.NewFromInt(5000)}
	candidates := []string{uuid.NewString(), uuid.NewString()}

	suite.mockBankRepo.On("FindBankAccountByID", ctx, suite.account.BankAccountID).Return(&suite.account, nil).Once()
	suite.mockApprovalRepo.On("FindActiveThresholdByUser", ctx, suite.actorID).Return(suite.activeThreshold(1000), nil).Once()
	suite.mockApprovalRepo.On("ListCandidateUserIDs", ctx, req.Amount).Return(candidates, nil).Once()

	pending := &domain.BankAccountTransaction{Status: domain.BankTxPending, Amount: req.Amount}
	suite.mockApprovalRepo.On("CreateOutboundTransfer", ctx, mock.AnythingOfType("domain.BankAccountTransaction"), (*domain.CoffreTransaction)(nil), mock.MatchedBy(func(r *domain.ApprovalRequest) bool {
		return r != nil && r.Status == domain.ApprovalPending && r.RequestedBy == suite.actorID && len(r.CandidateUserIDs) == 2
	}), suite.actorID, mock.AnythingOfType("time.Time")).
		Return(pending, nil).Once()

	txn, request, err := suite.service.RequestOutboundTransfer(ctx, req, suite.actorID)

	suite.Require().NoError(err)
	suite.Require().NotNil(txn)
	suite.Require().NotNil(request)
	suite.Equal(domain.BankTxPending, txn.Status)
	suite.Equal(candidates, request.CandidateUserIDs)
	suite.mockApprovalRepo.AssertExpectations(suite.T())
}

func (suite *ApprovalServiceTestSuite) TestRequestOutboundTransfer_NoThresholdMeansZeroCap() {
	ctx := context.Background()
	// Even a tiny transfer is gated when the actor has no active threshold.
	req := dto.OutboundTransferRequest{BankAccountID: suite.account.BankAccountID, Amount: decimal.NewFromInt(1)}

	suite.mockBankRepo.On("FindBankAccountByID", ctx, suite.account.BankAccountID).Return(&suite.account, nil).Once()
	suite.mockApprovalRepo.On("FindActiveThresholdByUser", ctx, suite.actorID).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockApprovalRepo.On("ListCandidateUserIDs", ctx, req.Amount).Return([]string{uuid.NewString()}, nil).Once()
	suite.mockApprovalRepo.On("CreateOutboundTransfer", ctx, mock.AnythingOfType("domain.BankAccountTransaction"), (*domain.CoffreTransaction)(nil), mock.MatchedBy(func(r *domain.ApprovalRequest) bool {
		return r != nil && r.Status == domain.ApprovalPending
	}), suite.actorID, mock.AnythingOfType("time.Time")).
		Return(&domain.BankAccountTransaction{Status: domain.BankTxPending}, nil).Once()

	txn, request, err := suite.service.RequestOutboundTransfer(ctx, req, suite.actorID)

	suite.Require().NoError(err)
	suite.NotNil(txn)
	suite.NotNil(request)
	suite.mockApprovalRepo.AssertExpectations(suite.T())
}

func (suite *ApprovalServiceTestSuite) TestRequestOutboundTransfer_WithCoffreWithdrawal() {
	ctx := context.Background()
	coffreID := uuid.NewString()
	req := dto.OutboundTransferRequest{
		BankAccountID: suite.account.BankAccountID,
		Amount:        decimal.NewFromInt(200),
		CoffreID:      &coffreID,
	}

	suite.mockBankRepo.On("FindBankAccountByID", ctx, suite.account.BankAccountID).Return(&suite.account, nil).Once()
	suite.mockApprovalRepo.On("FindActiveThresholdByUser", ctx, suite.actorID).Return(suite.activeThreshold(1000), nil).Once()

	// The withdrawal travels in the same repository call as the bank row and
	// must reference it, so reject/expire can offset it later.
	var createdTxnID string
	suite.mockApprovalRepo.On("CreateOutboundTransfer", ctx, mock.MatchedBy(func(txn domain.BankAccountTransaction) bool {
		createdTxnID = txn.TransactionID
		return true
	}), mock.MatchedBy(func(mv *domain.CoffreTransaction) bool {
		return mv != nil &&
			mv.CoffreID == coffreID &&
			mv.Kind == domain.TransferOut &&
			mv.Amount.Equal(req.Amount) &&
			mv.LinkedBankTxID != nil && *mv.LinkedBankTxID == createdTxnID
	}), (*domain.ApprovalRequest)(nil), suite.actorID, mock.AnythingOfType("time.Time")).
		Return(&domain.BankAccountTransaction{Status: domain.BankTxCompleted}, nil).Once()

	_, _, err := suite.service.RequestOutboundTransfer(ctx, req, suite.actorID)

	suite.Require().NoError(err)
	suite.mockApprovalRepo.AssertExpectations(suite.T())
}

func (suite *ApprovalServiceTestSuite) TestRequestOutboundTransfer_VaultFailureLeavesNoTrace() {
	ctx := context.Background()
	coffreID := uuid.NewString()
	req := dto.OutboundTransferRequest{
		BankAccountID: suite.account.BankAccountID,
		Amount:        decimal.NewFromInt(200),
		CoffreID:      &coffreID,
	}

	suite.mockBankRepo.On("FindBankAccountByID", ctx, suite.account.BankAccountID).Return(&suite.account, nil).Once()
	suite.mockApprovalRepo.On("FindActiveThresholdByUser", ctx, suite.actorID).Return(suite.activeThreshold(1000), nil).Once()
	suite.mockApprovalRepo.On("CreateOutboundTransfer", ctx, mock.AnythingOfType("domain.BankAccountTransaction"), mock.AnythingOfType("*domain.CoffreTransaction"), (*domain.ApprovalRequest)(nil), suite.actorID, mock.AnythingOfType("time.Time")).
		Return(nil, apperrors.ErrInsufficientFunds).Once()

	txn, request, err := suite.service.RequestOutboundTransfer(ctx, req, suite.actorID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInsufficientFunds)
	suite.Nil(txn)
	suite.Nil(request)
	// Everything rolls back inside the single repository transaction; no
	// compensating writes happen outside it.
	suite.mockBankRepo.AssertNotCalled(suite.T(), "CreateTransaction")
	suite.mockBankRepo.AssertNotCalled(suite.T(), "CompleteTransaction")
	suite.mockBankRepo.AssertNotCalled(suite.T(), "CancelTransaction")
}

func (suite *ApprovalServiceTestSuite) TestRequestOutboundTransfer_GatedPersistFailureLeavesNoTrace() {
	ctx := context.Background()
	coffreID := uuid.NewString()
	req := dto.OutboundTransferRequest{
		BankAccountID: suite.account.BankAccountID,
		Amount:        decimal.NewFromInt(5000),
		CoffreID:      &coffreID,
	}

	suite.mockBankRepo.On("FindBankAccountByID", ctx, suite.account.BankAccountID).Return(&suite.account, nil).Once()
	suite.mockApprovalRepo.On("FindActiveThresholdByUser", ctx, suite.actorID).Return(suite.activeThreshold(1000), nil).Once()
	suite.mockApprovalRepo.On("ListCandidateUserIDs", ctx, req.Amount).Return([]string{uuid.NewString()}, nil).Once()

	// A failure while persisting the request must not leave a committed
	// vault withdrawal or a dangling pending bank transaction behind.
	persistErr := apperrors.NewAppError(500, "failed to insert approval request", nil)
	suite.mockApprovalRepo.On("CreateOutboundTransfer", ctx, mock.AnythingOfType("domain.BankAccountTransaction"), mock.AnythingOfType("*domain.CoffreTransaction"), mock.AnythingOfType("*domain.ApprovalRequest"), suite.actorID, mock.AnythingOfType("time.Time")).
		Return(nil, persistErr).Once()

	txn, request, err := suite.service.RequestOutboundTransfer(ctx, req, suite.actorID)

	suite.Require().Error(err)
	suite.Nil(txn)
	suite.Nil(request)
	suite.mockBankRepo.AssertNotCalled(suite.T(), "CreateTransaction")
	suite.mockBankRepo.AssertNotCalled(suite.T(), "CompleteTransaction")
	suite.mockBankRepo.AssertNotCalled(suite.T(), "CancelTransaction")
	suite.mockApprovalRepo.AssertExpectations(suite.T())
}

func (suite *ApprovalServiceTestSuite) TestRequestOutboundTransfer_InactiveAccount() {
	ctx := context.Background()
	inactive := suite.account
	inactive.IsActive = false
	req := dto.OutboundTransferRequest{BankAccountID: inactive.BankAccountID, Amount: decimal.NewFromInt(10)}

	suite.mockBankRepo.On("FindBankAccountByID", ctx, inactive.BankAccountID).Return(&inactive, nil).Once()

	_, _, err := suite.service.RequestOutboundTransfer(ctx, req, suite.actorID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockApprovalRepo.AssertNotCalled(suite.T(), "CreateOutboundTransfer")
}

func (suite *ApprovalServiceTestSuite) TestRequestOutboundTransfer_NonPositiveAmount() {
	ctx := context.Background()
	req := dto.OutboundTransferRequest{BankAccountID: suite.account.BankAccountID, Amount: decimal.Zero}

	_, _, err := suite.service.RequestOutboundTransfer(ctx, req, suite.actorID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockBankRepo.AssertNotCalled(suite.T(), "FindBankAccountByID")
}

func (suite *ApprovalServiceTestSuite) TestApproveRequest_Success() {
	ctx := context.Background()
	approverID := uuid.NewString()
	requestID := uuid.NewString()
	pending := &domain.ApprovalRequest{
		RequestID:        requestID,
		TransactionID:    uuid.NewString(),
		RequestedBy:      suite.actorID,
		CandidateUserIDs: []string{approverID},
		Status:           domain.ApprovalPending,
	}
	resolved := *pending
	resolved.Status = domain.ApprovalApproved
	resolved.ResolvedBy = &approverID

	suite.mockApprovalRepo.On("FindRequestByID", ctx, requestID).Return(pending, nil).Once()
	suite.mockApprovalRepo.On("ApproveRequest", ctx, requestID, approverID, mock.AnythingOfType("time.Time")).Return(&resolved, nil).Once()

	result, err := suite.service.ApproveRequest(ctx, requestID, approverID)

	suite.Require().NoError(err)
	suite.Equal(domain.ApprovalApproved, result.Status)
	suite.Equal(&approverID, result.ResolvedBy)
	suite.mockApprovalRepo.AssertExpectations(suite.T())
}

func (suite *ApprovalServiceTestSuite) TestApproveRequest_NotACandidate() {
	ctx := context.Background()
	requestID := uuid.NewString()
	pending := &domain.ApprovalRequest{
		RequestID:        requestID,
		CandidateUserIDs: []string{uuid.NewString()},
		Status:           domain.ApprovalPending,
	}

	suite.mockApprovalRepo.On("FindRequestByID", ctx, requestID).Return(pending, nil).Once()

	_, err := suite.service.ApproveRequest(ctx, requestID, uuid.NewString())

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotAnAuthorizedApprover)
	suite.mockApprovalRepo.AssertNotCalled(suite.T(), "ApproveRequest")
}

func (suite *ApprovalServiceTestSuite) TestApproveRequest_RequesterCannotSelfApprove() {
	ctx := context.Background()
	requestID := uuid.NewString()
	pending := &domain.ApprovalRequest{
		RequestID:        requestID,
		RequestedBy:      suite.actorID,
		CandidateUserIDs: []string{uuid.NewString()},
		Status:           domain.ApprovalPending,
	}

	suite.mockApprovalRepo.On("FindRequestByID", ctx, requestID).Return(pending, nil).Once()

	_, err := suite.service.ApproveRequest(ctx, requestID, suite.actorID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotAnAuthorizedApprover)
}

func (suite *ApprovalServiceTestSuite) TestRejectRequest_AlreadyResolved() {
	ctx := context.Background()
	approverID := uuid.NewString()
	requestID := uuid.NewString()
	resolved := &domain.ApprovalRequest{
		RequestID:        requestID,
		CandidateUserIDs: []string{approverID},
		Status:           domain.ApprovalApproved,
	}

	suite.mockApprovalRepo.On("FindRequestByID", ctx, requestID).Return(resolved, nil).Once()

	_, err := suite.service.RejectRequest(ctx, requestID, approverID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrRequestAlreadyResolved)
	suite.mockApprovalRepo.AssertNotCalled(suite.T(), "RejectRequest")
}

func (suite *ApprovalServiceTestSuite) TestExpireStaleRequests() {
	ctx := context.Background()
	staleIDs := []string{uuid.NewString(), uuid.NewString(), uuid.NewString()}

	before := time.Now().UTC()
	suite.mockApprovalRepo.On("ListStaleRequestIDs", ctx, mock.MatchedBy(func(cutoff time.Time) bool {
		// Cutoff must sit roughly one TTL behind the sweep time.
		expected := before.Add(-72 * time.Hour)
		return cutoff.Sub(expected) < time.Minute && cutoff.Sub(expected) > -time.Minute
	})).Return(staleIDs, nil).Once()
	for _, requestID := range staleIDs {
		suite.mockApprovalRepo.On("ExpireRequest", ctx, requestID, "system:approval-expiry", mock.AnythingOfType("time.Time")).
			Return(&domain.ApprovalRequest{RequestID: requestID, Status: domain.ApprovalExpired}, nil).Once()
	}

	count, err := suite.service.ExpireStaleRequests(ctx)

	suite.Require().NoError(err)
	suite.Equal(3, count)
	suite.mockApprovalRepo.AssertExpectations(suite.T())
}

func (suite *ApprovalServiceTestSuite) TestExpireStaleRequests_ContinuesPastFailingRequest() {
	ctx := context.Background()
	staleIDs := []string{uuid.NewString(), uuid.NewString(), uuid.NewString()}

	suite.mockApprovalRepo.On("ListStaleRequestIDs", ctx, mock.AnythingOfType("time.Time")).Return(staleIDs, nil).Once()
	suite.mockApprovalRepo.On("ExpireRequest", ctx, staleIDs[0], "system:approval-expiry", mock.AnythingOfType("time.Time")).
		Return(&domain.ApprovalRequest{RequestID: staleIDs[0], Status: domain.ApprovalExpired}, nil).Once()
	// One broken row must not stop the remaining requests from expiring.
	suite.mockApprovalRepo.On("ExpireRequest", ctx, staleIDs[1], "system:approval-expiry", mock.AnythingOfType("time.Time")).
		Return(nil, apperrors.NewAppError(500, "failed to cancel bank transaction", nil)).Once()
	suite.mockApprovalRepo.On("ExpireRequest", ctx, staleIDs[2], "system:approval-expiry", mock.AnythingOfType("time.Time")).
		Return(&domain.ApprovalRequest{RequestID: staleIDs[2], Status: domain.ApprovalExpired}, nil).Once()

	count, err := suite.service.ExpireStaleRequests(ctx)

	suite.Require().NoError(err)
	suite.Equal(2, count)
	suite.mockApprovalRepo.AssertExpectations(suite.T())
}

func (suite *ApprovalServiceTestSuite) TestExpireStaleRequests_SkipsRequestsResolvedMeanwhile() {
	ctx := context.Background()
	staleIDs := []string{uuid.NewString(), uuid.NewString()}

	suite.mockApprovalRepo.On("ListStaleRequestIDs", ctx, mock.AnythingOfType("time.Time")).Return(staleIDs, nil).Once()
	suite.mockApprovalRepo.On("ExpireRequest", ctx, staleIDs[0], "system:approval-expiry", mock.AnythingOfType("time.Time")).
		Return(nil, apperrors.ErrRequestAlreadyResolved).Once()
	suite.mockApprovalRepo.On("ExpireRequest", ctx, staleIDs[1], "system:approval-expiry", mock.AnythingOfType("time.Time")).
		Return(&domain.ApprovalRequest{RequestID: staleIDs[1], Status: domain.ApprovalExpired}, nil).Once()

	count, err := suite.service.ExpireStaleRequests(ctx)

	suite.Require().NoError(err)
	suite.Equal(1, count)
	suite.mockApprovalRepo.AssertExpectations(suite.T())
}

func TestApprovalServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ApprovalServiceTestSuite))
}
