package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/clinicore/treasury-backend/internal/apperrors"
	"github.com/clinicore/treasury-backend/internal/core/domain"
	portsrepo "github.com/clinicore/treasury-backend/internal/core/ports/repositories"
	portssvc "github.com/clinicore/treasury-backend/internal/core/ports/services"
	"github.com/clinicore/treasury-backend/internal/dto"
	"github.com/clinicore/treasury-backend/internal/middleware"
	"github.com/clinicore/treasury-backend/internal/utils/accounting"
)

var ErrNotABankMovement = errors.New("movement kind is not valid for a bank account")

// bankAccountService provides the status-gated bank account ledger.
type bankAccountService struct {
	bankRepo portsrepo.BankAccountRepositoryFacade
}

// NewBankAccountService creates a new BankAccountService.
func NewBankAccountService(bankRepo portsrepo.BankAccountRepositoryFacade) portssvc.BankAccountSvcFacade {
	return &bankAccountService{bankRepo: bankRepo}
}

var _ portssvc.BankAccountSvcFacade = (*bankAccountService)(nil)

// CreateBankAccount registers a new external bank account with zero balances.
func (s *bankAccountService) CreateBankAccount(ctx context.Context, req dto.CreateBankAccountRequest, creatorUserID string) (*domain.BankAccount, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	now := time.Now().UTC()
	account := domain.BankAccount{
		BankAccountID: uuid.NewString(),
		BankID:        req.BankID,
		AccountNumber: req.AccountNumber,
		CurrencyCode:  req.CurrencyCode,
		IsActive:      true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.bankRepo.SaveBankAccount(ctx, account); err != nil {
		logger.Error("Failed to save bank account", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to save bank account: %w", err)
	}

	logger.Info("Bank account created", slog.String("bank_account_id", account.BankAccountID))
	return &account, nil
}

// GetBankAccountByID retrieves a bank account by ID.
func (s *bankAccountService) GetBankAccountByID(ctx context.Context, bankAccountID string) (*domain.BankAccount, error) {
	account, err := s.bankRepo.FindBankAccountByID(ctx, bankAccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to find bank account %s: %w", bankAccountID, err)
	}
	return account, nil
}

// ListBankAccounts retrieves all bank accounts.
func (s *bankAccountService) ListBankAccounts(ctx context.Context) ([]domain.BankAccount, error) {
	accounts, err := s.bankRepo.ListBankAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list bank accounts: %w", err)
	}
	return accounts, nil
}

// CreateTransaction records a PENDING bank transaction. The balance is only
// touched when the transaction later transitions into COMPLETED.
func (s *bankAccountService) CreateTransaction(ctx context.Context, bankAccountID string, req dto.CreateBankTransactionRequest, actorID string) (*domain.BankAccountTransaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	kind := domain.MovementKind(req.Kind)
	if !kind.IsBankKind() {
		return nil, fmt.Errorf("%w: %s", ErrNotABankMovement, req.Kind)
	}
	if err := accounting.ValidateMovementAmount(kind, req.Amount); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	if req.Amount.IsZero() {
		return nil, fmt.Errorf("%w: amount must be positive", apperrors.ErrValidation)
	}

	account, err := s.bankRepo.FindBankAccountByID(ctx, bankAccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to find bank account %s: %w", bankAccountID, err)
	}
	if !account.IsActive {
		return nil, fmt.Errorf("%w: bank account %s", apperrors.ErrValidation, bankAccountID)
	}

	now := time.Now().UTC()
	txn := domain.BankAccountTransaction{
		TransactionID: uuid.NewString(),
		BankAccountID: bankAccountID,
		Kind:          kind,
		Amount:        req.Amount,
		Status:        domain.BankTxPending,
		Reference:     req.Reference,
		Description:   req.Description,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		},
	}

	if err := s.bankRepo.CreateTransaction(ctx, txn); err != nil {
		logger.Error("Failed to create bank transaction", slog.String("error", err.Error()), slog.String("bank_account_id", bankAccountID))
		return nil, fmt.Errorf("failed to create bank transaction: %w", err)
	}

	logger.Info("Bank transaction created",
		slog.String("transaction_id", txn.TransactionID),
		slog.String("bank_account_id", bankAccountID),
		slog.String("kind", string(kind)))
	return &txn, nil
}

// CompleteTransaction applies the balance delta exactly once. A second call
// fails with ErrAlreadyCompleted and no balance change; the guard runs in the
// repository under a row lock.
func (s *bankAccountService) CompleteTransaction(ctx context.Context, transactionID string, actorID string) (*domain.BankAccountTransaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	txn, err := s.bankRepo.CompleteTransaction(ctx, transactionID, actorID, time.Now().UTC())
	if err != nil {
		if !errors.Is(err, apperrors.ErrAlreadyCompleted) && !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to complete bank transaction", slog.String("error", err.Error()), slog.String("transaction_id", transactionID))
		}
		return nil, fmt.Errorf("failed to complete bank transaction %s: %w", transactionID, err)
	}

	logger.Info("Bank transaction completed", slog.String("transaction_id", transactionID))
	return txn, nil
}

// CancelTransaction reverses a completed transaction's balance effect exactly
// once, or simply discards a pending one.
func (s *bankAccountService) CancelTransaction(ctx context.Context, transactionID string, actorID string) (*domain.BankAccountTransaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	txn, err := s.bankRepo.CancelTransaction(ctx, transactionID, actorID, time.Now().UTC())
	if err != nil {
		if !errors.Is(err, apperrors.ErrAlreadyCancelled) && !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to cancel bank transaction", slog.String("error", err.Error()), slog.String("transaction_id", transactionID))
		}
		return nil, fmt.Errorf("failed to cancel bank transaction %s: %w", transactionID, err)
	}

	logger.Info("Bank transaction cancelled", slog.String("transaction_id", transactionID))
	return txn, nil
}

// ReconcileTransaction stamps who matched the transaction against the bank
// statement and when. Metadata only; the balance is untouched.
func (s *bankAccountService) ReconcileTransaction(ctx context.Context, transactionID string, reconciledBy string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.bankRepo.ReconcileTransaction(ctx, transactionID, reconciledBy, time.Now().UTC()); err != nil {
		logger.Error("Failed to reconcile bank transaction", slog.String("error", err.Error()), slog.String("transaction_id", transactionID))
		return fmt.Errorf("failed to reconcile bank transaction %s: %w", transactionID, err)
	}

	logger.Info("Bank transaction reconciled", slog.String("transaction_id", transactionID), slog.String("reconciled_by", reconciledBy))
	return nil
}

// ListTransactions retrieves a page of the account's transaction history.
func (s *bankAccountService) ListTransactions(ctx context.Context, bankAccountID string, params dto.ListTransactionsParams) (*dto.ListBankTransactionsResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	transactions, nextToken, err := s.bankRepo.ListTransactionsByAccount(ctx, bankAccountID, limit, params.NextToken)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions for bank account %s: %w", bankAccountID, err)
	}

	return &dto.ListBankTransactionsResponse{
		Transactions: dto.ToBankTransactionResponses(transactions),
		NextToken:    nextToken,
	}, nil
}
