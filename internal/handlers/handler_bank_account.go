package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/clinicore/treasury-backend/internal/core/ports/services"
	"github.com/clinicore/treasury-backend/internal/dto"
	"github.com/clinicore/treasury-backend/internal/middleware"
)

// bankAccountHandler handles HTTP requests related to bank accounts.
type bankAccountHandler struct {
	bankService portssvc.BankAccountSvcFacade
}

// newBankAccountHandler creates a new bankAccountHandler.
func newBankAccountHandler(bankService portssvc.BankAccountSvcFacade) *bankAccountHandler {
	return &bankAccountHandler{bankService: bankService}
}

// registerBankAccountRoutes registers the /bank-accounts and /bank-transactions
// route groups.
func registerBankAccountRoutes(rg *gin.RouterGroup, bankService portssvc.BankAccountSvcFacade) {
	h := newBankAccountHandler(bankService)

	accounts := rg.Group("/bank-accounts")
	{
		accounts.POST("", h.createBankAccount)
		accounts.GET("", h.listBankAccounts)
		accounts.GET("/:bankAccountID", h.getBankAccount)
		accounts.POST("/:bankAccountID/transactions", h.createTransaction)
		accounts.GET("/:bankAccountID/transactions", h.listTransactions)
	}

	transactions := rg.Group("/bank-transactions")
	{
		transactions.POST("/:transactionID/complete", h.completeTransaction)
		transactions.POST("/:transactionID/cancel", h.cancelTransaction)
		transactions.POST("/:transactionID/reconcile", h.reconcileTransaction)
	}
}

// createBankAccount godoc
// @Summary Register a new bank account
// @Tags bank-accounts
// @Accept  json
// @Produce  json
// @Param   account body dto.CreateBankAccountRequest true "Account details"
// @Success 201 {object} dto.BankAccountResponse
// @Failure 400 {object} map[string]string "Invalid request format"
// @Router /bank-accounts [post]
func (h *bankAccountHandler) createBankAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateBankAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for createBankAccount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	account, err := h.bankService.CreateBankAccount(c.Request.Context(), req, creatorUserID)
	if err != nil {
		logger.Error("Failed to create bank account", slog.String("error", err.Error()))
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToBankAccountResponse(account))
}

// getBankAccount godoc
// @Summary Get a bank account
// @Tags bank-accounts
// @Produce  json
// @Param   bankAccountID path string true "Bank account ID"
// @Success 200 {object} dto.BankAccountResponse
// @Failure 404 {object} map[string]string "Bank account not found"
// @Router /bank-accounts/{bankAccountID} [get]
func (h *bankAccountHandler) getBankAccount(c *gin.Context) {
	bankAccountID := c.Param("bankAccountID")

	account, err := h.bankService.GetBankAccountByID(c.Request.Context(), bankAccountID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToBankAccountResponse(account))
}

// listBankAccounts godoc
// @Summary List all bank accounts
// @Tags bank-accounts
// @Produce  json
// @Success 200 {array} dto.BankAccountResponse
// @Router /bank-accounts [get]
func (h *bankAccountHandler) listBankAccounts(c *gin.Context) {
	accounts, err := h.bankService.ListBankAccounts(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	responses := make([]dto.BankAccountResponse, len(accounts))
	for i := range accounts {
		responses[i] = dto.ToBankAccountResponse(&accounts[i])
	}
	c.JSON(http.StatusOK, responses)
}

// createTransaction godoc
// @Summary Record a bank transaction
// @Description Creates a PENDING transaction; the balance moves on completion
// @Tags bank-accounts
// @Accept  json
// @Produce  json
// @Param   bankAccountID path string true "Bank account ID"
// @Param   transaction body dto.CreateBankTransactionRequest true "Transaction details"
// @Success 201 {object} dto.BankTransactionResponse
// @Failure 400 {object} map[string]string "Invalid request format"
// @Router /bank-accounts/{bankAccountID}/transactions [post]
func (h *bankAccountHandler) createTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	bankAccountID := c.Param("bankAccountID")

	var req dto.CreateBankTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for createTransaction", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	actorID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	txn, err := h.bankService.CreateTransaction(c.Request.Context(), bankAccountID, req, actorID)
	if err != nil {
		logger.Warn("Failed to create bank transaction", slog.String("error", err.Error()), slog.String("bank_account_id", bankAccountID))
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToBankTransactionResponse(txn))
}

// completeTransaction godoc
// @Summary Complete a pending bank transaction
// @Description Applies the balance delta exactly once
// @Tags bank-accounts
// @Produce  json
// @Param   transactionID path string true "Transaction ID"
// @Success 200 {object} dto.BankTransactionResponse
// @Failure 409 {object} map[string]string "Transaction already completed"
// @Router /bank-transactions/{transactionID}/complete [post]
func (h *bankAccountHandler) completeTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("transactionID")

	actorID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	txn, err := h.bankService.CompleteTransaction(c.Request.Context(), transactionID, actorID)
	if err != nil {
		logger.Warn("Failed to complete bank transaction", slog.String("error", err.Error()), slog.String("transaction_id", transactionID))
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToBankTransactionResponse(txn))
}

// cancelTransaction godoc
// @Summary Cancel a bank transaction
// @Description Reverses a completed transaction's balance effect or discards a pending one
// @Tags bank-accounts
// @Produce  json
// @Param   transactionID path string true "Transaction ID"
// @Success 200 {object} dto.BankTransactionResponse
// @Failure 409 {object} map[string]string "Transaction already cancelled"
// @Router /bank-transactions/{transactionID}/cancel [post]
func (h *bankAccountHandler) cancelTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("transactionID")

	actorID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	txn, err := h.bankService.CancelTransaction(c.Request.Context(), transactionID, actorID)
	if err != nil {
		logger.Warn("Failed to cancel bank transaction", slog.String("error", err.Error()), slog.String("transaction_id", transactionID))
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToBankTransactionResponse(txn))
}

// reconcileTransaction godoc
// @Summary Reconcile a bank transaction
// @Description Stamps who matched the transaction against the bank statement
// @Tags bank-accounts
// @Param   transactionID path string true "Transaction ID"
// @Success 204 "No Content"
// @Failure 404 {object} map[string]string "Transaction not found"
// @Router /bank-transactions/{transactionID}/reconcile [post]
func (h *bankAccountHandler) reconcileTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("transactionID")

	actorID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.bankService.ReconcileTransaction(c.Request.Context(), transactionID, actorID); err != nil {
		logger.Warn("Failed to reconcile bank transaction", slog.String("error", err.Error()), slog.String("transaction_id", transactionID))
		respondServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// listTransactions godoc
// @Summary List bank transactions
// @Tags bank-accounts
// @Produce  json
// @Param   bankAccountID path string true "Bank account ID"
// @Param   limit query int false "Page size"
// @Param   nextToken query string false "Pagination cursor"
// @Success 200 {object} dto.ListBankTransactionsResponse
// @Router /bank-accounts/{bankAccountID}/transactions [get]
func (h *bankAccountHandler) listTransactions(c *gin.Context) {
	bankAccountID := c.Param("bankAccountID")

	var params dto.ListTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	page, err := h.bankService.ListTransactions(c.Request.Context(), bankAccountID, params)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}
