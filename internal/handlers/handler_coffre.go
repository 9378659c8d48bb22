package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/clinicore/treasury-backend/internal/core/ports/services"
	"github.com/clinicore/treasury-backend/internal/dto"
	"github.com/clinicore/treasury-backend/internal/middleware"
)

// coffreHandler handles HTTP requests related to vaults and their ledger.
type coffreHandler struct {
	coffreService portssvc.CoffreSvcFacade
}

// newCoffreHandler creates a new coffreHandler.
func newCoffreHandler(coffreService portssvc.CoffreSvcFacade) *coffreHandler {
	return &coffreHandler{coffreService: coffreService}
}

// registerCoffreRoutes registers the /coffres and /coffre-transactions groups.
// Amend and delete address a movement directly by ID, so they live in their
// own group instead of under a coffre path.
func registerCoffreRoutes(rg *gin.RouterGroup, coffreService portssvc.CoffreSvcFacade) {
	h := newCoffreHandler(coffreService)

	coffres := rg.Group("/coffres")
	{
		coffres.POST("", h.createCoffre)
		coffres.GET("", h.listCoffres)
		coffres.GET("/:coffreID", h.getCoffre)
		coffres.POST("/:coffreID/transactions", h.recordMovement)
		coffres.GET("/:coffreID/transactions", h.listTransactions)
	}

	movements := rg.Group("/coffre-transactions")
	{
		movements.PUT("/:transactionID", h.amendMovement)
		movements.DELETE("/:transactionID", h.deleteMovement)
	}
}

// createCoffre godoc
// @Summary Create a new coffre
// @Description Creates a vault, optionally seeded with an opening balance
// @Tags coffres
// @Accept  json
// @Produce  json
// @Param   coffre body dto.CreateCoffreRequest true "Coffre details"
// @Success 201 {object} dto.CoffreResponse
// @Failure 400 {object} map[string]string "Invalid request format"
// @Router /coffres [post]
func (h *coffreHandler) createCoffre(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateCoffreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for createCoffre", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	coffre, err := h.coffreService.CreateCoffre(c.Request.Context(), req, creatorUserID)
	if err != nil {
		logger.Error("Failed to create coffre", slog.String("error", err.Error()))
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToCoffreResponse(coffre))
}

// getCoffre godoc
// @Summary Get a coffre
// @Tags coffres
// @Produce  json
// @Param   coffreID path string true "Coffre ID"
// @Success 200 {object} dto.CoffreResponse
// @Failure 404 {object} map[string]string "Coffre not found"
// @Router /coffres/{coffreID} [get]
func (h *coffreHandler) getCoffre(c *gin.Context) {
	coffreID := c.Param("coffreID")

	coffre, err := h.coffreService.GetCoffreByID(c.Request.Context(), coffreID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCoffreResponse(coffre))
}

// listCoffres godoc
// @Summary List all coffres
// @Tags coffres
// @Produce  json
// @Success 200 {array} dto.CoffreResponse
// @Router /coffres [get]
func (h *coffreHandler) listCoffres(c *gin.Context) {
	coffres, err := h.coffreService.ListCoffres(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	responses := make([]dto.CoffreResponse, len(coffres))
	for i := range coffres {
		responses[i] = dto.ToCoffreResponse(&coffres[i])
	}
	c.JSON(http.StatusOK, responses)
}

// recordMovement godoc
// @Summary Record a vault movement
// @Description Applies a signed movement to the vault ledger
// @Tags coffres
// @Accept  json
// @Produce  json
// @Param   coffreID path string true "Coffre ID"
// @Param   movement body dto.RecordMovementRequest true "Movement details"
// @Success 201 {object} dto.CoffreTransactionResponse
// @Failure 400 {object} map[string]string "Invalid request format"
// @Failure 422 {object} map[string]string "Insufficient funds"
// @Router /coffres/{coffreID}/transactions [post]
func (h *coffreHandler) recordMovement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	coffreID := c.Param("coffreID")

	var req dto.RecordMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for recordMovement", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	actorID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	movement, err := h.coffreService.RecordMovement(c.Request.Context(), coffreID, req, actorID)
	if err != nil {
		logger.Warn("Failed to record movement", slog.String("error", err.Error()), slog.String("coffre_id", coffreID))
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToCoffreTransactionResponse(movement))
}

// listTransactions godoc
// @Summary List vault movements
// @Tags coffres
// @Produce  json
// @Param   coffreID path string true "Coffre ID"
// @Param   limit query int false "Page size"
// @Param   nextToken query string false "Pagination cursor"
// @Success 200 {object} dto.ListCoffreTransactionsResponse
// @Router /coffres/{coffreID}/transactions [get]
func (h *coffreHandler) listTransactions(c *gin.Context) {
	coffreID := c.Param("coffreID")

	var params dto.ListTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	page, err := h.coffreService.ListTransactions(c.Request.Context(), coffreID, params)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// amendMovement godoc
// @Summary Amend a vault movement
// @Description Replaces the kind/amount of a movement whose linked session is still open
// @Tags coffres
// @Accept  json
// @Produce  json
// @Param   transactionID path string true "Transaction ID"
// @Param   movement body dto.AmendMovementRequest true "New kind and amount"
// @Success 200 {object} dto.CoffreTransactionResponse
// @Failure 409 {object} map[string]string "Movement can no longer be changed"
// @Router /coffre-transactions/{transactionID} [put]
func (h *coffreHandler) amendMovement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("transactionID")

	var req dto.AmendMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for amendMovement", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	actorID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	movement, err := h.coffreService.AmendTransaction(c.Request.Context(), transactionID, req, actorID)
	if err != nil {
		logger.Warn("Failed to amend movement", slog.String("error", err.Error()), slog.String("transaction_id", transactionID))
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCoffreTransactionResponse(movement))
}

// deleteMovement godoc
// @Summary Delete a vault movement
// @Description Reverses and removes a movement whose linked session is still open
// @Tags coffres
// @Param   transactionID path string true "Transaction ID"
// @Success 204 "No Content"
// @Failure 409 {object} map[string]string "Movement can no longer be changed"
// @Router /coffre-transactions/{transactionID} [delete]
func (h *coffreHandler) deleteMovement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	transactionID := c.Param("transactionID")

	actorID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.coffreService.DeleteTransaction(c.Request.Context(), transactionID, actorID); err != nil {
		logger.Warn("Failed to delete movement", slog.String("error", err.Error()), slog.String("transaction_id", transactionID))
		respondServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
