package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clinicore/treasury-backend/internal/core/domain"
	portssvc "github.com/clinicore/treasury-backend/internal/core/ports/services"
	"github.com/clinicore/treasury-backend/internal/dto"
	"github.com/clinicore/treasury-backend/internal/middleware"
)

// approvalHandler handles HTTP requests for thresholds, outbound transfers and
// approval requests.
type approvalHandler struct {
	approvalService portssvc.ApprovalSvcFacade
}

// newApprovalHandler creates a new approvalHandler.
func newApprovalHandler(approvalService portssvc.ApprovalSvcFacade) *approvalHandler {
	return &approvalHandler{approvalService: approvalService}
}

// registerApprovalRoutes registers the threshold, transfer and approval
// request route groups.
func registerApprovalRoutes(rg *gin.RouterGroup, approvalService portssvc.ApprovalSvcFacade) {
	h := newApprovalHandler(approvalService)

	thresholds := rg.Group("/approval-thresholds")
	{
		thresholds.POST("", h.setThreshold)
		thresholds.GET("/:userID", h.getThreshold)
	}

	rg.POST("/transfers", h.requestTransfer)

	requests := rg.Group("/approval-requests")
	{
		requests.GET("", h.listPendingRequests)
		requests.GET("/:requestID", h.getRequest)
		requests.POST("/:requestID/approve", h.approveRequest)
		requests.POST("/:requestID/reject", h.rejectRequest)
	}
}

// setThreshold godoc
// @Summary Set a user's approval threshold
// @Description Replaces the user's active threshold with a new cap
// @Tags approvals
// @Accept  json
// @Produce  json
// @Param   threshold body dto.SetThresholdRequest true "Threshold details"
// @Success 200 {object} dto.ThresholdResponse
// @Failure 400 {object} map[string]string "Invalid request format"
// @Router /approval-thresholds [post]
func (h *approvalHandler) setThreshold(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.SetThresholdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for setThreshold", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	actorID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	threshold, err := h.approvalService.SetThreshold(c.Request.Context(), req, actorID)
	if err != nil {
		logger.Error("Failed to set threshold", slog.String("error", err.Error()), slog.String("user_id", req.UserID))
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToThresholdResponse(threshold))
}

// getThreshold godoc
// @Summary Get a user's active approval threshold
// @Tags approvals
// @Produce  json
// @Param   userID path string true "User ID"
// @Success 200 {object} dto.ThresholdResponse
// @Failure 404 {object} map[string]string "No active threshold"
// @Router /approval-thresholds/{userID} [get]
func (h *approvalHandler) getThreshold(c *gin.Context) {
	userID := c.Param("userID")

	threshold, err := h.approvalService.GetThresholdForUser(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToThresholdResponse(threshold))
}

// requestTransfer godoc
// @Summary Request an outbound transfer
// @Description Within the actor's threshold the transfer completes immediately; above it the transaction stays pending behind an approval request
// @Tags approvals
// @Accept  json
// @Produce  json
// @Param   transfer body dto.OutboundTransferRequest true "Transfer details"
// @Success 201 {object} dto.OutboundTransferResponse
// @Failure 400 {object} map[string]string "Invalid request format"
// @Failure 422 {object} map[string]string "Insufficient funds"
// @Router /transfers [post]
func (h *approvalHandler) requestTransfer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.OutboundTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for requestTransfer", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	actorID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	txn, request, err := h.approvalService.RequestOutboundTransfer(c.Request.Context(), req, actorID)
	if err != nil {
		logger.Warn("Failed to request outbound transfer", slog.String("error", err.Error()), slog.String("bank_account_id", req.BankAccountID))
		respondServiceError(c, err)
		return
	}

	resp := dto.OutboundTransferResponse{Transaction: dto.ToBankTransactionResponse(txn)}
	if request != nil {
		approval := dto.ToApprovalRequestResponse(request)
		resp.Approval = &approval
	}
	c.JSON(http.StatusCreated, resp)
}

// getRequest godoc
// @Summary Get an approval request
// @Tags approvals
// @Produce  json
// @Param   requestID path string true "Request ID"
// @Success 200 {object} dto.ApprovalRequestResponse
// @Failure 404 {object} map[string]string "Request not found"
// @Router /approval-requests/{requestID} [get]
func (h *approvalHandler) getRequest(c *gin.Context) {
	requestID := c.Param("requestID")

	request, err := h.approvalService.GetRequestByID(c.Request.Context(), requestID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToApprovalRequestResponse(request))
}

// listPendingRequests godoc
// @Summary List pending approval requests addressed to the caller
// @Tags approvals
// @Produce  json
// @Success 200 {array} dto.ApprovalRequestResponse
// @Router /approval-requests [get]
func (h *approvalHandler) listPendingRequests(c *gin.Context) {
	actorID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	requests, err := h.approvalService.ListPendingRequests(c.Request.Context(), actorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToApprovalRequestResponses(requests))
}

// approveRequest godoc
// @Summary Approve a pending request
// @Description Marks the request APPROVED and completes the gated bank transaction
// @Tags approvals
// @Produce  json
// @Param   requestID path string true "Request ID"
// @Success 200 {object} dto.ApprovalRequestResponse
// @Failure 403 {object} map[string]string "Caller is not a candidate"
// @Failure 409 {object} map[string]string "Request already resolved"
// @Router /approval-requests/{requestID}/approve [post]
func (h *approvalHandler) approveRequest(c *gin.Context) {
	h.resolve(c, h.approvalService.ApproveRequest)
}

// rejectRequest godoc
// @Summary Reject a pending request
// @Description Marks the request REJECTED, cancels the bank transaction and returns any withdrawn vault cash
// @Tags approvals
// @Produce  json
// @Param   requestID path string true "Request ID"
// @Success 200 {object} dto.ApprovalRequestResponse
// @Failure 403 {object} map[string]string "Caller is not a candidate"
// @Failure 409 {object} map[string]string "Request already resolved"
// @Router /approval-requests/{requestID}/reject [post]
func (h *approvalHandler) rejectRequest(c *gin.Context) {
	h.resolve(c, h.approvalService.RejectRequest)
}

type approvalResolveFunc func(ctx context.Context, requestID string, approverID string) (*domain.ApprovalRequest, error)

func (h *approvalHandler) resolve(c *gin.Context, apply approvalResolveFunc) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	requestID := c.Param("requestID")

	actorID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	request, err := apply(c.Request.Context(), requestID, actorID)
	if err != nil {
		logger.Warn("Failed to resolve approval request", slog.String("error", err.Error()), slog.String("request_id", requestID))
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToApprovalRequestResponse(request))
}
