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

// sessionHandler handles HTTP requests for the register session lifecycle.
type sessionHandler struct {
	sessionService portssvc.CaisseSessionSvcFacade
}

// newSessionHandler creates a new sessionHandler.
func newSessionHandler(sessionService portssvc.CaisseSessionSvcFacade) *sessionHandler {
	return &sessionHandler{sessionService: sessionService}
}

// registerSessionRoutes registers the /sessions route group.
func registerSessionRoutes(rg *gin.RouterGroup, sessionService portssvc.CaisseSessionSvcFacade) {
	h := newSessionHandler(sessionService)

	sessions := rg.Group("/sessions")
	{
		sessions.POST("", h.openSession)
		sessions.GET("/:sessionID", h.getSession)
		sessions.POST("/:sessionID/suspend", h.suspendSession)
		sessions.POST("/:sessionID/resume", h.resumeSession)
		sessions.POST("/:sessionID/close", h.closeSession)
		sessions.DELETE("/:sessionID", h.deleteSession)
	}
}

// openSession godoc
// @Summary Open a register session
// @Description Opens a session for a custodian, optionally pulling the opening float from a coffre
// @Tags sessions
// @Accept  json
// @Produce  json
// @Param   session body dto.OpenSessionRequest true "Session details"
// @Success 201 {object} dto.SessionResponse
// @Failure 400 {object} map[string]string "Invalid request format"
// @Failure 409 {object} map[string]string "Register or custodian already has an open session"
// @Router /sessions [post]
func (h *sessionHandler) openSession(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.OpenSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for openSession", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	actorID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	session, err := h.sessionService.OpenSession(c.Request.Context(), req, actorID)
	if err != nil {
		logger.Warn("Failed to open session", slog.String("error", err.Error()), slog.String("caisse_id", req.CaisseID))
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToSessionResponse(session))
}

// getSession godoc
// @Summary Get a register session
// @Tags sessions
// @Produce  json
// @Param   sessionID path string true "Session ID"
// @Success 200 {object} dto.SessionResponse
// @Failure 404 {object} map[string]string "Session not found"
// @Router /sessions/{sessionID} [get]
func (h *sessionHandler) getSession(c *gin.Context) {
	sessionID := c.Param("sessionID")

	session, err := h.sessionService.GetSessionByID(c.Request.Context(), sessionID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToSessionResponse(session))
}

// suspendSession godoc
// @Summary Suspend an open session
// @Tags sessions
// @Produce  json
// @Param   sessionID path string true "Session ID"
// @Success 200 {object} dto.SessionResponse
// @Failure 409 {object} map[string]string "Session is not open"
// @Router /sessions/{sessionID}/suspend [post]
func (h *sessionHandler) suspendSession(c *gin.Context) {
	h.transition(c, h.sessionService.SuspendSession)
}

// resumeSession godoc
// @Summary Resume a suspended session
// @Tags sessions
// @Produce  json
// @Param   sessionID path string true "Session ID"
// @Success 200 {object} dto.SessionResponse
// @Failure 409 {object} map[string]string "Session is not suspended"
// @Router /sessions/{sessionID}/resume [post]
func (h *sessionHandler) resumeSession(c *gin.Context) {
	h.transition(c, h.sessionService.ResumeSession)
}

// closeSession godoc
// @Summary Close an open session
// @Description Counts the drawer, reconciles it and deposits the counted cash into the destination coffre
// @Tags sessions
// @Accept  json
// @Produce  json
// @Param   sessionID path string true "Session ID"
// @Param   close body dto.CloseSessionRequest true "Closing count"
// @Success 200 {object} dto.SessionResponse
// @Failure 409 {object} map[string]string "Session is not open"
// @Router /sessions/{sessionID}/close [post]
func (h *sessionHandler) closeSession(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	sessionID := c.Param("sessionID")

	var req dto.CloseSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for closeSession", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	actorID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	session, err := h.sessionService.CloseSession(c.Request.Context(), sessionID, req, actorID)
	if err != nil {
		logger.Warn("Failed to close session", slog.String("error", err.Error()), slog.String("session_id", sessionID))
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToSessionResponse(session))
}

// deleteSession godoc
// @Summary Delete a closed session
// @Tags sessions
// @Param   sessionID path string true "Session ID"
// @Success 204 "No Content"
// @Failure 409 {object} map[string]string "Session is not closed"
// @Router /sessions/{sessionID} [delete]
func (h *sessionHandler) deleteSession(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	sessionID := c.Param("sessionID")

	actorID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.sessionService.DeleteSession(c.Request.Context(), sessionID, actorID); err != nil {
		logger.Warn("Failed to delete session", slog.String("error", err.Error()), slog.String("session_id", sessionID))
		respondServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

type sessionTransitionFunc func(ctx context.Context, sessionID string, actorID string) (*domain.CaisseSession, error)

func (h *sessionHandler) transition(c *gin.Context, apply sessionTransitionFunc) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	sessionID := c.Param("sessionID")

	actorID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	session, err := apply(c.Request.Context(), sessionID, actorID)
	if err != nil {
		logger.Warn("Failed to transition session", slog.String("error", err.Error()), slog.String("session_id", sessionID))
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToSessionResponse(session))
}
