package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/clinicore/treasury-backend/internal/core/ports/services"
	"github.com/clinicore/treasury-backend/internal/dto"
	"github.com/clinicore/treasury-backend/internal/middleware"
)

// caisseHandler handles HTTP requests related to registers.
type caisseHandler struct {
	caisseService  portssvc.CaisseSvcFacade
	sessionService portssvc.CaisseSessionSvcFacade
}

// newCaisseHandler creates a new caisseHandler.
func newCaisseHandler(caisseService portssvc.CaisseSvcFacade, sessionService portssvc.CaisseSessionSvcFacade) *caisseHandler {
	return &caisseHandler{
		caisseService:  caisseService,
		sessionService: sessionService,
	}
}

// registerCaisseRoutes registers the /caisses route group.
func registerCaisseRoutes(rg *gin.RouterGroup, caisseService portssvc.CaisseSvcFacade, sessionService portssvc.CaisseSessionSvcFacade) {
	h := newCaisseHandler(caisseService, sessionService)

	caisses := rg.Group("/caisses")
	{
		caisses.POST("", h.createCaisse)
		caisses.GET("", h.listCaisses)
		caisses.GET("/:caisseID", h.getCaisse)
		caisses.DELETE("/:caisseID", h.deactivateCaisse)
		caisses.GET("/:caisseID/sessions", h.listSessions)
	}
}

// createCaisse godoc
// @Summary Register a new caisse
// @Description Creates a register at a fixed location
// @Tags caisses
// @Accept  json
// @Produce  json
// @Param   caisse body dto.CreateCaisseRequest true "Caisse details"
// @Success 201 {object} dto.CaisseResponse
// @Failure 400 {object} map[string]string "Invalid request format"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /caisses [post]
func (h *caisseHandler) createCaisse(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateCaisseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to bind JSON for createCaisse", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Creator user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	caisse, err := h.caisseService.CreateCaisse(c.Request.Context(), req, creatorUserID)
	if err != nil {
		logger.Error("Failed to create caisse", slog.String("error", err.Error()))
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToCaisseResponse(caisse))
}

// getCaisse godoc
// @Summary Get a caisse
// @Tags caisses
// @Produce  json
// @Param   caisseID path string true "Caisse ID"
// @Success 200 {object} dto.CaisseResponse
// @Failure 404 {object} map[string]string "Caisse not found"
// @Router /caisses/{caisseID} [get]
func (h *caisseHandler) getCaisse(c *gin.Context) {
	caisseID := c.Param("caisseID")

	caisse, err := h.caisseService.GetCaisseByID(c.Request.Context(), caisseID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCaisseResponse(caisse))
}

// listCaisses godoc
// @Summary List all caisses
// @Tags caisses
// @Produce  json
// @Success 200 {array} dto.CaisseResponse
// @Router /caisses [get]
func (h *caisseHandler) listCaisses(c *gin.Context) {
	caisses, err := h.caisseService.ListCaisses(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	responses := make([]dto.CaisseResponse, len(caisses))
	for i := range caisses {
		responses[i] = dto.ToCaisseResponse(&caisses[i])
	}
	c.JSON(http.StatusOK, responses)
}

// deactivateCaisse godoc
// @Summary Deactivate a caisse
// @Description Marks the register inactive so no new session can open on it
// @Tags caisses
// @Param   caisseID path string true "Caisse ID"
// @Success 204 "No Content"
// @Failure 404 {object} map[string]string "Caisse not found"
// @Router /caisses/{caisseID} [delete]
func (h *caisseHandler) deactivateCaisse(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	caisseID := c.Param("caisseID")

	actorID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.caisseService.DeactivateCaisse(c.Request.Context(), caisseID, actorID); err != nil {
		logger.Warn("Failed to deactivate caisse", slog.String("error", err.Error()), slog.String("caisse_id", caisseID))
		respondServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// listSessions godoc
// @Summary List sessions of a caisse
// @Tags caisses
// @Produce  json
// @Param   caisseID path string true "Caisse ID"
// @Param   limit query int false "Page size"
// @Param   nextToken query string false "Pagination cursor"
// @Success 200 {object} dto.ListSessionsResponse
// @Router /caisses/{caisseID}/sessions [get]
func (h *caisseHandler) listSessions(c *gin.Context) {
	caisseID := c.Param("caisseID")

	var params dto.ListSessionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	page, err := h.sessionService.ListSessionsByCaisse(c.Request.Context(), caisseID, params)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}
