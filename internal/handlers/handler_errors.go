package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clinicore/treasury-backend/internal/apperrors"
	"github.com/clinicore/treasury-backend/internal/core/services"
)

// respondServiceError translates service errors into HTTP responses. Sentinels
// the services surface deliberately get precise status codes; anything else is
// an opaque 500.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Resource not found"})
	case errors.Is(err, apperrors.ErrValidation),
		errors.Is(err, apperrors.ErrInvalidDenomination),
		errors.Is(err, services.ErrNotACoffreMovement),
		errors.Is(err, services.ErrNotABankMovement):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotAnAuthorizedApprover),
		errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrInsufficientFunds):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrRegisterBusy),
		errors.Is(err, apperrors.ErrUserAlreadyHasOpenSession),
		errors.Is(err, apperrors.ErrRegisterInactive),
		errors.Is(err, apperrors.ErrVaultInactive),
		errors.Is(err, apperrors.ErrInvalidTransition),
		errors.Is(err, apperrors.ErrSessionNotClosable),
		errors.Is(err, apperrors.ErrCannotDeleteOpenSession),
		errors.Is(err, apperrors.ErrAlreadyCompleted),
		errors.Is(err, apperrors.ErrAlreadyCancelled),
		errors.Is(err, apperrors.ErrRequestAlreadyResolved),
		errors.Is(err, apperrors.ErrTransferPendingApproval),
		errors.Is(err, apperrors.ErrDuplicate),
		errors.Is(err, apperrors.ErrConflict),
		errors.Is(err, services.ErrMovementNotAmendable):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
