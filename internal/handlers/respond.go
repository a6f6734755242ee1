package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/thereayou/secure-profile/internal/handlers/dto"
	"github.com/thereayou/secure-profile/internal/sanitize"
	"github.com/thereayou/secure-profile/internal/services"
	"github.com/thereayou/secure-profile/internal/uploads"
)

const msgInternal = "Internal server error"

func respondMessage(c *gin.Context, status int, msg string) {
	c.JSON(status, dto.MessageResponse{Message: sanitize.Message(msg)})
}

// respondError maps domain errors to a status and message. Anything
// unrecognised is logged in full and reported as a generic 500.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	var (
		verr *services.ValidationError
		uerr *uploads.UploadError
	)
	switch {
	case errors.As(err, &verr):
		respondMessage(c, http.StatusBadRequest, verr.Message)
	case errors.As(err, &uerr):
		respondMessage(c, http.StatusBadRequest, uerr.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		respondMessage(c, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, services.ErrUnauthorized):
		respondMessage(c, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, services.ErrNotFound):
		respondMessage(c, http.StatusNotFound, "User not found")
	case errors.Is(err, services.ErrUsernameTaken):
		respondMessage(c, http.StatusConflict, "Username already taken")
	case errors.Is(err, services.ErrNothingToDelete):
		respondMessage(c, http.StatusBadRequest, "Default avatar cannot be deleted")
	default:
		logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		respondMessage(c, http.StatusInternalServerError, msgInternal)
	}
}
