package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/thereayou/secure-profile/internal/handlers/dto"
	"github.com/thereayou/secure-profile/internal/middleware"
	"github.com/thereayou/secure-profile/internal/sanitize"
	"github.com/thereayou/secure-profile/internal/services"
	"github.com/thereayou/secure-profile/internal/sessions"
)

type AuthHandler struct {
	auth     *services.AuthService
	sessions *sessions.Manager
	logger   *zap.Logger
}

func NewAuthHandler(auth *services.AuthService, sessions *sessions.Manager, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, sessions: sessions, logger: logger}
}

// Login checks the credentials and starts a new session. A session the
// client already held is ended first.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.auth.Authenticate(c.Request.Context(), sanitize.Text(req.Username), req.Password)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	if old, err := c.Cookie(h.sessions.CookieName()); err == nil {
		if err := h.sessions.Invalidate(c.Request.Context(), old); err != nil {
			h.logger.Warn("failed to end previous session", zap.Error(err))
		}
	}

	token, err := h.sessions.Establish(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.sessions.WriteCookie(c.Writer, token)

	h.logger.Info("user logged in", zap.String("user_id", user.ID))
	c.JSON(http.StatusOK, dto.LoginResponse{Success: true, User: dto.NewUserResponse(user)})
}

// Me returns the caller's current record.
func (h *AuthHandler) Me(c *gin.Context) {
	identity := middleware.CurrentIdentity(c)
	c.JSON(http.StatusOK, dto.NewUserResponse(identity.User))
}

// Logout ends the session if there is one. Calling it without a session, or
// twice, still succeeds.
func (h *AuthHandler) Logout(c *gin.Context) {
	token, _ := c.Cookie(h.sessions.CookieName())
	if err := h.sessions.Invalidate(c.Request.Context(), token); err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.sessions.ClearCookie(c.Writer)
	c.Status(http.StatusOK)
}
