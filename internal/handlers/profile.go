package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/thereayou/secure-profile/internal/handlers/dto"
	"github.com/thereayou/secure-profile/internal/middleware"
	"github.com/thereayou/secure-profile/internal/sanitize"
	"github.com/thereayou/secure-profile/internal/services"
	"github.com/thereayou/secure-profile/internal/sessions"
	"github.com/thereayou/secure-profile/internal/uploads"
)

type ProfileHandler struct {
	profiles *services.ProfileService
	avatars  *services.AvatarService
	receiver *uploads.Receiver
	sessions *sessions.Manager
	logger   *zap.Logger
}

func NewProfileHandler(
	profiles *services.ProfileService,
	avatars *services.AvatarService,
	receiver *uploads.Receiver,
	sessions *sessions.Manager,
	logger *zap.Logger,
) *ProfileHandler {
	return &ProfileHandler{
		profiles: profiles,
		avatars:  avatars,
		receiver: receiver,
		sessions: sessions,
		logger:   logger,
	}
}

// UpdateProfile accepts a multipart or urlencoded form with username, email,
// firstName, lastName and an optional avatar file.
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	identity := middleware.CurrentIdentity(c)

	upload, err := h.receiver.Receive(c.Writer, c.Request)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	in := services.ProfileInput{
		Username:  sanitize.Text(c.PostForm("username")),
		Email:     sanitize.Text(c.PostForm("email")),
		FirstName: sanitize.Text(c.PostForm("firstName")),
		LastName:  sanitize.Text(c.PostForm("lastName")),
	}
	if upload != nil {
		in.Avatar = &upload.Ref
	}

	user, err := h.profiles.UpdateProfile(c.Request.Context(), identity.User.ID, in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.ProfileResponse{Message: "Profile updated", User: dto.NewUserResponse(user)})
}

// DeleteAvatar removes the caller's uploaded avatar and rewrites the session
// from the updated record.
func (h *ProfileHandler) DeleteAvatar(c *gin.Context) {
	identity := middleware.CurrentIdentity(c)

	user, err := h.avatars.RemoveAvatar(c.Request.Context(), identity.User.ID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	err = h.sessions.Refresh(c.Request.Context(), identity.Token, user.ID)
	switch {
	case errors.Is(err, sessions.ErrSessionNotFound):
		// Logged out or expired while the request ran; the session stays ended.
		h.sessions.ClearCookie(c.Writer)
	case err != nil:
		h.logger.Error("session refresh failed", zap.String("user_id", user.ID), zap.Error(err))
		respondMessage(c, http.StatusInternalServerError, "Session update failed")
		return
	}

	c.JSON(http.StatusOK, dto.ProfileResponse{Message: "Avatar deleted", User: dto.NewUserResponse(user)})
}
