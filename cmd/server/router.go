package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/thereayou/secure-profile/internal/handlers"
	"github.com/thereayou/secure-profile/internal/middleware"
	"github.com/thereayou/secure-profile/internal/sessions"
)

func APIEndpoints(r *gin.Engine, manager *sessions.Manager, logger *zap.Logger, authH *handlers.AuthHandler, profileH *handlers.ProfileHandler) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.Use(middleware.Session(manager, logger))
	{
		api.POST("/login", authH.Login)
		api.POST("/logout", authH.Logout)
		api.GET("/user", middleware.RequireAuth("Not authenticated"), authH.Me)

		// Profile endpoints
		profile := api.Group("")
		profile.Use(middleware.RequireAuth("Unauthorized"))
		{
			profile.POST("/update-profile", profileH.UpdateProfile)
			profile.POST("/delete-avatar", profileH.DeleteAvatar)
		}
	}
}
