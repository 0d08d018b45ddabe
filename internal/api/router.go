// Package api exposes the HTTP surface of the backend.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fitia-backend/internal/auth"
)

// NewRouter builds the gin engine with all routes registered.
func NewRouter(h *Handler, tokens *auth.TokenManager) *gin.Engine {
	router := gin.Default()
	router.SetTrustedProxies(nil)
	router.Use(corsMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "app": "Fitia Backend"})
	})

	v1 := router.Group("/api/v1")

	authGroup := v1.Group("/auth")
	authGroup.POST("/register", h.register)
	authGroup.POST("/login", h.login)

	protected := v1.Group("")
	protected.Use(authRequired(tokens))

	protected.POST("/users", h.createUser)
	protected.GET("/users/:id", h.getUser)
	protected.PUT("/users/:id", h.updateUser)

	protected.POST("/plans/generate", h.generatePlan)
	protected.GET("/plans/latest", h.latestPlan)
	protected.POST("/plans/swap-meal", h.swapMeal)

	protected.POST("/chat", h.chat)

	protected.GET("/metrics/health", h.sysHealth)

	return router
}

// corsMiddleware allows all origins. The backend serves a separate
// single-page frontend during development.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// authRequired validates the Bearer token and stores the authenticated user
// id on the context.
func authRequired(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		const prefix = "Bearer "
		header := c.GetHeader("Authorization")
		if len(header) <= len(prefix) || header[:len(prefix)] != prefix {
			apiError(c, http.StatusUnauthorized, "missing or invalid authorization header")
			c.Abort()
			return
		}

		userID, err := tokens.Verify(header[len(prefix):])
		if err != nil {
			apiError(c, http.StatusUnauthorized, "invalid token")
			c.Abort()
			return
		}

		c.Set("auth_user_id", userID)
		c.Next()
	}
}

// apiError writes an error response in the {"detail": ...} shape the
// frontend expects.
func apiError(c *gin.Context, status int, detail string) {
	c.JSON(status, gin.H{"detail": detail})
}
