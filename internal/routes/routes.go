package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"schemadesigner/internal/handlers"
)

func RegisterRoutes(router *gin.Engine, sessionHandler *handlers.SessionHandler, analyzeHandler *handlers.AnalyzeHandler) {
	api := router.Group("/api/v1")

	sessionRoutes := NewSessionRoutes(sessionHandler)
	sessionRoutes.RegisterRoutes(api)

	analyzeRoutes := NewAnalyzeRoutes(analyzeHandler)
	analyzeRoutes.RegisterRoutes(api)

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})
}
