package routes

import (
	"github.com/gin-gonic/gin"

	"schemadesigner/internal/handlers"
)

type AnalyzeRoutes struct {
	analyzeHandler *handlers.AnalyzeHandler
}

func NewAnalyzeRoutes(analyzeHandler *handlers.AnalyzeHandler) *AnalyzeRoutes {
	return &AnalyzeRoutes{
		analyzeHandler: analyzeHandler,
	}
}

func (r *AnalyzeRoutes) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/analyze", r.analyzeHandler.Analyze)
}
