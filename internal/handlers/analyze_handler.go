package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"schemadesigner/internal/responses"
	"schemadesigner/internal/services"
)

type AnalyzeHandler struct {
	validator *services.ValidatorService
}

func NewAnalyzeHandler(validator *services.ValidatorService) *AnalyzeHandler {
	return &AnalyzeHandler{validator: validator}
}

type analyzeRequest struct {
	Text string `json:"text" binding:"required"`
}

// Analyze handles POST /api/v1/analyze. It runs the keyword analysis
// synchronously and returns the assessment plus the highlight segmentation of
// the submitted text.
func (h *AnalyzeHandler) Analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	assessment := h.validator.Analyze(req.Text)
	segments := services.FoldHighlights(req.Text, assessment.Highlights)

	responses.Success(c, http.StatusOK, gin.H{
		"assessment": assessment,
		"segments":   segments,
	}, "")
}
