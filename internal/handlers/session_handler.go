package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"schemadesigner/internal/models"
	"schemadesigner/internal/responses"
	"schemadesigner/internal/services"
	"schemadesigner/internal/utils"
)

type SessionHandler struct {
	workflow *services.WorkflowService
	executor *services.ExecutorService
}

func NewSessionHandler(workflow *services.WorkflowService, executor *services.ExecutorService) *SessionHandler {
	return &SessionHandler{
		workflow: workflow,
		executor: executor,
	}
}

// CreateSession handles POST /api/v1/sessions
func (h *SessionHandler) CreateSession(c *gin.Context) {
	session := h.workflow.CreateSession()
	responses.Success(c, http.StatusCreated, session, "Session created")
}

// GetSession handles GET /api/v1/sessions/:id
func (h *SessionHandler) GetSession(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	session, err := h.workflow.GetSession(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "Failed to load session")
		return
	}
	responses.Success(c, http.StatusOK, session, "")
}

// Suggestions handles GET /api/v1/sessions/:id/suggestions
func (h *SessionHandler) Suggestions(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	report, err := h.workflow.Suggestions(id)
	if err != nil {
		h.fail(c, err, "Failed to analyze schema")
		return
	}
	responses.Success(c, http.StatusOK, report, "")
}

// History handles GET /api/v1/sessions/:id/history
func (h *SessionHandler) History(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	records, err := h.workflow.History(id, limit)
	if err != nil {
		h.fail(c, err, "Failed to load generation history")
		return
	}
	responses.Success(c, http.StatusOK, records, "")
}

type draftRequest struct {
	Draft string `json:"draft" binding:"required"`
}

// UpdateDraft handles PUT /api/v1/sessions/:id/draft
func (h *SessionHandler) UpdateDraft(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	var req draftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}
	session, err := h.workflow.UpdateDraft(c.Request.Context(), id, req.Draft)
	if err != nil {
		h.fail(c, err, "Failed to update draft")
		return
	}
	responses.Success(c, http.StatusOK, session, "Draft updated")
}

// SubmitDraft handles POST /api/v1/sessions/:id/draft
func (h *SessionHandler) SubmitDraft(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	var req draftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}
	session, err := h.workflow.SubmitDraft(c.Request.Context(), id, req.Draft)
	if err != nil {
		h.fail(c, err, "Failed to submit draft")
		return
	}
	responses.Success(c, http.StatusOK, session, "Draft submitted")
}

type refinementRequest struct {
	SelectedEntities []string `json:"selected_entities"`
	Notes            string   `json:"notes"`
}

// ConfirmRefinement handles POST /api/v1/sessions/:id/refinement
func (h *SessionHandler) ConfirmRefinement(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	var req refinementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}
	session, err := h.workflow.ConfirmRefinement(c.Request.Context(), id, req.SelectedEntities, req.Notes)
	if err != nil {
		h.fail(c, err, "Failed to confirm refinement")
		return
	}
	responses.Success(c, http.StatusOK, session, "Refinement confirmed")
}

// SkipRefinement handles POST /api/v1/sessions/:id/skip
func (h *SessionHandler) SkipRefinement(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	session, err := h.workflow.SkipRefinement(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "Failed to skip refinement")
		return
	}
	responses.Success(c, http.StatusOK, session, "Refinement skipped")
}

// ApplyEdit handles POST /api/v1/sessions/:id/edits
func (h *SessionHandler) ApplyEdit(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	var req services.EditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}
	session, err := h.workflow.ApplyEdit(c.Request.Context(), id, req)
	if err != nil {
		h.fail(c, err, "Failed to apply edit")
		return
	}
	responses.Success(c, http.StatusOK, session, "Edit applied")
}

// Advance handles POST /api/v1/sessions/:id/advance
func (h *SessionHandler) Advance(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	session, err := h.workflow.Advance(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "Failed to advance")
		return
	}
	responses.Success(c, http.StatusOK, session, "Advanced to "+string(session.Stage))
}

// Back handles POST /api/v1/sessions/:id/back
func (h *SessionHandler) Back(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	session, err := h.workflow.Back(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "Failed to go back")
		return
	}
	responses.Success(c, http.StatusOK, session, "Returned to "+string(session.Stage))
}

// Reset handles POST /api/v1/sessions/:id/reset
func (h *SessionHandler) Reset(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	session, err := h.workflow.Reset(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "Failed to reset session")
		return
	}
	responses.Success(c, http.StatusOK, session, "Session reset")
}

type scriptOptionsRequest struct {
	Dialect string               `json:"dialect"`
	Options models.ScriptOptions `json:"options"`
}

// SetScriptOptions handles PUT /api/v1/sessions/:id/script-options
func (h *SessionHandler) SetScriptOptions(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	var req scriptOptionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}
	session, err := h.workflow.SetScriptOptions(c.Request.Context(), id, req.Dialect, req.Options)
	if err != nil {
		h.fail(c, err, "Failed to update script options")
		return
	}
	responses.Success(c, http.StatusOK, session, "Script options updated")
}

// ExecuteScript handles POST /api/v1/sessions/:id/execute
func (h *SessionHandler) ExecuteScript(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	var cfg services.ConnectionConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid connection configuration")
		return
	}

	session, err := h.workflow.GetSession(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "Failed to load session")
		return
	}
	if session.Stage != models.StageScriptReady || session.Script == nil {
		responses.Fail(c, http.StatusConflict, nil, "No generated script to execute")
		return
	}

	result, err := h.executor.Execute(c.Request.Context(), cfg, session.Script)
	if err != nil {
		responses.Fail(c, http.StatusBadGateway, err, "Script execution failed")
		return
	}
	responses.Success(c, http.StatusOK, result, "Script executed")
}

func (h *SessionHandler) sessionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := utils.ParseUUID(c.Param("id"))
	if err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid session ID format")
		return uuid.Nil, false
	}
	return id, true
}

// fail maps workflow errors onto HTTP statuses.
func (h *SessionHandler) fail(c *gin.Context, err error, message string) {
	var stageErr *services.StageError
	var collabErr *services.CollaboratorError

	switch {
	case errors.Is(err, services.ErrSessionNotFound):
		responses.Fail(c, http.StatusNotFound, err, "Session not found")
	case errors.Is(err, services.ErrTransitionInFlight):
		responses.Fail(c, http.StatusConflict, err, "A transition is already in progress")
	case errors.As(err, &stageErr):
		responses.Fail(c, http.StatusConflict, err, message)
	case errors.As(err, &collabErr):
		responses.Fail(c, http.StatusBadGateway, err, message)
	default:
		responses.Fail(c, http.StatusUnprocessableEntity, err, message)
	}
}
