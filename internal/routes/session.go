package routes

import (
	"github.com/gin-gonic/gin"

	"schemadesigner/internal/handlers"
)

type SessionRoutes struct {
	sessionHandler *handlers.SessionHandler
}

func NewSessionRoutes(sessionHandler *handlers.SessionHandler) *SessionRoutes {
	return &SessionRoutes{
		sessionHandler: sessionHandler,
	}
}

func (r *SessionRoutes) RegisterRoutes(router *gin.RouterGroup) {
	sessions := router.Group("/sessions")
	{
		sessions.POST("", r.sessionHandler.CreateSession)
		sessions.GET("/:id", r.sessionHandler.GetSession)
		sessions.GET("/:id/suggestions", r.sessionHandler.Suggestions)
		sessions.GET("/:id/history", r.sessionHandler.History)

		sessions.PUT("/:id/draft", r.sessionHandler.UpdateDraft)
		sessions.POST("/:id/draft", r.sessionHandler.SubmitDraft)
		sessions.POST("/:id/refinement", r.sessionHandler.ConfirmRefinement)
		sessions.POST("/:id/skip", r.sessionHandler.SkipRefinement)

		sessions.POST("/:id/edits", r.sessionHandler.ApplyEdit)
		sessions.POST("/:id/advance", r.sessionHandler.Advance)
		sessions.POST("/:id/back", r.sessionHandler.Back)
		sessions.POST("/:id/reset", r.sessionHandler.Reset)

		sessions.PUT("/:id/script-options", r.sessionHandler.SetScriptOptions)
		sessions.POST("/:id/execute", r.sessionHandler.ExecuteScript)
	}
}
