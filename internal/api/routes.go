package api

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the API on r and returns the handler, which also
// serves as the worker's JobExecutor.
func RegisterRoutes(r *gin.Engine, d Deps) *Handler {
	h := NewHandler(d)

	// Tenant provisioning (would be admin-gated in production)
	r.POST("/tenants", h.CreateTenant)
	r.GET("/health", h.Health)

	authed := r.Group("/", d.Tenants.AuthMiddleware())
	{
		authed.GET("/languages", h.ListLanguages)

		authed.POST("/code/:provider/config", h.SetCodeProviderConfig)
		authed.POST("/code/:provider/evaluate", h.EvaluateCode)
		authed.GET("/code/executions/:job_id", h.GetCodeExecution)

		authed.GET("/jobs/:id", h.GetJob)

		authed.GET("/quizzes", h.ListQuizzes)
		authed.GET("/quizzes/:id", h.GetQuiz)
		authed.POST("/quizzes/:id/attempts", h.AttemptQuiz)
	}

	return h
}
