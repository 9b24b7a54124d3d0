package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gsarma/codetester/internal/code"
	"github.com/gsarma/codetester/internal/quiz"
	"github.com/gsarma/codetester/internal/tenant"
)

func (h *Handler) ListQuizzes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"quizzes": h.quizzes.List()})
}

func (h *Handler) GetQuiz(c *gin.Context) {
	q, err := h.quizzes.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, q)
}

// AttemptQuiz grades a submission against the server's judge. Omitting
// session_id starts a new session; its id is echoed back for later attempts.
func (h *Handler) AttemptQuiz(c *gin.Context) {
	t := tenant.FromContext(c)

	var body struct {
		SourceCode string `json:"source_code" binding:"required"`
		SessionID  string `json:"session_id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if body.SessionID == "" {
		body.SessionID = uuid.NewString()
	}

	// Sessions are namespaced per tenant.
	attempt, err := h.quizzes.Attempt(c.Request.Context(), t.ID.String()+":"+body.SessionID, c.Param("id"), body.SourceCode)
	switch {
	case errors.Is(err, quiz.ErrQuizNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	case errors.Is(err, code.ErrUnknownLanguage):
		h.log.Error("quiz language", zap.String("quiz_id", c.Param("id")), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to grade attempt"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id":      body.SessionID,
		"quiz_id":         attempt.QuizID,
		"result":          attempt.Result,
		"incorrect_count": attempt.IncorrectCount,
		"message":         attempt.Message,
	})
}
