package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/gsarma/codetester/internal/store"
	"github.com/gsarma/codetester/internal/tenant"
)

// GetJob reports the queue state of a job owned by the calling tenant.
func (h *Handler) GetJob(c *gin.Context) {
	t := tenant.FromContext(c)
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job id"})
		return
	}

	job, err := h.queries.GetJob(c.Request.Context(), store.GetJobParams{ID: jobID, TenantID: t.ID})
	if errors.Is(err, pgx.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}
	if err != nil {
		h.log.Error("get job", zap.String("job_id", jobID.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load job"})
		return
	}

	c.JSON(http.StatusOK, job)
}
