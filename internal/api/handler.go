package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gsarma/codetester/internal/code"
	"github.com/gsarma/codetester/internal/quiz"
	"github.com/gsarma/codetester/internal/store"
	"github.com/gsarma/codetester/internal/tenant"
)

// Deps are the collaborators the HTTP layer and job executor share.
type Deps struct {
	Queries   store.Querier
	Tenants   *tenant.Service
	Languages *code.Catalog
	Quizzes   *quiz.Service
	// Judge0 is the server-wide judge; tenants may override it per provider.
	Judge0 code.Judge0Config
	Poll   code.PollConfig
	Logger *zap.Logger
}

type Handler struct {
	queries   store.Querier
	tenantSvc *tenant.Service
	langs     *code.Catalog
	quizzes   *quiz.Service
	judge     code.Judge0Config
	poll      code.PollConfig
	log       *zap.Logger
}

func NewHandler(d Deps) *Handler {
	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}
	langs := d.Languages
	if langs == nil {
		langs = code.DefaultCatalog()
	}
	return &Handler{
		queries:   d.Queries,
		tenantSvc: d.Tenants,
		langs:     langs,
		quizzes:   d.Quizzes,
		judge:     d.Judge0,
		poll:      d.Poll,
		log:       log,
	}
}

// CreateTenant provisions a new tenant and returns the API key (shown once).
func (h *Handler) CreateTenant(c *gin.Context) {
	apiKey, tenantID, err := h.tenantSvc.Create(c.Request.Context())
	if err != nil {
		h.log.Error("create tenant", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create tenant"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"tenant_id": tenantID,
		"api_key":   apiKey,
		"note":      "Store this API key; it will not be shown again.",
	})
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type languageResponse struct {
	code.LanguageSpec
	StarterCode string `json:"starter_code,omitempty"`
}

// ListLanguages returns the language catalog with sandbox starter snippets.
func (h *Handler) ListLanguages(c *gin.Context) {
	all := h.langs.All()
	out := make([]languageResponse, 0, len(all))
	for _, l := range all {
		out = append(out, languageResponse{LanguageSpec: l, StarterCode: quiz.StarterCode(l.Name)})
	}
	c.JSON(http.StatusOK, gin.H{"languages": out})
}
