package jobs

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/extract"
	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/shared/server/middleware"
	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/shared/server/respond"
	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/usage"
)

// Handler wires HTTP handlers to the jobs service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches job routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/jobs/search", h.search)
	rg.POST("/jobs/match", h.match)
}

func (h *Handler) search(c *gin.Context) {
	page := 0
	if raw := c.Query("page"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			respond.Error(c, http.StatusBadRequest, "validation_error", "page must be a non-negative integer", nil)
			return
		}
		page = v
	}
	q := Query{
		Keywords: c.Query("keywords"),
		Location: c.Query("location"),
		WorkType: c.Query("workType"),
		Page:     page,
	}
	listings, err := h.Svc.Search(c.Request.Context(), q)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, gin.H{"jobs": listings, "page": page})
}

func (h *Handler) match(c *gin.Context) {
	var in MatchInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	res, err := h.Svc.Match(c.Request.Context(), middleware.UserIDFromContext(c), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Set("cacheHit", res.CacheHit)
	respond.OK(c, res)
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, usage.ErrLimitReached):
		usage.LimitReached(c)
	case errors.Is(err, ErrNoCV):
		respond.Error(c, http.StatusNotFound, "cv_not_found", "upload a CV before matching jobs", nil)
	case errors.Is(err, ErrEmptyCV), errors.Is(err, extract.ErrEmptyText):
		respond.Error(c, http.StatusUnprocessableEntity, "empty_cv", "no readable text found in the CV", nil)
	case errors.Is(err, extract.ErrUnsupported):
		respond.Error(c, http.StatusUnsupportedMediaType, "unsupported_type", "the CV format cannot be read", nil)
	case errors.Is(err, ErrRateLimited):
		respond.Error(c, http.StatusServiceUnavailable, "upstream_rate_limited", "job source is rate limiting, try again later", nil)
	default:
		respond.Error(c, http.StatusBadGateway, "upstream_error", "failed to fetch jobs", nil)
	}
}
