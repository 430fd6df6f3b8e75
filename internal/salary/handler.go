package salary

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/shared/server/middleware"
	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/shared/server/respond"
	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/usage"
)

// Handler wires HTTP handlers to the salary service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches salary routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/salary/benchmark", h.benchmark)
	rg.GET("/salary/requests", h.list)
	rg.GET("/salary/requests/:id", h.get)
}

func (h *Handler) benchmark(c *gin.Context) {
	var in Input
	if err := c.ShouldBindJSON(&in); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	req, err := h.Svc.Benchmark(c.Request.Context(), middleware.UserIDFromContext(c), in)
	if err != nil {
		var verr *ValidationError
		switch {
		case errors.As(err, &verr):
			respond.Error(c, http.StatusBadRequest, "validation_error", "invalid salary input", verr.Issues)
		case errors.Is(err, usage.ErrLimitReached):
			usage.LimitReached(c)
		case errors.Is(err, ErrGenerationFailed):
			respond.Error(c, http.StatusBadGateway, "generation_failed", "could not generate a salary benchmark, please retry", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to benchmark salary", nil)
		}
		return
	}

	c.Set("salaryRequestId", req.ID)
	c.Set("cacheHit", req.CacheHit)
	respond.OK(c, req)
}

func (h *Handler) get(c *gin.Context) {
	req, err := h.Svc.Get(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "salary request not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch salary request", nil)
		}
		return
	}
	respond.OK(c, req)
}

func (h *Handler) list(c *gin.Context) {
	limit, offset := respond.Page(c, 20, 100)
	reqs, err := h.Svc.List(c.Request.Context(), middleware.UserIDFromContext(c), limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list salary requests", nil)
		return
	}
	respond.OK(c, gin.H{"requests": reqs})
}
