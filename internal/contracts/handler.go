package contracts

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/documents"
	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/shared/server/middleware"
	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/shared/server/respond"
	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/usage"
)

// Handler wires HTTP handlers to the contracts service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches contract routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/contracts", h.create)
	rg.GET("/contracts", h.list)
	rg.GET("/contracts/:id", h.get)
}

type analysisResponse struct {
	ContractID  string     `json:"contractId"`
	DocumentID  string     `json:"documentId"`
	Status      string     `json:"status"`
	Notes       string     `json:"notes,omitempty"`
	Result      *Result    `json:"result,omitempty"`
	Error       *Failure   `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

func toResponse(a Analysis) analysisResponse {
	resp := analysisResponse{
		ContractID:  a.ID,
		DocumentID:  a.DocumentID,
		Status:      a.Status,
		Notes:       a.Notes,
		CreatedAt:   a.CreatedAt,
		CompletedAt: a.CompletedAt,
	}
	switch a.Status {
	case StatusCompleted:
		resp.Result = a.Result
	case StatusFailed:
		resp.Error = a.Failure
	}
	return resp
}

func (h *Handler) create(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, documents.MaxUploadSize)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	a, err := h.Svc.Create(c.Request.Context(), middleware.UserIDFromContext(c), fileHeader.Filename, file, c.PostForm("notes"))
	if err != nil {
		switch {
		case errors.Is(err, usage.ErrLimitReached):
			usage.LimitReached(c)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		case errors.Is(err, documents.ErrUnsupportedType), errors.Is(err, documents.ErrInvalidInput):
			documents.WriteUploadError(c, err)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to start contract analysis", nil)
		}
		return
	}

	c.Set("contractId", a.ID)
	respond.JSON(c, http.StatusAccepted, gin.H{
		"contractId": a.ID,
		"documentId": a.DocumentID,
		"status":     a.Status,
	})
}

func (h *Handler) get(c *gin.Context) {
	a, err := h.Svc.Get(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "contract analysis not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch contract analysis", nil)
		}
		return
	}
	respond.JSON(c, http.StatusOK, toResponse(a))
}

func (h *Handler) list(c *gin.Context) {
	if middleware.IsGuest(c) {
		respond.Error(c, http.StatusUnauthorized, "login_required", "Login required to view history", nil)
		return
	}

	limit, offset := respond.Page(c, 20, 100)
	analyses, err := h.Svc.List(c.Request.Context(), middleware.UserIDFromContext(c), limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list contract analyses", nil)
		return
	}

	resp := make([]gin.H, 0, len(analyses))
	for _, a := range analyses {
		item := gin.H{
			"contractId": a.ID,
			"documentId": a.DocumentID,
			"status":     a.Status,
			"createdAt":  a.CreatedAt,
		}
		if a.Status == StatusCompleted && a.Result != nil {
			item["overallRisk"] = a.Result.OverallRisk
			item["fairnessScore"] = a.Result.FairnessScore
			item["summary"] = a.Result.Summary
		}
		resp = append(resp, item)
	}
	respond.JSON(c, http.StatusOK, resp)
}
