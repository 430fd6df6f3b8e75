package kb

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/extract"
	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/shared/server/respond"
	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/shared/util"
)

const maxIngestBytes = 10 << 20

// Handler exposes knowledge-base administration over HTTP.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches KB routes; callers guard the group with an admin check.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/kb/documents", h.ingest)
	rg.GET("/kb/documents", h.list)
	rg.DELETE("/kb/documents/:id", h.delete)
	rg.POST("/kb/search", h.search)
}

type searchRequest struct {
	Query string `json:"query" binding:"required"`
	SearchOptions
	// MinScore shadows the embedded field so an explicit 0 can be told apart from absent.
	MinScore *float64 `json:"minScore"`
}

// ingest accepts either a JSON body or a multipart upload with a "file" part.
func (h *Handler) ingest(c *gin.Context) {
	var in IngestInput
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		parsed, ok := h.readUpload(c)
		if !ok {
			return
		}
		in = parsed
	} else if err := c.ShouldBindJSON(&in); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "title and content are required", nil)
		return
	}

	doc, err := h.Svc.Ingest(c.Request.Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusBadGateway, "ingest_failed", "failed to ingest document", nil)
		}
		return
	}
	respond.JSON(c, http.StatusCreated, doc)
}

func (h *Handler) readUpload(c *gin.Context) (IngestInput, bool) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", []map[string]string{
			{"field": "file", "issue": "required"},
		})
		return IngestInput{}, false
	}
	if fileHeader.Size > maxIngestBytes {
		respond.Error(c, http.StatusRequestEntityTooLarge, "payload_too_large", "file exceeds 10MB", nil)
		return IngestInput{}, false
	}
	f, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "could not read file", nil)
		return IngestInput{}, false
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxIngestBytes+1))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "could not read file", nil)
		return IngestInput{}, false
	}

	mime := util.DetectMimeType(fileHeader.Filename, data)
	text, err := extract.ExtractTextFromBytes(c.Request.Context(), data, mime, fileHeader.Filename)
	if err != nil {
		respond.Error(c, http.StatusUnprocessableEntity, "extraction_failed", "could not extract text from file", nil)
		return IngestInput{}, false
	}

	title := strings.TrimSpace(c.PostForm("title"))
	if title == "" {
		title = fileHeader.Filename
	}
	return IngestInput{
		Title:    title,
		Source:   c.PostForm("source"),
		Category: c.PostForm("category"),
		Content:  text,
	}, true
}

func (h *Handler) list(c *gin.Context) {
	limit, offset := respond.Page(c, 20, 100)
	docs, err := h.Svc.ListDocuments(c.Request.Context(), c.Query("category"), limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list documents", nil)
		return
	}
	respond.OK(c, gin.H{"documents": docs})
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.Svc.DeleteDocument(c.Request.Context(), c.Param("id")); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to delete document", nil)
		}
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "query is required", nil)
		return
	}
	opts := req.SearchOptions
	if req.MinScore != nil {
		opts.MinScore, opts.MinScoreSet = *req.MinScore, true
	}
	result, err := h.Svc.Search(c.Request.Context(), req.Query, opts)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusBadGateway, "search_failed", "knowledge base search failed", nil)
		}
		return
	}
	respond.OK(c, result)
}
