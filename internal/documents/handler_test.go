package documents

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/shared/storage/object/local"
)

func newTestRouter(t *testing.T, userID string, guest bool) (*gin.Engine, *Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc := NewService(local.New(t.TempDir()), NewMemoryRepo(), "local")
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userId", userID)
		c.Set("isGuest", guest)
		c.Next()
	})
	NewHandler(svc).RegisterRoutes(r.Group("/api/v1"))
	return r, svc
}

func uploadRequest(t *testing.T, fileName, kind string, content []byte) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	fileWriter, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fileWriter.Write(content); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if kind != "" {
		_ = writer.WriteField("kind", kind)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestDocumentsUploadCurrentAndText(t *testing.T) {
	router, _ := newTestRouter(t, "google:1", false)

	resp := serve(router, uploadRequest(t, "cv.txt", "", []byte("Go engineer with  Kafka\n\n\nexperience")))
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var created DocumentResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if created.DocumentID == "" || created.Kind != KindCV || created.Extracted {
		t.Fatalf("unexpected document: %+v", created)
	}

	contract := serve(router, uploadRequest(t, "pkwt.txt", "contract", []byte("Perjanjian kerja waktu tertentu")))
	if contract.Code != http.StatusCreated {
		t.Fatalf("contract upload: %d", contract.Code)
	}

	current := serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/documents/current?kind=cv", nil))
	if current.Code != http.StatusOK || !strings.Contains(current.Body.String(), created.DocumentID) {
		t.Fatalf("current cv: %d %s", current.Code, current.Body.String())
	}
	currentContract := serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/documents/current?kind=contract", nil))
	if !strings.Contains(currentContract.Body.String(), "pkwt.txt") {
		t.Fatalf("current contract: %s", currentContract.Body.String())
	}

	text := serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/documents/"+created.DocumentID+"/text", nil))
	if text.Code != http.StatusOK {
		t.Fatalf("text: %d %s", text.Code, text.Body.String())
	}
	var body struct {
		Text string `json:"text"`
	}
	_ = json.Unmarshal(text.Body.Bytes(), &body)
	if !strings.HasPrefix(body.Text, "Go engineer") {
		t.Fatalf("unexpected text %q", body.Text)
	}

	list := serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/documents?kind=cv", nil))
	var docs []DocumentResponse
	if err := json.Unmarshal(list.Body.Bytes(), &docs); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(docs) != 1 || !docs[0].Extracted {
		t.Fatalf("expected one extracted cv, got %+v", docs)
	}
}

func TestDocumentsErrors(t *testing.T) {
	router, _ := newTestRouter(t, "guest:abcdefgh", true)

	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	if resp := serve(router, uploadRequest(t, "photo.png", "", png)); resp.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415, got %d", resp.Code)
	}
	if resp := serve(router, uploadRequest(t, "cv.txt", "payslip", []byte("hello"))); resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown kind, got %d", resp.Code)
	}
	if resp := serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/documents/current", nil)); resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
	if resp := serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/documents", nil)); resp.Code != http.StatusUnauthorized {
		t.Fatalf("guests cannot list, got %d", resp.Code)
	}
	if resp := serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/documents/missing/text", nil)); resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for text, got %d", resp.Code)
	}
}
