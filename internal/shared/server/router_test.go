package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/kb"
	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/llm"
	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/shared/config"
	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/usage"
)

func newTestRouter(env string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewRouter(RouterDeps{
		Config:       config.Config{Env: env, KBAdminToken: "kb-secret"},
		KBHandler:    kb.NewHandler(kb.NewService(kb.NewMemoryRepo(), llm.Placeholder{}, kb.SearchOptions{})),
		UsageHandler: usage.NewHandler(usage.NewService()),
	})
}

func serve(r http.Handler, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestHealthAndMetrics(t *testing.T) {
	r := newTestRouter("dev")
	resp := serve(r, http.MethodGet, "/api/v1/health", nil)
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), `"database":"memory"`) {
		t.Fatalf("health: %d %s", resp.Code, resp.Body.String())
	}
	resp = serve(r, http.MethodGet, "/metrics", nil)
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), "kb_searches_total") {
		t.Fatalf("metrics: %d", resp.Code)
	}
}

func TestIdentityRequired(t *testing.T) {
	r := newTestRouter("dev")
	if got := serve(r, http.MethodGet, "/api/v1/usage", nil); got.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without identity, got %d", got.Code)
	}
	got := serve(r, http.MethodGet, "/api/v1/usage", map[string]string{"X-Guest-Id": "guest-0001"})
	if got.Code != http.StatusOK || !strings.Contains(got.Body.String(), `"plan":"Guest"`) {
		t.Fatalf("expected guest usage, got %d %s", got.Code, got.Body.String())
	}
}

func TestKBRoutesNeedAdminToken(t *testing.T) {
	r := newTestRouter("dev")
	if got := serve(r, http.MethodGet, "/api/v1/kb/documents", nil); got.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", got.Code)
	}
	got := serve(r, http.MethodGet, "/api/v1/kb/documents", map[string]string{"X-KB-Admin-Token": "kb-secret"})
	if got.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d %s", got.Code, got.Body.String())
	}
}

func TestDevRoutesOnlyInDev(t *testing.T) {
	guest := map[string]string{"X-Guest-Id": "guest-0002"}
	if got := serve(newTestRouter("dev"), http.MethodPost, "/api/v1/dev/usage/reset", guest); got.Code != http.StatusOK {
		t.Fatalf("dev: expected 200, got %d", got.Code)
	}
	if got := serve(newTestRouter("production"), http.MethodPost, "/api/v1/dev/usage/reset", guest); got.Code != http.StatusNotFound {
		t.Fatalf("production: expected 404, got %d", got.Code)
	}
}

func TestRateGroupFor(t *testing.T) {
	cases := []struct {
		method, path, want string
	}{
		{http.MethodPost, "/api/v1/salary/benchmark", rateGroupAI},
		{http.MethodPost, "/api/v1/contracts", rateGroupAI},
		{http.MethodPost, "/api/v1/jobs/match", rateGroupAI},
		{http.MethodGet, "/api/v1/contracts", rateGroupDefault},
		{http.MethodPost, "/api/v1/documents", rateGroupDefault},
	}
	for _, tc := range cases {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(tc.method, tc.path, nil)
		if got := rateGroupFor(c); got != tc.want {
			t.Fatalf("%s %s: expected %s, got %s", tc.method, tc.path, tc.want, got)
		}
	}
}

func TestAddr(t *testing.T) {
	for in, want := range map[string]string{"": ":8080", "9000": ":9000", ":7000": ":7000"} {
		if got := Addr(in); got != want {
			t.Fatalf("Addr(%q) = %q, want %q", in, got, want)
		}
	}
}
