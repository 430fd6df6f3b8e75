package server

import (
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/account"
	googleauth "github.com/Final-Project-HCK-88/KarirKit-sub000/internal/auth"
	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/contracts"
	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/documents"
	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/jobs"
	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/kb"
	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/salary"
	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/shared/config"
	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/shared/metrics"
	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/shared/server/middleware"
	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/shared/server/respond"
	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/shared/storage/db"
	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/usage"
	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/users"
)

// Rate-limit groups.
const (
	rateGroupAI      = "AI"
	rateGroupDefault = "DEFAULT"
)

// RouterDeps carries the handlers the router mounts. Nil handlers are skipped.
type RouterDeps struct {
	Config          config.Config
	DB              *sql.DB
	KBHandler       *kb.Handler
	SalaryHandler   *salary.Handler
	ContractHandler *contracts.Handler
	DocumentHandler *documents.Handler
	JobHandler      *jobs.Handler
	UserHandler     *users.Handler
	UsageHandler    *usage.Handler
	AccountHandler  *account.Handler
	GoogleAuth      *googleauth.GoogleService
	RateLimiter     *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	if !cfg.IsDevLike() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", healthHandler(deps.DB))
	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}

	// Knowledge-base maintenance is operator-only and does not take user identity.
	if deps.KBHandler != nil {
		admin := api.Group("", middleware.AdminToken(cfg.KBAdminToken))
		deps.KBHandler.RegisterRoutes(admin)
	}

	authed := api.Group("",
		middleware.Auth(),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules: map[string]middleware.RateLimitRule{
				rateGroupAI:      {Rate: 0.5, Burst: 5},
				rateGroupDefault: {Rate: 5, Burst: 30},
			},
			DefaultGroup: rateGroupDefault,
			GroupFor:     rateGroupFor,
			Limiter:      deps.RateLimiter,
		}),
	)
	if deps.UserHandler != nil {
		deps.UserHandler.RegisterRoutes(authed)
	}
	if deps.DocumentHandler != nil {
		deps.DocumentHandler.RegisterRoutes(authed)
	}
	if deps.SalaryHandler != nil {
		deps.SalaryHandler.RegisterRoutes(authed)
	}
	if deps.ContractHandler != nil {
		deps.ContractHandler.RegisterRoutes(authed)
	}
	if deps.JobHandler != nil {
		deps.JobHandler.RegisterRoutes(authed)
	}
	if deps.AccountHandler != nil {
		deps.AccountHandler.RegisterRoutes(authed)
	}
	if deps.UsageHandler != nil {
		deps.UsageHandler.RegisterRoutes(authed)
		if cfg.IsDevLike() {
			deps.UsageHandler.RegisterDevRoutes(authed.Group("/dev"))
		}
	}

	r.NoRoute(func(c *gin.Context) {
		respond.Error(c, http.StatusNotFound, "not_found", "route not found", nil)
	})
	return r
}

// rateGroupFor puts model-backed and scraping writes in the tighter bucket.
func rateGroupFor(c *gin.Context) string {
	if c.Request.Method != http.MethodPost {
		return rateGroupDefault
	}
	path := c.Request.URL.Path
	for _, prefix := range []string{"/api/v1/salary/", "/api/v1/contracts", "/api/v1/jobs/"} {
		if strings.HasPrefix(path, prefix) {
			return rateGroupAI
		}
	}
	return rateGroupDefault
}

func healthHandler(sqlDB *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if sqlDB == nil {
			respond.JSON(c, http.StatusOK, gin.H{"ok": true, "database": "memory"})
			return
		}
		if err := db.Healthy(c.Request.Context(), sqlDB, 2*time.Second); err != nil {
			respond.JSON(c, http.StatusServiceUnavailable, gin.H{"ok": false, "database": "unreachable"})
			return
		}
		respond.JSON(c, http.StatusOK, gin.H{"ok": true, "database": "postgres"})
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
