package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/account"
	googleauth "github.com/Final-Project-HCK-88/KarirKit-sub000/internal/auth"
	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/contracts"
	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/documents"
	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/jobs"
	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/kb"
	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/llm"
	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/llm/gemini"
	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/llm/openai"
	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/llm/openrouter"
	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/queue"
	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/salary"
	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/shared/config"
	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/shared/server"
	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/shared/storage/cache"
	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/shared/storage/db"
	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/shared/storage/object"
	localstore "github.com/Final-Project-HCK-88/KarirKit-sub000/internal/shared/storage/object/local"
	s3store "github.com/Final-Project-HCK-88/KarirKit-sub000/internal/shared/storage/object/s3"
	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/usage"
	"github.com/Final-Project-HCK-88/KarirKit-sub000/internal/users"
)

// App holds shared dependencies for the API, the worker and the CLIs.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore
	Cache  cache.Cache
	Queue  queue.Client

	Generator llm.Generator
	Embedder  llm.Embedder

	KBService        *kb.Service
	SalaryService    *salary.Service
	ContractsService *contracts.Service
	DocumentsService *documents.Service
	JobsService      *jobs.Service
	UsersService     *users.Service
	UsageService     *usage.Service
	AccountService   *account.Service
	GoogleAuth       *googleauth.GoogleService

	closers []func() error
}

// Build prepares every dependency and the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()
	app := &App{Config: cfg}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if sqlDB != nil {
		app.DB = sqlDB
		app.closers = append(app.closers, sqlDB.Close)
		if cfg.MigrateOnStartup {
			if err := db.RunMigrations(ctx, sqlDB); err != nil {
				app.Close()
				return nil, fmt.Errorf("run migrations: %w", err)
			}
		}
	}

	if app.Store, err = buildStore(ctx, cfg); err != nil {
		app.Close()
		return nil, err
	}
	if err := app.buildCache(ctx); err != nil {
		app.Close()
		return nil, err
	}
	if app.Queue, err = buildQueue(ctx, cfg); err != nil {
		app.Close()
		return nil, err
	}
	if err := app.buildLLM(ctx); err != nil {
		app.Close()
		return nil, err
	}

	app.buildServices()
	app.Router = server.NewRouter(server.RouterDeps{
		Config:          cfg,
		DB:              app.DB,
		KBHandler:       kb.NewHandler(app.KBService),
		SalaryHandler:   salary.NewHandler(app.SalaryService),
		ContractHandler: contracts.NewHandler(app.ContractsService),
		DocumentHandler: documents.NewHandler(app.DocumentsService),
		JobHandler:      jobs.NewHandler(app.JobsService),
		UserHandler:     users.NewHandler(app.UsersService),
		UsageHandler:    usage.NewHandler(app.UsageService),
		AccountHandler:  account.NewHandler(app.AccountService),
		GoogleAuth:      app.GoogleAuth,
	})
	return app, nil
}

// Close releases the database pool and cache connections.
func (a *App) Close() {
	if a == nil {
		return
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Printf("bootstrap: close: %v", err)
		}
	}
	a.closers = nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.IsDevLike() {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err != nil {
		if cfg.IsDevLike() {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func (a *App) buildCache(ctx context.Context) error {
	if strings.TrimSpace(a.Config.RedisURL) == "" {
		a.Cache = cache.NewMemory(nil)
		return nil
	}
	rc, err := cache.NewRedis(ctx, a.Config.RedisURL)
	if err != nil {
		if a.Config.IsDevLike() {
			log.Printf("bootstrap: redis unavailable; using in-memory cache: %v", err)
			a.Cache = cache.NewMemory(nil)
			return nil
		}
		return err
	}
	a.Cache = rc
	a.closers = append(a.closers, rc.Close)
	return nil
}

func buildQueue(ctx context.Context, cfg config.Config) (queue.Client, error) {
	if strings.TrimSpace(cfg.SQSQueueURL) == "" {
		return nil, nil
	}
	return queue.NewSQSClient(ctx, cfg.SQSQueueURL, cfg.AWSRegion)
}

// buildLLM picks providers from config. A provider without a key degrades to
// llm.Placeholder in dev and is an error elsewhere.
func (a *App) buildLLM(ctx context.Context) error {
	cfg := a.Config
	var gem *gemini.Client
	geminiClient := func() (*gemini.Client, error) {
		if gem != nil {
			return gem, nil
		}
		c, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.LLMModel, cfg.EmbeddingModel)
		if err != nil {
			return nil, err
		}
		gem = c
		return gem, nil
	}

	var (
		gen llm.Generator
		err error
	)
	switch cfg.LLMProvider {
	case "gemini":
		gen, err = geminiClient()
	case "openrouter":
		gen, err = openrouter.NewClient(cfg.OpenRouterAPIKey, cfg.LLMModel)
	case "none":
		gen = llm.Placeholder{}
	default:
		gen, err = openai.NewClient(cfg.OpenAIAPIKey, cfg.LLMModel, cfg.EmbeddingModel)
	}
	if gen, err = a.orPlaceholder("generator", gen, err); err != nil {
		return err
	}

	var emb llm.Embedder
	switch cfg.EmbeddingProvider {
	case "gemini":
		emb, err = geminiClient()
	case "none":
		emb = llm.Placeholder{}
	default:
		emb, err = openai.NewClient(cfg.OpenAIAPIKey, cfg.LLMModel, cfg.EmbeddingModel)
	}
	if err != nil {
		if !cfg.IsDevLike() {
			return fmt.Errorf("embedder: %w", err)
		}
		log.Printf("bootstrap: embedder unavailable; knowledge-base search is keyword only: %v", err)
		emb = llm.Placeholder{}
	}

	a.Generator = llm.WithRetry(gen)
	a.Embedder = llm.WithEmbedRetry(emb)
	return nil
}

func (a *App) orPlaceholder(what string, gen llm.Generator, err error) (llm.Generator, error) {
	if err == nil {
		return gen, nil
	}
	if !a.Config.IsDevLike() {
		return nil, fmt.Errorf("%s: %w", what, err)
	}
	log.Printf("bootstrap: %s unavailable; model calls will fail: %v", what, err)
	return llm.Placeholder{}, nil
}

func (a *App) buildServices() {
	var (
		kbRepo       kb.Repo
		salaryRepo   salary.Repo
		contractRepo contracts.Repo
		docRepo      documents.DocumentsRepo
		userRepo     users.Repo
	)
	if a.DB != nil {
		kbRepo = &kb.PGRepo{DB: a.DB}
		salaryRepo = &salary.PGRepo{DB: a.DB}
		contractRepo = &contracts.PGRepo{DB: a.DB}
		docRepo = &documents.PGRepo{DB: a.DB}
		userRepo = &users.PGRepo{DB: a.DB}
		a.UsageService = usage.NewPostgresService(usage.NewPGStore(a.DB))
		a.AccountService = account.NewService(a.DB, nil, nil, nil)
	} else {
		memSalary := salary.NewMemoryRepo()
		memContracts := contracts.NewMemoryRepo()
		memDocs := documents.NewMemoryRepo()
		kbRepo = kb.NewMemoryRepo()
		salaryRepo = memSalary
		contractRepo = memContracts
		docRepo = memDocs
		userRepo = users.NewMemoryRepo()
		a.UsageService = usage.NewService()
		a.AccountService = account.NewService(nil, memDocs, memContracts, memSalary)
	}

	cfg := a.Config
	a.KBService = kb.NewService(kbRepo, a.Embedder, kb.SearchOptions{
		TopK:          cfg.KBTopK,
		VectorWeight:  cfg.KBVectorWeight,
		KeywordWeight: cfg.KBKeywordWeight,
		MinScore:      cfg.KBMinScore,
	})
	a.DocumentsService = documents.NewService(a.Store, docRepo, cfg.ObjectStoreType)
	a.SalaryService = salary.NewService(salaryRepo, a.KBService, a.Generator, a.Cache, cfg.CacheTTL, a.UsageService)
	a.ContractsService = contracts.NewService(contractRepo, a.DocumentsService, a.Generator, a.UsageService, a.Queue)
	a.JobsService = jobs.NewService(jobs.NewLinkedInSource(cfg.LinkedInRPS), a.DocumentsService, a.Cache, cfg.CacheTTL, a.UsageService)
	a.UsersService = users.NewService(userRepo)
	a.GoogleAuth = googleauth.NewGoogleService(
		cfg.GoogleClientID,
		cfg.GoogleClientSecret,
		cfg.GoogleRedirectURL,
		cfg.UIRedirectURL,
		a.UsersService,
	)
}
