package container

import (
	"context"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"

	"polypath/adapters/llm"
	"polypath/adapters/nullstore"
	"polypath/adapters/postgres"
	"polypath/adapters/sandbox"
	"polypath/adapters/search"
	"polypath/api"
	"polypath/app"
	"polypath/internal/config"
	"polypath/ports"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config

	// Infrastructure
	DB *sqlx.DB

	// Repositories (data access layer)
	RoadmapRepo  ports.RoadmapRepository
	JobMatchRepo ports.JobMatchRepository
	ResumeRepo   ports.ResumeRepository

	// External providers
	Generator ports.Generator
	Sandbox   ports.SandboxProvider
	Providers []ports.SearchProvider

	// Services
	DraftService       *app.DraftService
	RealizationService *app.RealizationService
	JobSearchService   *app.JobSearchService
	ResumeService      *app.ResumeService

	// HTTP surface
	Server *api.Server
}

// New creates a new dependency injection container
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	return &Container{Config: cfg}, nil
}

// InitWithDatabase initializes all components. A nil database runs the
// application in no-persistence mode: repositories become no-ops and every
// write is logged as skipped.
func (c *Container) InitWithDatabase(db *sqlx.DB) error {
	c.DB = db

	c.initRepositories()
	c.initProviders()
	c.initServices()

	c.Server = api.NewServer(c.DraftService, c.RealizationService, c.JobSearchService, c.ResumeService, c.RoadmapRepo, c.Sandbox)
	return nil
}

func (c *Container) initRepositories() {
	if c.DB == nil {
		log.Println("[Container] persistence disabled; repositories are no-ops")
		c.RoadmapRepo = nullstore.NewRoadmapRepository()
		c.JobMatchRepo = nullstore.NewJobMatchRepository()
		c.ResumeRepo = nullstore.NewResumeRepository()
		return
	}

	c.RoadmapRepo = postgres.NewRoadmapRepository(c.DB)
	c.JobMatchRepo = postgres.NewJobMatchRepository(c.DB)
	c.ResumeRepo = postgres.NewResumeRepository(c.DB)
}

func (c *Container) initProviders() {
	c.Generator = llm.NewGeminiClient(c.Config.AI.GeminiKey, c.Config.AI.GeminiModel, c.Config.AI.Timeout)
	c.Sandbox = sandbox.NewE2BProvider(c.Config.Sandbox.E2BKey)

	// Merge priority order: deep entity search first, web search second,
	// scrape fallback last.
	c.Providers = []ports.SearchProvider{
		search.NewParallelProvider(c.Config.Search.ParallelKey),
		search.NewBraveProvider(c.Config.Search.BraveKey),
		search.NewDuckDuckGoProvider(),
	}

	if c.Config.AI.GeminiKey == "" {
		log.Println("[Container] GEMINI_API_KEY not set; generation will degrade to fallbacks")
	}
}

func (c *Container) initServices() {
	aggregator := app.NewAggregator(c.Providers, c.Sandbox, c.Config.Sandbox.Template)
	engine := app.NewPersonaEngine(c.Generator, c.Config.AI.PersonaConcurrency)

	c.DraftService = app.NewDraftService(c.Generator, c.RoadmapRepo)
	c.RealizationService = app.NewRealizationService(c.RoadmapRepo, aggregator, engine, c.Generator)
	c.JobSearchService = app.NewJobSearchService(c.Sandbox, c.JobMatchRepo, c.RoadmapRepo, c.Config.Sandbox)
	c.ResumeService = app.NewResumeService(c.Sandbox, c.Generator, c.ResumeRepo, c.RoadmapRepo, c.Config.Sandbox)
}

// Shutdown releases container resources.
func (c *Container) Shutdown(ctx context.Context) error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
