package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/scripture-analysis-api/internal/analyzer"
	"github.com/scripture-analysis-api/internal/config"
	"github.com/scripture-analysis-api/internal/corpus"
	"github.com/scripture-analysis-api/internal/handlers"
	"github.com/scripture-analysis-api/internal/middleware"
	"github.com/scripture-analysis-api/internal/reference"
	"github.com/scripture-analysis-api/internal/repository"
	"github.com/scripture-analysis-api/internal/repository/postgres"
	"github.com/scripture-analysis-api/internal/repository/vertex"
	"github.com/scripture-analysis-api/internal/services"
	platformconfig "github.com/scripture-analysis-api/pkg/platform/config"
	"github.com/scripture-analysis-api/pkg/platform/db"
	pkgservices "github.com/scripture-analysis-api/pkg/platform/services"
)

func main() {
	// Load .env file if present
	_ = godotenv.Load()

	// Get configuration
	cfg := config.GetConfig()

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(middleware.CORSMiddleware())

	// Initialize PostgreSQL
	ctx := context.Background()
	if err := db.InitPostgres(ctx); err != nil {
		log.Fatalf("Failed to initialize PostgreSQL: %v", err)
	}
	log.Println("Database initialization complete")
	pgDB := db.GetPostgres()

	// Load the corpus index. Built once at startup; every reference
	// resolution and range read goes through it without touching the
	// database again.
	idx, err := corpus.Load(ctx, pgDB)
	if err != nil {
		log.Fatalf("Failed to load corpus index: %v", err)
	}
	log.Printf("Corpus index loaded: %d books, %d verses", len(idx.Books()), idx.VerseCount())
	resolver := reference.NewResolver(idx)

	// Create repositories
	analysisRepo := postgres.NewAnalysisCacheRepository(pgDB)
	prophecyRepo := postgres.NewProphecyRepository(pgDB)
	searchCacheRepo := postgres.NewSearchCacheRepository(pgDB)
	verseSearchRepo := postgres.NewVerseSearchRepository(pgDB)

	// Create vector search repository based on configuration
	var vectorRepo repository.VectorSearchRepository
	var vertexRepo *vertex.VectorSearchRepository // For cleanup

	switch cfg.VectorBackend {
	case "vertex":
		log.Println("Using Vertex AI Vector Search backend")
		vertexCfg := vertex.Config{
			ProjectID:            cfg.VertexProjectID,
			Location:             cfg.VertexLocation,
			IndexEndpointID:      cfg.VertexIndexEndpointID,
			DeployedIndexID:      cfg.VertexDeployedIndexID,
			PublicEndpointDomain: cfg.VertexPublicEndpointDomain,
		}
		var err error
		vertexRepo, err = vertex.NewVectorSearchRepository(ctx, vertexCfg, pgDB)
		if err != nil {
			log.Fatalf("Failed to create Vertex AI vector repository: %v", err)
		}
		vectorRepo = vertexRepo
	default:
		log.Println("Using pgvector backend (unindexed)")
		vectorRepo = postgres.NewVectorSearchRepository(pgDB)
	}

	// Create the generative analyzer
	geminiAnalyzer, err := analyzer.NewGeminiAnalyzer(ctx, platformconfig.GetConfig())
	if err != nil {
		log.Fatalf("Failed to create analyzer: %v", err)
	}

	// Create services
	embeddingsSvc := pkgservices.GetEmbeddingsService()
	if err := pkgservices.GetInitError(); err != nil {
		log.Fatalf("Failed to initialize embeddings service: %v", err)
	}

	passageSvc := services.NewPassageService(idx, resolver)
	analysisSvc := services.NewAnalysisService(idx, resolver, analysisRepo, geminiAnalyzer)
	prophecySvc := services.NewProphecyService(idx, prophecyRepo)
	searchSvc := services.NewSearchService(verseSearchRepo, searchCacheRepo, vectorRepo, embeddingsSvc, cfg.SearchSamplesPerBook)

	// Create API group with prefix
	api := e.Group(cfg.APIPrefix)

	// Register handlers
	handlers.NewHealthHandler(idx).RegisterRoutes(api)
	handlers.NewBibleHandler(passageSvc).RegisterRoutes(api)
	handlers.NewAnalysisHandler(analysisSvc).RegisterRoutes(api)
	handlers.NewProphecyHandler(prophecySvc).RegisterRoutes(api)
	handlers.NewSearchHandler(searchSvc).RegisterRoutes(api)

	// Root health check
	e.GET("/", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"name":    cfg.APITitle,
			"version": cfg.APIVersion,
			"status":  "running",
		})
	})

	// Start server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		log.Printf("Starting %s v%s on %s", cfg.APITitle, cfg.APIVersion, addr)
		if err := e.Start(addr); err != nil {
			log.Printf("Server stopped: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down server: %v", err)
	}

	if err := db.ClosePostgres(); err != nil {
		log.Printf("Error closing PostgreSQL: %v", err)
	}

	if err := geminiAnalyzer.Close(); err != nil {
		log.Printf("Error closing analyzer: %v", err)
	}

	// Close Vertex AI client if used
	if vertexRepo != nil {
		if err := vertexRepo.Close(); err != nil {
			log.Printf("Error closing Vertex AI client: %v", err)
		}
	}

	log.Println("Server stopped")
}
