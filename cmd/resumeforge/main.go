// resumeforge runs the resume ingestion engine: an HTTP API that accepts
// uploaded resumes, extracts structured fields through the orchestrator,
// and indexes the result into a vector store for downstream retrieval.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/ats-ingest/resumeforge/pkg/api"
	"github.com/ats-ingest/resumeforge/pkg/config"
	"github.com/ats-ingest/resumeforge/pkg/database"
	"github.com/ats-ingest/resumeforge/pkg/embedding"
	"github.com/ats-ingest/resumeforge/pkg/extract"
	"github.com/ats-ingest/resumeforge/pkg/llmgateway"
	"github.com/ats-ingest/resumeforge/pkg/pipeline"
	"github.com/ats-ingest/resumeforge/pkg/promptstore"
	"github.com/ats-ingest/resumeforge/pkg/repository"
	"github.com/ats-ingest/resumeforge/pkg/vectorindex"
)

// promptCacheTTL bounds how long the Prompt Store's read-through cache
// holds a (master_category, category) -> prompt entry before reverting to
// the database.
const promptCacheTTL = 5 * time.Minute

const (
	exitSuccess          = 0
	exitConfigError      = 1
	exitCollaboratorDown = 2
	exitPipelineFatal    = 3
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	configDir := flag.String("config-dir", getEnv("CONFIG_DIR", "./deploy/config"), "Path to configuration directory")
	flag.Parse()

	envPath := filepath.Join(*configDir, ".env")
	if err := godotenv.Load(envPath); err != nil {
		log.Printf("Warning: could not load %s: %v", envPath, err)
	} else {
		log.Printf("Loaded environment from %s", envPath)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Initialize(ctx, *configDir)
	if err != nil {
		log.Printf("configuration error: %v", err)
		os.Exit(exitConfigError)
	}

	dbClient, err := connectDatabase(ctx, cfg)
	if err != nil {
		log.Printf("database unreachable: %v", err)
		os.Exit(exitCollaboratorDown)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			log.Printf("error closing database client: %v", err)
		}
	}()
	log.Println("connected to PostgreSQL database")

	backend, err := buildVectorBackend(cfg)
	if err != nil {
		log.Printf("vector backend unreachable: %v", err)
		os.Exit(exitCollaboratorDown)
	}

	repo := repository.New(dbClient.DB())
	prompts := promptstore.New(dbClient.DB(), promptCacheTTL)

	llm := llmgateway.New(cfg.ModelServer.BaseURL, cfg.ModelServer.PreferredModel, cfg.ModelServer.FallbackModel, cfg.ModelServer.RequestTimeout)
	embedder := embedding.New(cfg.ModelServer.BaseURL, cfg.Embedding.PreferredModel, cfg.Embedding.FallbackModel, cfg.Embedding.Dimension, cfg.Embedding.RequestTimeout)
	domainExtractor := extract.NewDomainExtractor(llm)

	indexer := vectorindex.New(backend, embedder, repo, cfg.Chunking.ChunkSize, cfg.Chunking.ChunkOverlap, cfg.Embedding.BatchSize, cfg.VectorIndex.MetadataTextCap)

	orchestratorLogger := slog.With("component", "pipeline")
	orchestrator := pipeline.New(repo, llm, domainExtractor, prompts, pipeline.Config{
		MaxConcurrentExtractors: cfg.Pipeline.MaxConcurrentResumes,
		PerResumeDeadline:       cfg.Pipeline.PerResumeDeadline,
		DefaultExtractorTimeout: cfg.Pipeline.DefaultExtractorTimeout,
		ExtractorTimeouts:       cfg.ExtractorTimeouts,
		ShutdownGracePeriod:     cfg.Pipeline.ShutdownGracePeriod,
	}, orchestratorLogger)

	batcher := pipeline.NewIndexBatcher(repo, indexer, cfg.Pipeline.MaxConcurrentResumes, orchestratorLogger)

	server := api.NewServer(orchestrator, batcher, prompts, api.DatabaseHealth{Client: dbClient}, slog.With("component", "api"))

	gin.SetMode(getEnv("GIN_MODE", "release"))
	router := gin.Default()
	server.RegisterRoutes(router)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{Addr: addr, Handler: router}

	serveErrCh := make(chan error, 1)
	go func() {
		log.Printf("HTTP server listening on %s", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErrCh <- err
			return
		}
		serveErrCh <- nil
	}()

	select {
	case <-ctx.Done():
		log.Println("shutdown signal received, draining in-flight resumes")
	case err := <-serveErrCh:
		if err != nil {
			log.Printf("HTTP server failed: %v", err)
			os.Exit(exitPipelineFatal)
		}
	}

	orchestrator.Shutdown(cfg.Pipeline.ShutdownGracePeriod)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Pipeline.ShutdownGracePeriod)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("error during HTTP server shutdown: %v", err)
	}

	os.Exit(exitSuccess)
}

// connectDatabase adapts config.DatabaseConfig (YAML + env-var
// indirection via PasswordEnv) into database.Config and opens the pool.
func connectDatabase(ctx context.Context, cfg *config.Config) (*database.Client, error) {
	dc := cfg.Database
	dbCfg := database.Config{
		Host:            dc.Host,
		Port:            dc.Port,
		User:            dc.User,
		Password:        os.Getenv(dc.PasswordEnv),
		Database:        dc.Database,
		SSLMode:         dc.SSLMode,
		MaxOpenConns:    dc.MaxOpenConns,
		MaxIdleConns:    dc.MaxIdleConns,
		ConnMaxLifetime: dc.ConnMaxLifetime,
		ConnMaxIdleTime: dc.ConnMaxIdleTime,
	}
	return database.NewClient(ctx, dbCfg)
}

// buildVectorBackend selects the Remote or LocalIndex vector backend per
// config.VectorIndexConfig.Backend.
func buildVectorBackend(cfg *config.Config) (vectorindex.Backend, error) {
	switch cfg.VectorIndex.Backend {
	case "remote":
		rc := cfg.VectorIndex.Remote
		return vectorindex.NewRemoteBackend(rc.BaseURL, rc.APIKeyEnv, cfg.ModelServer.RequestTimeout), nil
	case "local":
		lc := cfg.VectorIndex.Local
		return vectorindex.NewLocalBackend(lc.DBPath, cfg.Embedding.Dimension)
	default:
		return nil, fmt.Errorf("unknown vector_index.backend %q", cfg.VectorIndex.Backend)
	}
}
