// Package main starts the document Q&A server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"docqa-go/internal/config"
	"docqa-go/internal/handler"
	"docqa-go/internal/pipeline"
	"docqa-go/internal/rag"
	"docqa-go/internal/repository"
	"docqa-go/internal/service"
	"docqa-go/internal/vectorindex"
	"docqa-go/pkg/database"
	"docqa-go/pkg/embedding"
	"docqa-go/pkg/kafka"
	"docqa-go/pkg/log"
	"docqa-go/pkg/storage"
	"docqa-go/pkg/tika"
	"docqa-go/pkg/token"
)

func main() {
	configPath := flag.String("config", "./configs/config.yaml", "path to the config file")
	flag.Parse()

	config.Init(*configPath)
	cfg := config.Conf

	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync()
	log.Info("logger initialized")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// core
	provider, err := embedding.NewProviderFromConfig(cfg.Embedding)
	if err != nil {
		log.Fatal("invalid embedding config", err)
	}
	segmenter, err := pipeline.NewSegmenter(cfg.Chunker)
	if err != nil {
		log.Fatal("invalid chunker config", err)
	}
	index := vectorindex.New(provider.Dimension())

	snapshots, closeSnapshots := initSnapshots(cfg.Snapshot, cfg.Database.Redis, index)
	defer closeSnapshots()

	opts := []rag.Option{
		rag.WithTopK(cfg.Retrieval.TopK),
		rag.WithNoResultAnswer(cfg.Answer.NoResultText),
	}
	if snapshots != nil {
		opts = append(opts, rag.WithOnChange(snapshots.Persist))
	}
	engine := rag.NewEngine(provider, index, rag.NewRuleComposer(cfg.Answer), segmenter, opts...)

	if snapshots != nil {
		if _, err := snapshots.Restore(ctx, engine.Restore); err != nil {
			log.Error("failed to restore index snapshot, starting empty", err)
		}
	}

	// collaborators
	var uploadRepo repository.UploadRepository = repository.NopUploadRepository{}
	if cfg.Database.MySQL.DSN != "" {
		database.InitMySQL(cfg.Database.MySQL.DSN)
		uploadRepo = repository.NewUploadRepository(database.DB)
	}

	docOpts := service.DocumentServiceOptions{Async: cfg.Ingest.Async}
	if tikaClient := tika.NewClient(cfg.Tika); tikaClient.Available() {
		docOpts.Extractor = tikaClient
	}
	if cfg.MinIO.Enabled {
		archive, err := storage.NewArchive(ctx, cfg.MinIO)
		if err != nil {
			log.Fatal("failed to initialize MinIO", err)
		}
		docOpts.Archive = archive
	}
	if cfg.Ingest.Async {
		producer := kafka.NewProducer(cfg.Kafka)
		defer producer.Close()
		docOpts.Producer = producer
		go kafka.StartConsumer(ctx, cfg.Kafka, pipeline.NewProcessor(engine, uploadRepo))
	}

	documentService := service.NewDocumentService(engine, uploadRepo, docOpts)
	queryService := service.NewQueryService(engine, provider)

	if cfg.Auth.Secret == "" {
		log.Warnf("auth.secret is empty, admin endpoints are disabled")
	}
	jwtManager := token.NewJWTManager(cfg.Auth.Secret, cfg.Auth.TokenExpireHours)

	gin.SetMode(cfg.Server.Mode)
	r := handler.NewRouter(handler.Handlers{
		Document: handler.NewDocumentHandler(documentService, cfg.Server.MaxUploadSize),
		Query:    handler.NewQueryHandler(queryService),
		Auth:     handler.NewAuthHandler(cfg.Auth.AdminPasswordHash, jwtManager),
		Chat:     handler.NewChatHandler(queryService),
	}, jwtManager)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server failed: %s", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received, stopping server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("HTTP server shutdown failed: %v", err)
	}
	log.Info("server stopped")
}

// initSnapshots opens the configured snapshot backend. It returns a nil
// service when persistence is disabled.
func initSnapshots(cfg config.SnapshotConfig, redisCfg config.RedisConfig, index *vectorindex.Index) (*service.SnapshotService, func()) {
	var store repository.SnapshotStore
	closeFn := func() {}

	switch cfg.Backend {
	case "", "none":
		return nil, closeFn
	case "redis":
		database.InitRedis(redisCfg.Addr, redisCfg.Password, redisCfg.DB)
		store = repository.NewRedisSnapshotStore(database.RDB, cfg.Key)
		closeFn = func() { _ = database.RDB.Close() }
	case "bolt":
		if err := os.MkdirAll(filepath.Dir(cfg.BoltPath), 0o755); err != nil {
			log.Fatal("failed to create snapshot directory", err)
		}
		bolt, err := repository.NewBoltSnapshotStore(cfg.BoltPath)
		if err != nil {
			log.Fatal("failed to open bolt snapshot store", err)
		}
		store = bolt
		closeFn = func() { _ = bolt.Close() }
	default:
		log.Fatalf("unknown snapshot backend %q", cfg.Backend)
	}

	log.Infof("index snapshots enabled (%s)", cfg.Backend)
	return service.NewSnapshotService(store, index.Records), closeFn
}
