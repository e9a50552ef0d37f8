package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"alfredoptarigan/talentflow/internal/config"
	"alfredoptarigan/talentflow/internal/logger"
	"alfredoptarigan/talentflow/internal/models"
	"alfredoptarigan/talentflow/internal/repositories"
	"alfredoptarigan/talentflow/internal/services"
)

// Reprocesses stored resumes synchronously, for example after enabling
// Gemini or recreating the Qdrant collection.
//
//	go run ./scripts -status failed
//	go run ./scripts -status completed -limit 50
func main() {
	status := flag.String("status", string(models.ResumeFailed), "reprocess documents in this status")
	limit := flag.Int("limit", 0, "maximum number of documents (0 = all)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}
	zl, err := logger.New(cfg.Server.Env)
	if err != nil {
		log.Fatalf("❌ Failed to build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	db, err := config.InitDatabase(cfg, zl)
	if err != nil {
		zl.Fatal("❌ Failed to initialize database", zap.Error(err))
	}
	documents := repositories.NewDocumentRepository(db)
	candidates := repositories.NewCandidateRepository(db)

	var (
		gemini services.GeminiService
		index  services.ResumeIndex
	)
	if cfg.AIEnabled() {
		if gemini, err = services.NewGeminiService(ctx, cfg.Gemini, cfg.Worker, zl); err != nil {
			zl.Fatal("❌ Failed to initialize Gemini", zap.Error(err))
		}
		if index, err = services.NewQdrantService(cfg.Qdrant, zl); err != nil {
			zl.Fatal("❌ Failed to initialize Qdrant", zap.Error(err))
		}
		if err := index.InitCollection(ctx); err != nil {
			zl.Fatal("❌ Failed to initialize collection", zap.Error(err))
		}
	}

	processor := services.NewResumeProcessor(
		documents,
		candidates,
		services.NewPDFParserService(),
		services.NewTextChunker(1000, 2),
		gemini,
		index,
		nil,
		zl,
	)

	docs, err := documents.FindByStatus(ctx, models.ResumeStatus(*status), *limit)
	if err != nil {
		zl.Fatal("❌ Failed to list documents", zap.Error(err))
	}
	zl.Info("🚀 Reprocessing resumes", zap.String("status", *status), zap.Int("count", len(docs)))

	var ok, failed int
	for _, doc := range docs {
		if ctx.Err() != nil {
			break
		}
		if err := documents.UpdateStatus(ctx, doc.ID, models.ResumeQueued); err != nil {
			zl.Error("❌ Failed to reset document", zap.String("document_id", doc.ID), zap.Error(err))
			failed++
			continue
		}
		if err := processor.Process(ctx, doc.ID); err != nil {
			failed++
			continue
		}
		ok++
	}

	zl.Info("✅ Reprocessing finished", zap.Int("succeeded", ok), zap.Int("failed", failed))
}
