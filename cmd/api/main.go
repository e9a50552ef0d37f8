package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"alfredoptarigan/talentflow/internal/config"
	"alfredoptarigan/talentflow/internal/handlers"
	"alfredoptarigan/talentflow/internal/kanban"
	"alfredoptarigan/talentflow/internal/logger"
	"alfredoptarigan/talentflow/internal/metrics"
	"alfredoptarigan/talentflow/internal/repositories"
	"alfredoptarigan/talentflow/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.Server.Env)
	if err != nil {
		log.Fatalf("❌ Failed to build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if err := run(cfg, zl); err != nil {
		zl.Fatal("❌ Server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, zl *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := config.InitDatabase(cfg, zl)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	candidates := repositories.NewCandidateRepository(db)
	if cfg.Simulation.Enabled {
		candidates, err = repositories.NewFaultyCandidateRepository(candidates, repositories.FaultConfig{
			WriteFailureRate: cfg.Simulation.WriteFailureRate,
			MinLatency:       cfg.Simulation.MinLatency,
			MaxLatency:       cfg.Simulation.MaxLatency,
			Seed:             cfg.Simulation.Seed,
		}, zl.Named("simulation"))
		if err != nil {
			return fmt.Errorf("failed to configure network simulation: %w", err)
		}
		zl.Warn("⚠️ Simulated network enabled for candidate writes",
			zap.Float64("failure_rate", cfg.Simulation.WriteFailureRate),
			zap.Duration("min_latency", cfg.Simulation.MinLatency),
			zap.Duration("max_latency", cfg.Simulation.MaxLatency),
		)
	}
	jobs := repositories.NewJobRepository(db)
	assessments := repositories.NewAssessmentRepository(db)
	documents := repositories.NewDocumentRepository(db)
	zl.Info("✅ Repositories initialized")

	storage := services.NewStorageService(cfg.Storage.UploadPath, cfg.Storage.MaxFileSize)
	if err := storage.EnsureUploadDir(); err != nil {
		return err
	}

	var (
		gemini services.GeminiService
		index  services.ResumeIndex
	)
	if cfg.AIEnabled() {
		gemini, err = services.NewGeminiService(ctx, cfg.Gemini, cfg.Worker, zl.Named("gemini"))
		if err != nil {
			return err
		}
		index, err = services.NewQdrantService(cfg.Qdrant, zl.Named("qdrant"))
		if err != nil {
			return err
		}
		if err := index.InitCollection(ctx); err != nil {
			zl.Warn("⚠️ Qdrant unavailable, resume indexing disabled", zap.Error(err))
			index = nil
		}
	} else {
		zl.Info("ℹ️ GEMINI_API_KEY not set, skill extraction and matching disabled")
	}

	processor := services.NewResumeProcessor(
		documents,
		candidates,
		services.NewPDFParserService(),
		services.NewTextChunker(1000, 2),
		gemini,
		index,
		m,
		zl.Named("resume"),
	)
	worker := services.NewWorker(documents, processor, cfg.Worker, m, zl.Named("worker"))
	worker.Start(ctx)

	notifier := kanban.NewChannelNotifier(cfg.Board.NotificationBuffer, m)
	sink := services.NewNotificationSink(notifier.C(), cfg.Board.NotificationKeep, zl.Named("notifications"))
	sink.Start()

	engine := kanban.NewEngine(candidates, notifier, kanban.EngineConfig{
		ActivationDistance: cfg.Board.ActivationDistance,
		DefaultActor:       cfg.Board.DefaultActor,
		Metrics:            m,
	}, zl.Named("board"))

	app := fiber.New(fiber.Config{
		AppName:      cfg.Server.AppName,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		BodyLimit:    cfg.Server.BodyLimit,
		ErrorHandler: handlers.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.CORSOrigins,
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Actor",
	}))

	routes := &handlers.Routes{
		Candidates:  handlers.NewCandidateHandler(candidates, engine.InFlight()),
		Jobs:        handlers.NewJobHandler(jobs, services.NewMatchService(jobs, candidates, gemini, index, zl.Named("match"))),
		Assessments: handlers.NewAssessmentHandler(assessments),
		Board:       handlers.NewBoardHandler(engine, jobs, sink),
		Resumes:     handlers.NewResumeHandler(candidates, documents, storage, worker, zl.Named("upload")),
		System: handlers.NewSystemHandler(map[string]handlers.HealthCheck{
			"database": func(ctx context.Context) error {
				sqlDB, err := db.DB()
				if err != nil {
					return err
				}
				return sqlDB.PingContext(ctx)
			},
		}),
		Metrics: handlers.MetricsHandler(reg),
	}
	routes.Register(app, cfg.Board.DefaultActor)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": cfg.Server.AppName,
			"version": "1.0.0",
			"docs":    "/api/v1",
		})
	})

	errCh := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%s", strings.TrimPrefix(cfg.Server.Port, ":"))
		zl.Info("🚀 Server starting", zap.String("addr", addr))
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zl.Info("🛑 Shutting down server...")
	if err := app.ShutdownWithTimeout(cfg.Server.ShutdownTimeout); err != nil {
		zl.Error("❌ Server forced to shutdown", zap.Error(err))
	}
	worker.Stop()
	notifier.Close()
	sink.Wait()

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	zl.Info("✅ Shutdown complete")
	return nil
}
