package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"alfredoptarigan/talentflow/internal/config"
	"alfredoptarigan/talentflow/internal/metrics"
	"alfredoptarigan/talentflow/internal/repositories"
)

type Worker interface {
	Start(ctx context.Context)
	Stop()
	Enqueue(documentID string)
}

type worker struct {
	documents repositories.DocumentRepository
	processor ResumeProcessor
	metrics   *metrics.Metrics
	log       *zap.Logger

	queue        chan string
	concurrency  int
	pollInterval time.Duration

	mu      sync.Mutex
	pending map[string]struct{}

	wg       sync.WaitGroup
	stopOnce sync.Once
	stopChan chan struct{}
}

func NewWorker(
	documents repositories.DocumentRepository,
	processor ResumeProcessor,
	cfg config.WorkerConfig,
	m *metrics.Metrics,
	log *zap.Logger,
) Worker {
	if cfg.QueueSize < 1 {
		cfg.QueueSize = 100
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 10 * time.Second
	}
	return &worker{
		documents:    documents,
		processor:    processor,
		metrics:      m,
		log:          log,
		queue:        make(chan string, cfg.QueueSize),
		concurrency:  cfg.Concurrency,
		pollInterval: cfg.PollInterval,
		pending:      make(map[string]struct{}),
		stopChan:     make(chan struct{}),
	}
}

func (w *worker) Start(ctx context.Context) {
	w.log.Info("🚀 Starting resume worker", zap.Int("concurrency", w.concurrency))

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(ctx, i+1)
	}

	w.wg.Add(1)
	go w.pollPending(ctx)
}

func (w *worker) Stop() {
	w.stopOnce.Do(func() {
		w.log.Info("🛑 Stopping resume worker...")
		close(w.stopChan)
		w.wg.Wait()
		w.log.Info("✅ Resume worker stopped")
	})
}

// Enqueue never blocks. A document that is already waiting is skipped, and a
// full queue leaves the document to the pending poller.
func (w *worker) Enqueue(documentID string) {
	select {
	case <-w.stopChan:
		w.log.Warn("⚠️ Worker stopped, cannot enqueue resume", zap.String("document_id", documentID))
		return
	default:
	}

	w.mu.Lock()
	if _, ok := w.pending[documentID]; ok {
		w.mu.Unlock()
		return
	}
	w.pending[documentID] = struct{}{}
	w.mu.Unlock()

	select {
	case w.queue <- documentID:
		w.metrics.SetQueueDepth(len(w.queue))
		w.log.Debug("📥 Resume enqueued", zap.String("document_id", documentID))
	default:
		w.done(documentID)
		w.log.Warn("⚠️ Resume queue full, deferring to poller", zap.String("document_id", documentID))
	}
}

func (w *worker) done(documentID string) {
	w.mu.Lock()
	delete(w.pending, documentID)
	w.mu.Unlock()
}

func (w *worker) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			w.log.Debug("👷 Worker stopped", zap.Int("worker", workerID))
			return
		case <-ctx.Done():
			return
		case documentID := <-w.queue:
			w.metrics.SetQueueDepth(len(w.queue))
			if err := w.processor.Process(ctx, documentID); err != nil {
				w.log.Error("❌ Worker failed to process resume",
					zap.Int("worker", workerID),
					zap.String("document_id", documentID),
					zap.Error(err),
				)
			}
			w.done(documentID)
		}
	}
}

func (w *worker) pollPending(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			docs, err := w.documents.FindPending(ctx, 10)
			if err != nil {
				w.log.Warn("⚠️ Failed to fetch pending resumes", zap.Error(err))
				continue
			}
			if len(docs) > 0 {
				w.log.Info("📋 Found pending resumes", zap.Int("count", len(docs)))
			}
			for _, doc := range docs {
				w.Enqueue(doc.ID)
			}
		}
	}
}
