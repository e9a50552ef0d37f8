package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"alfredoptarigan/talentflow/internal/metrics"
	"alfredoptarigan/talentflow/internal/models"
	"alfredoptarigan/talentflow/internal/repositories"
)

type ResumeProcessor interface {
	Process(ctx context.Context, documentID string) error
}

type resumeProcessor struct {
	documents  repositories.DocumentRepository
	candidates repositories.CandidateRepository
	parser     PDFParserService
	chunker    TextChunker
	gemini     GeminiService
	index      ResumeIndex
	prompts    *PromptBuilder
	metrics    *metrics.Metrics
	log        *zap.Logger
}

// NewResumeProcessor wires the resume pipeline. gemini and index may be nil:
// without gemini only text extraction runs, without index nothing is embedded.
func NewResumeProcessor(
	documents repositories.DocumentRepository,
	candidates repositories.CandidateRepository,
	parser PDFParserService,
	chunker TextChunker,
	gemini GeminiService,
	index ResumeIndex,
	m *metrics.Metrics,
	log *zap.Logger,
) ResumeProcessor {
	if log == nil {
		log = zap.NewNop()
	}
	return &resumeProcessor{
		documents:  documents,
		candidates: candidates,
		parser:     parser,
		chunker:    chunker,
		gemini:     gemini,
		index:      index,
		prompts:    NewPromptBuilder(),
		metrics:    m,
		log:        log,
	}
}

func (p *resumeProcessor) Process(ctx context.Context, documentID string) error {
	start := time.Now()
	log := p.log.With(zap.String("document_id", documentID))

	doc, err := p.documents.FindByID(ctx, documentID)
	if err != nil {
		return fmt.Errorf("failed to load resume document: %w", err)
	}
	if doc.Status == models.ResumeCompleted {
		log.Info("⏭️ Resume already processed")
		return nil
	}

	if err := p.documents.UpdateStatus(ctx, doc.ID, models.ResumeProcessing); err != nil {
		return err
	}

	result, err := p.run(ctx, doc, log)
	if err != nil {
		p.metrics.ResumeProcessed(string(models.ResumeFailed))
		log.Error("❌ Resume processing failed", zap.Error(err))
		if uerr := p.documents.UpdateError(context.WithoutCancel(ctx), doc.ID, err.Error()); uerr != nil {
			return errors.Join(err, uerr)
		}
		return err
	}

	if err := p.documents.UpdateResult(ctx, doc.ID, result); err != nil {
		return err
	}
	p.metrics.ResumeProcessed(string(models.ResumeCompleted))
	log.Info("✅ Resume processed",
		zap.Int("pages", result.PageCount),
		zap.Int("skills", result.ExtractedSkills),
		zap.Bool("indexed", result.Indexed),
		zap.Duration("took", time.Since(start)),
	)
	return nil
}

func (p *resumeProcessor) run(ctx context.Context, doc *models.ResumeDocument, log *zap.Logger) (*repositories.DocumentUpdateData, error) {
	content, err := p.parser.ExtractResume(doc.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to parse resume: %w", err)
	}
	log.Info("📄 Resume text extracted", zap.Int("pages", content.PageCount))

	candidate, err := p.candidates.FindByID(ctx, doc.CandidateID)
	if err != nil {
		return nil, err
	}

	result := &repositories.DocumentUpdateData{
		ExtractedText: content.Text,
		PageCount:     content.PageCount,
	}
	if p.gemini == nil {
		return result, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := p.extractSkills(gctx, candidate.ID, content.Text)
		if err != nil {
			return err
		}
		result.ExtractedSkills = n
		return nil
	})
	if p.index != nil {
		g.Go(func() error {
			if err := p.indexResume(gctx, candidate, doc.ID, content.Text); err != nil {
				return err
			}
			result.Indexed = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

func (p *resumeProcessor) extractSkills(ctx context.Context, candidateID, text string) (int, error) {
	response, err := p.gemini.GenerateTextWithRetry(ctx, p.prompts.BuildSkillExtractionPrompt(text), 0.2)
	if err != nil {
		return 0, fmt.Errorf("failed to extract skills: %w", err)
	}
	skills, err := parseSkills(response)
	if err != nil {
		return 0, err
	}
	if len(skills) == 0 {
		return 0, nil
	}
	if _, err := p.candidates.MergeSkills(ctx, candidateID, skills); err != nil {
		return 0, err
	}
	return len(skills), nil
}

func (p *resumeProcessor) indexResume(ctx context.Context, candidate *models.Candidate, documentID, text string) error {
	chunks := p.chunker.Chunk(text)
	embeddings := make([][]float32, 0, len(chunks))
	for _, chunk := range chunks {
		vec, err := p.gemini.GenerateEmbedding(ctx, chunk)
		if err != nil {
			return err
		}
		embeddings = append(embeddings, vec)
	}

	return p.index.UpsertResume(ctx, IndexedResume{
		CandidateID: candidate.ID,
		JobID:       candidate.JobID,
		DocumentID:  documentID,
		Chunks:      chunks,
		Embeddings:  embeddings,
	})
}
