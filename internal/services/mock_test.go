package services

import (
	"context"
	"sync"
)

type mockParser struct {
	ExtractResumeFunc func(filePath string) (*ResumeContent, error)
}

func (m *mockParser) ExtractResume(filePath string) (*ResumeContent, error) {
	return m.ExtractResumeFunc(filePath)
}

type mockGemini struct {
	GenerateEmbeddingFunc func(ctx context.Context, text string) ([]float32, error)
	GenerateTextFunc      func(ctx context.Context, prompt string, temperature float32) (string, error)
}

func (m *mockGemini) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	return m.GenerateEmbeddingFunc(ctx, text)
}

func (m *mockGemini) GenerateText(ctx context.Context, prompt string, temperature float32) (string, error) {
	return m.GenerateTextFunc(ctx, prompt, temperature)
}

func (m *mockGemini) GenerateTextWithRetry(ctx context.Context, prompt string, temperature float32) (string, error) {
	return m.GenerateTextFunc(ctx, prompt, temperature)
}

type mockIndex struct {
	mu       sync.Mutex
	upserted []IndexedResume

	SearchByJobFunc func(ctx context.Context, queryEmbedding []float32, jobID string, limit int) ([]SearchResult, error)
}

func (m *mockIndex) InitCollection(ctx context.Context) error { return nil }

func (m *mockIndex) UpsertResume(ctx context.Context, resume IndexedResume) error {
	m.mu.Lock()
	m.upserted = append(m.upserted, resume)
	m.mu.Unlock()
	return nil
}

func (m *mockIndex) SearchByJob(ctx context.Context, queryEmbedding []float32, jobID string, limit int) ([]SearchResult, error) {
	return m.SearchByJobFunc(ctx, queryEmbedding, jobID, limit)
}

func (m *mockIndex) DeleteResume(ctx context.Context, candidateID string) error { return nil }

func (m *mockIndex) Upserted() []IndexedResume {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]IndexedResume(nil), m.upserted...)
}

type processorFunc func(ctx context.Context, documentID string) error

func (f processorFunc) Process(ctx context.Context, documentID string) error {
	return f(ctx, documentID)
}
