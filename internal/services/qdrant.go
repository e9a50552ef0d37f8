package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"

	"alfredoptarigan/talentflow/internal/config"
)

// ResumeIndex stores embedded resume chunks, one point per chunk, so that
// candidates can be ranked against a job description.
type ResumeIndex interface {
	InitCollection(ctx context.Context) error
	UpsertResume(ctx context.Context, resume IndexedResume) error
	SearchByJob(ctx context.Context, queryEmbedding []float32, jobID string, limit int) ([]SearchResult, error)
	DeleteResume(ctx context.Context, candidateID string) error
}

type IndexedResume struct {
	CandidateID string
	JobID       string
	DocumentID  string
	Chunks      []string
	Embeddings  [][]float32
}

type SearchResult struct {
	CandidateID string
	DocumentID  string
	Score       float32
	Text        string
}

type qdrantService struct {
	client         *qdrant.Client
	collectionName string
	vectorSize     uint64
	log            *zap.Logger
}

func NewQdrantService(cfg config.QdrantConfig, log *zap.Logger) (ResumeIndex, error) {
	host, port, useTLS, err := parseQdrantURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: cfg.APIKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &qdrantService{
		client:         client,
		collectionName: cfg.Collection,
		vectorSize:     cfg.VectorSize,
		log:            log,
	}, nil
}

// parseQdrantURL accepts both "host:port" and full URLs. The gRPC port
// defaults to 6334.
func parseQdrantURL(raw string) (string, int, bool, error) {
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", 0, false, fmt.Errorf("invalid Qdrant URL: %w", err)
	}
	if parsed.Hostname() == "" {
		return "", 0, false, fmt.Errorf("invalid Qdrant URL: missing host")
	}

	port := 6334
	if p := parsed.Port(); p != "" {
		v, err := strconv.Atoi(p)
		if err != nil {
			return "", 0, false, fmt.Errorf("invalid Qdrant port %q: %w", p, err)
		}
		port = v
	}
	return parsed.Hostname(), port, parsed.Scheme == "https", nil
}

func (q *qdrantService) InitCollection(ctx context.Context) error {
	exists, err := q.client.CollectionExists(ctx, q.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}
	if exists {
		q.log.Info("✅ Collection already exists", zap.String("collection", q.collectionName))
		return nil
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     q.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	q.log.Info("✅ Qdrant collection created", zap.String("collection", q.collectionName))
	return nil
}

func pointID(candidateID string, chunk int) *qdrant.PointId {
	name := candidateID + ":" + strconv.Itoa(chunk)
	return qdrant.NewID(uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String())
}

// UpsertResume replaces every point of the candidate with the new chunks.
func (q *qdrantService) UpsertResume(ctx context.Context, resume IndexedResume) error {
	if len(resume.Chunks) != len(resume.Embeddings) {
		return fmt.Errorf("chunk/embedding count mismatch: %d != %d", len(resume.Chunks), len(resume.Embeddings))
	}
	if err := q.DeleteResume(ctx, resume.CandidateID); err != nil {
		return err
	}
	if len(resume.Chunks) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, 0, len(resume.Chunks))
	for i, text := range resume.Chunks {
		points = append(points, &qdrant.PointStruct{
			Id:      pointID(resume.CandidateID, i),
			Vectors: qdrant.NewVectors(resume.Embeddings[i]...),
			Payload: qdrant.NewValueMap(map[string]any{
				"candidate_id": resume.CandidateID,
				"job_id":       resume.JobID,
				"document_id":  resume.DocumentID,
				"text":         text,
			}),
		})
	}

	if _, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collectionName,
		Points:         points,
	}); err != nil {
		return fmt.Errorf("failed to upsert points: %w", err)
	}
	return nil
}

func (q *qdrantService) SearchByJob(ctx context.Context, queryEmbedding []float32, jobID string, limit int) ([]SearchResult, error) {
	var filter *qdrant.Filter
	if jobID != "" {
		filter = &qdrant.Filter{
			Must: []*qdrant.Condition{qdrant.NewMatch("job_id", jobID)},
		}
	}

	points, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collectionName,
		Query:          qdrant.NewQuery(queryEmbedding...),
		Filter:         filter,
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	results := make([]SearchResult, 0, len(points))
	for _, point := range points {
		results = append(results, SearchResult{
			CandidateID: payloadString(point.Payload, "candidate_id"),
			DocumentID:  payloadString(point.Payload, "document_id"),
			Text:        payloadString(point.Payload, "text"),
			Score:       point.Score,
		})
	}
	return results, nil
}

func payloadString(payload map[string]*qdrant.Value, key string) string {
	if v, ok := payload[key]; ok {
		if s, ok := v.GetKind().(*qdrant.Value_StringValue); ok {
			return s.StringValue
		}
	}
	return ""
}

func (q *qdrantService) DeleteResume(ctx context.Context, candidateID string) error {
	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.collectionName,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Filter{
				Filter: &qdrant.Filter{
					Must: []*qdrant.Condition{qdrant.NewMatch("candidate_id", candidateID)},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete resume points: %w", err)
	}
	return nil
}
