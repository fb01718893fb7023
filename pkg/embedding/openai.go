package embedding

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
)

var (
	embedDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "integrity",
		Subsystem: "embedding",
		Name:      "request_duration_seconds",
		Help:      "Duration of embedding requests",
	}, []string{"model"})

	embedFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "integrity",
		Subsystem: "embedding",
		Name:      "request_failures_total",
		Help:      "Number of failed embedding requests",
	}, []string{"model"})

	modelInits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "integrity",
		Subsystem: "embedding",
		Name:      "model_initializations_total",
		Help:      "Number of embedding model initializations attempted",
	}, []string{"model", "outcome"})
)

// embedClient is the slice of the OpenAI API the generator needs.
type embedClient interface {
	CreateEmbeddings(ctx context.Context, req openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error)
}

// Config defines configuration options for the OpenAI-backed generator.
type Config struct {
	APIKey string
	// Model is pinned for the lifetime of the process.
	Model  string
	Logger zerolog.Logger
}

// Service implements Generator against the OpenAI embeddings API. The model
// handle is a shared, process-wide resource: it is initialized lazily, at most
// one initialization runs at a time, concurrent callers await the in-flight
// attempt, and a successful handle is reused until the process exits.
type Service struct {
	cfg     Config
	tracer  trace.Tracer
	logger  zerolog.Logger
	group   singleflight.Group
	connect func(ctx context.Context) (embedClient, error)

	mu     sync.RWMutex
	client embedClient
}

// NewService builds a generator using the provided configuration.
func NewService(cfg Config) (*Service, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = string(openai.SmallEmbedding3)
	}

	logger := cfg.Logger.With().Str("component", "embedding").Str("model", cfg.Model).Logger()

	svc := &Service{
		cfg:    cfg,
		tracer: otel.Tracer("github.com/campushub/integrity-api/pkg/embedding"),
		logger: logger,
	}
	svc.connect = svc.connectOpenAI

	return svc, nil
}

// ModelVersion returns the pinned model identifier.
func (s *Service) ModelVersion() string {
	return s.cfg.Model
}

// Embed returns the normalized embedding vector for the given text.
func (s *Service) Embed(parent context.Context, text string) ([]float32, error) {
	ctx, span := s.tracer.Start(parent, "embedding.embed", trace.WithAttributes(
		attribute.String("model", s.cfg.Model),
		attribute.Int("text_length", len(text)),
	))
	defer span.End()

	client, err := s.handle(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	start := time.Now()
	resp, err := client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(s.cfg.Model),
	})
	embedDuration.WithLabelValues(s.cfg.Model).Observe(time.Since(start).Seconds())
	if err != nil {
		embedFailures.WithLabelValues(s.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}

	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		embedFailures.WithLabelValues(s.cfg.Model).Inc()
		err := fmt.Errorf("%w: empty embedding response", ErrModelUnavailable)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	return normalize(resp.Data[0].Embedding), nil
}

// handle returns the initialized client, performing at most one concurrent
// initialization. A failed initialization is reported to every waiter and is
// not cached; the next request triggers a fresh attempt.
func (s *Service) handle(ctx context.Context) (embedClient, error) {
	s.mu.RLock()
	client := s.client
	s.mu.RUnlock()
	if client != nil {
		return client, nil
	}

	value, err, _ := s.group.Do("init", func() (interface{}, error) {
		s.mu.RLock()
		existing := s.client
		s.mu.RUnlock()
		if existing != nil {
			return existing, nil
		}

		s.logger.Info().Msg("initializing embedding model")
		created, err := s.connect(ctx)
		if err != nil {
			modelInits.WithLabelValues(s.cfg.Model, "failure").Inc()
			return nil, err
		}

		s.mu.Lock()
		s.client = created
		s.mu.Unlock()

		modelInits.WithLabelValues(s.cfg.Model, "success").Inc()
		s.logger.Info().Msg("embedding model initialized")
		return created, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}

	return value.(embedClient), nil
}

// connectOpenAI builds the client and probes the pinned model so a bad key or
// unknown model surfaces at initialization instead of mid-comparison.
func (s *Service) connectOpenAI(ctx context.Context) (embedClient, error) {
	client := openai.NewClient(s.cfg.APIKey)

	_, err := client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{"warmup"},
		Model: openai.EmbeddingModel(s.cfg.Model),
	})
	if err != nil {
		return nil, fmt.Errorf("probe model %s: %w", s.cfg.Model, err)
	}

	return client, nil
}

func normalize(vector []float32) []float32 {
	var sum float64
	for _, v := range vector {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return vector
	}

	magnitude := math.Sqrt(sum)
	normalized := make([]float32, len(vector))
	for i, v := range vector {
		normalized[i] = float32(float64(v) / magnitude)
	}
	return normalized
}
