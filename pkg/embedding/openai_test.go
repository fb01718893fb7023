package embedding

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/require"
)

type stubClient struct {
	embedding []float32
	err       error
	calls     atomic.Int64
}

func (c *stubClient) CreateEmbeddings(_ context.Context, _ openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error) {
	c.calls.Add(1)
	if c.err != nil {
		return openai.EmbeddingResponse{}, c.err
	}
	return openai.EmbeddingResponse{
		Data: []openai.Embedding{{Embedding: c.embedding}},
	}, nil
}

func newTestService(t *testing.T, connect func(ctx context.Context) (embedClient, error)) *Service {
	t.Helper()

	svc, err := NewService(Config{APIKey: "test-key", Model: "test-model", Logger: zerolog.Nop()})
	require.NoError(t, err)
	svc.connect = connect
	return svc
}

func TestNewServiceRequiresAPIKey(t *testing.T) {
	_, err := NewService(Config{})
	require.Error(t, err)
}

func TestEmbedInitializesOnce(t *testing.T) {
	client := &stubClient{embedding: []float32{3, 4}}
	var inits atomic.Int64

	svc := newTestService(t, func(context.Context) (embedClient, error) {
		inits.Add(1)
		return client, nil
	})

	const workers = 16
	errs := make(chan error, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_, err := svc.Embed(context.Background(), "hello")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	require.Equal(t, int64(1), inits.Load())
}

func TestEmbedNormalizesVectors(t *testing.T) {
	client := &stubClient{embedding: []float32{3, 4}}
	svc := newTestService(t, func(context.Context) (embedClient, error) {
		return client, nil
	})

	vector, err := svc.Embed(context.Background(), "hello")
	require.NoError(t, err)
	require.InDelta(t, 0.6, float64(vector[0]), 1e-6)
	require.InDelta(t, 0.8, float64(vector[1]), 1e-6)
}

func TestEmbedFailedInitNotCached(t *testing.T) {
	client := &stubClient{embedding: []float32{1, 0}}
	var inits atomic.Int64

	svc := newTestService(t, func(context.Context) (embedClient, error) {
		if inits.Add(1) == 1 {
			return nil, fmt.Errorf("model warmup refused")
		}
		return client, nil
	})

	_, err := svc.Embed(context.Background(), "hello")
	require.ErrorIs(t, err, ErrModelUnavailable)

	// A fresh request retries initialization instead of replaying the failure.
	vector, err := svc.Embed(context.Background(), "hello")
	require.NoError(t, err)
	require.NotEmpty(t, vector)
	require.Equal(t, int64(2), inits.Load())
}

func TestEmbedWrapsAPIErrors(t *testing.T) {
	client := &stubClient{err: fmt.Errorf("rate limited")}
	svc := newTestService(t, func(context.Context) (embedClient, error) {
		return client, nil
	})

	_, err := svc.Embed(context.Background(), "hello")
	require.ErrorIs(t, err, ErrModelUnavailable)
}

func TestEmbedEmptyResponse(t *testing.T) {
	client := &stubClient{embedding: nil}
	svc := newTestService(t, func(context.Context) (embedClient, error) {
		return client, nil
	})

	_, err := svc.Embed(context.Background(), "hello")
	require.ErrorIs(t, err, ErrModelUnavailable)
}

func TestModelVersionPinned(t *testing.T) {
	svc := newTestService(t, func(context.Context) (embedClient, error) {
		return &stubClient{embedding: []float32{1}}, nil
	})
	require.Equal(t, "test-model", svc.ModelVersion())
}
