package embedding

import (
	"context"
	"errors"
)

// ErrModelUnavailable indicates the embedding model failed to initialize or
// respond. It is a transient infrastructure failure; callers surface it and
// may retry on a later request, the generator itself never retries.
var ErrModelUnavailable = errors.New("embedding model unavailable")

// Generator turns plain text into a fixed-dimension dense vector. All vectors
// produced within one deployment come from a single pinned model version;
// mixing versions would make cosine similarities incomparable.
type Generator interface {
	// Embed returns the mean-pooled, L2-normalized embedding for the text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// ModelVersion identifies the pinned model that produced the vectors.
	ModelVersion() string
}
