// Package similarity compares one document's embedding against a set of peer
// embeddings and produces a deterministic ranking.
package similarity

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/campushub/integrity-api/pkg/embedding"
)

// Peer is one comparison candidate: another student's extracted document text
// together with the metadata the ranking carries through.
type Peer struct {
	StudentID  uint
	Name       string
	Text       string
	UploadTime time.Time
}

// Match is one ranked comparison result.
type Match struct {
	StudentID  uint
	Name       string
	Similarity float64
	UploadTime time.Time
}

// Engine ranks peers against a target document using a shared embedding
// generator.
type Engine struct {
	generator embedding.Generator
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// NewEngine builds an engine around the given generator.
func NewEngine(generator embedding.Generator, logger zerolog.Logger) *Engine {
	return &Engine{
		generator: generator,
		logger:    logger.With().Str("component", "similarity_engine").Logger(),
		tracer:    otel.Tracer("github.com/campushub/integrity-api/internal/similarity"),
	}
}

// RankPeers embeds the target once, embeds every peer, and returns all peers
// ordered by similarity descending with earlier upload time breaking ties.
// The result length always equals the peer count, it is a plain slice callers
// may re-read, and identical inputs always produce the identical order. Any
// embedding failure aborts the whole ranking.
func (e *Engine) RankPeers(parent context.Context, targetText string, peers []Peer) ([]Match, error) {
	ctx, span := e.tracer.Start(parent, "similarity.rank_peers", trace.WithAttributes(
		attribute.Int("peer_count", len(peers)),
	))
	defer span.End()

	target, err := e.generator.Embed(ctx, targetText)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	matches := make([]Match, 0, len(peers))
	for _, peer := range peers {
		vector, err := e.generator.Embed(ctx, peer.Text)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}

		matches = append(matches, Match{
			StudentID:  peer.StudentID,
			Name:       peer.Name,
			Similarity: CosineSimilarity(target, vector),
			UploadTime: peer.UploadTime,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Similarity != matches[j].Similarity {
			return matches[i].Similarity > matches[j].Similarity
		}
		return matches[i].UploadTime.Before(matches[j].UploadTime)
	})

	return matches, nil
}

// BestMatch returns the highest-ranked entry, or false when the ranking is
// empty. Callers record a zero score and no match in the empty case.
func BestMatch(ranked []Match) (Match, bool) {
	if len(ranked) == 0 {
		return Match{}, false
	}
	return ranked[0], true
}

// CosineSimilarity returns dot(a,b) / (‖a‖·‖b‖) in [-1,1]. A zero-magnitude
// vector yields 0 instead of dividing by zero.
func CosineSimilarity(a, b []float32) float64 {
	length := len(a)
	if len(b) < length {
		length = len(b)
	}

	var dot, magnitudeA, magnitudeB float64
	for i := 0; i < length; i++ {
		dot += float64(a[i]) * float64(b[i])
		magnitudeA += float64(a[i]) * float64(a[i])
		magnitudeB += float64(b[i]) * float64(b[i])
	}

	if magnitudeA == 0 || magnitudeB == 0 {
		return 0
	}

	return dot / (math.Sqrt(magnitudeA) * math.Sqrt(magnitudeB))
}
