package service

import (
	"context"
	"errors"
	"path"

	"github.com/rs/zerolog"

	"github.com/campushub/integrity-api/internal/dto"
	"github.com/campushub/integrity-api/internal/models"
	"github.com/campushub/integrity-api/internal/observability"
	"github.com/campushub/integrity-api/internal/similarity"
	"github.com/campushub/integrity-api/pkg/extractor"
	"github.com/campushub/integrity-api/pkg/storage"
)

// collectPeerTexts fetches and extracts the document text for every peer
// submission. An unreadable peer is skipped and reported rather than failing
// the whole comparison, so one corrupted file cannot hide the signal from all
// the others.
func collectPeerTexts(ctx context.Context, store storage.ArtifactStore, extract *extractor.Extractor, submissions []models.Submission, logger zerolog.Logger) ([]similarity.Peer, []dto.SkippedPeer) {
	peers := make([]similarity.Peer, 0, len(submissions))
	var skipped []dto.SkippedPeer

	for _, submission := range submissions {
		data, err := store.Fetch(ctx, submission.FileURL)
		if err != nil {
			logger.Warn().Err(err).Uint("submission_id", submission.ID).Msg("peer artifact fetch failed, skipping")
			observability.PeersSkipped().WithLabelValues("fetch").Inc()
			skipped = append(skipped, dto.SkippedPeer{
				PeerName: submission.Student.Name,
				Reason:   "artifact unavailable",
			})
			continue
		}

		text, err := extract.Extract(path.Base(submission.FileURL), data)
		if err != nil {
			var parseErr *extractor.ParseError
			if errors.As(err, &parseErr) {
				logger.Warn().Err(err).Uint("submission_id", submission.ID).Msg("peer document unreadable, skipping")
				observability.PeersSkipped().WithLabelValues("parse").Inc()
				skipped = append(skipped, dto.SkippedPeer{
					PeerName: submission.Student.Name,
					Reason:   "document unreadable",
				})
				continue
			}
			observability.PeersSkipped().WithLabelValues("other").Inc()
			skipped = append(skipped, dto.SkippedPeer{
				PeerName: submission.Student.Name,
				Reason:   "document unreadable",
			})
			continue
		}

		peers = append(peers, similarity.Peer{
			StudentID:  submission.StudentID,
			Name:       submission.Student.Name,
			Text:       text,
			UploadTime: submission.UploadTime,
		})
	}

	return peers, skipped
}

// clampUnit confines a cosine similarity to the canonical [0,1] scoring
// interval. Negative similarity carries no plagiarism signal.
func clampUnit(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
