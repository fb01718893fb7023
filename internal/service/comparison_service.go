package service

import (
	"context"
	"errors"
	"path"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/campushub/integrity-api/internal/dto"
	"github.com/campushub/integrity-api/internal/repository"
	"github.com/campushub/integrity-api/internal/similarity"
	"github.com/campushub/integrity-api/pkg/embedding"
	"github.com/campushub/integrity-api/pkg/extractor"
	"github.com/campushub/integrity-api/pkg/storage"
)

// ComparisonService answers "how does this student's submission compare to
// peers" by re-running the ranking against the current peer set. Stored
// scores are never trusted on this path.
type ComparisonService interface {
	Report(ctx context.Context, request dto.ReportRequest) (dto.ReportResponse, error)
}

type comparisonService struct {
	submissions repository.SubmissionRepository
	assignments repository.AssignmentRepository
	engine      *similarity.Engine
	generator   embedding.Generator
	extractor   *extractor.Extractor
	store       storage.ArtifactStore
	validator   *validator.Validate
	logger      zerolog.Logger
	tracer      trace.Tracer
}

// NewComparisonService constructs a ComparisonService instance.
func NewComparisonService(
	subRepo repository.SubmissionRepository,
	assignmentRepo repository.AssignmentRepository,
	engine *similarity.Engine,
	generator embedding.Generator,
	extract *extractor.Extractor,
	store storage.ArtifactStore,
	validate *validator.Validate,
	logger zerolog.Logger,
) ComparisonService {
	return &comparisonService{
		submissions: subRepo,
		assignments: assignmentRepo,
		engine:      engine,
		generator:   generator,
		extractor:   extract,
		store:       store,
		validator:   validate,
		logger:      logger.With().Str("component", "comparison_service").Logger(),
		tracer:      otel.Tracer("github.com/campushub/integrity-api/internal/service/comparison"),
	}
}

// Report recomputes the full ranking for the student's latest submission on
// the assignment. The peer set is scoped to the same assignment. An empty
// peer set yields an empty comparison list, not an error; an unreadable peer
// is skipped and reported; an unreadable target fails the report.
func (s *comparisonService) Report(parent context.Context, request dto.ReportRequest) (dto.ReportResponse, error) {
	ctx, span := s.tracer.Start(parent, "comparison.report", trace.WithAttributes(
		attribute.Int64("assignment_id", int64(request.AssignmentID)),
		attribute.Int64("student_id", int64(request.StudentID)),
	))
	defer span.End()

	if err := s.validator.Struct(request); err != nil {
		return dto.ReportResponse{}, err
	}

	if _, err := s.assignments.GetByID(ctx, request.AssignmentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ReportResponse{}, ErrAssignmentNotFound
		}
		return dto.ReportResponse{}, err
	}

	target, err := s.submissions.GetLatest(ctx, request.AssignmentID, request.StudentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ReportResponse{}, ErrSubmissionNotFound
		}
		return dto.ReportResponse{}, err
	}

	data, err := s.store.Fetch(ctx, target.FileURL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "target artifact unavailable")
		return dto.ReportResponse{}, err
	}

	targetText, err := s.extractor.Extract(path.Base(target.FileURL), data)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "target unreadable")
		return dto.ReportResponse{}, err
	}

	peerRows, err := s.submissions.ListLatestPeers(ctx, request.AssignmentID, request.StudentID)
	if err != nil {
		return dto.ReportResponse{}, err
	}

	peers, skipped := collectPeerTexts(ctx, s.store, s.extractor, peerRows, s.logger)

	ranked, err := s.engine.RankPeers(ctx, targetText, peers)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "ranking failed")
		return dto.ReportResponse{}, err
	}

	comparisons := make([]dto.PeerComparison, 0, len(ranked))
	for _, match := range ranked {
		comparisons = append(comparisons, dto.PeerComparison{
			PeerName:   match.Name,
			Similarity: clampUnit(match.Similarity),
			UploadTime: match.UploadTime,
		})
	}

	s.logger.Info().
		Uint("assignment_id", request.AssignmentID).
		Uint("student_id", request.StudentID).
		Int("peers", len(comparisons)).
		Int("peers_skipped", len(skipped)).
		Msg("similarity report computed")

	return dto.ReportResponse{
		AssignmentID: request.AssignmentID,
		StudentID:    request.StudentID,
		SubmissionID: target.ID,
		ModelVersion: s.generator.ModelVersion(),
		Comparisons:  comparisons,
		Skipped:      skipped,
	}, nil
}
