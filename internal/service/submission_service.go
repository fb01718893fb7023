package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/campushub/integrity-api/internal/dto"
	"github.com/campushub/integrity-api/internal/models"
	"github.com/campushub/integrity-api/internal/observability"
	"github.com/campushub/integrity-api/internal/repository"
	"github.com/campushub/integrity-api/internal/similarity"
	"github.com/campushub/integrity-api/pkg/embedding"
	"github.com/campushub/integrity-api/pkg/extractor"
	"github.com/campushub/integrity-api/pkg/storage"
)

// SubmissionConfig tunes the upload pipeline.
type SubmissionConfig struct {
	// FlagThreshold marks a submission as flagged when its best-match score
	// reaches this value.
	FlagThreshold float64
	// RejectPastDue rejects uploads arriving after the assignment deadline.
	// The lifecycle tracker classifies regardless of this policy.
	RejectPastDue bool
	// MaxUploadBytes caps the accepted payload size.
	MaxUploadBytes int64
}

// SubmissionService orchestrates the upload pipeline: extract, compare
// against peers, score, persist.
type SubmissionService interface {
	List(ctx context.Context, filter dto.SubmissionFilter) ([]dto.SubmissionResponse, error)
	Upload(ctx context.Context, payload dto.UploadRequest, file *multipart.FileHeader) (dto.UploadResult, error)
}

type submissionService struct {
	submissions repository.SubmissionRepository
	assignments repository.AssignmentRepository
	engine      *similarity.Engine
	generator   embedding.Generator
	extractor   *extractor.Extractor
	store       storage.ArtifactStore
	validator   *validator.Validate
	cfg         SubmissionConfig
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewSubmissionService constructs a SubmissionService instance.
func NewSubmissionService(
	subRepo repository.SubmissionRepository,
	assignmentRepo repository.AssignmentRepository,
	engine *similarity.Engine,
	generator embedding.Generator,
	extract *extractor.Extractor,
	store storage.ArtifactStore,
	validate *validator.Validate,
	cfg SubmissionConfig,
	logger zerolog.Logger,
) SubmissionService {
	if cfg.FlagThreshold <= 0 {
		cfg.FlagThreshold = 0.8
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10 << 20
	}

	return &submissionService{
		submissions: subRepo,
		assignments: assignmentRepo,
		engine:      engine,
		generator:   generator,
		extractor:   extract,
		store:       store,
		validator:   validate,
		cfg:         cfg,
		logger:      logger.With().Str("component", "submission_service").Logger(),
		tracer:      otel.Tracer("github.com/campushub/integrity-api/internal/service/submission"),
		now:         time.Now,
	}
}

func (s *submissionService) List(ctx context.Context, filter dto.SubmissionFilter) ([]dto.SubmissionResponse, error) {
	repoFilter := repository.SubmissionFilter{
		AssignmentID: filter.AssignmentID,
		StudentID:    filter.StudentID,
		Flagged:      filter.Flagged,
	}

	submissions, err := s.submissions.List(ctx, repoFilter)
	if err != nil {
		return nil, err
	}

	return dto.NewSubmissionResponseSlice(submissions), nil
}

// Upload runs the whole comparison pipeline for a new document. The artifact
// reaches permanent storage only after extraction and ranking succeed, so a
// failed upload leaves nothing behind on any exit path.
func (s *submissionService) Upload(parent context.Context, payload dto.UploadRequest, file *multipart.FileHeader) (dto.UploadResult, error) {
	ctx, span := s.tracer.Start(parent, "submission.upload", trace.WithAttributes(
		attribute.Int64("assignment_id", int64(payload.AssignmentID)),
	))
	defer span.End()

	start := time.Now()
	defer func() {
		observability.UploadLatency().Observe(time.Since(start).Seconds())
	}()

	if err := s.validator.Struct(payload); err != nil {
		return dto.UploadResult{}, err
	}

	if file == nil {
		return dto.UploadResult{}, ErrFileRequired
	}

	assignment, err := s.assignments.GetByID(ctx, payload.AssignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UploadResult{}, ErrAssignmentNotFound
		}
		return dto.UploadResult{}, err
	}

	uploadTime := s.now()
	if s.cfg.RejectPastDue && assignment.IsPastDue(uploadTime) {
		observability.UploadsRejected().WithLabelValues("deadline").Inc()
		return dto.UploadResult{}, ErrPastDeadline
	}

	data, err := s.readPayload(file)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "payload rejected")
		return dto.UploadResult{}, err
	}

	// Target parse failure aborts here: no artifact stored, no row written.
	targetText, err := s.extractor.Extract(file.Filename, data)
	if err != nil {
		observability.UploadsRejected().WithLabelValues("parse").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "target unreadable")
		return dto.UploadResult{}, err
	}

	peerRows, err := s.submissions.ListLatestPeers(ctx, assignment.ID, payload.StudentID)
	if err != nil {
		return dto.UploadResult{}, err
	}

	peers, skipped := collectPeerTexts(ctx, s.store, s.extractor, peerRows, s.logger)

	ranked, err := s.engine.RankPeers(ctx, targetText, peers)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "ranking failed")
		return dto.UploadResult{}, err
	}

	submission := models.Submission{
		StudentID:    payload.StudentID,
		CourseID:     assignment.CourseID,
		AssignmentID: assignment.ID,
		UploadTime:   uploadTime,
		ModelVersion: s.generator.ModelVersion(),
	}

	var matchedName *string
	if best, ok := similarity.BestMatch(ranked); ok {
		score := clampUnit(best.Similarity)
		submission.SimilarityScore = score
		submission.MatchedStudentID = &best.StudentID
		submission.MatchedStudentName = best.Name
		submission.Flagged = score >= s.cfg.FlagThreshold
		matchedName = &best.Name
	}

	if err := submission.Validate(assignment); err != nil {
		return dto.UploadResult{}, err
	}

	fileURL, err := s.store.Upload(ctx, file.Filename, bytes.NewReader(data))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "artifact store failed")
		return dto.UploadResult{}, fmt.Errorf("store artifact: %w", err)
	}
	submission.FileURL = fileURL

	if err := s.submissions.Create(ctx, &submission); err != nil {
		return dto.UploadResult{}, err
	}

	if submission.Flagged {
		observability.SubmissionsFlagged().Inc()
	}

	s.logger.Info().
		Uint("submission_id", submission.ID).
		Uint("assignment_id", assignment.ID).
		Float64("score", submission.SimilarityScore).
		Bool("flagged", submission.Flagged).
		Int("peers", len(peers)).
		Int("peers_skipped", len(skipped)).
		Msg("submission scored")

	return dto.UploadResult{
		SubmissionID:    submission.ID,
		Score:           submission.SimilarityScore,
		MatchedPeerName: matchedName,
		Flagged:         submission.Flagged,
	}, nil
}

// readPayload buffers the upload, enforcing the size cap and the accepted
// document types.
func (s *submissionService) readPayload(file *multipart.FileHeader) ([]byte, error) {
	if file.Size > s.cfg.MaxUploadBytes {
		observability.UploadsRejected().WithLabelValues("size").Inc()
		return nil, ErrFileTooLarge
	}

	handle, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer handle.Close()

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(handle, s.cfg.MaxUploadBytes+1)); err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(buf.Len()) > s.cfg.MaxUploadBytes {
		observability.UploadsRejected().WithLabelValues("size").Inc()
		return nil, ErrFileTooLarge
	}

	data := buf.Bytes()

	detected := mimetype.Detect(data)
	allowed := []string{
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"application/zip",
		"text/plain",
	}
	for _, mime := range allowed {
		if detected.Is(mime) {
			return data, nil
		}
	}

	observability.UploadsRejected().WithLabelValues("type").Inc()
	return nil, fmt.Errorf("%w: %s", ErrFileTypeNotAllowed, detected.String())
}
