package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/internlog/internlog-api/internal/dto"
	"github.com/internlog/internlog-api/internal/models"
	"github.com/internlog/internlog-api/internal/observability"
	"github.com/internlog/internlog-api/internal/repository"
)

// ErrNotAssigned indicates the log's student is not assigned to the
// calling supervisor.
var ErrNotAssigned = errors.New("student not assigned to caller")

// ErrEmptyFeedback indicates the feedback text is empty once sanitized.
var ErrEmptyFeedback = errors.New("feedback must not be empty")

// ReviewService covers the supervisor side of the log lifecycle: listing
// assigned students and their logs, and recording review decisions and
// feedback.
type ReviewService interface {
	Students(ctx context.Context, supervisorID uint) ([]dto.UserResponse, error)
	Logs(ctx context.Context, supervisorID uint, filter dto.LogFilter) (dto.LogListResponse, error)
	SetStatus(ctx context.Context, actor Actor, logID uint, payload dto.ReviewDecisionRequest) (dto.LogResponse, error)
	SetFeedback(ctx context.Context, actor Actor, logID uint, payload dto.FeedbackRequest) (dto.LogResponse, error)
}

type reviewService struct {
	logs        repository.LogRepository
	users       repository.UserRepository
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	activity    ActivityRecorder
	invalidator DashboardInvalidator
	tracer      trace.Tracer
	logger      zerolog.Logger
}

// NewReviewService constructs the supervisor review service.
func NewReviewService(logs repository.LogRepository, users repository.UserRepository, validator *validator.Validate, activity ActivityRecorder, invalidator DashboardInvalidator, logger zerolog.Logger) ReviewService {
	return &reviewService{
		logs:        logs,
		users:       users,
		validator:   validator,
		sanitizer:   bluemonday.StrictPolicy(),
		activity:    activity,
		invalidator: invalidator,
		tracer:      otel.Tracer("internlog/review"),
		logger:      logger.With().Str("component", "review_service").Logger(),
	}
}

func (s *reviewService) Students(ctx context.Context, supervisorID uint) ([]dto.UserResponse, error) {
	students, _, err := s.users.ListStudents(ctx, repository.StudentFilter{SupervisorID: supervisorID})
	if err != nil {
		return nil, fmt.Errorf("failed to list assigned students: %w", err)
	}

	responses := make([]dto.UserResponse, 0, len(students))
	for _, student := range students {
		responses = append(responses, dto.NewUserResponse(student))
	}
	return responses, nil
}

func (s *reviewService) Logs(ctx context.Context, supervisorID uint, filter dto.LogFilter) (dto.LogListResponse, error) {
	repoFilter, err := buildLogFilter(filter)
	if err != nil {
		return dto.LogListResponse{}, err
	}
	repoFilter.SupervisorID = supervisorID

	entries, total, err := s.logs.List(ctx, repoFilter)
	if err != nil {
		return dto.LogListResponse{}, fmt.Errorf("failed to list log entries: %w", err)
	}

	return dto.LogListResponse{
		Logs:     dto.NewLogResponses(entries),
		Total:    total,
		Page:     repoFilter.Page,
		PageSize: repoFilter.PageSize,
	}, nil
}

func (s *reviewService) SetStatus(ctx context.Context, actor Actor, logID uint, payload dto.ReviewDecisionRequest) (dto.LogResponse, error) {
	ctx, span := s.tracer.Start(ctx, "review.decision")
	span.SetAttributes(
		attribute.Int64("review.log_id", int64(logID)),
		attribute.Int64("review.actor_id", int64(actor.ID)),
	)
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.LogResponse{}, err
	}

	entry, err := s.assignedEntry(ctx, actor.ID, logID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "scope_check_failed")
		return dto.LogResponse{}, err
	}

	status := models.LogStatusApproved
	if payload.Decision == "disapprove" {
		status = models.LogStatusDisapproved
	}

	entry.Status = status
	if err := s.logs.Update(ctx, &entry); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update_failed")
		return dto.LogResponse{}, fmt.Errorf("failed to update log status: %w", err)
	}

	observability.ReviewDecisions().WithLabelValues(payload.Decision).Inc()
	if s.activity != nil {
		s.activity.Record(ctx, actor, ActivityEntry{
			Action:     "log." + payload.Decision + "d",
			EntityType: "log_entry",
			EntityID:   &entry.ID,
			Metadata: map[string]interface{}{
				"student_id": entry.StudentID,
				"decision":   payload.Decision,
			},
		})
	}

	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx, entry.StudentID)
	}

	span.SetAttributes(attribute.String("review.status", status.String()))
	s.logger.Info().Uint("log_id", entry.ID).Str("decision", payload.Decision).Uint("supervisor_id", actor.ID).Msg("review decision recorded")
	return dto.NewLogResponse(entry), nil
}

func (s *reviewService) SetFeedback(ctx context.Context, actor Actor, logID uint, payload dto.FeedbackRequest) (dto.LogResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.LogResponse{}, err
	}

	feedback := strings.TrimSpace(s.sanitizer.Sanitize(payload.Feedback))
	if feedback == "" {
		return dto.LogResponse{}, ErrEmptyFeedback
	}

	entry, err := s.assignedEntry(ctx, actor.ID, logID)
	if err != nil {
		return dto.LogResponse{}, err
	}

	// Feedback is single-valued: a new write replaces whatever was there.
	entry.Feedback = &feedback
	if err := s.logs.Update(ctx, &entry); err != nil {
		return dto.LogResponse{}, fmt.Errorf("failed to update feedback: %w", err)
	}

	if s.activity != nil {
		s.activity.Record(ctx, actor, ActivityEntry{
			Action:     "log.feedback",
			EntityType: "log_entry",
			EntityID:   &entry.ID,
			Metadata:   map[string]interface{}{"student_id": entry.StudentID},
		})
	}

	s.logger.Info().Uint("log_id", entry.ID).Uint("supervisor_id", actor.ID).Msg("feedback recorded")
	return dto.NewLogResponse(entry), nil
}

// assignedEntry loads the entry and verifies the calling supervisor is
// currently assigned to its student.
func (s *reviewService) assignedEntry(ctx context.Context, supervisorID, logID uint) (models.LogEntry, error) {
	entry, err := s.logs.GetByID(ctx, logID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.LogEntry{}, ErrLogNotFound
		}
		return models.LogEntry{}, fmt.Errorf("failed to load log entry: %w", err)
	}

	if entry.Student.SupervisorID == nil || *entry.Student.SupervisorID != supervisorID {
		return models.LogEntry{}, ErrNotAssigned
	}

	return entry, nil
}
