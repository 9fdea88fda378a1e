package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/internlog/internlog-api/internal/dto"
	"github.com/internlog/internlog-api/internal/models"
	"github.com/internlog/internlog-api/internal/repository"
)

// ErrLogNotFound indicates the log entry does not exist.
var ErrLogNotFound = errors.New("log entry not found")

// ErrNotOwner indicates the log entry belongs to another student.
var ErrNotOwner = errors.New("log entry not owned by caller")

// ErrInvalidDate indicates the activity date is not a valid calendar date.
var ErrInvalidDate = errors.New("invalid activity date")

// ErrEmptyActivity indicates the activity text is empty once sanitized.
var ErrEmptyActivity = errors.New("activity must not be empty")

// Fixed page size for log listings.
const logPageSize = 25

// LogService covers the student side of the log lifecycle: submission,
// content edits and deletion. Review operations live in ReviewService.
type LogService interface {
	Submit(ctx context.Context, studentID uint, payload dto.SubmitLogRequest) (dto.LogResponse, error)
	Edit(ctx context.Context, studentID, logID uint, payload dto.EditLogRequest) (dto.LogResponse, error)
	Delete(ctx context.Context, studentID, logID uint) error
	ListForStudent(ctx context.Context, studentID uint, filter dto.LogFilter) (dto.LogListResponse, error)
}

type logService struct {
	logs        repository.LogRepository
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	invalidator DashboardInvalidator
	logger      zerolog.Logger
}

// NewLogService constructs the student log lifecycle service.
func NewLogService(logs repository.LogRepository, validator *validator.Validate, invalidator DashboardInvalidator, logger zerolog.Logger) LogService {
	return &logService{
		logs:        logs,
		validator:   validator,
		sanitizer:   bluemonday.StrictPolicy(),
		invalidator: invalidator,
		logger:      logger.With().Str("component", "log_service").Logger(),
	}
}

func (s *logService) Submit(ctx context.Context, studentID uint, payload dto.SubmitLogRequest) (dto.LogResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.LogResponse{}, err
	}

	date, err := parseLogDate(payload.Date)
	if err != nil {
		return dto.LogResponse{}, err
	}

	activity := strings.TrimSpace(s.sanitizer.Sanitize(payload.Activity))
	if activity == "" {
		return dto.LogResponse{}, ErrEmptyActivity
	}

	entry := models.LogEntry{
		StudentID: studentID,
		Date:      date,
		Activity:  activity,
		Status:    models.LogStatusPending,
	}

	if err := s.logs.Create(ctx, &entry); err != nil {
		return dto.LogResponse{}, fmt.Errorf("failed to create log entry: %w", err)
	}

	s.invalidate(ctx, studentID)
	s.logger.Info().Uint("log_id", entry.ID).Uint("student_id", studentID).Msg("log submitted")
	return dto.NewLogResponse(entry), nil
}

func (s *logService) Edit(ctx context.Context, studentID, logID uint, payload dto.EditLogRequest) (dto.LogResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.LogResponse{}, err
	}

	date, err := parseLogDate(payload.Date)
	if err != nil {
		return dto.LogResponse{}, err
	}

	activity := strings.TrimSpace(s.sanitizer.Sanitize(payload.Activity))
	if activity == "" {
		return dto.LogResponse{}, ErrEmptyActivity
	}

	entry, err := s.ownedEntry(ctx, studentID, logID)
	if err != nil {
		return dto.LogResponse{}, err
	}

	// A content edit always re-opens review: back to pending, feedback
	// cleared.
	entry.Date = date
	entry.Activity = activity
	entry.Status = models.LogStatusPending
	entry.Feedback = nil

	if err := s.logs.Update(ctx, &entry); err != nil {
		return dto.LogResponse{}, fmt.Errorf("failed to update log entry: %w", err)
	}

	s.invalidate(ctx, studentID)
	s.logger.Info().Uint("log_id", entry.ID).Uint("student_id", studentID).Msg("log edited")
	return dto.NewLogResponse(entry), nil
}

func (s *logService) Delete(ctx context.Context, studentID, logID uint) error {
	if _, err := s.ownedEntry(ctx, studentID, logID); err != nil {
		return err
	}

	if err := s.logs.Delete(ctx, logID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLogNotFound
		}
		return fmt.Errorf("failed to delete log entry: %w", err)
	}

	s.invalidate(ctx, studentID)
	s.logger.Info().Uint("log_id", logID).Uint("student_id", studentID).Msg("log deleted")
	return nil
}

func (s *logService) ListForStudent(ctx context.Context, studentID uint, filter dto.LogFilter) (dto.LogListResponse, error) {
	repoFilter, err := buildLogFilter(filter)
	if err != nil {
		return dto.LogListResponse{}, err
	}
	repoFilter.StudentID = studentID

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

func (s *logService) ownedEntry(ctx context.Context, studentID, logID uint) (models.LogEntry, error) {
	entry, err := s.logs.GetByID(ctx, logID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.LogEntry{}, ErrLogNotFound
		}
		return models.LogEntry{}, fmt.Errorf("failed to load log entry: %w", err)
	}

	if entry.StudentID != studentID {
		return models.LogEntry{}, ErrNotOwner
	}

	return entry, nil
}

func (s *logService) invalidate(ctx context.Context, studentID uint) {
	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx, studentID)
	}
}

func parseLogDate(value string) (time.Time, error) {
	date, err := time.Parse(dto.DateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}
	return date, nil
}

// buildLogFilter translates wire filters into a repository filter with
// the fixed page size applied. Unknown status values are rejected.
func buildLogFilter(filter dto.LogFilter) (repository.LogEntryFilter, error) {
	repoFilter := repository.LogEntryFilter{
		Page:     filter.Page,
		PageSize: logPageSize,
	}
	if repoFilter.Page <= 0 {
		repoFilter.Page = 1
	}

	if filter.Status != "" {
		status := models.LogStatus(strings.ToLower(strings.TrimSpace(filter.Status)))
		if !status.Valid() {
			return repository.LogEntryFilter{}, fmt.Errorf("unknown status filter %q", filter.Status)
		}
		repoFilter.Status = status
	}

	if filter.StudentID != 0 {
		repoFilter.StudentID = filter.StudentID
	}

	if filter.From != "" {
		from, err := parseLogDate(filter.From)
		if err != nil {
			return repository.LogEntryFilter{}, err
		}
		repoFilter.From = &from
	}

	if filter.To != "" {
		to, err := parseLogDate(filter.To)
		if err != nil {
			return repository.LogEntryFilter{}, err
		}
		repoFilter.To = &to
	}

	return repoFilter, nil
}
