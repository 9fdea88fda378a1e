package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/internlog/internlog-api/internal/dto"
	"github.com/internlog/internlog-api/internal/models"
	"github.com/internlog/internlog-api/internal/repository"
)

// Fixed page size for the student listing.
const studentPageSize = 10

// AdminService covers account administration and moderation: student and
// supervisor management plus bulk log actions.
type AdminService interface {
	ListStudents(ctx context.Context, req dto.StudentListRequest) (dto.StudentListResponse, error)
	DeleteStudent(ctx context.Context, actor Actor, id uint) error
	CreateSupervisor(ctx context.Context, actor Actor, payload dto.CreateSupervisorRequest) (dto.UserResponse, error)
	ListSupervisors(ctx context.Context) ([]dto.UserResponse, error)
	DeleteSupervisor(ctx context.Context, actor Actor, id uint) error
	ListLogs(ctx context.Context, filter dto.LogFilter) (dto.LogListResponse, error)
	BulkLogAction(ctx context.Context, actor Actor, payload dto.BulkLogActionRequest) (dto.BulkLogActionResponse, error)
}

type adminService struct {
	users       repository.UserRepository
	logs        repository.LogRepository
	validator   *validator.Validate
	activity    ActivityRecorder
	invalidator DashboardInvalidator
	tracer      trace.Tracer
	logger      zerolog.Logger
}

// NewAdminService constructs the admin service.
func NewAdminService(users repository.UserRepository, logs repository.LogRepository, validator *validator.Validate, activity ActivityRecorder, invalidator DashboardInvalidator, logger zerolog.Logger) AdminService {
	return &adminService{
		users:       users,
		logs:        logs,
		validator:   validator,
		activity:    activity,
		invalidator: invalidator,
		tracer:      otel.Tracer("internlog/admin"),
		logger:      logger.With().Str("component", "admin_service").Logger(),
	}
}

func (s *adminService) ListStudents(ctx context.Context, req dto.StudentListRequest) (dto.StudentListResponse, error) {
	page := req.Page
	if page <= 0 {
		page = 1
	}

	filter := repository.StudentFilter{
		Search:       strings.TrimSpace(req.Search),
		SupervisorID: req.SupervisorID,
		Page:         page,
		PageSize:     studentPageSize,
	}

	students, total, err := s.users.ListStudents(ctx, filter)
	if err != nil {
		return dto.StudentListResponse{}, fmt.Errorf("failed to list students: %w", err)
	}

	responses := make([]dto.UserResponse, 0, len(students))
	for _, student := range students {
		responses = append(responses, dto.NewUserResponse(student))
	}

	return dto.StudentListResponse{
		Students: responses,
		Total:    total,
		Page:     page,
		PageSize: studentPageSize,
	}, nil
}

func (s *adminService) DeleteStudent(ctx context.Context, actor Actor, id uint) error {
	if err := s.users.DeleteStudent(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStudentNotFound
		}
		return fmt.Errorf("failed to delete student: %w", err)
	}

	if s.activity != nil {
		s.activity.Record(ctx, actor, ActivityEntry{
			Action:     "student.deleted",
			EntityType: "user",
			EntityID:   &id,
		})
	}

	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx, id)
	}

	s.logger.Info().Uint("student_id", id).Msg("student account deleted")
	return nil
}

func (s *adminService) CreateSupervisor(ctx context.Context, actor Actor, payload dto.CreateSupervisorRequest) (dto.UserResponse, error) {
	payload.Username = strings.ToLower(strings.TrimSpace(payload.Username))
	if err := s.validator.Struct(payload); err != nil {
		return dto.UserResponse{}, err
	}

	if _, err := s.users.GetByUsername(ctx, payload.Username); err == nil {
		return dto.UserResponse{}, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.UserResponse{}, fmt.Errorf("failed to check username: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		return dto.UserResponse{}, fmt.Errorf("failed to hash password: %w", err)
	}

	supervisor := models.User{
		Username:     payload.Username,
		PasswordHash: string(hash),
		Role:         models.RoleSupervisor,
	}

	if err := s.users.Create(ctx, &supervisor); err != nil {
		return dto.UserResponse{}, fmt.Errorf("failed to create supervisor: %w", err)
	}

	if s.activity != nil {
		s.activity.Record(ctx, actor, ActivityEntry{
			Action:     "supervisor.created",
			EntityType: "user",
			EntityID:   &supervisor.ID,
		})
	}

	s.logger.Info().Uint("supervisor_id", supervisor.ID).Msg("supervisor account created")
	return dto.NewUserResponse(supervisor), nil
}

func (s *adminService) ListSupervisors(ctx context.Context) ([]dto.UserResponse, error) {
	supervisors, err := s.users.ListByRole(ctx, models.RoleSupervisor)
	if err != nil {
		return nil, fmt.Errorf("failed to list supervisors: %w", err)
	}

	responses := make([]dto.UserResponse, 0, len(supervisors))
	for _, supervisor := range supervisors {
		responses = append(responses, dto.NewUserResponse(supervisor))
	}
	return responses, nil
}

func (s *adminService) DeleteSupervisor(ctx context.Context, actor Actor, id uint) error {
	// The repository clears supervisor_id on every assigned student in
	// the same transaction that removes the row.
	if err := s.users.DeleteSupervisor(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSupervisorNotFound
		}
		return fmt.Errorf("failed to delete supervisor: %w", err)
	}

	if s.activity != nil {
		s.activity.Record(ctx, actor, ActivityEntry{
			Action:     "supervisor.deleted",
			EntityType: "user",
			EntityID:   &id,
		})
	}

	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx, 0)
	}

	s.logger.Info().Uint("supervisor_id", id).Msg("supervisor account deleted")
	return nil
}

func (s *adminService) ListLogs(ctx context.Context, filter dto.LogFilter) (dto.LogListResponse, error) {
	repoFilter, err := buildLogFilter(filter)
	if err != nil {
		return dto.LogListResponse{}, err
	}

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

// BulkLogAction applies one action across the id set. Ids that do not
// exist are skipped; the reported count is rows actually affected.
func (s *adminService) BulkLogAction(ctx context.Context, actor Actor, payload dto.BulkLogActionRequest) (dto.BulkLogActionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "admin.bulk_log_action")
	span.SetAttributes(
		attribute.String("bulk.action", payload.Action),
		attribute.Int("bulk.requested", len(payload.IDs)),
	)
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.BulkLogActionResponse{}, err
	}

	// Resolve affected students before a delete removes the rows.
	studentIDs, err := s.logs.StudentIDs(ctx, payload.IDs)
	if err != nil {
		span.RecordError(err)
		return dto.BulkLogActionResponse{}, fmt.Errorf("failed to resolve affected students: %w", err)
	}

	var affected int64
	switch payload.Action {
	case "approve":
		affected, err = s.logs.UpdateStatusBulk(ctx, payload.IDs, models.LogStatusApproved)
	case "disapprove":
		affected, err = s.logs.UpdateStatusBulk(ctx, payload.IDs, models.LogStatusDisapproved)
	case "delete":
		affected, err = s.logs.DeleteBulk(ctx, payload.IDs)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "bulk_action_failed")
		return dto.BulkLogActionResponse{}, fmt.Errorf("bulk %s failed: %w", payload.Action, err)
	}

	if s.activity != nil {
		s.activity.Record(ctx, actor, ActivityEntry{
			Action:     "log.bulk_" + payload.Action,
			EntityType: "log_entry",
			Metadata: map[string]interface{}{
				"requested": len(payload.IDs),
				"affected":  affected,
			},
		})
	}

	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx, 0)
		for _, studentID := range studentIDs {
			s.invalidator.Invalidate(ctx, studentID)
		}
	}

	span.SetAttributes(attribute.Int64("bulk.affected", affected))
	s.logger.Info().Str("action", payload.Action).Int("requested", len(payload.IDs)).Int64("affected", affected).Msg("bulk log action applied")
	return dto.BulkLogActionResponse{Action: payload.Action, Affected: affected}, nil
}
