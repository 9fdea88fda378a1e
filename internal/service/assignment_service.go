package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/internlog/internlog-api/internal/dto"
	"github.com/internlog/internlog-api/internal/models"
	"github.com/internlog/internlog-api/internal/repository"
)

// ErrStudentNotFound indicates the id does not name a student account.
var ErrStudentNotFound = errors.New("student not found")

// ErrSupervisorNotFound indicates the id does not name a supervisor account.
var ErrSupervisorNotFound = errors.New("supervisor not found")

// AssignmentService manages the many-to-one student/supervisor links.
type AssignmentService interface {
	Assign(ctx context.Context, actor Actor, studentID uint, payload dto.AssignSupervisorRequest) (dto.UserResponse, error)
}

type assignmentService struct {
	users    repository.UserRepository
	activity ActivityRecorder
	logger   zerolog.Logger
}

// NewAssignmentService constructs the assignment service.
func NewAssignmentService(users repository.UserRepository, activity ActivityRecorder, logger zerolog.Logger) AssignmentService {
	return &assignmentService{
		users:    users,
		activity: activity,
		logger:   logger.With().Str("component", "assignment_service").Logger(),
	}
}

// Assign overwrites the student's supervisor link. Both ends are
// role-checked; a nil supervisor id clears the assignment.
func (s *assignmentService) Assign(ctx context.Context, actor Actor, studentID uint, payload dto.AssignSupervisorRequest) (dto.UserResponse, error) {
	student, err := s.users.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, ErrStudentNotFound
		}
		return dto.UserResponse{}, fmt.Errorf("failed to load student: %w", err)
	}
	if student.Role != models.RoleStudent {
		return dto.UserResponse{}, ErrStudentNotFound
	}

	if payload.SupervisorID != nil {
		supervisor, err := s.users.GetByID(ctx, *payload.SupervisorID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.UserResponse{}, ErrSupervisorNotFound
			}
			return dto.UserResponse{}, fmt.Errorf("failed to load supervisor: %w", err)
		}
		if supervisor.Role != models.RoleSupervisor {
			return dto.UserResponse{}, ErrSupervisorNotFound
		}
	}

	if err := s.users.SetSupervisor(ctx, studentID, payload.SupervisorID); err != nil {
		return dto.UserResponse{}, fmt.Errorf("failed to update assignment: %w", err)
	}
	student.SupervisorID = payload.SupervisorID

	if s.activity != nil {
		metadata := map[string]interface{}{"student_id": studentID}
		if payload.SupervisorID != nil {
			metadata["supervisor_id"] = *payload.SupervisorID
		}
		s.activity.Record(ctx, actor, ActivityEntry{
			Action:     "student.assigned",
			EntityType: "user",
			EntityID:   &studentID,
			Metadata:   metadata,
		})
	}

	s.logger.Info().Uint("student_id", studentID).Msg("supervisor assignment updated")
	return dto.NewUserResponse(student), nil
}
