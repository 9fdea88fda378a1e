package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/internlog/internlog-api/internal/dto"
	"github.com/internlog/internlog-api/internal/models"
)

func reviewFixture(t *testing.T) (*memoryUserRepo, *memoryLogRepo, models.User, models.User, models.LogEntry) {
	t.Helper()

	users := newMemoryUserRepo()
	supervisor := users.add(models.User{Username: "grace", Role: models.RoleSupervisor})
	student := users.add(models.User{Username: "ada", Role: models.RoleStudent, SupervisorID: &supervisor.ID})

	logs := newMemoryLogRepo(users)
	entry := models.LogEntry{StudentID: student.ID, Activity: "Wrote migration scripts", Status: models.LogStatusPending}
	require.NoError(t, logs.Create(context.Background(), &entry))

	return users, logs, supervisor, student, entry
}

func TestReviewServiceApproveRecordsDecision(t *testing.T) {
	users, logs, supervisor, student, entry := reviewFixture(t)
	recorder := &captureRecorder{}
	invalidator := &captureInvalidator{}
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewReviewService(logs, users, validate, recorder, invalidator, testLogger())

	actor := Actor{ID: supervisor.ID, Role: models.RoleSupervisor}
	result, err := svc.SetStatus(context.Background(), actor, entry.ID, dto.ReviewDecisionRequest{Decision: "approve"})
	require.NoError(t, err)
	require.Equal(t, models.LogStatusApproved.String(), result.Status)

	require.Len(t, recorder.records, 1)
	require.Equal(t, "log.approved", recorder.records[0].entry.Action)
	require.Equal(t, supervisor.ID, recorder.records[0].actor.ID)
	require.Equal(t, []uint{student.ID}, invalidator.studentIDs)
}

func TestReviewServiceRejectsUnknownDecision(t *testing.T) {
	users, logs, supervisor, _, entry := reviewFixture(t)
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewReviewService(logs, users, validate, nil, nil, testLogger())

	actor := Actor{ID: supervisor.ID, Role: models.RoleSupervisor}
	_, err := svc.SetStatus(context.Background(), actor, entry.ID, dto.ReviewDecisionRequest{Decision: "archive"})
	require.Error(t, err)

	stored := logs.entries[entry.ID]
	require.Equal(t, models.LogStatusPending, stored.Status)
}

func TestReviewServiceRejectsUnassignedSupervisor(t *testing.T) {
	users, logs, _, _, entry := reviewFixture(t)
	other := users.add(models.User{Username: "linus", Role: models.RoleSupervisor})
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewReviewService(logs, users, validate, nil, nil, testLogger())

	actor := Actor{ID: other.ID, Role: models.RoleSupervisor}
	_, err := svc.SetStatus(context.Background(), actor, entry.ID, dto.ReviewDecisionRequest{Decision: "approve"})
	require.ErrorIs(t, err, ErrNotAssigned)

	stored := logs.entries[entry.ID]
	require.Equal(t, models.LogStatusPending, stored.Status)
}

func TestReviewServiceFeedbackOverwrites(t *testing.T) {
	users, logs, supervisor, _, entry := reviewFixture(t)
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewReviewService(logs, users, validate, nil, nil, testLogger())

	actor := Actor{ID: supervisor.ID, Role: models.RoleSupervisor}
	_, err := svc.SetFeedback(context.Background(), actor, entry.ID, dto.FeedbackRequest{Feedback: "Add timings"})
	require.NoError(t, err)

	result, err := svc.SetFeedback(context.Background(), actor, entry.ID, dto.FeedbackRequest{Feedback: "Looks complete now"})
	require.NoError(t, err)
	require.NotNil(t, result.Feedback)
	require.Equal(t, "Looks complete now", *result.Feedback)

	stored := logs.entries[entry.ID]
	require.NotNil(t, stored.Feedback)
	require.Equal(t, "Looks complete now", *stored.Feedback)
}

func TestReviewServiceFeedbackRejectsEmptyAfterSanitize(t *testing.T) {
	users, logs, supervisor, _, entry := reviewFixture(t)
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewReviewService(logs, users, validate, nil, nil, testLogger())

	actor := Actor{ID: supervisor.ID, Role: models.RoleSupervisor}
	_, err := svc.SetFeedback(context.Background(), actor, entry.ID, dto.FeedbackRequest{Feedback: "<i> </i>"})
	require.ErrorIs(t, err, ErrEmptyFeedback)
}

func TestReviewServiceLogsScopedToAssignedStudents(t *testing.T) {
	users, logs, supervisor, _, _ := reviewFixture(t)
	unassigned := users.add(models.User{Username: "bob", Role: models.RoleStudent})
	entry := models.LogEntry{StudentID: unassigned.ID, Activity: "other work", Status: models.LogStatusPending}
	require.NoError(t, logs.Create(context.Background(), &entry))

	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewReviewService(logs, users, validate, nil, nil, testLogger())

	result, err := svc.Logs(context.Background(), supervisor.ID, dto.LogFilter{})
	require.NoError(t, err)
	require.Equal(t, int64(1), result.Total)
}

func TestReviewServiceStudentsListsAssignedOnly(t *testing.T) {
	users, logs, supervisor, student, _ := reviewFixture(t)
	users.add(models.User{Username: "bob", Role: models.RoleStudent})

	validate := validator.New(validator.WithRequiredStructEnabled())
	svc := NewReviewService(logs, users, validate, nil, nil, testLogger())

	students, err := svc.Students(context.Background(), supervisor.ID)
	require.NoError(t, err)
	require.Len(t, students, 1)
	require.Equal(t, student.Username, students[0].Username)
}
