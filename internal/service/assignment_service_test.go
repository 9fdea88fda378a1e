package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/internlog/internlog-api/internal/dto"
	"github.com/internlog/internlog-api/internal/models"
)

func TestAssignmentServiceAssignAndClear(t *testing.T) {
	users := newMemoryUserRepo()
	supervisor := users.add(models.User{Username: "grace", Role: models.RoleSupervisor})
	student := users.add(models.User{Username: "ada", Role: models.RoleStudent})
	recorder := &captureRecorder{}
	svc := NewAssignmentService(users, recorder, testLogger())

	actor := Actor{ID: 99, Role: models.RoleAdmin}
	result, err := svc.Assign(context.Background(), actor, student.ID, dto.AssignSupervisorRequest{SupervisorID: &supervisor.ID})
	require.NoError(t, err)
	require.NotNil(t, result.SupervisorID)
	require.Equal(t, supervisor.ID, *result.SupervisorID)

	stored, err := users.GetByID(context.Background(), student.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.SupervisorID)

	result, err = svc.Assign(context.Background(), actor, student.ID, dto.AssignSupervisorRequest{SupervisorID: nil})
	require.NoError(t, err)
	require.Nil(t, result.SupervisorID)

	stored, err = users.GetByID(context.Background(), student.ID)
	require.NoError(t, err)
	require.Nil(t, stored.SupervisorID)

	require.Len(t, recorder.records, 2)
	require.Equal(t, "student.assigned", recorder.records[0].entry.Action)
}

func TestAssignmentServiceReplacesExistingLink(t *testing.T) {
	users := newMemoryUserRepo()
	first := users.add(models.User{Username: "grace", Role: models.RoleSupervisor})
	second := users.add(models.User{Username: "linus", Role: models.RoleSupervisor})
	student := users.add(models.User{Username: "ada", Role: models.RoleStudent, SupervisorID: &first.ID})
	svc := NewAssignmentService(users, nil, testLogger())

	actor := Actor{ID: 99, Role: models.RoleAdmin}
	result, err := svc.Assign(context.Background(), actor, student.ID, dto.AssignSupervisorRequest{SupervisorID: &second.ID})
	require.NoError(t, err)
	require.Equal(t, second.ID, *result.SupervisorID)
}

func TestAssignmentServiceValidatesBothEnds(t *testing.T) {
	users := newMemoryUserRepo()
	supervisor := users.add(models.User{Username: "grace", Role: models.RoleSupervisor})
	student := users.add(models.User{Username: "ada", Role: models.RoleStudent})
	svc := NewAssignmentService(users, nil, testLogger())

	actor := Actor{ID: 99, Role: models.RoleAdmin}

	_, err := svc.Assign(context.Background(), actor, 42, dto.AssignSupervisorRequest{SupervisorID: &supervisor.ID})
	require.ErrorIs(t, err, ErrStudentNotFound)

	// A supervisor cannot be assigned as a student.
	_, err = svc.Assign(context.Background(), actor, supervisor.ID, dto.AssignSupervisorRequest{SupervisorID: &supervisor.ID})
	require.ErrorIs(t, err, ErrStudentNotFound)

	missing := uint(42)
	_, err = svc.Assign(context.Background(), actor, student.ID, dto.AssignSupervisorRequest{SupervisorID: &missing})
	require.ErrorIs(t, err, ErrSupervisorNotFound)

	// Another student cannot serve as the supervisor end.
	other := users.add(models.User{Username: "bob", Role: models.RoleStudent})
	_, err = svc.Assign(context.Background(), actor, student.ID, dto.AssignSupervisorRequest{SupervisorID: &other.ID})
	require.ErrorIs(t, err, ErrSupervisorNotFound)
}
