package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/internlog/internlog-api/internal/dto"
	"github.com/internlog/internlog-api/internal/models"
	"github.com/internlog/internlog-api/internal/session"
)

func authFixture(t *testing.T) (*memoryUserRepo, AuthService, *session.Store) {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { client.Close() })

	users := newMemoryUserRepo()
	sessions := session.NewStore(client, time.Minute)
	validate := validator.New(validator.WithRequiredStructEnabled())
	return users, NewAuthService(users, sessions, validate, testLogger()), sessions
}

func TestAuthServiceRegisterNormalizesUsername(t *testing.T) {
	users, svc, _ := authFixture(t)

	result, err := svc.Register(context.Background(), dto.RegisterRequest{
		Username: "  Ada.Lovelace  ",
		Password: "correct-horse",
		Role:     "student",
	})
	require.NoError(t, err)
	require.Equal(t, "ada.lovelace", result.Username)
	require.Equal(t, models.RoleStudent.String(), result.Role)
	require.Len(t, users.users, 1)
}

func TestAuthServiceRegisterDuplicateUsername(t *testing.T) {
	users, svc, _ := authFixture(t)
	users.add(models.User{Username: "ada", Role: models.RoleStudent})

	_, err := svc.Register(context.Background(), dto.RegisterRequest{
		Username: "ada",
		Password: "correct-horse",
		Role:     "student",
	})
	require.ErrorIs(t, err, ErrUsernameTaken)
}

func TestAuthServiceRegisterRejectsAdminRole(t *testing.T) {
	_, svc, _ := authFixture(t)

	_, err := svc.Register(context.Background(), dto.RegisterRequest{
		Username: "eve",
		Password: "correct-horse",
		Role:     "admin",
	})
	require.Error(t, err)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	_, svc, _ := authFixture(t)

	_, err := svc.Register(context.Background(), dto.RegisterRequest{
		Username: "ada",
		Password: "correct-horse",
		Role:     "student",
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), dto.LoginRequest{Username: "ada", Password: "wrong-horse"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), dto.LoginRequest{Username: "nobody", Password: "correct-horse"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthServiceLoginEstablishesSession(t *testing.T) {
	_, svc, sessions := authFixture(t)

	registered, err := svc.Register(context.Background(), dto.RegisterRequest{
		Username: "ada",
		Password: "correct-horse",
		Role:     "supervisor",
	})
	require.NoError(t, err)

	login, err := svc.Login(context.Background(), dto.LoginRequest{Username: "ada", Password: "correct-horse"})
	require.NoError(t, err)
	require.NotEmpty(t, login.Token)
	require.Equal(t, registered.ID, login.UserID)
	require.Equal(t, "supervisor", login.Role)

	stored, err := sessions.Get(context.Background(), login.Token)
	require.NoError(t, err)
	require.Equal(t, registered.ID, stored.UserID)

	require.NoError(t, svc.Logout(context.Background(), login.Token))
	_, err = sessions.Get(context.Background(), login.Token)
	require.ErrorIs(t, err, session.ErrNotFound)
}

func TestAuthServiceChangePasswordChecksCurrent(t *testing.T) {
	_, svc, _ := authFixture(t)

	registered, err := svc.Register(context.Background(), dto.RegisterRequest{
		Username: "ada",
		Password: "correct-horse",
		Role:     "student",
	})
	require.NoError(t, err)

	err = svc.ChangePassword(context.Background(), registered.ID, dto.ChangePasswordRequest{
		CurrentPassword: "wrong-horse",
		NewPassword:     "battery-staple",
	})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	err = svc.ChangePassword(context.Background(), registered.ID, dto.ChangePasswordRequest{
		CurrentPassword: "correct-horse",
		NewPassword:     "battery-staple",
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), dto.LoginRequest{Username: "ada", Password: "battery-staple"})
	require.NoError(t, err)
}

func TestAuthServiceEnsureAdminIdempotent(t *testing.T) {
	users, svc, _ := authFixture(t)

	require.NoError(t, svc.EnsureAdmin(context.Background(), "admin", "super-secret"))
	require.Len(t, users.users, 1)

	require.NoError(t, svc.EnsureAdmin(context.Background(), "admin", "super-secret"))
	require.Len(t, users.users, 1)

	admin, err := users.GetByUsername(context.Background(), "admin")
	require.NoError(t, err)
	require.Equal(t, models.RoleAdmin, admin.Role)
}

func TestAuthServiceEnsureAdminSkipsWithoutPassword(t *testing.T) {
	users, svc, _ := authFixture(t)

	require.NoError(t, svc.EnsureAdmin(context.Background(), "admin", ""))
	require.Empty(t, users.users)
}
