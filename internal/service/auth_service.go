package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/internlog/internlog-api/internal/dto"
	"github.com/internlog/internlog-api/internal/models"
	"github.com/internlog/internlog-api/internal/repository"
	"github.com/internlog/internlog-api/internal/session"
)

// ErrUsernameTaken indicates the username is already registered.
var ErrUsernameTaken = errors.New("username already taken")

// ErrInvalidCredentials indicates the username/password pair does not match.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrUserNotFound indicates the account does not exist.
var ErrUserNotFound = errors.New("user not found")

// AuthService handles registration, session establishment and password
// management.
type AuthService interface {
	Register(ctx context.Context, payload dto.RegisterRequest) (dto.UserResponse, error)
	Login(ctx context.Context, payload dto.LoginRequest) (dto.LoginResponse, error)
	Logout(ctx context.Context, token string) error
	ChangePassword(ctx context.Context, userID uint, payload dto.ChangePasswordRequest) error
	EnsureAdmin(ctx context.Context, username, password string) error
}

type authService struct {
	users     repository.UserRepository
	sessions  *session.Store
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewAuthService constructs the auth service.
func NewAuthService(users repository.UserRepository, sessions *session.Store, validator *validator.Validate, logger zerolog.Logger) AuthService {
	return &authService{
		users:     users,
		sessions:  sessions,
		validator: validator,
		logger:    logger.With().Str("component", "auth_service").Logger(),
	}
}

func (s *authService) Register(ctx context.Context, payload dto.RegisterRequest) (dto.UserResponse, error) {
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

	user := models.User{
		Username:     payload.Username,
		PasswordHash: string(hash),
		Role:         models.Role(payload.Role),
	}

	if err := s.users.Create(ctx, &user); err != nil {
		return dto.UserResponse{}, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info().Uint("user_id", user.ID).Str("role", payload.Role).Msg("account registered")
	return dto.NewUserResponse(user), nil
}

func (s *authService) Login(ctx context.Context, payload dto.LoginRequest) (dto.LoginResponse, error) {
	payload.Username = strings.ToLower(strings.TrimSpace(payload.Username))
	if err := s.validator.Struct(payload); err != nil {
		return dto.LoginResponse{}, err
	}

	user, err := s.users.GetByUsername(ctx, payload.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.LoginResponse{}, ErrInvalidCredentials
		}
		return dto.LoginResponse{}, fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(payload.Password)); err != nil {
		return dto.LoginResponse{}, ErrInvalidCredentials
	}

	token, err := s.sessions.Create(ctx, session.Session{UserID: user.ID, Role: user.Role.String()})
	if err != nil {
		return dto.LoginResponse{}, fmt.Errorf("failed to create session: %w", err)
	}

	s.logger.Info().Uint("user_id", user.ID).Msg("session established")
	return dto.LoginResponse{Token: token, UserID: user.ID, Role: user.Role.String()}, nil
}

func (s *authService) Logout(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}

func (s *authService) ChangePassword(ctx context.Context, userID uint, payload dto.ChangePasswordRequest) error {
	if err := s.validator.Struct(payload); err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(payload.CurrentPassword)); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.users.UpdatePasswordHash(ctx, user.ID, string(hash)); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.logger.Info().Uint("user_id", user.ID).Msg("password changed")
	return nil
}

// EnsureAdmin seeds the default administrator account on startup. It is
// a no-op when the username already exists or no password is configured.
func (s *authService) EnsureAdmin(ctx context.Context, username, password string) error {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || password == "" {
		return nil
	}

	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check admin account: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := models.User{Username: username, PasswordHash: string(hash), Role: models.RoleAdmin}
	if err := s.users.Create(ctx, &admin); err != nil {
		return fmt.Errorf("failed to seed admin account: %w", err)
	}

	s.logger.Info().Str("username", username).Msg("default admin account created")
	return nil
}
