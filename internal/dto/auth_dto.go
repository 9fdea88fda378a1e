package dto

import (
	"time"

	"github.com/internlog/internlog-api/internal/models"
)

// RegisterRequest carries a self-service account registration. Admin
// accounts cannot be registered through this surface.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	Role     string `json:"role" validate:"required,oneof=student supervisor"`
}

// LoginRequest carries credentials for session establishment.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the opaque session token plus the role so the
// client can route to the right dashboard.
type LoginResponse struct {
	Token  string `json:"token"`
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
}

// ChangePasswordRequest carries a password change for the current user.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=128"`
}

// UserResponse is the public projection of a user account.
type UserResponse struct {
	ID           uint      `json:"id"`
	Username     string    `json:"username"`
	Role         string    `json:"role"`
	SupervisorID *uint     `json:"supervisor_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewUserResponse maps a user model to its public projection.
func NewUserResponse(user models.User) UserResponse {
	return UserResponse{
		ID:           user.ID,
		Username:     user.Username,
		Role:         user.Role.String(),
		SupervisorID: user.SupervisorID,
		CreatedAt:    user.CreatedAt,
	}
}
