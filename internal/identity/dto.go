package identity

import (
	"time"

	apperrors "github.com/edi-app/edi-intake/internal"
	"github.com/edi-app/edi-intake/internal/core/common/validation"
)

// CreateUserDTO is the request payload for creating a user. The password
// hash arrives pre-computed; this service never sees plaintext credentials.
type CreateUserDTO struct {
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
	Role         string `json:"role"`
}

func (dto CreateUserDTO) Validate() *apperrors.AppError {
	validator := validation.NewValidator()

	validator.Field("email", dto.Email).
		Required().
		MaxLength(254).
		Custom(validation.EmailShape("email"))

	validator.Field("password_hash", dto.PasswordHash).
		Required()

	validator.Field("role", dto.Role).
		Required().
		OneOf(RoleAdmin, RoleCollector)

	return validator.Validate()
}

// UserResponse is the outward shape of a user; no hash field exists on it.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func ToResponse(u *User) *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}
