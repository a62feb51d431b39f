package user

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
)

// bcrypt chỉ dùng 72 byte đầu của password
const maxPasswordBytes = 72

// ========================================
// AUTH DTOs
// ========================================

// RegisterRequest - POST /api/auth/register
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Normalize chỉ trim khoảng trắng quanh email, không đổi hoa thường
func (r *RegisterRequest) Normalize() {
	r.Email = strings.TrimSpace(r.Email)
}

func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email,
			validation.Required.Error("email is required"),
			is.EmailFormat.Error("invalid email format"),
			validation.Length(3, 255),
		),
		validation.Field(&r.Password,
			validation.Required.Error("password is required"),
			validation.By(func(value interface{}) error {
				if len(value.(string)) > maxPasswordBytes {
					return validation.NewError("validation_password_too_long", "password must be at most 72 bytes")
				}
				return nil
			}),
		),
	)
}

// LoginRequest - POST /api/auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Normalize() {
	r.Email = strings.TrimSpace(r.Email)
}

func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required.Error("email is required")),
		validation.Field(&r.Password, validation.Required.Error("password is required")),
	)
}

// LoginResponse - {token}
type LoginResponse struct {
	Token string `json:"token"`
}

// UserDTO - GET /api/auth/me
type UserDTO struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}
