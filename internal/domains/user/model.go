package user

import (
	"time"

	"github.com/google/uuid"
)

// User là Credential Store record.
// Email giữ nguyên như lúc đăng ký (chỉ trim khoảng trắng), so khớp phân biệt hoa thường.
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"` // Never expose in JSON
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// ToDTO chỉ expose id + email
func (u *User) ToDTO() UserDTO {
	return UserDTO{
		ID:    u.ID,
		Email: u.Email,
	}
}
