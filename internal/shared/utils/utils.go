package utils

import (
	"strings"

	"github.com/google/uuid"
)

// ParseUUID trả về false nếu chuỗi không phải UUID hợp lệ
func ParseUUID(s string) (uuid.UUID, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
