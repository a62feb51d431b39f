package service

import (
	"github.com/google/uuid"

	"podcast-catalog/internal/domains/podcast/model"
)

// Authorize là ownership policy: chỉ owner được ghi vào podcast.
// Được gọi trên mọi đường ghi trước khi chạm vào store.
func Authorize(callerID uuid.UUID, p *model.Podcast) error {
	if callerID == uuid.Nil {
		return model.ErrUnauthenticated
	}
	if p == nil || p.OwnerID != callerID {
		return model.ErrForbidden
	}
	return nil
}
