package service

import (
	"context"

	"github.com/google/uuid"

	"podcast-catalog/internal/domains/podcast/model"
)

// ServiceInterface là Podcast/Episode Store.
// Mọi thao tác ghi trả lỗi theo thứ tự: ErrPodcastNotFound, ErrForbidden, rồi lỗi riêng của thao tác.
type ServiceInterface interface {
	Create(ctx context.Context, ownerID uuid.UUID, req model.CreatePodcastRequest) (*model.Podcast, error)
	List(ctx context.Context) ([]model.Podcast, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Podcast, error)
	Update(ctx context.Context, id, callerID uuid.UUID, patch model.UpdatePodcastRequest) (*model.Podcast, error)
	Delete(ctx context.Context, id, callerID uuid.UUID) error
	AddEpisode(ctx context.Context, id, callerID uuid.UUID, in model.EpisodeInput) (*model.Podcast, error)
	DeleteEpisode(ctx context.Context, id, episodeID, callerID uuid.UUID) error
}
