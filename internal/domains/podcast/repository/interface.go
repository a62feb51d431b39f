package repository

import (
	"context"

	"github.com/google/uuid"

	"podcast-catalog/internal/domains/podcast/model"
)

// RepositoryInterface là data access contract cho podcast aggregate.
// Mọi thao tác ghi đều có điều kiện owner_id = ownerID trong cùng một statement.
type RepositoryInterface interface {
	Create(ctx context.Context, p *model.Podcast) error
	List(ctx context.Context) ([]model.Podcast, error)

	// FindByID returns ErrPodcastNotFound nếu không tồn tại
	FindByID(ctx context.Context, id uuid.UUID) (*model.Podcast, error)

	// Update merge các field khác nil của patch
	Update(ctx context.Context, id, ownerID uuid.UUID, patch model.UpdatePodcastRequest) (*model.Podcast, error)

	Delete(ctx context.Context, id, ownerID uuid.UUID) error

	// AppendEpisode nối episode vào cuối chuỗi một cách atomic
	AppendEpisode(ctx context.Context, id, ownerID uuid.UUID, ep model.Episode) (*model.Podcast, error)

	// RemoveEpisode xóa episode khỏi chuỗi một cách atomic
	// Returns: ErrEpisodeNotFound nếu episode không có trong podcast
	RemoveEpisode(ctx context.Context, id, ownerID, episodeID uuid.UUID) error
}
