package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"podcast-catalog/internal/domains/podcast/model"
	"podcast-catalog/internal/domains/podcast/repository"
)

// MemoryPodcastRepository implement repository.RepositoryInterface in-memory.
// Mỗi thao tác ghi giữ lock suốt thao tác, tương đương một UPDATE atomic.
type MemoryPodcastRepository struct {
	mu       sync.Mutex
	podcasts map[uuid.UUID]*model.Podcast
	Err      error
}

var _ repository.RepositoryInterface = (*MemoryPodcastRepository)(nil)

func NewMemoryPodcastRepository() *MemoryPodcastRepository {
	return &MemoryPodcastRepository{podcasts: make(map[uuid.UUID]*model.Podcast)}
}

func clonePodcast(p *model.Podcast) *model.Podcast {
	cp := *p
	cp.Episodes = append([]model.Episode{}, p.Episodes...)
	if p.AudioURL != nil {
		audio := *p.AudioURL
		cp.AudioURL = &audio
	}
	return &cp
}

func (r *MemoryPodcastRepository) Create(ctx context.Context, p *model.Podcast) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	p.Normalize()
	r.podcasts[p.ID] = clonePodcast(p)
	return nil
}

func (r *MemoryPodcastRepository) List(ctx context.Context) ([]model.Podcast, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}

	out := make([]model.Podcast, 0, len(r.podcasts))
	for _, p := range r.podcasts {
		out = append(out, *clonePodcast(p))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryPodcastRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Podcast, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	p, ok := r.podcasts[id]
	if !ok {
		return nil, model.ErrPodcastNotFound
	}
	return clonePodcast(p), nil
}

// owned trả về podcast nếu tồn tại và thuộc ownerID (giống WHERE id = $1 AND owner_id = $2)
func (r *MemoryPodcastRepository) owned(id, ownerID uuid.UUID) (*model.Podcast, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	p, ok := r.podcasts[id]
	if !ok || p.OwnerID != ownerID {
		return nil, model.ErrPodcastNotFound
	}
	return p, nil
}

func (r *MemoryPodcastRepository) Update(ctx context.Context, id, ownerID uuid.UUID, patch model.UpdatePodcastRequest) (*model.Podcast, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, err := r.owned(id, ownerID)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Author != nil {
		p.Author = *patch.Author
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.ImageURL != nil {
		p.ImageURL = *patch.ImageURL
	}
	if patch.AudioURL != nil {
		if *patch.AudioURL == "" {
			p.AudioURL = nil
		} else {
			audio := *patch.AudioURL
			p.AudioURL = &audio
		}
	}
	p.UpdatedAt = time.Now().UTC()
	return clonePodcast(p), nil
}

func (r *MemoryPodcastRepository) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := r.owned(id, ownerID); err != nil {
		return err
	}
	delete(r.podcasts, id)
	return nil
}

func (r *MemoryPodcastRepository) AppendEpisode(ctx context.Context, id, ownerID uuid.UUID, ep model.Episode) (*model.Podcast, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, err := r.owned(id, ownerID)
	if err != nil {
		return nil, err
	}
	p.Episodes = append(p.Episodes, ep)
	p.UpdatedAt = time.Now().UTC()
	return clonePodcast(p), nil
}

func (r *MemoryPodcastRepository) RemoveEpisode(ctx context.Context, id, ownerID, episodeID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, err := r.owned(id, ownerID)
	if err != nil {
		return err
	}

	kept := make([]model.Episode, 0, len(p.Episodes))
	for _, ep := range p.Episodes {
		if ep.ID != episodeID {
			kept = append(kept, ep)
		}
	}
	if len(kept) == len(p.Episodes) {
		return model.ErrEpisodeNotFound
	}
	p.Episodes = kept
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// Len trả về số podcast đang lưu
func (r *MemoryPodcastRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.podcasts)
}
