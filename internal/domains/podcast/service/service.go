package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"podcast-catalog/internal/domains/podcast/model"
	"podcast-catalog/internal/domains/podcast/repository"
	"podcast-catalog/pkg/cache"
)

const (
	// DetailCacheTTL là thời gian cache chi tiết podcast
	DetailCacheTTL = 10 * time.Minute

	// generationTTL phải dài hơn DetailCacheTTL: counter mất trước entry thì entry cũ sống lại
	generationTTL = 24 * time.Hour
)

// Mỗi mutation tăng generation sau khi ghi DB; entry detail gắn với generation lúc đọc.
// Get chậm ghi lại bản cũ chỉ ghi vào key của generation đã bị bỏ.
func generationKey(id uuid.UUID) string {
	return fmt.Sprintf("podcast:gen:%s", id)
}

func detailCacheKey(id uuid.UUID, generation int64) string {
	return fmt.Sprintf("podcast:detail:%s:%d", id, generation)
}

type podcastService struct {
	repo  repository.RepositoryInterface
	cache cache.Cache
	now   func() time.Time
}

// NewPodcastService; cache có thể nil (không cache)
func NewPodcastService(repo repository.RepositoryInterface, c cache.Cache) ServiceInterface {
	return &podcastService{
		repo:  repo,
		cache: c,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// ========================================
// CREATE / READ
// ========================================

func (s *podcastService) Create(ctx context.Context, ownerID uuid.UUID, req model.CreatePodcastRequest) (*model.Podcast, error) {
	if ownerID == uuid.Nil {
		return nil, model.ErrUnauthenticated
	}

	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := s.now()
	p := &model.Podcast{
		ID:          uuid.New(),
		Title:       req.Title,
		Author:      req.Author,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		AudioURL:    req.AudioURL,
		OwnerID:     ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
		Episodes:    make([]model.Episode, 0, len(req.Episodes)),
	}
	for _, in := range req.Episodes {
		p.Episodes = append(p.Episodes, in.ToEpisode(now))
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create podcast: %w", err)
	}

	log.Info().
		Str("podcast_id", p.ID.String()).
		Str("owner_id", ownerID.String()).
		Int("episodes", len(p.Episodes)).
		Msg("[PODCAST] Created")
	return p, nil
}

func (s *podcastService) List(ctx context.Context) ([]model.Podcast, error) {
	podcasts, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list podcasts: %w", err)
	}
	return podcasts, nil
}

// Get dùng cache-aside trên Redis; lỗi cache không làm fail request
func (s *podcastService) Get(ctx context.Context, id uuid.UUID) (*model.Podcast, error) {
	generation, ok := s.generation(ctx, id)
	if !ok {
		return s.repo.FindByID(ctx, id)
	}
	key := detailCacheKey(id, generation)

	var cached model.Podcast
	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("[PODCAST] Cache read failed")
	} else if found {
		cached.Normalize()
		return &cached, nil
	}

	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, p, DetailCacheTTL); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("[PODCAST] Cache write failed")
	}
	return p, nil
}

// generation đọc trước khi đọc DB. ok=false: bỏ qua cache cho request này
func (s *podcastService) generation(ctx context.Context, id uuid.UUID) (int64, bool) {
	if s.cache == nil {
		return 0, false
	}
	var generation int64
	if _, err := s.cache.Get(ctx, generationKey(id), &generation); err != nil {
		log.Warn().Err(err).Str("podcast_id", id.String()).Msg("[PODCAST] Cache generation read failed")
		return 0, false
	}
	return generation, true
}

// ========================================
// OWNER-SCOPED MUTATIONS
// ========================================

// loadForWrite đọc trực tiếp từ store (không qua cache) rồi áp ownership policy
func (s *podcastService) loadForWrite(ctx context.Context, id, callerID uuid.UUID) (*model.Podcast, error) {
	if callerID == uuid.Nil {
		return nil, model.ErrUnauthenticated
	}

	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := Authorize(callerID, p); err != nil {
		log.Warn().
			Str("podcast_id", id.String()).
			Str("caller_id", callerID.String()).
			Msg("[PODCAST] Ownership check failed")
		return nil, err
	}
	return p, nil
}

func (s *podcastService) Update(ctx context.Context, id, callerID uuid.UUID, patch model.UpdatePodcastRequest) (*model.Podcast, error) {
	current, err := s.loadForWrite(ctx, id, callerID)
	if err != nil {
		return nil, err
	}

	patch.Normalize()
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return current, nil
	}

	updated, err := s.repo.Update(ctx, id, callerID, patch)
	if err != nil {
		return nil, s.wrapWrite("update podcast", err)
	}

	s.invalidate(ctx, id)
	return updated, nil
}

func (s *podcastService) Delete(ctx context.Context, id, callerID uuid.UUID) error {
	if _, err := s.loadForWrite(ctx, id, callerID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id, callerID); err != nil {
		return s.wrapWrite("delete podcast", err)
	}

	s.invalidate(ctx, id)
	log.Info().Str("podcast_id", id.String()).Msg("[PODCAST] Deleted")
	return nil
}

// AddEpisode trả về toàn bộ podcast sau khi append
func (s *podcastService) AddEpisode(ctx context.Context, id, callerID uuid.UUID, in model.EpisodeInput) (*model.Podcast, error) {
	if _, err := s.loadForWrite(ctx, id, callerID); err != nil {
		return nil, err
	}

	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	// releaseDate của episode mới luôn là thời điểm append
	in.ReleaseDate = nil
	ep := in.ToEpisode(s.now())

	updated, err := s.repo.AppendEpisode(ctx, id, callerID, ep)
	if err != nil {
		return nil, s.wrapWrite("append episode", err)
	}

	s.invalidate(ctx, id)
	return updated, nil
}

// DeleteEpisode: ownership được kiểm tra trước khi tìm episode
func (s *podcastService) DeleteEpisode(ctx context.Context, id, episodeID, callerID uuid.UUID) error {
	p, err := s.loadForWrite(ctx, id, callerID)
	if err != nil {
		return err
	}
	if !p.HasEpisode(episodeID) {
		return model.ErrEpisodeNotFound
	}

	if err := s.repo.RemoveEpisode(ctx, id, callerID, episodeID); err != nil {
		return s.wrapWrite("remove episode", err)
	}

	s.invalidate(ctx, id)
	return nil
}

// wrapWrite giữ nguyên domain error, wrap lỗi hạ tầng
func (s *podcastService) wrapWrite(op string, err error) error {
	if errors.Is(err, model.ErrPodcastNotFound) || errors.Is(err, model.ErrEpisodeNotFound) {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}

// invalidate chạy sau khi DB write đã commit
func (s *podcastService) invalidate(ctx context.Context, id uuid.UUID) {
	if s.cache == nil {
		return
	}
	key := generationKey(id)
	if _, err := s.cache.Increment(ctx, key); err != nil {
		log.Warn().Err(err).Str("podcast_id", id.String()).Msg("[PODCAST] Cache invalidation failed")
		return
	}
	if err := s.cache.Expire(ctx, key, generationTTL); err != nil {
		log.Warn().Err(err).Str("podcast_id", id.String()).Msg("[PODCAST] Cache generation expiry failed")
	}
}
