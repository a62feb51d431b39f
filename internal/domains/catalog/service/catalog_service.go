package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"podcast-catalog/internal/domains/catalog/model"
	"podcast-catalog/pkg/cache"
)

const (
	topCacheKey  = "catalog:top"
	maxFeedBytes = 8 << 20
)

type ServiceInterface interface {
	Top(ctx context.Context, limit int) ([]model.Podcast, error)
}

type catalogService struct {
	feedURL string
	ttl     time.Duration
	client  *http.Client
	cache   cache.Cache

	mu       sync.RWMutex
	lastGood []model.Podcast
}

// NewCatalogService; cache có thể nil
func NewCatalogService(feedURL string, ttl, timeout time.Duration, c cache.Cache) ServiceInterface {
	return &catalogService{
		feedURL: feedURL,
		ttl:     ttl,
		client:  &http.Client{Timeout: timeout},
		cache:   c,
	}
}

// Top trả về tối đa limit podcast nổi bật.
// Thứ tự: Redis -> feed upstream -> bản cuối cùng fetch thành công trong process.
func (s *catalogService) Top(ctx context.Context, limit int) ([]model.Podcast, error) {
	podcasts, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if limit > 0 && limit < len(podcasts) {
		podcasts = podcasts[:limit]
	}
	return podcasts, nil
}

func (s *catalogService) load(ctx context.Context) ([]model.Podcast, error) {
	if s.cache != nil {
		var cached []model.Podcast
		found, err := s.cache.Get(ctx, topCacheKey, &cached)
		if err != nil {
			log.Warn().Err(err).Msg("[CATALOG] Cache read failed")
		} else if found {
			return cached, nil
		}
	}

	podcasts, err := s.fetch(ctx)
	if err != nil {
		log.Error().Err(err).Str("feed", s.feedURL).Msg("[CATALOG] Failed to fetch feed")

		s.mu.RLock()
		stale := s.lastGood
		s.mu.RUnlock()
		if len(stale) > 0 {
			return stale, nil
		}
		return nil, fmt.Errorf("%w: %v", model.ErrUpstreamUnavailable, err)
	}

	s.mu.Lock()
	s.lastGood = podcasts
	s.mu.Unlock()

	if s.cache != nil {
		if err := s.cache.Set(ctx, topCacheKey, podcasts, s.ttl); err != nil {
			log.Warn().Err(err).Msg("[CATALOG] Cache write failed")
		}
	}
	return podcasts, nil
}

func (s *catalogService) fetch(ctx context.Context) ([]model.Podcast, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build feed request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	var feed model.Feed
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxFeedBytes)).Decode(&feed); err != nil {
		return nil, fmt.Errorf("decode feed: %w", err)
	}

	podcasts := make([]model.Podcast, 0, len(feed.Feed.Entry))
	for _, entry := range feed.Feed.Entry {
		if p, ok := entry.ToPodcast(); ok {
			podcasts = append(podcasts, p)
		}
	}

	log.Info().Int("count", len(podcasts)).Msg("[CATALOG] Feed refreshed")
	return podcasts, nil
}
