package model

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

const (
	maxTitleLength       = 300
	maxDescriptionLength = 10000
	maxURLLength         = 2048
)

// ========================================
// REQUEST DTOs
// ========================================

// CreatePodcastRequest - POST /api/podcasts
// ownerId không nằm trong schema: owner luôn là caller đã verify
type CreatePodcastRequest struct {
	Title       string         `json:"title"`
	Author      string         `json:"author"`
	Description string         `json:"description"`
	ImageURL    string         `json:"imageUrl"`
	AudioURL    *string        `json:"audioUrl"`
	Episodes    []EpisodeInput `json:"episodes"`
}

func (r CreatePodcastRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required.Error("title is required"), validation.Length(1, maxTitleLength)),
		validation.Field(&r.Author, validation.Required.Error("author is required"), validation.Length(1, maxTitleLength)),
		validation.Field(&r.Description, validation.Required.Error("description is required"), validation.Length(1, maxDescriptionLength)),
		validation.Field(&r.ImageURL, validation.Required.Error("imageUrl is required"), validation.Length(1, maxURLLength)),
		validation.Field(&r.AudioURL, validation.NilOrNotEmpty, validation.Length(1, maxURLLength)),
		validation.Field(&r.Episodes),
	)
}

// Normalize trim khoảng trắng để "   " bị coi là rỗng
func (r *CreatePodcastRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Author = strings.TrimSpace(r.Author)
	r.Description = strings.TrimSpace(r.Description)
	r.ImageURL = strings.TrimSpace(r.ImageURL)
	trimPtr(r.AudioURL)
	for i := range r.Episodes {
		r.Episodes[i].Normalize()
	}
}

// UpdatePodcastRequest - PUT /api/podcasts/:id
// Partial merge: field nil = giữ nguyên. ownerId/episodes không được phép.
type UpdatePodcastRequest struct {
	Title       *string `json:"title"`
	Author      *string `json:"author"`
	Description *string `json:"description"`
	ImageURL    *string `json:"imageUrl"`
	AudioURL    *string `json:"audioUrl"`
}

func (r UpdatePodcastRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.NilOrNotEmpty.Error("title cannot be empty"), validation.Length(1, maxTitleLength)),
		validation.Field(&r.Author, validation.NilOrNotEmpty.Error("author cannot be empty"), validation.Length(1, maxTitleLength)),
		validation.Field(&r.Description, validation.NilOrNotEmpty.Error("description cannot be empty"), validation.Length(1, maxDescriptionLength)),
		validation.Field(&r.ImageURL, validation.NilOrNotEmpty.Error("imageUrl cannot be empty"), validation.Length(1, maxURLLength)),
		validation.Field(&r.AudioURL, validation.Length(0, maxURLLength)),
	)
}

func (r *UpdatePodcastRequest) Normalize() {
	for _, field := range []*string{r.Title, r.Author, r.Description, r.ImageURL, r.AudioURL} {
		trimPtr(field)
	}
}

// IsEmpty báo patch không có field nào
func (r UpdatePodcastRequest) IsEmpty() bool {
	return r.Title == nil && r.Author == nil && r.Description == nil && r.ImageURL == nil && r.AudioURL == nil
}

// EpisodeInput - POST /api/podcasts/:id/episodes và episodes lúc tạo podcast
type EpisodeInput struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	AudioURL    string     `json:"audioUrl"`
	Duration    *float64   `json:"duration"`
	ReleaseDate *time.Time `json:"releaseDate"`
}

func (r EpisodeInput) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required.Error("title is required"), validation.Length(1, maxTitleLength)),
		validation.Field(&r.Description, validation.Length(0, maxDescriptionLength)),
		validation.Field(&r.AudioURL, validation.Required.Error("audioUrl is required"), validation.Length(1, maxURLLength)),
		validation.Field(&r.Duration, validation.Min(0.0).Error("duration must be >= 0")),
	)
}

func (r *EpisodeInput) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
	r.AudioURL = strings.TrimSpace(r.AudioURL)
}

func trimPtr(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}

// ToEpisode gán id mới; releaseDate mặc định là now
func (r EpisodeInput) ToEpisode(now time.Time) Episode {
	release := now
	if r.ReleaseDate != nil && !r.ReleaseDate.IsZero() {
		release = r.ReleaseDate.UTC()
	}
	return Episode{
		ID:          uuid.New(),
		Title:       r.Title,
		Description: r.Description,
		AudioURL:    r.AudioURL,
		Duration:    r.Duration,
		ReleaseDate: release,
	}
}

// ========================================
// RESPONSE DTOs
// ========================================

// ListPodcastsResponse - {podcasts: [...]}
type ListPodcastsResponse struct {
	Podcasts []Podcast `json:"podcasts"`
}
