package model

import (
	"time"

	"github.com/google/uuid"
)

// Episode nằm trong Podcast, id chỉ có nghĩa trong chuỗi episodes của podcast cha
type Episode struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	AudioURL    string    `json:"audioUrl"`
	Duration    *float64  `json:"duration,omitempty"` // seconds
	ReleaseDate time.Time `json:"releaseDate"`
}

// Podcast là aggregate: series + episodes, lưu thành một row
type Podcast struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	Description string    `json:"description"`
	ImageURL    string    `json:"imageUrl"`
	AudioURL    *string   `json:"audioUrl,omitempty"` // legacy, không dùng
	OwnerID     uuid.UUID `json:"ownerId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Episodes    []Episode `json:"episodes"`
}

// HasEpisode báo episode id có trong chuỗi episodes không
func (p *Podcast) HasEpisode(episodeID uuid.UUID) bool {
	for _, ep := range p.Episodes {
		if ep.ID == episodeID {
			return true
		}
	}
	return false
}

// Normalize đảm bảo episodes luôn serialize thành [] thay vì null
func (p *Podcast) Normalize() {
	if p.Episodes == nil {
		p.Episodes = []Episode{}
	}
}
