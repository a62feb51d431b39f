package model

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"podcast-catalog/internal/shared/response"
)

const (
	DefaultLimit = 50
	MaxLimit     = 100
)

var ErrUpstreamUnavailable = errors.New("catalog feed unavailable")

var catalogErrorMap = map[error]response.ErrorSpec{
	ErrUpstreamUnavailable: {Status: http.StatusBadGateway, Message: "Featured podcasts are unavailable right now"},
}

func HandleCatalogError(c *gin.Context, err error) bool {
	return response.HandleError(c, catalogErrorMap, err)
}

// Podcast là entry đã map từ feed bên ngoài, chỉ đọc
type Podcast struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Author   string `json:"author"`
	Summary  string `json:"summary,omitempty"`
	ImageURL string `json:"imageUrl,omitempty"`
	Link     string `json:"link,omitempty"`
	Category string `json:"category,omitempty"`
}

type TopPodcastsResponse struct {
	Podcasts []Podcast `json:"podcasts"`
}

// ========================================
// iTunes RSS JSON feed
// ========================================

type label struct {
	Label string `json:"label"`
}

type Feed struct {
	Feed struct {
		Entry []FeedEntry `json:"entry"`
	} `json:"feed"`
}

type FeedEntry struct {
	Name    label   `json:"im:name"`
	Artist  label   `json:"im:artist"`
	Summary label   `json:"summary"`
	Images  []label `json:"im:image"`
	Link    struct {
		Attributes struct {
			Href string `json:"href"`
		} `json:"attributes"`
	} `json:"link"`
	ID struct {
		Label      string `json:"label"`
		Attributes struct {
			ID string `json:"im:id"`
		} `json:"attributes"`
	} `json:"id"`
	Category struct {
		Attributes struct {
			Label string `json:"label"`
		} `json:"attributes"`
	} `json:"category"`
}

// ToPodcast map entry; ảnh cuối cùng trong im:image là ảnh lớn nhất
func (e FeedEntry) ToPodcast() (Podcast, bool) {
	id := strings.TrimSpace(e.ID.Attributes.ID)
	title := strings.TrimSpace(e.Name.Label)
	if id == "" || title == "" {
		return Podcast{}, false
	}

	p := Podcast{
		ID:       id,
		Title:    title,
		Author:   strings.TrimSpace(e.Artist.Label),
		Summary:  strings.TrimSpace(e.Summary.Label),
		Link:     e.Link.Attributes.Href,
		Category: e.Category.Attributes.Label,
	}
	if n := len(e.Images); n > 0 {
		p.ImageURL = e.Images[n-1].Label
	}
	if p.Link == "" {
		p.Link = e.ID.Label
	}
	return p, true
}
