package model

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"podcast-catalog/internal/shared/response"
)

var (
	ErrPodcastNotFound = errors.New("podcast not found")
	ErrEpisodeNotFound = errors.New("episode not found")
	ErrForbidden       = errors.New("caller is not the podcast owner")
	ErrUnauthenticated = errors.New("caller identity missing")
)

var podcastErrorMap = map[error]response.ErrorSpec{
	ErrPodcastNotFound: {Status: http.StatusNotFound, Message: "Podcast not found"},
	ErrEpisodeNotFound: {Status: http.StatusNotFound, Message: "Episode not found"},
	ErrUnauthenticated: {Status: http.StatusUnauthorized, Message: "No token provided"},
}

// Action mô tả thao tác trong message 403
type Action string

const (
	ActionUpdate        Action = "update this podcast"
	ActionDelete        Action = "delete this podcast"
	ActionAddEpisode    Action = "add episodes to this podcast"
	ActionDeleteEpisode Action = "delete episodes from this podcast"
)

// HandlePodcastError map domain error sang HTTP response
func HandlePodcastError(c *gin.Context, err error, action Action) bool {
	if errors.Is(err, ErrForbidden) {
		response.Forbidden(c, "Not authorized to "+string(action))
		return true
	}
	return response.HandleError(c, podcastErrorMap, err)
}
