package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"podcast-catalog/internal/domains/podcast/model"
	"podcast-catalog/internal/domains/podcast/service"
	"podcast-catalog/internal/shared/middleware"
	"podcast-catalog/internal/shared/request"
	"podcast-catalog/internal/shared/response"
	"podcast-catalog/internal/shared/utils"
)

type PodcastHandler struct {
	service service.ServiceInterface
}

func NewPodcastHandler(s service.ServiceInterface) *PodcastHandler {
	return &PodcastHandler{service: s}
}

// RegisterRoutes gắn routes vào /api/podcasts; auth chỉ áp cho route ghi
func (h *PodcastHandler) RegisterRoutes(rg *gin.RouterGroup, auth gin.HandlerFunc) {
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)

	rg.POST("", auth, h.Create)
	rg.PUT("/:id", auth, h.Update)
	rg.DELETE("/:id", auth, h.Delete)
	rg.POST("/:id/episodes", auth, h.AddEpisode)
	rg.DELETE("/:id/episodes/:episodeId", auth, h.DeleteEpisode)
}

// podcastID: id sai format được coi như không tồn tại
func podcastID(c *gin.Context) (uuid.UUID, bool) {
	id, ok := utils.ParseUUID(c.Param("id"))
	if !ok {
		response.NotFound(c, "Podcast not found")
	}
	return id, ok
}

// GET /api/podcasts -> 200 {podcasts: [...]}
func (h *PodcastHandler) List(c *gin.Context) {
	podcasts, err := h.service.List(c.Request.Context())
	if err != nil {
		response.InternalServerError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.ListPodcastsResponse{Podcasts: podcasts})
}

// GET /api/podcasts/:id -> 200 <podcast> | 404
func (h *PodcastHandler) Get(c *gin.Context) {
	id, ok := podcastID(c)
	if !ok {
		return
	}

	p, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		model.HandlePodcastError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, p)
}

// POST /api/podcasts -> 201 {message, podcast}
func (h *PodcastHandler) Create(c *gin.Context) {
	caller, ok := middleware.GetCaller(c)
	if !ok {
		response.Unauthorized(c, "No token provided")
		return
	}

	var req model.CreatePodcastRequest
	if !request.BindJSON(c, &req) {
		return
	}

	p, err := h.service.Create(c.Request.Context(), caller.ID, req)
	if err != nil {
		model.HandlePodcastError(c, err, "")
		return
	}

	response.MessageWith(c, http.StatusCreated, "Podcast created successfully", gin.H{"podcast": p})
}

// PUT /api/podcasts/:id -> 200 {message, podcast} | 403 | 404
func (h *PodcastHandler) Update(c *gin.Context) {
	caller, _ := middleware.GetCaller(c)
	id, ok := podcastID(c)
	if !ok {
		return
	}

	var patch model.UpdatePodcastRequest
	if !request.BindJSON(c, &patch) {
		return
	}

	p, err := h.service.Update(c.Request.Context(), id, caller.ID, patch)
	if err != nil {
		model.HandlePodcastError(c, err, model.ActionUpdate)
		return
	}

	response.MessageWith(c, http.StatusOK, "Podcast updated successfully", gin.H{"podcast": p})
}

// DELETE /api/podcasts/:id -> 200 {message} | 403 | 404
func (h *PodcastHandler) Delete(c *gin.Context) {
	caller, _ := middleware.GetCaller(c)
	id, ok := podcastID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id, caller.ID); err != nil {
		model.HandlePodcastError(c, err, model.ActionDelete)
		return
	}

	response.Message(c, http.StatusOK, "Podcast deleted successfully")
}

// POST /api/podcasts/:id/episodes -> 200 {message, podcast} | 403 | 404
func (h *PodcastHandler) AddEpisode(c *gin.Context) {
	caller, _ := middleware.GetCaller(c)
	id, ok := podcastID(c)
	if !ok {
		return
	}

	var in model.EpisodeInput
	if !request.BindJSON(c, &in) {
		return
	}

	p, err := h.service.AddEpisode(c.Request.Context(), id, caller.ID, in)
	if err != nil {
		model.HandlePodcastError(c, err, model.ActionAddEpisode)
		return
	}

	response.MessageWith(c, http.StatusOK, "Episode added successfully", gin.H{"podcast": p})
}

// DELETE /api/podcasts/:id/episodes/:episodeId -> 200 {message} | 403 | 404
func (h *PodcastHandler) DeleteEpisode(c *gin.Context) {
	caller, _ := middleware.GetCaller(c)
	id, ok := podcastID(c)
	if !ok {
		return
	}

	// episode id sai format vẫn đi qua service để giữ thứ tự: podcast -> owner -> episode
	episodeID, _ := utils.ParseUUID(c.Param("episodeId"))

	if err := h.service.DeleteEpisode(c.Request.Context(), id, episodeID, caller.ID); err != nil {
		model.HandlePodcastError(c, err, model.ActionDeleteEpisode)
		return
	}

	response.Message(c, http.StatusOK, "Episode deleted successfully")
}
