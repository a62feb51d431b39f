package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"podcast-catalog/internal/domains/catalog/model"
	"podcast-catalog/internal/domains/catalog/service"
	"podcast-catalog/internal/shared/response"
)

type CatalogHandler struct {
	service service.ServiceInterface
}

func NewCatalogHandler(s service.ServiceInterface) *CatalogHandler {
	return &CatalogHandler{service: s}
}

func (h *CatalogHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/top", h.Top)
}

// GET /api/catalog/top?limit=N -> 200 {podcasts: [...]}
func (h *CatalogHandler) Top(c *gin.Context) {
	limit := model.DefaultLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			response.BadRequest(c, "limit must be a positive integer")
			return
		}
		limit = min(n, model.MaxLimit)
	}

	podcasts, err := h.service.Top(c.Request.Context(), limit)
	if err != nil {
		model.HandleCatalogError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.TopPodcastsResponse{Podcasts: podcasts})
}
