package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"podcast-catalog/internal/domains/upload/model"
	"podcast-catalog/internal/domains/upload/service"
	"podcast-catalog/internal/shared/response"
)

// multipart overhead ngoài file
const formOverhead = 1 << 20

type UploadHandler struct {
	service *service.UploadService
	limits  service.Limits
}

func NewUploadHandler(s *service.UploadService, limits service.Limits) *UploadHandler {
	return &UploadHandler{service: s, limits: limits}
}

// RegisterRoutes gắn /api/upload/{audio,image}; mọi route cần token
func (h *UploadHandler) RegisterRoutes(rg *gin.RouterGroup, auth gin.HandlerFunc) {
	rg.POST("/audio", auth, h.UploadAudio)
	rg.POST("/image", auth, h.UploadImage)
}

// POST /api/upload/audio (field "audio")
func (h *UploadHandler) UploadAudio(c *gin.Context) {
	h.upload(c, model.KindAudio, h.limits.MaxAudioBytes, "File uploaded successfully")
}

// POST /api/upload/image (field "image")
func (h *UploadHandler) UploadImage(c *gin.Context) {
	h.upload(c, model.KindImage, h.limits.MaxImageBytes, "Image uploaded successfully")
}

func (h *UploadHandler) upload(c *gin.Context, kind model.Kind, maxBytes int64, message string) {
	if maxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes+formOverhead)
	}

	header, err := c.FormFile(string(kind))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			model.HandleUploadError(c, kind, model.ErrFileTooLarge)
			return
		}
		model.HandleUploadError(c, kind, model.ErrFileMissing)
		return
	}

	f, err := header.Open()
	if err != nil {
		response.InternalServerError(c, err)
		return
	}
	defer f.Close()

	asset, err := h.service.Upload(c.Request.Context(), kind, &model.File{
		Name:         header.Filename,
		Size:         header.Size,
		DeclaredType: header.Header.Get("Content-Type"),
		Reader:       f,
	})
	if err != nil {
		model.HandleUploadError(c, kind, err)
		return
	}

	extra := gin.H{"fileUrl": asset.URL}
	if asset.Title != "" {
		extra["title"] = asset.Title
	}
	if asset.Duration != nil {
		extra["duration"] = *asset.Duration
	}
	response.MessageWith(c, http.StatusOK, message, extra)
}
