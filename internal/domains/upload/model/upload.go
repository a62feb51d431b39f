package model

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"podcast-catalog/internal/shared/response"
)

// Kind là loại asset, cũng là prefix của storage key
type Kind string

const (
	KindAudio Kind = "audio"
	KindImage Kind = "image"
)

// File là payload đã nhận từ multipart
type File struct {
	Name         string
	Size         int64
	DeclaredType string
	Reader       io.ReadSeeker
}

// Asset là kết quả upload: URL public + metadata probe được
type Asset struct {
	Key         string   `json:"-"`
	URL         string   `json:"fileUrl"`
	ContentType string   `json:"-"`
	Size        int64    `json:"-"`
	Title       string   `json:"title,omitempty"`
	Duration    *float64 `json:"duration,omitempty"`
}

var (
	ErrFileMissing  = errors.New("no file uploaded")
	ErrWrongType    = errors.New("file has wrong mime type")
	ErrFileTooLarge = errors.New("file too large")
)

func wrongTypeMessage(kind Kind) string {
	if kind == KindImage {
		return "File must be an image"
	}
	return "File must be an audio file"
}

// HandleUploadError map lỗi upload; message WrongType phụ thuộc loại asset
func HandleUploadError(c *gin.Context, kind Kind, err error) bool {
	table := map[error]response.ErrorSpec{
		ErrFileMissing:  {Status: http.StatusBadRequest, Message: "No file uploaded"},
		ErrWrongType:    {Status: http.StatusBadRequest, Message: wrongTypeMessage(kind)},
		ErrFileTooLarge: {Status: http.StatusBadRequest, Message: "File is too large"},
	}
	return response.HandleError(c, table, err)
}
