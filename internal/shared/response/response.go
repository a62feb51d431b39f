package response

import (
	"errors"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Mọi body lỗi và body thông báo đều có dạng {message, ...details}

// Message trả về {message}
func Message(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{"message": message})
}

// MessageWith trả về {message, ...extra}
func MessageWith(c *gin.Context, statusCode int, message string, extra gin.H) {
	body := gin.H{"message": message}
	for k, v := range extra {
		if k == "message" {
			continue
		}
		body[k] = v
	}
	c.JSON(statusCode, body)
}

// Error dừng chain và trả về {message}
func Error(c *gin.Context, statusCode int, message string) {
	c.AbortWithStatusJSON(statusCode, gin.H{"message": message})
}

// ErrorWithDetails dừng chain và trả về {message, details}
func ErrorWithDetails(c *gin.Context, statusCode int, message string, details interface{}) {
	c.AbortWithStatusJSON(statusCode, gin.H{
		"message": message,
		"details": details,
	})
}

// Common error responses
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, message)
}

func Forbidden(c *gin.Context, message string) {
	Error(c, http.StatusForbidden, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

// InvalidBody dùng khi ShouldBindJSON fail (JSON hỏng, field lạ, sai kiểu)
func InvalidBody(c *gin.Context, err error) {
	body := gin.H{"message": "Invalid request body"}
	if gin.Mode() != gin.ReleaseMode && err != nil {
		body["error"] = err.Error()
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, body)
}

// Validation trả về 400 với chi tiết từng field nếu err là validation.Errors
func Validation(c *gin.Context, err error) {
	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		ErrorWithDetails(c, http.StatusBadRequest, "Validation failed", fieldErrs)
		return
	}
	BadRequest(c, err.Error())
}

// InternalServerError log lỗi kèm request id; client chỉ nhận message chung.
// Ngoài release mode body có thêm field error để debug.
func InternalServerError(c *gin.Context, err error) {
	log.Error().
		Err(err).
		Str("request_id", c.GetString("request_id")).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Msg("[Handler] Unexpected error")

	body := gin.H{"message": "Server error"}
	if gin.Mode() != gin.ReleaseMode && err != nil {
		body["error"] = err.Error()
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, body)
}

// ErrorSpec là status + message client nhận được cho một sentinel error
type ErrorSpec struct {
	Status  int
	Message string
}

// HandleError tra bảng lỗi của domain theo errors.Is.
// Lỗi không có trong bảng được coi là ServerError.
func HandleError(c *gin.Context, table map[error]ErrorSpec, err error) bool {
	if err == nil {
		return false
	}

	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		Validation(c, fieldErrs)
		return true
	}

	for sentinel, spec := range table {
		if errors.Is(err, sentinel) {
			Error(c, spec.Status, spec.Message)
			return true
		}
	}

	InternalServerError(c, err)
	return true
}
