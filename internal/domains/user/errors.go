package user

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"podcast-catalog/internal/shared/response"
)

// Repository-level errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
)

// Service-level errors
var (
	// unknown email và sai password dùng chung một lỗi
	ErrInvalidCredentials = errors.New("invalid email or password")
)

var userErrorMap = map[error]response.ErrorSpec{
	ErrEmailAlreadyExists: {Status: http.StatusBadRequest, Message: "User already exists. Please log in."},
	ErrInvalidCredentials: {Status: http.StatusUnauthorized, Message: "Invalid credentials"},
	ErrUserNotFound:       {Status: http.StatusNotFound, Message: "User not found"},
}

// HandleUserError map domain error sang HTTP response
func HandleUserError(c *gin.Context, err error) bool {
	return response.HandleError(c, userErrorMap, err)
}
