package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"podcast-catalog/internal/shared/response"
	"podcast-catalog/pkg/jwt"
)

// Context keys
const (
	ContextKeyUserID    = "user_id"
	ContextKeyUserEmail = "user_email"
)

// TokenVerifier là phần của jwt.Manager mà middleware cần
type TokenVerifier interface {
	Verify(token string) (*jwt.Claims, error)
}

// Caller là identity đã verify của request hiện tại
type Caller struct {
	ID    uuid.UUID
	Email string
}

// AuthMiddleware - Middleware xác thực JWT token.
// Mọi protected route đều verify lại token bằng secret phía server.
func AuthMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Extract token từ "Bearer <token>"
		token, err := bearerToken(c.GetHeader("Authorization"))
		if err != nil {
			abortAuth(c, err)
			return
		}

		// 2. Verify và parse JWT
		claims, err := verifier.Verify(token)
		if err != nil {
			abortAuth(c, err)
			return
		}

		// 3. Convert string sang uuid.UUID
		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			abortAuth(c, jwt.ErrTokenInvalid)
			return
		}

		c.Set(ContextKeyUserID, userID)
		c.Set(ContextKeyUserEmail, claims.Email)
		c.Next()
	}
}

func bearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", jwt.ErrTokenMissing
	}

	scheme, token, found := strings.Cut(header, " ")
	if !found {
		if strings.EqualFold(scheme, "Bearer") {
			return "", jwt.ErrTokenMissing
		}
		return "", jwt.ErrTokenInvalid
	}
	if !strings.EqualFold(scheme, "Bearer") {
		return "", jwt.ErrTokenInvalid
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", jwt.ErrTokenMissing
	}
	return token, nil
}

func abortAuth(c *gin.Context, err error) {
	switch {
	case errors.Is(err, jwt.ErrTokenMissing):
		response.Unauthorized(c, "No token provided")
	case errors.Is(err, jwt.ErrTokenExpired):
		response.Unauthorized(c, "Token expired")
	default:
		response.Unauthorized(c, "Invalid token")
	}
}

// GetCaller lấy identity mà AuthMiddleware đã set
func GetCaller(c *gin.Context) (Caller, bool) {
	v, exists := c.Get(ContextKeyUserID)
	if !exists {
		return Caller{}, false
	}
	userID, ok := v.(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return Caller{}, false
	}
	return Caller{ID: userID, Email: c.GetString(ContextKeyUserEmail)}, true
}
