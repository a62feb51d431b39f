package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"podcast-catalog/internal/domains/user"
	"podcast-catalog/internal/shared/middleware"
	"podcast-catalog/internal/shared/request"
	"podcast-catalog/internal/shared/response"
)

// UserHandler xử lý HTTP requests cho auth endpoints
type UserHandler struct {
	service user.Service
}

func NewUserHandler(service user.Service) *UserHandler {
	return &UserHandler{service: service}
}

// Register xử lý POST /api/auth/register
// 201 {message} | 400 {message}
func (h *UserHandler) Register(c *gin.Context) {
	var req user.RegisterRequest
	if !request.BindJSON(c, &req) {
		return
	}

	if _, err := h.service.Register(c.Request.Context(), req); err != nil {
		user.HandleUserError(c, err)
		return
	}

	response.Message(c, http.StatusCreated, "User registered successfully")
}

// Login xử lý POST /api/auth/login
// 200 {token} | 401 {message}
func (h *UserHandler) Login(c *gin.Context) {
	var req user.LoginRequest
	if !request.BindJSON(c, &req) {
		return
	}

	resp, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		user.HandleUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Me xử lý GET /api/auth/me
// Trả về identity từ token đã verify
func (h *UserHandler) Me(c *gin.Context) {
	caller, ok := middleware.GetCaller(c)
	if !ok {
		response.Unauthorized(c, "No token provided")
		return
	}

	profile, err := h.service.GetProfile(c.Request.Context(), caller.ID)
	if err != nil {
		user.HandleUserError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// RegisterRoutes gắn auth routes vào group /api/auth
func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup, auth gin.HandlerFunc) {
	rg.POST("/register", h.Register)
	rg.POST("/login", h.Login)
	rg.GET("/me", auth, h.Me)
}
