package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/shareit/service-shareit/internal/application"
	"github.com/shareit/service-shareit/internal/platform/auth"
	"github.com/shareit/service-shareit/internal/platform/domain"
	"github.com/shareit/service-shareit/internal/platform/middleware"
	"github.com/shareit/service-shareit/internal/platform/response"
)

// UserHandler handles HTTP requests for the user directory.
type UserHandler struct {
	service *application.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service *application.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// RegisterRoutes registers user routes. Registration is open; the rest needs a token.
func (h *UserHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	users := r.Group("/api/v1/users")
	users.POST("", h.CreateUser)

	authed := users.Group("")
	authed.Use(middleware.AuthMiddleware(jwtManager))
	{
		authed.GET("", h.ListUsers)
		authed.GET("/:id", h.GetUser)
		authed.PATCH("/:id", h.UpdateUser)
	}
}

// CreateUser handles POST /api/v1/users.
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req application.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateUser(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// UpdateUser handles PATCH /api/v1/users/:id. Users edit themselves; admins edit anyone.
func (h *UserHandler) UpdateUser(c *gin.Context) {
	callerID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c)
		return
	}

	userID, ok := parseID(c, "user")
	if !ok {
		return
	}

	if role, _ := middleware.GetUserRole(c); callerID != userID && role != auth.RoleAdmin {
		response.Error(c, domain.NewForbiddenError("users can only update their own profile"))
		return
	}

	var req application.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.UpdateUser(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetUser handles GET /api/v1/users/:id.
func (h *UserHandler) GetUser(c *gin.Context) {
	userID, ok := parseID(c, "user")
	if !ok {
		return
	}

	result, err := h.service.GetUser(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ListUsers handles GET /api/v1/users.
func (h *UserHandler) ListUsers(c *gin.Context) {
	result, err := h.service.ListUsers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
