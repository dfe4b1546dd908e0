package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/shareit/service-shareit/internal/application"
	"github.com/shareit/service-shareit/internal/platform/auth"
	"github.com/shareit/service-shareit/internal/platform/middleware"
	"github.com/shareit/service-shareit/internal/platform/response"
)

// ItemRequestHandler handles HTTP requests for item requests.
type ItemRequestHandler struct {
	service *application.ItemRequestService
}

// NewItemRequestHandler creates a new ItemRequestHandler.
func NewItemRequestHandler(service *application.ItemRequestService) *ItemRequestHandler {
	return &ItemRequestHandler{service: service}
}

// RegisterRoutes registers item request routes.
func (h *ItemRequestHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	requests := r.Group("/api/v1/requests")
	requests.Use(middleware.AuthMiddleware(jwtManager))
	{
		requests.POST("", h.CreateItemRequest)
		requests.GET("", h.ListOwnRequests)
		requests.GET("/all", h.ListOtherRequests)
		requests.GET("/:id", h.GetItemRequest)
	}
}

// CreateItemRequest handles POST /api/v1/requests.
func (h *ItemRequestHandler) CreateItemRequest(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c)
		return
	}

	var req application.CreateItemRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateItemRequest(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListOwnRequests handles GET /api/v1/requests.
func (h *ItemRequestHandler) ListOwnRequests(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c)
		return
	}

	result, err := h.service.GetItemRequestsByRequester(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ListOtherRequests handles GET /api/v1/requests/all.
func (h *ItemRequestHandler) ListOtherRequests(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c)
		return
	}

	result, err := h.service.GetOtherUserRequests(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetItemRequest handles GET /api/v1/requests/:id.
func (h *ItemRequestHandler) GetItemRequest(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c)
		return
	}

	requestID, ok := parseID(c, "item request")
	if !ok {
		return
	}

	result, err := h.service.GetItemRequestByID(c.Request.Context(), userID, requestID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
