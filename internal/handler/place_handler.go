package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kilat-cab/service-ride/internal/application"
	"github.com/kilat-cab/service-ride/internal/platform/auth"
	"github.com/kilat-cab/service-ride/internal/platform/middleware"
	"github.com/kilat-cab/service-ride/internal/platform/response"
)

// PlaceHandler handles HTTP requests for saved places.
type PlaceHandler struct {
	service *application.PlaceService
}

// NewPlaceHandler creates a new PlaceHandler.
func NewPlaceHandler(service *application.PlaceService) *PlaceHandler {
	return &PlaceHandler{service: service}
}

// RegisterRoutes registers place routes.
func (h *PlaceHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	places := r.Group("/api/v1/places")
	places.Use(middleware.AuthMiddleware(jwtManager), middleware.RequireRole(auth.RolePassenger))
	{
		places.POST("", h.CreatePlace)
		places.GET("", h.ListMyPlaces)
		places.GET("/:id", h.GetPlace)
		places.PUT("/:id", h.UpdatePlace)
		places.DELETE("/:id", h.ArchivePlace)
	}
}

func (h *PlaceHandler) CreatePlace(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req application.CreatePlaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreatePlace(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

func (h *PlaceHandler) ListMyPlaces(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	result, err := h.service.ListMyPlaces(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

func (h *PlaceHandler) GetPlace(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	placeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid place ID")
		return
	}

	result, err := h.service.GetPlace(c.Request.Context(), userID, placeID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

func (h *PlaceHandler) UpdatePlace(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	placeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid place ID")
		return
	}

	var req application.UpdatePlaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.UpdatePlace(c.Request.Context(), userID, placeID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

func (h *PlaceHandler) ArchivePlace(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	placeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid place ID")
		return
	}

	if err := h.service.ArchivePlace(c.Request.Context(), userID, placeID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
