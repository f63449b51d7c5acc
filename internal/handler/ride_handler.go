package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kilat-cab/service-ride/internal/application"
	"github.com/kilat-cab/service-ride/internal/platform/auth"
	"github.com/kilat-cab/service-ride/internal/platform/middleware"
	"github.com/kilat-cab/service-ride/internal/platform/response"
)

// RideHandler handles HTTP requests for ride booking operations.
type RideHandler struct {
	service *application.RideService
}

// NewRideHandler creates a new RideHandler.
func NewRideHandler(service *application.RideService) *RideHandler {
	RegisterValidators()
	return &RideHandler{service: service}
}

// RegisterRoutes registers all ride routes on the given router group.
func (h *RideHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	rides := r.Group("/api/v1/rides")
	rides.Use(authMW)
	{
		rides.POST("/estimate", h.EstimateFare)
		rides.POST("", middleware.RequireRole(auth.RolePassenger), h.BookRide)
		rides.GET("", h.ListMyRides)
		rides.GET("/:id", h.GetRide)
		rides.POST("/:id/cancel", h.CancelRide)
		rides.POST("/:id/rebook", middleware.RequireRole(auth.RolePassenger), h.Rebook)
	}
}

// EstimateFare handles POST /api/v1/rides/estimate.
func (h *RideHandler) EstimateFare(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	var req application.RideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.EstimateFare(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// BookRide handles POST /api/v1/rides.
func (h *RideHandler) BookRide(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	var req application.RideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.BookRide(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListMyRides handles GET /api/v1/rides.
func (h *RideHandler) ListMyRides(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	page, limit := parsePagination(c)
	result, err := h.service.ListMyRides(c.Request.Context(), userID, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// GetRide handles GET /api/v1/rides/:id.
func (h *RideHandler) GetRide(c *gin.Context) {
	rideID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid ride ID")
		return
	}

	userID, _ := middleware.GetUserID(c)
	role, _ := middleware.GetUserRole(c)

	result, err := h.service.GetRide(c.Request.Context(), rideID, userID, role)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// CancelRide handles POST /api/v1/rides/:id/cancel.
func (h *RideHandler) CancelRide(c *gin.Context) {
	rideID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid ride ID")
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}
	role, _ := middleware.GetUserRole(c)

	var req application.CancelRideRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, err.Error())
			return
		}
	}

	result, err := h.service.CancelRide(c.Request.Context(), rideID, userID, role, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Rebook handles POST /api/v1/rides/:id/rebook.
func (h *RideHandler) Rebook(c *gin.Context) {
	rideID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid ride ID")
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	var req application.RebookRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, err.Error())
			return
		}
	}

	result, err := h.service.Rebook(c.Request.Context(), userID, rideID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}
