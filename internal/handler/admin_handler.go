package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kilat-cab/service-ride/internal/application"
	"github.com/kilat-cab/service-ride/internal/platform/auth"
	"github.com/kilat-cab/service-ride/internal/platform/middleware"
	"github.com/kilat-cab/service-ride/internal/platform/response"
)

// AdminHandler handles admin HTTP requests for ride and account management.
type AdminHandler struct {
	rides    *application.RideService
	accounts *application.AccountService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(rides *application.RideService, accounts *application.AccountService) *AdminHandler {
	return &AdminHandler{rides: rides, accounts: accounts}
}

// RegisterRoutes registers admin routes.
func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	adminRole := middleware.RequireRole(auth.RoleAdmin)

	admin := r.Group("/api/v1/admin")
	admin.Use(authMW, adminRole)
	{
		admin.GET("/rides", h.ListRides)
		admin.GET("/stats/rides", h.RideStats)
		admin.GET("/users", h.ListUsers)
		admin.POST("/users/:id/activate", h.setActive(true))
		admin.POST("/users/:id/deactivate", h.setActive(false))
		admin.POST("/users/:id/restore", h.RestoreUser)
	}
}

// ListRides handles GET /api/v1/admin/rides.
func (h *AdminHandler) ListRides(c *gin.Context) {
	page, limit := parsePagination(c)

	rides, total, err := h.rides.ListAllRides(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, rides, total, page, limit)
}

// RideStats handles GET /api/v1/admin/stats/rides.
func (h *AdminHandler) RideStats(c *gin.Context) {
	stats, err := h.rides.GetRideStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}

// ListUsers handles GET /api/v1/admin/users.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, limit := parsePagination(c)

	users, total, err := h.accounts.ListUsers(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, users, total, page, limit)
}

// RestoreUser handles POST /api/v1/admin/users/:id/restore.
func (h *AdminHandler) RestoreUser(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid user ID")
		return
	}

	result, err := h.accounts.RestoreAccount(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

func (h *AdminHandler) setActive(active bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			response.BadRequest(c, "invalid user ID")
			return
		}

		result, err := h.accounts.SetActive(c.Request.Context(), userID, active)
		if err != nil {
			response.Error(c, err)
			return
		}

		response.Success(c, result)
	}
}
