package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/kilat-cab/service-ride/internal/application"
	"github.com/kilat-cab/service-ride/internal/platform/auth"
	"github.com/kilat-cab/service-ride/internal/platform/middleware"
	"github.com/kilat-cab/service-ride/internal/platform/response"
)

// AccountHandler handles authentication and self-service account requests.
type AccountHandler struct {
	service *application.AccountService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(service *application.AccountService) *AccountHandler {
	return &AccountHandler{service: service}
}

// RegisterRoutes registers the public auth routes and the /users/me routes.
func (h *AccountHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authGroup := r.Group("/api/v1/auth")
	{
		authGroup.POST("/signup", h.Signup)
		authGroup.POST("/signin", h.Signin)
		authGroup.POST("/refresh", h.Refresh)
	}

	me := r.Group("/api/v1/users/me")
	me.Use(middleware.AuthMiddleware(jwtManager))
	{
		me.GET("", h.GetProfile)
		me.PATCH("", h.UpdateProfile)
		me.DELETE("", h.DeleteAccount)
		me.POST("/password", h.ChangePassword)
	}
}

// Signup handles POST /api/v1/auth/signup.
func (h *AccountHandler) Signup(c *gin.Context) {
	var req application.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.Signup(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// Signin handles POST /api/v1/auth/signin.
func (h *AccountHandler) Signin(c *gin.Context) {
	var req application.SigninRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.Signin(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Refresh handles POST /api/v1/auth/refresh.
func (h *AccountHandler) Refresh(c *gin.Context) {
	var req application.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.Refresh(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetProfile handles GET /api/v1/users/me.
func (h *AccountHandler) GetProfile(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	result, err := h.service.GetProfile(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// UpdateProfile handles PATCH /api/v1/users/me.
func (h *AccountHandler) UpdateProfile(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	var req application.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ChangePassword handles POST /api/v1/users/me/password.
func (h *AccountHandler) ChangePassword(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	var req application.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.service.ChangePassword(c.Request.Context(), userID, req); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// DeleteAccount handles DELETE /api/v1/users/me.
func (h *AccountHandler) DeleteAccount(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	if err := h.service.DeleteAccount(c.Request.Context(), userID); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
