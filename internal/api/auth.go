package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/freshkitchen/mealdesk/backend/internal/middleware"
	"github.com/freshkitchen/mealdesk/backend/internal/models"
	"github.com/freshkitchen/mealdesk/backend/internal/service"
	"github.com/freshkitchen/mealdesk/backend/internal/types"
)

type LoginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type AuthHandler struct {
	authService *service.AuthService
	limiter     *middleware.RateLimiter
}

func NewAuthHandler(authService *service.AuthService, limiter *middleware.RateLimiter) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		limiter:     limiter,
	}
}

// RegisterRoutes mounts login on router and the staff routes behind auth.
func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		if h.limiter != nil {
			auth.POST("/login", h.limiter.ByClientIP(), h.Login)
		} else {
			auth.POST("/login", h.Login)
		}

		staff := auth.Group("")
		staff.Use(middleware.AuthMiddleware(h.authService))
		staff.GET("/me", h.Me)
		staff.GET("/users", middleware.RequireRoles(models.RoleAdmin), h.ListUsers)
		staff.POST("/users", middleware.RequireRoles(models.RoleAdmin), h.CreateUser)
	}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req types.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, token, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, LoginResponse{Token: token, User: user})
}

func (h *AuthHandler) Me(c *gin.Context) {
	claims, ok := middleware.Claims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}
	user, err := h.authService.GetUserByID(c.Request.Context(), claims.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) ListUsers(c *gin.Context) {
	users, err := h.authService.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": users})
}

func (h *AuthHandler) CreateUser(c *gin.Context) {
	var req types.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	user, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}
