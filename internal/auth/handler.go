// File: internal/auth/handler.go
package auth

import (
	"campus_care_backend/internal/common"
	"campus_care_backend/internal/shared"
	"campus_care_backend/internal/user"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler struct holds dependencies for auth handlers.
type Handler struct {
	userService  user.Service
	tokenService shared.TokenService
	blocklist    TokenBlocklistService
	logger       *zap.Logger
}

// NewHandler creates a new auth handler.
func NewHandler(
	userService user.Service,
	tokenService shared.TokenService,
	blocklist TokenBlocklistService,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		userService:  userService,
		tokenService: tokenService,
		blocklist:    blocklist,
		logger:       logger.Named("AuthHandler"),
	}
}

// RegisterRoutes sets up the routes for authentication operations.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", h.register)
		authGroup.POST("/login", h.login)
		authGroup.GET("/me", authMW, h.me)
		authGroup.POST("/logout", authMW, h.logout)
	}
}

func (h *Handler) register(c *gin.Context) {
	var req user.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("Register: invalid request body", zap.Error(err))
		common.RespondWithError(c, common.BindingError(err))
		return
	}

	u, token, err := h.userService.Register(c.Request.Context(), req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Registration successful.", AuthResponse{User: user.ToUserResponse(u), Token: token})
}

func (h *Handler) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("Login: invalid request body", zap.Error(err))
		common.RespondWithError(c, common.BindingError(err))
		return
	}

	u, token, err := h.userService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Login successful.", AuthResponse{User: user.ToUserResponse(u), Token: token})
}

func (h *Handler) me(c *gin.Context) {
	u, err := h.userService.GetUserByID(c.Request.Context(), common.GetUserIDFromContext(c))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Current user retrieved.", user.ToUserResponse(u))
}

func (h *Handler) logout(c *gin.Context) {
	claims, err := h.tokenService.ValidateToken(common.GetTokenFromContext(c))
	if err != nil {
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Invalid token."))
		return
	}
	if claims.ExpiresAt != nil {
		if err := h.blocklist.AddToBlocklist(c.Request.Context(), claims.ID, claims.ExpiresAt.Time); err != nil {
			h.logger.Error("Failed to blocklist token", zap.Error(err))
			common.RespondWithError(c, err)
			return
		}
	}
	common.RespondOK(c, "Logged out.", nil)
}
