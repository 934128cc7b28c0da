package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/offermaster-service/internal/adapters/http/dto"
	"github.com/jsamuelsen/offermaster-service/internal/adapters/http/middleware"
	"github.com/jsamuelsen/offermaster-service/internal/app"
	"github.com/jsamuelsen/offermaster-service/internal/domain"
)

// AuthHandler handles account and session endpoints.
type AuthHandler struct {
	service *app.AuthService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(service *app.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Email             string `json:"email" validate:"required,email"`
	Password          string `json:"password" validate:"required"`
	FirstName         string `json:"firstName" validate:"required,notempty"`
	LastName          string `json:"lastName" validate:"required,notempty"`
	PrimaryAreaOfWork string `json:"primaryAreaOfWork" validate:"required"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileRequest is the body of PUT /api/auth/update.
// An empty password keeps the current one.
type UpdateProfileRequest struct {
	Email             string `json:"email" validate:"required,email"`
	FirstName         string `json:"firstName" validate:"required,notempty"`
	LastName          string `json:"lastName" validate:"required,notempty"`
	PrimaryAreaOfWork string `json:"primaryAreaOfWork" validate:"required"`
	Password          string `json:"password,omitempty"`
}

// ForgotPasswordRequest is the body of POST /api/auth/forgot-password.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required"`
}

// ResetPasswordRequest is the body of POST /api/auth/reset-password.
type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
}

// UserResponse is the public view of an account. The password hash is never exposed.
type UserResponse struct {
	ID                uint         `json:"id"`
	Email             string       `json:"email"`
	FirstName         string       `json:"firstName"`
	LastName          string       `json:"lastName"`
	PrimaryAreaOfWork EnumResponse `json:"primaryAreaOfWork"`
	CreatedAt         time.Time    `json:"createdAt"`
}

// SessionResponse is returned by register and login.
type SessionResponse struct {
	Token string        `json:"token"`
	User  *UserResponse `json:"user"`
}

// MessageResponse carries a short confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

func toUserResponse(u *domain.User) *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		PrimaryAreaOfWork: EnumResponse{
			Code:  string(u.PrimaryAreaOfWork),
			Label: u.PrimaryAreaOfWork.Label(),
		},
		CreatedAt: u.CreatedAt,
	}
}

func toSessionResponse(s *app.Session) *SessionResponse {
	return &SessionResponse{Token: s.Token, User: toUserResponse(s.User)}
}

// Register handles POST /api/auth/register
//
// @Summary Create an account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "New account"
// @Success 201 {object} SessionResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleBindError(c, err)
		return
	}

	session, err := h.service.Register(c.Request.Context(), app.RegisterInput{
		Email:             req.Email,
		Password:          req.Password,
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		PrimaryAreaOfWork: req.PrimaryAreaOfWork,
	})
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toSessionResponse(session))
}

// Login handles POST /api/auth/login
//
// @Summary Sign in
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} SessionResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleBindError(c, err)
		return
	}

	session, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, toSessionResponse(session))
}

// Profile handles GET /api/auth/profile
//
// @Summary Current account
// @Tags auth
// @Produce json
// @Success 200 {object} UserResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /api/auth/profile [get]
func (h *AuthHandler) Profile(c *gin.Context) {
	user, err := h.service.Profile(c.Request.Context(), middleware.CurrentActor(c))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, toUserResponse(user))
}

// UpdateProfile handles PUT /api/auth/update
//
// @Summary Update the current account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body UpdateProfileRequest true "Profile"
// @Success 200 {object} UserResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/auth/update [put]
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleBindError(c, err)
		return
	}

	user, err := h.service.UpdateProfile(c.Request.Context(), middleware.CurrentActor(c), app.UpdateProfileInput{
		Email:             req.Email,
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		PrimaryAreaOfWork: req.PrimaryAreaOfWork,
		Password:          req.Password,
	})
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, toUserResponse(user))
}

// ForgotPassword handles POST /api/auth/forgot-password
// The response is the same whether or not the email is registered.
//
// @Summary Request a password reset
// @Tags auth
// @Accept json
// @Produce json
// @Param request body ForgotPasswordRequest true "Email"
// @Success 200 {object} MessageResponse
// @Router /api/auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleBindError(c, err)
		return
	}

	if err := h.service.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "If the address is registered, a reset link has been sent."})
}

// ResetPassword handles POST /api/auth/reset-password
//
// @Summary Redeem a password reset token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body ResetPasswordRequest true "Token and new password"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		dto.HandleBindError(c, err)
		return
	}

	if err := h.service.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Password has been reset."})
}

// RegisterAuthRoutes registers the auth routes on rg. Profile routes go
// through requireAuth; the rest are public.
func (h *AuthHandler) RegisterAuthRoutes(rg *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	auth := rg.Group("/auth")
	auth.POST("/register", h.Register)
	auth.POST("/login", h.Login)
	auth.POST("/forgot-password", h.ForgotPassword)
	auth.POST("/reset-password", h.ResetPassword)
	auth.GET("/profile", requireAuth, h.Profile)
	auth.PUT("/update", requireAuth, h.UpdateProfile)
}
