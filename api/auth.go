package api

import (
	"net/http"

	"github.com/flyair/flyair-backend/internal/service/users"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	service users.UserUseCase
}

type verifyTwoFactorRequest struct {
	TemporaryToken string `json:"temporary_token"`
	Code           string `json:"code"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type enableTwoFactorRequest struct {
	Code string `json:"code"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

type authResponse struct {
	AccessToken       string        `json:"access_token,omitempty"`
	RefreshToken      string        `json:"refresh_token,omitempty"`
	ExpiresInSeconds  int64         `json:"expires_in_seconds,omitempty"`
	RequiresTwoFactor bool          `json:"requires_two_factor"`
	TemporaryToken    string        `json:"temporary_token,omitempty"`
	User              *userResponse `json:"user,omitempty"`
}

func toAuthResponse(r *users.AuthResult) authResponse {
	resp := authResponse{
		AccessToken:       r.AccessToken,
		RefreshToken:      r.RefreshToken,
		ExpiresInSeconds:  r.ExpiresInSeconds,
		RequiresTwoFactor: r.RequiresTwoFactor,
		TemporaryToken:    r.TemporaryToken,
	}
	if r.User != nil && !r.RequiresTwoFactor {
		u := toUserResponse(r.User)
		resp.User = &u
	}
	return resp
}

func NewAuthHandler(service users.UserUseCase) *AuthHandler {
	return &AuthHandler{service: service}
}

// Register mounts the unauthenticated auth endpoints.
func (h *AuthHandler) Register(router *gin.RouterGroup) {
	router.POST("/register", h.register)
	router.POST("/register-admin", h.registerFirstAdmin)
	router.POST("/login", h.login)
	router.POST("/verify-2fa", h.verifyTwoFactor)
	router.POST("/refresh", h.refresh)
	router.POST("/forgot-password", h.forgotPassword)
	router.POST("/reset-password", h.resetPassword)
}

// RegisterProtected mounts the endpoints that require a valid access token.
func (h *AuthHandler) RegisterProtected(router *gin.RouterGroup) {
	router.POST("/2fa/setup", h.setupTwoFactor)
	router.POST("/2fa/enable", h.enableTwoFactor)
	router.POST("/2fa/disable", h.disableTwoFactor)
	router.POST("/change-password", h.changePassword)
}

func (h *AuthHandler) register(c *gin.Context) {
	var req users.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	user, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, toUserResponse(user))
}

// registerFirstAdmin is only usable while no admin account exists.
func (h *AuthHandler) registerFirstAdmin(c *gin.Context) {
	var req users.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	user, err := h.service.RegisterFirstAdmin(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, toUserResponse(user))
}

func (h *AuthHandler) login(c *gin.Context) {
	var req users.LoginInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, toAuthResponse(result))
}

func (h *AuthHandler) verifyTwoFactor(c *gin.Context) {
	var req verifyTwoFactorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.service.VerifyTwoFactor(c.Request.Context(), req.TemporaryToken, req.Code)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, toAuthResponse(result))
}

func (h *AuthHandler) refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.service.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, toAuthResponse(result))
}

func (h *AuthHandler) setupTwoFactor(c *gin.Context) {
	prov, err := h.service.SetupTwoFactor(c.Request.Context(), currentUsername(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{
		"secret":      prov.Secret,
		"otpauth_url": prov.OtpauthURL,
		"qr_code":     prov.QRDataURL,
	})
}

func (h *AuthHandler) enableTwoFactor(c *gin.Context) {
	var req enableTwoFactorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := h.service.EnableTwoFactor(c.Request.Context(), currentUsername(c), req.Code); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "two-factor authentication enabled")
}

func (h *AuthHandler) disableTwoFactor(c *gin.Context) {
	if err := h.service.DisableTwoFactor(c.Request.Context(), currentUsername(c)); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "two-factor authentication disabled")
}

func (h *AuthHandler) changePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := h.service.ChangePassword(c.Request.Context(), currentUsername(c), req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "password changed")
}

func (h *AuthHandler) forgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := h.service.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "if the address is registered, a reset token has been sent")
}

func (h *AuthHandler) resetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := h.service.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "password has been reset")
}
