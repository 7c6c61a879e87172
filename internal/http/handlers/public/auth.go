package public

import (
	"errors"
	"strings"

	"github.com/catalog-next/internal/constants"
	handlershared "github.com/catalog-next/internal/http/handlers/shared"
	"github.com/catalog-next/internal/http/response"
	"github.com/catalog-next/internal/logger"
	"github.com/catalog-next/internal/service"

	"github.com/gin-gonic/gin"
)

const forgotPasswordMessage = "if the email is registered, a password reset link has been sent"

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Username       string                              `json:"username" binding:"required,username"`
	Email          string                              `json:"email" binding:"required,max=255"`
	Password       string                              `json:"password" binding:"required,max=128"`
	CaptchaPayload handlershared.CaptchaPayloadRequest `json:"captcha_payload"`
}

// Register creates an account and signs it in.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if !bindJSON(c, &req) {
		return
	}
	if !h.verifyCaptcha(c, constants.CaptchaSceneRegister, req.CaptchaPayload) {
		return
	}

	result, err := h.AuthService.Register(req.Username, req.Email, req.Password)
	if err != nil {
		h.Metrics.IncAuthEvent("register", "failure")
		respondMappedError(c, err, registerErrorRules)
		return
	}
	h.Metrics.IncAuthEvent("register", "success")

	response.Created(c, "registration successful, check your email to verify your address", gin.H{
		"user":   result.User,
		"tokens": result.Tokens,
	})
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login exchanges credentials for a token pair.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		h.recordUserLogin(c, req.Email, 0, constants.LoginLogStatusFailed, constants.LoginLogFailReasonBadRequest)
		return
	}

	result, err := h.AuthService.Login(req.Email, req.Password)
	if err != nil {
		reason := constants.LoginLogFailReasonInternalError
		if errors.Is(err, service.ErrInvalidCredentials) {
			reason = constants.LoginLogFailReasonInvalidCredentials
		}
		h.recordUserLogin(c, req.Email, 0, constants.LoginLogStatusFailed, reason)
		h.Metrics.IncAuthEvent("login", "failure")
		respondMappedError(c, err, loginErrorRules)
		return
	}
	h.recordUserLogin(c, result.User.Email, result.User.ID, constants.LoginLogStatusSuccess, "")
	h.Metrics.IncAuthEvent("login", "success")

	response.SuccessWithMsg(c, "login successful", gin.H{
		"user":   result.User,
		"tokens": result.Tokens,
	})
}

func (h *Handler) recordUserLogin(c *gin.Context, email string, userID uint, status, failReason string) {
	if h == nil || h.UserLoginLogService == nil {
		return
	}
	err := h.UserLoginLogService.Record(service.RecordUserLoginInput{
		UserID:     userID,
		Email:      email,
		Status:     status,
		FailReason: failReason,
		ClientIP:   c.ClientIP(),
		UserAgent:  c.GetHeader("User-Agent"),
		RequestID:  c.GetString(constants.ContextKeyRequestID),
	})
	if err != nil {
		logger.Warnw("user_login_log_record_failed", "email", email, "error", err)
	}
}

// RefreshRequest is the body of POST /auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh rotates the refresh token.
func (h *Handler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if !bindJSON(c, &req) {
		return
	}

	pair, err := h.AuthService.Refresh(req.RefreshToken)
	if err != nil {
		h.Metrics.IncAuthEvent("refresh", "failure")
		respondMappedError(c, err, refreshErrorRules)
		return
	}
	h.Metrics.IncAuthEvent("refresh", "success")
	response.Success(c, gin.H{"tokens": pair})
}

// Logout revokes the caller's refresh token.
func (h *Handler) Logout(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	if err := h.AuthService.Logout(uid); err != nil {
		respondMappedError(c, err, nil)
		return
	}
	response.SuccessWithMsg(c, "logged out", nil)
}

// GetProfile returns the caller's account.
func (h *Handler) GetProfile(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	user, err := h.AuthService.GetProfile(uid)
	if err != nil {
		respondMappedError(c, err, profileErrorRules)
		return
	}
	response.Success(c, gin.H{"user": user})
}

// UpdateProfileRequest is the body of PATCH /auth/profile.
type UpdateProfileRequest struct {
	Username *string `json:"username" binding:"omitempty,username"`
	Email    *string `json:"email" binding:"omitempty,max=255"`
}

// UpdateProfile changes username or email.
func (h *Handler) UpdateProfile(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.AuthService.UpdateProfile(uid, service.ProfilePatch{
		Username: req.Username,
		Email:    req.Email,
	})
	if err != nil {
		respondMappedError(c, err, profileErrorRules)
		return
	}
	response.SuccessWithMsg(c, "profile updated", gin.H{"user": user})
}

// VerifyEmail consumes the token from the verification link.
func (h *Handler) VerifyEmail(c *gin.Context) {
	user, err := h.AuthService.VerifyEmail(strings.TrimSpace(c.Query("token")))
	if err != nil {
		respondMappedError(c, err, verifyEmailErrorRules)
		return
	}
	response.SuccessWithMsg(c, "email verified", gin.H{"user": user})
}

// ResendVerification mails a fresh verification link.
func (h *Handler) ResendVerification(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	if err := h.AuthService.ResendVerification(uid); err != nil {
		respondMappedError(c, err, resendVerificationErrorRules)
		return
	}
	response.SuccessWithMsg(c, "verification email sent", nil)
}

// ForgotPasswordRequest is the body of POST /auth/forgot-password.
type ForgotPasswordRequest struct {
	Email          string                              `json:"email" binding:"required"`
	CaptchaPayload handlershared.CaptchaPayloadRequest `json:"captcha_payload"`
}

// ForgotPassword answers identically whether or not the email exists.
func (h *Handler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	if !h.verifyCaptcha(c, constants.CaptchaSceneForgotPassword, req.CaptchaPayload) {
		return
	}
	if err := h.AuthService.ForgotPassword(req.Email); err != nil {
		respondMappedError(c, err, nil)
		return
	}
	h.Metrics.IncAuthEvent("forgot_password", "accepted")
	response.SuccessWithMsg(c, forgotPasswordMessage, nil)
}

// ResetPasswordRequest is the body of POST /auth/reset-password.
type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password" binding:"required,max=128"`
}

// ResetPassword sets a new password from a reset token.
func (h *Handler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.AuthService.ResetPassword(req.Token, req.NewPassword); err != nil {
		h.Metrics.IncAuthEvent("reset_password", "failure")
		respondMappedError(c, err, resetPasswordErrorRules)
		return
	}
	h.Metrics.IncAuthEvent("reset_password", "success")
	response.SuccessWithMsg(c, "password has been reset", nil)
}

func (h *Handler) verifyCaptcha(c *gin.Context, scene string, payload handlershared.CaptchaPayloadRequest) bool {
	if h.CaptchaService == nil {
		return true
	}
	if err := h.CaptchaService.Verify(scene, payload.ToServicePayload()); err != nil {
		respondMappedError(c, err, captchaErrorRules)
		return false
	}
	return true
}
