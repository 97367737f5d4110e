package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yashrajoria/storefront-backend/services"
)

// UserController handles account registration, verification and login.
type UserController struct {
	auth AuthServiceAPI
}

func NewUserController(auth AuthServiceAPI) *UserController {
	RegisterValidators()
	return &UserController{auth: auth}
}

// Register handles POST /api/user/register
func (uc *UserController) Register(c *gin.Context) {
	var req services.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := uc.auth.Register(c.Request.Context(), req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, gin.H{
		"requiresVerification": true,
		"email":                res.Email,
		"message":              "Verification code sent to your email",
	})
}

// Login handles POST /api/user/login
func (uc *UserController) Login(c *gin.Context) {
	var req services.LoginRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := uc.auth.Login(c.Request.Context(), req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	uc.writeResult(c, res)
}

// VerifyEmailOTP handles POST /api/user/verify-email-otp
func (uc *UserController) VerifyEmailOTP(c *gin.Context) {
	var req services.VerifyOTPRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := uc.auth.VerifyEmailOTP(c.Request.Context(), req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"token": res.Token, "message": "Email verified"})
}

// ResendOTP handles POST /api/user/resend-otp
func (uc *UserController) ResendOTP(c *gin.Context) {
	var req services.EmailRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := uc.auth.ResendOTP(c.Request.Context(), req); err != nil {
		handleServiceError(c, err)
		return
	}
	respondMessage(c, "Verification code sent to your email")
}

// ForgotPassword handles POST /api/user/forgot-password
func (uc *UserController) ForgotPassword(c *gin.Context) {
	var req services.EmailRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := uc.auth.ForgotPassword(c.Request.Context(), req); err != nil {
		handleServiceError(c, err)
		return
	}
	respondMessage(c, "Password reset code sent to your email")
}

// ResetPassword handles POST /api/user/reset-password
func (uc *UserController) ResetPassword(c *gin.Context) {
	var req services.ResetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := uc.auth.ResetPassword(c.Request.Context(), req); err != nil {
		handleServiceError(c, err)
		return
	}
	respondMessage(c, "Password updated")
}

// GoogleLogin handles POST /api/user/google-login
func (uc *UserController) GoogleLogin(c *gin.Context) {
	var req services.GoogleLoginRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := uc.auth.GoogleLogin(c.Request.Context(), req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	uc.writeResult(c, res)
}

// AdminLogin handles POST /api/user/admin
func (uc *UserController) AdminLogin(c *gin.Context) {
	var req services.LoginRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := uc.auth.AdminLogin(c.Request.Context(), req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"token": res.Token})
}

func (uc *UserController) writeResult(c *gin.Context, res *services.AuthResult) {
	if res.RequiresVerification {
		respondOK(c, http.StatusOK, gin.H{
			"requiresVerification": true,
			"email":                res.Email,
			"message":              "Please verify your email. A new code has been sent.",
		})
		return
	}
	respondOK(c, http.StatusOK, gin.H{"token": res.Token})
}
