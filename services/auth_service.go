package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	apperrors "github.com/yashrajoria/storefront-backend/common/errors"
	"github.com/yashrajoria/storefront-backend/models"
	"github.com/yashrajoria/storefront-backend/providers"
	"github.com/yashrajoria/storefront-backend/repository"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required,len=6,numeric"`
}

type EmailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	OTP         string `json:"otp" binding:"required,len=6,numeric"`
	NewPassword string `json:"newPassword" binding:"required,min=8"`
}

type GoogleLoginRequest struct {
	Credential string `json:"credential" binding:"required"`
}

// AuthResult is either a token or a pending verification.
type AuthResult struct {
	Token                string `json:"token,omitempty"`
	RequiresVerification bool   `json:"requiresVerification,omitempty"`
	Email                string `json:"email,omitempty"`
}

type TokenIssuer interface {
	IssueUser(userID, email string) (string, error)
	IssueAdmin(email string) (string, error)
}

type OTPMailer interface {
	SendVerificationOTP(ctx context.Context, to, name, otp string) error
	SendPasswordResetOTP(ctx context.Context, to, name, otp string) error
}

type AuthService struct {
	users         repository.UserRepo
	tokens        TokenIssuer
	mail          OTPMailer
	google        providers.IdentityVerifier
	adminEmail    string
	adminPassword string
	now           func() time.Time
	newOTP        func() (string, error)
	log           *zap.Logger
}

func NewAuthService(users repository.UserRepo, tokens TokenIssuer, mail OTPMailer, google providers.IdentityVerifier, adminEmail, adminPassword string, log *zap.Logger) *AuthService {
	return &AuthService{
		users:         users,
		tokens:        tokens,
		mail:          mail,
		google:        google,
		adminEmail:    adminEmail,
		adminPassword: adminPassword,
		now:           time.Now,
		newOTP:        GenerateOTP,
		log:           log,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an unverified account and mails its verification code.
// Registering again before verifying reissues the code.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	email := normalizeEmail(req.Email)
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.ErrInternalServer.Wrap(err)
	}

	existing, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil && existing.IsVerified:
		return nil, apperrors.ErrConflict.WithMessage("User already exists")
	case err == nil:
		if err := s.users.Update(ctx, existing.ID, map[string]interface{}{
			"name":     req.Name,
			"password": string(hash),
		}); err != nil {
			return nil, apperrors.ErrInternalServer.Wrap(err)
		}
		existing.Name = req.Name
		if err := s.sendVerification(ctx, existing); err != nil {
			return nil, err
		}
		return &AuthResult{RequiresVerification: true, Email: email}, nil
	case !errors.Is(err, repository.ErrNotFound):
		return nil, apperrors.ErrInternalServer.Wrap(err)
	}

	user := &models.User{Name: req.Name, Email: email, Password: string(hash)}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.ErrConflict.WithMessage("User already exists")
		}
		return nil, apperrors.ErrInternalServer.Wrap(err)
	}
	s.log.Info("user registered", zap.String("user_id", user.ID.Hex()))

	if err := s.sendVerification(ctx, user); err != nil {
		return nil, err
	}
	return &AuthResult{RequiresVerification: true, Email: email}, nil
}

// Login issues a token to verified users. Unverified users get a fresh code instead.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	email := normalizeEmail(req.Email)
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, apperrors.ErrInternalServer.Wrap(err)
	}
	if user.Password == "" || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	if !user.IsVerified {
		if err := s.sendVerification(ctx, user); err != nil {
			return nil, err
		}
		return &AuthResult{RequiresVerification: true, Email: email}, nil
	}
	return s.userToken(user)
}

func (s *AuthService) VerifyEmailOTP(ctx context.Context, req VerifyOTPRequest) (*AuthResult, error) {
	user, err := s.findByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if user.IsVerified {
		return nil, apperrors.ErrBadRequest.WithMessage("Email already verified")
	}
	if err := checkOTP(user.EmailOTP, user.EmailOTPExpiry, req.OTP, s.now()); err != nil {
		return nil, err
	}

	if err := s.users.Update(ctx, user.ID, map[string]interface{}{
		"isVerified":     true,
		"emailOtp":       nil,
		"emailOtpExpiry": nil,
	}); err != nil {
		return nil, apperrors.ErrInternalServer.Wrap(err)
	}
	s.log.Info("email verified", zap.String("user_id", user.ID.Hex()))
	return s.userToken(user)
}

func (s *AuthService) ResendOTP(ctx context.Context, req EmailRequest) error {
	user, err := s.findByEmail(ctx, req.Email)
	if err != nil {
		return err
	}
	if user.IsVerified {
		return apperrors.ErrBadRequest.WithMessage("Email already verified")
	}
	return s.sendVerification(ctx, user)
}

// ForgotPassword mails a reset code. Verification state is left alone.
func (s *AuthService) ForgotPassword(ctx context.Context, req EmailRequest) error {
	user, err := s.findByEmail(ctx, req.Email)
	if err != nil {
		return err
	}
	otp, expiry, err := s.issueOTP()
	if err != nil {
		return err
	}
	if err := s.users.Update(ctx, user.ID, map[string]interface{}{
		"resetOtp":       otp,
		"resetOtpExpiry": expiry,
	}); err != nil {
		return apperrors.ErrInternalServer.Wrap(err)
	}
	if err := s.mail.SendPasswordResetOTP(ctx, user.Email, user.Name, otp); err != nil {
		s.log.Error("failed to send reset email", zap.String("user_id", user.ID.Hex()), zap.Error(err))
		return apperrors.ErrBadGateway.WithMessage("Failed to send reset email").Wrap(err)
	}
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	user, err := s.findByEmail(ctx, req.Email)
	if err != nil {
		return err
	}
	if err := checkOTP(user.ResetOTP, user.ResetOTPExpiry, req.OTP, s.now()); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return apperrors.ErrInternalServer.Wrap(err)
	}
	if err := s.users.Update(ctx, user.ID, map[string]interface{}{
		"password":       string(hash),
		"resetOtp":       nil,
		"resetOtpExpiry": nil,
	}); err != nil {
		return apperrors.ErrInternalServer.Wrap(err)
	}
	s.log.Info("password reset", zap.String("user_id", user.ID.Hex()))
	return nil
}

// GoogleLogin signs in with a Google ID token, creating a verified account on first use.
func (s *AuthService) GoogleLogin(ctx context.Context, req GoogleLoginRequest) (*AuthResult, error) {
	if s.google == nil {
		return nil, apperrors.ErrServiceUnavailable.WithMessage("Google sign-in is not configured")
	}
	identity, err := s.google.Verify(ctx, req.Credential)
	if errors.Is(err, providers.ErrInvalidIDToken) {
		return nil, apperrors.ErrInvalidToken
	}
	if err != nil {
		return nil, apperrors.ErrBadGateway.Wrap(err)
	}

	email := normalizeEmail(identity.Email)
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		user = &models.User{Name: identity.Name, Email: email, GoogleID: identity.Subject, IsVerified: true}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, apperrors.ErrInternalServer.Wrap(err)
		}
		return s.userToken(user)
	}
	if err != nil {
		return nil, apperrors.ErrInternalServer.Wrap(err)
	}

	switch {
	case !user.IsVerified:
		// A pending account loses its password and name on takeover.
		set := map[string]interface{}{
			"googleId":       identity.Subject,
			"isVerified":     true,
			"password":       nil,
			"emailOtp":       nil,
			"emailOtpExpiry": nil,
		}
		if identity.Name != "" {
			set["name"] = identity.Name
			user.Name = identity.Name
		}
		if err := s.users.Update(ctx, user.ID, set); err != nil {
			return nil, apperrors.ErrInternalServer.Wrap(err)
		}
		user.Password = ""
		user.IsVerified = true
		s.log.Info("pending account claimed by Google sign-in", zap.String("user_id", user.ID.Hex()))
	case user.GoogleID == "":
		if err := s.users.Update(ctx, user.ID, map[string]interface{}{"googleId": identity.Subject}); err != nil {
			return nil, apperrors.ErrInternalServer.Wrap(err)
		}
	}
	user.GoogleID = identity.Subject
	return s.userToken(user)
}

// AdminLogin checks the configured administrator credentials.
func (s *AuthService) AdminLogin(_ context.Context, req LoginRequest) (*AuthResult, error) {
	if s.adminEmail == "" || s.adminPassword == "" {
		return nil, apperrors.ErrInvalidCredentials
	}
	emailOK := subtle.ConstantTimeCompare([]byte(normalizeEmail(req.Email)), []byte(normalizeEmail(s.adminEmail))) == 1
	passOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(s.adminPassword)) == 1
	if !emailOK || !passOK {
		return nil, apperrors.ErrInvalidCredentials
	}

	token, err := s.tokens.IssueAdmin(s.adminEmail)
	if err != nil {
		return nil, apperrors.ErrInternalServer.Wrap(err)
	}
	return &AuthResult{Token: token}, nil
}

func (s *AuthService) findByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.ErrNotFound.WithMessage("User not found")
	}
	if err != nil {
		return nil, apperrors.ErrInternalServer.Wrap(err)
	}
	return user, nil
}

func (s *AuthService) issueOTP() (string, time.Time, error) {
	otp, err := s.newOTP()
	if err != nil {
		return "", time.Time{}, apperrors.ErrInternalServer.Wrap(err)
	}
	return otp, s.now().Add(otpTTL).UTC(), nil
}

func (s *AuthService) sendVerification(ctx context.Context, user *models.User) error {
	otp, expiry, err := s.issueOTP()
	if err != nil {
		return err
	}
	if err := s.users.Update(ctx, user.ID, map[string]interface{}{
		"emailOtp":       otp,
		"emailOtpExpiry": expiry,
	}); err != nil {
		return apperrors.ErrInternalServer.Wrap(err)
	}
	if err := s.mail.SendVerificationOTP(ctx, user.Email, user.Name, otp); err != nil {
		s.log.Error("failed to send verification email", zap.String("user_id", user.ID.Hex()), zap.Error(err))
		return apperrors.ErrBadGateway.WithMessage("Failed to send verification email").Wrap(err)
	}
	return nil
}

func (s *AuthService) userToken(user *models.User) (*AuthResult, error) {
	token, err := s.tokens.IssueUser(user.ID.Hex(), user.Email)
	if err != nil {
		return nil, apperrors.ErrInternalServer.Wrap(err)
	}
	return &AuthResult{Token: token, Email: user.Email}, nil
}
