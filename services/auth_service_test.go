package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	apperrors "github.com/yashrajoria/storefront-backend/common/errors"
	"github.com/yashrajoria/storefront-backend/models"
	"github.com/yashrajoria/storefront-backend/providers"
	"github.com/yashrajoria/storefront-backend/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func newAuthFixture() (*AuthService, *MockUserRepo, *fakeMailer) {
	users := new(MockUserRepo)
	mail := &fakeMailer{}
	svc := NewAuthService(users, fakeTokens{}, mail, nil, "admin@shop.test", "s3cret-admin", zap.NewNop())
	svc.now = func() time.Time { return fixedNow }
	svc.newOTP = func() (string, error) { return "123456", nil }
	return svc, users, mail
}

func hashed(t *testing.T, pw string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func at(d time.Duration) *time.Time {
	v := fixedNow.Add(d)
	return &v
}

func TestRegister_NewUserGetsCode(t *testing.T) {
	svc, users, mail := newAuthFixture()
	uid := primitive.NewObjectID()

	users.On("FindByEmail", mock.Anything, "asha@shop.test").Return(nil, repository.ErrNotFound).Once()
	users.On("Create", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
		return u.Email == "asha@shop.test" && !u.IsVerified && u.Password != "hunter2hunter2"
	})).Run(func(args mock.Arguments) { args.Get(1).(*models.User).ID = uid }).Return(nil).Once()
	users.On("Update", mock.Anything, uid, map[string]interface{}{
		"emailOtp":       "123456",
		"emailOtpExpiry": fixedNow.Add(10 * time.Minute).UTC(),
	}).Return(nil).Once()

	res, err := svc.Register(context.Background(), RegisterRequest{Name: "Asha", Email: " Asha@Shop.test ", Password: "hunter2hunter2"})
	require.NoError(t, err)
	assert.True(t, res.RequiresVerification)
	assert.Empty(t, res.Token)
	assert.Equal(t, "asha@shop.test", mail.verifyTo)
	assert.Equal(t, "123456", mail.verifyOTP)
	users.AssertExpectations(t)
}

func TestRegister_VerifiedUserConflicts(t *testing.T) {
	svc, users, _ := newAuthFixture()
	users.On("FindByEmail", mock.Anything, "asha@shop.test").Return(&models.User{IsVerified: true}, nil).Once()

	_, err := svc.Register(context.Background(), RegisterRequest{Name: "Asha", Email: "asha@shop.test", Password: "hunter2hunter2"})
	assert.Equal(t, 409, apperrors.As(err).Code)
}

func TestRegister_MailFailure(t *testing.T) {
	svc, users, mail := newAuthFixture()
	mail.err = errors.New("smtp refused")
	users.On("FindByEmail", mock.Anything, "asha@shop.test").Return(nil, repository.ErrNotFound).Once()
	users.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	users.On("Update", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

	_, err := svc.Register(context.Background(), RegisterRequest{Name: "Asha", Email: "asha@shop.test", Password: "hunter2hunter2"})
	appErr := apperrors.As(err)
	assert.Equal(t, 502, appErr.Code)
	assert.Equal(t, "Failed to send verification email", appErr.Message)
}

func TestLogin(t *testing.T) {
	svc, users, mail := newAuthFixture()
	verified := &models.User{ID: primitive.NewObjectID(), Email: "asha@shop.test", Password: hashed(t, "correct-horse"), IsVerified: true}
	users.On("FindByEmail", mock.Anything, "asha@shop.test").Return(verified, nil)

	res, err := svc.Login(context.Background(), LoginRequest{Email: "asha@shop.test", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, "user:"+verified.ID.Hex(), res.Token)

	_, err = svc.Login(context.Background(), LoginRequest{Email: "asha@shop.test", Password: "wrong"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	assert.Empty(t, mail.verifyTo)
}

func TestLogin_UnknownUser(t *testing.T) {
	svc, users, _ := newAuthFixture()
	users.On("FindByEmail", mock.Anything, "ghost@shop.test").Return(nil, repository.ErrNotFound).Once()

	_, err := svc.Login(context.Background(), LoginRequest{Email: "ghost@shop.test", Password: "x"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestLogin_UnverifiedGetsFreshCode(t *testing.T) {
	svc, users, mail := newAuthFixture()
	user := &models.User{ID: primitive.NewObjectID(), Email: "asha@shop.test", Password: hashed(t, "correct-horse")}
	users.On("FindByEmail", mock.Anything, "asha@shop.test").Return(user, nil).Once()
	users.On("Update", mock.Anything, user.ID, mock.Anything).Return(nil).Once()

	res, err := svc.Login(context.Background(), LoginRequest{Email: "asha@shop.test", Password: "correct-horse"})
	require.NoError(t, err)
	assert.True(t, res.RequiresVerification)
	assert.Empty(t, res.Token)
	assert.Equal(t, "123456", mail.verifyOTP)
}

func TestVerifyEmailOTP(t *testing.T) {
	tests := []struct {
		name    string
		stored  string
		expiry  *time.Time
		code    string
		wantErr *apperrors.Error
	}{
		{name: "valid", stored: "123456", expiry: at(time.Minute), code: "123456"},
		{name: "mismatch", stored: "123456", expiry: at(time.Minute), code: "654321", wantErr: apperrors.ErrInvalidOTP},
		{name: "expired", stored: "123456", expiry: at(-time.Second), code: "123456", wantErr: apperrors.ErrOTPExpired},
		{name: "expires now", stored: "123456", expiry: at(0), code: "123456", wantErr: apperrors.ErrOTPExpired},
		{name: "no code issued", stored: "", expiry: nil, code: "123456", wantErr: apperrors.ErrInvalidOTP},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, users, _ := newAuthFixture()
			user := &models.User{ID: primitive.NewObjectID(), Email: "asha@shop.test", EmailOTP: tt.stored, EmailOTPExpiry: tt.expiry}
			users.On("FindByEmail", mock.Anything, "asha@shop.test").Return(user, nil).Once()
			if tt.wantErr == nil {
				users.On("Update", mock.Anything, user.ID, map[string]interface{}{
					"isVerified":     true,
					"emailOtp":       nil,
					"emailOtpExpiry": nil,
				}).Return(nil).Once()
			}

			res, err := svc.VerifyEmailOTP(context.Background(), VerifyOTPRequest{Email: "asha@shop.test", OTP: tt.code})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "user:"+user.ID.Hex(), res.Token)
			users.AssertExpectations(t)
		})
	}
}

func TestVerifyEmailOTP_VerifiedUserGetsNoToken(t *testing.T) {
	svc, users, _ := newAuthFixture()
	user := &models.User{ID: primitive.NewObjectID(), Email: "asha@shop.test", IsVerified: true}
	users.On("FindByEmail", mock.Anything, "asha@shop.test").Return(user, nil).Once()

	res, err := svc.VerifyEmailOTP(context.Background(), VerifyOTPRequest{Email: "asha@shop.test", OTP: "000000"})
	require.Error(t, err)
	assert.Nil(t, res)
	assert.Equal(t, 400, apperrors.As(err).Code)
	assert.Equal(t, "Email already verified", apperrors.As(err).Message)
	users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestResendOTP_AlreadyVerified(t *testing.T) {
	svc, users, _ := newAuthFixture()
	users.On("FindByEmail", mock.Anything, "asha@shop.test").Return(&models.User{IsVerified: true}, nil).Once()

	err := svc.ResendOTP(context.Background(), EmailRequest{Email: "asha@shop.test"})
	assert.Equal(t, "Email already verified", apperrors.As(err).Message)
}

func TestForgotAndResetPassword(t *testing.T) {
	svc, users, mail := newAuthFixture()
	user := &models.User{ID: primitive.NewObjectID(), Email: "asha@shop.test", Name: "Asha", IsVerified: false}
	users.On("FindByEmail", mock.Anything, "asha@shop.test").Return(user, nil)
	users.On("Update", mock.Anything, user.ID, map[string]interface{}{
		"resetOtp":       "123456",
		"resetOtpExpiry": fixedNow.Add(10 * time.Minute).UTC(),
	}).Return(nil).Once()

	require.NoError(t, svc.ForgotPassword(context.Background(), EmailRequest{Email: "asha@shop.test"}))
	assert.Equal(t, "asha@shop.test", mail.resetTo)
	assert.Equal(t, "123456", mail.resetOTP)

	user.ResetOTP = "123456"
	user.ResetOTPExpiry = at(10 * time.Minute)
	users.On("Update", mock.Anything, user.ID, mock.MatchedBy(func(set map[string]interface{}) bool {
		hash, _ := set["password"].(string)
		_, hasVerified := set["isVerified"]
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte("new-password-1")) == nil &&
			set["resetOtp"] == nil && !hasVerified
	})).Return(nil).Once()

	require.NoError(t, svc.ResetPassword(context.Background(), ResetPasswordRequest{Email: "asha@shop.test", OTP: "123456", NewPassword: "new-password-1"}))
	users.AssertExpectations(t)

	err := svc.ResetPassword(context.Background(), ResetPasswordRequest{Email: "asha@shop.test", OTP: "000000", NewPassword: "new-password-1"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidOTP)
}

func TestForgotPassword_UnknownEmail(t *testing.T) {
	svc, users, _ := newAuthFixture()
	users.On("FindByEmail", mock.Anything, "ghost@shop.test").Return(nil, repository.ErrNotFound).Once()

	err := svc.ForgotPassword(context.Background(), EmailRequest{Email: "ghost@shop.test"})
	assert.Equal(t, 404, apperrors.As(err).Code)
}

func TestGoogleLogin_CreatesVerifiedUser(t *testing.T) {
	svc, users, _ := newAuthFixture()
	svc.google = &fakeIdentity{identity: &providers.Identity{Subject: "g-1", Email: "Asha@Gmail.com", Name: "Asha"}}
	uid := primitive.NewObjectID()

	users.On("FindByEmail", mock.Anything, "asha@gmail.com").Return(nil, repository.ErrNotFound).Once()
	users.On("Create", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
		return u.IsVerified && u.GoogleID == "g-1" && u.Password == ""
	})).Run(func(args mock.Arguments) { args.Get(1).(*models.User).ID = uid }).Return(nil).Once()

	res, err := svc.GoogleLogin(context.Background(), GoogleLoginRequest{Credential: "id-token"})
	require.NoError(t, err)
	assert.Equal(t, "user:"+uid.Hex(), res.Token)
}

func TestGoogleLogin_PendingAccountDropsPassword(t *testing.T) {
	svc, users, _ := newAuthFixture()
	svc.google = &fakeIdentity{identity: &providers.Identity{Subject: "g-1", Email: "asha@gmail.com", Name: "Asha R"}}
	pending := &models.User{ID: primitive.NewObjectID(), Email: "asha@gmail.com", Name: "someone else", Password: hashed(t, "attacker-pass")}

	users.On("FindByEmail", mock.Anything, "asha@gmail.com").Return(pending, nil).Once()
	users.On("Update", mock.Anything, pending.ID, map[string]interface{}{
		"googleId":       "g-1",
		"isVerified":     true,
		"password":       nil,
		"name":           "Asha R",
		"emailOtp":       nil,
		"emailOtpExpiry": nil,
	}).Return(nil).Once()

	res, err := svc.GoogleLogin(context.Background(), GoogleLoginRequest{Credential: "id-token"})
	require.NoError(t, err)
	assert.Equal(t, "user:"+pending.ID.Hex(), res.Token)
	users.AssertExpectations(t)

	// the old password no longer opens the account
	users.On("FindByEmail", mock.Anything, "asha@gmail.com").Return(pending, nil).Once()
	_, err = svc.Login(context.Background(), LoginRequest{Email: "asha@gmail.com", Password: "attacker-pass"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestGoogleLogin_VerifiedAccountKeepsPassword(t *testing.T) {
	svc, users, _ := newAuthFixture()
	svc.google = &fakeIdentity{identity: &providers.Identity{Subject: "g-1", Email: "asha@gmail.com", Name: "Asha"}}
	user := &models.User{ID: primitive.NewObjectID(), Email: "asha@gmail.com", Password: "hash", IsVerified: true}

	users.On("FindByEmail", mock.Anything, "asha@gmail.com").Return(user, nil).Once()
	users.On("Update", mock.Anything, user.ID, map[string]interface{}{"googleId": "g-1"}).Return(nil).Once()

	_, err := svc.GoogleLogin(context.Background(), GoogleLoginRequest{Credential: "id-token"})
	require.NoError(t, err)
	users.AssertExpectations(t)
}

func TestGoogleLogin_InvalidToken(t *testing.T) {
	svc, _, _ := newAuthFixture()
	svc.google = &fakeIdentity{err: providers.ErrInvalidIDToken}

	_, err := svc.GoogleLogin(context.Background(), GoogleLoginRequest{Credential: "bad"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestAdminLogin(t *testing.T) {
	svc, _, _ := newAuthFixture()

	res, err := svc.AdminLogin(context.Background(), LoginRequest{Email: "Admin@Shop.test", Password: "s3cret-admin"})
	require.NoError(t, err)
	assert.Equal(t, "admin:admin@shop.test", res.Token)

	_, err = svc.AdminLogin(context.Background(), LoginRequest{Email: "admin@shop.test", Password: "guess"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestGenerateOTP(t *testing.T) {
	for i := 0; i < 50; i++ {
		otp, err := GenerateOTP()
		require.NoError(t, err)
		assert.Len(t, otp, 6)
		assert.Regexp(t, `^[0-9]{6}$`, otp)
	}
}
