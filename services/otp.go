package services

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	apperrors "github.com/yashrajoria/storefront-backend/common/errors"
)

const otpTTL = 10 * time.Minute

// GenerateOTP returns a uniformly random 6 digit code.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// checkOTP accepts code only if it equals stored and expiry is still ahead of now.
func checkOTP(stored string, expiry *time.Time, code string, now time.Time) error {
	if stored == "" || code != stored {
		return apperrors.ErrInvalidOTP
	}
	if expiry == nil || !expiry.After(now) {
		return apperrors.ErrOTPExpired
	}
	return nil
}
