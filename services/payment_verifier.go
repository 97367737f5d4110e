package services

import (
	"context"
	"errors"
	"fmt"

	apperrors "github.com/yashrajoria/storefront-backend/common/errors"
	"github.com/yashrajoria/storefront-backend/models"
	"github.com/yashrajoria/storefront-backend/providers"
	"github.com/yashrajoria/storefront-backend/repository"
)

// VerifiedPayment is a confirmed payment plus the amount the gateway
// charged, in minor units, when that amount is known.
type VerifiedPayment struct {
	models.PaymentInfo
	Charged   int64
	HasAmount bool
}

// PaymentVerifier confirms a payment before any order state is touched and
// returns the payment reference to store on the order.
type PaymentVerifier interface {
	Verify(ctx context.Context, userID string) (VerifiedPayment, error)
}

// RazorpayVerifier checks the gateway's HMAC confirmation signature. With a
// Ledger it also requires the gateway order to have been opened by the
// caller and takes the charged amount from that row.
type RazorpayVerifier struct {
	OrderID   string
	PaymentID string
	Signature string
	Secret    string
	Ledger    repository.PaymentRepo
}

func (v RazorpayVerifier) Verify(ctx context.Context, userID string) (VerifiedPayment, error) {
	if v.OrderID == "" || v.PaymentID == "" {
		return VerifiedPayment{}, apperrors.ErrPaymentFailed
	}
	if !providers.VerifySignature(v.OrderID, v.PaymentID, v.Signature, v.Secret) {
		return VerifiedPayment{}, apperrors.ErrPaymentFailed
	}
	vp := VerifiedPayment{PaymentInfo: models.PaymentInfo{
		Method:         models.PaymentRazorpay,
		GatewayOrderID: v.OrderID,
		PaymentID:      v.PaymentID,
	}}
	if v.Ledger == nil {
		return vp, nil
	}

	row, err := v.Ledger.FindByGatewayOrderID(ctx, v.OrderID)
	if errors.Is(err, repository.ErrNotFound) {
		return VerifiedPayment{}, apperrors.ErrPaymentFailed
	}
	if err != nil {
		return VerifiedPayment{}, apperrors.ErrInternalServer.Wrap(fmt.Errorf("payment ledger lookup: %w", err))
	}
	if row.UserID != userID {
		return VerifiedPayment{}, apperrors.ErrPaymentFailed
	}
	vp.Charged, vp.HasAmount = row.Amount, true
	return vp, nil
}

// StripeVerifier accepts a Checkout session that is paid and belongs to the caller.
type StripeVerifier struct {
	SessionID string
	Gateway   providers.CheckoutGateway
}

func (v StripeVerifier) Verify(ctx context.Context, userID string) (VerifiedPayment, error) {
	if v.Gateway == nil {
		return VerifiedPayment{}, apperrors.ErrServiceUnavailable.WithMessage("Stripe is not configured")
	}
	if v.SessionID == "" {
		return VerifiedPayment{}, apperrors.ErrPaymentFailed
	}
	s, err := v.Gateway.GetSession(ctx, v.SessionID)
	if err != nil {
		return VerifiedPayment{}, apperrors.ErrBadGateway.Wrap(fmt.Errorf("stripe session lookup: %w", err))
	}
	if s.PaymentStatus != "paid" || s.UserID != userID {
		return VerifiedPayment{}, apperrors.ErrPaymentFailed
	}
	paymentID := s.PaymentIntentID
	if paymentID == "" {
		paymentID = s.ID
	}
	return VerifiedPayment{
		PaymentInfo: models.PaymentInfo{
			Method:         models.PaymentStripe,
			GatewayOrderID: s.ID,
			PaymentID:      paymentID,
		},
		Charged:   s.AmountTotal,
		HasAmount: true,
	}, nil
}
