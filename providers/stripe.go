package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/checkout/session"
	"github.com/yashrajoria/storefront-backend/models"
)

// CheckoutLine is one priced line of a hosted checkout.
type CheckoutLine struct {
	Name      string
	UnitPrice int64
	Quantity  int64
}

type CheckoutRequest struct {
	UserID     string
	Currency   string
	Lines      []CheckoutLine
	SuccessURL string
	CancelURL  string
}

// CheckoutSession is the part of a Stripe session the order flow reads.
type CheckoutSession struct {
	ID              string
	PaymentStatus   string
	PaymentIntentID string
	UserID          string
	AmountTotal     int64
	Currency        string
}

// StripeGateway creates and reads Stripe Checkout sessions.
type StripeGateway struct {
	sessions *session.Client
}

func NewStripeGateway(secretKey string) *StripeGateway {
	return NewStripeGatewayWithBackend(secretKey, stripe.GetBackend(stripe.APIBackend))
}

func NewStripeGatewayWithBackend(secretKey string, backend stripe.Backend) *StripeGateway {
	return &StripeGateway{sessions: &session.Client{B: backend, Key: secretKey}}
}

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*models.GatewayOrder, error) {
	currency := strings.ToLower(req.Currency)
	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
	}
	params.Context = ctx
	params.AddMetadata("userId", req.UserID)

	var total int64
	for _, l := range req.Lines {
		total += l.UnitPrice * l.Quantity
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(currency),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(l.Name),
				},
				UnitAmount: stripe.Int64(l.UnitPrice),
			},
			Quantity: stripe.Int64(l.Quantity),
		})
	}

	s, err := g.sessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe CreateCheckoutSession: %w", err)
	}
	return &models.GatewayOrder{
		ID:       s.ID,
		Amount:   total,
		Currency: currency,
		URL:      s.URL,
	}, nil
}

func (g *StripeGateway) GetSession(ctx context.Context, sessionID string) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	s, err := g.sessions.Get(sessionID, params)
	if err != nil {
		return nil, fmt.Errorf("stripe GetSession: %w", err)
	}

	out := &CheckoutSession{
		ID:            s.ID,
		PaymentStatus: string(s.PaymentStatus),
		UserID:        s.Metadata["userId"],
		AmountTotal:   s.AmountTotal,
		Currency:      string(s.Currency),
	}
	if s.PaymentIntent != nil {
		out.PaymentIntentID = s.PaymentIntent.ID
	}
	return out, nil
}
