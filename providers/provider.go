package providers

import (
	"context"

	"github.com/yashrajoria/storefront-backend/models"
)

// OrderGateway creates gateway orders that the client then pays against.
type OrderGateway interface {
	CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*models.GatewayOrder, error)
	KeyID() string
}

// CheckoutGateway is a hosted checkout provider.
type CheckoutGateway interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*models.GatewayOrder, error)
	GetSession(ctx context.Context, sessionID string) (*CheckoutSession, error)
}

// FulfillmentClient forwards placed orders to the warehouse.
type FulfillmentClient interface {
	CreateOrder(ctx context.Context, order FulfillmentOrder) (models.FulfillmentResult, error)
}

// IdentityVerifier validates third-party sign-in tokens.
type IdentityVerifier interface {
	Verify(ctx context.Context, idToken string) (*Identity, error)
}

// Identity is a verified external account.
type Identity struct {
	Subject string
	Email   string
	Name    string
}
