package providers

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"

	"github.com/yashrajoria/storefront-backend/models"
)

// RazorpayGateway talks to the Razorpay orders API.
type RazorpayGateway struct {
	keyID      string
	keySecret  string
	baseURL    string
	httpClient *http.Client
}

func NewRazorpayGateway(keyID, keySecret, baseURL string) *RazorpayGateway {
	return &RazorpayGateway{
		keyID:      keyID,
		keySecret:  keySecret,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: newHTTPClient(),
	}
}

type razorpayOrderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type razorpayOrderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

func (g *RazorpayGateway) KeyID() string { return g.keyID }

// CreateOrder opens a gateway order. amount is in the currency's minor unit.
func (g *RazorpayGateway) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*models.GatewayOrder, error) {
	req := razorpayOrderRequest{Amount: amount, Currency: currency, Receipt: receipt}

	var resp razorpayOrderResponse
	err := doRequest(ctx, g.httpClient, "razorpay", http.MethodPost, g.baseURL+"/v1/orders", req, &resp, func(r *http.Request) {
		r.SetBasicAuth(g.keyID, g.keySecret)
	})
	if err != nil {
		return nil, fmt.Errorf("razorpay CreateOrder: %w", err)
	}

	return &models.GatewayOrder{
		ID:       resp.ID,
		Amount:   resp.Amount,
		Currency: resp.Currency,
		Receipt:  resp.Receipt,
		KeyID:    g.keyID,
	}, nil
}

// Signature returns hex(HMAC-SHA256(secret, orderID|paymentID)).
func Signature(orderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature accepts only the exact expected signature string.
func VerifySignature(orderID, paymentID, signature, secret string) bool {
	if secret == "" || signature == "" {
		return false
	}
	return Signature(orderID, paymentID, secret) == signature
}
