package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifySignature(t *testing.T) {
	sig := Signature("order_1", "pay_1", "s3cret")

	assert.True(t, VerifySignature("order_1", "pay_1", sig, "s3cret"))
	assert.False(t, VerifySignature("order_1", "pay_2", sig, "s3cret"))
	assert.False(t, VerifySignature("order_1", "pay_1", sig, "other"))
	assert.False(t, VerifySignature("order_1", "pay_1", "", "s3cret"))
	assert.False(t, VerifySignature("order_1", "pay_1", sig, ""))
}

func TestVerifySignature_IsCaseSensitive(t *testing.T) {
	sig := Signature("order_1", "pay_1", "s3cret")
	upper := []byte(sig)
	for i, c := range upper {
		if c >= 'a' && c <= 'f' {
			upper[i] = c - 32
		}
	}
	assert.False(t, VerifySignature("order_1", "pay_1", string(upper), "s3cret"))
}

func TestRazorpayCreateOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/orders", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "rzp_key", user)
		assert.Equal(t, "rzp_secret", pass)

		var body razorpayOrderRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, int64(129900), body.Amount)

		_ = json.NewEncoder(w).Encode(razorpayOrderResponse{
			ID: "order_xyz", Amount: body.Amount, Currency: body.Currency, Receipt: body.Receipt, Status: "created",
		})
	}))
	defer srv.Close()

	g := NewRazorpayGateway("rzp_key", "rzp_secret", srv.URL+"/")
	order, err := g.CreateOrder(context.Background(), 129900, "INR", "rcpt_1")
	require.NoError(t, err)
	assert.Equal(t, "order_xyz", order.ID)
	assert.Equal(t, "INR", order.Currency)
	assert.Equal(t, "rzp_key", order.KeyID)
}

func TestRazorpayCreateOrder_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"description":"Authentication failed"}}`))
	}))
	defer srv.Close()

	g := NewRazorpayGateway("k", "bad", srv.URL)
	_, err := g.CreateOrder(context.Background(), 100, "INR", "r")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}
