package providers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/yashrajoria/storefront-backend/models"
)

// DepoterClient forwards orders to the Depoter fulfillment API.
type DepoterClient struct {
	url        string
	apiKey     string
	httpClient *http.Client
}

func NewDepoterClient(url, apiKey string) *DepoterClient {
	return &DepoterClient{url: url, apiKey: apiKey, httpClient: newHTTPClient()}
}

type FulfillmentAddress struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email,omitempty"`
	Street    string `json:"street"`
	City      string `json:"city"`
	State     string `json:"state"`
	Zipcode   string `json:"zipcode"`
	Country   string `json:"country"`
	Phone     string `json:"phone"`
}

type FulfillmentItem struct {
	SKU      string  `json:"sku"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// FulfillmentOrder is the payload the fulfillment API accepts.
type FulfillmentOrder struct {
	OrderReference string             `json:"orderReference"`
	Billing        FulfillmentAddress `json:"billing"`
	Shipping       FulfillmentAddress `json:"shipping"`
	Subtotal       float64            `json:"subtotal"`
	ShippingCost   float64            `json:"shippingCost"`
	Total          float64            `json:"total"`
	Items          []FulfillmentItem  `json:"items"`
}

// NewFulfillmentOrder builds the payload from a stored order. Billing and
// shipping are both the order's address snapshot.
func NewFulfillmentOrder(o *models.Order) FulfillmentOrder {
	addr := FulfillmentAddress{
		FirstName: o.Address.FirstName,
		LastName:  o.Address.LastName,
		Email:     o.Address.Email,
		Street:    o.Address.Street,
		City:      o.Address.City,
		State:     o.Address.State,
		Zipcode:   o.Address.Zipcode,
		Country:   o.Address.Country,
		Phone:     o.Address.Phone,
	}
	items := make([]FulfillmentItem, 0, len(o.LineItems))
	for _, li := range o.LineItems {
		items = append(items, FulfillmentItem{SKU: li.SKU, Name: li.Name, Quantity: li.Quantity, Price: li.Price})
	}
	return FulfillmentOrder{
		OrderReference: o.ID.Hex(),
		Billing:        addr,
		Shipping:       addr,
		Subtotal:       o.Price.Subtotal,
		ShippingCost:   o.Price.Shipping,
		Total:          o.Price.Total,
		Items:          items,
	}
}

func (c *DepoterClient) CreateOrder(ctx context.Context, order FulfillmentOrder) (models.FulfillmentResult, error) {
	if c.url == "" {
		return models.FulfillmentResult{}, fmt.Errorf("depoter CreateOrder: fulfillment API url not configured")
	}

	var resp models.FulfillmentResult
	err := doRequest(ctx, c.httpClient, "depoter", http.MethodPost, c.url, order, &resp, func(r *http.Request) {
		r.Header.Set("x-api-key", c.apiKey)
	})
	if err != nil {
		return models.FulfillmentResult{}, fmt.Errorf("depoter CreateOrder: %w", err)
	}
	return resp, nil
}
