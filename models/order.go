package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order statuses. No transition table is enforced between them.
const (
	StatusOrderPlaced    = "Order Placed"
	StatusPacking        = "Packing"
	StatusProcessing     = "Processing"
	StatusShipped        = "Shipped"
	StatusOutForDelivery = "Out for delivery"
	StatusDelivered      = "Delivered"
)

var OrderStatuses = []string{
	StatusOrderPlaced,
	StatusPacking,
	StatusProcessing,
	StatusShipped,
	StatusOutForDelivery,
	StatusDelivered,
}

// PurchasedStatuses count as a purchase for review eligibility.
var PurchasedStatuses = OrderStatuses

func IsValidStatus(s string) bool {
	for _, v := range OrderStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Payment methods.
const (
	PaymentRazorpay = "razorpay"
	PaymentStripe   = "stripe"
)

// LineItem is frozen at order time and never re-joined with the catalog.
type LineItem struct {
	ProductID primitive.ObjectID `bson:"product_id" json:"product_id"`
	SKU       string             `bson:"sku_id" json:"sku_id"`
	Name      string             `bson:"name" json:"name"`
	Size      string             `bson:"size,omitempty" json:"size,omitempty"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	Price     float64            `bson:"price" json:"price"`
}

type PriceSummary struct {
	Subtotal float64 `bson:"subtotal" json:"subtotal"`
	Shipping float64 `bson:"shipping" json:"shipping"`
	Total    float64 `bson:"total" json:"total"`
}

type PaymentInfo struct {
	Method         string `bson:"method" json:"method"`
	GatewayOrderID string `bson:"gateway_order_id" json:"gateway_order_id"`
	PaymentID      string `bson:"payment_id" json:"payment_id"`
}

type Order struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID         string             `bson:"userId" json:"userId"`
	Address        Address            `bson:"address" json:"address"`
	Price          PriceSummary       `bson:"price" json:"price"`
	LineItems      []LineItem         `bson:"line_items" json:"line_items"`
	Status         string             `bson:"status" json:"status"`
	Payment        PaymentInfo        `bson:"payment" json:"payment"`
	DepoterID      string             `bson:"depoterId,omitempty" json:"depoterId,omitempty"`
	DepoterOrderID string             `bson:"depoterOrderId,omitempty" json:"depoterOrderId,omitempty"`
	TrackingNumber string             `bson:"trackingNumber,omitempty" json:"trackingNumber,omitempty"`
	TrackingURL    string             `bson:"trackingUrl,omitempty" json:"trackingUrl,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}
