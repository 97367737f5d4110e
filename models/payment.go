package models

import (
	"time"

	"github.com/google/uuid"
)

// Ledger statuses.
const (
	PaymentCreated  = "created"
	PaymentVerified = "verified"
	PaymentRejected = "failed"
)

// Payment is a ledger row for one gateway order, kept in Postgres.
type Payment struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Gateway        string    `gorm:"size:32;not null" json:"gateway"`
	GatewayOrderID string    `gorm:"size:128;uniqueIndex;not null" json:"gateway_order_id"`
	PaymentID      string    `gorm:"size:128;index" json:"payment_id"`
	OrderID        string    `gorm:"size:64;index" json:"order_id"`
	UserID         string    `gorm:"size:64;index;not null" json:"user_id"`
	Amount         int64     `gorm:"not null" json:"amount"`
	Currency       string    `gorm:"size:8;not null" json:"currency"`
	Status         string    `gorm:"size:16;not null" json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// GatewayOrder is what the client needs to open the gateway checkout.
type GatewayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	KeyID    string `json:"key_id,omitempty"`
	URL      string `json:"url,omitempty"`
}
