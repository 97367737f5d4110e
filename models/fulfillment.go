package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Fulfillment outbox job states.
const (
	JobPending   = "pending"
	JobSucceeded = "succeeded"
	JobFailed    = "failed"
)

// FulfillmentJob is a durable record of an order that still has to reach the fulfillment API.
type FulfillmentJob struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	OrderID       primitive.ObjectID `bson:"orderId" json:"orderId"`
	Status        string             `bson:"status" json:"status"`
	Attempts      int                `bson:"attempts" json:"attempts"`
	LastError     string             `bson:"lastError,omitempty" json:"lastError,omitempty"`
	NextAttemptAt time.Time          `bson:"nextAttemptAt" json:"nextAttemptAt"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// FulfillmentResult carries the identifiers the fulfillment API assigns.
type FulfillmentResult struct {
	DepoterID      string `json:"depoterId"`
	DepoterOrderID string `json:"depoterOrderId"`
}
