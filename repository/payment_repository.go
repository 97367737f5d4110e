package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/yashrajoria/storefront-backend/models"
	"gorm.io/gorm"
)

// PaymentRepository is the Postgres payment ledger.
type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, p *models.Payment) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Status == "" {
		p.Status = models.PaymentCreated
	}
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PaymentRepository) FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*models.Payment, error) {
	var p models.Payment
	err := r.db.WithContext(ctx).Where("gateway_order_id = ?", gatewayOrderID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepository) MarkVerified(ctx context.Context, gatewayOrderID, paymentID, orderID string) error {
	return r.update(ctx, gatewayOrderID, map[string]interface{}{
		"status":     models.PaymentVerified,
		"payment_id": paymentID,
		"order_id":   orderID,
	})
}

func (r *PaymentRepository) MarkFailed(ctx context.Context, gatewayOrderID string) error {
	return r.update(ctx, gatewayOrderID, map[string]interface{}{"status": models.PaymentRejected})
}

func (r *PaymentRepository) update(ctx context.Context, gatewayOrderID string, updates map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&models.Payment{}).
		Where("gateway_order_id = ?", gatewayOrderID).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
