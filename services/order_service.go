package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/yashrajoria/storefront-backend/common/errors"
	"github.com/yashrajoria/storefront-backend/models"
	awspkg "github.com/yashrajoria/storefront-backend/pkg/aws"
	"github.com/yashrajoria/storefront-backend/providers"
	"github.com/yashrajoria/storefront-backend/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const EventOrderPlaced = "order.placed"

type OrderItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	SKU       string `json:"sku_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

// PlaceOrderRequest carries the items and where to ship them. Address wins
// over AddressID; with neither, the user's primary address is used.
type PlaceOrderRequest struct {
	Items     []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
	Address   *models.Address    `json:"address"`
	AddressID string             `json:"addressId"`
}

type CheckoutItemsRequest struct {
	Items []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

type VerifyRazorpayRequest struct {
	PlaceOrderRequest
	RazorpayOrderID   string `json:"razorpay_order_id" binding:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id" binding:"required"`
	RazorpaySignature string `json:"razorpay_signature" binding:"required"`
}

type VerifyStripeRequest struct {
	PlaceOrderRequest
	SessionID string `json:"session_id" binding:"required"`
}

type UpdateStatusRequest struct {
	OrderID string `json:"orderId" binding:"required"`
	Status  string `json:"status" binding:"required"`
}

// CartClearer empties a user's cart after checkout.
type CartClearer interface {
	Clear(ctx context.Context, userID string) error
}

// OrderDispatcher hands a placed order to fulfillment.
type OrderDispatcher interface {
	Dispatch(ctx context.Context, order *models.Order) error
}

type OrderNotifier interface {
	SendOrderConfirmation(ctx context.Context, to, name string, order *models.Order) error
}

// OrderDeps groups the collaborators of OrderService. Payments, Stripe,
// Events and Mail are optional.
type OrderDeps struct {
	Products    repository.ProductRepo
	Orders      repository.OrderRepo
	Users       repository.UserRepo
	Payments    repository.PaymentRepo
	Carts       CartClearer
	Stock       *StockReserver
	Razorpay    providers.OrderGateway
	Stripe      providers.CheckoutGateway
	Fulfillment OrderDispatcher
	Events      awspkg.SNSPublisher
	Metrics     awspkg.Recorder
	Mail        OrderNotifier

	RazorpaySecret string
	Currency       string
	EventsTopicARN string
	FrontendURL    string
}

type OrderService struct {
	OrderDeps
	log *zap.Logger
}

func NewOrderService(deps OrderDeps, log *zap.Logger) *OrderService {
	if deps.Metrics == nil {
		deps.Metrics = awspkg.NopRecorder{}
	}
	if deps.Stock == nil {
		deps.Stock = NewStockReserver(deps.Products, log)
	}
	if deps.Currency == "" {
		deps.Currency = "INR"
	}
	return &OrderService{OrderDeps: deps, log: log}
}

type quote struct {
	items    []models.LineItem
	stock    []StockLine
	subtotal float64
}

// quoteItems merges duplicate lines and prices them against current stock
// without changing anything.
func (s *OrderService) quoteItems(ctx context.Context, items []OrderItemRequest) (*quote, error) {
	if len(items) == 0 {
		return nil, apperrors.ErrInvalidOrder.WithMessage("At least one item is required")
	}

	type lineKey struct {
		product primitive.ObjectID
		sku     string
	}
	merged := make([]StockLine, 0, len(items))
	index := make(map[lineKey]int, len(items))
	for _, it := range items {
		if it.Quantity < 1 {
			return nil, apperrors.ErrInvalidOrder.WithMessage("Quantity must be at least 1")
		}
		pid, err := primitive.ObjectIDFromHex(it.ProductID)
		if err != nil {
			return nil, apperrors.ErrInvalidOrder.WithMessage("Invalid product id")
		}
		k := lineKey{pid, it.SKU}
		if i, ok := index[k]; ok {
			merged[i].Quantity += it.Quantity
			continue
		}
		index[k] = len(merged)
		merged = append(merged, StockLine{ProductID: pid, SKU: it.SKU, Quantity: it.Quantity})
	}

	q := &quote{stock: merged, items: make([]models.LineItem, 0, len(merged))}
	for _, l := range merged {
		product, err := s.Products.FindByID(ctx, l.ProductID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.ErrInvalidOrder.WithMessage(fmt.Sprintf("Product %s not found", l.ProductID.Hex()))
		}
		if err != nil {
			return nil, apperrors.ErrInternalServer.Wrap(err)
		}
		variant, ok := product.VariantBySKU(l.SKU)
		if !ok {
			return nil, apperrors.ErrInvalidOrder.WithMessage(fmt.Sprintf("Variant %s not found", l.SKU))
		}
		if l.Quantity > variant.Stock {
			return nil, apperrors.ErrInsufficientStock.Wrap(fmt.Errorf("sku %s: requested %d, available %d", l.SKU, l.Quantity, variant.Stock))
		}
		price := variant.Price()
		q.items = append(q.items, models.LineItem{
			ProductID: l.ProductID,
			SKU:       l.SKU,
			Name:      product.Name,
			Size:      variant.FilterValue,
			Quantity:  l.Quantity,
			Price:     price,
		})
		q.subtotal += price * float64(l.Quantity)
	}
	return q, nil
}

func minorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// amount is the total in minor units, summed per line the way gateway
// checkouts price it.
func (q *quote) amount() int64 {
	var total int64
	for _, li := range q.items {
		total += minorUnits(li.Price) * int64(li.Quantity)
	}
	return total
}

// CreateRazorpayOrder prices the items server side and opens a gateway order for the total.
func (s *OrderService) CreateRazorpayOrder(ctx context.Context, userID string, items []OrderItemRequest) (*models.GatewayOrder, error) {
	if s.Razorpay == nil {
		return nil, apperrors.ErrServiceUnavailable.WithMessage("Razorpay is not configured")
	}
	q, err := s.quoteItems(ctx, items)
	if err != nil {
		return nil, err
	}

	receipt := "rcpt_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:20]
	amount := q.amount()
	gw, err := s.Razorpay.CreateOrder(ctx, amount, s.Currency, receipt)
	if err != nil {
		s.log.Error("razorpay order creation failed", zap.String("user_id", userID), zap.Error(err))
		return nil, apperrors.ErrBadGateway.Wrap(err)
	}

	if s.Payments != nil {
		p := &models.Payment{
			Gateway:        models.PaymentRazorpay,
			GatewayOrderID: gw.ID,
			UserID:         userID,
			Amount:         gw.Amount,
			Currency:       gw.Currency,
		}
		if err := s.Payments.Create(ctx, p); err != nil {
			s.log.Warn("failed to record payment", zap.String("gateway_order_id", gw.ID), zap.Error(err))
		}
	}
	return gw, nil
}

// CreateStripeSession opens a hosted Checkout session for the items.
func (s *OrderService) CreateStripeSession(ctx context.Context, userID string, items []OrderItemRequest) (*models.GatewayOrder, error) {
	if s.Stripe == nil {
		return nil, apperrors.ErrServiceUnavailable.WithMessage("Stripe is not configured")
	}
	q, err := s.quoteItems(ctx, items)
	if err != nil {
		return nil, err
	}

	lines := make([]providers.CheckoutLine, 0, len(q.items))
	for _, li := range q.items {
		lines = append(lines, providers.CheckoutLine{Name: li.Name, UnitPrice: minorUnits(li.Price), Quantity: int64(li.Quantity)})
	}
	base := strings.TrimRight(s.FrontendURL, "/")
	gw, err := s.Stripe.CreateCheckoutSession(ctx, providers.CheckoutRequest{
		UserID:     userID,
		Currency:   s.Currency,
		Lines:      lines,
		SuccessURL: base + "/verify?success=true&session_id={CHECKOUT_SESSION_ID}",
		CancelURL:  base + "/verify?success=false",
	})
	if err != nil {
		s.log.Error("stripe session creation failed", zap.String("user_id", userID), zap.Error(err))
		return nil, apperrors.ErrBadGateway.Wrap(err)
	}

	if s.Payments != nil {
		p := &models.Payment{
			Gateway:        models.PaymentStripe,
			GatewayOrderID: gw.ID,
			UserID:         userID,
			Amount:         gw.Amount,
			Currency:       gw.Currency,
		}
		if err := s.Payments.Create(ctx, p); err != nil {
			s.log.Warn("failed to record payment", zap.String("gateway_order_id", gw.ID), zap.Error(err))
		}
	}
	return gw, nil
}

func (s *OrderService) PlaceRazorpayOrder(ctx context.Context, userID string, req VerifyRazorpayRequest) (*models.Order, error) {
	verifier := RazorpayVerifier{
		OrderID:   req.RazorpayOrderID,
		PaymentID: req.RazorpayPaymentID,
		Signature: req.RazorpaySignature,
		Secret:    s.RazorpaySecret,
		Ledger:    s.Payments,
	}
	order, err := s.PlaceOrder(ctx, userID, req.PlaceOrderRequest, verifier)
	if errors.Is(err, apperrors.ErrPaymentFailed) && s.Payments != nil {
		if lerr := s.Payments.MarkFailed(ctx, req.RazorpayOrderID); lerr != nil && !errors.Is(lerr, repository.ErrNotFound) {
			s.log.Warn("failed to mark payment failed", zap.String("gateway_order_id", req.RazorpayOrderID), zap.Error(lerr))
		}
	}
	return order, err
}

func (s *OrderService) PlaceStripeOrder(ctx context.Context, userID string, req VerifyStripeRequest) (*models.Order, error) {
	return s.PlaceOrder(ctx, userID, req.PlaceOrderRequest, StripeVerifier{SessionID: req.SessionID, Gateway: s.Stripe})
}

// PlaceOrder verifies payment, reserves stock for every line or none, and
// persists the order. Cart clearing, events and fulfillment happen after
// the order exists and never fail the request.
func (s *OrderService) PlaceOrder(ctx context.Context, userID string, req PlaceOrderRequest, verifier PaymentVerifier) (*models.Order, error) {
	verified, err := verifier.Verify(ctx, userID)
	if err != nil {
		s.reject(ctx, userID, "payment", err)
		return nil, err
	}

	payment := verified.PaymentInfo

	if existing, err := s.Orders.FindByPaymentID(ctx, payment.PaymentID); err == nil {
		if existing.UserID != userID {
			return nil, apperrors.ErrPaymentFailed
		}
		return existing, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.ErrInternalServer.Wrap(err)
	}

	address, err := s.resolveAddress(ctx, userID, req)
	if err != nil {
		return nil, err
	}

	q, err := s.quoteItems(ctx, req.Items)
	if err != nil {
		s.reject(ctx, userID, "validation", err)
		return nil, err
	}
	if verified.HasAmount && verified.Charged != q.amount() {
		s.log.Warn("charged amount does not match order total",
			zap.String("user_id", userID),
			zap.String("gateway_order_id", payment.GatewayOrderID),
			zap.Int64("charged", verified.Charged),
			zap.Int64("expected", q.amount()),
		)
		s.reject(ctx, userID, "payment", apperrors.ErrPaymentFailed)
		return nil, apperrors.ErrPaymentFailed
	}

	if err := s.Stock.Reserve(ctx, q.stock); err != nil {
		s.reject(ctx, userID, "stock", err)
		return nil, err
	}

	order := &models.Order{
		UserID:    userID,
		Address:   address,
		LineItems: q.items,
		Price:     models.PriceSummary{Subtotal: q.subtotal, Shipping: 0, Total: q.subtotal},
		Status:    models.StatusOrderPlaced,
		Payment:   payment,
	}
	if err := s.Orders.Create(ctx, order); err != nil {
		s.Stock.Release(ctx, q.stock)
		if errors.Is(err, repository.ErrDuplicate) {
			if existing, ferr := s.Orders.FindByPaymentID(ctx, payment.PaymentID); ferr == nil && existing.UserID == userID {
				return existing, nil
			}
		}
		s.log.Error("failed to persist order", zap.String("user_id", userID), zap.Error(err))
		return nil, apperrors.ErrInternalServer.Wrap(err)
	}

	s.log.Info("order placed",
		zap.String("order_id", order.ID.Hex()),
		zap.String("user_id", userID),
		zap.String("payment_method", payment.Method),
		zap.Float64("total", order.Price.Total),
	)
	_ = s.Metrics.RecordCount(ctx, awspkg.MetricOrdersCreated, map[string]string{"PaymentMethod": payment.Method})

	s.afterPlaced(ctx, order)
	return order, nil
}

func (s *OrderService) afterPlaced(ctx context.Context, order *models.Order) {
	if s.Carts != nil {
		if err := s.Carts.Clear(ctx, order.UserID); err != nil {
			s.log.Warn("failed to clear cart", zap.String("user_id", order.UserID), zap.Error(err))
		}
	}

	if s.Payments != nil {
		if err := s.Payments.MarkVerified(ctx, order.Payment.GatewayOrderID, order.Payment.PaymentID, order.ID.Hex()); err != nil && !errors.Is(err, repository.ErrNotFound) {
			s.log.Warn("failed to mark payment verified", zap.String("gateway_order_id", order.Payment.GatewayOrderID), zap.Error(err))
		}
	}

	s.publishPlaced(ctx, order)

	if s.Mail != nil && order.Address.Email != "" {
		name := strings.TrimSpace(order.Address.FirstName + " " + order.Address.LastName)
		if err := s.Mail.SendOrderConfirmation(ctx, order.Address.Email, name, order); err != nil {
			s.log.Warn("failed to send order confirmation", zap.String("order_id", order.ID.Hex()), zap.Error(err))
		}
	}

	if s.Fulfillment != nil {
		// Failures are queued by the dispatcher.
		_ = s.Fulfillment.Dispatch(ctx, order)
	}
}

type orderPlacedEvent struct {
	EventType string            `json:"eventType"`
	OrderID   string            `json:"orderId"`
	UserID    string            `json:"userId"`
	Total     float64           `json:"total"`
	Items     []models.LineItem `json:"items"`
	Timestamp time.Time         `json:"timestamp"`
}

func (s *OrderService) publishPlaced(ctx context.Context, order *models.Order) {
	if s.Events == nil || s.EventsTopicARN == "" {
		return
	}
	msg, err := json.Marshal(orderPlacedEvent{
		EventType: EventOrderPlaced,
		OrderID:   order.ID.Hex(),
		UserID:    order.UserID,
		Total:     order.Price.Total,
		Items:     order.LineItems,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return
	}
	if err := s.Events.Publish(ctx, s.EventsTopicARN, EventOrderPlaced, msg); err != nil {
		s.log.Warn("SNS publish failed", zap.String("order_id", order.ID.Hex()), zap.Error(err))
	}
}

func (s *OrderService) reject(ctx context.Context, userID, reason string, err error) {
	s.log.Info("order rejected", zap.String("user_id", userID), zap.String("reason", reason), zap.Error(err))
	_ = s.Metrics.RecordCount(ctx, awspkg.MetricOrdersRejected, map[string]string{"Reason": reason})
}

func (s *OrderService) resolveAddress(ctx context.Context, userID string, req PlaceOrderRequest) (models.Address, error) {
	if req.Address != nil {
		return *req.Address, nil
	}

	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return models.Address{}, apperrors.ErrUnauthorized
	}
	user, err := s.Users.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return models.Address{}, apperrors.ErrNotFound.WithMessage("User not found")
	}
	if err != nil {
		return models.Address{}, apperrors.ErrInternalServer.Wrap(err)
	}

	addressID := req.AddressID
	if addressID == "" {
		addressID = user.PrimaryAddressID
	}
	if addressID == "" {
		return models.Address{}, apperrors.ErrInvalidOrder.WithMessage("Delivery address is required")
	}
	addr, _ := user.AddressByID(addressID)
	if addr == nil {
		return models.Address{}, apperrors.ErrNotFound.WithMessage("Address not found")
	}
	return *addr, nil
}

func (s *OrderService) ListOrders(ctx context.Context) ([]models.Order, error) {
	orders, err := s.Orders.FindAll(ctx)
	if err != nil {
		return nil, apperrors.ErrInternalServer.Wrap(err)
	}
	return orders, nil
}

func (s *OrderService) UserOrders(ctx context.Context, userID string) ([]models.Order, error) {
	orders, err := s.Orders.FindByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.ErrInternalServer.Wrap(err)
	}
	return orders, nil
}

// UpdateStatus sets any known status. Transitions are not restricted.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID, status string) error {
	if !models.IsValidStatus(status) {
		return apperrors.ErrValidation.WithMessage("Invalid order status")
	}
	id, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		return apperrors.ErrInvalidInput.WithMessage("Invalid order id")
	}
	if err := s.Orders.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.ErrNotFound.WithMessage("Order not found")
		}
		return apperrors.ErrInternalServer.Wrap(err)
	}
	return nil
}
