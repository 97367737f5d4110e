package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yashrajoria/storefront-backend/services"
)

// OrderController handles checkout and order administration.
type OrderController struct {
	orders      OrderServiceAPI
	fulfillment FulfillmentAPI
}

func NewOrderController(orders OrderServiceAPI, fulfillment FulfillmentAPI) *OrderController {
	return &OrderController{orders: orders, fulfillment: fulfillment}
}

// CreateRazorpayOrder handles POST /api/order/razorpay
func (oc *OrderController) CreateRazorpayOrder(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req services.CheckoutItemsRequest
	if !bindJSON(c, &req) {
		return
	}
	order, err := oc.orders.CreateRazorpayOrder(c.Request.Context(), userID, req.Items)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"order": order})
}

// VerifyRazorpay handles POST /api/order/verifyRazorpay
func (oc *OrderController) VerifyRazorpay(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req services.VerifyRazorpayRequest
	if !bindJSON(c, &req) {
		return
	}
	order, err := oc.orders.PlaceRazorpayOrder(c.Request.Context(), userID, req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, gin.H{"message": "Order placed", "order": order})
}

// CreateStripeSession handles POST /api/order/stripe
func (oc *OrderController) CreateStripeSession(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req services.CheckoutItemsRequest
	if !bindJSON(c, &req) {
		return
	}
	session, err := oc.orders.CreateStripeSession(c.Request.Context(), userID, req.Items)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"session_id": session.ID, "session_url": session.URL})
}

// VerifyStripe handles POST /api/order/verifyStripe
func (oc *OrderController) VerifyStripe(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req services.VerifyStripeRequest
	if !bindJSON(c, &req) {
		return
	}
	order, err := oc.orders.PlaceStripeOrder(c.Request.Context(), userID, req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, gin.H{"message": "Order placed", "order": order})
}

// UserOrders handles POST /api/order/userorders
func (oc *OrderController) UserOrders(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	orders, err := oc.orders.UserOrders(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"orders": orders})
}

// ListOrders handles POST /api/order/list
func (oc *OrderController) ListOrders(c *gin.Context) {
	orders, err := oc.orders.ListOrders(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"orders": orders})
}

// UpdateStatus handles POST /api/order/status
func (oc *OrderController) UpdateStatus(c *gin.Context) {
	var req services.UpdateStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := oc.orders.UpdateStatus(c.Request.Context(), req.OrderID, req.Status); err != nil {
		handleServiceError(c, err)
		return
	}
	respondMessage(c, "Status updated")
}

// ListFulfillmentJobs handles GET /api/order/fulfillment/jobs?status=
func (oc *OrderController) ListFulfillmentJobs(c *gin.Context) {
	jobs, err := oc.fulfillment.ListJobs(c.Request.Context(), c.Query("status"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"jobs": jobs})
}

type retryJobRequest struct {
	JobID string `json:"jobId" binding:"required"`
}

// RetryFulfillmentJob handles POST /api/order/fulfillment/retry
func (oc *OrderController) RetryFulfillmentJob(c *gin.Context) {
	var req retryJobRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := oc.fulfillment.Retry(c.Request.Context(), req.JobID); err != nil {
		handleServiceError(c, err)
		return
	}
	respondMessage(c, "Job queued for retry")
}
