package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	domain "github.com/loihd98/web-ecommerce-sub000/internal/entity"
	"github.com/loihd98/web-ecommerce-sub000/internal/usecase"
)

type OrderHandler struct {
	create  *usecase.CreateOrder
	status  *usecase.OrderStatus
	queries *usecase.OrderQueries
}

func NewOrderHandler(create *usecase.CreateOrder, status *usecase.OrderStatus, queries *usecase.OrderQueries) *OrderHandler {
	return &OrderHandler{create: create, status: status, queries: queries}
}

type orderItemReq struct {
	ProductID     string `json:"productId" binding:"required"`
	PriceCents    int64  `json:"priceCents" binding:"min=0"`
	DiscountCents int64  `json:"discountCents" binding:"min=0"`
	Quantity      int    `json:"quantity" binding:"required,min=1"`
}

type shippingReq struct {
	FullName string `json:"fullName" binding:"required"`
	Phone    string `json:"phone" binding:"required"`
	Email    string `json:"email" binding:"omitempty,email"`
	Address  string `json:"address" binding:"required"`
	City     string `json:"city" binding:"required"`
	District string `json:"district"`
	Ward     string `json:"ward"`
	Notes    string `json:"notes"`
}

type createOrderReq struct {
	UserID           string         `json:"userId" binding:"required"`
	PaymentMethod    string         `json:"paymentMethod" binding:"required,oneof=cod card momo vnpay"`
	Items            []orderItemReq `json:"items" binding:"required,min=1,dive"`
	Shipping         shippingReq    `json:"shipping" binding:"required"`
	SubtotalCents    int64          `json:"subtotalCents" binding:"min=0"`
	DiscountCents    int64          `json:"discountCents" binding:"min=0"`
	ShippingFeeCents int64          `json:"shippingFeeCents" binding:"min=0"`
	TotalCents       int64          `json:"totalCents" binding:"min=0"`
}

type lineItemResp struct {
	ProductID     string `json:"productId"`
	Name          string `json:"name"`
	PriceCents    int64  `json:"priceCents"`
	DiscountCents int64  `json:"discountCents,omitempty"`
	Quantity      int    `json:"quantity"`
}

type orderResp struct {
	ID               string         `json:"id"`
	OrderNumber      string         `json:"orderNumber"`
	UserID           string         `json:"userId"`
	Items            []lineItemResp `json:"items"`
	Shipping         shippingReq    `json:"shipping"`
	SubtotalCents    int64          `json:"subtotalCents"`
	DiscountCents    int64          `json:"discountCents"`
	ShippingFeeCents int64          `json:"shippingFeeCents"`
	TotalCents       int64          `json:"totalCents"`
	Status           string         `json:"status"`
	PaymentStatus    string         `json:"paymentStatus"`
	PaymentMethod    string         `json:"paymentMethod"`
	CancelReason     string         `json:"cancelReason,omitempty"`
	CreatedAt        time.Time      `json:"createdAt"`
	ShippedAt        *time.Time     `json:"shippedAt,omitempty"`
	DeliveredAt      *time.Time     `json:"deliveredAt,omitempty"`
	CancelledAt      *time.Time     `json:"cancelledAt,omitempty"`
}

func toOrderResp(o *domain.Order) orderResp {
	items := make([]lineItemResp, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, lineItemResp{
			ProductID:     it.ProductID,
			Name:          it.Name,
			PriceCents:    it.PriceCents,
			DiscountCents: it.DiscountCents,
			Quantity:      it.Quantity,
		})
	}
	return orderResp{
		ID:          o.ID,
		OrderNumber: o.OrderNumber,
		UserID:      o.UserID,
		Items:       items,
		Shipping: shippingReq{
			FullName: o.Shipping.FullName,
			Phone:    o.Shipping.Phone,
			Email:    o.Shipping.Email,
			Address:  o.Shipping.Address,
			City:     o.Shipping.City,
			District: o.Shipping.District,
			Ward:     o.Shipping.Ward,
			Notes:    o.Shipping.Notes,
		},
		SubtotalCents:    o.SubtotalCents,
		DiscountCents:    o.DiscountCents,
		ShippingFeeCents: o.ShippingFeeCents,
		TotalCents:       o.TotalCents,
		Status:           string(o.Status),
		PaymentStatus:    string(o.PaymentStatus),
		PaymentMethod:    string(o.PaymentMethod),
		CancelReason:     o.CancelReason,
		CreatedAt:        o.CreatedAt,
		ShippedAt:        o.ShippedAt,
		DeliveredAt:      o.DeliveredAt,
		CancelledAt:      o.CancelledAt,
	}
}

// CreateOrder handles POST /v1/orders.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req createOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	items := make([]usecase.CreateOrderItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, usecase.CreateOrderItem{
			ProductID:     it.ProductID,
			PriceCents:    it.PriceCents,
			DiscountCents: it.DiscountCents,
			Quantity:      it.Quantity,
		})
	}

	order, err := h.create.Execute(ctx, usecase.CreateOrderInput{
		UserID:         req.UserID,
		IdempotencyKey: c.GetHeader("X-Idempotency-Key"),
		PaymentMethod:  domain.PaymentMethod(req.PaymentMethod),
		Items:          items,
		Shipping: domain.ShippingInfo{
			FullName: req.Shipping.FullName,
			Phone:    req.Shipping.Phone,
			Email:    req.Shipping.Email,
			Address:  req.Shipping.Address,
			City:     req.Shipping.City,
			District: req.Shipping.District,
			Ward:     req.Shipping.Ward,
			Notes:    req.Shipping.Notes,
		},
		SubtotalCents:    req.SubtotalCents,
		DiscountCents:    req.DiscountCents,
		ShippingFeeCents: req.ShippingFeeCents,
		TotalCents:       req.TotalCents,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toOrderResp(order))
}

// ListOrders handles GET /v1/orders?page=&limit=&status=&userId=.
func (h *OrderHandler) ListOrders(c *gin.Context) {
	status := domain.Status(c.Query("status"))
	if status != "" && !status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": "unknown status filter"})
		return
	}

	page, err := h.queries.List(c.Request.Context(), usecase.ListOrdersQuery{
		Status: status,
		UserID: c.Query("userId"),
		Page:   intQuery(c, "page", 1),
		Limit:  intQuery(c, "limit", 10),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	writePage(c, page)
}

// ListUserOrders handles GET /v1/users/:id/orders.
func (h *OrderHandler) ListUserOrders(c *gin.Context) {
	page, err := h.queries.ListByUser(c.Request.Context(), c.Param("id"),
		intQuery(c, "page", 1), intQuery(c, "limit", 10))
	if err != nil {
		writeError(c, err)
		return
	}
	writePage(c, page)
}

// GetOrderByID handles GET /v1/orders/:id.
func (h *OrderHandler) GetOrderByID(c *gin.Context) {
	order, err := h.queries.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResp(order))
}

type updateStatusReq struct {
	Status string `json:"status" binding:"required,oneof=pending confirmed processing shipped delivered cancelled"`
}

// UpdateStatus handles PATCH /v1/orders/:id/status.
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var req updateStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": err.Error()})
		return
	}
	order, err := h.status.Update(c.Request.Context(), c.Param("id"), domain.Status(req.Status))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResp(order))
}

type updatePaymentStatusReq struct {
	PaymentStatus string `json:"paymentStatus" binding:"required,oneof=pending paid failed refunded"`
}

// UpdatePaymentStatus handles PATCH /v1/orders/:id/payment-status.
func (h *OrderHandler) UpdatePaymentStatus(c *gin.Context) {
	var req updatePaymentStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": err.Error()})
		return
	}
	order, err := h.status.UpdatePayment(c.Request.Context(), c.Param("id"), domain.PaymentStatus(req.PaymentStatus))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResp(order))
}

type cancelOrderReq struct {
	Reason string `json:"reason"`
}

// CancelOrder handles POST /v1/orders/:id/cancel.
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	var req cancelOrderReq
	_ = c.ShouldBindJSON(&req) // body optional
	order, err := h.status.Cancel(c.Request.Context(), c.Param("id"), req.Reason)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResp(order))
}

// Stats handles GET /v1/orders/stats (admin dashboard).
func (h *OrderHandler) Stats(c *gin.Context) {
	stats, err := h.queries.Stats(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func writePage(c *gin.Context, page usecase.OrderPage) {
	orders := make([]orderResp, 0, len(page.Orders))
	for i := range page.Orders {
		orders = append(orders, toOrderResp(&page.Orders[i]))
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders, "total": page.Total, "pages": page.Pages})
}

func intQuery(c *gin.Context, name string, def int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil || v < 1 {
		return def
	}
	return v
}

func writeError(c *gin.Context, err error) {
	var transition *domain.InvalidTransitionError
	switch {
	case errors.Is(err, usecase.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": err.Error()})
	case errors.As(err, &transition):
		c.JSON(http.StatusConflict, gin.H{"error": "invalid_transition", "message": transition.Error()})
	case errors.Is(err, usecase.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "conflict", "message": err.Error()})
	case errors.Is(err, usecase.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": "duplicate_request", "message": err.Error()})
	case errors.Is(err, usecase.ErrStockConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "out_of_stock", "message": err.Error()})
	case errors.Is(err, usecase.ErrPriceMismatch),
		errors.Is(err, domain.ErrNoItems),
		errors.Is(err, domain.ErrTotalMismatch),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrBadShippingInf):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_failed", "message": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "order operation failed"})
	}
}
