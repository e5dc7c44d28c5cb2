package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/veo3store/internal/domain/model"
	"github.com/polkiloo/veo3store/internal/server/http/dto"
)

// OrderHandler manages customer order endpoints.
type OrderHandler struct {
	facade OrderFacade
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade OrderFacade) *OrderHandler {
	return &OrderHandler{facade: facade}
}

// Create handles POST /api/orders.
func (h *OrderHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	checkout, err := h.facade.CreateOrder(c.Request.Context(), CurrentUserID(c), req.PackageID, model.PaymentMethod(req.PaymentMethod))
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusCreated, toCheckoutResponse(checkout))
}

// Get handles GET /api/orders/:id. Payment instructions accompany unpaid orders only.
func (h *OrderHandler) Get(c *gin.Context) {
	checkout, err := h.facade.Order(c.Request.Context(), c.Param("id"), CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, toCheckoutResponse(checkout))
}

// Confirm handles POST /api/orders/:id/confirm.
func (h *OrderHandler) Confirm(c *gin.Context) {
	order, err := h.facade.ConfirmPayment(c.Request.Context(), c.Param("id"), CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, toOrderResponse(order))
}

// Status handles GET /api/orders/:id/status.
func (h *OrderHandler) Status(c *gin.Context) {
	status, err := h.facade.OrderStatus(c.Request.Context(), c.Param("id"), CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, dto.OrderStatusResponse{Status: string(status)})
}

// ListMine handles GET /api/users/orders.
func (h *OrderHandler) ListMine(c *gin.Context) {
	page, err := parsePage(c)
	if err != nil {
		respondError(c, err)
		return
	}
	list, err := h.facade.UserOrders(c.Request.Context(), CurrentUserID(c), page)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, toOrderList(list))
}

func toCheckoutResponse(checkout *model.Checkout) dto.CheckoutResponse {
	resp := dto.CheckoutResponse{Order: toOrderResponse(checkout.Order)}
	if checkout.Order.Status == model.OrderStatusPending {
		resp.Payment = toPaymentResponse(checkout.Payment)
	}
	return resp
}
