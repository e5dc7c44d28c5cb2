package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/veo3store/internal/domain/model"
	"github.com/polkiloo/veo3store/internal/server/http/dto"
	"github.com/polkiloo/veo3store/internal/usecase"
)

// AdminHandler serves the review console.
type AdminHandler struct {
	facade AdminFacade
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(facade AdminFacade) *AdminHandler {
	return &AdminHandler{facade: facade}
}

// List handles GET /api/admin/orders.
func (h *AdminHandler) List(c *gin.Context) {
	page, err := parsePage(c)
	if err != nil {
		respondError(c, err)
		return
	}
	filter := model.OrderFilter{
		Status: model.OrderStatus(strings.ToUpper(strings.TrimSpace(c.Query("status")))),
		Search: c.Query("search"),
	}
	list, err := h.facade.AdminOrders(c.Request.Context(), filter, page)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, toOrderList(list))
}

// Get handles GET /api/admin/orders/:id.
func (h *AdminHandler) Get(c *gin.Context) {
	order, err := h.facade.AdminOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, toOrderResponse(order))
}

// Approve handles PUT /api/admin/orders/:id/approve.
func (h *AdminHandler) Approve(c *gin.Context) {
	var req dto.ApproveOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	order, err := h.facade.ApproveOrder(c.Request.Context(), c.Param("id"), CurrentUserID(c), usecase.ApproveInput{
		MaxDevices:      req.MaxDevices,
		DeliveryMethod:  model.DeliveryMethod(req.DeliveryMethod),
		DeliveryContact: req.DeliveryContact,
		AdminNotes:      req.AdminNotes,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, toOrderResponse(order))
}

// Reject handles PUT /api/admin/orders/:id/reject.
func (h *AdminHandler) Reject(c *gin.Context) {
	var req dto.RejectOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	order, err := h.facade.RejectOrder(c.Request.Context(), c.Param("id"), CurrentUserID(c), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, toOrderResponse(order))
}

// Dashboard handles GET /api/admin/dashboard.
func (h *AdminHandler) Dashboard(c *gin.Context) {
	stats, err := h.facade.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, toDashboardResponse(stats))
}
