package handler

import (
	"net/http"

	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/rs/zerolog"
)

// AdminHandler serves back-office order and account operations.
type AdminHandler struct {
	orders service.OrderService
	users  service.UserService
	logger zerolog.Logger
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(orders service.OrderService, users service.UserService, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		orders: orders,
		users:  users,
		logger: logger.With().Str("handler", "admin").Logger(),
	}
}

type statusChangeResponse struct {
	Order          *model.OrderResponse `json:"order"`
	PreviousStatus model.OrderStatus    `json:"previousStatus"`
	NewStatus      model.OrderStatus    `json:"newStatus"`
}

type deleteUserResponse struct {
	Message string              `json:"message"`
	Outcome model.DeleteOutcome `json:"outcome"`
}

// ListOrders handles GET /api/admin/orders across every customer.
func (h *AdminHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	filter, ok := orderListFilter(w, r, h.logger)
	if !ok {
		return
	}

	page, err := h.orders.ListAllOrders(r.Context(), filter)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, newOrderPageResponse(page))
}

// GetOrder handles GET /api/admin/orders/{number}.
func (h *AdminHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.GetOrderByNumber(r.Context(), r.PathValue("number"))
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, model.NewOrderResponse(order))
}

// UpdateStatus handles PUT /api/admin/orders/{number}/status.
func (h *AdminHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	change, err := h.orders.UpdateStatus(r.Context(), r.PathValue("number"), &req)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, statusChangeResponse{
		Order:          model.NewOrderResponse(change.Order),
		PreviousStatus: change.PreviousStatus,
		NewStatus:      change.Order.Status,
	})
}

// BulkUpdateStatus handles POST /api/admin/orders/bulk-status.
func (h *AdminHandler) BulkUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req model.BulkUpdateStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.orders.BulkUpdateStatus(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// DeleteUser handles DELETE /api/admin/users/{id}.
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	outcome, err := h.users.DeleteUser(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	msg := "User deleted"
	if outcome == model.DeleteOutcomeDeactivated {
		msg = "User has orders and was deactivated"
	}
	writeJSON(w, http.StatusOK, deleteUserResponse{Message: msg, Outcome: outcome})
}
