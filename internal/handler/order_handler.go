package handler

import (
	"net/http"

	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/rs/zerolog"
)

// OrderHandler serves the acting user's orders.
type OrderHandler struct {
	service service.OrderService
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

type orderPageResponse struct {
	Data []*model.OrderResponse `json:"data"`
	Meta model.PageMeta         `json:"meta"`
}

// Create handles POST /api/orders.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req model.CreateOrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	order, err := h.service.CreateOrder(r.Context(), userID, &req)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, model.NewOrderResponse(order))
}

// List handles GET /api/orders?status=&page=&per_page=.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	filter, ok := orderListFilter(w, r, h.logger)
	if !ok {
		return
	}

	page, err := h.service.ListOrders(r.Context(), userID, filter)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, newOrderPageResponse(page))
}

// orderListFilter reads the status, page and per_page query parameters.
func orderListFilter(w http.ResponseWriter, r *http.Request, logger zerolog.Logger) (model.OrderListFilter, bool) {
	var filter model.OrderListFilter
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := model.OrderStatus(raw)
		if !status.Valid() {
			writeServiceError(w, r, model.ErrInvalidStatus, logger)
			return filter, false
		}
		filter.Status = &status
	}
	var ok bool
	if filter.Page, ok = queryInt(r, "page", 1); !ok {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeValidationFailed, "invalid page parameter", nil)
		return filter, false
	}
	if filter.PerPage, ok = queryInt(r, "per_page", 15); !ok {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeValidationFailed, "invalid per_page parameter", nil)
		return filter, false
	}
	return filter, true
}

func newOrderPageResponse(page *model.OrderPage) orderPageResponse {
	resp := orderPageResponse{Data: make([]*model.OrderResponse, len(page.Data)), Meta: page.Meta}
	for i := range page.Data {
		resp.Data[i] = model.NewOrderResponse(&page.Data[i])
	}
	return resp
}

// Get handles GET /api/orders/{number}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	order, err := h.service.GetOrder(r.Context(), userID, r.PathValue("number"))
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, model.NewOrderResponse(order))
}

// Cancel handles POST /api/orders/{number}/cancel.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	order, err := h.service.CancelOrder(r.Context(), userID, r.PathValue("number"))
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, model.NewOrderResponse(order))
}
