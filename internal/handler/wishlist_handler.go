package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/rs/zerolog"
)

// WishlistHandler serves the acting user's wishlist.
type WishlistHandler struct {
	service service.WishlistService
	logger  zerolog.Logger
}

// NewWishlistHandler creates a new wishlist handler.
func NewWishlistHandler(service service.WishlistService, logger zerolog.Logger) *WishlistHandler {
	return &WishlistHandler{
		service: service,
		logger:  logger.With().Str("handler", "wishlist").Logger(),
	}
}

type checkResponse struct {
	ProductID  string `json:"productId"`
	InWishlist bool   `json:"inWishlist"`
}

// List handles GET /api/wishlist.
func (h *WishlistHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	list, err := h.service.List(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// Add handles POST /api/wishlist.
func (h *WishlistHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req model.AddToWishlistRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	item, err := h.service.Add(r.Context(), userID, req.ProductID)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// Remove handles DELETE /api/wishlist/{id}.
func (h *WishlistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	itemID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.Remove(r.Context(), userID, itemID); err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Product removed from wishlist"})
}

// RemoveByProduct handles DELETE /api/wishlist/products/{productId}.
func (h *WishlistHandler) RemoveByProduct(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.service.RemoveByProduct(r.Context(), userID, r.PathValue("productId")); err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Product removed from wishlist"})
}

// Clear handles DELETE /api/wishlist.
func (h *WishlistHandler) Clear(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	n, err := h.service.Clear(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, clearResponse{Message: "Wishlist cleared", ItemsRemoved: n})
}

// Check handles GET /api/wishlist/check/{productId}.
func (h *WishlistHandler) Check(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	productID := r.PathValue("productId")
	saved, err := h.service.Check(r.Context(), userID, productID)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, checkResponse{ProductID: productID, InWishlist: saved})
}

// MoveToCart handles POST /api/wishlist/{id}/move-to-cart. The body is
// optional and the quantity defaults to 1.
func (h *WishlistHandler) MoveToCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	itemID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	req := model.MoveToCartRequest{Quantity: 1}
	if r.Body != nil {
		if err := decodeBody(r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", nil)
			return
		}
	}

	moved, err := h.service.MoveToCart(r.Context(), userID, itemID, req.Quantity)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	if !moved {
		writeError(w, r, http.StatusUnprocessableEntity, model.ErrCodeProductUnavailable,
			"Product is not available or out of stock", nil)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Product moved to cart successfully"})
}

// decodeBody decodes JSON into dst, treating an empty body as no-op.
func decodeBody(r *http.Request, dst interface{}) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
