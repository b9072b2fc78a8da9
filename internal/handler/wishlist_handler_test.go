package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestWishlistHandler_Add(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name           string
		mockError      error
		expectedStatus int
	}{
		{name: "saved", expectedStatus: http.StatusCreated},
		{name: "duplicate", mockError: model.ErrAlreadyInWishlist, expectedStatus: http.StatusConflict},
		{name: "inactive product", mockError: model.ErrProductNotFound, expectedStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockWishlistService)
			var ret interface{}
			if tt.mockError == nil {
				ret = &model.WishlistItem{ID: uuid.New(), ProductID: "P1"}
			}
			svc.On("Add", mock.Anything, userID, "P1").Return(ret, tt.mockError)

			w := httptest.NewRecorder()
			NewWishlistHandler(svc, zerolog.Nop()).Add(w,
				newRequest(t, http.MethodPost, "/api/wishlist", model.AddToWishlistRequest{ProductID: "P1"}, &userID, nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestWishlistHandler_MoveToCart(t *testing.T) {
	userID := uuid.New()
	itemID := uuid.New()

	tests := []struct {
		name           string
		body           interface{}
		wantQuantity   int
		moved          bool
		mockError      error
		expectService  bool
		expectedStatus int
		expectedCode   string
	}{
		{name: "no body defaults to one", wantQuantity: 1, moved: true, expectService: true, expectedStatus: http.StatusOK},
		{name: "empty object defaults to one", body: "{}", wantQuantity: 1, moved: true, expectService: true, expectedStatus: http.StatusOK},
		{name: "explicit quantity", body: model.MoveToCartRequest{Quantity: 3}, wantQuantity: 3, moved: true, expectService: true, expectedStatus: http.StatusOK},
		{
			name:           "not enough stock",
			body:           model.MoveToCartRequest{Quantity: 5},
			wantQuantity:   5,
			expectService:  true,
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   model.ErrCodeProductUnavailable,
		},
		{
			name:           "quantity out of range",
			body:           model.MoveToCartRequest{Quantity: 101},
			wantQuantity:   101,
			mockError:      model.ErrInvalidQuantity,
			expectService:  true,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeInvalidQuantity,
		},
		{
			name:           "entry missing",
			wantQuantity:   1,
			mockError:      model.ErrWishlistItemNotFound,
			expectService:  true,
			expectedStatus: http.StatusNotFound,
			expectedCode:   model.ErrCodeWishlistItemNotFound,
		},
		{name: "malformed body", body: "[", expectedStatus: http.StatusBadRequest, expectedCode: model.ErrCodeInvalidJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockWishlistService)
			if tt.expectService {
				svc.On("MoveToCart", mock.Anything, userID, itemID, tt.wantQuantity).Return(tt.moved, tt.mockError)
			}

			w := httptest.NewRecorder()
			req := newRequest(t, http.MethodPost, "/api/wishlist/"+itemID.String()+"/move-to-cart",
				tt.body, &userID, map[string]string{"id": itemID.String()})
			NewWishlistHandler(svc, zerolog.Nop()).MoveToCart(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, decodeErrorBody(t, w).Error)
			} else {
				assert.Contains(t, w.Body.String(), "Product moved to cart successfully")
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestWishlistHandler_ListCheckRemove(t *testing.T) {
	userID := uuid.New()
	itemID := uuid.New()

	svc := new(MockWishlistService)
	svc.On("List", mock.Anything, userID).Return(&model.WishlistResponse{UnavailableItemsRemoved: 2}, nil)
	svc.On("Check", mock.Anything, userID, "P7").Return(true, nil)
	svc.On("Remove", mock.Anything, userID, itemID).Return(model.ErrWishlistItemNotFound)
	svc.On("RemoveByProduct", mock.Anything, userID, "P7").Return(nil)
	svc.On("Clear", mock.Anything, userID).Return(int64(2), nil)
	h := NewWishlistHandler(svc, zerolog.Nop())

	w := httptest.NewRecorder()
	h.List(w, newRequest(t, http.MethodGet, "/api/wishlist", nil, &userID, nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"unavailableItemsRemoved":2`)

	w = httptest.NewRecorder()
	h.Check(w, newRequest(t, http.MethodGet, "/api/wishlist/check/P7", nil, &userID, map[string]string{"productId": "P7"}))
	require.Equal(t, http.StatusOK, w.Code)
	var check checkResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&check))
	assert.Equal(t, checkResponse{ProductID: "P7", InWishlist: true}, check)

	w = httptest.NewRecorder()
	h.Remove(w, newRequest(t, http.MethodDelete, "/api/wishlist/"+itemID.String(), nil, &userID, map[string]string{"id": itemID.String()}))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	h.RemoveByProduct(w, newRequest(t, http.MethodDelete, "/api/wishlist/products/P7", nil, &userID, map[string]string{"productId": "P7"}))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	h.Clear(w, newRequest(t, http.MethodDelete, "/api/wishlist", nil, &userID, nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"itemsRemoved":2`)

	svc.AssertExpectations(t)
}
