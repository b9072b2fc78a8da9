package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"storefront/internal/middleware"
	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// messageResponse is returned by operations that have nothing else to report.
type messageResponse struct {
	Message string `json:"message"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are already out; nothing useful left to tell the client.
		return
	}
}

// writeError writes a model.ErrorResponse carrying the request's correlation id.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, details map[string]any) {
	writeJSON(w, status, model.ErrorResponse{
		Error:         code,
		Message:       message,
		Details:       details,
		CorrelationID: middleware.RequestIDFrom(r.Context()),
	})
}

// writeServiceError maps a service error onto its HTTP status and code.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, logger zerolog.Logger) {
	var (
		stockErr      *model.StockError
		transitionErr *model.TransitionError
		bulkErr       *model.BulkTransitionError
		validationErr *model.ValidationError
		domainErr     *model.DomainError
	)

	switch {
	case errors.As(err, &stockErr):
		writeError(w, r, http.StatusUnprocessableEntity, stockErr.Code(), stockErr.Error(),
			map[string]any{"unavailableItems": stockErr.Issues})
	case errors.As(err, &transitionErr):
		writeError(w, r, http.StatusUnprocessableEntity, model.ErrCodeInvalidStatusTransition, transitionErr.Error(),
			map[string]any{
				"currentStatus":   transitionErr.Current,
				"requestedStatus": transitionErr.Requested,
			})
	case errors.As(err, &bulkErr):
		writeError(w, r, http.StatusUnprocessableEntity, model.ErrCodeInvalidStatusTransition, bulkErr.Error(),
			map[string]any{"invalidOrders": bulkErr.Invalid})
	case errors.As(err, &validationErr):
		writeError(w, r, http.StatusBadRequest, model.ErrCodeValidationFailed, validationErr.Error(),
			map[string]any{"fields": validationErr.Fields})
	case errors.As(err, &domainErr):
		writeError(w, r, domainStatus(domainErr), domainErr.Code, domainErr.Message, nil)
	default:
		logger.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
		writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "internal server error", nil)
	}
}

func domainStatus(err *model.DomainError) int {
	switch err.Code {
	case model.ErrCodeEmptyCart, model.ErrCodeProductUnavailable, model.ErrCodeInsufficientStock:
		return http.StatusUnprocessableEntity
	case model.ErrCodeProductNotFound, model.ErrCodeOrderNotFound, model.ErrCodeCartItemNotFound,
		model.ErrCodeWishlistItemNotFound, model.ErrCodeUserNotFound:
		return http.StatusNotFound
	case model.ErrCodeReservationConflict, model.ErrCodeAlreadyInWishlist:
		return http.StatusConflict
	case model.ErrCodeUserInactive:
		return http.StatusForbidden
	case model.ErrCodeInvalidQuantity, model.ErrCodeInvalidStatus, model.ErrCodeValidationFailed,
		model.ErrCodeMissingField, model.ErrCodeInvalidJSON:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads the request body into dst, writing a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", nil)
		return false
	}
	return true
}

// requireUser returns the user set by middleware.UserIdentity.
func requireUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, ok := middleware.UserID(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, model.ErrCodeUnauthorised, "missing user identity", nil)
	}
	return id, ok
}

// pathUUID parses the named path value, writing a 400 when malformed.
func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeValidationFailed, "invalid "+name, nil)
		return uuid.Nil, false
	}
	return id, true
}
