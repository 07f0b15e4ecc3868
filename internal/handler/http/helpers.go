package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/lara-shop/lara-api/internal/auth"
	"github.com/lara-shop/lara-api/internal/cart"
	"github.com/lara-shop/lara-api/internal/coupon"
	"github.com/lara-shop/lara-api/internal/order"
	"github.com/lara-shop/lara-api/internal/payment"
	"github.com/lara-shop/lara-api/internal/product"
	"github.com/lara-shop/lara-api/internal/returns"
	"github.com/lara-shop/lara-api/internal/review"
	"github.com/lara-shop/lara-api/internal/user"
	"github.com/lara-shop/lara-api/internal/wishlist"
)

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

type ValidationErrorDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationErrorResponse struct {
	Success bool                    `json:"success"`
	Message string                  `json:"message"`
	Details []ValidationErrorDetail `json:"details"`
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		zlog.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"success":false,"message":"Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		zlog.Error().Err(err).Msg("Failed to write JSON response")
	}
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, envelope{Success: false, Message: message})
}

func respondWithData(w http.ResponseWriter, code int, data any) {
	respondWithJSON(w, code, envelope{Success: true, Data: data})
}

func respondWithMessage(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, envelope{Success: true, Message: message})
}

// decodeAndValidate decodes the body with unknown fields rejected,
// then runs struct validation. It writes the error response itself and
// reports whether the handler should continue.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, validate *validator.Validate, dst any) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		zlog.Error().Err(err).Msg("Failed to decode request body")
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request payload: %v", err))
		return false
	}

	if err := validate.Struct(dst); err != nil {
		validationErrors, ok := err.(validator.ValidationErrors)
		if !ok {
			zlog.Error().Err(err).Msg("Unexpected error type during validation")
			respondWithError(w, http.StatusInternalServerError, "Internal validation error")
			return false
		}
		respondWithJSON(w, http.StatusBadRequest, ValidationErrorResponse{
			Success: false,
			Message: "Validation failed",
			Details: formatValidationErrors(validationErrors),
		})
		return false
	}
	return true
}

func formatValidationErrors(errs validator.ValidationErrors) []ValidationErrorDetail {
	details := make([]ValidationErrorDetail, 0, len(errs))
	for _, fe := range errs {
		var msg string
		switch fe.Tag() {
		case "required":
			msg = "is required"
		case "email":
			msg = "must be a valid email address"
		case "min":
			msg = fmt.Sprintf("must be at least %s characters", fe.Param())
		case "max":
			msg = fmt.Sprintf("must be at most %s characters", fe.Param())
		case "gt":
			msg = fmt.Sprintf("must be greater than %s", fe.Param())
		case "gte":
			msg = fmt.Sprintf("must be at least %s", fe.Param())
		case "lte":
			msg = fmt.Sprintf("must be at most %s", fe.Param())
		default:
			msg = fmt.Sprintf("failed validation on %q", fe.Tag())
		}
		details = append(details, ValidationErrorDetail{Field: fe.Field(), Message: msg})
	}
	return details
}

// uuidParam extracts and parses a UUID route parameter, writing the
// 400 response on failure.
func uuidParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	raw := chi.URLParam(r, name)
	id, err := uuid.FromString(raw)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Invalid %s format", name))
		return uuid.Nil, false
	}
	return id, true
}

// principal returns the authenticated caller; the auth middleware
// guarantees presence on protected routes, this guards against
// misrouted handlers.
func principal(w http.ResponseWriter, r *http.Request) (*auth.Principal, bool) {
	p := auth.PrincipalFrom(r.Context())
	if p == nil {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return nil, false
	}
	return p, true
}

func mapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, user.ErrNotFound),
		errors.Is(err, product.ErrNotFound),
		errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, order.ErrLineNotFound),
		errors.Is(err, order.ErrProductNotFound),
		errors.Is(err, order.ErrVariantNotFound),
		errors.Is(err, cart.ErrItemNotFound),
		errors.Is(err, cart.ErrProductNotFound),
		errors.Is(err, cart.ErrVariantNotFound),
		errors.Is(err, coupon.ErrNotFound),
		errors.Is(err, payment.ErrNotFound),
		errors.Is(err, returns.ErrNotFound),
		errors.Is(err, review.ErrNotFound),
		errors.Is(err, review.ErrProductNotFound),
		errors.Is(err, wishlist.ErrNotFound),
		errors.Is(err, wishlist.ErrProductNotFound):
		return http.StatusNotFound

	case errors.Is(err, user.ErrEmailExists),
		errors.Is(err, coupon.ErrCodeExists),
		errors.Is(err, review.ErrAlreadyReviewed),
		errors.Is(err, returns.ErrAlreadyExists):
		return http.StatusConflict

	case errors.Is(err, user.ErrInvalidCredentials):
		return http.StatusUnauthorized

	case errors.Is(err, user.ErrBlocked),
		errors.Is(err, user.ErrCannotModifyAdmin),
		errors.Is(err, product.ErrForbidden),
		errors.Is(err, order.ErrForbidden),
		errors.Is(err, payment.ErrForbidden),
		errors.Is(err, returns.ErrForbidden),
		errors.Is(err, review.ErrForbidden):
		return http.StatusForbidden

	case errors.Is(err, order.ErrNoItems),
		errors.Is(err, order.ErrInvalidStatus),
		errors.Is(err, order.ErrInsufficientStock),
		errors.Is(err, order.ErrCannotCancel),
		errors.Is(err, order.ErrAlreadyPaid),
		errors.Is(err, cart.ErrInsufficientStock),
		errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, coupon.ErrInvalidOrExpired),
		errors.Is(err, coupon.ErrInvalidDiscount),
		errors.Is(err, review.ErrInvalidRating),
		errors.Is(err, returns.ErrAlreadyResolved),
		errors.Is(err, user.ErrNotVendor),
		errors.Is(err, product.ErrInvalidVariant):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// respondServiceError logs the full error and sends the client a
// status-appropriate message without internal details.
func respondServiceError(w http.ResponseWriter, err error, clientMessage string) {
	code := mapErrorToStatusCode(err)
	if code == http.StatusInternalServerError {
		zlog.Error().Err(err).Msg(clientMessage)
		respondWithError(w, code, clientMessage)
		return
	}
	respondWithError(w, code, err.Error())
}
