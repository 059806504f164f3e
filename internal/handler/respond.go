package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"bladeshop-be/internal/auth"
	"bladeshop-be/internal/checkout"
	"bladeshop-be/internal/logger"
	"bladeshop-be/internal/order"
	"bladeshop-be/internal/payment"
	"bladeshop-be/internal/product"
	"bladeshop-be/internal/utils"

	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

type validationBody struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details"`
}

type paymentErrorBody struct {
	Error   string `json:"error"`
	OrderID string `json:"orderId"`
}

// decodeJSON reads a single JSON document into v. Malformed bodies are
// reported as validation errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		msg := "malformed JSON"
		if errors.Is(err, io.EOF) {
			msg = "empty body"
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			msg = "body too large"
		}
		return order.NewValidationError("body", msg)
	}
	return nil
}

// writeError maps service errors onto HTTP responses.
func writeError(w http.ResponseWriter, r *http.Request, method string, err error) {
	var (
		validationErr *order.ValidationError
		paymentErr    *checkout.PaymentError
	)

	switch {
	case errors.As(err, &validationErr):
		utils.WriteJSON(w, http.StatusBadRequest, validationBody{
			Error:   "Invalid request data",
			Details: validationErr.Fields,
		})
	case errors.Is(err, order.ErrItemsUnavailable):
		utils.WriteJSONError(w, "Some items are not available", http.StatusBadRequest)
	case errors.Is(err, order.ErrOrderNotFound):
		utils.WriteJSONError(w, "Order not found", http.StatusNotFound)
	case errors.Is(err, product.ErrProductNotFound):
		utils.WriteJSONError(w, "Product not found", http.StatusNotFound)
	case errors.Is(err, auth.ErrInvalidCredentials):
		utils.WriteJSONError(w, "Invalid credentials", http.StatusUnauthorized)
	case errors.Is(err, payment.ErrNotRetryable):
		utils.WriteJSONError(w, "Order is not awaiting payment", http.StatusConflict)
	case errors.As(err, &paymentErr):
		logger.FromCtx(r.Context()).Error("payment creation failed",
			zap.String("layer", "handler"),
			zap.String("method", method),
			zap.String("order_id", paymentErr.OrderID),
			zap.Error(err),
		)
		utils.WriteJSON(w, http.StatusBadGateway, paymentErrorBody{
			Error:   "Failed to create payment",
			OrderID: paymentErr.OrderID,
		})
	default:
		logger.FromCtx(r.Context()).Error("request failed",
			zap.String("layer", "handler"),
			zap.String("method", method),
			zap.Error(err),
		)
		utils.WriteJSONError(w, "Internal server error", http.StatusInternalServerError)
	}
}
