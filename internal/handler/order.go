package handler

import (
	"net/http"

	"bladeshop-be/internal/order"
	"bladeshop-be/internal/utils"
)

type manualOrderResponse struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
}

// Checkout handles POST /checkout.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var input order.CheckoutInput
	if err := decodeJSON(w, r, &input); err != nil {
		writeError(w, r, "Checkout", err)
		return
	}

	res, err := h.checkout.Checkout(r.Context(), input)
	if err != nil {
		writeError(w, r, "Checkout", err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, res)
}

// CreateManualOrder handles POST /orders/manual.
func (h *Handler) CreateManualOrder(w http.ResponseWriter, r *http.Request) {
	var input order.ManualOrderInput
	if err := decodeJSON(w, r, &input); err != nil {
		writeError(w, r, "CreateManualOrder", err)
		return
	}

	o, err := h.orders.CreateManualOrder(r.Context(), input)
	if err != nil {
		writeError(w, r, "CreateManualOrder", err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, manualOrderResponse{
		OrderID: o.ID,
		Status:  string(o.Status),
	})
}

// GetOrder handles GET /orders/{orderId}.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.GetOrder(r.Context(), r.PathValue("orderId"))
	if err != nil {
		writeError(w, r, "GetOrder", err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, order.ToView(o))
}

// PaymentStatus handles GET /payments/{orderId}.
func (h *Handler) PaymentStatus(w http.ResponseWriter, r *http.Request) {
	view, err := h.status.PaymentStatus(r.Context(), r.PathValue("orderId"))
	if err != nil {
		writeError(w, r, "PaymentStatus", err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, view)
}
