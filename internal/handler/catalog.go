package handler

import (
	"net/http"

	"bladeshop-be/internal/utils"
)

// ListProducts handles GET /products.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.Catalog(r.Context())
	if err != nil {
		writeError(w, r, "ListProducts", err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, products)
}

// GetProduct handles GET /products/{productId}.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.GetProduct(r.Context(), r.PathValue("productId"))
	if err != nil {
		writeError(w, r, "GetProduct", err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, p)
}
