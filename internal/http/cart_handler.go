package http

import (
	"encoding/json"
	"net/http"

	"github.com/fjod/go_shop/internal/cart/domain"
	"github.com/fjod/go_shop/internal/cart/store"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type CartHandler struct {
	carts *store.Manager
}

func NewCartHandler(carts *store.Manager) *CartHandler {
	return &CartHandler{carts: carts}
}

// AddItemRequestDTO carries the full product payload: the catalog is an
// external collaborator, items arrive fully formed.
type AddItemRequestDTO struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice string `json:"unit_price"`
	ImageURL  string `json:"image_url"`
	Category  string `json:"category"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

type CartItemDTO struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice string `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	Subtotal  string `json:"subtotal"`
}

type CartResponseDTO struct {
	Items    []CartItemDTO `json:"items"`
	Total    string        `json:"total"`
	Count    int           `json:"count"`
	Currency string        `json:"currency"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	visitorID := getVisitorIDFromContext(r.Context())
	if visitorID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing visitor identity")
		return
	}

	s := h.carts.ForOwner(r.Context(), visitorID)
	respondJSON(w, http.StatusOK, cartResponse(s))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	visitorID := getVisitorIDFromContext(r.Context())
	if visitorID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing visitor identity")
		return
	}

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	price, err := decimal.NewFromString(req.UnitPrice)
	if err != nil || price.IsNegative() {
		respondError(w, http.StatusBadRequest, "invalid_unit_price", "unit_price must be a non-negative decimal")
		return
	}

	s := h.carts.ForOwner(r.Context(), visitorID)
	s.AddItem(domain.Product{
		ID:        req.ProductID,
		Name:      req.Name,
		UnitPrice: price,
		ImageURL:  req.ImageURL,
		Category:  req.Category,
	})

	respondJSON(w, http.StatusCreated, cartResponse(s))
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	visitorID := getVisitorIDFromContext(r.Context())
	if visitorID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing visitor identity")
		return
	}

	productID := chi.URLParam(r, "product_id")
	if productID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must not exceed 99")
		return
	}

	// Quantity zero or below removes the item.
	s := h.carts.ForOwner(r.Context(), visitorID)
	s.UpdateQuantity(productID, req.Quantity)

	respondJSON(w, http.StatusOK, cartResponse(s))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	visitorID := getVisitorIDFromContext(r.Context())
	if visitorID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing visitor identity")
		return
	}

	productID := chi.URLParam(r, "product_id")
	if productID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	s := h.carts.ForOwner(r.Context(), visitorID)
	s.RemoveItem(productID)

	respondJSON(w, http.StatusOK, cartResponse(s))
}

func cartResponse(s *store.Store) CartResponseDTO {
	snapshot := s.Snapshot()

	items := make([]CartItemDTO, len(snapshot.Items))
	for i, item := range snapshot.Items {
		items[i] = CartItemDTO{
			ProductID: item.Product.ID,
			Name:      item.Product.Name,
			UnitPrice: item.Product.UnitPrice.StringFixed(2),
			Quantity:  item.Quantity,
			Subtotal:  item.Subtotal().StringFixed(2),
		}
	}

	return CartResponseDTO{
		Items:    items,
		Total:    snapshot.Total().StringFixed(2),
		Count:    snapshot.Count(),
		Currency: s.Currency().String(),
	}
}
