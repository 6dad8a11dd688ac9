package http

import (
	"encoding/json"
	"net/http"

	"github.com/fjod/go_shop/internal/checkout/domain"
	"github.com/fjod/go_shop/internal/checkout/service"
	"github.com/go-chi/chi/v5"
)

type CheckoutHandler struct {
	registry *service.Registry
}

func NewCheckoutHandler(registry *service.Registry) *CheckoutHandler {
	return &CheckoutHandler{registry: registry}
}

type SelectMethodRequestDTO struct {
	Method string `json:"method"`
}

type SubmitPaymentRequestDTO struct {
	SenderEmail      string              `json:"sender_email,omitempty"`
	ConfirmationCode string              `json:"confirmation_code,omitempty"`
	Card             *domain.CardDetails `json:"card,omitempty"`
}

func (h *CheckoutHandler) Create(w http.ResponseWriter, r *http.Request) {
	visitorID := getVisitorIDFromContext(r.Context())
	if visitorID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing visitor identity")
		return
	}

	c := h.registry.Create(r.Context(), visitorID)
	respondJSON(w, http.StatusCreated, c.View())
}

func (h *CheckoutHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.registry.Get(chi.URLParam(r, "id"))
	if err != nil {
		handleCheckoutError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, c.View())
}

func (h *CheckoutHandler) SubmitShipping(w http.ResponseWriter, r *http.Request) {
	c, err := h.registry.Get(chi.URLParam(r, "id"))
	if err != nil {
		handleCheckoutError(w, err)
		return
	}

	var info domain.ShippingInfo
	if err := json.NewDecoder(r.Body).Decode(&info); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := c.SubmitShipping(info); err != nil {
		handleCheckoutError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, c.View())
}

func (h *CheckoutHandler) SelectMethod(w http.ResponseWriter, r *http.Request) {
	c, err := h.registry.Get(chi.URLParam(r, "id"))
	if err != nil {
		handleCheckoutError(w, err)
		return
	}

	var req SelectMethodRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	method, err := domain.ParseMethod(req.Method)
	if err != nil {
		respondError(w, http.StatusBadRequest, "unknown_method", err.Error())
		return
	}

	if err := c.SelectMethod(method); err != nil {
		handleCheckoutError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, c.View())
}

func (h *CheckoutHandler) SubmitPayment(w http.ResponseWriter, r *http.Request) {
	c, err := h.registry.Get(chi.URLParam(r, "id"))
	if err != nil {
		handleCheckoutError(w, err)
		return
	}

	var req SubmitPaymentRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	// Accepted submissions resolve asynchronously; the caller polls the
	// session for feedback transitions.
	if err := c.SubmitPayment(domain.PaymentInfo{
		SenderEmail:      req.SenderEmail,
		ConfirmationCode: req.ConfirmationCode,
		Card:             req.Card,
	}); err != nil {
		handleCheckoutError(w, err)
		return
	}
	respondJSON(w, http.StatusAccepted, c.View())
}

func (h *CheckoutHandler) DismissFeedback(w http.ResponseWriter, r *http.Request) {
	c, err := h.registry.Get(chi.URLParam(r, "id"))
	if err != nil {
		handleCheckoutError(w, err)
		return
	}

	if err := c.Dismiss(); err != nil {
		handleCheckoutError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, c.View())
}

func (h *CheckoutHandler) Back(w http.ResponseWriter, r *http.Request) {
	c, err := h.registry.Get(chi.URLParam(r, "id"))
	if err != nil {
		handleCheckoutError(w, err)
		return
	}

	if err := c.Back(); err != nil {
		handleCheckoutError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, c.View())
}

func (h *CheckoutHandler) Abandon(w http.ResponseWriter, r *http.Request) {
	if err := h.registry.Abandon(chi.URLParam(r, "id")); err != nil {
		handleCheckoutError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "abandoned"})
}
