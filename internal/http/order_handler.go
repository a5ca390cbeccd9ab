package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fjod/go_shop/internal/domain"
	"github.com/fjod/go_shop/internal/service"
)

type OrderHandler struct {
	service OrderAPI
	timeout time.Duration
}

func NewOrderHandler(orderService OrderAPI, timeout time.Duration) *OrderHandler {
	return &OrderHandler{
		service: orderService,
		timeout: timeout,
	}
}

// CreateOrder finalizes the session's cart into a persisted order. An empty
// cart comes back as a validation failure with the cart.empty message key, so
// the order form can be re-presented.
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := getSessionID(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "missing_session", "no session cookie")
		return
	}

	order := &domain.Order{}
	err := h.service.CreateOrder(ctx, sessionID, order)
	if errors.Is(err, service.ErrEmptyCart) {
		respondError(w, http.StatusBadRequest, "cart.empty", "cart is empty")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to create order")
		return
	}

	respondJSON(w, http.StatusCreated, order)
}
