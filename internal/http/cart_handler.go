package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fjod/go_shop/internal/domain"
)

// OrderAPI is the slice of the order service the cart and order handlers use.
type OrderAPI interface {
	AddToCart(ctx context.Context, sessionID string, productID int64) (bool, error)
	RemoveFromCart(ctx context.Context, sessionID string, productID int64) error
	GetCart(ctx context.Context, sessionID string) (*domain.Cart, error)
	CreateOrder(ctx context.Context, sessionID string, order *domain.Order) error
	IsCartEmpty(ctx context.Context, sessionID string) bool
}

type CartHandler struct {
	service OrderAPI
	timeout time.Duration
}

func NewCartHandler(service OrderAPI, timeout time.Duration) *CartHandler {
	return &CartHandler{
		service: service,
		timeout: timeout,
	}
}

type AddItemRequestDTO struct {
	ProductID int64 `json:"product_id"`
}

type CartResponseDTO struct {
	Lines        []domain.CartLine `json:"lines"`
	TotalValue   float64           `json:"total_value"`
	AverageValue float64           `json:"average_value"`
	Empty        bool              `json:"empty"`
}

func cartResponse(c *domain.Cart) CartResponseDTO {
	return CartResponseDTO{
		Lines:        c.Snapshot(),
		TotalValue:   c.TotalValue(),
		AverageValue: c.AverageValue(),
		Empty:        c.IsEmpty(),
	}
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := getSessionID(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "missing_session", "no session cookie")
		return
	}

	c, err := h.service.GetCart(ctx, sessionID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load cart")
		return
	}

	respondJSON(w, http.StatusOK, cartResponse(c))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := getSessionID(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "missing_session", "no session cookie")
		return
	}

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be positive")
		return
	}

	added, err := h.service.AddToCart(ctx, sessionID, req.ProductID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to add to cart")
		return
	}
	if !added {
		respondError(w, http.StatusNotFound, "not_found", "product not found")
		return
	}

	c, err := h.service.GetCart(ctx, sessionID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load cart")
		return
	}

	respondJSON(w, http.StatusCreated, cartResponse(c))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := getSessionID(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "missing_session", "no session cookie")
		return
	}

	productIDStr := chi.URLParam(r, "product_id")
	productID, err := strconv.ParseInt(productIDStr, 10, 64)
	if err != nil || productID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return
	}

	if err := h.service.RemoveFromCart(ctx, sessionID, productID); err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to remove from cart")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
