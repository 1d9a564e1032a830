package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/os44ua/comida-rapida/internal/cart"
	"github.com/os44ua/comida-rapida/internal/menu"
	"github.com/os44ua/comida-rapida/internal/orders"
)

// Handler exposes the engine to the UI: menu and cart snapshots, order
// submission, and the operator's live order view.
type Handler struct {
	Flow    *orders.Flow
	View    *orders.SyncView
	Catalog *menu.Catalog
	Cart    *cart.Ledger
	Store   orders.Store
	Log     *slog.Logger
}

type SubmitOrderReq struct {
	FoodID       int    `json:"foodId"`
	Quantity     int    `json:"quantity"`
	CustomerName string `json:"customerName"`
	Phone        string `json:"phone"`
}

type EditOrderReq struct {
	Quantity int `json:"quantity"`
}

type CartResp struct {
	Entries []cart.Entry `json:"entries"`
	Total   int          `json:"total"`
}

type OrdersResp struct {
	Orders []orders.Order `json:"orders"`
	Stale  bool           `json:"stale"`
	Error  string         `json:"error,omitempty"`
}

func (h *Handler) Register(r *chi.Mux) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(15 * time.Second))
		r.Get("/menu", h.listMenu)
		r.Get("/cart", h.getCart)
		r.Delete("/cart/{id}", h.removeFromCart)
		r.Post("/orders", h.submitOrder)
		r.Get("/orders", h.listOrders)
		r.Patch("/orders/{id}", h.editOrder)
		r.Delete("/orders/{id}", h.deleteOrder)
	})
	// long-lived, outside the request timeout
	r.Get("/orders/ws", h.ordersFeed)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError converts engine failures into inline messages; nothing escapes
// uncaught to the rendering layer.
func writeError(w http.ResponseWriter, err error) {
	var ve *orders.ValidationError
	var re *orders.RemoteError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": ve.Error()})
	case errors.Is(err, menu.ErrInsufficientStock):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "requested quantity exceeds remaining stock"})
	case errors.Is(err, menu.ErrNotFound), errors.Is(err, orders.ErrOrderNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, orders.ErrSubmitInFlight):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "submission already in progress"})
	case errors.Is(err, orders.ErrConfirmationRequired):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "confirmation required"})
	case errors.As(err, &re):
		writeJSON(w, http.StatusBadGateway, map[string]any{"error": "remote store unavailable, please retry", "retryable": true})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

func (h *Handler) listMenu(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Catalog.Items())
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, CartResp{Entries: h.Cart.Entries(), Total: h.Cart.TotalReserved()})
}

func (h *Handler) removeFromCart(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}
	if _, ok := h.Flow.RemoveFromCart(id); !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not in cart"})
		return
	}
	writeJSON(w, http.StatusOK, CartResp{Entries: h.Cart.Entries(), Total: h.Cart.TotalReserved()})
}

func (h *Handler) submitOrder(w http.ResponseWriter, r *http.Request) {
	var req SubmitOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	sub, err := h.Flow.Begin(req.FoodID)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := sub.SetQuantity(req.Quantity); err != nil {
		writeError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := sub.Submit(ctx, req.CustomerName, req.Phone)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	resp := OrdersResp{Orders: h.View.Orders()}
	if err := h.View.Err(); err != nil {
		resp.Stale = true
		resp.Error = "live view temporarily unavailable, showing last known orders"
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) editOrder(w http.ResponseWriter, r *http.Request) {
	var req EditOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.View.Edit(ctx, chi.URLParam(r, "id"), req.Quantity); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	confirmed := r.URL.Query().Get("confirm") == "true"

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.View.Delete(ctx, chi.URLParam(r, "id"), confirmed); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
