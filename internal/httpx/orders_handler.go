package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/ariefcatur/go-inventory-api.git/internal/apperr"
	kafkax "github.com/ariefcatur/go-inventory-api.git/internal/kafka"
	"github.com/ariefcatur/go-inventory-api.git/internal/orders"
)

type OrdersHandler struct {
	Orders *orders.Service
	// one producer per topic; nil disables publishing
	PlacedProducer *kafkax.Producer
	StatusProducer *kafkax.Producer
	Service        string
}

type placeOrderReq struct {
	Items []orders.ItemInput `json:"items"`
}

func (h *OrdersHandler) Register(r chi.Router, mw *AuthMiddleware) {
	r.Group(func(r chi.Router) {
		r.Use(mw.RequireAuth)
		r.Post("/orders", h.place)
		r.Get("/orders", h.list)
		r.Get("/orders/{id}", h.get)
		r.Delete("/orders/{id}", h.delete)

		r.Group(func(r chi.Router) {
			r.Use(RequireAdmin)
			r.Patch("/orders/{id}/status", h.updateStatus)
		})
	})
}

func (h *OrdersHandler) place(w http.ResponseWriter, r *http.Request) {
	var req placeOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	id, _ := IdentityFrom(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Orders.PlaceOrder(ctx, id.UserID, req.Items)
	if err != nil {
		writeErr(w, err)
		return
	}

	h.publishPlaced(o, r.Header.Get("X-Request-Id"))
	writeJSON(w, http.StatusCreated, o)
}

func (h *OrdersHandler) publishPlaced(o *orders.Order, traceID string) {
	if h.PlacedProducer == nil {
		return
	}
	items := make([]orders.ItemPrice, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, orders.ItemPrice{ProductID: it.ProductID, Qty: it.Quantity, PriceCents: it.PriceCents})
	}
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventOrderPlaced,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       traceID,
		CorrelationID: o.ID,
		Payload: kafkax.MustMarshal(orders.OrderPlacedPayload{
			OrderID:    o.ID,
			OwnerID:    o.OwnerID,
			Items:      items,
			TotalCents: o.TotalCents,
		}),
	}
	h.PlacedProducer.Publish(orders.PartitionKey(o.ID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventOrderPlaced)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func (h *OrdersHandler) list(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFrom(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	out, err := h.Orders.List(ctx, id.UserID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *OrdersHandler) get(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFrom(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	o, err := h.Orders.Get(ctx, chi.URLParam(r, "id"), orders.Actor{ID: id.UserID, IsAdmin: id.IsAdmin()})
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

type statusReq struct {
	Status string `json:"status"`
}

func (h *OrdersHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Orders.UpdateStatus(ctx, chi.URLParam(r, "id"), req.Status)
	if err != nil {
		// persistence failures surface as 400 here, keeping the client-facing
		// error shape uniform; missing orders stay 404
		if errors.Is(err, apperr.ErrNotFound) {
			writeErr(w, err)
			return
		}
		var fe apperr.FieldErrors
		if errors.As(err, &fe) {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	h.publishStatusChanged(o, r.Header.Get("X-Request-Id"))
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) publishStatusChanged(o *orders.Order, traceID string) {
	if h.StatusProducer == nil {
		return
	}
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventOrderStatusChanged,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       traceID,
		CorrelationID: o.ID,
		Payload:       kafkax.MustMarshal(orders.OrderStatusChangedPayload{OrderID: o.ID, Status: o.Status}),
	}
	h.StatusProducer.Publish(orders.PartitionKey(o.ID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventOrderStatusChanged)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func (h *OrdersHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFrom(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Orders.Delete(ctx, chi.URLParam(r, "id"), orders.Actor{ID: id.UserID, IsAdmin: id.IsAdmin()}); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
