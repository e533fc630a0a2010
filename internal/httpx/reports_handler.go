package httpx

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/go-inventory-api.git/internal/apperr"
	"github.com/ariefcatur/go-inventory-api.git/internal/reports"
)

type ReportsHandler struct {
	Reports *reports.Service
}

func (h *ReportsHandler) Register(r chi.Router, mw *AuthMiddleware) {
	r.Group(func(r chi.Router) {
		r.Use(mw.RequireAuth)
		r.Get("/report/order/frequent", h.frequent)

		r.Group(func(r chi.Router) {
			r.Use(RequireAdmin)
			r.Get("/report/stock", h.stock)
			r.Get("/report/sales/{period}", h.sales)
		})
	})
}

func (h *ReportsHandler) stock(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	out, err := h.Reports.LowStock(ctx)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *ReportsHandler) sales(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	out, err := h.Reports.Sales(ctx, chi.URLParam(r, "period"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *ReportsHandler) frequent(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFrom(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	fp, err := h.Reports.MostFrequentProduct(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "No frequent ordered product found."})
			return
		}
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, fp)
}
