package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/go-inventory-api.git/internal/users"
)

type UsersHandler struct {
	Users *users.Service
}

func (h *UsersHandler) Register(r chi.Router, mw *AuthMiddleware) {
	r.Group(func(r chi.Router) {
		r.Use(mw.RequireAuth, RequireAdmin)
		r.Patch("/users/{id}/metadata", h.updateMetadata)
	})
}

type metadataReq struct {
	Metadata map[string]any `json:"metadata"`
}

// updateMetadata replaces the user's metadata; role membership is re-synced
// explicitly by the service, not as a persistence side effect.
func (h *UsersHandler) updateMetadata(w http.ResponseWriter, r *http.Request) {
	var req metadataReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.UpdateMetadata(ctx, chi.URLParam(r, "id"), req.Metadata)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}
