package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ariefcatur/go-inventory-api.git/internal/auth"
	"github.com/ariefcatur/go-inventory-api.git/internal/users"
)

type AuthHandler struct {
	Users     *users.Service
	JWT       *auth.JWTManager
	Blacklist auth.Blacklist
	Log       *zap.Logger
}

func (h *AuthHandler) Register(r chi.Router, mw *AuthMiddleware) {
	r.Post("/auth/register", h.register)
	r.Post("/auth/login", h.login)
	r.Post("/auth/refresh", h.refresh)
	r.Group(func(r chi.Router) {
		r.Use(mw.RequireAuth)
		r.Post("/auth/logout", h.logout)
		r.Get("/auth/me", h.me)
	})
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	var in users.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.Register(ctx, in)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResp struct {
	ID       string         `json:"id"`
	Metadata map[string]any `json:"metadata"`
	Access   string         `json:"access"`
	Refresh  string         `json:"refresh"`
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		h.Log.Info("login failed", zap.String("email", req.Email))
		writeErr(w, err)
		return
	}
	pair, err := h.JWT.IssuePair(u.ID, u.Email, u.Roles())
	if err != nil {
		writeErr(w, err)
		return
	}
	h.Log.Info("login success", zap.String("user_id", u.ID), zap.String("email", u.Email))
	writeJSON(w, http.StatusOK, loginResp{ID: u.ID, Metadata: u.Metadata, Access: pair.Access, Refresh: pair.Refresh})
}

type refreshReq struct {
	Refresh string `json:"refresh"`
}

// refresh rotates the pair: the presented refresh token is blacklisted so it
// cannot be replayed.
func (h *AuthHandler) refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Refresh == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "refresh token required"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	blacklisted, err := h.Blacklist.Contains(ctx, req.Refresh)
	if err != nil {
		writeErr(w, err)
		return
	}
	if blacklisted {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "token is blacklisted"})
		return
	}
	claims, err := h.JWT.ValidateRefresh(req.Refresh)
	if err != nil {
		writeErr(w, err)
		return
	}

	if err := h.Blacklist.Add(ctx, req.Refresh, claims.UserID, auth.Remaining(claims, time.Now())); err != nil {
		writeErr(w, err)
		return
	}
	pair, err := h.JWT.IssuePair(claims.UserID, claims.Email, claims.Roles)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

type logoutReq struct {
	RefreshToken string `json:"refresh_token"`
}

// logout blacklists the caller's access token plus the supplied refresh token.
// Blacklisting is idempotent; logging out twice is fine.
func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFrom(r.Context())

	var req logoutReq
	_ = json.NewDecoder(r.Body).Decode(&req)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	now := time.Now()
	if claims, err := h.JWT.Validate(id.Token); err == nil {
		if err := h.Blacklist.Add(ctx, id.Token, id.UserID, auth.Remaining(claims, now)); err != nil {
			writeErr(w, err)
			return
		}
	}
	if req.RefreshToken != "" {
		claims, err := h.JWT.ValidateRefresh(req.RefreshToken)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid refresh token"})
			return
		}
		if err := h.Blacklist.Add(ctx, req.RefreshToken, claims.UserID, auth.Remaining(claims, now)); err != nil {
			writeErr(w, err)
			return
		}
	}

	h.Log.Info("logout", zap.String("user_id", id.UserID))
	writeJSON(w, http.StatusOK, map[string]string{"detail": "logged out"})
}

func (h *AuthHandler) me(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFrom(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	u, err := h.Users.Get(ctx, id.UserID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}
