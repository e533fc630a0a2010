package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/ariefcatur/go-inventory-api.git/internal/auth"
)

type ctxKey int

const identityKey ctxKey = iota

// Identity is the authenticated caller attached to the request context.
type Identity struct {
	UserID string
	Email  string
	Roles  []string
	Token  string // raw access token, needed for logout blacklisting
}

func (i Identity) IsAdmin() bool {
	for _, r := range i.Roles {
		if r == auth.RoleAdmin {
			return true
		}
	}
	return false
}

func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

type AuthMiddleware struct {
	JWT       *auth.JWTManager
	Blacklist auth.Blacklist
}

// RequireAuth extracts the bearer token, rejects blacklisted tokens before
// validating, and attaches the Identity to the context.
func (a *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearerToken(r)
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
			return
		}

		blacklisted, err := a.Blacklist.Contains(r.Context(), raw)
		if err != nil {
			writeErr(w, err)
			return
		}
		if blacklisted {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "you are logged out"})
			return
		}

		claims, err := a.JWT.ValidateAccess(raw)
		if err != nil {
			writeErr(w, err)
			return
		}

		id := Identity{UserID: claims.UserID, Email: claims.Email, Roles: claims.Roles, Token: raw}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), identityKey, id)))
	})
}

// RequireAdmin must sit inside RequireAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFrom(r.Context())
		if !ok || !id.IsAdmin() {
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "admin access required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
