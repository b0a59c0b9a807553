package middleware

import (
	"net/http"
	"strings"

	"github.com/renatobalun/langchain-error/internal/api/response"
	"golang.org/x/crypto/bcrypt"
)

// Auth checks a shared webhook token against a bcrypt hash.
type Auth struct {
	hash []byte
}

// NewAuth creates a new Auth middleware. An empty hash disables the check.
func NewAuth(tokenHash string) *Auth {
	return &Auth{hash: []byte(tokenHash)}
}

// Enabled reports whether requests must carry a token.
func (a *Auth) Enabled() bool {
	return len(a.hash) > 0
}

// Authenticate validates the Bearer token before passing the request on.
func (a *Auth) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.Enabled() {
			next.ServeHTTP(w, r)
			return
		}

		token := extractBearerToken(r)
		if token == "" {
			response.Error(w, http.StatusUnauthorized,
				"INVALID_TOKEN", "Missing or invalid Authorization header", nil)
			return
		}
		if bcrypt.CompareHashAndPassword(a.hash, []byte(token)) != nil {
			response.Error(w, http.StatusUnauthorized,
				"INVALID_TOKEN", "Invalid webhook token", nil)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
