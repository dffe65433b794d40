package auth

import (
	"net/http"
	"strings"
)

type Auth struct {
	token string
}

func New(token string) *Auth {
	return &Auth{token: token}
}

// AuthMiddleware is a middleware that checks for a valid session token.
// Browsers cannot attach headers to websocket dials, so the token is
// also accepted as a query parameter.
func (a *Auth) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.token == "" {
			next.ServeHTTP(w, r)
			return
		}

		token := r.Header.Get("Authorization")
		token = strings.TrimPrefix(token, "Bearer ")
		if token == "" {
			token = r.URL.Query().Get("token")
		}

		if token == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		if token != a.token {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}
