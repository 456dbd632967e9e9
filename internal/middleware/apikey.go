package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/nutrilife/campus/api/internal/model"
)

// APIKey returns a middleware that gates requests on the X-API-Key
// header. An empty configured key disables the check, which keeps local
// development working without credentials.
func APIKey(key string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			provided := r.Header.Get("X-API-Key")
			if subtle.ConstantTimeCompare([]byte(provided), []byte(key)) != 1 {
				model.NewUnauthorizedError("invalid or missing API key").WriteJSON(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
