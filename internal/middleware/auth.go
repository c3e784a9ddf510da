package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/quicktradepro/quicktrade/internal/store"
)

// SessionCookie is the name of the session cookie set at login.
const SessionCookie = "quicktrade_session"

// RequireAuth validates the session cookie and populates the account ID in
// the request context. Unauthenticated requests get a JSON 401; they are
// never redirected, the dashboard handles navigation itself.
func RequireAuth(sessionStore *store.SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookie)
			if err != nil || cookie.Value == "" {
				unauthorized(w)
				return
			}

			sess, err := sessionStore.GetByToken(cookie.Value)
			if err != nil || sess == nil {
				unauthorized(w)
				return
			}

			ctx := WithAccountID(r.Context(), sess.AccountID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": "authentication required"})
}
