package middleware

import (
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/2beens/serjblog/internal/auth"
)

// AdminOnly lets only the admin through. Everyone else gets the same 404
// as for a path that does not exist, so the protected pages stay hidden.
// Must run after auth.SessionManager.ResolveUser.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := auth.CurrentUser(r.Context())
		if !user.IsAdmin() {
			if user != nil {
				log.Tracef("[admin only] user %d denied => %s", user.ID, r.URL.Path)
			}
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
