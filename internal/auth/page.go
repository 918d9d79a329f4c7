package auth

import (
	"net/http"

	"github.com/2beens/serjblog/internal/users"
)

// Page is the part every rendered page model shares.
type Page struct {
	CurrentUser *users.User `json:"current_user"`
	LoggedIn    bool        `json:"logged_in"`
	IsAdmin     bool        `json:"is_admin"`
	Flashes     []string    `json:"flashes"`
}

func (m *SessionManager) Page(r *http.Request) Page {
	user := CurrentUser(r.Context())
	return Page{
		CurrentUser: user,
		LoggedIn:    user != nil,
		IsAdmin:     user.IsAdmin(),
		Flashes:     m.Flashes(r.Context(), r),
	}
}
