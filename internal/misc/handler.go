package misc

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/2beens/serjblog/internal/auth"
	"github.com/2beens/serjblog/pkg"
)

type staticPage struct {
	auth.Page
	Heading    string `json:"heading"`
	Subheading string `json:"subheading"`
}

var (
	aboutPage = staticPage{
		Heading:    "About Me",
		Subheading: "This is what I do.",
	}
	contactPage = staticPage{
		Heading:    "Contact Me",
		Subheading: "Have questions? I have answers.",
	}
)

// Handler serves the informational pages, and the service health/version endpoints.
type Handler struct {
	sessions    *auth.SessionManager
	versionInfo string
}

func NewHandler(sessions *auth.SessionManager, versionInfo string) *Handler {
	return &Handler{
		sessions:    sessions,
		versionInfo: versionInfo,
	}
}

func (handler *Handler) SetupRoutes(mainRouter *mux.Router) {
	mainRouter.HandleFunc("/about", handler.handleAbout).Methods("GET").Name("about")
	mainRouter.HandleFunc("/contact", handler.handleContact).Methods("GET").Name("contact")
	mainRouter.HandleFunc("/health", handler.handleHealth).Methods("GET").Name("health")
	mainRouter.HandleFunc("/version", handler.handleGetVersionInfo).Methods("GET").Name("version")
}

func (handler *Handler) handleAbout(w http.ResponseWriter, r *http.Request) {
	page := aboutPage
	page.Page = handler.sessions.Page(r)
	pkg.WriteJSON(w, http.StatusOK, page)
}

func (handler *Handler) handleContact(w http.ResponseWriter, r *http.Request) {
	page := contactPage
	page.Page = handler.sessions.Page(r)
	pkg.WriteJSON(w, http.StatusOK, page)
}

func (handler *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteTextResponseOK(w, "I'm OK, thanks ;)")
}

func (handler *Handler) handleGetVersionInfo(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteTextResponseOK(w, handler.versionInfo)
}
