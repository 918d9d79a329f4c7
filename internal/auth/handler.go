package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/serjblog/internal/forms"
	"github.com/2beens/serjblog/internal/telemetry/metrics"
	"github.com/2beens/serjblog/internal/telemetry/tracing"
	"github.com/2beens/serjblog/internal/users"
	"github.com/2beens/serjblog/pkg"
)

const (
	MsgEmailAlreadyRegistered = "this email already sign up, login instead!"
	MsgEmailNotFound          = "This Email doesn't exist, please try again!"
	MsgWrongPassword          = "Password is not correct, please try again!"
)

//go:generate mockgen -source=handler.go -destination=handler_mocks_test.go -package=auth

type usersRepo interface {
	Add(ctx context.Context, user *users.User) error
	GetByEmail(ctx context.Context, email string) (*users.User, error)
}

type registerPage struct {
	Page
	Form   forms.RegisterForm `json:"form"`
	Errors forms.Errors       `json:"errors,omitempty"`
}

type loginPage struct {
	Page
	Form   forms.LoginForm `json:"form"`
	Errors forms.Errors    `json:"errors,omitempty"`
}

// Handler serves account pages: register, login and logout.
type Handler struct {
	repo           usersRepo
	sessions       *SessionManager
	metricsManager *metrics.Manager
}

func NewHandler(
	repo usersRepo,
	sessions *SessionManager,
	metricsManager *metrics.Manager,
) *Handler {
	return &Handler{
		repo:           repo,
		sessions:       sessions,
		metricsManager: metricsManager,
	}
}

// SetupRoutes registers the account routes, postMiddleware (e.g. rate limiting)
// wraps only the form submissions.
func (handler *Handler) SetupRoutes(router *mux.Router, postMiddleware ...mux.MiddlewareFunc) {
	router.HandleFunc("/register", handler.handleRegisterPage).Methods("GET").Name("register")
	router.Handle("/register", wrap(handler.handleRegister, postMiddleware)).Methods("POST").Name("register-post")
	router.HandleFunc("/login", handler.handleLoginPage).Methods("GET").Name("login")
	router.Handle("/login", wrap(handler.handleLogin, postMiddleware)).Methods("POST").Name("login-post")
	router.HandleFunc("/logout", handler.handleLogout).Methods("GET").Name("logout")
}

func wrap(handlerFunc http.HandlerFunc, middleware []mux.MiddlewareFunc) http.Handler {
	var h http.Handler = handlerFunc
	for i := len(middleware) - 1; i >= 0; i-- {
		h = middleware[i](h)
	}
	return h
}

func (handler *Handler) handleRegisterPage(w http.ResponseWriter, r *http.Request) {
	pkg.WriteJSON(w, http.StatusOK, registerPage{Page: handler.sessions.Page(r)})
}

func (handler *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "authHandler.register")
	defer span.End()

	var form forms.RegisterForm
	fieldErrors, err := forms.Decode(r, &form)
	if err != nil {
		log.Errorf("register, %s", err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if !fieldErrors.Empty() {
		pkg.WriteJSON(w, http.StatusBadRequest, registerPage{
			Page:   handler.sessions.Page(r),
			Form:   form,
			Errors: fieldErrors,
		})
		return
	}

	if _, err := handler.repo.GetByEmail(ctx, form.Email); err == nil {
		handler.flashAndRedirect(ctx, w, r, MsgEmailAlreadyRegistered, "/login")
		return
	} else if !errors.Is(err, users.ErrUserNotFound) {
		log.Errorf("register, get user by email: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	passwordHash, err := pkg.HashPassword(form.Password)
	if err != nil {
		log.Errorf("register, hash password: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	newUser := &users.User{
		Email:    form.Email,
		Name:     form.Name,
		Password: passwordHash,
	}
	if err := handler.repo.Add(ctx, newUser); err != nil {
		// lost a race with a concurrent registration of the same email
		if errors.Is(err, users.ErrUserExists) {
			handler.flashAndRedirect(ctx, w, r, MsgEmailAlreadyRegistered, "/login")
			return
		}
		log.Errorf("register, add user: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	handler.metricsManager.CounterRegistrations.Inc()
	log.Debugf("new user %d registered with role %s", newUser.ID, newUser.Role)

	if err := handler.sessions.StartSession(ctx, w, r, newUser.ID); err != nil {
		log.Errorf("register, start session for user %d: %s", newUser.ID, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/", http.StatusFound)
}

func (handler *Handler) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	pkg.WriteJSON(w, http.StatusOK, loginPage{Page: handler.sessions.Page(r)})
}

func (handler *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "authHandler.login")
	defer span.End()

	var form forms.LoginForm
	fieldErrors, err := forms.Decode(r, &form)
	if err != nil {
		log.Errorf("login, %s", err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if !fieldErrors.Empty() {
		pkg.WriteJSON(w, http.StatusBadRequest, loginPage{
			Page:   handler.sessions.Page(r),
			Form:   form,
			Errors: fieldErrors,
		})
		return
	}

	user, err := handler.repo.GetByEmail(ctx, form.Email)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			log.Tracef("[email] failed login attempt for: %s", form.Email)
			handler.metricsManager.CounterLogins.WithLabelValues("unknown-email").Inc()
			handler.flashAndRedirect(ctx, w, r, MsgEmailNotFound, "/login")
			return
		}
		log.Errorf("login, get user by email: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if !pkg.CheckPasswordHash(form.Password, user.Password) {
		log.Tracef("[password] failed login attempt for user: %d", user.ID)
		handler.metricsManager.CounterLogins.WithLabelValues("wrong-password").Inc()
		handler.flashAndRedirect(ctx, w, r, MsgWrongPassword, "/login")
		return
	}

	if err := handler.sessions.StartSession(ctx, w, r, user.ID); err != nil {
		log.Errorf("login, start session for user %d: %s", user.ID, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	handler.metricsManager.CounterLogins.WithLabelValues("ok").Inc()
	log.Trace("new login success")

	http.Redirect(w, r, "/", http.StatusFound)
}

func (handler *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := handler.sessions.EndSession(r.Context(), w, r); err != nil {
		log.Errorf("logout: %s", err)
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (handler *Handler) flashAndRedirect(ctx context.Context, w http.ResponseWriter, r *http.Request, message, location string) {
	if err := handler.sessions.Flash(ctx, w, r, message); err != nil {
		log.Errorf("flash [%s]: %s", message, err)
	}
	http.Redirect(w, r, location, http.StatusFound)
}
