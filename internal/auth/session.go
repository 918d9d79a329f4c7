package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/2beens/serjblog/internal/users"
)

const SessionCookieName = "blog_session"

type sessionStore interface {
	NewSession(ctx context.Context, userID int) (string, error)
	SessionUserID(ctx context.Context, token string) (int, error)
	EndSession(ctx context.Context, token string) error
	AddFlash(ctx context.Context, token, message string) error
	PopFlashes(ctx context.Context, token string) ([]string, error)
}

var _ sessionStore = (*Service)(nil)

// UserLoader resolves the user stored in a session, it is the only way
// the session layer reaches the users storage.
type UserLoader func(ctx context.Context, id int) (*users.User, error)

type SessionManager struct {
	store         sessionStore
	signer        *CookieSigner
	secureCookies bool
}

func NewSessionManager(store sessionStore, signer *CookieSigner, secureCookies bool) *SessionManager {
	return &SessionManager{
		store:         store,
		signer:        signer,
		secureCookies: secureCookies,
	}
}

// Resolve finds the live session of the request. Token is empty when there is none,
// userID is AnonymousUserID for visitor sessions.
func (m *SessionManager) Resolve(ctx context.Context, r *http.Request) (string, int) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return "", AnonymousUserID
	}

	token, ok := m.signer.Verify(cookie.Value)
	if !ok {
		log.Tracef("session cookie with invalid signature from %s", r.RemoteAddr)
		return "", AnonymousUserID
	}

	userID, err := m.store.SessionUserID(ctx, token)
	if err != nil {
		if !errors.Is(err, ErrSessionNotFound) {
			log.Errorf("resolve session: %s", err)
		}
		return "", AnonymousUserID
	}

	return token, userID
}

// StartSession logs the user in: the session the request came with (if any) is ended,
// then a fresh session is created and its cookie set.
func (m *SessionManager) StartSession(ctx context.Context, w http.ResponseWriter, r *http.Request, userID int) error {
	if oldToken, _ := m.Resolve(ctx, r); oldToken != "" {
		if err := m.store.EndSession(ctx, oldToken); err != nil {
			return fmt.Errorf("end replaced session: %w", err)
		}
	}

	token, err := m.store.NewSession(ctx, userID)
	if err != nil {
		return err
	}
	return m.setCookie(w, token)
}

// EndSession logs out whoever owns the request session. No session is not an error.
func (m *SessionManager) EndSession(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	token, _ := m.Resolve(ctx, r)
	m.clearCookie(w)
	if token == "" {
		return nil
	}
	return m.store.EndSession(ctx, token)
}

// Flash queues a one-time message for the next page shown to this client,
// creating a visitor session when the client has none yet.
func (m *SessionManager) Flash(ctx context.Context, w http.ResponseWriter, r *http.Request, message string) error {
	token, _ := m.Resolve(ctx, r)
	if token == "" {
		var err error
		token, err = m.store.NewSession(ctx, AnonymousUserID)
		if err != nil {
			return err
		}
		if err := m.setCookie(w, token); err != nil {
			return err
		}
	}
	return m.store.AddFlash(ctx, token, message)
}

// Flashes pops pending flash messages of the request session.
func (m *SessionManager) Flashes(ctx context.Context, r *http.Request) []string {
	token, _ := m.Resolve(ctx, r)
	if token == "" {
		return nil
	}

	messages, err := m.store.PopFlashes(ctx, token)
	if err != nil {
		log.Errorf("pop flashes: %s", err)
		return nil
	}
	return messages
}

// ResolveUser puts the logged user (if any) into the request context.
func (m *SessionManager) ResolveUser(loader UserLoader) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			_, userID := m.Resolve(ctx, r)
			if userID == AnonymousUserID {
				next.ServeHTTP(w, r)
				return
			}

			user, err := loader(ctx, userID)
			if err != nil {
				if !errors.Is(err, users.ErrUserNotFound) {
					log.Errorf("load session user %d: %s", userID, err)
				}
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithCurrentUser(ctx, user)))
		})
	}
}

func (m *SessionManager) setCookie(w http.ResponseWriter, token string) error {
	value, err := m.signer.Sign(token)
	if err != nil {
		return fmt.Errorf("sign session cookie: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(DefaultTTL.Seconds()),
		HttpOnly: true,
		Secure:   m.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (m *SessionManager) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}
