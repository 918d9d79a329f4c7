package auth

import (
	"github.com/gorilla/securecookie"
)

// CookieSigner binds session tokens to the server secret, so a client cannot forge a token.
// Encoded values are authenticated (HMAC-SHA256) and carry a timestamp, expired after DefaultTTL.
type CookieSigner struct {
	codec *securecookie.SecureCookie
}

func NewCookieSigner(secret string) *CookieSigner {
	codec := securecookie.New([]byte(secret), nil).
		MaxAge(int(DefaultTTL.Seconds())).
		SetSerializer(securecookie.JSONEncoder{})
	return &CookieSigner{
		codec: codec,
	}
}

func (s *CookieSigner) Sign(token string) (string, error) {
	return s.codec.Encode(SessionCookieName, token)
}

// Verify returns the token from a signed cookie value, ok is false for anything tampered, expired or malformed.
func (s *CookieSigner) Verify(value string) (string, bool) {
	var token string
	if err := s.codec.Decode(SessionCookieName, value, &token); err != nil {
		return "", false
	}
	if token == "" {
		return "", false
	}
	return token, true
}
