package auth

import (
	"net/http"
	"strings"
	"time"
)

const SessionCookieName = "portfolio-admin-session"

// CookieTransport carries the session token in an http-only cookie.
type CookieTransport struct {
	secure bool
	ttl    time.Duration
}

func NewCookieTransport(secure bool, ttl time.Duration) *CookieTransport {
	return &CookieTransport{
		secure: secure,
		ttl:    ttl,
	}
}

func (c *CookieTransport) Set(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(c.ttl.Seconds()),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Read returns the session token, and false when there is none.
func (c *CookieTransport) Read(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

func (c *CookieTransport) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// TokenFromRequest reads the session token from the cookie, falling back to
// the Authorization bearer header for API callers.
func (c *CookieTransport) TokenFromRequest(r *http.Request) (string, bool) {
	if token, ok := c.Read(r); ok {
		return token, true
	}

	authHeader := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(authHeader, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
