package http

import (
	"net/http"
	"time"
)

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "token"

// CookieConfig controls the session cookie attributes.
type CookieConfig struct {
	Lifetime time.Duration
	Secure   bool
}

// sessionCookies writes and clears the session cookie.
type sessionCookies struct {
	cfg CookieConfig
	now func() time.Time
}

func newSessionCookies(cfg CookieConfig) *sessionCookies {
	return &sessionCookies{cfg: cfg, now: time.Now}
}

func (c *sessionCookies) set(w http.ResponseWriter, token string) {
	expires := c.now().Add(c.cfg.Lifetime)
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(c.cfg.Lifetime.Seconds()),
		HttpOnly: true,
		Secure:   c.cfg.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}

func (c *sessionCookies) clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.cfg.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}
