package httpapi

import (
	"net/http"
	"time"

	"matchduo.org/internal/auth"
)

// Cookie names are part of the external contract with web clients.
const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

// CookieCodec maps session tokens to and from transport cookies. Both
// cookies are HttpOnly; each cookie's max-age tracks its token's expiry.
type CookieCodec struct {
	Path   string
	Domain string
	Secure bool
}

// WriteAccess sets the access token cookie.
func (c CookieCodec) WriteAccess(w http.ResponseWriter, token auth.IssuedToken) {
	c.write(w, AccessTokenCookie, token)
}

// WriteRefresh sets the refresh token cookie.
func (c CookieCodec) WriteRefresh(w http.ResponseWriter, token auth.IssuedToken) {
	c.write(w, RefreshTokenCookie, token)
}

func (c CookieCodec) write(w http.ResponseWriter, name string, token auth.IssuedToken) {
	maxAge := int(time.Until(token.ExpiresAt).Seconds())
	if maxAge < 0 {
		maxAge = 0
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    token.Value,
		Path:     c.path(),
		Domain:   c.Domain,
		MaxAge:   maxAge,
		Expires:  token.ExpiresAt,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ExpireAll clears both session cookies. Logout calls this
// unconditionally, whatever state the presented token was in.
func (c CookieCodec) ExpireAll(w http.ResponseWriter) {
	for _, name := range []string{AccessTokenCookie, RefreshTokenCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     c.path(),
			Domain:   c.Domain,
			MaxAge:   -1,
			Expires:  time.Unix(0, 0),
			HttpOnly: true,
			Secure:   c.Secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

// ReadAccess returns the access token cookie value, or "" when absent.
func (c CookieCodec) ReadAccess(r *http.Request) string {
	return readCookie(r, AccessTokenCookie)
}

// ReadRefresh returns the refresh token cookie value, or "" when absent.
func (c CookieCodec) ReadRefresh(r *http.Request) string {
	return readCookie(r, RefreshTokenCookie)
}

func readCookie(r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (c CookieCodec) path() string {
	if c.Path == "" {
		return "/"
	}
	return c.Path
}
