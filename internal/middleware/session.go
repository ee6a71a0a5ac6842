package middleware // middleware provides shared request processing for handlers

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

// Cookie names are fixed constants shared with the front end.
const (
	// SessionCookieName carries the signed session token. HTTP-only.
	SessionCookieName = "av_session"
	// AdminRecordCookieName carries the long-lived admin-record token
	// used to recover an admin account after a store reset. HTTP-only.
	AdminRecordCookieName = "av_admin_record"
	// RoleCookieName is a plain cookie exposing the role to the UI so it
	// can pick which managers to render. It is a display hint only and is
	// never consulted for authorization.
	RoleCookieName = "av_role"
)

// ReadCookie extracts a cookie value from the raw Cookie header. Parsing
// the header by hand (semicolon-delimited, URL-decoded values) keeps the
// behavior identical however the request was produced, including test
// requests assembled without the cookie jar.
func ReadCookie(r *http.Request, name string) string {
	header := r.Header.Get("Cookie")
	if header == "" {
		return ""
	}
	for _, part := range strings.Split(header, ";") {
		part = strings.TrimSpace(part)
		idx := strings.IndexByte(part, '=')
		if idx < 0 {
			continue
		}
		if part[:idx] != name {
			continue
		}
		val := part[idx+1:]
		if decoded, err := url.QueryUnescape(val); err == nil {
			return decoded
		}
		return val
	}
	return ""
}

// SetSessionCookie binds a freshly issued session token to the response:
// HTTP-only, SameSite=Lax, Secure in production, path /, max-age equal to
// the token TTL so cookie and token expire together.
func SetSessionCookie(c echo.Context, token string, ttl time.Duration, secure bool) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl / time.Second),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie with the same attributes
// it was set with.
func ClearSessionCookie(c echo.Context, secure bool) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// SetAdminRecordCookie stores the signed admin-record token for 180 days.
func SetAdminRecordCookie(c echo.Context, token string, ttl time.Duration, secure bool) {
	c.SetCookie(&http.Cookie{
		Name:     AdminRecordCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl / time.Second),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearAdminRecordCookie expires the admin-record cookie.
func ClearAdminRecordCookie(c echo.Context, secure bool) {
	c.SetCookie(&http.Cookie{
		Name:     AdminRecordCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// SetRoleCookie exposes the role to client scripts, so it is not
// HTTP-only. The gate never reads it.
func SetRoleCookie(c echo.Context, role string, ttl time.Duration, secure bool) {
	c.SetCookie(&http.Cookie{
		Name:     RoleCookieName,
		Value:    role,
		Path:     "/",
		MaxAge:   int(ttl / time.Second),
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearRoleCookie expires the role hint cookie.
func ClearRoleCookie(c echo.Context, secure bool) {
	c.SetCookie(&http.Cookie{
		Name:     RoleCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
