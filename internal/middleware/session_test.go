package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func TestReadCookie(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		header string
		want   string
	}{
		{"missing header", "", ""},
		{"single cookie", "av_session=abc.def.ghi", "abc.def.ghi"},
		{"among others", "av_role=admin; av_session=tok123; other=1", "tok123"},
		{"url encoded value", "av_session=a%3Db%20c", "a=b c"},
		{"name is prefix of another", "av_session_old=nope; av_session=real", "real"},
		{"malformed pair skipped", "junk; av_session=ok", "ok"},
		{"absent name", "av_role=admin", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Cookie", tc.header)
			}
			require.Equal(t, tc.want, ReadCookie(req, SessionCookieName))
		})
	}
}

func TestSessionCookieAttributes(t *testing.T) {
	t.Parallel()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec)

	SetSessionCookie(c, "tok", 24*time.Hour, true)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	ck := cookies[0]
	require.Equal(t, SessionCookieName, ck.Name)
	require.Equal(t, "tok", ck.Value)
	require.Equal(t, "/", ck.Path)
	require.Equal(t, 86400, ck.MaxAge)
	require.True(t, ck.HttpOnly)
	require.True(t, ck.Secure)
	require.Equal(t, http.SameSiteLaxMode, ck.SameSite)
}

func TestClearSessionCookieExpires(t *testing.T) {
	t.Parallel()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec)

	ClearSessionCookie(c, false)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, SessionCookieName, cookies[0].Name)
	require.Empty(t, cookies[0].Value)
	require.Negative(t, cookies[0].MaxAge)
}

func TestRoleCookieIsNotHTTPOnly(t *testing.T) {
	t.Parallel()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec)

	SetRoleCookie(c, "admin", time.Hour, false)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.False(t, cookies[0].HttpOnly)
}
