package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/avisions/backoffice/internal/captcha"
	"github.com/avisions/backoffice/internal/middleware"
	"github.com/avisions/backoffice/internal/model"
	"github.com/avisions/backoffice/internal/repository"
	"github.com/avisions/backoffice/internal/utils"
)

func newAuthFixture(t *testing.T) (*AuthHandler, *repository.UserRepo) {
	t.Helper()
	users := repository.NewUserRepo(repository.NewMemoryStore())
	return NewAuthHandler(testConfig(), users, captcha.New("", true)), users
}

func seedAdmin(t *testing.T, users *repository.UserRepo) model.PublicUser {
	t.Helper()
	u, err := users.Create(context.Background(), "Admin", "admin@x.com", model.RoleAdmin, "correct-horse", true)
	require.NoError(t, err)
	return u
}

func cookieByName(rec interface{ Result() *http.Response }, name string) *http.Cookie {
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}

func TestLoginSuccessSetsCookies(t *testing.T) {
	t.Parallel()
	h, users := newAuthFixture(t)
	seedAdmin(t, users)

	c, rec := jsonCtx(t, http.MethodPost, "/v1/auth/login",
		`{"email":"Admin@X.com","password":"correct-horse"}`, "")
	require.NoError(t, h.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "admin", decodeBody(t, rec)["role"])

	session := cookieByName(rec, middleware.SessionCookieName)
	require.NotNil(t, session)
	require.True(t, session.HttpOnly)
	require.NotNil(t, utils.VerifySessionToken(h.Cfg.AuthSecret, session.Value))

	role := cookieByName(rec, middleware.RoleCookieName)
	require.NotNil(t, role)
	require.Equal(t, "admin", role.Value)

	// Admin logins also refresh the recovery record.
	record := cookieByName(rec, middleware.AdminRecordCookieName)
	require.NotNil(t, record)
	require.NotNil(t, utils.VerifyAdminRecordToken(h.Cfg.AuthSecret, record.Value))
}

func mintAdminRecord(t *testing.T, secret, email, password string) string {
	t.Helper()
	salt, err := utils.NewSalt()
	require.NoError(t, err)
	tok, err := utils.NewAdminRecordToken(secret, utils.AdminRecord{
		Email:        email,
		PasswordHash: utils.HashPassword(password, salt),
		PasswordSalt: salt,
	})
	require.NoError(t, err)
	return tok
}

func TestLoginRecoversFromAdminRecordCookie(t *testing.T) {
	t.Parallel()
	h, _ := newAuthFixture(t)
	record := mintAdminRecord(t, h.Cfg.AuthSecret, "admin@x.com", "correct-horse")

	// The store is empty: only the signed record cookie can vouch for the
	// admin.
	c, rec := jsonCtx(t, http.MethodPost, "/v1/auth/login",
		`{"email":"admin@x.com","password":"correct-horse"}`, "")
	c.Request().Header.Set("Cookie", middleware.AdminRecordCookieName+"="+record)
	require.NoError(t, h.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "admin", decodeBody(t, rec)["role"])

	session := cookieByName(rec, middleware.SessionCookieName)
	require.NotNil(t, session)
	claims := utils.VerifySessionToken(h.Cfg.AuthSecret, session.Value)
	require.NotNil(t, claims)
	require.Equal(t, "admin@x.com", claims.Subject)
	require.NotNil(t, cookieByName(rec, middleware.AdminRecordCookieName))
}

func TestLoginRecoveryRejectsWrongPassword(t *testing.T) {
	t.Parallel()
	h, _ := newAuthFixture(t)
	record := mintAdminRecord(t, h.Cfg.AuthSecret, "admin@x.com", "correct-horse")

	c, rec := jsonCtx(t, http.MethodPost, "/v1/auth/login",
		`{"email":"admin@x.com","password":"wrong"}`, "")
	c.Request().Header.Set("Cookie", middleware.AdminRecordCookieName+"="+record)
	require.NoError(t, h.Login(c))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// The record only vouches for its own email.
	c, rec = jsonCtx(t, http.MethodPost, "/v1/auth/login",
		`{"email":"other@x.com","password":"correct-horse"}`, "")
	c.Request().Header.Set("Cookie", middleware.AdminRecordCookieName+"="+record)
	require.NoError(t, h.Login(c))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginRecoveryClosedWhenStoreHasUsers(t *testing.T) {
	t.Parallel()
	h, users := newAuthFixture(t)
	seedAdmin(t, users)
	record := mintAdminRecord(t, h.Cfg.AuthSecret, "ghost@x.com", "correct-horse")

	// Once any account exists the store is authoritative again and the
	// record cookie cannot log in an account the store does not hold.
	c, rec := jsonCtx(t, http.MethodPost, "/v1/auth/login",
		`{"email":"ghost@x.com","password":"correct-horse"}`, "")
	c.Request().Header.Set("Cookie", middleware.AdminRecordCookieName+"="+record)
	require.NoError(t, h.Login(c))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestStatusExistsFromAdminRecord(t *testing.T) {
	t.Parallel()
	h, _ := newAuthFixture(t)
	record := mintAdminRecord(t, h.Cfg.AuthSecret, "admin@x.com", "correct-horse")

	// Empty store but a verified record cookie: the admin should see the
	// login screen, not the setup screen.
	c, rec := jsonCtx(t, http.MethodGet, "/v1/auth/status", "", "")
	c.Request().Header.Set("Cookie", middleware.AdminRecordCookieName+"="+record)
	require.NoError(t, h.Status(c))
	require.Equal(t, true, decodeBody(t, rec)["exists"])

	// An unverifiable record does not count.
	c, rec = jsonCtx(t, http.MethodGet, "/v1/auth/status", "", "")
	c.Request().Header.Set("Cookie", middleware.AdminRecordCookieName+"=garbage")
	require.NoError(t, h.Status(c))
	require.Equal(t, false, decodeBody(t, rec)["exists"])
}

func TestLoginEditorGetsNoAdminRecord(t *testing.T) {
	t.Parallel()
	h, users := newAuthFixture(t)
	_, err := users.Create(context.Background(), "Ed", "ed@x.com", model.RoleEditor, "correct-horse", true)
	require.NoError(t, err)

	c, rec := jsonCtx(t, http.MethodPost, "/v1/auth/login",
		`{"email":"ed@x.com","password":"correct-horse"}`, "")
	require.NoError(t, h.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Nil(t, cookieByName(rec, middleware.AdminRecordCookieName))
}

func TestLoginWrongPassword(t *testing.T) {
	t.Parallel()
	h, users := newAuthFixture(t)
	seedAdmin(t, users)

	c, rec := jsonCtx(t, http.MethodPost, "/v1/auth/login",
		`{"email":"admin@x.com","password":"wrong"}`, "")
	require.NoError(t, h.Login(c))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Nil(t, cookieByName(rec, middleware.SessionCookieName))
}

func TestLoginDisabledAccount(t *testing.T) {
	t.Parallel()
	h, users := newAuthFixture(t)
	u := seedAdmin(t, users)
	inactive := false
	_, err := users.Update(context.Background(), u.ID, model.UserPatch{Active: &inactive})
	require.NoError(t, err)

	c, rec := jsonCtx(t, http.MethodPost, "/v1/auth/login",
		`{"email":"admin@x.com","password":"correct-horse"}`, "")
	require.NoError(t, h.Login(c))
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestLogoutClearsCookies(t *testing.T) {
	t.Parallel()
	h, _ := newAuthFixture(t)

	c, rec := jsonCtx(t, http.MethodPost, "/v1/auth/logout", "", "")
	require.NoError(t, h.Logout(c))
	require.Equal(t, http.StatusOK, rec.Code)

	session := cookieByName(rec, middleware.SessionCookieName)
	require.NotNil(t, session)
	require.Empty(t, session.Value)
	require.Negative(t, session.MaxAge)
}

func TestStatusShape(t *testing.T) {
	t.Parallel()
	h, users := newAuthFixture(t)

	// Fresh store, no session.
	c, rec := jsonCtx(t, http.MethodGet, "/v1/auth/status", "", "")
	require.NoError(t, h.Status(c))
	body := decodeBody(t, rec)
	require.Equal(t, false, body["exists"])
	require.Equal(t, false, body["authenticated"])

	seedAdmin(t, users)
	token, err := utils.NewSessionToken(h.Cfg.AuthSecret, "admin@x.com", time.Hour, nil)
	require.NoError(t, err)

	c, rec = jsonCtx(t, http.MethodGet, "/v1/auth/status", "", token)
	require.NoError(t, h.Status(c))
	body = decodeBody(t, rec)
	require.Equal(t, true, body["exists"])
	require.Equal(t, true, body["authenticated"])
	require.Equal(t, "admin@x.com", body["email"])
}

func TestSessionReturnsUserProjection(t *testing.T) {
	t.Parallel()
	h, users := newAuthFixture(t)
	u := seedAdmin(t, users)
	token, err := utils.NewSessionToken(h.Cfg.AuthSecret, "admin@x.com", time.Hour, nil)
	require.NoError(t, err)

	c, rec := jsonCtx(t, http.MethodGet, "/v1/auth/session", "", token)
	require.NoError(t, h.Session(c))
	body := decodeBody(t, rec)
	require.Equal(t, true, body["authenticated"])
	user := body["user"].(map[string]any)
	require.Equal(t, u.ID, user["id"])
	require.Equal(t, "admin@x.com", user["email"])
	require.Equal(t, "Admin", user["name"])
	require.Equal(t, "admin", user["role"])

	// No cookie: authenticated false, user null, still a 200.
	c, rec = jsonCtx(t, http.MethodGet, "/v1/auth/session", "", "")
	require.NoError(t, h.Session(c))
	body = decodeBody(t, rec)
	require.Equal(t, false, body["authenticated"])
	require.Nil(t, body["user"])
}

func TestInitBootstrapFlow(t *testing.T) {
	t.Parallel()
	h, users := newAuthFixture(t)

	// Too-short password is rejected before anything is written.
	c, rec := jsonCtx(t, http.MethodPost, "/v1/auth/init",
		`{"name":"First","email":"first@x.com","password":"short"}`, "")
	require.NoError(t, h.Init(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, 0, users.Count(context.Background()))

	// Valid bootstrap creates the first admin and logs it in.
	c, rec = jsonCtx(t, http.MethodPost, "/v1/auth/init",
		`{"name":"First","email":"first@x.com","password":"password1"}`, "")
	require.NoError(t, h.Init(c))
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, cookieByName(rec, middleware.SessionCookieName))

	created, err := users.FindByEmail(context.Background(), "first@x.com")
	require.NoError(t, err)
	require.NotNil(t, created)
	require.Equal(t, model.RoleAdmin, created.Role)

	// Any further init attempt is refused permanently.
	c, rec = jsonCtx(t, http.MethodPost, "/v1/auth/init",
		`{"name":"Second","email":"second@x.com","password":"password1"}`, "")
	require.NoError(t, h.Init(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "system already initialized", decodeBody(t, rec)["message"])
}

func TestResetRotatesPassword(t *testing.T) {
	t.Parallel()
	h, users := newAuthFixture(t)
	seedAdmin(t, users)

	token, err := utils.NewResetToken(h.Cfg.AuthSecret, "admin@x.com")
	require.NoError(t, err)

	c, rec := jsonCtx(t, http.MethodPost, "/v1/auth/reset",
		`{"token":"`+token+`","password":"new-password-1"}`, "")
	require.NoError(t, h.Reset(c))
	require.Equal(t, http.StatusOK, rec.Code)

	// Old password is dead, new one verifies.
	old, err := users.VerifyPassword(context.Background(), "admin@x.com", "correct-horse")
	require.NoError(t, err)
	require.Nil(t, old)
	fresh, err := users.VerifyPassword(context.Background(), "admin@x.com", "new-password-1")
	require.NoError(t, err)
	require.NotNil(t, fresh)
}

func TestResetMailBodyEscapesName(t *testing.T) {
	t.Parallel()
	out := resetMailBody("<img src=x>", "https://example.com/admin/reset?token=abc")
	require.NotContains(t, out, "<img")
	require.Contains(t, out, "&lt;img src=x&gt;")
	require.Contains(t, out, "https://example.com/admin/reset?token=abc")
}

func TestResetRejectsBadToken(t *testing.T) {
	t.Parallel()
	h, users := newAuthFixture(t)
	seedAdmin(t, users)

	// A session token is not a reset token even when validly signed.
	session, err := utils.NewSessionToken(h.Cfg.AuthSecret, "admin@x.com", time.Hour, nil)
	require.NoError(t, err)

	c, rec := jsonCtx(t, http.MethodPost, "/v1/auth/reset",
		`{"token":"`+session+`","password":"new-password-1"}`, "")
	require.NoError(t, h.Reset(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "invalid or expired link", decodeBody(t, rec)["message"])
}
