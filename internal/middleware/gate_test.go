package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/avisions/backoffice/internal/model"
	"github.com/avisions/backoffice/internal/repository"
	"github.com/avisions/backoffice/internal/utils"
)

const testSecret = "gate-test-secret"

func newGateFixture(t *testing.T) (*Gate, *repository.UserRepo) {
	t.Helper()
	users := repository.NewUserRepo(repository.NewMemoryStore())
	return NewGate(users, testSecret), users
}

func gateRequest(t *testing.T, sessionToken string) echo.Context {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/admin/users", nil)
	if sessionToken != "" {
		req.Header.Set("Cookie", SessionCookieName+"="+sessionToken)
	}
	return e.NewContext(req, httptest.NewRecorder())
}

func mustSessionToken(t *testing.T, email string) string {
	t.Helper()
	tok, err := utils.NewSessionToken(testSecret, email, time.Hour, nil)
	require.NoError(t, err)
	return tok
}

func TestGateRejectsMissingCookie(t *testing.T) {
	t.Parallel()
	gate, _ := newGateFixture(t)

	res := gate.Check(gateRequest(t, ""))
	require.False(t, res.OK)
	require.Equal(t, http.StatusUnauthorized, res.Status)
	require.Equal(t, "not authenticated", res.Body["error"])
}

func TestGateRejectsInvalidToken(t *testing.T) {
	t.Parallel()
	gate, _ := newGateFixture(t)

	res := gate.Check(gateRequest(t, "garbage.token.value"))
	require.False(t, res.OK)
	require.Equal(t, http.StatusUnauthorized, res.Status)
	require.Equal(t, "invalid session", res.Body["error"])
}

func TestGateRejectsExpiredToken(t *testing.T) {
	t.Parallel()
	gate, users := newGateFixture(t)
	_, err := users.Create(context.Background(), "A", "a@x.com", model.RoleAdmin, "password1", true)
	require.NoError(t, err)

	expired, err := utils.NewSessionToken(testSecret, "a@x.com", -2*time.Second, nil)
	require.NoError(t, err)

	res := gate.Check(gateRequest(t, expired))
	require.False(t, res.OK)
	require.Equal(t, http.StatusUnauthorized, res.Status)
}

func TestGateRejectsEditorRole(t *testing.T) {
	t.Parallel()
	gate, users := newGateFixture(t)
	_, err := users.Create(context.Background(), "Ed", "ed@x.com", model.RoleEditor, "password1", true)
	require.NoError(t, err)

	// The token is valid and unexpired; the live role check must still deny.
	res := gate.Check(gateRequest(t, mustSessionToken(t, "ed@x.com")))
	require.False(t, res.OK)
	require.Equal(t, http.StatusForbidden, res.Status)
	require.Equal(t, "access denied", res.Body["error"])
}

func TestGateRejectsDeactivatedAdmin(t *testing.T) {
	t.Parallel()
	gate, users := newGateFixture(t)
	created, err := users.Create(context.Background(), "A", "a@x.com", model.RoleAdmin, "password1", true)
	require.NoError(t, err)

	token := mustSessionToken(t, "a@x.com")

	// Works while the account is active.
	require.True(t, gate.Check(gateRequest(t, token)).OK)

	// Deactivation takes effect on the very next request even though the
	// token itself is still cryptographically valid.
	inactive := false
	_, err = users.Update(context.Background(), created.ID, model.UserPatch{Active: &inactive})
	require.NoError(t, err)

	res := gate.Check(gateRequest(t, token))
	require.False(t, res.OK)
	require.Equal(t, http.StatusForbidden, res.Status)
}

func TestGateRejectsDeletedUser(t *testing.T) {
	t.Parallel()
	gate, users := newGateFixture(t)
	created, err := users.Create(context.Background(), "A", "a@x.com", model.RoleAdmin, "password1", true)
	require.NoError(t, err)

	token := mustSessionToken(t, "a@x.com")
	require.NoError(t, users.Remove(context.Background(), created.ID))

	res := gate.Check(gateRequest(t, token))
	require.False(t, res.OK)
	require.Equal(t, http.StatusForbidden, res.Status)
}

func TestGateAllowsActiveAdmin(t *testing.T) {
	t.Parallel()
	gate, users := newGateFixture(t)
	_, err := users.Create(context.Background(), "A", "Admin@X.com", model.RoleAdmin, "password1", true)
	require.NoError(t, err)

	// Token subject case differs from the stored email; lookup is
	// case-insensitive.
	res := gate.Check(gateRequest(t, mustSessionToken(t, "admin@x.com")))
	require.True(t, res.OK)
	require.NotNil(t, res.User)
	require.Equal(t, model.RoleAdmin, res.User.Role)
}

func TestRequireAdminMiddleware(t *testing.T) {
	t.Parallel()
	gate, users := newGateFixture(t)
	_, err := users.Create(context.Background(), "A", "a@x.com", model.RoleAdmin, "password1", true)
	require.NoError(t, err)

	e := echo.New()
	handlerFn := gate.RequireAdmin()(func(c echo.Context) error {
		require.Equal(t, "a@x.com", c.Get("email"))
		require.Equal(t, "admin", c.Get("role"))
		return c.NoContent(http.StatusOK)
	})

	// Authorized.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Cookie", SessionCookieName+"="+mustSessionToken(t, "a@x.com"))
	rec := httptest.NewRecorder()
	require.NoError(t, handlerFn(e.NewContext(req, rec)))
	require.Equal(t, http.StatusOK, rec.Code)

	// Unauthenticated.
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	rec = httptest.NewRecorder()
	require.NoError(t, handlerFn(e.NewContext(req, rec)))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
