package handler

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/avisions/backoffice/internal/captcha"
	"github.com/avisions/backoffice/internal/config"
	"github.com/avisions/backoffice/internal/middleware"
	"github.com/avisions/backoffice/internal/model"
	"github.com/avisions/backoffice/internal/queue"
	"github.com/avisions/backoffice/internal/repository"
	queue_publisher "github.com/avisions/backoffice/internal/service"
	"github.com/avisions/backoffice/internal/utils"
)

// AuthHandler bundles dependencies for the auth endpoints: login/logout,
// session introspection, the bootstrap init path and the password-reset
// flow.
type AuthHandler struct {
	Cfg     config.Config
	Users   *repository.UserRepo
	Captcha *captcha.Verifier
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, cv *captcha.Verifier) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Captcha: cv}
}

// ----- DTOs -----

type loginReq struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	CaptchaToken string `json:"captchaToken"`
}
type initReq struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	CaptchaToken string `json:"captchaToken"`
}
type forgotReq struct {
	Email        string `json:"email"`
	CaptchaToken string `json:"captchaToken"`
}
type resetReq struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Login verifies credentials against the live store and, on success, binds
// a session cookie plus a role hint cookie. Admin logins also refresh the
// long-lived admin-record cookie so the account survives a store reset.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "email and password required"})
	}
	if !h.Captcha.Verify(c.Request().Context(), req.CaptchaToken) {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid captcha"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	user, err := h.Users.VerifyPassword(ctx, req.Email, req.Password)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "server error"})
	}
	if user == nil {
		// Store-reset recovery: with zero users in the store, the signed
		// admin-record cookie can still authenticate its admin.
		if rec := h.adminRecordFallback(ctx, c, req.Email, req.Password); rec != nil {
			return h.loginRecovered(c, rec)
		}
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "invalid credentials"})
	}
	if !user.Active {
		return c.JSON(http.StatusForbidden, echo.Map{"success": false, "message": "account disabled"})
	}

	token, err := utils.NewSessionToken(h.Cfg.AuthSecret, user.Email, h.Cfg.SessionTTL, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "server error"})
	}
	secure := h.Cfg.IsProd()
	middleware.SetSessionCookie(c, token, h.Cfg.SessionTTL, secure)
	middleware.SetRoleCookie(c, string(user.Role), h.Cfg.SessionTTL, secure)

	if user.Role == model.RoleAdmin {
		if rec, err := utils.NewAdminRecordToken(h.Cfg.AuthSecret, utils.AdminRecord{
			Email:        user.Email,
			PasswordHash: user.PasswordHash,
			PasswordSalt: user.PasswordSalt,
		}); err == nil {
			middleware.SetAdminRecordCookie(c, rec, utils.AdminRecordTTL, secure)
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "role": user.Role})
}

// adminRecordFallback authenticates against the admin-record cookie. It
// only applies while the store holds zero users: once any account exists
// the store is authoritative again. The cookie must verify, name the
// email being logged in, and its embedded hash must match the password.
func (h *AuthHandler) adminRecordFallback(ctx context.Context, c echo.Context, email, password string) *utils.AdminRecord {
	if h.Users.Count(ctx) > 0 {
		return nil
	}
	token := middleware.ReadCookie(c.Request(), middleware.AdminRecordCookieName)
	if token == "" {
		return nil
	}
	rec := utils.VerifyAdminRecordToken(h.Cfg.AuthSecret, token)
	if rec == nil || !strings.EqualFold(rec.Email, email) {
		return nil
	}
	if !utils.CheckPassword(password, rec.PasswordSalt, rec.PasswordHash) {
		return nil
	}
	return rec
}

// loginRecovered completes a login that authenticated through the
// admin-record cookie. The session is issued as usual and the record
// cookie is refreshed; the account itself can be recreated through the
// open bootstrap path.
func (h *AuthHandler) loginRecovered(c echo.Context, rec *utils.AdminRecord) error {
	token, err := utils.NewSessionToken(h.Cfg.AuthSecret, strings.ToLower(rec.Email), h.Cfg.SessionTTL, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "server error"})
	}
	secure := h.Cfg.IsProd()
	middleware.SetSessionCookie(c, token, h.Cfg.SessionTTL, secure)
	middleware.SetRoleCookie(c, string(model.RoleAdmin), h.Cfg.SessionTTL, secure)
	if fresh, err := utils.NewAdminRecordToken(h.Cfg.AuthSecret, *rec); err == nil {
		middleware.SetAdminRecordCookie(c, fresh, utils.AdminRecordTTL, secure)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "role": model.RoleAdmin})
}

// Logout clears the session and role cookies. There is no server-side
// session to revoke; the token simply stops being presented.
func (h *AuthHandler) Logout(c echo.Context) error {
	secure := h.Cfg.IsProd()
	middleware.ClearSessionCookie(c, secure)
	middleware.ClearRoleCookie(c, secure)
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// Status reports whether any account exists (drives the login-vs-setup UI)
// and whether the caller holds a valid session. When the store is empty a
// verified admin-record cookie still counts as an existing account, so a
// store reset sends its admin to the login screen, not the setup screen.
func (h *AuthHandler) Status(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	exists := h.Users.Count(ctx) > 0
	if !exists {
		if token := middleware.ReadCookie(c.Request(), middleware.AdminRecordCookieName); token != "" {
			exists = utils.VerifyAdminRecordToken(h.Cfg.AuthSecret, token) != nil
		}
	}

	var email any
	authenticated := false
	if token := middleware.ReadCookie(c.Request(), middleware.SessionCookieName); token != "" {
		if claims := utils.VerifySessionToken(h.Cfg.AuthSecret, token); claims != nil {
			authenticated = true
			email = claims.Subject
		}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"exists":        exists,
		"authenticated": authenticated,
		"email":         email,
	})
}

// Session returns the caller's user projection when the session token
// verifies, in the shape the admin front end expects.
func (h *AuthHandler) Session(c echo.Context) error {
	token := middleware.ReadCookie(c.Request(), middleware.SessionCookieName)
	claims := utils.VerifySessionToken(h.Cfg.AuthSecret, token)
	if token == "" || claims == nil {
		return c.JSON(http.StatusOK, echo.Map{"authenticated": false, "user": nil})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	name := claims.Subject
	var id, role string
	if user, err := h.Users.FindByEmail(ctx, claims.Subject); err == nil && user != nil {
		id, name, role = user.ID, user.Name, string(user.Role)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"authenticated": true,
		"user": echo.Map{
			"id":    id,
			"email": claims.Subject,
			"name":  name,
			"role":  role,
		},
	})
}

// Init is the bootstrap escape hatch: it creates the very first account
// without prior authentication and forces it to the admin role. Once any
// user exists the endpoint refuses permanently.
func (h *AuthHandler) Init(c echo.Context) error {
	var req initReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "name, email and password required"})
	}
	if !emailRe.MatchString(req.Email) {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid email"})
	}
	if len(req.Password) < 8 {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "password too short (min. 8 characters)"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if h.Users.Count(ctx) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "system already initialized"})
	}
	if !h.Captcha.Verify(c.Request().Context(), req.CaptchaToken) {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid captcha"})
	}

	created, err := h.Users.Create(ctx, req.Name, req.Email, model.RoleAdmin, req.Password, true)
	if err != nil {
		if err == repository.ErrEmailExists {
			return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "server error"})
	}

	// Auto-login the first admin.
	token, err := utils.NewSessionToken(h.Cfg.AuthSecret, created.Email, h.Cfg.SessionTTL, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "server error"})
	}
	secure := h.Cfg.IsProd()
	middleware.SetSessionCookie(c, token, h.Cfg.SessionTTL, secure)
	middleware.SetRoleCookie(c, string(created.Role), h.Cfg.SessionTTL, secure)
	return c.JSON(http.StatusCreated, echo.Map{"success": true})
}

// Forgot mails a short-lived reset link. The response is identical whether
// or not an account exists so the endpoint cannot be used to probe emails.
func (h *AuthHandler) Forgot(c echo.Context) error {
	var req forgotReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Email) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "email required"})
	}
	if !h.Captcha.Verify(c.Request().Context(), req.CaptchaToken) {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid captcha"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	concealed := echo.Map{"success": true, "message": "if an account exists, an email has been sent"}

	user, err := h.Users.FindByEmail(ctx, req.Email)
	if err != nil || user == nil || !user.Active {
		return c.JSON(http.StatusOK, concealed)
	}

	token, err := utils.NewResetToken(h.Cfg.AuthSecret, user.Email)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "server error"})
	}
	resetURL := fmt.Sprintf("%s://%s/admin/reset?token=%s", c.Scheme(), c.Request().Host, token)

	_ = queue_publisher.PublishMail(c.Request().Context(), queue.MailEvent{
		To:       user.Email,
		Subject:  "Réinitialisation de votre mot de passe",
		HTMLBody: resetMailBody(user.Name, resetURL),
		Kind:     "password-reset",
	})
	return c.JSON(http.StatusOK, concealed)
}

// Reset consumes a reset token and rotates the account password (salt and
// hash together, via the store's update path).
func (h *AuthHandler) Reset(c echo.Context) error {
	var req resetReq
	if err := c.Bind(&req); err != nil || req.Token == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "token required"})
	}
	if len(req.Password) < 8 {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "password too short (min. 8 characters)"})
	}
	email := utils.VerifyResetToken(h.Cfg.AuthSecret, req.Token)
	if email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid or expired link"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	user, err := h.Users.FindByEmail(ctx, email)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "server error"})
	}
	if user == nil || !user.Active {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid or expired link"})
	}
	if _, err := h.Users.Update(ctx, user.ID, model.UserPatch{Password: &req.Password}); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "server error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

func resetMailBody(name, resetURL string) string {
	display := name
	if display == "" {
		display = "there"
	}
	display = html.EscapeString(display)
	return fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <p>Bonjour %s,</p>
  <p>Une réinitialisation de mot de passe a été demandée pour votre compte.
  Ce lien est valable 15 minutes :</p>
  <p><a href="%s">Réinitialiser mon mot de passe</a></p>
  <p>Si vous n'êtes pas à l'origine de cette demande, ignorez cet email.</p>
</div>`, display, resetURL)
}
