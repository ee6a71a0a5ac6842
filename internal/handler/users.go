package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/avisions/backoffice/internal/config"
	"github.com/avisions/backoffice/internal/middleware"
	"github.com/avisions/backoffice/internal/model"
	"github.com/avisions/backoffice/internal/repository"
)

// UserAdminHandler serves the admin user-management API. Listing and
// creation are open while the store is empty (bootstrap mode); everything
// else, and everything once a user exists, goes through the gate.
type UserAdminHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
	Gate  *middleware.Gate
}

func NewUserAdminHandler(cfg config.Config, u *repository.UserRepo, g *middleware.Gate) *UserAdminHandler {
	return &UserAdminHandler{Cfg: cfg, Users: u, Gate: g}
}

type createUserReq struct {
	Name     string     `json:"name"`
	Email    string     `json:"email"`
	Role     model.Role `json:"role"`
	Password string     `json:"password"`
	Active   *bool      `json:"active"`
}

// bootstrapOpen reports whether the store holds zero users. Count fails
// open to zero on store errors, so a store outage temporarily reopens this
// path; see the Count documentation for the rationale.
func (h *UserAdminHandler) bootstrapOpen(ctx context.Context) bool {
	return h.Users.Count(ctx) == 0
}

// List returns the public projection of all users. Open during bootstrap
// so the setup screen can confirm the store is empty.
func (h *UserAdminHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if !h.bootstrapOpen(ctx) {
		if res := h.Gate.Check(c); !res.OK {
			return c.JSON(res.Status, res.Body)
		}
	}
	users, err := h.Users.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load users"})
	}
	return c.JSON(http.StatusOK, users)
}

// Create adds a user. During bootstrap the requested role is overridden
// with admin no matter what was asked for, since the first account must be
// able to open the gate. After bootstrap the caller must be an admin and
// the role defaults to editor.
func (h *UserAdminHandler) Create(c echo.Context) error {
	var req createUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if strings.TrimSpace(req.Name) == "" || req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "required fields: name, email, password"})
	}
	if !emailRe.MatchString(req.Email) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid email"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	bootstrap := h.bootstrapOpen(ctx)
	if !bootstrap {
		if res := h.Gate.Check(c); !res.OK {
			return c.JSON(res.Status, res.Body)
		}
	}

	role := req.Role
	if bootstrap {
		role = model.RoleAdmin
	} else if !model.ValidRole(role) {
		role = model.RoleEditor
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}

	created, err := h.Users.Create(ctx, req.Name, req.Email, role, req.Password, active)
	if err != nil {
		if err == repository.ErrEmailExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}
	return c.JSON(http.StatusCreated, created)
}

// Update applies a partial patch to a user. Unavailable during bootstrap:
// with zero users there is nothing to update, and the unauthenticated
// window must stay limited to first-account creation.
func (h *UserAdminHandler) Update(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if h.bootstrapOpen(ctx) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unavailable during initialization"})
	}
	if res := h.Gate.Check(c); !res.OK {
		return c.JSON(res.Status, res.Body)
	}

	var patch model.UserPatch
	if err := c.Bind(&patch); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	updated, err := h.Users.Update(ctx, c.Param("id"), patch)
	if err != nil {
		switch err {
		case repository.ErrUserNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
		case repository.ErrEmailExists:
			return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update user failed"})
	}
	return c.JSON(http.StatusOK, updated)
}

// Delete removes a user by id, distinguishing "never existed" from
// success so the UI can say "already deleted".
func (h *UserAdminHandler) Delete(c echo.Context) error {
	if res := h.Gate.Check(c); !res.OK {
		return c.JSON(res.Status, res.Body)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.Remove(ctx, c.Param("id")); err != nil {
		if err == repository.ErrUserNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete user failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}
