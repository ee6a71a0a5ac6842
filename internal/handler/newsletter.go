package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/avisions/backoffice/internal/repository"
)

// NewsletterHandler manages the subscriber set: public subscribe, gated
// list/remove/update for the admin manager.
type NewsletterHandler struct {
	Subscribers *repository.NewsletterRepo
}

func NewNewsletterHandler(r *repository.NewsletterRepo) *NewsletterHandler {
	return &NewsletterHandler{Subscribers: r}
}

type subscribeReq struct {
	Email string `json:"email"`
}
type unsubscribeReq struct {
	Email string `json:"email"`
}
type updateSubscriberReq struct {
	OldEmail string `json:"oldEmail"`
	NewEmail string `json:"newEmail"`
}

// Subscribe adds an email to the set. Duplicate subscriptions are silently
// absorbed by set semantics.
func (h *NewsletterHandler) Subscribe(c echo.Context) error {
	var req subscribeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid email"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Subscribers.Subscribe(ctx, req.Email); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "subscription failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// List returns all subscribers. Gated at the router.
func (h *NewsletterHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	subscribers, err := h.Subscribers.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch subscribers"})
	}
	return c.JSON(http.StatusOK, echo.Map{"subscribers": subscribers})
}

// Unsubscribe removes a subscriber. Gated at the router.
func (h *NewsletterHandler) Unsubscribe(c echo.Context) error {
	var req unsubscribeReq
	if err := c.Bind(&req); err != nil || req.Email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Subscribers.Remove(ctx, req.Email); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "subscriber not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete subscriber"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// Update replaces a subscriber email. Gated at the router.
func (h *NewsletterHandler) Update(c echo.Context) error {
	var req updateSubscriberReq
	if err := c.Bind(&req); err != nil || req.OldEmail == "" || req.NewEmail == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "emails required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Subscribers.Update(ctx, req.OldEmail, req.NewEmail); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "subscriber not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update subscriber"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
