package handler

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/avisions/backoffice/internal/captcha"
	"github.com/avisions/backoffice/internal/config"
	"github.com/avisions/backoffice/internal/model"
	"github.com/avisions/backoffice/internal/queue"
	"github.com/avisions/backoffice/internal/repository"
	queue_publisher "github.com/avisions/backoffice/internal/service"
)

// QuoteHandler serves the quote-request form: public submission with
// captcha and mail dispatch, gated listing and deletion for the admin
// manager.
type QuoteHandler struct {
	Cfg     config.Config
	Quotes  *repository.QuoteRepo
	Captcha *captcha.Verifier
}

func NewQuoteHandler(cfg config.Config, r *repository.QuoteRepo, cv *captcha.Verifier) *QuoteHandler {
	return &QuoteHandler{Cfg: cfg, Quotes: r, Captcha: cv}
}

type quoteSubmitReq struct {
	model.QuoteRequest
	CaptchaToken string `json:"captchaToken"`
}

// Submit validates and persists a quote request, then enqueues the admin
// notification and the requester confirmation. Mail failures are logged by
// the publisher and ignored here: the submission is already durable, and
// losing a notification must not fail the form.
func (h *QuoteHandler) Submit(c echo.Context) error {
	var req quoteSubmitReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid body"})
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "name and email required"})
	}
	if !h.Captcha.Verify(c.Request().Context(), req.CaptchaToken) {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid captcha"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	saved, err := h.Quotes.Add(ctx, req.QuoteRequest)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "failed to save request"})
	}

	if h.Cfg.AdminEmail != "" {
		_ = queue_publisher.PublishMail(c.Request().Context(), queue.MailEvent{
			To:       h.Cfg.AdminEmail,
			Subject:  "Nouvelle demande de devis — " + saved.Name,
			HTMLBody: quoteNotificationBody(saved),
			Kind:     "quote-notification",
		})
	}
	_ = queue_publisher.PublishMail(c.Request().Context(), queue.MailEvent{
		To:       saved.Email,
		Subject:  "Merci pour votre demande de devis",
		HTMLBody: quoteConfirmationBody(saved.Name),
		Kind:     "quote-confirmation",
	})
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "id": saved.ID})
}

// List returns all submissions, newest first. Gated at the router.
func (h *QuoteHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	quotes, err := h.Quotes.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "failed to load requests"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "devis": quotes})
}

// Delete removes one submission by id. Gated at the router.
func (h *QuoteHandler) Delete(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Quotes.Remove(ctx, c.Param("id")); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "request not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "failed to delete request"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

func quoteNotificationBody(q model.QuoteRequest) string {
	esc := func(s string) string { return html.EscapeString(s) }
	var services strings.Builder
	if len(q.Services) == 0 {
		services.WriteString("<li>Non spécifié</li>")
	}
	for _, s := range q.Services {
		fmt.Fprintf(&services, "<li>%s</li>", esc(s))
	}
	var b strings.Builder
	b.WriteString(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">`)
	b.WriteString("<h1>Nouvelle demande de devis</h1>")
	b.WriteString("<h2>Contact</h2>")
	fmt.Fprintf(&b, "<p><strong>Nom :</strong> %s</p>", esc(q.Name))
	fmt.Fprintf(&b, `<p><strong>Email :</strong> <a href="mailto:%s">%s</a></p>`, esc(q.Email), esc(q.Email))
	if q.Phone != "" {
		fmt.Fprintf(&b, "<p><strong>Téléphone :</strong> %s</p>", esc(q.Phone))
	}
	if q.Company != "" {
		fmt.Fprintf(&b, "<p><strong>Entreprise :</strong> %s</p>", esc(q.Company))
	}
	b.WriteString("<h2>Événement</h2>")
	fmt.Fprintf(&b, "<p><strong>Type :</strong> %s</p>", esc(orDefault(q.EventType, "Non spécifié")))
	if q.EventDate != "" {
		fmt.Fprintf(&b, "<p><strong>Date :</strong> %s</p>", esc(q.EventDate))
	}
	if q.GuestCount != "" {
		fmt.Fprintf(&b, "<p><strong>Invités :</strong> %s</p>", esc(q.GuestCount))
	}
	if q.Location != "" {
		fmt.Fprintf(&b, "<p><strong>Lieu :</strong> %s</p>", esc(q.Location))
	}
	b.WriteString("<h2>Services demandés</h2>")
	fmt.Fprintf(&b, "<ul>%s</ul>", services.String())
	if q.Description != "" {
		b.WriteString("<h2>Description</h2>")
		fmt.Fprintf(&b, "<p>%s</p>", strings.ReplaceAll(esc(q.Description), "\n", "<br>"))
	}
	b.WriteString("</div>")
	return b.String()
}

func quoteConfirmationBody(name string) string {
	return fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h1>Merci pour votre demande !</h1>
  <p>Bonjour %s,</p>
  <p>Nous avons bien reçu votre demande de devis et nous vous recontacterons
  dans les plus brefs délais.</p>
  <p>À très bientôt,<br><strong>L'équipe</strong></p>
</div>`, html.EscapeString(name))
}

func orDefault(s, d string) string {
	if s == "" {
		return d
	}
	return s
}
