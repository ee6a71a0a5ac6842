package handler

import (
	"fmt"
	"html"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/avisions/backoffice/internal/captcha"
	"github.com/avisions/backoffice/internal/config"
	"github.com/avisions/backoffice/internal/queue"
	queue_publisher "github.com/avisions/backoffice/internal/service"
)

// ContactHandler serves the RGPD data-request form. The submission is not
// persisted; it only produces a mail to the data-protection contact with
// the visitor's address as Reply-To.
type ContactHandler struct {
	Cfg     config.Config
	Captcha *captcha.Verifier
}

func NewContactHandler(cfg config.Config, cv *captcha.Verifier) *ContactHandler {
	return &ContactHandler{Cfg: cfg, Captcha: cv}
}

type rgpdReq struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	RequestType  string `json:"requestType"`
	Message      string `json:"message"`
	CaptchaToken string `json:"captchaToken"`
}

// rgpdTypeLabels maps the form's request types to the French labels used
// in the mail subject; unknown types pass through verbatim.
var rgpdTypeLabels = map[string]string{
	"access":        "Droit d'accès",
	"rectification": "Rectification",
	"deletion":      "Suppression",
	"portability":   "Portabilité",
	"other":         "Autre demande",
}

// SubmitRGPD validates the form and enqueues the notification mail.
func (h *ContactHandler) SubmitRGPD(c echo.Context) error {
	var req rgpdReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid body"})
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" ||
		strings.TrimSpace(req.RequestType) == "" || strings.TrimSpace(req.Message) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "all fields required"})
	}
	if !h.Captcha.Verify(c.Request().Context(), req.CaptchaToken) {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid captcha"})
	}
	if h.Cfg.AdminEmail == "" {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "contact mailbox not configured"})
	}

	typeLabel := req.RequestType
	if label, ok := rgpdTypeLabels[req.RequestType]; ok {
		typeLabel = label
	}

	if err := queue_publisher.PublishMail(c.Request().Context(), queue.MailEvent{
		To:       h.Cfg.AdminEmail,
		Subject:  fmt.Sprintf("[RGPD] Demande : %s - %s", typeLabel, req.Name),
		HTMLBody: rgpdMailBody(req, typeLabel),
		ReplyTo:  req.Email,
		Kind:     "rgpd-contact",
	}); err != nil {
		// Unlike quote notifications there is no stored copy to fall back
		// on, so a failed enqueue fails the request.
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "failed to send message"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

func rgpdMailBody(req rgpdReq, typeLabel string) string {
	esc := html.EscapeString
	var b strings.Builder
	b.WriteString("<h1>Nouvelle demande RGPD</h1>")
	fmt.Fprintf(&b, "<p><strong>De :</strong> %s (%s)</p>", esc(req.Name), esc(req.Email))
	fmt.Fprintf(&b, "<p><strong>Type de demande :</strong> %s</p>", esc(typeLabel))
	b.WriteString("<hr />")
	b.WriteString("<h3>Message :</h3>")
	fmt.Fprintf(&b, `<p style="white-space: pre-wrap;">%s</p>`, esc(req.Message))
	return b.String()
}
