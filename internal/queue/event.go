// Package queue defines message payloads exchanged over the message broker.
package queue

// MailEvent asks the mail consumer to deliver one message. Handlers
// publish these instead of talking SMTP themselves so a slow or down
// relay never stalls an HTTP response.
type MailEvent struct {
	To       string `json:"to"`
	Subject  string `json:"subject"`
	HTMLBody string `json:"html_body"`
	// ReplyTo overrides the configured Reply-To header for this message,
	// e.g. a contact form sets it to the visitor's address.
	ReplyTo string `json:"replyTo,omitempty"`
	// Kind labels the mail for logging: "quote-notification",
	// "quote-confirmation", "password-reset", "rgpd-contact".
	Kind string `json:"kind"`
}
