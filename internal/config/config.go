package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strconv"
	"time"
)

// fallbackSecret signs tokens when AUTH_SECRET is unset. It is only
// acceptable in development; Load refuses to start with it in prod.
const fallbackSecret = "fallback-secret-use-AUTH_SECRET"

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable. Secrets and identifiers stay strings; durations
// are converted once here so the rest of the code never re-parses them.
type Config struct {
	Env        string        // application environment ("dev", "test", "prod")
	Port       string        // HTTP port to listen on
	AuthSecret string        // symmetric secret used to sign session tokens
	SessionTTL time.Duration // lifetime of a session token and its cookie

	SMTPHost   string // mail relay host (empty disables outbound mail)
	SMTPPort   int    // mail relay port (465 = SMTPS, 587 = STARTTLS)
	SMTPUser   string // mail relay username
	SMTPPass   string // mail relay password
	MailFrom   string // From address for outbound mail
	MailName   string // optional display name for the From address
	ReplyTo    string // optional Reply-To address
	AdminEmail string // where quote-request notifications are sent

	TurnstileSecret string // Cloudflare Turnstile server-side key
	CaptchaBypass   bool   // skip captcha verification entirely
}

// Load reads configuration values from environment variables and returns a
// Config. Only APP_ENV is a hard requirement; everything else degrades
// (no Redis -> in-memory store, no SMTP -> mail disabled). The one
// exception is AUTH_SECRET, which must be set when running in prod.
func Load() Config {
	cfg := Config{
		Env:             must("APP_ENV"),
		Port:            envStr("APP_PORT", "8080"),
		AuthSecret:      os.Getenv("AUTH_SECRET"),
		SessionTTL:      time.Duration(envInt("SESSION_TTL_SECONDS", 86400)) * time.Second,
		SMTPHost:        os.Getenv("SMTP_HOST"),
		SMTPPort:        envInt("SMTP_PORT", 587),
		SMTPUser:        os.Getenv("SMTP_USER"),
		SMTPPass:        os.Getenv("SMTP_PASS"),
		MailFrom:        os.Getenv("FROM_EMAIL"),
		MailName:        os.Getenv("FROM_NAME"),
		ReplyTo:         os.Getenv("REPLY_TO"),
		AdminEmail:      os.Getenv("ADMIN_EMAIL"),
		TurnstileSecret: os.Getenv("TURNSTILE_SECRET_KEY"),
		CaptchaBypass:   envBool("CAPTCHA_BYPASS", false),
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 86400 * time.Second
	}
	if cfg.MailFrom == "" {
		cfg.MailFrom = cfg.SMTPUser
	}
	if cfg.AuthSecret == "" {
		if cfg.IsProd() {
			log.Fatal("AUTH_SECRET must be set in production")
		}
		log.Printf("warning: AUTH_SECRET not set, using an INSECURE fallback secret; set AUTH_SECRET outside development")
		cfg.AuthSecret = fallbackSecret
	}
	return cfg
}

// IsProd reports whether the service runs with the production profile.
// It controls the Secure cookie flag and the AUTH_SECRET requirement.
func (c Config) IsProd() bool {
	return c.Env == "prod" || c.Env == "production"
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envBool(k string, d bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	switch v {
	case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
		return false
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	return d
}
