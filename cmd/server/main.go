package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/avisions/backoffice/internal/captcha"
	"github.com/avisions/backoffice/internal/config"
	"github.com/avisions/backoffice/internal/handler"
	"github.com/avisions/backoffice/internal/mailer"
	"github.com/avisions/backoffice/internal/middleware"
	"github.com/avisions/backoffice/internal/queue"
	"github.com/avisions/backoffice/internal/repository"
	"github.com/avisions/backoffice/internal/router"
)

func main() {
	// Load .env when present; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	// A reachable Redis is the durable store; otherwise fall back to the
	// in-memory store so previews and local development work without KV
	// credentials. The fallback is built once here and injected, never
	// reached through a package global.
	rdb := config.NewRedisClient()
	var store repository.Store
	if rdb != nil {
		store = repository.NewRedisStore(rdb)
		log.Printf("store: using redis")
	} else {
		store = repository.NewMemoryStore()
		log.Printf("store: redis unavailable, using in-memory fallback (non-persistent)")
	}

	users := repository.NewUserRepo(store)
	news := repository.NewNewsletterRepo(store)
	quotes := repository.NewQuoteRepo(store)

	gate := middleware.NewGate(users, cfg.AuthSecret)
	verifier := captcha.New(cfg.TurnstileSecret, cfg.CaptchaBypass)

	authH := handler.NewAuthHandler(cfg, users, verifier)
	usersH := handler.NewUserAdminHandler(cfg, users, gate)
	contentH := handler.NewContentHandler(store)
	newsH := handler.NewNewsletterHandler(news)
	quotesH := handler.NewQuoteHandler(cfg, quotes, verifier)
	contactH := handler.NewContactHandler(cfg, verifier)

	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	// Drain the outbound-mail queue in the background. With no SMTP
	// configuration the consumer logs and drops events instead of failing.
	go queue.StartMailConsumer(mailer.FromConfig(cfg))

	e := echo.New()
	e.HideBanner = true
	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, limiter)
	router.RegisterPublic(e, contentH, newsH, quotesH, contactH, limiter, cache)
	router.RegisterAdmin(e, gate, usersH, contentH, newsH, quotesH)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
