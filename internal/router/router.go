package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/avisions/backoffice/internal/handler"
	"github.com/avisions/backoffice/internal/middleware"
)

// RegisterRoutes registers routes that carry no dependencies. Currently it
// exposes only the health check used by load balancers.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth wires the authentication endpoints under /v1/auth. The
// limiter guards every endpoint an anonymous visitor can hammer with
// credentials or mail-triggering requests.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, limiter echo.MiddlewareFunc) {
	g := e.Group("/v1/auth")
	g.POST("/login", a.Login, limiter)
	g.POST("/logout", a.Logout)
	g.GET("/status", a.Status)
	g.GET("/session", a.Session)
	// Bootstrap: only usable while the user store is empty.
	g.POST("/init", a.Init, limiter)
	g.POST("/forgot", a.Forgot, limiter)
	g.POST("/reset", a.Reset, limiter)
}

// RegisterPublic wires the unauthenticated site endpoints: cached content
// reads and the two rate-limited form submissions.
func RegisterPublic(e *echo.Echo, content *handler.ContentHandler, news *handler.NewsletterHandler, quotes *handler.QuoteHandler, contact *handler.ContactHandler, limiter, cache echo.MiddlewareFunc) {
	e.GET("/v1/projects", content.GetProjects, cache)
	e.GET("/v1/services", content.GetServices, cache)
	e.GET("/v1/artists", content.GetArtists, cache)
	e.GET("/v1/team", content.GetTeam, cache)
	e.GET("/v1/categories", content.GetCategories, cache)

	e.POST("/v1/newsletter", news.Subscribe, limiter)
	e.POST("/v1/devis", quotes.Submit, limiter)
	e.POST("/v1/contact/dpd", contact.SubmitRGPD, limiter)
}

// RegisterAdmin wires the back-office API. The user-management endpoints
// perform their own gating because creation and listing must stay open
// while the store is empty (bootstrap mode); everything else lives in a
// group behind the admin gate.
func RegisterAdmin(e *echo.Echo, gate *middleware.Gate, users *handler.UserAdminHandler, content *handler.ContentHandler, news *handler.NewsletterHandler, quotes *handler.QuoteHandler) {
	// User management: bootstrap-aware, gated inside the handlers.
	e.GET("/v1/admin/users", users.List)
	e.POST("/v1/admin/users", users.Create)
	e.PUT("/v1/admin/users/:id", users.Update)
	e.DELETE("/v1/admin/users/:id", users.Delete)

	admin := e.Group("/v1/admin")
	admin.Use(gate.RequireAdmin())

	admin.PUT("/projects", content.SaveProjects)
	admin.PUT("/services", content.SaveServices)
	admin.PUT("/artists", content.SaveArtists)
	admin.PUT("/team", content.SaveTeam)
	admin.POST("/team/reorder", content.ReorderTeam)
	admin.PUT("/categories", content.SaveCategories)

	admin.GET("/newsletter", news.List)
	admin.DELETE("/newsletter", news.Unsubscribe)
	admin.PATCH("/newsletter", news.Update)

	admin.GET("/devis", quotes.List)
	admin.DELETE("/devis/:id", quotes.Delete)
}
