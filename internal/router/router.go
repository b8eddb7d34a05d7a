// Package router defines how HTTP routes are registered for the API.
// Unauthenticated operations live under /v1/auth, everything else under
// /v1 behind the JWT middleware. Admin-only routes additionally carry the
// ADMIN role guard.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/amalgamator/amalgamator/internal/handler"
	"github.com/amalgamator/amalgamator/internal/middleware"
	"github.com/amalgamator/amalgamator/internal/model"
)

// RegisterRoutes registers routes that require no authentication.
// Currently that is only the health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the credential lifecycle routes. Register,
// login, refresh and token-based logout need no session; the
// current-user endpoint and bearer-based logout sit behind the JWT
// middleware.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	// Accepts a refresh_token body without a session.
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole(model.RoleMember, model.RoleAdmin))
	auth.GET("/auth/user", a.Me)
	// Bearer-based logout revokes every session of the caller.
	auth.POST("/logout", a.Logout)
}

// RegisterAmalgamations registers the amalgamation routes. All of them
// require a session; only creation is policy-gated and only the status
// update is creator-only (checked in the handler).
func RegisterAmalgamations(e *echo.Echo, h *handler.AmalgamationHandler, jwtSecret string) {
	g := e.Group("/v1/amalgamations")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleMember, model.RoleAdmin))
	g.POST("", h.Create)
	g.GET("", h.List)
	// Static route must sit alongside the :id route; echo prefers the
	// static match.
	g.GET("/random", h.Random)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.UpdateStatus)
}

// RegisterContributions registers the contribution routes.
func RegisterContributions(e *echo.Echo, h *handler.ContributionHandler, jwtSecret string) {
	g := e.Group("/v1/contributions")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleMember, model.RoleAdmin))
	g.POST("", h.Create)
	g.GET("/amalgamation/:id", h.ListByAmalgamation)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	g.POST("/:id/like", h.Like)
}

// RegisterBadges registers the badge catalog routes. Reads are open to
// any session; catalog writes and awards are admin-only.
func RegisterBadges(e *echo.Echo, h *handler.BadgeHandler, jwtSecret string) {
	g := e.Group("/v1/badges")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleMember, model.RoleAdmin))
	g.GET("", h.List)
	g.GET("/user/:id", h.ListByUser)

	admin := e.Group("/v1/badges")
	admin.Use(middleware.JWTAuth(jwtSecret))
	admin.Use(middleware.RequireRole(model.RoleAdmin))
	admin.POST("", h.Create)
	admin.POST("/award/:badgeId/:userId", h.Award)
}

// RegisterData registers the reference taxonomy routes. The read routes
// accept the optional response-cache middleware since taxonomies never
// change after import; pass nil to skip caching.
func RegisterData(e *echo.Echo, h *handler.DataHandler, jwtSecret string, cache echo.MiddlewareFunc) {
	g := e.Group("/v1/data")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleMember, model.RoleAdmin))

	reads := []echo.MiddlewareFunc{}
	if cache != nil {
		reads = append(reads, cache)
	}
	g.GET("/hierarchical", h.ListHierarchical, reads...)
	g.GET("/hierarchical/:source", h.ListHierarchicalBySource, reads...)
	g.GET("/search/:term", h.Search, reads...)

	admin := e.Group("/v1/data")
	admin.Use(middleware.JWTAuth(jwtSecret))
	admin.Use(middleware.RequireRole(model.RoleAdmin))
	admin.POST("/import/roget", h.ImportRoget)
}
