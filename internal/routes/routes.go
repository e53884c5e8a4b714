package routes

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/mbnr/matrimonial/internal/auth"
	"github.com/mbnr/matrimonial/internal/handlers"
	"github.com/mbnr/matrimonial/internal/middleware"
	"github.com/mbnr/matrimonial/internal/models"
	pkghttp "github.com/mbnr/matrimonial/pkg/http"
)

// Handlers groups the HTTP handlers mounted under /api.
type Handlers struct {
	Auth         *handlers.AuthHandler
	Users        *handlers.UserHandler
	Profiles     *handlers.ProfileHandler
	Connections  *handlers.ConnectionHandler
	Verification *handlers.VerificationHandler
	Agents       *handlers.AgentHandler
}

// Limits are the per-minute request budgets for rate-limited routes.
type Limits struct {
	AuthPerMinute  int
	WritePerMinute int
}

// RegisterRoutes registers all application routes
func RegisterRoutes(
	router chi.Router,
	h Handlers,
	tokenManager *auth.TokenManager,
	userRepo auth.UserRepository,
	revokeRepo auth.TokenRevocationChecker,
	ips *pkghttp.IPResolver,
	limits Limits,
	logger *slog.Logger,
) {
	authLimit := middleware.RateLimitByIP(middleware.RateLimitConfig{RequestsPerMinute: limits.AuthPerMinute}, ips)
	writeLimit := middleware.WritesOnly(middleware.RateLimitByUser(middleware.RateLimitConfig{RequestsPerMinute: limits.WritePerMinute}, ips))

	// Public routes - no authentication required
	router.With(authLimit).Post("/auth/register", h.Auth.Register)
	router.With(authLimit).Post("/auth/login", h.Auth.Login)
	router.With(authLimit).Post("/auth/refresh", h.Auth.RefreshToken)

	router.Get("/agents", h.Agents.List)
	router.Get("/agents/{id}", h.Agents.GetByID)
	router.Get("/agents/{id}/qrcode", h.Agents.QRCode)

	// Protected routes - authentication required
	router.Group(func(r chi.Router) {
		r.Use(auth.AuthMiddlewareWithRevocation(tokenManager, revokeRepo, auth.RevocationConfig{FailClosed: true}, logger))
		r.Use(writeLimit)

		r.Post("/auth/logout", h.Auth.Logout)

		// Any active account
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(userRepo))

			r.Get("/users/{id}", h.Users.GetUser)
			r.Put("/users/{id}", h.Users.UpdateUser)
			r.Delete("/users/{id}", h.Users.DeleteUser)

			r.Post("/profiles", h.Profiles.Create)
			r.Put("/profiles", h.Profiles.Update)
			r.Get("/profiles/me", h.Profiles.GetMine)
			r.Get("/profiles/search", h.Profiles.Search)
			r.Get("/profiles/connections/me", h.Connections.ListMine)
			r.Post("/profiles/connect/{id}", h.Connections.Send)
			r.Put("/profiles/connect/{id}", h.Connections.Respond)
			r.Get("/profiles/{id}", h.Profiles.GetByUserID)

			r.Post("/verification", h.Verification.Submit)
			r.Get("/verification/status", h.Verification.GetStatus)

			r.Post("/agents", h.Agents.Register)
			r.Post("/agents/{id}/reviews", h.Agents.AddReview)
		})

		// Agent record owners. Admins keep their role when they register as agents.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(userRepo, models.RoleAgent, models.RoleAdmin))

			r.Put("/agents", h.Agents.Update)
			r.Get("/agents/clients", h.Agents.ListClients)
			r.Post("/agents/clients/{userId}", h.Agents.AddClient)
		})

		// Admin-only routes
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(userRepo, models.RoleAdmin))

			r.Get("/users", h.Users.ListUsers)
			r.Get("/verification/pending", h.Verification.ListPending)
			r.Put("/verification/{id}", h.Verification.Process)
		})
	})
}
