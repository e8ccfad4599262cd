package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/atinyakov/civica/internal/metrics"
	"github.com/atinyakov/civica/internal/middleware"
)

// NewRouter constructs the reference backend's HTTP handler.
//
// Routes:
//
//	POST /auth/register                    → authHandler.Register
//	POST /auth/login                       → authHandler.Login
//	GET  /auth/me                          → authHandler.Me (signed in)
//	PUT  /auth/profile                     → authHandler.UpdateProfile (signed in)
//	GET  /forum, /forum/{id}               → contentHandler.Posts, Post
//	POST /forum/{id}/vote                  → contentHandler.VotePost (signed in)
//	POST /forum/{id}/replies/{replyID}/vote → contentHandler.VoteReply (signed in)
//	GET  /short-form                       → contentHandler.ShortForms
//	POST /short-form/{id}/like             → contentHandler.LikeShortForm (signed in)
//	GET  /metrics                          → metricsHandler
func NewRouter(
	authHandler *AuthHandler,
	contentHandler *ContentHandler,
	authn middleware.Authenticator,
	rec metrics.Recorder,
	metricsHandler http.Handler,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Honours the client's X-Request-ID so both sides log the same id.
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.WithRequestLogging(logger))
	r.Use(middleware.WithMetrics(rec))

	r.Handle("/metrics", metricsHandler)

	r.Group(func(r chi.Router) {
		r.Use(chiMiddleware.AllowContentType("application/json"))
		r.Use(middleware.BearerAuth(authn))

		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Get("/forum", contentHandler.Posts)
		r.Get("/forum/{id}", contentHandler.Post)
		r.Get("/short-form", contentHandler.ShortForms)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireUser)
			r.Get("/auth/me", authHandler.Me)
			r.Put("/auth/profile", authHandler.UpdateProfile)
			r.Post("/forum/{id}/vote", contentHandler.VotePost)
			r.Post("/forum/{id}/replies/{replyID}/vote", contentHandler.VoteReply)
			r.Post("/short-form/{id}/like", contentHandler.LikeShortForm)
		})
	})

	return r
}
