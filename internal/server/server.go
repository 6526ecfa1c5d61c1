// Package server Yatube
//
// The Yatube is a blogging service: users publish posts, group them, comment them and follow each other.
//
//     Schemes: https
//     BasePath: /v1
//     Version: 1.0.0
//
//     Produces:
//     - application/json
//     Consumes:
//     - application/json
//
// swagger:meta
package server

import (
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"

	"github.com/Decentr-net/yatube/internal/api"
	"github.com/Decentr-net/yatube/internal/auth"
	"github.com/Decentr-net/yatube/internal/metrics"
	mm "github.com/Decentr-net/yatube/internal/middleware"
	"github.com/Decentr-net/yatube/internal/service"
)

//go:generate swagger generate spec -t swagger -m -c . -o ../../static/swagger.json

const maxBodySize = 64 * 1024

type server struct {
	s     service.Service
	cache *mm.Cache
	m     metrics.FollowRecorder
}

// Dependencies are collaborators of the http server.
type Dependencies struct {
	Service       service.Service
	Cache         *mm.Cache
	Authenticator *auth.Authenticator
	// RateLimiter limits write requests. It is optional.
	RateLimiter *mm.RateLimiter
	// Metrics is optional.
	Metrics *metrics.Collector
}

// SetupRouter setups handlers to chi router.
func SetupRouter(d Dependencies, r chi.Router, timeout time.Duration) {
	r.Use(
		api.LoggerMiddleware,
		middleware.StripSlashes,
		cors.AllowAll().Handler,
		api.RequestIDMiddleware,
		api.RecovererMiddleware,
		api.TimeoutMiddleware(timeout),
		api.BodyLimiterMiddleware(maxBodySize),
	)

	srv := server{
		s:     d.Service,
		cache: d.Cache,
		m:     nopFollowRecorder{},
	}

	if d.Metrics != nil {
		r.Use(api.MetricsMiddleware(d.Metrics.RecordHTTP))
		srv.m = d.Metrics
	}

	r.Route("/v1", func(r chi.Router) {
		r.Use(auth.Middleware(d.Authenticator, d.Service.EnsureUser))

		r.Get("/posts", d.Cache.Handler(srv.index))
		r.Delete("/posts/cache", srv.clearCache)
		r.Get("/posts/{id}", srv.getPost)
		r.Get("/groups/{slug}/posts", srv.groupPosts)
		r.Get("/profiles/{username}", srv.profile)
		r.Get("/follow", srv.feed)

		r.Group(func(r chi.Router) {
			if d.RateLimiter != nil {
				r.Use(d.RateLimiter.Middleware)
			}

			r.Post("/posts", srv.createPost)
			r.Post("/posts/{id}/edit", srv.editPost)
			r.Post("/posts/{id}/comments", srv.addComment)
			r.Post("/profiles/{username}/follow", srv.follow)
			r.Post("/profiles/{username}/unfollow", srv.unfollow)
		})
	})
}

type nopFollowRecorder struct{}

func (nopFollowRecorder) Followed()             {}
func (nopFollowRecorder) Unfollowed()           {}
func (nopFollowRecorder) FollowRejected(string) {}
