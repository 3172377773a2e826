// Package server wires the portal's HTTP API: the year-filtered feed,
// post CRUD, search, session handling, and the admin surface.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Shingunhoon/Clix/pkg/auth"
	"github.com/Shingunhoon/Clix/pkg/config"
	"github.com/Shingunhoon/Clix/pkg/feed"
	"github.com/Shingunhoon/Clix/pkg/limiter"
	"github.com/Shingunhoon/Clix/pkg/meta"
	"github.com/Shingunhoon/Clix/pkg/observability"
	"github.com/Shingunhoon/Clix/pkg/search"
	"github.com/Shingunhoon/Clix/pkg/settings"
	"github.com/Shingunhoon/Clix/pkg/store"
)

// Server holds the portal's request-handling dependencies.
type Server struct {
	cfg       *config.Config
	store     store.Store
	log       *slog.Logger
	validator *auth.JWTValidator
	limits    limiter.Store
	settings  *settings.Service
	meta      *meta.Aggregator
	search    *search.Index
	rebuilder *search.Rebuilder
	obs       *observability.Provider

	httpServer *http.Server
}

// Options carries optional dependencies; nil fields disable the
// corresponding concern (rate limiting, telemetry, search).
type Options struct {
	Validator *auth.JWTValidator
	Limiter   limiter.Store
	Search    *search.Index
	Obs       *observability.Provider
}

func New(cfg *config.Config, st store.Store, log *slog.Logger, opts Options) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{
		cfg:       cfg,
		store:     st,
		log:       log,
		validator: opts.Validator,
		limits:    opts.Limiter,
		settings:  settings.NewService(st.Settings(), log),
		meta:      meta.NewAggregator(st, log),
		search:    opts.Search,
		obs:       opts.Obs,
	}
	if s.search != nil {
		s.rebuilder = search.NewRebuilder(s.search, 500*time.Millisecond, log)
	}
	return s
}

// Router assembles the chi router with the full middleware chain.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(auth.RequestIDMiddleware)
	r.Use(auth.CORSMiddleware(s.cfg.CORSOrigins))
	if s.obs != nil {
		r.Use(s.obs.HTTPMiddleware)
	}
	r.Use(auth.NewMiddleware(s.validator))
	if s.limits != nil {
		r.Use(auth.RateLimitMiddleware(s.limits, limiter.DefaultPolicy(s.cfg.RateLimitRPM)))
	}

	r.Get("/healthz", s.handleHealthz)

	r.Route("/api", func(r chi.Router) {
		// Public reads.
		r.Get("/years", s.handleYears)
		r.Get("/feed", s.handleFeed)
		r.Get("/search", s.handleSearch)
		r.Get("/hall-of-fame", s.handleHallOfFame)
		r.Get("/posts/{id}", s.handleGetPost)

		// Anything below requires a session backed by a user record.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireMember(s.store.Users()))

			r.Get("/auth/session", s.handleSession)
			r.Post("/posts", s.handleCreatePost)
			r.Put("/posts/{id}", s.handleUpdatePost)
			r.Delete("/posts/{id}", s.handleDeletePost)
			r.Post("/posts/{id}/like", s.handleAddLike)
			r.Delete("/posts/{id}/like", s.handleRemoveLike)
			r.Post("/posts/{id}/comments", s.handleCreateComment)

			r.Route("/admin", func(r chi.Router) {
				r.Use(auth.RequireElevated)
				s.mountAdmin(r)
			})
		})

		// Registration sits outside the member gate: the caller has a
		// verified identity but no user record yet.
		r.Post("/auth/register", s.handleRegister)
	})

	return r
}

// Start begins serving and blocks until the listener fails or closes.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              ":" + s.cfg.Port,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.log.Info("http server listening", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests and stops background workers.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.rebuilder != nil {
		s.rebuilder.Close()
	}
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// notifySearch marks the index dirty after a post write.
func (s *Server) notifySearch() {
	if s.rebuilder != nil {
		s.rebuilder.Notify()
	}
}

// FeedController builds a fresh controller for callers embedding the
// portal (used by tests and the console binary).
func (s *Server) FeedController() *feed.Controller {
	return feed.NewController(s.store.Posts(), s.cfg.PageSize, s.log)
}
