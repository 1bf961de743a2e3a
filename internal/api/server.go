// Package api serves the stored rule document and router status over HTTP.
// Package api 通过 HTTP 提供规则文档和路由器状态。
package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/livp123/netxconf/internal/auth"
	"github.com/livp123/netxconf/internal/config"
	"github.com/livp123/netxconf/internal/ruleset"
	"github.com/livp123/netxconf/internal/utils/logger"
	"github.com/livp123/netxconf/pkg/storage"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Server is the management API.
// Server 是管理 API 服务。
type Server struct {
	cfg        *config.GlobalConfig
	store      storage.Store
	rules      *ruleset.Service
	log        *zap.SugaredLogger
	router     *chi.Mux
	httpServer *http.Server

	// The token manager is built on first use and kept for the life of the
	// server. Edits to the users document need a restart.
	// 令牌管理器在首次使用时创建并一直缓存。
	authMu sync.Mutex
	tokens *auth.TokenManager

	now func() time.Time
}

// NewServer wires the routes for cfg over store. The logger in ctx is used
// for every request.
// NewServer 基于 store 和 cfg 注册所有路由。
func NewServer(ctx context.Context, cfg *config.GlobalConfig, store storage.Store) *Server {
	s := &Server{
		cfg:    cfg,
		store:  store,
		rules:  ruleset.NewService(store, cfg.Keys.Rules),
		log:    logger.Get(ctx),
		router: chi.NewRouter(),
		now:    time.Now,
	}
	s.setupRoutes()
	s.httpServer = &http.Server{
		Addr:         cfg.Web.Listen,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) setupRoutes() {
	r := s.router

	r.Use(middleware.RequestID)
	r.Use(s.withLogger)
	r.Use(s.logRequests)
	r.Use(s.recovery)

	r.Get("/healthz", s.handleHealthz)
	r.Get("/version", s.handleVersion)
	if s.cfg.Metrics.Enabled {
		r.Method(http.MethodGet, s.cfg.Metrics.Path, promhttp.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/token/{subject}", s.handleToken)

		r.Group(func(r chi.Router) {
			r.Use(s.withAuth)

			r.Route("/rules", func(r chi.Router) {
				r.Get("/", s.handleGetRules)
				r.Put("/", s.handlePutRules)
				r.Get("/raw", s.handleGetRawRules)
				r.Get("/query", s.handleQueryRules)
			})

			r.Get("/blocked", s.handleBlocked)
			r.Get("/iptstate", s.handleIptstate)

			r.Get("/interfaces/{ifName}", s.handleGetInterface)
			r.Put("/interfaces/{ifName}", s.handlePutInterface)

			r.Route("/leases", func(r chi.Router) {
				r.Get("/", s.handleLeases)
				r.Get("/latest", s.handleLatestLeases)
				r.Get("/online", s.handleOnlineLeases)
				r.Get("/{mac}/status", s.handleLeaseStatus)
			})

			r.Get("/nmap", s.handleNmap)
			r.Get("/system", s.handleSystem)
		})
	})
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens until ctx is cancelled, then shuts down gracefully.
// Start 开始监听，ctx 取消后优雅关闭。
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("[API] Listening on http://%s", s.httpServer.Addr)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.log.Infof("[API] Shutting down")
		return s.httpServer.Shutdown(shutdownCtx)
	}
}

// tokenManager loads the auth documents once and caches the result.
// Failed loads are not cached.
func (s *Server) tokenManager(ctx context.Context) (*auth.TokenManager, error) {
	s.authMu.Lock()
	defer s.authMu.Unlock()
	if s.tokens != nil {
		return s.tokens, nil
	}
	tm, err := auth.Load(ctx, s.store, auth.Keys{
		Users:    s.cfg.Keys.Users,
		Settings: s.cfg.Keys.AuthSettings,
	})
	if err != nil {
		return nil, err
	}
	s.tokens = tm
	return tm, nil
}
