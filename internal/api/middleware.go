package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/livp123/netxconf/internal/metrics"
	"github.com/livp123/netxconf/internal/utils/logger"
)

// withLogger puts the server logger, tagged with the request id, into the
// request context.
func (s *Server) withLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := s.log
		if id := middleware.GetReqID(r.Context()); id != "" {
			log = log.With("request_id", id)
		}
		next.ServeHTTP(w, r.WithContext(logger.WithContext(r.Context(), log)))
	})
}

// logRequests logs every request and counts it by route pattern.
// logRequests 记录每个请求并按路由模式计数。
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		metrics.APIRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
		logger.Get(r.Context()).Debugf("[API] %s %s - %d (%v)", r.Method, r.URL.Path, status, time.Since(start))
	})
}

// recovery turns a handler panic into a 500.
func (s *Server) recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.Get(r.Context()).Errorf("[API] Panic recovered on %s %s: %v", r.Method, r.URL.Path, rec)
				writeAPIError(w, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
