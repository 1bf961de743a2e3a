package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/livp123/netxconf/internal/utils/logger"
	"github.com/livp123/netxconf/pkg/errors"
)

type subjectKey struct{}

// SubjectFromContext returns the authenticated subject of a request.
// SubjectFromContext 返回请求中已认证的用户。
func SubjectFromContext(ctx context.Context) (string, bool) {
	subject, ok := ctx.Value(subjectKey{}).(string)
	return subject, ok
}

// bearerToken returns the last word of the Authorization header, so both
// "Bearer <token>" and a bare token are accepted.
func bearerToken(r *http.Request) string {
	fields := strings.Fields(r.Header.Get("Authorization"))
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}

// withAuth rejects requests without a valid token.
// withAuth 拒绝没有有效令牌的请求。
func (s *Server) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeAPIError(w, http.StatusUnauthorized, ErrCodeUnauthorized, "missing bearer token")
			return
		}

		tm, err := s.tokenManager(r.Context())
		if err != nil {
			logger.Get(r.Context()).Errorf("[AUTH] Failed to load auth documents: %v", err)
			writeAPIError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "authentication is not configured")
			return
		}

		claims, err := tm.VerifyToken(token)
		if err != nil {
			logger.Get(r.Context()).Debugf("[AUTH] Rejected token: %v", err)
			writeError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), subjectKey{}, claims.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type tokenRequest struct {
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// handleToken exchanges a subject's password for a signed token.
// handleToken 使用用户密码换取签名令牌。
func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	subject := chi.URLParam(r, "subject")

	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid JSON body")
		return
	}

	tm, err := s.tokenManager(r.Context())
	if err != nil {
		logger.Get(r.Context()).Errorf("[AUTH] Failed to load auth documents: %v", err)
		writeAPIError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "authentication is not configured")
		return
	}

	if !tm.CheckPassword(subject, req.Password) {
		logger.Get(r.Context()).Warnf("[AUTH] Failed login for %q", subject)
		writeError(w, errors.ErrUnauthorized)
		return
	}

	token, err := tm.CreateToken(subject)
	if err != nil {
		writeError(w, err)
		return
	}
	logger.Get(r.Context()).Infof("[AUTH] Issued token for %s", subject)
	writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}
