package rest

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/taskapi/internal/common"
	"github.com/dmitrijs2005/taskapi/internal/server/auth"
	"github.com/go-chi/chi/v5/middleware"
)

type principalKey struct{}

func withPrincipal(ctx context.Context, p auth.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the identity the auth middleware attached, if any.
func PrincipalFrom(ctx context.Context) (auth.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(auth.Principal)
	return p, ok
}

// bearerToken reads the credential from "Authorization: Bearer <t>" and falls
// back to the auth-token header handed out on signup and signin.
func bearerToken(r *http.Request) string {
	if h := strings.TrimSpace(r.Header.Get(common.AuthorizationHeaderName)); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, common.BearerScheme) {
			return strings.TrimSpace(token)
		}
	}
	return strings.TrimSpace(r.Header.Get(common.AuthTokenHeaderName))
}

// authenticate resolves the bearer token into a principal. Requests without a
// valid token pass through unauthenticated; the gate decides what to do.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		p, err := s.creds.Authenticate(r.Context(), token)
		if err != nil {
			s.logger.Warn(r.Context(), "token rejected", "error", err, "path", r.URL.Path)
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), p)))
	})
}

// accessLog writes one line per request.
func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		s.logger.Info(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).String(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
