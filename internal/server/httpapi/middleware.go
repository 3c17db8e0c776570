package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/bomin1134/gb-ud-portal/internal/common"
	"github.com/bomin1134/gb-ud-portal/internal/directory"
	"github.com/go-chi/httplog/v2"
	"github.com/golang-jwt/jwt/v5/request"
)

type ctxKey struct{}

var userKey ctxKey

// requireAuth resolves the bearer token to a user and rejects the request
// when there is none.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := httplog.LogEntry(r.Context())

		token, err := request.BearerExtractor{}.ExtractToken(r)
		if err != nil {
			handleError(logger, w, common.ErrorUnauthorized)
			return
		}

		u, err := s.auth.Verify(token)
		if err != nil {
			handleError(logger, w, err)
			return
		}

		httplog.LogEntrySetField(r.Context(), "user", slog.StringValue(u.ID))
		ctx := context.WithValue(r.Context(), userKey, u)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func userFrom(ctx context.Context) directory.User {
	u, _ := ctx.Value(userKey).(directory.User)
	return u
}
