package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/hongminglow/account-be/internal/auth"
	"github.com/hongminglow/account-be/internal/http/respond"
	"github.com/hongminglow/account-be/internal/logger"
	"github.com/hongminglow/account-be/internal/metrics"
)

const (
	msgLoginRequired = "로그인이 필요합니다."
	msgAuthFailed    = "인증 처리 중 오류가 발생하였습니다."
)

// Authenticator resolves a session cookie value to the calling user.
type Authenticator interface {
	AuthenticateRequest(ctx context.Context, cookieValue string) (auth.Identity, error)
}

// RequireAuth rejects requests without a valid session cookie before the
// wrapped handler runs and stores the Identity in the request context.
func RequireAuth(authn Authenticator, log *logger.Logger, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(auth.CookieName)
			if err != nil {
				m.RecordAuth("session", metrics.OutcomeRejected)
				respond.Error(w, http.StatusUnauthorized, msgLoginRequired)
				return
			}

			identity, err := authn.AuthenticateRequest(r.Context(), cookie.Value)
			if err != nil {
				if errors.Is(err, auth.ErrUnauthenticated) {
					log.Debug("session rejected", "request_id", RequestID(r.Context()), "reason", err.Error())
					m.RecordAuth("session", metrics.OutcomeRejected)
					respond.Error(w, http.StatusUnauthorized, msgLoginRequired)
					return
				}
				log.Error("session check failed", "request_id", RequestID(r.Context()), "error", err.Error())
				m.RecordAuth("session", metrics.OutcomeError)
				respond.Error(w, http.StatusInternalServerError, msgAuthFailed)
				return
			}

			m.RecordAuth("session", metrics.OutcomeSuccess)
			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), identity)))
		})
	}
}
