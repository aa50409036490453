package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"intakedesk/pkg/types"

	"github.com/sirupsen/logrus"
)

// Context key types to avoid collisions
type contextKey string

const contextKeySession contextKey = "session"

const sessionCookieName = "intakedesk_session"

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Service) LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		s.logger.WithFields(logrus.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rw.statusCode,
			"duration_ms": time.Since(started).Milliseconds(),
		}).Info("http request")
	})
}

// RequireAuth verifies the session cookie and checks the account is still
// active before letting the request through. Session claims land in the
// request context.
func (s *Service) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookieName)
		if err != nil {
			s.logger.WithError(err).Debug("no session cookie found")
			s.respondError(w, http.StatusUnauthorized, "Non authentifié")
			return
		}

		var token string
		err = s.cookie.Decode(sessionCookieName, cookie.Value, &token)
		if err != nil {
			s.logger.WithError(err).Error("failed to decrypt session token")
			s.respondError(w, http.StatusUnauthorized, "Session invalide")
			return
		}

		claims, err := s.parseSessionToken(token)
		if err != nil {
			s.logger.WithError(err).Error("failed to parse session token")
			s.respondError(w, http.StatusUnauthorized, "Session invalide")
			return
		}

		// The account may have been disabled or deleted since the token
		// was issued.
		user, err := s.usersRepo.User(r.Context(), claims.UserID)
		if err != nil || user.DeletedAt != nil || !user.IsActive {
			s.logger.WithField("user_id", claims.UserID).Warn("session for inactive account")
			s.respondError(w, http.StatusUnauthorized, "Compte désactivé")
			return
		}

		claims.Role = user.Role
		claims.MustChangePassword = user.MustChangePassword

		ctx := context.WithValue(r.Context(), contextKeySession, claims)

		s.logger.WithFields(logrus.Fields{
			"user_id": claims.UserID,
			"email":   claims.Email,
		}).Debug("authenticated user")

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin must be stacked on top of RequireAuth.
func (s *Service) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := s.sessionFromContext(r.Context())
		if err != nil {
			s.respondError(w, http.StatusUnauthorized, "Non authentifié")
			return
		}

		if claims.Role != types.RoleAdmin {
			s.respondError(w, http.StatusForbidden, "Accès réservé aux administrateurs")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Service) StripTrailingSlash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		// Only strip if path is not root and has trailing slash
		if path != "/" && strings.HasSuffix(path, "/") {
			newPath := strings.TrimSuffix(path, "/")
			newURL := *r.URL
			newURL.Path = newPath

			http.Redirect(w, r, newURL.String(), http.StatusMovedPermanently)
			return
		}

		next.ServeHTTP(w, r)
	})
}
