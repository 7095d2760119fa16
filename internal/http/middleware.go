package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"thrive-chatbot/internal/core"
	"thrive-chatbot/internal/metrics"
	"thrive-chatbot/pkg"
)

type ctxKey int

const sessionKey ctxKey = iota

// sessionFromContext returns the session attached by withSession.
func sessionFromContext(ctx context.Context) *core.Session {
	sess, _ := ctx.Value(sessionKey).(*core.Session)
	return sess
}

// AccessLog logs one line per request and records request metrics under
// the matched route pattern.
func AccessLog(logger *zap.Logger, m *metrics.Collector) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			route := r.URL.Path
			if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
				route = rc.RoutePattern()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			m.ObserveHTTP(r.Method, route, strconv.Itoa(status), start)
			logger.Info("HTTP Request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", status),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("requestID", middleware.GetReqID(r.Context())),
			)
		})
	}
}

// withSession resolves the session cookie to a live session, creating an
// anonymous one when the cookie is missing, invalid or expired.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var sess *core.Session
		if c, err := r.Cookie(SessionCookieName); err == nil {
			if claims, err := s.Tokens.Validate(c.Value); err == nil {
				sess, _ = s.Sessions.Get(claims.SessionID)
			}
		}
		if sess == nil {
			sess = s.Sessions.Create()
			if err := s.issueSessionCookie(w, sess, nil); err != nil {
				s.Logger.Error("failed to sign session token", zap.Error(err))
				http.Error(w, "failed to establish session", http.StatusInternalServerError)
				return
			}
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey, sess)))
	})
}

// issueSessionCookie signs a token for sess and sets it as the session
// cookie.  cred is nil for anonymous sessions.
func (s *Server) issueSessionCookie(w http.ResponseWriter, sess *core.Session, cred *pkg.Credential) error {
	var userID, email string
	if cred != nil {
		userID, email = cred.UserID, cred.Email
	}
	token, err := s.Tokens.Generate(sess.ID, userID, email)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.SessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   !s.Dev,
	})
	return nil
}
