package http

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"thrive-chatbot/pkg"
)

type loginPage struct {
	Email  string
	Error  string
	Notice string
}

type chatPage struct {
	Email   string
	History []pkg.Message
}

type turnFragment struct {
	User      pkg.Message
	Assistant pkg.Message
}

const (
	msgDocumentReady = "PDF processed. You may now ask questions about it."
	msgLoginFirst    = "Please log in first."
	msgSlowDown      = "You're sending messages too quickly. Please wait a moment."
)

func (s *Server) render(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.Templates.ExecuteTemplate(w, name, data); err != nil {
		s.Logger.Error("template render failed", zap.String("template", name), zap.Error(err))
	}
}

// handleIndex shows the login page to anonymous visitors and the chat to
// signed-in ones.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	if !sess.Authenticated() {
		s.render(w, http.StatusOK, "login.html", loginPage{})
		return
	}
	email := ""
	if cred := sess.Identity(); cred != nil {
		email = cred.Email
	}
	s.render(w, http.StatusOK, "chat.html", chatPage{Email: email, History: visibleHistory(sess.Transcript())})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.render(w, http.StatusBadRequest, "login.html", loginPage{Error: "invalid form"})
		return
	}
	form := loginForm{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}
	if err := validateForm(form); err != nil {
		s.render(w, statusFor(err), "login.html", loginPage{Email: form.Email, Error: displayMessage(err)})
		return
	}

	cred, err := s.Identity.SignIn(r.Context(), form.Email, form.Password)
	s.Metrics.ObserveAuth("sign_in", err)
	if err != nil {
		s.Logger.Info("sign in failed", zap.String("email", form.Email), zap.Error(err))
		s.render(w, statusFor(err), "login.html", loginPage{Email: form.Email, Error: "Login failed: " + displayMessage(err)})
		return
	}
	s.signIn(w, r, cred)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.render(w, http.StatusBadRequest, "login.html", loginPage{Error: "invalid form"})
		return
	}
	form := registerForm{
		Email:           strings.TrimSpace(r.PostFormValue("email")),
		Password:        r.PostFormValue("password"),
		ConfirmPassword: r.PostFormValue("confirm_password"),
	}
	if err := validateForm(form); err != nil {
		s.render(w, statusFor(err), "login.html", loginPage{Email: form.Email, Error: displayMessage(err)})
		return
	}

	cred, err := s.Identity.Register(r.Context(), form.Email, form.Password)
	s.Metrics.ObserveAuth("register", err)
	if err != nil {
		s.Logger.Info("registration failed", zap.String("email", form.Email), zap.Error(err))
		s.render(w, statusFor(err), "login.html", loginPage{Email: form.Email, Error: "Sign up failed: " + displayMessage(err)})
		return
	}
	s.signIn(w, r, cred)
}

// signIn replaces the visitor's session with a new one owned by cred, so
// nothing from the previous session or its ID survives the sign-in.
func (s *Server) signIn(w http.ResponseWriter, r *http.Request, cred *pkg.Credential) {
	old := sessionFromContext(r.Context())
	sess := s.Sessions.Create()
	sess.Authenticate(cred)
	if err := s.issueSessionCookie(w, sess, cred); err != nil {
		s.Sessions.Remove(sess.ID)
		s.Logger.Error("failed to sign session token", zap.Error(err))
		s.render(w, http.StatusInternalServerError, "login.html", loginPage{Email: cred.Email, Error: "Login failed: could not start a session"})
		return
	}
	s.Sessions.Remove(old.ID)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.render(w, http.StatusBadRequest, "login.html", loginPage{Error: "invalid form"})
		return
	}
	form := resetForm{Email: strings.TrimSpace(r.PostFormValue("email"))}
	if err := validateForm(form); err != nil {
		s.render(w, statusFor(err), "login.html", loginPage{Email: form.Email, Error: displayMessage(err)})
		return
	}

	err := s.Identity.ResetPassword(r.Context(), form.Email)
	s.Metrics.ObserveAuth("reset_password", err)
	if err != nil {
		s.render(w, statusFor(err), "login.html", loginPage{Email: form.Email, Error: "Password reset failed: " + displayMessage(err)})
		return
	}
	s.render(w, http.StatusOK, "login.html", loginPage{
		Email:  form.Email,
		Notice: "Password reset email sent to " + form.Email + ". Check your inbox.",
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	sessionFromContext(r.Context()).Logout()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !sessionFromContext(r.Context()).Authenticated() {
			s.render(w, http.StatusUnauthorized, "error.html", msgLoginFirst)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// handleDocument ingests an uploaded PDF and caches its text on the session.
func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, s.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.MaxUploadBytes); err != nil {
		s.render(w, http.StatusBadRequest, "error.html", "Failed to read PDF: upload is too large or malformed")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		s.render(w, http.StatusBadRequest, "error.html", msgRequired)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.render(w, http.StatusBadRequest, "error.html", "Failed to read PDF: "+err.Error())
		return
	}

	text, err := s.Ingestor.Ingest(r.Context(), data)
	if err != nil {
		s.Logger.Warn("document ingestion failed", zap.String("session_id", sess.ID), zap.Error(err))
		s.render(w, statusFor(err), "error.html", "Failed to read PDF: "+displayMessage(err))
		return
	}
	sess.SetDocument(text)
	s.render(w, http.StatusOK, "notice.html", msgDocumentReady)
}

// handleChat runs one conversation turn and returns the rendered exchange.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		s.render(w, http.StatusBadRequest, "error.html", "invalid form")
		return
	}
	form := chatForm{Message: strings.TrimSpace(r.PostFormValue("message"))}
	if err := validateForm(form); err != nil {
		s.render(w, statusFor(err), "error.html", displayMessage(err))
		return
	}
	if !s.Sessions.Allow(sess.ID) {
		s.render(w, http.StatusTooManyRequests, "error.html", msgSlowDown)
		return
	}

	reply, err := s.Chat.Reply(r.Context(), sess, form.Message)
	if err != nil {
		s.render(w, statusFor(err), "error.html", "Chat error: "+displayMessage(err))
		return
	}
	s.render(w, http.StatusOK, "turn.html", turnFragment{
		User:      pkg.Message{Role: pkg.RoleUser, Content: form.Message},
		Assistant: pkg.Message{Role: pkg.RoleAssistant, Content: reply},
	})
}

// handleHistory returns the transcript without the system message.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, visibleHistory(sessionFromContext(r.Context()).Transcript()))
}

func visibleHistory(transcript []pkg.Message) []pkg.Message {
	out := make([]pkg.Message, 0, len(transcript))
	for _, m := range transcript {
		if m.Role == pkg.RoleSystem {
			continue
		}
		out = append(out, m)
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
