package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"thrive-chatbot/pkg"
)

const maxCoachBody = 1 << 20

// handleCoach answers one stateless question for the user named in the
// user_id query parameter.  Errors are plain text.
func (s *Server) handleCoach(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if userID == "" {
		writeText(w, http.StatusBadRequest, "Missing user_id")
		return
	}

	var req pkg.CoachRequest
	if r.Body != nil {
		// an empty body is a missing message, a malformed one is an error
		err := json.NewDecoder(io.LimitReader(r.Body, maxCoachBody)).Decode(&req)
		if err != nil && !errors.Is(err, io.EOF) {
			writeText(w, http.StatusInternalServerError, "Error: "+err.Error())
			return
		}
	}
	req.Message = strings.TrimSpace(req.Message)
	if err := validate.Struct(req); err != nil {
		writeText(w, http.StatusBadRequest, "Missing message")
		return
	}

	reply, err := s.Chat.Ask(r.Context(), userID, req.Message)
	if err != nil {
		s.Logger.Error("coach request failed", zap.String("user_id", userID), zap.Error(err))
		writeText(w, http.StatusInternalServerError, "Error: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, pkg.CoachResponse{Response: reply})
}

func writeText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, msg)
}
