package core

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"thrive-chatbot/internal/llm"
	"thrive-chatbot/pkg"
)

// ProfileStore reads the stored profile and most recent health entry.
// *db.Repository satisfies it.
type ProfileStore interface {
	FetchProfile(ctx context.Context, userID string) (pkg.UserProfile, error)
	FetchLatestEntry(ctx context.Context, userID string) (pkg.HealthEntry, error)
}

// ChatService runs conversation turns against the completion service.
type ChatService struct {
	LLM      llm.Client
	Profiles ProfileStore
	Logger   *zap.Logger
}

// NewChatService constructs a new ChatService.
func NewChatService(client llm.Client, profiles ProfileStore, logger *zap.Logger) *ChatService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatService{LLM: client, Profiles: profiles, Logger: logger}
}

// Reply runs one turn of sess.  The first turn after creation or Reset
// carries the composed profile and document context; later turns send the
// raw message.  The user message and the reply are appended together only
// when the completion succeeds, so a failed turn leaves the transcript as
// it was.  Turns on the same session run one at a time.
func (s *ChatService) Reply(ctx context.Context, sess *Session, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", fmt.Errorf("%w: message is empty", pkg.ErrValidation)
	}

	sess.turn.Lock()
	defer sess.turn.Unlock()

	content := message
	if sess.FirstTurn() {
		var (
			profile pkg.UserProfile
			entry   pkg.HealthEntry
		)
		if cred := sess.Identity(); cred != nil {
			profile, entry = s.lookup(ctx, cred.UserID)
		}
		content = Compose(profile, entry, sess.Document(), message)
	}

	messages := append(sess.Transcript(), pkg.Message{Role: pkg.RoleUser, Content: content})
	reply, err := s.LLM.Complete(ctx, messages, llm.Options{Temperature: chatTemperature, MaxTokens: chatMaxTokens})
	if err != nil {
		s.Logger.Warn("chat turn failed", zap.String("session_id", sess.ID), zap.Error(err))
		return "", err
	}

	sess.commitTurn(content, reply)
	return reply, nil
}

// lookup fetches context for the first turn.  A store outage degrades to an
// empty profile rather than blocking the conversation.
func (s *ChatService) lookup(ctx context.Context, userID string) (pkg.UserProfile, pkg.HealthEntry) {
	if s.Profiles == nil {
		return pkg.UserProfile{}, pkg.HealthEntry{}
	}
	profile, err := s.Profiles.FetchProfile(ctx, userID)
	if err != nil {
		s.Logger.Warn("profile lookup failed", zap.String("user_id", userID), zap.Error(err))
		profile = pkg.UserProfile{}
	}
	entry, err := s.Profiles.FetchLatestEntry(ctx, userID)
	if err != nil {
		s.Logger.Warn("health entry lookup failed", zap.String("user_id", userID), zap.Error(err))
		entry = pkg.HealthEntry{}
	}
	return profile, entry
}

// Ask answers a single stateless question for userID with the full profile
// context.  Store and completion failures are returned to the caller.
func (s *ChatService) Ask(ctx context.Context, userID, message string) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", fmt.Errorf("%w: Missing user_id", pkg.ErrValidation)
	}
	if strings.TrimSpace(message) == "" {
		return "", fmt.Errorf("%w: Missing message", pkg.ErrValidation)
	}
	if s.Profiles == nil {
		return "", fmt.Errorf("%w: no profile store configured", pkg.ErrDataAccess)
	}

	profile, err := s.Profiles.FetchProfile(ctx, userID)
	if err != nil {
		return "", err
	}
	entry, err := s.Profiles.FetchLatestEntry(ctx, userID)
	if err != nil {
		return "", err
	}
	return s.LLM.CompleteSingle(ctx, Compose(profile, entry, "", message))
}
