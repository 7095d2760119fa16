package core

import (
	"sync"

	"github.com/google/uuid"

	"thrive-chatbot/pkg"
)

// Session is one visitor's conversation state: authentication, the
// transcript replayed to the completion service, and the cached document
// text.  All methods are safe for concurrent use; chat turns are further
// serialized by ChatService.
type Session struct {
	ID string

	turn sync.Mutex

	mu            sync.RWMutex
	authenticated bool
	identity      *pkg.Credential
	transcript    []pkg.Message
	documentText  string
	contextSent   bool
}

// NewSession returns an anonymous session holding only the system message.
func NewSession() *Session {
	s := &Session{ID: uuid.NewString()}
	s.transcript = initialTranscript()
	return s
}

func initialTranscript() []pkg.Message {
	return []pkg.Message{{Role: pkg.RoleSystem, Content: SystemPrompt}}
}

// Authenticate marks the session signed in as cred.  Signing in as a
// different user than the current one starts a fresh conversation.
func (s *Session) Authenticate(cred *pkg.Credential) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !sameUser(s.identity, cred) {
		s.reset()
	}
	s.authenticated = cred != nil
	s.identity = cred
}

func sameUser(a, b *pkg.Credential) bool {
	return a != nil && b != nil && a.UserID == b.UserID
}

func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

// Identity returns the signed-in credential, or nil.
func (s *Session) Identity() *pkg.Credential {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity
}

// AppendUser and AppendAssistant add single messages.  Chat turns go
// through ChatService.Reply, which commits the user message and the reply
// together once the completion succeeds.
func (s *Session) AppendUser(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.add(pkg.RoleUser, text)
}

func (s *Session) AppendAssistant(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.add(pkg.RoleAssistant, text)
}

// add appends one message; s.mu must be held.
func (s *Session) add(role pkg.Role, text string) {
	s.transcript = append(s.transcript, pkg.Message{Role: role, Content: text})
}

// Transcript returns a copy of the transcript in insertion order.
func (s *Session) Transcript() []pkg.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]pkg.Message, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// Reset drops the conversation and cached document and re-arms the
// first-turn context.  Authentication is kept.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

func (s *Session) reset() {
	s.transcript = initialTranscript()
	s.documentText = ""
	s.contextSent = false
}

// Logout resets the session and forgets the identity.
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
	s.authenticated = false
	s.identity = nil
}

// SetDocument caches ingested document text for the next first turn.
func (s *Session) SetDocument(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documentText = text
}

func (s *Session) Document() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.documentText
}

// FirstTurn reports whether the next message should carry the full
// profile and document context.
func (s *Session) FirstTurn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.contextSent
}

// commitTurn appends a completed exchange and disarms the first-turn rule.
func (s *Session) commitTurn(user, assistant string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.add(pkg.RoleUser, user)
	s.add(pkg.RoleAssistant, assistant)
	s.contextSent = true
}
