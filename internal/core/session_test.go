package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thrive-chatbot/pkg"
)

func TestNewSession_StartsWithSystemMessage(t *testing.T) {
	s := NewSession()

	tr := s.Transcript()
	require.Len(t, tr, 1)
	assert.Equal(t, pkg.RoleSystem, tr[0].Role)
	assert.Equal(t, SystemPrompt, tr[0].Content)
	assert.False(t, s.Authenticated())
	assert.True(t, s.FirstTurn())
	assert.NotEmpty(t, s.ID)
}

func TestSession_AppendsKeepOrder(t *testing.T) {
	s := NewSession()
	s.AppendUser("one")
	s.AppendAssistant("two")
	s.AppendUser("three")
	s.AppendUser("four")

	tr := s.Transcript()
	require.Len(t, tr, 5)
	assert.Equal(t, []string{SystemPrompt, "one", "two", "three", "four"},
		[]string{tr[0].Content, tr[1].Content, tr[2].Content, tr[3].Content, tr[4].Content})
	assert.Equal(t, pkg.RoleUser, tr[4].Role)
}

func TestSession_TranscriptIsACopy(t *testing.T) {
	s := NewSession()
	tr := s.Transcript()
	tr[0].Content = "tampered"

	assert.Equal(t, SystemPrompt, s.Transcript()[0].Content)
}

func TestSession_Reset(t *testing.T) {
	s := NewSession()
	s.Authenticate(&pkg.Credential{UserID: "u1"})
	s.SetDocument("summary")
	s.commitTurn("hi", "hello")
	require.False(t, s.FirstTurn())

	s.Reset()

	tr := s.Transcript()
	require.Len(t, tr, 1)
	assert.Equal(t, pkg.RoleSystem, tr[0].Role)
	assert.Empty(t, s.Document())
	assert.True(t, s.FirstTurn())
	assert.True(t, s.Authenticated())
}

func TestSession_Logout(t *testing.T) {
	s := NewSession()
	s.Authenticate(&pkg.Credential{UserID: "u1", Email: "ana@example.com"})
	s.SetDocument("summary")
	s.AppendUser("hi")

	s.Logout()

	assert.False(t, s.Authenticated())
	assert.Nil(t, s.Identity())
	assert.Len(t, s.Transcript(), 1)
	assert.Empty(t, s.Document())
}

func TestSession_AuthenticateAsAnotherUserStartsOver(t *testing.T) {
	s := NewSession()
	s.Authenticate(&pkg.Credential{UserID: "u1", Email: "ana@example.com"})
	s.SetDocument("ana's lab results")
	s.commitTurn("- Name: Ana\nprivate question", "ok")

	s.Authenticate(&pkg.Credential{UserID: "u2", Email: "ben@example.com"})

	tr := s.Transcript()
	require.Len(t, tr, 1)
	assert.Equal(t, pkg.RoleSystem, tr[0].Role)
	assert.Empty(t, s.Document())
	assert.True(t, s.FirstTurn())
	assert.Equal(t, "u2", s.Identity().UserID)
}

func TestSession_AuthenticateSameUserKeepsConversation(t *testing.T) {
	s := NewSession()
	s.Authenticate(&pkg.Credential{UserID: "u1"})
	s.commitTurn("hi", "hello")

	s.Authenticate(&pkg.Credential{UserID: "u1"})

	assert.Len(t, s.Transcript(), 3)
	assert.False(t, s.FirstTurn())
}
