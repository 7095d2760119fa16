package identity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("s3cret", time.Hour, zap.NewNop())

	token, err := issuer.Generate("sess-1", "user-1", "ana@example.com")
	require.NoError(t, err)

	claims, err := issuer.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "sess-1", claims.SessionID)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "ana@example.com", claims.Email)
}

func TestTokenIssuer_RejectsForeignKey(t *testing.T) {
	token, err := NewTokenIssuer("one", time.Hour, nil).Generate("s", "u", "")
	require.NoError(t, err)

	_, err = NewTokenIssuer("two", time.Hour, nil).Validate(token)
	assert.Error(t, err)
}

func TestTokenIssuer_RejectsExpired(t *testing.T) {
	issuer := NewTokenIssuer("s3cret", time.Nanosecond, nil)
	token, err := issuer.Generate("s", "u", "")
	require.NoError(t, err)

	time.Sleep(1100 * time.Millisecond)
	_, err = issuer.Validate(token)
	assert.Error(t, err)
}

func TestTokenIssuer_RejectsGarbage(t *testing.T) {
	_, err := NewTokenIssuer("", 0, nil).Validate("not.a.token")
	assert.Error(t, err)
}
