package identity

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
)

const (
	tokenIssuer   = "thrive-coach"
	defaultSecret = "thrive-dev-secret"
)

// Claims is the payload of session cookies and locally issued id tokens.
type Claims struct {
	SessionID string `json:"sid,omitempty"`
	UserID    string `json:"uid,omitempty"`
	Email     string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 tokens.
type TokenIssuer struct {
	key []byte
	ttl time.Duration
}

// NewTokenIssuer returns an issuer keyed by secret.  An empty secret falls
// back to a fixed development key and logs a warning.
func NewTokenIssuer(secret string, ttl time.Duration, logger *zap.Logger) *TokenIssuer {
	if secret == "" {
		if logger != nil {
			logger.Warn("SESSION_SECRET is not set, using the development signing key")
		}
		secret = defaultSecret
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenIssuer{key: []byte(secret), ttl: ttl}
}

// Generate signs a token carrying the given identifiers.
func (i *TokenIssuer) Generate(sessionID, userID, email string) (string, error) {
	now := time.Now()
	claims := &Claims{
		SessionID: sessionID,
		UserID:    userID,
		Email:     email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
			Subject:   userID,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate parses tokenString and returns its claims when the signature and
// expiry check out.
func (i *TokenIssuer) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return i.key, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if claims.Issuer != tokenIssuer {
		return nil, errors.New("unexpected token issuer")
	}
	return claims, nil
}
