// Package identity signs users in, registers them and triggers password
// resets against the configured identity service.
package identity

import (
	"context"
	"fmt"

	"thrive-chatbot/internal/config"
	"thrive-chatbot/pkg"
)

// Provider is an identity service.  Every failure wraps
// pkg.ErrAuthentication; the message after the prefix is safe to show.
type Provider interface {
	SignIn(ctx context.Context, email, password string) (*pkg.Credential, error)
	Register(ctx context.Context, email, password string) (*pkg.Credential, error)
	ResetPassword(ctx context.Context, email string) error
}

// New builds the Provider selected by cfg.Provider.  accounts and tokens
// are only used by the local provider.
func New(ctx context.Context, cfg config.IdentityConfig, accounts AccountStore, tokens *TokenIssuer) (Provider, error) {
	switch cfg.Provider {
	case "firebase":
		return NewFirebaseProvider(ctx, cfg.FirebaseAPIKey, cfg.FirebaseBaseURL)
	case "local":
		return NewLocalProvider(accounts, tokens), nil
	default:
		return nil, fmt.Errorf("unknown identity provider %q", cfg.Provider)
	}
}

func authError(msg string) error {
	return fmt.Errorf("%w: %s", pkg.ErrAuthentication, msg)
}
