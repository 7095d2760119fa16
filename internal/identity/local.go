package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"thrive-chatbot/internal/db"
	"thrive-chatbot/pkg"
)

const minPasswordLength = 6

// AccountStore persists local accounts.  *db.Repository satisfies it.
type AccountStore interface {
	CreateAccount(ctx context.Context, email, passwordHash string) (*pkg.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*pkg.Account, error)
	RecordPasswordReset(ctx context.Context, userID string) error
}

// LocalProvider keeps accounts in the application database with bcrypt
// password hashes and issues its own id tokens.
type LocalProvider struct {
	Accounts AccountStore
	Tokens   *TokenIssuer
	Cost     int
}

// NewLocalProvider constructs a LocalProvider with the default bcrypt cost.
func NewLocalProvider(accounts AccountStore, tokens *TokenIssuer) *LocalProvider {
	return &LocalProvider{Accounts: accounts, Tokens: tokens, Cost: bcrypt.DefaultCost}
}

func (p *LocalProvider) SignIn(ctx context.Context, email, password string) (*pkg.Credential, error) {
	acct, err := p.Accounts.GetAccountByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", pkg.ErrAuthentication, err)
	}
	if acct == nil {
		return nil, authError("invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)); err != nil {
		return nil, authError("invalid email or password")
	}
	return p.credential(acct)
}

func (p *LocalProvider) Register(ctx context.Context, email, password string) (*pkg.Credential, error) {
	if strings.TrimSpace(email) == "" {
		return nil, authError("email is required")
	}
	if len(password) < minPasswordLength {
		return nil, authError(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.Cost)
	if err != nil {
		return nil, fmt.Errorf("%w: hash password: %v", pkg.ErrAuthentication, err)
	}
	acct, err := p.Accounts.CreateAccount(ctx, email, string(hash))
	if errors.Is(err, db.ErrDuplicateAccount) {
		return nil, authError("email already registered")
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", pkg.ErrAuthentication, err)
	}
	return p.credential(acct)
}

// ResetPassword records a reset request.  Delivery of the reset mail is
// left to the operator's mail pipeline, which reads password_resets.
func (p *LocalProvider) ResetPassword(ctx context.Context, email string) error {
	acct, err := p.Accounts.GetAccountByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("%w: %w", pkg.ErrAuthentication, err)
	}
	if acct == nil {
		return authError("no account for that email")
	}
	if err := p.Accounts.RecordPasswordReset(ctx, acct.UserID); err != nil {
		return fmt.Errorf("%w: %w", pkg.ErrAuthentication, err)
	}
	return nil
}

func (p *LocalProvider) credential(acct *pkg.Account) (*pkg.Credential, error) {
	token, err := p.Tokens.Generate("", acct.UserID, acct.Email)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pkg.ErrAuthentication, err)
	}
	return &pkg.Credential{UserID: acct.UserID, Email: acct.Email, IDToken: token}, nil
}
