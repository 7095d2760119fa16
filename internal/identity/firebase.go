package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/googleapi"
	identitytoolkit "google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"

	"thrive-chatbot/pkg"
)

// FirebaseProvider authenticates against Firebase Authentication through the
// Identity Toolkit relying-party API.
type FirebaseProvider struct {
	rp *identitytoolkit.RelyingpartyService
}

// NewFirebaseProvider builds a provider using the project's web API key.
// endpoint overrides the API base URL, e.g. for the auth emulator.
func NewFirebaseProvider(ctx context.Context, apiKey, endpoint string) (*FirebaseProvider, error) {
	opts := []option.ClientOption{option.WithAPIKey(apiKey)}
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}
	svc, err := identitytoolkit.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("identity toolkit client: %w", err)
	}
	return &FirebaseProvider{rp: svc.Relyingparty}, nil
}

func (p *FirebaseProvider) SignIn(ctx context.Context, email, password string) (*pkg.Credential, error) {
	resp, err := p.rp.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return nil, translateFirebaseError(err)
	}
	return &pkg.Credential{
		UserID:       resp.LocalId,
		Email:        resp.Email,
		IDToken:      resp.IdToken,
		RefreshToken: resp.RefreshToken,
	}, nil
}

func (p *FirebaseProvider) Register(ctx context.Context, email, password string) (*pkg.Credential, error) {
	resp, err := p.rp.SignupNewUser(&identitytoolkit.IdentitytoolkitRelyingpartySignupNewUserRequest{
		Email:    email,
		Password: password,
	}).Context(ctx).Do()
	if err != nil {
		return nil, translateFirebaseError(err)
	}
	return &pkg.Credential{
		UserID:       resp.LocalId,
		Email:        resp.Email,
		IDToken:      resp.IdToken,
		RefreshToken: resp.RefreshToken,
	}, nil
}

// ResetPassword asks Firebase to mail a password reset link.
func (p *FirebaseProvider) ResetPassword(ctx context.Context, email string) error {
	_, err := p.rp.GetOobConfirmationCode(&identitytoolkit.Relyingparty{
		Email:       email,
		RequestType: "PASSWORD_RESET",
	}).Context(ctx).Do()
	if err != nil {
		return translateFirebaseError(err)
	}
	return nil
}

// translateFirebaseError turns Identity Toolkit error codes into messages a
// user can act on.
func translateFirebaseError(err error) error {
	var gErr *googleapi.Error
	if !errors.As(err, &gErr) {
		return fmt.Errorf("%w: %v", pkg.ErrAuthentication, err)
	}
	code := gErr.Message
	if i := strings.Index(code, " : "); i > 0 {
		code = code[:i]
	}
	switch code {
	case "EMAIL_EXISTS":
		return authError("email already registered")
	case "EMAIL_NOT_FOUND", "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS":
		return authError("invalid email or password")
	case "INVALID_EMAIL", "MISSING_EMAIL":
		return authError("invalid email address")
	case "WEAK_PASSWORD":
		return authError("password must be at least 6 characters")
	case "USER_DISABLED":
		return authError("account disabled")
	case "TOO_MANY_ATTEMPTS_TRY_LATER":
		return authError("too many attempts, try again later")
	default:
		return fmt.Errorf("%w: %s", pkg.ErrAuthentication, gErr.Message)
	}
}
