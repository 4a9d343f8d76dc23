// Package oidc verifies identity-provider ID tokens for first-party login.
package oidc

import (
	"context"
	"fmt"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"go.uber.org/zap"

	"github.com/fastygo/eventhub/domain"
)

// Verifier checks ID tokens against the provider's signing keys and audience.
type Verifier struct {
	verifier *gooidc.IDTokenVerifier
	logger   *zap.Logger
}

// Discover builds a Verifier through OIDC discovery on issuerURL.
func Discover(ctx context.Context, issuerURL, clientID string, logger *zap.Logger) (*Verifier, error) {
	provider, err := gooidc.NewProvider(ctx, issuerURL)
	if err != nil {
		return nil, fmt.Errorf("oidc provider discovery: %w", err)
	}
	return New(provider.Verifier(&gooidc.Config{ClientID: clientID}), logger), nil
}

func New(verifier *gooidc.IDTokenVerifier, logger *zap.Logger) *Verifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Verifier{verifier: verifier, logger: logger}
}

type identityClaims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
}

// Verify returns the identity carried by a valid ID token. Any verification
// failure is reported as invalid credentials.
func (v *Verifier) Verify(ctx context.Context, rawIDToken string) (domain.ExternalIdentity, error) {
	idToken, err := v.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		v.logger.Debug("id token rejected", zap.Error(err))
		return domain.ExternalIdentity{}, domain.ErrInvalidCredentials
	}

	var claims identityClaims
	if err := idToken.Claims(&claims); err != nil {
		v.logger.Debug("id token claims unreadable", zap.Error(err))
		return domain.ExternalIdentity{}, domain.ErrInvalidCredentials
	}

	return domain.ExternalIdentity{
		Email:         claims.Email,
		Name:          claims.Name,
		EmailVerified: claims.EmailVerified,
	}, nil
}
