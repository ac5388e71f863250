package oidc

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"

	"github.com/harryzhoudev/portfolio-api/pkg/middleware"
)

// ErrNotAdmin is returned for a valid IdP token that belongs to someone other than the admin.
var ErrNotAdmin = errors.New("token subject is not the portfolio admin")

// IDToken is satisfied by *oidc.IDToken and by test fakes.
type IDToken interface {
	Claims(v interface{}) error
}

type idTokenVerifier interface {
	Verify(ctx context.Context, raw string) (IDToken, error)
}

type providerVerifier struct{ v *oidc.IDTokenVerifier }

func (p providerVerifier) Verify(ctx context.Context, raw string) (IDToken, error) {
	return p.v.Verify(ctx, raw)
}

// Verifier accepts ID tokens from an external identity provider when their
// email claim is the configured admin email.
type Verifier struct {
	verifier   idTokenVerifier
	adminEmail string
}

// NewVerifier discovers the provider at issuer and builds a verifier for clientID.
func NewVerifier(ctx context.Context, issuer, clientID, adminEmail string) (*Verifier, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to discover OIDC provider: %w", err)
	}
	return &Verifier{
		verifier:   providerVerifier{provider.Verifier(&oidc.Config{ClientID: clientID})},
		adminEmail: strings.ToLower(strings.TrimSpace(adminEmail)),
	}, nil
}

func (v *Verifier) Verify(ctx context.Context, raw string) (middleware.Token, error) {
	tok, err := v.verifier.Verify(ctx, raw)
	if err != nil {
		return nil, err
	}
	var claims struct {
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
	}
	if err := tok.Claims(&claims); err != nil {
		return nil, fmt.Errorf("decoding id token claims: %w", err)
	}
	// the admin gate trusts only addresses the IdP has verified
	if !claims.EmailVerified {
		return nil, ErrNotAdmin
	}
	if v.adminEmail == "" || strings.ToLower(claims.Email) != v.adminEmail {
		return nil, ErrNotAdmin
	}
	return tok, nil
}
