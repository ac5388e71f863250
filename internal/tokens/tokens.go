package tokens

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/harryzhoudev/portfolio-api/pkg/middleware"
)

// RoleAdmin is the only role this API issues.
const RoleAdmin = "admin"

// Claims is the payload of an access token.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateAccessToken creates a signed HS256 access token for subject.
func GenerateAccessToken(secret, issuer, subject string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("jwt secret not configured")
	}
	now := time.Now()
	claims := Claims{
		Role: RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseAccessToken verifies signature, algorithm, expiry and issuer, and
// returns the claims.
func ParseAccessToken(secret, issuer, raw string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if claims.Role != RoleAdmin {
		return nil, errors.New("token does not carry the admin role")
	}
	return &claims, nil
}

// Verifier checks locally issued access tokens for the auth middleware.
type Verifier struct {
	secret string
	issuer string
}

func NewVerifier(secret, issuer string) *Verifier {
	return &Verifier{secret: secret, issuer: issuer}
}

func (v *Verifier) Verify(ctx context.Context, raw string) (middleware.Token, error) {
	claims, err := ParseAccessToken(v.secret, v.issuer, raw)
	if err != nil {
		return nil, err
	}
	return claimsToken{claims}, nil
}

type claimsToken struct{ c *Claims }

func (t claimsToken) Claims(v interface{}) error {
	b, err := json.Marshal(t.c)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}
