package admin

import (
	"crypto/subtle"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotConfigured      = errors.New("admin login is not configured")
)

// dummyHash keeps the bcrypt cost on the unknown-email path so response
// timing does not reveal whether the email matched.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("portfolio-dummy-password"), bcrypt.DefaultCost)

// Authenticator checks credentials against the single configured admin account.
type Authenticator struct {
	email string
	hash  []byte
}

func NewAuthenticator(email, passwordHash string) *Authenticator {
	return &Authenticator{email: normalizeEmail(email), hash: []byte(passwordHash)}
}

func normalizeEmail(e string) string { return strings.ToLower(strings.TrimSpace(e)) }

func (a *Authenticator) Enabled() bool {
	return a != nil && a.email != "" && len(a.hash) > 0
}

// Email returns the configured admin email in normalized form.
func (a *Authenticator) Email() string { return a.email }

// Authenticate returns nil when email and password match the admin account.
func (a *Authenticator) Authenticate(email, password string) error {
	if !a.Enabled() {
		return ErrNotConfigured
	}
	emailOK := subtle.ConstantTimeCompare([]byte(normalizeEmail(email)), []byte(a.email)) == 1
	hash := a.hash
	if !emailOK {
		hash = dummyHash
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil || !emailOK {
		return ErrInvalidCredentials
	}
	return nil
}

// HashPassword returns the bcrypt hash to put in ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password must not be empty")
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
