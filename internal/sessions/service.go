package sessions

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"
)

// ErrInvalidRefresh is returned for unknown or expired refresh tokens.
var ErrInvalidRefresh = errors.New("invalid refresh token")

// Service issues, validates and rotates refresh sessions.
type Service struct {
	repo Repository
	ttl  time.Duration
	now  func() time.Time
}

func NewService(r Repository, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &Service{repo: r, ttl: ttl, now: time.Now}
}

func newRefreshToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// CreateSession stores a new refresh session for subject and returns the refresh token.
func (s *Service) CreateSession(ctx context.Context, subject string) (string, error) {
	r, err := newRefreshToken()
	if err != nil {
		return "", err
	}
	now := s.now().UTC()
	sess := &Session{
		TokenHash: HashToken(r),
		Subject:   subject,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.repo.Create(ctx, sess); err != nil {
		return "", err
	}
	return r, nil
}

// ValidateRefresh returns the live session for refresh or ErrInvalidRefresh.
func (s *Service) ValidateRefresh(ctx context.Context, refresh string) (*Session, error) {
	if refresh == "" {
		return nil, ErrInvalidRefresh
	}
	sess, err := s.repo.Get(ctx, HashToken(refresh))
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrInvalidRefresh
	}
	if sess.Expired(s.now().UTC()) {
		_ = s.repo.Delete(ctx, sess.TokenHash)
		return nil, ErrInvalidRefresh
	}
	return sess, nil
}

// Rotate exchanges a valid refresh token for a new one; the old token stops working.
func (s *Service) Rotate(ctx context.Context, refresh string) (*Session, string, error) {
	sess, err := s.ValidateRefresh(ctx, refresh)
	if err != nil {
		return nil, "", err
	}
	if err := s.repo.Delete(ctx, sess.TokenHash); err != nil {
		return nil, "", err
	}
	next, err := s.CreateSession(ctx, sess.Subject)
	if err != nil {
		return nil, "", err
	}
	return sess, next, nil
}

func (s *Service) DeleteRefresh(ctx context.Context, refresh string) error {
	return s.repo.Delete(ctx, HashToken(refresh))
}
