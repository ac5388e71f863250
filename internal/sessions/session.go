package sessions

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Session is a refresh session for the admin. Only the hash of the refresh
// token is stored.
type Session struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	TokenHash string    `bson:"tokenHash" json:"tokenHash"`
	Subject   string    `bson:"subject" json:"subject"`
	ExpiresAt time.Time `bson:"expiresAt" json:"expiresAt"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// HashToken returns the lookup key stored for a refresh token.
func HashToken(refresh string) string {
	sum := sha256.Sum256([]byte(refresh))
	return hex.EncodeToString(sum[:])
}
