// Package sessions maps opaque cookie tokens to users across requests.
package sessions

import (
	"context"
	"errors"
	"time"

	"github.com/thereayou/secure-profile/internal/models"
)

var (
	// ErrSessionNotFound means the session is absent or expired.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionStore wraps I/O failures of the backing store. It is never
	// used for "not logged in".
	ErrSessionStore = errors.New("session store error")
)

// Store is a key to session blob store with TTL expiry.
type Store interface {
	Get(ctx context.Context, id string) (*models.Session, error)
	Set(ctx context.Context, id string, s *models.Session, ttl time.Duration) error
	// Replace overwrites an existing session and resets its TTL. It returns
	// ErrSessionNotFound, writing nothing, when the session is absent.
	Replace(ctx context.Context, id string, s *models.Session, ttl time.Duration) error
	// Touch resets the TTL of an existing session.
	Touch(ctx context.Context, id string, ttl time.Duration) error
	// Delete removes a session; deleting an absent one is not an error.
	Delete(ctx context.Context, id string) error
}
