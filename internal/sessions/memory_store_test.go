package sessions

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thereayou/secure-profile/internal/models"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newMemoryStoreWithClock() (*MemoryStore, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := NewMemoryStore()
	s.now = clock.Now
	return s, clock
}

func TestMemoryStore_SetGetDelete(t *testing.T) {
	s, _ := newMemoryStoreWithClock()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "a", &models.Session{UserID: "1"}, time.Minute))

	sess, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "1", sess.UserID)

	require.NoError(t, s.Delete(ctx, "a"))
	_, err = s.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	assert.NoError(t, s.Delete(ctx, "a"))
}

func TestMemoryStore_Expiry(t *testing.T) {
	s, clock := newMemoryStoreWithClock()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "a", &models.Session{UserID: "1"}, time.Minute))

	clock.Advance(59 * time.Second)
	_, err := s.Get(ctx, "a")
	require.NoError(t, err)

	clock.Advance(time.Second)
	_, err = s.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemoryStore_TouchExtends(t *testing.T) {
	s, clock := newMemoryStoreWithClock()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "a", &models.Session{UserID: "1"}, time.Minute))
	clock.Advance(50 * time.Second)
	require.NoError(t, s.Touch(ctx, "a", time.Minute))
	clock.Advance(50 * time.Second)

	_, err := s.Get(ctx, "a")
	require.NoError(t, err)

	clock.Advance(time.Minute)
	assert.ErrorIs(t, s.Touch(ctx, "a", time.Minute), ErrSessionNotFound)
}

func TestMemoryStore_ReplaceOnlyExisting(t *testing.T) {
	s, clock := newMemoryStoreWithClock()
	ctx := context.Background()

	assert.ErrorIs(t, s.Replace(ctx, "a", &models.Session{UserID: "1"}, time.Minute), ErrSessionNotFound)
	_, err := s.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, s.Set(ctx, "a", &models.Session{UserID: "1"}, time.Minute))
	require.NoError(t, s.Replace(ctx, "a", &models.Session{UserID: "2"}, time.Minute))
	sess, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "2", sess.UserID)

	clock.Advance(time.Minute)
	assert.ErrorIs(t, s.Replace(ctx, "a", &models.Session{UserID: "3"}, time.Minute), ErrSessionNotFound)
	_, err = s.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
