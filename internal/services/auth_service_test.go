package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/thereayou/secure-profile/pkg/auth"
)

func newAuthService(users UserStore) *AuthService {
	return NewAuthService(users, auth.PasswordChecker{AllowPlaintext: true}, zap.NewNop())
}

func TestAuthenticate_Success(t *testing.T) {
	s := newAuthService(newFakeUsers(alice(), bob()))

	u, err := s.Authenticate(context.Background(), "alice", "secret")
	require.NoError(t, err)
	assert.Equal(t, "1", u.ID)
}

func TestAuthenticate_BcryptCredential(t *testing.T) {
	hash, err := auth.HashPassword("secret")
	require.NoError(t, err)
	a := alice()
	a.Password = hash

	s := NewAuthService(newFakeUsers(a), auth.PasswordChecker{}, zap.NewNop())
	u, err := s.Authenticate(context.Background(), "alice", "secret")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
}

func TestAuthenticate_FailuresAreIndistinguishable(t *testing.T) {
	s := newAuthService(newFakeUsers(alice(), bob()))
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"wrong password", "alice", "wrong"},
		{"unknown user", "mallory", "secret"},
		{"other user's password", "alice", "hunter2"},
		{"empty password", "alice", ""},
		{"empty username", "", "secret"},
		{"case differs", "Alice", "secret"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := s.Authenticate(ctx, tt.username, tt.password)
			assert.Nil(t, u)
			assert.Equal(t, ErrInvalidCredentials, err)
		})
	}
}

func TestAuthenticate_StoreUnavailable(t *testing.T) {
	users := newFakeUsers(alice())
	users.findErr = errDisk
	s := newAuthService(users)

	_, err := s.Authenticate(context.Background(), "alice", "secret")
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}
