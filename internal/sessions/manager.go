package sessions

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/thereayou/secure-profile/internal/models"
	"github.com/thereayou/secure-profile/pkg/auth"
)

// UserGetter resolves the current user record for a session.
type UserGetter interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
}

// Identity is the authenticated caller of a request.
type Identity struct {
	Token     string
	SessionID string
	User      *models.User
}

type Options struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

type Manager struct {
	store  Store
	signer *auth.TokenSigner
	users  UserGetter
	opts   Options
	logger *zap.Logger
	now    func() time.Time
}

func NewManager(store Store, signer *auth.TokenSigner, users UserGetter, opts Options, logger *zap.Logger) *Manager {
	if opts.CookieName == "" {
		opts.CookieName = "sid"
	}
	return &Manager{
		store:  store,
		signer: signer,
		users:  users,
		opts:   opts,
		logger: logger,
		now:    time.Now,
	}
}

func (m *Manager) CookieName() string { return m.opts.CookieName }

// Establish starts an Active session for userID and returns its token.
func (m *Manager) Establish(ctx context.Context, userID string) (string, error) {
	id := uuid.NewString()
	sess := &models.Session{UserID: userID, CreatedAt: m.now()}
	if err := m.store.Set(ctx, id, sess, m.opts.TTL); err != nil {
		return "", err
	}

	token, err := m.signer.Sign(id)
	if err != nil {
		_ = m.store.Delete(ctx, id)
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return token, nil
}

// Restore resolves token to the caller. Missing, tampered, expired or
// orphaned sessions yield a nil Identity and no error; only store failures
// are errors. The user record is always re-read from the store.
func (m *Manager) Restore(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, nil
	}
	id, err := m.signer.Verify(token)
	if err != nil {
		return nil, nil
	}

	sess, err := m.store.Get(ctx, id)
	if errors.Is(err, ErrSessionNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := m.store.Touch(ctx, id, m.opts.TTL); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, nil
		}
		return nil, err
	}

	user, err := m.users.GetUser(ctx, sess.UserID)
	if errors.Is(err, models.ErrUserNotFound) {
		m.logger.Info("session references a missing user", zap.String("user_id", sess.UserID))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("restore session user: %w", err)
	}

	return &Identity{Token: token, SessionID: id, User: user}, nil
}

// Refresh rewrites the session behind token for userID and restarts its TTL.
// A session that was logged out or has expired stays ended: Refresh returns
// ErrSessionNotFound and writes nothing.
func (m *Manager) Refresh(ctx context.Context, token, userID string) error {
	id, err := m.signer.Verify(token)
	if err != nil {
		return err
	}
	existing, err := m.store.Get(ctx, id)
	if err != nil {
		return err
	}
	sess := &models.Session{UserID: userID, CreatedAt: existing.CreatedAt}
	return m.store.Replace(ctx, id, sess, m.opts.TTL)
}

// Invalidate ends the session behind token. Unknown or malformed tokens are
// ignored so that logging out twice behaves like logging out once.
func (m *Manager) Invalidate(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	id, err := m.signer.Verify(token)
	if err != nil {
		return nil
	}
	return m.store.Delete(ctx, id)
}

func (m *Manager) WriteCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.opts.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (m *Manager) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.opts.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
