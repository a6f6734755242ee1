package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/thereayou/secure-profile/internal/models"
	"github.com/thereayou/secure-profile/internal/sessions"
	"github.com/thereayou/secure-profile/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubUsers map[string]*models.User

func (s stubUsers) GetUser(_ context.Context, id string) (*models.User, error) {
	u, ok := s[id]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	return u.Clone(), nil
}

type brokenStore struct{ sessions.Store }

func (brokenStore) Get(context.Context, string) (*models.Session, error) {
	return nil, fmt.Errorf("%w: connection refused", sessions.ErrSessionStore)
}

func newTestRouter(store sessions.Store) (*gin.Engine, *sessions.Manager) {
	users := stubUsers{"1": {ID: "1", Username: "alice"}}
	manager := sessions.NewManager(store, auth.NewTokenSigner("test-secret"), users,
		sessions.Options{TTL: time.Hour}, zap.NewNop())

	r := gin.New()
	r.Use(Session(manager, zap.NewNop()))
	r.GET("/open", func(c *gin.Context) {
		if id := CurrentIdentity(c); id != nil {
			c.String(http.StatusOK, id.User.Username)
			return
		}
		c.String(http.StatusOK, "anonymous")
	})
	r.GET("/closed", RequireAuth("Not authenticated"), func(c *gin.Context) {
		c.String(http.StatusOK, CurrentIdentity(c).User.ID)
	})
	return r, manager
}

func get(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: "sid", Value: token})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSession_Anonymous(t *testing.T) {
	r, _ := newTestRouter(sessions.NewMemoryStore())

	w := get(r, "/open", "")
	assert.Equal(t, "anonymous", w.Body.String())

	w = get(r, "/open", "not-a-token")
	assert.Equal(t, "anonymous", w.Body.String())

	w = get(r, "/closed", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"message":"Not authenticated"}`, w.Body.String())
}

func TestSession_Authenticated(t *testing.T) {
	r, manager := newTestRouter(sessions.NewMemoryStore())
	token, err := manager.Establish(context.Background(), "1")
	require.NoError(t, err)

	w := get(r, "/open", token)
	assert.Equal(t, "alice", w.Body.String())

	w = get(r, "/closed", token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Body.String())
}

func TestSession_StoreFailureIsServerError(t *testing.T) {
	store := brokenStore{sessions.NewMemoryStore()}
	r, manager := newTestRouter(store)
	token, err := manager.Establish(context.Background(), "1")
	require.NoError(t, err)

	w := get(r, "/open", token)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"message":"Internal server error"}`, w.Body.String())

	w = get(r, "/open", "")
	assert.Equal(t, http.StatusOK, w.Code, "requests without a cookie never touch the store")
}

func TestRequestLogger_PassesThrough(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger(zap.NewNop()))
	r.GET("/teapot", func(c *gin.Context) { c.Status(http.StatusTeapot) })

	w := get(r, "/teapot", "")
	assert.Equal(t, http.StatusTeapot, w.Code)
}
