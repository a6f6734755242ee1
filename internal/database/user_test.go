package database

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thereayou/secure-profile/internal/models"
)

func newTestDatabase(t *testing.T) *Database {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	d, err := Connect("sqlite", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func strPtr(s string) *string { return &s }

func seedUsers(t *testing.T, d *Database) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, d.UpsertUser(ctx, &models.User{ID: "1", Username: "alice", Password: "secret", Email: "alice@example.com", FirstName: "Alice", LastName: "Smith"}))
	require.NoError(t, d.UpsertUser(ctx, &models.User{ID: "2", Username: "bob", Password: "hunter2", Email: "bob@example.com", FirstName: "Bob", LastName: "Jones", Avatar: strPtr("/uploads/1-bob.png")}))
}

func TestConnect_RejectsUnknownDriver(t *testing.T) {
	_, err := Connect("mysql", "dsn")
	assert.Error(t, err)

	_, err = Connect("sqlite", "")
	assert.Error(t, err)
}

func TestConnect_ReportsDriver(t *testing.T) {
	assert.Equal(t, "sqlite", newTestDatabase(t).Driver())
}

func TestDatabase_GetAndFind(t *testing.T) {
	d := newTestDatabase(t)
	seedUsers(t, d)
	ctx := context.Background()

	u, err := d.GetUser(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, "bob", u.Username)
	require.NotNil(t, u.Avatar)
	assert.Equal(t, "/uploads/1-bob.png", *u.Avatar)

	u, err = d.FindUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "1", u.ID)
	assert.Nil(t, u.Avatar)

	_, err = d.GetUser(ctx, "404")
	assert.ErrorIs(t, err, models.ErrUserNotFound)
	_, err = d.FindUserByUsername(ctx, "carol")
	assert.ErrorIs(t, err, models.ErrUserNotFound)
}

func TestDatabase_UpsertOverwritesAndClearsAvatar(t *testing.T) {
	d := newTestDatabase(t)
	seedUsers(t, d)
	ctx := context.Background()

	u, err := d.GetUser(ctx, "2")
	require.NoError(t, err)
	u.FirstName = "Robert"
	u.Avatar = nil
	require.NoError(t, d.UpsertUser(ctx, u))

	u, err = d.GetUser(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, "Robert", u.FirstName)
	assert.Nil(t, u.Avatar)

	users, err := d.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestDatabase_UpsertRejectsTakenUsername(t *testing.T) {
	d := newTestDatabase(t)
	seedUsers(t, d)
	ctx := context.Background()

	u, err := d.GetUser(ctx, "1")
	require.NoError(t, err)
	u.Username = "bob"
	assert.ErrorIs(t, d.UpsertUser(ctx, u), models.ErrUsernameTaken)

	u, err = d.GetUser(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
}

func TestDatabase_ImportUsersSkipsExisting(t *testing.T) {
	d := newTestDatabase(t)
	seedUsers(t, d)
	ctx := context.Background()

	n, err := d.ImportUsers(ctx, []*models.User{
		{ID: "1", Username: "alice", Password: "changed"},
		{ID: "3", Username: "carol", Password: "pw", Email: "carol@example.com", FirstName: "Carol", LastName: "King"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	u, err := d.GetUser(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "secret", u.Password)

	u, err = d.GetUser(ctx, "3")
	require.NoError(t, err)
	assert.Equal(t, "carol", u.Username)
}
