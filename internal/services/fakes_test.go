package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/thereayou/secure-profile/internal/models"
)

var errDisk = errors.New("disk on fire")

type fakeUsers struct {
	mu    sync.Mutex
	users []*models.User

	getErr    error
	findErr   error
	upsertErr error
	upserts   int
}

func newFakeUsers(users ...*models.User) *fakeUsers {
	return &fakeUsers{users: users}
}

func (f *fakeUsers) GetUser(_ context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.users {
		if u.ID == id {
			return u.Clone(), nil
		}
	}
	return nil, models.ErrUserNotFound
}

func (f *fakeUsers) FindUserByUsername(_ context.Context, username string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, u := range f.users {
		if u.Username == username {
			return u.Clone(), nil
		}
	}
	return nil, models.ErrUserNotFound
}

func (f *fakeUsers) ListUsers(context.Context) ([]*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, u.Clone())
	}
	return out, nil
}

func (f *fakeUsers) UpsertUser(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserts++
	for i, u := range f.users {
		if u.ID == user.ID {
			f.users[i] = user.Clone()
			return nil
		}
	}
	f.users = append(f.users, user.Clone())
	return nil
}

func (f *fakeUsers) get(id string) *models.User {
	u, _ := f.GetUser(context.Background(), id)
	return u
}

type fakeStorage struct {
	mu        sync.Mutex
	deleted   []string
	deleteErr error
}

func (f *fakeStorage) Delete(_ context.Context, ref string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, ref)
	return nil
}

func (f *fakeStorage) Managed(ref string) bool {
	return strings.HasPrefix(ref, "/uploads/")
}

type fakeReclaimer struct {
	mu        sync.Mutex
	scheduled []string
}

func (f *fakeReclaimer) Schedule(ref string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scheduled = append(f.scheduled, ref)
}

func strPtr(s string) *string { return &s }

func alice() *models.User {
	return &models.User{ID: "1", Username: "alice", Password: "secret", Email: "alice@example.com", FirstName: "Alice", LastName: "Smith"}
}

func bob() *models.User {
	return &models.User{ID: "2", Username: "bob", Password: "hunter2", Email: "bob@example.com", FirstName: "Bob", LastName: "Jones"}
}
