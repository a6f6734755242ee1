// Package filestore keeps the credential store as a single JSON array on
// disk, the way the users.json seed file is laid out.
//
// Every mutation re-reads and rewrites the whole collection. Mutations are
// serialized through one mutex, so two writers in the same process cannot
// clobber each other; separate processes sharing the file still can.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/thereayou/secure-profile/internal/models"
)

type UserFile struct {
	path string
	mu   sync.Mutex
}

func NewUserFile(path string) *UserFile {
	return &UserFile{path: path}
}

// load reads the whole collection. A missing or empty file is an empty store.
func (s *UserFile) load() ([]*models.User, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var users []*models.User
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	return users, nil
}

// save replaces the file atomically so readers never see a partial write.
func (s *UserFile) save(users []*models.User) error {
	data, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".users-*.json")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}

func (s *UserFile) GetUser(_ context.Context, id string) (*models.User, error) {
	users, err := s.load()
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, models.ErrUserNotFound
}

func (s *UserFile) FindUserByUsername(_ context.Context, username string) (*models.User, error) {
	users, err := s.load()
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, models.ErrUserNotFound
}

func (s *UserFile) ListUsers(_ context.Context) ([]*models.User, error) {
	return s.load()
}

// UpsertUser replaces the record with the same id, or appends it. The
// username must not be held by any other record.
func (s *UserFile) UpsertUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.load()
	if err != nil {
		return err
	}

	idx := -1
	for i, u := range users {
		if u.ID == user.ID {
			idx = i
			continue
		}
		if u.Username == user.Username {
			return models.ErrUsernameTaken
		}
	}

	if idx == -1 {
		users = append(users, user.Clone())
	} else {
		users[idx] = user.Clone()
	}
	return s.save(users)
}
