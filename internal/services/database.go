package services

import (
	"context"

	"github.com/thereayou/secure-profile/internal/models"
)

// UserStore is the credential store. Implementations return
// models.ErrUserNotFound for missing records and models.ErrUsernameTaken when
// an upsert would duplicate a username.
type UserStore interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	UpsertUser(ctx context.Context, user *models.User) error
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// AvatarStorage is the slice of the upload storage the services need.
type AvatarStorage interface {
	Delete(ctx context.Context, ref string) error
	Managed(ref string) bool
}

// Reclaimer deletes files in the background, retrying on failure.
type Reclaimer interface {
	Schedule(ref string)
}
