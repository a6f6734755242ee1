package services

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/thereayou/secure-profile/internal/models"
)

type AvatarService struct {
	users     UserStore
	storage   AvatarStorage
	reclaimer Reclaimer
	logger    *zap.Logger
}

func NewAvatarService(users UserStore, storage AvatarStorage, reclaimer Reclaimer, logger *zap.Logger) *AvatarService {
	return &AvatarService{users: users, storage: storage, reclaimer: reclaimer, logger: logger}
}

// RemoveAvatar deletes the caller's uploaded avatar and clears the reference.
// Default assets outside the managed storage are never deleted. A failed file
// delete is logged and retried in the background.
func (s *AvatarService) RemoveAvatar(ctx context.Context, userID string) (*models.User, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}

	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return nil, ErrNotFound
		}
		return nil, storeError("get user", err)
	}

	ref := user.AvatarRef()
	if ref == "" || !s.storage.Managed(ref) {
		return nil, ErrNothingToDelete
	}

	updated := user.Clone()
	updated.Avatar = nil
	if err := s.users.UpsertUser(ctx, updated); err != nil {
		return nil, storeError("save user", err)
	}

	// The reference is gone first, so a failed delete leaves an orphan
	// rather than a record pointing at a missing file.
	if err := s.storage.Delete(ctx, ref); err != nil {
		s.logger.Warn("avatar delete failed, handing to reclaimer", zap.String("user_id", user.ID), zap.String("ref", ref), zap.Error(err))
		s.reclaimer.Schedule(ref)
	}
	return updated, nil
}
