package services

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/thereayou/secure-profile/internal/models"
)

type ProfileService struct {
	users     UserStore
	storage   AvatarStorage
	reclaimer Reclaimer
	logger    *zap.Logger
}

func NewProfileService(users UserStore, storage AvatarStorage, reclaimer Reclaimer, logger *zap.Logger) *ProfileService {
	return &ProfileService{users: users, storage: storage, reclaimer: reclaimer, logger: logger}
}

// UpdateProfile validates in, writes it onto the caller's record and
// persists the store. A freshly uploaded avatar replaces the previous one,
// whose file is reclaimed in the background. On any failure the fresh upload
// is discarded so it does not linger as an orphan.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (*models.User, error) {
	user, err := s.apply(ctx, userID, in)
	if err != nil {
		if in.Avatar != nil {
			s.discard(ctx, *in.Avatar)
		}
		return nil, err
	}
	return user, nil
}

func (s *ProfileService) apply(ctx context.Context, userID string, in ProfileInput) (*models.User, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return nil, ErrNotFound
		}
		return nil, storeError("get user", err)
	}

	holder, err := s.users.FindUserByUsername(ctx, in.Username)
	switch {
	case err == nil && holder.ID != user.ID:
		return nil, ErrUsernameTaken
	case err != nil && !errors.Is(err, models.ErrUserNotFound):
		return nil, storeError("find user", err)
	}

	updated := user.Clone()
	updated.Username = in.Username
	updated.Email = in.Email
	updated.FirstName = in.FirstName
	updated.LastName = in.LastName

	var superseded string
	if in.Avatar != nil {
		superseded = user.AvatarRef()
		ref := *in.Avatar
		updated.Avatar = &ref
	}

	if err := s.users.UpsertUser(ctx, updated); err != nil {
		if errors.Is(err, models.ErrUsernameTaken) {
			return nil, ErrUsernameTaken
		}
		return nil, storeError("save user", err)
	}

	if superseded != "" && superseded != updated.AvatarRef() && s.storage.Managed(superseded) {
		s.logger.Info("avatar superseded", zap.String("user_id", user.ID), zap.String("ref", superseded))
		s.reclaimer.Schedule(superseded)
	}

	return updated, nil
}

func (s *ProfileService) discard(ctx context.Context, ref string) {
	if err := s.storage.Delete(ctx, ref); err != nil {
		s.logger.Warn("discarding rejected upload failed, handing to reclaimer", zap.String("ref", ref), zap.Error(err))
		s.reclaimer.Schedule(ref)
	}
}
