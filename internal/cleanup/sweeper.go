package cleanup

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/thereayou/secure-profile/internal/models"
	"github.com/thereayou/secure-profile/internal/uploads"
)

type UserLister interface {
	ListUsers(ctx context.Context) ([]*models.User, error)
}

// Sweeper deletes managed files that no user references and that are older
// than the grace period. The grace period covers uploads whose record has
// not been written yet.
type Sweeper struct {
	storage uploads.Storage
	users   UserLister
	grace   time.Duration
	timeout time.Duration
	logger  *zap.Logger
	now     func() time.Time

	cron *cron.Cron
}

func NewSweeper(storage uploads.Storage, users UserLister, grace time.Duration, logger *zap.Logger) *Sweeper {
	return &Sweeper{
		storage: storage,
		users:   users,
		grace:   grace,
		timeout: 5 * time.Minute,
		logger:  logger,
		now:     time.Now,
	}
}

// Sweep runs one pass and returns the number of files deleted.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return 0, fmt.Errorf("list users: %w", err)
	}
	referenced := make(map[string]struct{}, len(users))
	for _, u := range users {
		if ref := u.AvatarRef(); ref != "" {
			referenced[ref] = struct{}{}
		}
	}

	objects, err := s.storage.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list files: %w", err)
	}

	cutoff := s.now().Add(-s.grace)
	deleted := 0
	for _, obj := range objects {
		if _, ok := referenced[obj.Ref]; ok || !s.storage.Managed(obj.Ref) {
			continue
		}
		if obj.ModTime.After(cutoff) {
			continue
		}
		if err := s.storage.Delete(ctx, obj.Ref); err != nil {
			s.logger.Warn("failed to delete orphaned file", zap.String("ref", obj.Ref), zap.Error(err))
			continue
		}
		deleted++
	}
	return deleted, nil
}

// Start schedules Sweep on a cron schedule such as "@every 1h".
func (s *Sweeper) Start(schedule string) error {
	c := cron.New(cron.WithChain(
		cron.Recover(cronLogger{s.logger}),
		cron.SkipIfStillRunning(cronLogger{s.logger}),
	))
	if _, err := c.AddFunc(schedule, s.runOnce); err != nil {
		return fmt.Errorf("schedule sweep %q: %w", schedule, err)
	}
	s.cron = c
	c.Start()
	s.logger.Info("orphan sweep scheduled", zap.String("schedule", schedule), zap.Duration("grace", s.grace))
	return nil
}

// Stop prevents further runs and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
}

func (s *Sweeper) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	n, err := s.Sweep(ctx)
	if err != nil {
		s.logger.Error("orphan sweep failed", zap.Error(err))
		return
	}
	if n > 0 {
		s.logger.Info("orphan sweep finished", zap.Int("deleted", n))
	}
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	logger *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
