package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/thereayou/secure-profile/internal/cleanup"
	"github.com/thereayou/secure-profile/internal/config"
	"github.com/thereayou/secure-profile/internal/database"
	"github.com/thereayou/secure-profile/internal/filestore"
	"github.com/thereayou/secure-profile/internal/handlers"
	"github.com/thereayou/secure-profile/internal/middleware"
	"github.com/thereayou/secure-profile/internal/services"
	"github.com/thereayou/secure-profile/internal/sessions"
	"github.com/thereayou/secure-profile/internal/uploads"
	"github.com/thereayou/secure-profile/pkg/auth"
)

const shutdownTimeout = 10 * time.Second

var (
	_ services.UserStore = (*filestore.UserFile)(nil)
	_ services.UserStore = (*database.Database)(nil)
	_ services.Reclaimer = (*cleanup.Reclaimer)(nil)
)

type Server struct {
	Router *gin.Engine

	cfg       *config.Config
	logger    *zap.Logger
	reclaimer *cleanup.Reclaimer
	sweeper   *cleanup.Sweeper
	closers   []func() error
}

// deps are the backends a server is assembled from.
type deps struct {
	users    services.UserStore
	sessions sessions.Store
	storage  uploads.Storage
}

func NewServer(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Server, error) {
	var (
		d       deps
		closers []func() error
		err     error
	)
	closeAll := func() {
		for _, c := range closers {
			_ = c()
		}
	}

	var closeUsers func() error
	d.users, closeUsers, err = openUserStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	closers = append(closers, closeUsers)

	var closeSessions func() error
	d.sessions, closeSessions, err = openSessionStore(ctx, cfg)
	if err != nil {
		closeAll()
		return nil, err
	}
	closers = append(closers, closeSessions)

	d.storage, err = openAvatarStorage(ctx, cfg)
	if err != nil {
		closeAll()
		return nil, err
	}

	s, err := newServer(ctx, cfg, logger, d)
	if err != nil {
		closeAll()
		return nil, err
	}
	s.closers = closers

	if err := s.sweeper.Start(cfg.OrphanSweepSchedule); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func newServer(ctx context.Context, cfg *config.Config, logger *zap.Logger, d deps) (*Server, error) {
	reclaimer := cleanup.NewReclaimer(d.storage, cleanup.ReclaimerOptions{
		MaxRetries: cfg.ReclaimMaxRetries,
	}, logger.Named("reclaimer"))
	reclaimer.Start(ctx)

	manager := sessions.NewManager(d.sessions, auth.NewTokenSigner(cfg.SessionSecret), d.users, sessions.Options{
		CookieName: cfg.SessionCookie,
		TTL:        cfg.SessionTTL,
		Secure:     cfg.Production,
	}, logger.Named("sessions"))

	authService := services.NewAuthService(d.users, auth.PasswordChecker{AllowPlaintext: cfg.AllowPlaintextPasswords}, logger)
	profileService := services.NewProfileService(d.users, d.storage, reclaimer, logger)
	avatarService := services.NewAvatarService(d.users, d.storage, reclaimer, logger)
	receiver := uploads.NewReceiver(d.storage, cfg.MaxAvatarBytes, logger.Named("uploads"))

	authH := handlers.NewAuthHandler(authService, manager, logger)
	profileH := handlers.NewProfileHandler(profileService, avatarService, receiver, manager, logger)

	router := gin.New()
	router.Use(middleware.RequestLogger(logger), gin.Recovery())
	if cfg.AvatarStorage == config.AvatarLocal {
		router.Static("/uploads", cfg.UploadDir)
	}
	APIEndpoints(router, manager, logger, authH, profileH)

	return &Server{
		Router:    router,
		cfg:       cfg,
		logger:    logger,
		reclaimer: reclaimer,
		sweeper:   cleanup.NewSweeper(d.storage, d.users, cfg.OrphanGracePeriod, logger.Named("sweeper")),
	}, nil
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + s.cfg.Port,
		Handler:           s.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("port", s.cfg.Port))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) Close() {
	s.sweeper.Stop()
	s.reclaimer.Stop()
	for _, c := range s.closers {
		if err := c(); err != nil {
			s.logger.Warn("close failed", zap.Error(err))
		}
	}
}

func openUserStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (services.UserStore, func() error, error) {
	switch cfg.StoreDriver {
	case config.StoreFile:
		logger.Info("using flat-file credential store", zap.String("path", cfg.UsersFile))
		return filestore.NewUserFile(cfg.UsersFile), func() error { return nil }, nil

	case config.StorePostgres, config.StoreSQLite:
		db, err := database.Connect(cfg.StoreDriver, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect %s: %w", cfg.StoreDriver, err)
		}
		logger.Info("using SQL credential store", zap.String("driver", db.Driver()))
		if cfg.SeedUsersFile != "" {
			seed, err := filestore.NewUserFile(cfg.SeedUsersFile).ListUsers(ctx)
			if err != nil {
				_ = db.Close()
				return nil, nil, fmt.Errorf("read seed users: %w", err)
			}
			n, err := db.ImportUsers(ctx, seed)
			if err != nil {
				_ = db.Close()
				return nil, nil, fmt.Errorf("import seed users: %w", err)
			}
			logger.Info("seed users imported", zap.Int("imported", n), zap.Int("total", len(seed)))
		}
		return db, db.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

func openSessionStore(ctx context.Context, cfg *config.Config) (sessions.Store, func() error, error) {
	if cfg.SessionBackend == config.SessionMemory {
		return sessions.NewMemoryStore(), func() error { return nil }, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("redis ping: %w", err)
	}
	return sessions.NewRedisStore(rdb), rdb.Close, nil
}

func openAvatarStorage(ctx context.Context, cfg *config.Config) (uploads.Storage, error) {
	if cfg.AvatarStorage == config.AvatarS3 {
		client, err := uploads.NewS3Client(ctx, uploads.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
		if err != nil {
			return nil, err
		}
		return uploads.NewS3Storage(client, cfg.S3Bucket), nil
	}
	return uploads.NewLocalStorage(cfg.UploadDir)
}
