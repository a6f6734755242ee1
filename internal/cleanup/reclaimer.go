// Package cleanup removes avatar files that no record references any more.
package cleanup

import (
	"context"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

// Deleter removes a stored file. Deleting a missing file must succeed.
type Deleter interface {
	Delete(ctx context.Context, ref string) error
}

type ReclaimerOptions struct {
	QueueSize  int
	MaxRetries uint64
	BaseDelay  time.Duration
	Timeout    time.Duration
}

func (o *ReclaimerOptions) withDefaults() {
	if o.QueueSize <= 0 {
		o.QueueSize = 256
	}
	if o.BaseDelay <= 0 {
		o.BaseDelay = 500 * time.Millisecond
	}
	if o.Timeout <= 0 {
		o.Timeout = 10 * time.Second
	}
}

// Reclaimer deletes superseded files on a background worker.
type Reclaimer struct {
	storage Deleter
	opts    ReclaimerOptions
	queue   chan string
	logger  *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewReclaimer(storage Deleter, opts ReclaimerOptions, logger *zap.Logger) *Reclaimer {
	opts.withDefaults()
	return &Reclaimer{
		storage: storage,
		opts:    opts,
		queue:   make(chan string, opts.QueueSize),
		logger:  logger,
	}
}

func (r *Reclaimer) Start(ctx context.Context) {
	ctx, r.cancel = context.WithCancel(ctx)
	r.wg.Add(1)
	go r.run(ctx)
}

// Stop ends the worker and waits for the job in progress. Queued refs that
// were not reached are left for the sweep.
func (r *Reclaimer) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
	r.wg.Wait()
}

// Schedule queues ref for deletion without blocking.
func (r *Reclaimer) Schedule(ref string) {
	if ref == "" {
		return
	}
	select {
	case r.queue <- ref:
	default:
		r.logger.Warn("reclaim queue full, leaving file for sweep", zap.String("ref", ref))
	}
}

func (r *Reclaimer) run(ctx context.Context) {
	defer r.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case ref := <-r.queue:
			r.reclaim(ctx, ref)
		}
	}
}

func (r *Reclaimer) reclaim(ctx context.Context, ref string) {
	backoff := retry.WithMaxRetries(r.opts.MaxRetries, retry.NewExponential(r.opts.BaseDelay))

	attempts := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempts++
		ctx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
		if err := r.storage.Delete(ctx, ref); err != nil {
			r.logger.Debug("reclaim attempt failed",
				zap.String("ref", ref),
				zap.Int("attempt", attempts),
				zap.Error(err),
			)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		r.logger.Error("failed to reclaim file",
			zap.String("ref", ref),
			zap.Int("attempts", attempts),
			zap.Error(err),
		)
		return
	}
	r.logger.Info("file reclaimed", zap.String("ref", ref))
}
