package application

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/ericfisherdev/vpsmonitor/internal/domain/model"
)

// BatchRefresher refreshes every account. *RefreshService satisfies it.
type BatchRefresher interface {
	RefreshAll(ctx context.Context) ([]model.Account, error)
}

// RefreshScheduler runs RefreshAll on a cron schedule. A tick that fires while the
// previous run is still going is skipped. Errors are logged and the next tick
// still fires.
type RefreshScheduler struct {
	refresher BatchRefresher
	cron      *cron.Cron
	logger    *slog.Logger

	mu      sync.Mutex
	ctx     context.Context
	started bool
}

// NewRefreshScheduler creates a scheduler for the given cron spec (five fields
// unless opts change the parser). It returns an error if spec does not parse.
func NewRefreshScheduler(refresher BatchRefresher, spec string, logger *slog.Logger, opts ...cron.Option) (*RefreshScheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}

	s := &RefreshScheduler{
		refresher: refresher,
		logger:    logger,
		ctx:       context.Background(),
	}

	cronLog := cronLogger{logger: logger}
	opts = append([]cron.Option{
		cron.WithLogger(cronLog),
		cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
	}, opts...)
	s.cron = cron.New(opts...)

	if _, err := s.cron.AddFunc(spec, s.tick); err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", spec, err)
	}

	return s, nil
}

// Start begins firing on schedule. Runs use ctx; cancel it to abort an
// in-flight batch. Calling Start twice is a no-op.
func (s *RefreshScheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return
	}
	s.ctx = ctx
	s.started = true
	s.cron.Start()

	for _, entry := range s.cron.Entries() {
		s.logger.Info("refresh scheduler started", "next_run", entry.Next)
	}
}

// Stop halts the schedule and blocks until a running batch finishes or ctx is done.
func (s *RefreshScheduler) Stop(ctx context.Context) {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	s.mu.Unlock()

	select {
	case <-s.cron.Stop().Done():
		s.logger.Info("refresh scheduler stopped")
	case <-ctx.Done():
		s.logger.Warn("refresh scheduler stop timed out", "error", ctx.Err())
	}
}

// RunNow performs one refresh cycle synchronously, outside the schedule.
func (s *RefreshScheduler) RunNow(ctx context.Context) {
	s.run(ctx)
}

func (s *RefreshScheduler) tick() {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()

	s.run(ctx)
}

func (s *RefreshScheduler) run(ctx context.Context) {
	accounts, err := s.refresher.RefreshAll(ctx)
	if err != nil {
		s.logger.Error("scheduled refresh failed", "refreshed", len(accounts), "error", err)
		return
	}
	s.logger.Info("scheduled refresh complete", "refreshed", len(accounts))
}

// cronLogger routes robfig/cron's internal logging through slog.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
