package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/novastudy/internal/auth/store"
)

// HousekeepingService periodically purges blacklist rows whose access
// token has expired on its own. It takes no application locks; the purge is
// a single DELETE.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration
	Metrics  Metrics

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a new housekeeping service with the given interval.
// If interval is 0 or negative, defaults to 1 hour.
func NewHousekeepingService(store store.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Store:    store,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker. Call Stop to shut it down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop blocks until any in-progress purge has finished.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run once on startup
	s.PurgeOnce(context.Background())

	for {
		select {
		case <-ticker.C:
			s.PurgeOnce(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// PurgeOnce deletes every blacklist row with expires_at before now.
func (s *HousekeepingService) PurgeOnce(ctx context.Context) int64 {
	n, err := s.Store.Blacklist().PurgeExpiredBlacklistedTokens(ctx, time.Now().UTC())
	if err != nil {
		s.Logger.Error("failed to purge expired blacklisted tokens", "error", err)
		return 0
	}

	metricsOrNop(s.Metrics).BlacklistPurged(ctx, n)
	s.Logger.Info("purged expired blacklisted tokens", "deleted", n)
	return n
}
