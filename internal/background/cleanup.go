package background

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// cleanupTimeout bounds a single purge run.
const cleanupTimeout = 30 * time.Second

// ExpiredTokenPurger deletes revocation records whose token has expired
type ExpiredTokenPurger interface {
	CleanupExpiredTokens(ctx context.Context) (int64, error)
}

// CleanupManager periodically purges expired token revocations so the
// revocation table only holds tokens that could still be presented.
type CleanupManager struct {
	purger   ExpiredTokenPurger
	logger   *slog.Logger
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewCleanupManager creates a new cleanup manager
func NewCleanupManager(purger ExpiredTokenPurger, logger *slog.Logger, interval time.Duration) *CleanupManager {
	return &CleanupManager{
		purger:   purger,
		logger:   logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start runs a purge immediately and then every interval until Stop is
// called or ctx is cancelled. It blocks.
func (cm *CleanupManager) Start(ctx context.Context) {
	ticker := time.NewTicker(cm.interval)
	defer ticker.Stop()

	cm.runCleanup(ctx)

	for {
		select {
		case <-ticker.C:
			cm.runCleanup(ctx)
		case <-cm.stopCh:
			cm.logger.Info("token cleanup stopped")
			return
		case <-ctx.Done():
			cm.logger.Info("token cleanup context cancelled")
			return
		}
	}
}

func (cm *CleanupManager) runCleanup(ctx context.Context) {
	cleanupCtx, cancel := context.WithTimeout(ctx, cleanupTimeout)
	defer cancel()

	rowsDeleted, err := cm.purger.CleanupExpiredTokens(cleanupCtx)
	if err != nil {
		cm.logger.ErrorContext(ctx, "failed to purge expired token revocations", slog.Any("error", err))
		return
	}

	if rowsDeleted > 0 {
		cm.logger.InfoContext(ctx, "purged expired token revocations", slog.Int64("rows_deleted", rowsDeleted))
	}
}

// Stop signals the cleanup loop to exit. Safe to call more than once.
func (cm *CleanupManager) Stop() {
	cm.stopOnce.Do(func() { close(cm.stopCh) })
}
