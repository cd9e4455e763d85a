package coordinator

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	stdsync "sync"
	"time"

	"github.com/festivalfriend/lineup-server/internal/config"
	"github.com/festivalfriend/lineup-server/internal/status"
	pkgsync "github.com/festivalfriend/lineup-server/internal/sync"
	"github.com/festivalfriend/lineup-server/internal/telemetry"
)

const (
	// basePollingInterval is the base interval at which the coordinator checks for sync work
	basePollingInterval = 2 * time.Minute

	// pollingJitter is the maximum random offset (±30 seconds) applied to the polling interval
	pollingJitter = 30 * time.Second
)

// Coordinator manages background synchronization scheduling and execution
// for all configured festivals
type Coordinator interface {
	// Start begins background sync coordination for all festivals
	// Blocks until context is cancelled or an unrecoverable error occurs
	Start(ctx context.Context) error

	// Stop gracefully stops the coordinator
	Stop() error
}

// defaultCoordinator is the default implementation of Coordinator
type defaultCoordinator struct {
	manager     pkgsync.Manager
	persistence status.StatusPersistence
	config      *config.Config

	// In-memory sync status cache, guarded by mu
	mu       stdsync.Mutex
	statuses map[string]*status.SyncStatus

	// Lifecycle management
	cancelFunc context.CancelFunc
	done       chan struct{}

	// Metrics
	syncMetrics    *telemetry.SyncMetrics
	catalogMetrics *telemetry.CatalogMetrics
}

// Option is a function that configures the coordinator
type Option func(*defaultCoordinator)

// WithSyncMetrics sets the sync metrics for the coordinator
func WithSyncMetrics(metrics *telemetry.SyncMetrics) Option {
	return func(c *defaultCoordinator) {
		c.syncMetrics = metrics
	}
}

// WithCatalogMetrics sets the catalog metrics for the coordinator
func WithCatalogMetrics(metrics *telemetry.CatalogMetrics) Option {
	return func(c *defaultCoordinator) {
		c.catalogMetrics = metrics
	}
}

// New creates a new coordinator with injected dependencies
func New(
	manager pkgsync.Manager,
	persistence status.StatusPersistence,
	cfg *config.Config,
	opts ...Option,
) Coordinator {
	c := &defaultCoordinator{
		manager:     manager,
		persistence: persistence,
		config:      cfg,
		statuses:    make(map[string]*status.SyncStatus),
		done:        make(chan struct{}),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// calculatePollingInterval returns the base polling interval with a random
// jitter applied so multiple instances don't hit sources simultaneously.
func calculatePollingInterval() time.Duration {
	//nolint:gosec // G404: Non-cryptographic randomness is sufficient for polling jitter
	jitterOffset := time.Duration(rand.Int64N(int64(2*pollingJitter))) - pollingJitter
	return basePollingInterval + jitterOffset
}

// Start begins background sync coordination for all festivals
func (c *defaultCoordinator) Start(ctx context.Context) error {
	slog.Info("Starting background sync coordinator", "festival_count", len(c.config.Festivals))

	coordCtx, cancel := context.WithCancel(ctx)
	c.cancelFunc = cancel
	defer func() {
		close(c.done)
		slog.Info("Background sync coordinator shutting down")
	}()

	if err := c.initializeStatuses(coordCtx); err != nil {
		return fmt.Errorf("failed to initialize festival sync status: %w", err)
	}

	pollingInterval := calculatePollingInterval()
	slog.Info("Configured coordinator sync interval",
		"base_interval", basePollingInterval,
		"actual_interval", pollingInterval)

	ticker := time.NewTicker(pollingInterval)
	defer ticker.Stop()

	// Perform initial sync check
	c.checkAllFestivals(coordCtx)

	for {
		select {
		case <-ticker.C:
			c.checkAllFestivals(coordCtx)

			// Recalculate interval with new jitter for next iteration
			ticker.Reset(calculatePollingInterval())
		case <-coordCtx.Done():
			slog.Info("Sync coordinator stopping")
			return nil
		}
	}
}

// Stop gracefully stops the coordinator
func (c *defaultCoordinator) Stop() error {
	if c.cancelFunc != nil {
		slog.Info("Stopping sync coordinator")
		c.cancelFunc()
		<-c.done
	}
	return nil
}

// initializeStatuses loads persisted sync status for all configured festivals
func (c *defaultCoordinator) initializeStatuses(ctx context.Context) error {
	persisted, err := c.persistence.LoadAllStatus(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, festival := range c.config.Festivals {
		syncStatus, ok := persisted[festival.Name]
		if !ok {
			syncStatus = &status.SyncStatus{}
		}
		// An interrupted sync from a previous run must not block forever.
		if syncStatus.Phase == status.SyncPhaseSyncing {
			syncStatus.Phase = status.SyncPhaseFailed
			syncStatus.Message = "Sync interrupted by restart"
		}
		syncStatus.CreationType = status.CreationTypeCONFIG
		if festival.SyncPolicy != nil {
			syncStatus.SyncSchedule = festival.SyncPolicy.Interval
		}
		c.statuses[festival.Name] = syncStatus
	}
	return nil
}

// checkAllFestivals runs a sync check for every configured festival
func (c *defaultCoordinator) checkAllFestivals(ctx context.Context) {
	for i := range c.config.Festivals {
		if ctx.Err() != nil {
			return
		}
		c.checkFestivalSync(ctx, &c.config.Festivals[i])
	}
}

// checkFestivalSync performs a sync check and executes the sync if needed
func (c *defaultCoordinator) checkFestivalSync(ctx context.Context, festival *config.FestivalConfig) {
	var shouldSync bool
	var reason string
	c.withFestivalStatus(festival.Name, func(syncStatus *status.SyncStatus) {
		shouldSync, reason = c.manager.ShouldSync(ctx, festival, syncStatus, false)
	})

	if !shouldSync {
		slog.Debug("Festival does not need sync",
			"festival", festival.Name,
			"reason", reason)
		return
	}

	slog.Info("Festival needs sync", "festival", festival.Name, "reason", reason)
	c.performFestivalSync(ctx, festival)
}

// performFestivalSync executes a sync operation and updates status for a festival
func (c *defaultCoordinator) performFestivalSync(ctx context.Context, festival *config.FestivalConfig) {
	festivalName := festival.Name
	startTime := time.Now()

	// Ensure status is persisted at the end, whatever the result
	defer func() {
		c.withFestivalStatus(festivalName, func(syncStatus *status.SyncStatus) {
			if err := c.persistence.SaveStatus(ctx, festivalName, syncStatus); err != nil {
				slog.Error("Failed to persist final sync status",
					"festival", festivalName,
					"error", err)
			}
		})
	}()

	// Mark as syncing and persist immediately so the phase is visible
	var attemptCount int
	c.withFestivalStatus(festivalName, func(syncStatus *status.SyncStatus) {
		now := time.Now()
		syncStatus.Phase = status.SyncPhaseSyncing
		syncStatus.Message = "Sync in progress"
		syncStatus.LastAttempt = &now
		syncStatus.AttemptCount++
		attemptCount = syncStatus.AttemptCount

		if err := c.persistence.SaveStatus(ctx, festivalName, syncStatus); err != nil {
			slog.Warn("Failed to persist syncing status",
				"festival", festivalName,
				"error", err)
		}
	})

	slog.Info("Starting sync operation", "festival", festivalName, "attempt", attemptCount)

	// Perform sync outside the lock; this can take a long time
	result, syncErr := c.manager.PerformSync(ctx, festival)
	syncDuration := time.Since(startTime)

	now := time.Now()
	c.withFestivalStatus(festivalName, func(syncStatus *status.SyncStatus) {
		if syncErr != nil {
			syncStatus.Phase = status.SyncPhaseFailed
			syncStatus.Message = syncErr.Error()
			slog.Error("Sync failed",
				"festival", festivalName,
				"error", syncErr)

			c.syncMetrics.RecordSyncDuration(ctx, festivalName, syncDuration, false)
			return
		}

		syncStatus.Phase = status.SyncPhaseComplete
		syncStatus.Message = "Sync completed successfully"
		syncStatus.LastSyncTime = &now
		syncStatus.LastSyncHash = result.Hash
		syncStatus.ArtistCount = result.ArtistCount
		syncStatus.AttemptCount = 0

		hashPreview := result.Hash
		if len(hashPreview) > 8 {
			hashPreview = hashPreview[:8]
		}
		slog.Info("Sync completed successfully",
			"festival", festivalName,
			"artist_count", result.ArtistCount,
			"hash", hashPreview)

		c.syncMetrics.RecordSyncDuration(ctx, festivalName, syncDuration, true)
		c.catalogMetrics.RecordArtistsTotal(ctx, festivalName, int64(result.ArtistCount))
	})
}

// withFestivalStatus runs fn with the festival's cached status under lock
func (c *defaultCoordinator) withFestivalStatus(festivalName string, fn func(*status.SyncStatus)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	syncStatus, ok := c.statuses[festivalName]
	if !ok {
		syncStatus = &status.SyncStatus{}
		c.statuses[festivalName] = syncStatus
	}
	fn(syncStatus)
}
