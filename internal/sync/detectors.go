package sync

import (
	"context"
	"time"

	"github.com/festivalfriend/lineup-server/internal/config"
	"github.com/festivalfriend/lineup-server/internal/sources"
	"github.com/festivalfriend/lineup-server/internal/status"
)

// DefaultDataChangeDetector implements DataChangeDetector
type DefaultDataChangeDetector struct {
	sourceHandlerFactory sources.SourceHandlerFactory
}

var _ DataChangeDetector = (*DefaultDataChangeDetector)(nil)

// NewDefaultDataChangeDetector creates a hash-comparing change detector.
func NewDefaultDataChangeDetector(factory sources.SourceHandlerFactory) *DefaultDataChangeDetector {
	return &DefaultDataChangeDetector{sourceHandlerFactory: factory}
}

// IsDataChanged checks if source data has changed by comparing hashes
func (d *DefaultDataChangeDetector) IsDataChanged(
	ctx context.Context, festival *config.FestivalConfig, syncStatus *status.SyncStatus,
) (bool, error) {
	var lastSyncHash string
	if syncStatus != nil {
		lastSyncHash = syncStatus.LastSyncHash
	}

	// If we don't have a last sync hash, consider data changed
	if lastSyncHash == "" {
		return true, nil
	}

	sourceHandler, err := d.sourceHandlerFactory.CreateHandler(festival.GetType())
	if err != nil {
		return true, err
	}

	currentHash, err := sourceHandler.CurrentHash(ctx, festival)
	if err != nil {
		return true, err
	}

	return currentHash != lastSyncHash, nil
}

// DefaultAutomaticSyncChecker implements AutomaticSyncChecker
type DefaultAutomaticSyncChecker struct{}

var _ AutomaticSyncChecker = (*DefaultAutomaticSyncChecker)(nil)

// IsIntervalSyncNeeded checks if sync is needed based on time interval
// Returns: (syncNeeded, nextSyncTime, error)
// nextSyncTime is a future time when the next sync should occur, or zero time if no policy configured
func (*DefaultAutomaticSyncChecker) IsIntervalSyncNeeded(
	festival *config.FestivalConfig, syncStatus *status.SyncStatus,
) (bool, time.Time, error) {
	if festival.SyncPolicy == nil || festival.SyncPolicy.Interval == "" {
		return false, time.Time{}, nil
	}

	interval, err := time.ParseDuration(festival.SyncPolicy.Interval)
	if err != nil {
		return false, time.Time{}, err
	}

	now := time.Now()

	var lastAttempt *time.Time
	if syncStatus != nil {
		lastAttempt = syncStatus.LastAttempt
	}

	// If we don't have a last sync time, sync is needed
	if lastAttempt == nil {
		return true, now.Add(interval), nil
	}

	nextSyncTime := lastAttempt.Add(interval)
	if now.Before(nextSyncTime) {
		return false, nextSyncTime, nil
	}

	return true, now.Add(interval), nil
}
