package sync

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/festivalfriend/lineup-server/internal/classify"
	"github.com/festivalfriend/lineup-server/internal/config"
	"github.com/festivalfriend/lineup-server/internal/sources"
	"github.com/festivalfriend/lineup-server/internal/status"
	"github.com/festivalfriend/lineup-server/internal/store"
)

// Result contains the result of a successful sync operation
type Result struct {
	Hash        string
	ArtistCount int
}

// Sync reason constants
const (
	// Festival state related reasons
	ReasonAlreadyInProgress = "sync-already-in-progress"
	ReasonFestivalNotReady  = "festival-not-ready"

	// Data change related reasons
	ReasonSourceDataChanged    = "source-data-changed"
	ReasonErrorCheckingChanges = "error-checking-data-changes"

	// Manual sync related reasons
	ReasonManualWithChanges = "manual-sync-with-data-changes"
	ReasonManualNoChanges   = "manual-sync-no-data-changes"

	// Automatic sync related reasons
	ReasonErrorCheckingSyncNeed = "error-checking-sync-need"

	// Up-to-date reasons
	ReasonUpToDate = "up-to-date"
)

// Manager manages synchronization operations for festival lineups
type Manager interface {
	// ShouldSync determines if a sync operation is needed for a specific festival
	ShouldSync(
		ctx context.Context, festival *config.FestivalConfig, syncStatus *status.SyncStatus, manualSyncRequested bool,
	) (bool, string)

	// PerformSync executes the complete sync operation for a specific festival
	PerformSync(ctx context.Context, festival *config.FestivalConfig) (*Result, error)
}

// DataChangeDetector detects changes in source data
type DataChangeDetector interface {
	// IsDataChanged checks if source data has changed by comparing hashes for a specific festival
	IsDataChanged(ctx context.Context, festival *config.FestivalConfig, syncStatus *status.SyncStatus) (bool, error)
}

// AutomaticSyncChecker handles automatic sync timing logic
type AutomaticSyncChecker interface {
	// IsIntervalSyncNeeded checks if sync is needed based on time interval for a specific festival
	// Returns (syncNeeded, nextSyncTime, error) where nextSyncTime is always in the future
	IsIntervalSyncNeeded(festival *config.FestivalConfig, syncStatus *status.SyncStatus) (bool, time.Time, error)
}

// defaultSyncManager is the default implementation of Manager
type defaultSyncManager struct {
	sourceHandlerFactory sources.SourceHandlerFactory
	catalogStore         store.Store
	classifier           classify.Classifier
	dataChangeDetector   DataChangeDetector
	automaticSyncChecker AutomaticSyncChecker
}

var _ Manager = (*defaultSyncManager)(nil)

// NewDefaultSyncManager creates a new defaultSyncManager
func NewDefaultSyncManager(
	sourceHandlerFactory sources.SourceHandlerFactory,
	catalogStore store.Store,
	classifier classify.Classifier,
) Manager {
	return &defaultSyncManager{
		sourceHandlerFactory: sourceHandlerFactory,
		catalogStore:         catalogStore,
		classifier:           classifier,
		dataChangeDetector:   &DefaultDataChangeDetector{sourceHandlerFactory: sourceHandlerFactory},
		automaticSyncChecker: &DefaultAutomaticSyncChecker{},
	}
}

// ShouldSync determines if a sync operation is needed for a specific festival
// Returns: (shouldSync bool, reason string)
func (s *defaultSyncManager) ShouldSync(
	ctx context.Context,
	festival *config.FestivalConfig,
	syncStatus *status.SyncStatus,
	manualSyncRequested bool,
) (bool, string) {
	// If the festival is currently syncing, don't start another sync
	if syncStatus != nil && syncStatus.Phase == status.SyncPhaseSyncing {
		return false, ReasonAlreadyInProgress
	}

	syncNeededForState := isSyncNeededForState(syncStatus)
	intervalElapsed, _, err := s.automaticSyncChecker.IsIntervalSyncNeeded(festival, syncStatus)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to determine if interval has elapsed",
			"festival", festival.Name, "error", err)
		return false, ReasonErrorCheckingSyncNeed
	}

	if !syncNeededForState && !manualSyncRequested && !intervalElapsed {
		return false, ReasonUpToDate
	}

	// Something asks for a sync; only do it if the source data actually changed.
	dataChanged, err := s.dataChangeDetector.IsDataChanged(ctx, festival, syncStatus)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to determine if data has changed",
			"festival", festival.Name, "error", err)
		return true, ReasonErrorCheckingChanges
	}

	slog.DebugContext(ctx, "Sync check",
		"festival", festival.Name,
		"syncNeededForState", syncNeededForState,
		"manualSyncRequested", manualSyncRequested,
		"intervalElapsed", intervalElapsed,
		"dataChanged", dataChanged)

	if !dataChanged {
		if manualSyncRequested {
			return false, ReasonManualNoChanges
		}
		return false, ReasonUpToDate
	}

	switch {
	case syncNeededForState:
		return true, ReasonFestivalNotReady
	case manualSyncRequested:
		return true, ReasonManualWithChanges
	default:
		return true, ReasonSourceDataChanged
	}
}

// isSyncNeededForState checks if sync is needed based on the festival's current state
func isSyncNeededForState(syncStatus *status.SyncStatus) bool {
	if syncStatus == nil {
		return true
	}
	// Anything other than a completed sync means we still need one.
	return syncStatus.Phase != status.SyncPhaseComplete
}

// PerformSync performs the complete sync operation for a specific festival:
// fetch the lineup, classify the artists, merge into the catalog.
func (s *defaultSyncManager) PerformSync(
	ctx context.Context, festival *config.FestivalConfig,
) (*Result, error) {
	handler, err := s.sourceHandlerFactory.CreateHandler(festival.GetType())
	if err != nil {
		return nil, fmt.Errorf("failed to create source handler: %w", err)
	}

	if err := handler.Validate(festival); err != nil {
		return nil, fmt.Errorf("festival source validation failed: %w", err)
	}

	fetchResult, err := handler.FetchLineup(ctx, festival)
	if err != nil {
		return nil, fmt.Errorf("fetch failed: %w", err)
	}

	slog.InfoContext(ctx, "Lineup fetched successfully from source",
		"festival", fetchResult.FestivalName,
		"artistCount", len(fetchResult.Artists),
		"hash", fetchResult.Hash)

	existing, err := s.catalogStore.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	classifications, err := s.classifier.ClassifyBatch(ctx, fetchResult.Artists, existing, nil)
	if err != nil {
		return nil, fmt.Errorf("classification failed: %w", err)
	}

	if _, err := s.catalogStore.MergeLineup(ctx, fetchResult, classifications); err != nil {
		return nil, fmt.Errorf("storage failed: %w", err)
	}

	return &Result{
		Hash:        fetchResult.Hash,
		ArtistCount: len(fetchResult.Artists),
	}, nil
}
