package status

import "time"

// SyncPhase represents the current phase of a synchronization operation
type SyncPhase string

const (
	// SyncPhaseSyncing means sync is currently in progress
	SyncPhaseSyncing SyncPhase = "Syncing"

	// SyncPhaseComplete means sync completed successfully
	SyncPhaseComplete SyncPhase = "Complete"

	// SyncPhaseFailed means sync failed
	SyncPhaseFailed SyncPhase = "Failed"
)

// CreationType represents how a festival entry was created
type CreationType string

const (
	// CreationTypeAPI means the festival was added via the API
	CreationTypeAPI CreationType = "API"

	// CreationTypeCONFIG means the festival was created from configuration
	CreationTypeCONFIG CreationType = "CONFIG"
)

// SyncStatus represents the current state of festival lineup synchronization
type SyncStatus struct {
	// Phase represents the current synchronization phase
	Phase SyncPhase `json:"phase"`

	// Message provides additional information about the sync status
	Message string `json:"message,omitempty"`

	// LastAttempt is the timestamp of the last sync attempt
	LastAttempt *time.Time `json:"lastAttempt,omitempty"`

	// AttemptCount is the number of sync attempts since last success
	AttemptCount int `json:"attemptCount,omitempty"`

	// LastSyncTime is the timestamp of the last successful sync
	LastSyncTime *time.Time `json:"lastSyncTime,omitempty"`

	// LastSyncHash is the hash of the last successfully synced lineup
	// Used to detect changes in source data
	LastSyncHash string `json:"lastSyncHash,omitempty"`

	// ArtistCount is the number of artists in the last synced lineup
	ArtistCount int `json:"artistCount,omitempty"`

	// CreationType indicates how this festival was created (API or CONFIG)
	// This prevents config-based sync from overwriting API-created festivals
	CreationType CreationType `json:"creationType,omitempty"`

	// SyncSchedule is the sync interval from configuration (e.g., "30m", "1h")
	// Empty for festivals that are not periodically synced
	SyncSchedule string `json:"syncSchedule,omitempty"`
}
