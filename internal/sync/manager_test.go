package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/festivalfriend/lineup-server/internal/catalog"
	"github.com/festivalfriend/lineup-server/internal/classify"
	"github.com/festivalfriend/lineup-server/internal/config"
	"github.com/festivalfriend/lineup-server/internal/sources"
	"github.com/festivalfriend/lineup-server/internal/status"
)

// fakeSourceHandler serves a canned fetch result
type fakeSourceHandler struct {
	result *sources.FetchResult
	err    error
}

func (f *fakeSourceHandler) FetchLineup(_ context.Context, _ *config.FestivalConfig) (*sources.FetchResult, error) {
	return f.result, f.err
}

func (*fakeSourceHandler) Validate(_ *config.FestivalConfig) error { return nil }

func (f *fakeSourceHandler) CurrentHash(_ context.Context, _ *config.FestivalConfig) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.result.Hash, nil
}

// fakeFactory always returns the same handler
type fakeFactory struct {
	handler sources.SourceHandler
	err     error
}

func (f *fakeFactory) CreateHandler(_ string) (sources.SourceHandler, error) {
	return f.handler, f.err
}

// fakeStore tracks merges in memory
type fakeStore struct {
	catalog *catalog.Catalog
	merged  *sources.FetchResult
	loadErr error
}

func (f *fakeStore) Save(_ context.Context, _ *catalog.Catalog) error { return nil }

func (f *fakeStore) Load(_ context.Context) (*catalog.Catalog, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	if f.catalog == nil {
		return catalog.NewCatalog(), nil
	}
	return f.catalog, nil
}

func (f *fakeStore) MergeLineup(
	_ context.Context, result *sources.FetchResult, _ map[string]classify.Classification,
) (*catalog.Catalog, error) {
	f.merged = result
	return catalog.NewCatalog(), nil
}

func (*fakeStore) Delete(_ context.Context) error { return nil }

// fakeClassifier classifies everything as jazz
type fakeClassifier struct{}

func (*fakeClassifier) ClassifyArtist(_ context.Context, _ string) (classify.Classification, error) {
	return classify.Classification{Genres: []string{"jazz"}, Timbre: []string{"smooth"}}, nil
}

func (f *fakeClassifier) ClassifyBatch(
	ctx context.Context, names []string, _ *catalog.Catalog, _ classify.ProgressFunc,
) (map[string]classify.Classification, error) {
	results := make(map[string]classify.Classification, len(names))
	for _, name := range names {
		c, _ := f.ClassifyArtist(ctx, name)
		results[name] = c
	}
	return results, nil
}

func (*fakeClassifier) ValidateArtist(_ context.Context, _ string) (bool, error) {
	return true, nil
}

func testFestival() *config.FestivalConfig {
	return &config.FestivalConfig{
		Name:       "fest",
		Page:       &config.PageConfig{URL: "https://example.com/lineup"},
		SyncPolicy: &config.SyncPolicyConfig{Interval: "1h"},
	}
}

func TestShouldSync(t *testing.T) {
	t.Parallel()

	fetched := sources.NewFetchResult("fest", "https://example.com/lineup", []string{"A", "B"})
	manager := NewDefaultSyncManager(
		&fakeFactory{handler: &fakeSourceHandler{result: fetched}},
		&fakeStore{},
		&fakeClassifier{},
	)
	ctx := context.Background()

	past := time.Now().Add(-2 * time.Hour)
	recent := time.Now().Add(-time.Minute)

	tests := []struct {
		name           string
		syncStatus     *status.SyncStatus
		manual         bool
		expectedSync   bool
		expectedReason string
	}{
		{
			name:           "never synced",
			syncStatus:     &status.SyncStatus{},
			expectedSync:   true,
			expectedReason: ReasonFestivalNotReady,
		},
		{
			name:           "sync already in progress",
			syncStatus:     &status.SyncStatus{Phase: status.SyncPhaseSyncing},
			expectedSync:   false,
			expectedReason: ReasonAlreadyInProgress,
		},
		{
			name: "up to date within interval",
			syncStatus: &status.SyncStatus{
				Phase:        status.SyncPhaseComplete,
				LastAttempt:  &recent,
				LastSyncHash: fetched.Hash,
			},
			expectedSync:   false,
			expectedReason: ReasonUpToDate,
		},
		{
			name: "interval elapsed with data change",
			syncStatus: &status.SyncStatus{
				Phase:        status.SyncPhaseComplete,
				LastAttempt:  &past,
				LastSyncHash: "different-hash",
			},
			expectedSync:   true,
			expectedReason: ReasonSourceDataChanged,
		},
		{
			name: "interval elapsed without data change",
			syncStatus: &status.SyncStatus{
				Phase:        status.SyncPhaseComplete,
				LastAttempt:  &past,
				LastSyncHash: fetched.Hash,
			},
			expectedSync:   false,
			expectedReason: ReasonUpToDate,
		},
		{
			name: "manual sync with changes",
			syncStatus: &status.SyncStatus{
				Phase:        status.SyncPhaseComplete,
				LastAttempt:  &recent,
				LastSyncHash: "different-hash",
			},
			manual:         true,
			expectedSync:   true,
			expectedReason: ReasonManualWithChanges,
		},
		{
			name: "manual sync without changes",
			syncStatus: &status.SyncStatus{
				Phase:        status.SyncPhaseComplete,
				LastAttempt:  &recent,
				LastSyncHash: fetched.Hash,
			},
			manual:         true,
			expectedSync:   false,
			expectedReason: ReasonManualNoChanges,
		},
		{
			name: "failed sync retried",
			syncStatus: &status.SyncStatus{
				Phase:        status.SyncPhaseFailed,
				LastAttempt:  &recent,
				LastSyncHash: "different-hash",
			},
			expectedSync:   true,
			expectedReason: ReasonFestivalNotReady,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			shouldSync, reason := manager.ShouldSync(ctx, testFestival(), tt.syncStatus, tt.manual)
			assert.Equal(t, tt.expectedSync, shouldSync)
			assert.Equal(t, tt.expectedReason, reason)
		})
	}
}

func TestPerformSync(t *testing.T) {
	t.Parallel()

	fetched := sources.NewFetchResult("fest", "https://example.com/lineup", []string{"A", "B"})
	st := &fakeStore{}
	manager := NewDefaultSyncManager(
		&fakeFactory{handler: &fakeSourceHandler{result: fetched}},
		st,
		&fakeClassifier{},
	)

	result, err := manager.PerformSync(context.Background(), testFestival())
	require.NoError(t, err)
	assert.Equal(t, fetched.Hash, result.Hash)
	assert.Equal(t, 2, result.ArtistCount)
	require.NotNil(t, st.merged)
	assert.Equal(t, fetched, st.merged)
}

func TestPerformSync_Errors(t *testing.T) {
	t.Parallel()

	t.Run("handler creation failure", func(t *testing.T) {
		t.Parallel()

		manager := NewDefaultSyncManager(&fakeFactory{err: errors.New("no handler")}, &fakeStore{}, &fakeClassifier{})
		_, err := manager.PerformSync(context.Background(), testFestival())
		assert.ErrorContains(t, err, "source handler")
	})

	t.Run("fetch failure", func(t *testing.T) {
		t.Parallel()

		manager := NewDefaultSyncManager(
			&fakeFactory{handler: &fakeSourceHandler{err: errors.New("page down")}},
			&fakeStore{},
			&fakeClassifier{},
		)
		_, err := manager.PerformSync(context.Background(), testFestival())
		assert.ErrorContains(t, err, "fetch failed")
	})

	t.Run("catalog load failure", func(t *testing.T) {
		t.Parallel()

		fetched := sources.NewFetchResult("fest", "", []string{"A"})
		manager := NewDefaultSyncManager(
			&fakeFactory{handler: &fakeSourceHandler{result: fetched}},
			&fakeStore{loadErr: errors.New("disk gone")},
			&fakeClassifier{},
		)
		_, err := manager.PerformSync(context.Background(), testFestival())
		assert.ErrorContains(t, err, "failed to load catalog")
	})
}

func TestAutomaticSyncChecker(t *testing.T) {
	t.Parallel()

	checker := &DefaultAutomaticSyncChecker{}

	t.Run("no policy means no interval sync", func(t *testing.T) {
		t.Parallel()

		festival := &config.FestivalConfig{Name: "fest"}
		needed, _, err := checker.IsIntervalSyncNeeded(festival, &status.SyncStatus{})
		require.NoError(t, err)
		assert.False(t, needed)
	})

	t.Run("no last attempt means sync needed", func(t *testing.T) {
		t.Parallel()

		needed, next, err := checker.IsIntervalSyncNeeded(testFestival(), &status.SyncStatus{})
		require.NoError(t, err)
		assert.True(t, needed)
		assert.True(t, next.After(time.Now()))
	})

	t.Run("invalid interval is an error", func(t *testing.T) {
		t.Parallel()

		festival := &config.FestivalConfig{
			Name:       "fest",
			SyncPolicy: &config.SyncPolicyConfig{Interval: "sometimes"},
		}
		_, _, err := checker.IsIntervalSyncNeeded(festival, &status.SyncStatus{})
		assert.Error(t, err)
	})
}
