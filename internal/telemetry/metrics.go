package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	// CatalogMetricsMeterName is the name used for the catalog metrics meter
	CatalogMetricsMeterName = "github.com/festivalfriend/lineup-server/catalog"

	// SyncMetricsMeterName is the name used for the sync metrics meter
	SyncMetricsMeterName = "github.com/festivalfriend/lineup-server/sync"
)

// CatalogMetrics holds the OpenTelemetry instruments for catalog metrics
type CatalogMetrics struct {
	artistsTotal metric.Int64Gauge
}

// NewCatalogMetrics creates a new CatalogMetrics instance with the given meter provider.
// If provider is nil, it returns nil (no-op metrics).
func NewCatalogMetrics(provider metric.MeterProvider) (*CatalogMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(CatalogMetricsMeterName)

	artistsTotal, err := meter.Int64Gauge(
		"ff_lineup_artists_total",
		metric.WithDescription("Number of artists ingested from each festival"),
		metric.WithUnit("{artist}"),
	)
	if err != nil {
		return nil, err
	}

	return &CatalogMetrics{
		artistsTotal: artistsTotal,
	}, nil
}

// RecordArtistsTotal records the current number of artists for a festival
func (m *CatalogMetrics) RecordArtistsTotal(ctx context.Context, festivalName string, count int64) {
	if m == nil || m.artistsTotal == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("festival", festivalName),
	}

	m.artistsTotal.Record(ctx, count, metric.WithAttributes(attrs...))
}

// SyncMetrics holds the OpenTelemetry instruments for sync operation metrics
type SyncMetrics struct {
	syncDuration metric.Float64Histogram
}

// NewSyncMetrics creates a new SyncMetrics instance with the given meter provider.
// If provider is nil, it returns nil (no-op metrics).
func NewSyncMetrics(provider metric.MeterProvider) (*SyncMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(SyncMetricsMeterName)

	syncDuration, err := meter.Float64Histogram(
		"ff_lineup_sync_duration_seconds",
		metric.WithDescription("Duration of lineup sync operations in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300),
	)
	if err != nil {
		return nil, err
	}

	return &SyncMetrics{
		syncDuration: syncDuration,
	}, nil
}

// RecordSyncDuration records the duration of a sync operation for a festival
func (m *SyncMetrics) RecordSyncDuration(ctx context.Context, festivalName string, duration time.Duration, success bool) {
	if m == nil || m.syncDuration == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("festival", festivalName),
		attribute.Bool("success", success),
	}

	m.syncDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}
