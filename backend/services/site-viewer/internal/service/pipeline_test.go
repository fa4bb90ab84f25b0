package service

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"siteviewer/backend/services/site-viewer/internal/models"
)

type fakeMetadata struct {
	rows   []models.SiteMetadata
	gagers []string
	err    error
}

func (f *fakeMetadata) FetchMetadata(ctx context.Context) ([]models.SiteMetadata, []string, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.rows, f.gagers, nil
}

type fakeTelemetry struct {
	rows []models.TelemetryReading
	err  error
	asOf time.Time
}

func (f *fakeTelemetry) FetchTelemetry(ctx context.Context, asOf time.Time) ([]models.TelemetryReading, models.Window, error) {
	f.asOf = asOf
	window := models.TelemetryWindow(asOf, time.UTC)
	if f.err != nil {
		return nil, window, f.err
	}
	return f.rows, window, nil
}

var testAsOf = time.Date(2025, 3, 2, 8, 0, 0, 0, time.UTC)

func TestPipelineSingleSite(t *testing.T) {
	metadata := &fakeMetadata{
		rows:   []models.SiteMetadata{{Site: "A", Gager: "North", Latitude: "47.0", Longitude: "-122.0"}},
		gagers: []string{"North"},
	}
	telemetry := &fakeTelemetry{rows: []models.TelemetryReading{{Site: "A", BatteryVolts: "11.0"}}}

	snap, err := NewPipeline(metadata, telemetry, DedupNone, nil).Run(context.Background(), testAsOf)
	require.NoError(t, err)
	require.Len(t, snap.Sites, 1)
	require.Equal(t, models.CategoryCritical, snap.Sites[0].ColorCategory)
	require.Equal(t, 47.0, snap.Sites[0].Latitude)
	require.Equal(t, -122.0, snap.Sites[0].Longitude)
	require.Equal(t, []string{"North"}, snap.Gagers)
	require.Equal(t, testAsOf, snap.GeneratedAt)
	require.Equal(t, testAsOf, telemetry.asOf)
	require.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), snap.Window.From)
	require.Nil(t, snap.Stats.Dropped)
}

func TestPipelineKeepsDuplicateReadings(t *testing.T) {
	metadata := &fakeMetadata{rows: []models.SiteMetadata{{Site: "A", Latitude: "47.0", Longitude: "-122.0"}}}
	telemetry := &fakeTelemetry{rows: []models.TelemetryReading{
		{Site: "A", DateTime: testAsOf.Add(-20 * time.Hour), BatteryVolts: "12.1"},
		{Site: "A", DateTime: testAsOf.Add(-10 * time.Hour), BatteryVolts: "12.7"},
	}}

	snap, err := NewPipeline(metadata, telemetry, DedupNone, nil).Run(context.Background(), testAsOf)
	require.NoError(t, err)
	require.Len(t, snap.Sites, 2)
	require.Equal(t, 2, snap.Stats.JoinedRows)

	snap, err = NewPipeline(metadata, telemetry, DedupLatest, nil).Run(context.Background(), testAsOf)
	require.NoError(t, err)
	require.Len(t, snap.Sites, 1)
	require.Equal(t, 12.7, snap.Sites[0].BatteryVolts)
	require.Equal(t, models.CategoryFull, snap.Sites[0].ColorCategory)
}

func TestPipelineFetchFailure(t *testing.T) {
	upstream := errors.New("status 401")

	_, err := NewPipeline(
		&fakeMetadata{err: upstream},
		&fakeTelemetry{rows: []models.TelemetryReading{{Site: "A", BatteryVolts: "12"}}},
		DedupNone, nil,
	).Run(context.Background(), testAsOf)
	require.ErrorIs(t, err, upstream)
	require.Contains(t, err.Error(), "fetch metadata")

	_, err = NewPipeline(
		&fakeMetadata{rows: []models.SiteMetadata{{Site: "A", Latitude: "1", Longitude: "2"}}},
		&fakeTelemetry{err: upstream},
		DedupNone, nil,
	).Run(context.Background(), testAsOf)
	require.ErrorIs(t, err, upstream)
	require.Contains(t, err.Error(), "fetch telemetry")
}

func TestBuildSnapshotIsIdempotent(t *testing.T) {
	metadata := []models.SiteMetadata{
		{Site: "A", Latitude: "47.0", Longitude: "-122.0"},
		{Site: "B", Latitude: "47.1", Longitude: "-122.1"},
		{Site: "C", Latitude: "bad", Longitude: "-122.1"},
	}
	readings := []models.TelemetryReading{
		{Site: "B", BatteryVolts: "12.35"},
		{Site: "A", BatteryVolts: "11.7"},
		{Site: "C", BatteryVolts: "12.0"},
		{Site: "A", BatteryVolts: "12.05"},
	}
	window := models.TelemetryWindow(testAsOf, time.UTC)

	first := BuildSnapshot(testAsOf, window, metadata, nil, readings, DedupNone)
	second := BuildSnapshot(testAsOf, window, metadata, nil, readings, DedupNone)

	key := func(s models.BatteryStatus) string { return s.Site + "|" + string(s.ColorCategory) }
	collect := func(snap *models.Snapshot) []string {
		keys := make([]string, 0, len(snap.Sites))
		for _, s := range snap.Sites {
			keys = append(keys, key(s))
		}
		sort.Strings(keys)
		return keys
	}

	require.Equal(t, collect(first), collect(second))
	require.Equal(t, []string{"A|< 12", "A|< 12.3", "B|< 12.5"}, collect(first))
	require.Equal(t, map[string]int{models.DropNonNumeric: 1}, first.Stats.Dropped)
	require.Equal(t, models.Stats{
		MetadataRows:  3,
		TelemetryRows: 4,
		JoinedRows:    4,
		Classified:    3,
		Dropped:       map[string]int{models.DropNonNumeric: 1},
	}, first.Stats)
	require.NotNil(t, first.Gagers)
}
