package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"siteviewer/backend/services/site-viewer/internal/models"
)

// MetadataSource provides site metadata rows and gager labels.
type MetadataSource interface {
	FetchMetadata(ctx context.Context) ([]models.SiteMetadata, []string, error)
}

// TelemetrySource provides the readings of the window ending at asOf.
type TelemetrySource interface {
	FetchTelemetry(ctx context.Context, asOf time.Time) ([]models.TelemetryReading, models.Window, error)
}

// Pipeline fetches both datasets and turns them into a classified snapshot.
type Pipeline struct {
	metadata  MetadataSource
	telemetry TelemetrySource
	dedup     DedupPolicy
	logger    *zap.Logger
}

// NewPipeline returns pipeline instance.
func NewPipeline(metadata MetadataSource, telemetry TelemetrySource, dedup DedupPolicy, logger *zap.Logger) *Pipeline {
	if dedup == "" {
		dedup = DedupNone
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		metadata:  metadata,
		telemetry: telemetry,
		dedup:     dedup,
		logger:    logger,
	}
}

// Run fetches metadata and telemetry concurrently and waits for both.
// A failure of either fetch fails the run; no partial snapshot is produced.
func (p *Pipeline) Run(ctx context.Context, asOf time.Time) (*models.Snapshot, error) {
	var (
		metadata []models.SiteMetadata
		gagers   []string
		readings []models.TelemetryReading
		window   models.Window
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		metadata, gagers, err = p.metadata.FetchMetadata(gctx)
		if err != nil {
			return fmt.Errorf("fetch metadata: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		readings, window, err = p.telemetry.FetchTelemetry(gctx, asOf)
		if err != nil {
			return fmt.Errorf("fetch telemetry: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	snapshot := BuildSnapshot(asOf, window, metadata, gagers, readings, p.dedup)
	p.logger.Info("battery status built",
		zap.Time("window_from", window.From),
		zap.Time("window_to", window.To),
		zap.Int("metadata_rows", snapshot.Stats.MetadataRows),
		zap.Int("telemetry_rows", snapshot.Stats.TelemetryRows),
		zap.Int("joined_rows", snapshot.Stats.JoinedRows),
		zap.Int("classified", snapshot.Stats.Classified),
		zap.Any("dropped", snapshot.Stats.Dropped),
	)
	return snapshot, nil
}

// BuildSnapshot joins and classifies already fetched rows. It is deterministic in its inputs.
func BuildSnapshot(
	generatedAt time.Time,
	window models.Window,
	metadata []models.SiteMetadata,
	gagers []string,
	readings []models.TelemetryReading,
	dedup DedupPolicy,
) *models.Snapshot {
	if dedup == DedupLatest {
		readings = LatestPerSite(readings)
	}

	joined := Join(metadata, readings)
	sites, dropped := ClassifyRows(joined)
	if len(dropped) == 0 {
		dropped = nil
	}
	if gagers == nil {
		gagers = []string{}
	}

	return &models.Snapshot{
		GeneratedAt: generatedAt,
		Window:      window,
		Sites:       sites,
		Gagers:      gagers,
		Stats: models.Stats{
			MetadataRows:  len(metadata),
			TelemetryRows: len(readings),
			JoinedRows:    len(joined),
			Classified:    len(sites),
			Dropped:       dropped,
		},
	}
}
