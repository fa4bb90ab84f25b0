package service

import (
	"siteviewer/backend/services/site-viewer/internal/models"
)

// DedupPolicy selects how multiple readings of one site are handled before the join.
type DedupPolicy string

const (
	// DedupNone keeps every reading; a site with n readings yields n rows.
	DedupNone DedupPolicy = "none"
	// DedupLatest keeps only the most recent reading per site.
	DedupLatest DedupPolicy = "latest"
)

// ParseDedupPolicy accepts "", "none" and "latest".
func ParseDedupPolicy(raw string) (DedupPolicy, bool) {
	switch DedupPolicy(raw) {
	case "", DedupNone:
		return DedupNone, true
	case DedupLatest:
		return DedupLatest, true
	default:
		return "", false
	}
}

// Join is an inner equi-join on site. Output follows metadata order, and readings of
// one site keep their input order. Unmatched rows on either side are excluded.
func Join(metadata []models.SiteMetadata, telemetry []models.TelemetryReading) []models.JoinedRow {
	bySite := make(map[string][]int, len(telemetry))
	for i, reading := range telemetry {
		bySite[reading.Site] = append(bySite[reading.Site], i)
	}

	joined := make([]models.JoinedRow, 0, len(telemetry))
	for _, meta := range metadata {
		for _, idx := range bySite[meta.Site] {
			joined = append(joined, models.JoinedRow{Metadata: meta, Reading: telemetry[idx]})
		}
	}
	return joined
}

// LatestPerSite keeps the most recent reading of each site. On equal timestamps the
// later input row wins. Sites keep their order of first appearance.
func LatestPerSite(telemetry []models.TelemetryReading) []models.TelemetryReading {
	pos := make(map[string]int, len(telemetry))
	out := make([]models.TelemetryReading, 0, len(telemetry))
	for _, reading := range telemetry {
		i, ok := pos[reading.Site]
		if !ok {
			pos[reading.Site] = len(out)
			out = append(out, reading)
			continue
		}
		if !reading.DateTime.Before(out[i].DateTime) {
			out[i] = reading
		}
	}
	return out
}
