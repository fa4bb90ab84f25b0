package models

import (
	"time"
)

// SiteMetadata is one row of the site metadata dataset.
// Coordinates are kept as the upstream text until the pipeline coerces them.
type SiteMetadata struct {
	Site       string            `json:"site"`
	Gager      string            `json:"gager"`
	Latitude   string            `json:"latitude"`
	Longitude  string            `json:"longitude"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// TelemetryReading is one battery reading from the telemetry dataset.
type TelemetryReading struct {
	Site         string    `json:"site"`
	DateTime     time.Time `json:"datetime"`
	RawDateTime  string    `json:"-"`
	BatteryVolts string    `json:"battery_volts"`
}

// JoinedRow pairs a metadata row with one of its readings.
type JoinedRow struct {
	Metadata SiteMetadata
	Reading  TelemetryReading
}

// BatteryStatus is a joined row after coercion and classification.
type BatteryStatus struct {
	Site          string    `json:"site"`
	Gager         string    `json:"gager,omitempty"`
	Latitude      float64   `json:"latitude"`
	Longitude     float64   `json:"longitude"`
	RecordedAt    time.Time `json:"datetime"`
	BatteryVolts  float64   `json:"battery_volts"`
	ColorCategory Category  `json:"color_category"`
}

// GagerSet returns distinct non-empty gager labels in order of first appearance.
func GagerSet(rows []SiteMetadata) []string {
	seen := make(map[string]struct{}, len(rows))
	gagers := make([]string, 0)
	for _, row := range rows {
		if row.Gager == "" {
			continue
		}
		if _, ok := seen[row.Gager]; ok {
			continue
		}
		seen[row.Gager] = struct{}{}
		gagers = append(gagers, row.Gager)
	}
	return gagers
}
