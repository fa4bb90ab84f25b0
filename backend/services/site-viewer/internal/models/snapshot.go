package models

import "time"

// Drop reasons recorded in Stats.Dropped.
const (
	DropMissingField = "missing_field"
	DropNonNumeric   = "non_numeric"
)

// Stats summarises how a snapshot was produced.
type Stats struct {
	MetadataRows  int            `json:"metadata_rows"`
	TelemetryRows int            `json:"telemetry_rows"`
	JoinedRows    int            `json:"joined_rows"`
	Classified    int            `json:"classified"`
	Dropped       map[string]int `json:"dropped,omitempty"`
}

// Snapshot is the result of one successful refresh.
type Snapshot struct {
	GeneratedAt time.Time       `json:"generated_at"`
	Window      Window          `json:"window"`
	Sites       []BatteryStatus `json:"sites"`
	Gagers      []string        `json:"gagers"`
	Stats       Stats           `json:"stats"`
}

// CountByCategory returns the number of rows per category. Every category is present.
func (s *Snapshot) CountByCategory() map[Category]int {
	counts := make(map[Category]int, len(Categories()))
	for _, c := range Categories() {
		counts[c] = 0
	}
	if s == nil {
		return counts
	}
	for _, site := range s.Sites {
		counts[site.ColorCategory]++
	}
	return counts
}
