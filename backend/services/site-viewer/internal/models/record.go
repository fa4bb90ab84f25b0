package models

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Record is one JSON object returned by the open-data API.
type Record map[string]any

// Field returns the scalar value stored under key as text.
// Objects, arrays and null are reported as absent.
func (r Record) Field(key string) (string, bool) {
	raw, ok := r[key]
	if !ok || raw == nil {
		return "", false
	}
	switch v := raw.(type) {
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(v), true
	default:
		return "", false
	}
}

var metadataColumns = map[string]struct{}{
	"site":      {},
	"gager":     {},
	"latitude":  {},
	"longitude": {},
}

// DecodeSiteMetadata converts records into metadata rows.
// Records without a site identifier cannot be joined and are skipped.
func DecodeSiteMetadata(records []Record) ([]SiteMetadata, int) {
	rows := make([]SiteMetadata, 0, len(records))
	skipped := 0
	for _, rec := range records {
		site, ok := rec.Field("site")
		if !ok || strings.TrimSpace(site) == "" {
			skipped++
			continue
		}
		row := SiteMetadata{Site: site}
		row.Gager, _ = rec.Field("gager")
		row.Latitude, _ = rec.Field("latitude")
		row.Longitude, _ = rec.Field("longitude")

		for key := range rec {
			if _, known := metadataColumns[key]; known {
				continue
			}
			if value, ok := rec.Field(key); ok {
				if row.Attributes == nil {
					row.Attributes = make(map[string]string)
				}
				row.Attributes[key] = value
			}
		}
		rows = append(rows, row)
	}
	return rows, skipped
}

// DecodeTelemetry converts records into readings. Records without a site are skipped.
// An unparseable datetime leaves DateTime zero; RawDateTime keeps the upstream text.
func DecodeTelemetry(records []Record, loc *time.Location) ([]TelemetryReading, int) {
	rows := make([]TelemetryReading, 0, len(records))
	skipped := 0
	for _, rec := range records {
		site, ok := rec.Field("site")
		if !ok || strings.TrimSpace(site) == "" {
			skipped++
			continue
		}
		reading := TelemetryReading{Site: site}
		reading.BatteryVolts, _ = rec.Field("battery_volts")
		if raw, ok := rec.Field("datetime"); ok {
			reading.RawDateTime = raw
			if ts, err := ParseTimestamp(raw, loc); err == nil {
				reading.DateTime = ts
			}
		}
		rows = append(rows, reading)
	}
	return rows, skipped
}

// Floating timestamps carry no zone; fractional seconds are accepted by time.Parse
// even when the layout omits them.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses the upstream datetime formats. Zone-less values are read in loc.
func ParseTimestamp(raw string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	raw = strings.TrimSpace(raw)
	var lastErr error
	for _, layout := range timestampLayouts {
		ts, err := time.ParseInLocation(layout, raw, loc)
		if err == nil {
			return ts, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
