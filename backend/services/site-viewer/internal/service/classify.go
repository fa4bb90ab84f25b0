package service

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"siteviewer/backend/services/site-viewer/internal/models"
)

// Voltage thresholds; each starts the interval of the next category.
const (
	criticalBelow = 11.5
	lowBelow      = 12.0
	fairBelow     = 12.3
	goodBelow     = 12.5
)

var (
	errEmptyValue = errors.New("empty value")
	errNotANumber = errors.New("not a finite number")
)

// Classify maps a battery voltage to its colour category.
// NaN is the only input that yields CategoryUnknown.
func Classify(volts float64) models.Category {
	switch {
	case math.IsNaN(volts):
		return models.CategoryUnknown
	case volts < criticalBelow:
		return models.CategoryCritical
	case volts < lowBelow:
		return models.CategoryLow
	case volts < fairBelow:
		return models.CategoryFair
	case volts < goodBelow:
		return models.CategoryGood
	default:
		return models.CategoryFull
	}
}

// parseNumber converts upstream text to a finite float.
func parseNumber(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, errEmptyValue
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errNotANumber
	}
	return v, nil
}

func dropReason(err error) string {
	if errors.Is(err, errEmptyValue) {
		return models.DropMissingField
	}
	return models.DropNonNumeric
}

// ClassifyRows coerces and classifies joined rows. Rows whose coordinates or voltage
// are missing or not numeric are dropped and counted by reason.
func ClassifyRows(rows []models.JoinedRow) ([]models.BatteryStatus, map[string]int) {
	out := make([]models.BatteryStatus, 0, len(rows))
	dropped := make(map[string]int)

	for _, row := range rows {
		lat, err := parseNumber(row.Metadata.Latitude)
		if err != nil {
			dropped[dropReason(err)]++
			continue
		}
		lon, err := parseNumber(row.Metadata.Longitude)
		if err != nil {
			dropped[dropReason(err)]++
			continue
		}
		volts, err := parseNumber(row.Reading.BatteryVolts)
		if err != nil {
			dropped[dropReason(err)]++
			continue
		}

		out = append(out, models.BatteryStatus{
			Site:          row.Metadata.Site,
			Gager:         row.Metadata.Gager,
			Latitude:      lat,
			Longitude:     lon,
			RecordedAt:    row.Reading.DateTime,
			BatteryVolts:  volts,
			ColorCategory: Classify(volts),
		})
	}
	return out, dropped
}
