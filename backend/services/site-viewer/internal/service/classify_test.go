package service

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"siteviewer/backend/services/site-viewer/internal/models"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		volts  float64
		expect models.Category
	}{
		{volts: -3, expect: models.CategoryCritical},
		{volts: 0, expect: models.CategoryCritical},
		{volts: 11.0, expect: models.CategoryCritical},
		{volts: 11.49999, expect: models.CategoryCritical},
		{volts: 11.5, expect: models.CategoryLow},
		{volts: 11.99, expect: models.CategoryLow},
		{volts: 12.0, expect: models.CategoryFair},
		{volts: 12.29, expect: models.CategoryFair},
		{volts: 12.3, expect: models.CategoryGood},
		{volts: 12.49, expect: models.CategoryGood},
		{volts: 12.5, expect: models.CategoryFull},
		{volts: 13.8, expect: models.CategoryFull},
		{volts: math.Inf(1), expect: models.CategoryFull},
		{volts: math.Inf(-1), expect: models.CategoryCritical},
		{volts: math.NaN(), expect: models.CategoryUnknown},
	}

	for _, tc := range tests {
		require.Equal(t, tc.expect, Classify(tc.volts), "volts=%v", tc.volts)
	}
}

func TestClassifyIsMonotonic(t *testing.T) {
	order := map[models.Category]int{}
	for i, c := range models.Categories() {
		order[c] = i
	}
	prev := Classify(5)
	for v := 5.0; v <= 15.0; v += 0.01 {
		cur := Classify(v)
		require.GreaterOrEqual(t, order[cur], order[prev], "volts=%v", v)
		prev = cur
	}
}

func TestParseNumber(t *testing.T) {
	v, err := parseNumber(" 12.75 ")
	require.NoError(t, err)
	require.Equal(t, 12.75, v)

	_, err = parseNumber("")
	require.ErrorIs(t, err, errEmptyValue)

	for _, raw := range []string{"abc", "NaN", "nan", "Inf", "-Infinity", "12,5"} {
		_, err = parseNumber(raw)
		require.ErrorIs(t, err, errNotANumber, raw)
	}
}

func TestClassifyRowsDropsBadRows(t *testing.T) {
	meta := func(site, lat, lon string) models.SiteMetadata {
		return models.SiteMetadata{Site: site, Latitude: lat, Longitude: lon}
	}
	reading := func(site, volts string) models.TelemetryReading {
		return models.TelemetryReading{Site: site, BatteryVolts: volts}
	}

	rows := []models.JoinedRow{
		{Metadata: meta("A", "47.0", "-122.0"), Reading: reading("A", "11.0")},
		{Metadata: meta("B", "north", "-122.0"), Reading: reading("B", "12.0")},
		{Metadata: meta("C", "47.0", ""), Reading: reading("C", "12.0")},
		{Metadata: meta("D", "47.0", "-122.0"), Reading: reading("D", "NaN")},
		{Metadata: meta("E", "47.2", "-122.2"), Reading: reading("E", "12.5")},
	}

	out, dropped := ClassifyRows(rows)
	require.Len(t, out, 2)
	require.Equal(t, map[string]int{models.DropNonNumeric: 2, models.DropMissingField: 1}, dropped)

	require.Equal(t, models.BatteryStatus{
		Site:          "A",
		Latitude:      47.0,
		Longitude:     -122.0,
		BatteryVolts:  11.0,
		ColorCategory: models.CategoryCritical,
	}, out[0])
	require.Equal(t, models.CategoryFull, out[1].ColorCategory)
	for _, row := range out {
		require.NotEqual(t, models.CategoryUnknown, row.ColorCategory)
	}
}
