package presenter

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"

	"siteviewer/backend/services/site-viewer/internal/models"
)

const (
	summarySheet = "summary"
	sitesSheet   = "sites"
)

// BuildXLSX renders a snapshot as a workbook with a summary and one row per classified reading.
func BuildXLSX(snapshot *models.Snapshot) ([]byte, error) {
	if snapshot == nil {
		return nil, errors.New("presenter: nil snapshot")
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(sitesSheet); err != nil {
		return nil, err
	}

	_ = f.SetCellValue(summarySheet, "A1", "Battery Voltage Status of Sites")
	_ = f.SetCellValue(summarySheet, "A3", "Generated")
	_ = f.SetCellValue(summarySheet, "B3", snapshot.GeneratedAt.Format(time.RFC3339))
	_ = f.SetCellValue(summarySheet, "A4", "Window from")
	_ = f.SetCellValue(summarySheet, "B4", snapshot.Window.From.Format("2006-01-02"))
	_ = f.SetCellValue(summarySheet, "A5", "Window to")
	_ = f.SetCellValue(summarySheet, "B5", snapshot.Window.To.Format("2006-01-02"))
	_ = f.SetCellValue(summarySheet, "A6", "Rows")
	_ = f.SetCellValue(summarySheet, "B6", len(snapshot.Sites))

	row := 8
	_ = f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), "Category")
	_ = f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), "Rows")
	counts := snapshot.CountByCategory()
	for _, category := range models.Categories() {
		row++
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), category.String())
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), counts[category])
	}

	if len(snapshot.Stats.Dropped) > 0 {
		row += 2
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), "Dropped")
		reasons := make([]string, 0, len(snapshot.Stats.Dropped))
		for reason := range snapshot.Stats.Dropped {
			reasons = append(reasons, reason)
		}
		sort.Strings(reasons)
		for _, reason := range reasons {
			row++
			_ = f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), reason)
			_ = f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), snapshot.Stats.Dropped[reason])
		}
	}

	headers := []string{"Site", "Gager", "Latitude", "Longitude", "Datetime", "Battery Volts", "Category"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sitesSheet, cell, h)
	}
	for i, site := range snapshot.Sites {
		r := i + 2
		recorded := ""
		if !site.RecordedAt.IsZero() {
			recorded = site.RecordedAt.Format("2006-01-02 15:04:05")
		}
		values := []interface{}{
			site.Site,
			site.Gager,
			site.Latitude,
			site.Longitude,
			recorded,
			site.BatteryVolts,
			site.ColorCategory.String(),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, r)
			_ = f.SetCellValue(sitesSheet, cell, v)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
