package output

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"gmapscrape/internal/business"
)

const (
	businessSheet = "Businesses"
	summarySheet  = "Summary"
	colWidth      = 24
)

// WriteXLSX 写出工作簿：一张表存记录，另一张存报告
func WriteXLSX(path string, records []business.Record, rep business.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), businessSheet); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	cols := business.Columns(records)
	header := make([]interface{}, len(cols))
	for i, c := range cols {
		header[i] = string(c)
	}
	if err := f.SetSheetRow(businessSheet, "A1", &header); err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(cols), 1)
	if err := f.SetCellStyle(businessSheet, "A1", last, bold); err != nil {
		return err
	}
	for r := range records {
		for c, v := range records[r].Row(cols) {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(businessSheet, cell, v); err != nil {
				return err
			}
		}
	}
	lastCol, _ := excelize.ColumnNumberToName(len(cols))
	if err := f.SetColWidth(businessSheet, "A", lastCol, colWidth); err != nil {
		return err
	}
	if err := f.SetPanes(businessSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}

	if err := writeSummary(f, rep, bold); err != nil {
		return err
	}
	return f.SaveAs(path)
}

func writeSummary(f *excelize.File, rep business.Report, bold int) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return err
	}
	rows := [][]interface{}{
		{"metric", "value"},
		{"run_id", rep.RunID},
		{"total_businesses", rep.TotalBusinesses},
		{"businesses_with_rating", rep.BusinessesWithRating},
		{"businesses_with_phone", rep.BusinessesWithPhone},
		{"businesses_with_website", rep.BusinessesWithWebsite},
		{"businesses_with_hours", rep.BusinessesWithHours},
		{"average_rating", fmt.Sprintf("%.2f", rep.AverageRating)},
	}
	for stars := 5; stars >= 1; stars-- {
		key := strconv.Itoa(stars)
		rows = append(rows, []interface{}{"rating_" + key, rep.RatingDistribution[key]})
	}
	rows = append(rows, []interface{}{}, []interface{}{"category", "count"})
	for _, c := range rep.Categories {
		rows = append(rows, []interface{}{c.Category, c.Count})
	}

	for i := range rows {
		if len(rows[i]) == 0 {
			continue
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(summarySheet, cell, &rows[i]); err != nil {
			return err
		}
		if rows[i][0] == "metric" || rows[i][0] == "category" {
			end, _ := excelize.CoordinatesToCellName(2, i+1)
			if err := f.SetCellStyle(summarySheet, cell, end, bold); err != nil {
				return err
			}
		}
	}
	return f.SetColWidth(summarySheet, "A", "B", colWidth)
}
