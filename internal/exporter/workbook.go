package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"crimelens/internal/aggregate"
	apperrors "crimelens/internal/errors"
	"crimelens/internal/report"
)

// WorkbookWriter renders a report into one Excel workbook, one sheet per
// summary table plus the weekday-by-hour matrix laid out as a grid.
type WorkbookWriter struct {
	logger *slog.Logger
}

// NewWorkbookWriter creates a workbook writer.
func NewWorkbookWriter(logger *slog.Logger) *WorkbookWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkbookWriter{logger: logger}
}

// Write renders the report to an xlsx file at path.
func (w *WorkbookWriter) Write(path string, rpt *report.Report) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.NewStorageError("failed to create workbook directory", err).
			WithContext("path", filepath.Dir(path))
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return apperrors.NewStorageError("failed to create workbook style", err)
	}

	type groupSheet struct {
		name      string
		keyHeader string
		groups    []aggregate.Group
	}
	sheets := []groupSheet{
		{"By Type", "Primary Type", rpt.ByType},
		{"By Year", "Year", rpt.ByYear},
		{"Top Locations", "Location Description", rpt.TopLocations},
		{"Top Blocks", "Block", rpt.TopBlocks},
		{"By District", "District", rpt.ByDistrict},
		{"Homicide By Year", "Year", rpt.HomicideByYear},
		{"Homicide Top Blocks", "Block", rpt.HomicideTopBlocks},
	}

	for i, sheet := range sheets {
		if i == 0 {
			// Reuse the default sheet for the first table.
			if err := f.SetSheetName(f.GetSheetName(0), sheet.name); err != nil {
				return apperrors.NewStorageError("failed to rename sheet", err)
			}
		} else {
			if _, err := f.NewSheet(sheet.name); err != nil {
				return apperrors.NewStorageError("failed to add sheet", err).
					WithContext("sheet", sheet.name)
			}
		}
		if err := w.writeGroupSheet(f, sheet.name, sheet.keyHeader, sheet.groups, headerStyle); err != nil {
			return err
		}
	}

	if err := w.writeArrestSheet(f, rpt.ArrestsByYear, headerStyle); err != nil {
		return err
	}

	if err := w.writeMatrixSheet(f, "Weekday Hour", "Weekday", rpt.WeekdayHour, headerStyle); err != nil {
		return err
	}
	if err := w.writeMatrixSheet(f, "Year Month", "Year", rpt.ByYearMonth, headerStyle); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return apperrors.NewStorageError("failed to save workbook", err).
			WithContext("path", path)
	}

	w.logger.Info("wrote report workbook",
		slog.String("path", path),
		slog.Int("sheets", len(sheets)+3))

	return nil
}

func (w *WorkbookWriter) writeGroupSheet(f *excelize.File, sheet, keyHeader string, groups []aggregate.Group, headerStyle int) error {
	if err := setRow(f, sheet, 1, []interface{}{keyHeader, "Count"}); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", "B1", headerStyle); err != nil {
		return apperrors.NewStorageError("failed to style sheet header", err).
			WithContext("sheet", sheet)
	}

	for i, g := range groups {
		values := make([]interface{}, 0, len(g.Key)+1)
		for _, k := range g.Key {
			values = append(values, k)
		}
		values = append(values, g.Count)
		if err := setRow(f, sheet, i+2, values); err != nil {
			return err
		}
	}
	return nil
}

func (w *WorkbookWriter) writeArrestSheet(f *excelize.File, shares []report.YearArrestShare, headerStyle int) error {
	const sheet = "Arrests By Year"
	if _, err := f.NewSheet(sheet); err != nil {
		return apperrors.NewStorageError("failed to add sheet", err).
			WithContext("sheet", sheet)
	}

	if err := setRow(f, sheet, 1, []interface{}{"Year", "Records", "Arrests", "Arrest Share"}); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", "D1", headerStyle); err != nil {
		return apperrors.NewStorageError("failed to style sheet header", err).
			WithContext("sheet", sheet)
	}

	for i, s := range shares {
		if err := setRow(f, sheet, i+2, []interface{}{s.Year, s.Total, s.Arrests, s.Share}); err != nil {
			return err
		}
	}
	return nil
}

func (w *WorkbookWriter) writeMatrixSheet(f *excelize.File, sheet, rowHeader string, m *aggregate.Matrix, headerStyle int) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return apperrors.NewStorageError("failed to add sheet", err).
			WithContext("sheet", sheet)
	}

	header := make([]interface{}, 0, len(m.ColLabels)+1)
	header = append(header, rowHeader)
	for _, label := range m.ColLabels {
		header = append(header, label)
	}
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}

	lastCol, err := excelize.ColumnNumberToName(len(m.ColLabels) + 1)
	if err != nil {
		return apperrors.NewStorageError("failed to compute sheet range", err)
	}
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", headerStyle); err != nil {
		return apperrors.NewStorageError("failed to style sheet header", err).
			WithContext("sheet", sheet)
	}

	for i, label := range m.RowLabels {
		row := make([]interface{}, 0, len(m.ColLabels)+1)
		row = append(row, label)
		for _, count := range m.Counts[i] {
			row = append(row, count)
		}
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, rowNumber int, values []interface{}) error {
	cell := fmt.Sprintf("A%d", rowNumber)
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return apperrors.NewStorageError("failed to write sheet row", err).
			WithContext("sheet", sheet).
			WithContext("cell", cell)
	}
	return nil
}
