// Package exporter renders the report's summary tables for presentation:
// CSV files, an Excel workbook, and the map-point artifacts. It is the
// rendering collaborator of the pipeline; no analysis happens here.
package exporter

import (
	"encoding/csv"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"crimelens/internal/aggregate"
	apperrors "crimelens/internal/errors"
)

// CSVWriter writes summary tables as CSV files under a base directory.
type CSVWriter struct {
	baseDir string
	logger  *slog.Logger
}

// NewCSVWriter creates a CSV writer rooted at baseDir.
func NewCSVWriter(baseDir string, logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{baseDir: baseDir, logger: logger}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes data to a CSV file with the given options
func (w *CSVWriter) WriteCSV(name string, options WriteOptions) error {
	fullPath := w.resolvePath(name)

	w.logger.Info("writing CSV file",
		slog.String("path", fullPath),
		slog.Int("record_count", len(options.Records)))

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return apperrors.NewStorageError("failed to create output directory", err).
			WithContext("path", dir)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return apperrors.NewStorageError("failed to create CSV file", err).
			WithContext("path", fullPath)
	}
	defer file.Close()

	// BOM helps Excel recognize UTF-8.
	if options.BOMPrefix {
		if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return apperrors.NewStorageError("failed to write BOM", err)
		}
	}

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return apperrors.NewStorageError("failed to write CSV header", err)
		}
	}

	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return apperrors.NewStorageError("failed to write CSV record", err).
				WithRow(i)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return apperrors.NewStorageError("CSV flush error", err)
	}
	return nil
}

// WriteGroups writes a grouped summary table as (key columns..., Count) rows.
func (w *CSVWriter) WriteGroups(name string, keyHeaders []string, groups []aggregate.Group) error {
	records := make([][]string, len(groups))
	for i, g := range groups {
		records[i] = append(append([]string(nil), g.Key...), strconv.Itoa(g.Count))
	}

	return w.WriteCSV(name, WriteOptions{
		Headers:   append(append([]string(nil), keyHeaders...), "Count"),
		Records:   records,
		BOMPrefix: true,
	})
}

// WriteMatrix writes a dense cross-tab with row labels in the first column
// and one column per column label. Zeros are written out, not left blank.
func (w *CSVWriter) WriteMatrix(name, rowHeader string, m *aggregate.Matrix) error {
	headers := append([]string{rowHeader}, m.ColLabels...)

	records := make([][]string, len(m.RowLabels))
	for i, label := range m.RowLabels {
		row := make([]string, 0, len(m.ColLabels)+1)
		row = append(row, label)
		for _, count := range m.Counts[i] {
			row = append(row, strconv.Itoa(count))
		}
		records[i] = row
	}

	return w.WriteCSV(name, WriteOptions{
		Headers:   headers,
		Records:   records,
		BOMPrefix: true,
	})
}

// resolvePath resolves a file name against the base directory.
func (w *CSVWriter) resolvePath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(w.baseDir, name)
}
