package dataset

import (
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"

	apperrors "crimelens/internal/errors"
)

// Load reads a CSV file with a header row into a Table. Values stay raw
// strings; no type coercion happens here. Row order is preserved.
//
// A missing or unreadable file yields an IOError. An empty or duplicated
// header, or a row whose field count disagrees with the header, yields a
// FormatError carrying the offending row index.
func Load(path string, logger *slog.Logger) (*Table, error) {
	if logger == nil {
		logger = slog.Default()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewIOError("cannot open input file", err).
			WithContext("path", path)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	// Field-count checking is done here so the error carries our row index.
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, apperrors.NewFormatError("input file has no header row", nil).
			WithContext("path", path)
	}
	if err != nil {
		return nil, apperrors.NewFormatError("cannot read header row", err).
			WithContext("path", path)
	}

	if err := validateHeader(header); err != nil {
		return nil, err
	}

	table := &Table{Columns: header}

	for rowIndex := 0; ; rowIndex++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				return nil, apperrors.NewFormatError("malformed CSV row", err).
					WithRow(rowIndex)
			}
			return nil, apperrors.NewIOError("error reading input file", err).
				WithContext("path", path)
		}
		if len(row) != len(header) {
			return nil, apperrors.NewFormatError("row field count disagrees with header", nil).
				WithRow(rowIndex).
				WithContext("expected", len(header)).
				WithContext("got", len(row))
		}
		table.Rows = append(table.Rows, row)
	}

	logger.Info("loaded input file",
		slog.String("path", path),
		slog.Int("columns", len(table.Columns)),
		slog.Int("rows", table.NumRows()))

	return table, nil
}

// validateHeader rejects empty and duplicated column names.
func validateHeader(header []string) error {
	seen := make(map[string]int, len(header))
	for i, name := range header {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			return apperrors.NewFormatError("header contains an empty column name", nil).
				WithContext("column_index", i)
		}
		if prev, dup := seen[trimmed]; dup {
			return apperrors.NewFormatError("header contains a duplicate column name", nil).
				WithContext("column", trimmed).
				WithContext("first_index", prev).
				WithContext("duplicate_index", i)
		}
		seen[trimmed] = i
	}
	return nil
}
