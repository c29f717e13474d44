package dataset

import (
	"log/slog"
	"strings"

	apperrors "crimelens/internal/errors"
)

// Project restricts the table to exactly the named columns, in the given
// order, then drops every row with a missing value in any retained column.
// A value is missing when it is empty after trimming spaces.
//
// The input table is not mutated; the surviving rows keep their relative
// order. Projecting the output with the same columns is a no-op, which the
// tests rely on.
func Project(t *Table, columns []string, logger *slog.Logger) (*Table, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(columns) == 0 {
		return nil, apperrors.NewConfigError("projection requires at least one column", nil)
	}

	indices := make([]int, len(columns))
	for i, name := range columns {
		idx := t.ColumnIndex(name)
		if idx < 0 {
			return nil, apperrors.NewConfigError("projection references an unknown column", nil).
				WithContext("column", name)
		}
		indices[i] = idx
	}

	out := &Table{Columns: append([]string(nil), columns...)}

	dropped := 0
	for _, row := range t.Rows {
		projected := make([]string, len(indices))
		complete := true
		for i, idx := range indices {
			value := row[idx]
			if strings.TrimSpace(value) == "" {
				complete = false
				break
			}
			projected[i] = value
		}
		if !complete {
			dropped++
			continue
		}
		out.Rows = append(out.Rows, projected)
	}

	logger.Info("projected and cleaned table",
		slog.Int("columns", len(out.Columns)),
		slog.Int("rows_in", t.NumRows()),
		slog.Int("rows_out", out.NumRows()),
		slog.Int("rows_dropped", dropped))

	return out, nil
}
