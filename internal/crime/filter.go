package crime

import (
	"log/slog"

	apperrors "crimelens/internal/errors"
)

// FilterYears keeps only records whose derived year falls in the inclusive
// admissible set. The input slice is not mutated and surviving records keep
// their relative order.
func FilterYears(records []Record, years []int, logger *slog.Logger) ([]Record, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(years) == 0 {
		return nil, apperrors.NewConfigError("admissible year set is empty", nil)
	}

	admissible := make(map[int]struct{}, len(years))
	for _, y := range years {
		admissible[y] = struct{}{}
	}

	out := make([]Record, 0, len(records))
	for _, record := range records {
		if _, ok := admissible[record.Year]; ok {
			out = append(out, record)
		}
	}

	logger.Info("filtered records by year",
		slog.Int("rows_in", len(records)),
		slog.Int("rows_out", len(out)),
		slog.Int("admissible_years", len(years)))

	return out, nil
}
