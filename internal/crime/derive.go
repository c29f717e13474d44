package crime

import (
	"log/slog"
	"strconv"
	"time"

	"crimelens/internal/config"
	"crimelens/internal/dataset"
	apperrors "crimelens/internal/errors"
)

// timestampLayout matches the source's MM/DD/YYYY hh:mm:ss AM|PM strings.
// time.Parse handles the 12-hour clock directly: 12:00:00 AM parses to hour 0
// and 12:00:00 PM to hour 12.
const timestampLayout = "01/02/2006 03:04:05 PM"

// Derive turns a projected table into typed records, parsing the raw
// timestamp into the calendar and clock fields every downstream summary uses.
// Each row is converted independently.
//
// The policy decides what a malformed field means: ParsePolicyFail aborts
// with a ParseError carrying the row index and raw value, ParsePolicyDrop
// removes the row and reports the dropped count in the log. Arrest literals
// other than "True"/"False" and non-numeric coordinates follow the same
// policy.
func Derive(t *dataset.Table, policy config.ParsePolicy, logger *slog.Logger) ([]Record, error) {
	if logger == nil {
		logger = slog.Default()
	}

	indices := make(map[string]int, len(t.Columns))
	for _, name := range RequiredColumns() {
		idx := t.ColumnIndex(name)
		if idx < 0 {
			return nil, apperrors.NewConfigError("table is missing a required column", nil).
				WithContext("column", name)
		}
		indices[name] = idx
	}

	records := make([]Record, 0, t.NumRows())
	dropped := 0

	for rowIndex, row := range t.Rows {
		record, err := deriveRow(row, indices)
		if err != nil {
			if policy == config.ParsePolicyDrop {
				dropped++
				logger.Debug("dropped unparseable row",
					slog.Int("row", rowIndex),
					slog.String("reason", err.Error()))
				continue
			}
			if appErr, ok := err.(*apperrors.AppError); ok {
				return nil, appErr.WithRow(rowIndex)
			}
			return nil, err
		}
		records = append(records, record)
	}

	logger.Info("derived temporal features",
		slog.Int("rows_in", t.NumRows()),
		slog.Int("rows_out", len(records)),
		slog.Int("rows_dropped", dropped),
		slog.String("parse_policy", string(policy)))

	return records, nil
}

// deriveRow converts one table row. Errors carry the raw value but not the
// row index; Derive attaches that.
func deriveRow(row []string, indices map[string]int) (Record, error) {
	rawTimestamp := row[indices[ColDate]]
	ts, err := time.Parse(timestampLayout, rawTimestamp)
	if err != nil {
		return Record{}, apperrors.NewParseError("timestamp does not match expected pattern", err).
			WithContext("raw_value", rawTimestamp)
	}

	arrest, err := parseArrest(row[indices[ColArrest]])
	if err != nil {
		return Record{}, err
	}

	latitude, err := parseCoordinate(row[indices[ColLatitude]], ColLatitude)
	if err != nil {
		return Record{}, err
	}
	longitude, err := parseCoordinate(row[indices[ColLongitude]], ColLongitude)
	if err != nil {
		return Record{}, err
	}

	year, month, day := ts.Date()

	return Record{
		CaseNumber:          row[indices[ColCaseNumber]],
		Block:               row[indices[ColBlock]],
		PrimaryType:         row[indices[ColPrimaryType]],
		Description:         row[indices[ColDescription]],
		LocationDescription: row[indices[ColLocationDescription]],
		Arrest:              arrest,
		District:            row[indices[ColDistrict]],
		Latitude:            latitude,
		Longitude:           longitude,
		Timestamp:           ts,
		EventDate:           time.Date(year, month, day, 0, 0, 0, 0, time.UTC),
		Weekday:             ts.Weekday().String(),
		HourOfDay:           ts.Hour(),
		Day:                 day,
		Month:               int(month),
		Year:                year,
	}, nil
}

// parseArrest accepts only the source's literal "True"/"False" strings.
func parseArrest(raw string) (bool, error) {
	switch raw {
	case "True":
		return true, nil
	case "False":
		return false, nil
	default:
		return false, apperrors.NewParseError("arrest flag is not a True/False literal", nil).
			WithContext("raw_value", raw)
	}
}

func parseCoordinate(raw, column string) (float64, error) {
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, apperrors.NewParseError("coordinate is not numeric", err).
			WithContext("column", column).
			WithContext("raw_value", raw)
	}
	return value, nil
}
