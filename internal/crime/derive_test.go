package crime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crimelens/internal/config"
	"crimelens/internal/dataset"
	apperrors "crimelens/internal/errors"
)

// row builds a full source row; only the fields a test cares about are passed.
func row(caseNumber, date, primaryType, arrest string) []string {
	return []string{
		caseNumber,
		date,
		"001XX N STATE ST",
		primaryType,
		"SIMPLE",
		"STREET",
		arrest,
		"6",
		"41.8781",
		"-87.6298",
	}
}

func testTable(rows ...[]string) *dataset.Table {
	return &dataset.Table{
		Columns: RequiredColumns(),
		Rows:    rows,
	}
}

func TestDerive(t *testing.T) {
	table := testTable(row("HZ1", "01/05/2013 11:40:00 PM", "THEFT", "True"))

	records, err := Derive(table, config.ParsePolicyFail, nil)
	require.NoError(t, err)
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, "HZ1", r.CaseNumber)
	assert.Equal(t, "THEFT", r.PrimaryType)
	assert.True(t, r.Arrest)
	assert.InDelta(t, 41.8781, r.Latitude, 1e-9)
	assert.InDelta(t, -87.6298, r.Longitude, 1e-9)

	assert.Equal(t, time.Date(2013, 1, 5, 0, 0, 0, 0, time.UTC), r.EventDate)
	assert.Equal(t, 23, r.HourOfDay)
	assert.Equal(t, 2013, r.Year)
	assert.Equal(t, 1, r.Month)
	assert.Equal(t, 5, r.Day)
	assert.Equal(t, "Saturday", r.Weekday)
}

func TestDerive_TwelveHourClock(t *testing.T) {
	tests := []struct {
		raw      string
		wantHour int
	}{
		{"01/05/2013 12:00:00 AM", 0},
		{"01/05/2013 12:00:00 PM", 12},
		{"01/05/2013 01:00:00 AM", 1},
		{"01/05/2013 01:00:00 PM", 13},
		{"01/05/2013 11:59:59 PM", 23},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			records, err := Derive(testTable(row("HZ1", tt.raw, "THEFT", "False")), config.ParsePolicyFail, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.wantHour, records[0].HourOfDay)
		})
	}
}

func TestDerive_FieldTotality(t *testing.T) {
	table := testTable(
		row("HZ1", "01/05/2013 11:40:00 PM", "THEFT", "True"),
		row("HZ2", "06/30/2014 12:15:00 AM", "BATTERY", "False"),
		row("HZ3", "12/25/2016 06:05:00 PM", "HOMICIDE", "True"),
	)

	records, err := Derive(table, config.ParsePolicyFail, nil)
	require.NoError(t, err)

	names := make(map[string]struct{})
	for _, w := range Weekdays() {
		names[w] = struct{}{}
	}

	for _, r := range records {
		assert.GreaterOrEqual(t, r.HourOfDay, 0)
		assert.LessOrEqual(t, r.HourOfDay, 23)
		assert.GreaterOrEqual(t, r.Month, 1)
		assert.LessOrEqual(t, r.Month, 12)
		assert.Contains(t, names, r.Weekday)
		assert.False(t, r.EventDate.IsZero())
	}
}

func TestDerive_MalformedTimestampFailPolicy(t *testing.T) {
	table := testTable(
		row("HZ1", "01/05/2013 11:40:00 PM", "THEFT", "True"),
		row("HZ2", "2013-01-05 23:40:00", "THEFT", "True"),
	)

	_, err := Derive(table, config.ParsePolicyFail, nil)
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrTypeParse, appErr.Type)
	assert.Equal(t, 1, appErr.Context["row"])
	assert.Equal(t, "2013-01-05 23:40:00", appErr.Context["raw_value"])
}

func TestDerive_MalformedTimestampDropPolicy(t *testing.T) {
	table := testTable(
		row("HZ1", "01/05/2013 11:40:00 PM", "THEFT", "True"),
		row("HZ2", "not a timestamp", "THEFT", "True"),
		row("HZ3", "03/01/2015 02:00:00 PM", "BATTERY", "False"),
	)

	records, err := Derive(table, config.ParsePolicyDrop, nil)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "HZ1", records[0].CaseNumber)
	assert.Equal(t, "HZ3", records[1].CaseNumber)
}

func TestDerive_BadArrestLiteral(t *testing.T) {
	table := testTable(row("HZ1", "01/05/2013 11:40:00 PM", "THEFT", "true"))

	_, err := Derive(table, config.ParsePolicyFail, nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrTypeParse, apperrors.TypeOf(err))
}

func TestDerive_BadCoordinate(t *testing.T) {
	bad := row("HZ1", "01/05/2013 11:40:00 PM", "THEFT", "True")
	bad[8] = "n/a"

	_, err := Derive(testTable(bad), config.ParsePolicyFail, nil)
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrTypeParse, appErr.Type)
	assert.Equal(t, ColLatitude, appErr.Context["column"])
}

func TestDerive_MissingColumn(t *testing.T) {
	table := &dataset.Table{
		Columns: []string{"Case Number", "Date"},
		Rows:    [][]string{{"HZ1", "01/05/2013 11:40:00 PM"}},
	}

	_, err := Derive(table, config.ParsePolicyFail, nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrTypeConfig, apperrors.TypeOf(err))
}
