package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crimelens/internal/aggregate"
	"crimelens/internal/config"
	apperrors "crimelens/internal/errors"
)

const fixtureHeader = "ID,Case Number,Date,Block,Primary Type,Description,Location Description,Arrest,District,Latitude,Longitude"

func fixtureRow(id int, caseNumber, date, block, primaryType, location, arrest, lat, lon string) string {
	return fmt.Sprintf("%d,%s,%s,%s,%s,SIMPLE,%s,%s,6,%s,%s",
		id, caseNumber, date, block, primaryType, location, arrest, lat, lon)
}

func writeFixture(t *testing.T, rows ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "crimes.csv")
	content := fixtureHeader + "\n" + strings.Join(rows, "\n") + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func fixtureConfig(input string) *config.Config {
	cfg := config.Default()
	cfg.Paths.InputFile = input
	return cfg
}

func TestPipeline_Run(t *testing.T) {
	input := writeFixture(t,
		fixtureRow(1, "HZ1", "01/05/2013 11:40:00 PM", "001XX N STATE ST", "THEFT", "STREET", "True", "41.88", "-87.62"),
		fixtureRow(2, "HZ2", "03/12/2013 09:15:00 AM", "002XX W MADISON ST", "THEFT", "RESIDENCE", "False", "41.88", "-87.63"),
		fixtureRow(3, "HZ3", "07/04/2014 12:00:00 PM", "001XX N STATE ST", "BATTERY", "STREET", "False", "41.87", "-87.62"),
		// Multi-victim homicide: two records sharing one case number.
		fixtureRow(4, "HZ100", "08/20/2015 02:30:00 AM", "055XX S ASHLAND AVE", "HOMICIDE", "STREET", "True", "41.79", "-87.66"),
		fixtureRow(5, "HZ100", "08/20/2015 02:30:00 AM", "055XX S ASHLAND AVE", "HOMICIDE", "STREET", "True", "41.79", "-87.66"),
		// Outside the year range: removed by the filter.
		fixtureRow(6, "HZ4", "02/01/2017 10:00:00 AM", "003XX E OHIO ST", "THEFT", "STREET", "False", "41.89", "-87.61"),
		// Missing location description: dropped by the cleaner.
		fixtureRow(7, "HZ5", "05/05/2014 05:00:00 PM", "004XX N CLARK ST", "ASSAULT", "", "False", "41.89", "-87.63"),
	)

	pipeline := New(fixtureConfig(input), nil)
	report, err := pipeline.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 5, report.TotalRecords)
	assert.Equal(t, 4, report.DistinctCases)

	// HOMICIDE and THEFT tie at 2; lexicographic tie-break puts HOMICIDE first.
	require.Len(t, report.ByType, 3)
	assert.Equal(t, aggregate.Group{Key: []string{"HOMICIDE"}, Count: 2}, report.ByType[0])
	assert.Equal(t, aggregate.Group{Key: []string{"THEFT"}, Count: 2}, report.ByType[1])
	assert.Equal(t, aggregate.Group{Key: []string{"BATTERY"}, Count: 1}, report.ByType[2])

	require.Len(t, report.ByYear, 3)
	assert.Equal(t, aggregate.Group{Key: []string{"2013"}, Count: 2}, report.ByYear[0])
	assert.Equal(t, aggregate.Group{Key: []string{"2015"}, Count: 2}, report.ByYear[1])
	assert.Equal(t, aggregate.Group{Key: []string{"2014"}, Count: 1}, report.ByYear[2])

	// Aggregation conservation over full partitions.
	assert.Equal(t, report.TotalRecords, report.ByYearMonth.Total())
	assert.Equal(t, report.TotalRecords, report.WeekdayHour.Total())

	require.Len(t, report.ArrestsByYear, 3)
	assert.Equal(t, YearArrestShare{Year: 2013, Total: 2, Arrests: 1, Share: 0.5}, report.ArrestsByYear[0])
	assert.Equal(t, YearArrestShare{Year: 2014, Total: 1, Arrests: 0, Share: 0}, report.ArrestsByYear[1])
	assert.Equal(t, YearArrestShare{Year: 2015, Total: 2, Arrests: 2, Share: 1}, report.ArrestsByYear[2])

	// Homicide view counts per victim record.
	require.Len(t, report.HomicideByYear, 1)
	assert.Equal(t, aggregate.Group{Key: []string{"2015"}, Count: 2}, report.HomicideByYear[0])
	require.Len(t, report.HomicideTopBlocks, 1)
	assert.Equal(t, aggregate.Group{Key: []string{"055XX S ASHLAND AVE"}, Count: 2}, report.HomicideTopBlocks[0])

	require.Len(t, report.HomicidePoints, 2)
	assert.Equal(t, MapPoint{Latitude: 41.79, Longitude: -87.66}, report.HomicidePoints[0])
	assert.Equal(t, Bounds{
		MinLatitude: 41.79, MaxLatitude: 41.79,
		MinLongitude: -87.66, MaxLongitude: -87.66,
	}, report.HomicideBounds)
}

func TestPipeline_Run_WeekdayHourPlacement(t *testing.T) {
	input := writeFixture(t,
		// Saturday 23h.
		fixtureRow(1, "HZ1", "01/05/2013 11:40:00 PM", "001XX N STATE ST", "THEFT", "STREET", "False", "41.88", "-87.62"),
	)

	report, err := New(fixtureConfig(input), nil).Run(context.Background())
	require.NoError(t, err)

	m := report.WeekdayHour
	require.Equal(t, "Saturday", m.RowLabels[5])
	assert.Equal(t, 1, m.Counts[5][23])
	assert.Equal(t, 1, m.Total())
}

func TestPipeline_Run_MissingInput(t *testing.T) {
	cfg := fixtureConfig(filepath.Join(t.TempDir(), "missing.csv"))

	_, err := New(cfg, nil).Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrTypeIO, apperrors.TypeOf(err))
}

func TestPipeline_Run_MalformedTimestampPolicies(t *testing.T) {
	rows := []string{
		fixtureRow(1, "HZ1", "01/05/2013 11:40:00 PM", "001XX N STATE ST", "THEFT", "STREET", "False", "41.88", "-87.62"),
		fixtureRow(2, "HZ2", "05-01-2013 23:40", "001XX N STATE ST", "THEFT", "STREET", "False", "41.88", "-87.62"),
	}

	t.Run("fail policy aborts", func(t *testing.T) {
		cfg := fixtureConfig(writeFixture(t, rows...))
		cfg.Analysis.OnParseError = config.ParsePolicyFail

		_, err := New(cfg, nil).Run(context.Background())
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrTypeParse, apperrors.TypeOf(err))
	})

	t.Run("drop policy keeps the rest", func(t *testing.T) {
		cfg := fixtureConfig(writeFixture(t, rows...))
		cfg.Analysis.OnParseError = config.ParsePolicyDrop

		report, err := New(cfg, nil).Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, report.TotalRecords)
	})
}

func TestBoundsOf(t *testing.T) {
	points := []MapPoint{
		{Latitude: 41.7, Longitude: -87.7},
		{Latitude: 41.9, Longitude: -87.6},
		{Latitude: 41.8, Longitude: -87.9},
	}

	assert.Equal(t, Bounds{
		MinLatitude: 41.7, MaxLatitude: 41.9,
		MinLongitude: -87.9, MaxLongitude: -87.6,
	}, boundsOf(points))

	assert.Equal(t, Bounds{}, boundsOf(nil))
}
