package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "crimelens/internal/errors"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeTempCSV(t, "Case Number,Date,Primary Type\nHZ1,01/05/2013 11:40:00 PM,THEFT\nHZ2,02/10/2014 08:00:00 AM,BATTERY\n")

	table, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"Case Number", "Date", "Primary Type"}, table.Columns)
	require.Equal(t, 2, table.NumRows())
	assert.Equal(t, []string{"HZ1", "01/05/2013 11:40:00 PM", "THEFT"}, table.Rows[0])
	assert.Equal(t, []string{"HZ2", "02/10/2014 08:00:00 AM", "BATTERY"}, table.Rows[1])
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"), nil)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrTypeIO, apperrors.TypeOf(err))
}

func TestLoad_RaggedRow(t *testing.T) {
	path := writeTempCSV(t, "a,b,c\n1,2,3\n4,5\n")

	_, err := Load(path, nil)
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrTypeFormat, appErr.Type)
	assert.Equal(t, 1, appErr.Context["row"])
}

func TestLoad_BadHeader(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty file", ""},
		{"empty column name", "a,,c\n1,2,3\n"},
		{"duplicate column name", "a,b,a\n1,2,3\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTempCSV(t, tt.content)

			_, err := Load(path, nil)
			require.Error(t, err)
			assert.Equal(t, apperrors.ErrTypeFormat, apperrors.TypeOf(err))
		})
	}
}

func TestLoad_EmptyBody(t *testing.T) {
	path := writeTempCSV(t, "a,b,c\n")

	table, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, table.NumRows())
}

func TestColumnIndex(t *testing.T) {
	table := &Table{Columns: []string{"Date", "Block"}}
	assert.Equal(t, 0, table.ColumnIndex("Date"))
	assert.Equal(t, 1, table.ColumnIndex("Block"))
	assert.Equal(t, -1, table.ColumnIndex("Arrest"))
}
