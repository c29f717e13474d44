package aggregate

import (
	"sort"

	"crimelens/internal/crime"
	apperrors "crimelens/internal/errors"
)

// Cell is one observed (row, column) combination of a sparse cross-tab.
type Cell struct {
	Row   string
	Col   string
	Count int
}

// Matrix is a dense cross-tabulation over explicit domains. Absent
// combinations hold an explicit zero, which heatmap consumers require.
type Matrix struct {
	RowLabels []string
	ColLabels []string
	Counts    [][]int
}

// Total sums every cell of the matrix.
func (m *Matrix) Total() int {
	total := 0
	for _, row := range m.Counts {
		for _, c := range row {
			total += c
		}
	}
	return total
}

// CrossTabSparse tabulates records over two keys and returns only the
// observed combinations, ordered by row then column label.
func CrossTabSparse(records []crime.Record, rowKey, colKey string) ([]Cell, error) {
	rowEx, err := ExtractorFor(rowKey)
	if err != nil {
		return nil, err
	}
	colEx, err := ExtractorFor(colKey)
	if err != nil {
		return nil, err
	}

	type pair struct{ row, col string }
	counts := make(map[pair]int)
	for _, record := range records {
		counts[pair{rowEx(record), colEx(record)}]++
	}

	cells := make([]Cell, 0, len(counts))
	for p, count := range counts {
		cells = append(cells, Cell{Row: p.row, Col: p.col, Count: count})
	}

	sort.Slice(cells, func(i, j int) bool {
		if cells[i].Row != cells[j].Row {
			return cells[i].Row < cells[j].Row
		}
		return cells[i].Col < cells[j].Col
	})

	return cells, nil
}

// CrossTabDense tabulates records over two keys into a dense matrix spanning
// the given domains in their given order. A record whose key value falls
// outside its domain is a ConfigError: dense consumers declare the full
// enumeration up front, so an unlisted value means the domain is wrong.
func CrossTabDense(records []crime.Record, rowKey, colKey string, rowDomain, colDomain []string) (*Matrix, error) {
	if len(rowDomain) == 0 || len(colDomain) == 0 {
		return nil, apperrors.NewConfigError("dense cross-tab requires non-empty domains", nil)
	}

	rowEx, err := ExtractorFor(rowKey)
	if err != nil {
		return nil, err
	}
	colEx, err := ExtractorFor(colKey)
	if err != nil {
		return nil, err
	}

	rowIndex := indexOf(rowDomain)
	colIndex := indexOf(colDomain)
	if len(rowIndex) != len(rowDomain) || len(colIndex) != len(colDomain) {
		return nil, apperrors.NewConfigError("cross-tab domain contains duplicates", nil)
	}

	m := &Matrix{
		RowLabels: append([]string(nil), rowDomain...),
		ColLabels: append([]string(nil), colDomain...),
		Counts:    make([][]int, len(rowDomain)),
	}
	for i := range m.Counts {
		m.Counts[i] = make([]int, len(colDomain))
	}

	for _, record := range records {
		rowVal := rowEx(record)
		colVal := colEx(record)

		ri, ok := rowIndex[rowVal]
		if !ok {
			return nil, apperrors.NewConfigError("value outside dense cross-tab row domain", nil).
				WithContext("key", rowKey).
				WithContext("value", rowVal)
		}
		ci, ok := colIndex[colVal]
		if !ok {
			return nil, apperrors.NewConfigError("value outside dense cross-tab column domain", nil).
				WithContext("key", colKey).
				WithContext("value", colVal)
		}
		m.Counts[ri][ci]++
	}

	return m, nil
}

func indexOf(domain []string) map[string]int {
	index := make(map[string]int, len(domain))
	for i, v := range domain {
		if _, dup := index[v]; !dup {
			index[v] = i
		}
	}
	return index
}
