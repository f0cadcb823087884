package fieldset

import (
	"encoding/csv"
	"fmt"
	"strings"
)

// Table is parsed CSV content: the header row plus one map per data row.
// Headers keeps the original column order, which matters for deterministic
// schema materialization during import.
type Table struct {
	Headers []string
	Rows    []map[string]string
}

// HasColumn reports whether the header row contains the given column name.
func (t Table) HasColumn(name string) bool {
	for _, h := range t.Headers {
		if h == name {
			return true
		}
	}
	return false
}

// ParseCSV parses CSV content with the given delimiter. The first record is
// treated as the header row; duplicate header names are renamed with a
// numeric suffix. Short rows are padded with empty strings, extra cells are
// dropped.
func ParseCSV(content string, delimiter rune) (Table, error) {
	reader := csv.NewReader(strings.NewReader(content))
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return Table{}, fmt.Errorf("error reading CSV: %w", err)
	}
	if len(records) == 0 {
		return Table{}, nil
	}

	headers := make([]string, len(records[0]))
	copy(headers, records[0])

	headerCount := make(map[string]int)
	for i, header := range headers {
		if count, exists := headerCount[header]; exists {
			headerCount[header]++
			headers[i] = fmt.Sprintf("%s_%d", header, count+1)
		} else {
			headerCount[header] = 0
		}
	}

	rows := make([]map[string]string, 0, len(records)-1)
	for i := 1; i < len(records); i++ {
		row := make(map[string]string, len(headers))
		for j, header := range headers {
			if j < len(records[i]) {
				row[header] = records[i][j]
			} else {
				row[header] = ""
			}
		}
		rows = append(rows, row)
	}

	return Table{Headers: headers, Rows: rows}, nil
}
