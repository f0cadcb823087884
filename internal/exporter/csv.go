package exporter

import (
	"bytes"
	"encoding/csv"
	"sort"
	"strconv"

	"github.com/silvioheinze/isr-field-sub000/internal/model"
)

// csvFixedHeader is the fixed leading column set of every dataset export.
var csvFixedHeader = []string{"ID", "Address", "X", "Y", "User", "Entry_Name", "Year"}

// BuildCSV flattens geometries into comma-separated CSV: one row per
// geometry and entry pair, a geometry without entries still yields one row
// with blank entry columns. Trailing columns are the union of field names
// observed in the passed data, sorted lexicographically; cells for fields an
// entry never stored stay empty. Geometries must come with their entries,
// values and entry creators preloaded, already filtered for the requesting
// user.
func BuildCSV(geometries []model.Geometry) (string, error) {
	fieldNames := observedFieldNames(geometries)
	header := append(append([]string{}, csvFixedHeader...), fieldNames...)

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write(header); err != nil {
		return "", err
	}

	for _, geometry := range geometries {
		if len(geometry.Entries) == 0 {
			if err := writer.Write(buildRow(geometry, nil, fieldNames)); err != nil {
				return "", err
			}
			continue
		}
		for i := range geometry.Entries {
			if err := writer.Write(buildRow(geometry, &geometry.Entries[i], fieldNames)); err != nil {
				return "", err
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func observedFieldNames(geometries []model.Geometry) []string {
	seen := make(map[string]bool)
	for _, geometry := range geometries {
		for _, entry := range geometry.Entries {
			for _, value := range entry.Values {
				seen[value.FieldName] = true
			}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func buildRow(geometry model.Geometry, entry *model.Entry, fieldNames []string) []string {
	row := make([]string, 0, len(csvFixedHeader)+len(fieldNames))
	row = append(row,
		geometry.IDKurz,
		geometry.Address,
		strconv.FormatFloat(geometry.Longitude, 'f', -1, 64),
		strconv.FormatFloat(geometry.Latitude, 'f', -1, 64),
	)

	if entry == nil {
		row = append(row, "", "", "")
		for range fieldNames {
			row = append(row, "")
		}
		return row
	}

	year := ""
	if entry.Year != nil {
		year = strconv.Itoa(*entry.Year)
	}
	row = append(row, entry.CreatedBy.Username, entry.Name, year)

	values := make(map[string]string, len(entry.Values))
	for _, value := range entry.Values {
		values[value.FieldName] = value.Value
	}
	for _, name := range fieldNames {
		row = append(row, values[name])
	}

	return row
}
