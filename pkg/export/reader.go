package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
)

// ReadTable parses a CSV or XLSX upload. The first row is the header; header
// names are lower-cased and trimmed, and blank rows are skipped.
func ReadTable(format Format, data []byte) (Dataset, error) {
	var rows [][]string
	var err error
	switch format {
	case FormatCSV:
		reader := csv.NewReader(bytes.NewReader(data))
		reader.FieldsPerRecord = -1
		reader.TrimLeadingSpace = true
		rows, err = reader.ReadAll()
		if err != nil {
			err = fmt.Errorf("read csv: %w", err)
		}
	case FormatXLSX:
		rows, err = readXLSX(data)
	default:
		err = fmt.Errorf("unsupported import format %q", format)
	}
	if err != nil {
		return Dataset{}, err
	}
	if len(rows) == 0 {
		return Dataset{}, fmt.Errorf("table is empty")
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.ToLower(strings.TrimSpace(h))
	}
	result := Dataset{Headers: headers}
	for _, row := range rows[1:] {
		record := make(map[string]string, len(headers))
		blank := true
		for i, header := range headers {
			if i >= len(row) {
				break
			}
			value := strings.TrimSpace(row[i])
			if value != "" {
				blank = false
			}
			record[header] = value
		}
		if !blank {
			result.Rows = append(result.Rows, record)
		}
	}
	return result, nil
}
