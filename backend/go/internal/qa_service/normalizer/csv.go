package normalizer

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"
)

// CsvConverter renders delimited tabular data as a Markdown table.
type CsvConverter struct{}

// NewCsvConverter creates a new CsvConverter.
func NewCsvConverter() *CsvConverter {
	return &CsvConverter{}
}

func (c *CsvConverter) Extensions() []string { return []string{"csv"} }

// Convert parses data as comma-separated records. Every record must have the
// same number of fields as the header.
func (c *CsvConverter) Convert(data []byte) (string, error) {
	text, err := validText(data)
	if err != nil {
		return "", err
	}

	r := csv.NewReader(strings.NewReader(text))
	var rows [][]string
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", malformed(err)
		}
		rows = append(rows, record)
	}
	if len(rows) == 0 {
		return "", malformed(errors.New("no columns to parse from file"))
	}
	return markdownTable(rows), nil
}

// compile-time check to ensure CsvConverter implements the Converter interface
var _ Converter = (*CsvConverter)(nil)
