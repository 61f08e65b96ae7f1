package normalizer

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// XlsxConverter renders each worksheet of an Excel workbook as a Markdown table.
type XlsxConverter struct{}

// NewXlsxConverter creates a new XlsxConverter.
func NewXlsxConverter() *XlsxConverter {
	return &XlsxConverter{}
}

func (c *XlsxConverter) Extensions() []string { return []string{"xlsx"} }

// Convert emits one "## <sheet>" section per non-empty sheet, in workbook order.
func (c *XlsxConverter) Convert(data []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", malformed(err)
	}
	defer f.Close()

	var sections []string
	for _, sheetName := range f.GetSheetList() {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			return "", malformed(fmt.Errorf("sheet %q: %w", sheetName, err))
		}
		if len(rows) == 0 {
			continue
		}
		sections = append(sections, "## "+sheetName+"\n"+markdownTable(rows))
	}
	return strings.Join(sections, "\n"), nil
}

// compile-time check to ensure XlsxConverter implements the Converter interface
var _ Converter = (*XlsxConverter)(nil)
