package normalizer

import (
	"bytes"
	"encoding/json"
)

// JSONConverter re-indents a JSON document for readability. Key order and
// number literals are preserved, so the output parses back to the same value.
type JSONConverter struct{}

// NewJSONConverter creates a new JSONConverter.
func NewJSONConverter() *JSONConverter {
	return &JSONConverter{}
}

func (c *JSONConverter) Extensions() []string { return []string{"json"} }

func (c *JSONConverter) Convert(data []byte) (string, error) {
	text, err := validText(data)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(text), "", "  "); err != nil {
		return "", malformed(err)
	}
	return buf.String(), nil
}

// compile-time check to ensure JSONConverter implements the Converter interface
var _ Converter = (*JSONConverter)(nil)
