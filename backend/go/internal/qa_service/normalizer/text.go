package normalizer

// TextConverter passes UTF-8 text and Markdown through verbatim.
type TextConverter struct{}

// NewTextConverter creates a new TextConverter.
func NewTextConverter() *TextConverter {
	return &TextConverter{}
}

func (c *TextConverter) Extensions() []string { return []string{"txt", "md"} }

// Convert returns data unchanged, or a decode error if it is not UTF-8.
func (c *TextConverter) Convert(data []byte) (string, error) {
	return validText(data)
}

// compile-time check to ensure TextConverter implements the Converter interface
var _ Converter = (*TextConverter)(nil)
