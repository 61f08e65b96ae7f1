package normalizer

import (
	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// HTMLConverter converts an HTML page to Markdown, dropping scripts and styles.
type HTMLConverter struct{}

// NewHTMLConverter creates a new HTMLConverter.
func NewHTMLConverter() *HTMLConverter {
	return &HTMLConverter{}
}

func (c *HTMLConverter) Extensions() []string { return []string{"html", "htm"} }

func (c *HTMLConverter) Convert(data []byte) (string, error) {
	text, err := validText(data)
	if err != nil {
		return "", err
	}
	md, err := htmltomarkdown.ConvertString(text)
	if err != nil {
		return "", malformed(err)
	}
	return md, nil
}

// compile-time check to ensure HTMLConverter implements the Converter interface
var _ Converter = (*HTMLConverter)(nil)
