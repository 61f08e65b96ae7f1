package normalizer

import (
	"errors"
	"path"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
)

// DefaultMaxChars caps the normalized text when no limit is configured.
const DefaultMaxChars = 5000

// Upload is a file received with a question. It lives for a single request.
type Upload struct {
	Filename string
	Data     []byte
}

// Result is the prompt-ready text derived from an Upload.
type Result struct {
	Text      string
	Extension string
	// Truncated reports whether Text was cut to the character cap.
	Truncated bool
	// DetectedMIME is the content-sniffed type, kept for diagnostics only.
	DetectedMIME string
	// MIMEMismatch reports that the sniffed content does not look like the extension,
	// for example a .pdf that is plain text.
	MIMEMismatch bool
}

// Converter turns the raw bytes of one family of formats into plain text.
type Converter interface {
	// Extensions lists the lowercase suffixes (without the dot) the converter handles.
	Extensions() []string
	// Convert returns the text of data. Errors that are not already *Error are
	// reported as malformed input.
	Convert(data []byte) (string, error)
}

// Normalizer selects a Converter by file extension and bounds its output.
type Normalizer struct {
	converters map[string]Converter
	maxChars   int
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithMaxChars sets the output cap in characters (runes). Non-positive values keep the default.
func WithMaxChars(limit int) Option {
	return func(n *Normalizer) {
		if limit > 0 {
			n.maxChars = limit
		}
	}
}

// New creates a Normalizer with every built-in converter registered.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{
		converters: make(map[string]Converter),
		maxChars:   DefaultMaxChars,
	}

	n.RegisterConverter(NewTextConverter())
	n.RegisterConverter(NewCsvConverter())
	n.RegisterConverter(NewJSONConverter())
	n.RegisterConverter(NewPdfConverter())
	n.RegisterConverter(NewHTMLConverter())
	n.RegisterConverter(NewXlsxConverter())

	for _, opt := range opts {
		opt(n)
	}
	return n
}

// RegisterConverter adds a converter; later registrations win for a shared extension.
func (n *Normalizer) RegisterConverter(c Converter) {
	for _, ext := range c.Extensions() {
		n.converters[strings.ToLower(ext)] = c
	}
}

// Allowed returns the sorted set of accepted extensions.
func (n *Normalizer) Allowed() []string {
	exts := make([]string, 0, len(n.converters))
	for ext := range n.converters {
		exts = append(exts, ext)
	}
	slices.Sort(exts)
	return exts
}

// MaxChars returns the configured output cap.
func (n *Normalizer) MaxChars() int { return n.maxChars }

// Normalize converts an upload to bounded plain text. It never touches the
// filesystem or network and keeps no state between calls.
func (n *Normalizer) Normalize(u Upload) (*Result, error) {
	ext := Extension(u.Filename)
	conv, ok := n.converters[ext]
	if !ok {
		return nil, &Error{Kind: KindUnsupportedFormat, Extension: ext, Allowed: n.Allowed()}
	}

	res := &Result{Extension: ext}
	if len(u.Data) == 0 {
		return res, nil
	}
	detected := mimetype.Detect(u.Data)
	res.DetectedMIME = detected.String()
	res.MIMEMismatch = !mimeMatches(detected, ext)

	text, err := conv.Convert(u.Data)
	if err != nil {
		var nerr *Error
		if !errors.As(err, &nerr) {
			nerr = &Error{Kind: KindMalformedInput, Err: err}
		}
		nerr.Extension = ext
		return nil, nerr
	}

	res.Text, res.Truncated = Truncate(text, n.maxChars)
	return res, nil
}

// binaryFormats have a signature the sniffer can recognize. Any other registered
// extension is expected to carry text.
var binaryFormats = map[string]bool{"pdf": true, "xlsx": true}

// mimeMatches walks the detected type and its parents looking for ext.
func mimeMatches(detected *mimetype.MIME, ext string) bool {
	for m := detected; m != nil; m = m.Parent() {
		if m.Extension() == "."+ext {
			return true
		}
		if !binaryFormats[ext] && m.Is("text/plain") {
			return true
		}
	}
	return false
}

// Extension returns the lowercase suffix after the last period of the base
// name, or "" when there is none.
func Extension(filename string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	i := strings.LastIndexByte(base, '.')
	if i < 0 || i == len(base)-1 {
		return ""
	}
	return strings.ToLower(base[i+1:])
}

// Truncate cuts s to at most limit characters. It reports whether anything was removed.
func Truncate(s string, limit int) (string, bool) {
	if limit <= 0 || len(s) <= limit {
		// len in bytes bounds the rune count from above.
		return s, false
	}
	count := 0
	for i := range s {
		if count == limit {
			return s[:i], true
		}
		count++
	}
	return s, false
}

// validText rejects content that is not UTF-8, ignoring a leading byte-order mark.
func validText(data []byte) (string, error) {
	data = trimBOM(data)
	if !utf8.Valid(data) {
		return "", decodeError(errors.New("invalid UTF-8 byte sequence"))
	}
	return string(data), nil
}

func trimBOM(data []byte) []byte {
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		return data[3:]
	}
	return data
}
