package normalizer

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a normalization failure.
type Kind int

const (
	// KindUnsupportedFormat means the extension is not in the registry.
	KindUnsupportedFormat Kind = iota + 1
	// KindMalformedInput means the extension is known but the content does not parse.
	KindMalformedInput
	// KindDecode means the content is not valid text where text was expected.
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindUnsupportedFormat:
		return "unsupported_format"
	case KindMalformedInput:
		return "malformed_input"
	case KindDecode:
		return "decode_error"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is matching against an *Error of the same kind.
var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrMalformedInput    = errors.New("malformed file content")
	ErrDecode            = errors.New("file content is not valid UTF-8 text")
)

// Error is returned by Normalize for every failure.
type Error struct {
	Kind      Kind
	Extension string
	// Allowed is set for KindUnsupportedFormat.
	Allowed []string
	Err     error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindUnsupportedFormat:
		ext := "(no extension)"
		if e.Extension != "" {
			ext = "." + e.Extension
		}
		return fmt.Sprintf("unsupported file format %s: only %s files are allowed",
			ext, strings.Join(e.Allowed, ", "))
	case KindDecode:
		return fmt.Sprintf("cannot decode .%s file: %v", e.Extension, e.Err)
	default:
		return fmt.Sprintf("cannot parse .%s file: %v", e.Extension, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports kind equality with the package sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnsupportedFormat:
		return e.Kind == KindUnsupportedFormat
	case ErrMalformedInput:
		return e.Kind == KindMalformedInput
	case ErrDecode:
		return e.Kind == KindDecode
	}
	return false
}

// decodeError and malformed are what converters return; Normalize fills in the extension.
func decodeError(err error) error { return &Error{Kind: KindDecode, Err: err} }

func malformed(err error) error { return &Error{Kind: KindMalformedInput, Err: err} }
