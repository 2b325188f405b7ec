// Package export renders a document version to HTML, PDF or DOCX.
package export

import (
	"errors"
	"fmt"
)

type Format string

const (
	FormatMarkdown Format = "md"
	FormatHTML     Format = "html"
	FormatPDF      Format = "pdf"
	FormatDOCX     Format = "docx"
)

// ParseFormat accepts the format names used on the command line.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatMarkdown, FormatHTML, FormatPDF, FormatDOCX:
		return Format(s), nil
	case "markdown":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// Request selects the version and output of an export.
type Request struct {
	// Hash picks the version; empty means the latest.
	Hash            string
	Format          Format
	IncludeComments bool
}

type Result struct {
	Data     []byte
	Filename string
	MimeType string
	// Hash of the exported version.
	Hash string
}

var (
	ErrContentUnavailable = errors.New("export content unavailable")
	ErrUnsupportedFormat  = errors.New("unsupported export format")
	// ErrPDFDependencyMissing indicates headless Chrome is not installed.
	ErrPDFDependencyMissing = errors.New("export pdf dependency missing")
	// ErrDOCXDependencyMissing indicates pandoc is not installed.
	ErrDOCXDependencyMissing = errors.New("export docx dependency missing")
)
