package export

import (
	"context"
	"fmt"
	"html/template"
	"strings"

	"gosshub/client/internal/history"
	"gosshub/client/internal/model"
	"gosshub/client/internal/thread"
)

// Renderer turns a finished HTML page into a binary format.
type Renderer func(ctx context.Context, html, filename string) (*Result, error)

type Service struct {
	pdf  Renderer
	docx Renderer
}

func NewService() *Service {
	return &Service{pdf: exportPDF, docx: exportDOCX}
}

// Export renders the version of document selected by req.
func (s *Service) Export(ctx context.Context, document model.Document, req Request) (*Result, error) {
	index := history.ResolveInitialIndex(document.Transformations, req.Hash)
	if index == history.NotFound || index >= len(document.Transformations) {
		return nil, fmt.Errorf("%w: %s has no version %q", ErrContentUnavailable, document.UUID, req.Hash)
	}
	version := document.Transformations[index]
	title := Title(version.Body)
	filename := Filename(title, version.Hash)

	if req.Format == FormatMarkdown {
		return &Result{
			Data:     []byte(version.Body),
			Filename: filename + ".md",
			MimeType: "text/markdown; charset=utf-8",
			Hash:     version.Hash,
		}, nil
	}

	data := TemplateData{
		Title:       title,
		UUID:        document.UUID,
		Hash:        version.Hash,
		Version:     fmt.Sprintf("version %d of %d", len(document.Transformations)-index, len(document.Transformations)),
		Author:      model.DisplayName(version.Author),
		UpdatedAt:   version.Date.Time,
		Tags:        version.Tags,
		ContentHTML: template.HTML(MarkdownToHTML(version.Body)),
	}
	if req.IncludeComments {
		data.Comments = templateComments(thread.Build(document.Comments))
	}

	html, err := RenderDocumentHTML(data)
	if err != nil {
		return nil, fmt.Errorf("render template: %w", err)
	}

	var result *Result
	switch req.Format {
	case FormatHTML:
		result = &Result{Data: []byte(html), Filename: filename + ".html", MimeType: "text/html; charset=utf-8"}
	case FormatPDF:
		result, err = s.pdf(ctx, html, filename)
	case FormatDOCX:
		result, err = s.docx(ctx, html, filename)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, req.Format)
	}
	if err != nil {
		return nil, err
	}
	result.Hash = version.Hash
	return result, nil
}

func templateComments(roots []*thread.Node) []TemplateComment {
	out := make([]TemplateComment, 0, thread.Count(roots))
	_ = thread.Walk(roots, func(node *thread.Node, depth int) error {
		out = append(out, TemplateComment{
			Author: model.DisplayName(node.Comment.Author),
			Body:   node.Comment.Body,
			Date:   node.Comment.Date.Time,
			Depth:  depth,
		})
		return nil
	})
	return out
}

// Filename builds "<title>-<short hash>" without an extension.
func Filename(title, hash string) string {
	name := fileStem(title)
	if len(hash) > 8 {
		hash = hash[:8]
	}
	if hash == "" {
		return name
	}
	return name + "-" + fileStem(hash)
}

const maxStem = 50

// fileStem keeps ASCII letters, digits, '-' and '_', turns spaces into '-'
// and drops everything else.
func fileStem(s string) string {
	stem := strings.Map(func(r rune) rune {
		switch {
		case r == ' ':
			return '-'
		case r == '-' || r == '_',
			'a' <= r && r <= 'z', 'A' <= r && r <= 'Z', '0' <= r && r <= '9':
			return r
		}
		return -1
	}, s)
	if len(stem) > maxStem {
		stem = stem[:maxStem]
	}
	if stem == "" {
		return "document"
	}
	return stem
}
