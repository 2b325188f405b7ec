package export

import (
	"bytes"
	"html/template"
	"time"
)

var documentTemplate = template.Must(template.New("document").Funcs(template.FuncMap{
	"formatDate": func(t time.Time, layout string) string {
		if t.IsZero() {
			return ""
		}
		return t.Format(layout)
	},
}).Parse(documentHTML))

type TemplateData struct {
	Title       string
	UUID        string
	Hash        string
	Version     string
	Author      string
	UpdatedAt   time.Time
	Tags        []string
	ContentHTML template.HTML
	Comments    []TemplateComment
}

type TemplateComment struct {
	Author string
	Body   string
	Date   time.Time
	Depth  int
}

// Indent is the left margin of a reply in pixels.
func (c TemplateComment) Indent() int {
	return c.Depth * 24
}

func RenderDocumentHTML(data TemplateData) (string, error) {
	var buf bytes.Buffer
	if err := documentTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const documentHTML = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>{{.Title}}</title>
  <style>
    body { font-family: Arial, sans-serif; line-height: 1.6; max-width: 800px; margin: 2rem auto; }
    .meta { color: #666; font-size: 0.9em; margin-bottom: 2rem; }
    .tag { display: inline-block; background: #eee; border-radius: 3px; padding: 0 0.4rem; margin-right: 0.3rem; }
    .comment { background: #f5f5f5; padding: 0.5rem 1rem; margin: 0.5rem 0; border-left: 3px solid #333; }
    .comment .meta { margin-bottom: 0.25rem; }
  </style>
</head>
<body>
  <div class="meta">{{.Author}}{{with formatDate .UpdatedAt "Jan 2, 2006"}} | {{.}}{{end}} | {{.Version}} | {{.Hash}}</div>
  <div class="content">{{.ContentHTML}}</div>
  {{if .Tags}}<p>{{range .Tags}}<span class="tag">#{{.}}</span>{{end}}</p>{{end}}
  {{if .Comments}}
  <h2>Comments</h2>
  {{range .Comments}}<div class="comment" style="margin-left: {{.Indent}}px">
    <div class="meta">{{.Author}}{{with formatDate .Date "Jan 2, 2006"}} on {{.}}{{end}}</div>
    <div>{{.Body}}</div>
  </div>
  {{end}}{{end}}
</body>
</html>`
