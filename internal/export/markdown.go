package export

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/russross/blackfriday/v2"
)

var policy = bluemonday.UGCPolicy()

// MarkdownToHTML renders a document body. The output is sanitised because
// bodies are written by any signed in user.
func MarkdownToHTML(body string) string {
	unsafe := blackfriday.Run([]byte(body), blackfriday.WithExtensions(blackfriday.CommonExtensions))
	return string(policy.SanitizeBytes(unsafe))
}

// Title is the first heading or line of body with markdown markers removed.
func Title(body string) string {
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "#>*- "))
		if line != "" {
			return line
		}
	}
	return "Untitled document"
}
