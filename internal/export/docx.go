package export

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

const docxMime = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// exportDOCX pipes the page through pandoc; the document comes back on
// stdout and pandoc's complaints on stderr.
func exportDOCX(ctx context.Context, html, filename string) (*Result, error) {
	pandoc, ok := lookTool("pandoc")
	if !ok {
		return nil, fmt.Errorf("%w: pandoc not on PATH", ErrDOCXDependencyMissing)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, pandoc, "--from=html", "--to=docx", "--standalone", "--output=-")
	cmd.Stdin = strings.NewReader(html)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("pandoc %s.docx: %w: %s", filename, err, msg)
		}
		return nil, fmt.Errorf("pandoc %s.docx: %w", filename, err)
	}
	return &Result{Data: stdout.Bytes(), Filename: filename + ".docx", MimeType: docxMime}, nil
}
