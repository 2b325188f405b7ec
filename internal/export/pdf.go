package export

import (
	"context"
	"encoding/base64"
	"fmt"
	"os/exec"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// PDFTimeout bounds one headless Chrome print.
var PDFTimeout = 30 * time.Second

// Letter paper with a 0.75in margin, in inches.
const (
	paperWidth  = 8.5
	paperHeight = 11.0
	pageMargin  = 0.75
)

var chromeNames = []string{"chromium", "chromium-browser", "google-chrome", "google-chrome-stable"}

// lookTool returns the first of names found on PATH.
func lookTool(names ...string) (string, bool) {
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path, true
		}
	}
	return "", false
}

// htmlDataURL inlines a page so Chrome needs neither a file nor a server.
func htmlDataURL(html string) string {
	return "data:text/html;charset=utf-8;base64," + base64.StdEncoding.EncodeToString([]byte(html))
}

func exportPDF(parent context.Context, html, filename string) (*Result, error) {
	chrome, ok := lookTool(chromeNames...)
	if !ok {
		return nil, fmt.Errorf("%w: none of %v on PATH", ErrPDFDependencyMissing, chromeNames)
	}

	ctx, cancel := context.WithTimeout(parent, PDFTimeout)
	defer cancel()
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(chrome),
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.Flag("disable-dev-shm-usage", true),
	)...)
	defer cancelAlloc()
	browser, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	var data []byte
	printPDF := chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		data, _, err = page.PrintToPDF().
			WithPrintBackground(true).
			WithPaperWidth(paperWidth).
			WithPaperHeight(paperHeight).
			WithMarginTop(pageMargin).
			WithMarginBottom(pageMargin).
			WithMarginLeft(pageMargin).
			WithMarginRight(pageMargin).
			Do(ctx)
		return err
	})
	if err := chromedp.Run(browser, chromedp.Navigate(htmlDataURL(html)), chromedp.WaitReady("body"), printPDF); err != nil {
		return nil, fmt.Errorf("print %s.pdf: %w", filename, err)
	}
	return &Result{Data: data, Filename: filename + ".pdf", MimeType: "application/pdf"}, nil
}
