package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// Certificate images are produced at a fixed 800x600 size and the PDF page
// matches it. Chrome paper sizes are inches at 96 DPI.
const (
	pageWidthInches  = 800.0 / 96.0
	pageHeightInches = 600.0 / 96.0
)

// Renderer converts the certificate image into a single-page PDF document.
type Renderer interface {
	RenderImage(ctx context.Context, imageURL string) ([]byte, error)
}

// ChromeRenderer prints PDFs through a headless Chrome instance.
type ChromeRenderer struct{}

func NewChromeRenderer() *ChromeRenderer {
	return &ChromeRenderer{}
}

var imageShell = template.Must(template.New("shell").Parse(`<!DOCTYPE html>
<html>
<head>
<style>
  html, body { margin: 0; padding: 0; }
  img { width: 800px; height: 600px; object-fit: contain; }
</style>
</head>
<body><img src="{{.}}" alt="certificate"></body>
</html>`))

func (r *ChromeRenderer) RenderImage(ctx context.Context, imageURL string) ([]byte, error) {
	var html bytes.Buffer
	if err := imageShell.Execute(&html, imageURL); err != nil {
		return nil, fmt.Errorf("render image shell: %w", err)
	}

	browserCtx, cancel := chromedp.NewContext(ctx)
	defer cancel()

	var pdfBuffer []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, html.String()).Do(ctx)
		}),
		chromedp.WaitVisible("img", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			pdf, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(pageWidthInches).
				WithPaperHeight(pageHeightInches).
				WithMarginTop(0).
				WithMarginBottom(0).
				WithMarginLeft(0).
				WithMarginRight(0).
				Do(ctx)
			if err != nil {
				return err
			}
			pdfBuffer = pdf
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("print certificate to pdf: %w", err)
	}
	return pdfBuffer, nil
}
