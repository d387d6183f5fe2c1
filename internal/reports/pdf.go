package reports

import (
	"context"
	"encoding/base64"
	"fmt"
	"html"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/joelkehle/metria/internal/models"
)

type PDFRenderer interface {
	Render(ctx context.Context, rep models.SavedReport) ([]byte, error)
}

// ChromiumPDFRenderer prints the markdown report through headless Chromium.
type ChromiumPDFRenderer struct {
	chromePath string
	timeout    time.Duration
}

func NewChromiumPDFRenderer(chromePath string) *ChromiumPDFRenderer {
	if chromePath == "" {
		chromePath = detectChromePath()
	}
	return &ChromiumPDFRenderer{chromePath: chromePath, timeout: 30 * time.Second}
}

func (r *ChromiumPDFRenderer) Render(ctx context.Context, rep models.SavedReport) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "reports.RenderPDF")
	defer span.End()

	htmlDoc, err := buildHTML(rep)
	if err != nil {
		return nil, err
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	opts := []chromedp.ExecAllocatorOption{
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.Flag("disable-dev-shm-usage", true),
	}
	if r.chromePath != "" {
		opts = append(opts, chromedp.ExecPath(r.chromePath))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(timeoutCtx, append(chromedp.DefaultExecAllocatorOptions[:], opts...)...)
	defer allocCancel()

	taskCtx, taskCancel := chromedp.NewContext(allocCtx)
	defer taskCancel()

	var pdf []byte
	dataURL := "data:text/html;base64," + base64.StdEncoding.EncodeToString([]byte(htmlDoc))
	if err := chromedp.Run(taskCtx,
		chromedp.Navigate(dataURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			footer := `<div style="width:100%;text-align:center;font-size:9px;color:#666;">` +
				`Metria · Page <span class="pageNumber"></span> of <span class="totalPages"></span></div>`
			out, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithDisplayHeaderFooter(true).
				WithHeaderTemplate(`<div></div>`).
				WithFooterTemplate(footer).
				WithPaperWidth(8.27).
				WithPaperHeight(11.69).
				WithMarginTop(0.5).
				WithMarginBottom(0.75).
				WithMarginLeft(0.5).
				WithMarginRight(0.5).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = out
			return nil
		}),
	); err != nil {
		return nil, fmt.Errorf("print pdf: %w", err)
	}
	return pdf, nil
}

const reportCSS = `
body{font-family:-apple-system,"Segoe UI",Helvetica,Arial,sans-serif;color:#0f172a;font-size:12px;line-height:1.5;margin:0;padding:0.6rem;}
h1{font-size:1.6rem;margin:0 0 0.5rem;border-bottom:3px solid #0f172a;padding-bottom:0.3rem;}
h2{font-size:1.15rem;margin:1.4rem 0 0.5rem;color:#1e3a8a;}
h3{font-size:1rem;margin:1rem 0 0.3rem;}
blockquote{margin:0.6rem 0;padding:0.4rem 0.8rem;background:#fef3c7;border-left:4px solid #f59e0b;color:#78350f;}
table{width:100%;border-collapse:collapse;margin:0.4rem 0;font-size:0.85rem;}
th,td{border:1px solid #cbd5e1;padding:0.3rem 0.45rem;text-align:left;vertical-align:top;}
thead th{background:#f1f5f9;font-weight:700;}
td.num{text-align:right;font-variant-numeric:tabular-nums;}
h2[data-page-break-before="true"]{break-before:page;page-break-before:always;}
.badge{display:inline-block;padding:0.15rem 0.5rem;border-radius:999px;font-weight:600;font-size:0.8rem;margin-right:0.3rem;}
.badge-high{background:#dcfce7;color:#166534;}
.badge-mid{background:#fef9c3;color:#854d0e;}
.badge-low{background:#fee2e2;color:#991b1b;}
html,body,*{-webkit-print-color-adjust:exact !important;print-color-adjust:exact !important;}
`

func buildHTML(rep models.SavedReport) (string, error) {
	var content strings.Builder
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	if err := md.Convert([]byte(Markdown(rep)), &content); err != nil {
		return "", fmt.Errorf("markdown convert: %w", err)
	}
	title := html.EscapeString(strings.TrimSpace(rep.Data.ProjectName))
	if title == "" {
		title = "Metria report"
	}
	return "<!doctype html><html><head><meta charset='utf-8'><title>" + title + "</title>" +
		"<style>" + reportCSS + "</style></head><body>" +
		"<div class='badges'>" + scoreBadge(rep.Metrics.InnovationScore) + "</div>" +
		applyPrintLayoutHooks(content.String()) +
		"</body></html>", nil
}

func scoreBadge(score float64) string {
	class := "badge-low"
	switch {
	case score >= 70:
		class = "badge-high"
	case score >= 40:
		class = "badge-mid"
	}
	return fmt.Sprintf("<span class='badge %s'>Innovation score %.0f</span>", class, score)
}

var (
	reAnalysisHeading = regexp.MustCompile(`(?i)<h2([^>]*)>\s*AI Analysis\s*</h2>`)
	reNumericCell     = regexp.MustCompile(`<td>(-?[0-9][0-9.,]*(?:%|x| months| / 100)?)</td>`)
)

// applyPrintLayoutHooks starts the analysis on a new page and right-aligns
// numeric table cells.
func applyPrintLayoutHooks(contentHTML string) string {
	out := reAnalysisHeading.ReplaceAllString(contentHTML, `<h2$1 data-page-break-before="true">AI Analysis</h2>`)
	return reNumericCell.ReplaceAllString(out, `<td class="num">$1</td>`)
}

func detectChromePath() string {
	candidates := []string{
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/usr/bin/google-chrome",
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
