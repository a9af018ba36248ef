package report

import (
	"context"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/pkg/errors"

	"github.com/vfg2006/marketing-reports/internal/config"
	"github.com/vfg2006/marketing-reports/internal/domain"
	"github.com/vfg2006/marketing-reports/pkg/log"
)

const (
	a4WidthInches  = 8.27
	a4HeightInches = 11.69
	pdfScale       = 0.75
	defaultTimeout = 60 * time.Second
)

const pdfFooter = `<div style="font-size:8px;width:100%;text-align:center;color:#666;">` +
	`Page <span class="pageNumber"></span> of <span class="totalPages"></span></div>`

// PDFWriter imprime a página HTML do relatório com o Chrome headless
type PDFWriter struct {
	dir        string
	chromePath string
	timeout    time.Duration
}

func NewPDFWriter(dir string, cfg config.PDF) *PDFWriter {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &PDFWriter{dir: dir, chromePath: cfg.ChromePath, timeout: timeout}
}

func (w *PDFWriter) Format() string { return FormatPDF }

func (w *PDFWriter) Write(ctx context.Context, result *domain.ReportResult, fileName string) (string, error) {
	html, err := RenderHTML(result)
	if err != nil {
		return "", err
	}

	pdf, err := w.print(ctx, string(html))
	if err != nil {
		return "", errors.Wrapf(err, "erro ao gerar PDF do relatório %s", result.Name)
	}

	return writeFile(w.dir, fileName, FormatPDF, pdf)
}

func (w *PDFWriter) print(ctx context.Context, html string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:], chromedp.Flag("headless", true))
	if w.chromePath != "" {
		opts = append(opts, chromedp.ExecPath(w.chromePath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	log.ForContext(ctx).WithField("chrome_path", w.chromePath).Debug("Iniciando Chrome para gerar PDF")

	var pdf []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := printParams().Do(ctx)
			if err != nil {
				return err
			}
			pdf = buf
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdf, nil
}

// printParams: A4 retrato, escala 0.75 e rodapé com numeração de páginas
func printParams() *page.PrintToPDFParams {
	return page.PrintToPDF().
		WithLandscape(false).
		WithPaperWidth(a4WidthInches).
		WithPaperHeight(a4HeightInches).
		WithScale(pdfScale).
		WithPrintBackground(true).
		WithDisplayHeaderFooter(true).
		WithHeaderTemplate("<span></span>").
		WithFooterTemplate(pdfFooter).
		WithMarginTop(0.4).
		WithMarginBottom(0.6).
		WithMarginLeft(0.4).
		WithMarginRight(0.4)
}
