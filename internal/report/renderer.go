package report

import (
	"context"
	"fmt"
	"time"

	"campus_care_backend/internal/config"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// Renderer turns an HTML document into PDF bytes.
type Renderer interface {
	RenderPDF(ctx context.Context, html string) ([]byte, error)
}

// ChromeRenderer prints pages with a headless Chrome driven over CDP.
type ChromeRenderer struct {
	execPath string
	timeout  time.Duration
	logger   *zap.Logger
}

var _ Renderer = (*ChromeRenderer)(nil)

// NewChromeRenderer creates a renderer bounded by REPORT_RENDER_TIMEOUT_SECONDS.
func NewChromeRenderer(cfg *config.Config, logger *zap.Logger) *ChromeRenderer {
	timeout := cfg.ReportRenderTimeout
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &ChromeRenderer{
		execPath: cfg.ChromeExecPath,
		timeout:  timeout,
		logger:   logger.Named("ChromeRenderer"),
	}
}

func (r *ChromeRenderer) RenderPDF(ctx context.Context, html string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.DisableGPU,
	)
	if r.execPath != "" {
		opts = append(opts, chromedp.ExecPath(r.execPath))
	}
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	start := time.Now()
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
			var err error
			// A4 with 0.2in margins.
			pdf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(8.27).
				WithPaperHeight(11.69).
				WithMarginTop(0.2).
				WithMarginBottom(0.2).
				WithMarginLeft(0.2).
				WithMarginRight(0.2).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("printing report to pdf: %w", err)
	}
	r.logger.Debug("Report rendered", zap.Int("bytes", len(pdf)), zap.Duration("took", time.Since(start)))
	return pdf, nil
}
