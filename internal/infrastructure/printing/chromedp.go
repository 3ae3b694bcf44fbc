package printing

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

const (
	defaultRenderTimeout = 30 * time.Second
	defaultMaxTabs       = 2

	// Chrome hides header and footer templates drawn into a margin
	// narrower than this.
	minTemplateMarginMM = 10.0
)

// ChromedpConfig configures the headless Chrome renderer.
type ChromedpConfig struct {
	DefaultTimeout time.Duration
	// RemoteURL points at a running browser's devtools websocket. Empty
	// launches a local headless browser.
	RemoteURL string
	ExecPath  string
	// NoSandbox is needed when running as root inside a container
	NoSandbox bool
	// MaxTabs bounds concurrent renders; each holds a browser tab
	MaxTabs int
	Logger  *zap.Logger
}

// ChromedpRenderer prints HTML to PDF through the DevTools protocol. One
// browser is shared; every Render opens its own tab.
type ChromedpRenderer struct {
	timeout     time.Duration
	logger      *zap.Logger
	tabs        chan struct{}
	allocCtx    context.Context
	allocCancel context.CancelFunc

	mu            sync.Mutex
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

// NewChromedpRenderer prepares the browser allocator. Chrome itself starts
// on the first render.
func NewChromedpRenderer(cfg *ChromedpConfig) (*ChromedpRenderer, error) {
	if cfg == nil {
		cfg = &ChromedpConfig{}
	}
	tabs := cfg.MaxTabs
	if tabs <= 0 {
		tabs = defaultMaxTabs
	}
	r := &ChromedpRenderer{
		timeout: cfg.DefaultTimeout,
		logger:  cfg.Logger,
		tabs:    make(chan struct{}, tabs),
	}
	if r.timeout <= 0 {
		r.timeout = defaultRenderTimeout
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	r.logger = r.logger.Named("chromedp")

	if cfg.RemoteURL != "" {
		r.allocCtx, r.allocCancel = chromedp.NewRemoteAllocator(context.Background(), cfg.RemoteURL)
		return r, nil
	}
	r.allocCtx, r.allocCancel = chromedp.NewExecAllocator(context.Background(), allocatorOptions(cfg)...)
	return r, nil
}

func allocatorOptions(cfg *ChromedpConfig) []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("font-render-hinting", "none"),
	)
	if cfg.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}
	return opts
}

// Render prints req to PDF. It waits for a free tab and fails with
// RENDER_TIMEOUT if the deadline passes first.
func (r *ChromedpRenderer) Render(ctx context.Context, req *RenderRequest) (*RenderResult, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = r.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	select {
	case r.tabs <- struct{}{}:
		defer func() { <-r.tabs }()
	case <-ctx.Done():
		return nil, NewRenderError(ErrCodeRenderTimeout, "no browser tab became free in time", ctx.Err())
	}

	started := time.Now()
	browserCtx, err := r.browser()
	if err != nil {
		return nil, NewRenderError(ErrCodeRenderFailed, "chrome did not start", err)
	}
	tabCtx, closeTab := chromedp.NewContext(browserCtx)
	defer closeTab()
	// closing the tab aborts a print in progress
	stop := context.AfterFunc(ctx, closeTab)
	defer stop()

	document := wrapDocument(req)
	params := printParams(req)

	var pdf []byte
	err = chromedp.Run(tabCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, document).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdf, _, err = params.Do(ctx)
			return err
		}),
	)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, NewRenderError(ErrCodeRenderTimeout, fmt.Sprintf("rendering stopped after %v", time.Since(started).Round(time.Millisecond)), errors.Join(ctxErr, err))
		}
		r.logger.Error("Render failed", zap.Error(err))
		return nil, NewRenderError(ErrCodeRenderFailed, "chrome could not print the document", err)
	}
	if len(pdf) == 0 {
		return nil, NewRenderError(ErrCodeRenderFailed, "chrome returned an empty PDF", nil)
	}

	result := &RenderResult{PDFData: pdf, PageCount: estimatePageCount(pdf), RenderDuration: time.Since(started)}
	r.logger.Debug("Rendered PDF",
		zap.Int("bytes", len(pdf)),
		zap.Int("pages", result.PageCount),
		zap.Duration("duration", result.RenderDuration),
	)
	return result, nil
}

// browser returns the shared browser context, starting Chrome if it is not
// running.
func (r *ChromedpRenderer) browser() (context.Context, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.browserCtx != nil && r.browserCtx.Err() == nil {
		return r.browserCtx, nil
	}
	ctx, cancel := chromedp.NewContext(r.allocCtx, chromedp.WithLogf(r.logger.Sugar().Debugf))
	if err := chromedp.Run(ctx); err != nil {
		cancel()
		return nil, err
	}
	r.browserCtx, r.browserCancel = ctx, cancel
	return ctx, nil
}

func validate(req *RenderRequest) error {
	switch {
	case req == nil:
		return NewRenderError(ErrCodeInvalidHTML, "render request is nil", nil)
	case strings.TrimSpace(req.HTML) == "":
		return NewRenderError(ErrCodeInvalidHTML, "HTML content is empty", nil)
	case !req.PaperSize.IsValid():
		return NewRenderError(ErrCodeInvalidPaperSize, "invalid paper size: "+string(req.PaperSize), nil)
	}
	return nil
}

// printParams maps the request onto Page.printToPDF. Chrome measures in
// inches and rotates landscape pages itself, so width and height stay
// portrait. Margins holding a header or footer are widened to fit it.
func printParams(req *RenderRequest) *page.PrintToPDFParams {
	width, height := req.PaperSize.Dimensions()
	top, bottom := req.Margins.Top, req.Margins.Bottom
	if req.HeaderHTML != "" {
		top = max(top, minTemplateMarginMM)
	}
	if req.FooterHTML != "" {
		bottom = max(bottom, minTemplateMarginMM)
	}

	return page.PrintToPDF().
		WithPrintBackground(true).
		WithPaperWidth(mmToInches(width)).
		WithPaperHeight(mmToInches(height)).
		WithLandscape(req.Orientation == OrientationLandscape).
		WithMarginTop(mmToInches(top)).
		WithMarginRight(mmToInches(req.Margins.Right)).
		WithMarginBottom(mmToInches(bottom)).
		WithMarginLeft(mmToInches(req.Margins.Left)).
		WithDisplayHeaderFooter(req.HeaderHTML != "" || req.FooterHTML != "").
		WithHeaderTemplate(req.HeaderHTML).
		WithFooterTemplate(req.FooterHTML)
}

// wrapDocument leaves complete documents alone and wraps fragments in a
// UTF-8 page titled req.Title.
func wrapDocument(req *RenderRequest) string {
	head := strings.ToLower(req.HTML[:min(len(req.HTML), 512)])
	if strings.Contains(head, "<!doctype") || strings.Contains(head, "<html") {
		return req.HTML
	}
	return fmt.Sprintf(`<!DOCTYPE html><html><head><meta charset="UTF-8"><title>%s</title></head><body>%s</body></html>`,
		html.EscapeString(req.Title), req.HTML)
}

// Close shuts the browser down.
func (r *ChromedpRenderer) Close() error {
	r.mu.Lock()
	if r.browserCancel != nil {
		r.browserCancel()
		r.browserCtx, r.browserCancel = nil, nil
	}
	r.mu.Unlock()
	if r.allocCancel != nil {
		r.allocCancel()
	}
	return nil
}

func mmToInches(mm float64) float64 {
	return mm / 25.4
}

// estimatePageCount counts "/Type /Page" objects, minus the "/Type /Pages"
// tree node that shares the prefix.
func estimatePageCount(pdf []byte) int {
	n := strings.Count(string(pdf), "/Type /Page") - strings.Count(string(pdf), "/Type /Pages")
	return max(n, 1)
}

var _ PDFRenderer = (*ChromedpRenderer)(nil)
