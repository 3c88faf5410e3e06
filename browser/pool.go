// Package browser provides browser automation functionality
package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"tickermap/utils"
)

// ErrTimeout is returned when a page does not load within the navigation timeout.
var ErrTimeout = errors.New("browser: page load timed out")

// Options configures a Pool.
type Options struct {
	Headless        bool
	MaxSessions     int           // concurrent sessions; default 1
	NavigateTimeout time.Duration // per page load; default 60s
	UserAgent       string
	AcceptLanguage  string
	ExecPath        string // chrome binary; empty means chromedp's lookup
	Logger          *slog.Logger
}

// Pool bounds the number of concurrent browser sessions.
//
// Every fetch runs in its own browser process with a throwaway profile
// directory, so cookies and storage never leak between tickers.
type Pool struct {
	opts  Options
	slots chan struct{}
}

// New creates a pool. No browser is started until the first fetch.
func New(opts Options) *Pool {
	if opts.MaxSessions < 1 {
		opts.MaxSessions = 1
	}
	if opts.NavigateTimeout <= 0 {
		opts.NavigateTimeout = time.Minute
	}
	if opts.UserAgent == "" {
		opts.UserAgent = utils.UserAgent
	}
	if opts.AcceptLanguage == "" {
		opts.AcceptLanguage = "en-US,en;q=0.9"
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Pool{
		opts:  opts,
		slots: make(chan struct{}, opts.MaxSessions),
	}
}

// acquire blocks until a session slot is free or ctx is done.
func (pool *Pool) acquire(ctx context.Context) (func(), error) {
	select {
	case pool.slots <- struct{}{}:
		return func() { <-pool.slots }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// allocatorOptions returns the exec allocator flags for a session rooted at dataDir.
func (pool *Pool) allocatorOptions(dataDir string) []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", pool.opts.Headless),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("lang", pool.opts.AcceptLanguage),
		chromedp.WindowSize(1920, 1080),
		chromedp.UserAgent(pool.opts.UserAgent),
		chromedp.UserDataDir(dataDir),
	)
	if pool.opts.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(pool.opts.ExecPath))
	}
	return opts
}

// FetchHTML loads url in a fresh session, waits settle for scripts to render,
// and returns the page HTML. A page that does not load within the navigation
// timeout yields an error matching ErrTimeout.
func (pool *Pool) FetchHTML(ctx context.Context, url string, settle time.Duration) (string, error) {
	release, err := pool.acquire(ctx)
	if err != nil {
		return "", err
	}
	defer release()

	dataDir, err := os.MkdirTemp("", "tickermap-browser-*")
	if err != nil {
		return "", fmt.Errorf("create profile dir: %w", err)
	}
	defer os.RemoveAll(dataDir)

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, pool.allocatorOptions(dataDir)...)
	defer allocCancel()

	logger := pool.opts.Logger
	browserCtx, browserCancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(format string, args ...interface{}) {
		logger.Debug(fmt.Sprintf(format, args...))
	}))
	defer browserCancel()

	chromedp.ListenTarget(browserCtx, func(ev interface{}) {
		if ev, ok := ev.(*page.EventJavascriptDialogOpening); ok {
			logger.Debug("dismissing dialog", "url", url, "message", ev.Message)
			go func() {
				_ = chromedp.Run(browserCtx, page.HandleJavaScriptDialog(false))
			}()
		}
	})

	if err := chromedp.Run(browserCtx,
		network.Enable(),
		network.ClearBrowserCookies(),
		network.SetExtraHTTPHeaders(network.Headers{"Accept-Language": pool.opts.AcceptLanguage}),
	); err != nil {
		return "", fmt.Errorf("start browser session: %w", err)
	}

	navCtx, navCancel := context.WithTimeout(browserCtx, pool.opts.NavigateTimeout)
	err = chromedp.Run(navCtx, chromedp.Navigate(url))
	navCancel()
	if err != nil {
		if ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %s", ErrTimeout, url)
		}
		return "", fmt.Errorf("navigate %s: %w", url, err)
	}

	var htmlContent string
	if err := chromedp.Run(browserCtx,
		chromedp.Sleep(settle),
		chromedp.OuterHTML(`html`, &htmlContent, chromedp.ByQuery),
	); err != nil {
		return "", fmt.Errorf("read page %s: %w", url, err)
	}

	return htmlContent, nil
}
