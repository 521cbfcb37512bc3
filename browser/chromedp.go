package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/emulation"
	cdppage "github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/Nehilsa2/linkedin_profile_scraper/stealth"
)

type chromedpSession struct {
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	opts          Options
}

func openChromedp(ctx context.Context, opts Options) (Session, error) {
	cfg := opts.Stealth

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("enable-automation", false),
		chromedp.WindowSize(cfg.Viewport.Width, cfg.Viewport.Height),
	)
	for _, f := range cfg.Flags() {
		switch {
		case f.Name == "user-agent":
			allocOpts = append(allocOpts, chromedp.UserAgent(f.Value))
		case f.Name == "window-size":
		case f.Value == "":
			allocOpts = append(allocOpts, chromedp.Flag(f.Name, true))
		default:
			allocOpts = append(allocOpts, chromedp.Flag(f.Name, f.Value))
		}
	}
	if opts.ChromeBin != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ChromeBin))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// The first Run starts the browser process
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("%w: %w", ErrLaunch, err)
	}

	return &chromedpSession{
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		opts:          opts,
	}, nil
}

func (s *chromedpSession) Fetch(ctx context.Context, url string) (*Page, error) {
	tabCtx, closeTab := chromedp.NewContext(s.browserCtx)
	defer closeTab()
	stop := context.AfterFunc(ctx, closeTab)
	defer stop()

	// Create the tab before any timeout is attached, otherwise the timeout
	// would own the tab's lifetime.
	if err := chromedp.Run(tabCtx); err != nil {
		return nil, classify(ctx, fmt.Errorf("open tab: %w", err))
	}

	cfg := s.opts.Stealth
	loadCtx, cancelLoad := context.WithTimeout(tabCtx, s.opts.PageTimeout)
	err := chromedp.Run(loadCtx,
		emulation.SetDeviceMetricsOverride(int64(cfg.Viewport.Width), int64(cfg.Viewport.Height), 1, false),
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := cdppage.AddScriptToEvaluateOnNewDocument(stealth.Script()).Do(ctx)
			return err
		}),
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	cancelLoad()
	if err != nil {
		return nil, classify(ctx, fmt.Errorf("navigate: %w", err))
	}

	if err := stealth.Wait(ctx, s.opts.RenderWaitMin, s.opts.RenderWaitMax); err != nil {
		return nil, err
	}
	if err := stealth.ScrollResults(ctx, chromedpScroller{tabCtx: tabCtx}, s.opts.Scroll); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		fmt.Printf("⚠️ Scrolling results failed: %v\n", err)
	}

	var location, html string
	if err := chromedp.Run(tabCtx,
		chromedp.Location(&location),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	); err != nil {
		return nil, classify(ctx, fmt.Errorf("read html: %w", err))
	}

	return &Page{URL: location, HTML: html, LoadedAt: time.Now()}, nil
}

func (s *chromedpSession) Close() error {
	err := chromedp.Cancel(s.browserCtx)
	s.browserCancel()
	s.allocCancel()
	return err
}

type chromedpScroller struct {
	tabCtx context.Context
}

func (c chromedpScroller) ScrollBy(ctx context.Context, dy float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return chromedp.Run(c.tabCtx, chromedp.Evaluate(fmt.Sprintf("window.scrollBy(0, %.0f)", dy), nil))
}
