package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/Nehilsa2/linkedin_profile_scraper/stealth"
)

type rodSession struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	opts     Options
}

func openRod(ctx context.Context, opts Options) (Session, error) {
	l := stealth.Launcher(opts.Stealth, opts.ChromeBin).Context(ctx)

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLaunch, err)
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		l.Kill()
		l.Cleanup()
		return nil, fmt.Errorf("%w: connect: %w", ErrLaunch, err)
	}

	return &rodSession{launcher: l, browser: b, opts: opts}, nil
}

func (s *rodSession) Fetch(ctx context.Context, url string) (*Page, error) {
	page, err := s.browser.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, classify(ctx, fmt.Errorf("open tab: %w", err))
	}
	defer page.Close()

	if err := s.setupPage(page); err != nil {
		return nil, classify(ctx, err)
	}

	loading := page.Timeout(s.opts.PageTimeout)
	if err := loading.Navigate(url); err != nil {
		loading.CancelTimeout()
		return nil, classify(ctx, fmt.Errorf("navigate: %w", err))
	}
	if err := loading.WaitLoad(); err != nil {
		loading.CancelTimeout()
		return nil, classify(ctx, fmt.Errorf("wait load: %w", err))
	}
	loading.CancelTimeout()

	if err := stealth.Wait(ctx, s.opts.RenderWaitMin, s.opts.RenderWaitMax); err != nil {
		return nil, err
	}
	if err := stealth.ScrollResults(ctx, rodScroller{page: page}, s.opts.Scroll); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		fmt.Printf("⚠️ Scrolling results failed: %v\n", err)
	}

	html, err := page.HTML()
	if err != nil {
		return nil, classify(ctx, fmt.Errorf("read html: %w", err))
	}
	info, err := page.Info()
	if err != nil {
		return nil, classify(ctx, fmt.Errorf("page info: %w", err))
	}

	return &Page{URL: info.URL, HTML: html, LoadedAt: time.Now()}, nil
}

// setupPage applies viewport, user agent and the stealth script before
// navigation.
func (s *rodSession) setupPage(page *rod.Page) error {
	cfg := s.opts.Stealth

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             cfg.Viewport.Width,
		Height:            cfg.Viewport.Height,
		DeviceScaleFactor: 1,
	}); err != nil {
		return fmt.Errorf("set viewport: %w", err)
	}

	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
		UserAgent:      cfg.UserAgent,
		AcceptLanguage: "en-US,en;q=0.9",
	}); err != nil {
		return fmt.Errorf("set user agent: %w", err)
	}

	if _, err := page.EvalOnNewDocument(stealth.Script()); err != nil {
		return fmt.Errorf("inject stealth script: %w", err)
	}
	return nil
}

func (s *rodSession) Close() error {
	err := s.browser.Close()
	s.launcher.Kill()
	s.launcher.Cleanup()
	return err
}

type rodScroller struct {
	page *rod.Page
}

func (r rodScroller) ScrollBy(ctx context.Context, dy float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.page.Mouse.Scroll(0, dy, 1)
}
