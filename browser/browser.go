// Package browser drives a headless Chrome to load search results pages.
package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Nehilsa2/linkedin_profile_scraper/config"
	"github.com/Nehilsa2/linkedin_profile_scraper/stealth"
)

var (
	// ErrLaunch means no browser could be started; nothing can be fetched.
	ErrLaunch = errors.New("browser launch failed")
	// ErrTimeout means a page did not finish loading in time.
	ErrTimeout = errors.New("page load timed out")
)

// Page is a snapshot of a loaded page's DOM
type Page struct {
	URL      string
	HTML     string
	LoadedAt time.Time
}

// Session is a running browser. Close must be called exactly once.
type Session interface {
	Fetch(ctx context.Context, url string) (*Page, error)
	Close() error
}

// Options configures a browser session
type Options struct {
	Driver      string
	ChromeBin   string
	Stealth     *stealth.Config
	Scroll      *stealth.ScrollConfig
	PageTimeout time.Duration

	RenderWaitMin time.Duration
	RenderWaitMax time.Duration

	// Launch, when set, replaces the driver looked up by name
	Launch Driver
}

// OptionsFromConfig derives session options from the run configuration,
// picking a fresh random fingerprint.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Driver:        cfg.Driver,
		ChromeBin:     cfg.ChromeBin,
		Stealth:       stealth.NewConfig(cfg.Headless),
		Scroll:        stealth.DefaultScrollConfig(),
		PageTimeout:   cfg.PageTimeout,
		RenderWaitMin: cfg.RenderWaitMin,
		RenderWaitMax: cfg.RenderWaitMax,
	}
}

// Driver starts a browser session
type Driver func(ctx context.Context, opts Options) (Session, error)

var drivers = map[string]Driver{
	config.DriverRod:      openRod,
	config.DriverChromedp: openChromedp,
}

// Open launches a browser with the configured driver. Every failure is
// reported as ErrLaunch.
func Open(ctx context.Context, opts Options) (Session, error) {
	if opts.Stealth == nil {
		opts.Stealth = stealth.NewConfig(true)
	}

	open := opts.Launch
	if open == nil {
		d, ok := drivers[opts.Driver]
		if !ok {
			return nil, fmt.Errorf("%w: unknown driver %q", ErrLaunch, opts.Driver)
		}
		open = d
	}

	fmt.Printf("🚀 Launching browser (driver=%s)\n", opts.Driver)
	opts.Stealth.Describe()

	s, err := open(ctx, opts)
	if err != nil {
		if errors.Is(err, ErrLaunch) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrLaunch, err)
	}
	return s, nil
}

// With opens a session, runs fn with it and closes the session on every
// exit path, including panics in fn.
func With(ctx context.Context, opts Options, fn func(Session) error) error {
	s, err := Open(ctx, opts)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); cerr != nil {
			fmt.Printf("⚠️ Browser did not close cleanly: %v\n", cerr)
			return
		}
		fmt.Println("🔒 Browser closed")
	}()

	return fn(s)
}

// classify maps navigation errors onto ErrTimeout. A cancelled caller
// context is returned as is.
func classify(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return err
}
