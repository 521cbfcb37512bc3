package stealth

import (
	"fmt"
	"math/rand"

	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
)

// Config holds the browser fingerprint used for one run
type Config struct {
	Headless  bool
	UserAgent string
	Viewport  Viewport
}

// Viewport represents browser window dimensions
type Viewport struct {
	Width  int
	Height int
}

// Flag is a single Chromium command line switch. An empty Value means a
// bare switch.
type Flag struct {
	Name  string
	Value string
}

// Common realistic viewport sizes (desktop)
var commonViewports = []Viewport{
	{1920, 1080}, // Full HD (most common)
	{1366, 768},  // HD (laptops)
	{1536, 864},  // Common laptop
	{1440, 900},  // MacBook
	{1280, 720},  // HD
	{1600, 900},  // HD+
	{1680, 1050}, // WSXGA+
	{1920, 1200}, // WUXGA
}

// Desktop Chrome user agents. Google serves a different results layout to
// Safari and mobile browsers, so the pool stays Chromium only.
var commonUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36 Edg/120.0.0.0",
}

// NewConfig returns a randomized fingerprint for the given visibility mode
func NewConfig(headless bool) *Config {
	return &Config{
		Headless:  headless,
		UserAgent: RandomUserAgent(),
		Viewport:  RandomViewport(),
	}
}

// RandomUserAgent returns a random realistic user agent
func RandomUserAgent() string {
	return commonUserAgents[rand.Intn(len(commonUserAgents))]
}

// RandomViewport returns a random realistic viewport, jittered by ±10px
func RandomViewport() Viewport {
	vp := commonViewports[rand.Intn(len(commonViewports))]
	vp.Width += rand.Intn(20) - 10
	vp.Height += rand.Intn(20) - 10
	return vp
}

// Flags returns the anti-detection switches shared by every driver.
//
//   - "disable-blink-features=AutomationControlled" keeps navigator.webdriver unset
//   - "disable-dev-shm-usage" and "no-sandbox" keep Chrome alive in CI containers
//   - "no-first-run" and "disable-infobars" suppress dialogs over the results
func (c *Config) Flags() []Flag {
	return []Flag{
		{Name: "disable-blink-features", Value: "AutomationControlled"},
		{Name: "disable-infobars"},
		{Name: "no-first-run"},
		{Name: "no-default-browser-check"},
		{Name: "disable-dev-shm-usage"},
		{Name: "no-sandbox"},
		{Name: "disable-gpu"},
		{Name: "disable-extensions"},
		{Name: "lang", Value: "en-US"},
		{Name: "window-size", Value: fmt.Sprintf("%d,%d", c.Viewport.Width, c.Viewport.Height)},
		{Name: "user-agent", Value: c.UserAgent},
	}
}

// Launcher creates a go-rod launcher carrying the stealth flags. bin
// overrides the browser binary; when empty the launcher looks for a local
// Chrome/Chromium and falls back to downloading one.
func Launcher(c *Config, bin string) *launcher.Launcher {
	l := launcher.New().
		Headless(c.Headless).
		Leakless(false).
		Delete("enable-automation")

	for _, f := range c.Flags() {
		if f.Value == "" {
			l = l.Set(flags.Flag(f.Name))
		} else {
			l = l.Set(flags.Flag(f.Name), f.Value)
		}
	}

	if bin != "" {
		l = l.Bin(bin)
	} else if path, ok := launcher.LookPath(); ok {
		l = l.Bin(path)
	}

	return l
}

// Describe prints the fingerprint in use
func (c *Config) Describe() {
	fmt.Println("🥷 Stealth Configuration:")
	fmt.Printf("   User-Agent: %s\n", truncate(c.UserAgent, 60))
	fmt.Printf("   Viewport: %dx%d\n", c.Viewport.Width, c.Viewport.Height)
	fmt.Printf("   Headless: %v\n", c.Headless)
}

// Script returns JavaScript that masks automation fingerprints. It must be
// registered to run on every new document, before the page's own scripts.
func Script() string {
	return `
	Object.defineProperty(navigator, 'webdriver', {
		get: () => undefined,
		configurable: true
	});

	// Headless Chrome reports an empty plugin list
	Object.defineProperty(navigator, 'plugins', {
		get: () => {
			const plugins = [
				{ name: 'Chrome PDF Plugin', filename: 'internal-pdf-viewer', description: 'Portable Document Format' },
				{ name: 'Chrome PDF Viewer', filename: 'mhjfbmdgcfjbbpaeojofohoefgiehjai', description: '' },
				{ name: 'Native Client', filename: 'internal-nacl-plugin', description: '' }
			];
			plugins.item = (i) => plugins[i] || null;
			plugins.namedItem = (name) => plugins.find(p => p.name === name) || null;
			plugins.refresh = () => {};
			return plugins;
		},
		configurable: true
	});

	Object.defineProperty(navigator, 'languages', {
		get: () => ['en-US', 'en'],
		configurable: true
	});

	Object.defineProperty(navigator, 'hardwareConcurrency', {
		get: () => 8,
		configurable: true
	});

	if (!window.chrome) {
		window.chrome = {};
	}
	if (!window.chrome.runtime) {
		window.chrome.runtime = {};
	}

	const originalQuery = window.navigator.permissions?.query;
	if (originalQuery) {
		window.navigator.permissions.query = (parameters) => (
			parameters.name === 'notifications' ?
				Promise.resolve({ state: Notification.permission }) :
				originalQuery(parameters)
		);
	}
	`
}

// Helper to truncate strings for display
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
