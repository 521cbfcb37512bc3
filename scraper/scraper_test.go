package scraper_test

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nehilsa2/linkedin_profile_scraper/browser"
	"github.com/Nehilsa2/linkedin_profile_scraper/config"
	"github.com/Nehilsa2/linkedin_profile_scraper/scraper"
	"github.com/Nehilsa2/linkedin_profile_scraper/search"
	"github.com/Nehilsa2/linkedin_profile_scraper/stealth"
)

// fakeSession serves canned HTML per results page (keyed by start/10)
type fakeSession struct {
	pages    map[int]string
	errs     map[int]error
	finalURL string
	fetched  []string
}

func (f *fakeSession) Fetch(_ context.Context, raw string) (*browser.Page, error) {
	f.fetched = append(f.fetched, raw)

	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	start, _ := strconv.Atoi(u.Query().Get("start"))
	page := start / search.ResultsPerPage

	if err := f.errs[page]; err != nil {
		return nil, err
	}
	loaded := raw
	if f.finalURL != "" {
		loaded = f.finalURL
	}
	return &browser.Page{URL: loaded, HTML: f.pages[page]}, nil
}

func (f *fakeSession) Close() error { return nil }

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.PageInterval = 0
	cfg.MaxResults = 10
	return cfg
}

func resultsPage(items ...[2]string) string {
	var b strings.Builder
	b.WriteString(`<html><body><div id="search">`)
	for _, it := range items {
		fmt.Fprintf(&b, `<div class="g"><a href="%s"><h3>%s</h3></a></div>`, it[1], it[0])
	}
	b.WriteString(`</div></body></html>`)
	return b.String()
}

var examplePage = resultsPage(
	[2]string{"A", "https://linkedin.com/in/a"},
	[2]string{"B", "https://linkedin.com/in/a"},
	[2]string{"C", "https://example.com/x"},
	[2]string{"D", "https://linkedin.com/in/d"},
)

func TestRunExample(t *testing.T) {
	fs := &fakeSession{pages: map[int]string{0: examplePage}}

	res := scraper.New(testConfig()).Run(context.Background(), fs)

	assert.Equal(t, scraper.StatusOK, res.Status)
	assert.NoError(t, res.Err)
	assert.Equal(t, 1, res.Pages)
	assert.Equal(t, "result-blocks", res.Strategy)
	assert.Equal(t, []search.ProfileRecord{
		{Title: "A", Link: "https://linkedin.com/in/a"},
		{Title: "D", Link: "https://linkedin.com/in/d"},
	}, res.Records)
}

func TestRunMaxOne(t *testing.T) {
	cfg := testConfig()
	cfg.MaxResults = 1
	fs := &fakeSession{pages: map[int]string{0: examplePage}}

	res := scraper.New(cfg).Run(context.Background(), fs)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "https://linkedin.com/in/a", res.Records[0].Link)
}

func TestRunUsesOnlyFallbackStrategy(t *testing.T) {
	page := `<html><body><div id="rso">
<div class="x"><a href="https://www.linkedin.com/in/one"><h3>One</h3></a></div>
<div class="x"><a href="https://www.linkedin.com/in/two"><h3>Two</h3></a></div>
<div class="x"><a href="https://www.linkedin.com/in/three"><h3>Three</h3></a></div>
</div></body></html>`

	first := search.Strategy{Name: "first", Extract: search.DefaultStrategies[0].Extract}
	later := search.Strategy{Name: "later", Extract: search.DefaultStrategies[2].Extract}
	fs := &fakeSession{pages: map[int]string{0: page}}

	res := scraper.New(testConfig()).WithStrategies([]search.Strategy{first, later}).Run(context.Background(), fs)

	assert.Equal(t, "later", res.Strategy)
	require.Len(t, res.Records, 3)
	assert.Equal(t, "https://www.linkedin.com/in/one", res.Records[0].Link)
	assert.Equal(t, "https://www.linkedin.com/in/three", res.Records[2].Link)
}

func TestRunEmpty(t *testing.T) {
	fs := &fakeSession{pages: map[int]string{0: `<html><body><p>did not match any documents</p></body></html>`}}

	res := scraper.New(testConfig()).Run(context.Background(), fs)
	assert.Equal(t, scraper.StatusEmpty, res.Status)
	assert.NoError(t, res.Err)
	assert.Empty(t, res.Records)
	assert.NotNil(t, res.Records)
}

func TestRunBlocked(t *testing.T) {
	fs := &fakeSession{
		pages:    map[int]string{0: `<html><body><form id="captcha-form"></form></body></html>`},
		finalURL: "https://www.google.com/sorry/index?continue=x",
	}

	res := scraper.New(testConfig()).Run(context.Background(), fs)
	assert.Equal(t, scraper.StatusBlocked, res.Status)
	assert.True(t, stealth.IsChallenge(res.Err))
	assert.Empty(t, res.Records)
	assert.Equal(t, 1, res.Pages)
}

func TestRunBlockedIsDistinctFromEmpty(t *testing.T) {
	blocked := scraper.New(testConfig()).Run(context.Background(), &fakeSession{
		pages: map[int]string{0: `<html><body>Our systems have detected unusual traffic from your computer network.</body></html>`},
	})
	empty := scraper.New(testConfig()).Run(context.Background(), &fakeSession{
		pages: map[int]string{0: `<html><body></body></html>`},
	})

	assert.Empty(t, blocked.Records)
	assert.Empty(t, empty.Records)
	assert.NotEqual(t, blocked.Status, empty.Status)
}

func TestRunKeepsResultsQuotingChallengeText(t *testing.T) {
	page := `<html><body>
<div class="g"><a href="https://www.linkedin.com/in/robo"><h3>Robo Builder</h3></a><span>I'm not a robot, I build them.</span></div>
<div class="g"><a href="https://www.linkedin.com/in/net"><h3>Net Admin</h3></a><span>Tracks unusual traffic from your computer network.</span></div>
</body></html>`
	fs := &fakeSession{pages: map[int]string{0: page}}

	res := scraper.New(testConfig()).Run(context.Background(), fs)

	assert.Equal(t, scraper.StatusOK, res.Status)
	assert.NoError(t, res.Err)
	require.Len(t, res.Records, 2)
	assert.Equal(t, "https://www.linkedin.com/in/robo", res.Records[0].Link)
}

func TestRunTimeout(t *testing.T) {
	fs := &fakeSession{errs: map[int]error{0: fmt.Errorf("wait load: %w", browser.ErrTimeout)}}

	res := scraper.New(testConfig()).Run(context.Background(), fs)
	assert.Equal(t, scraper.StatusFetchFailed, res.Status)
	assert.ErrorIs(t, res.Err, browser.ErrTimeout)
	assert.Empty(t, res.Records)
	assert.Zero(t, res.Pages)
}

func TestRunPaginatesUntilCap(t *testing.T) {
	cfg := testConfig()
	cfg.MaxPages = 5
	cfg.MaxResults = 3
	fs := &fakeSession{pages: map[int]string{
		0: resultsPage([2]string{"P1", "https://linkedin.com/in/p1"}, [2]string{"P2", "https://linkedin.com/in/p2"}),
		1: resultsPage([2]string{"P2 again", "https://linkedin.com/in/p2"}, [2]string{"P3", "https://linkedin.com/in/p3"}, [2]string{"P4", "https://linkedin.com/in/p4"}),
		2: resultsPage([2]string{"P5", "https://linkedin.com/in/p5"}),
	}}

	res := scraper.New(cfg).Run(context.Background(), fs)

	assert.Equal(t, scraper.StatusOK, res.Status)
	assert.Len(t, fs.fetched, 2, "page 3 is never requested once the cap is reached")
	assert.Equal(t, 2, res.Pages)

	var titles []string
	for _, r := range res.Records {
		titles = append(titles, r.Title)
	}
	assert.Equal(t, []string{"P1", "P2", "P3"}, titles)
}

func TestRunRecordsStrategyPerPage(t *testing.T) {
	cfg := testConfig()
	cfg.MaxPages = 2
	fs := &fakeSession{pages: map[int]string{
		0: resultsPage([2]string{"P1", "https://linkedin.com/in/p1"}),
		1: `<html><body><div id="rso"><div class="x"><a href="https://linkedin.com/in/p2"><h3>P2</h3></a></div></div></body></html>`,
	}}

	res := scraper.New(cfg).Run(context.Background(), fs)

	assert.Equal(t, "result-blocks", res.Strategy)
	assert.Equal(t, []string{"result-blocks", "heading-links"}, res.PageStrategies)
	assert.Len(t, res.Records, 2)
}

func TestRunStopsWhenPagesRunOut(t *testing.T) {
	cfg := testConfig()
	cfg.MaxPages = 5
	fs := &fakeSession{pages: map[int]string{
		0: resultsPage([2]string{"P1", "https://linkedin.com/in/p1"}),
		1: `<html><body></body></html>`,
	}}

	res := scraper.New(cfg).Run(context.Background(), fs)
	assert.Equal(t, scraper.StatusOK, res.Status)
	assert.Len(t, fs.fetched, 2)
	assert.Len(t, res.Records, 1)
}

func TestRunKeepsRecordsWhenLaterPageFails(t *testing.T) {
	cfg := testConfig()
	cfg.MaxPages = 3
	fs := &fakeSession{
		pages: map[int]string{0: resultsPage([2]string{"P1", "https://linkedin.com/in/p1"})},
		errs:  map[int]error{1: fmt.Errorf("navigate: %w", browser.ErrTimeout)},
	}

	res := scraper.New(cfg).Run(context.Background(), fs)
	assert.Equal(t, scraper.StatusFetchFailed, res.Status)
	assert.Len(t, res.Records, 1)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	fs := &fakeSession{pages: map[int]string{0: examplePage}}

	res := scraper.New(testConfig()).Run(ctx, fs)
	assert.Equal(t, scraper.StatusFetchFailed, res.Status)
	assert.ErrorIs(t, res.Err, context.Canceled)
	assert.Empty(t, fs.fetched)
}

func TestRunFreshURL(t *testing.T) {
	cfg := testConfig()
	cfg.FreshResults = true
	fs := &fakeSession{pages: map[int]string{0: examplePage}}

	scraper.New(cfg).Run(context.Background(), fs)
	require.Len(t, fs.fetched, 1)

	u, err := url.Parse(fs.fetched[0])
	require.NoError(t, err)
	assert.Equal(t, config.DefaultQuery, u.Query().Get("q"))
	assert.NotEmpty(t, u.Query().Get("_t"))
}
