// Package scraper runs the search → fetch → extract → normalize pipeline
// against an open browser session.
package scraper

import (
	"context"
	"fmt"
	"iter"
	"time"

	"golang.org/x/time/rate"

	"github.com/Nehilsa2/linkedin_profile_scraper/browser"
	"github.com/Nehilsa2/linkedin_profile_scraper/config"
	"github.com/Nehilsa2/linkedin_profile_scraper/search"
	"github.com/Nehilsa2/linkedin_profile_scraper/stealth"
)

// Status is the outcome of a run
type Status string

const (
	StatusOK          Status = "ok"
	StatusEmpty       Status = "empty"
	StatusBlocked     Status = "blocked"
	StatusFetchFailed Status = "fetch_failed"
)

// Result is what a run collected. Err holds the recovered condition that
// ended the run early, if any. Strategy is the first page's winning
// strategy; PageStrategies lists the winner of every page that had one.
type Result struct {
	Records        []search.ProfileRecord
	Status         Status
	Pages          int
	Strategy       string
	PageStrategies []string
	Err            error
}

// Scraper holds the per-run pipeline settings
type Scraper struct {
	cfg        *config.Config
	strategies []search.Strategy
	limiter    *rate.Limiter
	now        func() time.Time
}

// New returns a scraper using the default selector strategies
func New(cfg *config.Config) *Scraper {
	return &Scraper{
		cfg:        cfg,
		strategies: search.DefaultStrategies,
		limiter:    rate.NewLimiter(rate.Every(cfg.PageInterval), 1),
		now:        time.Now,
	}
}

// WithStrategies replaces the selector strategies
func (s *Scraper) WithStrategies(strategies []search.Strategy) *Scraper {
	s.strategies = strategies
	return s
}

// Run walks result pages until MaxResults profiles are collected, the
// pages run out, or a fetch fails or is blocked. Failures never escape:
// they end the walk and are reported through Result.Status and Result.Err.
func (s *Scraper) Run(ctx context.Context, session browser.Session) *Result {
	res := &Result{}
	res.Records = search.Normalize(s.matches(ctx, session, res), s.cfg.MaxResults)

	if res.Status == "" {
		if len(res.Records) > 0 {
			res.Status = StatusOK
		} else {
			res.Status = StatusEmpty
		}
	}
	return res
}

// matches lazily fetches result pages. A page is only loaded once the
// consumer has drained the previous one and still wants more.
func (s *Scraper) matches(ctx context.Context, session browser.Session, res *Result) iter.Seq[search.RawMatch] {
	return func(yield func(search.RawMatch) bool) {
		for page := 0; page < s.cfg.MaxPages; page++ {
			if err := s.limiter.Wait(ctx); err != nil {
				res.fail(StatusFetchFailed, err)
				return
			}

			url := search.BuildURL(s.cfg.Query, s.cfg.FreshResults, page, s.now())
			fmt.Printf("🔍 Scraping page %d...\n", page+1)

			p, err := session.Fetch(ctx, url)
			if err != nil {
				fmt.Printf("⚠️ Failed to load page %d: %v\n", page+1, err)
				res.fail(StatusFetchFailed, err)
				return
			}
			res.Pages++

			if det := stealth.CheckURL(p.URL); det.Blocked {
				stealth.PrintDetectionStatus(det)
				res.fail(StatusBlocked, det.Error)
				return
			}

			seq, strategy, err := search.Extract(p.HTML, s.strategies)
			if err != nil {
				fmt.Printf("⚠️ Error parsing results: %v\n", err)
				res.fail(StatusFetchFailed, err)
				return
			}
			if strategy == "" {
				// Nothing matched: either the results ran out or Google
				// served an interstitial on the search URL itself.
				if det := stealth.CheckPage(p.URL, p.HTML); det.Blocked {
					stealth.PrintDetectionStatus(det)
					res.fail(StatusBlocked, det.Error)
					return
				}
				fmt.Println("⚠️ No more results found")
				return
			}
			if res.Strategy == "" {
				res.Strategy = strategy
			}
			res.PageStrategies = append(res.PageStrategies, strategy)

			n := 0
			for m := range seq {
				n++
				if !yield(m) {
					return
				}
			}
			fmt.Printf("📄 Page %d → %d raw matches via %s\n", page+1, n, strategy)
		}
	}
}

func (r *Result) fail(status Status, err error) {
	r.Status = status
	r.Err = err
}
