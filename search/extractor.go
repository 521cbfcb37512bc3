package search

import (
	"fmt"
	"iter"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Strategy is one way of locating result elements on a results page
type Strategy struct {
	Name    string
	Extract func(doc *goquery.Document) []RawMatch
}

// DefaultStrategies in priority order. Google's markup changes without
// notice, so the first strategy that finds anything wins.
var DefaultStrategies = []Strategy{
	{Name: "result-blocks", Extract: resultBlocks("div.g")},
	{Name: "result-containers", Extract: resultBlocks("div.tF2Cxc, div.yuRUbf")},
	{Name: "heading-links", Extract: headingLinks},
	{Name: "profile-anchors", Extract: profileAnchors},
}

// Extract parses html once and returns the matches of the first strategy
// that yields any, plus that strategy's name. When every strategy comes up
// empty the sequence is empty and the name is "".
func Extract(html string, strategies []Strategy) (iter.Seq[RawMatch], string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return emptySeq, "", fmt.Errorf("parse results page: %w", err)
	}

	for _, s := range strategies {
		matches := s.Extract(doc)
		if len(matches) == 0 {
			continue
		}
		return func(yield func(RawMatch) bool) {
			for _, m := range matches {
				if !yield(m) {
					return
				}
			}
		}, s.Name, nil
	}

	return emptySeq, "", nil
}

func emptySeq(func(RawMatch) bool) {}

// resultBlocks takes the first link and the first heading of every block
// matched by selector.
func resultBlocks(selector string) func(*goquery.Document) []RawMatch {
	return func(doc *goquery.Document) []RawMatch {
		var out []RawMatch
		doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
			href, ok := s.Find("a[href]").First().Attr("href")
			if !ok || strings.TrimSpace(href) == "" {
				return
			}
			out = append(out, RawMatch{
				Title: cleanTitle(s.Find("h3").First().Text()),
				Link:  unwrapRedirect(href),
			})
		})
		return out
	}
}

func headingLinks(doc *goquery.Document) []RawMatch {
	var out []RawMatch
	doc.Find("a[href]").Has("h3").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		out = append(out, RawMatch{
			Title: cleanTitle(s.Find("h3").First().Text()),
			Link:  unwrapRedirect(href),
		})
	})
	return out
}

func profileAnchors(doc *goquery.Document) []RawMatch {
	var out []RawMatch
	doc.Find(`a[href*="linkedin.com/in/"]`).Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		out = append(out, RawMatch{
			Title: cleanTitle(s.Text()),
			Link:  unwrapRedirect(href),
		})
	})
	return out
}

// unwrapRedirect turns Google's /url?q=<target> tracking links into the
// target URL. Other links are returned trimmed.
func unwrapRedirect(href string) string {
	href = strings.TrimSpace(href)

	u, err := url.Parse(href)
	if err != nil || u.Path != "/url" {
		return href
	}
	if u.Host != "" && !strings.Contains(u.Host, "google.") {
		return href
	}

	q := u.Query()
	for _, key := range []string{"q", "url"} {
		if target := q.Get(key); target != "" {
			return target
		}
	}
	return href
}

func cleanTitle(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return "Unknown"
	}
	return s
}
